package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/bookstore/internal/order"
)

// CreateOrderRequest leaves address rules to the checkout workflow.
type CreateOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes expects an authenticated router.
func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders", h.handleListMyOrders)
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders/{id}", h.handleGetOrder)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	id, _ := IdentityFrom(r.Context())
	created, err := h.service.CreateOrder(r.Context(), id.UserID, req.ShippingAddress)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create order")
		return
	}

	log.Info().Stringer("order_id", created.ID).Stringer("user_id", id.UserID).Msg("Order created")
	respondWithJSON(w, http.StatusCreated, toOrderResponse(created))
}

func (h *OrderHandler) handleListMyOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	orders, err := h.service.GetOrdersByUserID(r.Context(), id.UserID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	id, _ := IdentityFrom(r.Context())
	found, err := h.service.GetUserOrder(r.Context(), id.UserID, orderID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderResponse(found))
}
