package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/bookstore/internal/cart"
)

type AddCartItemRequest struct {
	BookID   uuid.UUID `json:"book_id" validate:"required"`
	Quantity *int      `json:"quantity,omitempty" validate:"omitempty,gt=0"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

type CartHandler struct {
	service  cart.Service
	validate *validator.Validate
}

func NewCartHandler(service cart.Service) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes expects an authenticated router.
func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGetCart)
	router.Post("/cart", h.handleAddItem)
	router.Put("/cart/{id}", h.handleUpdateItem)
	router.Delete("/cart/{id}", h.handleRemoveItem)
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	c, err := h.service.GetCart(r.Context(), id.UserID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get cart")
		return
	}

	respondWithJSON(w, http.StatusOK, toCartResponse(c))
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	id, _ := IdentityFrom(r.Context())
	line, err := h.service.AddItem(r.Context(), id.UserID, req.BookID, qty)
	if err != nil {
		respondWithServiceError(w, err, "Failed to add item to cart")
		return
	}

	respondWithJSON(w, http.StatusCreated, toCartItemResponse(line))
}

func (h *CartHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	lineID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	id, _ := IdentityFrom(r.Context())
	line, err := h.service.UpdateItem(r.Context(), id.UserID, lineID, req.Quantity)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update cart item")
		return
	}

	respondWithJSON(w, http.StatusOK, toCartItemResponse(line))
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	lineID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	id, _ := IdentityFrom(r.Context())
	if err := h.service.RemoveItem(r.Context(), id.UserID, lineID); err != nil {
		respondWithServiceError(w, err, "Failed to remove cart item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
