package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/bookstore/internal/order"
	"github.com/vasiliy-maslov/bookstore/internal/stats"
	"github.com/vasiliy-maslov/bookstore/internal/user"
)

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	PaymentStatus *string `json:"payment_status,omitempty" validate:"omitempty,oneof=pending paid"`
}

type OrderPageResponse struct {
	Orders  []OrderResponse `json:"orders"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Pages   int             `json:"pages"`
}

type StatisticsResponse struct {
	TotalRevenue    string          `json:"total_revenue"`
	TotalOrders     int             `json:"total_orders"`
	PendingOrders   int             `json:"pending_orders"`
	ConfirmedOrders int             `json:"confirmed_orders"`
	CompletedOrders int             `json:"completed_orders"`
	CancelledOrders int             `json:"cancelled_orders"`
	OrdersByStatus  map[string]int  `json:"orders_by_status"`
	TotalBooks      int             `json:"total_books"`
	TotalUsers      int             `json:"total_users"`
	TopBooks        []stats.TopBook `json:"top_books"`
}

type AdminHandler struct {
	users    user.Service
	orders   order.Service
	reporter stats.Reporter
	validate *validator.Validate
}

func NewAdminHandler(users user.Service, orders order.Service, reporter stats.Reporter) *AdminHandler {
	return &AdminHandler{
		users:    users,
		orders:   orders,
		reporter: reporter,
		validate: newValidator(),
	}
}

// RegisterRoutes expects router to be mounted under /admin behind the admin middleware.
func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Get("/users", h.handleListUsers)
	router.Put("/users/{id}/status", h.handleUpdateUserStatus)
	router.Get("/orders", h.handleListOrders)
	router.Put("/orders/{id}/status", h.handleUpdateOrderStatus)
	router.Get("/statistics", h.handleStatistics)
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list users")
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) handleUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateUserStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	actor, _ := IdentityFrom(r.Context())
	updated, err := h.users.SetActive(r.Context(), actor.UserID, userID, *req.IsActive)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update user status")
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(updated))
}

func (h *AdminHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	filter := order.ListFilter{
		Status:  order.OrderStatus(r.URL.Query().Get("status")),
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", order.DefaultPerPage),
	}

	page, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, OrderPageResponse{
		Orders:  toOrderResponses(page.Orders),
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
		Pages:   page.Pages,
	})
}

func (h *AdminHandler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	var update order.StatusUpdate
	if req.Status != nil {
		s := order.OrderStatus(*req.Status)
		update.Status = &s
	}
	if req.PaymentStatus != nil {
		p := order.PaymentStatus(*req.PaymentStatus)
		update.PaymentStatus = &p
	}

	updated, err := h.orders.UpdateOrderStatus(r.Context(), orderID, update)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderResponse(updated))
}

func (h *AdminHandler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	s, err := h.reporter.Statistics(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to collect statistics")
		return
	}

	respondWithJSON(w, http.StatusOK, StatisticsResponse{
		TotalRevenue:    s.TotalRevenue.StringFixed(2),
		TotalOrders:     s.TotalOrders,
		PendingOrders:   s.PendingOrders,
		ConfirmedOrders: s.ConfirmedOrders,
		CompletedOrders: s.CompletedOrders,
		CancelledOrders: s.CancelledOrders,
		OrdersByStatus:  s.OrdersByStatus,
		TotalBooks:      s.TotalBooks,
		TotalUsers:      s.TotalUsers,
		TopBooks:        s.TopBooks,
	})
}
