package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/bookstore/internal/banner"
)

type CreateBannerRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url" validate:"required,max=500"`
	Link         string `json:"link" validate:"omitempty,max=500"`
	BgColor      string `json:"bg_color" validate:"omitempty,hexcolor"`
	TextColor    string `json:"text_color" validate:"omitempty,hexcolor"`
	Position     string `json:"position" validate:"omitempty,oneof=main side_top side_bottom"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

type UpdateBannerRequest struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description  *string `json:"description,omitempty"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,max=500"`
	Link         *string `json:"link,omitempty" validate:"omitempty,max=500"`
	BgColor      *string `json:"bg_color,omitempty" validate:"omitempty,hexcolor"`
	TextColor    *string `json:"text_color,omitempty" validate:"omitempty,hexcolor"`
	Position     *string `json:"position,omitempty" validate:"omitempty,oneof=main side_top side_bottom"`
	DisplayOrder *int    `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

type BannerHandler struct {
	service  banner.Service
	validate *validator.Validate
}

func NewBannerHandler(service banner.Service) *BannerHandler {
	return &BannerHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *BannerHandler) RegisterRoutes(router chi.Router) {
	router.Get("/banners", h.handleListActive)
}

// RegisterAdminRoutes expects router to be mounted under /admin behind the admin middleware.
func (h *BannerHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/banners", h.handleList)
	router.Post("/banners", h.handleCreate)
	router.Get("/banners/{id}", h.handleGet)
	router.Put("/banners/{id}", h.handleUpdate)
	router.Delete("/banners/{id}", h.handleDelete)
	router.Put("/banners/{id}/toggle", h.handleToggle)
}

func (h *BannerHandler) handleListActive(w http.ResponseWriter, r *http.Request) {
	position := banner.Position(r.URL.Query().Get("position"))

	banners, err := h.service.ListActive(r.Context(), position)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list banners")
		return
	}

	respondWithJSON(w, http.StatusOK, banners)
}

func (h *BannerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), queryInt(r, "page", 1), queryInt(r, "per_page", banner.DefaultPerPage))
	if err != nil {
		respondWithServiceError(w, err, "Failed to list banners")
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}

func (h *BannerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateBannerRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	b := &banner.Banner{
		Title:        req.Title,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Link:         req.Link,
		BgColor:      req.BgColor,
		TextColor:    req.TextColor,
		Position:     banner.Position(req.Position),
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	created, err := h.service.Create(r.Context(), b)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create banner")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *BannerHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	bannerID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	b, err := h.service.Get(r.Context(), bannerID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get banner")
		return
	}

	respondWithJSON(w, http.StatusOK, b)
}

func (h *BannerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	bannerID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateBannerRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	update := banner.Update{
		Title:        req.Title,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Link:         req.Link,
		BgColor:      req.BgColor,
		TextColor:    req.TextColor,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	}
	if req.Position != nil {
		p := banner.Position(*req.Position)
		update.Position = &p
	}

	updated, err := h.service.Update(r.Context(), bannerID, update)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update banner")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *BannerHandler) handleToggle(w http.ResponseWriter, r *http.Request) {
	bannerID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	toggled, err := h.service.Toggle(r.Context(), bannerID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to toggle banner")
		return
	}

	respondWithJSON(w, http.StatusOK, toggled)
}

func (h *BannerHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	bannerID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), bannerID); err != nil {
		respondWithServiceError(w, err, "Failed to delete banner")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
