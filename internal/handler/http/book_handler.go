package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/bookstore/internal/catalog"
)

type CreateBookRequest struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Author      string           `json:"author" validate:"required,max=100"`
	Category    string           `json:"category" validate:"required,max=50"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Stock       int              `json:"stock" validate:"gte=0"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url" validate:"omitempty,max=500"`
	Publisher   string           `json:"publisher" validate:"omitempty,max=200"`
	PublishDate *string          `json:"publish_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Distributor string           `json:"distributor" validate:"omitempty,max=200"`
	Dimensions  string           `json:"dimensions" validate:"omitempty,max=50"`
	Pages       *int             `json:"pages,omitempty" validate:"omitempty,gte=0"`
	Weight      *decimal.Decimal `json:"weight,omitempty"`
}

type UpdateBookRequest struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,max=200"`
	Author      *string          `json:"author,omitempty" validate:"omitempty,max=100"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=50"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Description *string          `json:"description,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,max=500"`
	Publisher   *string          `json:"publisher,omitempty" validate:"omitempty,max=200"`
	PublishDate *string          `json:"publish_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Distributor *string          `json:"distributor,omitempty" validate:"omitempty,max=200"`
	Dimensions  *string          `json:"dimensions,omitempty" validate:"omitempty,max=50"`
	Pages       *int             `json:"pages,omitempty" validate:"omitempty,gte=0"`
	Weight      *decimal.Decimal `json:"weight,omitempty"`
}

type BookHandler struct {
	service  catalog.Service
	validate *validator.Validate
}

func NewBookHandler(service catalog.Service) *BookHandler {
	return &BookHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *BookHandler) RegisterRoutes(router chi.Router) {
	router.Get("/books", h.handleSearchBooks)
	router.Get("/books/categories", h.handleListCategories)
	router.Get("/books/authors", h.handleListAuthors)
	router.Get("/books/{id}", h.handleGetBook)
}

// RegisterAdminRoutes expects router to be mounted under /admin behind the admin middleware.
func (h *BookHandler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/books", h.handleCreateBook)
	router.Put("/books/{id}", h.handleUpdateBook)
	router.Delete("/books/{id}", h.handleDeleteBook)
}

func parseDate(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	// Format is already checked by the datetime validator.
	d, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil
	}
	return &d
}

func (h *BookHandler) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := catalog.SearchParams{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Author:   q.Get("author"),
		Page:     queryInt(r, "page", 1),
		PerPage:  queryInt(r, "per_page", catalog.DefaultPerPage),
	}

	page, err := h.service.SearchBooks(r.Context(), params)
	if err != nil {
		respondWithServiceError(w, err, "Failed to search books")
		return
	}

	respondWithJSON(w, http.StatusOK, toBookPageResponse(page))
}

func (h *BookHandler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	book, err := h.service.GetBook(r.Context(), bookID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get book")
		return
	}

	respondWithJSON(w, http.StatusOK, toBookResponse(book))
}

func (h *BookHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list categories")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}

func (h *BookHandler) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.service.ListAuthors(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list authors")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]string{"authors": authors})
}

func (h *BookHandler) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	book := &catalog.Book{
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		Price:       *req.Price,
		Stock:       req.Stock,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Publisher:   req.Publisher,
		PublishDate: parseDate(req.PublishDate),
		Distributor: req.Distributor,
		Dimensions:  req.Dimensions,
		Pages:       req.Pages,
	}
	if req.Weight != nil {
		book.Weight = decimal.NewNullDecimal(*req.Weight)
	}

	created, err := h.service.CreateBook(r.Context(), book)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create book")
		return
	}

	log.Info().Stringer("book_id", created.ID).Msg("Book created")
	respondWithJSON(w, http.StatusCreated, toBookResponse(created))
}

func (h *BookHandler) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateBookRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	updated, err := h.service.UpdateBook(r.Context(), bookID, catalog.BookUpdate{
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Publisher:   req.Publisher,
		PublishDate: parseDate(req.PublishDate),
		Distributor: req.Distributor,
		Dimensions:  req.Dimensions,
		Pages:       req.Pages,
		Weight:      req.Weight,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to update book")
		return
	}

	respondWithJSON(w, http.StatusOK, toBookResponse(updated))
}

func (h *BookHandler) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteBook(r.Context(), bookID); err != nil {
		respondWithServiceError(w, err, "Failed to delete book")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
