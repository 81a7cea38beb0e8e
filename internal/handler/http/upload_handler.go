package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/bookstore/internal/media"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 1 << 20

type ImageUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader, size int64) (*media.Upload, error)
}

type UploadHandler struct {
	uploader ImageUploader
}

func NewUploadHandler(uploader ImageUploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// RegisterRoutes expects router to be mounted under /admin behind the admin middleware.
func (h *UploadHandler) RegisterRoutes(router chi.Router) {
	router.Post("/upload", h.handleUpload)
}

func (h *UploadHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondWithServiceError(w, media.ErrFileTooLarge, "Failed to upload image")
		case errors.Is(err, http.ErrMissingFile):
			respondWithServiceError(w, media.ErrNoFile, "Failed to upload image")
		default:
			respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		}
		return
	}
	defer file.Close()

	uploaded, err := h.uploader.Upload(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		respondWithServiceError(w, err, "Failed to upload image")
		return
	}

	respondWithJSON(w, http.StatusCreated, uploaded)
}
