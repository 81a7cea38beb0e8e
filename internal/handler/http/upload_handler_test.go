package http_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	handler "github.com/vasiliy-maslov/bookstore/internal/handler/http"
	"github.com/vasiliy-maslov/bookstore/internal/media"
)

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandler(t *testing.T) {
	image := []byte("\x89PNG fake image bytes")

	tests := []struct {
		name     string
		field    string
		filename string
		content  []byte
		upload   *media.Upload
		svcErr   error
		wantCode int
		wantBody string
	}{
		{
			name:     "stored",
			field:    "file",
			filename: "cover.png",
			content:  image,
			upload:   &media.Upload{URL: "https://minio.local/bookstore-images/books/x.png?sig", Object: "books/x.png"},
			wantCode: http.StatusCreated,
			wantBody: `"object":"books/x.png"`,
		},
		{
			name:     "unsupported extension",
			field:    "file",
			filename: "cover.bmp",
			content:  image,
			svcErr:   media.ErrUnsupportedFormat,
			wantCode: http.StatusBadRequest,
			wantBody: "unsupported file format",
		},
		{
			name:     "no file part",
			wantCode: http.StatusBadRequest,
			wantBody: media.ErrNoFile.Error(),
		},
		{
			name:     "too large",
			field:    "file",
			filename: "huge.jpg",
			content:  bytes.Repeat([]byte{0xff}, media.MaxUploadSize+2<<20),
			wantCode: http.StatusBadRequest,
			wantBody: "file is too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := new(MockUploader)
			if tt.upload != nil || tt.svcErr != nil {
				uploader.On("Upload", mock.Anything, tt.filename, int64(len(tt.content))).Return(tt.upload, tt.svcErr).Once()
			}

			router := chi.NewRouter()
			handler.NewUploadHandler(uploader).RegisterRoutes(router)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, multipartRequest(t, tt.field, tt.filename, tt.content))

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			assert.Contains(t, rr.Body.String(), tt.wantBody)
			uploader.AssertExpectations(t)
		})
	}
}
