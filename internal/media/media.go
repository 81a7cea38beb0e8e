// Package media stores uploaded book images in an S3-compatible bucket.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxUploadSize = 5 << 20
	folder        = "books"
)

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

var (
	ErrNoFile            = errors.New("no file uploaded")
	ErrFileTooLarge      = fmt.Errorf("file is too large, maximum size is %d MB", MaxUploadSize>>20)
	ErrUnsupportedFormat = errors.New("unsupported file format, allowed: jpg, jpeg, png, gif, webp")
)

type ObjectStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, name string, ttl time.Duration) (string, error)
	Remove(ctx context.Context, name string) error
}

type Upload struct {
	URL    string `json:"url"`
	Object string `json:"object"`
}

type Uploader struct {
	store  ObjectStore
	urlTTL time.Duration
}

func NewUploader(store ObjectStore, urlTTL time.Duration) *Uploader {
	return &Uploader{store: store, urlTTL: urlTTL}
}

// Extension returns the lower-cased extension of filename if it is an accepted image type.
func Extension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(strings.TrimSpace(filename)), "."))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedFormat
	}
	return ext, nil
}

func contentType(ext string) string {
	if ext == "jpg" {
		return "image/jpeg"
	}
	return "image/" + ext
}

func (u *Uploader) Upload(ctx context.Context, filename string, r io.Reader, size int64) (*Upload, error) {
	if filename == "" || size == 0 {
		return nil, ErrNoFile
	}
	if size > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	ext, err := Extension(filename)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("media: failed to generate object name: %w", err)
	}
	object := fmt.Sprintf("%s/%s.%s", folder, id, ext)

	if err := u.store.Put(ctx, object, r, size, contentType(ext)); err != nil {
		log.Error().Err(err).Str("object", object).Msg("media: failed to store object")
		return nil, fmt.Errorf("media: failed to upload %s: %w", object, err)
	}

	url, err := u.store.PresignedURL(ctx, object, u.urlTTL)
	if err != nil {
		log.Error().Err(err).Str("object", object).Msg("media: failed to presign object url")
		return nil, fmt.Errorf("media: failed to presign %s: %w", object, err)
	}

	log.Info().Str("object", object).Int64("size", size).Msg("media: image uploaded")
	return &Upload{URL: url, Object: object}, nil
}

func (u *Uploader) Delete(ctx context.Context, object string) error {
	if err := u.store.Remove(ctx, object); err != nil {
		return fmt.Errorf("media: failed to delete %s: %w", object, err)
	}
	return nil
}
