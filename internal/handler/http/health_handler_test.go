package http_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	handler "github.com/vasiliy-maslov/bookstore/internal/handler/http"
)

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		checks   map[string]handler.PingFunc
		wantCode int
		want     handler.HealthResponse
	}{
		{
			name:     "all up",
			checks:   map[string]handler.PingFunc{"postgres": ok, "redis": ok},
			wantCode: http.StatusOK,
			want:     handler.HealthResponse{Status: "ok", Checks: map[string]string{"postgres": "ok", "redis": "ok"}},
		},
		{
			name:     "redis down",
			checks:   map[string]handler.PingFunc{"postgres": ok, "redis": down},
			wantCode: http.StatusServiceUnavailable,
			want:     handler.HealthResponse{Status: "degraded", Checks: map[string]string{"postgres": "ok", "redis": "unavailable"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := chi.NewRouter()
			handler.NewHealthHandler(tt.checks).RegisterRoutes(router)

			rr := serve(t, router, http.MethodGet, "/health", nil)
			require.Equal(t, tt.wantCode, rr.Code)
			if diff := cmp.Diff(tt.want, decodeBody[handler.HealthResponse](t, rr)); diff != "" {
				t.Errorf("health response mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
