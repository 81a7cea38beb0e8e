package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth    *AuthHandler
	Books   *BookHandler
	Cart    *CartHandler
	Orders  *OrderHandler
	Admin   *AdminHandler
	Banners *BannerHandler
	Upload  *UploadHandler
	Chat    *ChatHandler
	Health  *HealthHandler
}

type Middleware = func(http.Handler) http.Handler

// NewRouter mounts every handler under /api. requireAuth guards user routes;
// admin routes additionally pass through RequireAdmin.
func NewRouter(h Handlers, requireAuth Middleware, timeout time.Duration) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(RequestLogger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(timeout))

	h.Health.RegisterRoutes(router)

	router.Route("/api", func(api chi.Router) {
		h.Auth.RegisterRoutes(api, requireAuth)
		h.Books.RegisterRoutes(api)
		h.Banners.RegisterRoutes(api)
		h.Chat.RegisterRoutes(api)

		api.Group(func(authed chi.Router) {
			authed.Use(requireAuth)
			h.Cart.RegisterRoutes(authed)
			h.Orders.RegisterRoutes(authed)

			authed.Route("/admin", func(admin chi.Router) {
				admin.Use(RequireAdmin)
				h.Admin.RegisterRoutes(admin)
				h.Books.RegisterAdminRoutes(admin)
				h.Banners.RegisterAdminRoutes(admin)
				h.Upload.RegisterRoutes(admin)
			})
		})
	})

	return router
}
