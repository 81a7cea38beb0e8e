package http_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/bookstore/internal/banner"
	"github.com/vasiliy-maslov/bookstore/internal/cart"
	"github.com/vasiliy-maslov/bookstore/internal/faq"
	handler "github.com/vasiliy-maslov/bookstore/internal/handler/http"
	"github.com/vasiliy-maslov/bookstore/internal/user"
)

type routerFixture struct {
	users   *MockUserService
	carts   *MockCartService
	banners *MockBannerService
	router  chi.Router
}

func newRouterFixture(t *testing.T, requireAuth handler.Middleware) *routerFixture {
	t.Helper()
	responder, err := faq.Load("")
	require.NoError(t, err)

	f := &routerFixture{
		users:   new(MockUserService),
		carts:   new(MockCartService),
		banners: new(MockBannerService),
	}
	sessions := new(MockSessionStore)
	orders := new(MockOrderService)
	health := map[string]handler.PingFunc{"postgres": func(context.Context) error { return nil }}

	f.router = handler.NewRouter(handler.Handlers{
		Auth:    handler.NewAuthHandler(f.users, sessions, time.Hour),
		Books:   handler.NewBookHandler(new(MockCatalogService)),
		Cart:    handler.NewCartHandler(f.carts),
		Orders:  handler.NewOrderHandler(orders),
		Admin:   handler.NewAdminHandler(f.users, orders, new(MockReporter)),
		Banners: handler.NewBannerHandler(f.banners),
		Upload:  handler.NewUploadHandler(new(MockUploader)),
		Chat:    handler.NewChatHandler(responder),
		Health:  handler.NewHealthHandler(health),
	}, requireAuth, 5*time.Second)
	return f
}

func TestRouter_PublicRoutes(t *testing.T) {
	f := newRouterFixture(t, handler.NewAuthenticator(new(MockSessionStore), new(MockUserService)).RequireAuth)
	f.banners.On("ListActive", mock.Anything, banner.Position("")).Return([]banner.Banner{}, nil)

	assert.Equal(t, http.StatusOK, serve(t, f.router, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, serve(t, f.router, http.MethodGet, "/api/banners", nil).Code)

	rr := serve(t, f.router, http.MethodPost, "/api/chatbot", handler.ChatRequest{Question: "how do I pay?"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, decodeBody[handler.ChatResponse](t, rr).Answer)
	assert.NotEmpty(t, rr.Header().Get("Content-Type"))
}

func TestRouter_ProtectedRoutesNeedSession(t *testing.T) {
	f := newRouterFixture(t, handler.NewAuthenticator(new(MockSessionStore), new(MockUserService)).RequireAuth)

	for _, target := range []string{"/api/cart", "/api/orders", "/api/auth/me", "/api/admin/users"} {
		rr := serve(t, f.router, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, target)
	}
}

func TestRouter_AdminRoutesNeedAdminRole(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	f := newRouterFixture(t, asUser(userID, user.RoleUser))
	f.carts.On("GetCart", mock.Anything, userID).Return(cart.NewCart(nil), nil)

	assert.Equal(t, http.StatusOK, serve(t, f.router, http.MethodGet, "/api/cart", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(t, f.router, http.MethodGet, "/api/admin/users", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(t, f.router, http.MethodPost, "/api/admin/books", `{}`).Code)
	f.users.AssertNotCalled(t, "ListUsers", mock.Anything)

	admin := newRouterFixture(t, asUser(uuid.Must(uuid.NewV4()), user.RoleAdmin))
	admin.users.On("ListUsers", mock.Anything).Return([]user.User{}, nil).Once()
	assert.Equal(t, http.StatusOK, serve(t, admin.router, http.MethodGet, "/api/admin/users", nil).Code)
	admin.users.AssertExpectations(t)
}
