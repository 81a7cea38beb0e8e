package http_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/bookstore/internal/banner"
	handler "github.com/vasiliy-maslov/bookstore/internal/handler/http"
)

func newBannerRouter(svc *MockBannerService) chi.Router {
	h := handler.NewBannerHandler(svc)
	router := chi.NewRouter()
	h.RegisterRoutes(router)
	router.Route("/admin", h.RegisterAdminRoutes)
	return router
}

func TestBannerHandler_ListActive(t *testing.T) {
	svc := new(MockBannerService)
	svc.On("ListActive", mock.Anything, banner.PositionSideTop).
		Return([]banner.Banner{{ID: uuid.Must(uuid.NewV4()), Title: "Sale", Position: banner.PositionSideTop, IsActive: true}}, nil).Once()
	svc.On("ListActive", mock.Anything, banner.Position("")).Return([]banner.Banner{}, nil).Once()

	rr := serve(t, newBannerRouter(svc), http.MethodGet, "/banners?position=side_top", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeBody[[]banner.Banner](t, rr)
	require.Len(t, got, 1)
	assert.Equal(t, "Sale", got[0].Title)

	rr = serve(t, newBannerRouter(svc), http.MethodGet, "/banners", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestBannerHandler_Create(t *testing.T) {
	t.Run("defaults to active", func(t *testing.T) {
		svc := new(MockBannerService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(b *banner.Banner) bool {
			return b.Title == "Sale" && b.IsActive && b.Position == banner.PositionMain
		})).Return(&banner.Banner{ID: uuid.Must(uuid.NewV4()), Title: "Sale", IsActive: true}, nil).Once()

		rr := serve(t, newBannerRouter(svc), http.MethodPost, "/admin/banners",
			`{"title":"Sale","image_url":"https://cdn.example.com/sale.png","position":"main"}`)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("rejects bad colour and position", func(t *testing.T) {
		svc := new(MockBannerService)
		rr := serve(t, newBannerRouter(svc), http.MethodPost, "/admin/banners",
			`{"title":"Sale","image_url":"x.png","bg_color":"red","position":"footer"}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)

		resp := decodeBody[handler.ValidationErrorResponse](t, rr)
		assert.Equal(t, "Must be a hex colour like #rrggbb", resp.Details["bg_color"])
		assert.Equal(t, "Must be one of: main side_top side_bottom", resp.Details["position"])
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestBannerHandler_UpdateToggleDelete(t *testing.T) {
	svc := new(MockBannerService)
	id := uuid.Must(uuid.NewV4())
	order := 3
	sideBottom := banner.PositionSideBottom

	svc.On("Update", mock.Anything, id, banner.Update{DisplayOrder: &order, Position: &sideBottom}).
		Return(&banner.Banner{ID: id, DisplayOrder: 3, Position: sideBottom}, nil).Once()
	svc.On("Toggle", mock.Anything, id).Return(&banner.Banner{ID: id, IsActive: false}, nil).Once()
	svc.On("Delete", mock.Anything, id).Return(nil).Once()
	missing := uuid.Must(uuid.NewV4())
	svc.On("Get", mock.Anything, missing).Return(nil, banner.ErrNotFound).Once()

	router := newBannerRouter(svc)

	rr := serve(t, router, http.MethodPut, "/admin/banners/"+id.String(), `{"display_order":3,"position":"side_bottom"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = serve(t, router, http.MethodPut, "/admin/banners/"+id.String()+"/toggle", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeBody[banner.Banner](t, rr).IsActive)

	rr = serve(t, router, http.MethodDelete, "/admin/banners/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(t, router, http.MethodGet, "/admin/banners/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	svc.AssertExpectations(t)
}

func TestBannerHandler_AdminList(t *testing.T) {
	svc := new(MockBannerService)
	svc.On("List", mock.Anything, 1, banner.DefaultPerPage).
		Return(&banner.Page{Banners: []banner.Banner{}, Total: 0, Page: 1, PerPage: banner.DefaultPerPage}, nil).Once()

	rr := serve(t, newBannerRouter(svc), http.MethodGet, "/admin/banners", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"banners":[],"total":0,"page":1,"per_page":20,"pages":0}`, rr.Body.String())
}
