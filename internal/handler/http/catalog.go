package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/masumislambadsha/zavisoft/internal/catalog"
	"github.com/masumislambadsha/zavisoft/internal/service"
	"github.com/masumislambadsha/zavisoft/pkg/httputil"
	"github.com/masumislambadsha/zavisoft/pkg/pagination"
)

// maxRelatedLimit bounds ?limit= on the related products endpoint.
const maxRelatedLimit = 12

// CatalogHandler serves the read-only catalog pages.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: logger}
}

// ListProducts handles GET /api/v1/catalog/products?page=&per_page=&category_id=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	categoryID := 0
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, ok := httputil.ParsePositiveInt(w, "category_id", raw)
		if !ok {
			return
		}
		categoryID = id
	}

	res, err := h.service.ListProducts(r.Context(), pagination.FromRequest(r), categoryID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: res})
}

// NewDrops handles GET /api/v1/catalog/products/new-drops
func (h *CatalogHandler) NewDrops(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.NewDrops(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// GetProduct handles GET /api/v1/catalog/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePositiveInt(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	page, err := h.service.ProductPage(r.Context(), sessionID(r), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// Related handles GET /api/v1/catalog/products/{id}/related?limit=
func (h *CatalogHandler) Related(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePositiveInt(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	limit := catalog.DefaultRelatedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = min(v, maxRelatedLimit)
		}
	}

	products, err := h.service.Related(r.Context(), id, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// Categories handles GET /api/v1/catalog/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}
