package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/masumislambadsha/zavisoft/internal/service"
	"github.com/masumislambadsha/zavisoft/pkg/httputil"
	"github.com/masumislambadsha/zavisoft/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: svc, logger: logger}
}

// AddToWishlistRequest is the JSON request body for saving a product.
type AddToWishlistRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

type containsResponse struct {
	ProductID  int  `json:"product_id"`
	Wishlisted bool `json:"wishlisted"`
}

// List handles GET /api/v1/wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.List(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Clear handles DELETE /api/v1/wishlist
func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), sessionID(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}

// Add handles POST /api/v1/wishlist/items
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddToWishlistRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.Add(r.Context(), sessionID(r), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Contains handles GET /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParsePositiveInt(w, "productId", chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	saved, err := h.service.Contains(r.Context(), sessionID(r), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: containsResponse{ProductID: productID, Wishlisted: saved},
	})
}

// Remove handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParsePositiveInt(w, "productId", chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	view, err := h.service.Remove(r.Context(), sessionID(r), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Toggle handles POST /api/v1/wishlist/items/{productId}/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParsePositiveInt(w, "productId", chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	res, err := h.service.Toggle(r.Context(), sessionID(r), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: res})
}
