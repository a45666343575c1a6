package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/masumislambadsha/zavisoft/internal/domain"
	"github.com/masumislambadsha/zavisoft/internal/service"
	"github.com/masumislambadsha/zavisoft/pkg/httputil"
	"github.com/masumislambadsha/zavisoft/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a variant to the cart.
// Size is checked by the service so that a missing size gets the storefront's
// own message.
type AddItemRequest struct {
	ProductID int    `json:"product_id" validate:"required,gt=0"`
	Size      int    `json:"size"`
	Color     string `json:"color" validate:"omitempty,max=32"`
}

// UpdateQuantityRequest is the JSON request body for updating a line's
// quantity. The field must be present; an explicit 0 removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=100"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), sessionID(r), service.AddItemInput{
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     strings.ToLower(strings.TrimSpace(req.Color)),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}/{size}/{color}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	key, ok := lineKey(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), sessionID(r), key, *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}/{size}/{color}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	key, ok := lineKey(w, r)
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), sessionID(r), key)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), sessionID(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}

// lineKey reads the {productId}/{size}/{color} path segments.
func lineKey(w http.ResponseWriter, r *http.Request) (domain.LineKey, bool) {
	productID, ok := httputil.ParsePositiveInt(w, "productId", chi.URLParam(r, "productId"))
	if !ok {
		return domain.LineKey{}, false
	}
	size, ok := httputil.ParsePositiveInt(w, "size", chi.URLParam(r, "size"))
	if !ok {
		return domain.LineKey{}, false
	}
	return domain.LineKey{
		ProductID: productID,
		Size:      size,
		Color:     strings.ToLower(chi.URLParam(r, "color")),
	}, true
}
