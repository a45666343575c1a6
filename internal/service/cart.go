package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/masumislambadsha/zavisoft/internal/domain"
	"github.com/masumislambadsha/zavisoft/internal/event"
	"github.com/masumislambadsha/zavisoft/internal/store"
	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
)

// MaxQuantityPerItem is the largest quantity a single line may reach through
// the API, by repeated adds or by setting it.
const MaxQuantityPerItem = 100

// AddItemInput selects a product variant to add to the cart.
type AddItemInput struct {
	ProductID int    `json:"product_id" validate:"gt=0"`
	Size      int    `json:"size"`
	Color     string `json:"color"`
}

// CartView is a cart together with its order summary.
type CartView struct {
	Items   []domain.CartLineItem `json:"items"`
	Summary domain.OrderSummary   `json:"summary"`
}

// CartService implements the business logic for cart operations.
type CartService struct {
	opener      Opener
	catalog     Catalog
	producer    *event.Producer
	logger      *slog.Logger
	deliveryFee int64
}

// NewCartService creates a new cart service.
func NewCartService(opener Opener, catalog Catalog, producer *event.Producer, logger *slog.Logger, deliveryFee int64) *CartService {
	return &CartService{
		opener:      opener,
		catalog:     catalog,
		producer:    producer,
		logger:      logger,
		deliveryFee: deliveryFee,
	}
}

func (s *CartService) view(c *store.CartStore) *CartView {
	cart := c.Snapshot()
	if cart.Items == nil {
		cart.Items = []domain.CartLineItem{}
	}
	return &CartView{Items: cart.Items, Summary: domain.NewOrderSummary(cart, s.deliveryFee)}
}

func (s *CartService) open(ctx context.Context, sessionID string) (*store.CartStore, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	c, err := s.opener.Cart(ctx, sessionID)
	if err != nil {
		return nil, store.AsAppError(err)
	}
	return c, nil
}

// GetCart returns the session's cart. A session that never added anything
// has an empty cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*CartView, error) {
	c, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// AddItem adds one unit of the chosen variant. The size/color selection is
// checked before the catalog or the cart is touched.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*CartView, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if input.ProductID <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}
	color, err := domain.ValidateVariant(input.Size, input.Color)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	c, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	line := product.LineItem(input.Size, color)
	if lineQuantity(c, line.Key()) >= MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}
	if err := c.AddItem(ctx, line); err != nil {
		return nil, fmt.Errorf("add cart item: %w", store.AsAppError(err))
	}

	s.publishUpdated(ctx, sessionID, "add", c)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.Int("product_id", input.ProductID),
		slog.Int("size", input.Size),
		slog.String("color", color),
		slog.Int("item_count", c.ItemCount()),
	)

	return s.view(c), nil
}

// UpdateQuantity sets the quantity of the line for key. A quantity of zero
// or less removes it; an unknown key leaves the cart unchanged.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, key domain.LineKey, quantity int) (*CartView, error) {
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	c, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	before := c.Items()
	if err := c.SetQuantity(ctx, key, quantity); err != nil {
		return nil, fmt.Errorf("set cart quantity: %w", store.AsAppError(err))
	}

	if !slices.Equal(before, c.Items()) {
		action := "set_quantity"
		if quantity <= 0 {
			action = "remove"
		}
		s.publishUpdated(ctx, sessionID, action, c)

		s.logger.InfoContext(ctx, "cart item quantity updated",
			slog.String("session_id", sessionID),
			slog.Int("product_id", key.ProductID),
			slog.Int("size", key.Size),
			slog.String("color", key.Color),
			slog.Int("quantity", quantity),
		)
	}

	return s.view(c), nil
}

// RemoveItem deletes the line for key. An unknown key leaves the cart
// unchanged.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, key domain.LineKey) (*CartView, error) {
	c, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	before := len(c.Items())
	if err := c.RemoveItem(ctx, key); err != nil {
		return nil, fmt.Errorf("remove cart item: %w", store.AsAppError(err))
	}

	if len(c.Items()) != before {
		s.publishUpdated(ctx, sessionID, "remove", c)

		s.logger.InfoContext(ctx, "item removed from cart",
			slog.String("session_id", sessionID),
			slog.Int("product_id", key.ProductID),
			slog.Int("size", key.Size),
			slog.String("color", key.Color),
		)
	}

	return s.view(c), nil
}

// Clear empties the cart. It also replaces a corrupted cart, so it works
// when every other cart operation reports CORRUPTED_STATE.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}

	c := s.opener.Session(sessionID).Cart
	herr := c.Hydrate(ctx)
	if herr != nil && !errors.Is(herr, store.ErrCorruptedState) {
		return herr
	}
	hadContent := herr != nil || c.ItemCount() > 0

	if err := c.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	if !hadContent {
		return nil
	}

	if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
		slog.Bool("was_corrupted", herr != nil),
	)
	return nil
}

func lineQuantity(c *store.CartStore, key domain.LineKey) int {
	cart := c.Snapshot()
	if i := cart.FindItemIndex(key); i >= 0 {
		return cart.Items[i].Quantity
	}
	return 0
}

func (s *CartService) publishUpdated(ctx context.Context, sessionID, action string, c *store.CartStore) {
	if err := s.producer.PublishCartUpdated(ctx, sessionID, action, c.Snapshot()); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}
