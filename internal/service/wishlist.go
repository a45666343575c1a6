package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/masumislambadsha/zavisoft/internal/domain"
	"github.com/masumislambadsha/zavisoft/internal/event"
	"github.com/masumislambadsha/zavisoft/internal/store"
	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
)

// Messages returned by Toggle.
const (
	MessageAddedToWishlist     = "added to wishlist"
	MessageRemovedFromWishlist = "removed from wishlist"
)

// AddToWishlistInput selects the product to save.
type AddToWishlistInput struct {
	ProductID int `json:"product_id" validate:"gt=0"`
}

// WishlistView is the session's wishlist.
type WishlistView struct {
	Entries []domain.WishlistEntry `json:"entries"`
	Count   int                    `json:"count"`
}

// ToggleResult reports what a toggle did.
type ToggleResult struct {
	ProductID int    `json:"product_id"`
	Added     bool   `json:"added"`
	Count     int    `json:"count"`
	Message   string `json:"message"`
}

// WishlistService implements the business logic for wishlist operations.
type WishlistService struct {
	opener   Opener
	catalog  Catalog
	producer *event.Producer
	logger   *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(opener Opener, catalog Catalog, producer *event.Producer, logger *slog.Logger) *WishlistService {
	return &WishlistService{opener: opener, catalog: catalog, producer: producer, logger: logger}
}

func (s *WishlistService) open(ctx context.Context, sessionID string) (*store.WishlistStore, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	w, err := s.opener.Wishlist(ctx, sessionID)
	if err != nil {
		return nil, store.AsAppError(err)
	}
	return w, nil
}

func wishlistView(w *store.WishlistStore) *WishlistView {
	entries := w.Entries()
	if entries == nil {
		entries = []domain.WishlistEntry{}
	}
	return &WishlistView{Entries: entries, Count: len(entries)}
}

// List returns the session's wishlist.
func (s *WishlistService) List(ctx context.Context, sessionID string) (*WishlistView, error) {
	w, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return wishlistView(w), nil
}

// Contains reports whether productID is saved.
func (s *WishlistService) Contains(ctx context.Context, sessionID string, productID int) (bool, error) {
	w, err := s.open(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return w.Contains(productID), nil
}

// Add saves productID with a snapshot of its catalog data. Saving a product
// twice is a no-op.
func (s *WishlistService) Add(ctx context.Context, sessionID string, productID int) (*WishlistView, error) {
	if productID <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}
	w, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if w.Contains(productID) {
		return wishlistView(w), nil
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := w.Add(ctx, product.WishlistEntry()); err != nil {
		return nil, fmt.Errorf("add wishlist entry: %w", store.AsAppError(err))
	}

	s.changed(ctx, sessionID, "add", productID, w)
	return wishlistView(w), nil
}

// Remove deletes productID from the wishlist. An unknown product is a no-op.
func (s *WishlistService) Remove(ctx context.Context, sessionID string, productID int) (*WishlistView, error) {
	w, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !w.Contains(productID) {
		return wishlistView(w), nil
	}
	if err := w.Remove(ctx, productID); err != nil {
		return nil, fmt.Errorf("remove wishlist entry: %w", store.AsAppError(err))
	}

	s.changed(ctx, sessionID, "remove", productID, w)
	return wishlistView(w), nil
}

// Toggle saves productID when it is not saved and removes it otherwise. The
// catalog is only consulted when the product is being added.
func (s *WishlistService) Toggle(ctx context.Context, sessionID string, productID int) (*ToggleResult, error) {
	if productID <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}
	w, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	entry := domain.WishlistEntry{}
	for _, e := range w.Entries() {
		if e.ProductID == productID {
			entry = e
			break
		}
	}
	if entry.ProductID == 0 {
		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		entry = product.WishlistEntry()
	}

	added, err := w.Toggle(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("toggle wishlist entry: %w", store.AsAppError(err))
	}

	result := &ToggleResult{ProductID: productID, Added: added, Count: w.Count(), Message: MessageRemovedFromWishlist}
	action := "remove"
	if added {
		result.Message = MessageAddedToWishlist
		action = "add"
	}

	s.changed(ctx, sessionID, action, productID, w)
	return result, nil
}

// Clear empties the wishlist. Like CartService.Clear it also replaces a
// corrupted wishlist, so it is the way out of CORRUPTED_STATE.
func (s *WishlistService) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}

	w := s.opener.Session(sessionID).Wishlist
	herr := w.Hydrate(ctx)
	if herr != nil && !errors.Is(herr, store.ErrCorruptedState) {
		return herr
	}
	hadContent := herr != nil || w.Count() > 0

	if err := w.Clear(ctx); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	if !hadContent {
		return nil
	}

	if err := s.producer.PublishWishlistUpdated(ctx, sessionID, "clear", 0, nil); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wishlist cleared",
		slog.String("session_id", sessionID),
		slog.Bool("was_corrupted", herr != nil),
	)
	return nil
}

func (s *WishlistService) changed(ctx context.Context, sessionID, action string, productID int, w *store.WishlistStore) {
	if err := s.producer.PublishWishlistUpdated(ctx, sessionID, action, productID, w.Entries()); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wishlist updated",
		slog.String("session_id", sessionID),
		slog.String("action", action),
		slog.Int("product_id", productID),
		slog.Int("count", w.Count()),
	)
}
