package store

import (
	"context"
	"slices"

	"github.com/masumislambadsha/zavisoft/internal/domain"
)

const wishlistStoreName = "wishlist"

// WishlistStore owns one session's wishlist, persisted under WishlistKey.
type WishlistStore struct {
	c *collection[domain.WishlistEntry]
}

// NewWishlistStore creates a store over kv.
func NewWishlistStore(kv KV, opts Options) *WishlistStore {
	return &WishlistStore{c: newCollection(kv, WishlistKey, opts, decodeWishlist)}
}

// Hydrate loads the persisted wishlist once.
func (s *WishlistStore) Hydrate(ctx context.Context) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.hydrate(ctx)
}

// Add saves entry. A product already saved writes nothing.
func (s *WishlistStore) Add(ctx context.Context, entry domain.WishlistEntry) error {
	if err := checkEntry(&entry); err != nil {
		return err
	}

	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.update(ctx, wishlistStoreName, "add", addEntry(entry))
}

func addEntry(entry domain.WishlistEntry) func([]domain.WishlistEntry) ([]domain.WishlistEntry, bool) {
	return func(entries []domain.WishlistEntry) ([]domain.WishlistEntry, bool) {
		w := domain.Wishlist{Entries: entries}
		if w.Contains(entry.ProductID) {
			return entries, false
		}
		return append(entries, entry), true
	}
}

// Remove deletes the entry for productID. An absent product writes nothing.
func (s *WishlistStore) Remove(ctx context.Context, productID int) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.update(ctx, wishlistStoreName, "remove", removeEntry(productID))
}

func removeEntry(productID int) func([]domain.WishlistEntry) ([]domain.WishlistEntry, bool) {
	return func(entries []domain.WishlistEntry) ([]domain.WishlistEntry, bool) {
		w := domain.Wishlist{Entries: entries}
		i := w.IndexOf(productID)
		if i < 0 {
			return entries, false
		}
		return slices.Delete(entries, i, i+1), true
	}
}

// Toggle removes entry when it is saved and adds it otherwise. Membership is
// read before mutating; added reports which branch ran.
func (s *WishlistStore) Toggle(ctx context.Context, entry domain.WishlistEntry) (added bool, err error) {
	if err := checkEntry(&entry); err != nil {
		return false, err
	}

	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	err = s.c.update(ctx, wishlistStoreName, "toggle", func(entries []domain.WishlistEntry) ([]domain.WishlistEntry, bool) {
		w := domain.Wishlist{Entries: entries}
		added = !w.Contains(entry.ProductID)
		if added {
			return addEntry(entry)(entries)
		}
		return removeEntry(entry.ProductID)(entries)
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// Clear empties the wishlist.
func (s *WishlistStore) Clear(ctx context.Context) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.clear(ctx, wishlistStoreName)
}

// Contains reports whether productID is saved.
func (s *WishlistStore) Contains(productID int) bool {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	w := domain.Wishlist{Entries: s.c.items}
	return w.Contains(productID)
}

// Count returns the number of saved products.
func (s *WishlistStore) Count() int {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return len(s.c.items)
}

// Entries returns a copy of the saved products in insertion order.
func (s *WishlistStore) Entries() []domain.WishlistEntry {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.snapshot()
}
