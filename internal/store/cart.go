package store

import (
	"context"
	"slices"

	"github.com/masumislambadsha/zavisoft/internal/domain"
)

const cartStoreName = "cart"

// CartStore owns one session's cart. All mutation goes through it; every
// effective change is written back under CartKey before it becomes visible.
type CartStore struct {
	c *collection[domain.CartLineItem]
}

// NewCartStore creates a store over kv. Nothing is read until Hydrate or the
// first mutation.
func NewCartStore(kv KV, opts Options) *CartStore {
	return &CartStore{c: newCollection(kv, CartKey, opts, decodeCart)}
}

// Hydrate loads the persisted cart once. Later calls are no-ops unless the
// blob was corrupted under RecoverFail, in which case the error repeats.
func (s *CartStore) Hydrate(ctx context.Context) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.hydrate(ctx)
}

// AddItem adds one unit of item. A line with the same key gets its quantity
// incremented; otherwise a new line with quantity 1 is appended. The catalog
// snapshot of an existing line is kept as first added. An item missing its
// id, title, size or color is rejected before anything is read or written.
func (s *CartStore) AddItem(ctx context.Context, item domain.CartLineItem) error {
	item.Quantity = 1
	if err := checkEntry(&item); err != nil {
		return err
	}

	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.update(ctx, cartStoreName, "add", func(items []domain.CartLineItem) ([]domain.CartLineItem, bool) {
		cart := domain.Cart{Items: items}
		if i := cart.FindItemIndex(item.Key()); i >= 0 {
			items[i].Quantity++
			return items, true
		}
		return append(items, item), true
	})
}

// RemoveItem deletes the line for key. An absent key writes nothing.
func (s *CartStore) RemoveItem(ctx context.Context, key domain.LineKey) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.update(ctx, cartStoreName, "remove", removeLine(key))
}

func removeLine(key domain.LineKey) func([]domain.CartLineItem) ([]domain.CartLineItem, bool) {
	return func(items []domain.CartLineItem) ([]domain.CartLineItem, bool) {
		cart := domain.Cart{Items: items}
		i := cart.FindItemIndex(key)
		if i < 0 {
			return items, false
		}
		return slices.Delete(items, i, i+1), true
	}
}

// SetQuantity overwrites the quantity of the line for key. A quantity of
// zero or less removes the line; an absent key writes nothing.
func (s *CartStore) SetQuantity(ctx context.Context, key domain.LineKey, quantity int) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if quantity <= 0 {
		return s.c.update(ctx, cartStoreName, "remove", removeLine(key))
	}

	return s.c.update(ctx, cartStoreName, "set_quantity", func(items []domain.CartLineItem) ([]domain.CartLineItem, bool) {
		cart := domain.Cart{Items: items}
		i := cart.FindItemIndex(key)
		if i < 0 || items[i].Quantity == quantity {
			return items, false
		}
		items[i].Quantity = quantity
		return items, true
	})
}

// Clear empties the cart. It does not need a readable blob, so it is the
// way out of a corrupted cart under RecoverFail.
func (s *CartStore) Clear(ctx context.Context) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.clear(ctx, cartStoreName)
}

// Items returns a copy of the lines in insertion order.
func (s *CartStore) Items() []domain.CartLineItem {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.snapshot()
}

// Snapshot returns a copy of the whole cart.
func (s *CartStore) Snapshot() *domain.Cart {
	return &domain.Cart{Items: s.Items()}
}

// ItemCount returns the sum of quantities.
func (s *CartStore) ItemCount() int {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	cart := domain.Cart{Items: s.c.items}
	return cart.ItemCount()
}

// Subtotal returns the sum of price * quantity in cents.
func (s *CartStore) Subtotal() int64 {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	cart := domain.Cart{Items: s.c.items}
	return cart.Subtotal()
}
