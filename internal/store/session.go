package store

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/masumislambadsha/zavisoft/internal/repository"
)

// Session bundles the cart and wishlist of one storefront session over the
// same scoped namespace.
type Session struct {
	ID       string
	Cart     *CartStore
	Wishlist *WishlistStore
}

const sessionLockStripes = 256

// Opener constructs session stores over a shared backend. Stores it opens
// for the same session share a write lock, so overlapping requests from one
// process take turns instead of racing to the backend.
type Opener struct {
	kv     repository.KV
	policy RecoveryPolicy
	logger *slog.Logger
	locks  [sessionLockStripes]sync.Mutex
}

// NewOpener creates an Opener. policy applies to every store it builds.
func NewOpener(kv repository.KV, policy RecoveryPolicy, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{kv: kv, policy: policy, logger: logger}
}

func (o *Opener) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &o.locks[h.Sum32()%sessionLockStripes]
}

// Session builds the stores for sessionID without reading anything.
func (o *Opener) Session(sessionID string) *Session {
	scoped := repository.Scope(o.kv, sessionID)
	opts := Options{
		Policy: o.policy,
		Logger: o.logger.With(slog.String("session_id", sessionID)),
		Lock:   o.lockFor(sessionID),
	}
	return &Session{
		ID:       sessionID,
		Cart:     NewCartStore(scoped, opts),
		Wishlist: NewWishlistStore(scoped, opts),
	}
}

// Cart builds and hydrates only the cart for sessionID.
func (o *Opener) Cart(ctx context.Context, sessionID string) (*CartStore, error) {
	c := o.Session(sessionID).Cart
	if err := c.Hydrate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Wishlist builds and hydrates only the wishlist for sessionID.
func (o *Opener) Wishlist(ctx context.Context, sessionID string) (*WishlistStore, error) {
	w := o.Session(sessionID).Wishlist
	if err := w.Hydrate(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
