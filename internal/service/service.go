package service

import (
	"context"

	"github.com/masumislambadsha/zavisoft/internal/catalog"
	"github.com/masumislambadsha/zavisoft/internal/domain"
	"github.com/masumislambadsha/zavisoft/internal/store"
	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
)

// Catalog is the read-only product source. *catalog.Client satisfies it.
type Catalog interface {
	ListProducts(ctx context.Context, q catalog.Query) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	RelatedProducts(ctx context.Context, p *domain.Product, limit int) ([]domain.Product, error)
	NewDrops(ctx context.Context) ([]domain.Product, error)
}

var _ Catalog = (*catalog.Client)(nil)

// Opener constructs per-session stores. *store.Opener satisfies it.
type Opener interface {
	Session(sessionID string) *store.Session
	Cart(ctx context.Context, sessionID string) (*store.CartStore, error)
	Wishlist(ctx context.Context, sessionID string) (*store.WishlistStore, error)
}

var _ Opener = (*store.Opener)(nil)

func requireSession(sessionID string) error {
	if sessionID == "" {
		return apperrors.Unauthorized("session id is required")
	}
	return nil
}
