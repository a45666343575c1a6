package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/masumislambadsha/zavisoft/internal/catalog"
	"github.com/masumislambadsha/zavisoft/internal/domain"
	"github.com/masumislambadsha/zavisoft/internal/store"
	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
	"github.com/masumislambadsha/zavisoft/pkg/pagination"
)

// ProductPage is everything the product detail view shows.
type ProductPage struct {
	Product    *domain.Product  `json:"product"`
	Related    []domain.Product `json:"related"`
	Wishlisted bool             `json:"wishlisted"`
	Sizes      []int            `json:"sizes"`
	Colors     []string         `json:"colors"`
	Color      string           `json:"default_color"`
}

// CatalogService serves catalog reads for the storefront pages.
type CatalogService struct {
	catalog Catalog
	opener  Opener
	logger  *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(catalog Catalog, opener Opener, logger *slog.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, opener: opener, logger: logger}
}

// ListProducts returns one page of products, optionally within a category.
func (s *CatalogService) ListProducts(ctx context.Context, params pagination.Params, categoryID int) (pagination.Result[domain.Product], error) {
	if categoryID < 0 {
		return pagination.Result[domain.Product]{}, apperrors.InvalidInput("category id must not be negative")
	}
	products, err := s.catalog.ListProducts(ctx, catalog.Query{
		Offset:     params.Offset,
		Limit:      params.Limit,
		CategoryID: categoryID,
	})
	if err != nil {
		return pagination.Result[domain.Product]{}, err
	}
	return pagination.NewResult(products, params), nil
}

// NewDrops returns the products featured on the home page.
func (s *CatalogService) NewDrops(ctx context.Context) ([]domain.Product, error) {
	return s.catalog.NewDrops(ctx)
}

// Categories returns every category.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.catalog.ListCategories(ctx)
}

// Related returns products from the same category as productID.
func (s *CatalogService) Related(ctx context.Context, productID, limit int) ([]domain.Product, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.catalog.RelatedProducts(ctx, product, limit)
}

// ProductPage loads a product with its related products and variant
// options. With a session, Wishlisted reports whether it is saved; a
// related-products or wishlist failure is logged and does not fail the page.
func (s *CatalogService) ProductPage(ctx context.Context, sessionID string, productID int) (*ProductPage, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	page := &ProductPage{
		Product: product,
		Related: []domain.Product{},
		Sizes:   domain.AvailableSizes(),
		Colors:  domain.AvailableColors,
		Color:   domain.DefaultColor,
	}

	related, err := s.catalog.RelatedProducts(ctx, product, catalog.DefaultRelatedLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load related products",
			slog.Int("product_id", productID),
			slog.String("error", err.Error()),
		)
	} else {
		page.Related = related
	}

	if sessionID != "" {
		page.Wishlisted = s.wishlisted(ctx, sessionID, productID)
	}
	return page, nil
}

func (s *CatalogService) wishlisted(ctx context.Context, sessionID string, productID int) bool {
	w, err := s.opener.Wishlist(ctx, sessionID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load wishlist for product page",
			slog.String("session_id", sessionID),
			slog.Bool("corrupted", errors.Is(err, store.ErrCorruptedState)),
			slog.String("error", err.Error()),
		)
		return false
	}
	return w.Contains(productID)
}
