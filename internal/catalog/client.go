package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/masumislambadsha/zavisoft/internal/domain"
	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
	"github.com/masumislambadsha/zavisoft/pkg/httpclient"
	"github.com/masumislambadsha/zavisoft/pkg/tracing"
)

// DefaultBaseURL is the public catalog the storefront is built on.
const DefaultBaseURL = "https://api.escuelajs.co/api/v1"

const serviceName = "catalog"

// Listing sizes used by the product page and the home page.
const (
	relatedFetchLimit   = 12
	DefaultRelatedLimit = 4
	NewDropsLimit       = 4
)

// Query filters a product listing. Zero fields are omitted from the request.
type Query struct {
	Offset     int
	Limit      int
	CategoryID int
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.CategoryID > 0 {
		v.Set("categoryId", strconv.Itoa(q.CategoryID))
	}
	return v
}

// Client reads products and categories from the catalog REST API. It never
// caches; every call goes upstream.
type Client struct {
	baseURL string
	http    httpclient.Doer
	logger  *slog.Logger
}

// NewClient creates a catalog client. doer is usually a
// *httpclient.CircuitBreakerClient.
func NewClient(baseURL string, doer httpclient.Doer, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		logger:  logger,
	}
}

// ListProducts returns one page of products.
func (c *Client) ListProducts(ctx context.Context, q Query) (_ []domain.Product, err error) {
	ctx, span := tracing.Start(ctx, "catalog.ListProducts",
		attribute.Int("catalog.offset", q.Offset),
		attribute.Int("catalog.limit", q.Limit),
		attribute.Int("catalog.category_id", q.CategoryID),
	)
	defer func() { tracing.End(span, err) }()

	var raw []apiProduct
	if err := c.get(ctx, "/products", q.values(), &raw); err != nil {
		return nil, httpclient.ToAppError(err, "products", "")
	}
	return toProducts(raw), nil
}

// GetProduct returns a single product. The API answers 400 for ids it does
// not know, so 400 is treated like 404.
func (c *Client) GetProduct(ctx context.Context, id int) (_ *domain.Product, err error) {
	ctx, span := tracing.Start(ctx, "catalog.GetProduct", attribute.Int("catalog.product_id", id))
	defer func() { tracing.End(span, err) }()

	idStr := strconv.Itoa(id)
	var raw apiProduct
	if err := c.get(ctx, "/products/"+idStr, nil, &raw); err != nil {
		if se, ok := asStatus(err); ok && (se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusBadRequest) {
			return nil, apperrors.NotFound("product", idStr)
		}
		return nil, httpclient.ToAppError(err, "product", idStr)
	}
	p := raw.toDomain()
	return &p, nil
}

// ListCategories returns every category.
func (c *Client) ListCategories(ctx context.Context) (_ []domain.Category, err error) {
	ctx, span := tracing.Start(ctx, "catalog.ListCategories")
	defer func() { tracing.End(span, err) }()

	var raw []apiCategory
	if err := c.get(ctx, "/categories", nil, &raw); err != nil {
		return nil, httpclient.ToAppError(err, "categories", "")
	}
	out := make([]domain.Category, 0, len(raw))
	for _, rc := range raw {
		out = append(out, rc.toDomain())
	}
	return out, nil
}

// RelatedProducts returns up to limit products from p's category, excluding
// p itself. A limit of zero or less means DefaultRelatedLimit.
func (c *Client) RelatedProducts(ctx context.Context, p *domain.Product, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	products, err := c.ListProducts(ctx, Query{Limit: relatedFetchLimit, CategoryID: p.Category.ID})
	if err != nil {
		return nil, err
	}

	related := make([]domain.Product, 0, limit)
	for _, candidate := range products {
		if candidate.ID == p.ID {
			continue
		}
		related = append(related, candidate)
		if len(related) == limit {
			break
		}
	}
	return related, nil
}

// NewDrops returns the first NewDropsLimit products of the catalog.
func (c *Client) NewDrops(ctx context.Context) ([]domain.Product, error) {
	return c.ListProducts(ctx, Query{Offset: 0, Limit: NewDropsLimit})
}

// Ping fetches a single product to check the catalog is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var raw []apiProduct
	return c.get(ctx, "/products", url.Values{"limit": {"1"}}, &raw)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("call catalog: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return apperrors.Upstream(serviceName, fmt.Errorf("decode catalog response %s: %w", path, err))
	}
	return nil
}

func asStatus(err error) (*httpclient.StatusError, bool) {
	var se *httpclient.StatusError
	ok := errors.As(err, &se)
	return se, ok
}
