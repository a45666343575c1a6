package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/masumislambadsha/zavisoft/internal/catalog"
	"github.com/masumislambadsha/zavisoft/internal/domain"
	"github.com/masumislambadsha/zavisoft/internal/event"
	"github.com/masumislambadsha/zavisoft/internal/repository"
	"github.com/masumislambadsha/zavisoft/internal/repository/memory"
	"github.com/masumislambadsha/zavisoft/internal/store"
	pkgkafka "github.com/masumislambadsha/zavisoft/pkg/kafka"
)

const testSession = "session-test-1"

// --- Mock Catalog ---

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ListProducts(ctx context.Context, q catalog.Query) ([]domain.Product, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalog) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockCatalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCatalog) RelatedProducts(ctx context.Context, p *domain.Product, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, p, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalog) NewDrops(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

// --- Recording Publisher ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []*pkgkafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, e *pkgkafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	kv      *memory.KV
	opener  *store.Opener
	catalog *mockCatalog
	pub     *recordingPublisher
}

func newFixture(policy store.RecoveryPolicy) *fixture {
	kv := memory.New()
	return &fixture{
		kv:      kv,
		opener:  store.NewOpener(kv, policy, newTestLogger()),
		catalog: new(mockCatalog),
		pub:     &recordingPublisher{},
	}
}

// seed writes a raw blob for the test session, e.g. seed(t, store.CartKey, "[]").
func (f *fixture) seed(t *testing.T, key, blob string) {
	t.Helper()
	ok, err := repository.Scope(f.kv, testSession).CompareAndSet(context.Background(), key, nil, []byte(blob))
	require.NoError(t, err)
	require.True(t, ok)
}

func (f *fixture) producer() *event.Producer {
	return event.NewProducer(f.pub, newTestLogger())
}

func (f *fixture) cartService() *CartService {
	return NewCartService(f.opener, f.catalog, f.producer(), newTestLogger(), domain.DefaultDeliveryFeeCents)
}

func (f *fixture) wishlistService() *WishlistService {
	return NewWishlistService(f.opener, f.catalog, f.producer(), newTestLogger())
}

func (f *fixture) catalogService() *CatalogService {
	return NewCatalogService(f.catalog, f.opener, newTestLogger())
}

func sneaker(id int) *domain.Product {
	return &domain.Product{
		ID:       id,
		Title:    "Classic Sneaker",
		Slug:     "classic-sneaker",
		Price:    12999,
		Images:   []string{"https://img.example.com/1.jpg"},
		Category: domain.Category{ID: 4, Name: "Shoes"},
	}
}
