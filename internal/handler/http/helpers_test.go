package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/masumislambadsha/zavisoft/internal/catalog"
	"github.com/masumislambadsha/zavisoft/internal/domain"
	"github.com/masumislambadsha/zavisoft/internal/event"
	"github.com/masumislambadsha/zavisoft/internal/repository"
	"github.com/masumislambadsha/zavisoft/internal/repository/memory"
	"github.com/masumislambadsha/zavisoft/internal/service"
	"github.com/masumislambadsha/zavisoft/internal/store"
	"github.com/masumislambadsha/zavisoft/pkg/health"
	"github.com/masumislambadsha/zavisoft/pkg/httputil"
	pkgkafka "github.com/masumislambadsha/zavisoft/pkg/kafka"
	"github.com/masumislambadsha/zavisoft/pkg/middleware"
)

const testSession = "6f1c2a7e-0b4d-4c8e-9a51-3d2f7b8c9e10"

// ============================================================================
// Mock Catalog
// ============================================================================

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

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	handler http.Handler
	catalog *mockCatalog
	kv      *memory.KV
}

func newTestServer(t *testing.T, policy store.RecoveryPolicy) *testServer {
	t.Helper()
	logger := testLogger()
	kv := memory.New()
	cat := new(mockCatalog)
	opener := store.NewOpener(kv, policy, logger)
	producer := event.NewProducer(pkgkafka.NopPublisher{}, logger)

	svcs := Services{
		Cart:     service.NewCartService(opener, cat, producer, logger, domain.DefaultDeliveryFeeCents),
		Wishlist: service.NewWishlistService(opener, cat, producer, logger),
		Catalog:  service.NewCatalogService(cat, opener, logger),
	}
	h := NewRouter(svcs, health.NewHandler(), logger, RouterOptions{
		CORS:          middleware.DefaultCORSConfig(),
		CatalogMaxAge: 60,
	})
	return &testServer{handler: h, catalog: cat, kv: kv}
}

// seed stores a raw blob under key for the test session.
func (s *testServer) seed(t *testing.T, key, blob string) {
	t.Helper()
	ok, err := repository.Scope(s.kv, testSession).CompareAndSet(t.Context(), key, nil, []byte(blob))
	require.NoError(t, err)
	require.True(t, ok)
}

// do sends a request through the full router. A non-empty session sets the
// X-Session-ID header.
func (s *testServer) do(t *testing.T, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(middleware.HeaderSessionID, session)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doRaw(t *testing.T, method, path, session, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	if session != "" {
		req.Header.Set(middleware.HeaderSessionID, session)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) request(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

func (s *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// decodeResponse reads the envelope, decoding data into dst when non-nil.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) httputil.Response {
	t.Helper()
	var raw struct {
		Data  json.RawMessage         `json:"data"`
		Error *httputil.ErrorResponse `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	if dst != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, dst))
	}
	return httputil.Response{Data: raw.Data, Error: raw.Error}
}

func sneaker(id int) *domain.Product {
	return &domain.Product{
		ID:       id,
		Title:    "Runner",
		Slug:     "runner",
		Price:    9000,
		Images:   []string{"https://img.example.com/runner.jpg"},
		Category: domain.Category{ID: 4, Name: "Shoes"},
	}
}
