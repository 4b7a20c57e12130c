package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/invoicing/internal/cache"
	"github.com/smallbiznis/invoicing/internal/clock"
	"github.com/smallbiznis/invoicing/internal/config"
	"github.com/smallbiznis/invoicing/internal/invoice/action"
	invoicedomain "github.com/smallbiznis/invoicing/internal/invoice/domain"
	"github.com/smallbiznis/invoicing/internal/invoice/invoicetest"
	"github.com/smallbiznis/invoicing/internal/invoice/repository"
	"github.com/smallbiznis/invoicing/internal/invoice/service"
	"github.com/smallbiznis/invoicing/internal/observability"
	obsmetrics "github.com/smallbiznis/invoicing/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const listingPath = "/dashboard/invoices"

type testServer struct {
	engine  *gin.Engine
	db      *gorm.DB
	listing *cache.ListingCache
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	return newTestServerWith(t, nil)
}

// newTestServerWith lets wrap decorate the listing service before it is
// mounted.
func newTestServerWith(t *testing.T, wrap func(invoicedomain.Service, *gorm.DB, *cache.ListingCache) invoicedomain.Service) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := invoicetest.NewDB(t)
	httpMetrics, err := obsmetrics.NewHTTPMetricsWithRegisterer(prometheus.NewRegistry())
	require.NoError(t, err)

	engine := NewEngine(observability.Config{Environment: "test"}, httpMetrics)
	nav := config.NewStaticNavigationHolder(config.DefaultNavigationConfig())
	listing := cache.NewListingCache()

	svc := service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	actions := action.New(action.Params{
		Service:     svc,
		Invalidator: cache.NewInvalidator(cache.Params{Local: listing}),
		Navigation:  nav,
		Log:         zap.NewNop(),
	})

	var listSvc invoicedomain.Service = svc
	if wrap != nil {
		listSvc = wrap(svc, db, listing)
	}

	NewServer(ServerParams{
		Gin:        engine,
		Navigation: nav,
		Actions:    actions,
		InvoiceSvc: listSvc,
		Listing:    listing,
	})

	return testServer{engine: engine, db: db, listing: listing}
}

func (ts testServer) postForm(t *testing.T, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func (ts testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) invoicedomain.State {
	t.Helper()
	var state invoicedomain.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func TestCreateInvoiceRedirects(t *testing.T) {
	ts := newTestServer(t)

	w := ts.postForm(t, listingPath, url.Values{
		"customerId": {"c1"},
		"amount":     {"15.50"},
		"status":     {"pending"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, listingPath, w.Header().Get("Location"))

	var stored invoicedomain.Invoice
	require.NoError(t, ts.db.First(&stored).Error)
	assert.Equal(t, int64(1550), stored.Amount)
	assert.Equal(t, "2026-10-14", stored.Date)
}

func TestCreateInvoiceValidationFailure(t *testing.T) {
	ts := newTestServer(t)

	w := ts.postForm(t, listingPath, url.Values{
		"customerId": {""},
		"amount":     {"10"},
		"status":     {"paid"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	state := decodeState(t, w)
	assert.Equal(t, invoicedomain.MessageCreateMissingFields, state.Message)
	assert.Equal(t, []string{invoicedomain.MessageMissingCustomer}, state.Errors[invoicedomain.FieldCustomerID])
	assert.Equal(t, int64(0), invoicetest.Count(t, ts.db))
}

func TestCreateInvoiceStoreFailure(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.db.Exec(`DROP TABLE invoices`).Error)

	w := ts.postForm(t, listingPath, url.Values{
		"customerId": {"c1"},
		"amount":     {"10"},
		"status":     {"paid"},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, invoicedomain.MessageCreateFailed, state.Message)
	assert.Empty(t, state.Errors)
}

func TestUpdateInvoiceRedirects(t *testing.T) {
	ts := newTestServer(t)
	id := invoicetest.Seed(t, ts.db, "inv-1", "c1", 100, "pending", "2020-01-01")

	w := ts.postForm(t, listingPath+"/"+id+"/edit", url.Values{
		"customerId": {"c2"},
		"amount":     {"20"},
		"status":     {"paid"},
		"date":       {"1999-01-01"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, listingPath, w.Header().Get("Location"))

	var stored invoicedomain.Invoice
	require.NoError(t, ts.db.First(&stored, "id = ?", id).Error)
	assert.Equal(t, int64(2000), stored.Amount)
	assert.Equal(t, "2020-01-01", stored.Date)
}

func TestUpdateInvoiceValidationFailure(t *testing.T) {
	ts := newTestServer(t)
	id := invoicetest.Seed(t, ts.db, "inv-1", "c1", 100, "pending", "2020-01-01")

	w := ts.postForm(t, listingPath+"/"+id+"/edit", url.Values{
		"customerId": {"c1"},
		"amount":     {"10"},
		"status":     {"overdue"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, invoicedomain.MessageUpdateMissingFields, state.Message)
	assert.Contains(t, state.Errors, invoicedomain.FieldStatus)
}

func TestDeleteInvoice(t *testing.T) {
	ts := newTestServer(t)
	id := invoicetest.Seed(t, ts.db, "inv-1", "c1", 100, "paid", "2020-01-01")

	for i := 0; i < 2; i++ {
		w := ts.postForm(t, listingPath+"/"+id+"/delete", url.Values{})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Deleted Invoice."}`, w.Body.String())
	}
	assert.Equal(t, int64(0), invoicetest.Count(t, ts.db))
}

func TestListInvoicesCachedUntilMutation(t *testing.T) {
	ts := newTestServer(t)
	invoicetest.Seed(t, ts.db, "inv-1", "c1", 100, "paid", "2020-01-01")

	w := ts.get(t, listingPath)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))

	w = ts.get(t, listingPath)
	assert.Equal(t, "hit", w.Header().Get("X-Cache"))

	w = ts.postForm(t, listingPath, url.Values{
		"customerId": {"c2"},
		"amount":     {"5"},
		"status":     {"pending"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = ts.get(t, listingPath)
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))

	var body struct {
		Data []invoicedomain.Invoice `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
}

// mutatingListService commits a write and invalidates the listing after
// the rows were read but before the handler caches them.
type mutatingListService struct {
	invoicedomain.Service
	once   sync.Once
	mutate func(context.Context)
}

func (s *mutatingListService) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	resp, err := s.Service.List(ctx, req)
	s.once.Do(func() { s.mutate(ctx) })
	return resp, err
}

func TestListInvoicesSkipsCacheAfterConcurrentInvalidation(t *testing.T) {
	ts := newTestServerWith(t, func(svc invoicedomain.Service, db *gorm.DB, listing *cache.ListingCache) invoicedomain.Service {
		return &mutatingListService{
			Service: svc,
			mutate: func(ctx context.Context) {
				invoicetest.Seed(t, db, "inv-2", "c2", 200, "pending", "2020-01-02")
				require.NoError(t, listing.Invalidate(ctx, listingPath))
			},
		}
	})
	invoicetest.Seed(t, ts.db, "inv-1", "c1", 100, "paid", "2020-01-01")

	var body struct {
		Data []invoicedomain.Invoice `json:"data"`
	}

	w := ts.get(t, listingPath)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)

	w = ts.get(t, listingPath)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)

	w = ts.get(t, listingPath)
	assert.Equal(t, "hit", w.Header().Get("X-Cache"))
}

func TestListInvoicesFailedMutationKeepsCache(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, listingPath)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.postForm(t, listingPath, url.Values{"customerId": {"c1"}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.get(t, listingPath)
	assert.Equal(t, "hit", w.Header().Get("X-Cache"))
}

func TestListInvoicesBadPageSize(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, listingPath+"?page_size=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
