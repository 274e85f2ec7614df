package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rampview/internal/core"
	"rampview/internal/log"
	"rampview/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	srv := NewServer(Config{
		Addr:         ":0",
		FeeRate:      decimal.NewFromFloat(0.01),
		CacheTTL:     time.Minute,
		CacheMaxSize: 10,
	}, store, log.New(log.DefaultConfig()))
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
	})
	return srv, store
}

func seedDeposits(t *testing.T, store *storage.MemoryStore, txs []core.Transaction) {
	t.Helper()
	if err := store.ReplaceSnapshot(context.Background(), core.ChannelDeposit, txs); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
}

func depositRecord(id, createdAt, amount, status string) core.Transaction {
	return core.ParseRecord(core.Record{
		ID:              id,
		CreatedAt:       createdAt,
		AssetEquivalent: amount,
		Status:          status,
	}, core.ChannelDeposit)
}

func doRequest(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	var body map[string]json.RawMessage
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, body
}

func TestHandleHistoryGroupsByDay(t *testing.T) {
	srv, store := newTestServer(t)
	seedDeposits(t, store, []core.Transaction{
		depositRecord("tx-1", "2024-03-05T10:00:00Z", "100", "Approved"),
		depositRecord("tx-2", "2024-03-05T15:00:00Z", "50", "pending"),
		depositRecord("tx-3", "2024-03-06T09:00:00Z", "25", "Rejected"),
	})

	rec, body := doRequest(t, srv, "/api/v1/history?channel=deposit")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var buckets []dayBucketJSON
	if err := json.Unmarshal(body["data"], &buckets); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(buckets))
	}
	if buckets[0].Key != "5/03/24" || buckets[1].Key != "6/03/24" {
		t.Errorf("bucket keys = %q, %q", buckets[0].Key, buckets[1].Key)
	}
	if len(buckets[0].Transactions) != 2 {
		t.Errorf("first bucket has %d transactions, want 2", len(buckets[0].Transactions))
	}
	// Upstream order within a day is preserved
	if buckets[0].Transactions[0].ID != "tx-1" {
		t.Errorf("first transaction = %q, want tx-1", buckets[0].Transactions[0].ID)
	}
}

func TestHandleHistoryViewFilter(t *testing.T) {
	srv, store := newTestServer(t)
	seedDeposits(t, store, []core.Transaction{
		depositRecord("tx-1", "2024-03-05T10:00:00Z", "100", "Approved"),
		depositRecord("tx-2", "2024-03-05T15:00:00Z", "50", "pending"),
	})

	rec, body := doRequest(t, srv, "/api/v1/history?channel=deposit&view=pending")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var buckets []dayBucketJSON
	if err := json.Unmarshal(body["data"], &buckets); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(buckets) != 1 || len(buckets[0].Transactions) != 1 {
		t.Fatalf("unexpected buckets: %+v", buckets)
	}
	if buckets[0].Transactions[0].Status != "pending" {
		t.Errorf("status = %q, want pending", buckets[0].Transactions[0].Status)
	}
}

func TestHandleHistoryInvalidTimestampBucket(t *testing.T) {
	srv, store := newTestServer(t)
	seedDeposits(t, store, []core.Transaction{
		depositRecord("tx-1", "2024-03-05T10:00:00Z", "100", "Approved"),
		depositRecord("tx-2", "garbage", "50", "pending"),
	})

	rec, body := doRequest(t, srv, "/api/v1/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var buckets []dayBucketJSON
	if err := json.Unmarshal(body["data"], &buckets); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(buckets))
	}
	// The unparseable-timestamp bucket stays visible, sorted last
	if buckets[1].Key != core.InvalidDayKey {
		t.Errorf("last bucket key = %q, want %q", buckets[1].Key, core.InvalidDayKey)
	}
}

func TestHandleDayBucket(t *testing.T) {
	srv, store := newTestServer(t)
	seedDeposits(t, store, []core.Transaction{
		depositRecord("tx-1", "2024-03-05T10:00:00Z", "100", "Approved"),
	})

	rec, body := doRequest(t, srv, "/api/v1/history/5/03/24?channel=deposit")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var bucket dayBucketJSON
	if err := json.Unmarshal(body["data"], &bucket); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if bucket.Key != "5/03/24" || len(bucket.Transactions) != 1 {
		t.Errorf("unexpected bucket: %+v", bucket)
	}
}

func TestHandleDayBucketNotFound(t *testing.T) {
	srv, store := newTestServer(t)
	seedDeposits(t, store, nil)

	rec, _ := doRequest(t, srv, "/api/v1/history/1/01/24")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleMonthly(t *testing.T) {
	srv, store := newTestServer(t)
	seedDeposits(t, store, []core.Transaction{
		depositRecord("tx-1", "2024-03-05T10:00:00Z", "100", "Approved"),
		depositRecord("tx-2", "2024-03-20T10:00:00Z", "50", "pending"),
		depositRecord("tx-3", "2024-01-02T10:00:00Z", "16", "Approved"),
	})

	rec, body := doRequest(t, srv, "/api/v1/monthly?channel=deposit")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var totals []core.MonthTotal
	if err := json.Unmarshal(body["data"], &totals); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(totals) != 12 {
		t.Fatalf("got %d months, want 12", len(totals))
	}
	if totals[0].Month != "January" || !totals[0].Total.Equal(decimal.NewFromInt(16)) {
		t.Errorf("January = %+v", totals[0])
	}
	if totals[2].Month != "March" || !totals[2].Total.Equal(decimal.NewFromInt(150)) {
		t.Errorf("March = %+v", totals[2])
	}
	if !totals[11].Total.IsZero() {
		t.Errorf("December should be zero, got %s", totals[11].Total)
	}
}

func TestHandleSummary(t *testing.T) {
	srv, store := newTestServer(t)
	seedDeposits(t, store, []core.Transaction{
		depositRecord("tx-1", "2024-03-05T10:00:00Z", "100", "Approved"),
		depositRecord("tx-2", "2024-03-05T11:00:00Z", "100", "Approve"),
		depositRecord("tx-3", "2024-03-06T10:00:00Z", "150", "pending"),
		depositRecord("tx-4", "2024-03-07T10:00:00Z", "30", "Rejected"),
	})

	rec, body := doRequest(t, srv, "/api/v1/summary?channel=deposit")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var summary core.Summary
	if err := json.Unmarshal(body["data"], &summary); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !summary.ApprovedTotal.Equal(decimal.NewFromInt(200)) {
		t.Errorf("approved total = %s, want 200", summary.ApprovedTotal)
	}
	if !summary.PendingTotal.Equal(decimal.NewFromInt(150)) {
		t.Errorf("pending total = %s, want 150", summary.PendingTotal)
	}
	if !summary.GrossTotal.Equal(decimal.NewFromInt(350)) {
		t.Errorf("gross total = %s, want 350", summary.GrossTotal)
	}
	// 1% of the approved volume
	if !summary.FeeRevenue.Equal(decimal.NewFromInt(2)) {
		t.Errorf("fee revenue = %s, want 2", summary.FeeRevenue)
	}
}

func TestHandleStats(t *testing.T) {
	srv, store := newTestServer(t)
	seedDeposits(t, store, []core.Transaction{
		depositRecord("tx-1", "2024-03-05T10:00:00Z", "100", "Approved"),
		depositRecord("tx-2", "2024-03-05T11:00:00Z", "50", "pending"),
		depositRecord("tx-3", "2024-03-06T10:00:00Z", "25", "pending"),
	})

	rec, body := doRequest(t, srv, "/api/v1/stats?channel=deposit")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var counts []core.StatusCount
	if err := json.Unmarshal(body["data"], &counts); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	want := map[string]int{"Approved": 1, "pending": 2}
	if len(counts) != len(want) {
		t.Fatalf("got %d statuses, want %d", len(counts), len(want))
	}
	for _, sc := range counts {
		if want[sc.Status] != sc.Count {
			t.Errorf("status %q count = %d, want %d", sc.Status, sc.Count, want[sc.Status])
		}
	}
}

func TestHandleHistoryInvalidChannel(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, _ := doRequest(t, srv, "/api/v1/history?channel=transfer")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleHistoryInvalidView(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, _ := doRequest(t, srv, "/api/v1/history?view=failed")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestInvalidateAllDropsCachedSnapshot(t *testing.T) {
	srv, store := newTestServer(t)
	seedDeposits(t, store, []core.Transaction{
		depositRecord("tx-1", "2024-03-05T10:00:00Z", "100", "Approved"),
	})

	// Prime the cache
	rec, _ := doRequest(t, srv, "/api/v1/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	// New snapshot lands, cache still serves the old one
	seedDeposits(t, store, []core.Transaction{
		depositRecord("tx-2", "2024-04-01T10:00:00Z", "75", "pending"),
	})

	srv.InvalidateAll()

	_, body := doRequest(t, srv, "/api/v1/history")
	var buckets []dayBucketJSON
	if err := json.Unmarshal(body["data"], &buckets); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(buckets) != 1 || buckets[0].Key != "1/04/24" {
		t.Errorf("cache not invalidated, buckets = %+v", buckets)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestReadyReportsRequestDiagnostics(t *testing.T) {
	srv, _ := newTestServer(t)

	// A regular API request first, so the counters have something to show
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	srv.Server.Handler.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("/readyz status = %d, want 200", rec.Code)
	}

	var payload struct {
		Status           string `json:"status"`
		TotalRequests    int64  `json:"total_requests"`
		RateLimitClients int    `json:"rate_limit_clients"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode readiness payload: %v", err)
	}
	if payload.Status != "ready" {
		t.Errorf("status = %q, want ready", payload.Status)
	}
	if payload.TotalRequests < 2 {
		t.Errorf("total_requests = %d, want at least 2", payload.TotalRequests)
	}
	if payload.RateLimitClients < 1 {
		t.Errorf("rate_limit_clients = %d, want at least 1", payload.RateLimitClients)
	}
}
