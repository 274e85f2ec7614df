package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rampview/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		BaseURL: srv.URL,
		Token:   "test-token",
		Timeout: 5 * time.Second,
	}, testLogger())
	return client, srv
}

func TestListDeposits(t *testing.T) {
	var gotPath, gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"id":"tx-1","CreatedAt":"2024-03-05T10:00:00Z","asset_equivalent":"100","status":"Approved","transaction_sub_type":"deposit"},
			{"id":"tx-2","CreatedAt":"2024-03-05T11:00:00Z","asset_equivalent":"50","status":"pending","transaction_sub_type":"deposit"}
		]}`))
	})

	records, err := client.ListDeposits(context.Background())
	if err != nil {
		t.Fatalf("ListDeposits() error: %v", err)
	}

	if gotPath != depositsPath {
		t.Errorf("request path = %q, want %q", gotPath, depositsPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "tx-1" || records[0].Status != "Approved" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
}

func TestListWithdrawalsPath(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"data":[]}`))
	})

	records, err := client.ListWithdrawals(context.Background())
	if err != nil {
		t.Fatalf("ListWithdrawals() error: %v", err)
	}
	if gotPath != withdrawalsPath {
		t.Errorf("request path = %q, want %q", gotPath, withdrawalsPath)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestExchangeRate(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":{"rate":1545.25}}`))
	})

	rate, err := client.ExchangeRate(context.Background(), "NGN", "USDC")
	if err != nil {
		t.Fatalf("ExchangeRate() error: %v", err)
	}
	if rate.String() != "1545.25" {
		t.Errorf("rate = %s, want 1545.25", rate)
	}
	if gotQuery != "asset=USDC&fiat_currency=NGN" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestListDepositsNonOKStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	if _, err := client.ListDeposits(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestListDepositsMalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":`))
	})

	if _, err := client.ListDeposits(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}
