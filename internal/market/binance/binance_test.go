package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/newthinker/cryptodash/internal/core"
)

func TestBinance_Name(t *testing.T) {
	b := New()
	if b.Name() != "binance" {
		t.Errorf("expected 'binance', got '%s'", b.Name())
	}
}

func TestBinance_FetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/24hr" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol = %s, want BTCUSDT", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"symbol": "BTCUSDT",
			"priceChange": "1200.50",
			"priceChangePercent": "2.41",
			"lastPrice": "51000.25",
			"openPrice": "49799.75",
			"highPrice": "51500.00",
			"lowPrice": "49500.00",
			"volume": "12345.678",
			"bidPrice": "51000.20",
			"askPrice": "51000.30",
			"closeTime": 1704067200000
		}`))
	}))
	defer srv.Close()

	b := NewWithBaseURL(srv.URL)
	q, err := b.FetchQuote(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("FetchQuote failed: %v", err)
	}

	if q.Price != 51000.25 {
		t.Errorf("Price = %f, want 51000.25", q.Price)
	}
	if q.ChangePercent != 2.41 {
		t.Errorf("ChangePercent = %f, want 2.41", q.ChangePercent)
	}
	if q.Volume != 12345.678 {
		t.Errorf("Volume = %f, want 12345.678", q.Volume)
	}
	if q.Market != core.MarketCrypto {
		t.Errorf("Market = %s, want CRYPTO", q.Market)
	}
	if q.Time.UnixMilli() != 1704067200000 {
		t.Errorf("Time = %v", q.Time)
	}
	if !q.IsValid() {
		t.Error("quote should be valid")
	}
}

func TestBinance_FetchQuote_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer srv.Close()

	_, err := NewWithBaseURL(srv.URL).FetchQuote(context.Background(), "NOPEUSDT")
	if err == nil || !strings.Contains(err.Error(), "Invalid symbol") {
		t.Errorf("expected invalid symbol error, got %v", err)
	}
}

func TestBinance_FetchQuote_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewWithBaseURL(srv.URL).FetchQuote(context.Background(), "BTCUSDT")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestBinance_FetchQuote_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewWithBaseURL(srv.URL).FetchQuote(ctx, "BTCUSDT"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

// Integration test - skip in CI
func TestBinance_FetchQuote_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	q, err := New().FetchQuote(context.Background(), "BTCUSDT")
	if err != nil {
		t.Skipf("binance unreachable: %v", err)
	}
	if q.Price <= 0 {
		t.Errorf("expected positive price, got %f", q.Price)
	}
}
