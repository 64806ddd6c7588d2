// internal/api/handler/api/trades_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/cryptodash/internal/api/response"
	"github.com/newthinker/cryptodash/internal/app"
	"github.com/newthinker/cryptodash/internal/journal"
	"github.com/newthinker/cryptodash/internal/storage/trade"
)

func newApp(t *testing.T) *app.App {
	t.Helper()
	a := app.New(trade.NewMemoryStore(), zap.NewNop())
	a.SetLocation(time.UTC)
	return a
}

func seed(t *testing.T, a *app.App, trades ...journal.Trade) []journal.Trade {
	t.Helper()
	var out []journal.Trade
	for _, tr := range trades {
		created, err := a.RecordTrade(context.Background(), tr)
		if err != nil {
			t.Fatalf("seeding trade: %v", err)
		}
		out = append(out, created)
	}
	return out
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T             `json:"data"`
		Meta response.Meta `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v\n%s", err, w.Body.String())
	}
	return resp.Data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp response.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.Error.Code
}

func TestTradesHandler_Create(t *testing.T) {
	handler := NewTradesHandler(newApp(t))

	body := `{"date":"2024-01-01T10:00:00Z","asset":"btcusdt","side":"long","qty":0.5,"entry":40000,"exit":41000,"fees":2}`
	req := httptest.NewRequest("POST", "/api/v1/trades", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decodeData[journal.Trade](t, w)
	if created.ID == "" {
		t.Error("expected assigned id")
	}
	if created.Asset != "BTCUSDT" || created.Side != journal.SideLong {
		t.Errorf("unexpected normalization: %+v", created)
	}
	if created.Exit == nil || *created.Exit != 41000 {
		t.Errorf("unexpected exit %v", created.Exit)
	}
}

func TestTradesHandler_Create_Invalid(t *testing.T) {
	handler := NewTradesHandler(newApp(t))

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"asset":`},
		{"zero qty", `{"asset":"BTC","qty":0,"entry":1}`},
		{"missing asset", `{"qty":1,"entry":1}`},
		{"bad side", `{"asset":"BTC","side":"UP","qty":1,"entry":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/trades", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if code := errorCode(t, w); code != "INVALID_TRADE" {
				t.Errorf("expected INVALID_TRADE, got %s", code)
			}
		})
	}
}

func TestTradesHandler_List(t *testing.T) {
	a := newApp(t)
	seed(t, a,
		journal.Trade{Date: "2024-01-01T10:00:00Z", Asset: "BTC", Qty: 1, Entry: 1, Notes: "breakout"},
		journal.Trade{Date: "2024-01-05T10:00:00Z", Asset: "ETH", Side: journal.SideShort, Qty: 1, Entry: 1},
	)
	handler := NewTradesHandler(a)

	req := httptest.NewRequest("GET", "/api/v1/trades", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	trades := decodeData[[]journal.Trade](t, w)
	if len(trades) != 2 || trades[0].Asset != "ETH" {
		t.Errorf("expected newest first, got %+v", trades)
	}
}

func TestTradesHandler_ListWithFilters(t *testing.T) {
	a := newApp(t)
	seed(t, a,
		journal.Trade{Date: "2024-01-01T10:00:00Z", Asset: "BTC", Qty: 1, Entry: 1, Notes: "breakout"},
		journal.Trade{Date: "2024-01-05T10:00:00Z", Asset: "ETH", Side: journal.SideShort, Qty: 1, Entry: 1},
		journal.Trade{Date: "2024-01-09T10:00:00Z", Asset: "SOL", Qty: 1, Entry: 1},
	)
	handler := NewTradesHandler(a)

	tests := []struct {
		query string
		want  []string
	}{
		{"?side=short", []string{"ETH"}},
		{"?q=BREAK", []string{"BTC"}},
		{"?from=2024-01-05", []string{"SOL", "ETH"}},
		{"?from=2024-01-02&to=2024-01-05", []string{"ETH"}},
		{"?side=ALL&q=", []string{"SOL", "ETH", "BTC"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/trades"+tt.query, nil)
			w := httptest.NewRecorder()
			handler.List(w, req)

			trades := decodeData[[]journal.Trade](t, w)
			var got []string
			for _, tr := range trades {
				got = append(got, tr.Asset)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTradesHandler_List_BadFilter(t *testing.T) {
	handler := NewTradesHandler(newApp(t))

	for _, q := range []string{"?side=sideways", "?from=yesterday", "?to=2024-13-01"} {
		req := httptest.NewRequest("GET", "/api/v1/trades"+q, nil)
		w := httptest.NewRecorder()
		handler.List(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
		if code := errorCode(t, w); code != "INVALID_FILTER" {
			t.Errorf("%s: expected INVALID_FILTER, got %s", q, code)
		}
	}
}

func TestTradesHandler_GetUpdateDelete(t *testing.T) {
	a := newApp(t)
	created := seed(t, a, journal.Trade{Date: "2024-01-01T10:00:00Z", Asset: "BTC", Qty: 1, Entry: 100})[0]
	handler := NewTradesHandler(a)

	req := httptest.NewRequest("GET", "/api/v1/trades/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	w := httptest.NewRecorder()
	handler.Get(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest("PUT", "/api/v1/trades/"+created.ID,
		strings.NewReader(`{"asset":"BTC","qty":1,"entry":100,"exit":120}`))
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	handler.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	updated := decodeData[journal.Trade](t, w)
	if !updated.IsClosed() || updated.Date != created.Date {
		t.Errorf("unexpected update result %+v", updated)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/trades/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	handler.Delete(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/trades/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	handler.Get(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "TRADE_NOT_FOUND" {
		t.Errorf("expected TRADE_NOT_FOUND, got %s", code)
	}
}

func TestTradesHandler_Update_NotFound(t *testing.T) {
	handler := NewTradesHandler(newApp(t))

	req := httptest.NewRequest("PUT", "/api/v1/trades/nope", strings.NewReader(`{"asset":"BTC","qty":1,"entry":1}`))
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	handler.Update(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
