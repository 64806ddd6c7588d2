// internal/api/handler/api/analytics_test.go
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/cryptodash/internal/journal"
)

func TestAnalyticsHandler_Report(t *testing.T) {
	a := newApp(t)
	seed(t, a,
		journal.Trade{Date: "2024-01-01T10:00:00Z", Asset: "BTC", Qty: 1, Entry: 100, Exit: journal.Float(110), Notes: "scalp"},
		journal.Trade{Date: "2024-01-02T10:00:00Z", Asset: "ETH", Qty: 1, Entry: 100, Exit: journal.Float(95), Notes: "trend"},
		journal.Trade{Date: "2024-01-03T10:00:00Z", Asset: "SOL", Qty: 1, Entry: 100},
	)
	handler := NewAnalyticsHandler(a)

	req := httptest.NewRequest("GET", "/api/v1/analytics", nil)
	w := httptest.NewRecorder()
	handler.Report(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data struct {
			Total    int `json:"total"`
			Filtered int `json:"filtered"`
			KPIs     struct {
				Closed       int             `json:"closed"`
				WinRate      int             `json:"winrate"`
				NetPnL       float64         `json:"netPnl"`
				ProfitFactor json.RawMessage `json:"profitFactor"`
				Equity       []journal.EquityPoint
			} `json:"kpis"`
			Weekdays   []journal.WeekdayStat   `json:"weekdays"`
			Strategies []journal.StrategyCount `json:"strategies"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}

	d := resp.Data
	if d.Total != 3 || d.Filtered != 3 {
		t.Errorf("unexpected counts %d/%d", d.Total, d.Filtered)
	}
	if d.KPIs.Closed != 2 || d.KPIs.WinRate != 50 || d.KPIs.NetPnL != 5 {
		t.Errorf("unexpected kpis %+v", d.KPIs)
	}
	if string(d.KPIs.ProfitFactor) != "2" {
		t.Errorf("expected profit factor 2, got %s", d.KPIs.ProfitFactor)
	}
	if len(d.KPIs.Equity) != 2 || d.KPIs.Equity[1].Equity != 5 {
		t.Errorf("unexpected equity curve %+v", d.KPIs.Equity)
	}
	if len(d.Weekdays) != 7 {
		t.Errorf("expected 7 weekdays, got %d", len(d.Weekdays))
	}
	if len(d.Strategies) == 0 {
		t.Error("expected strategy distribution")
	}
}

func TestAnalyticsHandler_Report_InfiniteProfitFactor(t *testing.T) {
	a := newApp(t)
	seed(t, a, journal.Trade{Date: "2024-01-01T10:00:00Z", Asset: "BTC", Qty: 1, Entry: 100, Exit: journal.Float(110)})
	handler := NewAnalyticsHandler(a)

	req := httptest.NewRequest("GET", "/api/v1/analytics", nil)
	w := httptest.NewRecorder()
	handler.Report(w, req)

	var resp struct {
		Data struct {
			KPIs struct {
				ProfitFactor any `json:"profitFactor"`
			} `json:"kpis"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.KPIs.ProfitFactor != "Infinity" {
		t.Errorf("expected Infinity, got %v", resp.Data.KPIs.ProfitFactor)
	}
}

func TestAnalyticsHandler_Report_Filtered(t *testing.T) {
	a := newApp(t)
	seed(t, a,
		journal.Trade{Date: "2024-01-01T10:00:00Z", Asset: "BTC", Qty: 1, Entry: 100, Exit: journal.Float(110)},
		journal.Trade{Date: "2024-01-02T10:00:00Z", Asset: "ETH", Side: journal.SideShort, Qty: 1, Entry: 100, Exit: journal.Float(95)},
	)
	handler := NewAnalyticsHandler(a)

	req := httptest.NewRequest("GET", "/api/v1/analytics?side=SHORT", nil)
	w := httptest.NewRecorder()
	handler.Report(w, req)

	report := decodeData[map[string]any](t, w)
	if report["filtered"].(float64) != 1 || report["total"].(float64) != 2 {
		t.Errorf("unexpected counts %v/%v", report["filtered"], report["total"])
	}
}

func TestAnalyticsHandler_Report_BadFilter(t *testing.T) {
	handler := NewAnalyticsHandler(newApp(t))

	req := httptest.NewRequest("GET", "/api/v1/analytics?from=01/02/2024", nil)
	w := httptest.NewRecorder()
	handler.Report(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAnalyticsHandler_Positions(t *testing.T) {
	a := newApp(t)
	seed(t, a,
		journal.Trade{Asset: "BTC", Qty: 1, Entry: 100},
		journal.Trade{Asset: "ETH", Qty: 1, Entry: 100, Exit: journal.Float(101)},
	)
	handler := NewAnalyticsHandler(a)

	req := httptest.NewRequest("GET", "/api/v1/positions", nil)
	w := httptest.NewRecorder()
	handler.Positions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	positions := decodeData[[]map[string]any](t, w)
	if len(positions) != 1 || positions[0]["asset"] != "BTC" {
		t.Errorf("expected only the open BTC trade, got %v", positions)
	}
	if _, ok := positions[0]["mark"]; ok {
		t.Error("mark should be omitted without market data")
	}
}
