// internal/api/handler/api/analytics.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/newthinker/cryptodash/internal/api/response"
	"github.com/newthinker/cryptodash/internal/app"
	"github.com/newthinker/cryptodash/internal/journal"
)

// AnalyticsApp defines the interface needed from app.App.
type AnalyticsApp interface {
	Report(ctx context.Context, f journal.Filter) (journal.Report, error)
	OpenPositions(ctx context.Context) ([]app.Position, error)
	Location() *time.Location
}

// AnalyticsHandler serves the dashboard panels.
type AnalyticsHandler struct {
	app AnalyticsApp
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(app AnalyticsApp) *AnalyticsHandler {
	return &AnalyticsHandler{app: app}
}

// Report returns KPIs, equity curve, weekday and strategy breakdowns for
// the filtered journal.
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r, h.app.Location())
	if err != nil {
		response.Fail(w, err)
		return
	}

	report, err := h.app.Report(r.Context(), f)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, report)
}

// Positions returns open trades marked to market.
func (h *AnalyticsHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.app.OpenPositions(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.List(w, positions, len(positions))
}
