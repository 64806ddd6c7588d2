// internal/api/handler/api/market.go
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/newthinker/cryptodash/internal/api/response"
	"github.com/newthinker/cryptodash/internal/market"
)

// MarketApp defines the interface needed from app.App.
type MarketApp interface {
	MarketSnapshot() *market.Snapshot
	RefreshMarket(ctx context.Context) (*market.Snapshot, error)
}

// MarketHandler serves the market overview.
type MarketHandler struct {
	app MarketApp
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(app MarketApp) *MarketHandler {
	return &MarketHandler{app: app}
}

// Overview returns the cached snapshot. It refreshes when nothing is cached
// yet or when ?refresh=true is given.
func (h *MarketHandler) Overview(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	snap := h.app.MarketSnapshot()
	if snap == nil || force {
		var err error
		snap, err = h.app.RefreshMarket(r.Context())
		if err != nil {
			response.Fail(w, err)
			return
		}
	}
	response.JSON(w, http.StatusOK, snap)
}
