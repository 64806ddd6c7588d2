// internal/api/handler/api/trades.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/newthinker/cryptodash/internal/api/response"
	"github.com/newthinker/cryptodash/internal/core"
	"github.com/newthinker/cryptodash/internal/journal"
)

// TradesApp defines the interface needed from app.App.
type TradesApp interface {
	RecordTrade(ctx context.Context, t journal.Trade) (journal.Trade, error)
	UpdateTrade(ctx context.Context, id string, t journal.Trade) (journal.Trade, error)
	DeleteTrade(ctx context.Context, id string) error
	Trade(ctx context.Context, id string) (journal.Trade, error)
	Trades(ctx context.Context, f journal.Filter) ([]journal.Trade, error)
	Location() *time.Location
}

// TradesHandler handles journal CRUD requests.
type TradesHandler struct {
	app TradesApp
}

// NewTradesHandler creates a new trades handler.
func NewTradesHandler(app TradesApp) *TradesHandler {
	return &TradesHandler{app: app}
}

// List returns the journal, newest first, narrowed by side, q, from and to.
func (h *TradesHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r, h.app.Location())
	if err != nil {
		response.Fail(w, err)
		return
	}

	trades, err := h.app.Trades(r.Context(), f)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.List(w, trades, len(trades))
}

// Create records a new trade from the request body.
func (h *TradesHandler) Create(w http.ResponseWriter, r *http.Request) {
	t, err := decodeTrade(r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	created, err := h.app.RecordTrade(r.Context(), t)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

// Get returns a single trade by ID.
func (h *TradesHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.app.Trade(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, t)
}

// Update replaces a trade by ID.
func (h *TradesHandler) Update(w http.ResponseWriter, r *http.Request) {
	t, err := decodeTrade(r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	updated, err := h.app.UpdateTrade(r.Context(), r.PathValue("id"), t)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

// Delete removes a trade by ID.
func (h *TradesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.app.DeleteTrade(r.Context(), id); err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"deleted": true,
	})
}

func decodeTrade(r *http.Request) (journal.Trade, error) {
	var t journal.Trade
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		return journal.Trade{}, core.WrapError(core.ErrInvalidTrade, err)
	}
	return t, nil
}

func filterFromQuery(r *http.Request, loc *time.Location) (journal.Filter, error) {
	q := r.URL.Query()
	return journal.ParseFilter(q.Get("side"), q.Get("q"), q.Get("from"), q.Get("to"), loc)
}
