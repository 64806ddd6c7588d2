package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newthinker/cryptodash/internal/core"
	"github.com/newthinker/cryptodash/internal/journal"
	"github.com/newthinker/cryptodash/internal/logger"
	"github.com/newthinker/cryptodash/internal/market"
	"github.com/newthinker/cryptodash/internal/metrics"
	"github.com/newthinker/cryptodash/internal/storage/archive"
	"github.com/newthinker/cryptodash/internal/storage/trade"
)

// MarketSource produces market overview snapshots
type MarketSource interface {
	Snapshot(ctx context.Context, symbols []string) *market.Snapshot
}

// Position is an open trade marked to the latest market price.
type Position struct {
	journal.Trade
	Mark          *float64 `json:"mark,omitempty"`
	UnrealizedPnL *float64 `json:"unrealizedPnl,omitempty"`
}

// App is the main application orchestrator. It owns the journal store and
// computes analytics from full snapshots of it.
type App struct {
	store   trade.Store
	archive archive.Storage
	market  MarketSource
	metrics *metrics.Registry
	logger  *zap.Logger

	loc      *time.Location
	symbols  []string
	interval time.Duration
	now      func() time.Time

	// serializes read-modify-write sequences against the store
	writeMu sync.Mutex

	mu       sync.RWMutex
	snapshot *market.Snapshot
	running  bool
	cancel   context.CancelFunc
}

// New creates a new App instance around a trade store
func New(store trade.Store, log *zap.Logger) *App {
	return &App{
		store:    store,
		logger:   logger.Named(log, "app"),
		loc:      time.Local,
		interval: time.Minute,
		now:      time.Now,
	}
}

// SetArchive enables snapshot export and import
func (a *App) SetArchive(st archive.Storage) {
	a.archive = st
}

// SetMarket enables the market overview for the given symbols
func (a *App) SetMarket(src MarketSource, symbols []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.market = src
	a.symbols = append([]string(nil), symbols...)
}

// SetMetrics attaches a metrics registry
func (a *App) SetMetrics(reg *metrics.Registry) {
	a.metrics = reg
}

// SetLocation sets the timezone used for calendar days and weekdays
func (a *App) SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	a.loc = loc
}

// Location returns the journal timezone
func (a *App) Location() *time.Location {
	return a.loc
}

// SetInterval sets the market polling interval. Non-positive values are ignored.
func (a *App) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.interval = d
}

// RecordTrade validates and stores a new trade, assigning its ID.
func (a *App) RecordTrade(ctx context.Context, t journal.Trade) (journal.Trade, error) {
	t = journal.Normalize(t, a.now())
	t.ID = uuid.NewString()
	if err := t.Validate(); err != nil {
		return journal.Trade{}, err
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := a.store.Save(ctx, t); err != nil {
		return journal.Trade{}, err
	}
	a.recordOp(ctx, "create")
	a.logger.Info("trade recorded",
		zap.String("id", t.ID),
		zap.String("asset", t.Asset),
		zap.String("side", string(t.Side)),
	)
	return t, nil
}

// UpdateTrade replaces an existing trade. An empty date keeps the stored one.
func (a *App) UpdateTrade(ctx context.Context, id string, t journal.Trade) (journal.Trade, error) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	existing, err := a.store.Get(ctx, id)
	if err != nil {
		return journal.Trade{}, err
	}
	if t.Date == "" {
		t.Date = existing.Date
	}
	t = journal.Normalize(t, a.now())
	t.ID = id
	if err := t.Validate(); err != nil {
		return journal.Trade{}, err
	}

	if err := a.store.Save(ctx, t); err != nil {
		return journal.Trade{}, err
	}
	a.recordOp(ctx, "update")
	a.logger.Info("trade updated", zap.String("id", id))
	return t, nil
}

// DeleteTrade removes a trade
func (a *App) DeleteTrade(ctx context.Context, id string) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	a.recordOp(ctx, "delete")
	a.logger.Info("trade deleted", zap.String("id", id))
	return nil
}

// Trade returns one trade by ID
func (a *App) Trade(ctx context.Context, id string) (journal.Trade, error) {
	return a.store.Get(ctx, id)
}

// Trades returns the journal, newest first, narrowed by f.
func (a *App) Trades(ctx context.Context, f journal.Filter) ([]journal.Trade, error) {
	all, err := a.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return journal.Apply(all, f), nil
}

// Report computes every analytics panel for the filtered journal.
func (a *App) Report(ctx context.Context, f journal.Filter) (journal.Report, error) {
	all, err := a.store.List(ctx)
	if err != nil {
		return journal.Report{}, err
	}

	start := time.Now()
	report := journal.BuildReport(all, f, a.loc)
	if a.metrics != nil {
		a.metrics.RecordReport(time.Since(start).Seconds())
	}
	return report, nil
}

// OpenPositions lists open trades marked to the latest market snapshot.
// Mark is nil for assets the snapshot has no quote for.
func (a *App) OpenPositions(ctx context.Context) ([]Position, error) {
	all, err := a.store.List(ctx)
	if err != nil {
		return nil, err
	}

	snap := a.MarketSnapshot()
	positions := []Position{}
	for _, t := range all {
		if t.IsClosed() {
			continue
		}
		p := Position{Trade: t}
		if price, ok := snap.Price(t.Asset); ok {
			pnl := journal.Round2(journal.UnrealizedPnL(t, price))
			p.Mark = journal.Float(price)
			p.UnrealizedPnL = &pnl
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// SeedDemo fills an empty journal with two example trades. It returns the
// number of trades added, 0 when the journal already has data.
func (a *App) SeedDemo(ctx context.Context) (int, error) {
	existing, err := a.store.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	now := a.now().UTC()
	demo := []journal.Trade{
		{
			Date: now.Add(-24 * time.Hour).Format(time.RFC3339), Asset: "ETHUSDT", Side: journal.SideShort,
			Qty: 0.1, Entry: 3000, Exit: journal.Float(2950), Fees: journal.Float(0.8), Notes: "Trend pullback",
		},
		{
			Date: now.Format(time.RFC3339), Asset: "BTCUSDT", Side: journal.SideLong,
			Qty: 0.01, Entry: 60000, Exit: journal.Float(60500), Fees: journal.Float(1.2), Notes: "Scalp breakouts",
		},
	}

	for _, t := range demo {
		if _, err := a.RecordTrade(ctx, t); err != nil {
			return 0, fmt.Errorf("seeding demo trade: %w", err)
		}
	}
	return len(demo), nil
}

// ExportSnapshot writes the whole journal to the archive and returns the path.
func (a *App) ExportSnapshot(ctx context.Context) (string, error) {
	if a.archive == nil {
		return "", core.WrapError(core.ErrConfigMissing, fmt.Errorf("no archive configured"))
	}
	trades, err := a.store.List(ctx)
	if err != nil {
		return "", err
	}

	path, err := archive.WriteSnapshot(ctx, a.archive, trades, a.now())
	if err != nil {
		return "", err
	}
	a.logger.Info("journal exported", zap.String("path", path), zap.Int("trades", len(trades)))
	return path, nil
}

// ImportSnapshot replaces the journal with an archived snapshot. An empty
// path selects the most recent one. It returns the resolved path and the
// number of trades loaded. The journal is untouched unless the whole
// snapshot is stored.
func (a *App) ImportSnapshot(ctx context.Context, path string) (string, int, error) {
	if a.archive == nil {
		return "", 0, core.WrapError(core.ErrConfigMissing, fmt.Errorf("no archive configured"))
	}
	if path == "" {
		latest, err := archive.LatestSnapshot(ctx, a.archive)
		if err != nil {
			return "", 0, err
		}
		path = latest
	}
	if err := archive.CheckSnapshotPath(path); err != nil {
		return "", 0, err
	}

	snap, err := archive.ReadSnapshot(ctx, a.archive, path)
	if err != nil {
		return "", 0, err
	}
	if err := snap.Validate(); err != nil {
		return "", 0, fmt.Errorf("snapshot %s: %w", path, err)
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := a.store.Replace(ctx, snap.Trades); err != nil {
		return "", 0, err
	}

	a.recordOp(ctx, "import")
	a.logger.Info("journal imported", zap.String("path", path), zap.Int("trades", len(snap.Trades)))
	return path, len(snap.Trades), nil
}

// RefreshMarket fetches a new market snapshot and caches it.
func (a *App) RefreshMarket(ctx context.Context) (*market.Snapshot, error) {
	a.mu.RLock()
	src := a.market
	symbols := append([]string(nil), a.symbols...)
	a.mu.RUnlock()

	if src == nil {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("market data disabled"))
	}

	start := time.Now()
	snap := src.Snapshot(ctx, symbols)

	status := "ok"
	switch {
	case len(snap.Quotes) == 0 && len(symbols) > 0:
		status = "failed"
	case len(snap.Errors) > 0:
		status = "partial"
	}
	if a.metrics != nil {
		a.metrics.RecordMarketPoll(status, time.Since(start).Seconds())
	}
	if len(snap.Errors) > 0 {
		a.logger.Warn("market refresh incomplete",
			zap.String("status", status),
			zap.Any("errors", snap.Errors),
		)
	}

	a.mu.Lock()
	a.snapshot = snap
	a.mu.Unlock()
	return snap, nil
}

// MarketSnapshot returns the last cached snapshot, nil before the first refresh.
func (a *App) MarketSnapshot() *market.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// Start runs the market polling loop until ctx is cancelled or Stop is called.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app already running")
	}
	a.running = true

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	interval := a.interval
	enabled := a.market != nil
	symbols := len(a.symbols)
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	if !enabled {
		a.logger.Info("market polling disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	a.logger.Info("market polling started",
		zap.Int("symbols", symbols),
		zap.Duration("interval", interval),
	)

	// Initial run
	a.RefreshMarket(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("market polling stopped")
			return ctx.Err()
		case <-ticker.C:
			a.RefreshMarket(ctx)
		}
	}
}

// Stop stops the polling loop
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// IsRunning reports whether the polling loop is active
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// Close releases the trade store
func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) recordOp(ctx context.Context, op string) {
	if a.metrics == nil {
		return
	}
	a.metrics.RecordTradeOp(op)

	trades, err := a.store.List(ctx)
	if err != nil {
		return
	}
	open := 0
	for _, t := range trades {
		if !t.IsClosed() {
			open++
		}
	}
	a.metrics.SetJournalSize(open, len(trades)-open)
}
