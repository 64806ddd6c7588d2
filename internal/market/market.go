// Package market builds the market overview shown next to the journal:
// spot quotes with provider fallback, the Fear & Greed index, headlines and
// upcoming macro events.
package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/cryptodash/internal/core"
	"github.com/newthinker/cryptodash/internal/logger"
	"github.com/newthinker/cryptodash/internal/market/binance"
	"github.com/newthinker/cryptodash/internal/market/calendar"
	"github.com/newthinker/cryptodash/internal/market/coingecko"
	"github.com/newthinker/cryptodash/internal/market/news"
	"github.com/newthinker/cryptodash/internal/market/sentiment"
	"github.com/newthinker/cryptodash/internal/market/symbol"
)

// Provider is a spot quote source. Symbols are normalized pairs such as "BTCUSDT".
type Provider interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (*core.Quote, error)
}

// SentimentSource supplies the Fear & Greed index.
type SentimentSource interface {
	Fetch(ctx context.Context) (*sentiment.Index, error)
}

// NewsSource supplies recent headlines.
type NewsSource interface {
	Fetch(ctx context.Context) ([]news.Post, error)
}

// CalendarSource supplies upcoming economic events.
type CalendarSource interface {
	Fetch(ctx context.Context) ([]calendar.Event, error)
}

// Observer is notified of every provider attempt.
type Observer interface {
	ObserveQuoteFetch(provider, status string)
}

// Config selects providers and symbols.
type Config struct {
	Providers       []string
	DefaultQuote    string
	CoinGeckoAPIKey string
	SentimentURL    string

	// News is fetched only when a CryptoPanic token is set.
	CryptoPanicToken string
	NewsURL          string

	// An empty CalendarURL disables the economic calendar.
	CalendarURL string
}

// Snapshot is one refresh of the market overview.
type Snapshot struct {
	Quotes    []core.Quote      `json:"quotes"`
	FearGreed *sentiment.Index  `json:"fear_greed,omitempty"`
	News      []news.Post       `json:"news,omitempty"`
	Calendar  []calendar.Event  `json:"calendar,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Price returns the latest price for a base asset ("BTC") or pair ("BTCUSDT").
func (s *Snapshot) Price(asset string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	base := symbol.Base(asset)
	for _, q := range s.Quotes {
		if symbol.Base(q.Symbol) == base {
			return q.Price, true
		}
	}
	return 0, false
}

// Collector fetches quotes, trying providers in order until one succeeds.
type Collector struct {
	providers    []Provider
	sentiment    SentimentSource
	news         NewsSource
	calendar     CalendarSource
	defaultQuote string
	observer     Observer
	logger       *zap.Logger
}

// New builds a Collector from configuration. Unknown provider names are
// rejected; an empty list means Binance then CoinGecko.
func New(cfg Config, log *zap.Logger) (*Collector, error) {
	names := cfg.Providers
	if len(names) == 0 {
		names = []string{"binance", "coingecko"}
	}

	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		switch name {
		case "binance":
			providers = append(providers, binance.New())
		case "coingecko":
			providers = append(providers, coingecko.New(cfg.CoinGeckoAPIKey))
		default:
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown market provider %q", name))
		}
	}

	c := NewWithProviders(providers, sentiment.New(cfg.SentimentURL), cfg.DefaultQuote, log)
	if cfg.CryptoPanicToken != "" {
		c.SetNews(news.New(cfg.CryptoPanicToken, cfg.NewsURL))
	}
	if cfg.CalendarURL != "" {
		c.SetCalendar(calendar.New(cfg.CalendarURL))
	}
	return c, nil
}

// NewWithProviders creates a Collector with explicit sources. sent may be nil.
func NewWithProviders(providers []Provider, sent SentimentSource, defaultQuote string, log *zap.Logger) *Collector {
	if defaultQuote == "" {
		defaultQuote = "USDT"
	}
	return &Collector{
		providers:    providers,
		sentiment:    sent,
		defaultQuote: defaultQuote,
		logger:       logger.Named(log, "market"),
	}
}

// SetNews enables headlines in snapshots.
func (c *Collector) SetNews(src NewsSource) {
	c.news = src
}

// SetCalendar enables upcoming economic events in snapshots.
func (c *Collector) SetCalendar(src CalendarSource) {
	c.calendar = src
}

// SetObserver installs a provider attempt observer, typically the metrics registry.
func (c *Collector) SetObserver(o Observer) {
	c.observer = o
}

// Providers returns the provider names in fallback order.
func (c *Collector) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// FetchQuote fetches a quote with automatic fallback across providers.
func (c *Collector) FetchQuote(ctx context.Context, sym string) (*core.Quote, error) {
	if err := symbol.Validate(sym); err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	pair := symbol.Normalize(sym, c.defaultQuote)

	var lastErr error
	for _, p := range c.providers {
		quote, err := p.FetchQuote(ctx, pair)
		if err == nil && quote.Price > 0 {
			c.observe(p.Name(), "ok")
			quote.Symbol = pair
			quote.Source = p.Name()
			return quote, nil
		}
		if err == nil {
			err = fmt.Errorf("%s returned no price", p.Name())
		}
		c.observe(p.Name(), "error")
		c.logger.Debug("provider failed, trying next",
			zap.String("provider", p.Name()),
			zap.String("symbol", pair),
			zap.Error(err))
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no providers configured")
	}
	return nil, core.WrapError(core.ErrProviderFailed, fmt.Errorf("all providers failed for %s: %w", pair, lastErr))
}

// Snapshot fetches every symbol concurrently alongside the sentiment index,
// headlines and calendar. Individual failures are reported in
// Snapshot.Errors rather than failing the whole refresh; quotes keep the
// order of symbols.
func (c *Collector) Snapshot(ctx context.Context, symbols []string) *Snapshot {
	results := make([]*core.Quote, len(symbols))
	errs := make([]error, len(symbols))

	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			results[i], errs[i] = c.FetchQuote(ctx, sym)
		}(i, sym)
	}

	var (
		fng                     *sentiment.Index
		posts                   []news.Post
		events                  []calendar.Event
		fngErr, newsErr, calErr error
	)
	if c.sentiment != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fng, fngErr = c.sentiment.Fetch(ctx)
		}()
	}
	if c.news != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			posts, newsErr = c.news.Fetch(ctx)
		}()
	}
	if c.calendar != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			events, calErr = c.calendar.Fetch(ctx)
		}()
	}
	wg.Wait()

	snap := &Snapshot{
		Quotes:    make([]core.Quote, 0, len(symbols)),
		FearGreed: fng,
		News:      posts,
		Calendar:  events,
		UpdatedAt: time.Now().UTC(),
	}
	for i, q := range results {
		if errs[i] != nil {
			snap.addError(symbols[i], errs[i])
			continue
		}
		snap.Quotes = append(snap.Quotes, *q)
	}
	if fngErr != nil {
		snap.addError("fear_greed", fngErr)
	}
	if newsErr != nil {
		snap.addError("news", newsErr)
	}
	if calErr != nil {
		snap.addError("calendar", calErr)
	}
	return snap
}

func (s *Snapshot) addError(key string, err error) {
	if s.Errors == nil {
		s.Errors = make(map[string]string)
	}
	s.Errors[key] = err.Error()
}

func (c *Collector) observe(provider, status string) {
	if c.observer != nil {
		c.observer.ObserveQuoteFetch(provider, status)
	}
}
