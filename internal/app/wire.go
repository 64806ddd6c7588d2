package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/newthinker/cryptodash/internal/config"
	"github.com/newthinker/cryptodash/internal/market"
	"github.com/newthinker/cryptodash/internal/metrics"
	"github.com/newthinker/cryptodash/internal/storage/archive"
	"github.com/newthinker/cryptodash/internal/storage/trade"
)

// Build assembles an App from configuration. The returned App owns the
// trade store; callers release it with Close. reg may be nil.
func Build(cfg *config.Config, reg *metrics.Registry, log *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := openStore(cfg.Storage.Journal)
	if err != nil {
		return nil, err
	}

	a := New(store, log)
	loc, _ := cfg.Journal.Location()
	a.SetLocation(loc)
	a.SetMetrics(reg)

	st, err := archive.New(archive.Config{
		Type: cfg.Storage.Archive.Type,
		Path: cfg.Storage.Archive.Path,
		S3: archive.S3Config{
			Bucket:    cfg.Storage.Archive.S3.Bucket,
			Endpoint:  cfg.Storage.Archive.S3.Endpoint,
			Region:    cfg.Storage.Archive.S3.Region,
			AccessKey: cfg.Storage.Archive.S3.AccessKey,
			SecretKey: cfg.Storage.Archive.S3.SecretKey,
			Prefix:    cfg.Storage.Archive.S3.Prefix,
		},
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	a.SetArchive(st)

	if cfg.Market.Enabled {
		collector, err := market.New(market.Config{
			Providers:       cfg.Market.Providers,
			DefaultQuote:    cfg.Market.DefaultQuote,
			CoinGeckoAPIKey: cfg.Market.CoinGeckoAPIKey,
			SentimentURL:    cfg.Market.SentimentURL,

			CryptoPanicToken: cfg.Market.CryptoPanicToken,
			NewsURL:          cfg.Market.NewsURL,
			CalendarURL:      cfg.Market.CalendarURL,
		}, log)
		if err != nil {
			store.Close()
			return nil, err
		}
		if reg != nil {
			collector.SetObserver(reg)
		}
		a.SetMarket(collector, cfg.Market.Symbols)
		a.SetInterval(cfg.Market.PollInterval)
	}

	return a, nil
}

func openStore(cfg config.JournalStoreConfig) (trade.Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return trade.NewMemoryStore(), nil
	case "sqlite":
		st, err := trade.NewSQLiteStore(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown journal driver %q", cfg.Driver)
	}
}
