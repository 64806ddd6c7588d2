// internal/storage/trade/interface.go
package trade

import (
	"context"

	"github.com/newthinker/cryptodash/internal/journal"
)

// Store defines the interface for journal persistence.
type Store interface {
	// Save inserts or replaces a trade by ID. The saved trade becomes the
	// first element returned by List.
	Save(ctx context.Context, t journal.Trade) error

	// Get retrieves a trade by its ID.
	Get(ctx context.Context, id string) (journal.Trade, error)

	// List returns every trade, most recently saved first.
	List(ctx context.Context) ([]journal.Trade, error)

	// Delete removes a trade by its ID.
	Delete(ctx context.Context, id string) error

	// Replace swaps the whole journal for trades, given newest first.
	// Either every trade is stored or the journal is left unchanged.
	Replace(ctx context.Context, trades []journal.Trade) error

	Close() error
}
