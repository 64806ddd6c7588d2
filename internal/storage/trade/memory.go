// internal/storage/trade/memory.go
package trade

import (
	"context"
	"fmt"
	"sync"

	"github.com/newthinker/cryptodash/internal/core"
	"github.com/newthinker/cryptodash/internal/journal"
)

// MemoryStore is an in-memory trade store. Trades are kept newest first.
type MemoryStore struct {
	trades []journal.Trade
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trades: make([]journal.Trade, 0)}
}

// Save upserts a trade and moves it to the front.
func (m *MemoryStore) Save(ctx context.Context, t journal.Trade) error {
	if t.ID == "" {
		return core.WrapError(core.ErrInvalidTrade, fmt.Errorf("trade id is required"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(t.ID); i >= 0 {
		m.trades = append(m.trades[:i], m.trades[i+1:]...)
	}
	m.trades = append([]journal.Trade{t}, m.trades...)
	return nil
}

// Get retrieves a trade by ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (journal.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(id); i >= 0 {
		return m.trades[i], nil
	}
	return journal.Trade{}, core.ErrTradeNotFound
}

// List returns a copy of all trades.
func (m *MemoryStore) List(ctx context.Context) ([]journal.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]journal.Trade, len(m.trades))
	copy(out, m.trades)
	return out, nil
}

// Delete removes a trade by ID.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return core.ErrTradeNotFound
	}
	m.trades = append(m.trades[:i], m.trades[i+1:]...)
	return nil
}

// Replace swaps the journal in one step.
func (m *MemoryStore) Replace(ctx context.Context, trades []journal.Trade) error {
	next := make([]journal.Trade, len(trades))
	for i, t := range trades {
		if t.ID == "" {
			return core.WrapError(core.ErrInvalidTrade, fmt.Errorf("trade id is required"))
		}
		next[i] = t
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = next
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) indexOf(id string) int {
	for i := range m.trades {
		if m.trades[i].ID == id {
			return i
		}
	}
	return -1
}
