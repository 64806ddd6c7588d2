// internal/storage/trade/sqlite.go
package trade

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/newthinker/cryptodash/internal/core"
	"github.com/newthinker/cryptodash/internal/journal"
)

// Schema is applied on open. seq orders the journal by last save.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id     TEXT PRIMARY KEY,
	seq    INTEGER NOT NULL,
	date   TEXT NOT NULL,
	asset  TEXT NOT NULL,
	side   TEXT NOT NULL,
	qty    REAL NOT NULL,
	entry  REAL NOT NULL,
	exit   REAL,
	fees   REAL,
	notes  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_trades_seq ON trades(seq);
`

const upsertTrade = `
INSERT INTO trades (id, seq, date, asset, side, qty, entry, exit, fees, notes)
VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM trades), ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	seq = excluded.seq,
	date = excluded.date,
	asset = excluded.asset,
	side = excluded.side,
	qty = excluded.qty,
	entry = excluded.entry,
	exit = excluded.exit,
	fees = excluded.fees,
	notes = excluded.notes`

const insertTrade = `
INSERT INTO trades (id, seq, date, asset, side, qty, entry, exit, fees, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectTrades = `SELECT id, date, asset, side, qty, entry, exit, fees, notes FROM trades`

// SQLiteStore persists the journal in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dsn and applies the schema.
// The parent directory of a plain file path is created if needed.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("creating journal directory: %w", err))
		}
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("applying schema: %w", err))
	}

	return &SQLiteStore{db: db}, nil
}

// Save upserts a trade and bumps it to the front of the journal.
func (s *SQLiteStore) Save(ctx context.Context, t journal.Trade) error {
	if t.ID == "" {
		return core.WrapError(core.ErrInvalidTrade, fmt.Errorf("trade id is required"))
	}

	_, err := s.db.ExecContext(ctx, upsertTrade,
		t.ID, t.Date, t.Asset, string(t.Side), t.Qty, t.Entry,
		nullFloat(t.Exit), nullFloat(t.Fees), t.Notes,
	)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("saving trade %s: %w", t.ID, err))
	}
	return nil
}

// Get retrieves a trade by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (journal.Trade, error) {
	row := s.db.QueryRowContext(ctx, selectTrades+` WHERE id = ?`, id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return journal.Trade{}, core.ErrTradeNotFound
	}
	if err != nil {
		return journal.Trade{}, core.WrapError(core.ErrStorageFailed, err)
	}
	return t, nil
}

// List returns all trades, most recently saved first.
func (s *SQLiteStore) List(ctx context.Context) ([]journal.Trade, error) {
	rows, err := s.db.QueryContext(ctx, selectTrades+` ORDER BY seq DESC`)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	defer rows.Close()

	trades := make([]journal.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return trades, nil
}

// Delete removes a trade by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	if n == 0 {
		return core.ErrTradeNotFound
	}
	return nil
}

// Replace rewrites the table inside one transaction.
func (s *SQLiteStore) Replace(ctx context.Context, trades []journal.Trade) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM trades`); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertTrade)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	defer stmt.Close()

	// the first trade gets the highest seq so List keeps the given order
	for i, t := range trades {
		if t.ID == "" {
			return core.WrapError(core.ErrInvalidTrade, fmt.Errorf("trade id is required"))
		}
		_, err = stmt.ExecContext(ctx,
			t.ID, len(trades)-i, t.Date, t.Asset, string(t.Side), t.Qty, t.Entry,
			nullFloat(t.Exit), nullFloat(t.Fees), t.Notes,
		)
		if err != nil {
			return core.WrapError(core.ErrStorageFailed, fmt.Errorf("inserting trade %s: %w", t.ID, err))
		}
	}

	if err = tx.Commit(); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(sc scanner) (journal.Trade, error) {
	var (
		t         journal.Trade
		side      string
		exit, fee sql.NullFloat64
	)
	if err := sc.Scan(&t.ID, &t.Date, &t.Asset, &side, &t.Qty, &t.Entry, &exit, &fee, &t.Notes); err != nil {
		return journal.Trade{}, err
	}
	t.Side = journal.Side(side)
	if exit.Valid {
		t.Exit = journal.Float(exit.Float64)
	}
	if fee.Valid {
		t.Fees = journal.Float(fee.Float64)
	}
	return t, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
