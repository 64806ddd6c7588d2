// internal/storage/archive/snapshot.go
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/newthinker/cryptodash/internal/core"
	"github.com/newthinker/cryptodash/internal/journal"
)

// SnapshotPrefix is the directory journal snapshots are written under.
const SnapshotPrefix = "journal/"

// snapshotLayout sorts lexically in time order.
const snapshotLayout = "20060102T150405Z"

// Snapshot is the exported form of a whole journal.
type Snapshot struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
	Trades     []journal.Trade `json:"trades"`
}

// SnapshotPath returns the storage path for a snapshot taken at ts.
func SnapshotPath(ts time.Time) string {
	return SnapshotPrefix + ts.UTC().Format(snapshotLayout) + ".json"
}

// CheckSnapshotPath accepts only clean paths to .json files under
// SnapshotPrefix.
func CheckSnapshotPath(p string) error {
	if path.Clean(p) != p || strings.Contains(p, "..") ||
		!strings.HasPrefix(p, SnapshotPrefix) || !strings.HasSuffix(p, ".json") {
		return core.WrapError(core.ErrInvalidPath, fmt.Errorf("%q is not a journal snapshot", p))
	}
	return nil
}

// Validate checks every trade and rejects missing or repeated IDs.
func (s *Snapshot) Validate() error {
	seen := make(map[string]struct{}, len(s.Trades))
	for _, t := range s.Trades {
		if t.ID == "" {
			return core.WrapError(core.ErrInvalidTrade, fmt.Errorf("snapshot has a trade without id"))
		}
		if _, dup := seen[t.ID]; dup {
			return core.WrapError(core.ErrInvalidTrade, fmt.Errorf("snapshot repeats trade id %s", t.ID))
		}
		seen[t.ID] = struct{}{}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("trade %s: %w", t.ID, err)
		}
	}
	return nil
}

// WriteSnapshot stores trades as a new snapshot and returns its path.
func WriteSnapshot(ctx context.Context, st Storage, trades []journal.Trade, now time.Time) (string, error) {
	if trades == nil {
		trades = []journal.Trade{}
	}
	data, err := json.MarshalIndent(Snapshot{Version: 1, ExportedAt: now.UTC(), Trades: trades}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	path := SnapshotPath(now)
	if err := st.Write(ctx, path, data); err != nil {
		return "", err
	}
	return path, nil
}

// ReadSnapshot loads the snapshot at path.
func ReadSnapshot(ctx context.Context, st Storage, path string) (*Snapshot, error) {
	data, err := st.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("decoding %s: %w", path, err))
	}
	return &snap, nil
}

// LatestSnapshot returns the path of the newest snapshot.
func LatestSnapshot(ctx context.Context, st Storage) (string, error) {
	paths, err := st.List(ctx, SnapshotPrefix)
	if err != nil {
		return "", err
	}

	latest := ""
	for _, p := range paths {
		if strings.HasSuffix(p, ".json") && p > latest {
			latest = p
		}
	}
	if latest == "" {
		return "", core.WrapError(core.ErrNoData, fmt.Errorf("no journal snapshots"))
	}
	return latest, nil
}
