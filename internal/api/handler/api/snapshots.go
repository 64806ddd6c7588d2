// internal/api/handler/api/snapshots.go
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/newthinker/cryptodash/internal/api/response"
	"github.com/newthinker/cryptodash/internal/core"
)

// SnapshotApp defines the interface needed from app.App.
type SnapshotApp interface {
	ExportSnapshot(ctx context.Context) (string, error)
	ImportSnapshot(ctx context.Context, path string) (string, int, error)
}

// SnapshotsHandler exports and restores journal snapshots.
type SnapshotsHandler struct {
	app SnapshotApp
}

// NewSnapshotsHandler creates a new snapshots handler.
func NewSnapshotsHandler(app SnapshotApp) *SnapshotsHandler {
	return &SnapshotsHandler{app: app}
}

// ImportRequest is the request body for a restore. An empty path restores
// the latest snapshot.
type ImportRequest struct {
	Path string `json:"path"`
}

// Export writes the journal to the archive.
func (h *SnapshotsHandler) Export(w http.ResponseWriter, r *http.Request) {
	path, err := h.app.ExportSnapshot(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{"path": path})
}

// Import replaces the journal with an archived snapshot.
func (h *SnapshotsHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrInvalidTrade, err))
			return
		}
	}

	path, n, err := h.app.ImportSnapshot(r.Context(), req.Path)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"path":     path,
		"imported": n,
	})
}
