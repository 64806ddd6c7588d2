// internal/api/response/response_test.go
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/cryptodash/internal/core"
)

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"hello": "world"}

	JSON(w, http.StatusOK, data)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected application/json content type")
	}

	var resp SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data == nil {
		t.Error("expected data in response")
	}
	if resp.Meta.Timestamp.IsZero() {
		t.Error("expected timestamp in meta")
	}
	if resp.Meta.Count != nil {
		t.Error("expected no count for single objects")
	}
}

func TestList(t *testing.T) {
	w := httptest.NewRecorder()

	List(w, []string{"a", "b"}, 2)

	var resp SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Meta.Count == nil || *resp.Meta.Count != 2 {
		t.Errorf("expected count 2, got %v", resp.Meta.Count)
	}
}

func TestError_WithCoreError(t *testing.T) {
	w := httptest.NewRecorder()
	err := core.WrapError(core.ErrInvalidTrade, errors.New("qty must be positive"))

	Error(w, http.StatusBadRequest, err)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "INVALID_TRADE" {
		t.Errorf("expected INVALID_TRADE, got %s", resp.Error.Code)
	}
	if resp.Error.Cause != "qty must be positive" {
		t.Errorf("unexpected cause %q", resp.Error.Cause)
	}
}

func TestError_WithStandardError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusInternalServerError, errors.New("disk on fire"))

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", resp.Error.Code)
	}
	if resp.Error.Cause != "" {
		t.Error("internal causes must not leak")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrTradeNotFound, http.StatusNotFound},
		{core.WrapError(core.ErrNoData, nil), http.StatusNotFound},
		{core.WrapError(core.ErrInvalidTrade, nil), http.StatusBadRequest},
		{fmt.Errorf("parsing: %w", core.WrapError(core.ErrInvalidFilter, nil)), http.StatusBadRequest},
		{core.WrapError(core.ErrInvalidPath, nil), http.StatusBadRequest},
		{core.ErrUnauthorized, http.StatusUnauthorized},
		{core.ErrProviderFailed, http.StatusBadGateway},
		{core.ErrConfigMissing, http.StatusServiceUnavailable},
		{core.ErrStorageFailed, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestFail(t *testing.T) {
	w := httptest.NewRecorder()

	Fail(w, core.ErrTradeNotFound)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
