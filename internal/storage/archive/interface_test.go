// internal/storage/archive/interface_test.go
package archive

import (
	"errors"
	"testing"

	"github.com/newthinker/cryptodash/internal/core"
)

func TestNew(t *testing.T) {
	st, err := New(Config{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("New localfs: %v", err)
	}
	if _, ok := st.(*LocalFS); !ok {
		t.Errorf("expected *LocalFS for empty type, got %T", st)
	}

	st, err = New(Config{Type: "s3", S3: S3Config{Bucket: "journal", Endpoint: "http://localhost:9000"}})
	if err != nil {
		t.Fatalf("New s3: %v", err)
	}
	if _, ok := st.(*S3Storage); !ok {
		t.Errorf("expected *S3Storage, got %T", st)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(Config{Type: "gcs"}); !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("unknown type: got %v, want ErrConfigInvalid", err)
	}
	if _, err := New(Config{Type: "s3"}); !errors.Is(err, core.ErrConfigMissing) {
		t.Errorf("missing bucket: got %v, want ErrConfigMissing", err)
	}
}
