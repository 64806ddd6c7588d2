package sentiment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestClient_Fetch(t *testing.T) {
	url := serve(t, http.StatusOK, `{
		"name": "Fear and Greed Index",
		"data": [{"value": "72", "value_classification": "Greed", "timestamp": "1704067200", "time_until_update": "3600"}],
		"metadata": {"error": null}
	}`)

	idx, err := New(url).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 72, idx.Value)
	assert.Equal(t, "Greed", idx.Classification)
	assert.Equal(t, int64(1704067200), idx.Time.Unix())
}

func TestClient_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad status", http.StatusServiceUnavailable, ``},
		{"empty data", http.StatusOK, `{"data": []}`},
		{"non-numeric value", http.StatusOK, `{"data": [{"value": "high"}]}`},
		{"malformed json", http.StatusOK, `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(serve(t, tt.status, tt.body)).Fetch(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestNew_DefaultURL(t *testing.T) {
	assert.Equal(t, DefaultURL, New("").url)
}
