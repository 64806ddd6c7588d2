// Package sentiment reads the crypto Fear & Greed index.
package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// DefaultURL is the alternative.me Fear & Greed endpoint, latest value only.
const DefaultURL = "https://api.alternative.me/fng/?limit=1"

// Index is one Fear & Greed reading, 0 (extreme fear) to 100 (extreme greed).
type Index struct {
	Value          int       `json:"value"`
	Classification string    `json:"classification"`
	Time           time.Time `json:"time"`
}

// Client fetches the index over HTTP.
type Client struct {
	client *http.Client
	url    string
}

// New creates a client for url, DefaultURL when empty.
func New(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
	}
}

// Fetch returns the latest reading.
func (c *Client) Fetch(ctx context.Context) (*Index, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching fear & greed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var body fngResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(body.Data) == 0 {
		return nil, fmt.Errorf("fear & greed response has no data")
	}

	d := body.Data[0]
	value, err := strconv.Atoi(d.Value)
	if err != nil {
		return nil, fmt.Errorf("parsing value %q: %w", d.Value, err)
	}
	idx := &Index{Value: value, Classification: d.Classification}
	if ts, err := strconv.ParseInt(d.Timestamp, 10, 64); err == nil {
		idx.Time = time.Unix(ts, 0).UTC()
	}
	return idx, nil
}

// the API encodes every field as a string
type fngResponse struct {
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
		Timestamp      string `json:"timestamp"`
	} `json:"data"`
}
