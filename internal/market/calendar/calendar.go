// Package calendar reads upcoming macro events from the Trading Economics
// calendar.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// DefaultURL is the public calendar with guest credentials.
const DefaultURL = "https://api.tradingeconomics.com/calendar?c=guest:guest&format=json"

// Limit caps the events kept per refresh.
const Limit = 10

// Event is one scheduled release.
type Event struct {
	Date     time.Time `json:"date"`
	Event    string    `json:"event"`
	Country  string    `json:"country,omitempty"`
	Category string    `json:"category,omitempty"`
}

// Client fetches the calendar over HTTP.
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

// Fetch returns the earliest Limit events that carry both a date and a name,
// ordered by date. A response that is not a JSON array yields no events.
func (c *Client) Fetch(ctx context.Context) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		if !json.Valid(data) {
			return nil, fmt.Errorf("decoding response: invalid json")
		}
		return []Event{}, nil
	}

	var raw []rawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return upcoming(raw), nil
}

func upcoming(raw []rawEvent) []Event {
	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		if r.Date == "" || r.Event == "" {
			continue
		}
		ts, ok := parseDate(r.Date)
		if !ok {
			continue
		}
		events = append(events, Event{Date: ts, Event: r.Event, Country: r.Country, Category: r.Category})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	if len(events) > Limit {
		events = events[:Limit]
	}
	return events
}

// dates come without a zone and are UTC
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

type rawEvent struct {
	Date     string `json:"Date"`
	Event    string `json:"Event"`
	Country  string `json:"Country"`
	Category string `json:"Category"`
}
