// Package news reads public crypto headlines from CryptoPanic.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultURL is the CryptoPanic posts endpoint.
const DefaultURL = "https://cryptopanic.com/api/v1/posts/"

// Limit caps the headlines kept per refresh.
const Limit = 6

// Post is one headline.
type Post struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Domain      string    `json:"domain,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Client fetches headlines with an API token.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
}

// New creates a client for baseURL, DefaultURL when empty.
func New(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		token:   token,
	}
}

// Fetch returns the latest public posts, at most Limit.
func (c *Client) Fetch(ctx context.Context) ([]Post, error) {
	if c.token == "" {
		return nil, fmt.Errorf("cryptopanic token not set")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	q := u.Query()
	q.Set("auth_token", c.token)
	q.Set("public", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// the request URL carries the token
		return nil, fmt.Errorf("fetching news: %w", redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var body postsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	posts := make([]Post, 0, Limit)
	for _, p := range body.Results {
		if p.Title == "" {
			continue
		}
		posts = append(posts, Post{
			Title:       p.Title,
			URL:         p.URL,
			Domain:      p.Domain,
			PublishedAt: p.PublishedAt,
		})
		if len(posts) == Limit {
			break
		}
	}
	return posts, nil
}

func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

type postsResponse struct {
	Results []struct {
		Title       string    `json:"title"`
		URL         string    `json:"url"`
		Domain      string    `json:"domain"`
		PublishedAt time.Time `json:"published_at"`
	} `json:"results"`
}
