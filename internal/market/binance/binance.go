package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/newthinker/cryptodash/internal/core"
)

const (
	baseURL = "https://api.binance.com"
)

// Binance fetches spot tickers from the Binance public REST API
type Binance struct {
	client  *http.Client
	baseURL string
}

// New creates a new Binance provider
func New() *Binance {
	return &Binance{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// NewWithBaseURL creates a Binance provider with custom base URL (for testing)
func NewWithBaseURL(url string) *Binance {
	b := New()
	b.baseURL = url
	return b
}

func (b *Binance) Name() string {
	return "binance"
}

// FetchQuote fetches the rolling 24h ticker for a pair such as "BTCUSDT".
func (b *Binance) FetchQuote(ctx context.Context, symbol string) (*core.Quote, error) {
	endpoint := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", b.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Msg != "" {
			return nil, fmt.Errorf("binance error %d: %s", apiErr.Code, apiErr.Msg)
		}
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result ticker24hr
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	price, err := strconv.ParseFloat(result.LastPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing last price %q: %w", result.LastPrice, err)
	}
	open, _ := strconv.ParseFloat(result.OpenPrice, 64)
	high, _ := strconv.ParseFloat(result.HighPrice, 64)
	low, _ := strconv.ParseFloat(result.LowPrice, 64)
	change, _ := strconv.ParseFloat(result.PriceChange, 64)
	changePercent, _ := strconv.ParseFloat(result.PriceChangePercent, 64)
	volume, _ := strconv.ParseFloat(result.Volume, 64)
	bid, _ := strconv.ParseFloat(result.BidPrice, 64)
	ask, _ := strconv.ParseFloat(result.AskPrice, 64)

	return &core.Quote{
		Symbol:        symbol,
		Market:        core.MarketCrypto,
		Price:         price,
		Open:          open,
		High:          high,
		Low:           low,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        volume,
		Bid:           bid,
		Ask:           ask,
		Time:          time.UnixMilli(result.CloseTime),
		Source:        "binance",
	}, nil
}

type ticker24hr struct {
	Symbol             string `json:"symbol"`
	PriceChange        string `json:"priceChange"`
	PriceChangePercent string `json:"priceChangePercent"`
	LastPrice          string `json:"lastPrice"`
	OpenPrice          string `json:"openPrice"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	Volume             string `json:"volume"`
	BidPrice           string `json:"bidPrice"`
	AskPrice           string `json:"askPrice"`
	CloseTime          int64  `json:"closeTime"`
}

type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
