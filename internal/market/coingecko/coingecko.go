package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newthinker/cryptodash/internal/core"
	"github.com/newthinker/cryptodash/internal/market/symbol"
)

const (
	baseURL = "https://api.coingecko.com/api/v3"
)

// Base asset to CoinGecko coin ID
var symbolToIDMap = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"ADA":   "cardano",
	"AVAX":  "avalanche-2",
	"DOT":   "polkadot",
	"LINK":  "chainlink",
	"LTC":   "litecoin",
	"ATOM":  "cosmos",
	"NEAR":  "near",
	"ARB":   "arbitrum",
	"OP":    "optimism",
	"TON":   "the-open-network",
	"TRX":   "tron",
	"SUI":   "sui",
	"PEPE":  "pepe",
	"MATIC": "matic-network",
}

// CoinGecko fetches spot prices from the CoinGecko simple price API
type CoinGecko struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new CoinGecko provider. apiKey may be empty.
func New(apiKey string) *CoinGecko {
	return &CoinGecko{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates a CoinGecko provider with custom base URL (for testing)
func NewWithBaseURL(apiKey, url string) *CoinGecko {
	c := New(apiKey)
	c.baseURL = url
	return c
}

func (c *CoinGecko) Name() string {
	return "coingecko"
}

func (c *CoinGecko) symbolToID(pair string) string {
	base, _ := symbol.Parse(pair)
	if id, ok := symbolToIDMap[base]; ok {
		return id
	}
	return strings.ToLower(base)
}

func (c *CoinGecko) symbolToVsCurrency(pair string) string {
	_, quote := symbol.Parse(pair)
	switch quote {
	case "BTC":
		return "btc"
	case "ETH":
		return "eth"
	default:
		return "usd"
	}
}

// FetchQuote fetches the spot price, 24h change and volume for a pair.
func (c *CoinGecko) FetchQuote(ctx context.Context, pair string) (*core.Quote, error) {
	coinID := c.symbolToID(pair)
	vs := c.symbolToVsCurrency(pair)

	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s&include_24hr_vol=true&include_24hr_change=true&include_last_updated_at=true",
		c.baseURL, coinID, vs)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	coin, ok := result[coinID]
	if !ok || coin[vs] <= 0 {
		return nil, fmt.Errorf("no data for coin: %s", coinID)
	}

	return &core.Quote{
		Symbol:        pair,
		Market:        core.MarketCrypto,
		Price:         coin[vs],
		Volume:        coin[vs+"_24h_vol"],
		ChangePercent: coin[vs+"_24h_change"],
		Time:          time.Unix(int64(coin["last_updated_at"]), 0),
		Source:        "coingecko",
	}, nil
}
