package core

import "time"

// Market represents a trading venue class
type Market string

const (
	MarketCrypto Market = "CRYPTO"
)

// Quote represents a real-time price quote
type Quote struct {
	Symbol        string    `json:"symbol"`
	Market        Market    `json:"market"`
	Price         float64   `json:"price"`
	Open          float64   `json:"open,omitempty"`
	High          float64   `json:"high,omitempty"`
	Low           float64   `json:"low,omitempty"`
	Change        float64   `json:"change,omitempty"`
	ChangePercent float64   `json:"change_percent"`
	Volume        float64   `json:"volume"`
	Bid           float64   `json:"bid,omitempty"`
	Ask           float64   `json:"ask,omitempty"`
	Time          time.Time `json:"time"`
	Source        string    `json:"source"`
}

// IsValid checks if the quote has required fields
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.Price > 0
}
