package market

import (
	"context"
	"time"
)

// Ticker is the latest traded price for a pair.
type Ticker struct {
	Last float64
	Time time.Time
}

// Candle is one OHLCV bar at a fixed timeframe.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Exchange is the market-data and balance collaborator. Implementations must
// honor the context and bound every call with a timeout.
type Exchange interface {
	FetchTicker(ctx context.Context, pair string) (Ticker, error)
	FetchOHLCV(ctx context.Context, pair, timeframe string, limit int) ([]Candle, error)
	FetchBalance(ctx context.Context) (map[string]float64, error)
}
