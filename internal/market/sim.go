package market

import (
	"context"
	"math"
	"sync"
	"time"
)

// SimExchange is a deterministic in-memory exchange for dry runs and tests.
// Prices follow a slow sine wave around the base price so crossover signals
// fire in both directions.
type SimExchange struct {
	mu        sync.Mutex
	basePrice float64
	amplitude float64
	balances  map[string]float64
	step      int
}

func NewSim(basePrice float64, balances map[string]float64) *SimExchange {
	if balances == nil {
		balances = map[string]float64{}
	}
	return &SimExchange{
		basePrice: basePrice,
		amplitude: basePrice * 0.02,
		balances:  balances,
	}
}

func (s *SimExchange) FetchTicker(ctx context.Context, pair string) (Ticker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step++
	return Ticker{Last: s.priceAt(s.step), Time: time.Now()}, nil
}

func (s *SimExchange) FetchOHLCV(ctx context.Context, pair, timeframe string, limit int) ([]Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candles := make([]Candle, 0, limit)
	now := time.Now()
	for i := 0; i < limit; i++ {
		step := s.step - (limit - 1 - i)
		px := s.priceAt(step)
		candles = append(candles, Candle{
			Time:  now.Add(-time.Duration(limit-1-i) * time.Minute),
			Open:  px,
			High:  px,
			Low:   px,
			Close: px,
		})
	}
	return candles, nil
}

func (s *SimExchange) FetchBalance(ctx context.Context) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.balances))
	for k, v := range s.balances {
		out[k] = v
	}
	return out, nil
}

func (s *SimExchange) priceAt(step int) float64 {
	return s.basePrice + s.amplitude*math.Sin(float64(step)/8.0)
}
