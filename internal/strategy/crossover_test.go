package strategy

import (
	"testing"
	"time"
)

func flatSeries(n int, value float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = value
	}
	return closes
}

func TestCrossoverBuySignal(t *testing.T) {
	gen := NewCrossover(5, 20)
	closes := flatSeries(20, 100)
	for i := 15; i < 20; i++ {
		closes[i] = 110
	}

	if got := gen.Signal(Snapshot{Closes: closes}); got != Buy {
		t.Fatalf("expected BUY, got %s", got)
	}
}

func TestCrossoverSellSignal(t *testing.T) {
	gen := NewCrossover(5, 20)
	closes := flatSeries(20, 100)
	for i := 15; i < 20; i++ {
		closes[i] = 90
	}

	if got := gen.Signal(Snapshot{Closes: closes}); got != Sell {
		t.Fatalf("expected SELL, got %s", got)
	}
}

func TestCrossoverHoldsOnEqualAverages(t *testing.T) {
	gen := NewCrossover(5, 20)

	if got := gen.Signal(Snapshot{Closes: flatSeries(20, 100)}); got != Hold {
		t.Fatalf("expected HOLD, got %s", got)
	}
}

func TestCrossoverHoldsOnShortSeries(t *testing.T) {
	gen := NewCrossover(5, 20)

	if got := gen.Signal(Snapshot{Closes: flatSeries(19, 100)}); got != Hold {
		t.Fatalf("expected HOLD with short series, got %s", got)
	}
}

func TestAlternatorFlipsOnMinuteParity(t *testing.T) {
	gen := Alternator{}
	even := time.Date(2024, 5, 1, 12, 4, 0, 0, time.UTC)
	odd := even.Add(time.Minute)

	if got := gen.Signal(Snapshot{Time: even}); got != Buy {
		t.Fatalf("expected BUY on even minute, got %s", got)
	}
	if got := gen.Signal(Snapshot{Time: odd}); got != Sell {
		t.Fatalf("expected SELL on odd minute, got %s", got)
	}
}
