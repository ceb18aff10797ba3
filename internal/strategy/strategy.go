package strategy

import "time"

type Signal string

const (
	Hold Signal = "HOLD"
	Buy  Signal = "BUY"
	Sell Signal = "SELL"
)

// Snapshot is one tick's view of the market: the last traded price and the
// closing-price series collected so far, oldest first.
type Snapshot struct {
	Time   time.Time
	Last   float64
	Closes []float64
}

type Generator interface {
	Signal(snapshot Snapshot) Signal
}
