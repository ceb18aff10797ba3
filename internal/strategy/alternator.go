package strategy

// Alternator flips BUY/SELL on wall-clock minute parity. It ignores prices
// entirely and is useful for exercising the downstream pipeline; Crossover is
// the real signal source.
type Alternator struct{}

func (Alternator) Signal(snapshot Snapshot) Signal {
	if snapshot.Time.Minute()%2 == 0 {
		return Buy
	}
	return Sell
}
