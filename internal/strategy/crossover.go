package strategy

// Crossover compares a fast and a slow simple moving average over closing
// prices. It holds until the series covers the slow window.
type Crossover struct {
	FastWindow int
	SlowWindow int
}

func NewCrossover(fast, slow int) Crossover {
	return Crossover{FastWindow: fast, SlowWindow: slow}
}

func (c Crossover) Signal(snapshot Snapshot) Signal {
	if len(snapshot.Closes) < c.SlowWindow {
		return Hold
	}
	fast := mean(tail(snapshot.Closes, c.FastWindow))
	slow := mean(tail(snapshot.Closes, c.SlowWindow))
	switch {
	case fast > slow:
		return Buy
	case fast < slow:
		return Sell
	}
	return Hold
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
