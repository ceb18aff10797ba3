package engine

import (
	"context"
	"math/rand"

	"bitsobot/internal/ledger"
	"bitsobot/internal/market"
	"bitsobot/internal/risk"
)

// OutcomeResolver decides whether a recorded simulated trade counts as a win
// or a loss for the adaptive risk controller. There is no real fill to settle
// against, so the resolution step is explicit and pluggable.
type OutcomeResolver interface {
	Resolve(ctx context.Context, trade ledger.Trade) (risk.Outcome, error)
}

// MarkToMarket refetches the price and compares it to the entry: a BUY wins
// when the price moved up, a SELL when it moved down.
type MarkToMarket struct {
	Exchange market.Exchange
	Pair     string
}

func (m MarkToMarket) Resolve(ctx context.Context, trade ledger.Trade) (risk.Outcome, error) {
	ticker, err := m.Exchange.FetchTicker(ctx, m.Pair)
	if err != nil {
		return risk.OutcomeFlat, err
	}
	entry, _ := trade.Price.Float64()
	switch {
	case ticker.Last == entry:
		return risk.OutcomeFlat, nil
	case ticker.Last > entry:
		if trade.Side == ledger.SideBuy {
			return risk.OutcomeWin, nil
		}
		return risk.OutcomeLoss, nil
	default:
		if trade.Side == ledger.SideSell {
			return risk.OutcomeWin, nil
		}
		return risk.OutcomeLoss, nil
	}
}

// Coin resolves outcomes by seeded coin flip. Simulation stand-in for
// environments without any price feed to mark against.
type Coin struct {
	r *rand.Rand
}

func NewCoin(seed int64) *Coin {
	return &Coin{r: rand.New(rand.NewSource(seed))}
}

func (c *Coin) Resolve(ctx context.Context, trade ledger.Trade) (risk.Outcome, error) {
	if c.r.Intn(2) == 0 {
		return risk.OutcomeWin, nil
	}
	return risk.OutcomeLoss, nil
}
