package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Trade is one simulated fill. Money fields are decimals so the running
// balance fold stays exact. Immutable once recorded.
type Trade struct {
	ID             string
	Time           time.Time
	Pair           string
	Side           Side
	Price          decimal.Decimal
	Quantity       decimal.Decimal
	FeeRate        decimal.Decimal
	Fee            decimal.Decimal
	NetResult      decimal.Decimal
	RunningBalance decimal.Decimal
}

// Build computes fee and net result from the fill parameters. A SELL nets the
// gross minus fee; a BUY nets the negated gross plus fee.
func Build(id string, ts time.Time, pair string, side Side, price, quantity, feeRate float64) Trade {
	p := decimal.NewFromFloat(price)
	q := decimal.NewFromFloat(quantity)
	fr := decimal.NewFromFloat(feeRate)

	gross := p.Mul(q)
	fee := gross.Mul(fr)
	var net decimal.Decimal
	if side == SideSell {
		net = gross.Sub(fee)
	} else {
		net = gross.Add(fee).Neg()
	}

	return Trade{
		ID:        id,
		Time:      ts,
		Pair:      pair,
		Side:      side,
		Price:     p,
		Quantity:  q,
		FeeRate:   fr,
		Fee:       fee,
		NetResult: net,
	}
}
