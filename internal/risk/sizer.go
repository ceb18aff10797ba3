package risk

import "fmt"

// Sizer converts a balance and risk percentage into an order quantity. The
// notional is clamped to [MinTrade, MaxTrade] in quote currency, so the
// quantity stays positive even at zero balance.
type Sizer struct {
	MinTrade float64
	MaxTrade float64
}

// Size returns the clamped notional and the resulting base-currency quantity.
func (s Sizer) Size(balance, riskPct, price float64) (notional, qty float64, err error) {
	if price <= 0 {
		return 0, 0, fmt.Errorf("invalid price: %f", price)
	}
	notional = balance * riskPct
	if notional < s.MinTrade {
		notional = s.MinTrade
	}
	if notional > s.MaxTrade {
		notional = s.MaxTrade
	}
	return notional, notional / price, nil
}
