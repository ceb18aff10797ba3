package risk

import "fmt"

// Gate rejects trades whose expected edge does not clear round-trip fees.
// Break-even is a rejection: the inequality is strict.
type Gate struct{}

func (Gate) Check(notional, feeRate, expectedMarginPct float64) error {
	costEstimate := notional * feeRate * 2
	expectedGain := notional * expectedMarginPct
	if expectedGain <= costEstimate {
		return fmt.Errorf("expected gain %.6f does not clear round-trip fees %.6f", expectedGain, costEstimate)
	}
	return nil
}
