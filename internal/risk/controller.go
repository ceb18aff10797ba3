package risk

// Outcome classifies a resolved trade for the adaptive risk controller.
type Outcome int

const (
	OutcomeFlat Outcome = iota
	OutcomeWin
	OutcomeLoss
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	}
	return "flat"
}

// Controller is a two-state risk machine. It runs at BaseRisk until three
// consecutive losing trades, then drops to AdaptiveRisk until the next
// non-losing trade. HOLD ticks produce no observation.
type Controller struct {
	BaseRisk     float64
	AdaptiveRisk float64

	consecutiveLosses int
	reduced           bool
}

const lossStreakLimit = 3

func NewController(baseRisk, adaptiveRisk float64) *Controller {
	return &Controller{BaseRisk: baseRisk, AdaptiveRisk: adaptiveRisk}
}

func (c *Controller) RiskPct() float64 {
	if c.reduced {
		return c.AdaptiveRisk
	}
	return c.BaseRisk
}

func (c *Controller) Observe(outcome Outcome) {
	if outcome == OutcomeLoss {
		c.consecutiveLosses++
		if c.consecutiveLosses >= lossStreakLimit {
			c.reduced = true
		}
		return
	}
	c.consecutiveLosses = 0
	c.reduced = false
}

func (c *Controller) ConsecutiveLosses() int { return c.consecutiveLosses }

func (c *Controller) Reduced() bool { return c.reduced }

// Restore reinstates state loaded from a checkpoint.
func (c *Controller) Restore(consecutiveLosses int, reduced bool) {
	c.consecutiveLosses = consecutiveLosses
	c.reduced = reduced
}
