package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"bitsobot/internal/config"
	"bitsobot/internal/ledger"
	"bitsobot/internal/market"
	"bitsobot/internal/metrics"
	"bitsobot/internal/notify"
	"bitsobot/internal/risk"
	"bitsobot/internal/schedule"
	"bitsobot/internal/state"
	"bitsobot/internal/strategy"
)

// ErrRestartRequested is the loop's only terminal state besides context
// cancellation. The supervisor relaunches the process; the loop itself never
// execs or exits.
var ErrRestartRequested = errors.New("restart requested")

// Loop runs one tick at a time: snapshot, signal, size, gate, record, notify,
// heartbeat, daily triggers, sleep. It exclusively owns all mutable state
// between ticks.
type Loop struct {
	cfg       config.Config
	exchange  market.Exchange
	generator strategy.Generator
	ledger    *ledger.Store
	notifier  *notify.Service
	state     *state.Store
	decisions *DecisionLogger
	resolver  OutcomeResolver

	riskCtl   *risk.Controller
	sizer     risk.Sizer
	gate      risk.Gate
	heartbeat schedule.Heartbeat
	daily     schedule.Daily
	series    *market.SeriesBuffer

	runID    string
	tradeSeq uint64
	now      func() time.Time
}

func New(cfg config.Config, exchange market.Exchange, generator strategy.Generator,
	ledgerStore *ledger.Store, notifier *notify.Service, stateStore *state.Store,
	decisions *DecisionLogger, resolver OutcomeResolver) *Loop {

	l := &Loop{
		cfg:       cfg,
		exchange:  exchange,
		generator: generator,
		ledger:    ledgerStore,
		notifier:  notifier,
		state:     stateStore,
		decisions: decisions,
		resolver:  resolver,
		riskCtl:   risk.NewController(cfg.BaseRisk, cfg.AdaptiveRisk),
		sizer:     risk.Sizer{MinTrade: cfg.MinTrade, MaxTrade: cfg.MaxTrade},
		heartbeat: schedule.Heartbeat{Interval: cfg.HeartbeatInterval, IdleThreshold: cfg.IdleThreshold},
		daily: schedule.Daily{
			Zone:          cfg.Zone(),
			SummaryHour:   cfg.SummaryHour,
			SummaryMinute: cfg.SummaryMinute,
			RestartHour:   cfg.RestartHour,
			RestartWindow: cfg.RestartWindow,
		},
		series: market.NewSeriesBuffer(cfg.SlowWindow),
		runID:  decisions.RunID(),
		now:    time.Now,
	}

	snapshot := stateStore.Snapshot()
	l.riskCtl.Restore(snapshot.Risk.ConsecutiveLosses, snapshot.Risk.Reduced)
	notifier.Restore(snapshot.NotifyFailures)
	return l
}

// Run ticks until the context is canceled or a restart is requested. Tick
// errors never terminate the loop; they only lengthen the next sleep.
func (l *Loop) Run(ctx context.Context) error {
	log.Printf("starting loop run_id=%s pair=%s interval=%s risk=%.2f", l.runID, l.cfg.Pair, l.cfg.Interval, l.riskCtl.RiskPct())

	for {
		err := l.tick(ctx)
		var delay time.Duration
		switch {
		case errors.Is(err, ErrRestartRequested):
			return err
		case err == nil:
			delay = l.cfg.Interval
		case errors.Is(err, market.ErrRateLimited):
			metrics.TickErrors.WithLabelValues("rate_limit").Inc()
			log.Printf("tick failed (rate limited): %v", err)
			l.pushStatus(ctx, fmt.Sprintf("rate limited by exchange, backing off %s", l.cfg.RateLimitBackoff))
			delay = l.cfg.RateLimitBackoff
		default:
			metrics.TickErrors.WithLabelValues("other").Inc()
			log.Printf("tick failed: %v", err)
			l.pushStatus(ctx, fmt.Sprintf("tick error: %v", err))
			delay = l.cfg.ErrorBackoff
		}

		if err := waitForContext(ctx, delay); err != nil {
			return err
		}
	}
}

func (l *Loop) tick(ctx context.Context) error {
	metrics.Ticks.Inc()
	now := l.now()

	ticker, err := l.exchange.FetchTicker(ctx, l.cfg.Pair)
	if err != nil {
		return fmt.Errorf("fetch ticker: %w", err)
	}
	l.updateSeries(ctx, ticker.Last)

	sig := l.generator.Signal(strategy.Snapshot{Time: now, Last: ticker.Last, Closes: l.series.Values()})
	metrics.Signals.WithLabelValues(strings.ToLower(string(sig))).Inc()

	decision := Decision{
		RunID:     l.runID,
		Timestamp: now,
		Pair:      l.cfg.Pair,
		Price:     ticker.Last,
		Signal:    sig,
		RiskPct:   l.riskCtl.RiskPct(),
	}

	if sig == strategy.Hold {
		decision.Result = "hold"
		l.decisions.Append(decision)
		log.Printf("tick price=%.2f signal=HOLD", ticker.Last)
	} else if err := l.trade(ctx, now, ticker.Last, sig, &decision); err != nil {
		decision.Result = "error"
		decision.Reason = err.Error()
		l.decisions.Append(decision)
		return err
	} else {
		l.decisions.Append(decision)
	}

	l.observeHeartbeat(ctx, now)
	if err := l.checkDaily(ctx, now); err != nil {
		return err
	}

	if err := l.state.Save(l.cfg.CheckpointPath); err != nil {
		log.Printf("checkpoint save failed: %v", err)
	}
	return nil
}

// updateSeries prefers full OHLCV history; when that call fails the buffer
// degrades to one last price per tick and the generator holds until the slow
// window fills.
func (l *Loop) updateSeries(ctx context.Context, last float64) {
	candles, err := l.exchange.FetchOHLCV(ctx, l.cfg.Pair, l.cfg.Timeframe, l.cfg.SlowWindow)
	if err != nil {
		log.Printf("ohlcv unavailable, feeding last price: %v", err)
		l.series.Add(last)
		return
	}
	closes := make([]float64, 0, len(candles))
	for _, c := range candles {
		closes = append(closes, c.Close)
	}
	l.series.Fill(closes)
}

func (l *Loop) trade(ctx context.Context, now time.Time, price float64, sig strategy.Signal, decision *Decision) error {
	balance := l.availableBalance(ctx)
	notional, qty, err := l.sizer.Size(balance, l.riskCtl.RiskPct(), price)
	if err != nil {
		return fmt.Errorf("size position: %w", err)
	}
	decision.Notional = notional
	decision.Quantity = qty

	// Simulated fills cross the spread, so the taker rate applies.
	feeRate := l.cfg.TakerFee
	if err := l.gate.Check(notional, feeRate, l.cfg.ExpectedMargin); err != nil {
		decision.Result = "rejected"
		decision.Reason = err.Error()
		log.Printf("tick price=%.2f signal=%s rejected: %v", price, sig, err)
		return nil
	}

	side := ledger.SideBuy
	if sig == strategy.Sell {
		side = ledger.SideSell
	}
	trade := ledger.Build(l.nextTradeID(), now, l.cfg.Pair, side, price, qty, feeRate)
	if err := l.ledger.Record(&trade); err != nil {
		return fmt.Errorf("record trade: %w", err)
	}

	metrics.Trades.WithLabelValues(strings.ToLower(string(side))).Inc()
	metrics.RunningBalance.Set(trade.RunningBalance.InexactFloat64())
	l.state.SetLastTradeTime(now)

	outcome, err := l.resolver.Resolve(ctx, trade)
	if err != nil {
		log.Printf("outcome resolution failed, risk state unchanged: %v", err)
	} else {
		l.riskCtl.Observe(outcome)
		l.state.SetRisk(state.RiskState{
			ConsecutiveLosses: l.riskCtl.ConsecutiveLosses(),
			Reduced:           l.riskCtl.Reduced(),
		})
		decision.Outcome = outcome.String()
	}

	decision.Result = "recorded"
	decision.TradeID = trade.ID
	log.Printf("trade side=%s qty=%s price=%.2f net=%s balance=%s outcome=%s",
		side, trade.Quantity, price, trade.NetResult, trade.RunningBalance, decision.Outcome)
	l.pushStatus(ctx, fmt.Sprintf("%s %s %s @ %.2f | fee %s | net %s | balance %s",
		side, trade.Quantity, trade.Pair, price, trade.Fee, trade.NetResult, trade.RunningBalance))
	return nil
}

// availableBalance queries the exchange for the quote currency and falls back
// to the configured simulated balance when the query fails.
func (l *Loop) availableBalance(ctx context.Context) float64 {
	balances, err := l.exchange.FetchBalance(ctx)
	if err != nil {
		log.Printf("balance query failed, using configured balance: %v", err)
		return l.cfg.StartingBalance
	}
	quote := l.cfg.Pair
	if i := strings.Index(quote, "/"); i >= 0 {
		quote = quote[i+1:]
	}
	if amount, ok := balances[strings.ToUpper(quote)]; ok {
		return amount
	}
	return l.cfg.StartingBalance
}

func (l *Loop) observeHeartbeat(ctx context.Context, now time.Time) {
	sched := l.state.Snapshot().Schedule
	if !l.heartbeat.Observe(now, sched.LastTradeTime, sched.LastHeartbeatTime) {
		return
	}
	l.pushStatus(ctx, fmt.Sprintf("heartbeat: alive, pair=%s balance=%s trades=%d",
		l.cfg.Pair, l.ledger.Balance(), l.ledger.Count()))
	l.state.SetLastHeartbeatTime(now)
	metrics.LastHeartbeat.Set(float64(now.Unix()))
}

func (l *Loop) checkDaily(ctx context.Context, now time.Time) error {
	sched := l.state.Snapshot().Schedule
	today := l.daily.Today(now)

	if l.daily.SummaryDue(now, sched.LastSummaryDate) {
		summary, err := l.ledger.SummarizeDay(today)
		if err != nil {
			return fmt.Errorf("summarize day: %w", err)
		}
		if err := l.ledger.RecordSummary(today, l.ledger.Balance()); err != nil {
			return fmt.Errorf("persist summary: %w", err)
		}
		netPct := summary.Net.InexactFloat64() / l.cfg.StartingBalance * 100
		l.pushStatus(ctx, fmt.Sprintf("daily summary %s: trades=%d wins=%d net=%s (%.2f%%)",
			today, summary.TradeCount, summary.WinCount, summary.Net, netPct))
		l.state.SetLastSummaryDate(today)
	}

	if l.daily.RestartDue(now, sched.LastRestartDate) {
		l.state.SetLastRestartDate(today)
		l.pushStatus(ctx, "daily restart requested")
		if err := l.state.Save(l.cfg.CheckpointPath); err != nil {
			log.Printf("checkpoint save before restart failed: %v", err)
		}
		return ErrRestartRequested
	}
	return nil
}

// pushStatus delivers best-effort: failures update counters only and never
// influence trading.
func (l *Loop) pushStatus(ctx context.Context, text string) {
	if !l.notifier.Push(ctx, text) {
		metrics.NotifyFailures.Inc()
	}
	l.state.SetNotifyFailures(l.notifier.ConsecutiveFailures())
}

func (l *Loop) nextTradeID() string {
	seq := atomic.AddUint64(&l.tradeSeq, 1)
	return fmt.Sprintf("%s-%d", l.runID, seq)
}

func waitForContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
