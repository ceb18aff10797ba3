// Package metrics exposes the bot's operational counters in Prometheus text
// format:
//   - bot_ticks_total                 – control loop iterations
//   - bot_signals_total{signal}       – signals by kind (buy|sell|hold)
//   - bot_trades_total{side}          – recorded simulated trades
//   - bot_tick_errors_total{kind}     – tick failures (rate_limit|other)
//   - bot_notify_failures_total       – failed notification deliveries
//   - bot_running_balance             – ledger running balance (quote currency)
//   - bot_last_heartbeat_timestamp    – unix time of the last heartbeat
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Ticks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_ticks_total",
		Help: "Control loop iterations",
	})

	Signals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_signals_total",
		Help: "Signals by kind",
	}, []string{"signal"})

	Trades = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_trades_total",
		Help: "Recorded simulated trades",
	}, []string{"side"})

	TickErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_tick_errors_total",
		Help: "Tick failures by classification",
	}, []string{"kind"})

	NotifyFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_notify_failures_total",
		Help: "Failed notification deliveries",
	})

	RunningBalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bot_running_balance",
		Help: "Ledger running balance in quote currency",
	})

	LastHeartbeat = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bot_last_heartbeat_timestamp",
		Help: "Unix time of the last heartbeat notification",
	})
)

func init() {
	prometheus.MustRegister(Ticks, Signals, Trades, TickErrors, NotifyFailures, RunningBalance, LastHeartbeat)
}

// Serve starts the /metrics endpoint in the background. Exposition failures
// never affect the trading loop.
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()
}
