package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bitsobot/internal/config"
	"bitsobot/internal/engine"
	"bitsobot/internal/ledger"
	"bitsobot/internal/market"
	"bitsobot/internal/metrics"
	"bitsobot/internal/notify"
	"bitsobot/internal/state"
	"bitsobot/internal/strategy"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "bot",
	Short:        "Unattended single-pair trading loop with simulated fills",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func run(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	runID := uuid.NewString()
	decisions, err := engine.NewDecisionLogger(cfg.DecisionsPath, runID)
	if err != nil {
		return fmt.Errorf("decision logger error: %w", err)
	}
	defer func() {
		if err := decisions.Close(); err != nil {
			log.Printf("failed to close decision logger: %v", err)
		}
	}()

	ledgerStore, err := ledger.Open(cfg.LedgerPath, cfg.Zone())
	if err != nil {
		return fmt.Errorf("ledger error: %w", err)
	}
	defer func() {
		if err := ledgerStore.Close(); err != nil {
			log.Printf("failed to close ledger: %v", err)
		}
	}()
	log.Printf("ledger loaded trades=%d running_balance=%s", ledgerStore.Count(), ledgerStore.Balance())

	stateStore := state.NewStore()
	if err := stateStore.Load(cfg.CheckpointPath); err == nil {
		log.Printf("loaded checkpoint from %s", cfg.CheckpointPath)
	}

	exchange := buildExchange(cfg)
	notifier := notify.NewService(buildSink(cfg))
	generator := buildGenerator(cfg)
	resolver := engine.MarkToMarket{Exchange: exchange, Pair: cfg.Pair}

	metrics.Serve(cfg.MetricsAddr)

	loop := engine.New(cfg, exchange, generator, ledgerStore, notifier, stateStore, decisions, resolver)
	err = loop.Run(ctx)
	switch {
	case errors.Is(err, engine.ErrRestartRequested):
		log.Printf("restart requested, exiting for supervisor relaunch")
	case errors.Is(err, context.Canceled):
		log.Printf("shutdown signal received")
	case err != nil:
		return err
	}

	if err := stateStore.Save(cfg.CheckpointPath); err != nil {
		log.Printf("failed to save checkpoint: %v", err)
	}
	log.Printf("bot shutdown complete run_id=%s", runID)
	return nil
}

func buildExchange(cfg config.Config) market.Exchange {
	if cfg.Exchange == "sim" {
		return market.NewSim(500000, map[string]float64{quoteCurrency(cfg.Pair): cfg.StartingBalance})
	}
	return market.NewBitso(cfg.APIKey, cfg.APISecret)
}

func buildGenerator(cfg config.Config) strategy.Generator {
	if cfg.Strategy == "alternator" {
		return strategy.Alternator{}
	}
	return strategy.NewCrossover(cfg.FastWindow, cfg.SlowWindow)
}

func buildSink(cfg config.Config) notify.Notifier {
	if cfg.WebhookURL == "" {
		log.Printf("no webhook configured, notifications stay local")
		return notify.LogOnly{}
	}
	return notify.NewDiscord(cfg.WebhookURL)
}

func quoteCurrency(pair string) string {
	if i := strings.Index(pair, "/"); i >= 0 {
		return strings.ToUpper(pair[i+1:])
	}
	return strings.ToUpper(pair)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON); built-in defaults apply when omitted")
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
