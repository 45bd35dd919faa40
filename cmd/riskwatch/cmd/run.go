package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskwatch/alert"
	"github.com/rustyeddy/riskwatch/batch"
	"github.com/rustyeddy/riskwatch/config"
	"github.com/rustyeddy/riskwatch/journal"
	"github.com/rustyeddy/riskwatch/monitor"
	"github.com/rustyeddy/riskwatch/portfolio"
	"github.com/rustyeddy/riskwatch/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Monitor a simulated account from a config file",
	Long: `Run the risk monitor against a simulated trading account.

The config file specifies account parameters, risk thresholds, batching and
journaling settings. The simulated account opens a small demo book and feeds
random-walk price ticks through the batched recalculation pipeline; alerts
and risk snapshots stream to the log and the configured journal until
interrupted.

Example:
  riskwatch run -f examples/configs/basic.yaml`,
	RunE: runRun,
}

var (
	runConfigPath  string
	runMetricsAddr string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "address for the Prometheus /metrics endpoint (e.g. :9090)")
	runCmd.MarkFlagRequired("config")
}

// logNotifier delivers notifications to the log. A production deployment
// would swap in email or push delivery behind the same interface.
type logNotifier struct {
	log zerolog.Logger
}

func (n logNotifier) Notify(msg alert.Notification) error {
	n.log.Warn().
		Str("user", msg.UserID).
		Str("severity", string(msg.Severity)).
		Str("title", msg.Title).
		Msg(msg.Message)
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	fmt.Printf("Monitoring account: %s (Balance: $%.2f %s)\n",
		cfg.Account.ID, cfg.Account.Balance, cfg.Account.Currency)
	fmt.Printf("  Refresh: %s, batch: %d symbols / %s\n",
		cfg.RefreshInterval(), cfg.Scheduler.MaxBatchSize, cfg.BatchTimeout())
	fmt.Printf("  Journal: %s\n\n", cfg.Journal.Type)

	var jrnl journal.Journal
	switch cfg.Journal.Type {
	case "csv":
		jrnl, err = journal.NewCSV(cfg.Journal.AlertsFile, cfg.Journal.RisksFile)
	case "sqlite":
		jrnl, err = journal.NewSQLite(cfg.Journal.DBPath)
	default:
		jrnl = journal.Nop{}
	}
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jrnl.Close()

	thresholds := cfg.RiskThresholds()
	alerts := alert.NewManager(log, alert.WithNotifier(logNotifier{log: log}))
	sched := batch.NewScheduler(batch.Config{
		MaxBatchSize: cfg.Scheduler.MaxBatchSize,
		BatchTimeout: cfg.BatchTimeout(),
		Thresholds:   thresholds,
	}, log, alerts)

	engine := sim.NewEngine(cfg.Account.ID, cfg.Account.Balance)
	if err := openDemoBook(engine, cfg.Account.Balance); err != nil {
		return fmt.Errorf("open demo positions: %w", err)
	}

	mon := monitor.New(monitor.Config{
		UserID:          cfg.Account.ID,
		RefreshInterval: cfg.RefreshInterval(),
		Thresholds:      thresholds,
		RiskPerTradePct: cfg.Monitor.RiskPerTradePct,
	}, log, engine, sched, alerts, jrnl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if runMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: runMetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		go func() {
			<-ctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutCtx)
		}()
		log.Info().Str("addr", runMetricsAddr).Msg("serving Prometheus metrics")
	}

	go alerts.Run(ctx)
	go feedTicks(ctx, engine, sched, cfg.Account.ID)

	log.Info().Str("account", cfg.Account.ID).Msg("risk monitor started, Ctrl-C to stop")
	_ = mon.Run(ctx)

	printSummary(mon.Summary())
	return nil
}

// openDemoBook opens a few positions across asset classes so every
// calculator has something to chew on.
func openDemoBook(e *sim.Engine, balance float64) error {
	demo := []struct {
		symbol string
		side   portfolio.Side
		qty    float64
		price  float64
	}{
		{"EUR_USD", portfolio.Long, balance * 0.2, 1.0850},
		{"GBP_USD", portfolio.Long, balance * 0.1, 1.2700},
		{"BTC_USD", portfolio.Short, balance * 0.0001, 60000},
	}
	for _, d := range demo {
		if err := e.Open(d.symbol, d.side, d.qty, d.price); err != nil {
			return err
		}
	}
	return nil
}

// feedTicks random-walks prices and pushes the updated book through the
// batched pipeline, simulating a market data feed.
func feedTicks(ctx context.Context, e *sim.Engine, sched *batch.Scheduler, userID string) {
	prices := map[string]float64{
		"EUR_USD": 1.0850,
		"GBP_USD": 1.2700,
		"BTC_USD": 60000,
	}

	t := time.NewTicker(250 * time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			for symbol, price := range prices {
				price *= 1 + (rand.Float64()-0.5)*0.004
				prices[symbol] = price
				e.Tick(symbol, price, now)
			}

			acct, err := e.Account(ctx)
			if err != nil {
				continue
			}
			positions, err := e.Positions(ctx)
			if err != nil {
				continue
			}
			for _, p := range positions {
				sched.QueueUpdate(p.Symbol, batch.Update{
					UserID:    userID,
					Account:   acct,
					Positions: []portfolio.Position{p},
				})
			}
		}
	}
}

func printSummary(s monitor.Summary) {
	fmt.Printf("\nFinal Results:\n")
	fmt.Printf("  Equity: $%.2f\n", s.Metrics.TotalEquity)
	fmt.Printf("  Margin Used: $%.2f\n", s.Metrics.TotalMarginUsed)
	fmt.Printf("  Margin Level: %.1f%% (%s)\n", s.MarginLevel, s.MarginStatus)
	fmt.Printf("  Daily P/L: $%.2f\n", s.Metrics.DailyPL)
	fmt.Printf("  Drawdown: %.2f%%\n", s.Metrics.Drawdown*100)
	fmt.Printf("  VaR: %.2f%% of equity\n", s.Metrics.VaREstimate*100)
	fmt.Printf("  Portfolio Status: %s\n", s.Metrics.Status)
	if len(s.ViolatedThresholds) > 0 {
		fmt.Printf("  Violated: %v\n", s.ViolatedThresholds)
	}
	if len(s.Recommendations) > 0 {
		fmt.Printf("  Recommended: %v\n", s.Recommendations)
	}
}
