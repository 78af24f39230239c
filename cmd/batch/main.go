package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"market-intel/internal/batch"
	"market-intel/internal/config"
	"market-intel/internal/engine"
	"market-intel/internal/logger"
	"market-intel/internal/market"
	"market-intel/internal/store"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "configuration file")
	symbols := flag.String("symbols", "", "comma-separated symbol list")
	exchange := flag.String("exchange", "NSE", "exchange for all symbols")
	limit := flag.Int("limit", 0, "analyze at most N symbols (0 = all)")
	rps := flag.Float64("rate", 0, "requests per second (overrides config)")
	output := flag.String("output", "", "output path (.json or .csv, overrides config)")
	cronSpec := flag.String("cron", "", "cron expression for periodic runs (empty = run once)")
	flag.Parse()

	_ = godotenv.Load()
	must(logger.Init())

	cfg, err := config.Load(*configPath)
	must(err)

	list := splitSymbols(*symbols)
	if len(list) == 0 {
		log.Fatal("no symbols given: use -symbols RELIANCE,TCS,INFY")
	}
	if *limit > 0 && len(list) > *limit {
		list = list[:*limit]
	}

	perSecond := cfg.Batch.RatePerSecond
	if *rps > 0 {
		perSecond = *rps
	}
	outPath := cfg.Batch.Output
	if *output != "" {
		outPath = *output
	}

	st, err := openStore(cfg)
	must(err)
	defer st.Close()

	runner := batch.NewRunner(engine.New(cfg, newProvider(cfg), st), perSecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		cancel()
	}()

	run := func() {
		results, err := runner.Run(ctx, list, *exchange)
		if err != nil {
			logger.ErrorWithErr(ctx, "Batch run aborted", err)
			return
		}
		if err := writeResults(outPath, results); err != nil {
			logger.ErrorWithErr(ctx, "Result write failed", err, "path", outPath)
			return
		}
		logger.Info(ctx, "Results written", "path", outPath, "symbols", len(results))
	}

	if *cronSpec == "" {
		run()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*cronSpec, run); err != nil {
		log.Fatalf("invalid cron expression %q: %v", *cronSpec, err)
	}
	c.Start()
	logger.Info(ctx, "Scheduler started", "cron", *cronSpec, "symbols", len(list))
	<-ctx.Done()
	<-c.Stop().Done()
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if sym := strings.TrimSpace(strings.ToUpper(part)); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}

func writeResults(path string, results []batch.Result) error {
	if filepath.Ext(path) == ".csv" {
		return batch.WriteCSVSummary(path, results)
	}
	return batch.WriteJSON(path, results)
}

func newProvider(cfg *config.Config) market.Provider {
	if cfg.Data.Provider == "kite" {
		return market.NewKite(
			os.Getenv(cfg.Data.Kite.APIKeyEnv),
			os.Getenv(cfg.Data.Kite.AccessTokenEnv),
			cfg.Data.Kite.Tokens,
		)
	}
	return market.NewYahoo()
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.Store.Driver == "noop" {
		return store.NewNoop(), nil
	}
	return store.NewSQLite(cfg.Store.Path)
}
