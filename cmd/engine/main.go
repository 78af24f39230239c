package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"market-intel/internal/auditlog"
	"market-intel/internal/config"
	"market-intel/internal/engine"
	"market-intel/internal/logger"
	"market-intel/internal/market"
	"market-intel/internal/newsfeed"
	"market-intel/internal/server"
	"market-intel/internal/store"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "configuration file")
	flag.Parse()

	_ = godotenv.Load()
	must(logger.Init())

	cfg, err := config.Load(*configPath)
	must(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditlog.SetDir(cfg.Audit.Dir)
	must(auditlog.CompressOlder(cfg.Audit.RetentionDays))

	st, err := openStore(cfg)
	must(err)
	defer st.Close()

	eng := engine.New(cfg, newProvider(cfg), st)
	feed := newsfeed.NewFeed(15 * time.Second)
	srv := server.New(cfg.Server.Addr, eng, st, feed)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Server started", "addr", cfg.Server.Addr, "provider", cfg.Data.Provider)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-sigc:
		logger.Info(ctx, "Shutting down")
	case err := <-errc:
		logger.ErrorWithErr(ctx, "Server stopped", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = logger.Shutdown(shutdownCtx)
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
