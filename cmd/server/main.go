package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"bank-host-api/internal/config"
	"bank-host-api/internal/credential"
	"bank-host-api/internal/events"
	"bank-host-api/internal/handler"
	"bank-host-api/internal/repository"
	"bank-host-api/internal/seed"
	"bank-host-api/internal/service"
)

var (
	opt struct {
		config string
		debug  bool
	}

	version = "1.0.0"
	commit  = versioninfo.Short()
)

func main() {
	flag.StringVar(&opt.config, "config", "", "config file path")
	flag.BoolVar(&opt.debug, "debug", false, "debug mode")
	flag.Parse()

	cfg, err := config.Load(opt.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logger)

	// balances go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svr, cleanup, err := setupServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("setup failed", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	logger.Info("bank host launched", "version", version, "commit", commit, "addr", svr.Addr)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return svr.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exit", "err", err)
		return
	}

	logger.Info("server exited")
}

func initLogger(cfg config.LoggerConfig) *slog.Logger {
	level := cfg.SlogLevel()
	if opt.debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func setupServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*http.Server, func(), error) {
	codec := credential.NewCodec(cfg.Credential.BcryptCost)

	accounts, err := seed.Load(ctx, cfg.Seed, codec, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to provision accounts: %w", err)
	}

	ledger, err := repository.NewLedger(accounts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build ledger: %w", err)
	}

	publisher, cleanup, err := initPublisher(cfg.Events, logger)
	if err != nil {
		return nil, nil, err
	}

	authorizationService := service.NewAuthorizationService(ledger, codec, publisher, logger, service.Config{
		EventSubject: cfg.Events.Subject,
	})

	transactionHandler := handler.NewTransactionHandler(authorizationService, logger)
	healthHandler := handler.NewHealthHandler(ledger, version, commit)

	svr := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.NewRouter(transactionHandler, healthHandler, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return svr, cleanup, nil
}

func initPublisher(cfg config.EventsConfig, logger *slog.Logger) (events.Publisher, func(), error) {
	if cfg.NatsURL == "" {
		logger.Info("withdrawal events disabled, no nats url configured")
		return events.Nop{}, func() {}, nil
	}

	publisher, cleanup, err := events.Connect(cfg.NatsURL, cfg.ClientName)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("publishing withdrawal events", "subject", cfg.Subject)
	return publisher, cleanup, nil
}
