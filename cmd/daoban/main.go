package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/alexanderramin/daoban/internal/apiclient"
	"github.com/alexanderramin/daoban/internal/cli"
	"github.com/alexanderramin/daoban/internal/config"
	"github.com/alexanderramin/daoban/internal/db"
	"github.com/alexanderramin/daoban/internal/events"
	"github.com/alexanderramin/daoban/internal/logging"
	"github.com/alexanderramin/daoban/internal/repository"
	"github.com/alexanderramin/daoban/internal/store"
)

// closeTimeout bounds the final save when the process exits.
const closeTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Logs go to a file when configured so they never interleave with output.
	var logger *zap.Logger
	if cfg.LogFile != "" {
		l, closeLog, err := logging.NewFile(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return err
		}
		defer closeLog()
		logger = l
	} else {
		if logger, err = logging.New(cfg.LogLevel, os.Stderr); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}
	if cfg.EnvFile != "" {
		logger.Debug("loaded env file", zap.String("path", cfg.EnvFile))
	}

	// Open local cache
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	cache := store.NewLocalCache(repository.NewSQLiteCacheRepo(database), db.NewSQLiteUnitOfWork(database))

	// Error bus and its terminal subscriber
	notifier := cli.NewNotifier(os.Stderr, nil)
	bus := events.NewBus[apiclient.ErrorEvent](events.TopicAPIError, logger.Named("events"))
	unsubscribe := bus.Subscribe(notifier.Handle)
	defer unsubscribe()

	client, err := apiclient.New(cfg.API, bus, apiclient.NewLogObserver(logger),
		apiclient.WithLogger(logger.Named("api")))
	if err != nil {
		return fmt.Errorf("creating api client: %w", err)
	}

	st := store.New(client, cache,
		store.WithDebounce(cfg.SaveDebounce),
		store.WithBackoff(cfg.LoadBackoff),
		store.WithMaxRetries(cfg.LoadRetries),
		store.WithLogger(logger.Named("store")),
	)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := st.Close(ctx); err != nil {
			logger.Warn("final save failed", zap.Error(err))
		}
	}()

	app := &cli.App{
		Store:    st,
		Replayer: client,
	}

	// Detect interactive terminal for prompts and the calendar view.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cli.Execute(ctx, app, notifier, os.Args[1:])
}
