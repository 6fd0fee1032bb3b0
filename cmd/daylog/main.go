package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/daylog/internal/aggregate"
	"github.com/alexanderramin/daylog/internal/archive"
	"github.com/alexanderramin/daylog/internal/backup"
	"github.com/alexanderramin/daylog/internal/cli"
	"github.com/alexanderramin/daylog/internal/clock"
	"github.com/alexanderramin/daylog/internal/config"
	"github.com/alexanderramin/daylog/internal/db"
	"github.com/alexanderramin/daylog/internal/events"
	"github.com/alexanderramin/daylog/internal/gist"
	"github.com/alexanderramin/daylog/internal/repository"
	"github.com/alexanderramin/daylog/internal/store"
	"github.com/mattn/go-isatty"
)

// feedBuffer bounds how many events queue for the terminal before new ones
// are dropped.
const feedBuffer = 64

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	logW, closeLog, err := cfg.OpenLog()
	if err != nil {
		return err
	}
	defer closeLog()
	logger := slog.New(slog.NewTextHandler(logW, &slog.HandlerOptions{Level: level}))

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Events go to the log file and to the terminal feed.
	feed := make(chan events.Event, feedBuffer)
	listener := events.Multi{events.NewLogListener(logW), events.NewFeed(feed)}

	clk := clock.Real{Location: loc}
	recordStore := store.New(
		repository.NewSQLiteKVRepo(database),
		db.NewSQLiteUnitOfWork(database),
		clk,
		store.WithLogger(logger),
		store.WithListener(listener),
	)
	engine := archive.NewEngine(recordStore, clk, cfg.ArchiveOptions(), logger, listener)
	client := gist.NewClient(cfg.GistClientConfig(), gist.NewSlogObserver(logger))
	syncSvc := backup.NewService(client, recordStore, repository.NewSQLiteSyncStateRepo(database),
		clk, cfg.GistClientConfig(), logger, listener)

	app := &cli.App{
		Store:    recordStore,
		Archive:  engine,
		Insights: aggregate.New(recordStore, clk, logger),
		Sync:     syncSvc,
		Clock:    clk,
		Feed:     feed,
	}

	// Detect interactive terminal for forms, confirmations and the live view.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("daylog starting", "db", cfg.DBPath, "timezone", loc.String(), "cutoff", cfg.Cutoff)
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
