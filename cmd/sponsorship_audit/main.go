package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/academy_sponsorship/internal/adapters/archive/s3"
	"github.com/SscSPs/academy_sponsorship/internal/cli"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/core/services"
	"github.com/SscSPs/academy_sponsorship/internal/platform/config"
	"github.com/SscSPs/academy_sponsorship/internal/repositories/database/pgsql"
	"github.com/SscSPs/academy_sponsorship/pkg/database"
)

func main() {
	os.Exit(run())
}

func run() int {
	// stdout carries the report, so logs go to stderr
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		return cli.ExitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		return cli.ExitFailure
	}
	defer database.ClosePgxPool(dbPool, logger)

	repos := pgsql.NewRepositoryProvider(dbPool)
	recon := services.NewReconciliationService(repos.LedgerRepo, cfg.ReconciliationEpsilon)

	newArchiver := func(ctx context.Context) (portssvc.ReportArchiver, error) {
		return s3.NewArchiver(ctx, cfg.ReportArchiveBucket)
	}

	env := cli.Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	return cli.Run(ctx, env, os.Args[1:], recon, newArchiver)
}
