package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobportal/config"
	"jobportal/internal/infra/persistence/migrations"

	"github.com/pkg/errors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
)

// Supported subcommands:
// - up:     apply every pending migration
// - down:   roll back the most recent migration
// - status: print the state of each migration

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() != 1 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string) error {
	var migrate func(context.Context, *sql.DB) error
	switch command {
	case "up":
		migrate = migrations.Up
	case "down":
		migrate = migrations.Down
	case "status":
		migrate = migrations.Status
	default:
		return errors.Errorf("unknown command: %s", command)
	}

	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if cfg.Postgres == nil {
		return errors.New("postgres configuration is required")
	}

	db, err := pgLib.New(cfg.Postgres)
	if err != nil {
		return errors.Wrap(err, "connect to PostgreSQL")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	defer sqlDB.Close()

	if err := migrate(ctx, sqlDB); err != nil {
		return err
	}
	fmt.Printf("migrate %s: done\n", command)

	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <up|down|status>\n", os.Args[0])
}
