package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"guardchain-realtime/config"
	"guardchain-realtime/internal/logger"
	"guardchain-realtime/internal/storage/sqlstore"

	"go.uber.org/zap"
)

const usage = `Usage: migrate <command>

Commands:
  up       apply all pending migrations
  down     roll back the most recent migration
  status   print the state of every migration
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), flag.Arg(0)); err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}

func run(ctx context.Context, command string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	db, err := sqlstore.OpenDB(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := sqlstore.NewMigrationProvider(db, cfg.DB.Driver)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		for _, r := range results {
			zl.Info("migration applied", zap.String("source", r.Source.Path), zap.Duration("duration", r.Duration))
		}
		return err
	case "down":
		result, err := provider.Down(ctx)
		if result != nil {
			zl.Info("migration rolled back", zap.String("source", result.Source.Path), zap.Duration("duration", result.Duration))
		}
		return err
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			fmt.Printf("%-8s %-40s %s\n", s.State, s.Source.Path, s.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
