package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vdblog/vdblog-backend/internal/config"
	"github.com/vdblog/vdblog-backend/internal/db/backends/sqlstore"
	"github.com/vdblog/vdblog-backend/internal/db/migrations"
)

var (
	flags   = flag.NewFlagSet("migrate", flag.ExitOnError)
	timeout = flags.Duration("timeout", 5*time.Minute, "overall timeout")
)

func main() {
	flags.Parse(os.Args[1:])
	args := flags.Args()

	if len(args) < 1 {
		log.Fatal("Usage: migrate COMMAND\n\nCommands:\n  up\n  down\n  status")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dialect, err := sqlstore.ParseDialect(cfg.Database.Type)
	if err != nil {
		log.Fatalf("Migrations need a SQL database (BLOG_DB_TYPE=postgres|sqlite): %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store := sqlstore.NewDatabase(dialect, cfg.Database.DSN, sqlstore.Options{MaxOpenConns: 1}, nil)
	if err := store.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Disconnect(context.Background())

	provider, err := migrations.NewProvider(string(dialect), store.DB())
	if err != nil {
		log.Fatalf("Failed to create migration provider: %v", err)
	}

	command := args[0]
	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		if len(results) == 0 {
			fmt.Println("no migrations to apply")
		}
		for _, r := range results {
			fmt.Printf("OK   %05d %s (%s)\n", r.Source.Version, r.Source.Path, r.Duration)
		}
	case "down":
		r, err := provider.Down(ctx)
		if err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		fmt.Printf("DOWN %05d %s (%s)\n", r.Source.Version, r.Source.Path, r.Duration)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			log.Fatalf("Migration status failed: %v", err)
		}
		for _, s := range statuses {
			applied := "Pending"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format(time.RFC3339)
			}
			fmt.Printf("%05d %-10s %-25s %s\n", s.Source.Version, s.State, applied, s.Source.Path)
		}
	default:
		log.Fatalf("Unknown command: %s", command)
	}
}
