package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vdblog/vdblog-backend/cmd/seed/pkg"
	"github.com/vdblog/vdblog-backend/internal/auth"
	"github.com/vdblog/vdblog-backend/internal/config"
	gdb "github.com/vdblog/vdblog-backend/internal/db"
	"github.com/vdblog/vdblog-backend/internal/initializer"
	"github.com/vdblog/vdblog-backend/internal/log"
)

func main() {
	var (
		file     = flag.String("file", "", "JSON file with users to create")
		out      = flag.String("out", "", "write the result (user IDs) to this JSON file")
		username = flag.String("username", "", "username of an account to create")
		password = flag.String("password", "", "password of the account")
		email    = flag.String("email", "", "email of the account")
		first    = flag.String("first", "", "first name of the account")
		last     = flag.String("last", "", "last name of the account")
		staff    = flag.Bool("staff", false, "grant staff privileges")
		fixtures = flag.Bool("fixtures", false, "load demo categories, posts and comments")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewSugar(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts := initializer.Options{Fixtures: *fixtures}
	if *file != "" {
		seed, err := pkg.ReadSeedFile(*file)
		if err != nil {
			logger.Fatalw("Failed to read seed file", "file", *file, "error", err)
		}
		opts.Users = append(opts.Users, seed.Users...)
		opts.Fixtures = opts.Fixtures || seed.Fixtures
	}
	if *username != "" {
		opts.Users = append(opts.Users, initializer.UserSpec{
			Username:  *username,
			Password:  *password,
			Email:     *email,
			FirstName: *first,
			LastName:  *last,
			Staff:     *staff,
		})
	}
	if len(opts.Users) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: seed -username NAME -password PASS [-email E] [-first F] [-last L] [-staff] [-fixtures]")
		fmt.Fprintln(os.Stderr, "   or: seed -file users.json [-out result.json]")
		os.Exit(2)
	}

	if cfg.Database.Type == "" || cfg.Database.Type == "memory" {
		logger.Warnw("Seeding the in-memory database has no lasting effect; set BLOG_DB_TYPE")
	}

	database, err := gdb.NewDatabase(gdb.Config{
		Type:         cfg.Database.Type,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	}, logger)
	if err != nil {
		logger.Fatalw("Failed to create database", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := gdb.ConnectAndMigrate(ctx, database); err != nil {
		logger.Fatalw("Failed to initialize database", "error", err)
	}
	defer database.Disconnect(context.Background())

	result, err := initializer.Initialize(ctx, database, auth.NewAuthenticator(database.Users(), logger), opts)
	if err != nil {
		logger.Fatalw("Seeding failed", "error", err)
	}

	for name, id := range result.UserIDs {
		fmt.Printf("%s: %d\n", name, id)
	}
	if result.FixturesLoaded {
		fmt.Println("demo content loaded")
	}

	if *out != "" {
		if err := pkg.WriteResult(*out, result); err != nil {
			logger.Fatalw("Failed to write result", "file", *out, "error", err)
		}
	}
}
