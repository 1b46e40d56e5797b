package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"carrental/internal/database"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath = flag.String("seed", "configs/seed.yaml", "path to seed.yaml")
		dbPath   = flag.String("db", "./data/carrental.db", "path to sqlite db")
	)
	flag.Parse()

	seed, err := database.LoadSeedFile(*seedPath)
	if err != nil {
		return err
	}
	if len(seed.Users) == 0 && len(seed.Cars) == 0 {
		return fmt.Errorf("nothing to seed in %s", *seedPath)
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cars, err := db.Seed(ctx, seed)
	if err != nil {
		return err
	}

	fmt.Printf("done: users=%d cars=%d\n", len(seed.Users), cars)
	return nil
}
