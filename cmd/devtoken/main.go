// Command devtoken mints a bearer token for an existing user so the API can be
// exercised locally without the account service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"carrental/internal/api"
	"carrental/internal/config"
	"carrental/internal/database"
	"carrental/internal/models"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "configs/config.yaml", "path to config.yaml")
		email      = flag.String("email", "", "email of the user to issue a token for")
		userID     = flag.Int64("id", 0, "id of the user to issue a token for")
	)
	flag.Parse()

	if *email == "" && *userID <= 0 {
		return errors.New("one of -email or -id is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user *models.User
	if *email != "" {
		user, err = db.GetUserByEmail(ctx, *email)
	} else {
		user, err = db.GetUserByID(ctx, *userID)
	}
	if errors.Is(err, database.ErrNotFound) {
		return errors.New("user not found")
	}
	if err != nil {
		return err
	}

	token, expires, err := api.IssueToken(cfg.API.Auth, user.ID, time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "user=%d role=%s expires=%s\n", user.ID, user.Role, expires.Format(time.RFC3339))
	fmt.Println(token)
	return nil
}
