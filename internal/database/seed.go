package database

import (
	"context"
	"errors"
	"fmt"
	"os"

	"carrental/internal/models"

	"gopkg.in/yaml.v2"
)

// SeedData is the fixture file layout. Cars name their owner by email.
type SeedData struct {
	Users []models.User `yaml:"users"`
	Cars  []SeedCar     `yaml:"cars"`
}

type SeedCar struct {
	models.Car `yaml:",inline"`
	OwnerEmail string `yaml:"owner_email"`
}

// LoadSeedFile parses a fixture file.
func LoadSeedFile(path string) (*SeedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// Seed upserts the fixture users and, when the cars table is still empty, inserts the
// fixture cars. It returns the number of cars inserted.
func (db *DB) Seed(ctx context.Context, seed *SeedData) (int, error) {
	for i := range seed.Users {
		u := &seed.Users[i]
		if u.Role != models.RoleOwner && u.Role != models.RoleCustomer {
			return 0, fmt.Errorf("seed user %s: unknown role %q", u.Email, u.Role)
		}
		if err := db.UpsertUserByEmail(ctx, u); err != nil {
			return 0, err
		}
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cars`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cars: %w", err)
	}
	if count > 0 {
		db.logger.Debug().Int("cars", count).Msg("cars already present, skipping car seed")
		return 0, nil
	}

	inserted := 0
	for i := range seed.Cars {
		sc := &seed.Cars[i]
		owner, err := db.GetUserByEmail(ctx, sc.OwnerEmail)
		if errors.Is(err, ErrNotFound) {
			return inserted, fmt.Errorf("seed car %q: unknown owner %s", sc.Name, sc.OwnerEmail)
		}
		if err != nil {
			return inserted, err
		}
		if owner.Role != models.RoleOwner {
			return inserted, fmt.Errorf("seed car %q: %s is not an owner", sc.Name, sc.OwnerEmail)
		}
		car := sc.Car
		car.OwnerID = owner.ID
		if err := db.CreateCar(ctx, &car); err != nil {
			return inserted, err
		}
		inserted++
	}

	db.logger.Info().Int("users", len(seed.Users)).Int("cars", inserted).Msg("seed applied")
	return inserted, nil
}
