package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental/internal/models"
)

const carColumns = `id, owner_id, name, type, description, image, price_per_day, is_available, created_at, updated_at`

func (db *DB) CreateCar(ctx context.Context, car *models.Car) error {
	query := `INSERT INTO cars (
				owner_id, name, type, description, image, price_per_day,
				is_available, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		car.OwnerID,
		car.Name,
		car.Type,
		car.Description,
		car.Image,
		car.PricePerDay,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	car.ID = id
	car.IsAvailable = true
	car.CreatedAt = now
	car.UpdatedAt = now
	return nil
}

func (db *DB) GetCar(ctx context.Context, id int64) (*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = ?`
	car, err := scanCar(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car: %w", err)
	}
	return car, nil
}

// GetCarListing returns a car with its owner's display fields.
func (db *DB) GetCarListing(ctx context.Context, id int64) (*models.CarListing, error) {
	query := `SELECT c.id, c.owner_id, c.name, c.type, c.description, c.image, c.price_per_day,
	                 c.is_available, c.created_at, c.updated_at,
	                 COALESCE(u.name, ''), COALESCE(u.email, '')
              FROM cars c LEFT JOIN users u ON u.id = c.owner_id
              WHERE c.id = ?`
	listing, err := scanCarListing(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car listing: %w", err)
	}
	return listing, nil
}

// ListAvailableCars returns available cars matching the filter, oldest first.
func (db *DB) ListAvailableCars(ctx context.Context, filter models.CarFilter) ([]*models.CarListing, error) {
	var (
		where = []string{"c.is_available = 1"}
		args  []interface{}
	)
	if filter.Type != "" {
		where = append(where, "c.type = ?")
		args = append(args, filter.Type)
	}
	if filter.MinPrice > 0 {
		where = append(where, "c.price_per_day >= ?")
		args = append(args, filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		where = append(where, "c.price_per_day <= ?")
		args = append(args, filter.MaxPrice)
	}

	query := `SELECT c.id, c.owner_id, c.name, c.type, c.description, c.image, c.price_per_day,
	                 c.is_available, c.created_at, c.updated_at,
	                 COALESCE(u.name, ''), COALESCE(u.email, '')
              FROM cars c LEFT JOIN users u ON u.id = c.owner_id
              WHERE ` + strings.Join(where, " AND ") + ` ORDER BY c.id ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list available cars: %w", err)
	}
	defer rows.Close()

	listings := make([]*models.CarListing, 0)
	for rows.Next() {
		l, err := scanCarListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cars: %w", err)
	}
	return listings, nil
}

func (db *DB) ListCarsByOwner(ctx context.Context, ownerID int64) ([]*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE owner_id = ? ORDER BY id ASC`
	rows, err := db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner cars: %w", err)
	}
	defer rows.Close()

	cars := make([]*models.Car, 0)
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, car)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cars: %w", err)
	}
	return cars, nil
}

// UpdateCarDetails writes the owner-editable columns. Availability and ownership are
// not touched here.
func (db *DB) UpdateCarDetails(ctx context.Context, car *models.Car) error {
	query := `UPDATE cars SET name = ?, type = ?, description = ?, image = ?, price_per_day = ?, updated_at = ?
              WHERE id = ?`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, car.Name, car.Type, car.Description, car.Image, car.PricePerDay, now, car.ID)
	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	car.UpdatedAt = now
	return nil
}

func (db *DB) DeleteCar(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM cars WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AcquireCar flips is_available from 1 to 0 in a single conditional statement and
// returns the car as it was reserved. Timestamps are not part of the snapshot.
// ErrNotAvailable means the row exists but was already held; ErrNotFound means it
// does not exist.
func (db *DB) AcquireCar(ctx context.Context, id int64) (*models.Car, error) {
	query := `UPDATE cars SET is_available = 0, updated_at = ?
              WHERE id = ? AND is_available = 1
              RETURNING id, owner_id, name, type, description, image, price_per_day`

	var car models.Car
	err := db.QueryRowContext(ctx, query, time.Now().UTC(), id).Scan(
		&car.ID, &car.OwnerID, &car.Name, &car.Type, &car.Description, &car.Image, &car.PricePerDay,
	)
	if err == nil {
		car.IsAvailable = false
		return &car, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to acquire car: %w", err)
	}

	var exists int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cars WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to classify acquire miss: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrNotAvailable
}

// ReleaseCar marks the car available. Releasing a missing car is not an error.
func (db *DB) ReleaseCar(ctx context.Context, id int64) error {
	query := `UPDATE cars SET is_available = 1, updated_at = ? WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to release car: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCar(row rowScanner) (*models.Car, error) {
	var car models.Car
	err := row.Scan(
		&car.ID, &car.OwnerID, &car.Name, &car.Type, &car.Description, &car.Image,
		&car.PricePerDay, &car.IsAvailable, &car.CreatedAt, &car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func scanCarListing(row rowScanner) (*models.CarListing, error) {
	var l models.CarListing
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.Name, &l.Type, &l.Description, &l.Image,
		&l.PricePerDay, &l.IsAvailable, &l.CreatedAt, &l.UpdatedAt,
		&l.Owner.Name, &l.Owner.Email,
	)
	if err != nil {
		return nil, err
	}
	l.Owner.ID = l.OwnerID
	return &l, nil
}
