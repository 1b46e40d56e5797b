package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carrental/internal/models"
)

const bookingColumns = `b.id, b.car_id, b.customer_id, b.start_date, b.end_date, b.total_days,
	                 b.total_price, b.status, b.created_at, b.updated_at, b.version`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (
				car_id, customer_id, start_date, end_date, total_days, total_price,
				status, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		booking.CarID,
		booking.CustomerID,
		booking.StartDate.UTC(),
		booking.EndDate.UTC(),
		booking.TotalDays,
		booking.TotalPrice,
		booking.Status,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ?`
	var booking models.Booking
	err := db.QueryRowContext(ctx, query, id).Scan(bookingDest(&booking)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// UpdateBookingStatusWithVersion writes status only if the row is still at fromVersion.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// ListBookingsByCustomer returns the customer's bookings with car and car-owner display
// fields. Bookings on removed cars are kept with an empty car.
func (db *DB) ListBookingsByCustomer(ctx context.Context, customerID int64) ([]*models.CustomerBooking, error) {
	query := `SELECT ` + bookingColumns + `,
	                 COALESCE(c.id, 0), COALESCE(c.name, ''), COALESCE(c.type, ''),
	                 COALESCE(c.price_per_day, 0.0), COALESCE(c.image, ''),
	                 COALESCE(c.owner_id, 0), COALESCE(o.name, '')
              FROM bookings b
              LEFT JOIN cars c ON c.id = b.car_id
              LEFT JOIN users o ON o.id = c.owner_id
              WHERE b.customer_id = ?
              ORDER BY b.id ASC`

	rows, err := db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer bookings: %w", err)
	}
	defer rows.Close()

	result := make([]*models.CustomerBooking, 0)
	for rows.Next() {
		var (
			cb        models.CustomerBooking
			ownerID   int64
			ownerName string
		)
		dest := append(bookingDest(&cb.Booking),
			&cb.Car.ID, &cb.Car.Name, &cb.Car.Type, &cb.Car.PricePerDay, &cb.Car.Image,
			&ownerID, &ownerName,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan customer booking: %w", err)
		}
		if cb.Car.ID != 0 {
			cb.Car.Owner = &models.UserSummary{ID: ownerID, Name: ownerName}
		}
		result = append(result, &cb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customer bookings: %w", err)
	}
	return result, nil
}

// ListBookingsByOwner returns bookings on cars currently owned by ownerID, with the
// customer's display fields.
func (db *DB) ListBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.OwnerBooking, error) {
	query := `SELECT ` + bookingColumns + `,
	                 c.id, c.name, c.type, c.price_per_day, c.image,
	                 COALESCE(u.id, b.customer_id), COALESCE(u.name, ''), COALESCE(u.email, '')
              FROM bookings b
              JOIN cars c ON c.id = b.car_id
              LEFT JOIN users u ON u.id = b.customer_id
              WHERE c.owner_id = ?
              ORDER BY b.id ASC`

	rows, err := db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}
	defer rows.Close()

	result := make([]*models.OwnerBooking, 0)
	for rows.Next() {
		var ob models.OwnerBooking
		dest := append(bookingDest(&ob.Booking),
			&ob.Car.ID, &ob.Car.Name, &ob.Car.Type, &ob.Car.PricePerDay, &ob.Car.Image,
			&ob.Customer.ID, &ob.Customer.Name, &ob.Customer.Email,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan owner booking: %w", err)
		}
		result = append(result, &ob)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate owner bookings: %w", err)
	}
	return result, nil
}

func bookingDest(b *models.Booking) []interface{} {
	return []interface{}{
		&b.ID, &b.CarID, &b.CustomerID, &b.StartDate, &b.EndDate, &b.TotalDays,
		&b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	}
}
