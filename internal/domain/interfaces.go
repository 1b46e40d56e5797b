package domain

import (
	"context"
	"time"

	"carrental/internal/models"
)

// InventoryStore is the persistence side of car reservation.
type InventoryStore interface {
	AcquireCar(ctx context.Context, id int64) (*models.Car, error)
	ReleaseCar(ctx context.Context, id int64) error
}

type CarStore interface {
	CreateCar(ctx context.Context, car *models.Car) error
	GetCar(ctx context.Context, id int64) (*models.Car, error)
	GetCarListing(ctx context.Context, id int64) (*models.CarListing, error)
	ListAvailableCars(ctx context.Context, filter models.CarFilter) ([]*models.CarListing, error)
	ListCarsByOwner(ctx context.Context, ownerID int64) ([]*models.Car, error)
	UpdateCarDetails(ctx context.Context, car *models.Car) error
	DeleteCar(ctx context.Context, id int64) error
}

type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error
	ListBookingsByCustomer(ctx context.Context, customerID int64) ([]*models.CustomerBooking, error)
	ListBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.OwnerBooking, error)
}

type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Inventory reserves and frees cars. It is the only writer of car availability.
type Inventory interface {
	Acquire(ctx context.Context, carID int64) (*models.Car, error)
	Release(ctx context.Context, carID int64) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// RateLimitRepository counts requests per key in fixed windows.
type RateLimitRepository interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type HealthChecker interface {
	PingContext(ctx context.Context) error
}
