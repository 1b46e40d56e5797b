package service

import (
	"context"

	"carrental/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockBookingStore struct {
	mock.Mock
}

func (m *mockBookingStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBookingStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingStore) UpdateBookingStatusWithVersion(ctx context.Context, id, v int64, s string) error {
	return m.Called(ctx, id, v, s).Error(0)
}

func (m *mockBookingStore) ListBookingsByCustomer(ctx context.Context, id int64) ([]*models.CustomerBooking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CustomerBooking), args.Error(1)
}

func (m *mockBookingStore) ListBookingsByOwner(ctx context.Context, id int64) ([]*models.OwnerBooking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OwnerBooking), args.Error(1)
}

type mockInventory struct {
	mock.Mock
}

func (m *mockInventory) Acquire(ctx context.Context, carID int64) (*models.Car, error) {
	args := m.Called(ctx, carID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Car), args.Error(1)
}

func (m *mockInventory) Release(ctx context.Context, carID int64) error {
	return m.Called(ctx, carID).Error(0)
}

type mockInventoryStore struct {
	mock.Mock
}

func (m *mockInventoryStore) AcquireCar(ctx context.Context, id int64) (*models.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Car), args.Error(1)
}

func (m *mockInventoryStore) ReleaseCar(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockCarStore struct {
	mock.Mock
}

func (m *mockCarStore) CreateCar(ctx context.Context, car *models.Car) error {
	return m.Called(ctx, car).Error(0)
}

func (m *mockCarStore) GetCar(ctx context.Context, id int64) (*models.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Car), args.Error(1)
}

func (m *mockCarStore) GetCarListing(ctx context.Context, id int64) (*models.CarListing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CarListing), args.Error(1)
}

func (m *mockCarStore) ListAvailableCars(ctx context.Context, f models.CarFilter) ([]*models.CarListing, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CarListing), args.Error(1)
}

func (m *mockCarStore) ListCarsByOwner(ctx context.Context, ownerID int64) ([]*models.Car, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Car), args.Error(1)
}

func (m *mockCarStore) UpdateCarDetails(ctx context.Context, car *models.Car) error {
	return m.Called(ctx, car).Error(0)
}

func (m *mockCarStore) DeleteCar(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}
