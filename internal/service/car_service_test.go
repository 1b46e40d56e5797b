package service

import (
	"context"
	"errors"
	"testing"

	"carrental/internal/database"
	"carrental/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var owner = models.Identity{UserID: 1, Role: models.RoleOwner}

func newCarService() (*CarService, *mockCarStore) {
	logger := zerolog.Nop()
	store := new(mockCarStore)
	return NewCarService(store, &logger), store
}

func TestCarService_CreateCar(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, store := newCarService()
		store.On("CreateCar", mock.Anything, mock.MatchedBy(func(c *models.Car) bool {
			return c.OwnerID == owner.UserID && c.Name == "Corolla"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Car).ID = 3
		}).Return(nil)

		car, err := svc.CreateCar(ctx, owner, CarInput{Name: "  Corolla ", Type: "sedan", PricePerDay: 40})
		require.NoError(t, err)
		assert.Equal(t, int64(3), car.ID)
		store.AssertExpectations(t)
	})

	tests := []struct {
		name  string
		input CarInput
		msg   string
	}{
		{"NoName", CarInput{Type: "sedan", PricePerDay: 1}, "name is required"},
		{"BlankType", CarInput{Name: "x", Type: "  ", PricePerDay: 1}, "type is required"},
		{"ZeroPrice", CarInput{Name: "x", Type: "sedan"}, "pricePerDay"},
		{"NegativePrice", CarInput{Name: "x", Type: "sedan", PricePerDay: -5}, "pricePerDay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newCarService()
			_, err := svc.CreateCar(ctx, owner, tt.input)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorContains(t, err, tt.msg)
			store.AssertNotCalled(t, "CreateCar", mock.Anything, mock.Anything)
		})
	}
}

func TestCarService_ListAvailableCars(t *testing.T) {
	ctx := context.Background()
	svc, store := newCarService()

	filter := models.CarFilter{Type: "suv", MinPrice: 10, MaxPrice: 100}
	store.On("ListAvailableCars", mock.Anything, filter).Return([]*models.CarListing{{Car: models.Car{ID: 1}}}, nil)

	cars, err := svc.ListAvailableCars(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, cars, 1)

	_, err = svc.ListAvailableCars(ctx, models.CarFilter{MinPrice: 100, MaxPrice: 10})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.ListAvailableCars(ctx, models.CarFilter{MinPrice: -1})
	assert.ErrorIs(t, err, ErrValidation)
	store.AssertNumberOfCalls(t, "ListAvailableCars", 1)
}

func TestCarService_GetCar(t *testing.T) {
	ctx := context.Background()
	svc, store := newCarService()
	store.On("GetCarListing", mock.Anything, int64(1)).Return(&models.CarListing{Car: models.Car{ID: 1}}, nil)
	store.On("GetCarListing", mock.Anything, int64(2)).Return(nil, database.ErrNotFound)
	store.On("GetCarListing", mock.Anything, int64(3)).Return(nil, errors.New("boom"))

	_, err := svc.GetCar(ctx, 1)
	assert.NoError(t, err)
	_, err = svc.GetCar(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetCar(ctx, 3)
	assert.ErrorContains(t, err, "get car: boom")
}

func TestCarService_UpdateCar(t *testing.T) {
	ctx := context.Background()
	name := "Corolla Hybrid"
	price := 55.0

	t.Run("Owner", func(t *testing.T) {
		svc, store := newCarService()
		store.On("GetCar", mock.Anything, int64(1)).Return(&models.Car{ID: 1, OwnerID: owner.UserID, Name: "Corolla", Type: "sedan", PricePerDay: 40, IsAvailable: false}, nil)
		store.On("UpdateCarDetails", mock.Anything, mock.MatchedBy(func(c *models.Car) bool {
			return c.Name == name && c.PricePerDay == price && c.Type == "sedan" && !c.IsAvailable
		})).Return(nil)

		car, err := svc.UpdateCar(ctx, owner, 1, models.CarPatch{Name: &name, PricePerDay: &price})
		require.NoError(t, err)
		assert.Equal(t, name, car.Name)
		store.AssertExpectations(t)
	})

	t.Run("NotOwner", func(t *testing.T) {
		svc, store := newCarService()
		store.On("GetCar", mock.Anything, int64(1)).Return(&models.Car{ID: 1, OwnerID: 2}, nil)

		_, err := svc.UpdateCar(ctx, owner, 1, models.CarPatch{Name: &name})
		assert.ErrorIs(t, err, ErrUnauthorized)
		store.AssertNotCalled(t, "UpdateCarDetails", mock.Anything, mock.Anything)
	})

	t.Run("InvalidPatch", func(t *testing.T) {
		svc, store := newCarService()
		store.On("GetCar", mock.Anything, int64(1)).Return(&models.Car{ID: 1, OwnerID: owner.UserID, Name: "Corolla", Type: "sedan", PricePerDay: 40}, nil)
		zero := 0.0

		_, err := svc.UpdateCar(ctx, owner, 1, models.CarPatch{PricePerDay: &zero})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Missing", func(t *testing.T) {
		svc, store := newCarService()
		store.On("GetCar", mock.Anything, int64(1)).Return(nil, database.ErrNotFound)

		_, err := svc.UpdateCar(ctx, owner, 1, models.CarPatch{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCarService_DeleteCar(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner", func(t *testing.T) {
		svc, store := newCarService()
		store.On("GetCar", mock.Anything, int64(1)).Return(&models.Car{ID: 1, OwnerID: owner.UserID}, nil)
		store.On("DeleteCar", mock.Anything, int64(1)).Return(nil)

		assert.NoError(t, svc.DeleteCar(ctx, owner, 1))
		store.AssertExpectations(t)
	})

	t.Run("NotOwner", func(t *testing.T) {
		svc, store := newCarService()
		store.On("GetCar", mock.Anything, int64(1)).Return(&models.Car{ID: 1, OwnerID: 2}, nil)

		assert.ErrorIs(t, svc.DeleteCar(ctx, owner, 1), ErrUnauthorized)
		store.AssertNotCalled(t, "DeleteCar", mock.Anything, mock.Anything)
	})

	t.Run("Missing", func(t *testing.T) {
		svc, store := newCarService()
		store.On("GetCar", mock.Anything, int64(1)).Return(nil, database.ErrNotFound)

		assert.ErrorIs(t, svc.DeleteCar(ctx, owner, 1), ErrNotFound)
	})
}

func TestCarService_ListOwnerCars(t *testing.T) {
	svc, store := newCarService()
	store.On("ListCarsByOwner", mock.Anything, owner.UserID).Return([]*models.Car{{ID: 1}, {ID: 2}}, nil)

	cars, err := svc.ListOwnerCars(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, cars, 2)
}

func TestBookingQuery(t *testing.T) {
	ctx := context.Background()
	store := new(mockBookingStore)
	store.On("ListBookingsByCustomer", mock.Anything, int64(10)).Return([]*models.CustomerBooking{{Booking: models.Booking{ID: 1}}}, nil)
	store.On("ListBookingsByOwner", mock.Anything, int64(1)).Return(nil, errors.New("boom"))

	q := NewBookingQuery(store)
	list, err := q.ListByCustomer(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = q.ListByOwner(ctx, 1)
	assert.ErrorContains(t, err, "list owner bookings")
}
