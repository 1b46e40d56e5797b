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

func TestCarInventory_Acquire(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := new(mockInventoryStore)
		store.On("AcquireCar", mock.Anything, int64(1)).Return(&models.Car{ID: 1, PricePerDay: 40}, nil)

		car, err := NewCarInventory(store, &logger).Acquire(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 40.0, car.PricePerDay)
		store.AssertExpectations(t)
	})

	t.Run("Held", func(t *testing.T) {
		store := new(mockInventoryStore)
		store.On("AcquireCar", mock.Anything, int64(1)).Return(nil, database.ErrNotAvailable)

		_, err := NewCarInventory(store, &logger).Acquire(ctx, 1)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("Missing", func(t *testing.T) {
		store := new(mockInventoryStore)
		store.On("AcquireCar", mock.Anything, int64(1)).Return(nil, database.ErrNotFound)

		_, err := NewCarInventory(store, &logger).Acquire(ctx, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		store := new(mockInventoryStore)
		boom := errors.New("disk full")
		store.On("AcquireCar", mock.Anything, int64(1)).Return(nil, boom)

		_, err := NewCarInventory(store, &logger).Acquire(ctx, 1)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrUnavailable)
	})
}

func TestCarInventory_Release(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	store := new(mockInventoryStore)
	store.On("ReleaseCar", mock.Anything, int64(1)).Return(nil).Once()
	store.On("ReleaseCar", mock.Anything, int64(2)).Return(errors.New("locked")).Once()

	inv := NewCarInventory(store, &logger)
	assert.NoError(t, inv.Release(ctx, 1))
	assert.ErrorContains(t, inv.Release(ctx, 2), "release car")
	store.AssertExpectations(t)
}
