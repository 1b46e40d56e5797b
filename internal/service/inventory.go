package service

import (
	"context"
	"errors"

	"carrental/internal/domain"
	"carrental/internal/metrics"
	"carrental/internal/models"

	"github.com/rs/zerolog"
)

// CarInventory reserves cars with a single compare-and-set on the availability flag.
type CarInventory struct {
	store  domain.InventoryStore
	logger zerolog.Logger
}

func NewCarInventory(store domain.InventoryStore, logger *zerolog.Logger) *CarInventory {
	return &CarInventory{
		store:  store,
		logger: logger.With().Str("component", "inventory").Logger(),
	}
}

// Acquire marks the car unavailable and returns it. At most one concurrent caller wins;
// the rest get ErrUnavailable.
func (i *CarInventory) Acquire(ctx context.Context, carID int64) (*models.Car, error) {
	car, err := i.store.AcquireCar(ctx, carID)
	if err != nil {
		mapped := translate("acquire car", err)
		if errors.Is(mapped, ErrUnavailable) {
			metrics.IncAcquireConflict()
			i.logger.Debug().Int64("car_id", carID).Msg("car already held")
		}
		return nil, mapped
	}
	return car, nil
}

// Release marks the car available again. It is idempotent.
func (i *CarInventory) Release(ctx context.Context, carID int64) error {
	if err := i.store.ReleaseCar(ctx, carID); err != nil {
		return translate("release car", err)
	}
	return nil
}
