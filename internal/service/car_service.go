package service

import (
	"context"
	"strings"

	"carrental/internal/domain"
	"carrental/internal/models"

	"github.com/rs/zerolog"
)

type CarInput struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	PricePerDay float64 `json:"pricePerDay"`
}

// CarService manages owner listings. It never changes availability.
type CarService struct {
	cars   domain.CarStore
	logger zerolog.Logger
}

func NewCarService(cars domain.CarStore, logger *zerolog.Logger) *CarService {
	return &CarService{
		cars:   cars,
		logger: logger.With().Str("component", "car_service").Logger(),
	}
}

func (s *CarService) CreateCar(ctx context.Context, caller models.Identity, in CarInput) (*models.Car, error) {
	car := &models.Car{
		OwnerID:     caller.UserID,
		Name:        strings.TrimSpace(in.Name),
		Type:        strings.TrimSpace(in.Type),
		Description: in.Description,
		Image:       in.Image,
		PricePerDay: in.PricePerDay,
	}
	if err := validateCar(car); err != nil {
		return nil, err
	}

	if err := s.cars.CreateCar(ctx, car); err != nil {
		return nil, translate("create car", err)
	}
	s.logger.Info().Int64("car_id", car.ID).Int64("owner_id", car.OwnerID).Msg("car listed")
	return car, nil
}

func (s *CarService) ListAvailableCars(ctx context.Context, filter models.CarFilter) ([]*models.CarListing, error) {
	if filter.MinPrice < 0 || filter.MaxPrice < 0 {
		return nil, validationError("price bounds must not be negative")
	}
	if filter.MaxPrice > 0 && filter.MinPrice > filter.MaxPrice {
		return nil, validationError("minPrice must not exceed maxPrice")
	}

	cars, err := s.cars.ListAvailableCars(ctx, filter)
	if err != nil {
		return nil, translate("list available cars", err)
	}
	return cars, nil
}

func (s *CarService) ListOwnerCars(ctx context.Context, caller models.Identity) ([]*models.Car, error) {
	cars, err := s.cars.ListCarsByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, translate("list owner cars", err)
	}
	return cars, nil
}

func (s *CarService) GetCar(ctx context.Context, id int64) (*models.CarListing, error) {
	car, err := s.cars.GetCarListing(ctx, id)
	if err != nil {
		return nil, translate("get car", err)
	}
	return car, nil
}

// UpdateCar applies patch to a car owned by the caller.
func (s *CarService) UpdateCar(ctx context.Context, caller models.Identity, id int64, patch models.CarPatch) (*models.Car, error) {
	car, err := s.ownCar(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(car)
	car.Name = strings.TrimSpace(car.Name)
	car.Type = strings.TrimSpace(car.Type)
	if err := validateCar(car); err != nil {
		return nil, err
	}

	if err := s.cars.UpdateCarDetails(ctx, car); err != nil {
		return nil, translate("update car", err)
	}
	return car, nil
}

// DeleteCar removes a listing. Bookings that reference it stay as history.
func (s *CarService) DeleteCar(ctx context.Context, caller models.Identity, id int64) error {
	car, err := s.ownCar(ctx, caller, id)
	if err != nil {
		return err
	}
	if !car.IsAvailable {
		s.logger.Warn().Int64("car_id", id).Msg("deleting a car that is currently reserved")
	}

	if err := s.cars.DeleteCar(ctx, id); err != nil {
		return translate("delete car", err)
	}
	s.logger.Info().Int64("car_id", id).Int64("owner_id", caller.UserID).Msg("car removed")
	return nil
}

func (s *CarService) ownCar(ctx context.Context, caller models.Identity, id int64) (*models.Car, error) {
	car, err := s.cars.GetCar(ctx, id)
	if err != nil {
		return nil, translate("get car", err)
	}
	if car.OwnerID != caller.UserID {
		return nil, ErrUnauthorized
	}
	return car, nil
}

func validateCar(car *models.Car) error {
	switch {
	case car.Name == "":
		return validationError("name is required")
	case car.Type == "":
		return validationError("type is required")
	case car.PricePerDay <= 0:
		return validationError("pricePerDay must be greater than zero")
	}
	return nil
}
