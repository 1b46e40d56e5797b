package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"carrental/internal/domain"
	"carrental/internal/events"
	"carrental/internal/models"

	"github.com/rs/zerolog"
)

// compensationTimeout bounds release and restore steps, which run even after the
// caller's context is done.
const compensationTimeout = 5 * time.Second

type CreateBookingInput struct {
	CarID     int64
	StartDate time.Time
	EndDate   time.Time
}

// BookingService drives the booking lifecycle and keeps car availability in step with it.
type BookingService struct {
	bookings  domain.BookingStore
	inventory domain.Inventory
	eventBus  domain.EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewBookingService(bookings domain.BookingStore, inventory domain.Inventory, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		bookings:  bookings,
		inventory: inventory,
		eventBus:  eventBus,
		logger:    logger.With().Str("component", "booking_service").Logger(),
		now:       time.Now,
	}
}

// TotalDays is the number of started 24h periods between start and end.
func TotalDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// ParseBookingDate accepts a calendar date or an RFC 3339 timestamp.
func ParseBookingDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(models.DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, validationError("invalid date %q", value)
	}
	return t.UTC(), nil
}

func (s *BookingService) CreateBooking(ctx context.Context, caller models.Identity, in CreateBookingInput) (*models.Booking, error) {
	days := TotalDays(in.StartDate, in.EndDate)
	if days <= 0 {
		return nil, ErrInvalidDateRange
	}

	car, err := s.inventory.Acquire(ctx, in.CarID)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		CarID:      car.ID,
		CustomerID: caller.UserID,
		StartDate:  in.StartDate.UTC(),
		EndDate:    in.EndDate.UTC(),
		TotalDays:  days,
		TotalPrice: float64(days) * car.PricePerDay,
		Status:     models.StatusPending,
	}

	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		s.logger.Error().Err(err).Int64("car_id", car.ID).Int64("customer_id", caller.UserID).Msg("insert booking failed, releasing car")
		if relErr := s.release(ctx, car.ID); relErr != nil {
			s.logger.Error().Err(relErr).Int64("car_id", car.ID).Msg("release after failed insert")
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.publishEvent(events.EventBookingCreated, booking, "")
	return booking, nil
}

// ProcessPayment records a simulated payment outcome. It does not check the current
// status, so a booking can be paid again or revived from Failed or Cancelled as long as
// its car can be reserved again.
func (s *BookingService) ProcessPayment(ctx context.Context, caller models.Identity, bookingID int64, success bool) (*models.Booking, error) {
	booking, err := s.ownBooking(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	previous := booking.Status

	if success {
		return s.markPaid(ctx, booking, previous)
	}

	if err := s.setStatus(ctx, booking, models.StatusFailed); err != nil {
		return nil, err
	}
	if models.HoldsCar(previous) {
		if err := s.releaseOrRestore(ctx, booking, previous); err != nil {
			return nil, err
		}
	}

	s.publishEvent(events.EventBookingPaymentFailed, booking, previous)
	return booking, nil
}

func (s *BookingService) markPaid(ctx context.Context, booking *models.Booking, previous string) (*models.Booking, error) {
	reacquired := false
	if !models.HoldsCar(previous) {
		if _, err := s.inventory.Acquire(ctx, booking.CarID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrUnavailable
			}
			return nil, err
		}
		reacquired = true
	}

	if err := s.setStatus(ctx, booking, models.StatusPaid); err != nil {
		if reacquired {
			if relErr := s.release(ctx, booking.CarID); relErr != nil {
				s.logger.Error().Err(relErr).Int64("booking_id", booking.ID).Int64("car_id", booking.CarID).Msg("release after failed revive")
			}
		}
		return nil, err
	}

	s.publishEvent(events.EventBookingPaid, booking, previous)
	return booking, nil
}

// CancelBooking cancels a Pending booking and frees its car.
func (s *BookingService) CancelBooking(ctx context.Context, caller models.Identity, bookingID int64) (*models.Booking, error) {
	booking, err := s.ownBooking(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusPending {
		return nil, ErrInvalidState
	}
	previous := booking.Status

	if err := s.setStatus(ctx, booking, models.StatusCancelled); err != nil {
		return nil, err
	}
	if err := s.releaseOrRestore(ctx, booking, previous); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCancelled, booking, previous)
	return booking, nil
}

func (s *BookingService) ownBooking(ctx context.Context, caller models.Identity, bookingID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, translate("get booking", err)
	}
	if booking.CustomerID != caller.UserID {
		return nil, ErrUnauthorized
	}
	return booking, nil
}

// setStatus writes status against the booking's current version and advances the
// in-memory copy on success.
func (s *BookingService) setStatus(ctx context.Context, booking *models.Booking, status string) error {
	if err := s.bookings.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, status); err != nil {
		mapped := translate("update booking status", err)
		if errors.Is(mapped, ErrConflict) {
			s.logger.Warn().Int64("booking_id", booking.ID).Int64("version", booking.Version).Msg("booking status conflict")
		}
		return mapped
	}
	booking.Status = status
	booking.Version++
	booking.UpdatedAt = s.now().UTC()
	return nil
}

// releaseOrRestore frees the booking's car. If that fails the booking goes back to
// previous so that it still accounts for the held car.
func (s *BookingService) releaseOrRestore(ctx context.Context, booking *models.Booking, previous string) error {
	err := s.release(ctx, booking.CarID)
	if err == nil {
		return nil
	}

	s.logger.Error().Err(err).Int64("booking_id", booking.ID).Int64("car_id", booking.CarID).Str("status", booking.Status).Msg("release car failed, restoring booking status")
	restoreCtx, cancel := compensationContext(ctx)
	defer cancel()
	if restoreErr := s.setStatus(restoreCtx, booking, previous); restoreErr != nil {
		s.logger.Error().Err(restoreErr).Int64("booking_id", booking.ID).Str("status", previous).Msg("restore booking status failed")
	}
	return fmt.Errorf("release car %d: %w", booking.CarID, err)
}

// release frees the car on a context detached from the caller, so a client hanging up
// mid-request cannot leave the car held without a booking.
func (s *BookingService) release(ctx context.Context, carID int64) error {
	relCtx, cancel := compensationContext(ctx)
	defer cancel()
	return s.inventory.Release(relCtx, carID)
}

func compensationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, previous string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:      booking.ID,
		CarID:          booking.CarID,
		CustomerID:     booking.CustomerID,
		Status:         booking.Status,
		PreviousStatus: previous,
		TotalPrice:     booking.TotalPrice,
		StartDate:      booking.StartDate,
		EndDate:        booking.EndDate,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
