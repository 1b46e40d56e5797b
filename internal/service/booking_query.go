package service

import (
	"context"

	"carrental/internal/domain"
	"carrental/internal/models"
)

// BookingQuery is the read path for booking lists.
type BookingQuery struct {
	bookings domain.BookingStore
}

func NewBookingQuery(bookings domain.BookingStore) *BookingQuery {
	return &BookingQuery{bookings: bookings}
}

func (q *BookingQuery) ListByCustomer(ctx context.Context, customerID int64) ([]*models.CustomerBooking, error) {
	list, err := q.bookings.ListBookingsByCustomer(ctx, customerID)
	if err != nil {
		return nil, translate("list customer bookings", err)
	}
	return list, nil
}

func (q *BookingQuery) ListByOwner(ctx context.Context, ownerID int64) ([]*models.OwnerBooking, error) {
	list, err := q.bookings.ListBookingsByOwner(ctx, ownerID)
	if err != nil {
		return nil, translate("list owner bookings", err)
	}
	return list, nil
}
