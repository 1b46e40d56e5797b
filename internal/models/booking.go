package models

import "time"

type Booking struct {
	ID         int64     `json:"id"`
	CarID      int64     `json:"car"`
	CustomerID int64     `json:"customer"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	TotalDays  int       `json:"totalDays"`
	TotalPrice float64   `json:"totalPrice"`
	Status     string    `json:"status"` // Pending, Paid, Failed, Cancelled
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Version    int64     `json:"version"`
}

// HoldsCar reports whether a booking in this status keeps its car reserved.
func HoldsCar(status string) bool {
	return status == StatusPending || status == StatusPaid
}

// CarSummary is the subset of car fields shown next to a booking.
// ID is zero when the car has been removed since the booking was made.
type CarSummary struct {
	ID          int64        `json:"id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Type        string       `json:"type,omitempty"`
	PricePerDay float64      `json:"pricePerDay,omitempty"`
	Image       string       `json:"image,omitempty"`
	Owner       *UserSummary `json:"owner,omitempty"`
}

// CustomerBooking is a booking as listed to the customer who made it.
type CustomerBooking struct {
	Booking
	Car CarSummary `json:"car"`
}

// OwnerBooking is a booking as listed to the owner of the booked car.
type OwnerBooking struct {
	Booking
	Car      CarSummary  `json:"car"`
	Customer UserSummary `json:"customer"`
}
