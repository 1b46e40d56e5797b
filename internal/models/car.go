package models

import "time"

type Car struct {
	ID          int64     `json:"id" yaml:"id"`
	OwnerID     int64     `json:"owner" yaml:"owner_id"`
	Name        string    `json:"name" yaml:"name"`
	Type        string    `json:"type" yaml:"type"`
	Description string    `json:"description" yaml:"description"`
	Image       string    `json:"image" yaml:"image"`
	PricePerDay float64   `json:"pricePerDay" yaml:"price_per_day"`
	IsAvailable bool      `json:"isAvailable" yaml:"-"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"-"`
}

// CarListing is a car joined with its owner's public fields. Owner shadows the
// embedded owner id in JSON.
type CarListing struct {
	Car
	Owner UserSummary `json:"owner"`
}

// CarFilter narrows the public listing of available cars. Zero values mean no bound.
type CarFilter struct {
	Type     string
	MinPrice float64
	MaxPrice float64
}

// CarPatch carries owner-editable fields; nil means unchanged.
type CarPatch struct {
	Name        *string  `json:"name"`
	Type        *string  `json:"type"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	PricePerDay *float64 `json:"pricePerDay"`
}

// Apply copies the set fields onto car.
func (p CarPatch) Apply(car *Car) {
	if p.Name != nil {
		car.Name = *p.Name
	}
	if p.Type != nil {
		car.Type = *p.Type
	}
	if p.Description != nil {
		car.Description = *p.Description
	}
	if p.Image != nil {
		car.Image = *p.Image
	}
	if p.PricePerDay != nil {
		car.PricePerDay = *p.PricePerDay
	}
}
