package database

import (
	"context"
	"testing"

	"carrental/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetCar(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	assert.NotZero(t, f.car.ID)
	assert.True(t, f.car.IsAvailable)

	got, err := db.GetCar(ctx, f.car.ID)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, got.OwnerID)
	assert.Equal(t, "Corolla", got.Name)
	assert.Equal(t, 45.0, got.PricePerDay)
	assert.True(t, got.IsAvailable)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = db.GetCar(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateCar_RejectsNonPositivePrice(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	err := db.CreateCar(context.Background(), &models.Car{OwnerID: f.owner.ID, Name: "Free", Type: "sedan", PricePerDay: 0})
	assert.Error(t, err)
}

func TestGetCarListing(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	listing, err := db.GetCarListing(context.Background(), f.car.ID)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, listing.Owner.ID)
	assert.Equal(t, "Olga", listing.Owner.Name)
	assert.Equal(t, "olga@example.com", listing.Owner.Email)

	_, err = db.GetCarListing(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAvailableCars(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	van := &models.Car{OwnerID: f.owner.ID, Name: "Transporter", Type: "van", PricePerDay: 90}
	require.NoError(t, db.CreateCar(ctx, van))
	suv := &models.Car{OwnerID: f.owner.ID, Name: "Sportage", Type: "suv", PricePerDay: 65}
	require.NoError(t, db.CreateCar(ctx, suv))

	_, err := db.AcquireCar(ctx, suv.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter models.CarFilter
		want   []string
	}{
		{"NoFilter", models.CarFilter{}, []string{"Corolla", "Transporter"}},
		{"ByType", models.CarFilter{Type: "van"}, []string{"Transporter"}},
		{"MinPrice", models.CarFilter{MinPrice: 50}, []string{"Transporter"}},
		{"MaxPrice", models.CarFilter{MaxPrice: 50}, []string{"Corolla"}},
		{"Range", models.CarFilter{MinPrice: 46, MaxPrice: 89}, []string{}},
		{"HeldCarHidden", models.CarFilter{Type: "suv"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cars, err := db.ListAvailableCars(ctx, tt.filter)
			require.NoError(t, err)
			names := make([]string, 0, len(cars))
			for _, c := range cars {
				names = append(names, c.Name)
				assert.Equal(t, "Olga", c.Owner.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestListCarsByOwner(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	_, err := db.AcquireCar(ctx, f.car.ID)
	require.NoError(t, err)

	cars, err := db.ListCarsByOwner(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.False(t, cars[0].IsAvailable)

	cars, err = db.ListCarsByOwner(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, cars)
}

func TestUpdateCarDetails(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	_, err := db.AcquireCar(ctx, f.car.ID)
	require.NoError(t, err)

	f.car.Name = "Corolla Hybrid"
	f.car.PricePerDay = 55
	f.car.IsAvailable = true
	require.NoError(t, db.UpdateCarDetails(ctx, f.car))

	got, err := db.GetCar(ctx, f.car.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corolla Hybrid", got.Name)
	assert.Equal(t, 55.0, got.PricePerDay)
	assert.False(t, got.IsAvailable, "details update must not release the car")

	err = db.UpdateCarDetails(ctx, &models.Car{ID: 999, Name: "x", Type: "x", PricePerDay: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCar(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	require.NoError(t, db.DeleteCar(ctx, f.car.ID))
	_, err := db.GetCar(ctx, f.car.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, db.DeleteCar(ctx, f.car.ID), ErrNotFound)
}

func TestAcquireAndReleaseCar(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	car, err := db.AcquireCar(ctx, f.car.ID)
	require.NoError(t, err)
	assert.Equal(t, f.car.ID, car.ID)
	assert.Equal(t, 45.0, car.PricePerDay)
	assert.False(t, car.IsAvailable)

	_, err = db.AcquireCar(ctx, f.car.ID)
	assert.ErrorIs(t, err, ErrNotAvailable)

	_, err = db.AcquireCar(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.ReleaseCar(ctx, f.car.ID))
	require.NoError(t, db.ReleaseCar(ctx, f.car.ID), "release is idempotent")
	require.NoError(t, db.ReleaseCar(ctx, 999), "releasing a missing car is not an error")

	got, err := db.GetCar(ctx, f.car.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)

	_, err = db.AcquireCar(ctx, f.car.ID)
	assert.NoError(t, err)
}
