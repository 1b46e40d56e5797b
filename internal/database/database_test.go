package database

import (
	"context"
	"path/filepath"
	"testing"

	"carrental/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fixture struct {
	owner    *models.User
	customer *models.User
	car      *models.Car
}

func seedFixture(t *testing.T, db *DB) fixture {
	t.Helper()
	ctx := context.Background()

	owner := &models.User{Name: "Olga", Email: "olga@example.com", Role: models.RoleOwner}
	require.NoError(t, db.CreateUser(ctx, owner))
	customer := &models.User{Name: "Anna", Email: "anna@example.com", Role: models.RoleCustomer}
	require.NoError(t, db.CreateUser(ctx, customer))

	car := &models.Car{
		OwnerID:     owner.ID,
		Name:        "Corolla",
		Type:        "sedan",
		Description: "automatic",
		Image:       "corolla.jpg",
		PricePerDay: 45,
	}
	require.NoError(t, db.CreateCar(ctx, car))

	return fixture{owner: owner, customer: customer, car: car}
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
}

func TestNewDB_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := zerolog.Nop()
	ctx := context.Background()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	user := &models.User{Name: "Olga", Email: "olga@example.com", Role: models.RoleOwner}
	require.NoError(t, db.CreateUser(ctx, user))
	require.NoError(t, db.Close())

	db, err = NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "olga@example.com", got.Email)
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.PingContext(context.Background()))
}
