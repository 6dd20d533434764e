// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"landmarket/server/internal/database"
	"landmarket/server/internal/models"
)

// New returns an isolated in-memory SQLite database with the schema applied.
func New(t testing.TB) *database.Database {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.NewDatabase(database.DriverSQLite, dsn, logger)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Seller(t testing.TB, db *database.Database, name string) *models.User {
	return user(t, db, name, models.RoleSeller)
}

func Buyer(t testing.TB, db *database.Database, name string) *models.User {
	return user(t, db, name, models.RoleBuyer)
}

func Admin(t testing.TB, db *database.Database, name string) *models.User {
	return user(t, db, name, models.RoleAdmin)
}

func user(t testing.TB, db *database.Database, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		Phone:        "+2547" + uuid.NewString()[:8],
		PasswordHash: "x",
		Role:         role,
		County:       "Nairobi",
		AccountState: models.AccountVerified,
	}
	require.NoError(t, db.GetDB().Create(u).Error)
	return u
}

// Listing inserts a property owned by owner in the given state.
func Listing(t testing.TB, db *database.Database, owner *models.User, title string, state models.ModerationState) *models.Property {
	t.Helper()
	p := &models.Property{
		OwnerID:         owner.ID,
		Title:           title,
		Description:     "Parcel " + title,
		Price:           1_000_000,
		Size:            1,
		SizeUnit:        models.SizeAcres,
		Type:            models.PropertyResidential,
		County:          "Nairobi",
		Constituency:    "Westlands",
		Location:        "Nairobi",
		Coordinates:     models.LatLng{Lat: -1.28, Lng: 36.82},
		ModerationState: state,
	}
	require.NoError(t, db.CreateProperty(context.Background(), p))
	return p
}
