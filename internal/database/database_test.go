package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_foreign_keys=on", database.SQLiteDSN(":memory:"))
	assert.Equal(t, "file:foodgram.db?_foreign_keys=on", database.SQLiteDSN("foodgram.db"))
}

func TestRunMigrationsSQLite(t *testing.T) {
	db, err := database.OpenDialector(sqlite.Open(database.SQLiteDSN(":memory:")), gormlogger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.RunMigrations(db, "", logger.Discard()))
	for _, table := range []string{"users", "recipes", "ingredients", "tags", "favorites", "shopping_cart_entries", "follows"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestHealthCheck(t *testing.T) {
	db, err := database.OpenDialector(sqlite.Open(database.SQLiteDSN(":memory:")), gormlogger.Silent)
	require.NoError(t, err)

	assert.NoError(t, database.HealthCheck(context.Background(), db))
	require.NoError(t, database.Close(db))
	assert.Error(t, database.HealthCheck(context.Background(), db))
}

func TestDuplicateKeyIsTranslated(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	testhelpers.CreateIngredient(t, db, "flour", "g")

	err := db.Create(&models.Ingredient{Name: "flour", MeasurementUnit: "kg"}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestPostgresMigrations(t *testing.T) {
	pg := testhelpers.SetupPostgresDatabase(t)

	var tags int64
	require.NoError(t, pg.DB.Model(&models.Tag{}).Count(&tags).Error)
	assert.EqualValues(t, 3, tags)

	user := testhelpers.CreateUser(t, pg.DB, "self")
	err := pg.DB.Create(&models.Follow{UserID: user.ID, AuthorID: user.ID}).Error
	assert.Error(t, err, "self follow must violate the check constraint")

	m, err := database.NewMigrator(pg.DSN)
	require.NoError(t, err)
	defer m.Close()
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.EqualValues(t, 2, version)
	assert.False(t, dirty)
}
