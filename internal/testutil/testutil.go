// Package testutil provides a migrated throwaway database for store-backed
// tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const Password = "password123"

// NewDB opens a fresh SQLite file under t.TempDir and runs the migrations.
// A single connection keeps SQLite writers serialized.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(sqlite.Open(path + "?_pragma=busy_timeout(5000)"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Config returns a configuration suitable for tests.
func Config() *config.Config {
	return &config.Config{
		JWTSecret:           "test-secret",
		JWTAccessExpiry:     15 * time.Minute,
		JWTRefreshExpiry:    24 * time.Hour,
		AdminUsernames:      "root",
		AdminToken:          "admin-token",
		CORSOrigins:         "*",
		Timezone:            "UTC",
		PageSize:            10,
		LogRetentionDays:    30,
		MaintenanceSchedule: "@daily",
	}
}

// CreateUser inserts a user whose password is Password.
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: username,
		Password:  string(hash),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateUsers inserts one user per name, keyed by name.
func CreateUsers(t *testing.T, db *gorm.DB, names ...string) map[string]models.User {
	t.Helper()
	out := make(map[string]models.User, len(names))
	for _, n := range names {
		out[n] = CreateUser(t, db, n)
	}
	return out
}
