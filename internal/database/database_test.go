package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// gorm pings once while opening.
	mock.ExpectPing()
	db, err := Open(postgres.New(postgres.Config{Conn: sqlDB}))
	require.NoError(t, err)
	return db, mock
}

func TestPing(t *testing.T) {
	db, mock := openMock(t)

	mock.ExpectPing()
	assert.NoError(t, Ping(db))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.EqualError(t, Ping(db), "connection refused")

	assert.NoError(t, mock.ExpectationsWereMet())
}
