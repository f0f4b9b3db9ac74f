package db

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuseats/campuseats-backend/pkg/config"
	"github.com/campuseats/campuseats-backend/pkg/logger"
)

func openSQLite(t *testing.T, logg *logger.Logger) *Client {
	t.Helper()
	client, err := New(context.Background(), config.DBConfig{DSN: "file::memory:", Driver: DriverSQLite, MaxOpenConns: 1}, logg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewOpensSQLiteAndPings(t *testing.T) {
	buf := &bytes.Buffer{}
	client := openSQLite(t, logger.New(logger.Options{ServiceName: "test", Output: buf}))

	require.NoError(t, client.Ping(context.Background()))
	assert.Contains(t, buf.String(), `"driver":"sqlite"`)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{Driver: DriverSQLite}, nil)
	assert.ErrorContains(t, err, "DSN is required")

	_, err = New(context.Background(), config.DBConfig{DSN: "x", Driver: "oracle"}, nil)
	assert.ErrorContains(t, err, `unsupported database driver "oracle"`)
}

func TestQueryLoggerReportsDriverErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	client := openSQLite(t, logger.New(logger.Options{ServiceName: "test", Output: buf}))

	err := client.DB().Exec(`SELECT * FROM missing_table`).Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), "db.query")
	assert.Contains(t, buf.String(), "missing_table")
}

func TestIsUniqueViolation(t *testing.T) {
	conn := openSQLite(t, nil).DB()
	require.NoError(t, conn.Exec(`CREATE TABLE favorites_pair (customer_id INTEGER, item_id INTEGER, UNIQUE (customer_id, item_id))`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO favorites_pair VALUES (1, 2)`).Error)

	err := conn.Exec(`INSERT INTO favorites_pair VALUES (1, 2)`).Error
	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "favorites_pair.customer_id, favorites_pair.item_id"))
	assert.False(t, IsUniqueViolation(err, "orders.order_id"))
	assert.False(t, IsUniqueViolation(errors.New("connection reset"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}
