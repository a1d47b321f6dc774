//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { ctr.Terminate(ctx) }) //nolint:errcheck

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connStr
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverPostgres, DSN: dsn})
	require.NoError(t, err)
	schema := s.Schema()
	require.NotEmpty(t, schema)

	require.NoError(t, s.ExecuteScript(ctx, `
CREATE TABLE restaurants (restaurant_id INTEGER PRIMARY KEY, restaurant_name TEXT);
INSERT INTO restaurants VALUES (10, 'Spice Hub'), (20, 'Wok Express');`))

	tbl, _, err := s.QueryTable(ctx, "restaurants")
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []interface{}{int64(10), "Spice Hub"}, tbl.Row(0))

	require.NoError(t, s.Close())

	// the throw-away schema is gone once the store is closed
	check, err := Open(ctx, Options{Driver: DriverPostgres, DSN: dsn})
	require.NoError(t, err)
	defer check.Close()
	var count int
	require.NoError(t, check.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.schemata WHERE schema_name = $1", schema).Scan(&count))
	assert.Zero(t, count)
}

func TestPostgresStore_MissingTable(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverPostgres, DSN: dsn})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.ExecuteScript(ctx, "CREATE TABLE vendors (restaurant_id INTEGER);"))
	ok, err := s.TableExists(ctx, "restaurants")
	require.NoError(t, err)
	assert.False(t, ok)
}
