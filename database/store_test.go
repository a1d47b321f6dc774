package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food_delivery_merge/etl"
)

const restaurantsScript = `
CREATE TABLE restaurants (
    restaurant_id INTEGER PRIMARY KEY,
    restaurant_name TEXT NOT NULL,
    rating REAL,
    cuisine TEXT
);
INSERT INTO restaurants VALUES (10, 'Spice Hub', 4.5, 'Indian');
INSERT INTO restaurants VALUES (20, 'Wok Express', 3.9, NULL);
`

func openSQLiteStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{Driver: DriverSQLite})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrInvalidConfig))
}

func TestOpen_PostgresRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: DriverPostgres})
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrInvalidConfig))
}

func TestStore_ExecuteScriptAndQuery(t *testing.T) {
	ctx := context.Background()
	s := openSQLiteStore(t)
	assert.Equal(t, DriverSQLite, s.Driver())
	assert.Empty(t, s.Schema())

	require.NoError(t, s.ExecuteScript(ctx, restaurantsScript))

	tbl, cols, err := s.QueryTable(ctx, "restaurants")
	require.NoError(t, err)
	require.Len(t, cols, 4)
	assert.Equal(t, "restaurant_id", cols[0].Name)
	assert.Equal(t, "INTEGER", strings.ToUpper(cols[0].Type))

	assert.Equal(t, []string{"restaurant_id", "restaurant_name", "rating", "cuisine"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []interface{}{int64(10), "Spice Hub", 4.5, "Indian"}, tbl.Row(0))
	assert.Equal(t, []interface{}{int64(20), "Wok Express", 3.9, nil}, tbl.Row(1))
}

func TestStore_DateColumnsKeepStoredText(t *testing.T) {
	ctx := context.Background()
	s := openSQLiteStore(t)

	require.NoError(t, s.ExecuteScript(ctx, `
CREATE TABLE restaurants (restaurant_id INTEGER, opened DATE, updated_at TIMESTAMP, seen DATETIME);
INSERT INTO restaurants VALUES (10, '2024-01-05', '2024-01-05 10:30:00', '2024-01-05 10:30:00.25');`))

	tbl, _, err := s.QueryTable(ctx, "restaurants")
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, []interface{}{int64(10), "2024-01-05", "2024-01-05 10:30:00", "2024-01-05 10:30:00.25"}, tbl.Row(0))
}

func TestStore_TriggerBodyWithCase(t *testing.T) {
	ctx := context.Background()
	s := openSQLiteStore(t)

	require.NoError(t, s.ExecuteScript(ctx, `
CREATE TABLE restaurants (restaurant_id INTEGER, rating REAL, tier TEXT);
CREATE TRIGGER restaurants_tier AFTER INSERT ON restaurants
BEGIN
  UPDATE restaurants SET tier = CASE WHEN new.rating >= 4 THEN 'top' ELSE 'std' END
   WHERE restaurant_id = new.restaurant_id;
END;
INSERT INTO restaurants (restaurant_id, rating) VALUES (10, 4.5);
INSERT INTO restaurants (restaurant_id, rating) VALUES (20, 3.1);`))

	tbl, _, err := s.QueryTable(ctx, "restaurants")
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []interface{}{int64(10), 4.5, "top"}, tbl.Row(0))
	assert.Equal(t, []interface{}{int64(20), 3.1, "std"}, tbl.Row(1))
}

func TestStore_ExecuteScriptStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	s := openSQLiteStore(t)

	script := `CREATE TABLE first (id INTEGER);
INSERT INTO missing_table VALUES (1);
CREATE TABLE third (id INTEGER);`

	err := s.ExecuteScript(ctx, script)
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrScriptExecution))
	assert.Contains(t, err.Error(), "statement 2 (line 2)")
	assert.Contains(t, err.Error(), "missing_table")

	ok, err := s.TableExists(ctx, "first")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.TableExists(ctx, "third")
	require.NoError(t, err)
	assert.False(t, ok, "statements after the failure must not run")
}

func TestStore_QueryTableMissing(t *testing.T) {
	ctx := context.Background()
	s := openSQLiteStore(t)
	require.NoError(t, s.ExecuteScript(ctx, "CREATE TABLE eateries (restaurant_id INTEGER);"))

	_, _, err := s.QueryTable(ctx, "restaurants")
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrMissingTable))
	assert.Contains(t, err.Error(), "eateries")
}

func TestStore_QueryTableRejectsInvalidName(t *testing.T) {
	s := openSQLiteStore(t)
	_, _, err := s.QueryTable(context.Background(), "restaurants; DROP TABLE x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrInvalidConfig))
}

func TestStore_QueryView(t *testing.T) {
	ctx := context.Background()
	s := openSQLiteStore(t)
	require.NoError(t, s.ExecuteScript(ctx, restaurantsScript+
		"CREATE VIEW top_rated AS SELECT restaurant_id FROM restaurants WHERE rating > 4;"))

	tbl, _, err := s.QueryTable(ctx, "top_rated")
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}

func TestStore_StoresAreIsolated(t *testing.T) {
	ctx := context.Background()
	a := openSQLiteStore(t)
	b := openSQLiteStore(t)
	require.NoError(t, a.ExecuteScript(ctx, restaurantsScript))

	ok, err := b.TableExists(ctx, "restaurants")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	s, err := Open(context.Background(), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestPreview_Truncates(t *testing.T) {
	long := "INSERT INTO t VALUES ('" + strings.Repeat("x", 400) + "')"
	p := preview(long)
	assert.Len(t, p, etl.MaxErrorPreviewLength+3)
	assert.True(t, strings.HasSuffix(p, "..."))
	assert.Equal(t, "SELECT 1", preview("SELECT\n   1"))
}
