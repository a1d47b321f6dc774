package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food_delivery_merge/database"
	"food_delivery_merge/etl"
)

func TestLoadConfig_AllFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `paths:
  orders_file: data/orders.csv
  users_file: data/users.json
  restaurants_file: data/restaurants.sql
  output_file: out/merged.csv
store:
  driver: postgres
  table: vendors
database:
  host: db.internal
  port: 5433
  user: etl
  password: secret
  dbname: scratch
  sslmode: require
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "data/orders.csv", cfg.Paths.OrdersFile)
	assert.Equal(t, "data/users.json", cfg.Paths.UsersFile)
	assert.Equal(t, "data/restaurants.sql", cfg.Paths.RestaurantsFile)
	assert.Equal(t, "out/merged.csv", cfg.Paths.OutputFile)
	assert.Equal(t, database.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "vendors", cfg.Store.Table)
	assert.Equal(t, "host=db.internal port=5433 user=etl password=secret dbname=scratch sslmode=require",
		cfg.Database.GetConnectionString())
	require.NoError(t, cfg.Validate())

	opts := cfg.StoreOptions()
	assert.Equal(t, database.DriverPostgres, opts.Driver)
	assert.Equal(t, cfg.Database.GetConnectionString(), opts.DSN)
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths:\n  output_file: report.csv\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "report.csv", cfg.Paths.OutputFile)
	assert.Equal(t, etl.DefaultOrdersFile, cfg.Paths.OrdersFile)
	assert.Equal(t, database.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, etl.DefaultRestaurantsTable, cfg.Store.Table)

	opts := cfg.StoreOptions()
	assert.Empty(t, opts.DSN)
}

func TestLoadConfig_NotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrInvalidConfig))
}

func TestApplyEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `# overrides
FDM_ORDERS_FILE=/data/orders.csv
FDM_STORE_DRIVER=postgres
FDM_DATABASE_URL="postgres://etl@localhost/scratch?sslmode=disable"
UNRELATED=1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := Default()
	require.NoError(t, cfg.ApplyEnvFile(path))
	assert.Equal(t, "/data/orders.csv", cfg.Paths.OrdersFile)
	assert.Equal(t, etl.DefaultUsersFile, cfg.Paths.UsersFile)
	assert.Equal(t, database.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://etl@localhost/scratch?sslmode=disable", cfg.Database.GetConnectionString())

	_, isSet := os.LookupEnv("FDM_ORDERS_FILE")
	assert.False(t, isSet, "env file must not leak into the process environment")
}

func TestApplyEnvFile_Missing(t *testing.T) {
	err := Default().ApplyEnvFile(filepath.Join(t.TempDir(), ".env"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrInvalidConfig))
}

func TestApplyEnv_IgnoresEmptyValues(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(map[string]string{EnvOutputFile: "", EnvUsersFile: "u.json"})
	assert.Equal(t, etl.DefaultOutputFile, cfg.Paths.OutputFile)
	assert.Equal(t, "u.json", cfg.Paths.UsersFile)
}

func TestProcessEnv(t *testing.T) {
	t.Setenv(EnvRestaurantsFile, "r.sql")
	env := ProcessEnv()
	assert.Equal(t, "r.sql", env[EnvRestaurantsFile])
	for k := range env {
		assert.Contains(t, k, "FDM_")
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cfg := Default()
	cfg.Paths.OutputFile = ""
	cfg.Store.Driver = "mysql"
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "paths.output_file")
	assert.Contains(t, err.Error(), "mysql")
}

func TestValidate_PostgresNeedsUserOrURL(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = database.DriverPostgres
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "database.url or database.user")

	cfg.Database.User = "etl"
	require.NoError(t, cfg.Validate())

	cfg.Database.User = ""
	cfg.Database.URL = "postgres://etl@localhost/scratch"
	require.NoError(t, cfg.Validate())
}

func TestGetConnectionString_QuotesValues(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "etl",
		Password: `p@ss word's \x`,
		DBName:   "scratch",
	}
	assert.Equal(t, `host=localhost port=5432 user=etl password='p@ss word\'s \\x' dbname=scratch`,
		db.GetConnectionString())
}

func TestGetDefaultConfigPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(GetDefaultConfigPath()))
}
