package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"food_delivery_merge/database"
	"food_delivery_merge/etl"
)

// ErrConfigNotFound is returned when the config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// Environment variables overriding the config file.
const (
	EnvOrdersFile      = "FDM_ORDERS_FILE"
	EnvUsersFile       = "FDM_USERS_FILE"
	EnvRestaurantsFile = "FDM_RESTAURANTS_FILE"
	EnvOutputFile      = "FDM_OUTPUT_FILE"
	EnvStoreDriver     = "FDM_STORE_DRIVER"
	EnvStoreTable      = "FDM_STORE_TABLE"
	EnvDatabaseURL     = "FDM_DATABASE_URL"
)

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type PathsConfig struct {
	OrdersFile      string `yaml:"orders_file"`
	UsersFile       string `yaml:"users_file"`
	RestaurantsFile string `yaml:"restaurants_file"`
	OutputFile      string `yaml:"output_file"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Table  string `yaml:"table"`
}

type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
}

// Default returns the configuration of a plain run in the working directory.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			OrdersFile:      etl.DefaultOrdersFile,
			UsersFile:       etl.DefaultUsersFile,
			RestaurantsFile: etl.DefaultRestaurantsFile,
			OutputFile:      etl.DefaultOutputFile,
		},
		Store: StoreConfig{
			Driver: database.DriverSQLite,
			Table:  etl.DefaultRestaurantsTable,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
	}
}

// GetConnectionString returns URL when set, otherwise a key/value connection
// string built from the non-empty fields. Values that need it are quoted.
func (db *DatabaseConfig) GetConnectionString() string {
	if db.URL != "" {
		return db.URL
	}
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+quoteConnValue(value))
		}
	}
	add("host", db.Host)
	if db.Port != 0 {
		add("port", fmt.Sprint(db.Port))
	}
	add("user", db.User)
	add("password", db.Password)
	add("dbname", db.DBName)
	add("sslmode", db.SSLMode)
	return strings.Join(parts, " ")
}

// quoteConnValue single-quotes a key/value connection string value containing
// whitespace, quotes or backslashes, escaping the last two with a backslash.
func quoteConnValue(v string) string {
	if !strings.ContainsAny(v, " \t\n\r'\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", etl.ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

func GetDefaultConfigPath() string {
	dir, _ := os.Getwd()
	return filepath.Join(dir, "config.yaml")
}

// ApplyEnvFile applies overrides from a .env file without touching the process environment.
func (c *Config) ApplyEnvFile(path string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("%w: env file %s: %w", etl.ErrInvalidConfig, path, err)
	}
	c.ApplyEnv(env)
	return nil
}

// ApplyEnv applies the FDM_* overrides present in env.
func (c *Config) ApplyEnv(env map[string]string) {
	set := func(key string, dst *string) {
		if v, ok := env[key]; ok && v != "" {
			*dst = v
		}
	}
	set(EnvOrdersFile, &c.Paths.OrdersFile)
	set(EnvUsersFile, &c.Paths.UsersFile)
	set(EnvRestaurantsFile, &c.Paths.RestaurantsFile)
	set(EnvOutputFile, &c.Paths.OutputFile)
	set(EnvStoreDriver, &c.Store.Driver)
	set(EnvStoreTable, &c.Store.Table)
	set(EnvDatabaseURL, &c.Database.URL)
}

// ProcessEnv returns the FDM_* variables of the process environment.
func ProcessEnv() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "FDM_") {
			env[k] = v
		}
	}
	return env
}

// Validate checks the configuration is complete.
func (c *Config) Validate() error {
	var problems []string
	required := []struct{ name, value string }{
		{"paths.orders_file", c.Paths.OrdersFile},
		{"paths.users_file", c.Paths.UsersFile},
		{"paths.restaurants_file", c.Paths.RestaurantsFile},
		{"paths.output_file", c.Paths.OutputFile},
		{"store.table", c.Store.Table},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems = append(problems, r.name+" is empty")
		}
	}
	switch c.Store.Driver {
	case database.DriverSQLite:
	case database.DriverPostgres:
		if c.Database.URL == "" && strings.TrimSpace(c.Database.User) == "" {
			problems = append(problems, "database.url or database.user is required for the postgres store")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q is not one of %s, %s",
			c.Store.Driver, database.DriverSQLite, database.DriverPostgres))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", etl.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// StoreOptions returns the options for the ephemeral relational store.
func (c *Config) StoreOptions() database.Options {
	opts := database.Options{Driver: c.Store.Driver}
	if c.Store.Driver == database.DriverPostgres {
		opts.DSN = c.Database.GetConnectionString()
	}
	return opts
}
