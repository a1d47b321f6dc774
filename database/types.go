package database

// Supported store drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Options selects and configures the ephemeral relational store.
type Options struct {
	// Driver is DriverSQLite (default) or DriverPostgres.
	Driver string
	// DSN is the connection string, required for DriverPostgres.
	DSN string
}

// Column describes a column of a queried table as reported by the driver.
type Column struct {
	Name string
	Type string
}
