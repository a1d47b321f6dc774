package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"food_delivery_merge/etl"
	"food_delivery_merge/parser"
	"food_delivery_merge/table"
)

var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a transient relational database scoped to a single load.
// All statements run on one pinned connection so they share the same
// in-memory database (sqlite3) or search path (postgres).
type Store struct {
	driver   string
	schema   string
	db       *sql.DB
	conn     *sql.Conn
	declared []string
	closed   bool
}

// Open creates an empty store. The caller must Close it on every path.
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		return openSQLite(ctx)
	case DriverPostgres:
		return openPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("%w: unsupported store driver %q", etl.ErrInvalidConfig, opts.Driver)
	}
}

func openSQLite(ctx context.Context) (*Store, error) {
	db, err := sql.Open(DriverSQLite, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", etl.ErrStoreUnavailable, err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", etl.ErrStoreUnavailable, err)
	}
	return &Store{driver: DriverSQLite, db: db, conn: conn}, nil
}

func openPostgres(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres store requires a connection string", etl.ErrInvalidConfig)
	}
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", etl.ErrStoreUnavailable, err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", etl.ErrStoreUnavailable, err)
	}

	s := &Store{
		driver: DriverPostgres,
		schema: "etl_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		db:     db,
		conn:   conn,
	}
	if _, err := conn.ExecContext(ctx, "CREATE SCHEMA "+pq.QuoteIdentifier(s.schema)); err != nil {
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %w", etl.ErrStoreUnavailable, err)
	}
	if _, err := conn.ExecContext(ctx, "SET search_path TO "+pq.QuoteIdentifier(s.schema)); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: set search_path: %w", etl.ErrStoreUnavailable, err)
	}
	return s, nil
}

// Driver returns the driver the store runs on.
func (s *Store) Driver() string { return s.driver }

// Schema returns the throw-away schema of a postgres store, empty for sqlite3.
func (s *Store) Schema() string { return s.schema }

// ExecuteScript runs the script's statements in order and stops at the first failure.
func (s *Store) ExecuteScript(ctx context.Context, script string) error {
	s.declared = parser.DeclaredTables(script)
	for i, st := range parser.SplitStatements(script) {
		if _, err := s.conn.ExecContext(ctx, st.SQL); err != nil {
			return fmt.Errorf("%w: statement %d (line %d) %q: %w",
				etl.ErrScriptExecution, i+1, st.Line, preview(st.SQL), err)
		}
	}
	return nil
}

// TableExists reports whether the store holds a table or view with the given name.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	var (
		query string
		count int
	)
	switch s.driver {
	case DriverPostgres:
		query = `SELECT COUNT(*) FROM information_schema.tables
WHERE table_schema = current_schema() AND table_name = $1`
	default:
		query = `SELECT COUNT(*) FROM (
  SELECT name, type FROM sqlite_master
  UNION ALL
  SELECT name, type FROM sqlite_temp_master
) WHERE type IN ('table', 'view') AND name = ? COLLATE NOCASE`
	}
	if err := s.conn.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		return false, fmt.Errorf("look up table %s: %w", name, err)
	}
	return count > 0, nil
}

// QueryTable materializes SELECT * FROM name as a row-oriented table.
// It fails with etl.ErrMissingTable when the script did not create the table.
func (s *Store) QueryTable(ctx context.Context, name string) (*table.Table, []Column, error) {
	if !reIdentifier.MatchString(name) {
		return nil, nil, fmt.Errorf("%w: invalid table name %q", etl.ErrInvalidConfig, name)
	}
	ok, err := s.TableExists(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		declared := "none"
		if len(s.declared) > 0 {
			declared = strings.Join(s.declared, ", ")
		}
		return nil, nil, fmt.Errorf("%w: %s (script declares: %s)", etl.ErrMissingTable, name, declared)
	}

	rows, err := s.conn.QueryContext(ctx, "SELECT * FROM "+name)
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, fmt.Errorf("columns of %s: %w", name, err)
	}
	cols := make([]Column, len(types))
	names := make([]string, len(types))
	for i, ct := range types {
		cols[i] = Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
		names[i] = ct.Name()
	}

	t, err := table.New(names...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	for rows.Next() {
		values := make([]interface{}, len(names))
		ptrs := make([]interface{}, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan %s: %w", name, err)
		}
		for i, v := range values {
			values[i] = cellValue(v, cols[i].Type)
		}
		if err := t.Append(values); err != nil {
			return nil, nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	return t, cols, nil
}

// Close discards the store. A postgres store drops its schema first.
// Close is safe to call more than once.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.driver == DriverPostgres && s.schema != "" {
		if _, err := s.conn.ExecContext(context.Background(),
			"DROP SCHEMA IF EXISTS "+pq.QuoteIdentifier(s.schema)+" CASCADE"); err != nil {
			errs = append(errs, fmt.Errorf("drop schema %s: %w", s.schema, err))
		}
	}
	if err := s.conn.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// cellValue normalizes a scanned value. Drivers hand DATE and TIMESTAMP
// columns back as time.Time; those are rendered the way the column stores them.
func cellValue(v interface{}, dbType string) interface{} {
	ts, ok := v.(time.Time)
	if !ok {
		return table.Normalize(v)
	}
	_, offset := ts.Zone()
	switch strings.ToUpper(dbType) {
	case "DATE":
		if ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0 && ts.Nanosecond() == 0 {
			return ts.Format(time.DateOnly)
		}
	case "DATETIME", "TIMESTAMP":
		if offset == 0 {
			return ts.Format("2006-01-02 15:04:05.999999999")
		}
	}
	return ts.Format(time.RFC3339Nano)
}

func preview(stmt string) string {
	stmt = strings.Join(strings.Fields(stmt), " ")
	if len(stmt) > etl.MaxErrorPreviewLength {
		return stmt[:etl.MaxErrorPreviewLength] + "..."
	}
	return stmt
}
