package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"food_delivery_merge/config"
	"food_delivery_merge/etl"
	"food_delivery_merge/logging"
	"food_delivery_merge/pipeline"
)

type rootFlagValues struct {
	configPath  string
	envFile     string
	orders      string
	users       string
	restaurants string
	output      string
	store       string
	databaseURL string
	table       string
	verbose     bool
}

var (
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("34")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// NewRootCommand builds the command tree. Output is written to the command's
// configured writers, so tests can capture it.
func NewRootCommand() *cobra.Command {
	var flags rootFlagValues

	cmd := &cobra.Command{
		Use:   "food-delivery-merge",
		Short: "Merge orders, users and restaurants into one CSV dataset",
		Long: `food-delivery-merge reads three inputs:

  orders.csv        delimited orders with user_id and restaurant_id
  users.json        JSON array of users, or one JSON object per line
  restaurants.sql   SQL script that creates a "restaurants" table

It left-joins orders with users on user_id and with restaurants on
restaurant_id, keeping every order, and writes
final_food_delivery_dataset.csv.

Configuration precedence (lowest to highest):
  defaults < config.yaml < --env-file < FDM_* environment < flags

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error
  3  - Panic
  10 - Invalid configuration
  11 - Missing input file
  12 - Parse error
  13 - SQL script failed
  14 - Table missing after the script
  15 - Missing key column or colliding column names
  16 - Output could not be written
  17 - Relational store unavailable`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, &flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "",
		"YAML config file (default ./config.yaml when present)")
	f.StringVar(&flags.envFile, "env-file", "",
		"Read FDM_* overrides from a .env file")
	f.StringVar(&flags.orders, "orders", "", "Orders CSV (default orders.csv)")
	f.StringVar(&flags.users, "users", "", "Users JSON or NDJSON (default users.json)")
	f.StringVar(&flags.restaurants, "restaurants", "", "Restaurants SQL script (default restaurants.sql)")
	f.StringVarP(&flags.output, "output", "o", "", "Output CSV (default final_food_delivery_dataset.csv)")
	f.StringVar(&flags.store, "store", "", "Relational store for the script: sqlite3|postgres")
	f.StringVar(&flags.databaseURL, "database-url", "",
		"PostgreSQL connection string for --store postgres\n"+
			"Alternative: FDM_DATABASE_URL")
	f.StringVar(&flags.table, "table", "", "Table to extract from the script (default restaurants)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")

	cmd.AddCommand(newVersionCommand())
	return cmd
}

// Execute runs the root command against the process arguments.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()
	err := cmd.ExecuteContext(ctx)
	if err != nil && !isRunError(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return usageError{err}
	}
	return err
}

func runMerge(cmd *cobra.Command, flags *rootFlagValues) error {
	logger := newLogger(cmd.ErrOrStderr(), flags.verbose)

	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		logger.Error("%v", err)
		return runError{err}
	}

	report, err := pipeline.New(cfg, logger).Run(cmd.Context())
	if err != nil {
		logger.Error("%v", err)
		return runError{err}
	}

	logger.Success("merged %d rows in %s", report.Rows, report.Elapsed.Round(time.Millisecond))
	printSummary(cmd.OutOrStdout(), report, useColor(cmd.OutOrStdout()))
	return nil
}

// resolveConfig layers defaults, the config file, the env file, the process
// environment and finally explicit flags.
func resolveConfig(cmd *cobra.Command, flags *rootFlagValues) (*config.Config, error) {
	cfg := config.Default()

	switch {
	case flags.configPath != "":
		loaded, err := config.LoadConfig(flags.configPath)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w: %w", etl.ErrInvalidConfig, err)
			}
			return nil, err
		}
		cfg = loaded
	default:
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err == nil {
			cfg = loaded
		} else if !errors.Is(err, config.ErrConfigNotFound) {
			return nil, err
		}
	}

	if flags.envFile != "" {
		if err := cfg.ApplyEnvFile(flags.envFile); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(config.ProcessEnv())

	set := func(name string, dst *string, value string) {
		if cmd.Flags().Changed(name) {
			*dst = value
		}
	}
	set("orders", &cfg.Paths.OrdersFile, flags.orders)
	set("users", &cfg.Paths.UsersFile, flags.users)
	set("restaurants", &cfg.Paths.RestaurantsFile, flags.restaurants)
	set("output", &cfg.Paths.OutputFile, flags.output)
	set("store", &cfg.Store.Driver, flags.store)
	set("database-url", &cfg.Database.URL, flags.databaseURL)
	set("table", &cfg.Store.Table, flags.table)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *logging.ConsoleLogger {
	if f, ok := w.(*os.File); ok && f == os.Stderr {
		return logging.NewConsoleLogger(verbose)
	}
	return logging.NewWriterLogger(w, verbose)
}

func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && logging.ColorEnabled(f)
}

func printSummary(w io.Writer, r *etl.Report, color bool) {
	lines := fmt.Sprintf("%s %s\n%s %s\n%s %d orders, %d users, %d restaurants",
		label("Saved:", color), r.OutputPath,
		label("Shape:", color), r.Shape(),
		label("Inputs:", color), r.Orders, r.Users, r.Restaurants)
	if r.UnmatchedUsers > 0 || r.UnmatchedRestaurants > 0 {
		lines += fmt.Sprintf("\n%s %d without user, %d without restaurant",
			label("Unmatched:", color), r.UnmatchedUsers, r.UnmatchedRestaurants)
	}
	if color {
		lines = summaryStyle.Render(lines)
	}
	fmt.Fprintln(w, lines)
}

func label(s string, color bool) string {
	if color {
		return labelStyle.Render(s)
	}
	return s
}

// runError marks failures of the merge itself, as opposed to flag parsing.
type runError struct{ err error }

func (e runError) Error() string { return e.err.Error() }
func (e runError) Unwrap() error { return e.err }

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func isRunError(err error) bool {
	var re runError
	return errors.As(err, &re)
}

// ExitCode maps an Execute error to the process exit code.
func ExitCode(err error) int {
	var ue usageError
	if errors.As(err, &ue) {
		return etl.ExitUsageError
	}
	return etl.ExitCodeForError(err)
}
