package etl

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess      = 0  // Merge completed and output written
	ExitGeneralError = 1  // Unknown or unclassified error
	ExitUsageError   = 2  // CLI usage error (invalid arguments or flags)
	ExitPanic        = 3  // Internal panic
	ExitConfigError  = 10 // Invalid configuration
	ExitMissingInput = 11 // Required input file not found
	ExitParseError   = 12 // Malformed CSV or JSON input
	ExitScriptError  = 13 // Relational script failed
	ExitMissingTable = 14 // Expected table absent after the script
	ExitSchemaError  = 15 // Missing key column or colliding column names
	ExitWriteError   = 16 // Output could not be written
	ExitStoreError   = 17 // Relational store could not be opened
)

// Default input and output file names, resolved against the working directory.
const (
	DefaultOrdersFile      = "orders.csv"
	DefaultUsersFile       = "users.json"
	DefaultRestaurantsFile = "restaurants.sql"
	DefaultOutputFile      = "final_food_delivery_dataset.csv"
)

// Join keys and the table extracted from the relational script.
const (
	UserKey                 = "user_id"
	RestaurantKey           = "restaurant_id"
	DefaultRestaurantsTable = "restaurants"
)

// MaxErrorPreviewLength caps how much of a failing SQL statement is quoted in errors.
const MaxErrorPreviewLength = 200
