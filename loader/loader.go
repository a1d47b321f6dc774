package loader

import (
	"fmt"
	"os"

	"food_delivery_merge/database"
	"food_delivery_merge/etl"
)

// Loader reads the three merge inputs into row-oriented tables.
type Loader struct {
	logger    etl.Logger
	store     database.Options
	tableName string
}

// New creates a Loader. store selects the ephemeral relational store used for
// the restaurant script and tableName the table extracted from it (default "restaurants").
func New(logger etl.Logger, store database.Options, tableName string) *Loader {
	if tableName == "" {
		tableName = etl.DefaultRestaurantsTable
	}
	return &Loader{logger: logger, store: store, tableName: tableName}
}

// checkInput fails with etl.ErrMissingInputFile unless path is an existing regular file.
func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", etl.ErrMissingInputFile, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", etl.ErrMissingInputFile, path)
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if err := checkInput(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
