package loader

import (
	"context"
	"fmt"

	"food_delivery_merge/database"
	"food_delivery_merge/etl"
	"food_delivery_merge/table"
)

// Restaurants runs the relational script against a fresh ephemeral store and
// extracts the configured table. The store is discarded before returning,
// whether or not the load succeeded.
func (l *Loader) Restaurants(ctx context.Context, path string) (t *table.Table, err error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}

	store, err := database.Open(ctx, l.store)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			if err == nil {
				err = fmt.Errorf("%w: release store: %w", etl.ErrStoreUnavailable, cerr)
			} else {
				l.logger.Error("release store: %v", cerr)
			}
		}
	}()
	l.logger.Verbose("restaurants: executing %s on %s store", path, store.Driver())

	if err := store.ExecuteScript(ctx, string(data)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	t, cols, err := store.QueryTable(ctx, l.tableName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, c := range cols {
		l.logger.Verbose("restaurants: column %s %s", c.Name, c.Type)
	}

	if err := table.RequireColumns(t, l.tableName, etl.RestaurantKey); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
