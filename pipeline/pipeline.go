package pipeline

import (
	"context"
	"fmt"
	"time"

	"food_delivery_merge/config"
	"food_delivery_merge/etl"
	"food_delivery_merge/loader"
	"food_delivery_merge/merge"
	"food_delivery_merge/writer"
)

// Pipeline loads orders, users and restaurants, joins them and writes the
// flattened result. Stages run one after another; the first failure ends the
// run and no output is written.
type Pipeline struct {
	paths  config.PathsConfig
	loader *loader.Loader
	logger etl.Logger
}

// New creates a Pipeline from a validated configuration.
func New(cfg *config.Config, logger etl.Logger) *Pipeline {
	return &Pipeline{
		paths:  cfg.Paths,
		loader: loader.New(logger, cfg.StoreOptions(), cfg.Store.Table),
		logger: logger,
	}
}

// Run executes the merge and returns its report.
func (p *Pipeline) Run(ctx context.Context) (*etl.Report, error) {
	start := time.Now()
	p.logger.Info("Starting data merge")

	orders, err := p.loader.Orders(p.paths.OrdersFile)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	p.logger.Info("Loaded %d orders", orders.Len())

	users, err := p.loader.Users(p.paths.UsersFile)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	p.logger.Info("Loaded %d users", users.Len())

	restaurants, err := p.loader.Restaurants(ctx, p.paths.RestaurantsFile)
	if err != nil {
		return nil, fmt.Errorf("load restaurants: %w", err)
	}
	p.logger.Info("Loaded %d restaurants", restaurants.Len())

	p.logger.Info("Merging data")
	final, res, err := merge.Merge(orders, users, restaurants)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if res.Users.Unmatched > 0 {
		p.logger.Verbose("%d orders have no matching user", res.Users.Unmatched)
	}
	if res.Restaurants.Unmatched > 0 {
		p.logger.Verbose("%d joined rows have no matching restaurant", res.Restaurants.Unmatched)
	}

	out, err := writer.WriteCSV(p.paths.OutputFile, final)
	if err != nil {
		return nil, fmt.Errorf("save output: %w", err)
	}

	return &etl.Report{
		Orders:               orders.Len(),
		Users:                users.Len(),
		Restaurants:          restaurants.Len(),
		Rows:                 out.Rows,
		Columns:              out.Columns,
		ColumnList:           final.Columns(),
		OutputPath:           out.Path,
		UnmatchedUsers:       res.Users.Unmatched,
		UnmatchedRestaurants: res.Restaurants.Unmatched,
		FanOutRows:           res.Users.FanOut + res.Restaurants.FanOut,
		Elapsed:              time.Since(start),
	}, nil
}
