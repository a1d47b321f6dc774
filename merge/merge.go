package merge

import (
	"fmt"

	"food_delivery_merge/etl"
	"food_delivery_merge/table"
)

// Result carries the statistics of both joins of Merge.
type Result struct {
	Users       Stats
	Restaurants Stats
}

// Merge joins orders with users on user_id, then the result with restaurants
// on restaurant_id. Both joins are left-outer, so no order row is dropped.
func Merge(orders, users, restaurants *table.Table) (*table.Table, Result, error) {
	var res Result

	withUsers, stats, err := LeftJoin(orders, users, etl.UserKey)
	if err != nil {
		return nil, res, fmt.Errorf("orders with users: %w", err)
	}
	res.Users = stats

	final, stats, err := LeftJoin(withUsers, restaurants, etl.RestaurantKey)
	if err != nil {
		return nil, res, fmt.Errorf("orders with restaurants: %w", err)
	}
	res.Restaurants = stats

	return final, res, nil
}
