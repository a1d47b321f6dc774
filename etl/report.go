package etl

import (
	"fmt"
	"time"
)

// Report is the outcome of a successful merge run.
type Report struct {
	Orders      int
	Users       int
	Restaurants int

	Rows       int
	Columns    int
	ColumnList []string
	OutputPath string

	// UnmatchedUsers counts order rows without a user match.
	// UnmatchedRestaurants counts rows of the order/user join without a
	// restaurant match; user fan-out can push it above the order count.
	UnmatchedUsers       int
	UnmatchedRestaurants int
	// FanOutRows counts rows added because a key matched several right-side rows.
	FanOutRows int

	Elapsed time.Duration
}

// Shape returns the output dimensions formatted as "(rows, columns)".
func (r *Report) Shape() string {
	return fmt.Sprintf("(%d, %d)", r.Rows, r.Columns)
}
