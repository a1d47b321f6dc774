package merge

import (
	"fmt"

	"food_delivery_merge/table"
)

// Suffixes appended to non-key columns present on both sides of a join.
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// Stats describes how the left rows of a join found their matches.
type Stats struct {
	LeftRows  int
	Matched   int
	Unmatched int
	// FanOut counts rows beyond one per left row, produced by repeated right keys.
	FanOut int
}

// LeftJoin keeps every left row in order. A left row matching n right rows
// appears n times, in right-table order; an unmatched row appears once with
// null right columns. The key column is taken from the left side only.
func LeftJoin(left, right *table.Table, key string) (*table.Table, Stats, error) {
	var stats Stats
	if err := table.RequireColumns(left, "left side", key); err != nil {
		return nil, stats, err
	}
	if err := table.RequireColumns(right, "right side", key); err != nil {
		return nil, stats, err
	}

	out, rightCols, err := joinedColumns(left, right, key)
	if err != nil {
		return nil, stats, fmt.Errorf("join on %s: %w", key, err)
	}

	rightKey, _ := right.Index(key)
	index := make(map[string][]int, right.Len())
	for i := 0; i < right.Len(); i++ {
		if k, ok := table.KeyOf(right.Row(i)[rightKey]); ok {
			index[k] = append(index[k], i)
		}
	}

	leftKey, _ := left.Index(key)
	stats.LeftRows = left.Len()
	for i := 0; i < left.Len(); i++ {
		lrow := left.Row(i)
		var matches []int
		if k, ok := table.KeyOf(lrow[leftKey]); ok {
			matches = index[k]
		}

		if len(matches) == 0 {
			stats.Unmatched++
			row := make([]interface{}, out.Width())
			copy(row, lrow)
			if err := out.Append(row); err != nil {
				return nil, stats, err
			}
			continue
		}

		stats.Matched++
		stats.FanOut += len(matches) - 1
		for _, m := range matches {
			rrow := right.Row(m)
			row := make([]interface{}, 0, out.Width())
			row = append(row, lrow...)
			for _, c := range rightCols {
				row = append(row, rrow[c])
			}
			if err := out.Append(row); err != nil {
				return nil, stats, err
			}
		}
	}
	return out, stats, nil
}

// joinedColumns builds the output table: left columns, then right columns
// other than the key. Names found on both sides get LeftSuffix and RightSuffix.
func joinedColumns(left, right *table.Table, key string) (*table.Table, []int, error) {
	leftNames := left.Columns()
	rightNames := right.Columns()

	var names []string
	for _, c := range leftNames {
		if c != key && right.Has(c) {
			c += LeftSuffix
		}
		names = append(names, c)
	}

	var rightCols []int
	for i, c := range rightNames {
		if c == key {
			continue
		}
		if left.Has(c) {
			c += RightSuffix
		}
		names = append(names, c)
		rightCols = append(rightCols, i)
	}

	t, err := table.New(names...)
	if err != nil {
		return nil, nil, err
	}
	return t, rightCols, nil
}
