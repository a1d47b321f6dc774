package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"food_delivery_merge/etl"
	"food_delivery_merge/table"
)

// Orders loads the order file and checks it carries both join keys.
func (l *Loader) Orders(path string) (*table.Table, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	if err := table.RequireColumns(t, "orders", etl.UserKey, etl.RestaurantKey); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.logger.Verbose("orders: columns %s", strings.Join(t.Columns(), ", "))
	return t, nil
}

// ReadCSV reads a comma-delimited file whose first row names the columns.
// Empty cells are null and column types are inferred.
func ReadCSV(path string) (*table.Table, error) {
	if err := checkInput(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: empty file, header row required", etl.ErrParse, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", etl.ErrParse, path, err)
	}

	t, err := table.New(headerColumns(header)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", etl.ErrParse, path, err)
	}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", etl.ErrParse, path, err)
		}
		row := make([]interface{}, len(rec))
		for i, v := range rec {
			if v != "" {
				row[i] = v
			}
		}
		if err := t.Append(row); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", etl.ErrParse, path, err)
		}
	}

	table.InferColumnTypes(t)
	return t, nil
}

// headerColumns names blank header cells "Unnamed: <i>" and renames repeated
// names to name.1, name.2, ...
func headerColumns(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	cols := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		used[name] = true
		cols[i] = name
	}
	return cols
}
