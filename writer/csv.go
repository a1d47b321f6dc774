package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"food_delivery_merge/etl"
	"food_delivery_merge/table"
)

// Result reports what WriteCSV wrote.
type Result struct {
	Path    string
	Rows    int
	Columns int
}

// WriteCSV writes t as comma-delimited text with a header row, replacing any
// file at path. The data goes to a temporary file in the same directory that
// is renamed into place, so a failed write leaves no partial output.
func WriteCSV(path string, t *table.Table) (res Result, err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return res, fmt.Errorf("%w: %s: %w", etl.ErrWrite, path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Columns()); err != nil {
		return res, fmt.Errorf("%w: %s: %w", etl.ErrWrite, path, err)
	}
	record := make([]string, t.Width())
	for i := 0; i < t.Len(); i++ {
		for c, v := range t.Row(i) {
			record[c] = table.FormatValue(v)
		}
		if err := w.Write(record); err != nil {
			return res, fmt.Errorf("%w: %s: %w", etl.ErrWrite, path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return res, fmt.Errorf("%w: %s: %w", etl.ErrWrite, path, err)
	}
	if err := tmp.Sync(); err != nil {
		return res, fmt.Errorf("%w: %s: %w", etl.ErrWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		return res, fmt.Errorf("%w: %s: %w", etl.ErrWrite, path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return res, fmt.Errorf("%w: %s: %w", etl.ErrWrite, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return res, fmt.Errorf("%w: %s: %w", etl.ErrWrite, path, err)
	}

	return Result{Path: path, Rows: t.Len(), Columns: t.Width()}, nil
}
