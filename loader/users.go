package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"food_delivery_merge/etl"
	"food_delivery_merge/table"
)

// maxRecordLine bounds a single newline-delimited record.
const maxRecordLine = 16 << 20

// Users loads the user file. The file is read as one JSON array of objects
// and, when that fails, as newline-delimited JSON objects.
func (l *Loader) Users(path string) (*table.Table, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}

	recs, arrErr := decodeArray(data)
	if arrErr != nil {
		var lineErr error
		recs, lineErr = decodeLines(data)
		if lineErr != nil {
			return nil, fmt.Errorf("%w: %s: not a JSON array (%v) nor newline-delimited JSON (%v)",
				etl.ErrParse, path, arrErr, lineErr)
		}
		l.logger.Verbose("users: read as newline-delimited JSON (%v)", arrErr)
	}

	t, err := recs.table()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", etl.ErrParse, path, err)
	}
	if err := table.RequireColumns(t, "users", etl.UserKey); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// recordSet collects JSON objects and the union of their keys in first-seen order.
type recordSet struct {
	columns []string
	seen    map[string]bool
	rows    []map[string]interface{}
}

func (rs *recordSet) add(keys []string, values map[string]interface{}) {
	if rs.seen == nil {
		rs.seen = map[string]bool{}
	}
	for _, k := range keys {
		if !rs.seen[k] {
			rs.seen[k] = true
			rs.columns = append(rs.columns, k)
		}
	}
	rs.rows = append(rs.rows, values)
}

func (rs *recordSet) table() (*table.Table, error) {
	t, err := table.New(rs.columns...)
	if err != nil {
		return nil, err
	}
	for _, rec := range rs.rows {
		row := make([]interface{}, len(rs.columns))
		for i, c := range rs.columns {
			row[i] = rec[c]
		}
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeArray(data []byte) (*recordSet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("expected '[' at start, found %v", tok)
	}

	rs := &recordSet{}
	for dec.More() {
		keys, values, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", len(rs.rows), err)
		}
		rs.add(keys, values)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after array")
	}
	return rs, nil
}

func decodeLines(data []byte) (*recordSet, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordLine)

	rs := &recordSet{}
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		keys, values, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("line %d: unexpected data after object", lineNum)
		}
		rs.add(keys, values)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(rs.rows) == 0 {
		return nil, errors.New("no records")
	}
	return rs, nil
}

// decodeObject reads one JSON object, keeping key order. Scalars become table
// values; nested objects and arrays are kept as compact JSON text.
func decodeObject(dec *json.Decoder) ([]string, map[string]interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, found %v", tok)
	}

	var keys []string
	values := map[string]interface{}{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, found %v", tok)
		}
		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("value of %q: %w", key, err)
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key], err = jsonValue(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("value of %q: %w", key, err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

func jsonValue(v interface{}) (interface{}, error) {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return table.Normalize(v), nil
	}
}
