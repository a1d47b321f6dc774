package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Normalize converts driver and decoder values to the scalar set tables hold:
// nil, string, int64, float64 and bool.
func Normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case nil, string, int64, float64, bool:
		return x
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if !floatText(x.String()) {
			return x.String()
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// KeyOf returns the join key for a cell. Numbers compare by value whatever
// their representation, so int64 1, float64 1.0 and "1" share a key.
// Integer text too wide for int64 keys as written. Null and empty cells have
// no key and never match.
func KeyOf(v interface{}) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return floatKey(x)
	case bool:
		return strconv.FormatBool(x), true
	case string:
		if x == "" {
			return "", false
		}
		if i, err := strconv.ParseInt(x, 10, 64); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		if !floatText(x) {
			return x, true
		}
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return floatKey(f)
		}
		return x, true
	default:
		return KeyOf(Normalize(v))
	}
}

func floatKey(f float64) (string, bool) {
	if math.IsNaN(f) {
		return "", false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return strconv.FormatInt(int64(f), 10), true
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// floatText reports whether s is written as a fraction or with an exponent.
// Only such text may be read as float64; wider integers would lose digits.
func floatText(s string) bool {
	return strings.ContainsAny(s, ".eE")
}

// FormatValue renders a cell for delimited text output. Null becomes the empty string.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return FormatValue(Normalize(v))
	}
}

// InferColumnTypes converts string columns in place: a column whose non-null
// cells all parse as integers becomes int64, one whose cells all parse as
// numbers becomes float64. Integers outside the int64 range keep the whole
// column as strings. Other columns are left as strings.
func InferColumnTypes(t *Table) {
	for c := range t.columns {
		kind := inferColumn(t.rows, c)
		if kind == kindString {
			continue
		}
		for _, row := range t.rows {
			s, ok := row[c].(string)
			if !ok {
				continue
			}
			if kind == kindInt {
				row[c], _ = strconv.ParseInt(s, 10, 64)
			} else {
				row[c], _ = strconv.ParseFloat(s, 64)
			}
		}
	}
}

type columnKind int

const (
	kindString columnKind = iota
	kindInt
	kindFloat
)

func inferColumn(rows [][]interface{}, c int) columnKind {
	kind := kindInt
	seen := false
	for _, row := range rows {
		switch v := row[c].(type) {
		case nil:
			continue
		case string:
			seen = true
			if kind == kindInt {
				if _, err := strconv.ParseInt(v, 10, 64); err == nil {
					continue
				}
				kind = kindFloat
			}
			if !floatText(v) {
				if _, err := strconv.ParseInt(v, 10, 64); err != nil {
					return kindString
				}
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return kindString
			}
		default:
			return kindString
		}
	}
	if !seen {
		return kindString
	}
	return kind
}
