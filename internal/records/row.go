package records

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Row is a remote row as decoded from JSON: column name to value.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the column as a trimmed string. Non-string values and
// blank strings report false.
func (r Row) String(key string) (string, bool) {
	s, ok := r[key].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func (r Row) stringOr(key, def string) string {
	if s, ok := r.String(key); ok {
		return s
	}
	return def
}

// Int returns the column as an integer, accepting numbers and numeric
// strings.
func (r Row) Int(key string) (int, bool) {
	switch v := r[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Bool returns the column if it holds a boolean.
func (r Row) Bool(key string) (bool, bool) {
	b, ok := r[key].(bool)
	return b, ok
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// Time returns the column as a timestamp. Strings are tried against the
// layouts the store emits; anything else reports false.
func (r Row) Time(key string) (time.Time, bool) {
	switch v := r[key].(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
