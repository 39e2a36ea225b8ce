package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vietddude/localguide/internal/infra/backend"
)

// Drivers disagree on value types: JSON gives float64 and []any, SQLite
// gives int64 for booleans, Postgres may give []string. These helpers read
// a row field under any of its accepted names.

func lookup(row backend.Row, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := backend.Lookup(row, k); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func str(row backend.Row, keys ...string) string {
	v, ok := lookup(row, keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func boolean(row backend.Row, keys ...string) (value, set bool) {
	v, ok := lookup(row, keys...)
	if !ok {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case int64:
		return t != 0, true
	case int:
		return t != 0, true
	case float64:
		return t != 0, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, false
		}
		return b, true
	}
	return false, false
}

func number(row backend.Row, keys ...string) (float64, bool) {
	v, ok := lookup(row, keys...)
	if !ok {
		return 0, false
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int64:
		f = float64(t)
	case int:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numberPtr(row backend.Row, keys ...string) *float64 {
	f, ok := number(row, keys...)
	if !ok {
		return nil
	}
	return &f
}

func intPtr(row backend.Row, keys ...string) *int {
	f, ok := number(row, keys...)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}

// list reads an array field. Empty and non-string items are dropped.
func list(row backend.Row, keys ...string) []string {
	v, ok := lookup(row, keys...)
	if !ok {
		return nil
	}
	var raw []any
	switch t := v.(type) {
	case []string:
		raw = make([]any, len(t))
		for i, s := range t {
			raw[i] = s
		}
	case []any:
		raw = t
	case string:
		if s := strings.TrimSpace(t); s != "" {
			raw = []any{s}
		}
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
