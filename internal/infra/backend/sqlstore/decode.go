package sqlstore

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/vietddude/localguide/internal/infra/backend"
)

// decodeRow converts driver values into the JSON-like shapes the other
// drivers return and folds aliased embed columns into nested maps.
func (s *Store) decodeRow(raw map[string]any, embeds []embedPlan) backend.Row {
	row := make(backend.Row, len(raw))
	for k, v := range raw {
		row[k] = s.decodeValue(k, v)
	}

	for _, e := range embeds {
		nested := make(map[string]any, len(e.columns))
		present := false
		for _, col := range e.columns {
			key := embedColumn(e.name, col)
			v := row[key]
			delete(row, key)
			if v != nil {
				present = true
			}
			nested[col] = v
		}
		if present {
			row[e.name] = nested
		} else {
			row[e.name] = nil
		}
	}
	return row
}

func (s *Store) decodeValue(column string, v any) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	field := column
	if i := strings.LastIndex(column, "__"); i >= 0 {
		field = column[i+2:]
	}

	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case string:
		if s.arrays[field] {
			return decodeArray(t)
		}
		return t
	}
	return v
}

// decodeArray accepts a Postgres array literal or a JSON array.
func decodeArray(s string) any {
	s = strings.TrimSpace(s)
	var items []string
	switch {
	case s == "":
		return []any{}
	case strings.HasPrefix(s, "{"):
		var arr pq.StringArray
		if err := arr.Scan(s); err != nil {
			return s
		}
		items = arr
	case strings.HasPrefix(s, "["):
		if err := json.Unmarshal([]byte(s), &items); err != nil {
			return s
		}
	default:
		return s
	}

	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
