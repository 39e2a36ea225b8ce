package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Embed is a relation requested in the select list, e.g.
// categories!inner(name,slug).
type Embed struct {
	Name    string
	Columns []string
	// Inner drops parent rows whose embed does not match its filters.
	Inner bool
}

// Selection is a parsed select list.
type Selection struct {
	All     bool
	Columns []string
	Embeds  []Embed
}

// ParseSelect parses a PostgREST select list.
func ParseSelect(s string) (Selection, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selection{All: true}, nil
	}

	items, err := splitTopLevel(s, ',')
	if err != nil {
		return Selection{}, err
	}

	var sel Selection
	for _, item := range items {
		item = strings.TrimSpace(item)
		switch {
		case item == "":
			continue
		case item == "*":
			sel.All = true
		case strings.Contains(item, "("):
			e, err := parseEmbed(item)
			if err != nil {
				return Selection{}, err
			}
			sel.Embeds = append(sel.Embeds, e)
		default:
			sel.Columns = append(sel.Columns, item)
		}
	}
	if !sel.All && len(sel.Columns) == 0 && len(sel.Embeds) == 0 {
		return Selection{}, errors.New("empty select list")
	}
	return sel, nil
}

func parseEmbed(item string) (Embed, error) {
	open := strings.IndexByte(item, '(')
	if !strings.HasSuffix(item, ")") {
		return Embed{}, fmt.Errorf("embed %q: missing closing parenthesis", item)
	}
	name := strings.TrimSpace(item[:open])
	inner := false
	if base, hint, ok := strings.Cut(name, "!"); ok {
		name = base
		inner = hint == "inner"
	}
	if name == "" {
		return Embed{}, fmt.Errorf("embed %q: missing relation name", item)
	}

	var cols []string
	for _, c := range strings.Split(item[open+1:len(item)-1], ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return Embed{Name: name, Columns: cols, Inner: inner}, nil
}

// String renders the selection back to select-list form.
func (s Selection) String() string {
	var parts []string
	if s.All {
		parts = append(parts, "*")
	}
	parts = append(parts, s.Columns...)
	for _, e := range s.Embeds {
		name := e.Name
		if e.Inner {
			name += "!inner"
		}
		cols := "*"
		if len(e.Columns) > 0 {
			cols = strings.Join(e.Columns, ",")
		}
		parts = append(parts, name+"("+cols+")")
	}
	return strings.Join(parts, ",")
}
