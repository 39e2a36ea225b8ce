package backend

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Fault is a schema-shape failure reported by the backend.
type Fault int

const (
	FaultNone Fault = iota
	FaultMissingColumn
	FaultMissingRelationship
)

func (f Fault) String() string {
	switch f {
	case FaultMissingColumn:
		return "missing_column"
	case FaultMissingRelationship:
		return "missing_relationship"
	default:
		return "none"
	}
}

var missingColumnRe = regexp.MustCompile(`column "?[\w.]+"? does not exist`)

// ClassifyFault reports whether err signals a schema mismatch. Error codes
// are checked first; message text is the fallback for backends that only
// return a message.
func ClassifyFault(err error) Fault {
	if err == nil {
		return FaultNone
	}

	var re *RemoteError
	if errors.As(err, &re) {
		switch re.Code {
		case CodeUndefinedColumn:
			return FaultMissingColumn
		case CodeMissingRelationship:
			return FaultMissingRelationship
		}
	}

	msg := err.Error()
	if missingColumnRe.MatchString(msg) {
		return FaultMissingColumn
	}
	if strings.Contains(msg, "relationship") && strings.Contains(msg, "schema cache") {
		return FaultMissingRelationship
	}
	return FaultNone
}

// Schema describes which category shapes the business table supports.
// When Known is false every strategy is attempted.
type Schema struct {
	CategorySlug       bool `json:"category_slug"`
	Category           bool `json:"category"`
	CategoriesRelation bool `json:"categories_relation"`
	Known              bool `json:"known"`
}

// Schema modes accepted in configuration.
const (
	ModeAuto       = "auto"
	ModeFlat       = "flat"
	ModeRelational = "relational"
	ModeKeyword    = "keyword"
	ModeName       = "name"
)

// SchemaForMode returns the descriptor for a fixed mode. ModeAuto and ""
// return an unknown schema; callers resolve it with DescribeSchema.
func SchemaForMode(mode string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeAuto:
		return Schema{}, nil
	case ModeFlat:
		return Schema{CategorySlug: true, Category: true, Known: true}, nil
	case ModeRelational:
		return Schema{Category: true, CategoriesRelation: true, Known: true}, nil
	case ModeKeyword:
		return Schema{Category: true, Known: true}, nil
	case ModeName:
		return Schema{Known: true}, nil
	}
	return Schema{}, fmt.Errorf("unknown schema mode %q", mode)
}

// Mode names the strongest strategy the schema allows.
func (s Schema) Mode() string {
	switch {
	case !s.Known:
		return ModeAuto
	case s.CategorySlug:
		return ModeFlat
	case s.CategoriesRelation:
		return ModeRelational
	case s.Category:
		return ModeKeyword
	default:
		return ModeName
	}
}

// Describer is implemented by drivers that can introspect their schema
// more cheaply than probing.
type Describer interface {
	DescribeSchema(ctx context.Context, table string) (Schema, error)
}

// DescribeSchema resolves the schema of table. Drivers implementing
// Describer are asked directly; otherwise single-row probes are issued and
// their schema faults interpreted.
func DescribeSchema(ctx context.Context, c *Client, table string) (Schema, error) {
	if d, ok := c.driver.(Describer); ok {
		return d.DescribeSchema(ctx, table)
	}

	s := Schema{Known: true}
	probes := []struct {
		sel string
		set *bool
	}{
		{"category_slug", &s.CategorySlug},
		{"category", &s.Category},
		{"id,categories(slug)", &s.CategoriesRelation},
	}
	for _, p := range probes {
		_, err := c.From(table).Select(p.sel).Limit(1).Execute(ctx).Result()
		switch {
		case err == nil:
			*p.set = true
		case ClassifyFault(err) != FaultNone:
		default:
			return Schema{}, fmt.Errorf("probe %s on %s: %w", p.sel, table, err)
		}
	}
	return s, nil
}
