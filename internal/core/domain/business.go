package domain

import "strconv"

type Plan string

const (
	PlanFree     Plan = "free"
	PlanPro      Plan = "pro"
	PlanDestaque Plan = "destaque"
)

// ParsePlan returns the plan for s, or PlanFree when s is not a known plan.
func ParsePlan(s string) Plan {
	switch Plan(s) {
	case PlanPro, PlanDestaque:
		return Plan(s)
	default:
		return PlanFree
	}
}

// Business is the canonical business record. It is built only by the
// catalog normalizer and never mutated afterwards.
type Business struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	CategorySlug  string   `json:"categorySlug"`
	Neighborhood  string   `json:"neighborhood"`
	Tags          []string `json:"tags"`
	Hours         string   `json:"hours"`
	Phone         string   `json:"phone,omitempty"`
	WhatsApp      string   `json:"whatsapp"`
	CoverImages   []string `json:"coverImages"`
	IsOpenNow     bool     `json:"isOpenNow"`
	IsVerified    bool     `json:"isVerified"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	AverageRating *float64 `json:"averageRating,omitempty"`
	ReviewCount   *int     `json:"reviewCount,omitempty"`
	Plan          Plan     `json:"plan"`
	Website       string   `json:"website,omitempty"`
	Instagram     string   `json:"instagram,omitempty"`
	Logo          string   `json:"logo,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}

// UiBusiness is the card projection served to list views.
type UiBusiness struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	CategorySlug string   `json:"categorySlug"`
	Neighborhood string   `json:"neighborhood"`
	CoverImages  []string `json:"coverImages"`
	IsOpenNow    bool     `json:"isOpenNow"`
	Tags         []string `json:"tags"`
	Plan         Plan     `json:"plan,omitempty"`
	IsVerified   bool     `json:"isVerified,omitempty"`
}

// Ui projects the record into its card shape.
func (b Business) Ui() UiBusiness {
	return UiBusiness{
		ID:           b.ID,
		Name:         b.Name,
		Category:     b.Category,
		CategorySlug: b.CategorySlug,
		Neighborhood: b.Neighborhood,
		CoverImages:  append([]string(nil), b.CoverImages...),
		IsOpenNow:    b.IsOpenNow,
		Tags:         append([]string(nil), b.Tags...),
		Plan:         b.Plan,
		IsVerified:   b.IsVerified,
	}
}

// HasLocation reports whether both coordinates are set.
func (b Business) HasLocation() bool {
	return b.Latitude != nil && b.Longitude != nil
}

// TagList implements tags.Filterable.
func (b Business) TagList() []string {
	return b.Tags
}

// FieldValue implements tags.Filterable.
func (b Business) FieldValue(name string) (string, bool) {
	switch name {
	case "category":
		return b.Category, true
	case "categorySlug":
		return b.CategorySlug, true
	case "neighborhood":
		return b.Neighborhood, true
	case "plan":
		return string(b.Plan), true
	case "isVerified":
		return strconv.FormatBool(b.IsVerified), true
	case "isOpenNow":
		return strconv.FormatBool(b.IsOpenNow), true
	}
	return "", false
}
