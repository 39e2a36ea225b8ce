package search

import (
	"time"

	"github.com/vietddude/localguide/internal/core/domain"
)

// Derived venue tags.
const (
	TagWhatsApp  = "whatsapp"
	TagWebsite   = "site"
	TagTopRated  = "bem_avaliado"
	TagVerified  = "verificado"
	TopRatedFrom = 4.5
)

// VenueTags returns the record tags followed by the tags derived from its
// contact fields, rating and verification.
func VenueTags(b domain.Business) []string {
	out := make([]string, 0, len(b.Tags)+4)
	out = append(out, b.Tags...)
	if b.WhatsApp != "" {
		out = append(out, TagWhatsApp)
	}
	if b.Website != "" {
		out = append(out, TagWebsite)
	}
	if b.AverageRating != nil && *b.AverageRating >= TopRatedFrom {
		out = append(out, TagTopRated)
	}
	if b.IsVerified {
		out = append(out, TagVerified)
	}
	return out
}

// OpenNow evaluates the business hours at now. Hours that cannot be parsed
// defer to the stored IsOpenNow flag.
func OpenNow(b domain.Business, now time.Time) bool {
	sched, ok := ParseHours(b.Hours)
	if !ok {
		return b.IsOpenNow
	}
	return sched.OpenAt(now)
}
