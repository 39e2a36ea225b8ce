// Package search filters the directory collections by free text and by
// faceted filter keys.
package search

import (
	"log/slog"
	"strings"
	"time"

	"github.com/vietddude/localguide/internal/core/domain"
	"github.com/vietddude/localguide/internal/core/tags"
	"github.com/vietddude/localguide/internal/directory/metrics"
)

// Filter keys with dedicated handling.
const (
	KeyOpenNow    = "aberto_agora"
	KeyValidToday = "valido_hoje"
	KeyDelivery   = "entrega"
	KeyFreeEntry  = "entrada_gratuita"
	KeyToday      = "hoje"
	KeyWeekend    = "fim_de_semana"
)

// DefaultTimezone is the zone "today" and opening hours are evaluated in.
const DefaultTimezone = "America/Sao_Paulo"

// Query is one search request.
type Query struct {
	Text    string   `json:"q"`
	Filters []string `json:"filters"`
	// Category restricts businesses to one category slug.
	Category string `json:"category,omitempty"`
	// ListingType restricts listings to one classified section.
	ListingType string `json:"listingType,omitempty"`
	Sort        string `json:"sort,omitempty"`
	// Any matches business and listing records satisfying at least one
	// filter instead of all of them. Opening hours always must match.
	Any bool `json:"any,omitempty"`
}

// Engine evaluates queries against a snapshot of the collections. It holds
// no per-query state and is safe for concurrent use.
type Engine struct {
	now          func() time.Time
	loc          *time.Location
	checkOpenNow bool
	log          *slog.Logger
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithoutOpenNow treats "aberto_agora" as a plain tag instead of evaluating
// opening hours.
func WithoutOpenNow() Option {
	return func(e *Engine) { e.checkOpenNow = false }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an engine evaluating dates in DefaultTimezone.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:          time.Now,
		loc:          DefaultLocation(),
		checkOpenNow: true,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultLocation loads DefaultTimezone, falling back to UTC when the zone
// database is unavailable.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Now returns the current time in the engine's location.
func (e *Engine) Now() time.Time {
	return e.now().In(e.loc)
}

// Search returns the records of c matching q. Every returned slice is
// non-nil.
func (e *Engine) Search(c domain.Collections, q Query) domain.Collections {
	now := e.Now()
	text := strings.TrimSpace(fold(q.Text))
	keys := normalizeKeys(q.Filters)

	out := domain.Collections{
		Businesses: e.businesses(c.Businesses, q, text, keys, now),
		Listings:   e.listings(c.Listings, q, text, keys),
		Deals:      e.deals(c.Deals, text, keys, now),
		Events:     e.events(c.Events, text, keys, now),
		News:       e.news(c.News, text),
	}
	sortBusinesses(out.Businesses, q.Sort)
	sortListings(out.Listings, q.Sort)

	observe(domain.ContentBusiness, len(out.Businesses))
	observe(domain.ContentListing, len(out.Listings))
	observe(domain.ContentDeal, len(out.Deals))
	observe(domain.ContentEvent, len(out.Events))
	observe(domain.ContentNews, len(out.News))

	e.log.Debug("Search evaluated",
		"query", q.Text,
		"filters", keys,
		"businesses", len(out.Businesses),
		"listings", len(out.Listings),
		"deals", len(out.Deals),
		"events", len(out.Events),
		"news", len(out.News),
	)
	return out
}

func observe(t domain.ContentType, n int) {
	metrics.SearchResults.WithLabelValues(string(t)).Observe(float64(n))
}

// normalizeKeys canonicalizes filter labels, dropping blanks and repeats.
func normalizeKeys(filters []string) []string {
	seen := make(map[string]bool, len(filters))
	keys := make([]string, 0, len(filters))
	for _, f := range filters {
		k := tags.NormalizeTag(f)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

func (e *Engine) businesses(in []domain.Business, q Query, text string, keys []string, now time.Time) []domain.Business {
	scope := tags.NormalizeTag(q.Category)
	out := make([]domain.Business, 0, len(in))
	for _, b := range in {
		if scope != "" && tags.NormalizeTag(b.CategorySlug) != scope {
			continue
		}
		if !containsAny(text, append([]string{b.Name, b.Category, b.Neighborhood}, VenueTags(b)...)...) {
			continue
		}
		if !e.venueMatches(b, keys, q.Any, now) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (e *Engine) venueMatches(b domain.Business, keys []string, anyOf bool, now time.Time) bool {
	set := tags.Set(VenueTags(b))
	rest := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == KeyOpenNow && e.checkOpenNow {
			if !OpenNow(b, now) {
				return false
			}
			continue
		}
		rest = append(rest, k)
	}
	if anyOf {
		return tags.MatchesAny(set, rest, "")
	}
	return tags.MatchesAll(set, rest, "")
}

func (e *Engine) listings(in []domain.Listing, q Query, text string, keys []string) []domain.Listing {
	scope := tags.NormalizeTag(q.ListingType)
	out := make([]domain.Listing, 0, len(in))
	for _, l := range in {
		if scope != "" && tags.NormalizeTag(l.ListingType) != scope {
			continue
		}
		if !containsAny(text, l.Title, l.Neighborhood) {
			continue
		}
		match := tags.MatchesAll
		if q.Any {
			match = tags.MatchesAny
		}
		if !match(l, keys, l.ListingType) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (e *Engine) deals(in []domain.Deal, text string, keys []string, now time.Time) []domain.Deal {
	today := now.Format(dateLayout)
	out := make([]domain.Deal, 0, len(in))
	for _, d := range in {
		if !containsAny(text, d.Title, d.BusinessName) {
			continue
		}
		if !dealMatches(d, keys, today, e.loc) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// dealMatches applies the validity and delivery rules. Other keys do not
// restrict deals.
func dealMatches(d domain.Deal, keys []string, today string, loc *time.Location) bool {
	for _, k := range keys {
		switch k {
		case KeyValidToday:
			if !ValidOn(d, today, loc) {
				return false
			}
		case KeyDelivery:
			s := fold(d.Title + " " + d.Subtitle)
			if !strings.Contains(s, "entrega") && !strings.Contains(s, "delivery") {
				return false
			}
		}
	}
	return true
}

// ValidOn reports whether d is still valid on the ISO date today. A deal
// without an expiry is not. Expiries that are not ISO dates compare as
// plain strings.
func ValidOn(d domain.Deal, today string, loc *time.Location) bool {
	raw := strings.TrimSpace(d.ValidUntil)
	if raw == "" {
		return false
	}
	until, ok := parseLocal(raw, loc)
	if !ok {
		return raw >= today
	}
	return until.Format(dateLayout) >= today
}

func (e *Engine) events(in []domain.Event, text string, keys []string, now time.Time) []domain.Event {
	out := make([]domain.Event, 0, len(in))
	for _, ev := range in {
		if !containsAny(text, append([]string{ev.Title, ev.Location}, ev.Tags...)...) {
			continue
		}
		if !eventMatches(ev, keys, now, e.loc) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// eventMatches applies the free-entry, today and weekend rules; any other
// key is matched against the event tags.
func eventMatches(ev domain.Event, keys []string, now time.Time, loc *time.Location) bool {
	var rest []string
	for _, k := range keys {
		switch k {
		case KeyFreeEntry:
			if !FreeEntry(ev.PriceText) {
				return false
			}
		case KeyToday:
			at, ok := parseLocal(ev.DateTime, loc)
			if !ok || at.Format(dateLayout) != now.Format(dateLayout) {
				return false
			}
		case KeyWeekend:
			at, ok := parseLocal(ev.DateTime, loc)
			if !ok {
				return false
			}
			if wd := at.Weekday(); wd != time.Saturday && wd != time.Sunday {
				return false
			}
		default:
			rest = append(rest, k)
		}
	}
	return tags.MatchesAll(ev, rest, "")
}

var freeWords = []string{"gratis", "gratuito", "gratuita", "free"}

// FreeEntry reports whether an event price text means no charge.
func FreeEntry(price string) bool {
	p := strings.TrimSpace(fold(price))
	if p == "entrada livre" {
		return true
	}
	for _, w := range freeWords {
		if strings.Contains(p, w) {
			return true
		}
	}
	return false
}

func (e *Engine) news(in []domain.News, text string) []domain.News {
	out := make([]domain.News, 0, len(in))
	for _, n := range in {
		if containsAny(text, n.Title, n.Tag, n.Snippet) {
			out = append(out, n)
		}
	}
	return out
}
