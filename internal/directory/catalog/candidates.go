package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/vietddude/localguide/internal/core/classify"
)

// Aliases maps public category identifiers to the slugs stored by the
// backend.
var Aliases = map[string]string{
	"food":        classify.SlugFood,
	"comida":      classify.SlugFood,
	"restaurants": classify.SlugFood,
	"services":    classify.SlugServices,
	"store":       classify.SlugBusiness,
	"stores":      classify.SlugBusiness,
	"business":    classify.SlugBusiness,
	"realestate":  "imoveis",
	"real-estate": "imoveis",
	"cars":        "carros",
	"jobs":        "empregos",
	"places":      "lugares",
	"events":      "eventos",
	"deals":       "ofertas",
	"news":        "noticias",
	"classifieds": "classificados",
	"obituary":    "falecimentos",
}

// Canonical resolves slug through Aliases after trimming and lowercasing.
func Canonical(slug string) string {
	s := strings.ToLower(strings.TrimSpace(slug))
	if alias, ok := Aliases[s]; ok {
		return alias
	}
	return s
}

// Candidates returns every spelling slug may be stored under: the input,
// its underscore and space variants, and the same for its alias target.
// Order is stable and duplicates are removed.
func Candidates(slug string) []string {
	s := strings.ToLower(strings.TrimSpace(slug))
	if s == "" {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	variants := func(v string) {
		add(v)
		add(strings.ReplaceAll(v, "-", "_"))
		add(strings.ReplaceAll(v, "-", " "))
	}

	variants(s)
	if alias, ok := Aliases[s]; ok {
		variants(alias)
	}
	return out
}

// searchKeywords returns the terms used by the keyword fallback for slug:
// the classifier's rule keywords when the slug has a rule, otherwise the
// slug's own words of three or more letters.
func searchKeywords(c *classify.Classifier, slug string) []string {
	canonical := Canonical(slug)
	if kws := c.Keywords(canonical); len(kws) > 0 {
		return kws
	}

	words := strings.FieldsFunc(canonical, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) >= 3 {
			out = append(out, w)
		}
	}
	return out
}
