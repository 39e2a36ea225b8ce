// Package classify guesses a category slug from free text using keyword
// rules. The catalog normalizer and the resolver's keyword fallback share
// one table so both reach the same answer for the same record.
package classify

import "strings"

const (
	SlugFood     = "comer-agora"
	SlugServices = "servicos"
	SlugBusiness = "negocios"
)

// Rule assigns Slug to any text containing one of Keywords.
type Rule struct {
	Slug     string   `yaml:"slug"`
	Keywords []string `yaml:"keywords"`
}

// DefaultRules is the built-in table, checked in order.
var DefaultRules = []Rule{
	{
		Slug: SlugFood,
		Keywords: []string{
			"restaurante", "restaurant", "pizza", "pizzaria", "comer",
			"lanchonete", "comida", "bar", "padaria", "bakery", "marmita",
			"marmitex", "espetinho", "churrasco", "açaí", "sorvete",
			"hamburguer", "burger", "delivery", "fast food", "refeição",
		},
	},
	{
		Slug: SlugServices,
		Keywords: []string{
			"serviço", "profissional", "auto", "mecânica", "conserto",
			"manutenção", "consultório", "advogado", "contador", "eletricista",
			"encanador", "pedreiro", "salão", "beleza", "cabelo", "estética",
			"clínica",
		},
	},
}

// Classifier matches text against an ordered rule table.
type Classifier struct {
	rules    []Rule
	fallback string
}

// New builds a classifier. Nil rules means DefaultRules; an empty fallback
// means SlugBusiness.
func New(rules []Rule, fallback string) *Classifier {
	if rules == nil {
		rules = DefaultRules
	}
	if fallback == "" {
		fallback = SlugBusiness
	}
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kws = append(kws, k)
			}
		}
		normalized = append(normalized, Rule{Slug: r.Slug, Keywords: kws})
	}
	return &Classifier{rules: normalized, fallback: fallback}
}

// Default returns a classifier over DefaultRules.
func Default() *Classifier {
	return New(nil, "")
}

// Classify returns the first rule slug whose keyword appears in any of
// texts, or def when none do. An empty def uses the classifier fallback.
func (c *Classifier) Classify(def string, texts ...string) string {
	haystack := strings.ToLower(strings.Join(texts, " "))
	for _, r := range c.rules {
		for _, k := range r.Keywords {
			if strings.Contains(haystack, k) {
				return r.Slug
			}
		}
	}
	if def == "" {
		return c.fallback
	}
	return def
}

// Keywords returns the keyword list configured for slug, or nil.
func (c *Classifier) Keywords(slug string) []string {
	for _, r := range c.rules {
		if r.Slug == slug {
			return r.Keywords
		}
	}
	return nil
}
