package tags

// Filterable is implemented by records that filter rules can inspect.
type Filterable interface {
	TagList() []string
	// FieldValue returns the string form of a named field.
	FieldValue(name string) (string, bool)
}

// RuleKind selects how a FilterRule matches.
type RuleKind uint8

const (
	// TagRule matches when the record has a tag normalizing to Key.
	TagRule RuleKind = iota
	// FieldRule matches when Field normalizes to the same key as Value.
	FieldRule
)

// FilterRule maps a normalized filter key to a predicate.
type FilterRule struct {
	Key   string
	Kind  RuleKind
	Field string
	Value string
}

// Matches reports whether item satisfies the rule.
func (r FilterRule) Matches(item Filterable) bool {
	switch r.Kind {
	case FieldRule:
		v, ok := item.FieldValue(r.Field)
		if !ok {
			return false
		}
		return NormalizeTag(v) == NormalizeTag(r.Value)
	default:
		for _, t := range item.TagList() {
			if NormalizeTag(t) == r.Key {
				return true
			}
		}
		return false
	}
}

type fieldRef struct {
	field string
	value string
}

// fieldRules maps scope -> filter key -> record field.
var fieldRules = map[string]map[string]fieldRef{
	"imoveis": {
		"alugar":      {"transactionType", "alugar"},
		"comprar":     {"transactionType", "comprar"},
		"apartamento": {"propertyType", "apartamento"},
		"casa":        {"propertyType", "casa"},
		"kitnet":      {"propertyType", "kitnet"},
		"terreno":     {"propertyType", "terreno"},
		"comercial":   {"propertyType", "comercial"},
	},
	"carros": {
		"concessionaria": {"sellerType", "concessionaria"},
		"particular":     {"sellerType", "particular"},
	},
	"empregos": {
		"clt":        {"employmentType", "CLT"},
		"pj":         {"employmentType", "PJ"},
		"estagio":    {"employmentType", "Estágio"},
		"freelancer": {"employmentType", "Freelancer"},
		"presencial": {"workModel", "presencial"},
		"hibrido":    {"workModel", "hibrido"},
		"remoto":     {"workModel", "remoto"},
	},
	"lugares": {
		"gratis": {"priceLevel", "Grátis"},
	},
}

// RuleFor returns the rule used for key within scope. Keys without a field
// mapping in scope fall back to tag matching.
func RuleFor(scope, key string) FilterRule {
	key = NormalizeTag(key)
	if ref, ok := fieldRules[scope][key]; ok {
		return FilterRule{Key: key, Kind: FieldRule, Field: ref.field, Value: ref.value}
	}
	return FilterRule{Key: key, Kind: TagRule}
}

// HasFieldRules reports whether scope has a field rule table.
func HasFieldRules(scope string) bool {
	_, ok := fieldRules[scope]
	return ok
}

// MatchesFilter reports whether item satisfies key within scope.
func MatchesFilter(item Filterable, key, scope string) bool {
	return RuleFor(scope, key).Matches(item)
}

// MatchesAll reports whether item satisfies every key. No keys always match.
func MatchesAll(item Filterable, keys []string, scope string) bool {
	for _, k := range keys {
		if !MatchesFilter(item, k, scope) {
			return false
		}
	}
	return true
}

// MatchesAny reports whether item satisfies at least one key. No keys
// always match.
func MatchesAny(item Filterable, keys []string, scope string) bool {
	if len(keys) == 0 {
		return true
	}
	for _, k := range keys {
		if MatchesFilter(item, k, scope) {
			return true
		}
	}
	return false
}

// Set is a bare tag list usable as a Filterable.
type Set []string

func (s Set) TagList() []string                { return s }
func (s Set) FieldValue(string) (string, bool) { return "", false }
