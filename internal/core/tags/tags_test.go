package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pôr do Sol", "por_do_sol"},
		{"  Pet-Friendly ", "pet_friendly"},
		{"Entrada gratuita", "entrada_gratuita"},
		{"válido   hoje", "valido_hoje"},
		{"Portaria 24h", "portaria_24h"},
		{"a - b", "a_b"},
		{"a -!- b", "a__b"},
		{"Açaí & Sorvete!", "acai__sorvete"},
		{"CLT", "clt"},
		{"", ""},
		{"already_normal", "already_normal"},
		{"São João\tdel-Rei", "sao_joao_del_rei"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTag(tt.in))
		})
	}
}

func TestFormatTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"por_do_sol", "Pôr do sol"},
		{"Pôr do Sol", "Pôr do sol"},
		{"whatsapp", "WhatsApp"},
		{"ipva_ok", "IPVA OK"},
		{"vista_para_serra", "Vista para serra"},
		{"ótima_vista", "Ótima vista"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTag(tt.in), "FormatTag(%q)", tt.in)
	}
}

type listing struct {
	tags   []string
	fields map[string]string
}

func (l listing) TagList() []string { return l.tags }
func (l listing) FieldValue(name string) (string, bool) {
	v, ok := l.fields[name]
	return v, ok
}

func TestRuleFor(t *testing.T) {
	r := RuleFor("empregos", "Estágio")
	assert.Equal(t, FieldRule, r.Kind)
	assert.Equal(t, "employmentType", r.Field)

	r = RuleFor("empregos", "urgente")
	assert.Equal(t, TagRule, r.Kind)
	assert.Equal(t, "urgente", r.Key)

	r = RuleFor("", "alugar")
	assert.Equal(t, TagRule, r.Kind, "field rules are scoped")
}

func TestMatchesFilter(t *testing.T) {
	job := listing{
		tags:   []string{"Home Office", "Urgente"},
		fields: map[string]string{"employmentType": "Estágio", "workModel": "Remoto"},
	}

	assert.True(t, MatchesFilter(job, "estagio", "empregos"))
	assert.True(t, MatchesFilter(job, "remoto", "empregos"))
	assert.False(t, MatchesFilter(job, "clt", "empregos"))
	assert.True(t, MatchesFilter(job, "home_office", "empregos"))
	assert.False(t, MatchesFilter(job, "noturno", "empregos"))

	// Missing field never matches.
	car := listing{fields: map[string]string{}}
	assert.False(t, MatchesFilter(car, "particular", "carros"))
}

func TestMatchesAllAndAny(t *testing.T) {
	place := listing{
		tags:   []string{"Pôr do sol", "Família"},
		fields: map[string]string{"priceLevel": "Grátis"},
	}

	assert.True(t, MatchesAll(place, nil, "lugares"))
	assert.True(t, MatchesAll(place, []string{"gratis", "por_do_sol"}, "lugares"))
	assert.False(t, MatchesAll(place, []string{"gratis", "trilha"}, "lugares"))

	assert.True(t, MatchesAny(place, nil, "lugares"))
	assert.True(t, MatchesAny(place, []string{"trilha", "familia"}, "lugares"))
	assert.False(t, MatchesAny(place, []string{"trilha", "cultura"}, "lugares"))
}

func TestSet(t *testing.T) {
	s := Set{"Entrega", "Aceita cartão"}
	assert.True(t, MatchesAll(s, []string{"entrega", "aceita_cartao"}, ""))
	assert.False(t, MatchesFilter(s, "alugar", "imoveis"))
}

func TestFilterOptions(t *testing.T) {
	got := FilterOptions([]string{"Aberto agora", "Pet friendly"})
	assert.Equal(t, []FilterOption{
		{Key: "aberto_agora", Label: "Aberto agora"},
		{Key: "pet_friendly", Label: "Pet friendly"},
	}, got)
}

func TestAllTaxonomyFilters(t *testing.T) {
	all := AllTaxonomyFilters()

	seen := make(map[string]bool)
	for _, opt := range all {
		assert.False(t, seen[opt.Key], "duplicate key %s", opt.Key)
		seen[opt.Key] = true
		assert.Equal(t, NormalizeTag(opt.Label), opt.Key)
	}
	assert.True(t, seen["por_do_sol"])
	assert.True(t, seen["clt"])
	assert.Equal(t, "por_do_sol", all[0].Key)
}

func FuzzNormalizeTagIdempotent(f *testing.F) {
	for _, seed := range []string{"Pôr do Sol", "a - b", "  ", "ÀÉÎÕÜ ç", "x__y", "日本語", "\xff\xfe"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		once := NormalizeTag(s)
		if twice := NormalizeTag(once); twice != once {
			t.Fatalf("NormalizeTag not idempotent: %q -> %q -> %q", s, once, twice)
		}
	})
}
