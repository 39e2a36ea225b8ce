package classify

import "testing"

func TestClassify(t *testing.T) {
	c := Default()

	tests := []struct {
		name  string
		def   string
		texts []string
		want  string
	}{
		{"food by name", "", []string{"Pizzaria do Zé", "", ""}, SlugFood},
		{"food by category", "", []string{"Casa Verde", "Restaurante", ""}, SlugFood},
		{"food by description", "", []string{"Casa", "", "Marmitex todo dia"}, SlugFood},
		{"services", "", []string{"Salão da Ana", "Beleza", ""}, SlugServices},
		{"case insensitive", "", []string{"ADVOGADO Silva"}, SlugServices},
		{"food wins over services", "", []string{"Bar e mecânica"}, SlugFood},
		{"fallback", "", []string{"Loja de roupas"}, SlugBusiness},
		{"caller default", "lugares", []string{"Mirante"}, "lugares"},
		{"no text", "", nil, SlugBusiness},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.def, tt.texts...); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCustomRules(t *testing.T) {
	c := New([]Rule{{Slug: "pets", Keywords: []string{"  PET ", ""}}}, "outros")

	if got := c.Classify("", "Pet shop"); got != "pets" {
		t.Errorf("got %q, want pets", got)
	}
	if got := c.Classify("", "Padaria"); got != "outros" {
		t.Errorf("got %q, want outros", got)
	}
	if kws := c.Keywords("pets"); len(kws) != 1 || kws[0] != "pet" {
		t.Errorf("keywords not normalized: %v", kws)
	}
}

func TestKeywords(t *testing.T) {
	c := Default()
	if len(c.Keywords(SlugFood)) == 0 {
		t.Error("food rule should have keywords")
	}
	if c.Keywords("imoveis") != nil {
		t.Error("unknown slug should have no keywords")
	}
}
