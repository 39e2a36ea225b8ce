package tags

// FilterOption pairs a normalized key with its display label.
type FilterOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// FilterOptions turns display labels into options keyed by NormalizeTag.
func FilterOptions(labels []string) []FilterOption {
	out := make([]FilterOption, 0, len(labels))
	for _, l := range labels {
		out = append(out, FilterOption{Key: NormalizeTag(l), Label: l})
	}
	return out
}

// ListingType describes a classified section and the tags it offers.
type ListingType struct {
	ID    string
	Label string
	Tags  []string
}

// ListingTypes is the classified taxonomy.
var ListingTypes = []ListingType{
	{
		ID:    "lugares",
		Label: "Lugares",
		Tags: []string{
			"Pôr do sol", "Pet friendly", "Família", "Romântico", "Grátis",
			"Trilha", "Cultura", "Natureza", "Gastronomia", "Crianças",
			"Acessível", "Estacionamento",
		},
	},
	{
		ID:    "carros",
		Label: "Carros",
		Tags: []string{
			"Único dono", "Baixa km", "IPVA OK", "Pneus novos", "Concessionária",
			"Particular", "Financiamento", "Revisado", "Garantia", "Econômico",
		},
	},
	{
		ID:    "empregos",
		Label: "Empregos",
		Tags: []string{
			"CLT", "PJ", "Estágio", "Freelancer", "Presencial", "Híbrido",
			"Remoto", "Home office", "Sem experiência", "Primeiro emprego",
			"Meio período", "Vaga PCD", "Urgente",
		},
	},
	{
		ID:    "imoveis",
		Label: "Imóveis",
		Tags: []string{
			"Alugar", "Comprar", "Apartamento", "Casa", "Kitnet", "Terreno",
			"Comercial", "Mobiliado", "Portaria 24h", "Condomínio", "Varanda",
			"Piscina",
		},
	},
}

// AllTaxonomyFilters returns every taxonomy tag once, in first-seen order.
func AllTaxonomyFilters() []FilterOption {
	seen := make(map[string]bool)
	var out []FilterOption
	for _, lt := range ListingTypes {
		for _, t := range lt.Tags {
			key := NormalizeTag(t)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, FilterOption{Key: key, Label: t})
		}
	}
	return out
}

// SortOption is a selectable ordering.
type SortOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

const (
	SortRating    = "rating"
	SortFreeFirst = "free_first"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortYearDesc  = "year_desc"
	SortRecent    = "recent"
	SortRentFirst = "rent_first"
)

// SortOptions lists the orderings offered per listing type.
var SortOptions = map[string][]SortOption{
	"lugares": {
		{SortRating, "Mais bem avaliados"},
		{SortFreeFirst, "Grátis primeiro"},
	},
	"carros": {
		{SortPriceAsc, "Menor preço"},
		{SortPriceDesc, "Maior preço"},
		{SortYearDesc, "Mais novo"},
	},
	"empregos": {
		{SortRecent, "Mais recentes"},
	},
	"imoveis": {
		{SortPriceAsc, "Menor preço"},
		{SortPriceDesc, "Maior preço"},
		{SortRentFirst, "Aluguel primeiro"},
	},
}
