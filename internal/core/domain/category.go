package domain

// Category is a logical directory section.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Categories addressable by callers. Slugs are the public identifiers; the
// catalog resolver maps them to the backend's slugs.
var Categories = []Category{
	{Slug: "food", Name: "Comer agora"},
	{Slug: "classifieds", Name: "Classificados"},
	{Slug: "deals", Name: "Ofertas"},
	{Slug: "services", Name: "Serviços"},
	{Slug: "events", Name: "Eventos"},
	{Slug: "obituary", Name: "Falecimentos"},
	{Slug: "news", Name: "Notícias"},
	{Slug: "store", Name: "Negócios"},
	{Slug: "places", Name: "Lugares"},
	{Slug: "cars", Name: "Carros"},
	{Slug: "jobs", Name: "Empregos"},
	{Slug: "realestate", Name: "Imóveis"},
}
