package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/localguide/internal/core/domain"
)

func engineAt(t time.Time) *Engine {
	return New(WithClock(func() time.Time { return t }), WithLocation(brt))
}

func ptr[T any](v T) *T { return &v }

func TestSearch_EventRules(t *testing.T) {
	feira := domain.Event{ID: "e1", Title: "Feira Livre", PriceText: "Grátis", DateTime: "2024-06-08T10:00"}
	show := domain.Event{ID: "e2", Title: "Show", PriceText: "R$ 40", DateTime: "2024-06-05T21:00", Tags: []string{"Música"}}
	col := domain.Collections{Events: []domain.Event{feira, show}}

	wednesday := engineAt(time.Date(2024, 6, 5, 12, 0, 0, 0, brt))
	saturday := engineAt(time.Date(2024, 6, 8, 9, 0, 0, 0, brt))

	got := wednesday.Search(col, Query{Filters: []string{"entrada gratuita"}})
	require.Len(t, got.Events, 1)
	assert.Equal(t, "e1", got.Events[0].ID)

	got = wednesday.Search(col, Query{Filters: []string{"hoje"}})
	require.Len(t, got.Events, 1)
	assert.Equal(t, "e2", got.Events[0].ID)

	got = saturday.Search(col, Query{Filters: []string{"Hoje", "Entrada Gratuita"}})
	require.Len(t, got.Events, 1)
	assert.Equal(t, "e1", got.Events[0].ID)

	got = wednesday.Search(col, Query{Filters: []string{"fim de semana"}})
	require.Len(t, got.Events, 1)
	assert.Equal(t, "e1", got.Events[0].ID)

	// Remaining keys match event tags.
	got = wednesday.Search(col, Query{Filters: []string{"musica"}})
	require.Len(t, got.Events, 1)
	assert.Equal(t, "e2", got.Events[0].ID)

	got = wednesday.Search(col, Query{Text: "feira", Filters: []string{"musica"}})
	assert.Empty(t, got.Events)
}

func TestSearch_EventZonedDateTime(t *testing.T) {
	// 01:00 UTC on the 9th is still the 8th in BRT.
	ev := domain.Event{ID: "e1", DateTime: "2024-06-09T01:00:00Z"}
	got := engineAt(time.Date(2024, 6, 8, 20, 0, 0, 0, brt)).
		Search(domain.Collections{Events: []domain.Event{ev}}, Query{Filters: []string{"hoje"}})
	assert.Len(t, got.Events, 1)
}

func TestSearch_DealRules(t *testing.T) {
	col := domain.Collections{Deals: []domain.Deal{
		{ID: "expired", Title: "Pizza 50%", ValidUntil: "2024-01-01"},
		{ID: "today", Title: "Combo", Subtitle: "Entrega grátis", ValidUntil: "2024-06-01"},
		{ID: "open", Title: "Delivery de sushi", BusinessName: "Sushi Bar"},
	}}
	e := engineAt(time.Date(2024, 6, 1, 18, 0, 0, 0, brt))

	got := e.Search(col, Query{Filters: []string{"valido hoje"}})
	var ids []string
	for _, d := range got.Deals {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"today"}, ids, "deals without an expiry are not valid today")

	got = e.Search(col, Query{Filters: []string{"Válido hoje", "entrega"}})
	require.Len(t, got.Deals, 1)
	assert.Equal(t, "today", got.Deals[0].ID)

	got = e.Search(col, Query{Filters: []string{"entrega"}})
	require.Len(t, got.Deals, 2)
	assert.Equal(t, "open", got.Deals[1].ID)

	// Keys without a deal rule do not restrict deals.
	got = e.Search(col, Query{Filters: []string{"pet friendly"}})
	assert.Len(t, got.Deals, 3)

	got = e.Search(col, Query{Text: "sushi bar"})
	require.Len(t, got.Deals, 1)
	assert.Equal(t, "open", got.Deals[0].ID)
}

func TestSearch_Venues(t *testing.T) {
	col := domain.Collections{Businesses: []domain.Business{
		{
			ID: "cafe", Name: "Café Central", Category: "Cafeteria", CategorySlug: "comer-agora",
			Hours: "Seg-Sex 08:00-18:00", AverageRating: ptr(4.8), WhatsApp: "5535999990000",
		},
		{
			ID: "bar", Name: "Bar do Zé", Category: "Bar", CategorySlug: "comer_agora",
			Hours: "Consultar horários", IsOpenNow: true, Tags: []string{"Música ao vivo"},
		},
		{
			ID: "oficina", Name: "Auto Center", Category: "Mecânica", CategorySlug: "servicos",
			Hours: "Seg-Sex 08:00-18:00", IsVerified: true, Website: "https://auto.example",
		},
	}}
	// Wednesday 20:00: the cafe and the garage are closed, the bar's flag says open.
	e := engineAt(time.Date(2024, 6, 5, 20, 0, 0, 0, brt))

	ids := func(bs []domain.Business) []string {
		out := []string{}
		for _, b := range bs {
			out = append(out, b.ID)
		}
		return out
	}

	assert.Equal(t, []string{"cafe"}, ids(e.Search(col, Query{Text: "cafe"}).Businesses))
	assert.Equal(t, []string{"bar"}, ids(e.Search(col, Query{Text: "ao vivo"}).Businesses))
	assert.Equal(t, []string{"oficina"}, ids(e.Search(col, Query{Text: "MECÂNICA"}).Businesses))
	assert.Equal(t, []string{"cafe"}, ids(e.Search(col, Query{Text: "whatsapp"}).Businesses))
	assert.Equal(t, []string{"oficina"}, ids(e.Search(col, Query{Text: "verificado"}).Businesses))

	assert.Equal(t, []string{"bar"}, ids(e.Search(col, Query{Filters: []string{"Aberto agora"}}).Businesses))
	assert.Equal(t, []string{"cafe"}, ids(e.Search(col, Query{Filters: []string{"bem avaliado", "whatsapp"}}).Businesses))
	assert.Equal(t, []string{"oficina"}, ids(e.Search(col, Query{Filters: []string{"verificado", "site"}}).Businesses))
	assert.Equal(t, []string{"cafe", "bar"}, ids(e.Search(col, Query{Category: "comer-agora"}).Businesses))

	morning := engineAt(time.Date(2024, 6, 5, 10, 0, 0, 0, brt))
	assert.Equal(t, []string{"cafe", "bar", "oficina"}, ids(morning.Search(col, Query{Filters: []string{"aberto_agora"}}).Businesses))

	// Without hours evaluation the key is a plain tag.
	plain := New(WithClock(func() time.Time { return time.Date(2024, 6, 5, 10, 0, 0, 0, brt) }), WithLocation(brt), WithoutOpenNow())
	assert.Empty(t, plain.Search(col, Query{Filters: []string{"aberto_agora"}}).Businesses)
}

func TestSearch_SortBusinessesByRating(t *testing.T) {
	col := domain.Collections{Businesses: []domain.Business{
		{ID: "none"},
		{ID: "mid", AverageRating: ptr(4.0)},
		{ID: "top", AverageRating: ptr(4.9)},
	}}
	got := engineAt(time.Now()).Search(col, Query{Sort: "rating"}).Businesses
	require.Len(t, got, 3)
	assert.Equal(t, "top", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Equal(t, "none", got[2].ID)
}

func TestSearch_Listings(t *testing.T) {
	col := domain.Collections{Listings: []domain.Listing{
		{ID: "apto", Title: "Apartamento centro", ListingType: "imoveis", TransactionType: "alugar", PropertyType: "apartamento", RentPrice: 1500, Tags: []string{"Piscina"}},
		{ID: "casa", Title: "Casa com quintal", ListingType: "imoveis", TransactionType: "comprar", PropertyType: "casa", Price: 450000},
		{ID: "terreno", Title: "Terreno", ListingType: "imoveis", TransactionType: "comprar", PropertyType: "terreno"},
		{ID: "gol", Title: "Gol 2015", ListingType: "carros", SellerType: "particular", Price: 35000, Year: 2015},
		{ID: "onix", Title: "Onix 2021", ListingType: "carros", SellerType: "concessionaria", Price: 78000, Year: 2021, Neighborhood: "Centro"},
	}}
	e := engineAt(time.Now())

	ids := func(ls []domain.Listing) []string {
		out := []string{}
		for _, l := range ls {
			out = append(out, l.ID)
		}
		return out
	}

	assert.Equal(t, []string{"apto"}, ids(e.Search(col, Query{Filters: []string{"Alugar"}}).Listings))
	assert.Equal(t, []string{"apto"}, ids(e.Search(col, Query{Filters: []string{"piscina"}}).Listings))
	assert.Equal(t, []string{"onix"}, ids(e.Search(col, Query{Filters: []string{"Concessionária"}}).Listings))
	assert.Equal(t, []string{"apto", "onix"}, ids(e.Search(col, Query{Text: "centro"}).Listings))

	assert.Equal(t, []string{"apto", "casa", "terreno"},
		ids(e.Search(col, Query{ListingType: "imoveis", Sort: "rent_first"}).Listings))
	assert.Equal(t, []string{"apto", "casa", "terreno"},
		ids(e.Search(col, Query{ListingType: "imoveis", Sort: "price_asc"}).Listings))
	assert.Equal(t, []string{"casa", "apto", "terreno"},
		ids(e.Search(col, Query{ListingType: "imoveis", Sort: "price_desc"}).Listings))
	assert.Equal(t, []string{"onix", "gol"},
		ids(e.Search(col, Query{ListingType: "carros", Sort: "year_desc"}).Listings))
}

func TestSearch_AnyFilter(t *testing.T) {
	col := domain.Collections{
		Businesses: []domain.Business{
			{ID: "a", Tags: []string{"pet friendly"}},
			{ID: "b", Tags: []string{"estacionamento"}},
			{ID: "c"},
		},
		Listings: []domain.Listing{
			{ID: "casa", ListingType: "imoveis", PropertyType: "casa"},
			{ID: "kit", ListingType: "imoveis", PropertyType: "kitnet"},
			{ID: "terreno", ListingType: "imoveis", PropertyType: "terreno"},
		},
	}
	e := engineAt(time.Now())

	got := e.Search(col, Query{Filters: []string{"Pet friendly", "Estacionamento"}, Any: true})
	require.Len(t, got.Businesses, 2)
	assert.Equal(t, "a", got.Businesses[0].ID)
	assert.Equal(t, "b", got.Businesses[1].ID)
	assert.Empty(t, e.Search(col, Query{Filters: []string{"Pet friendly", "Estacionamento"}}).Businesses)

	got = e.Search(col, Query{Filters: []string{"casa", "kitnet"}, Any: true})
	require.Len(t, got.Listings, 2)
	assert.Equal(t, "kit", got.Listings[1].ID)
}

func TestSearch_NewsIgnoresFilters(t *testing.T) {
	col := domain.Collections{News: []domain.News{
		{ID: "n1", Title: "Obra na praça", Tag: "Cidade", Snippet: "Prefeitura anuncia reforma"},
		{ID: "n2", Title: "Festival", Tag: "Cultura"},
	}}
	e := engineAt(time.Now())

	got := e.Search(col, Query{Filters: []string{"hoje", "gratis"}})
	assert.Len(t, got.News, 2)

	got = e.Search(col, Query{Text: "reforma"})
	require.Len(t, got.News, 1)
	assert.Equal(t, "n1", got.News[0].ID)
}

func TestSearch_EmptyCollectionsAreNonNil(t *testing.T) {
	got := engineAt(time.Now()).Search(domain.Collections{}, Query{Text: "x"})
	assert.NotNil(t, got.Businesses)
	assert.NotNil(t, got.Listings)
	assert.NotNil(t, got.Deals)
	assert.NotNil(t, got.Events)
	assert.NotNil(t, got.News)
}

func TestFreeEntry(t *testing.T) {
	for _, p := range []string{"Grátis", "gratuito", "Entrada gratuita", "FREE", " Entrada livre "} {
		assert.True(t, FreeEntry(p), p)
	}
	for _, p := range []string{"R$ 20", "Entrada livre até 20h", ""} {
		assert.False(t, FreeEntry(p), p)
	}
}

func TestNormalizeKeys(t *testing.T) {
	assert.Equal(t, []string{"entrada_gratuita", "hoje"}, normalizeKeys([]string{"Entrada Gratuita", " ", "hoje", "entrada-gratuita"}))
}

func TestValidOn(t *testing.T) {
	for _, tc := range []struct {
		until string
		want  bool
	}{
		{"", false},
		{"  ", false},
		{"2024-05-31", false},
		{"2024-06-01", true},
		{"2024-06-01T23:59:00", true},
		{"2024-06-02T01:00:00Z", true},
		{"2024-06-01T01:00:00Z", false}, // 22:00 on May 31 in BRT
		{"2099-12", true},
	} {
		assert.Equal(t, tc.want, ValidOn(domain.Deal{ValidUntil: tc.until}, "2024-06-01", brt), "%q", tc.until)
	}
}
