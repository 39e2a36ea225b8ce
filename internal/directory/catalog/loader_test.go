package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/localguide/internal/infra/backend"
	"github.com/vietddude/localguide/internal/infra/backend/memory"
	"github.com/vietddude/localguide/internal/infra/cache"
)

func contentStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	require.NoError(t, s.Insert("businesses", backend.Row{"id": "b1", "name": "Pizzaria Bella"}))
	require.NoError(t, s.Insert("listings", backend.Row{"id": "l1", "title": "Casa", "listing_type": "imoveis"}))
	require.NoError(t, s.Insert("events", backend.Row{"id": "e1", "title": "Feira Livre", "date_time": "2024-06-08T10:00"}))
	require.NoError(t, s.Insert("news", backend.Row{"id": "n1", "title": "Obra"}))
	// deals table intentionally missing
	return s
}

func TestLoader_FailingCollectionDegradesToEmpty(t *testing.T) {
	rec := &recorder{Driver: contentStore(t)}
	l := NewLoader(Tables{}, 0, backend.NewClient(rec), testExecutor(), cache.New(cache.Options{}), nil, nil)

	got := l.Load(context.Background())
	require.Len(t, got.Businesses, 1)
	assert.Equal(t, "Pizzaria Bella", got.Businesses[0].Name)
	require.Len(t, got.Listings, 1)
	require.Len(t, got.Events, 1)
	require.Len(t, got.News, 1)
	assert.NotNil(t, got.Deals)
	assert.Empty(t, got.Deals)
	assert.Len(t, rec.Calls(), 5)

	// Successful collections are cached; the failed one is fetched again.
	l.Load(context.Background())
	assert.Len(t, rec.Calls(), 6)
}

func TestLoader_CustomTables(t *testing.T) {
	s := memory.New()
	require.NoError(t, s.Insert("ofertas", backend.Row{"id": "d1", "title": "Pizza 50%", "valid_until": "2024-01-01"}))

	l := NewLoader(Tables{Deals: "ofertas"}, 10, backend.NewClient(s), testExecutor(), nil, nil, nil)
	got := l.Load(context.Background())
	require.Len(t, got.Deals, 1)
	assert.Equal(t, "2024-01-01", got.Deals[0].ValidUntil)
	assert.Empty(t, got.Businesses)
}
