package catalog

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/localguide/internal/core/domain"
	"github.com/vietddude/localguide/internal/infra/backend"
	"github.com/vietddude/localguide/internal/infra/backend/memory"
)

func geoStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	s.CreateTable("businesses", "id", "name", "latitude", "longitude")
	require.NoError(t, s.Insert("businesses",
		backend.Row{"id": "far", "name": "Longe", "latitude": -21.80, "longitude": -45.40},
		backend.Row{"id": "near", "name": "Perto", "latitude": -21.551, "longitude": -45.431},
		backend.Row{"id": "mid", "name": "Meio", "latitude": -21.58, "longitude": -45.43},
		backend.Row{"id": "none", "name": "Sem local"},
	))
	return s
}

func TestResolveNearby(t *testing.T) {
	r, rec := newTestResolver(t, geoStore(t))
	ctx := context.Background()

	got, err := r.ResolveNearby(ctx, -21.55, -45.43, 5, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "near", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Less(t, got[0].DistanceKm, got[1].DistanceKm)
	assert.Less(t, got[1].DistanceKm, 5.0)

	// Served from cache, truncated to limit.
	one, err := r.ResolveNearby(ctx, -21.55, -45.43, 5, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "near", one[0].ID)
	assert.Len(t, rec.Calls(), 1)
}

func TestResolveNearby_ResultDoesNotAliasCache(t *testing.T) {
	r, _ := newTestResolver(t, geoStore(t))
	ctx := context.Background()

	one, err := r.ResolveNearby(ctx, -21.55, -45.43, 5, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	_ = append(one, Nearby{Business: domain.Business{ID: "injected"}})
	one[0].ID = "changed"

	again, err := r.ResolveNearby(ctx, -21.55, -45.43, 5, 10)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, "near", again[0].ID)
	assert.Equal(t, "mid", again[1].ID)
}

func TestResolveNearby_InvalidInput(t *testing.T) {
	r, rec := newTestResolver(t, geoStore(t))
	ctx := context.Background()

	for _, tc := range []struct{ lat, lng, radius float64 }{
		{91, 0, 1},
		{0, -181, 1},
		{math.NaN(), 0, 1},
		{0, 0, 0},
		{0, 0, -3},
	} {
		_, err := r.ResolveNearby(ctx, tc.lat, tc.lng, tc.radius, 10)
		assert.True(t, errors.Is(err, ErrInvalidCoordinates), "%+v", tc)
	}
	assert.Empty(t, rec.Calls())
}

func TestResolveNearby_BackendFailureIsEmpty(t *testing.T) {
	s := geoStore(t)
	s.SetFault(func(*backend.Request) *backend.RemoteError {
		return &backend.RemoteError{Message: "unauthorized", Status: 401}
	})
	r, _ := newTestResolver(t, s)

	got, err := r.ResolveNearby(context.Background(), -21.55, -45.43, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocationKey(t *testing.T) {
	assert.Equal(t, "businesses:location:-21.55:-45.43:2.5", LocationKey(-21.55, -45.43, 2.5))
}

func TestDistanceKm(t *testing.T) {
	// One degree of latitude is about 111 km.
	d := DistanceKm(0, 0, 1, 0)
	assert.InDelta(t, 111.2, d, 0.5)
	assert.Zero(t, DistanceKm(-21.5, -45.4, -21.5, -45.4))
}
