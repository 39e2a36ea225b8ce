package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/vietddude/localguide/internal/core/apperr"
	"github.com/vietddude/localguide/internal/core/domain"
	"github.com/vietddude/localguide/internal/infra/backend"
	"github.com/vietddude/localguide/internal/infra/cache"
	"github.com/vietddude/localguide/internal/infra/remote"
)

// ErrInvalidCoordinates is returned for out-of-range geo lookups.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Nearby is a business with its distance from the query point.
type Nearby struct {
	domain.Business
	DistanceKm float64 `json:"distanceKm"`
}

// ValidCoordinates reports whether lat/lng are finite and in range.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// LocationKey is the cache key for a geo lookup.
func LocationKey(lat, lng, radiusKm float64) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return fmt.Sprintf("businesses:location:%s:%s:%s", f(lat), f(lng), f(radiusKm))
}

// DistanceKm is the great-circle distance between two coordinates.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	return geo.Distance(orb.Point{lng1, lat1}, orb.Point{lng2, lat2}) / 1000
}

// ResolveNearby returns businesses within radiusKm of (lat, lng), nearest
// first, at most limit of them. Records without coordinates are skipped.
// Only invalid input is reported as an error; backend failures yield an
// empty result like ResolveCategory.
func (r *Resolver) ResolveNearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]Nearby, error) {
	if !ValidCoordinates(lat, lng) {
		return nil, fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinates, lat, lng)
	}
	if radiusKm <= 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return nil, fmt.Errorf("%w: radius must be positive", ErrInvalidCoordinates)
	}
	if limit <= 0 {
		limit = r.cfg.DefaultLimit
	}

	key := LocationKey(lat, lng, radiusKm)
	all, ok := cache.GetAs[[]Nearby](r.cache, key)
	if !ok {
		var err error
		all, err = r.scanNearby(ctx, lat, lng, radiusKm)
		if err != nil {
			apperr.Report(r.log, err, "Nearby lookup failed", "lat", lat, "lng", lng)
			return []Nearby{}, nil
		}
		r.cache.Set(key, all, r.cfg.TTL)
	}

	n := min(len(all), limit)
	out := make([]Nearby, n)
	copy(out, all[:n])
	return out, nil
}

func (r *Resolver) scanNearby(ctx context.Context, lat, lng, radiusKm float64) ([]Nearby, error) {
	q := r.client.From(r.cfg.Table).Select("*").Limit(r.cfg.GeoScanLimit)
	rows, err := remote.Execute(ctx, r.exec, "resolve.nearby", func(ctx context.Context) ([]backend.Row, error) {
		return q.Execute(ctx).Result()
	})
	if err != nil {
		return nil, err
	}

	out := make([]Nearby, 0)
	for _, b := range r.normalizer.Businesses(rows, "") {
		if !b.HasLocation() || !ValidCoordinates(*b.Latitude, *b.Longitude) {
			continue
		}
		d := DistanceKm(lat, lng, *b.Latitude, *b.Longitude)
		if d <= radiusKm {
			out = append(out, Nearby{Business: b, DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}
