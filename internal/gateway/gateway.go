// Package gateway wraps the map provider client behind process-lifetime
// memoizing caches. It is the only network-facing component of the pipeline;
// provider failures degrade to absent/empty results and never propagate.
package gateway

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/parcelworks/siteassess/internal/model"
	"github.com/parcelworks/siteassess/internal/retry"
	"github.com/parcelworks/siteassess/pkg/baidu"
)

// Gateway memoizes geocoding, reverse geocoding, and POI searches. Caches are
// keyed by exact input, populated monotonically, and never evicted; a
// singleflight group guarantees at most one inflight provider call per key
// under concurrent access.
type Gateway struct {
	client baidu.Client
	table  *model.FieldTable

	mu       sync.RWMutex
	geocodes map[string]model.Coordinate
	reverses map[string]baidu.ReverseResult
	pois     map[string][]model.PointOfInterest

	flight singleflight.Group
	retry  retry.Config
}

// Option configures the gateway.
type Option func(*Gateway)

// WithRetry overrides the default provider retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(g *Gateway) {
		g.retry = cfg
	}
}

// New creates a Gateway over the given provider client and field table.
func New(client baidu.Client, table *model.FieldTable, opts ...Option) *Gateway {
	g := &Gateway{
		client:   client,
		table:    table,
		geocodes: make(map[string]model.Coordinate),
		reverses: make(map[string]baidu.ReverseResult),
		pois:     make(map[string][]model.PointOfInterest),
		retry:    retry.DefaultConfig(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Geocode resolves an address to a coordinate, caching by the exact address
// string. Returns false on provider failure; callers skip the address.
func (g *Gateway) Geocode(ctx context.Context, address string) (model.Coordinate, bool) {
	g.mu.RLock()
	coord, ok := g.geocodes[address]
	g.mu.RUnlock()
	if ok {
		return coord, true
	}

	v, err, _ := g.flight.Do("geo|"+address, func() (any, error) {
		cfg := g.retry
		cfg.OnRetry = retry.Logger("geocode")
		c, err := retry.DoVal(ctx, cfg, func(ctx context.Context) (*model.Coordinate, error) {
			return g.client.Geocode(ctx, address)
		})
		if err != nil {
			return nil, err
		}
		g.mu.Lock()
		g.geocodes[address] = *c
		g.mu.Unlock()
		return *c, nil
	})
	if err != nil {
		zap.L().Warn("gateway: geocode failed",
			zap.String("address", address),
			zap.Error(err),
		)
		return model.Coordinate{}, false
	}
	return v.(model.Coordinate), true
}

// ReverseGeocode resolves a coordinate to a formatted address and district,
// caching by the coordinate pair. Failures return an empty result.
func (g *Gateway) ReverseGeocode(ctx context.Context, coord model.Coordinate) baidu.ReverseResult {
	key := fmt.Sprintf("rev|%v,%v", coord.Lng, coord.Lat)

	g.mu.RLock()
	res, ok := g.reverses[key]
	g.mu.RUnlock()
	if ok {
		return res
	}

	v, err, _ := g.flight.Do(key, func() (any, error) {
		cfg := g.retry
		cfg.OnRetry = retry.Logger("reverse_geocode")
		r, err := retry.DoVal(ctx, cfg, func(ctx context.Context) (*baidu.ReverseResult, error) {
			return g.client.ReverseGeocode(ctx, coord)
		})
		if err != nil {
			return nil, err
		}
		g.mu.Lock()
		g.reverses[key] = *r
		g.mu.Unlock()
		return *r, nil
	})
	if err != nil {
		zap.L().Warn("gateway: reverse geocode failed",
			zap.Float64("lng", coord.Lng),
			zap.Float64("lat", coord.Lat),
			zap.Error(err),
		)
		return baidu.ReverseResult{}
	}
	return v.(baidu.ReverseResult)
}

// SearchPOI runs a radius category search, caching by (category, coordinate,
// radius). Results are sorted ascending by provider-reported distance with
// unknown distances last. Any failure yields an empty list.
func (g *Gateway) SearchPOI(ctx context.Context, category string, coord model.Coordinate, radiusMeters int) []model.PointOfInterest {
	key := fmt.Sprintf("poi|%s|%v,%v|%d", category, coord.Lng, coord.Lat, radiusMeters)

	g.mu.RLock()
	cached, ok := g.pois[key]
	g.mu.RUnlock()
	if ok {
		return cached
	}

	v, err, _ := g.flight.Do(key, func() (any, error) {
		cfg := g.retry
		cfg.OnRetry = retry.Logger("place_search")
		results, err := retry.DoVal(ctx, cfg, func(ctx context.Context) ([]model.PointOfInterest, error) {
			return g.client.SearchNearby(ctx, category, coord, radiusMeters)
		})
		if err != nil {
			return nil, err
		}
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].ReportedDistance() < results[j].ReportedDistance()
		})
		g.mu.Lock()
		g.pois[key] = results
		g.mu.Unlock()
		return results, nil
	})
	if err != nil {
		zap.L().Warn("gateway: poi search failed",
			zap.String("category", category),
			zap.Int("radius_m", radiusMeters),
			zap.Error(err),
		)
		return nil
	}
	return v.([]model.PointOfInterest)
}

// FetchContext gathers the full raw context for one address: coordinate,
// formatted address, district, and per-field POI search results for every
// enabled descriptor. Returns nil when geocoding fails; individual search
// failures degrade that field's data to empty rather than aborting.
func (g *Gateway) FetchContext(ctx context.Context, address string, fields []model.FieldDescriptor) *model.LocationContext {
	coord, ok := g.Geocode(ctx, address)
	if !ok {
		return nil
	}

	rev := g.ReverseGeocode(ctx, coord)

	fieldData := make(map[string]model.POISet)
	for _, f := range fields {
		if !f.Enabled {
			continue
		}
		spec, ok := g.table.Lookup(f.Name)
		if !ok || len(spec.Categories) == 0 {
			continue
		}
		set := make(model.POISet, len(spec.Categories))
		for _, cat := range spec.Categories {
			set[cat] = g.SearchPOI(ctx, cat, coord, f.Radius)
		}
		fieldData[f.Name] = set
	}

	return &model.LocationContext{
		Address:          address,
		Coordinate:       coord,
		FormattedAddress: rev.FormattedAddress,
		District:         rev.District,
		FieldData:        fieldData,
	}
}
