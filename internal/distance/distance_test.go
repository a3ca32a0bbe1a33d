package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parcelworks/siteassess/internal/model"
)

func TestMeters_Symmetric(t *testing.T) {
	a := model.Coordinate{Lng: 116.404, Lat: 39.915}
	b := model.Coordinate{Lng: 116.414, Lat: 39.925}

	assert.InDelta(t, Meters(a, b), Meters(b, a), 1e-9)
}

func TestMeters_ZeroAtSamePoint(t *testing.T) {
	a := model.Coordinate{Lng: 116.404, Lat: 39.915}

	assert.Equal(t, 0.0, Meters(a, a))
}

func TestMeters_KnownDistance(t *testing.T) {
	// Beijing to Shanghai is roughly 1068 km great-circle.
	beijing := model.Coordinate{Lng: 116.404, Lat: 39.915}
	shanghai := model.Coordinate{Lng: 121.474, Lat: 31.230}

	d := Meters(beijing, shanghai)
	assert.InDelta(t, 1_068_000, d, 10_000)
}

func TestRoundKilometers(t *testing.T) {
	tests := []struct {
		meters float64
		want   float64
	}{
		{1234, 1.2},
		{999, 1.0},
		{300, 0.3},
		{1550, 1.6},
		{0, 0.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundKilometers(tt.meters), 1e-9, "meters=%v", tt.meters)
	}
}

func TestRoundMeters(t *testing.T) {
	tests := []struct {
		meters float64
		want   int
	}{
		{1234, 1200},
		{1250, 1300}, // exact .5 boundary rounds away from zero
		{1249, 1200},
		{49, 0},
		{50, 100},
		{300, 300},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundMeters(tt.meters), "meters=%v", tt.meters)
	}
}

func TestUnitFor(t *testing.T) {
	assert.Equal(t, UnitKilometers, UnitFor(model.FieldMallDistance))
	assert.Equal(t, UnitMeters, UnitFor(model.FieldRailDistance))
	assert.Equal(t, UnitMeters, UnitFor(model.FieldBusStopDistance))
}

func TestRender(t *testing.T) {
	assert.Equal(t, "0.3公里", Render(300, UnitKilometers))
	assert.Equal(t, "1.0公里", Render(999, UnitKilometers))
	assert.Equal(t, "300米", Render(300, UnitMeters))
	assert.Equal(t, "1300米", Render(1250, UnitMeters))
}
