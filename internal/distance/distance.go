// Package distance computes great-circle distances between coordinates and
// renders them under the report's fixed rounding rules.
package distance

import (
	"fmt"
	"math"
	"strings"

	h3 "github.com/uber/h3-go/v4"

	"github.com/parcelworks/siteassess/internal/model"
)

// Unit tokens recognized in field display names and rendered magnitudes.
const (
	UnitKilometers = "公里"
	UnitMeters     = "米"
)

// Meters returns the great-circle distance between two coordinates in meters.
func Meters(a, b model.Coordinate) float64 {
	return h3.GreatCircleDistanceM(
		h3.NewLatLng(a.Lat, a.Lng),
		h3.NewLatLng(b.Lat, b.Lng),
	)
}

// RoundKilometers converts meters to kilometers rounded to one decimal place.
// Rounding is half-away-from-zero: 1234m -> 1.2, 950m -> 1.0.
func RoundKilometers(meters float64) float64 {
	return math.Round(meters/100) / 10
}

// RoundMeters rounds meters to the nearest multiple of 100. The exact .5
// boundary rounds up: 1250 -> 1300, never 1200 (math.Round is
// half-away-from-zero, pinned by tests).
func RoundMeters(meters float64) int {
	return int(math.Round(meters/100)) * 100
}

// UnitFor picks the render unit from a field display name: fields whose name
// carries the 公里 token render in kilometers, everything else in meters.
func UnitFor(fieldName string) string {
	if strings.Contains(fieldName, UnitKilometers) {
		return UnitKilometers
	}
	return UnitMeters
}

// Render formats a distance in the given unit, e.g. "0.3公里" or "300米".
func Render(meters float64, unit string) string {
	if unit == UnitKilometers {
		return fmt.Sprintf("%.1f%s", RoundKilometers(meters), UnitKilometers)
	}
	return fmt.Sprintf("%d%s", RoundMeters(meters), UnitMeters)
}
