package model

// Coordinate is a longitude/latitude pair in the provider's coordinate system.
type Coordinate struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// PointOfInterest is a single place returned by a nearby search.
type PointOfInterest struct {
	Name     string     `json:"name"`
	Location Coordinate `json:"location"`
	// Distance is the provider-reported distance from the search origin in
	// meters. Nil when the provider omitted it; such POIs sort last.
	Distance *float64 `json:"distance,omitempty"`
	Address  string   `json:"address,omitempty"`
}

// POISet holds the search results a field depends on, keyed by category.
// Single-category fields have exactly one entry.
type POISet map[string][]PointOfInterest

// LocationContext is the raw geospatial context fetched for one address.
// Immutable after creation; FieldData is keyed by field name.
type LocationContext struct {
	Address          string
	Coordinate       Coordinate
	FormattedAddress string
	District         string
	FieldData        map[string]POISet
}

// ReportedDistance returns the provider-reported distance or +Inf when absent.
func (p PointOfInterest) ReportedDistance() float64 {
	if p.Distance == nil {
		return inf
	}
	return *p.Distance
}

// NearestPOI returns the POI with the smallest provider-reported distance,
// or false when the list is empty. POIs without a reported distance are only
// picked when no POI carries one.
func NearestPOI(pois []PointOfInterest) (PointOfInterest, bool) {
	if len(pois) == 0 {
		return PointOfInterest{}, false
	}
	best := pois[0]
	for _, p := range pois[1:] {
		if p.ReportedDistance() < best.ReportedDistance() {
			best = p
		}
	}
	return best, true
}
