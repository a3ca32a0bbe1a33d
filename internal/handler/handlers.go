package handler

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/parcelworks/siteassess/internal/classify"
	"github.com/parcelworks/siteassess/internal/distance"
	"github.com/parcelworks/siteassess/internal/model"
)

// nearestDistance renders the distance to the nearest POI of the field's
// category. The geodesic distance is recomputed from the origin rather than
// trusting the provider-reported value, then rendered in the unit named by
// the field and classified against the field's rule set.
func nearestDistance(spec model.FieldSpec) Func {
	category := spec.Categories[0]
	unit := distance.UnitFor(spec.Name)

	return func(c Context) string {
		poi, ok := model.NearestPOI(c.Raw[category])
		if !ok {
			return "无" + spec.Label
		}

		meters := distance.Meters(c.Origin, poi.Location)
		rendered := distance.Render(meters, unit)
		text := fmt.Sprintf("距离%s%s", poi.Name, rendered)

		if level := classify.Classify(rendered, c.Rules); level != "" {
			text += "，" + level
		}
		return text
	}
}

// commercialDensity reports the nearest POI name per sub-category (mall,
// supermarket, convenience store), deduplicated, up to three samples.
func commercialDensity(spec model.FieldSpec) Func {
	return func(c Context) string {
		names := dedupe(nearestNames(c.Raw, spec.Categories))
		if len(names) == 0 {
			return "无" + spec.Label
		}
		if len(names) > 3 {
			names = names[:3]
		}
		return fmt.Sprintf("周边有%s等%s", strings.Join(names, "、"), spec.Label)
	}
}

// businessDensity reports the nearest office-building POI.
func businessDensity(spec model.FieldSpec) Func {
	category := spec.Categories[0]
	return func(c Context) string {
		poi, ok := model.NearestPOI(c.Raw[category])
		if !ok {
			return "无" + spec.Label
		}
		return fmt.Sprintf("周边有%s等%s", poi.Name, spec.Label)
	}
}

// passengerFlow reports the administrative district, plus the nearest school
// when one was found.
func passengerFlow(spec model.FieldSpec) Func {
	category := spec.Categories[0]
	return func(c Context) string {
		if poi, ok := model.NearestPOI(c.Raw[category]); ok {
			return fmt.Sprintf("位于%s，靠近%s", c.District, poi.Name)
		}
		return "位于" + c.District
	}
}

// residentialAmbiance reports up to two nearest residential-compound names
// by provider-reported distance.
func residentialAmbiance(spec model.FieldSpec) Func {
	category := spec.Categories[0]
	return func(c Context) string {
		pois := append([]model.PointOfInterest(nil), c.Raw[category]...)
		if len(pois) == 0 {
			return "无" + spec.Label
		}
		sort.SliceStable(pois, func(i, j int) bool {
			return pois[i].ReportedDistance() < pois[j].ReportedDistance()
		})
		if len(pois) > 2 {
			pois = pois[:2]
		}
		names := make([]string, len(pois))
		for i, p := range pois {
			names[i] = p.Name
		}
		return fmt.Sprintf("周边有%s等%s", strings.Join(names, "、"), spec.Label)
	}
}

// roadAccess reports up to two deduplicated road names.
func roadAccess(spec model.FieldSpec) Func {
	category := spec.Categories[0]
	return func(c Context) string {
		pois := c.Raw[category]
		if len(pois) > 2 {
			pois = pois[:2]
		}
		names := make([]string, 0, len(pois))
		for _, p := range pois {
			names = append(names, p.Name)
		}
		names = dedupe(names)
		if len(names) == 0 {
			return "无道路信息"
		}
		return "周边有" + strings.Join(names, "、")
	}
}

// routePattern matches bus route tokens such as "338路" in POI address text.
var routePattern = regexp.MustCompile(`\d+路`)

// transitLines counts distinct bus route tokens found in POI address text and
// reports up to five samples in lexicographic order.
func transitLines(spec model.FieldSpec) Func {
	category := spec.Categories[0]
	return func(c Context) string {
		seen := make(map[string]bool)
		for _, poi := range c.Raw[category] {
			for _, route := range routePattern.FindAllString(poi.Address, -1) {
				seen[route] = true
			}
		}
		if len(seen) == 0 {
			return "无" + spec.Label
		}

		routes := make([]string, 0, len(seen))
		for route := range seen {
			routes = append(routes, route)
		}
		sort.Strings(routes)

		samples := routes
		if len(samples) > 5 {
			samples = samples[:5]
		}
		return fmt.Sprintf("附近有%s等%d条%s", strings.Join(samples, "、"), len(routes), spec.Label)
	}
}

// publicFacility averages the recomputed geodesic distance to the nearest POI
// of each sub-category that returned results, renders the average in
// kilometers, and classifies it against the field's rule set.
func publicFacility(spec model.FieldSpec) Func {
	return func(c Context) string {
		var names []string
		var total float64
		for _, cat := range spec.Categories {
			poi, ok := model.NearestPOI(c.Raw[cat])
			if !ok {
				continue
			}
			total += distance.Meters(c.Origin, poi.Location)
			names = append(names, poi.Name)
		}
		if len(names) == 0 {
			return "无" + spec.Label
		}

		avg := total / float64(len(names))
		rendered := distance.Render(avg, distance.UnitKilometers)

		if len(names) > 4 {
			names = names[:4]
		}
		text := fmt.Sprintf("周边有%s等，平均距离%s", strings.Join(names, "、"), rendered)

		if level := classify.Classify(rendered, c.Rules); level != "" {
			text += "，" + level
		}
		return text
	}
}

// location passes through the formatted address, falling back to the input
// address string when reverse geocoding produced nothing.
func location() Func {
	return func(c Context) string {
		if c.FormattedAddress != "" {
			return c.FormattedAddress
		}
		return c.AddressName
	}
}

// nearestNames collects the nearest POI name per category, in category order.
func nearestNames(set model.POISet, categories []string) []string {
	var names []string
	for _, cat := range categories {
		if poi, ok := model.NearestPOI(set[cat]); ok {
			names = append(names, poi.Name)
		}
	}
	return names
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
