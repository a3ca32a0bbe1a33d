// Package handler maps field names to the functions that turn raw POI data
// into formatted assessment text. Dispatch is a registered table keyed by
// field name; new fields are added by registration, not by editing a
// dispatcher.
package handler

import (
	"github.com/rotisserie/eris"

	"github.com/parcelworks/siteassess/internal/classify"
	"github.com/parcelworks/siteassess/internal/model"
)

// Context carries everything a handler may consume for one (address, field)
// pair. Handlers are pure: they read the context and return text.
type Context struct {
	// Raw holds the field's POI search results by category; nil for fields
	// that run no searches.
	Raw              model.POISet
	Origin           model.Coordinate
	District         string
	FormattedAddress string
	AddressName      string
	Field            model.FieldDescriptor
	// Rules is the comparison rule set bound to the field's original index;
	// nil when the field has no rules configured.
	Rules classify.RuleSet
}

// Func produces the formatted text for one field of one address.
type Func func(Context) string

// nearestDistanceFields are the fields rendered by the generic
// nearest-POI distance handler.
var nearestDistanceFields = map[string]bool{
	model.FieldMallDistance:      true,
	model.FieldBusStopDistance:   true,
	model.FieldRailDistance:      true,
	model.FieldBizCenterDistance: true,
	model.FieldTrainDistance:     true,
	model.FieldFreightRail:       true,
	model.FieldFreightPort:       true,
	model.FieldCoachDistance:     true,
	model.FieldAirportDistance:   true,
	model.FieldHighwayDistance:   true,
}

// Registry is the fixed field-name → handler mapping.
type Registry struct {
	table    *model.FieldTable
	handlers map[string]Func
}

// NewRegistry builds the handler table for every field the table recognizes.
func NewRegistry(table *model.FieldTable) *Registry {
	r := &Registry{
		table:    table,
		handlers: make(map[string]Func, len(table.Specs())),
	}

	for _, spec := range table.Specs() {
		switch {
		case nearestDistanceFields[spec.Name]:
			r.handlers[spec.Name] = nearestDistance(spec)
		case spec.Name == model.FieldCommercialDensity:
			r.handlers[spec.Name] = commercialDensity(spec)
		case spec.Name == model.FieldBizDensity:
			r.handlers[spec.Name] = businessDensity(spec)
		case spec.Name == model.FieldPassengerFlow:
			r.handlers[spec.Name] = passengerFlow(spec)
		case spec.Name == model.FieldResidential:
			r.handlers[spec.Name] = residentialAmbiance(spec)
		case spec.Name == model.FieldRoadAccess, spec.Name == model.FieldStreetFront:
			r.handlers[spec.Name] = roadAccess(spec)
		case spec.Name == model.FieldTransitLines:
			r.handlers[spec.Name] = transitLines(spec)
		case spec.Name == model.FieldPublicFacility:
			r.handlers[spec.Name] = publicFacility(spec)
		case spec.Name == model.FieldLocation:
			r.handlers[spec.Name] = location()
		}
	}

	return r
}

// Validate checks that every enabled descriptor names a registered handler.
// Unknown fields are a configuration error surfaced before any network work,
// so a bad config cannot corrupt report columns at runtime.
func (r *Registry) Validate(fields []model.FieldDescriptor) error {
	if err := model.ValidateFields(fields, r.table); err != nil {
		return err
	}
	for _, f := range fields {
		if !f.Enabled {
			continue
		}
		if _, ok := r.handlers[f.Name]; !ok {
			return eris.Errorf("handler: no handler registered for field %q", f.Name)
		}
	}
	return nil
}

// Handle dispatches the context to the field's handler.
func (r *Registry) Handle(fieldName string, c Context) (string, error) {
	h, ok := r.handlers[fieldName]
	if !ok {
		return "", eris.Errorf("handler: no handler registered for field %q", fieldName)
	}
	return h(c), nil
}
