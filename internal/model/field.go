package model

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
)

var inf = math.Inf(1)

// Recognized field names. The set is closed: configuration referring to any
// other name is rejected when the handler registry is built.
const (
	FieldLocation          = "位置"
	FieldMallDistance      = "距最近商服中心的距离(公里)"
	FieldCommercialDensity = "商服网点聚集程度"
	FieldPassengerFlow     = "客流数量"
	FieldResidential       = "居住氛围"
	FieldRoadAccess        = "道路通达程度"
	FieldStreetFront       = "临街（路）状况"
	FieldTransitLines      = "X米半径范围内公共交通线路数"
	FieldBusStopDistance   = "距公交站点距离（米）"
	FieldRailDistance      = "距轨道站点距离（米）"
	FieldPublicFacility    = "公用设施条件(公里)"
	FieldBizCenterDistance = "距商务中心的距离(公里)"
	FieldBizDensity        = "商务聚集程度"
	FieldTrainDistance     = "距火车站的距离(公里)"
	FieldFreightRail       = "距最近货运火车站的距离(公里)"
	FieldFreightPort       = "距最近货运港口的距离(公里)"
	FieldCoachDistance     = "距长途车站/客运站点距离(公里)"
	FieldAirportDistance   = "距机场的距离(公里)"
	FieldHighwayDistance   = "距高速公路出入口的距离(公里)"
)

// TitleField is the leading column of every record.
const TitleField = "名称"

// FieldSpec describes one recognized field: its stable identity, the POI
// searches it needs, and the label used when rendering its text.
type FieldSpec struct {
	OriginalIndex  int
	Name           string
	RequiresRadius bool
	// Categories are the provider search keywords the field depends on.
	// Empty for purely contextual fields (位置).
	Categories []string
	// Label names the POI kind in rendered text ("无<Label>" on empty results).
	Label string
}

// FieldTable is the closed set of recognized fields, indexed by name.
type FieldTable struct {
	specs  []FieldSpec
	byName map[string]FieldSpec
}

// NewFieldTable creates a FieldTable with indexed lookup by name.
func NewFieldTable(specs []FieldSpec) *FieldTable {
	t := &FieldTable{
		specs:  specs,
		byName: make(map[string]FieldSpec, len(specs)),
	}
	for _, s := range specs {
		t.byName[s.Name] = s
	}
	return t
}

// Lookup returns the spec for the given field name.
func (t *FieldTable) Lookup(name string) (FieldSpec, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// Specs returns all specs in declaration order.
func (t *FieldTable) Specs() []FieldSpec {
	return t.specs
}

// DefaultFieldTable returns the standard field set for assessment reports.
func DefaultFieldTable() *FieldTable {
	return NewFieldTable([]FieldSpec{
		{OriginalIndex: 0, Name: FieldLocation},
		{OriginalIndex: 1, Name: FieldMallDistance, RequiresRadius: true, Categories: []string{"商场"}, Label: "商场"},
		{OriginalIndex: 2, Name: FieldCommercialDensity, RequiresRadius: true, Categories: []string{"商场", "超市", "便利店"}, Label: "商服网点"},
		{OriginalIndex: 3, Name: FieldPassengerFlow, RequiresRadius: true, Categories: []string{"学校"}, Label: "学校"},
		{OriginalIndex: 4, Name: FieldResidential, RequiresRadius: true, Categories: []string{"小区"}, Label: "居住小区"},
		{OriginalIndex: 5, Name: FieldRoadAccess, RequiresRadius: true, Categories: []string{"道路"}, Label: "道路"},
		{OriginalIndex: 6, Name: FieldStreetFront, RequiresRadius: true, Categories: []string{"道路"}, Label: "道路"},
		{OriginalIndex: 7, Name: FieldTransitLines, RequiresRadius: true, Categories: []string{"公交"}, Label: "公交线路"},
		{OriginalIndex: 8, Name: FieldBusStopDistance, RequiresRadius: true, Categories: []string{"公交站"}, Label: "公交站"},
		{OriginalIndex: 9, Name: FieldRailDistance, RequiresRadius: true, Categories: []string{"地铁站"}, Label: "地铁站"},
		{OriginalIndex: 10, Name: FieldPublicFacility, RequiresRadius: true, Categories: []string{"医院", "学校", "银行", "公园"}, Label: "公用设施"},
		{OriginalIndex: 11, Name: FieldBizCenterDistance, RequiresRadius: true, Categories: []string{"商务中心"}, Label: "商务中心"},
		{OriginalIndex: 12, Name: FieldBizDensity, RequiresRadius: true, Categories: []string{"写字楼"}, Label: "商务中心"},
		{OriginalIndex: 13, Name: FieldTrainDistance, RequiresRadius: true, Categories: []string{"火车站"}, Label: "火车站"},
		{OriginalIndex: 14, Name: FieldFreightRail, RequiresRadius: true, Categories: []string{"货运站"}, Label: "货运站"},
		{OriginalIndex: 15, Name: FieldFreightPort, RequiresRadius: true, Categories: []string{"港口"}, Label: "货运港口"},
		{OriginalIndex: 16, Name: FieldCoachDistance, RequiresRadius: true, Categories: []string{"汽车站"}, Label: "长途汽车站"},
		{OriginalIndex: 17, Name: FieldAirportDistance, RequiresRadius: true, Categories: []string{"机场"}, Label: "机场"},
		{OriginalIndex: 18, Name: FieldHighwayDistance, RequiresRadius: true, Categories: []string{"高速出口"}, Label: "高速出口"},
	})
}

// FieldDescriptor is externally supplied per-field configuration. The
// original index is the field's stable identity (comparison rule lookup key);
// the display index is its presentation order and may change between runs.
type FieldDescriptor struct {
	OriginalIndex int    `mapstructure:"original_index" json:"original_index"`
	Name          string `mapstructure:"name" json:"name"`
	Enabled       bool   `mapstructure:"enabled" json:"enabled"`
	Radius        int    `mapstructure:"radius" json:"radius"`
	DisplayIndex  int    `mapstructure:"display_index" json:"display_index"`
}

// DefaultDescriptors enables every known field with serviceable search
// radii, in original order. Callers usually override this from config.
func DefaultDescriptors() []FieldDescriptor {
	radii := map[string]int{
		FieldMallDistance:      5000,
		FieldCommercialDensity: 1000,
		FieldPassengerFlow:     1000,
		FieldResidential:       1000,
		FieldRoadAccess:        500,
		FieldStreetFront:       500,
		FieldTransitLines:      500,
		FieldBusStopDistance:   1000,
		FieldRailDistance:      2000,
		FieldPublicFacility:    3000,
		FieldBizCenterDistance: 5000,
		FieldBizDensity:        2000,
		FieldTrainDistance:     20000,
		FieldFreightRail:       30000,
		FieldFreightPort:       50000,
		FieldCoachDistance:     20000,
		FieldAirportDistance:   50000,
		FieldHighwayDistance:   10000,
	}

	specs := DefaultFieldTable().Specs()
	out := make([]FieldDescriptor, 0, len(specs))
	for _, spec := range specs {
		out = append(out, FieldDescriptor{
			OriginalIndex: spec.OriginalIndex,
			Name:          spec.Name,
			Enabled:       true,
			Radius:        radii[spec.Name],
			DisplayIndex:  spec.OriginalIndex,
		})
	}
	return out
}

// EnabledFields filters descriptors to enabled ones, sorted by display index.
func EnabledFields(fields []FieldDescriptor) []FieldDescriptor {
	var enabled []FieldDescriptor
	for _, f := range fields {
		if f.Enabled {
			enabled = append(enabled, f)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].DisplayIndex < enabled[j].DisplayIndex
	})
	return enabled
}

/// ValidateFields checks descriptors against the field table: every name must
// be recognized, and every enabled radius-requiring field must carry one.
func ValidateFields(fields []FieldDescriptor, table *FieldTable) error {
	for _, f := range fields {
		spec, ok := table.Lookup(f.Name)
		if !ok {
			return eris.Errorf("model: unrecognized field %q (original index %d)", f.Name, f.OriginalIndex)
		}
		if f.Enabled && spec.RequiresRadius && f.Radius <= 0 {
			return eris.Errorf("model: field %q requires a search radius", f.Name)
		}
	}
	return nil
}
