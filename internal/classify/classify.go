// Package classify assigns qualitative level labels to rendered distance
// magnitudes using ordered half-open intervals.
package classify

import (
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"
)

// Level is a named half-open interval [Min, Max). A nil bound is unbounded.
type Level struct {
	Name string   `mapstructure:"name" json:"name"`
	Min  *float64 `mapstructure:"min" json:"min,omitempty"`
	Max  *float64 `mapstructure:"max" json:"max,omitempty"`
}

// RuleSet is an ordered list of levels. Order is first-class: levels are
// evaluated in declaration order and the first match wins, which lets rule
// authors express priority when intervals overlap.
type RuleSet []Level

// magnitudeRe extracts the leading decimal value and unit token from a
// rendered magnitude such as "300米" or "1.2公里".
var magnitudeRe = regexp.MustCompile(`^(\d+\.?\d*)(公里|米)`)

// Classify parses the leading magnitude out of rendered text and returns the
// name of the first matching level, or "" when no level matches or the text
// is unparsable. Intervals are closed on the lower bound and open on the
// upper bound, so a value equal to a boundary belongs to the higher interval.
func Classify(rendered string, rules RuleSet) string {
	m := magnitudeRe.FindStringSubmatch(rendered)
	if m == nil {
		return ""
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return ""
	}

	for _, level := range rules {
		lowerOK := level.Min == nil || value >= *level.Min
		upperOK := level.Max == nil || value < *level.Max
		if lowerOK && upperOK {
			return level.Name
		}
	}
	return ""
}

// Validate rejects levels whose bounds are inverted (min >= max).
func (rs RuleSet) Validate() error {
	for _, level := range rs {
		if level.Min != nil && level.Max != nil && *level.Min >= *level.Max {
			return eris.Errorf("classify: level %q has an empty interval [%v, %v)", level.Name, *level.Min, *level.Max)
		}
	}
	return nil
}
