package entity

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// UnnamedArea is the display name used when no name attribute is present.
const UnnamedArea = "Unnamed area"

// nameAttributeKeys is the fixed priority list for resolving an area's
// display name from its attribute bag. First non-empty match wins.
var nameAttributeKeys = []string{"name", "NAME", "Name", "title", "label"}

// CandidateArea is a named sub-region polygon from the static boundary
// dataset. The geometry is normalized to a MultiPolygon at load time and
// treated as immutable for the process lifetime.
type CandidateArea struct {
	ID         string
	Region     orb.MultiPolygon
	Properties geojson.Properties
}

// DisplayName resolves the area's display name from its attribute bag
// using the fixed key priority list.
func (a *CandidateArea) DisplayName() string {
	for _, key := range nameAttributeKeys {
		value, ok := a.Properties[key]
		if !ok {
			continue
		}

		name, ok := value.(string)
		if !ok {
			continue
		}

		if trimmed := strings.TrimSpace(name); trimmed != "" {
			return trimmed
		}
	}

	return UnnamedArea
}

// AreaMatch is one matched sub-area in a catchment result. Names are
// unique within a result set.
type AreaMatch struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
}
