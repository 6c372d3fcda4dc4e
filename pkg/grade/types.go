// Package grade provides climbing-grade vocabularies and conversion.
//
// Each climb type has two parallel grade vocabularies (boulder: V-scale and
// Fontainebleau; routes: YDS and French). Conversion between them is by index
// position within the ordered vocabularies, and the normalized index (a
// grade's position within the type's default vocabulary) is the single total
// order used for every "is harder than" comparison.
//
// Example usage:
//
//	idx := grade.NormalizedIndex("6B", grade.TypeBoulder) // font 6B sits at rank 7
//	g := grade.Convert("V6", grade.TypeBoulder, grade.SystemVScale, grade.SystemFont)
package grade

// Type identifies a kind of climbing.
type Type string

const (
	// TypeBoulder is bouldering.
	TypeBoulder Type = "boulder"

	// TypeSport is sport (bolted) route climbing.
	TypeSport Type = "sport"

	// TypeTrad is traditional route climbing.
	TypeTrad Type = "trad"
)

// Types returns all climb types in their fixed enumeration order.
func Types() []Type {
	return []Type{TypeBoulder, TypeSport, TypeTrad}
}

// Valid reports whether t is a known climb type.
func (t Type) Valid() bool {
	return t == TypeBoulder || t == TypeSport || t == TypeTrad
}

// IsRoute reports whether t uses route grade vocabularies.
func (t Type) IsRoute() bool {
	return t == TypeSport || t == TypeTrad
}

// Label returns the capitalized display label for t.
func (t Type) Label() string {
	switch t {
	case TypeBoulder:
		return "Boulder"
	case TypeSport:
		return "Sport"
	case TypeTrad:
		return "Trad"
	default:
		return string(t)
	}
}

// System identifies a grade vocabulary.
type System string

const (
	// SystemVScale is the Hueco V-scale for boulders.
	SystemVScale System = "vscale"

	// SystemFont is the Fontainebleau scale for boulders.
	SystemFont System = "font"

	// SystemYDS is the Yosemite Decimal System for routes.
	SystemYDS System = "yds"

	// SystemFrench is the French sport scale for routes.
	SystemFrench System = "french"
)

// Settings holds the user's preferred display vocabularies.
//
// Settings only affect display-time conversion; stored grade strings are
// never rewritten to a different vocabulary.
type Settings struct {
	// BoulderSystem is the vocabulary boulder grades are displayed in.
	BoulderSystem System `json:"boulderSystem" yaml:"boulder_system"`

	// RouteSystem is the vocabulary sport and trad grades are displayed in.
	RouteSystem System `json:"routeSystem" yaml:"route_system"`
}

// DefaultSettings returns display settings using each type's default system.
func DefaultSettings() Settings {
	return Settings{
		BoulderSystem: SystemVScale,
		RouteSystem:   SystemYDS,
	}
}

// SystemFor returns the preferred display system for the given climb type.
func (s Settings) SystemFor(t Type) System {
	if t.IsRoute() {
		return s.RouteSystem
	}
	return s.BoulderSystem
}

// Valid reports whether both preferred systems match their climb types.
func (s Settings) Valid() bool {
	return (s.BoulderSystem == SystemVScale || s.BoulderSystem == SystemFont) &&
		(s.RouteSystem == SystemYDS || s.RouteSystem == SystemFrench)
}
