package grade

// Ordered vocabularies. The slice index is the difficulty rank within the
// system; conversion maps by index equality, so relative order here is the
// entire crosswalk. The two vocabularies of a type have different lengths,
// which makes tail grades unconvertible on purpose.
var (
	vscaleGrades = []string{
		"VB", "V0", "V1", "V2", "V3", "V4", "V5", "V6", "V7", "V8",
		"V9", "V10", "V11", "V12", "V13", "V14", "V15", "V16", "V17",
	}

	fontGrades = []string{
		"3", "4", "4+", "5", "5+", "6A", "6A+", "6B", "6B+", "6C",
		"6C+", "7A", "7A+", "7B", "7B+", "7C", "7C+", "8A", "8A+", "8B",
		"8B+", "8C", "8C+", "9A",
	}

	ydsGrades = []string{
		"5.4", "5.5", "5.6", "5.7", "5.8", "5.9",
		"5.10a", "5.10b", "5.10c", "5.10d",
		"5.11a", "5.11b", "5.11c", "5.11d",
		"5.12a", "5.12b", "5.12c", "5.12d",
		"5.13a", "5.13b", "5.13c", "5.13d",
		"5.14a", "5.14b", "5.14c", "5.14d",
		"5.15a", "5.15b", "5.15c", "5.15d",
	}

	frenchGrades = []string{
		"4a", "4b", "4c", "5a", "5b", "5c",
		"6a", "6a+", "6b", "6b+", "6c", "6c+",
		"7a", "7a+", "7b", "7b+", "7c", "7c+",
		"8a", "8a+", "8b", "8b+", "8c", "8c+",
		"9a", "9a+", "9b", "9b+", "9c",
	}
)

// DefaultSystem returns the default vocabulary for a climb type.
//
// The default system defines the normalized index, so it is also the
// fail-open assumption for unknown grade strings.
func DefaultSystem(t Type) System {
	if t.IsRoute() {
		return SystemYDS
	}
	return SystemVScale
}

// SystemsFor returns a type's vocabularies, default system first.
func SystemsFor(t Type) []System {
	if t.IsRoute() {
		return []System{SystemYDS, SystemFrench}
	}
	return []System{SystemVScale, SystemFont}
}

// GradesForSystem returns the ordered grade tokens of a vocabulary.
//
// The returned slice is shared; callers must not modify it.
// Returns nil for a system that does not belong to the climb type.
func GradesForSystem(t Type, s System) []string {
	switch s {
	case SystemVScale:
		if !t.IsRoute() {
			return vscaleGrades
		}
	case SystemFont:
		if !t.IsRoute() {
			return fontGrades
		}
	case SystemYDS:
		if t.IsRoute() {
			return ydsGrades
		}
	case SystemFrench:
		if t.IsRoute() {
			return frenchGrades
		}
	}
	return nil
}

// DetectSystem finds which vocabulary contains the literal grade string.
//
// If the grade is absent from every vocabulary of the type, the type's
// default system is assumed. This fail-open policy keeps malformed grade
// strings from ever breaking aggregation.
func DetectSystem(g string, t Type) System {
	for _, sys := range SystemsFor(t) {
		if indexOf(GradesForSystem(t, sys), g) >= 0 {
			return sys
		}
	}
	return DefaultSystem(t)
}

// Convert maps a grade between two vocabularies of the same climb type by
// index position: position N in the source maps to position N in the target.
//
// Returns the original token unchanged when from == to, when either
// vocabulary does not contain the grade, or when the index has no
// counterpart in the target. Conversion never fails.
//
// Because the crosswalk is positional rather than a curated equivalence
// table, distinct tokens that happen to share an index are treated as
// equivalent even where published grade charts disagree. That behavior is
// intentional and relied on for parity with previously stored data.
func Convert(g string, t Type, from, to System) string {
	if from == to {
		return g
	}

	src := GradesForSystem(t, from)
	dst := GradesForSystem(t, to)

	idx := indexOf(src, g)
	if idx < 0 || idx >= len(dst) {
		return g
	}

	return dst[idx]
}

// NormalizedIndex returns the grade's rank within the type's default
// vocabulary, converting from whichever vocabulary contains it first.
//
// Returns -1 when the grade cannot be resolved. The returned integer is the
// sole total order used for hardness comparison, PR detection, and sorting.
func NormalizedIndex(g string, t Type) int {
	def := DefaultSystem(t)
	normalized := Convert(g, t, DetectSystem(g, t), def)
	return indexOf(GradesForSystem(t, def), normalized)
}

// Display converts a stored grade token into the user's preferred display
// vocabulary. The stored token is returned unchanged when conversion is not
// possible.
func Display(g string, t Type, settings Settings) string {
	return Convert(g, t, DetectSystem(g, t), settings.SystemFor(t))
}

// indexOf returns the position of g in grades, or -1.
func indexOf(grades []string, g string) int {
	for i, candidate := range grades {
		if candidate == g {
			return i
		}
	}
	return -1
}
