package engine

// typeChart is indexed attacker type first, defender type second.
var typeChart = map[Type]map[Type]float64{
	TypeSorting: {
		TypeSorting:   1.0,
		TypeSearching: 0.5,
		TypeGraph:     2.0,
	},
	TypeSearching: {
		TypeSorting:   2.0,
		TypeSearching: 1.0,
		TypeGraph:     0.5,
	},
	TypeGraph: {
		TypeSorting:   0.5,
		TypeSearching: 2.0,
		TypeGraph:     1.0,
	},
}

// Effectiveness returns the damage multiplier for an attacker type hitting a defender type.
// Unknown types are neutral.
func Effectiveness(attacker, defender Type) float64 {
	row, ok := typeChart[attacker]
	if !ok {
		return 1.0
	}
	m, ok := row[defender]
	if !ok {
		return 1.0
	}
	return m
}
