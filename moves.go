package rubik

import "sort"

// Common sequences written in the engine's primitive alphabet.
// Half turns appear as two quarter turns.
var (
	// SexyMove: R U R' U' - one of the most common algorithms
	SexyMove = []Move{R, U, RPrime, UPrime}

	// InverseSexyMove: U R U' R'
	InverseSexyMove = []Move{U, R, UPrime, RPrime}

	// Sledgehammer: R' F R F'
	Sledgehammer = []Move{RPrime, F, R, FPrime}

	// TPerm: R U R' U' R' F R2 U' R' U' R U R' F'
	TPerm = []Move{R, U, RPrime, UPrime, RPrime, F, R, R, UPrime, RPrime, UPrime, R, U, RPrime, FPrime}

	// Superflip flips every edge in place.
	Superflip = []Move{
		U, R, R, F, B, R, B, B, R, U, U, L, B, B, R, UPrime, DPrime,
		R, R, F, RPrime, L, B, B, U, U, F, F,
	}
)

// Algorithms indexes the named sequences for command-line use.
var Algorithms = map[string][]Move{
	"sexy":         SexyMove,
	"inverse-sexy": InverseSexyMove,
	"sledgehammer": Sledgehammer,
	"tperm":        TPerm,
	"superflip":    Superflip,
}

// AlgorithmNames returns the keys of Algorithms in sorted order.
func AlgorithmNames() []string {
	names := make([]string, 0, len(Algorithms))
	for name := range Algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
