package dispatch

// Signature is the narrow view DispatchCache's overload selection needs
// from a candidate method/constructor: its declared parameter type names
// (empty string means untyped/accepts-anything) and whether its final
// parameter is variadic.
type Signature struct {
	ParamTypes []string
	IsVariadic bool
}

// SelectOverload implements spec §4.6's selection order: exact match of
// non-vararg signatures; else vararg match; else the most-specific match
// by parameter-type narrowness (non-vararg preferred over vararg, then
// element-wise narrower parameter type wins). argTypes may contain ""
// for a null argument, compatible with any non-primitive target.
// Returns the index into candidates, or -1 if none match.
func SelectOverload(candidates []Signature, argTypes []string) int {
	best := -1
	bestScore := -1
	for i, c := range candidates {
		if !arityCompatible(c, len(argTypes)) {
			continue
		}
		score := matchScore(c, argTypes)
		if score < 0 {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

func arityCompatible(sig Signature, n int) bool {
	if sig.IsVariadic {
		return n >= len(sig.ParamTypes)-1
	}
	return n == len(sig.ParamTypes)
}

// matchScore rewards exact non-vararg matches most, then narrower
// parameter types, non-vararg signatures over vararg ones.
func matchScore(sig Signature, argTypes []string) int {
	score := 0
	if !sig.IsVariadic {
		score += 1000
	}
	limit := len(sig.ParamTypes)
	if sig.IsVariadic {
		limit--
	}
	for i := 0; i < limit && i < len(argTypes); i++ {
		pt := sig.ParamTypes[i]
		at := argTypes[i]
		switch {
		case at == "" || pt == "":
			score += 1 // null-compatible with any non-primitive target
		case pt == at:
			score += 10
		default:
			return -1
		}
	}
	return score
}
