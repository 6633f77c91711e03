package value

// Compare returns -1, 0 or 1 for two values of the same type drawn
// from the comparable set (spec.md §4.1). It is an error to compare
// values of different types, non-comparable types, or numbers where
// either side is NaN (IEEE comparisons on NaN have no ordering).
func Compare(a, b Value) (int, error) {
	if a.typ != b.typ || !a.IsComparable() {
		return 0, Errf(ErrComparison, "cannot compare %s and %s", a.TypeName(), b.TypeName())
	}
	switch a.typ {
	case TypeNil:
		return 0, nil
	case TypeBool:
		return boolCompare(a.b, b.b), nil
	case TypeNumber:
		return numberCompare(a.n, b.n)
	case TypeString:
		return a.AsString().Compare(b.AsString()), nil
	case TypeRange:
		return a.AsRange().Compare(b.AsRange()), nil
	case TypeArray:
		return a.AsArray().Compare(b.AsArray())
	default:
		return 0, Errf(ErrComparison, "%s is not comparable", a.TypeName())
	}
}

func boolCompare(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

func numberCompare(a, b float64) (int, error) {
	if a != a || b != b { // either is NaN
		return 0, Errf(ErrType, "cannot order NaN")
	}
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}
