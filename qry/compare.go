package qry

import (
	"fmt"

	"github.com/sebitommy123/SA/value"
)

// compareValues orders two comparable scalar values for lowest(): -1 if a<b,
// 0 if equal, 1 if a>b. Int and Float compare numerically against each
// other, treated as one numeric domain regardless of the strict-equals
// rule used elsewhere; String compares lexicographically. Mismatched
// non-numeric kinds are a type error.
func compareValues(a, b value.Value) (int, error) {
	an, aIsNum := asFloat(a)
	bn, bIsNum := asFloat(b)
	if aIsNum && bIsNum {
		switch {
		case an < bn:
			return -1, nil
		case an > bn:
			return 1, nil
		default:
			return 0, nil
		}
	}
	as, aIsStr := a.(value.String)
	bs, bIsStr := b.(value.String)
	if aIsStr && bIsStr {
		switch {
		case as < bs:
			return -1, nil
		case as > bs:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, fmt.Errorf("lowest: incomparable values %s and %s", a.Kind(), b.Kind())
}

func asFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case value.Int:
		return float64(n), true
	case value.Float:
		return float64(n), true
	default:
		return 0, false
	}
}
