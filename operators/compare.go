package operators

import (
	"strings"

	"github.com/novalang/nova/novaerr"
	"github.com/novalang/nova/values"
)

// compare implements compareTo (spec §4.1): Int/Int via integer compare,
// any Number pair via Double compare, String/String and Char/Char via
// lexical compare, else fallback to a `compareTo` overload on the left
// operand, else TypeOp.
func compare(left, right *values.Value, host values.Host) (*values.Value, error) {
	if left.Kind == values.KindInt && right.Kind == values.KindInt {
		return values.NewInt(sign(int64(left.I) - int64(right.I))), nil
	}
	if left.IsNumber() && right.IsNumber() {
		ld, rd := left.AsDouble(), right.AsDouble()
		switch {
		case ld < rd:
			return values.NewInt(-1), nil
		case ld > rd:
			return values.NewInt(1), nil
		default:
			return values.NewInt(0), nil
		}
	}
	if left.Kind == values.KindString && right.Kind == values.KindString {
		return values.NewInt(sign(int64(strings.Compare(left.Str, right.Str)))), nil
	}
	if left.Kind == values.KindChar && right.Kind == values.KindChar {
		return values.NewInt(sign(int64(left.Ch) - int64(right.Ch))), nil
	}
	if callable, ok := lookupOperatorMethod(left, "compareTo"); ok && host != nil {
		return host.Invoke(callable, []*values.Value{right})
	}
	return nil, novaerr.New(novaerr.KindTypeOp, "compareTo unsupported for %s and %s", left.TypeName(), right.TypeName())
}

func sign(d int64) int32 {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}
