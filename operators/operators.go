// Package operators implements OperatorSemantics (spec §4.1): numeric
// promotion, the `+` special cases, operator-overload fallback, and
// compareTo. Following the teacher's arithmetic_executor.go split, each
// operator family is its own function; Binary is the single dispatcher
// the interpreter calls from OP_ADD/SUB/MUL/DIV/MOD/CMP_*/COMPARE.
package operators

import (
	"strings"

	"github.com/novalang/nova/novaerr"
	"github.com/novalang/nova/values"
)

// Op identifies which binary operator Binary should perform.
type Op byte

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpCompare
)

// Binary is the single entry point for every arithmetic/comparison
// opcode. host is used only for the operator-overload fallback chain and
// may be nil when the operands are known not to be Objects/EnumEntries.
func Binary(op Op, left, right *values.Value, host values.Host) (*values.Value, error) {
	switch op {
	case OpAdd:
		return add(left, right, host)
	case OpSub:
		return arithFallback(left, right, host, "minus", "dec", sub)
	case OpMul:
		return mul(left, right, host)
	case OpDiv:
		return arithFallback(left, right, host, "div", "", div)
	case OpMod:
		return arithFallback(left, right, host, "rem", "", mod)
	case OpCompare:
		return compare(left, right, host)
	default:
		return nil, novaerr.New(novaerr.KindTypeOp, "unknown operator")
	}
}

// add implements `+`'s special-cased rule order (spec §4.1): string
// concat, list concat, overload fallback (`plus`/`inc`), then promotion.
func add(left, right *values.Value, host values.Host) (*values.Value, error) {
	if left.Kind == values.KindString || right.Kind == values.KindString {
		return values.NewString(left.CanonicalString() + right.CanonicalString()), nil
	}
	if left.Kind == values.KindList && right.Kind == values.KindList {
		l1, l2 := left.AsList(), right.AsList()
		out := make([]*values.Value, 0, len(l1.Elements)+len(l2.Elements))
		out = append(out, l1.Elements...)
		out = append(out, l2.Elements...)
		return values.NewList(out...), nil
	}
	return arithFallback(left, right, host, "plus", "inc", sum)
}

// arithFallback tries, in order: the named binary overload method on an
// Object/EnumEntry left operand; the unary inc/dec overload when the
// right operand is the literal Int 1; then the numeric promotion ladder
// via compute.
func arithFallback(left, right *values.Value, host values.Host, methodName, unaryName string, compute func(l, r *values.Value) (*values.Value, error)) (*values.Value, error) {
	if callable, ok := lookupOperatorMethod(left, methodName); ok && host != nil {
		return host.Invoke(callable, []*values.Value{right})
	}
	if unaryName != "" && right.Kind == values.KindInt && right.I == 1 {
		if callable, ok := lookupOperatorMethod(left, unaryName); ok && host != nil {
			return host.Invoke(callable, nil)
		}
	}
	if !left.IsNumber() || !right.IsNumber() {
		return nil, novaerr.New(novaerr.KindTypeOp, "operator unsupported for %s and %s", left.TypeName(), right.TypeName())
	}
	return compute(left, right)
}

// lookupOperatorMethod resolves a bound method by name on an
// Object/EnumEntry receiver, for the overload fallback chain. Real method
// resolution (class/superclass/interface chain) happens behind
// ResolveBoundMethod, implemented by class.Class; operators only needs
// the narrow methodLookuper seam to avoid importing package class (which
// would create a values/class/operators import cycle).
func lookupOperatorMethod(v *values.Value, name string) (*values.Value, bool) {
	if name == "" {
		return nil, false
	}
	switch v.Kind {
	case values.KindObject:
		obj := v.AsObject()
		if ci, ok := obj.Class.(methodLookuper); ok {
			return ci.ResolveBoundMethod(v, name)
		}
	case values.KindEnumEntry:
		e := v.AsEnumEntry()
		if ci, ok := e.Enum.(methodLookuper); ok {
			return ci.ResolveBoundMethod(v, name)
		}
	}
	return nil, false
}

type methodLookuper interface {
	ResolveBoundMethod(receiver *values.Value, name string) (*values.Value, bool)
}

// sub/mulCompute/div/mod/sum apply the promotion ladder for each
// arithmetic family. Division and modulo check for a zero divisor at
// the chosen promoted width before computing.

func sum(l, r *values.Value) (*values.Value, error) {
	return promote(l, r, false, addInt, addLong, addFloat, addDouble)
}

func sub(l, r *values.Value) (*values.Value, error) {
	return promote(l, r, false, subInt, subLong, subFloat, subDouble)
}

func mulCompute(l, r *values.Value) (*values.Value, error) {
	return promote(l, r, false, mulInt, mulLong, mulFloat, mulDouble)
}

func div(l, r *values.Value) (*values.Value, error) {
	if isZero(r) {
		return nil, novaerr.New(novaerr.KindArithZero, "division by zero")
	}
	return promote(l, r, false, divInt, divLong, divFloat, divDouble)
}

func mod(l, r *values.Value) (*values.Value, error) {
	if isZero(r) {
		return nil, novaerr.New(novaerr.KindArithZero, "modulo by zero")
	}
	return promote(l, r, true, modInt, modLong, nil, modDouble)
}

// mul handles the String*Int / Int*String repetition rule before falling
// back to numeric multiplication (spec §4.1 "String repetition").
func mul(left, right *values.Value, host values.Host) (*values.Value, error) {
	if left.Kind == values.KindString && right.Kind == values.KindInt {
		return values.NewString(strings.Repeat(left.Str, int(right.I))), nil
	}
	if left.Kind == values.KindInt && right.Kind == values.KindString {
		return values.NewString(strings.Repeat(right.Str, int(left.I))), nil
	}
	return arithFallback(left, right, host, "times", "", mulCompute)
}

func isZero(v *values.Value) bool {
	switch v.Kind {
	case values.KindInt:
		return v.I == 0
	case values.KindLong:
		return v.L == 0
	case values.KindFloat:
		return v.F32 == 0
	case values.KindDouble:
		return v.F64 == 0
	}
	return false
}

type intOp func(a, b int32) int32
type longOp func(a, b int64) int64
type floatOp func(a, b float32) float32
type doubleOp func(a, b float64) float64

// promote implements the five-step promotion ladder of spec §4.1:
// Int+Int stays Int (wrapping); else Double wins; else Float; else Long;
// else both fall back to Int. When modOmitsFloat is set (`%`'s ladder has
// no Float rung), a Float operand promotes straight to Double instead of
// falling through to the Long rung.
func promote(l, r *values.Value, modOmitsFloat bool, iop intOp, lop longOp, fop floatOp, dop doubleOp) (*values.Value, error) {
	if l.Kind == values.KindInt && r.Kind == values.KindInt {
		return values.NewInt(iop(l.I, r.I)), nil
	}
	if l.Kind == values.KindDouble || r.Kind == values.KindDouble {
		return values.NewDouble(dop(l.AsDouble(), r.AsDouble())), nil
	}
	hasFloat := l.Kind == values.KindFloat || r.Kind == values.KindFloat
	if hasFloat && modOmitsFloat {
		return values.NewDouble(dop(l.AsDouble(), r.AsDouble())), nil
	}
	if hasFloat {
		return values.NewFloat(fop(float32(l.AsDouble()), float32(r.AsDouble()))), nil
	}
	if l.Kind == values.KindLong || r.Kind == values.KindLong {
		return values.NewLong(lop(l.AsInt64(), r.AsInt64())), nil
	}
	return values.NewInt(iop(int32(l.AsInt64()), int32(r.AsInt64()))), nil
}

func addInt(a, b int32) int32       { return a + b }
func addLong(a, b int64) int64      { return a + b }
func addFloat(a, b float32) float32 { return a + b }
func addDouble(a, b float64) float64 { return a + b }

func subInt(a, b int32) int32        { return a - b }
func subLong(a, b int64) int64       { return a - b }
func subFloat(a, b float32) float32  { return a - b }
func subDouble(a, b float64) float64 { return a - b }

func mulInt(a, b int32) int32        { return a * b }
func mulLong(a, b int64) int64       { return a * b }
func mulFloat(a, b float32) float32  { return a * b }
func mulDouble(a, b float64) float64 { return a * b }

func divInt(a, b int32) int32        { return a / b }
func divLong(a, b int64) int64       { return a / b }
func divFloat(a, b float32) float32  { return a / b }
func divDouble(a, b float64) float64 { return a / b }

func modInt(a, b int32) int32    { return a % b }
func modLong(a, b int64) int64   { return a % b }
func modDouble(a, b float64) float64 {
	return a - b*float64(int64(a/b))
}
