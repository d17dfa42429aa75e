// Package values implements Nova's ValueDomain: a tagged variant over the
// closed set of runtime values described in spec §3.1. Following the
// teacher's approach for its own PHP value universe, a Value is a small
// struct carrying a Kind discriminant plus an opaque payload — there is no
// inheritance hierarchy of value types, and every value-level operation
// (truthy, type name, canonical string) is implemented by a single switch
// over Kind rather than by virtual dispatch.
package values

import (
	"fmt"
	"strconv"

	"github.com/novalang/nova/mir"
)

// Kind discriminates the variants of the value universe (spec §3.1).
type Kind byte

const (
	KindNull Kind = iota
	KindUnit
	KindBool
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindChar
	KindString
	KindList
	KindMap
	KindPair
	KindRange
	KindObject
	KindEnumEntry
	KindClass
	KindInterface
	KindNativeFunction
	KindMirFunction
	KindBoundMethod
	KindFuture
	KindJob
	KindForeignObject
)

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

var kindNames = map[Kind]string{
	KindNull:           "Null",
	KindUnit:           "Unit",
	KindBool:           "Bool",
	KindInt:            "Int",
	KindLong:           "Long",
	KindFloat:          "Float",
	KindDouble:         "Double",
	KindChar:           "Char",
	KindString:         "String",
	KindList:           "List",
	KindMap:            "Map",
	KindPair:           "Pair",
	KindRange:          "Range",
	KindObject:         "Object",
	KindEnumEntry:      "EnumEntry",
	KindClass:          "Class",
	KindInterface:      "Interface",
	KindNativeFunction: "Function",
	KindMirFunction:    "Function",
	KindBoundMethod:    "BoundMethod",
	KindFuture:         "Future",
	KindJob:            "Job",
	KindForeignObject:  "ForeignObject",
}

// Value is the universal runtime value. Exactly one of the typed fields
// is meaningful for a given Kind; Ref holds every variant whose identity
// is by-reference (List, Map, Object, EnumEntry, BoundMethod, Future, Job,
// ForeignObject, Class, Interface, the two Function shapes).
type Value struct {
	Kind Kind

	B   bool
	I   int32
	L   int64
	F32 float32
	F64 float64
	Ch  uint16
	Str string

	Ref interface{}
}

// Singletons for the two zero-carrying variants. Null and Unit are
// distinct, non-interchangeable singletons (spec §3.1 invariant).
var (
	Null = &Value{Kind: KindNull}
	Unit = &Value{Kind: KindUnit}
)

func NewBool(b bool) *Value     { return &Value{Kind: KindBool, B: b} }
func NewInt(i int32) *Value     { return &Value{Kind: KindInt, I: i} }
func NewLong(l int64) *Value    { return &Value{Kind: KindLong, L: l} }
func NewFloat(f float32) *Value { return &Value{Kind: KindFloat, F32: f} }
func NewDouble(d float64) *Value{ return &Value{Kind: KindDouble, F64: d} }
func NewChar(c uint16) *Value   { return &Value{Kind: KindChar, Ch: c} }
func NewString(s string) *Value { return &Value{Kind: KindString, Str: s} }

// ClassInfo is the minimal surface Object/EnumEntry/Class values need from
// a class descriptor. The concrete descriptor lives in package class, which
// depends on values — defining the interface here (rather than importing
// class) keeps values a leaf of the dependency graph, mirroring the
// teacher's BuiltinCallContext seam used to avoid a vm<->registry cycle.
type ClassInfo interface {
	ClassName() string
	IsSealed() bool
	IsAbstract() bool
	IsData() bool
	IsAnnotation() bool

	// FieldIndex and DataFields let a leaf package (values) render and
	// compare data-class instances (spec §3.2/§8.1#3's "data-class
	// equality, hashing, and canonical-string form") without importing
	// package class.
	FieldIndex(name string) (int, bool)
	DataFields() []string
}

// Object is the fixed-layout instance representation (spec §3.3): a
// slot array sized by the class's field layout, a lazily-allocated
// overflow map for names outside that layout, and an optional foreign
// delegate for host-bridged classes.
type Object struct {
	Class    ClassInfo
	Slots    []*Value
	Overflow map[string]*Value
	Foreign  interface{}
}

func NewObject(class ClassInfo, fieldCount int) *Value {
	slots := make([]*Value, fieldCount)
	for i := range slots {
		slots[i] = Null
	}
	return &Value{Kind: KindObject, Ref: &Object{Class: class, Slots: slots}}
}

func (v *Value) AsObject() *Object { return v.Ref.(*Object) }

// EnumEntry is one member of an enum type (spec §3.1/§3.2).
type EnumEntry struct {
	Enum    ClassInfo
	Name    string
	Ordinal int
	Fields  []*Value
}

func NewEnumEntry(enum ClassInfo, name string, ordinal int, fields []*Value) *Value {
	return &Value{Kind: KindEnumEntry, Ref: &EnumEntry{Enum: enum, Name: name, Ordinal: ordinal, Fields: fields}}
}

func (v *Value) AsEnumEntry() *EnumEntry { return v.Ref.(*EnumEntry) }

// List is an ordered, by-identity sequence of Value.
type List struct {
	Elements []*Value
}

func NewList(elems ...*Value) *Value {
	return &Value{Kind: KindList, Ref: &List{Elements: elems}}
}

func (v *Value) AsList() *List { return v.Ref.(*List) }

// Map preserves insertion order alongside key lookup, per spec §3.1.
type Map struct {
	keys   []*Value
	index  map[string]int // canonical key string -> position in keys/values
	values []*Value
}

func NewMap() *Value {
	return &Value{Kind: KindMap, Ref: &Map{index: make(map[string]int)}}
}

func (v *Value) AsMap() *Map { return v.Ref.(*Map) }

func mapKeyString(k *Value) string {
	return fmt.Sprintf("%d:%s", k.Kind, k.CanonicalString())
}

// Put inserts or overwrites key -> val, preserving the original position of
// key if it already existed.
func (m *Map) Put(key, val *Value) {
	ks := mapKeyString(key)
	if i, ok := m.index[ks]; ok {
		m.values[i] = val
		return
	}
	m.index[ks] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, val)
}

func (m *Map) Get(key *Value) (*Value, bool) {
	if i, ok := m.index[mapKeyString(key)]; ok {
		return m.values[i], true
	}
	return nil, false
}

func (m *Map) Len() int { return len(m.keys) }

// Each calls fn for every entry in insertion order.
func (m *Map) Each(fn func(key, val *Value)) {
	for i, k := range m.keys {
		fn(k, m.values[i])
	}
}

// Pair is a (first, second) tuple compared by value-equality.
type Pair struct {
	First, Second *Value
}

func NewPair(first, second *Value) *Value {
	return &Value{Kind: KindPair, Ref: &Pair{First: first, Second: second}}
}

func (v *Value) AsPair() *Pair { return v.Ref.(*Pair) }

// Range is an integer range, compared by value-equality.
type Range struct {
	Start, End int64
	Inclusive  bool
}

func NewRange(start, end int64, inclusive bool) *Value {
	return &Value{Kind: KindRange, Ref: &Range{Start: start, End: end, Inclusive: inclusive}}
}

func (v *Value) AsRange() *Range { return v.Ref.(*Range) }

// Host is the minimal context a NativeFunc needs to call back into the
// interpreter (used for operator-overload fallback, extension dispatch,
// etc). Concrete implementations live in package interp; the interface is
// declared here so values stays a leaf package.
type Host interface {
	Invoke(callable *Value, args []*Value) (*Value, error)
}

// NativeFunc is the Go-native implementation behind a Function(native) value.
type NativeFunc func(host Host, args []*Value) (*Value, error)

type NativeFunction struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func NewNativeFunction(name string, arity int, impl NativeFunc) *Value {
	return &Value{Kind: KindNativeFunction, Ref: &NativeFunction{Name: name, Arity: arity, Impl: impl}}
}

func (v *Value) AsNativeFunction() *NativeFunction { return v.Ref.(*NativeFunction) }

// MirFunction is a Function(MIR) value: a compiled body plus its capture
// map (spec §3.1). Body is *mir.Function — values may depend on mir (a
// leaf package) without creating a cycle.
type MirFunction struct {
	Name     string
	Body     *mir.Function
	Captures map[string]*Value
}

func NewMirFunction(name string, body *mir.Function, captures map[string]*Value) *Value {
	return &Value{Kind: KindMirFunction, Ref: &MirFunction{Name: name, Body: body, Captures: captures}}
}

func (v *Value) AsMirFunction() *MirFunction { return v.Ref.(*MirFunction) }

// BoundMethod pairs a receiver with a callable (spec glossary).
type BoundMethod struct {
	Receiver *Value
	Callable *Value
}

func NewBoundMethod(receiver, callable *Value) *Value {
	return &Value{Kind: KindBoundMethod, Ref: &BoundMethod{Receiver: receiver, Callable: callable}}
}

func (v *Value) AsBoundMethod() *BoundMethod { return v.Ref.(*BoundMethod) }

// ForeignObject is an opaque host reference tagged with a class name.
type ForeignObject struct {
	ClassTag string
	Delegate interface{}
}

func NewForeignObject(classTag string, delegate interface{}) *Value {
	return &Value{Kind: KindForeignObject, Ref: &ForeignObject{ClassTag: classTag, Delegate: delegate}}
}

func (v *Value) AsForeignObject() *ForeignObject { return v.Ref.(*ForeignObject) }

// NewClass and NewInterface wrap a ClassInfo descriptor as a callable Value.
func NewClass(info ClassInfo) *Value      { return &Value{Kind: KindClass, Ref: info} }
func NewInterface(info ClassInfo) *Value  { return &Value{Kind: KindInterface, Ref: info} }
func (v *Value) AsClassInfo() ClassInfo   { return v.Ref.(ClassInfo) }

// Type predicates.

func (v *Value) IsNull() bool   { return v.Kind == KindNull }
func (v *Value) IsUnit() bool   { return v.Kind == KindUnit }
func (v *Value) IsBool() bool   { return v.Kind == KindBool }
func (v *Value) IsInt() bool    { return v.Kind == KindInt }
func (v *Value) IsLong() bool   { return v.Kind == KindLong }
func (v *Value) IsFloat() bool  { return v.Kind == KindFloat }
func (v *Value) IsDouble() bool { return v.Kind == KindDouble }
func (v *Value) IsChar() bool   { return v.Kind == KindChar }
func (v *Value) IsString() bool { return v.Kind == KindString }
func (v *Value) IsObject() bool { return v.Kind == KindObject }
func (v *Value) IsList() bool   { return v.Kind == KindList }

// IsNumber reports whether the value is one of Int/Long/Float/Double —
// the set OperatorSemantics promotes between (spec §4.1).
func (v *Value) IsNumber() bool {
	switch v.Kind {
	case KindInt, KindLong, KindFloat, KindDouble:
		return true
	}
	return false
}

func (v *Value) IsCallable() bool {
	switch v.Kind {
	case KindNativeFunction, KindMirFunction, KindBoundMethod:
		return true
	}
	return false
}

// Truthy implements the language's boolean-coercion rule.
func (v *Value) Truthy() bool {
	switch v.Kind {
	case KindNull, KindUnit:
		return false
	case KindBool:
		return v.B
	case KindInt:
		return v.I != 0
	case KindLong:
		return v.L != 0
	case KindFloat:
		return v.F32 != 0
	case KindDouble:
		return v.F64 != 0
	case KindChar:
		return v.Ch != 0
	case KindString:
		return v.Str != ""
	case KindList:
		return len(v.AsList().Elements) > 0
	case KindMap:
		return v.AsMap().Len() > 0
	default:
		return true
	}
}

// TypeName is the canonical, language-visible type name for the value.
func (v *Value) TypeName() string {
	switch v.Kind {
	case KindObject:
		return v.AsObject().Class.ClassName()
	case KindEnumEntry:
		return v.AsEnumEntry().Enum.ClassName()
	default:
		return v.Kind.String()
	}
}

// AsDouble widens any Number to float64; used by the numeric-promotion
// ladder and by Compare.
func (v *Value) AsDouble() float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.I)
	case KindLong:
		return float64(v.L)
	case KindFloat:
		return float64(v.F32)
	case KindDouble:
		return v.F64
	default:
		return 0
	}
}

// AsInt64 widens Int/Long to int64.
func (v *Value) AsInt64() int64 {
	switch v.Kind {
	case KindInt:
		return int64(v.I)
	case KindLong:
		return v.L
	default:
		return 0
	}
}

// CanonicalString renders the value's default string form (spec §8.2's
// round-trip property is defined in terms of this function).
func (v *Value) CanonicalString() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindUnit:
		return "()"
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(int64(v.I), 10)
	case KindLong:
		return strconv.FormatInt(v.L, 10)
	case KindFloat:
		return strconv.FormatFloat(float64(v.F32), 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindChar:
		return string(rune(v.Ch))
	case KindString:
		return v.Str
	case KindList:
		return listString(v.AsList())
	case KindMap:
		return mapString(v.AsMap())
	case KindPair:
		p := v.AsPair()
		return fmt.Sprintf("(%s, %s)", p.First.CanonicalString(), p.Second.CanonicalString())
	case KindRange:
		r := v.AsRange()
		op := ".."
		if r.Inclusive {
			op = "..="
		}
		return fmt.Sprintf("%d%s%d", r.Start, op, r.End)
	case KindObject:
		obj := v.AsObject()
		if obj.Class.IsData() {
			return dataClassString(obj)
		}
		return fmt.Sprintf("%s@%p", obj.Class.ClassName(), v.Ref)
	case KindEnumEntry:
		e := v.AsEnumEntry()
		return fmt.Sprintf("%s.%s", e.Enum.ClassName(), e.Name)
	case KindClass:
		return v.AsClassInfo().ClassName()
	case KindInterface:
		return v.AsClassInfo().ClassName()
	case KindNativeFunction:
		return fmt.Sprintf("function<%s>", v.Ref.(*NativeFunction).Name)
	case KindMirFunction:
		return fmt.Sprintf("function<%s>", v.Ref.(*MirFunction).Name)
	case KindBoundMethod:
		return "bound-method"
	case KindFuture:
		return "future"
	case KindJob:
		return "job"
	case KindForeignObject:
		return fmt.Sprintf("foreign<%s>", v.Ref.(*ForeignObject).ClassTag)
	default:
		return "?"
	}
}

// ObjectField resolves name against obj's frozen field layout first, then
// its overflow map, the same precedence class.LookupField applies.
func ObjectField(obj *Object, name string) (*Value, bool) {
	if i, ok := obj.Class.FieldIndex(name); ok {
		return obj.Slots[i], true
	}
	if obj.Overflow != nil {
		if v, ok := obj.Overflow[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// dataClassString renders a data-class instance element-wise over its
// DataFieldOrder (spec §3.2/§8.1#3), rather than by identity.
func dataClassString(obj *Object) string {
	s := obj.Class.ClassName() + "("
	for i, name := range obj.Class.DataFields() {
		if i > 0 {
			s += ", "
		}
		v, ok := ObjectField(obj, name)
		if !ok {
			v = Null
		}
		s += name + "=" + v.CanonicalString()
	}
	return s + ")"
}

func listString(l *List) string {
	s := "["
	for i, e := range l.Elements {
		if i > 0 {
			s += ", "
		}
		s += e.CanonicalString()
	}
	return s + "]"
}

func mapString(m *Map) string {
	s := "{"
	first := true
	m.Each(func(k, val *Value) {
		if !first {
			s += ", "
		}
		first = false
		s += k.CanonicalString() + ": " + val.CanonicalString()
	})
	return s + "}"
}

func (v *Value) String() string { return v.CanonicalString() }
