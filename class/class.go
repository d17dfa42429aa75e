// Package class implements ClassModel (spec §4.2) and ObjectLayout (§3.2,
// §3.3): class/interface descriptors, frozen field layout, and method
// resolution. Constructor orchestration (§4.3) is Invocation's job — it
// lives in package invoke, which imports class, not the other way around.
package class

import (
	"sync"

	"github.com/novalang/nova/mir"
	"github.com/novalang/nova/values"
)

// Visibility mirrors the per-member visibility the class descriptor
// records for methods and fields (spec §3.2).
type Visibility byte

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityPrivate
	VisibilityInternal
)

// Constructor is one entry of a class's constructor list (spec §4.3).
type Constructor struct {
	Params []mir.Param
	Body   *mir.Function

	// IsPrimary marks the non-delegating constructor that also installs
	// its parameters as instance fields (§4.3e).
	IsPrimary bool

	// Delegates is true for a `this(...)` constructor; DelegationArgs
	// names the block producing the delegation argument registers.
	Delegates      bool
	DelegationArgs *mir.Function

	// SuperArgs, when non-nil, evaluates the declared super-constructor
	// argument expressions for a primary constructor of a subclass
	// (§4.3d). Nil means "use the caller's arguments against super".
	SuperArgs *mir.Function
}

// Arity returns -1 when the constructor has a trailing vararg parameter,
// otherwise the declared parameter count.
func (c *Constructor) Arity() int {
	for _, p := range c.Params {
		if p.IsVariadic {
			return -1
		}
	}
	return len(c.Params)
}

// RequiredParams is the count of parameters without a default expression
// and without being variadic.
func (c *Constructor) RequiredParams() int {
	n := 0
	for _, p := range c.Params {
		if !p.HasDefault && !p.IsVariadic {
			n++
		}
	}
	return n
}

// Interface is an interface descriptor (spec §3.2/§4.2).
type Interface struct {
	Name   string
	Supers []*Interface

	// AbstractMethods names methods with no default body.
	AbstractMethods map[string]bool
	// DefaultMethods holds default-method bodies, checked during
	// lookup_method after the superclass chain is exhausted.
	DefaultMethods map[string]*values.Value
}

func (i *Interface) ClassName() string   { return i.Name }
func (i *Interface) IsSealed() bool      { return false }
func (i *Interface) IsAbstract() bool    { return true }
func (i *Interface) IsData() bool        { return false }
func (i *Interface) IsAnnotation() bool  { return false }
func (i *Interface) FieldIndex(string) (int, bool) { return 0, false }
func (i *Interface) DataFields() []string          { return nil }

// samMethod returns the interface's single abstract method name if it
// qualifies as SAM (spec §4.6): exactly one non-default abstract method,
// not toString/hashCode/equals.
func (i *Interface) samMethod() (string, bool) {
	candidate := ""
	count := 0
	for name := range i.AbstractMethods {
		if name == "toString" || name == "hashCode" || name == "equals" {
			continue
		}
		if _, hasDefault := i.DefaultMethods[name]; hasDefault {
			continue
		}
		count++
		candidate = name
	}
	if count == 1 {
		return candidate, true
	}
	return "", false
}

// IsSAM reports whether this interface is single-abstract-method.
func (i *Interface) IsSAM() (string, bool) { return i.samMethod() }

// Class is the class descriptor (spec §3.2). Field layout is frozen at
// construction time by NewClass; instance field access resolves through
// fieldIndex in O(1).
type Class struct {
	Name         string
	Super        *Class
	ForeignSuper interface{}
	Interfaces   []*Interface

	Abstract   bool
	Sealed     bool
	Data       bool
	Annotation bool
	IsObjectDecl bool // singleton `object` declaration

	FieldLayout []string
	fieldIndex  map[string]int

	StaticFields map[string]*values.Value

	Methods          map[string]*values.Value
	MethodVisibility map[string]Visibility
	FieldVisibility  map[string]Visibility

	Constructors       []*Constructor
	PrimaryConstructor *Constructor

	// DataFieldOrder is the declared order used for data-class equality,
	// hashing, and canonical-string form (§3.2, §8.1.3).
	DataFieldOrder []string

	// DefiningModule is cleared once validated (§3.2 "cleared thereafter").
	DefiningModule string

	// ReflectiveDescriptor is a cached, lazily-built reflection summary;
	// nil until first requested.
	ReflectiveDescriptor interface{}

	// Singleton instance for IsObjectDecl classes, set once by the
	// registrar after invoking the zero-arg constructor (§4.3 last para).
	Instance *values.Value

	mu                     sync.Mutex
	instantiationValidated bool
	unimplementedChecked   bool
	unimplementedOK        bool
}

// NewClass builds a Class with its field layout frozen: fieldIndex is
// computed once here and never rebuilt.
func NewClass(name string, super *Class, foreignSuper interface{}, interfaces []*Interface, fieldLayout []string) *Class {
	idx := make(map[string]int, len(fieldLayout))
	for i, f := range fieldLayout {
		idx[f] = i
	}
	return &Class{
		Name:             name,
		Super:            super,
		ForeignSuper:     foreignSuper,
		Interfaces:       interfaces,
		FieldLayout:      fieldLayout,
		fieldIndex:       idx,
		StaticFields:     make(map[string]*values.Value),
		Methods:          make(map[string]*values.Value),
		MethodVisibility: make(map[string]Visibility),
		FieldVisibility:  make(map[string]Visibility),
	}
}

func (c *Class) ClassName() string  { return c.Name }
func (c *Class) IsSealed() bool     { return c.Sealed }
func (c *Class) IsAbstract() bool   { return c.Abstract }
func (c *Class) IsData() bool       { return c.Data }
func (c *Class) IsAnnotation() bool { return c.Annotation }

// FieldIndex returns the slot index of name in the field layout, or
// (0, false) if name is not a laid-out field.
func (c *Class) FieldIndex(name string) (int, bool) {
	i, ok := c.fieldIndex[name]
	return i, ok
}

// DataFields returns the declared order used for data-class equality,
// hashing, and canonical-string form (§3.2, §8.1.3).
func (c *Class) DataFields() []string { return c.DataFieldOrder }

// MarkValidated records that instantiation preconditions have already
// been checked once (spec §4.3 step 1d).
func (c *Class) MarkValidated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instantiationValidated = true
}

func (c *Class) InstantiationValidated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instantiationValidated
}

// ResolveBoundMethod looks up name via LookupMethod and, if found, wraps
// it with receiver into a BoundMethod value. This is the seam package
// operators uses for the `+`/`-`/`*`/`/`/`%`/`compareTo` overload
// fallback chain (spec §4.1) without importing package class.
func (c *Class) ResolveBoundMethod(receiver *values.Value, name string) (*values.Value, bool) {
	m, ok := LookupMethod(c, name)
	if !ok {
		return nil, false
	}
	return values.NewBoundMethod(receiver, m), true
}

// CheckSealedExtension verifies, at class-definition time, that a
// subclass of a sealed superclass was declared within the same module
// (spec §3.2). moduleSet is the module-membership set in effect when the
// superclass was registered; it is cleared by the registrar once loading
// completes, so this check can only run during initial registration.
func CheckSealedExtension(super *Class, subModule string, moduleSet map[string]bool) bool {
	if super == nil || !super.Sealed {
		return true
	}
	if moduleSet == nil {
		return false
	}
	return moduleSet[subModule]
}

// LookupMethod implements spec §4.2's resolution order: the class's own
// method table, then its superclass chain, then each implemented
// interface's default methods in declaration order. The first hit wins.
func LookupMethod(c *Class, name string) (*values.Value, bool) {
	for cur := c; cur != nil; cur = cur.Super {
		if m, ok := cur.Methods[name]; ok {
			return m, true
		}
	}
	for cur := c; cur != nil; cur = cur.Super {
		for _, iface := range cur.Interfaces {
			if m, ok := lookupInterfaceDefault(iface, name); ok {
				return m, true
			}
		}
	}
	return nil, false
}

func lookupInterfaceDefault(i *Interface, name string) (*values.Value, bool) {
	if m, ok := i.DefaultMethods[name]; ok {
		return m, true
	}
	for _, super := range i.Supers {
		if m, ok := lookupInterfaceDefault(super, name); ok {
			return m, true
		}
	}
	return nil, false
}

// HasUnimplementedAbstract reports whether c (or an ancestor) declares an
// abstract method that no class from c down to the root overrides. The
// result is cached on first call per spec §3.2's "cached after the first
// successful instantiation" note.
func HasUnimplementedAbstract(c *Class) bool {
	c.mu.Lock()
	if c.unimplementedChecked {
		defer c.mu.Unlock()
		return !c.unimplementedOK
	}
	c.mu.Unlock()

	missing := false
	seen := map[string]bool{}
	for cur := c; cur != nil; cur = cur.Super {
		for name := range cur.Methods {
			seen[name] = true
		}
	}
	var walkInterfaces func(i *Interface)
	walkInterfaces = func(i *Interface) {
		for name := range i.AbstractMethods {
			if _, hasDefault := i.DefaultMethods[name]; hasDefault {
				continue
			}
			if !seen[name] {
				missing = true
			}
		}
		for _, s := range i.Supers {
			walkInterfaces(s)
		}
	}
	for cur := c; cur != nil; cur = cur.Super {
		for _, iface := range cur.Interfaces {
			walkInterfaces(iface)
		}
	}

	c.mu.Lock()
	c.unimplementedChecked = true
	c.unimplementedOK = !missing
	c.mu.Unlock()
	return missing
}

// LookupField implements spec §4.2's lookup_field: field layout, then
// overflow map, then static fields, else UndefinedProperty (reported by
// the caller, since class has no error-kind dependency).
func LookupField(c *Class, obj *values.Object, name string) (*values.Value, bool) {
	if idx, ok := c.FieldIndex(name); ok {
		return obj.Slots[idx], true
	}
	if obj.Overflow != nil {
		if v, ok := obj.Overflow[name]; ok {
			return v, true
		}
	}
	for cur := c; cur != nil; cur = cur.Super {
		if v, ok := cur.StaticFields[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// SetField writes to the field layout slot, or else the lazily-allocated
// overflow map.
func SetField(c *Class, obj *values.Object, name string, val *values.Value) {
	if idx, ok := c.FieldIndex(name); ok {
		obj.Slots[idx] = val
		return
	}
	if obj.Overflow == nil {
		obj.Overflow = make(map[string]*values.Value)
	}
	obj.Overflow[name] = val
}
