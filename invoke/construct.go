package invoke

import (
	"github.com/novalang/nova/class"
	"github.com/novalang/nova/dispatch"
	"github.com/novalang/nova/novaerr"
	"github.com/novalang/nova/values"
)

// Runtime bundles the services constructor orchestration needs from the
// interpreter: running a constructor/initialiser body to completion
// against a prepared environment, and forging a foreign delegate for
// classes with a foreign superclass. Package interp's Interpreter
// implements Runtime; invoke never imports interp.
type Runtime struct {
	Eval Evaluator

	// NewEnv creates a fresh child environment over parent (the
	// constructor's captured environment, per spec §4.3.5a).
	NewEnv func(parent EnvLike) EnvLike

	// RunConstructorBody executes ctor's body block to completion inside
	// env (with `this` already bound) and returns any thrown error.
	RunConstructorBody func(ctor *class.Constructor, env EnvLike) error

	// RunInitializers executes c's declared instance-initialiser list
	// (field initialisers interleaved with init-blocks, spec §4.3g) with
	// `this` bound in env.
	RunInitializers func(c *class.Class, env EnvLike, this *values.Value) error

	// MakeForeignDelegate synthesises a foreign delegate object for a
	// class with a foreign superclass (spec §4.3.3), given the resolved
	// constructor arguments.
	MakeForeignDelegate func(c *class.Class, args []*values.Value) (interface{}, error)

	// InvokeConstructor runs another constructor (a superclass's first
	// constructor, or a sibling via `this(...)` delegation) against the
	// same `this`.
	InvokeConstructor func(target *class.Class, ctor *class.Constructor, args []*values.Value, named map[string]*values.Value, this *values.Value) error
}

// Instantiate implements constructor orchestration (spec §4.3) in full:
// validation, object allocation, optional foreign-delegate synthesis,
// constructor selection, and execution (delegation, super-call,
// parameter-as-field shorthand, instance initialisers, body).
func Instantiate(c *class.Class, positional []*values.Value, named map[string]*values.Value, rt *Runtime) (*values.Value, error) {
	if !c.InstantiationValidated() {
		if c.IsAnnotation() {
			return nil, novaerr.New(novaerr.KindInstantiateForbidden, "cannot instantiate annotation class %s", c.Name)
		}
		if c.IsAbstract() {
			return nil, novaerr.New(novaerr.KindInstantiateForbidden, "cannot instantiate abstract class %s", c.Name)
		}
		if class.HasUnimplementedAbstract(c) {
			return nil, novaerr.New(novaerr.KindUnimplementedAbstract, "class %s omits an abstract method", c.Name)
		}
		c.MarkValidated()
	}

	instance := values.NewObject(c, len(c.FieldLayout))

	if c.ForeignSuper != nil && rt.MakeForeignDelegate != nil {
		delegate, err := rt.MakeForeignDelegate(c, positional)
		if err != nil {
			return nil, err
		}
		instance.AsObject().Foreign = delegate
	}

	ctor, args, err := selectConstructor(c, positional, named)
	if err != nil {
		return nil, err
	}

	env := rt.NewEnv(nil)
	env.Define("this", instance)

	if ctor.IsPrimary && c.Super != nil {
		if err := runSuperCall(c, ctor, env, instance, rt); err != nil {
			return nil, err
		}
	}

	bindings, err := BindParameters(ctor.Body, args, named, env, rt.Eval)
	if err != nil {
		return nil, err
	}

	if !ctor.Delegates {
		for i, name := range bindings.Names {
			class.SetField(c, instance.AsObject(), name, bindings.Values[i])
		}
	}

	if ctor.Delegates && ctor.DelegationArgs != nil {
		if err := runDelegation(c, ctor, env, instance, rt); err != nil {
			return nil, err
		}
	}

	if rt.RunInitializers != nil {
		if err := rt.RunInitializers(c, env, instance); err != nil {
			return nil, err
		}
	}

	if rt.RunConstructorBody != nil {
		if err := rt.RunConstructorBody(ctor, env); err != nil {
			return nil, err
		}
	}

	return instance, nil
}

// selectConstructor implements spec §4.3 step 4: prefer an exact arity
// (or vararg) match; else a default-argument match (required ≤ supplied
// ≤ total); else pad-with-null if tolerated; else NoMatchingConstructor.
// Per §9's open question, ties among default-argument matches resolve to
// the first candidate in declaration order. The returned positional
// slice is args padded with Null up to the chosen constructor's
// positional slot count (spec §4.3 step 4's pad-with-null branch) —
// callers must bind against it, not the original positional slice.
func selectConstructor(c *class.Class, positional []*values.Value, named map[string]*values.Value) (*class.Constructor, []*values.Value, error) {
	supplied := len(positional) + len(named)

	for _, ctor := range c.Constructors {
		if ctor.Arity() == supplied || ctor.Arity() == -1 {
			return ctor, positional, nil
		}
	}
	for _, ctor := range c.Constructors {
		total := len(ctor.Params)
		if ctor.RequiredParams() <= supplied && supplied <= total {
			return ctor, positional, nil
		}
	}
	for _, ctor := range c.Constructors {
		if len(positional) <= len(ctor.Params) {
			return ctor, padWithNull(positional, len(ctor.Params)-len(named)), nil
		}
	}
	if supplied == 0 && len(c.Constructors) > 0 {
		return c.Constructors[0], positional, nil
	}
	return nil, nil, novaerr.New(novaerr.KindNoMatchingConstructor, "no constructor of %s accepts %d arguments", c.Name, supplied)
}

// padWithNull extends positional with values.Null up to target slots,
// leaving it untouched if it already meets or exceeds target.
func padWithNull(positional []*values.Value, target int) []*values.Value {
	if target <= len(positional) {
		return positional
	}
	padded := make([]*values.Value, target)
	copy(padded, positional)
	for i := len(positional); i < target; i++ {
		padded[i] = values.Null
	}
	return padded
}

func runSuperCall(c *class.Class, ctor *class.Constructor, env EnvLike, this *values.Value, rt *Runtime) error {
	super := c.Super
	if super == nil || len(super.Constructors) == 0 {
		return nil
	}
	var args []*values.Value
	if ctor.SuperArgs != nil {
		v, err := rt.Eval.EvalBlock(ctor.SuperArgs, ctor.SuperArgs.EntryBlock, env)
		if err != nil {
			return err
		}
		if v != nil && v.Kind == values.KindList {
			args = v.AsList().Elements
		}
	}
	return rt.InvokeConstructor(super, super.Constructors[0], args, nil, this)
}

func runDelegation(c *class.Class, ctor *class.Constructor, env EnvLike, this *values.Value, rt *Runtime) error {
	v, err := rt.Eval.EvalBlock(ctor.DelegationArgs, ctor.DelegationArgs.EntryBlock, env)
	if err != nil {
		return err
	}
	var args []*values.Value
	if v != nil && v.Kind == values.KindList {
		args = v.AsList().Elements
	}
	sig := make([]dispatch.Signature, len(c.Constructors))
	for i, sib := range c.Constructors {
		sig[i] = Signature(sib)
	}
	idx := dispatch.SelectOverload(sig, argTypeNames(args))
	if idx < 0 {
		return novaerr.New(novaerr.KindNoMatchingConstructor, "no sibling constructor of %s matches delegation arity %d", c.Name, len(args))
	}
	return rt.InvokeConstructor(c, c.Constructors[idx], args, nil, this)
}

// Signature adapts a class.Constructor to dispatch.Signature.
func Signature(ctor *class.Constructor) dispatch.Signature {
	names := make([]string, len(ctor.Params))
	for i := range ctor.Params {
		names[i] = "" // parameter types are not tracked on mir.Param; any-compatible
	}
	return dispatch.Signature{ParamTypes: names, IsVariadic: ctor.Arity() == -1}
}

func argTypeNames(args []*values.Value) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == nil || a.IsNull() {
			out[i] = ""
			continue
		}
		out[i] = a.TypeName()
	}
	return out
}
