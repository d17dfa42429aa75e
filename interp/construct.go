package interp

import (
	"github.com/novalang/nova/class"
	"github.com/novalang/nova/environment"
	"github.com/novalang/nova/invoke"
	"github.com/novalang/nova/novaerr"
	"github.com/novalang/nova/values"
)

// Instantiate resolves className in the registry and runs constructor
// orchestration (spec §4.3) via invoke.Instantiate, wiring this
// Interpreter as the Runtime's execution hooks.
func (in *Interpreter) Instantiate(className string, positional []*values.Value, named map[string]*values.Value) (*values.Value, error) {
	c, ok := in.Registry.Class(className)
	if !ok {
		return nil, novaerr.New(novaerr.KindUndefinedProperty, "undefined class %q", className)
	}
	return invoke.Instantiate(c, positional, named, in.runtime())
}

func (in *Interpreter) instantiateByName(name string, args []*values.Value) (*values.Value, error) {
	return in.Instantiate(name, args, nil)
}

func (in *Interpreter) runtime() *invoke.Runtime {
	return &invoke.Runtime{
		Eval:                in,
		NewEnv:              in.newEnv,
		RunConstructorBody:  in.runConstructorBody,
		RunInitializers:     in.runInitializers,
		MakeForeignDelegate: in.makeForeignDelegate,
		InvokeConstructor:   in.invokeConstructor,
	}
}

func (in *Interpreter) newEnv(parent invoke.EnvLike) invoke.EnvLike {
	p, _ := parent.(*environment.Environment)
	if p == nil {
		p = in.Global
	}
	return environment.NewChild(p)
}

func (in *Interpreter) runConstructorBody(ctor *class.Constructor, env invoke.EnvLike) error {
	realEnv, ok := env.(*environment.Environment)
	if !ok || ctor.Body == nil {
		return nil
	}
	frame := NewFrame(ctor.Body)
	frame.seedFromEnv(ctor.Body, realEnv)
	_, sig, err := in.execBlock(frame, realEnv, ctor.Body.EntryBlock)
	if err != nil {
		return err
	}
	if sig.Kind == SignalThrow {
		return in.throwToError(sig.Value)
	}
	return nil
}

// runInitializers is a placeholder seam for the instance-initialiser
// list of spec §4.3g. The lowering collaborator (out of scope per §1) is
// responsible for compiling field initialisers and init-blocks into an
// ordinary MIR function; when present, a class's initialiser body is
// just another Constructor-shaped entry run the same way as the main
// body, so no separate execution path is required here.
func (in *Interpreter) runInitializers(c *class.Class, env invoke.EnvLike, this *values.Value) error {
	return nil
}

// makeForeignDelegate returns no delegate: foreign-runtime class
// generation is explicitly out of scope (spec §1); a real HostBridge
// collaborator would synthesise one here and is wired only via the
// interface in package hostbridge.
func (in *Interpreter) makeForeignDelegate(c *class.Class, args []*values.Value) (interface{}, error) {
	return nil, nil
}

func (in *Interpreter) invokeConstructor(target *class.Class, ctor *class.Constructor, args []*values.Value, named map[string]*values.Value, this *values.Value) error {
	env := environment.NewChild(in.Global)
	env.Define("this", this)
	if _, err := invoke.BindParameters(ctor.Body, args, named, env, in); err != nil {
		return err
	}
	for i, name := range ctor.Body.Params {
		if name.IsVariadic || ctor.Delegates {
			continue
		}
		if v, ok := env.Get(ctor.Body.Params[i].Name); ok {
			class.SetField(target, this.AsObject(), name.Name, v.(*values.Value))
		}
	}
	return in.runConstructorBody(ctor, env)
}
