// Package engine is the embedding-host facade of spec §6.1: construct an
// Engine, register natives/extensions/annotation processors, point it at
// stdio and a security policy, and run MIR programs through it. Source-text
// entry points (Eval/EvalNamed/ExecuteModule) only work once a Frontend has
// been installed; without one, only EvalProgram is usable, since
// lexing/parsing/lowering is explicitly out of scope (spec §1).
package engine

import (
	"context"
	"io"
	"os"

	"github.com/novalang/nova/class"
	"github.com/novalang/nova/concurrent"
	"github.com/novalang/nova/config"
	"github.com/novalang/nova/dispatch"
	"github.com/novalang/nova/environment"
	"github.com/novalang/nova/interp"
	"github.com/novalang/nova/mir"
	"github.com/novalang/nova/novaerr"
	"github.com/novalang/nova/novalog"
	"github.com/novalang/nova/registry"
	"github.com/novalang/nova/values"
)

// SecurityPolicy is the engine-facing alias of config.SecurityPolicy (spec
// §6.2), kept as its own name so embedding hosts import engine, not config,
// for the common case.
type SecurityPolicy = config.SecurityPolicy

// AnnotationProcessor re-exports registry.AnnotationProcessor under the
// name spec §6.1 uses at the embedding boundary.
type AnnotationProcessor = registry.AnnotationProcessor

// Frontend turns source text into a MIR program. The core ships no
// implementation (spec §1's non-goal); embedding hosts that need
// source-level entry points call SetFrontend with their own.
type Frontend interface {
	Parse(source, filename string) (*mir.Program, error)
}

// Engine is the top-level embedding handle: one Engine owns one Registry,
// one DispatchCache, one global Environment, and an owner Interpreter.
type Engine struct {
	registry *registry.Registry
	modules  *registry.ModuleRegistry
	cache    *dispatch.Cache
	global   *environment.Environment
	policy   config.SecurityPolicy
	owner    *interp.Interpreter
	sched    *concurrent.Scheduler
	logger   *novalog.Logger

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	args   []string

	frontend Frontend
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithSecurityPolicy sets the policy an Engine is built with; equivalent to
// calling SetSecurityPolicy immediately after New.
func WithSecurityPolicy(p SecurityPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLogger installs a novalog.Logger; defaults to novalog.Default().
func WithLogger(l *novalog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithFrontend installs a source-text Frontend at construction time.
func WithFrontend(f Frontend) Option {
	return func(e *Engine) { e.frontend = f }
}

// New builds an Engine with its own Registry, DispatchCache, and global
// Environment, ready to receive RegisterNative/RegisterExtension calls and
// then run a MIR program.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry: registry.New(),
		modules:  registry.NewModuleRegistry(),
		cache:    dispatch.New(),
		global:   environment.NewGlobal(),
		policy:   config.Default(),
		logger:   novalog.Default(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		stdin:    os.Stdin,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.owner = interp.New(e.registry, e.cache, e.policy, e.global)
	e.sched = concurrent.NewScheduler(e.backgroundCtx(), int64(e.maxAsyncTasks()), e.cloneForWorker)
	e.modules.Register("nova.json", registry.JSONModule)
	e.modules.Register("nova.text", registry.TextModule)
	e.registerConcurrencyNatives()
	return e
}

func (e *Engine) backgroundCtx() context.Context { return context.Background() }

func (e *Engine) maxAsyncTasks() int {
	if e.policy.MaxAsyncTasks > 0 {
		return e.policy.MaxAsyncTasks
	}
	return 64
}

func (e *Engine) cloneForWorker(slot int) concurrent.WorkerInterpreter {
	return e.owner.Clone()
}

// registerConcurrencyNatives installs the `concurrent.launch`/`job`
// entry points and their Future/Job accessors as sealed builtins, giving
// ConcurrencyCore a way to be driven from Nova code (spec §6.4's
// `concurrent` module segment) without any standard-library content.
func (e *Engine) registerConcurrencyNatives() {
	e.RegisterNative("concurrent.launch", 1, func(host values.Host, args []*values.Value) (*values.Value, error) {
		if len(args) != 1 || !args[0].IsCallable() {
			return nil, novaerr.New(novaerr.KindTypeOp, "concurrent.launch expects one callable argument")
		}
		callable := args[0]
		f, err := e.sched.Launch(func(taskHost values.Host, interrupt func() bool) (*values.Value, error) {
			if interrupt() {
				return nil, novaerr.New(novaerr.KindInterrupted, "task cancelled before starting")
			}
			return taskHost.Invoke(callable, nil)
		})
		if err != nil {
			return nil, err
		}
		return f.AsValue(), nil
	})

	e.RegisterNative("future.get", 1, func(host values.Host, args []*values.Value) (*values.Value, error) {
		if len(args) != 1 || args[0].Kind != values.KindFuture {
			return nil, novaerr.New(novaerr.KindTypeOp, "future.get expects a Future")
		}
		return args[0].Ref.(*concurrent.Future).Get()
	})

	e.RegisterNative("future.cancel", 1, func(host values.Host, args []*values.Value) (*values.Value, error) {
		if len(args) == 1 && args[0].Kind == values.KindFuture {
			args[0].Ref.(*concurrent.Future).Cancel()
		}
		return values.Unit, nil
	})

	e.RegisterNative("concurrent.job", 1, func(host values.Host, args []*values.Value) (*values.Value, error) {
		if len(args) != 1 || !args[0].IsCallable() {
			return nil, novaerr.New(novaerr.KindTypeOp, "concurrent.job expects one callable argument")
		}
		callable := args[0]
		j, err := e.sched.LaunchJob(func(taskHost values.Host, interrupt func() bool) (*values.Value, error) {
			if interrupt() {
				return nil, novaerr.New(novaerr.KindInterrupted, "task cancelled before starting")
			}
			return taskHost.Invoke(callable, nil)
		})
		if err != nil {
			return nil, err
		}
		return j.AsValue(), nil
	})

	e.RegisterNative("job.join", 1, func(host values.Host, args []*values.Value) (*values.Value, error) {
		if len(args) != 1 || args[0].Kind != values.KindJob {
			return nil, novaerr.New(novaerr.KindTypeOp, "job.join expects a Job")
		}
		if err := args[0].Ref.(*concurrent.Job).Join(); err != nil {
			return nil, err
		}
		return values.Unit, nil
	})

	e.RegisterNative("job.cancel", 1, func(host values.Host, args []*values.Value) (*values.Value, error) {
		if len(args) == 1 && args[0].Kind == values.KindJob {
			args[0].Ref.(*concurrent.Job).Cancel()
		}
		return values.Unit, nil
	})
}

// SetFrontend installs the source-text-to-MIR translator used by
// Eval/EvalNamed/EvalREPL/ExecuteModule.
func (e *Engine) SetFrontend(f Frontend) { e.frontend = f }

// EvalProgram runs prog's Entry function with no arguments. This is the
// entry point available with no Frontend installed.
func (e *Engine) EvalProgram(prog *mir.Program) (*values.Value, error) {
	fn, ok := prog.Functions[prog.Entry]
	if !ok {
		return nil, novaerr.New(novaerr.KindUndefinedProperty, "program has no entry function %q", prog.Entry)
	}
	return e.owner.Run(fn, nil, nil)
}

func (e *Engine) requireFrontend() error {
	if e.frontend == nil {
		return novaerr.New(novaerr.KindTypeOp, "no Frontend installed; call SetFrontend or use EvalProgram")
	}
	return nil
}

// Eval parses and runs source as an anonymous, unnamed program.
func (e *Engine) Eval(source string) (*values.Value, error) {
	return e.EvalNamed(source, "<eval>")
}

// EvalNamed parses and runs source, attributing it to filename in
// diagnostics and stack traces.
func (e *Engine) EvalNamed(source, filename string) (*values.Value, error) {
	if err := e.requireFrontend(); err != nil {
		return nil, err
	}
	prog, err := e.frontend.Parse(source, filename)
	if err != nil {
		return nil, err
	}
	return e.EvalProgram(prog)
}

// EvalREPL parses and runs one REPL-submitted line or block. Each call
// runs in a fresh child scope of the engine's global Environment: natives
// and loaded modules stay visible from call to call, but bindings the line
// itself defines in that child scope are not kept.
func (e *Engine) EvalREPL(source string) (*values.Value, error) {
	if err := e.requireFrontend(); err != nil {
		return nil, err
	}
	prog, err := e.frontend.Parse(source, "<repl>")
	if err != nil {
		return nil, err
	}
	fn, ok := prog.Functions[prog.Entry]
	if !ok {
		return nil, novaerr.New(novaerr.KindUndefinedProperty, "program has no entry function %q", prog.Entry)
	}
	return e.owner.RunClosure(fn, nil, nil, nil)
}

// ExecuteModule parses and runs source with env as its enclosing scope
// instead of the Engine's global environment, letting a host compose
// isolated module scopes (spec §6.1).
func (e *Engine) ExecuteModule(source, filename string, env *environment.Environment) (*values.Value, error) {
	if err := e.requireFrontend(); err != nil {
		return nil, err
	}
	prog, err := e.frontend.Parse(source, filename)
	if err != nil {
		return nil, err
	}
	fn, ok := prog.Functions[prog.Entry]
	if !ok {
		return nil, novaerr.New(novaerr.KindUndefinedProperty, "program has no entry function %q", prog.Entry)
	}
	moduleInterp := interp.New(e.registry, e.cache, e.policy, env)
	return moduleInterp.Run(fn, nil, nil)
}

// RegisterNative installs a host-defined function, callable from Nova code
// as an ordinary NativeFunction value (spec §6.1/§4.2).
func (e *Engine) RegisterNative(name string, arity int, impl values.NativeFunc) {
	fn := values.NewNativeFunction(name, arity, impl)
	e.registry.RegisterFunction(name, fn)
	e.global.DefineBuiltin(name, fn)
}

// RegisterExtension installs a typeName.methodName extension resolved per
// spec §4.5's "type" scope.
func (e *Engine) RegisterExtension(typeName, methodName string, impl values.NativeFunc) {
	fn := values.NewNativeFunction(typeName+"."+methodName, -1, impl)
	e.registry.RegisterExtension("type", typeName, methodName, fn)
}

// RegisterAnnotationProcessor stores a processor under the given name in the
// engine's Registry. Registering a class does not invoke it.
func (e *Engine) RegisterAnnotationProcessor(name string, impl AnnotationProcessor) {
	e.registry.RegisterAnnotationProcessor(name, impl)
}

// RegisterClass installs a compiled class descriptor (produced by the
// out-of-scope lowering collaborator) into the engine's Registry. No
// annotation processor is run.
func (e *Engine) RegisterClass(c *class.Class) error {
	e.registry.RegisterClass(c)
	return nil
}

func (e *Engine) SetStdout(w io.Writer) { e.stdout = w }
func (e *Engine) SetStderr(w io.Writer) { e.stderr = w }
func (e *Engine) SetStdin(r io.Reader)  { e.stdin = r }
func (e *Engine) SetCLIArgs(args []string) { e.args = args }

// SetSecurityPolicy swaps the policy the owner interpreter and scheduler
// enforce from this call forward; in-flight frames keep their existing
// limits since policy is read, not locked, per call.
func (e *Engine) SetSecurityPolicy(p SecurityPolicy) {
	e.policy = p
	e.owner = interp.New(e.registry, e.cache, e.policy, e.global)
	e.sched = concurrent.NewScheduler(e.backgroundCtx(), int64(e.maxAsyncTasks()), e.cloneForWorker)
}

// SetScheduler replaces the Engine's ConcurrencyCore scheduler, letting a
// host supply one with custom bounds or instrumentation.
func (e *Engine) SetScheduler(s *concurrent.Scheduler) { e.sched = s }

// Scheduler returns the engine's ConcurrencyCore scheduler, for hosts that
// want to launch Futures/Jobs directly.
func (e *Engine) Scheduler() *concurrent.Scheduler { return e.sched }

// Global returns the engine's global Environment, for hosts inspecting or
// seeding top-level bindings directly.
func (e *Engine) Global() *environment.Environment { return e.global }

// Registry returns the engine's symbol registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// LoadModule installs a registered `nova.`-prefixed native module's
// symbols into the engine's global environment (spec §6.4).
func (e *Engine) LoadModule(path string) bool {
	return e.modules.Load(path, e.global)
}
