package interp

import (
	"time"

	"github.com/novalang/nova/class"
	"github.com/novalang/nova/config"
	"github.com/novalang/nova/dispatch"
	"github.com/novalang/nova/environment"
	"github.com/novalang/nova/invoke"
	"github.com/novalang/nova/mir"
	"github.com/novalang/nova/novaerr"
	"github.com/novalang/nova/operators"
	"github.com/novalang/nova/registry"
	"github.com/novalang/nova/values"
)

// callStackEntry records just enough to reconstruct a stack trace lazily
// (spec §4.7: "a brief parameter summary (lazily computed only when
// forming an error)").
type callStackEntry struct {
	displayName string
	args        []*values.Value
	loc         novaerr.SourceLocation
}

// Interpreter is the MIR register interpreter (spec §4.4) plus the
// invocation services it needs to perform calls: class lookup,
// dispatch caching, and operator fallback. One Interpreter owns a single
// worker's mutable state; read-mostly state (Registry, Policy) is shared
// across per-worker clones (spec §4.8).
type Interpreter struct {
	Registry *registry.Registry
	Cache    *dispatch.Cache
	Policy   config.SecurityPolicy
	Global   *environment.Environment

	Stdout interface{ Write([]byte) (int, error) }

	callStack []callStackEntry
	startTime time.Time

	interrupted bool
}

// New builds an Interpreter sharing reg/cache/policy/global with any
// sibling worker clone (spec §4.8's read-mostly state).
func New(reg *registry.Registry, cache *dispatch.Cache, policy config.SecurityPolicy, global *environment.Environment) *Interpreter {
	return &Interpreter{Registry: reg, Cache: cache, Policy: policy, Global: global, startTime: time.Now()}
}

// Clone produces a per-worker child interpreter sharing this
// Interpreter's read-mostly tables but with independent call stack,
// depth, and frame state (spec §4.8, §9 "lightweight clone containing
// references ... to the parent's read-mostly tables").
func (in *Interpreter) Clone() *Interpreter {
	return &Interpreter{
		Registry:  in.Registry,
		Cache:     in.Cache,
		Policy:    in.Policy,
		Global:    in.Global,
		Stdout:    in.Stdout,
		startTime: time.Now(),
	}
}

// Interrupt marks this interpreter's current task as cancelled; observed
// at the next host-call boundary or loop back-edge (spec §4.8).
func (in *Interpreter) Interrupt() { in.interrupted = true }

// IsInterrupted reports whether Interrupt has been called on this worker.
func (in *Interpreter) IsInterrupted() bool { return in.interrupted }

// RunTask satisfies concurrent.WorkerInterpreter: it runs a unit of
// Future/Job work on this worker's own child interpreter (passed back to
// fn as the invocation host, per spec §4.8's "per-thread child interpreter
// clone"), handing the task its own interrupt-check closure layered on top
// of this worker's Interrupt() flag.
func (in *Interpreter) RunTask(fn func(host values.Host, interrupt func() bool) (*values.Value, error)) (*values.Value, error) {
	in.callStack = nil
	in.startTime = time.Now()
	in.interrupted = false
	return fn(in, in.IsInterrupted)
}

// Run executes fn from its entry block with the given positional
// arguments bound to its declared parameters, returning its result value.
// It is RunClosure with no capture map.
func (in *Interpreter) Run(fn *mir.Function, args []*values.Value, named map[string]*values.Value) (*values.Value, error) {
	return in.RunClosure(fn, args, named, nil)
}

// RunClosure is Run plus an explicit capture map for MIR function values:
// captures, when non-nil, seeds the frame's closure environment for
// OP_ENV_GET/OP_ENV_SET accesses.
func (in *Interpreter) RunClosure(fn *mir.Function, args []*values.Value, named map[string]*values.Value, captures map[string]*values.Value) (*values.Value, error) {
	if err := in.enterFrame(fn.Name, args, novaerr.SourceLocation{File: fn.SourceFile}); err != nil {
		return nil, err
	}
	defer in.leaveFrame()

	frame := NewFrame(fn)
	if captures != nil {
		frame.Env = make(map[string]*values.Value, len(captures))
		for k, v := range captures {
			frame.Env[k] = v
		}
	}
	env := environment.NewChild(in.Global)
	if _, err := invoke.BindParameters(fn, args, named, env, in); err != nil {
		return nil, err
	}
	frame.seedFromEnv(fn, env)

	val, sig, err := in.execBlock(frame, env, fn.EntryBlock)
	if err != nil {
		return nil, err
	}
	switch sig.Kind {
	case SignalReturn:
		return sig.Value, nil
	case SignalThrow:
		return nil, in.throwToError(sig.Value)
	default:
		return val, nil
	}
}

// EvalBlock implements invoke.Evaluator: it runs fn's block blockID
// inside env (used for default-value expressions and delegation/super
// argument lists) and returns the value its RETURN produced.
func (in *Interpreter) EvalBlock(fn *mir.Function, blockID int, env invoke.EnvLike) (*values.Value, error) {
	realEnv, ok := env.(*environment.Environment)
	if !ok {
		return values.Null, nil
	}
	frame := NewFrame(fn)
	frame.seedFromEnv(fn, realEnv)
	val, sig, err := in.execBlock(frame, realEnv, blockID)
	if err != nil {
		return nil, err
	}
	if sig.Kind == SignalReturn {
		return sig.Value, nil
	}
	return val, nil
}

// Invoke implements values.Host: dispatches a callable value (native,
// MIR function, or bound method) against args.
func (in *Interpreter) Invoke(callable *values.Value, args []*values.Value) (*values.Value, error) {
	switch callable.Kind {
	case values.KindNativeFunction:
		nf := callable.AsNativeFunction()
		return nf.Impl(in, args)
	case values.KindMirFunction:
		mf := callable.AsMirFunction()
		return in.RunClosure(mf.Body, args, nil, mf.Captures)
	case values.KindBoundMethod:
		bm := callable.AsBoundMethod()
		return in.runBound(bm, args)
	default:
		return nil, novaerr.New(novaerr.KindTypeOp, "value of type %s is not callable", callable.TypeName())
	}
}

// runBound executes a BoundMethod's callable with `this` bound to its
// receiver (spec §4.2's BoundMethod, "callable with the original
// callable's arity" — the receiver is not counted among that arity).
func (in *Interpreter) runBound(bm *values.BoundMethod, args []*values.Value) (*values.Value, error) {
	switch bm.Callable.Kind {
	case values.KindMirFunction:
		mf := bm.Callable.AsMirFunction()
		if err := in.enterFrame(mf.Name, args, novaerr.SourceLocation{File: mf.Body.SourceFile}); err != nil {
			return nil, err
		}
		defer in.leaveFrame()

		frame := NewFrame(mf.Body)
		if mf.Captures != nil {
			frame.Env = make(map[string]*values.Value, len(mf.Captures))
			for k, v := range mf.Captures {
				frame.Env[k] = v
			}
		}
		env := environment.NewChild(in.Global)
		env.Define("this", bm.Receiver)
		if _, err := invoke.BindParameters(mf.Body, args, nil, env, in); err != nil {
			return nil, err
		}
		frame.seedFromEnv(mf.Body, env)
		val, sig, err := in.execBlock(frame, env, mf.Body.EntryBlock)
		if err != nil {
			return nil, err
		}
		if sig.Kind == SignalReturn {
			return sig.Value, nil
		}
		if sig.Kind == SignalThrow {
			return nil, in.throwToError(sig.Value)
		}
		return val, nil
	case values.KindNativeFunction:
		nf := bm.Callable.AsNativeFunction()
		full := append([]*values.Value{bm.Receiver}, args...)
		return nf.Impl(in, full)
	default:
		return nil, novaerr.New(novaerr.KindTypeOp, "bound callable of type %s is not invocable", bm.Callable.TypeName())
	}
}

func (in *Interpreter) enterFrame(name string, args []*values.Value, loc novaerr.SourceLocation) error {
	if in.Policy.MaxRecursionDepth > 0 && len(in.callStack) >= in.Policy.MaxRecursionDepth {
		return novaerr.New(novaerr.KindRecursionLimit, "recursion depth limit (%d) exceeded", in.Policy.MaxRecursionDepth).WithStack(in.snapshotStack(), 16)
	}
	in.callStack = append(in.callStack, callStackEntry{displayName: name, args: args, loc: loc})
	return nil
}

func (in *Interpreter) leaveFrame() {
	if len(in.callStack) > 0 {
		in.callStack = in.callStack[:len(in.callStack)-1]
	}
}

// snapshotStack lazily computes parameter summaries only when an error is
// actually being formatted (spec §4.7).
func (in *Interpreter) snapshotStack() []novaerr.Frame {
	frames := make([]novaerr.Frame, len(in.callStack))
	for i, e := range in.callStack {
		frames[i] = novaerr.Frame{
			DisplayName:  e.displayName,
			ParamSummary: summariseArgs(e.args),
			Location:     e.loc,
		}
	}
	return frames
}

func summariseArgs(args []*values.Value) string {
	if len(args) == 0 {
		return ""
	}
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		if i >= 4 {
			s += "..."
			break
		}
		s += a.CanonicalString()
	}
	return s
}

// checkLoopLimit implements spec §4.7's per-back-edge checks: iteration
// count then wall-clock deadline.
func (in *Interpreter) checkLoopLimit(frame *MirFrame) error {
	frame.LoopIterations++
	if in.Policy.MaxLoopIterations > 0 && frame.LoopIterations > in.Policy.MaxLoopIterations {
		return novaerr.New(novaerr.KindResourceLimit, "loop iteration limit (%d) exceeded", in.Policy.MaxLoopIterations)
	}
	if in.Policy.MaxExecutionMS > 0 {
		if time.Since(in.startTime) > time.Duration(in.Policy.MaxExecutionMS)*time.Millisecond {
			return novaerr.New(novaerr.KindResourceLimit, "execution time limit (%dms) exceeded", in.Policy.MaxExecutionMS)
		}
	}
	if in.interrupted {
		return novaerr.New(novaerr.KindInterrupted, "task interrupted")
	}
	return nil
}

func (in *Interpreter) throwToError(v *values.Value) error {
	return (&novaerr.RuntimeError{Kind: novaerr.KindUserThrown, Message: v.CanonicalString(), Thrown: v}).WithStack(in.snapshotStack(), 16)
}

// lookupMethodCached resolves a virtual-call target through DispatchCache
// (spec §4.6), falling back to class.LookupMethod and populating the
// cache on a miss.
func (in *Interpreter) lookupMethodCached(c *class.Class, name string, args []*values.Value) (*values.Value, bool) {
	key := dispatch.MethodKey{Class: c, Name: name, ArgShape: dispatch.ArgShape(args)}
	if v, ok := in.Cache.GetMethod(key); ok {
		return v, true
	}
	m, ok := class.LookupMethod(c, name)
	if ok {
		in.Cache.PutMethod(key, m)
	}
	return m, ok
}

// binary is the interpreter's entry point into OperatorSemantics.
func (in *Interpreter) binary(op operators.Op, l, r *values.Value) (*values.Value, error) {
	return operators.Binary(op, l, r, in)
}
