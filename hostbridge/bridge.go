// Package hostbridge defines the narrow adapter surface spec §2/§6.1 calls
// HostBridge: letting a foreign (host-language) callable or functional
// interface round-trip through the ValueDomain as a SAM proxy, and letting
// a foreign object be invoked back into from a non-owner worker via a
// per-thread child interpreter clone (§4.8). Concrete foreign-class
// generation is explicitly out of scope (spec §1) and belongs to a
// collaborator this package never names.
package hostbridge

import "github.com/novalang/nova/values"

// Invoker is the minimal "can call a ValueDomain callable" seam a bridge
// needs; interp.Interpreter satisfies it via values.Host.
type Invoker interface {
	Invoke(callable *values.Value, args []*values.Value) (*values.Value, error)
}

// ClonerInvoker is an Invoker that can also hand out a fresh, independent
// clone of itself for a non-owner thread to invoke through (spec §4.8:
// "the invocation uses a per-thread child interpreter clone rather than
// the owner's mutable state").
type ClonerInvoker interface {
	Invoker
	Clone() Invoker
}

// SAMTarget describes the single abstract method a proxy must implement,
// resolved by package class's Interface.IsSAM before a Bridge is built.
type SAMTarget struct {
	InterfaceName string
	MethodName    string
	Arity         int
}

// Bridge adapts one Nova callable value to look like a foreign SAM
// implementation: "one SAM invocation = one callable call, with positional
// argument mapping preserving order" (spec §4.6).
type Bridge struct {
	target   SAMTarget
	callable *values.Value
	owner    Invoker
}

// New builds a Bridge that will invoke callable against owner (or a clone
// of owner, when called from a non-owner thread) whenever the foreign side
// invokes the SAM method.
func New(target SAMTarget, callable *values.Value, owner Invoker) *Bridge {
	return &Bridge{target: target, callable: callable, owner: owner}
}

// Call performs the single SAM invocation, using a per-thread clone of the
// owning interpreter when fromOwnerThread is false.
func (b *Bridge) Call(args []*values.Value, fromOwnerThread bool) (*values.Value, error) {
	inv := b.owner
	if !fromOwnerThread {
		if c, ok := inv.(ClonerInvoker); ok {
			inv = c.Clone()
		}
	}
	return inv.Invoke(b.callable, args)
}

// AsForeignObject wraps b as a values.Value of kind ForeignObject tagged
// with the SAM interface name, so it can be handed back across the
// ValueDomain boundary like any other foreign reference (spec's
// ForeignObject: "opaque host reference + class tag").
func (b *Bridge) AsForeignObject() *values.Value {
	return values.NewForeignObject(b.target.InterfaceName, b)
}
