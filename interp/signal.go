package interp

import "github.com/novalang/nova/values"

// SignalKind discriminates the structurally-propagated control-flow
// values of spec §9 ("model return/break/continue/throw as a small
// tagged value returned up the stack instead of as an exception").
type SignalKind byte

const (
	SignalNone SignalKind = iota
	SignalReturn
	SignalBreak
	SignalContinue
	SignalThrow
)

// Signal is returned alongside (or instead of) a value by every block-
// execution step; the caller inspects Kind to decide whether to keep
// stepping, unwind a loop, or propagate a throw.
type Signal struct {
	Kind  SignalKind
	Value *values.Value // RETURN's value, or the thrown value
	Label string        // optional label for labelled break/continue
}

// none is the steady-state "keep going" signal.
var none = Signal{Kind: SignalNone}
