// Package interp implements MirFrame and Interpreter (spec §4.4): the
// per-function execution loop, its dual-slot unboxed-integer fast path,
// per-instruction dispatch, control-flow signalling, and the recursion/
// loop/timeout guards of §4.7.
package interp

import (
	"math"

	"github.com/novalang/nova/mir"
	"github.com/novalang/nova/values"
)

// rawIntMarker is the sentinel stored in Regs[i] when Raw[i] holds a live
// unboxed integer (spec §3.5's RAW_INT_MARKER). It is a unique pointer so
// identity comparison (not value comparison) detects it in O(1).
var rawIntMarker = &values.Value{Kind: values.KindInt}

// MirFrame is the per-invocation interpreter state of spec §3.5.
type MirFrame struct {
	Function *mir.Function

	Regs []*values.Value
	Raw  []int64

	Block int
	PC    int

	// TCECount records how many back-branches a tail-call-eliminated
	// RETURN has folded into this frame, for stack-trace display
	// (spec §4.4 "tce_count").
	TCECount int

	// TypeParams maps reified type-parameter names to textual type
	// names (spec §3.5, §4.5).
	TypeParams map[string]string

	// Env holds captured-variable bindings for a MIR function value's
	// closure (OP_ENV_GET/OP_ENV_SET); nil for frames with no captures.
	Env map[string]*values.Value

	// LoopIterations counts back-edges taken in this frame, checked
	// against the security policy on every back-edge (spec §4.7).
	LoopIterations int64
}

// NewFrame allocates a frame sized by fn.FrameSize, with every register
// initialised to Null.
func NewFrame(fn *mir.Function) *MirFrame {
	regs := make([]*values.Value, fn.FrameSize)
	for i := range regs {
		regs[i] = values.Null
	}
	return &MirFrame{
		Function: fn,
		Regs:     regs,
		Raw:      make([]int64, fn.FrameSize),
		Block:    fn.EntryBlock,
	}
}

// SetRawInt stores i as a raw, unboxed integer in register idx (the fast
// path of spec §4.4's constant-load and arithmetic rules).
func (f *MirFrame) SetRawInt(idx int, i int64) {
	f.Regs[idx] = rawIntMarker
	f.Raw[idx] = i
}

// IsRaw reports whether register idx currently holds a raw int.
func (f *MirFrame) IsRaw(idx int) bool {
	return f.Regs[idx] == rawIntMarker
}

// Materialize implements the safe accessor of spec §4.4: any value read
// through it is boxed if raw. A raw value widening beyond 32 bits
// narrows to Long, matching §3.5 ("narrows to Int when the value fits in
// 32 bits, otherwise Long").
func (f *MirFrame) Materialize(idx int) *values.Value {
	if f.IsRaw(idx) {
		v := f.Raw[idx]
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return values.NewInt(int32(v))
		}
		return values.NewLong(v)
	}
	return f.Regs[idx]
}

// Set writes v into register idx as a boxed value, clearing any raw
// marker (used by any instruction not using the raw fast path; MOVE goes
// through Move instead).
func (f *MirFrame) Set(idx int, v *values.Value) {
	f.Regs[idx] = v
}

// Move copies src to dst, preserving a raw-int marker if present (spec
// §4.4 "Register move ... preserves raw-int markers").
func (f *MirFrame) Move(dst, src int) {
	if f.IsRaw(src) {
		f.Regs[dst] = rawIntMarker
		f.Raw[dst] = f.Raw[src]
		return
	}
	f.Regs[dst] = f.Regs[src]
}

// seedFromEnv copies a frame's incoming bindings out of env and into its
// register vector, matching the calling convention the teacher's
// bindSlotName(0, "this") fixes by name: a bound receiver always lands in
// register 0, and fn's declared parameters (skipping one literally named
// "this", already placed) fill the registers from there in declaration
// order. Without this, any instruction addressing a parameter or receiver
// by register index would read the Null NewFrame leaves behind.
func (f *MirFrame) seedFromEnv(fn *mir.Function, env interface {
	Get(name string) (interface{}, bool)
}) {
	base := 0
	if v, ok := env.Get("this"); ok {
		if val, ok := v.(*values.Value); ok {
			f.Set(0, val)
			base = 1
		}
	}
	idx := base
	for _, p := range fn.Params {
		if p.Name == "this" {
			continue
		}
		if v, ok := env.Get(p.Name); ok {
			if val, ok := v.(*values.Value); ok {
				f.Set(idx, val)
			}
		}
		idx++
	}
}
