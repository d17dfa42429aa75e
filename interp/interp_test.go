package interp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novalang/nova/class"
	"github.com/novalang/nova/config"
	"github.com/novalang/nova/dispatch"
	"github.com/novalang/nova/environment"
	"github.com/novalang/nova/interp"
	"github.com/novalang/nova/mir"
	"github.com/novalang/nova/novaerr"
	"github.com/novalang/nova/registry"
	"github.com/novalang/nova/values"
)

func newInterp(policy config.SecurityPolicy) *interp.Interpreter {
	return interp.New(registry.New(), dispatch.New(), policy, environment.NewGlobal())
}

// oneBlock builds a single-basic-block function body, the simplest shape
// the register interpreter executes.
func oneBlock(name string, frameSize int, instructions []mir.Instruction) *mir.Function {
	return &mir.Function{
		Name:       name,
		FrameSize:  frameSize,
		EntryBlock: 0,
		Blocks:     []*mir.BasicBlock{{ID: 0, Instructions: instructions}},
	}
}

func TestRunAddsTwoRawIntConstants(t *testing.T) {
	in := newInterp(config.Default())
	fn := oneBlock("add", 3, []mir.Instruction{
		{Opcode: mir.OP_CONST_INT, Dest: 0, Extra: mir.Const{I64: 2}},
		{Opcode: mir.OP_CONST_INT, Dest: 1, Extra: mir.Const{I64: 3}},
		{Opcode: mir.OP_ADD, Dest: 2, Src1: 0, Src2: 1},
		{Opcode: mir.OP_RETURN, Src1: 2},
	})

	v, err := in.Run(fn, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, values.KindInt, v.Kind)
	assert.Equal(t, int32(5), v.I)
}

func TestRunDivisionByZeroOnRawFastPath(t *testing.T) {
	in := newInterp(config.Default())
	fn := oneBlock("divzero", 3, []mir.Instruction{
		{Opcode: mir.OP_CONST_INT, Dest: 0, Extra: mir.Const{I64: 1}},
		{Opcode: mir.OP_CONST_INT, Dest: 1, Extra: mir.Const{I64: 0}},
		{Opcode: mir.OP_DIV, Dest: 2, Src1: 0, Src2: 1},
		{Opcode: mir.OP_RETURN, Src1: 2},
	})

	_, err := in.Run(fn, nil, nil)
	require.Error(t, err)
	kind, ok := novaerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, novaerr.KindArithZero, kind)
}

func TestRunBindsPositionalParameters(t *testing.T) {
	in := newInterp(config.Default())
	fn := oneBlock("echo", 2, []mir.Instruction{
		{Opcode: mir.OP_CONST_INT, Dest: 1, Extra: mir.Const{I64: 1}},
		{Opcode: mir.OP_ADD, Dest: 1, Src1: 0, Src2: 1},
		{Opcode: mir.OP_RETURN, Src1: 1},
	})
	fn.Params = []mir.Param{{Name: "x"}}

	v, err := in.Run(fn, []*values.Value{values.NewInt(41)}, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v.I)
}

func TestRunBranchTrueSkipsLoopBody(t *testing.T) {
	in := newInterp(config.Default())
	// if (false) goto block1 else fallthrough to block0's next instr -> const 7
	fn := &mir.Function{
		Name:       "branch",
		FrameSize:  2,
		EntryBlock: 0,
		Blocks: []*mir.BasicBlock{
			{ID: 0, Instructions: []mir.Instruction{
				{Opcode: mir.OP_CONST_BOOL, Dest: 0, Extra: mir.Const{Bool: false}},
				{Opcode: mir.OP_BRANCH_TRUE, Src1: 0, Target: 1},
				{Opcode: mir.OP_CONST_INT, Dest: 1, Extra: mir.Const{I64: 7}},
				{Opcode: mir.OP_RETURN, Src1: 1},
			}},
			{ID: 1, Instructions: []mir.Instruction{
				{Opcode: mir.OP_CONST_INT, Dest: 1, Extra: mir.Const{I64: 99}},
				{Opcode: mir.OP_RETURN, Src1: 1},
			}},
		},
	}

	v, err := in.Run(fn, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(7), v.I)
}

func TestRunEnforcesRecursionLimit(t *testing.T) {
	policy := config.Default()
	policy.MaxRecursionDepth = 2
	in := newInterp(policy)

	// recurse calls itself via OP_CALL against register 0, which OP_ENV_GET
	// resolves from the frame's own closure captures — a self-reference
	// cheap enough to build without a real frontend.
	fn := oneBlock("recurse", 2, []mir.Instruction{
		{Opcode: mir.OP_ENV_GET, Dest: 0, Name: "self"},
		{Opcode: mir.OP_CALL, Dest: 1, Src1: 0, Src2: 0, Extra: mir.Const{I64: 0}},
		{Opcode: mir.OP_RETURN, Src1: 1},
	})
	mf := values.NewMirFunction("recurse", fn, map[string]*values.Value{})
	mf.AsMirFunction().Captures["self"] = mf

	_, err := in.Invoke(mf, nil)
	require.Error(t, err)
	kind, ok := novaerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, novaerr.KindRecursionLimit, kind)
}

func TestCallVirtualDispatchesThroughClassModel(t *testing.T) {
	in := newInterp(config.Default())

	c := class.NewClass("Counter", nil, nil, nil, []string{"n"})
	method := oneBlock("Counter.get", 2, []mir.Instruction{
		{Opcode: mir.OP_GET_FIELD, Dest: 1, Src1: 0, Name: "n"},
		{Opcode: mir.OP_RETURN, Src1: 1},
	})
	method.Params = nil
	c.Methods["get"] = values.NewMirFunction("Counter.get", method, nil)

	recv := values.NewObject(c, 1)
	idx, _ := c.FieldIndex("n")
	recv.AsObject().Slots[idx] = values.NewInt(10)

	callerFn := oneBlock("caller", 2, []mir.Instruction{
		{Opcode: mir.OP_CALL_VIRTUAL, Dest: 1, Src1: 0, Name: "get", Extra: mir.Const{I64: 0}},
		{Opcode: mir.OP_RETURN, Src1: 1},
	})
	callerFn.Params = []mir.Param{{Name: "this"}}

	v, err := in.Run(callerFn, []*values.Value{recv}, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(10), v.I)
}

func TestSetFieldAndGetFieldRoundTrip(t *testing.T) {
	in := newInterp(config.Default())
	c := class.NewClass("Box", nil, nil, nil, []string{"value"})

	fn := oneBlock("setget", 3, []mir.Instruction{
		{Opcode: mir.OP_CONST_INT, Dest: 1, Extra: mir.Const{I64: 5}},
		{Opcode: mir.OP_SET_FIELD, Dest: 0, Src1: 1, Name: "value"},
		{Opcode: mir.OP_GET_FIELD, Dest: 2, Src1: 0, Name: "value"},
		{Opcode: mir.OP_RETURN, Src1: 2},
	})
	fn.Params = []mir.Param{{Name: "this"}}

	box := values.NewObject(c, 1)
	v, err := in.Run(fn, []*values.Value{box}, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(5), v.I)
}
