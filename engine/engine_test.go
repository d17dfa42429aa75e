package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novalang/nova/engine"
	"github.com/novalang/nova/mir"
	"github.com/novalang/nova/values"
)

func constFn(name string, i int64) *mir.Function {
	return &mir.Function{
		Name:       name,
		FrameSize:  1,
		EntryBlock: 0,
		Blocks: []*mir.BasicBlock{{ID: 0, Instructions: []mir.Instruction{
			{Opcode: mir.OP_CONST_INT, Dest: 0, Extra: mir.Const{I64: i}},
			{Opcode: mir.OP_RETURN, Src1: 0},
		}}},
	}
}

func TestEvalProgramRunsEntryFunctionWithoutFrontend(t *testing.T) {
	e := engine.New()
	prog := &mir.Program{Entry: "main", Functions: map[string]*mir.Function{"main": constFn("main", 7)}}

	v, err := e.EvalProgram(prog)
	require.NoError(t, err)
	assert.Equal(t, int32(7), v.I)
}

func TestEvalWithoutFrontendInstalledErrors(t *testing.T) {
	e := engine.New()
	_, err := e.Eval("whatever")
	require.Error(t, err)
}

type fakeFrontend struct {
	prog *mir.Program
	err  error
}

func (f *fakeFrontend) Parse(source, filename string) (*mir.Program, error) {
	return f.prog, f.err
}

func TestEvalNamedRunsThroughInstalledFrontend(t *testing.T) {
	prog := &mir.Program{Entry: "main", Functions: map[string]*mir.Function{"main": constFn("main", 11)}}
	e := engine.New(engine.WithFrontend(&fakeFrontend{prog: prog}))

	v, err := e.EvalNamed("ignored source", "file.nova")
	require.NoError(t, err)
	assert.Equal(t, int32(11), v.I)
}

func TestRegisterNativeMakesItCallableAndVisibleGlobally(t *testing.T) {
	e := engine.New()
	e.RegisterNative("double", 1, func(host values.Host, args []*values.Value) (*values.Value, error) {
		return values.NewInt(args[0].I * 2), nil
	})

	bound, ok := e.Global().Get("double")
	require.True(t, ok)
	fn := bound.(*values.Value)
	v, err := fn.AsNativeFunction().Impl(nil, []*values.Value{values.NewInt(21)})
	require.NoError(t, err)
	assert.Equal(t, int32(42), v.I)
}

func TestConcurrentLaunchAndFutureGetRoundTrip(t *testing.T) {
	e := engine.New()
	launch, ok := e.Global().Get("concurrent.launch")
	require.True(t, ok)
	launchFn := launch.(*values.Value).AsNativeFunction()

	callback := values.NewNativeFunction("cb", 0, func(host values.Host, args []*values.Value) (*values.Value, error) {
		return values.NewInt(5), nil
	})
	futureVal, err := launchFn.Impl(nil, []*values.Value{callback})
	require.NoError(t, err)
	require.Equal(t, values.KindFuture, futureVal.Kind)

	get, ok := e.Global().Get("future.get")
	require.True(t, ok)
	getFn := get.(*values.Value).AsNativeFunction()

	var result *values.Value
	require.Eventually(t, func() bool {
		v, err := getFn.Impl(nil, []*values.Value{futureVal})
		if err != nil {
			return false
		}
		result = v
		return true
	}, time.Second, time.Millisecond)
	assert.Equal(t, int32(5), result.I)
}

func TestLoadModuleInstallsRegisteredNativeModule(t *testing.T) {
	e := engine.New()
	assert.True(t, e.LoadModule("nova.json"))
	assert.False(t, e.LoadModule("nova.unknown"))

	_, ok := e.Global().Get("json.parse")
	assert.True(t, ok)
}
