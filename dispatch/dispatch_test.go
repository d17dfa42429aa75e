package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novalang/nova/class"
	"github.com/novalang/nova/dispatch"
	"github.com/novalang/nova/values"
)

func nativeMethod(name string) *values.Value {
	return values.NewNativeFunction(name, 0, func(values.Host, []*values.Value) (*values.Value, error) {
		return values.Unit, nil
	})
}

func TestCacheMethodRoundTrip(t *testing.T) {
	c := dispatch.New()
	target := class.NewClass("Widget", nil, nil, nil, nil)
	key := dispatch.MethodKey{Class: target, Name: "render", ArgShape: dispatch.ArgShape(nil)}

	_, ok := c.GetMethod(key)
	assert.False(t, ok)

	m := nativeMethod("render")
	c.PutMethod(key, m)

	got, ok := c.GetMethod(key)
	assert.True(t, ok)
	assert.Same(t, m, got)
}

func TestArgShapeEncodesTypesAndNull(t *testing.T) {
	shape := dispatch.ArgShape([]*values.Value{values.NewInt(1), values.Null, values.NewString("x")})
	assert.Equal(t, "Int,null,String", shape)
	assert.Equal(t, "", dispatch.ArgShape(nil))
}

func TestHasHostMemberMemoisesProbeResult(t *testing.T) {
	c := dispatch.New()
	calls := 0
	probe := func() bool {
		calls++
		return true
	}

	assert.True(t, c.HasHostMember("java.util.List", "size", probe))
	assert.True(t, c.HasHostMember("java.util.List", "size", probe))
	assert.Equal(t, 1, calls)
}

func TestSAMProxyDetectsSingleAbstractMethod(t *testing.T) {
	iface := &class.Interface{
		Name:            "Callback",
		AbstractMethods: map[string]bool{"call": true},
	}
	callable := nativeMethod("callback")
	proxy, ok := dispatch.NewSAMProxy(iface, callable)
	assert.True(t, ok)
	assert.Equal(t, "call", proxy.Method)

	notSAM := &class.Interface{
		Name:            "Multi",
		AbstractMethods: map[string]bool{"a": true, "b": true},
	}
	_, ok = dispatch.NewSAMProxy(notSAM, callable)
	assert.False(t, ok)
}

func TestSelectOverloadExactBeatsVariadicBeatsNoMatch(t *testing.T) {
	candidates := []dispatch.Signature{
		{ParamTypes: []string{"String"}},
		{ParamTypes: []string{"String"}, IsVariadic: true},
		{ParamTypes: []string{"Int"}},
	}
	idx := dispatch.SelectOverload(candidates, []string{"String"})
	assert.Equal(t, 0, idx)

	idx = dispatch.SelectOverload(candidates, []string{"Bool"})
	assert.Equal(t, 1, idx, "only the variadic candidate accepts the mismatched Bool argument")
}

func TestSelectOverloadNullArgumentIsWild(t *testing.T) {
	candidates := []dispatch.Signature{
		{ParamTypes: []string{"String"}},
	}
	idx := dispatch.SelectOverload(candidates, []string{""})
	assert.Equal(t, 0, idx)
}

func TestSelectOverloadArityMismatchExcludesCandidate(t *testing.T) {
	candidates := []dispatch.Signature{
		{ParamTypes: []string{"String", "Int"}},
	}
	idx := dispatch.SelectOverload(candidates, []string{"String"})
	assert.Equal(t, -1, idx)
}
