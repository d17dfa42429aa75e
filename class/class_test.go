package class_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novalang/nova/class"
	"github.com/novalang/nova/mir"
	"github.com/novalang/nova/values"
)

func nativeMethod(name string) *values.Value {
	return values.NewNativeFunction(name, 0, func(values.Host, []*values.Value) (*values.Value, error) {
		return values.Unit, nil
	})
}

func TestLookupMethodOwnThenSuperThenInterfaceDefault(t *testing.T) {
	base := class.NewClass("Base", nil, nil, nil, nil)
	base.Methods["greet"] = nativeMethod("Base.greet")

	iface := &class.Interface{
		Name:            "Greeter",
		AbstractMethods: map[string]bool{"wave": true},
		DefaultMethods:  map[string]*values.Value{"wave": nativeMethod("Greeter.wave")},
	}
	sub := class.NewClass("Sub", base, nil, []*class.Interface{iface}, nil)

	m, ok := class.LookupMethod(sub, "greet")
	assert.True(t, ok)
	assert.Same(t, base.Methods["greet"], m)

	m, ok = class.LookupMethod(sub, "wave")
	assert.True(t, ok)
	assert.Same(t, iface.DefaultMethods["wave"], m)

	_, ok = class.LookupMethod(sub, "missing")
	assert.False(t, ok)
}

func TestLookupMethodOwnOverridesSuper(t *testing.T) {
	base := class.NewClass("Base", nil, nil, nil, nil)
	base.Methods["greet"] = nativeMethod("Base.greet")
	sub := class.NewClass("Sub", base, nil, nil, nil)
	sub.Methods["greet"] = nativeMethod("Sub.greet")

	m, ok := class.LookupMethod(sub, "greet")
	assert.True(t, ok)
	assert.Same(t, sub.Methods["greet"], m)
}

func TestHasUnimplementedAbstractDetectsMissingAndCaches(t *testing.T) {
	iface := &class.Interface{
		Name:            "Runner",
		AbstractMethods: map[string]bool{"run": true},
		DefaultMethods:  map[string]*values.Value{},
	}
	c := class.NewClass("Incomplete", nil, nil, []*class.Interface{iface}, nil)

	assert.True(t, class.HasUnimplementedAbstract(c))
	// second call hits the cached path; result must stay stable
	assert.True(t, class.HasUnimplementedAbstract(c))

	complete := class.NewClass("Complete", nil, nil, []*class.Interface{iface}, nil)
	complete.Methods["run"] = nativeMethod("Complete.run")
	assert.False(t, class.HasUnimplementedAbstract(complete))
}

func TestInterfaceSAMDetection(t *testing.T) {
	sam := &class.Interface{
		Name:            "Callback",
		AbstractMethods: map[string]bool{"call": true},
	}
	name, ok := sam.IsSAM()
	assert.True(t, ok)
	assert.Equal(t, "call", name)

	notSAM := &class.Interface{
		Name:            "TwoMethods",
		AbstractMethods: map[string]bool{"call": true, "cancel": true},
	}
	_, ok = notSAM.IsSAM()
	assert.False(t, ok)

	// toString/hashCode/equals never count toward SAM arity
	onlyBoilerplate := &class.Interface{
		Name:            "JustEquals",
		AbstractMethods: map[string]bool{"equals": true, "hashCode": true, "toString": true},
	}
	_, ok = onlyBoilerplate.IsSAM()
	assert.False(t, ok)
}

func TestFieldLayoutAndOverflow(t *testing.T) {
	c := class.NewClass("Point", nil, nil, nil, []string{"x", "y"})
	obj := values.NewObject(c, len(c.FieldLayout))

	class.SetField(c, obj, "x", values.NewInt(1))
	class.SetField(c, obj, "label", values.NewString("origin")) // overflow

	idx, ok := c.FieldIndex("x")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	v, ok := class.LookupField(c, obj, "x")
	assert.True(t, ok)
	assert.Equal(t, int32(1), v.I)

	v, ok = class.LookupField(c, obj, "label")
	assert.True(t, ok)
	assert.Equal(t, "origin", v.Str)

	_, ok = class.LookupField(c, obj, "nope")
	assert.False(t, ok)
}

func TestLookupFieldFallsBackToStaticFields(t *testing.T) {
	c := class.NewClass("Counter", nil, nil, nil, nil)
	c.StaticFields["count"] = values.NewInt(42)
	obj := values.NewObject(c, 0)

	v, ok := class.LookupField(c, obj, "count")
	assert.True(t, ok)
	assert.Equal(t, int32(42), v.I)
}

func TestCheckSealedExtensionRequiresSameModule(t *testing.T) {
	sealed := class.NewClass("Sealed", nil, nil, nil, nil)
	sealed.Sealed = true

	assert.True(t, class.CheckSealedExtension(nil, "any", nil))
	assert.False(t, class.CheckSealedExtension(sealed, "other", map[string]bool{"core": true}))
	assert.True(t, class.CheckSealedExtension(sealed, "core", map[string]bool{"core": true}))
	assert.False(t, class.CheckSealedExtension(sealed, "core", nil))
}

func TestConstructorArityAndRequiredParams(t *testing.T) {
	ctor := &class.Constructor{
		Params: []mir.Param{
			{Name: "a"},
			{Name: "b", HasDefault: true},
		},
	}
	assert.Equal(t, 2, ctor.Arity())
	assert.Equal(t, 1, ctor.RequiredParams())

	variadic := &class.Constructor{
		Params: []mir.Param{
			{Name: "a"},
			{Name: "rest", IsVariadic: true},
		},
	}
	assert.Equal(t, -1, variadic.Arity())
	assert.Equal(t, 1, variadic.RequiredParams())
}

func TestResolveBoundMethodWrapsReceiver(t *testing.T) {
	c := class.NewClass("Thing", nil, nil, nil, nil)
	c.Methods["id"] = nativeMethod("Thing.id")
	receiver := values.NewObject(c, 0)

	bound, ok := c.ResolveBoundMethod(receiver, "id")
	assert.True(t, ok)
	bm := bound.AsBoundMethod()
	assert.Same(t, receiver, bm.Receiver)
	assert.Same(t, c.Methods["id"], bm.Callable)

	_, ok = c.ResolveBoundMethod(receiver, "missing")
	assert.False(t, ok)
}
