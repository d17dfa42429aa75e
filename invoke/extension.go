package invoke

import "github.com/novalang/nova/values"

// ExtensionLookup resolves the dispatch order of spec §4.5 against a
// symbol table satisfying this narrow interface; package registry's
// Registry implements it.
type ExtensionLookup interface {
	LookupExtension(typeName, className, method string, hostExact, hostSupers []string) (*values.Value, bool)
}

// ResolveExtension finds an extension method for receiver and prepends
// receiver to args, per spec §4.5's "the receiver is prepended to the
// positional argument list at call time."
func ResolveExtension(reg ExtensionLookup, receiver *values.Value, method string, args []*values.Value, hostExact, hostSupers []string) (*values.Value, []*values.Value, bool) {
	className := ""
	if receiver.Kind == values.KindObject {
		className = receiver.AsObject().Class.ClassName()
	}
	fn, ok := reg.LookupExtension(receiver.TypeName(), className, method, hostExact, hostSupers)
	if !ok {
		return nil, nil, false
	}
	withReceiver := make([]*values.Value, 0, len(args)+1)
	withReceiver = append(withReceiver, receiver)
	withReceiver = append(withReceiver, args...)
	return fn, withReceiver, true
}

// BindMethod produces a BoundMethod pairing receiver and callable (spec
// §4.2's "instance-method binding produces a BoundMethod").
func BindMethod(receiver, callable *values.Value) *values.Value {
	return values.NewBoundMethod(receiver, callable)
}

// CallBound prepares the arguments for invoking a BoundMethod: the
// receiver becomes the implicit `this`, args pass through unchanged. The
// actual frame setup/execution is the interpreter's job; this helper just
// unpacks the pair for that call site.
func CallBound(bm *values.Value) (receiver, callable *values.Value) {
	b := bm.AsBoundMethod()
	return b.Receiver, b.Callable
}
