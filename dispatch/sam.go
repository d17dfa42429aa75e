package dispatch

import (
	"github.com/novalang/nova/class"
	"github.com/novalang/nova/values"
)

// SAMProxy adapts a plain callable value to a single-abstract-method
// interface: calling the interface's abstract method invokes the
// wrapped callable with the same positional arguments, in order (spec
// §4.6 "one SAM invocation = one callable call, with positional argument
// mapping preserving order").
type SAMProxy struct {
	Interface *class.Interface
	Method    string
	Callable  *values.Value
}

// NewSAMProxy recognises whether iface is single-abstract-method and, if
// so, wraps callable. The second return value is false when iface is not
// SAM.
func NewSAMProxy(iface *class.Interface, callable *values.Value) (*SAMProxy, bool) {
	method, ok := iface.IsSAM()
	if !ok {
		return nil, false
	}
	return &SAMProxy{Interface: iface, Method: method, Callable: callable}, true
}

// Invoke routes a SAM method call back into the wrapped callable via
// host, preserving positional argument order.
func (p *SAMProxy) Invoke(host values.Host, args []*values.Value) (*values.Value, error) {
	return host.Invoke(p.Callable, args)
}
