// Package invoke implements the Invocation runtime (spec §4.3/§4.5):
// bound-method adaptation, constructor orchestration, parameter binding
// with named/positional/vararg/default resolution, and reified type
// parameters. Constructor orchestration lives here (not in package
// class) per the component split of spec §2.
package invoke

import (
	"github.com/novalang/nova/mir"
	"github.com/novalang/nova/novaerr"
	"github.com/novalang/nova/values"
)

// Evaluator runs a default-value expression or a constructor/function
// body in a given environment and returns its result. The concrete
// implementation is package interp's Interpreter; invoke only needs this
// narrow seam to avoid importing interp (which imports invoke).
type Evaluator interface {
	// EvalBlock runs fn's block with the given id inside env and returns
	// the value produced by its terminating instruction (a RETURN's
	// operand, for a default-value block).
	EvalBlock(fn *mir.Function, blockID int, env EnvLike) (*values.Value, error)
}

// EnvLike is the minimal environment surface parameter binding needs;
// satisfied by *environment.Environment.
type EnvLike interface {
	Define(name string, val interface{}) bool
}

// Bindings is the result of a successful parameter bind: each declared
// parameter name mapped to its resolved value, in declaration order.
type Bindings struct {
	Names  []string
	Values []*values.Value
}

// BindParameters implements spec §4.5's algorithm exactly: for each
// declared parameter, named argument wins, then positional (vararg
// parameters consume all remaining positional args into a List), then a
// default-value expression evaluated via eval, then vararg-empty, else
// MissingArgument. Excess positional arguments fail TooManyArguments;
// unknown named arguments fail UnknownNamedArgument.
func BindParameters(fn *mir.Function, positional []*values.Value, named map[string]*values.Value, env EnvLike, eval Evaluator) (*Bindings, error) {
	result := &Bindings{}
	posIdx := 0
	usedNamed := make(map[string]bool, len(named))

	for _, p := range fn.Params {
		if v, ok := named[p.Name]; ok {
			result.Names = append(result.Names, p.Name)
			result.Values = append(result.Values, v)
			usedNamed[p.Name] = true
			env.Define(p.Name, v)
			continue
		}

		if p.IsVariadic {
			rest := positional[posIdx:]
			posIdx = len(positional)
			v := values.NewList(append([]*values.Value{}, rest...)...)
			result.Names = append(result.Names, p.Name)
			result.Values = append(result.Values, v)
			env.Define(p.Name, v)
			continue
		}

		if posIdx < len(positional) {
			v := positional[posIdx]
			posIdx++
			result.Names = append(result.Names, p.Name)
			result.Values = append(result.Values, v)
			env.Define(p.Name, v)
			continue
		}

		if p.HasDefault {
			v, err := eval.EvalBlock(fn, p.DefaultBlock, env)
			if err != nil {
				return nil, err
			}
			result.Names = append(result.Names, p.Name)
			result.Values = append(result.Values, v)
			env.Define(p.Name, v)
			continue
		}

		return nil, novaerr.New(novaerr.KindMissingArgument, "missing required argument %q", p.Name)
	}

	if posIdx < len(positional) {
		return nil, novaerr.New(novaerr.KindTooManyArguments, "expected at most %d positional arguments, got %d", posIdx, len(positional))
	}
	for name := range named {
		if !usedNamed[name] {
			return nil, novaerr.New(novaerr.KindUnknownNamedArgument, "unknown named argument %q", name)
		}
	}

	return result, nil
}

// BindReifiedTypeParameters converts each supplied type argument to its
// textual type name and installs it in env under the reserved
// "$type$"-prefixed key (spec §4.5).
func BindReifiedTypeParameters(names []string, typeArgs []string, env EnvLike) {
	for i, name := range names {
		if i >= len(typeArgs) {
			break
		}
		env.Define("$type$"+name, values.NewString(typeArgs[i]))
	}
}
