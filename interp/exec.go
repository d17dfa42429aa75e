package interp

import (
	"github.com/novalang/nova/class"
	"github.com/novalang/nova/environment"
	"github.com/novalang/nova/invoke"
	"github.com/novalang/nova/mir"
	"github.com/novalang/nova/novaerr"
	"github.com/novalang/nova/operators"
	"github.com/novalang/nova/values"
)

// Calling convention for CALL/CALL_VIRTUAL/NEW: Src1 names the callable
// (or receiver, for CALL_VIRTUAL) register; Extra.I64 is the argument
// count; the arguments themselves occupy the Extra.I64 consecutive
// registers starting at Src2.

// execBlock runs blockID's instructions against frame/env until a
// terminating instruction (RETURN/THROW/BREAK/CONTINUE) or a JUMP/BRANCH
// moves control to another block, which this loop also follows. It
// implements the materialisation rule of spec §4.4: only values that
// escape the frame are boxed through Materialize; raw-int registers
// consumed and rewritten locally stay raw.
func (in *Interpreter) execBlock(frame *MirFrame, env *environment.Environment, blockID int) (*values.Value, Signal, error) {
	block := frame.Function.Block(blockID)
	pc := 0

	for {
		if block == nil {
			return values.Unit, none, nil
		}
		if pc >= len(block.Instructions) {
			return values.Unit, none, nil
		}
		inst := &block.Instructions[pc]
		from := block.ID

		switch inst.Opcode {
		case mir.OP_NOP:
			pc++

		case mir.OP_CONST_INT:
			frame.SetRawInt(inst.Dest, inst.Extra.I64)
			pc++
		case mir.OP_CONST_LONG:
			frame.Set(inst.Dest, values.NewLong(inst.Extra.I64))
			pc++
		case mir.OP_CONST_FLOAT:
			frame.Set(inst.Dest, values.NewFloat(inst.Extra.F32))
			pc++
		case mir.OP_CONST_DOUBLE:
			frame.Set(inst.Dest, values.NewDouble(inst.Extra.F64))
			pc++
		case mir.OP_CONST_STRING:
			frame.Set(inst.Dest, values.NewString(inst.Extra.Str))
			pc++
		case mir.OP_CONST_BOOL:
			frame.Set(inst.Dest, values.NewBool(inst.Extra.Bool))
			pc++
		case mir.OP_CONST_NULL:
			frame.Set(inst.Dest, values.Null)
			pc++
		case mir.OP_CONST_UNIT:
			frame.Set(inst.Dest, values.Unit)
			pc++

		case mir.OP_MOVE:
			frame.Move(inst.Dest, inst.Src1)
			pc++

		case mir.OP_ADD, mir.OP_SUB, mir.OP_MUL, mir.OP_DIV, mir.OP_MOD:
			if err := in.execArith(frame, inst); err != nil {
				return nil, none, err
			}
			pc++

		case mir.OP_CMP_EQ, mir.OP_CMP_NE, mir.OP_CMP_LT, mir.OP_CMP_LE, mir.OP_CMP_GT, mir.OP_CMP_GE:
			if err := in.execCompare(frame, inst); err != nil {
				return nil, none, err
			}
			pc++

		case mir.OP_COMPARE:
			l := frame.Materialize(inst.Src1)
			r := frame.Materialize(inst.Src2)
			v, err := in.binary(operators.OpCompare, l, r)
			if err != nil {
				return nil, none, err
			}
			frame.Set(inst.Dest, v)
			pc++

		case mir.OP_JUMP:
			block = frame.Function.Block(inst.Target)
			pc = 0

		case mir.OP_BRANCH_TRUE, mir.OP_BRANCH_FALSE:
			cond := frame.Materialize(inst.Src1).Truthy()
			if inst.Opcode == mir.OP_BRANCH_FALSE {
				cond = !cond
			}
			if cond {
				block = frame.Function.Block(inst.Target)
				pc = 0
			} else {
				pc++
			}

		case mir.OP_GET_FIELD:
			recv := frame.Materialize(inst.Src1)
			v, err := in.getField(recv, inst.Name)
			if err != nil {
				return nil, none, err
			}
			frame.Set(inst.Dest, v)
			pc++

		case mir.OP_SET_FIELD:
			recv := frame.Materialize(inst.Dest)
			val := frame.Materialize(inst.Src1)
			in.setField(recv, inst.Name, val)
			pc++

		case mir.OP_ENV_GET:
			if frame.Env != nil {
				if v, ok := frame.Env[inst.Name]; ok {
					frame.Set(inst.Dest, v)
					pc++
					continue
				}
			}
			frame.Set(inst.Dest, values.Null)
			pc++

		case mir.OP_ENV_SET:
			if frame.Env == nil {
				frame.Env = make(map[string]*values.Value)
			}
			frame.Env[inst.Name] = frame.Materialize(inst.Src1)
			pc++

		case mir.OP_CALL:
			callable := frame.Materialize(inst.Src1)
			args := in.gatherArgs(frame, inst)
			v, err := in.Invoke(callable, args)
			if err != nil {
				return nil, none, err
			}
			frame.Set(inst.Dest, v)
			pc++

		case mir.OP_CALL_VIRTUAL:
			recv := frame.Materialize(inst.Src1)
			args := in.gatherArgs(frame, inst)
			v, err := in.callVirtual(recv, inst.Name, args)
			if err != nil {
				return nil, none, err
			}
			frame.Set(inst.Dest, v)
			pc++

		case mir.OP_NEW:
			args := in.gatherArgs(frame, inst)
			v, err := in.instantiateByName(inst.Name, args)
			if err != nil {
				return nil, none, err
			}
			frame.Set(inst.Dest, v)
			pc++

		case mir.OP_RETURN:
			return frame.Materialize(inst.Src1), Signal{Kind: SignalReturn, Value: frame.Materialize(inst.Src1)}, nil

		case mir.OP_THROW:
			return nil, Signal{Kind: SignalThrow, Value: frame.Materialize(inst.Src1)}, nil

		case mir.OP_BREAK:
			return nil, Signal{Kind: SignalBreak, Label: inst.Extra.Str}, nil

		case mir.OP_CONTINUE:
			return nil, Signal{Kind: SignalContinue, Label: inst.Extra.Str}, nil

		case mir.OP_NEW_LIST:
			frame.Set(inst.Dest, values.NewList())
			pc++

		case mir.OP_LIST_APPEND:
			l := frame.Materialize(inst.Dest)
			elem := frame.Materialize(inst.Src1)
			list := l.AsList()
			list.Elements = append(list.Elements, elem)
			pc++

		case mir.OP_NEW_MAP:
			frame.Set(inst.Dest, values.NewMap())
			pc++

		case mir.OP_MAP_PUT:
			m := frame.Materialize(inst.Dest)
			key := frame.Materialize(inst.Src1)
			val := frame.Materialize(inst.Src2)
			m.AsMap().Put(key, val)
			pc++

		default:
			return nil, none, novaerr.New(novaerr.KindTypeOp, "unimplemented opcode %s", inst.Opcode)
		}

		// A loop back-edge is any JUMP/BRANCH to a block id lower than
		// or equal to the current one; the compiler is trusted to only
		// emit such edges at actual loop back-edges (spec §4.7).
		if pc == 0 && block != nil && block.ID <= from {
			if err := in.checkLoopLimit(frame); err != nil {
				return nil, none, err
			}
		}

		if block == nil || pc >= len(block.Instructions) {
			return values.Unit, none, nil
		}
	}
}

func (in *Interpreter) gatherArgs(frame *MirFrame, inst *mir.Instruction) []*values.Value {
	n := int(inst.Extra.I64)
	args := make([]*values.Value, n)
	for i := 0; i < n; i++ {
		args[i] = frame.Materialize(inst.Src2 + i)
	}
	return args
}

// execArith implements spec §4.4's raw-int fast path: if both operands
// are raw ints, perform wrapping 32-bit arithmetic directly in raw[] and
// skip boxing; otherwise materialise and delegate to OperatorSemantics.
func (in *Interpreter) execArith(frame *MirFrame, inst *mir.Instruction) error {
	if frame.IsRaw(inst.Src1) && frame.IsRaw(inst.Src2) {
		a := int32(frame.Raw[inst.Src1])
		b := int32(frame.Raw[inst.Src2])
		switch inst.Opcode {
		case mir.OP_ADD:
			frame.SetRawInt(inst.Dest, int64(a+b))
			return nil
		case mir.OP_SUB:
			frame.SetRawInt(inst.Dest, int64(a-b))
			return nil
		case mir.OP_MUL:
			frame.SetRawInt(inst.Dest, int64(a*b))
			return nil
		case mir.OP_DIV:
			if b == 0 {
				return novaerr.New(novaerr.KindArithZero, "division by zero")
			}
			frame.SetRawInt(inst.Dest, int64(a/b))
			return nil
		case mir.OP_MOD:
			if b == 0 {
				return novaerr.New(novaerr.KindArithZero, "modulo by zero")
			}
			frame.SetRawInt(inst.Dest, int64(a%b))
			return nil
		}
	}

	l := frame.Materialize(inst.Src1)
	r := frame.Materialize(inst.Src2)
	var op operators.Op
	switch inst.Opcode {
	case mir.OP_ADD:
		op = operators.OpAdd
	case mir.OP_SUB:
		op = operators.OpSub
	case mir.OP_MUL:
		op = operators.OpMul
	case mir.OP_DIV:
		op = operators.OpDiv
	case mir.OP_MOD:
		op = operators.OpMod
	}
	v, err := in.binary(op, l, r)
	if err != nil {
		return err
	}
	frame.Set(inst.Dest, v)
	return nil
}

func (in *Interpreter) execCompare(frame *MirFrame, inst *mir.Instruction) error {
	l := frame.Materialize(inst.Src1)
	r := frame.Materialize(inst.Src2)

	// EQ/NE are defined over every value (spec §3.1's equality table,
	// §8.1 invariant #3) via valuesEqual directly: they must not fail
	// just because compare() has no ordering for, say, two Nulls or two
	// Objects.
	var result bool
	switch inst.Opcode {
	case mir.OP_CMP_EQ:
		result = valuesEqual(l, r)
	case mir.OP_CMP_NE:
		result = !valuesEqual(l, r)
	default:
		cmp, err := in.binary(operators.OpCompare, l, r)
		if err != nil {
			return err
		}
		n := cmp.I
		switch inst.Opcode {
		case mir.OP_CMP_LT:
			result = n < 0
		case mir.OP_CMP_LE:
			result = n <= 0
		case mir.OP_CMP_GT:
			result = n > 0
		case mir.OP_CMP_GE:
			result = n >= 0
		}
	}
	frame.Set(inst.Dest, values.NewBool(result))
	return nil
}

func (in *Interpreter) getField(recv *values.Value, name string) (*values.Value, error) {
	if recv.Kind != values.KindObject {
		return nil, novaerr.New(novaerr.KindUndefinedProperty, "cannot access field %q of %s", name, recv.TypeName())
	}
	obj := recv.AsObject()
	c, ok := obj.Class.(interface {
		FieldIndex(string) (int, bool)
	})
	if !ok {
		return nil, novaerr.New(novaerr.KindUndefinedProperty, "undefined property %q", name)
	}
	if idx, ok := c.FieldIndex(name); ok {
		return obj.Slots[idx], nil
	}
	if obj.Overflow != nil {
		if v, ok := obj.Overflow[name]; ok {
			return v, nil
		}
	}
	return nil, novaerr.New(novaerr.KindUndefinedProperty, "undefined property %q", name)
}

func (in *Interpreter) setField(recv *values.Value, name string, val *values.Value) {
	if recv.Kind != values.KindObject {
		return
	}
	obj := recv.AsObject()
	if c, ok := obj.Class.(interface {
		FieldIndex(string) (int, bool)
	}); ok {
		if idx, ok := c.FieldIndex(name); ok {
			obj.Slots[idx] = val
			return
		}
	}
	if obj.Overflow == nil {
		obj.Overflow = make(map[string]*values.Value)
	}
	obj.Overflow[name] = val
}

func (in *Interpreter) callVirtual(recv *values.Value, name string, args []*values.Value) (*values.Value, error) {
	if recv.Kind != values.KindObject {
		return nil, novaerr.New(novaerr.KindUndefinedProperty, "cannot call method %q on %s", name, recv.TypeName())
	}
	obj := recv.AsObject()
	c, ok := obj.Class.(*class.Class)
	if !ok {
		return nil, novaerr.New(novaerr.KindUndefinedProperty, "undefined method %q", name)
	}
	m, ok := in.lookupMethodCached(c, name, args)
	if !ok {
		return nil, novaerr.New(novaerr.KindUndefinedProperty, "undefined method %q on %s", name, recv.TypeName())
	}
	bound := invoke.BindMethod(recv, m)
	return in.Invoke(bound, args)
}

func valuesEqual(l, r *values.Value) bool {
	if l.Kind != r.Kind {
		if l.IsNumber() && r.IsNumber() {
			return l.AsDouble() == r.AsDouble()
		}
		return false
	}
	switch l.Kind {
	case values.KindNull, values.KindUnit:
		return true
	case values.KindBool:
		return l.B == r.B
	case values.KindInt:
		return l.I == r.I
	case values.KindLong:
		return l.L == r.L
	case values.KindFloat:
		return l.F32 == r.F32
	case values.KindDouble:
		return l.F64 == r.F64
	case values.KindChar:
		return l.Ch == r.Ch
	case values.KindString:
		return l.Str == r.Str
	case values.KindPair:
		p1, p2 := l.AsPair(), r.AsPair()
		return valuesEqual(p1.First, p2.First) && valuesEqual(p1.Second, p2.Second)
	case values.KindRange:
		rg1, rg2 := l.AsRange(), r.AsRange()
		return *rg1 == *rg2
	case values.KindObject:
		lo, ro := l.AsObject(), r.AsObject()
		if lo.Class.IsData() && ro.Class.IsData() && lo.Class.ClassName() == ro.Class.ClassName() {
			return dataFieldsEqual(lo, ro)
		}
		return l.Ref == r.Ref
	default:
		return l.Ref == r.Ref
	}
}

// dataFieldsEqual compares two instances of the same data class
// element-wise over DataFieldOrder (spec §3.2/§8.1#3), instead of by
// identity.
func dataFieldsEqual(l, r *values.Object) bool {
	for _, name := range l.Class.DataFields() {
		lv, lok := values.ObjectField(l, name)
		rv, rok := values.ObjectField(r, name)
		if !lok {
			lv = values.Null
		}
		if !rok {
			rv = values.Null
		}
		if !valuesEqual(lv, rv) {
			return false
		}
	}
	return true
}
