package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/novalang/nova/mir"
)

// stubFrontend is the "minimal line-oriented stub frontend sufficient to
// drive the examples in this repo's tests" that SPEC_FULL.md §6.1
// describes: just enough source recognition (literals and one binary
// operator) to exercise Engine.Eval end to end without a real lexer,
// parser, or AST→HIR→MIR lowering pass, all of which are out of scope
// (spec §1). A real language frontend plugs in via engine.SetFrontend.
type stubFrontend struct{}

var opTable = map[string]mir.Opcode{
	"+": mir.OP_ADD,
	"-": mir.OP_SUB,
	"*": mir.OP_MUL,
	"/": mir.OP_DIV,
	"%": mir.OP_MOD,
}

func (stubFrontend) Parse(source, filename string) (*mir.Program, error) {
	src := strings.TrimSpace(source)

	if lhs, op, rhs, ok := splitBinary(src); ok {
		l, err := parseLiteral(lhs)
		if err != nil {
			return nil, err
		}
		r, err := parseLiteral(rhs)
		if err != nil {
			return nil, err
		}
		block := &mir.BasicBlock{ID: 0, Instructions: []mir.Instruction{
			{Opcode: constOpcode(l), Dest: 0, Extra: l},
			{Opcode: constOpcode(r), Dest: 1, Extra: r},
			{Opcode: opTable[op], Dest: 2, Src1: 0, Src2: 1},
			{Opcode: mir.OP_RETURN, Src1: 2},
		}}
		return oneBlockProgram(filename, block, 3), nil
	}

	lit, err := parseLiteral(src)
	if err != nil {
		return nil, err
	}
	block := &mir.BasicBlock{ID: 0, Instructions: []mir.Instruction{
		{Opcode: constOpcode(lit), Dest: 0, Extra: lit},
		{Opcode: mir.OP_RETURN, Src1: 0},
	}}
	return oneBlockProgram(filename, block, 1), nil
}

func oneBlockProgram(filename string, block *mir.BasicBlock, frameSize int) *mir.Program {
	fn := &mir.Function{
		Name:       "<main>",
		FrameSize:  frameSize,
		EntryBlock: 0,
		Blocks:     []*mir.BasicBlock{block},
		SourceFile: filename,
	}
	return &mir.Program{Functions: map[string]*mir.Function{fn.Name: fn}, Entry: fn.Name}
}

// splitBinary recognizes "<literal> <op> <literal>" with exactly one
// space-delimited operator, for the illustrative stub only.
func splitBinary(src string) (lhs, op, rhs string, ok bool) {
	parts := strings.Fields(src)
	if len(parts) != 3 {
		return "", "", "", false
	}
	if _, known := opTable[parts[1]]; !known {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

func constOpcode(c mir.Const) mir.Opcode {
	switch c.Kind {
	case mir.ConstInt:
		return mir.OP_CONST_INT
	case mir.ConstLong:
		return mir.OP_CONST_LONG
	case mir.ConstDouble:
		return mir.OP_CONST_DOUBLE
	case mir.ConstBool:
		return mir.OP_CONST_BOOL
	case mir.ConstString:
		return mir.OP_CONST_STRING
	default:
		return mir.OP_CONST_NULL
	}
}

func parseLiteral(tok string) (mir.Const, error) {
	switch tok {
	case "true":
		return mir.Const{Kind: mir.ConstBool, Bool: true}, nil
	case "false":
		return mir.Const{Kind: mir.ConstBool, Bool: false}, nil
	case "null":
		return mir.Const{Kind: mir.ConstNull}, nil
	}
	if strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`) && len(tok) >= 2 {
		return mir.Const{Kind: mir.ConstString, Str: tok[1 : len(tok)-1]}, nil
	}
	if i, err := strconv.ParseInt(tok, 10, 32); err == nil {
		return mir.Const{Kind: mir.ConstInt, I64: i}, nil
	}
	if l, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return mir.Const{Kind: mir.ConstLong, I64: l}, nil
	}
	if d, err := strconv.ParseFloat(tok, 64); err == nil {
		return mir.Const{Kind: mir.ConstDouble, F64: d}, nil
	}
	return mir.Const{}, fmt.Errorf("stub frontend: cannot parse %q (only literals and one binary operator are supported)", tok)
}
