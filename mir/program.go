package mir

// ConstKind identifies which field of Const is meaningful.
type ConstKind byte

const (
	ConstNull ConstKind = iota
	ConstUnit
	ConstBool
	ConstInt
	ConstLong
	ConstFloat
	ConstDouble
	ConstChar
	ConstString
)

// Const is a compact, boxing-free constant-pool entry. The interpreter
// converts a Const to a values.Value only at the point of use (CONST_*
// instructions), keeping mir free of any dependency on the value domain.
type Const struct {
	Kind ConstKind
	I64  int64   // Int, Long, Char (narrowed at use) store their bits here
	F32  float32
	F64  float64
	Str  string
	Bool bool
}

// Instruction is one operation within a BasicBlock. Register indices of -1
// mean "unused" for Dest, Src1, Src2.
type Instruction struct {
	Opcode Opcode
	Dest   int
	Src1   int
	Src2   int
	Extra  Const // constant payload for CONST_* and labelled break/continue
	Target int   // block id for JUMP/BRANCH_*, or Const-pool-free literal arg count for NEW_LIST/NEW_MAP
	Name   string // field/method/variable name operand, when applicable
}

// BasicBlock is a straight-line run of instructions terminated by a jump,
// branch, return, or throw.
type BasicBlock struct {
	ID           int
	Instructions []Instruction
}

// Param describes one declared parameter of a Function, enough for
// Invocation's binding algorithm (§4.5) to run without re-consulting the
// lowering pipeline.
type Param struct {
	Name       string
	HasDefault bool
	// DefaultBlock, when HasDefault, is the id of a block (belonging to the
	// same Function) whose execution — in the parameter's defining lexical
	// environment — ends in a RETURN of the default value; the interpreter
	// takes that RETURN's operand and does not read DefaultReg.
	DefaultBlock int
	DefaultReg   int
	IsVariadic   bool
}

// Function is the unit the interpreter executes: a name, its declared
// parameters, a fixed register-frame size, and its basic blocks.
type Function struct {
	Name         string
	Params       []Param
	FrameSize    int
	EntryBlock   int
	Blocks       []*BasicBlock
	IsGenerator  bool
	SourceFile   string

	// blockIndex speeds up BasicBlock lookup by id; built lazily by Block.
	blockIndex map[int]*BasicBlock
}

// Block returns the basic block with the given id, or nil.
func (f *Function) Block(id int) *BasicBlock {
	if f.blockIndex == nil {
		f.blockIndex = make(map[int]*BasicBlock, len(f.Blocks))
		for _, b := range f.Blocks {
			f.blockIndex[b.ID] = b
		}
	}
	return f.blockIndex[id]
}

// Program is a set of top-level Functions produced by the lowering
// pipeline; the core engine only ever consumes a Program, never source text.
type Program struct {
	Functions map[string]*Function
	Entry     string
}
