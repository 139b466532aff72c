package llir

// Concrete instruction and terminator types. Each follows the same
// four-method shape the teacher's ir.Instruction implementations use
// (GetID/GetResult/GetOperands/GetBlock), generalized here to the
// Instruction/Terminator interfaces of types.go.

type baseInst struct {
	id    int
	block *Block
}

func (b *baseInst) ID() int      { return b.id }
func (b *baseInst) Block() *Block { return b.block }

// BinOp covers add, sub, mul, sdiv, udiv, srem, urem, and, or, xor.
type BinOp struct {
	baseInst
	Op     Opcode
	Res    *Value
	LHS    *Value
	RHS    *Value
}

func (i *BinOp) Opcode() Opcode      { return i.Op }
func (i *BinOp) Result() *Value      { return i.Res }
func (i *BinOp) Operands() []*Value  { return []*Value{i.LHS, i.RHS} }
func (i *BinOp) String() string      { return i.Res.Name + " = " + i.Op.String() + " " + i.LHS.Name + ", " + i.RHS.Name }

// Cast covers zext, sext, trunc, bitcast, ptrtoint, inttoptr, fptosi, fptoui.
type Cast struct {
	baseInst
	Op      Opcode
	Res     *Value
	Src     *Value
	SrcType Type
	DstType Type
}

func (i *Cast) Opcode() Opcode     { return i.Op }
func (i *Cast) Result() *Value     { return i.Res }
func (i *Cast) Operands() []*Value { return []*Value{i.Src} }
func (i *Cast) String() string     { return i.Res.Name + " = " + i.Op.String() + " " + i.Src.Name }

// Select is the ternary value-select instruction.
type Select struct {
	baseInst
	Res  *Value
	Cond *Value
	A    *Value
	B    *Value
}

func (i *Select) Opcode() Opcode     { return OpSelect }
func (i *Select) Result() *Value     { return i.Res }
func (i *Select) Operands() []*Value { return []*Value{i.Cond, i.A, i.B} }
func (i *Select) String() string     { return i.Res.Name + " = select " + i.Cond.Name }

// Phi is an SSA phi node: one incoming value per predecessor block.
// Handled at the branch successor, not via its own rule (spec.md §4.E).
type Phi struct {
	baseInst
	Res      *Value
	Incoming map[*Block]*Value
}

func (i *Phi) Opcode() Opcode     { return OpPhi }
func (i *Phi) Result() *Value     { return i.Res }
func (i *Phi) Operands() []*Value {
	out := make([]*Value, 0, len(i.Incoming))
	for _, v := range i.Incoming {
		out = append(out, v)
	}
	return out
}
func (i *Phi) String() string { return i.Res.Name + " = phi" }

// IncomingFrom returns the phi's value for predecessor pred, or nil if
// pred is not one of its incoming blocks.
func (i *Phi) IncomingFrom(pred *Block) *Value { return i.Incoming[pred] }

// Load reads through a pointer.
type Load struct {
	baseInst
	Res     *Value
	Address *Value
}

func (i *Load) Opcode() Opcode     { return OpLoad }
func (i *Load) Result() *Value     { return i.Res }
func (i *Load) Operands() []*Value { return []*Value{i.Address} }
func (i *Load) String() string     { return i.Res.Name + " = load " + i.Address.Name }

// Store writes Value through Address.
type Store struct {
	baseInst
	Address *Value
	Val     *Value
}

func (i *Store) Opcode() Opcode     { return OpStore }
func (i *Store) Result() *Value     { return nil }
func (i *Store) Operands() []*Value { return []*Value{i.Address, i.Val} }
func (i *Store) String() string     { return "store " + i.Val.Name + ", " + i.Address.Name }

// ICmp is an integer comparison; its result is a boolean "condition",
// never admitted into V, consumed only through cond_of_value.
type ICmp struct {
	baseInst
	Res  *Value
	Pred ICmpPredicate
	LHS  *Value
	RHS  *Value
}

func (i *ICmp) Opcode() Opcode     { return OpICmp }
func (i *ICmp) Result() *Value     { return i.Res }
func (i *ICmp) Operands() []*Value { return []*Value{i.LHS, i.RHS} }
func (i *ICmp) String() string     { return i.Res.Name + " = icmp " + i.LHS.Name + ", " + i.RHS.Name }

// FCmp is a floating-point comparison; always routed to Nondef.
type FCmp struct {
	baseInst
	Res *Value
	LHS *Value
	RHS *Value
}

func (i *FCmp) Opcode() Opcode     { return OpFCmp }
func (i *FCmp) Result() *Value     { return i.Res }
func (i *FCmp) Operands() []*Value { return []*Value{i.LHS, i.RHS} }
func (i *FCmp) String() string     { return i.Res.Name + " = fcmp " + i.LHS.Name + ", " + i.RHS.Name }

// Call covers ordinary calls, calls to assume/nondef-family
// intrinsics, and indirect calls through a function pointer.
type Call struct {
	baseInst
	Res *Value
	// Callee is non-nil for a direct call. Indirect calls leave Callee
	// nil and set PointerType to the called value's pointer type so
	// the call-hierarchy analyser can over-approximate targets
	// (component D).
	Callee      *Function
	PointerType Type
	Args        []*Value
	Intrinsic   IntrinsicKind
}

// IntrinsicKind distinguishes ordinary calls from the two intrinsic
// families the converter special-cases (spec.md §4.E).
type IntrinsicKind int

const (
	IntrinsicNone IntrinsicKind = iota
	IntrinsicAssume
	IntrinsicNondef
)

func (i *Call) Opcode() Opcode     { return OpCall }
func (i *Call) Result() *Value     { return i.Res }
func (i *Call) Operands() []*Value { return i.Args }
func (i *Call) String() string {
	name := "<indirect>"
	if i.Callee != nil {
		name = i.Callee.Name
	}
	return "call " + name
}

// --- Terminators ---

// Return ends a function.
type Return struct {
	baseInst
	Val *Value // nil for void return
}

func (i *Return) Opcode() Opcode         { return -1 }
func (i *Return) Result() *Value         { return nil }
func (i *Return) Operands() []*Value {
	if i.Val != nil {
		return []*Value{i.Val}
	}
	return nil
}
func (i *Return) String() string            { return "ret" }
func (i *Return) Successors() []*Block       { return nil }

// Unreachable marks dead code (e.g. after a trap).
type Unreachable struct{ baseInst }

func (i *Unreachable) Opcode() Opcode   { return -1 }
func (i *Unreachable) Result() *Value   { return nil }
func (i *Unreachable) Operands() []*Value { return nil }
func (i *Unreachable) String() string     { return "unreachable" }
func (i *Unreachable) Successors() []*Block { return nil }

// Jump is an unconditional branch.
type Jump struct {
	baseInst
	Target *Block
}

func (i *Jump) Opcode() Opcode       { return -1 }
func (i *Jump) Result() *Value       { return nil }
func (i *Jump) Operands() []*Value   { return nil }
func (i *Jump) String() string       { return "br " + i.Target.Name }
func (i *Jump) Successors() []*Block { return []*Block{i.Target} }

// Branch is a conditional branch.
type Branch struct {
	baseInst
	Cond  *Value
	True  *Block
	False *Block
}

func (i *Branch) Opcode() Opcode       { return -1 }
func (i *Branch) Result() *Value       { return nil }
func (i *Branch) Operands() []*Value   { return []*Value{i.Cond} }
func (i *Branch) String() string       { return "br " + i.Cond.Name }
func (i *Branch) Successors() []*Block { return []*Block{i.True, i.False} }

// NewInstID helpers are intentionally absent: block/instruction
// numbering is owned by the builder that constructs a Function (tests
// build blocks by hand), keeping this package a pure data model.
