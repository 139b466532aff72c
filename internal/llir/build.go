package llir

// Constructors for the instruction/terminator types of instructions.go.
// baseInst's fields are unexported so that Instruction identity (id,
// owning block) can only be fixed once, at construction time, by
// whatever external collaborator builds the module (spec.md §6's
// out-of-scope LLIR builder) — these functions are that seam.

// NewBinOp builds an add/sub/mul/sdiv/udiv/srem/urem/and/or/xor
// instruction.
func NewBinOp(id int, blk *Block, op Opcode, res, lhs, rhs *Value) *BinOp {
	return &BinOp{baseInst: baseInst{id: id, block: blk}, Op: op, Res: res, LHS: lhs, RHS: rhs}
}

// NewCast builds a zext/sext/trunc/bitcast/ptrtoint/inttoptr/fptosi/fptoui.
func NewCast(id int, blk *Block, op Opcode, res, src *Value, srcType, dstType Type) *Cast {
	return &Cast{baseInst: baseInst{id: id, block: blk}, Op: op, Res: res, Src: src, SrcType: srcType, DstType: dstType}
}

// NewSelect builds a ternary select.
func NewSelect(id int, blk *Block, res, cond, a, b *Value) *Select {
	return &Select{baseInst: baseInst{id: id, block: blk}, Res: res, Cond: cond, A: a, B: b}
}

// NewPhi builds a phi node; incoming is filled in after construction
// via AddIncoming since a phi's predecessor blocks are only known once
// the whole CFG is wired up.
func NewPhi(id int, blk *Block, res *Value) *Phi {
	return &Phi{baseInst: baseInst{id: id, block: blk}, Res: res, Incoming: map[*Block]*Value{}}
}

// AddIncoming records phi's value for predecessor pred.
func (i *Phi) AddIncoming(pred *Block, v *Value) { i.Incoming[pred] = v }

// NewLoad builds a pointer load.
func NewLoad(id int, blk *Block, res, addr *Value) *Load {
	return &Load{baseInst: baseInst{id: id, block: blk}, Res: res, Address: addr}
}

// NewStore builds a pointer store.
func NewStore(id int, blk *Block, addr, val *Value) *Store {
	return &Store{baseInst: baseInst{id: id, block: blk}, Address: addr, Val: val}
}

// NewICmp builds an integer comparison.
func NewICmp(id int, blk *Block, res *Value, pred ICmpPredicate, lhs, rhs *Value) *ICmp {
	return &ICmp{baseInst: baseInst{id: id, block: blk}, Res: res, Pred: pred, LHS: lhs, RHS: rhs}
}

// NewFCmp builds a floating-point comparison (always routed to Nondef
// by the converter, spec.md §9 open question).
func NewFCmp(id int, blk *Block, res, lhs, rhs *Value) *FCmp {
	return &FCmp{baseInst: baseInst{id: id, block: blk}, Res: res, LHS: lhs, RHS: rhs}
}

// NewCall builds a direct or indirect call. callee is nil for an
// indirect call; ptrType is then the called value's function-pointer
// type (component D over-approximation).
func NewCall(id int, blk *Block, res *Value, callee *Function, ptrType Type, args []*Value, intrinsic IntrinsicKind) *Call {
	return &Call{baseInst: baseInst{id: id, block: blk}, Res: res, Callee: callee, PointerType: ptrType, Args: args, Intrinsic: intrinsic}
}

// NewReturn builds a return terminator; val is nil for a void return.
func NewReturn(id int, blk *Block, val *Value) *Return {
	return &Return{baseInst: baseInst{id: id, block: blk}, Val: val}
}

// NewUnreachable builds an unreachable terminator.
func NewUnreachable(id int, blk *Block) *Unreachable {
	return &Unreachable{baseInst: baseInst{id: id, block: blk}}
}

// NewJump builds an unconditional branch terminator.
func NewJump(id int, blk *Block, target *Block) *Jump {
	return &Jump{baseInst: baseInst{id: id, block: blk}, Target: target}
}

// NewBranch builds a conditional branch terminator.
func NewBranch(id int, blk *Block, cond *Value, whenTrue, whenFalse *Block) *Branch {
	return &Branch{baseInst: baseInst{id: id, block: blk}, Cond: cond, True: whenTrue, False: whenFalse}
}
