// Package llirio is a convenience JSON encoding of internal/llir's
// module model, used to drive the CLI and LSP service in lieu of a
// real LLIR front end. It is deliberately NOT the LLIR parser/verifier
// spec.md §1/§6 declares external and out of scope: it has no grammar
// of its own to speak of (a handful of fixed JSON object shapes, one
// per instruction kind), it performs no verification (no dominance,
// no type checking beyond "does this type string parse"), and any real
// embedder feeds the core an already-built *llir.Module directly
// without going through this package at all. It exists only so
// cmd/llir2kittel and internal/lspsvc have a concrete ModuleLoader to
// call against hand-written fixtures.
package llirio

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"llir2itrs/internal/llir"
)

type document struct {
	Name      string     `json:"name"`
	Globals   []jsonDecl `json:"globals"`
	Functions []jsonFunc `json:"functions"`
}

type jsonDecl struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonFunc struct {
	Name        string      `json:"name"`
	Params      []jsonDecl  `json:"params"`
	ReturnType  string      `json:"return_type"`
	PointerType string      `json:"pointer_type"`
	Blocks      []jsonBlock `json:"blocks"`
}

type jsonBlock struct {
	Name         string      `json:"name"`
	Instructions []jsonInst  `json:"instructions"`
	Terminator   jsonTerm    `json:"terminator"`
}

type jsonInst struct {
	Op          string           `json:"op"`
	Result      string           `json:"result"`
	ResultType  string           `json:"result_type"`
	LHS         string           `json:"lhs"`
	RHS         string           `json:"rhs"`
	Src         string           `json:"src"`
	SrcType     string           `json:"src_type"`
	DstType     string           `json:"dst_type"`
	Cond        string           `json:"cond"`
	A           string           `json:"a"`
	B           string           `json:"b"`
	Address     string           `json:"address"`
	Value       string           `json:"value"`
	Pred        string           `json:"pred"`
	Incoming    []jsonIncoming   `json:"incoming"`
	Callee      string           `json:"callee"`
	PointerType string           `json:"pointer_type"`
	Args        []string         `json:"args"`
	Intrinsic   string           `json:"intrinsic"`
}

type jsonIncoming struct {
	Block string `json:"block"`
	Value string `json:"value"`
}

type jsonTerm struct {
	Kind   string `json:"kind"`
	Value  string `json:"value"`
	Target string `json:"target"`
	Cond   string `json:"cond"`
	True   string `json:"true"`
	False  string `json:"false"`
}

// Decode parses data (the JSON document described in this package's
// comment) into an *llir.Module.
func Decode(data []byte) (*llir.Module, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("llirio: invalid JSON: %w", err)
	}
	return build(&doc)
}

// FileLoader implements the ModuleLoader capability (internal/lspsvc,
// cmd/llir2kittel) by decoding the document's content as JSON,
// ignoring path entirely — a real front end would instead dispatch on
// path's extension or the document's binary magic.
type FileLoader struct{}

func (FileLoader) Load(_ string, content string) (*llir.Module, error) {
	return Decode([]byte(content))
}

// symtab resolves operand-reference strings to *llir.Value within one
// function: parameters and globals first, then instruction results as
// they are registered (pass 1), before any operand is actually
// resolved (pass 2) — this is what lets a phi's incoming value refer
// to a result defined later in program order (a loop back edge).
type symtab struct {
	values map[string]*llir.Value
}

func newSymtab() *symtab { return &symtab{values: map[string]*llir.Value{}} }

func (s *symtab) define(name string, v *llir.Value) { s.values[name] = v }

// resolve looks up name as a previously-defined value; if it isn't
// one, it is parsed as an integer literal of type t.
func (s *symtab) resolve(name string, t llir.Type) (*llir.Value, error) {
	if v, ok := s.values[name]; ok {
		return v, nil
	}
	if name == "" {
		return nil, nil
	}
	n, ok := new(big.Int).SetString(name, 10)
	if !ok {
		return nil, fmt.Errorf("llirio: unresolved operand %q", name)
	}
	return llir.NewConstValue(name, t, n), nil
}

// resolvePair resolves two operand references that must share a type
// (icmp/fcmp operands), inferring it from whichever side is already a
// known symbol; a comparison between two bare integer literals falls
// back to a 64-bit default since neither side carries a type of its own.
func (s *symtab) resolvePair(aRef, bRef string) (a, b *llir.Value, err error) {
	t := llir.Type(&llir.IntType{Bits: 64})
	if v, ok := s.values[aRef]; ok {
		t = v.Type
	} else if v, ok := s.values[bRef]; ok {
		t = v.Type
	}
	if a, err = s.resolve(aRef, t); err != nil {
		return nil, nil, err
	}
	if b, err = s.resolve(bRef, t); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func parseType(s string) (llir.Type, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "bool" || s == "i1":
		return &llir.BoolType{}, nil
	case strings.HasSuffix(s, "*"):
		pointee, err := parseType(strings.TrimSuffix(s, "*"))
		if err != nil {
			return nil, err
		}
		return &llir.PointerType{Pointee: pointee}, nil
	case strings.HasPrefix(s, "i"):
		bits, err := strconv.Atoi(s[1:])
		if err != nil {
			return nil, fmt.Errorf("llirio: bad integer type %q: %w", s, err)
		}
		return &llir.IntType{Bits: bits}, nil
	case strings.HasPrefix(s, "f"):
		bits, err := strconv.Atoi(s[1:])
		if err != nil {
			return nil, fmt.Errorf("llirio: bad float type %q: %w", s, err)
		}
		return &llir.FloatType{Bits: bits}, nil
	default:
		return nil, fmt.Errorf("llirio: unrecognized type %q", s)
	}
}

func parseIntrinsic(s string) (llir.IntrinsicKind, error) {
	switch s {
	case "", "none":
		return llir.IntrinsicNone, nil
	case "assume":
		return llir.IntrinsicAssume, nil
	case "nondef":
		return llir.IntrinsicNondef, nil
	default:
		return 0, fmt.Errorf("llirio: unrecognized intrinsic %q", s)
	}
}

var icmpPreds = map[string]llir.ICmpPredicate{
	"eq": llir.ICmpEQ, "ne": llir.ICmpNE,
	"sge": llir.ICmpSGE, "sgt": llir.ICmpSGT, "sle": llir.ICmpSLE, "slt": llir.ICmpSLT,
	"uge": llir.ICmpUGE, "ugt": llir.ICmpUGT, "ule": llir.ICmpULE, "ult": llir.ICmpULT,
}

func build(doc *document) (*llir.Module, error) {
	m := &llir.Module{Name: doc.Name}
	for _, g := range doc.Globals {
		t, err := parseType(g.Type)
		if err != nil {
			return nil, err
		}
		m.Globals = append(m.Globals, &llir.Global{Name: g.Name, Type: t})
	}

	funcByName := map[string]*llir.Function{}
	for _, jf := range doc.Functions {
		f := &llir.Function{Name: jf.Name}
		funcByName[jf.Name] = f
		m.Functions = append(m.Functions, f)
	}
	for i, jf := range doc.Functions {
		if err := buildFunction(m, funcByName[jf.Name], &doc.Functions[i], funcByName); err != nil {
			return nil, fmt.Errorf("llirio: function %s: %w", jf.Name, err)
		}
	}
	return m, nil
}

func buildFunction(m *llir.Module, f *llir.Function, jf *jsonFunc, funcByName map[string]*llir.Function) error {
	for _, p := range jf.Params {
		t, err := parseType(p.Type)
		if err != nil {
			return err
		}
		f.Params = append(f.Params, &llir.Param{Name: p.Name, Type: t})
	}
	if jf.ReturnType != "" {
		rt, err := parseType(jf.ReturnType)
		if err != nil {
			return err
		}
		f.ReturnType = rt
	}
	if jf.PointerType != "" {
		pt, err := parseType(jf.PointerType)
		if err != nil {
			return err
		}
		f.PointerType = pt
	}

	sym := newSymtab()
	for _, p := range f.Params {
		sym.define(p.Name, &llir.Value{Name: p.Name, Type: p.Type})
	}
	for _, g := range m.Globals {
		sym.define(g.Name, &llir.Value{Name: g.Name, Type: g.Type})
	}

	blockByName := map[string]*llir.Block{}
	for bi, jb := range jf.Blocks {
		b := &llir.Block{ID: bi, Name: jb.Name, Function: f}
		f.Blocks = append(f.Blocks, b)
		blockByName[jb.Name] = b
	}

	// Pass 1: register every instruction result under its own block so
	// phi incoming values and forward references resolve regardless of
	// block order.
	for _, jb := range jf.Blocks {
		for _, ji := range jb.Instructions {
			if ji.Result == "" {
				continue
			}
			t, err := parseType(resultTypeFor(ji))
			if err != nil {
				return err
			}
			sym.define(ji.Result, &llir.Value{Name: ji.Result, Type: t})
		}
	}

	// Pass 2: wire operands and build real instructions/terminators.
	nextID := 1
	for bi, jb := range jf.Blocks {
		b := f.Blocks[bi]
		for _, ji := range jb.Instructions {
			inst, err := buildInstruction(nextID, b, &ji, sym, blockByName, funcByName)
			if err != nil {
				return fmt.Errorf("block %s: %w", jb.Name, err)
			}
			nextID++
			b.Instructions = append(b.Instructions, inst)
		}
		term, err := buildTerminator(nextID, b, &jb.Terminator, sym, blockByName)
		if err != nil {
			return fmt.Errorf("block %s terminator: %w", jb.Name, err)
		}
		nextID++
		b.Terminator = term
	}

	// Second phi pass: incoming values reference blocks, which are all
	// wired by now.
	for bi, jb := range jf.Blocks {
		b := f.Blocks[bi]
		for i, ji := range jb.Instructions {
			if ji.Op != "phi" {
				continue
			}
			phi := b.Instructions[i].(*llir.Phi)
			for _, inc := range ji.Incoming {
				pred, ok := blockByName[inc.Block]
				if !ok {
					return fmt.Errorf("block %s: phi incoming from unknown block %q", jb.Name, inc.Block)
				}
				v, err := sym.resolve(inc.Value, phi.Res.Type)
				if err != nil {
					return err
				}
				phi.AddIncoming(pred, v)
			}
		}
	}

	linkPredecessors(f)
	return nil
}

func resultTypeFor(ji jsonInst) string {
	if ji.Op == "icmp" || ji.Op == "fcmp" {
		return "bool"
	}
	return ji.ResultType
}

func buildInstruction(id int, b *llir.Block, ji *jsonInst, sym *symtab, blocks map[string]*llir.Block, funcs map[string]*llir.Function) (llir.Instruction, error) {
	resultVal := func() *llir.Value {
		if ji.Result == "" {
			return nil
		}
		return sym.values[ji.Result]
	}

	switch ji.Op {
	case "add", "sub", "mul", "sdiv", "udiv", "srem", "urem", "and", "or", "xor":
		res := resultVal()
		lhs, err := sym.resolve(ji.LHS, res.Type)
		if err != nil {
			return nil, err
		}
		rhs, err := sym.resolve(ji.RHS, res.Type)
		if err != nil {
			return nil, err
		}
		op, ok := binOpcodes[ji.Op]
		if !ok {
			return nil, fmt.Errorf("unreachable binop %q", ji.Op)
		}
		return llir.NewBinOp(id, b, op, res, lhs, rhs), nil

	case "zext", "sext", "trunc", "bitcast", "ptrtoint", "inttoptr", "fptosi", "fptoui":
		res := resultVal()
		srcType := res.Type
		if ji.SrcType != "" {
			t, err := parseType(ji.SrcType)
			if err != nil {
				return nil, err
			}
			srcType = t
		}
		src, err := sym.resolve(ji.Src, srcType)
		if err != nil {
			return nil, err
		}
		dstType := res.Type
		if ji.DstType != "" {
			t, err := parseType(ji.DstType)
			if err != nil {
				return nil, err
			}
			dstType = t
		}
		op := castOpcodes[ji.Op]
		return llir.NewCast(id, b, op, res, src, srcType, dstType), nil

	case "select":
		res := resultVal()
		cond, err := sym.resolve(ji.Cond, &llir.BoolType{})
		if err != nil {
			return nil, err
		}
		a, err := sym.resolve(ji.A, res.Type)
		if err != nil {
			return nil, err
		}
		bv, err := sym.resolve(ji.B, res.Type)
		if err != nil {
			return nil, err
		}
		return llir.NewSelect(id, b, res, cond, a, bv), nil

	case "phi":
		// incoming wired in the second phi pass, after every block exists.
		return llir.NewPhi(id, b, resultVal()), nil

	case "load":
		res := resultVal()
		addr, err := sym.resolve(ji.Address, &llir.PointerType{Pointee: res.Type})
		if err != nil {
			return nil, err
		}
		return llir.NewLoad(id, b, res, addr), nil

	case "store":
		addr, err := sym.resolve(ji.Address, nil)
		if err != nil {
			return nil, err
		}
		val, err := sym.resolve(ji.Value, nil)
		if err != nil {
			return nil, err
		}
		return llir.NewStore(id, b, addr, val), nil

	case "icmp":
		res := resultVal()
		pred, ok := icmpPreds[ji.Pred]
		if !ok {
			return nil, fmt.Errorf("unrecognized icmp predicate %q", ji.Pred)
		}
		lhs, rhs, err := sym.resolvePair(ji.LHS, ji.RHS)
		if err != nil {
			return nil, err
		}
		return llir.NewICmp(id, b, res, pred, lhs, rhs), nil

	case "fcmp":
		res := resultVal()
		lhs, err := sym.resolve(ji.LHS, &llir.FloatType{Bits: 64})
		if err != nil {
			return nil, err
		}
		rhs, err := sym.resolve(ji.RHS, &llir.FloatType{Bits: 64})
		if err != nil {
			return nil, err
		}
		return llir.NewFCmp(id, b, res, lhs, rhs), nil

	case "call":
		res := resultVal()
		var args []*llir.Value
		for _, a := range ji.Args {
			v, err := sym.resolve(a, nil)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		intrinsic, err := parseIntrinsic(ji.Intrinsic)
		if err != nil {
			return nil, err
		}
		var callee *llir.Function
		var ptrType llir.Type
		if ji.Callee != "" {
			callee = funcs[ji.Callee]
			if callee == nil {
				return nil, fmt.Errorf("call to unknown function %q", ji.Callee)
			}
		} else if ji.PointerType != "" {
			t, err := parseType(ji.PointerType)
			if err != nil {
				return nil, err
			}
			ptrType = t
		}
		return llir.NewCall(id, b, res, callee, ptrType, args, intrinsic), nil

	default:
		return nil, fmt.Errorf("unrecognized opcode %q", ji.Op)
	}
}

var binOpcodes = map[string]llir.Opcode{
	"add": llir.OpAdd, "sub": llir.OpSub, "mul": llir.OpMul,
	"sdiv": llir.OpSDiv, "udiv": llir.OpUDiv, "srem": llir.OpSRem, "urem": llir.OpURem,
	"and": llir.OpAnd, "or": llir.OpOr, "xor": llir.OpXor,
}

var castOpcodes = map[string]llir.Opcode{
	"zext": llir.OpZExt, "sext": llir.OpSExt, "trunc": llir.OpTrunc, "bitcast": llir.OpBitCast,
	"ptrtoint": llir.OpPtrToInt, "inttoptr": llir.OpIntToPtr, "fptosi": llir.OpFPToSI, "fptoui": llir.OpFPToUI,
}

func buildTerminator(id int, b *llir.Block, jt *jsonTerm, sym *symtab, blocks map[string]*llir.Block) (llir.Terminator, error) {
	switch jt.Kind {
	case "return":
		if jt.Value == "" {
			return llir.NewReturn(id, b, nil), nil
		}
		v, err := sym.resolve(jt.Value, nil)
		if err != nil {
			return nil, err
		}
		return llir.NewReturn(id, b, v), nil
	case "unreachable":
		return llir.NewUnreachable(id, b), nil
	case "jump":
		target, ok := blocks[jt.Target]
		if !ok {
			return nil, fmt.Errorf("jump to unknown block %q", jt.Target)
		}
		return llir.NewJump(id, b, target), nil
	case "branch":
		cond, err := sym.resolve(jt.Cond, &llir.BoolType{})
		if err != nil {
			return nil, err
		}
		t, ok := blocks[jt.True]
		if !ok {
			return nil, fmt.Errorf("branch true-target %q unknown", jt.True)
		}
		f, ok := blocks[jt.False]
		if !ok {
			return nil, fmt.Errorf("branch false-target %q unknown", jt.False)
		}
		return llir.NewBranch(id, b, cond, t, f), nil
	default:
		return nil, fmt.Errorf("unrecognized terminator kind %q", jt.Kind)
	}
}

// linkPredecessors derives every block's Predecessors/Successors from
// its terminator, the one piece of CFG shape the JSON document doesn't
// spell out directly.
func linkPredecessors(f *llir.Function) {
	for _, b := range f.Blocks {
		if b.Terminator == nil {
			continue
		}
		for _, s := range b.Terminator.Successors() {
			b.Successors = append(b.Successors, s)
			s.Predecessors = append(s.Predecessors, b)
		}
	}
}
