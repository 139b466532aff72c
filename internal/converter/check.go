package converter

import (
	"llir2itrs/internal/errors"
	"llir2itrs/internal/llir"
)

// CheckSupported restores the InstChecker pre-pass SPEC_FULL.md §3
// describes: it walks every instruction of every block of fn and
// collects an UnsupportedInstruction error (spec.md §7 kind 3) for each
// one the converter cannot lower, returning them all together instead
// of failing on the first.
func CheckSupported(fn *llir.Function) []*errors.CompilerError {
	var errs []*errors.CompilerError
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			switch inst.(type) {
			case *llir.BinOp, *llir.Cast, *llir.Select, *llir.Phi,
				*llir.Load, *llir.Store, *llir.ICmp, *llir.FCmp, *llir.Call:
				continue
			default:
				errs = append(errs, errors.New(errors.UnsupportedInstruction,
					"instruction opcode is not recognized by the converter").
					At(errors.Location{Function: fn.Name, Block: b.Name, Instruction: inst.ID()}).
					WithHelp("only add/sub/mul/div/rem/and/or/xor/casts/select/phi/load/store/call/icmp/fcmp are lowered").
					Build())
			}
		}
		switch b.Terminator.(type) {
		case *llir.Return, *llir.Unreachable, *llir.Jump, *llir.Branch:
		default:
			errs = append(errs, errors.New(errors.UnsupportedInstruction,
				"block terminator is not recognized by the converter").
				At(errors.Location{Function: fn.Name, Block: b.Name}).
				Build())
		}
	}
	return errs
}
