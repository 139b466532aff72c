package lspsvc

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"llir2itrs/internal/errors"
)

// ConvertCompilerErrors transforms core CompilerErrors into LSP
// diagnostics, mirroring the teacher's ConvertParseErrors/
// ConvertScanErrors shape. CompilerError carries a function/block/
// instruction Location rather than a source line/column — LLIR text
// positions are the external parser's concern (spec.md §1) — so every
// diagnostic spans the document's first character and names the exact
// location in its message instead of via Range.
func ConvertCompilerErrors(errs []*errors.CompilerError) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	for _, e := range errs {
		msg := e.Message
		if loc := e.Location.String(); loc != "" {
			msg = fmt.Sprintf("%s (%s)", msg, loc)
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 1},
			},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("llir2itrs"),
			Message:  msg,
		})
	}
	return diagnostics
}

func loadErrorDiagnostic(err error) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 0, Character: 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("llir2itrs"),
		Message:  err.Error(),
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
