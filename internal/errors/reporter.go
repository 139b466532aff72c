package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter formats CompilerErrors for the CLI, keeping the teacher's
// red/green/yellow severity convention (fatih/color) while dropping the
// caret-style source pointers the teacher's text-diagnostics reporter
// used — an LLIR module has no source text to point into (spec.md §6:
// the parser is out of scope), only a function/block/instruction
// Location.
type Reporter struct {
	// NoColor disables ANSI output, matching color.NoColor's own
	// escape-hatch for non-terminal output (e.g. piping to a file).
	NoColor bool
}

// NewReporter returns a ready-to-use Reporter.
func NewReporter() *Reporter { return &Reporter{} }

// Format renders one CompilerError as a multi-line, colorized report:
// a bold kind header, the location (if any), then notes and help text,
// the same three-tier structure (message/notes/help) as the teacher's
// SemanticErrorBuilder without the line-indexed source context.
func (r *Reporter) Format(err *CompilerError) string {
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	if r.NoColor {
		bold = fmt.Sprint
		red = fmt.Sprint
		blue = fmt.Sprint
		green = fmt.Sprint
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s\n", red(err.Kind.String()), bold(err.Message)))
	if loc := err.Location.String(); loc != "" {
		sb.WriteString(fmt.Sprintf("  --> %s\n", loc))
	}
	for _, n := range err.Notes {
		sb.WriteString(fmt.Sprintf("  %s %s\n", blue("note:"), n))
	}
	if err.HelpText != "" {
		sb.WriteString(fmt.Sprintf("  %s %s\n", green("help:"), err.HelpText))
	}
	return sb.String()
}

// FormatAll renders a batch of errors (spec.md §7 kind 3: "collect the
// list of offending instructions, report them all").
func (r *Reporter) FormatAll(errs []*CompilerError) string {
	var sb strings.Builder
	for _, e := range errs {
		sb.WriteString(r.Format(e))
	}
	return sb.String()
}

// Success prints a green success line, matching the teacher's CLI
// success convention.
func (r *Reporter) Success(message string) string {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	if r.NoColor {
		green = fmt.Sprint
	}
	return fmt.Sprintf("%s %s\n", green("ok:"), message)
}

// Warn prints a yellow warning line.
func (r *Reporter) Warn(message string) string {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	if r.NoColor {
		yellow = fmt.Sprint
	}
	return fmt.Sprintf("%s %s\n", yellow("warning:"), message)
}
