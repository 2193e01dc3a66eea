package ui

import (
	"fmt"
	"io"
	"os"
)

// VerbWidth is the fixed width for right-aligned action verbs in status lines.
const VerbWidth = 12

// Verbosity levels.
const (
	VerbQuiet   = -1 // results and errors only
	VerbNormal  = 0  // default: status, results, errors
	VerbVerbose = 1  // --verbose: per-relay detail
	VerbDebug   = 2  // --verbose --verbose: relay client diagnostics
)

// Verbosity controls what gets printed. Set by main from CLI options.
var Verbosity int

// Output streams, replaced in tests.
var (
	statusOut io.Writer = os.Stderr
	resultOut io.Writer = os.Stdout
)

// SetVerbosity sets the package verbosity level.
func SetVerbosity(v int) {
	Verbosity = v
}

// statusLine renders a verb-aligned line: the verb right-aligned in VerbWidth.
func statusLine(style func(...string) string, verb, detail string) string {
	return fmt.Sprintf("%s  %s", style(fmt.Sprintf("%*s", VerbWidth, verb)), detail)
}

// Status prints a status line such as "   Published  issue 3f2a… to wss://relay.damus.io".
func Status(verb, detail string) {
	if Verbosity < VerbNormal {
		return
	}
	fmt.Fprintln(statusOut, statusLine(AccentStyle.Render, verb, detail))
}

// Detail prints a status line only in verbose mode.
func Detail(verb, detail string) {
	if Verbosity < VerbVerbose {
		return
	}
	fmt.Fprintln(statusOut, statusLine(DimStyle.Render, verb, detail))
}

// Debugf prints a debug line only in debug mode.
func Debugf(format string, args ...any) {
	if Verbosity < VerbDebug {
		return
	}
	fmt.Fprintf(statusOut, format, args...)
	if len(format) > 0 && format[len(format)-1] != '\n' {
		fmt.Fprintln(statusOut)
	}
}

// DebugWriter returns the status stream in debug mode and io.Discard otherwise.
func DebugWriter() io.Writer {
	if Verbosity < VerbDebug {
		return io.Discard
	}
	return statusOut
}

// Result writes scriptable output to stdout. Always printed.
func Result(s string) {
	fmt.Fprintln(resultOut, s)
}

// WarningStatus prints a warning line. Shown even in quiet mode.
func WarningStatus(verb, detail string) {
	fmt.Fprintln(statusOut, statusLine(WarningStyle.Render, verb, detail))
}

// ErrorStatus prints an error line. Shown even in quiet mode.
func ErrorStatus(verb, detail string) {
	fmt.Fprintln(statusOut, statusLine(ErrorStyle.Render, verb, detail))
}

// RelayLogger adapts per-relay diagnostics to Detail lines.
func RelayLogger(verb, detail string) {
	Detail(verb, detail)
}

// FormatError builds a multi-line error message in "Error -> why -> fix" form.
// Empty why/fix are omitted.
func FormatError(what, why, fix string) string {
	out := "Error: " + what
	if why != "" {
		out += "\n  → " + why
	}
	if fix != "" {
		out += "\n  → " + fix
	}
	return out
}
