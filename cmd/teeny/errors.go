package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/IANYEYZ/teeny/runtime/lexer"
	"github.com/IANYEYZ/teeny/runtime/parser"
	"github.com/IANYEYZ/teeny/runtime/value"
)

// CLIError is a formatted CLI-level error with optional context,
// mirroring the teacher's cli/errors.go CLIError.
type CLIError struct {
	Type    string // "usage", "lex", "parse", "runtime"
	Message string
	Details string
	Hint    string
}

func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString("\n")
		b.WriteString(e.Details)
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// FormatError prints err to w with a one-line banner in the teacher's
// FormatError style; for lexical/syntax errors the banner carries the
// offending line:col, followed by the hint if there is one. No source
// snippet is printed.
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}
	switch e := err.(type) {
	case *lexer.LexicalError:
		formatLocatedError(w, "Lexical Error", e.Message, e.Line, e.Col, "", useColor)
	case *parser.SyntaxError:
		formatLocatedError(w, "Syntax Error", e.Message, e.Line, e.Col, e.Hint, useColor)
	case *CLIError:
		formatCLIError(w, e, useColor)
	default:
		fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
	}
}

func formatLocatedError(w io.Writer, kind, message string, line, col int, hint string, useColor bool) {
	fmt.Fprintf(w, "%s%d:%d: %s\n", Colorize(kind+": ", ColorRed, useColor), line, col, message)
	if hint != "" {
		fmt.Fprintf(w, "%s%s\n", Colorize("  Hint: ", ColorYellow, useColor), hint)
	}
}

func formatCLIError(w io.Writer, e *CLIError, useColor bool) {
	fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), e.Message)
	if e.Details != "" {
		fmt.Fprintf(w, "\n%s\n", e.Details)
	}
	if e.Hint != "" {
		fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), e.Hint)
	}
}

// FormatRuntimeError renders an uncaught Teeny Error value the way
// the driver surfaces it to the user: Error(type, value).
func FormatRuntimeError(w io.Writer, v *value.Value, useColor bool) {
	fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), value.ToString(v))
}
