// Package display renders CLI output: prefixed status lines on stderr and
// result tables on stdout.
package display

import (
	"context"
	"io"
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Display is the CLI's output surface.
type Display interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
	Table(data TableData) *TableRenderer
}

type terminal struct {
	out io.Writer
	err io.Writer
}

// New writes tables to stdout and messages to stderr.
func New() Display {
	return NewWithWriters(os.Stdout, os.Stderr)
}

// NewWithWriters is New with explicit writers.
func NewWithWriters(out, errOut io.Writer) Display {
	return &terminal{out: out, err: errOut}
}

func (t *terminal) Info(format string, args ...any) {
	pterm.Info.WithWriter(t.err).Printfln(format, args...)
}

func (t *terminal) Success(format string, args ...any) {
	pterm.Success.WithWriter(t.err).Printfln(format, args...)
}

func (t *terminal) Warning(format string, args ...any) {
	pterm.Warning.WithWriter(t.err).Printfln(format, args...)
}

func (t *terminal) Error(format string, args ...any) {
	pterm.Error.WithWriter(t.err).Printfln(format, args...)
}

func (t *terminal) Table(data TableData) *TableRenderer {
	return &TableRenderer{data: data, format: FormatTable, out: t.out}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// DisableStylingUnlessTerminal turns off colors when stdout is redirected.
func DisableStylingUnlessTerminal() {
	if !IsTerminal(os.Stdout) {
		pterm.DisableStyling()
	}
}

type contextKey struct{}

// WithDisplay stores d in ctx.
func WithDisplay(ctx context.Context, d Display) context.Context {
	return context.WithValue(ctx, contextKey{}, d)
}

// GetDisplayOrDefault returns the Display stored in ctx, or New().
func GetDisplayOrDefault(ctx context.Context) Display {
	if ctx != nil {
		if d, ok := ctx.Value(contextKey{}).(Display); ok {
			return d
		}
	}
	return New()
}
