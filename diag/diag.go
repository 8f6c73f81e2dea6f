// Package diag provides the diagnostic types shared by every stage of the
// assembler pipeline: positioned errors and warnings, and an aggregating
// list that the compiler driver uses to decide whether a run produced
// usable output.
package diag

import (
	"fmt"
	"strings"

	"github.com/actorpus/SCPUAS/source"
)

// Kind classifies an Error by the pipeline stage that raised it.
type Kind int

const (
	KindSyntax Kind = iota
	KindDuplicateLabel
	KindUndefinedLabel
	KindUnknownDirective
	KindUnknownMnemonic
	KindArity
	KindType
	KindInclude
	KindLayout
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindDuplicateLabel:
		return "duplicate-label"
	case KindUndefinedLabel:
		return "undefined-label"
	case KindUnknownDirective:
		return "unknown-directive"
	case KindUnknownMnemonic:
		return "unknown-mnemonic"
	case KindArity:
		return "arity"
	case KindType:
		return "type"
	case KindInclude:
		return "include"
	case KindLayout:
		return "layout"
	case KindIO:
		return "io"
	default:
		return "error"
	}
}

// Error is a single positioned diagnostic.
type Error struct {
	Pos     source.Position
	Kind    Kind
	Message string
	// Context is an optional multi-line rendering of the offending source,
	// a caret line pointing at Pos.Column beneath it.
	Context string
}

func New(pos source.Position, kind Kind, format string, args ...any) *Error {
	return &Error{Pos: pos, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewWithContext(pos source.Position, kind Kind, ctx, format string, args ...any) *Error {
	e := New(pos, kind, format, args...)
	e.Context = ctx
	return e
}

func (e *Error) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s\n%s", e.Pos, e.Kind, e.Message, e.Context)
}

// Warning is a non-fatal diagnostic: compilation still succeeds.
type Warning struct {
	Pos     source.Position
	Message string
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// List aggregates errors and warnings across a compilation run.
type List struct {
	Errors   []*Error
	Warnings []*Warning
}

func (l *List) AddError(e *Error) {
	l.Errors = append(l.Errors, e)
}

func (l *List) AddWarning(pos source.Position, format string, args ...any) {
	l.Warnings = append(l.Warnings, &Warning{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}

func (l *List) Error() string {
	lines := make([]string, 0, len(l.Errors))
	for _, e := range l.Errors {
		lines = append(lines, e.Error())
	}
	return strings.Join(lines, "\n")
}

// PrintWarnings writes every collected warning to w, one per line.
func (l *List) PrintWarnings(w interface{ Write([]byte) (int, error) }) {
	for _, warn := range l.Warnings {
		fmt.Fprintln(w, warn.String())
	}
}

// SourceContext renders a three-line window (previous, offending, next)
// around pos with a caret under the offending column, matching the
// reference implementation's error reporting.
func SourceContext(lines []string, pos source.Position) string {
	idx := pos.Line - 1
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	var b strings.Builder
	if idx > 0 {
		fmt.Fprintf(&b, "  %s\n", lines[idx-1])
	}
	fmt.Fprintf(&b, "  %s\n", lines[idx])
	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	fmt.Fprintf(&b, "  %s^\n", strings.Repeat(" ", col))
	if idx+1 < len(lines) {
		fmt.Fprintf(&b, "  %s", lines[idx+1])
	}
	return b.String()
}
