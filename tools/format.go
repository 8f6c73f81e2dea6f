package tools

import (
	"fmt"
	"strings"

	"github.com/actorpus/SCPUAS/alias"
	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/lexer"
	"github.com/actorpus/SCPUAS/press"
	"github.com/actorpus/SCPUAS/program"
	"github.com/actorpus/SCPUAS/source"
	"github.com/actorpus/SCPUAS/stdinst"
)

// FormatStyle defines formatting options.
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // standard column alignment
	FormatCompact                     // minimal whitespace, one space between fields
	FormatExpanded                    // wider columns for readability
)

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	Style             FormatStyle
	InstructionColumn int // column the mnemonic starts at
	OperandColumn     int // column the first operand starts at
	AlignOperands     bool
}

// DefaultFormatOptions returns default formatter options.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:             FormatDefault,
		InstructionColumn: 4,
		OperandColumn:     12,
		AlignOperands:     true,
	}
}

// CompactFormatOptions returns options for compact formatting.
func CompactFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatCompact
	opts.InstructionColumn = 0
	opts.OperandColumn = 0
	opts.AlignOperands = false
	return opts
}

// ExpandedFormatOptions returns options for expanded formatting.
func ExpandedFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatExpanded
	opts.InstructionColumn = 8
	opts.OperandColumn = 20
	return opts
}

// Formatter pretty-prints SCP source: it reparses the source through the
// lexer and instruction press (same front end the compiler uses) and
// re-emits it with consistent label/mnemonic/operand columns, discarding
// none of the original roots or argument text.
type Formatter struct {
	options *FormatOptions
	output  strings.Builder
}

// NewFormatter creates a new formatter.
func NewFormatter(options *FormatOptions) *Formatter {
	if options == nil {
		options = DefaultFormatOptions()
	}
	return &Formatter{options: options}
}

// Format formats the given SCP source, returning an error if the source
// fails to press into a program (e.g. unmatched quotes, unknown directive).
func (f *Formatter) Format(input, filename string) (string, error) {
	errs := &diag.List{}
	lx := lexer.New(source.New(filename, input), errs)
	toks := lx.TokenizeAll()

	p := press.New(press.Options{Filename: filename}, stdinst.Standard(), alias.NewTable(), errs)
	prog := p.Run(toks)
	if errs.HasErrors() {
		return "", fmt.Errorf("press error: %v", errs.Errors[0])
	}

	f.output.Reset()
	f.formatProgram(prog)
	return f.output.String(), nil
}

// formatProgram walks prog in source order, one label block per root.
func (f *Formatter) formatProgram(prog *program.Program) {
	for _, root := range prog.Order {
		f.output.WriteString(root)
		f.output.WriteString(":\n")
		for _, inst := range prog.Roots[root] {
			f.formatInstruction(inst)
		}
	}
}

// formatInstruction formats a single instruction or directive line.
func (f *Formatter) formatInstruction(inst *program.Instruction) {
	line := strings.Builder{}

	if f.options.Style == FormatCompact {
		line.WriteString(inst.Mnemonic)
	} else {
		f.padToColumn(&line, f.options.InstructionColumn)
		line.WriteString(inst.Mnemonic)
	}

	if len(inst.Arguments) > 0 {
		if f.options.Style == FormatCompact {
			line.WriteString(" ")
		} else if f.options.AlignOperands {
			f.padToColumn(&line, f.options.OperandColumn)
		} else {
			line.WriteString(" ")
		}
		line.WriteString(f.formatOperands(inst.Arguments))
	}

	f.output.WriteString(line.String())
	f.output.WriteString("\n")
}

// formatOperands joins operand text with single spaces, trimming stray
// whitespace the lexer may have preserved around each token.
func (f *Formatter) formatOperands(operands []string) string {
	parts := make([]string, len(operands))
	for i, op := range operands {
		parts[i] = strings.TrimSpace(op)
	}
	return strings.Join(parts, " ")
}

// padToColumn pads sb out to column, or adds a single separating space if
// already past it.
func (f *Formatter) padToColumn(sb *strings.Builder, column int) {
	current := sb.Len()
	switch {
	case current < column:
		sb.WriteString(strings.Repeat(" ", column-current))
	case current == column:
	default:
		sb.WriteString(" ")
	}
}

// FormatSource is a convenience function to format a string with default
// options.
func FormatSource(input, filename string) (string, error) {
	formatter := NewFormatter(DefaultFormatOptions())
	return formatter.Format(input, filename)
}

// FormatSourceWithStyle formats a string with the specified style.
func FormatSourceWithStyle(input, filename string, style FormatStyle) (string, error) {
	var options *FormatOptions
	switch style {
	case FormatCompact:
		options = CompactFormatOptions()
	case FormatExpanded:
		options = ExpandedFormatOptions()
	default:
		options = DefaultFormatOptions()
	}
	formatter := NewFormatter(options)
	return formatter.Format(input, filename)
}
