// Package typer implements the argument typer: it resolves an
// instruction's mnemonic against the instruction table, validates its
// argument count against the descriptor's arity, and converts each raw
// argument token into a typed instset.Value according to the
// descriptor's per-argument flags.
package typer

import (
	"strconv"
	"strings"

	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/instset"
	"github.com/actorpus/SCPUAS/program"
)

// Type walks every instruction in prog, typing its arguments in place.
// Type errors are recorded in errors but do not stop the walk — every
// instruction is checked so a single run surfaces every type/arity
// problem in the program, not just the first.
func Type(prog *program.Program, instTable *instset.Table, errors *diag.List) {
	for _, root := range prog.Order {
		for _, inst := range prog.Roots[root] {
			typeOne(inst, instTable, errors)
		}
	}
}

func typeOne(inst *program.Instruction, instTable *instset.Table, errors *diag.List) {
	d, ok := instTable.Lookup(inst.Mnemonic)
	if !ok {
		errors.AddError(diag.New(inst.Pos, diag.KindUnknownMnemonic, "unknown instruction or directive %q", inst.Mnemonic))
		return
	}
	inst.Descriptor = d

	if err := d.CheckArity(len(inst.Arguments)); err != nil {
		errors.AddError(diag.New(inst.Pos, diag.KindArity, "%v", err))
	}

	inst.TypedArgs = make([]instset.Value, 0, len(inst.Arguments))
	for i, raw := range inst.Arguments {
		var flags instset.Flag
		if i < len(d.Args) {
			flags = d.Args[i].Flags
		} else {
			flags = instset.Unchecked
		}
		v, err := typeArgument(raw, flags)
		if err != nil {
			errors.AddError(diag.New(inst.Pos, diag.KindType, "argument %d of %s: %v", i+1, inst.Mnemonic, err))
			continue
		}
		inst.TypedArgs = append(inst.TypedArgs, v)
	}
}

func typeArgument(raw string, flags instset.Flag) (instset.Value, error) {
	switch {
	case flags&instset.Unchecked != 0:
		return instset.RawValue(unquote(raw)), nil
	case flags&instset.Reference != 0:
		return instset.LabelRef(raw), nil
	case flags&instset.Register != 0:
		return parseRegister(raw)
	case flags&instset.Value != 0:
		return parseDynamic(raw)
	default:
		return parseDynamic(raw)
	}
}

// ParseRegister converts "R" + letter A-P into its 0-15 register number.
func ParseRegister(raw string) (uint16, error) {
	v, err := parseRegister(raw)
	if err != nil {
		return 0, err
	}
	return v.Int, nil
}

func parseRegister(raw string) (instset.Value, error) {
	if len(raw) != 2 || (raw[0] != 'R' && raw[0] != 'r') {
		return instset.Value{}, &typeError{raw: raw, want: "register (R + letter A-P)"}
	}
	letter := strings.ToUpper(raw)[1]
	if letter < 'A' || letter > 'P' {
		return instset.Value{}, &typeError{raw: raw, want: "register letter A-P"}
	}
	return instset.RegisterValue(uint16(letter - 'A')), nil
}

// parseDynamic mirrors the reference dialect's parse_dynamic_token: a
// numeric literal (0x/0b/0o/decimal) resolves immediately to an integer;
// anything else is treated as a forward label reference, resolved later
// by the layout stage.
func parseDynamic(raw string) (instset.Value, error) {
	if n, ok := parseIntLiteral(raw); ok {
		if n < 0 || n > 0xFFFF {
			return instset.Value{}, &typeError{raw: raw, want: "integer literal in range 0..0xFFFF (overflow)"}
		}
		return instset.Integer(uint16(n)), nil
	}
	return instset.LabelRef(raw), nil
}

// ParseIntLiteral parses a 0x/0b/0o/decimal integer literal the same way
// parseDynamic does, for callers (e.g. ".data"'s unchecked argument) that
// need to interpret a raw, untyped token as a number themselves.
func ParseIntLiteral(s string) (int64, bool) {
	return parseIntLiteral(s)
}

func parseIntLiteral(s string) (int64, bool) {
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, err := strconv.ParseInt(s[2:], 16, 64)
		return v, err == nil
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		v, err := strconv.ParseInt(s[2:], 2, 64)
		return v, err == nil
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		v, err := strconv.ParseInt(s[2:], 8, 64)
		return v, err == nil
	default:
		v, err := strconv.ParseInt(s, 10, 64)
		return v, err == nil
	}
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

type typeError struct {
	raw  string
	want string
}

func (e *typeError) Error() string {
	return "got " + e.raw + ", want " + e.want
}
