// Package stdinst builds the "standard" instruction table: the built-in
// simpleCPU mnemonics and assembler directives, with the exact opcode
// encodings of the reference instruction set.
package stdinst

import (
	"fmt"

	"github.com/actorpus/SCPUAS/instset"
	"github.com/actorpus/SCPUAS/typer"
)

// word packs a 4-bit opcode nibble with a 12-bit operand into one 16-bit
// machine word: opcode<<12 | operand.
func word(opcode uint16, operand uint16) uint16 {
	return (opcode&0xF)<<12 | (operand & 0x0FFF)
}

// regImmed packs a register-addressed, byte-immediate word used by
// move/add/sub/and/or: opcode<<12 | (rd<<2)<<8 | imm8. The register field
// is only 4 bits wide and rd is pre-shifted by 2 before landing there, so
// only RA-RD (rd 0-3) produce distinct encodings — a limitation carried
// over unchanged from the reference instruction set (see DESIGN.md).
func regImmed(opcode, rd, imm uint16) uint16 {
	reg := (rd << 2) & 0xF
	return (opcode&0xF)<<12 | reg<<8 | (imm & 0xFF)
}

// regReg packs a register-to-register word: F<<12 | (rd<<2|rs)<<8 | subOp,
// used by mover/loadr/storer/rol/ror/addr/subr/andr/orr/xorr/aslr. subOp
// is the literal two-hex-digit suffix identifying the operation (0x01 for
// mover, 0x0B for aslr, and so on). Like regImmed, packing both registers
// into one nibble only distinguishes RA-RD.
func regReg(rd, rs, subOp uint16) uint16 {
	packed := ((rd << 2) | (rs & 0x3)) & 0xF
	return 0xF000 | packed<<8 | (subOp & 0xFF)
}

func arg(v instset.Value) uint16 {
	switch v.Kind {
	case instset.KindInteger, instset.KindRegister:
		return v.Int
	default:
		return 0
	}
}

// Standard returns the built-in instruction/directive table.
func Standard() *instset.Table {
	t := instset.NewTable()

	// reg pads omitted optional arguments with zero-valued Integers, so an
	// optional kk, aaa or rs that is left out encodes as 0.
	reg := func(name string, args []instset.Arg, fn func([]instset.Value) ([]uint16, error)) {
		padded := func(a []instset.Value) ([]uint16, error) {
			if len(a) < len(args) {
				full := make([]instset.Value, len(args))
				copy(full, a)
				a = full
			}
			return fn(a)
		}
		t.Register(instset.NewDescriptor(name, args, padded))
	}

	rdKK := []instset.Arg{{Name: "rd", Flags: instset.Register | instset.Required}, {Name: "kk", Flags: instset.Value}}
	aaa := []instset.Arg{{Name: "aaa", Flags: instset.Value}}
	rdRs := []instset.Arg{{Name: "rd", Flags: instset.Register | instset.Required}, {Name: "rs", Flags: instset.Register}}

	// rdRsDefaultSelf is rol/ror's argument shape: "rol RA" and "rol RA RA"
	// encode identically, the missing source register defaults to the
	// destination register rather than to 0 (unlike mover/loadr/storer's
	// rs, which defaults to 0).
	rdRsDefaultSelf := func(a []instset.Value) (rd, rs uint16) {
		rd = arg(a[0])
		if len(a) < 2 || a[1].Kind != instset.KindRegister {
			return rd, rd
		}
		return rd, arg(a[1])
	}

	reg("move", rdKK, func(a []instset.Value) ([]uint16, error) { return []uint16{regImmed(0x0, arg(a[0]), arg(a[1]))}, nil })
	reg("add", rdKK, func(a []instset.Value) ([]uint16, error) { return []uint16{regImmed(0x1, arg(a[0]), arg(a[1]))}, nil })
	reg("sub", rdKK, func(a []instset.Value) ([]uint16, error) { return []uint16{regImmed(0x2, arg(a[0]), arg(a[1]))}, nil })
	reg("and", rdKK, func(a []instset.Value) ([]uint16, error) { return []uint16{regImmed(0x3, arg(a[0]), arg(a[1]))}, nil })

	reg("load", aaa, func(a []instset.Value) ([]uint16, error) { return []uint16{word(0x4, arg(a[0]))}, nil })
	reg("store", aaa, func(a []instset.Value) ([]uint16, error) { return []uint16{word(0x5, arg(a[0]))}, nil })
	reg("addm", aaa, func(a []instset.Value) ([]uint16, error) { return []uint16{word(0x6, arg(a[0]))}, nil })
	reg("subm", aaa, func(a []instset.Value) ([]uint16, error) { return []uint16{word(0x7, arg(a[0]))}, nil })
	reg("jump", aaa, func(a []instset.Value) ([]uint16, error) { return []uint16{word(0x8, arg(a[0]))}, nil })
	reg("jumpz", aaa, func(a []instset.Value) ([]uint16, error) { return []uint16{word(0x9, arg(a[0]))}, nil })
	reg("jumpnz", aaa, func(a []instset.Value) ([]uint16, error) { return []uint16{word(0xA, arg(a[0]))}, nil })
	reg("jumpc", aaa, func(a []instset.Value) ([]uint16, error) { return []uint16{word(0xB, arg(a[0]))}, nil })
	reg("call", aaa, func(a []instset.Value) ([]uint16, error) { return []uint16{word(0xC, arg(a[0]))}, nil })

	reg("or", rdKK, func(a []instset.Value) ([]uint16, error) { return []uint16{regImmed(0xD, arg(a[0]), arg(a[1]))}, nil })

	reg("ret", nil, func(a []instset.Value) ([]uint16, error) { return []uint16{0xF000}, nil })

	reg("mover", rdRs, func(a []instset.Value) ([]uint16, error) { return []uint16{regReg(arg(a[0]), arg(a[1]), 0x01)}, nil })
	reg("loadr", rdRs, func(a []instset.Value) ([]uint16, error) { return []uint16{regReg(arg(a[0]), arg(a[1]), 0x02)}, nil })
	reg("storer", rdRs, func(a []instset.Value) ([]uint16, error) { return []uint16{regReg(arg(a[0]), arg(a[1]), 0x03)}, nil })
	reg("rol", rdRs, func(a []instset.Value) ([]uint16, error) {
		rd, rs := rdRsDefaultSelf(a)
		return []uint16{regReg(rd, rs, 0x04)}, nil
	})
	reg("ror", rdRs, func(a []instset.Value) ([]uint16, error) {
		rd, rs := rdRsDefaultSelf(a)
		return []uint16{regReg(rd, rs, 0x05)}, nil
	})
	reg("addr", rdRs, func(a []instset.Value) ([]uint16, error) { return []uint16{regReg(arg(a[0]), arg(a[1]), 0x06)}, nil })
	reg("subr", rdRs, func(a []instset.Value) ([]uint16, error) { return []uint16{regReg(arg(a[0]), arg(a[1]), 0x07)}, nil })
	reg("andr", rdRs, func(a []instset.Value) ([]uint16, error) { return []uint16{regReg(arg(a[0]), arg(a[1]), 0x08)}, nil })
	reg("orr", rdRs, func(a []instset.Value) ([]uint16, error) { return []uint16{regReg(arg(a[0]), arg(a[1]), 0x09)}, nil })
	reg("xorr", rdRs, func(a []instset.Value) ([]uint16, error) { return []uint16{regReg(arg(a[0]), arg(a[1]), 0x0A)}, nil })
	reg("aslr", rdRs, func(a []instset.Value) ([]uint16, error) {
		rd, rs := rdRsDefaultSelf(a)
		return []uint16{regReg(rd, rs, 0x0B)}, nil
	})

	// .data: a single unchecked, optional numeric word, defaulting to 0.
	// Its argument is never pre-typed as Integer/Register (Unchecked always
	// yields KindRaw), so it parses the raw literal itself the same way the
	// typer's own numeric-argument path does.
	reg(".data", []instset.Arg{{Name: "data", Flags: instset.Unchecked}}, func(a []instset.Value) ([]uint16, error) {
		if len(a) == 0 {
			return []uint16{0}, nil
		}
		v, err := parseUnchecked(a[0])
		if err != nil {
			return nil, fmt.Errorf(".data: %w", err)
		}
		return []uint16{v & 0xFFFF}, nil
	})

	// .chr: a single required character, emitted as its ordinal value.
	reg(".chr", []instset.Arg{{Name: "data", Flags: instset.Unchecked | instset.Required}}, func(a []instset.Value) ([]uint16, error) {
		s := a[0].Raw
		runes := []rune(s)
		if len(runes) != 1 {
			return nil, fmt.Errorf(".chr: expected exactly one character, got %q", s)
		}
		return []uint16{uint16(runes[0])}, nil
	})

	// .str: one word per character of a quoted string, no terminator.
	reg(".str", []instset.Arg{{Name: "data", Flags: instset.Unchecked | instset.Required}}, func(a []instset.Value) ([]uint16, error) {
		out := make([]uint16, 0, len(a[0].Raw))
		for _, r := range a[0].Raw {
			out = append(out, uint16(r))
		}
		return out, nil
	})

	// .strn: like .str, plus a trailing null word.
	reg(".strn", []instset.Arg{{Name: "data", Flags: instset.Unchecked | instset.Required}}, func(a []instset.Value) ([]uint16, error) {
		out := make([]uint16, 0, len(a[0].Raw)+1)
		for _, r := range a[0].Raw {
			out = append(out, uint16(r))
		}
		return append(out, 0), nil
	})

	// .halt is an expanding instruction: it has no Compile of its own,
	// only PrecomputeCompile. Its splice target is a subroot named HALT
	// under the label it was invoked in, and it jumps to itself — an
	// infinite loop — once laid out, by way of the ~-stripped address
	// resolution rule (see precompute package docs).
	halt := &instset.Descriptor{
		Name: ".halt",
		PrecomputeCompile: func(args []string, root string) (string, error) {
			return fmt.Sprintf("~insert:\n    jump -HALT %s.HALT\n", root), nil
		},
	}
	t.Register(halt)

	return t
}

func parseUnchecked(v instset.Value) (uint16, error) {
	if v.Kind == instset.KindInteger || v.Kind == instset.KindRegister {
		return v.Int, nil
	}
	n, ok := typer.ParseIntLiteral(v.Raw)
	if !ok || n < 0 || n > 0xFFFF {
		return 0, fmt.Errorf("expected numeric value, got %q", v.Raw)
	}
	return uint16(n), nil
}
