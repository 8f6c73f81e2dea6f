// Package format implements the deterministic output formatters derived
// from a laid-out word stream: the canonical .asc form and every format
// documented as a derivation of it (split-byte .asc, .dat, .mem, .mif),
// plus the disassembly (.dec.asm) and debug (.debug) text formats.
package format

import (
	"fmt"
	"strings"

	"github.com/actorpus/SCPUAS/disasm"
	"github.com/actorpus/SCPUAS/layout"
	"github.com/actorpus/SCPUAS/program"
)

// ASC renders the canonical form: "BBBB WWWW WWWW …", base address then
// each word as four lowercase hex digits, space separated.
func ASC(final *layout.Final) string {
	parts := make([]string, 0, len(final.Words)+1)
	parts = append(parts, fmt.Sprintf("%04x", final.BaseAddress))
	for _, w := range final.Words {
		parts = append(parts, fmt.Sprintf("%04x", w))
	}
	return strings.Join(parts, " ")
}

// HighByteASC is .asc with every word replaced by its high byte.
func HighByteASC(final *layout.Final) string {
	parts := make([]string, 0, len(final.Words)+1)
	parts = append(parts, fmt.Sprintf("%04x", final.BaseAddress))
	for _, w := range final.Words {
		parts = append(parts, fmt.Sprintf("%02x", (w>>8)&0xFF))
	}
	return strings.Join(parts, " ")
}

// LowByteASC is .asc with every word replaced by its low byte.
func LowByteASC(final *layout.Final) string {
	parts := make([]string, 0, len(final.Words)+1)
	parts = append(parts, fmt.Sprintf("%04x", final.BaseAddress))
	for _, w := range final.Words {
		parts = append(parts, fmt.Sprintf("%02x", w&0xFF))
	}
	return strings.Join(parts, " ")
}

// DAT renders one line per word: a 4-digit decimal address followed by the
// word's 16 binary digits, high byte first.
func DAT(final *layout.Final) string {
	var b strings.Builder
	for i, w := range final.Words {
		addr := int(final.BaseAddress) + i
		fmt.Fprintf(&b, "%04d %016b\n", addr, w)
	}
	return b.String()
}

// swapNibbles reverses the four hex digits of a word: byte-swap plus a
// nibble-swap within each byte, per the .mem format's documented layout.
func swapNibbles(w uint16) uint16 {
	d0 := (w >> 12) & 0xF
	d1 := (w >> 8) & 0xF
	d2 := (w >> 4) & 0xF
	d3 := w & 0xF
	return d0 | d1<<4 | d2<<8 | d3<<12
}

// MEM renders one line per word: "@AAAA WWWW" where AAAA is the byte
// address 2*(B+i) and WWWW is the word with its four hex digits reversed.
// The entire file is uppercase.
func MEM(final *layout.Final) string {
	var b strings.Builder
	for i, w := range final.Words {
		byteAddr := 2 * (int(final.BaseAddress) + i)
		fmt.Fprintf(&b, "@%04X %04X\n", byteAddr, swapNibbles(w))
	}
	return strings.ToUpper(b.String())
}

// MIF renders an Altera-style memory-initialisation file.
func MIF(final *layout.Final) string {
	var b strings.Builder
	b.WriteString("DEPTH = 32;\n")
	b.WriteString("WIDTH = 16;\n")
	b.WriteString("ADDRESS_RADIX = HEX;\n")
	b.WriteString("DATA_RADIX = BIN;\n")
	b.WriteString("CONTENT BEGIN\n")
	for i, w := range final.Words {
		addr := int(final.BaseAddress) + i
		fmt.Fprintf(&b, "%04x : %016b;\n", addr, w)
	}
	b.WriteString("END;\n")
	return b.String()
}

// DecASM renders the disassembly text (.dec.asm), body plus footer.
func DecASM(prog *program.Program, files []string) string {
	result := disasm.Generate(prog)
	header := "# This code was originally written in the SCP assembly dialect.\n" +
		"# Large blocks of .data may be the result of custom instructions;\n" +
		"# check the original .scp sources for comments and annotations.\n\n"
	return header + result.Source + "\n" + disasm.Footer(files, result)
}

// intHex mirrors the reference debug formatter's int_hex: render an integer
// (or a numeric-looking string) as four hex digits, leave anything else
// alone.
func intHex(s string) string {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil && fmt.Sprintf("%d", n) == s {
		return fmt.Sprintf("%04x", n)
	}
	return s
}

// Debug renders the supplemented .debug format: one line per emitted word,
// with the originating instruction's mnemonic/arguments shown once beside
// its first word and blank beside its continuation words.
func Debug(prog *program.Program) string {
	var b strings.Builder
	pointer := 0

	for _, root := range prog.Order {
		label := fmt.Sprintf("%-29s", strings.ReplaceAll(root, "~", "")+":")
		fmt.Fprintf(&b, "     |      | %s | \n", label)

		for _, inst := range prog.Roots[root] {
			argStrs := make([]string, len(inst.Arguments))
			for i, a := range inst.Arguments {
				argStrs[i] = intHex(a)
			}
			rendered := fmt.Sprintf("%-6s %s", inst.Mnemonic, strings.Join(argStrs, " "))
			original := fmt.Sprintf("%-6s %s", inst.Mnemonic, strings.Join(inst.Arguments, " "))

			if len(inst.Compiled) == 0 {
				continue
			}
			fmt.Fprintf(&b, "%04x | %04x |     %-25s | %s\n", pointer, inst.Compiled[0], original, rendered)
			pointer++
			for _, w := range inst.Compiled[1:] {
				fmt.Fprintf(&b, "%04x | %04x |                               | \n", pointer, w)
				pointer++
			}
		}
	}

	return b.String()
}
