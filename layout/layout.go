// Package layout implements the final three-pass layout and emission stage.
// Pass one dummy-compiles every instruction with label references forced
// to zero, to measure each instruction's emitted width without depending
// on any address that hasn't been assigned yet (Invariant A). Pass two
// walks the program in final order assigning addresses from those widths
// and builds a tilde-stripped label-to-address map. Pass three compiles
// every instruction again, this time with label references resolved
// through that map, producing the final word stream.
package layout

import (
	"strings"

	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/instset"
	"github.com/actorpus/SCPUAS/program"
)

// Final is the laid-out, emitted program: a flat word stream starting at
// BaseAddress, plus the address every label resolved to.
type Final struct {
	BaseAddress uint16
	Words       []uint16
	Addresses   map[string]uint16
}

// Run executes the full three-pass layout algorithm.
func Run(prog *program.Program, baseAddress uint16, errors *diag.List) *Final {
	dummyCompileWidths(prog, errors)
	addrs := assignAddresses(prog, baseAddress)
	words := realCompile(prog, addrs, errors)

	return &Final{BaseAddress: baseAddress, Words: words, Addresses: addrs}
}

// stripTilde removes every '~' from name — the rule that lets a
// continuation label like "start~.HALT" resolve under the same address
// key as a plain reference to "start.HALT".
func stripTilde(name string) string {
	if !strings.ContainsRune(name, '~') {
		return name
	}
	return strings.ReplaceAll(name, "~", "")
}

func dummyArgs(args []instset.Value) []instset.Value {
	out := make([]instset.Value, len(args))
	for i, v := range args {
		if v.Kind == instset.KindLabelRef {
			out[i] = instset.Integer(0)
		} else {
			out[i] = v
		}
	}
	return out
}

func dummyCompileWidths(prog *program.Program, errors *diag.List) {
	for _, root := range prog.Order {
		for _, inst := range prog.Roots[root] {
			if inst.Descriptor == nil || inst.Descriptor.Compile == nil {
				continue
			}
			words, err := inst.Descriptor.Compile(dummyArgs(inst.TypedArgs))
			if err != nil {
				errors.AddError(diag.New(inst.Pos, diag.KindLayout, "measuring width of %s: %v", inst.Mnemonic, err))
				continue
			}
			inst.Length = len(words)
		}
	}
}

func assignAddresses(prog *program.Program, base uint16) map[string]uint16 {
	addrs := make(map[string]uint16)
	addr := base
	for _, root := range prog.Order {
		key := stripTilde(root)
		if _, exists := addrs[key]; !exists {
			addrs[key] = addr
		}
		for _, inst := range prog.Roots[root] {
			inst.Address = addr
			addr += uint16(inst.Length)
		}
	}
	return addrs
}

func resolvedArgs(args []instset.Value, addrs map[string]uint16, inst *program.Instruction, errors *diag.List) []instset.Value {
	out := make([]instset.Value, len(args))
	for i, v := range args {
		if v.Kind != instset.KindLabelRef {
			out[i] = v
			continue
		}
		a, ok := addrs[v.Label]
		if !ok {
			errors.AddError(diag.New(inst.Pos, diag.KindUndefinedLabel, "undefined label %q", v.Label))
			out[i] = instset.Integer(0)
			continue
		}
		out[i] = instset.Integer(a)
	}
	return out
}

func realCompile(prog *program.Program, addrs map[string]uint16, errors *diag.List) []uint16 {
	var words []uint16
	for _, root := range prog.Order {
		for _, inst := range prog.Roots[root] {
			if inst.Descriptor == nil || inst.Descriptor.Compile == nil {
				continue
			}
			compiled, err := inst.Descriptor.Compile(resolvedArgs(inst.TypedArgs, addrs, inst, errors))
			if err != nil {
				errors.AddError(diag.New(inst.Pos, diag.KindLayout, "compiling %s: %v", inst.Mnemonic, err))
				continue
			}
			if len(compiled) != inst.Length {
				errors.AddError(diag.New(inst.Pos, diag.KindLayout, "%s: width mismatch between passes (measured %d, emitted %d)", inst.Mnemonic, inst.Length, len(compiled)))
			}
			inst.Compiled = compiled
			words = append(words, compiled...)
		}
	}
	return words
}
