// Package program defines the in-memory representation that flows through
// the instruction press, pre-computer, rearranger, argument typer and
// layout stages: an ordered label-to-instruction-list map, mirroring the
// reference dialect's RootedInstructionsStruct (an OrderedDict keyed by
// root/label name).
package program

import (
	"github.com/actorpus/SCPUAS/instset"
	"github.com/actorpus/SCPUAS/source"
)

// Instruction is one parsed instruction or directive invocation: a
// mnemonic together with its raw argument tokens, not yet type-checked.
type Instruction struct {
	Mnemonic  string
	Arguments []string
	Pos       source.Position

	// Address is filled in by the layout stage.
	Address uint16
	// Length is the number of words this instruction compiles to, filled
	// in by the layout stage's dummy-compile pass.
	Length int

	// Descriptor and TypedArgs are filled in by the argument typer.
	Descriptor *instset.Descriptor
	TypedArgs  []instset.Value

	// Compiled holds this instruction's final machine words, filled in by
	// the layout stage's emission pass. Used by the disassembler and the
	// debug formatter, which both need a per-instruction view of the word
	// stream rather than the flat concatenation layout.Final carries.
	Compiled []uint16
}

// Program is the ordered collection of labels ("roots") produced by the
// instruction press. Order matters: "start" is always first, and output
// formatters walk labels in Order.
type Program struct {
	Roots map[string][]*Instruction
	Order []string
}

func New() *Program {
	return &Program{Roots: make(map[string][]*Instruction)}
}

// Ensure returns the instruction list for name, creating an empty one (and
// appending name to Order) if this is the first time it's seen.
func (p *Program) Ensure(name string) []*Instruction {
	if _, ok := p.Roots[name]; !ok {
		p.Roots[name] = nil
		p.Order = append(p.Order, name)
	}
	return p.Roots[name]
}

// Append adds inst to the end of name's instruction list, creating the
// root if necessary. This is how duplicate label definitions merge:
// re-opening an existing label just keeps appending to the same slice and
// does not change Order.
func (p *Program) Append(name string, inst *Instruction) {
	p.Ensure(name)
	p.Roots[name] = append(p.Roots[name], inst)
}

// Has reports whether name is a known root.
func (p *Program) Has(name string) bool {
	_, ok := p.Roots[name]
	return ok
}

// InsertAfter places newRoot's instruction list immediately after
// afterRoot in Order, creating newRoot if it doesn't already exist. Used
// by the pre-computer to keep an expanding instruction's dotted-child
// continuations address-contiguous with the root that invoked it.
func (p *Program) InsertAfter(afterRoot, newRoot string, insts []*Instruction) {
	if _, ok := p.Roots[newRoot]; !ok {
		p.Roots[newRoot] = nil
	}
	p.Roots[newRoot] = append(p.Roots[newRoot], insts...)

	for i, n := range p.Order {
		if n == afterRoot {
			rest := append([]string{newRoot}, p.Order[i+1:]...)
			p.Order = append(p.Order[:i+1], rest...)
			return
		}
	}
	p.Order = append(p.Order, newRoot)
}

// Rename moves the instruction list for old to new, preserving old's
// position in Order when new did not already exist, and appending to an
// existing new list otherwise (in which case old leaves Order).
func (p *Program) Rename(old, newName string) {
	insts := p.Roots[old]
	delete(p.Roots, old)
	_, exists := p.Roots[newName]
	placed := false
	for i, n := range p.Order {
		if n == old {
			if exists {
				p.Order = append(p.Order[:i], p.Order[i+1:]...)
			} else {
				p.Order[i] = newName
				placed = true
			}
			break
		}
	}
	if !exists {
		p.Roots[newName] = insts
		if !placed {
			p.Order = append(p.Order, newName)
		}
		return
	}
	p.Roots[newName] = append(p.Roots[newName], insts...)
}
