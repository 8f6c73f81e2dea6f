// Package precompute implements the pre-computer stage: it expands
// "expanding" instructions (those with a PrecomputeCompile closure) by
// asking the descriptor for replacement SCP source text, re-lexing and
// re-pressing that text, and splicing the result back into the program.
//
// Splice rule (this corrects an apparent bug in the reference Python
// implementation, where the post-substitution splice check can never
// match; see SPEC_FULL.md §6.1 for the derivation): the descriptor's
// returned text contains the literal token "~insert", which is replaced
// with an insertion label computed as the instruction's enclosing root's
// un-tilde-suffixed base name plus one more '~' than the deepest existing
// tilde-continuation sharing that base. After the replacement text is
// re-pressed into its own roots, a produced root whose name equals the
// insertion label is merged into the enclosing root at the expanding
// instruction's position. A dotted child of the insertion label stays a
// root of its own, tildes intact, placed directly after the enclosing
// root in Order. Every other produced root is promoted to a new top-level
// root, tildes intact.
package precompute

import (
	"strings"

	"github.com/actorpus/SCPUAS/alias"
	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/instset"
	"github.com/actorpus/SCPUAS/lexer"
	"github.com/actorpus/SCPUAS/press"
	"github.com/actorpus/SCPUAS/program"
	"github.com/actorpus/SCPUAS/source"
)

// MaxPasses bounds the number of full expansion sweeps, guarding against
// an expanding instruction whose own output always re-expands.
const MaxPasses = 32

// Expand performs every pre-computation sweep needed to remove all
// expanding instructions from prog, returning the fully expanded program.
func Expand(prog *program.Program, instTable *instset.Table, errors *diag.List, filename string) *program.Program {
	for pass := 0; pass < MaxPasses; pass++ {
		if !expandOnce(prog, instTable, errors, filename) {
			return prog
		}
	}
	errors.AddWarning(source.Position{Filename: filename}, "pre-computation did not converge after %d passes", MaxPasses)
	return prog
}

func expandOnce(prog *program.Program, instTable *instset.Table, errors *diag.List, filename string) bool {
	expandedAny := false
	for _, root := range append([]string(nil), prog.Order...) {
		list := prog.Roots[root]
		for idx := 0; idx < len(list); idx++ {
			inst := list[idx]
			d, ok := instTable.Lookup(inst.Mnemonic)
			if !ok || !d.IsExpanding() {
				continue
			}
			text, err := d.PrecomputeCompile(inst.Arguments, root)
			if err != nil {
				errors.AddError(diag.New(inst.Pos, diag.KindType, "expanding %s: %v", inst.Mnemonic, err))
				continue
			}
			label := insertionLabel(prog, root)
			text = strings.ReplaceAll(text, "~insert", label)

			errs := &diag.List{}
			lx := lexer.New(source.New(filename, text), errs)
			toks := lx.TokenizeAll()
			sub := press.New(press.Options{Filename: filename, EnforceStart: false}, instTable, alias.NewTable(), errs).Run(toks)
			if errs.HasErrors() {
				for _, e := range errs.Errors {
					errors.AddError(e)
				}
				continue
			}

			list = spliceInto(prog, root, list, idx, sub, label)
			expandedAny = true
			idx-- // re-examine the position we just replaced
		}
		prog.Roots[root] = list
	}
	return expandedAny
}

// insertionLabel computes root's base (the part before any existing tilde
// suffix) plus one more tilde than the deepest existing continuation of
// that base anywhere in the program.
func insertionLabel(prog *program.Program, root string) string {
	base := root
	if idx := strings.IndexByte(root, '~'); idx >= 0 {
		base = root[:idx]
	}
	depth := 0
	for _, name := range prog.Order {
		if !strings.HasPrefix(name, base) {
			continue
		}
		rest := name[len(base):]
		d := 0
		for _, ch := range rest {
			if ch != '~' {
				break
			}
			d++
		}
		if d > depth {
			depth = d
		}
	}
	return base + strings.Repeat("~", depth+1)
}

// spliceInto replaces list[idx] (the expanding instruction) with sub's
// contribution. The sub-root that exactly matches the insertion label is
// merged inline into list, in place of the expanding instruction — this
// is the "continue right here" case. Sub-roots that are dotted children
// of the insertion label keep their own tilde-suffixed key and are
// inserted as new Program entries immediately following root, so they
// stay address-contiguous with it. Every other sub-root is promoted to an
// independent top-level root.
func spliceInto(prog *program.Program, root string, list []*program.Instruction, idx int, sub *program.Program, label string) []*program.Instruction {
	var inline []*program.Instruction
	cursor := root

	for _, name := range sub.Order {
		switch {
		case name == label:
			inline = append(inline, sub.Roots[name]...)
		case strings.HasPrefix(name, label+"."):
			prog.InsertAfter(cursor, name, sub.Roots[name])
			cursor = name
		default:
			for _, inst := range sub.Roots[name] {
				prog.Append(name, inst)
			}
		}
	}

	out := make([]*program.Instruction, 0, len(list)-1+len(inline))
	out = append(out, list[:idx]...)
	out = append(out, inline...)
	out = append(out, list[idx+1:]...)
	return out
}

