// Package rearrange implements the rearranger stage: it reorders a
// Program's root list into final layout order so that the three-pass
// layout stage assigns addresses in the right sequence. "start" always
// comes first, followed by every other root that doesn't begin with a
// leading dot (in the order the instruction press produced them —
// preserving the address-contiguity the pre-computer relies on),
// followed by dotted (library/included) roots.
package rearrange

import (
	"strings"

	"github.com/actorpus/SCPUAS/program"
)

// Reorder returns prog with its Order field rearranged in place. Every
// dotted label is re-keyed under its name with the leading dot removed,
// both in Order and in Roots, matching the reference rearranger's
// new_roots[root[1:]] = roots[root].
func Reorder(prog *program.Program) *program.Program {
	var plain, dotted []string
	hasStart := false

	for _, name := range prog.Order {
		switch {
		case name == "start":
			hasStart = true
		case strings.HasPrefix(name, "."):
			dotted = append(dotted, name)
		default:
			plain = append(plain, name)
		}
	}

	order := make([]string, 0, len(prog.Order))
	if hasStart {
		order = append(order, "start")
	}
	order = append(order, plain...)
	for _, name := range dotted {
		stripped := strings.TrimPrefix(name, ".")
		prog.Roots[stripped] = prog.Roots[name]
		delete(prog.Roots, name)
		order = append(order, stripped)
	}
	prog.Order = order
	return prog
}
