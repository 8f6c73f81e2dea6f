// Package disasm implements the disassembler: it renders an already
// laid-out program.Program back into SCP source restricted to the legacy
// instruction subset, following the reference dialect's generate_dec.
package disasm

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/actorpus/SCPUAS/instset"
	"github.com/actorpus/SCPUAS/program"
)

// legacySet is the instruction/directive subset the disassembler recognises
// and re-emits as source; anything else falls back to a commented .data
// dump of its compiled words (the "dead instruction" path).
//
// The reference Python names this operation's F-group shift mnemonic
// "alsr" in its accepted-instruction/alias tables, inconsistent with the
// "aslr" name it (and every other F-group mnemonic table, including this
// repository's stdinst) uses everywhere else. That inconsistency would
// silently demote every aslr instruction to dead-instruction output and
// break Invariant 2 for any program using it, so this implementation uses
// "aslr" consistently instead of carrying the typo forward.
var legacySet = map[string]bool{
	"move": true, "add": true, "sub": true, "and": true,
	"load": true, "store": true, "addm": true, "subm": true,
	"jump": true, "jumpz": true, "jumpnz": true, "jumpc": true,
	"call": true, "or": true, "ret": true, "mover": true,
	"loadr": true, "storer": true, "rol": true, "ror": true,
	"addr": true, "subr": true, "andr": true, "orr": true,
	"xorr": true, "aslr": true, ".data": true,
}

var legacyAliases = map[string]string{
	"mover":  "move",
	"loadr":  "load",
	"storer": "store",
	"addr":   "add",
	"subr":   "sub",
	"andr":   "and",
	"orr":    "or",
	"xorr":   "xor",
	"aslr":   "asl",
}

// Result is the disassembler's output: the rendered source text plus the
// bookkeeping used to populate a footer (or for callers that want it
// separately, e.g. the .debug formatter).
type Result struct {
	Source        string
	RootRenames   map[string]string // original name -> generated name, only entries that changed
	DeadRoots     []string          // roots with no instructions
	DeadCount     int               // count of non-legacy instructions dumped as .data
}

// isLegacyName reports whether name contains only ASCII letters and
// digits, the reference dialect's rule for a name surviving disassembly
// unchanged.
func isLegacyName(name string) bool {
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return len(name) > 0
}

func generateRootName(used map[string]bool) string {
	for {
		var buf [8]byte
		_, _ = rand.Read(buf[:])
		name := "UnsupportedRoot" + strings.ToUpper(hex.EncodeToString(buf[:]))
		if !used[name] {
			used[name] = true
			return name
		}
	}
}

// Generate disassembles prog (already typed and laid out: every
// instruction carries TypedArgs, Address and Compiled) into SCP source
// text.
func Generate(prog *program.Program) *Result {
	rootMappings := make(map[string]string, len(prog.Order))
	used := make(map[string]bool, len(prog.Order))
	for _, root := range prog.Order {
		clean := strings.ReplaceAll(root, "~", "")
		if isLegacyName(clean) {
			rootMappings[root] = clean
			used[clean] = true
		}
	}
	for _, root := range prog.Order {
		if _, ok := rootMappings[root]; !ok {
			rootMappings[root] = generateRootName(used)
		}
	}

	var out strings.Builder
	var deadRoots []string
	deadCount := 0
	renames := make(map[string]string)

	for _, root := range prog.Order {
		insts := prog.Roots[root]
		if len(insts) == 0 {
			deadRoots = append(deadRoots, rootMappings[root])
			continue
		}

		name := rootMappings[root]
		if name != strings.ReplaceAll(root, "~", "") {
			renames[root] = name
		}
		fmt.Fprintf(&out, "%s:\n", name)

		for _, inst := range insts {
			if legacySet[inst.Mnemonic] {
				writeLegacy(&out, inst, rootMappings)
				continue
			}
			deadCount++
			writeDead(&out, inst)
		}
	}

	return &Result{
		Source:      out.String(),
		RootRenames: renames,
		DeadRoots:   deadRoots,
		DeadCount:   deadCount,
	}
}

func writeLegacy(out *strings.Builder, inst *program.Instruction, rootMappings map[string]string) {
	mnemonic := inst.Mnemonic
	if alias, ok := legacyAliases[mnemonic]; ok {
		mnemonic = alias
	}
	fmt.Fprintf(out, "    %s", mnemonic)

	for i, arg := range inst.TypedArgs {
		rendered := renderArg(arg, rootMappings)
		if (inst.Mnemonic == "loadr" || inst.Mnemonic == "storer") && i == 1 {
			rendered = "(" + rendered + ")"
		}
		fmt.Fprintf(out, " %s", rendered)
	}
	out.WriteString("\n")
}

func renderArg(v instset.Value, rootMappings map[string]string) string {
	switch v.Kind {
	case instset.KindInteger:
		return fmt.Sprintf("0x%04x", v.Int)
	case instset.KindRegister:
		return "R" + string(rune('A'+v.Int))
	case instset.KindLabelRef:
		if name, ok := rootMappings[v.Label]; ok {
			return name
		}
		return v.Label
	default:
		return strconv.Quote(v.Raw)
	}
}

// writeDead renders a non-legacy instruction as a commented-out .data dump
// of its compiled words, annotated with a hex-encoded record of the
// original mnemonic and argument text so it can be manually re-hydrated.
func writeDead(out *strings.Builder, inst *program.Instruction) {
	fmt.Fprintf(out, "    # Unsupported original instruction %q\n", inst.Mnemonic)

	fields := append([]string{inst.Mnemonic}, inst.Arguments...)
	encoded := strings.ToUpper(hex.EncodeToString([]byte(strings.Join(fields, ":"))))
	fmt.Fprintf(out, "    # %04X:DEC:%s\n", len(inst.Compiled), encoded)

	for _, w := range inst.Compiled {
		fmt.Fprintf(out, "    .data 0x%04x\n", w)
	}
}

// Footer renders the originating-files / root-rename / dead-root summary
// appended after the disassembled body, matching generate_dec's trailer.
func Footer(files []string, result *Result) string {
	var b strings.Builder
	b.WriteString("# Assembled from:\n")
	names := make([]string, 0, len(files))
	names = append(names, files...)
	sort.Strings(names)
	for _, f := range names {
		fmt.Fprintf(&b, "# - %s\n", f)
	}

	b.WriteString("#\n# Root mappings:")
	if len(result.RootRenames) == 0 {
		b.WriteString(" none\n")
	} else {
		b.WriteString("\n")
		origs := make([]string, 0, len(result.RootRenames))
		for k := range result.RootRenames {
			origs = append(origs, k)
		}
		sort.Strings(origs)
		for _, k := range origs {
			fmt.Fprintf(&b, "# - %s: %s\n", result.RootRenames[k], k)
		}
	}

	b.WriteString("#\n# Dead roots:")
	if len(result.DeadRoots) == 0 {
		b.WriteString(" none\n")
	} else {
		b.WriteString("\n")
		for _, r := range result.DeadRoots {
			fmt.Fprintf(&b, "# - %s\n", r)
		}
	}
	if result.DeadCount > 0 {
		fmt.Fprintf(&b, "# %d dead instruction(s) dumped as raw .data — see the DEC comments above each block.\n", result.DeadCount)
	}
	return b.String()
}
