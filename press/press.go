// Package press implements the instruction press: the stage that turns a
// substituted token stream into a Program of ordered labels, each holding
// a list of not-yet-typed instruction invocations. It also recognises the
// three compiler directives (-alias, -language, -include) and the
// subroot/continuation label syntax.
package press

import (
	"path/filepath"
	"strings"

	"github.com/actorpus/SCPUAS/alias"
	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/instset"
	"github.com/actorpus/SCPUAS/lexer"
	"github.com/actorpus/SCPUAS/program"
	"github.com/actorpus/SCPUAS/source"
)

// Options configures a press run.
type Options struct {
	Filename     string
	EnforceStart bool
	// LoadLanguage is called for a "-language LOC" directive other than
	// the idempotent "standard" load; it returns a (possibly extended)
	// instruction table for LOC.
	LoadLanguage func(loc string) (*instset.Table, error)
	// LoadInclude is called for a "-include PATH" directive; it must
	// tokenise and press the file at PATH and return the resulting
	// program, so its dotted labels can be re-keyed under PATH's
	// namespace.
	LoadInclude func(path string) (*program.Program, error)
}

// Press consumes a token stream and produces a Program.
type Press struct {
	opts      Options
	instTable *instset.Table
	aliases   *alias.Table
	errors    *diag.List

	loadedLanguages map[string]bool
	loadedIncludes  map[string]bool

	// pendingContinuation is the label a subroot marker just broke out of;
	// it is set by a "-NAME" subroot marker and stays set across argument
	// tokens until the next mnemonic or label. The next mnemonic consumes
	// it to open the synthetic
	// "~"-continuation label that restores the original layout position.
	pendingContinuation string
}

func New(opts Options, instTable *instset.Table, aliases *alias.Table, errors *diag.List) *Press {
	return &Press{
		opts:            opts,
		instTable:       instTable,
		aliases:         aliases,
		errors:          errors,
		loadedLanguages: map[string]bool{"standard": true},
		loadedIncludes:  make(map[string]bool),
	}
}

// Run executes the press over toks and returns the resulting Program.
func (p *Press) Run(toks []lexer.Token) *program.Program {
	prog := program.New()
	if p.opts.EnforceStart {
		prog.Ensure("start")
	}

	currentRoot := "start"
	i := 0

	currentInst := func() *program.Instruction {
		list := prog.Roots[currentRoot]
		if len(list) == 0 {
			return nil
		}
		return list[len(list)-1]
	}

	for i < len(toks) {
		tok := toks[i]
		text := tok.Text

		if tok.Kind == lexer.String {
			p.appendArgument(prog, currentRoot, `"`+text+`"`, tok.Pos)
			i++
			continue
		}

		// Alias substitution runs on every non-string token's text before
		// it is interpreted as a directive, label, mnemonic, or argument,
		// so a "-alias"-defined $name$ reference can stand in for any of
		// them once defined.
		text = p.aliases.Substitute(text)

		switch {
		case text == "-alias":
			if i+2 >= len(toks) {
				p.errors.AddError(diag.New(tok.Pos, diag.KindSyntax, "-alias requires a key and a value"))
				i = len(toks)
				continue
			}
			p.aliases.Define(toks[i+1].Text, toks[i+2].Text)
			i += 3
			continue

		case text == "-language":
			if i+1 >= len(toks) {
				p.errors.AddError(diag.New(tok.Pos, diag.KindSyntax, "-language requires a location"))
				i = len(toks)
				continue
			}
			loc := toks[i+1].Text
			if p.loadedLanguages[loc] {
				p.errors.AddWarning(tok.Pos, "language %q already loaded, ignoring", loc)
			} else if loc != "standard" && p.opts.LoadLanguage != nil {
				tbl, err := p.opts.LoadLanguage(loc)
				if err != nil {
					p.errors.AddError(diag.New(tok.Pos, diag.KindInclude, "loading language %q: %v", loc, err))
				} else {
					for name, d := range tbl.All() {
						_ = name
						p.instTable.Register(d)
					}
				}
			}
			p.loadedLanguages[loc] = true
			i += 2
			continue

		case text == "-include":
			if i+1 >= len(toks) {
				p.errors.AddError(diag.New(tok.Pos, diag.KindSyntax, "-include requires a path"))
				i = len(toks)
				continue
			}
			path := toks[i+1].Text
			if p.loadedIncludes[path] {
				p.errors.AddWarning(tok.Pos, "file %q already included, ignoring", path)
				i += 2
				continue
			}
			p.loadedIncludes[path] = true
			if p.opts.LoadInclude != nil {
				included, err := p.opts.LoadInclude(path)
				if err != nil {
					p.errors.AddError(diag.New(tok.Pos, diag.KindInclude, "including %q: %v", path, err))
				} else {
					p.mergeInclude(prog, included, path, tok.Pos)
				}
			}
			i += 2
			continue

		case strings.HasPrefix(text, "-") && len(text) > 1 && !isNumeric(text):
			inst := currentInst()
			if inst != nil && len(inst.Arguments) == 0 {
				subName := text[1:]
				newRoot := currentRoot + "." + subName
				list := prog.Roots[currentRoot]
				parentRoot := currentRoot
				prog.Roots[currentRoot] = list[:len(list)-1]
				prog.Append(newRoot, inst)
				currentRoot = newRoot
				p.pendingContinuation = parentRoot
				i++
				continue
			}
			p.appendArgument(prog, currentRoot, text, tok.Pos)
			i++
			continue

		case strings.HasSuffix(text, ":") && len(text) > 1:
			label := text[:len(text)-1]
			if !prog.Has(label) {
				prog.Ensure(label)
			}
			currentRoot = label
			p.pendingContinuation = ""
			i++
			continue

		default:
			if _, ok := p.instTable.Lookup(text); ok {
				if p.pendingContinuation != "" {
					currentRoot = continuationLabel(prog, p.pendingContinuation)
					p.pendingContinuation = ""
				}
				prog.Append(currentRoot, &program.Instruction{Mnemonic: text, Pos: tok.Pos})
				i++
				continue
			}
			p.appendArgument(prog, currentRoot, text, tok.Pos)
			i++
		}
	}

	return prog
}

func (p *Press) appendArgument(prog *program.Program, root string, text string, pos source.Position) {
	list := prog.Roots[root]
	if len(list) == 0 {
		p.errors.AddError(diag.New(pos, diag.KindSyntax, "argument %q outside of any instruction", text))
		return
	}
	inst := list[len(list)-1]
	inst.Arguments = append(inst.Arguments, text)
}

func (p *Press) mergeInclude(prog, included *program.Program, path string, pos source.Position) {
	ns := "." + strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, name := range included.Order {
		if !strings.HasPrefix(name, ".") {
			p.errors.AddError(diag.New(pos, diag.KindInclude, "included file %q defines non-dotted label %q", path, name))
			continue
		}
		key := ns + name
		for _, inst := range included.Roots[name] {
			prog.Append(key, inst)
		}
	}
}

// continuationLabel computes root's base (the part before any existing
// tilde suffix) plus one more tilde than the deepest existing continuation
// of that base anywhere in the program, mirroring the precomputer's
// insertion-label naming convention so later passes treat both the same way.
func continuationLabel(prog *program.Program, root string) string {
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

func isNumeric(s string) bool {
	if len(s) < 2 {
		return false
	}
	return s[1] >= '0' && s[1] <= '9'
}
