package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/instset"
	"github.com/actorpus/SCPUAS/program"
	"github.com/actorpus/SCPUAS/stdinst"
	"github.com/actorpus/SCPUAS/typer"
)

// ReferenceType indicates how a label is used at a given instruction.
type ReferenceType int

const (
	RefDefinition ReferenceType = iota // root label definition
	RefBranch                          // jump/jumpz/jumpnz/jumpc target
	RefCall                            // call target
	RefLoad                            // load source address
	RefStore                           // store destination address
	RefData                            // referenced as a plain operand (e.g. .data)
)

func (r ReferenceType) String() string {
	switch r {
	case RefDefinition:
		return "definition"
	case RefBranch:
		return "branch"
	case RefCall:
		return "call"
	case RefLoad:
		return "load"
	case RefStore:
		return "store"
	case RefData:
		return "data"
	default:
		return "unknown"
	}
}

// Reference is a single use (or definition) of a label, located by the
// root and instruction index it occurs at.
type Reference struct {
	Type  ReferenceType
	Root  string
	Index int
}

// Symbol is a label together with every reference to it across the
// program.
type Symbol struct {
	Name       string
	Definition *Reference
	References []*Reference
	IsFunction bool // referenced by at least one call
	IsDataRoot bool // holds only .data/.chr/.str/.strn instructions
}

// branchMnemonics map a jump/call instruction's mnemonic to the
// ReferenceType its label argument represents.
var branchMnemonics = map[string]ReferenceType{
	"jump":   RefBranch,
	"jumpz":  RefBranch,
	"jumpnz": RefBranch,
	"jumpc":  RefBranch,
	"call":   RefCall,
}

var memoryMnemonics = map[string]ReferenceType{
	"load":  RefLoad,
	"store": RefStore,
	"addm":  RefLoad,
	"subm":  RefLoad,
}

var dataMnemonics = map[string]bool{
	".data": true, ".chr": true, ".str": true, ".strn": true,
}

// XRefGenerator builds a cross-reference over a pressed-and-typed
// program.Program.
type XRefGenerator struct {
	symbols map[string]*Symbol
}

// NewXRefGenerator creates a new cross-reference generator.
func NewXRefGenerator() *XRefGenerator {
	return &XRefGenerator{symbols: make(map[string]*Symbol)}
}

// Generate types input through the standard instruction table and builds
// a cross-reference of every root label's definition and uses.
func (x *XRefGenerator) Generate(prog *program.Program) (map[string]*Symbol, error) {
	errs := &diag.List{}
	typer.Type(prog, stdinst.Standard(), errs)
	if errs.HasErrors() {
		return nil, fmt.Errorf("typing error: %v", errs.Errors[0])
	}

	x.collectDefinitions(prog)
	x.collectReferences(prog)
	x.analyzeRoots(prog)

	return x.symbols, nil
}

func (x *XRefGenerator) ensure(name string) *Symbol {
	if _, ok := x.symbols[name]; !ok {
		x.symbols[name] = &Symbol{Name: name}
	}
	return x.symbols[name]
}

func (x *XRefGenerator) collectDefinitions(prog *program.Program) {
	for _, root := range prog.Order {
		sym := x.ensure(root)
		sym.Definition = &Reference{Type: RefDefinition, Root: root}
	}
}

func (x *XRefGenerator) collectReferences(prog *program.Program) {
	for _, root := range prog.Order {
		for i, inst := range prog.Roots[root] {
			refType, isLabelRefMnemonic := branchMnemonics[inst.Mnemonic]
			if !isLabelRefMnemonic {
				refType, isLabelRefMnemonic = memoryMnemonics[inst.Mnemonic]
			}

			for _, arg := range inst.TypedArgs {
				if arg.Kind != instset.KindLabelRef {
					continue
				}
				t := RefData
				if isLabelRefMnemonic {
					t = refType
				}
				x.addReference(arg.Label, t, root, i)
			}
		}
	}
}

func (x *XRefGenerator) addReference(name string, refType ReferenceType, root string, index int) {
	name = strings.TrimSpace(name)
	sym := x.ensure(name)
	sym.References = append(sym.References, &Reference{Type: refType, Root: root, Index: index})
	if refType == RefCall {
		sym.IsFunction = true
	}
}

// analyzeRoots flags a root as data-only when every instruction at that
// root is a data directive and it is never used as a call target.
func (x *XRefGenerator) analyzeRoots(prog *program.Program) {
	for name, sym := range x.symbols {
		insts, ok := prog.Roots[name]
		if !ok || len(insts) == 0 {
			continue
		}
		allData := true
		for _, inst := range insts {
			if !dataMnemonics[inst.Mnemonic] {
				allData = false
				break
			}
		}
		sym.IsDataRoot = allData && !sym.IsFunction
	}
}

// GetSymbols returns every symbol found.
func (x *XRefGenerator) GetSymbols() map[string]*Symbol { return x.symbols }

// GetSymbol returns a specific symbol by name.
func (x *XRefGenerator) GetSymbol(name string) (*Symbol, bool) {
	sym, ok := x.symbols[name]
	return sym, ok
}

// GetFunctions returns every symbol called at least once, sorted by name.
func (x *XRefGenerator) GetFunctions() []*Symbol {
	return sortedWhere(x.symbols, func(s *Symbol) bool { return s.IsFunction })
}

// GetDataRoots returns every symbol whose root holds only data
// directives, sorted by name.
func (x *XRefGenerator) GetDataRoots() []*Symbol {
	return sortedWhere(x.symbols, func(s *Symbol) bool { return s.IsDataRoot })
}

// GetUndefinedSymbols returns every referenced-but-never-defined label.
func (x *XRefGenerator) GetUndefinedSymbols() []*Symbol {
	return sortedWhere(x.symbols, func(s *Symbol) bool {
		return s.Definition == nil && len(s.References) > 0
	})
}

// GetUnusedSymbols returns every defined-but-never-referenced label,
// excluding "start" (the entry point is never "called" by anything).
func (x *XRefGenerator) GetUnusedSymbols() []*Symbol {
	return sortedWhere(x.symbols, func(s *Symbol) bool {
		return s.Definition != nil && len(s.References) == 0 && s.Name != "start"
	})
}

func sortedWhere(symbols map[string]*Symbol, keep func(*Symbol) bool) []*Symbol {
	out := make([]*Symbol, 0)
	for _, sym := range symbols {
		if keep(sym) {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// XRefReport renders a text cross-reference report.
type XRefReport struct {
	symbols []*Symbol
}

// NewXRefReport creates a new cross-reference report, sorted by name.
func NewXRefReport(symbols map[string]*Symbol) *XRefReport {
	out := make([]*Symbol, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return &XRefReport{symbols: out}
}

func (r *XRefReport) String() string {
	var sb strings.Builder
	sb.WriteString("Symbol Cross-Reference\n")
	sb.WriteString("=======================\n\n")

	for _, sym := range r.symbols {
		sb.WriteString(fmt.Sprintf("%-30s", sym.Name))
		switch {
		case sym.IsFunction:
			sb.WriteString(" [function]")
		case sym.IsDataRoot:
			sb.WriteString(" [data]")
		default:
			sb.WriteString(" [label]")
		}
		sb.WriteString("\n")

		if sym.Definition != nil {
			sb.WriteString("  Defined:     yes\n")
		} else {
			sb.WriteString("  Defined:     (undefined)\n")
		}

		if len(sym.References) == 0 {
			sb.WriteString("  Referenced:  (never)\n")
		} else {
			sb.WriteString(fmt.Sprintf("  Referenced:  %d time(s)\n", len(sym.References)))
			byType := make(map[ReferenceType][]*Reference)
			for _, ref := range sym.References {
				byType[ref.Type] = append(byType[ref.Type], ref)
			}
			for _, t := range []ReferenceType{RefCall, RefBranch, RefLoad, RefStore, RefData} {
				refs := byType[t]
				if len(refs) == 0 {
					continue
				}
				roots := make([]string, len(refs))
				for i, ref := range refs {
					roots[i] = ref.Root
				}
				sb.WriteString(fmt.Sprintf("    %-10s: %s\n", t.String(), strings.Join(roots, ", ")))
			}
		}
		sb.WriteString("\n")
	}

	total, defined, undefined, unused, functions := 0, 0, 0, 0, 0
	for _, sym := range r.symbols {
		total++
		if sym.Definition != nil {
			defined++
		} else {
			undefined++
		}
		if len(sym.References) == 0 {
			unused++
		}
		if sym.IsFunction {
			functions++
		}
	}
	sb.WriteString("Summary\n")
	sb.WriteString("=======\n")
	sb.WriteString(fmt.Sprintf("Total symbols:     %d\n", total))
	sb.WriteString(fmt.Sprintf("Defined:           %d\n", defined))
	sb.WriteString(fmt.Sprintf("Undefined:         %d\n", undefined))
	sb.WriteString(fmt.Sprintf("Unused:            %d\n", unused))
	sb.WriteString(fmt.Sprintf("Functions:         %d\n", functions))
	return sb.String()
}

// CrossReference is a convenience function: type prog and render a
// cross-reference report in one call.
func CrossReference(prog *program.Program) (string, error) {
	gen := NewXRefGenerator()
	symbols, err := gen.Generate(prog)
	if err != nil {
		return "", err
	}
	return NewXRefReport(symbols).String(), nil
}
