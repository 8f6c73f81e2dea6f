// Command scpasm is the CLI front end for the simpleCPU/SCP assembler and
// disassembler: it parses the flag surface, drives compiler.Compile, and
// writes whichever output formats were requested.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/actorpus/SCPUAS/compiler"
	"github.com/actorpus/SCPUAS/config"
	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/format"
	"github.com/actorpus/SCPUAS/snippet"
	"github.com/actorpus/SCPUAS/tools"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("scpasm", flag.ContinueOnError)
	input := fs.String("i", "", "input .scp file (required)")
	addrFlag := fs.String("A", "0", "address offset")
	ascStem := fs.String("a", "", "emit <stem>.asc, <stem>_high_byte.asc, <stem>_low_byte.asc")
	datStem := fs.String("d", "", "emit <stem>.dat")
	memStem := fs.String("m", "", "emit <stem>.mem")
	mifStem := fs.String("f", "", "emit <stem>.mif")
	outStem := fs.String("o", "", "shorthand: emit all formats to <stem>.*")
	decStem := fs.String("D", "", "emit <stem>.dec.asm (disassembly)")
	debugStem := fs.String("P", "", "emit <stem>.debug (developer trace)")
	fmtStem := fs.String("F", "", "emit <stem>.fmt.scp (canonical pretty-printed source)")
	xrefStem := fs.String("X", "", "emit <stem>.xref.txt (symbol cross-reference report)")
	root := fs.String("R", "", "project root (default: parent of input)")
	verbose := fs.Bool("v", false, "raise log verbosity")
	veryVerbose := fs.Bool("V", false, "raise log verbosity further")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "scpasm: -i <input.scp> is required")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "scpasm: loading config: %v\n", err)
		return 1
	}

	baseAddr, err := compiler.ParseBaseAddress(*addrFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scpasm: %v\n", err)
		return 1
	}

	var logger compiler.Logger
	if *veryVerbose {
		logger = compiler.NewWriterLogger(os.Stderr, "Compiler")
	} else if *verbose {
		logger = compiler.NewWriterLogger(os.Stderr, "Compiler")
	}

	opts := compiler.Options{
		InputPath:    *input,
		ProjectRoot:  *root,
		BaseAddress:  baseAddr,
		EnforceStart: cfg.Assembler.EnforceStart,
		Logger:       logger,
		Evaluator:    snippet.NewExprEvaluator(),
	}

	result, err := compiler.Compile(opts)
	if err != nil {
		printCompileError(os.Stderr, err, *veryVerbose)
		return 1
	}
	printWarnings(os.Stderr, result.Warnings, *veryVerbose)

	if *outStem != "" {
		if *ascStem == "" {
			*ascStem = *outStem
		}
		if *datStem == "" {
			*datStem = *outStem
		}
		if *memStem == "" {
			*memStem = *outStem
		}
		if *mifStem == "" {
			*mifStem = *outStem
		}
		if *decStem == "" {
			*decStem = *outStem
		}
	}

	if err := writeOutputs(result, *ascStem, *datStem, *memStem, *mifStem, *decStem, *debugStem); err != nil {
		fmt.Fprintf(os.Stderr, "scpasm: %v\n", err)
		return 1
	}

	if err := writeToolingOutputs(result, *input, *fmtStem, *xrefStem); err != nil {
		fmt.Fprintf(os.Stderr, "scpasm: %v\n", err)
		return 1
	}

	return 0
}

// writeToolingOutputs renders the additive, non-core developer reports:
// the canonical pretty-printer and the symbol cross-reference. Neither
// participates in the -o shorthand; both are opt-in.
func writeToolingOutputs(result *compiler.Result, input, fmtStem, xrefStem string) error {
	if fmtStem != "" {
		src, err := os.ReadFile(input)
		if err != nil {
			return fmt.Errorf("reading %s for -F: %w", input, err)
		}
		pretty, err := tools.FormatSource(string(src), input)
		if err != nil {
			return fmt.Errorf("-F: %w", err)
		}
		if err := writeFile(fmtStem+".fmt.scp", pretty); err != nil {
			return err
		}
	}
	if xrefStem != "" {
		report, err := tools.CrossReference(result.Program)
		if err != nil {
			return fmt.Errorf("-X: %w", err)
		}
		if err := writeFile(xrefStem+".xref.txt", report); err != nil {
			return err
		}
	}
	return nil
}

// writeOutputs renders and writes each requested output format. An empty
// stem skips that format entirely.
func writeOutputs(result *compiler.Result, asc, dat, mem, mif, dec, debug string) error {
	if asc != "" {
		if err := writeFile(asc+".asc", format.ASC(result.Final)); err != nil {
			return err
		}
		if err := writeFile(asc+"_high_byte.asc", format.HighByteASC(result.Final)); err != nil {
			return err
		}
		if err := writeFile(asc+"_low_byte.asc", format.LowByteASC(result.Final)); err != nil {
			return err
		}
	}
	if dat != "" {
		if err := writeFile(dat+".dat", format.DAT(result.Final)); err != nil {
			return err
		}
	}
	if mem != "" {
		if err := writeFile(mem+".mem", format.MEM(result.Final)); err != nil {
			return err
		}
	}
	if mif != "" {
		if err := writeFile(mif+".mif", format.MIF(result.Final)); err != nil {
			return err
		}
	}
	if dec != "" {
		if err := writeFile(dec+".dec.asm", format.DecASM(result.Program, result.Files)); err != nil {
			return err
		}
	}
	if debug != "" {
		if err := writeFile(debug+".debug", format.Debug(result.Program)); err != nil {
			return err
		}
	}
	return nil
}

// sourceLineReader lazily reads and caches a file's lines by name, for
// diag.SourceContext callers that render the same file's diagnostics
// repeatedly.
func sourceLineReader() func(filename string) []string {
	cache := make(map[string][]string)
	return func(filename string) []string {
		if lines, ok := cache[filename]; ok {
			return lines
		}
		raw, err := os.ReadFile(filename)
		var lines []string
		if err == nil {
			lines = strings.Split(string(raw), "\n")
		}
		cache[filename] = lines
		return lines
	}
}

// printCompileError prints a failed compile's errors (and, under -V, its
// warnings) with a three-line source-context window under each, matching
// the reference implementation's print_debug rendering. Falls back to a
// plain one-line message for errors that aren't a *diag.List (e.g. an I/O
// failure before any diagnostics existed to collect).
func printCompileError(w *os.File, err error, veryVerbose bool) {
	list, ok := err.(*diag.List)
	if !ok {
		fmt.Fprintf(w, "scpasm: %v\n", err)
		return
	}

	sourceLines := sourceLineReader()
	for _, e := range list.Errors {
		fmt.Fprintf(w, "scpasm: %s\n", e.Error())
		if e.Context == "" {
			if ctx := diag.SourceContext(sourceLines(e.Pos.Filename), e.Pos); ctx != "" {
				fmt.Fprint(w, ctx)
			}
		}
	}
	if veryVerbose {
		printWarnings(w, list.Warnings, veryVerbose)
	}
}

// printWarnings prints every collected warning, with a source-context
// window under each when veryVerbose is set.
func printWarnings(w *os.File, warnings []*diag.Warning, veryVerbose bool) {
	if len(warnings) == 0 {
		return
	}
	sourceLines := sourceLineReader()
	for _, warn := range warnings {
		fmt.Fprintf(w, "scpasm: %s\n", warn.String())
		if veryVerbose {
			if ctx := diag.SourceContext(sourceLines(warn.Pos.Filename), warn.Pos); ctx != "" {
				fmt.Fprint(w, ctx)
			}
		}
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644) // #nosec G306 -- generated assembler output, not sensitive
}
