// Package compiler is the top-level driver: it wires character source,
// lexer, alias substituter, instruction press, pre-computer, rearranger,
// argument typer and layout into one compilation run, mirroring the
// reference dialect's full_stack_load_compile.
package compiler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/actorpus/SCPUAS/alias"
	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/instset"
	"github.com/actorpus/SCPUAS/layout"
	"github.com/actorpus/SCPUAS/lexer"
	"github.com/actorpus/SCPUAS/precompute"
	"github.com/actorpus/SCPUAS/press"
	"github.com/actorpus/SCPUAS/program"
	"github.com/actorpus/SCPUAS/rearrange"
	"github.com/actorpus/SCPUAS/snippet"
	"github.com/actorpus/SCPUAS/source"
	"github.com/actorpus/SCPUAS/stdinst"
	"github.com/actorpus/SCPUAS/typer"
)

// Logger is the verbose-tracing sink every stage writes to. The default
// implementation discards everything; the CLI wires Stderr in under
// -v/-V, mirroring the teacher's verboseMode flag and the reference
// dialect's per-stage logging.getLogger(...) call sites.
type Logger interface {
	Printf(format string, args ...any)
}

// discardLogger is the default no-op Logger.
type discardLogger struct{}

func (discardLogger) Printf(string, ...any) {}

// NewWriterLogger wraps w (typically os.Stderr) as a Logger, prefixing
// every line with name, mirroring the reference's named sub-loggers
// (Tokenizer, InstructionPress, PreComputer, Rearranger, Compiler, ...).
func NewWriterLogger(w io.Writer, name string) Logger {
	return &writerLogger{w: w, name: name}
}

type writerLogger struct {
	w    io.Writer
	name string
}

func (l *writerLogger) Printf(format string, args ...any) {
	fmt.Fprintf(l.w, "[%s] "+format+"\n", append([]any{l.name}, args...)...)
}

// Options configures one compilation run.
type Options struct {
	InputPath    string
	ProjectRoot  string // default: parent directory of InputPath
	BaseAddress  uint16
	EnforceStart bool
	Logger       Logger
	Evaluator    snippet.Evaluator // nil disables snippet evaluation
}

// Result is everything a CLI collaborator needs to write output files.
type Result struct {
	Program  *program.Program
	Final    *layout.Final
	Files    []string        // every file path that contributed source, for footers
	Warnings []*diag.Warning // non-fatal diagnostics collected across the whole run
}

// Compile runs the full pipeline over opts.InputPath and returns the laid
// out program, or a *diag.List error if any stage produced a fatal
// diagnostic. There is no partial result: if errs.HasErrors(), Result is
// nil.
func Compile(opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger{}
	}

	if opts.ProjectRoot == "" {
		opts.ProjectRoot = filepath.Dir(opts.InputPath)
	}

	errs := &diag.List{}
	instTable := stdinst.Standard()
	aliases := alias.NewTable()
	scopes := snippet.NewStore()
	files := []string{opts.InputPath}

	logger.Printf("loading %s", opts.InputPath)
	prog, err := loadAndPress(opts.InputPath, instTable, aliases, scopes, opts, errs, logger, &files)
	if err != nil {
		return nil, err
	}
	if errs.HasErrors() {
		return nil, errs
	}

	logger.Printf("pre-computing macro/instruction expansions")
	prog = precompute.Expand(prog, instTable, errs, opts.InputPath)
	if errs.HasErrors() {
		return nil, errs
	}

	logger.Printf("rearranging roots (start first)")
	prog = rearrange.Reorder(prog)

	logger.Printf("typing arguments")
	typer.Type(prog, instTable, errs)
	if errs.HasErrors() {
		return nil, errs
	}

	logger.Printf("laying out and emitting words")
	final := layout.Run(prog, opts.BaseAddress, errs)
	if errs.HasErrors() {
		return nil, errs
	}

	return &Result{Program: prog, Final: final, Files: files, Warnings: errs.Warnings}, nil
}

// loadAndPress reads path, tokenises and presses it, applying the
// snippet evaluator (if configured) before pressing and recursively
// loading -include/-language dependencies.
func loadAndPress(
	path string,
	instTable *instset.Table,
	aliases *alias.Table,
	scopes *snippet.Store,
	opts Options,
	errs *diag.List,
	logger Logger,
	files *[]string,
) (*program.Program, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- user-supplied source path
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	text := string(raw)
	if opts.Evaluator != nil {
		text, err = evaluateSnippets(text, path, scopes, opts.Evaluator)
		if err != nil {
			return nil, fmt.Errorf("evaluating snippets in %s: %w", path, err)
		}
	}

	stream := source.New(path, text)
	lx := lexer.New(stream, errs)
	toks := lx.TokenizeAll()

	enforceStart := opts.EnforceStart
	p := press.New(press.Options{
		Filename:     path,
		EnforceStart: enforceStart,
		LoadLanguage: func(loc string) (*instset.Table, error) {
			logger.Printf("loading language %s", loc)
			return loadLanguage(loc, opts)
		},
		LoadInclude: func(incPath string) (*program.Program, error) {
			resolved := filepath.Join(opts.ProjectRoot, incPath)
			logger.Printf("including %s", resolved)
			*files = append(*files, resolved)
			sub := opts
			sub.InputPath = resolved
			sub.EnforceStart = false
			included, err := loadAndPress(resolved, instTable.Clone(), alias.NewTable(), scopes, sub, errs, logger, files)
			if err != nil {
				return nil, err
			}
			included = precompute.Expand(included, instTable, errs, resolved)
			return included, nil
		},
	}, instTable, aliases, errs)

	return p.Run(toks), nil
}

// loadLanguage loads an additional instruction-table source file named by
// a -language directive. The reference dialect treats a language file as
// Go-native extension code rather than SCP source; this port has no
// language loader, so it always returns an error, and Options offers no
// way to supply compiled descriptors.
func loadLanguage(loc string, opts Options) (*instset.Table, error) {
	return nil, fmt.Errorf("no language loader configured for %q", loc)
}

// evaluateSnippets finds every {{expr}} / {!block!} span in text by a plain
// textual scan for the delimiters (comments and strings are not skipped)
// and replaces each with the evaluator's rendered text, left to right, in
// one pass. Rendered text is not scanned again, so a snippet that renders
// another snippet is left unexpanded.
func evaluateSnippets(text, filename string, scopes *snippet.Store, ev snippet.Evaluator) (string, error) {
	scope := scopes.Scope(filename)

	var out strings.Builder
	i := 0
	for i < len(text) {
		switch {
		case strings.HasPrefix(text[i:], "{{"):
			end := strings.Index(text[i+2:], "}}")
			if end < 0 {
				return "", fmt.Errorf("unterminated snippet starting at byte %d", i)
			}
			body := text[i+2 : i+2+end]
			rendered, err := ev.Evaluate(body, scope, scopes, snippet.ModeExpression)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
			i += 2 + end + 2
		case strings.HasPrefix(text[i:], "{!"):
			end := strings.Index(text[i+2:], "!}")
			if end < 0 {
				return "", fmt.Errorf("unterminated block snippet starting at byte %d", i)
			}
			body := text[i+2 : i+2+end]
			rendered, err := ev.Evaluate(body, scope, scopes, snippet.ModeBlock)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
			i += 2 + end + 2
		default:
			out.WriteByte(text[i])
			i++
		}
	}
	return out.String(), nil
}

// ParseBaseAddress parses the -A flag's value, accepting the same numeric
// literal forms the source dialect does (0x/0b/0o/decimal).
func ParseBaseAddress(s string) (uint16, error) {
	var n int64
	var err error
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		n, err = strconv.ParseInt(s[2:], 16, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		n, err = strconv.ParseInt(s[2:], 2, 64)
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		n, err = strconv.ParseInt(s[2:], 8, 64)
	default:
		n, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid base address %q: %w", s, err)
	}
	if n < 0 || n > 0xFFFF {
		return 0, fmt.Errorf("base address %q out of range", s)
	}
	return uint16(n), nil
}
