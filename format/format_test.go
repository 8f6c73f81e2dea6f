package format_test

import (
	"strings"
	"testing"

	"github.com/actorpus/SCPUAS/alias"
	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/format"
	"github.com/actorpus/SCPUAS/layout"
	"github.com/actorpus/SCPUAS/lexer"
	"github.com/actorpus/SCPUAS/precompute"
	"github.com/actorpus/SCPUAS/press"
	"github.com/actorpus/SCPUAS/program"
	"github.com/actorpus/SCPUAS/rearrange"
	"github.com/actorpus/SCPUAS/source"
	"github.com/actorpus/SCPUAS/stdinst"
	"github.com/actorpus/SCPUAS/typer"
)

func build(t *testing.T, src string) (*program.Program, *layout.Final) {
	t.Helper()
	instTable := stdinst.Standard()
	errs := &diag.List{}

	lx := lexer.New(source.New("t.scp", src), errs)
	toks := lx.TokenizeAll()
	p := press.New(press.Options{Filename: "t.scp", EnforceStart: true}, instTable, alias.NewTable(), errs)
	prog := p.Run(toks)
	prog = precompute.Expand(prog, instTable, errs, "t.scp")
	prog = rearrange.Reorder(prog)
	typer.Type(prog, instTable, errs)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors)
	}
	final := layout.Run(prog, 0, errs)
	if errs.HasErrors() {
		t.Fatalf("unexpected layout errors: %v", errs.Errors)
	}
	return prog, final
}

func TestASCScenario1(t *testing.T) {
	_, final := build(t, "start:\n    move RA 0x01\n    jump start\n")
	got := format.ASC(final)
	want := "0000 0001 8000"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHighLowByteASC(t *testing.T) {
	_, final := build(t, "start:\n    jump start\n")
	// jump start -> 0x8000
	if got, want := format.HighByteASC(final), "0000 80"; got != want {
		t.Errorf("high byte: got %q, want %q", got, want)
	}
	if got, want := format.LowByteASC(final), "0000 00"; got != want {
		t.Errorf("low byte: got %q, want %q", got, want)
	}
}

func TestDAT(t *testing.T) {
	_, final := build(t, "start:\n    jump start\n")
	got := format.DAT(final)
	want := "0000 1000000000000000\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMEMNibbleSwap(t *testing.T) {
	_, final := build(t, "start:\n    jump start\n")
	got := format.MEM(final)
	// 8000 -> digits 8,0,0,0 reversed -> 0,0,0,8 -> "0008"
	want := "@0000 0008\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMIFHeaderAndTrailer(t *testing.T) {
	_, final := build(t, "start:\n    jump start\n")
	got := format.MIF(final)
	if !strings.HasPrefix(got, "DEPTH = 32;\n") {
		t.Errorf("expected DEPTH header, got %q", got)
	}
	if !strings.HasSuffix(got, "END;\n") {
		t.Errorf("expected END; trailer, got %q", got)
	}
	if !strings.Contains(got, "0000 : 1000000000000000;\n") {
		t.Errorf("expected content line, got %q", got)
	}
}

func TestDecASMIncludesFooter(t *testing.T) {
	prog, _ := build(t, "start:\n    jump start\n")
	got := format.DecASM(prog, []string{"main.scp"})
	if !strings.Contains(got, "start:") {
		t.Errorf("expected start label, got %q", got)
	}
	if !strings.Contains(got, "main.scp") {
		t.Errorf("expected footer file list, got %q", got)
	}
}

func TestDebugListsEachWord(t *testing.T) {
	prog, _ := build(t, "start:\n    load msg\n    jump start\nmsg:\n    .strn \"Hi\"\n")
	got := format.Debug(prog)
	if !strings.Contains(got, "start:") || !strings.Contains(got, "msg:") {
		t.Errorf("expected both labels in debug output, got %q", got)
	}
	if !strings.Contains(got, "load") || !strings.Contains(got, "jump") {
		t.Errorf("expected instruction mnemonics in debug output, got %q", got)
	}
}
