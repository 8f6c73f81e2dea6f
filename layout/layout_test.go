package layout_test

import (
	"testing"

	"github.com/actorpus/SCPUAS/alias"
	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/layout"
	"github.com/actorpus/SCPUAS/lexer"
	"github.com/actorpus/SCPUAS/precompute"
	"github.com/actorpus/SCPUAS/press"
	"github.com/actorpus/SCPUAS/rearrange"
	"github.com/actorpus/SCPUAS/source"
	"github.com/actorpus/SCPUAS/stdinst"
	"github.com/actorpus/SCPUAS/typer"
)

// assemble runs the full press -> precompute -> rearrange -> typer -> layout
// pipeline over src and returns the emitted word stream, base address word
// included as the first element (matching the .asc format's documented
// layout).
func assemble(t *testing.T, src string) []uint16 {
	t.Helper()

	instTable := stdinst.Standard()
	errs := &diag.List{}

	stream := source.New("t.scp", src)
	lx := lexer.New(stream, errs)
	toks := lx.TokenizeAll()

	p := press.New(press.Options{Filename: "t.scp", EnforceStart: true}, instTable, alias.NewTable(), errs)
	prog := p.Run(toks)
	if errs.HasErrors() {
		t.Fatalf("unexpected press errors: %v", errs.Errors)
	}

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

	out := make([]uint16, 0, len(final.Words)+1)
	out = append(out, final.BaseAddress)
	out = append(out, final.Words...)
	return out
}

func assertWords(t *testing.T, got []uint16, want ...uint16) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d words %04x, want %d words %04x", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d: got %04x, want %04x", i, got[i], want[i])
		}
	}
}

// Scenario 1 from the register-index rule (RA = index 0): move RA 0x01
// compiles to 0001 (opcode 0, reg nibble rd<<2=0, imm 01), not 0401 — see
// DESIGN.md's "Register letter-to-index mapping" entry.
func TestScenario1ImmediateMoveAndJumpLoop(t *testing.T) {
	src := "start:\n    move RA 0x01\n    jump start\n"
	got := assemble(t, src)
	assertWords(t, got, 0x0000, 0x0001, 0x8000)
}

func TestScenario2ForwardLabel(t *testing.T) {
	src := "start:\n    jumpz fire\nreset:\n    move RA 2\n    jump start\nfire:\n    move RA 1\n    jump start\n"
	got := assemble(t, src)
	assertWords(t, got, 0x0000, 0x9003, 0x0002, 0x8000, 0x0001, 0x8000)
}

func TestScenario3StrnEmbedding(t *testing.T) {
	src := "start:\n    load msg\n    jump start\nmsg:\n    .strn \"Hi\"\n"
	got := assemble(t, src)
	assertWords(t, got, 0x0000, 0x4002, 0x8000, 0x0048, 0x0069, 0x0000)
}

func TestScenario4DuplicateLabelAppend(t *testing.T) {
	src := "start:\n    move RA 1\nloop:\n    add RA 1\nstart:\n    jump loop\n"
	got := assemble(t, src)
	assertWords(t, got, 0x0000, 0x0001, 0x8002, 0x1001)
}

func TestDataWithNoArgumentEmitsZero(t *testing.T) {
	src := "start:\n    .data\n"
	got := assemble(t, src)
	assertWords(t, got, 0x0000, 0x0000)
}

func TestStrEmitsOneWordPerCharNoTerminator(t *testing.T) {
	src := "start:\n    .str \"A\"\n"
	got := assemble(t, src)
	assertWords(t, got, 0x0000, 0x0041)
}

func TestStrnEmitsTrailingZero(t *testing.T) {
	src := "start:\n    .strn \"A\"\n"
	got := assemble(t, src)
	assertWords(t, got, 0x0000, 0x0041, 0x0000)
}

func TestRolDefaultsSourceToSameRegister(t *testing.T) {
	withSrc := assemble(t, "start:\n    rol RA RA\n")
	withoutSrc := assemble(t, "start:\n    rol RA\n")
	assertWords(t, withoutSrc, withSrc...)
}

func TestOverflowingLiteralIsRejected(t *testing.T) {
	instTable := stdinst.Standard()
	errs := &diag.List{}

	stream := source.New("t.scp", "start:\n    move RA 0x10000\n")
	lx := lexer.New(stream, errs)
	toks := lx.TokenizeAll()

	p := press.New(press.Options{Filename: "t.scp", EnforceStart: true}, instTable, alias.NewTable(), errs)
	prog := p.Run(toks)
	if errs.HasErrors() {
		t.Fatalf("unexpected press errors: %v", errs.Errors)
	}

	prog = precompute.Expand(prog, instTable, errs, "t.scp")
	prog = rearrange.Reorder(prog)
	typer.Type(prog, instTable, errs)
	if !errs.HasErrors() {
		t.Fatal("expected an overflow error for a literal greater than 0xFFFF")
	}
}
