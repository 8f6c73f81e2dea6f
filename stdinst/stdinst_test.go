package stdinst_test

import (
	"testing"

	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/program"
	"github.com/actorpus/SCPUAS/stdinst"
	"github.com/actorpus/SCPUAS/typer"
)

// compileOne types and compiles a single instruction through the standard
// table, the same path the layout stage drives.
func compileOne(t *testing.T, mnemonic string, args []string) []uint16 {
	t.Helper()
	prog := program.New()
	prog.Append("start", &program.Instruction{Mnemonic: mnemonic, Arguments: args})

	errs := &diag.List{}
	table := stdinst.Standard()
	typer.Type(prog, table, errs)
	if errs.HasErrors() {
		t.Fatalf("typing errors: %v", errs.Errors)
	}

	inst := prog.Roots["start"][0]
	d, _ := table.Lookup(mnemonic)
	words, err := d.Compile(inst.TypedArgs)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return words
}

// TestDataAcceptsUnconvertedHexLiteral exercises the exact case disassembly
// round-trip depends on: an unchecked ".data 0xNNNN" argument, typed as
// KindRaw, must still compile to that literal's numeric value rather than
// being rejected as non-numeric.
func TestDataAcceptsUnconvertedHexLiteral(t *testing.T) {
	words := compileOne(t, ".data", []string{"0x1234"})
	if len(words) != 1 || words[0] != 0x1234 {
		t.Fatalf("got %v, want [0x1234]", words)
	}
}

func TestDataAcceptsDecimalAndDefaultsToZero(t *testing.T) {
	if words := compileOne(t, ".data", []string{"42"}); len(words) != 1 || words[0] != 42 {
		t.Fatalf("got %v, want [42]", words)
	}
	if words := compileOne(t, ".data", nil); len(words) != 1 || words[0] != 0 {
		t.Fatalf("got %v, want [0]", words)
	}
}

func TestDataRejectsNonNumeric(t *testing.T) {
	prog := program.New()
	prog.Append("start", &program.Instruction{Mnemonic: ".data", Arguments: []string{"not_a_number"}})

	errs := &diag.List{}
	table := stdinst.Standard()
	typer.Type(prog, table, errs)
	if errs.HasErrors() {
		t.Fatalf("typing errors: %v", errs.Errors)
	}

	inst := prog.Roots["start"][0]
	d, _ := table.Lookup(".data")
	if _, err := d.Compile(inst.TypedArgs); err == nil {
		t.Fatal("expected an error for a non-numeric .data argument")
	}
}

func TestStrnAppendsTrailingNull(t *testing.T) {
	words := compileOne(t, ".strn", []string{`"hi"`})
	want := []uint16{'h', 'i', 0}
	if len(words) != len(want) {
		t.Fatalf("got %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("got %v, want %v", words, want)
		}
	}
}

func TestRolDefaultsSourceToDestination(t *testing.T) {
	single := compileOne(t, "rol", []string{"RA"})
	paired := compileOne(t, "rol", []string{"RA", "RA"})
	if len(single) != 1 || len(paired) != 1 || single[0] != paired[0] {
		t.Fatalf("expected rol RA and rol RA RA to encode identically, got %v vs %v", single, paired)
	}
}
