package diag_test

import (
	"strings"
	"testing"

	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/source"
)

func TestErrorFormatting(t *testing.T) {
	pos := source.Position{Filename: "t.scp", Line: 2, Column: 3}
	e := diag.New(pos, diag.KindArity, "expected %d arguments, got %d", 2, 1)
	if !strings.Contains(e.Error(), "t.scp:2:3") {
		t.Errorf("expected position in error text, got %q", e.Error())
	}
	if !strings.Contains(e.Error(), "arity") {
		t.Errorf("expected kind in error text, got %q", e.Error())
	}
}

func TestNewWithContextAppendsContext(t *testing.T) {
	pos := source.Position{Line: 1, Column: 1}
	e := diag.NewWithContext(pos, diag.KindSyntax, "  bad\n  ^", "unexpected token")
	if !strings.Contains(e.Error(), "bad") {
		t.Errorf("expected context in error text, got %q", e.Error())
	}
}

func TestListAggregatesErrorsAndWarnings(t *testing.T) {
	l := &diag.List{}
	if l.HasErrors() {
		t.Fatal("expected a fresh list to have no errors")
	}
	pos := source.Position{Line: 1, Column: 1}
	l.AddError(diag.New(pos, diag.KindType, "boom"))
	l.AddWarning(pos, "careful: %s", "watch out")

	if !l.HasErrors() {
		t.Error("expected HasErrors true after AddError")
	}
	if len(l.Warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(l.Warnings))
	}
	if !strings.Contains(l.Error(), "boom") {
		t.Errorf("expected List.Error to include the error message, got %q", l.Error())
	}
}

func TestSourceContextRendersCaret(t *testing.T) {
	lines := []string{"first", "second line", "third"}
	pos := source.Position{Line: 2, Column: 3}
	got := diag.SourceContext(lines, pos)
	if !strings.Contains(got, "second line") {
		t.Errorf("expected offending line in context, got %q", got)
	}
	if !strings.Contains(got, "first") || !strings.Contains(got, "third") {
		t.Errorf("expected surrounding lines in context, got %q", got)
	}
	if !strings.Contains(got, "^") {
		t.Errorf("expected a caret, got %q", got)
	}
}

func TestSourceContextOutOfRange(t *testing.T) {
	lines := []string{"only one line"}
	pos := source.Position{Line: 99, Column: 1}
	if got := diag.SourceContext(lines, pos); got != "" {
		t.Errorf("expected empty context for an out-of-range line, got %q", got)
	}
}
