package snippet_test

import (
	"testing"

	"github.com/actorpus/SCPUAS/snippet"
)

func TestExpressionEvaluator(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"literal", "42", "42"},
		{"hex", "0x10", "16"},
		{"add", "1 + 2", "3"},
		{"precedence", "2 + 3 * 4", "14"},
		{"parens", "(2 + 3) * 4", "20"},
		{"shift", "1 << 4", "16"},
		{"negative", "-5 + 10", "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := snippet.NewStore()
			scope := store.Scope("t.scp")
			ev := snippet.NewExprEvaluator()
			got, err := ev.Evaluate(tt.src, scope, store, snippet.ModeExpression)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestBlockSnippetAssignment(t *testing.T) {
	store := snippet.NewStore()
	scope := store.Scope("t.scp")
	ev := snippet.NewExprEvaluator()

	got, err := ev.Evaluate("x = 10; y = x + 5; x + y", scope, store, snippet.ModeBlock)
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if got != "25" {
		t.Errorf("got %q, want 25", got)
	}
}

func TestCrossFileScopeResolution(t *testing.T) {
	store := snippet.NewStore()
	lib := store.Scope("mathlib")
	lib.Set("PI", "3")

	main := store.Scope("main.scp")
	ev := snippet.NewExprEvaluator()

	got, err := ev.Evaluate("mathlib.PI + 1", main, store, snippet.ModeExpression)
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if got != "4" {
		t.Errorf("got %q, want 4", got)
	}
}
