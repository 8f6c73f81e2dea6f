package lexer_test

import (
	"testing"

	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/lexer"
	"github.com/actorpus/SCPUAS/source"
)

func tokenize(t *testing.T, src string) []lexer.Token {
	t.Helper()
	errs := &diag.List{}
	l := lexer.New(source.New("t.scp", src), errs)
	toks := l.TokenizeAll()
	if errs.HasErrors() {
		t.Fatalf("unexpected lex errors: %v", errs.Errors)
	}
	return toks
}

func TestWords(t *testing.T) {
	toks := tokenize(t, "start: move RA 0x01")
	want := []string{"start:", "move", "RA", "0x01"}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != lexer.Word || toks[i].Text != w {
			t.Errorf("token %d = %+v, want word %q", i, toks[i], w)
		}
	}
}

func TestCommaIsNotADelimiter(t *testing.T) {
	toks := tokenize(t, "move RA,RB")
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2: %+v", len(toks), toks)
	}
	if toks[1].Text != "RA,RB" {
		t.Errorf("got %q, want %q", toks[1].Text, "RA,RB")
	}
}

func TestLineComment(t *testing.T) {
	toks := tokenize(t, "move RA # trailing comment\njump start")
	want := []string{"move", "RA", "jump", "start"}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens: %+v", len(toks), toks)
	}
	for i, w := range want {
		if toks[i].Text != w {
			t.Errorf("token %d = %q, want %q", i, toks[i].Text, w)
		}
	}
}

func TestBlockComment(t *testing.T) {
	toks := tokenize(t, "move #/ this is\na block comment /# RA")
	want := []string{"move", "RA"}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens: %+v", len(toks), toks)
	}
}

func TestString(t *testing.T) {
	toks := tokenize(t, `.str "hi\n"`)
	if len(toks) != 2 {
		t.Fatalf("got %d tokens: %+v", len(toks), toks)
	}
	if toks[1].Kind != lexer.String || toks[1].Text != "hi\n" {
		t.Errorf("got %+v", toks[1])
	}
}

func TestLineSnippet(t *testing.T) {
	toks := tokenize(t, "move RA {{ 1 + 2 }}")
	if len(toks) != 3 {
		t.Fatalf("got %d tokens: %+v", len(toks), toks)
	}
	if toks[2].Kind != lexer.LineSnippet || toks[2].Text != " 1 + 2 " {
		t.Errorf("got %+v", toks[2])
	}
}

func TestBlockSnippet(t *testing.T) {
	toks := tokenize(t, "{! x = 1; x + 1 !}")
	if len(toks) != 1 {
		t.Fatalf("got %d tokens: %+v", len(toks), toks)
	}
	if toks[0].Kind != lexer.BlockSnippet {
		t.Errorf("got %+v", toks[0])
	}
}

func TestPositions(t *testing.T) {
	toks := tokenize(t, "move\njump")
	if toks[0].Pos.Line != 1 {
		t.Errorf("move: line = %d, want 1", toks[0].Pos.Line)
	}
	if toks[1].Pos.Line != 2 {
		t.Errorf("jump: line = %d, want 2", toks[1].Pos.Line)
	}
}
