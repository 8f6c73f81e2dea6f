package source_test

import (
	"testing"

	"github.com/actorpus/SCPUAS/source"
)

func TestNewTracksLineAndColumn(t *testing.T) {
	s := source.New("t.scp", "ab\ncd")
	r, ok := s.Next()
	if !ok || r.Ch != 'a' || r.Pos.Line != 1 || r.Pos.Column != 1 {
		t.Fatalf("got %+v, %v", r, ok)
	}
	r, _ = s.Next()
	if r.Ch != 'b' || r.Pos.Column != 2 {
		t.Fatalf("got %+v", r)
	}
	r, _ = s.Next() // newline
	if r.Ch != '\n' {
		t.Fatalf("expected newline, got %+v", r)
	}
	r, _ = s.Next()
	if r.Ch != 'c' || r.Pos.Line != 2 || r.Pos.Column != 1 {
		t.Fatalf("expected line reset after newline, got %+v", r)
	}
}

func TestTabsExpandToFourSpaces(t *testing.T) {
	s := source.New("t.scp", "\tx")
	for i := 0; i < 4; i++ {
		r, ok := s.Next()
		if !ok || r.Ch != ' ' {
			t.Fatalf("expected space %d, got %+v, %v", i, r, ok)
		}
	}
	r, ok := s.Next()
	if !ok || r.Ch != 'x' || r.Pos.Column != 5 {
		t.Fatalf("expected x at column 5, got %+v", r)
	}
}

func TestControlBytesAreDropped(t *testing.T) {
	s := source.New("t.scp", "a\x01b")
	r, _ := s.Next()
	if r.Ch != 'a' {
		t.Fatalf("expected a, got %+v", r)
	}
	r, ok := s.Next()
	if !ok || r.Ch != 'b' {
		t.Fatalf("expected control byte dropped and b next, got %+v, %v", r, ok)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	s := source.New("t.scp", "xy")
	r, ok := s.Peek(1)
	if !ok || r.Ch != 'y' {
		t.Fatalf("expected peek(1) to see y, got %+v", r)
	}
	r, _ = s.Next()
	if r.Ch != 'x' {
		t.Fatalf("expected next() unaffected by peek, got %+v", r)
	}
}

func TestDoneAfterExhausted(t *testing.T) {
	s := source.New("t.scp", "a")
	if s.Done() {
		t.Fatal("expected not done before consuming")
	}
	s.Next()
	if !s.Done() {
		t.Fatal("expected done after consuming the only rune")
	}
	if _, ok := s.Next(); ok {
		t.Fatal("expected Next to fail once exhausted")
	}
}

func TestPositionString(t *testing.T) {
	p := source.Position{Filename: "t.scp", Line: 3, Column: 5}
	if got, want := p.String(), "t.scp:3:5"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	p2 := source.Position{Line: 3, Column: 5}
	if got, want := p2.String(), "3:5"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
