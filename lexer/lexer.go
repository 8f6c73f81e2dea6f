// Package lexer implements the tokeniser stage of the assembler pipeline.
// It turns a normalised character stream into a flat sequence of raw
// tokens: words (identifiers, directives, labels, numbers, register
// references — all indistinguishable at this stage, exactly like the
// reference dialect's single TOKEN type), quoted strings, and embedded
// snippets. Delimiters are space and newline only; comma is ordinary
// token text, matching the dialect's comma-free argument lists.
package lexer

import (
	"strings"

	"github.com/actorpus/SCPUAS/diag"
	"github.com/actorpus/SCPUAS/source"
)

// Kind distinguishes how a token's raw text should be treated downstream.
type Kind int

const (
	Word Kind = iota
	String
	LineSnippet  // {{ expr }}
	BlockSnippet // {! stmts !}
	EOF
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case String:
		return "string"
	case LineSnippet:
		return "line-snippet"
	case BlockSnippet:
		return "block-snippet"
	case EOF:
		return "eof"
	default:
		return "?"
	}
}

// Token is a single lexical unit. Text never includes the delimiters that
// separated it from its neighbours; for String it excludes the surrounding
// quotes (already unescaped); for the snippet kinds it excludes the
// enclosing braces.
type Token struct {
	Kind Kind
	Text string
	Pos  source.Position
}

// Lexer tokenises a character stream.
type Lexer struct {
	s      *source.Stream
	errors *diag.List
}

func New(s *source.Stream, errors *diag.List) *Lexer {
	return &Lexer{s: s, errors: errors}
}

func isDelim(ch rune) bool {
	return ch == ' ' || ch == '\n'
}

// TokenizeAll consumes the entire stream and returns the resulting tokens.
func (l *Lexer) TokenizeAll() []Token {
	var toks []Token
	for {
		t := l.Next()
		if t.Kind == EOF {
			break
		}
		toks = append(toks, t)
	}
	return toks
}

// Next returns the next token, skipping whitespace and comments.
func (l *Lexer) Next() Token {
	for {
		l.skipWhitespace()
		r, ok := l.s.Peek(0)
		if !ok {
			return Token{Kind: EOF}
		}
		if r.Ch == '#' {
			if l.skipComment() {
				continue
			}
		}
		break
	}

	r, ok := l.s.Peek(0)
	if !ok {
		return Token{Kind: EOF}
	}

	switch {
	case r.Ch == '"':
		return l.readString()
	case r.Ch == '{' && l.peekIs(1, '{'):
		return l.readSnippet(LineSnippet, "{{", "}}")
	case r.Ch == '{' && l.peekIs(1, '!'):
		return l.readSnippet(BlockSnippet, "{!", "!}")
	default:
		return l.readWord()
	}
}

func (l *Lexer) peekIs(offset int, ch rune) bool {
	r, ok := l.s.Peek(offset)
	return ok && r.Ch == ch
}

func (l *Lexer) skipWhitespace() {
	for {
		r, ok := l.s.Peek(0)
		if !ok || !isDelim(r.Ch) {
			return
		}
		l.s.Next()
	}
}

// skipComment consumes a line comment (# ... \n) or a block comment
// (#/ ... /#). Returns true if a comment was consumed.
func (l *Lexer) skipComment() bool {
	if l.peekIs(1, '/') {
		l.s.Next()
		l.s.Next()
		for {
			r, ok := l.s.Next()
			if !ok {
				return true
			}
			if r.Ch == '/' {
				if nxt, ok2 := l.s.Peek(0); ok2 && nxt.Ch == '#' {
					l.s.Next()
					return true
				}
			}
		}
	}
	l.s.Next()
	for {
		r, ok := l.s.Peek(0)
		if !ok || r.Ch == '\n' {
			return true
		}
		l.s.Next()
	}
}

func (l *Lexer) readWord() Token {
	var b strings.Builder
	start, _ := l.s.Peek(0)
	for {
		r, ok := l.s.Peek(0)
		if !ok || isDelim(r.Ch) {
			break
		}
		if r.Ch == '"' || (r.Ch == '{' && (l.peekIs(1, '{') || l.peekIs(1, '!'))) {
			break
		}
		if r.Ch == '#' {
			break
		}
		l.s.Next()
		b.WriteRune(r.Ch)
	}
	return Token{Kind: Word, Text: b.String(), Pos: start.Pos}
}

func (l *Lexer) readString() Token {
	startRune, _ := l.s.Peek(0)
	l.s.Next() // consume opening quote
	var b strings.Builder
	for {
		r, ok := l.s.Next()
		if !ok {
			l.errors.AddError(diag.New(startRune.Pos, diag.KindSyntax, "unterminated string literal"))
			break
		}
		if r.Ch == '\\' {
			if nxt, ok2 := l.s.Peek(0); ok2 {
				b.WriteRune('\\')
				b.WriteRune(nxt.Ch)
				l.s.Next()
				continue
			}
		}
		if r.Ch == '"' {
			break
		}
		b.WriteRune(r.Ch)
	}
	return Token{Kind: String, Text: unescape(b.String()), Pos: startRune.Pos}
}

// readSnippet reads a balanced `open ... close` body, tracking nested
// occurrences of open so an embedded "{{" inside a "{!...!}" block (or
// vice versa) doesn't terminate the outer snippet early.
func (l *Lexer) readSnippet(kind Kind, open, close string) Token {
	startRune, _ := l.s.Peek(0)
	l.s.Next()
	l.s.Next() // consume the two-char opener
	depth := 1
	var b strings.Builder
	for {
		r, ok := l.s.Peek(0)
		if !ok {
			l.errors.AddError(diag.New(startRune.Pos, diag.KindSyntax, "unterminated snippet"))
			break
		}
		if r.Ch == rune(open[0]) && l.peekIs(1, rune(open[1])) {
			depth++
			b.WriteRune(rune(open[0]))
			b.WriteRune(rune(open[1]))
			l.s.Next()
			l.s.Next()
			continue
		}
		if r.Ch == rune(close[0]) && l.peekIs(1, rune(close[1])) {
			depth--
			l.s.Next()
			l.s.Next()
			if depth == 0 {
				break
			}
			b.WriteRune(rune(close[0]))
			b.WriteRune(rune(close[1]))
			continue
		}
		l.s.Next()
		b.WriteRune(r.Ch)
	}
	return Token{Kind: kind, Text: b.String(), Pos: startRune.Pos}
}
