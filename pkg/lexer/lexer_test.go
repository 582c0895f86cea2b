package lexer

import (
	"testing"

	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/token"
)

func lex(t *testing.T, src string) []*token.Token {
	t.Helper()
	stream := term.NewStream("test", src, term.Throws)
	toks, err := New(src, token.NewPool(0), stream).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", src, err)
	}
	return toks
}

func kinds(toks []*token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestBasicTokens(t *testing.T) {
	toks := lex(t, `x = 1 + 2.5;`)
	want := []token.Kind{
		token.Identifier, token.Assign, token.IntLiteral, token.Plus,
		token.FloatLiteral, token.Semicolon, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestKeywordsVsIdentifiers(t *testing.T) {
	toks := lex(t, `if else while forever`)
	want := []token.Kind{token.If, token.Else, token.While, token.Identifier, token.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStringEscape(t *testing.T) {
	toks := lex(t, `"a\nb\"c"`)
	if toks[0].Kind != token.StringLiteral {
		t.Fatalf("kind = %v, want StringLiteral", toks[0].Kind)
	}
	if toks[0].Text != "a\nb\"c" {
		t.Errorf("Text = %q, want %q", toks[0].Text, "a\nb\"c")
	}
}

func TestUnterminatedString(t *testing.T) {
	stream := term.NewStream("test", `"abc`, term.Throws)
	_, err := New(`"abc`, token.NewPool(0), stream).Tokenize()
	if err == nil {
		t.Fatalf("expected an error for an unterminated string")
	}
}

func TestExponentFloat(t *testing.T) {
	toks := lex(t, `1e10 2.5e-3 3e`)
	if toks[0].Kind != token.FloatLiteral || toks[0].Text != "1e10" {
		t.Errorf("got %v %q, want FloatLiteral 1e10", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Kind != token.FloatLiteral || toks[1].Text != "2.5e-3" {
		t.Errorf("got %v %q, want FloatLiteral 2.5e-3", toks[1].Kind, toks[1].Text)
	}
	// "3e" has no digits after 'e', so 'e' is not consumed as an exponent.
	if toks[2].Kind != token.IntLiteral || toks[2].Text != "3" {
		t.Errorf("got %v %q, want IntLiteral 3", toks[2].Kind, toks[2].Text)
	}
	if toks[3].Kind != token.Identifier || toks[3].Text != "e" {
		t.Errorf("got %v %q, want Identifier e", toks[3].Kind, toks[3].Text)
	}
}

func TestByteAndUTF16Offsets(t *testing.T) {
	// "é" is 2 bytes in UTF-8 but 1 UTF-16 code unit.
	toks := lex(t, `é x`)
	if toks[0].Span.Start != 0 || toks[0].Span.End != 2 {
		t.Errorf("byte span = %d-%d, want 0-2", toks[0].Span.Start, toks[0].Span.End)
	}
	if toks[0].Span.Start16 != 0 || toks[0].Span.End16 != 1 {
		t.Errorf("utf16 span = %d-%d, want 0-1", toks[0].Span.Start16, toks[0].Span.End16)
	}
}
