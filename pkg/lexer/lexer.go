// Package lexer implements the lexer (C4): character stream to token stream,
// with every token carrying both a byte-offset and a UTF-16-offset span.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/token"
)

// Lexer scans one source string into tokens drawn from a token.Pool.
type Lexer struct {
	src    string
	pos    int // byte offset of the next unread rune
	pos16  int // UTF-16 offset of the next unread rune
	pool   *token.Pool
	stream *term.Stream
}

// New creates a Lexer over src. Errors are raised through stream.
func New(src string, pool *token.Pool, stream *term.Stream) *Lexer {
	return &Lexer{src: src, pool: pool, stream: stream}
}

// Tokenize scans the entire source and returns its tokens, terminated by a
// single EOF token. It stops at the first lexical error.
func (l *Lexer) Tokenize() ([]*token.Token, error) {
	var toks []*token.Token
	for {
		l.skipSpaceAndComments()
		if l.atEnd() {
			toks = append(toks, l.emit(token.EOF, l.pos, l.pos, l.pos16, l.pos16))
			return toks, nil
		}
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

// peekRune returns the rune at the current position without advancing.
func (l *Lexer) peekRune() (rune, int) {
	if l.atEnd() {
		return 0, 0
	}
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	return r, size
}

// advance consumes one rune and returns it, updating both offsets.
func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	l.pos16 += utf16Len(r)
	return r
}

func utf16Len(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

func (l *Lexer) skipSpaceAndComments() {
	for !l.atEnd() {
		r, _ := l.peekRune()
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			l.advance()
		case r == '/' && strings.HasPrefix(l.src[l.pos:], "//"):
			for !l.atEnd() && l.mustPeek() != '\n' {
				l.advance()
			}
		case r == '/' && strings.HasPrefix(l.src[l.pos:], "/*"):
			l.advance()
			l.advance()
			for !l.atEnd() && !strings.HasPrefix(l.src[l.pos:], "*/") {
				l.advance()
			}
			if !l.atEnd() {
				l.advance()
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) mustPeek() rune {
	r, _ := l.peekRune()
	return r
}

// emit constructs a token spanning [start,end) byte / [start16,end16) utf16.
func (l *Lexer) emit(kind token.Kind, start, end, start16, end16 int) *token.Token {
	return l.pool.New(kind, l.src[start:end], token.Span{
		Start: start, End: end, Start16: start16, End16: end16,
	})
}

func (l *Lexer) next() (*token.Token, error) {
	start, start16 := l.pos, l.pos16
	r, _ := l.peekRune()

	switch {
	case isIdentStart(r):
		return l.lexIdentOrKeyword(start, start16), nil
	case isDigit(r):
		return l.lexNumber(start, start16)
	case r == '"':
		return l.lexString(start, start16)
	}

	l.advance()
	switch r {
	case '=':
		if l.mustPeek() == '=' {
			l.advance()
			return l.emit(token.Eq, start, l.pos, start16, l.pos16), nil
		}
		return l.emit(token.Assign, start, l.pos, start16, l.pos16), nil
	case '!':
		if l.mustPeek() == '=' {
			l.advance()
			return l.emit(token.NotEq, start, l.pos, start16, l.pos16), nil
		}
		return l.emit(token.Bang, start, l.pos, start16, l.pos16), nil
	case '<':
		if l.mustPeek() == '=' {
			l.advance()
			return l.emit(token.LessEq, start, l.pos, start16, l.pos16), nil
		}
		return l.emit(token.Less, start, l.pos, start16, l.pos16), nil
	case '>':
		if l.mustPeek() == '=' {
			l.advance()
			return l.emit(token.GreaterEq, start, l.pos, start16, l.pos16), nil
		}
		return l.emit(token.Greater, start, l.pos, start16, l.pos16), nil
	case '+':
		return l.emit(token.Plus, start, l.pos, start16, l.pos16), nil
	case '-':
		return l.emit(token.Minus, start, l.pos, start16, l.pos16), nil
	case '*':
		return l.emit(token.Star, start, l.pos, start16, l.pos16), nil
	case '/':
		return l.emit(token.Slash, start, l.pos, start16, l.pos16), nil
	case '%':
		return l.emit(token.Percent, start, l.pos, start16, l.pos16), nil
	case '^':
		return l.emit(token.Caret, start, l.pos, start16, l.pos16), nil
	case '&':
		return l.emit(token.And, start, l.pos, start16, l.pos16), nil
	case '|':
		return l.emit(token.Or, start, l.pos, start16, l.pos16), nil
	case ':':
		return l.emit(token.Colon, start, l.pos, start16, l.pos16), nil
	case '.':
		return l.emit(token.Dot, start, l.pos, start16, l.pos16), nil
	case '[':
		return l.emit(token.LBracket, start, l.pos, start16, l.pos16), nil
	case ']':
		return l.emit(token.RBracket, start, l.pos, start16, l.pos16), nil
	case '(':
		return l.emit(token.LParen, start, l.pos, start16, l.pos16), nil
	case ')':
		return l.emit(token.RParen, start, l.pos, start16, l.pos16), nil
	case '{':
		return l.emit(token.LBrace, start, l.pos, start16, l.pos16), nil
	case '}':
		return l.emit(token.RBrace, start, l.pos, start16, l.pos16), nil
	case ',':
		return l.emit(token.Comma, start, l.pos, start16, l.pos16), nil
	case ';':
		return l.emit(token.Semicolon, start, l.pos, start16, l.pos16), nil
	case '?':
		return l.emit(token.Question, start, l.pos, start16, l.pos16), nil
	default:
		return nil, l.stream.Raisef(term.LexError, "unrecognized character %q", r)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') ||
		(r >= utf8.RuneSelf && unicode.IsLetter(r))
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func (l *Lexer) lexIdentOrKeyword(start, start16 int) *token.Token {
	for !l.atEnd() && isIdentCont(l.mustPeek()) {
		l.advance()
	}
	text := l.src[start:l.pos]
	if kw, ok := token.Keywords[text]; ok {
		return l.emit(kw, start, l.pos, start16, l.pos16)
	}
	return l.emit(token.Identifier, start, l.pos, start16, l.pos16)
}

func (l *Lexer) lexNumber(start, start16 int) (*token.Token, error) {
	isFloat := false
	for !l.atEnd() && isDigit(l.mustPeek()) {
		l.advance()
	}
	if !l.atEnd() && l.mustPeek() == '.' {
		isFloat = true
		l.advance()
		for !l.atEnd() && isDigit(l.mustPeek()) {
			l.advance()
		}
	}
	if !l.atEnd() && (l.mustPeek() == 'e' || l.mustPeek() == 'E') {
		save, save16 := l.pos, l.pos16
		l.advance()
		if !l.atEnd() && (l.mustPeek() == '+' || l.mustPeek() == '-') {
			l.advance()
		}
		if l.atEnd() || !isDigit(l.mustPeek()) {
			// Not actually an exponent; back out.
			l.pos, l.pos16 = save, save16
		} else {
			isFloat = true
			for !l.atEnd() && isDigit(l.mustPeek()) {
				l.advance()
			}
		}
	}
	kind := token.IntLiteral
	if isFloat {
		kind = token.FloatLiteral
	}
	return l.emit(kind, start, l.pos, start16, l.pos16), nil
}

func (l *Lexer) lexString(start, start16 int) (*token.Token, error) {
	l.advance() // opening quote
	var text strings.Builder
	for {
		if l.atEnd() {
			return nil, l.stream.Raise(term.LexError, "string not terminated")
		}
		r := l.mustPeek()
		if r == '"' {
			l.advance()
			break
		}
		if r == '\n' {
			return nil, l.stream.Raise(term.LexError, "string not terminated")
		}
		if r == '\\' {
			l.advance()
			if l.atEnd() {
				return nil, l.stream.Raise(term.LexError, "string not terminated")
			}
			esc := l.advance()
			switch esc {
			case '"':
				text.WriteByte('"')
			case '\\':
				text.WriteByte('\\')
			case 'n':
				text.WriteByte('\n')
			case 't':
				text.WriteByte('\t')
			case 'r':
				text.WriteByte('\r')
			case '0':
				text.WriteByte(0)
			default:
				return nil, l.stream.Raisef(term.LexError, "invalid escape sequence \\%c", esc)
			}
			continue
		}
		l.advance()
		text.WriteRune(r)
	}
	tok := l.emit(token.StringLiteral, start, l.pos, start16, l.pos16)
	tok.Text = text.String() // unescaped value, not the raw source slice
	return tok, nil
}

// utf16Size reports the number of UTF-16 code units s would occupy. It is
// unexported and not called by the lexer, which tracks UTF-16 offsets rune
// by rune while scanning.
func utf16Size(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}
