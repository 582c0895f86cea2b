// Package token implements the token pool (part of C3): the lexer's output
// alphabet and the pooled nodes that carry a source span in both byte and
// UTF-16 offsets, so that downstream consumers needing either encoding never
// have to recompute it from the other.
package token

import (
	"fmt"

	"eidos.dev/eidos/pkg/diag"
)

// Kind enumerates every token the lexer can produce.
type Kind uint8

const (
	EOF Kind = iota
	Error

	Identifier
	IntLiteral
	FloatLiteral
	StringLiteral

	// Operators.
	Assign      // =
	Eq          // ==
	NotEq       // !=
	Less        // <
	LessEq      // <=
	Greater     // >
	GreaterEq   // >=
	Plus        // +
	Minus       // -
	Star        // *
	Slash       // /
	Percent     // %
	Caret       // ^
	Bang        // !
	And         // &
	Or          // |
	Colon       // :
	Dot         // .
	LBracket    // [
	RBracket    // ]
	LParen      // (
	RParen      // )
	LBrace      // {
	RBrace      // }
	Comma       // ,
	Semicolon   // ;
	Question    // ?

	// Keywords.
	If
	Else
	Do
	While
	For
	In
	Next
	Break
	Return
	Function
)

var names = map[Kind]string{
	EOF: "EOF", Error: "error",
	Identifier: "identifier", IntLiteral: "integer literal",
	FloatLiteral: "float literal", StringLiteral: "string literal",
	Assign: "=", Eq: "==", NotEq: "!=",
	Less: "<", LessEq: "<=", Greater: ">", GreaterEq: ">=",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Caret: "^",
	Bang: "!", And: "&", Or: "|", Colon: ":", Dot: ".",
	LBracket: "[", RBracket: "]", LParen: "(", RParen: ")",
	LBrace: "{", RBrace: "}", Comma: ",", Semicolon: ";", Question: "?",
	If: "if", Else: "else", Do: "do", While: "while", For: "for", In: "in",
	Next: "next", Break: "break", Return: "return", Function: "function",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Keywords maps a reserved word to its Kind. Anything not in this map lexes
// as Identifier.
var Keywords = map[string]Kind{
	"if": If, "else": Else, "do": Do, "while": While, "for": For, "in": In,
	"next": Next, "break": Break, "return": Return, "function": Function,
}

// Span locates a token in the source, in both offset encodings: Start/End
// are byte offsets, Start16/End16 are UTF-16 code-unit offsets. The lexer
// computes both while scanning; neither is ever derived from the other on
// demand (spec's two-encoding requirement exists because embedding UIs that
// operate on UTF-16 text need UTF-16 positions while string-based
// highlighters need byte positions).
type Span struct {
	Start, End     int
	Start16, End16 int
}

// Range returns the byte span as a diag.Ranging, so a Span (or a *Token,
// via its embedded Span) can be pushed directly onto a term.Stream's
// position stack.
func (s Span) Range() diag.Ranging { return diag.Ranging{From: s.Start, To: s.End} }

// Token is one lexical unit: a kind, its text (the source text it spans,
// except that a string literal carries its unescaped contents), and its
// position. Tokens are drawn from a Pool and are valid only for the
// lifetime of the script that produced them.
type Token struct {
	Kind Kind
	Text string
	Span Span

	nextFree *Token // free-list link; only meaningful while unallocated
}

// Range returns the token's span as a diag.Ranging.
func (t *Token) Range() diag.Ranging { return t.Span.Range() }

// Pool is a slab allocator for Token nodes, the same chunked free-list
// design as value.Pool: chunk addresses are stable, so *Token pointers
// handed out remain valid for the pool's lifetime.
type Pool struct {
	chunkSize int
	chunks    [][]Token
	free      *Token
}

// NewPool creates a Pool that grows in chunks of chunkSize tokens. A
// chunkSize of 0 uses a reasonable default.
func NewPool(chunkSize int) *Pool {
	if chunkSize <= 0 {
		chunkSize = 256
	}
	return &Pool{chunkSize: chunkSize}
}

func (p *Pool) grow() {
	chunk := make([]Token, p.chunkSize)
	p.chunks = append(p.chunks, chunk)
	for i := range chunk {
		chunk[i].nextFree = p.free
		p.free = &chunk[i]
	}
}

// New allocates a token from the pool and fills in its fields.
func (p *Pool) New(kind Kind, text string, span Span) *Token {
	if p.free == nil {
		p.grow()
	}
	t := p.free
	p.free = t.nextFree
	t.nextFree = nil
	t.Kind = kind
	t.Text = text
	t.Span = span
	return t
}
