// Package parser implements the parser (C5): tokens to an AST rooted at an
// interpreter block. It is a straightforward recursive-descent, precedence-
// climbing parser; literal tokens are converted to their Value once here and
// cached on the node, rather than re-parsed on every evaluation.
package parser

import (
	"strconv"

	"eidos.dev/eidos/pkg/ast"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/token"
	"eidos.dev/eidos/pkg/value"
)

// Parser consumes a token slice (as produced by pkg/lexer, always ending in
// an EOF token) and builds an AST.
type Parser struct {
	toks   []*token.Token
	pos    int
	nodes  *ast.Pool
	values *value.Pool
	stream *term.Stream

	// FinalSemicolonOptional controls whether the last statement of the
	// top-level block may omit its trailing ';'.
	FinalSemicolonOptional bool
}

// New creates a Parser over toks (which must end in an EOF token).
func New(toks []*token.Token, nodes *ast.Pool, values *value.Pool, stream *term.Stream) *Parser {
	return &Parser{toks: toks, nodes: nodes, values: values, stream: stream}
}

// ParseInterpreterBlock parses the entire token stream as a sequence of
// statements, the AST shape spec calls an "interpreter block".
func (p *Parser) ParseInterpreterBlock() (*ast.Node, error) {
	root := p.nodes.New(ast.Block, p.peek())
	for !p.check(token.EOF) {
		stmt, err := p.statement(true)
		if err != nil {
			return nil, err
		}
		root.Add(stmt)
	}
	return root, nil
}

// --- token stream helpers ---

func (p *Parser) peek() *token.Token { return p.toks[p.pos] }

func (p *Parser) check(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) advance() *token.Token {
	t := p.toks[p.pos]
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) match(k token.Kind) (*token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return nil, false
}

func (p *Parser) expect(k token.Kind) (*token.Token, error) {
	if t, ok := p.match(k); ok {
		return t, nil
	}
	p.stream.PushPosition(p.peek().Span)
	defer p.stream.PopPosition()
	return nil, p.stream.Raisef(term.ParseError,
		"expected %s, got %s %q", k, p.peek().Kind, p.peek().Text)
}

// Range lets token.Span double as a diag.Ranger for PushPosition.

// --- statements ---

// statement parses one statement. topLevel controls whether a missing
// trailing ';' is tolerated when FinalSemicolonOptional is set and this is
// the last statement in the block (the caller checks "last" by retrying
// after EOF, so in practice topLevel only matters for the outermost block).
func (p *Parser) statement(topLevel bool) (*ast.Node, error) {
	switch p.peek().Kind {
	case token.LBrace:
		return p.block()
	case token.If:
		return p.ifStatement()
	case token.While:
		return p.whileStatement()
	case token.Do:
		return p.doWhileStatement()
	case token.For:
		return p.forStatement()
	case token.Next:
		tok := p.advance()
		n := p.nodes.New(ast.NextStmt, tok)
		return n, p.expectStatementEnd(topLevel)
	case token.Break:
		tok := p.advance()
		n := p.nodes.New(ast.BreakStmt, tok)
		return n, p.expectStatementEnd(topLevel)
	case token.Return:
		tok := p.advance()
		n := p.nodes.New(ast.ReturnStmt, tok)
		if !p.check(token.Semicolon) && !p.check(token.EOF) {
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			n.Add(e)
		}
		return n, p.expectStatementEnd(topLevel)
	default:
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		n := p.nodes.New(ast.ExprStmt, e.Root)
		n.Add(e)
		return n, p.expectStatementEnd(topLevel)
	}
}

// expectStatementEnd consumes the statement-terminating ';', unless this is
// the last statement of a top-level block parsed with
// FinalSemicolonOptional set, in which case a following EOF is accepted too.
func (p *Parser) expectStatementEnd(topLevel bool) error {
	if _, ok := p.match(token.Semicolon); ok {
		return nil
	}
	if topLevel && p.FinalSemicolonOptional && p.check(token.EOF) {
		return nil
	}
	_, err := p.expect(token.Semicolon)
	return err
}

func (p *Parser) block() (*ast.Node, error) {
	open, _ := p.expect(token.LBrace)
	n := p.nodes.New(ast.Block, open)
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		stmt, err := p.statement(false)
		if err != nil {
			return nil, err
		}
		n.Add(stmt)
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Parser) ifStatement() (*ast.Node, error) {
	tok := p.advance()
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	then, err := p.statement(false)
	if err != nil {
		return nil, err
	}
	n := p.nodes.New(ast.IfStmt, tok)
	n.Add(cond).Add(then)
	if _, ok := p.match(token.Else); ok {
		els, err := p.statement(false)
		if err != nil {
			return nil, err
		}
		n.Add(els)
	}
	return n, nil
}

func (p *Parser) whileStatement() (*ast.Node, error) {
	tok := p.advance()
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	body, err := p.statement(false)
	if err != nil {
		return nil, err
	}
	n := p.nodes.New(ast.WhileStmt, tok)
	return n.Add(cond).Add(body), nil
}

func (p *Parser) doWhileStatement() (*ast.Node, error) {
	tok := p.advance()
	body, err := p.statement(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.While); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	if err := p.expectStatementEnd(false); err != nil {
		return nil, err
	}
	n := p.nodes.New(ast.DoWhileStmt, tok)
	return n.Add(body).Add(cond), nil
}

func (p *Parser) forStatement() (*ast.Node, error) {
	tok := p.advance()
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	idTok, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}
	id := p.nodes.New(ast.Ident, idTok)
	if _, err := p.expect(token.In); err != nil {
		return nil, err
	}
	iterable, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	body, err := p.statement(false)
	if err != nil {
		return nil, err
	}
	n := p.nodes.New(ast.ForStmt, tok)
	return n.Add(id).Add(iterable).Add(body), nil
}

// --- expressions, precedence climbing tightest (postfix) to loosest
// (assignment): postfix > ^ (right-assoc) > unary (! - +) > * / % > + - >
// : (sequence) > comparisons > & > | > ?: ternary > = (right-assoc).

func (p *Parser) expression() (*ast.Node, error) { return p.assignment() }

func (p *Parser) assignment() (*ast.Node, error) {
	lhs, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if eq, ok := p.match(token.Assign); ok {
		rhs, err := p.assignment()
		if err != nil {
			return nil, err
		}
		n := p.nodes.New(ast.Assign, eq)
		return n.Add(lhs).Add(rhs), nil
	}
	return lhs, nil
}

func (p *Parser) ternary() (*ast.Node, error) {
	cond, err := p.or()
	if err != nil {
		return nil, err
	}
	if q, ok := p.match(token.Question); ok {
		then, err := p.or()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Else); err != nil {
			return nil, err
		}
		els, err := p.ternary()
		if err != nil {
			return nil, err
		}
		n := p.nodes.New(ast.Ternary, q)
		return n.Add(cond).Add(then).Add(els), nil
	}
	return cond, nil
}

func (p *Parser) or() (*ast.Node, error) {
	lhs, err := p.and()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.match(token.Or)
		if !ok {
			return lhs, nil
		}
		rhs, err := p.and()
		if err != nil {
			return nil, err
		}
		n := p.nodes.New(ast.Binary, op)
		lhs = n.Add(lhs).Add(rhs)
	}
}

func (p *Parser) and() (*ast.Node, error) {
	lhs, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.match(token.And)
		if !ok {
			return lhs, nil
		}
		rhs, err := p.comparison()
		if err != nil {
			return nil, err
		}
		n := p.nodes.New(ast.Binary, op)
		lhs = n.Add(lhs).Add(rhs)
	}
}

var comparisonOps = []token.Kind{
	token.Eq, token.NotEq, token.Less, token.LessEq, token.Greater, token.GreaterEq,
}

func (p *Parser) comparison() (*ast.Node, error) {
	lhs, err := p.sequence()
	if err != nil {
		return nil, err
	}
	for _, k := range comparisonOps {
		if op, ok := p.match(k); ok {
			rhs, err := p.sequence()
			if err != nil {
				return nil, err
			}
			n := p.nodes.New(ast.Binary, op)
			lhs = n.Add(lhs).Add(rhs)
		}
	}
	return lhs, nil
}

func (p *Parser) sequence() (*ast.Node, error) {
	lhs, err := p.additive()
	if err != nil {
		return nil, err
	}
	if op, ok := p.match(token.Colon); ok {
		rhs, err := p.additive()
		if err != nil {
			return nil, err
		}
		n := p.nodes.New(ast.Sequence, op)
		return n.Add(lhs).Add(rhs), nil
	}
	return lhs, nil
}

func (p *Parser) additive() (*ast.Node, error) {
	lhs, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op *token.Token
		var ok bool
		if op, ok = p.match(token.Plus); !ok {
			op, ok = p.match(token.Minus)
		}
		if !ok {
			return lhs, nil
		}
		rhs, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		n := p.nodes.New(ast.Binary, op)
		lhs = n.Add(lhs).Add(rhs)
	}
}

func (p *Parser) multiplicative() (*ast.Node, error) {
	lhs, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var op *token.Token
		var ok bool
		if op, ok = p.match(token.Star); !ok {
			if op, ok = p.match(token.Slash); !ok {
				op, ok = p.match(token.Percent)
			}
		}
		if !ok {
			return lhs, nil
		}
		rhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		n := p.nodes.New(ast.Binary, op)
		lhs = n.Add(lhs).Add(rhs)
	}
}

func (p *Parser) unary() (*ast.Node, error) {
	var op *token.Token
	var ok bool
	if op, ok = p.match(token.Bang); !ok {
		if op, ok = p.match(token.Minus); !ok {
			op, ok = p.match(token.Plus)
		}
	}
	if ok {
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		n := p.nodes.New(ast.Unary, op)
		return n.Add(operand), nil
	}
	return p.power()
}

func (p *Parser) power() (*ast.Node, error) {
	base, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if op, ok := p.match(token.Caret); ok {
		exp, err := p.unary() // right-associative
		if err != nil {
			return nil, err
		}
		n := p.nodes.New(ast.Binary, op)
		return n.Add(base).Add(exp), nil
	}
	return base, nil
}

func (p *Parser) postfix() (*ast.Node, error) {
	n, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(token.LBracket):
			br := p.advance()
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBracket); err != nil {
				return nil, err
			}
			sub := p.nodes.New(ast.Subscript, br)
			n = sub.Add(n).Add(idx)
		case p.check(token.Dot):
			p.advance()
			name, err := p.expect(token.Identifier)
			if err != nil {
				return nil, err
			}
			member := p.nodes.New(ast.Member, name)
			n = member.Add(n)
		case p.check(token.LParen) && (n.Kind == ast.Ident || n.Kind == ast.Member):
			p.advance() // '('
			var call *ast.Node
			if n.Kind == ast.Member {
				call = p.nodes.New(ast.MethodCall, n.Root)
				call.Add(n.Children[0])
			} else {
				call = p.nodes.New(ast.Call, n.Root)
			}
			for !p.check(token.RParen) {
				arg, err := p.argument()
				if err != nil {
					return nil, err
				}
				call.Add(arg)
				if _, ok := p.match(token.Comma); !ok {
					break
				}
			}
			if _, err := p.expect(token.RParen); err != nil {
				return nil, err
			}
			n = call
		default:
			return n, nil
		}
	}
}

// argument parses one call argument, which may be positional or name=expr.
func (p *Parser) argument() (*ast.Node, error) {
	if p.check(token.Identifier) && p.toks[p.pos+1].Kind == token.Assign {
		name := p.advance()
		p.advance() // '='
		val, err := p.expression()
		if err != nil {
			return nil, err
		}
		n := p.nodes.New(ast.NamedArg, name)
		return n.Add(val), nil
	}
	return p.expression()
}

func (p *Parser) primary() (*ast.Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLiteral:
		p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			p.stream.PushPosition(tok.Span)
			defer p.stream.PopPosition()
			return nil, p.stream.Raisef(term.LexError, "invalid integer literal %q", tok.Text)
		}
		node := p.nodes.New(ast.Literal, tok)
		node.Const = value.NewInt(p.values, []int64{n})
		return node, nil
	case token.FloatLiteral:
		p.advance()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			p.stream.PushPosition(tok.Span)
			defer p.stream.PopPosition()
			return nil, p.stream.Raisef(term.LexError, "invalid float literal %q", tok.Text)
		}
		node := p.nodes.New(ast.Literal, tok)
		node.Const = value.NewFloat(p.values, []float64{f})
		return node, nil
	case token.StringLiteral:
		p.advance()
		node := p.nodes.New(ast.Literal, tok)
		node.Const = value.NewString(p.values, []string{tok.Text})
		return node, nil
	case token.Identifier:
		p.advance()
		return p.nodes.New(ast.Ident, tok), nil
	case token.LParen:
		p.advance()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return e, nil
	default:
		p.stream.PushPosition(tok.Span)
		defer p.stream.PopPosition()
		return nil, p.stream.Raisef(term.ParseError, "unexpected token %s %q", tok.Kind, tok.Text)
	}
}
