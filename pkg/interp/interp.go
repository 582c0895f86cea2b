// Package interp implements the tree-walking interpreter (C8): expression
// and statement evaluation against a symbol-table scope chain and a
// function/method registry, copy-on-write value mutation, and the
// break/next/return control-flow signals that unwind loop bodies and the
// top-level interpreter block. Grounded on the teacher's eval package shape
// (a small struct threaded through a recursive evaluator) generalized from
// elvish's pipeline/command evaluation to expression-tree evaluation.
package interp

import (
	"io"
	"os"

	"eidos.dev/eidos/pkg/ast"
	"eidos.dev/eidos/pkg/intern"
	"eidos.dev/eidos/pkg/registry"
	"eidos.dev/eidos/pkg/symtab"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

// Interp is one interpreter instance: a values pool and names interner
// shared with the front end that produced the AST it walks, a variables
// scope to evaluate against, a function map, the diagnostic stream, and an
// opaque host context that delegates can fetch through HostContext.
// Fields are unexported and exposed through identically-capitalized
// methods, so Interp satisfies registry.ScopeContext and
// registry.OutputContext by its own method set rather than by field access.
type Interp struct {
	names     *intern.Table
	values    *value.Pool
	functions *registry.Map
	stream    *term.Stream
	scope     *symtab.Scope
	hostCtx   any
	out       io.Writer
}

// New builds an Interp over scope, evaluating against functions and
// reporting through stream. Delegate function/method implementations
// receive the Interp itself as their context; hostCtx is stored opaquely
// and returned by HostContext, and is never interpreted by this package.
func New(names *intern.Table, values *value.Pool, scope *symtab.Scope, functions *registry.Map, stream *term.Stream, hostCtx any) *Interp {
	return &Interp{
		names:     names,
		values:    values,
		functions: functions,
		stream:    stream,
		scope:     scope,
		hostCtx:   hostCtx,
	}
}

// CurrentScope, Names and Stream satisfy registry.ScopeContext, so
// introspection built-ins (exists, rm) that type-assert ctx against it see
// this interpreter's live scope chain.
func (ip *Interp) CurrentScope() *symtab.Scope { return ip.scope }
func (ip *Interp) Names() *intern.Table        { return ip.names }
func (ip *Interp) Stream() *term.Stream        { return ip.stream }

// Stdout satisfies registry.OutputContext for print/cat, defaulting to
// os.Stdout until SetStdout redirects it (a host embedding the interpreter
// in a test harness wants output captured, not written to the process's
// real stdout).
func (ip *Interp) Stdout() io.Writer {
	if ip.out == nil {
		return os.Stdout
	}
	return ip.out
}

// SetStdout redirects print/cat output.
func (ip *Interp) SetStdout(w io.Writer) { ip.out = w }

// HostContext returns the opaque host pointer given to New. Method and
// function implementations reach it by asserting their ctx (this Interp)
// to an interface with this method.
func (ip *Interp) HostContext() any { return ip.hostCtx }

// EvaluateInterpreterBlock walks block (an ast.Block produced by
// ParseInterpreterBlock) statement by statement, returning the value of the
// last expression-statement, or NullValue if printLast is false, the block
// holds no expression-statement, or the last value is invisible. A return statement anywhere short-circuits the whole
// block and supplies its expression as the result: this core has no call
// stack of interpreter frames across user functions (spec §4.6's state
// machine), so "the current interpreter block" that a bare return unwinds
// is always this top-level block (the spec's own open question on
// return-outside-a-function, resolved here since there is no such context
// to begin with).
func (ip *Interp) EvaluateInterpreterBlock(block *ast.Node, printLast bool) (*value.Value, error) {
	last, err := ip.execBlock(block)
	if err != nil {
		if sig, ok := asSignal(err); ok {
			switch sig.cause {
			case causeReturn:
				if sig.value == nil {
					return value.NullInvisible, nil
				}
				return sig.value, nil
			default:
				return nil, ip.stream.Raisef(term.InternalInvariant,
					"%s statement outside an enclosing loop", sig.cause)
			}
		}
		return nil, err
	}
	if !printLast || last == nil || last.IsInvisible() {
		return value.NullValue, nil
	}
	return last, nil
}

// execBlock runs every statement in n (an ast.Block) in order, returning
// the value of the last ExprStmt encountered (nil if the block held no
// expression statement, e.g. it was all control-flow). It propagates any
// signal or diagnostic from a nested statement unchanged.
func (ip *Interp) execBlock(n *ast.Node) (*value.Value, error) {
	var last *value.Value
	for _, stmt := range n.Children {
		v, err := ip.execStmt(stmt)
		if err != nil {
			return nil, err
		}
		if stmt.Kind == ast.ExprStmt {
			last = v
		}
	}
	return last, nil
}
