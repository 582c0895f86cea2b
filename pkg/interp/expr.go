package interp

import (
	"eidos.dev/eidos/pkg/ast"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/token"
	"eidos.dev/eidos/pkg/value"
)

// eval evaluates an expression node to a value. Literal and Ident always
// hand back a fresh, exclusively-owned copy rather than the cached constant
// or the scope's live binding directly: a Literal node is re-evaluated on
// every pass through a loop body, and an Ident's scope slot may be mutated
// in place by a later subscript assignment, so handing out the live pointer
// either place would let one alias's mutation leak into another's. This is
// the copy-on-read half of the interpreter's copy-on-write discipline; the
// other half (copy-on-write into a symbol table) lives in pkg/symtab. Two
// reads are sanctioned exceptions that take the live pointer directly
// instead: assignSubscript's own read of its target identifier, and
// evalAssignRHS's read of a bare identifier on the right of an assignment,
// which deliberately leaves two scope slots aliasing the same value and
// leans on pkg/symtab's refcount check to split them apart on first write.
func (ip *Interp) eval(n *ast.Node) (*value.Value, error) {
	switch n.Kind {
	case ast.Literal:
		return n.Const.CopyValues(ip.values), nil
	case ast.Ident:
		return ip.evalIdent(n)
	case ast.Unary:
		return ip.evalUnary(n)
	case ast.Binary:
		return ip.evalBinary(n)
	case ast.Sequence:
		return ip.evalSequence(n)
	case ast.Ternary:
		return ip.evalTernary(n)
	case ast.Assign:
		return ip.evalAssign(n)
	case ast.Subscript:
		return ip.evalSubscript(n)
	case ast.Member:
		return ip.evalMember(n)
	case ast.Call:
		return ip.evalCall(n)
	case ast.MethodCall:
		return ip.evalMethodCall(n)
	default:
		return nil, ip.stream.Raisef(term.InternalInvariant, "eval: unhandled node kind %v", n.Kind)
	}
}

func (ip *Interp) evalIdent(n *ast.Node) (*value.Value, error) {
	name := n.Root.Text
	id, ok := ip.names.Lookup(name)
	if !ok {
		return nil, ip.stream.Raisef(term.IdentifierUndefined, "undefined identifier %q", name)
	}
	v, err := ip.scope.GetValue(id, ip.names, ip.stream)
	if err != nil {
		return nil, err
	}
	return v.CopyValues(ip.values), nil
}

// evalAssignRHS evaluates an assignment's right-hand side. A bare
// identifier is read live through the scope chain rather than through
// eval's always-copy Ident path: "y = x" does not need its own storage
// until one side is actually mutated, so the two bindings are left
// aliasing the same *value.Value and pkg/symtab's copyIfShared is the one
// that decides, refcount in hand, whether to keep sharing it or split it
// into a private copy. Every other right-hand side shape -- a literal, an
// arithmetic expression, a call result -- already comes back as a fresh,
// exclusively-owned value from eval, so it goes through unchanged.
func (ip *Interp) evalAssignRHS(n *ast.Node) (*value.Value, error) {
	if n.Kind != ast.Ident {
		return ip.eval(n)
	}
	name := n.Root.Text
	id, ok := ip.names.Lookup(name)
	if !ok {
		return nil, ip.stream.Raisef(term.IdentifierUndefined, "undefined identifier %q", name)
	}
	return ip.scope.GetValue(id, ip.names, ip.stream)
}

func (ip *Interp) evalSequence(n *ast.Node) (*value.Value, error) {
	ip.stream.PushPosition(n)
	defer ip.stream.PopPosition()

	from, err := ip.eval(n.Children[0])
	if err != nil {
		return nil, err
	}
	to, err := ip.eval(n.Children[1])
	if err != nil {
		return nil, err
	}
	a, err := sequenceEndpoint(from)
	if err != nil {
		return nil, ip.stream.Raisef(term.TypeError, "sequence endpoint: %v", err)
	}
	b, err := sequenceEndpoint(to)
	if err != nil {
		return nil, ip.stream.Raisef(term.TypeError, "sequence endpoint: %v", err)
	}
	var out []int64
	if a <= b {
		for x := a; x <= b; x++ {
			out = append(out, x)
		}
	} else {
		for x := a; x >= b; x-- {
			out = append(out, x)
		}
	}
	return value.NewInt(ip.values, out), nil
}

// sequenceEndpoint coerces a sequence endpoint to a finite integer. Both
// NaN and +/-Inf fail as TypeError, per spec §9's open question resolution
// ("treat as TypeError").
func sequenceEndpoint(v *value.Value) (int64, error) {
	if v.Count() != 1 {
		return 0, errLengthOne(v.Count())
	}
	if v.Type() == value.Float {
		f, _ := v.AsFloatAt(0)
		if isNonFinite(f) {
			return 0, errNonFinite()
		}
	}
	return v.AsIntAt(0)
}

func (ip *Interp) evalTernary(n *ast.Node) (*value.Value, error) {
	cond, err := ip.eval(n.Children[0])
	if err != nil {
		return nil, err
	}
	b, err := ip.conditionTrue(cond)
	if err != nil {
		return nil, err
	}
	if b {
		return ip.eval(n.Children[1])
	}
	return ip.eval(n.Children[2])
}

func (ip *Interp) evalUnary(n *ast.Node) (*value.Value, error) {
	operand, err := ip.eval(n.Children[0])
	if err != nil {
		return nil, err
	}
	ip.stream.PushPosition(n)
	defer ip.stream.PopPosition()

	switch n.Root.Kind {
	case token.Bang:
		out := make([]bool, operand.Count())
		for i := range out {
			b, err := operand.AsLogicalAt(i)
			if err != nil {
				return nil, ip.stream.Raisef(term.TypeError, "!: %v", err)
			}
			out[i] = !b
		}
		return value.NewLogical(ip.values, out), nil
	case token.Minus, token.Plus:
		kind := operand.Type()
		if kind == value.Logical {
			kind = value.Int
		}
		if kind != value.Int && kind != value.Float {
			return nil, ip.stream.Raisef(term.TypeError, "unary %s: operand must be numeric, got %s", n.Root.Text, operand.Type())
		}
		negate := n.Root.Kind == token.Minus
		if kind == value.Int {
			out := make([]int64, operand.Count())
			for i := range out {
				x, _ := operand.AsIntAt(i)
				if negate {
					x = -x
				}
				out[i] = x
			}
			return value.NewInt(ip.values, out), nil
		}
		out := make([]float64, operand.Count())
		for i := range out {
			x, _ := operand.AsFloatAt(i)
			if negate {
				x = -x
			}
			out[i] = x
		}
		return value.NewFloat(ip.values, out), nil
	default:
		return nil, ip.stream.Raisef(term.InternalInvariant, "unary: unhandled operator %s", n.Root.Kind)
	}
}

func (ip *Interp) evalAssign(n *ast.Node) (*value.Value, error) {
	target, rhsNode := n.Children[0], n.Children[1]
	rhs, err := ip.evalAssignRHS(rhsNode)
	if err != nil {
		return nil, err
	}
	switch target.Kind {
	case ast.Ident:
		id := ip.names.Intern(target.Root.Text)
		if err := ip.scope.SetValueForSymbol(id, rhs, ip.values, ip.names, ip.stream); err != nil {
			return nil, err
		}
	case ast.Subscript:
		if err := ip.assignSubscript(target, rhs); err != nil {
			return nil, err
		}
	case ast.Member:
		if err := ip.assignMember(target, rhs); err != nil {
			return nil, err
		}
	default:
		return nil, ip.stream.Raisef(term.InvalidAssignmentTarget,
			"assignment target must be an identifier, a subscript of one, or an object member")
	}
	// Spec §4.6: "Assignment returns an invisible copy of the value" --
	// decoupled from whatever rhs ended up aliased into (scope slot or
	// object instance), so a caller that goes on to mutate the returned
	// expression value never observes it through the assignment target
	// or vice versa.
	return rhs.CopyValues(ip.values).Invert(), nil
}
