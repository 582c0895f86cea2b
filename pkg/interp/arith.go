package interp

import (
	"fmt"
	"math"

	"eidos.dev/eidos/pkg/ast"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/token"
	"eidos.dev/eidos/pkg/value"
)

func isNonFinite(f float64) bool { return math.IsNaN(f) || math.IsInf(f, 0) }

func errLengthOne(n int) error { return fmt.Errorf("sequence endpoint must be a singleton, got length %d", n) }

func errNonFinite() error { return fmt.Errorf("sequence endpoint must be finite") }

// broadcastLen reports the result length of a binary op over operands of
// length m and n, per spec §8's broadcast property: defined iff m==n or
// min(m,n)==1, result length max(m,n).
func broadcastLen(m, n int) (int, bool) {
	if m == n {
		return m, true
	}
	min := m
	if n < min {
		min = n
	}
	if min != 1 {
		return 0, false
	}
	if m > n {
		return m, true
	}
	return n, true
}

func (ip *Interp) evalBinary(n *ast.Node) (*value.Value, error) {
	lhs, err := ip.eval(n.Children[0])
	if err != nil {
		return nil, err
	}
	rhs, err := ip.eval(n.Children[1])
	if err != nil {
		return nil, err
	}
	ip.stream.PushPosition(n)
	defer ip.stream.PopPosition()

	switch n.Root.Kind {
	case token.Plus, token.Minus, token.Star, token.Slash, token.Percent, token.Caret:
		return ip.evalArithmetic(n.Root, lhs, rhs)
	case token.Eq, token.NotEq, token.Less, token.LessEq, token.Greater, token.GreaterEq:
		return ip.evalComparison(n.Root, lhs, rhs)
	case token.And, token.Or:
		return ip.evalLogical(n.Root, lhs, rhs)
	default:
		return nil, ip.stream.Raisef(term.InternalInvariant, "binary: unhandled operator %s", n.Root.Kind)
	}
}

// evalArithmetic type-promotes per the logical<=integer<=float lattice and
// operates element-wise with broadcasting (spec §4.6). Division and power
// always promote their result to float regardless of operand kinds,
// following the scripting-language norm elsewhere in the Eidos/R family:
// integer division and integer exponentiation both have surprising
// truncation/overflow behavior that a numeric scripting core should not
// surface by default.
func (ip *Interp) evalArithmetic(op *token.Token, lhs, rhs *value.Value) (*value.Value, error) {
	n, ok := broadcastLen(lhs.Count(), rhs.Count())
	if !ok {
		return nil, ip.stream.Raisef(term.LengthMismatch,
			"%s: operand lengths %d and %d are not broadcast-compatible", op.Text, lhs.Count(), rhs.Count())
	}
	target, err := value.Promote(lhs.Type(), rhs.Type())
	if err != nil {
		return nil, ip.stream.Raisef(term.TypeError, "%s: %v", op.Text, err)
	}
	if target == value.String || target == value.Object {
		return nil, ip.stream.Raisef(term.TypeError,
			"%s: incompatible operand types %s and %s", op.Text, lhs.Type(), rhs.Type())
	}
	if op.Kind == token.Slash || op.Kind == token.Caret {
		target = value.Float
	}

	if target == value.Int {
		out := make([]int64, n)
		for i := range out {
			a, _ := lhs.AsIntAt(i % lhs.Count())
			b, _ := rhs.AsIntAt(i % rhs.Count())
			v, err := applyIntOp(op.Kind, a, b)
			if err != nil {
				return nil, ip.stream.Raisef(term.TypeError, "%s: %v", op.Text, err)
			}
			out[i] = v
		}
		return value.NewInt(ip.values, out), nil
	}
	out := make([]float64, n)
	for i := range out {
		a, _ := lhs.AsFloatAt(i % lhs.Count())
		b, _ := rhs.AsFloatAt(i % rhs.Count())
		out[i] = applyFloatOp(op.Kind, a, b)
	}
	return value.NewFloat(ip.values, out), nil
}

func applyIntOp(k token.Kind, a, b int64) (int64, error) {
	switch k {
	case token.Plus:
		return a + b, nil
	case token.Minus:
		return a - b, nil
	case token.Star:
		return a * b, nil
	case token.Percent:
		if b == 0 {
			return 0, fmt.Errorf("integer modulo by zero")
		}
		return a % b, nil
	default:
		return 0, fmt.Errorf("unhandled integer operator %s", k)
	}
}

func applyFloatOp(k token.Kind, a, b float64) float64 {
	switch k {
	case token.Plus:
		return a + b
	case token.Minus:
		return a - b
	case token.Star:
		return a * b
	case token.Slash:
		return a / b
	case token.Percent:
		return math.Mod(a, b)
	case token.Caret:
		return math.Pow(a, b)
	default:
		return math.NaN()
	}
}

func (ip *Interp) evalComparison(op *token.Token, lhs, rhs *value.Value) (*value.Value, error) {
	n, ok := broadcastLen(lhs.Count(), rhs.Count())
	if !ok {
		return nil, ip.stream.Raisef(term.LengthMismatch,
			"%s: operand lengths %d and %d are not broadcast-compatible", op.Text, lhs.Count(), rhs.Count())
	}
	out := make([]bool, n)
	for i := range out {
		c, err := lhs.Compare(i%lhs.Count(), rhs, i%rhs.Count())
		if err != nil {
			return nil, ip.stream.Raisef(term.TypeError, "%s: %v", op.Text, err)
		}
		out[i] = compareResult(op.Kind, c)
	}
	return value.NewLogical(ip.values, out), nil
}

func compareResult(k token.Kind, c int) bool {
	switch k {
	case token.Eq:
		return c == 0
	case token.NotEq:
		return c != 0
	case token.Less:
		return c < 0
	case token.LessEq:
		return c <= 0
	case token.Greater:
		return c > 0
	case token.GreaterEq:
		return c >= 0
	default:
		return false
	}
}

// evalLogical implements vectorized & and |: element-wise, not
// short-circuit. The tokenizer has no && or || in its alphabet (spec
// §4.3's operator list), so there is no short-circuit form to support.
func (ip *Interp) evalLogical(op *token.Token, lhs, rhs *value.Value) (*value.Value, error) {
	n, ok := broadcastLen(lhs.Count(), rhs.Count())
	if !ok {
		return nil, ip.stream.Raisef(term.LengthMismatch,
			"%s: operand lengths %d and %d are not broadcast-compatible", op.Text, lhs.Count(), rhs.Count())
	}
	out := make([]bool, n)
	for i := range out {
		a, err := lhs.AsLogicalAt(i % lhs.Count())
		if err != nil {
			return nil, ip.stream.Raisef(term.TypeError, "%s: %v", op.Text, err)
		}
		b, err := rhs.AsLogicalAt(i % rhs.Count())
		if err != nil {
			return nil, ip.stream.Raisef(term.TypeError, "%s: %v", op.Text, err)
		}
		if op.Kind == token.And {
			out[i] = a && b
		} else {
			out[i] = a || b
		}
	}
	return value.NewLogical(ip.values, out), nil
}
