package interp

import (
	"testing"

	"eidos.dev/eidos/pkg/ast"
	"eidos.dev/eidos/pkg/intern"
	"eidos.dev/eidos/pkg/lexer"
	"eidos.dev/eidos/pkg/parser"
	"eidos.dev/eidos/pkg/registry"
	"eidos.dev/eidos/pkg/symtab"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/token"
	"eidos.dev/eidos/pkg/value"
)

// harness bundles one script evaluation's process-wide-style state,
// freshly constructed per test so tests never share a pool or scope.
type harness struct {
	t      *testing.T
	names  *intern.Table
	values *value.Pool
	stream *term.Stream
	ip     *Interp
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	names := intern.New()
	values := value.NewPool(0)
	stream := term.NewStream("test", "", term.Throws)
	root := symtab.NewIntrinsicScope(names, values)
	vars := symtab.NewChild(symtab.Variables, root)
	return &harness{
		t:      t,
		names:  names,
		values: values,
		stream: stream,
		ip:     New(names, values, vars, registry.Builtins(), stream, nil),
	}
}

func (h *harness) run(src string) (*value.Value, error) {
	h.t.Helper()
	h.stream.Out = nil
	toks, err := lexer.New(src, token.NewPool(0), h.stream).Tokenize()
	if err != nil {
		return nil, err
	}
	nodes := ast.NewPool(0)
	p := parser.New(toks, nodes, h.values, h.stream)
	block, err := p.ParseInterpreterBlock()
	if err != nil {
		return nil, err
	}
	return h.ip.EvaluateInterpreterBlock(block, true)
}

func (h *harness) mustRun(src string) *value.Value {
	h.t.Helper()
	v, err := h.run(src)
	if err != nil {
		h.t.Fatalf("run(%q): %v", src, err)
	}
	return v
}

func diagKind(t *testing.T, err error) term.Kind {
	t.Helper()
	d, ok := err.(*term.Diagnostic)
	if !ok {
		t.Fatalf("error %v is not a *term.Diagnostic", err)
	}
	return d.Kind
}

// Scenario 1: x = 1:5; x[2] = 99; x -> integer (1, 2, 99, 4, 5).
func TestSubscriptAssignmentMutatesInPlace(t *testing.T) {
	h := newHarness(t)
	v := h.mustRun("x = 1:5; x[2] = 99; x;")
	want := []int64{1, 2, 99, 4, 5}
	if v.Count() != len(want) {
		t.Fatalf("length = %d, want %d", v.Count(), len(want))
	}
	for i, w := range want {
		n, _ := v.AsIntAt(i)
		if n != w {
			t.Errorf("x[%d] = %d, want %d", i, n, w)
		}
	}
}

// Scenario 2: x = 1:3; y = x; x[0] = 0; c(x[0], y[0]) -> integer (0, 1).
func TestCopyOnWriteOnAlias(t *testing.T) {
	h := newHarness(t)
	v := h.mustRun("x = 1:3; y = x; x[0] = 0; c(x[0], y[0]);")
	a, _ := v.AsIntAt(0)
	b, _ := v.AsIntAt(1)
	if a != 0 || b != 1 {
		t.Fatalf("c(x[0], y[0]) = (%d, %d), want (0, 1)", a, b)
	}
}

// Scenario 3: PI = 4 -> RedefinitionOfConstant, PI unchanged.
func TestRedefiningIntrinsicConstantFails(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("PI = 4;")
	if err == nil {
		t.Fatalf("expected RedefinitionOfConstant assigning to PI")
	}
	if k := diagKind(t, err); k != term.RedefinitionOfConstant {
		t.Errorf("Kind = %v, want RedefinitionOfConstant", k)
	}
	pi := h.mustRun("PI;")
	f, _ := pi.AsFloatAt(0)
	if f < 3.14159 || f > 3.14160 {
		t.Errorf("PI = %v, want approximately 3.14159", f)
	}
}

// Scenario 4: a = c(1.0, 2.0); b = c(10.0, 20.0, 30.0); a + b -> LengthMismatch.
func TestBroadcastLengthMismatch(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("a = c(1.0, 2.0); b = c(10.0, 20.0, 30.0); a + b;")
	if err == nil {
		t.Fatalf("expected LengthMismatch for incompatible vector lengths")
	}
	if k := diagKind(t, err); k != term.LengthMismatch {
		t.Errorf("Kind = %v, want LengthMismatch", k)
	}
}

// Scenario 5: for (i in 1:3) s = (exists(s) ? s else 0) + i; s -> integer 6.
func TestForLoopAccumulatorWithExists(t *testing.T) {
	h := newHarness(t)
	v := h.mustRun("for (i in 1:3) s = (exists(s) ? s else 0) + i; s;")
	n, err := v.AsIntAt(0)
	if err != nil {
		t.Fatalf("AsIntAt: %v", err)
	}
	if n != 6 {
		t.Errorf("s = %d, want 6", n)
	}
}

// Scenario 6: parsing "x = 1 + ;" fails during parse, not evaluation.
func TestMalformedExpressionIsParseError(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("x = 1 + ;")
	if err == nil {
		t.Fatalf("expected a ParseError for a dangling operator")
	}
	if k := diagKind(t, err); k != term.ParseError {
		t.Errorf("Kind = %v, want ParseError", k)
	}
}

func TestArithmeticPromotion(t *testing.T) {
	h := newHarness(t)
	v := h.mustRun("1 + 2.5;")
	if v.Type() != value.Float {
		t.Fatalf("1 + 2.5 kind = %v, want Float", v.Type())
	}
	f, _ := v.AsFloatAt(0)
	if f != 3.5 {
		t.Errorf("1 + 2.5 = %v, want 3.5", f)
	}
}

func TestDivisionAndPowerAlwaysPromoteToFloat(t *testing.T) {
	h := newHarness(t)
	div := h.mustRun("4 / 2;")
	if div.Type() != value.Float {
		t.Errorf("4 / 2 kind = %v, want Float", div.Type())
	}
	pow := h.mustRun("2 ^ 3;")
	if pow.Type() != value.Float {
		t.Errorf("2 ^ 3 kind = %v, want Float", pow.Type())
	}
	f, _ := pow.AsFloatAt(0)
	if f != 8 {
		t.Errorf("2 ^ 3 = %v, want 8", f)
	}
}

func TestUndefinedIdentifierFails(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("nosuch;")
	if err == nil {
		t.Fatalf("expected IdentifierUndefined")
	}
	if k := diagKind(t, err); k != term.IdentifierUndefined {
		t.Errorf("Kind = %v, want IdentifierUndefined", k)
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("1 + 1 = 2;")
	if err == nil {
		t.Fatalf("expected InvalidAssignmentTarget")
	}
	if k := diagKind(t, err); k != term.InvalidAssignmentTarget {
		t.Errorf("Kind = %v, want InvalidAssignmentTarget", k)
	}
}

func TestWhileLoopAndBreak(t *testing.T) {
	h := newHarness(t)
	v := h.mustRun("i = 0; while (i < 10) { i = i + 1; if (i == 3) break; } i;")
	n, _ := v.AsIntAt(0)
	if n != 3 {
		t.Errorf("i = %d, want 3", n)
	}
}

func TestDoWhileRunsBodyOnce(t *testing.T) {
	h := newHarness(t)
	v := h.mustRun("i = 0; do i = i + 1; while (i < 0); i;")
	n, _ := v.AsIntAt(0)
	if n != 1 {
		t.Errorf("i = %d, want 1", n)
	}
}

func TestNextSkipsRestOfLoopBody(t *testing.T) {
	h := newHarness(t)
	v := h.mustRun("total = 0; for (i in 1:5) { if (i % 2 == 0) next; total = total + i; } total;")
	n, _ := v.AsIntAt(0)
	if n != 9 {
		t.Errorf("total = %d, want 9 (1+3+5)", n)
	}
}

func TestReturnShortCircuitsBlock(t *testing.T) {
	h := newHarness(t)
	v := h.mustRun("x = 1; return 42; x = 2;")
	n, _ := v.AsIntAt(0)
	if n != 42 {
		t.Errorf("result = %d, want 42", n)
	}
}

func TestAssignmentResultIsInvisible(t *testing.T) {
	h := newHarness(t)
	toks, err := lexer.New("x = 5;", token.NewPool(0), h.stream).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	block, err := parser.New(toks, ast.NewPool(0), h.values, h.stream).ParseInterpreterBlock()
	if err != nil {
		t.Fatalf("ParseInterpreterBlock: %v", err)
	}
	last, err := h.ip.execBlock(block)
	if err != nil {
		t.Fatalf("execBlock: %v", err)
	}
	if !last.IsInvisible() {
		t.Errorf("top-level assignment result should be invisible")
	}
	v := h.mustRun("x = 5;")
	if v != value.NullValue {
		t.Fatalf("printed result of an invisible last statement should be NullValue")
	}
}

func TestLogicalOperatorsAreElementwiseNotShortCircuit(t *testing.T) {
	h := newHarness(t)
	v := h.mustRun("c(T, F) & c(T, T);")
	a, _ := v.AsLogicalAt(0)
	b, _ := v.AsLogicalAt(1)
	if a != true || b != false {
		t.Errorf("c(T,F) & c(T,T) = (%v, %v), want (true, false)", a, b)
	}
}

func TestSubscriptOutOfRange(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("x = 1:3; x[5];")
	if err == nil {
		t.Fatalf("expected IndexOutOfRange")
	}
	if k := diagKind(t, err); k != term.IndexOutOfRange {
		t.Errorf("Kind = %v, want IndexOutOfRange", k)
	}
}
