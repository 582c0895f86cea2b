package registry

import (
	"testing"

	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

func newStream() *term.Stream { return term.NewStream("test", "", term.Throws) }

func callBuiltin(t *testing.T, name string, pool *value.Pool, positional []*value.Value, named map[string]*value.Value) (*value.Value, error) {
	t.Helper()
	return Builtins().Call(name, positional, named, pool, nil, newStream())
}

func TestAbsElementwise(t *testing.T) {
	pool := value.NewPool(0)
	v, err := callBuiltin(t, "abs", pool, []*value.Value{value.NewFloat(pool, []float64{-1, 2, -3})}, nil)
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	want := []float64{1, 2, 3}
	for i, w := range want {
		f, _ := v.AsFloatAt(i)
		if f != w {
			t.Errorf("abs()[%d] = %v, want %v", i, f, w)
		}
	}
}

func TestSumMeanSd(t *testing.T) {
	pool := value.NewPool(0)
	x := value.NewFloat(pool, []float64{1, 2, 3, 4})
	sum, err := callBuiltin(t, "sum", pool, []*value.Value{x}, nil)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if f, _ := sum.AsFloatAt(0); f != 10 {
		t.Errorf("sum = %v, want 10", f)
	}
	mean, err := callBuiltin(t, "mean", pool, []*value.Value{x}, nil)
	if err != nil {
		t.Fatalf("mean: %v", err)
	}
	if f, _ := mean.AsFloatAt(0); f != 2.5 {
		t.Errorf("mean = %v, want 2.5", f)
	}
}

func TestConcatenatePromotes(t *testing.T) {
	pool := value.NewPool(0)
	v, err := callBuiltin(t, "c", pool, []*value.Value{
		value.NewInt(pool, []int64{1, 2}),
		value.NewFloat(pool, []float64{3.5}),
	}, nil)
	if err != nil {
		t.Fatalf("c: %v", err)
	}
	if v.Type() != value.Float || v.Count() != 3 {
		t.Fatalf("c() = kind %v count %d, want Float 3", v.Type(), v.Count())
	}
}

func TestMissingArgumentRaisesTypeError(t *testing.T) {
	pool := value.NewPool(0)
	_, err := callBuiltin(t, "sqrt", pool, nil, nil)
	if err == nil {
		t.Fatalf("expected a TypeError for a missing required argument")
	}
	d := err.(*term.Diagnostic)
	if d.Kind != term.TypeError {
		t.Errorf("Kind = %v, want TypeError", d.Kind)
	}
}

func TestUnknownNamedArgumentRejected(t *testing.T) {
	pool := value.NewPool(0)
	_, err := callBuiltin(t, "sqrt", pool,
		[]*value.Value{value.NewFloat(pool, []float64{4})},
		map[string]*value.Value{"bogus": value.IntOne})
	if err == nil {
		t.Fatalf("expected an error for an unrecognized named argument")
	}
}

func TestTypeMaskViolation(t *testing.T) {
	pool := value.NewPool(0)
	_, err := callBuiltin(t, "sqrt", pool, []*value.Value{value.NewString(pool, []string{"x"})}, nil)
	if err == nil {
		t.Fatalf("expected a TypeError for a string argument to sqrt()")
	}
}

func TestUnrecognizedFunction(t *testing.T) {
	pool := value.NewPool(0)
	_, err := callBuiltin(t, "no_such_fn", pool, nil, nil)
	if err == nil {
		t.Fatalf("expected IdentifierUndefined for an unrecognized function name")
	}
	d := err.(*term.Diagnostic)
	if d.Kind != term.IdentifierUndefined {
		t.Errorf("Kind = %v, want IdentifierUndefined", d.Kind)
	}
}

func TestSeqDefaultStep(t *testing.T) {
	pool := value.NewPool(0)
	v, err := callBuiltin(t, "seq", pool, []*value.Value{
		value.NewFloat(pool, []float64{1}), value.NewFloat(pool, []float64{3}),
	}, nil)
	if err != nil {
		t.Fatalf("seq: %v", err)
	}
	if v.Count() != 3 {
		t.Fatalf("seq(1,3) length = %d, want 3", v.Count())
	}
}

func TestSortDescending(t *testing.T) {
	pool := value.NewPool(0)
	v, err := callBuiltin(t, "sort", pool,
		[]*value.Value{value.NewInt(pool, []int64{3, 1, 2})},
		map[string]*value.Value{"ascending": value.LogicalFalse})
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	want := []int64{3, 2, 1}
	for i, w := range want {
		n, _ := v.AsIntAt(i)
		if n != w {
			t.Errorf("sort(desc)[%d] = %d, want %d", i, n, w)
		}
	}
}

func TestWhich(t *testing.T) {
	pool := value.NewPool(0)
	v, err := callBuiltin(t, "which", pool,
		[]*value.Value{value.NewLogical(pool, []bool{true, false, true})}, nil)
	if err != nil {
		t.Fatalf("which: %v", err)
	}
	want := []int64{0, 2}
	if v.Count() != len(want) {
		t.Fatalf("which() length = %d, want %d", v.Count(), len(want))
	}
	for i, w := range want {
		n, _ := v.AsIntAt(i)
		if n != w {
			t.Errorf("which()[%d] = %d, want %d", i, n, w)
		}
	}
}

func TestPaste(t *testing.T) {
	pool := value.NewPool(0)
	v, err := callBuiltin(t, "paste", pool, []*value.Value{
		value.NewString(pool, []string{"a", "b"}),
		value.NewString(pool, []string{"x"}),
	}, nil)
	if err != nil {
		t.Fatalf("paste: %v", err)
	}
	got0, _ := v.AsStringAt(0)
	got1, _ := v.AsStringAt(1)
	if got0 != "a x" || got1 != "b x" {
		t.Errorf("paste() = %q %q, want \"a x\" \"b x\"", got0, got1)
	}
}
