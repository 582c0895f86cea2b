package symtab

import (
	"testing"

	"eidos.dev/eidos/pkg/intern"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

func newChain(t *testing.T) (*Scope, *intern.Table, *value.Pool, *term.Stream) {
	t.Helper()
	names := intern.New()
	pool := value.NewPool(0)
	root := NewIntrinsicScope(names, pool)
	vars := NewChild(Variables, root)
	stream := term.NewStream("test", "", term.Throws)
	return vars, names, pool, stream
}

func TestIntrinsicIdentity(t *testing.T) {
	vars, names, _, stream := newChain(t)
	v, err := vars.GetValue(names.Intern("T"), names, stream)
	if err != nil {
		t.Fatalf("GetValue(T): %v", err)
	}
	if v != value.LogicalTrue {
		t.Errorf("GetValue(T) did not return the shared singleton")
	}
}

func TestLookupNearestAncestor(t *testing.T) {
	vars, names, pool, stream := newChain(t)
	id := names.Intern("x")
	if err := vars.SetValueForSymbol(id, value.NewInt(pool, []int64{5}), pool, names, stream); err != nil {
		t.Fatalf("SetValueForSymbol: %v", err)
	}
	child := NewChild(Variables, vars) // note: test-only nesting; real chains never parent a Variables scope this way

	v, err := child.GetValue(id, names, stream)
	if err != nil {
		t.Fatalf("GetValue(x): %v", err)
	}
	n, _ := v.AsIntAt(0)
	if n != 5 {
		t.Errorf("GetValue(x) = %d, want 5", n)
	}
}

func TestSetRejectsRedefinitionOfConstant(t *testing.T) {
	vars, names, pool, stream := newChain(t)
	err := vars.SetValueForSymbol(names.Intern("PI"), value.NewFloat(pool, []float64{4}), pool, names, stream)
	if err == nil {
		t.Fatalf("expected RedefinitionOfConstant, got nil")
	}
	d := err.(*term.Diagnostic)
	if d.Kind != term.RedefinitionOfConstant {
		t.Errorf("Kind = %v, want RedefinitionOfConstant", d.Kind)
	}
}

func TestIntrinsicConstantsCannotBeRemoved(t *testing.T) {
	vars, names, _, stream := newChain(t)
	err := vars.RemoveSymbol(names.Intern("PI"), true, names, stream)
	if err == nil {
		t.Fatalf("expected removal of an intrinsic constant to fail")
	}
}

func TestDefinedConstantRemoval(t *testing.T) {
	vars, names, pool, stream := newChain(t)
	id := names.Intern("K")
	if err := vars.DefineConstantForSymbol(id, value.NewInt(pool, []int64{1}), pool, names, stream); err != nil {
		t.Fatalf("DefineConstantForSymbol: %v", err)
	}
	if err := vars.RemoveSymbol(id, false, names, stream); err == nil {
		t.Fatalf("expected Remove(allow_constant=false) on a defined constant to fail")
	}
	if err := vars.RemoveSymbol(id, true, names, stream); err != nil {
		t.Fatalf("Remove(allow_constant=true) on a defined constant should succeed: %v", err)
	}
}

func TestStorageTransition(t *testing.T) {
	vars, names, pool, stream := newChain(t)
	var ids []intern.ID
	for i := 0; i < arrayCapacity+10; i++ {
		id := names.Intern(string(rune('a')) + string(rune(i)))
		ids = append(ids, id)
		if err := vars.SetValueForSymbol(id, value.NewInt(pool, []int64{int64(i)}), pool, names, stream); err != nil {
			t.Fatalf("SetValueForSymbol #%d: %v", i, err)
		}
	}
	if vars.usingArray {
		t.Fatalf("expected migration to hash storage after exceeding array capacity")
	}
	for i, id := range ids {
		v, err := vars.GetValue(id, names, stream)
		if err != nil {
			t.Fatalf("GetValue after migration, #%d: %v", i, err)
		}
		n, _ := v.AsIntAt(0)
		if n != int64(i) {
			t.Errorf("value #%d = %d, want %d", i, n, i)
		}
	}
}

func TestDefineConstantSplicesScope(t *testing.T) {
	vars, names, pool, stream := newChain(t)
	id := names.Intern("K")
	if err := vars.DefineConstantForSymbol(id, value.NewInt(pool, []int64{7}), pool, names, stream); err != nil {
		t.Fatalf("DefineConstantForSymbol: %v", err)
	}
	if vars.parent.Kind() != DefinedConstants {
		t.Fatalf("vars.parent.Kind() = %v, want DefinedConstants", vars.parent.Kind())
	}
	if vars.parent.parent.Kind() != IntrinsicConstants {
		t.Fatalf("vars.parent.parent.Kind() = %v, want IntrinsicConstants", vars.parent.parent.Kind())
	}
	v, err := vars.GetValue(id, names, stream)
	if err != nil {
		t.Fatalf("GetValue(K): %v", err)
	}
	n, _ := v.AsIntAt(0)
	if n != 7 {
		t.Errorf("GetValue(K) = %d, want 7", n)
	}
}

func TestSetValueCopiesSharedValue(t *testing.T) {
	vars, names, pool, stream := newChain(t)
	shared := value.NewInt(pool, []int64{1, 2, 3})
	shared.Acquire()
	shared.Acquire() // refcount now 2: not unique

	if err := vars.SetValueForSymbol(names.Intern("x"), shared, pool, names, stream); err != nil {
		t.Fatalf("SetValueForSymbol: %v", err)
	}
	stored, _ := vars.GetValue(names.Intern("x"), names, stream)
	if stored == shared {
		t.Errorf("SetValueForSymbol stored the shared value directly instead of copying it")
	}
}

// TestSetValueSharesExclusivelyOwnedValue is the "y = x" aliasing case:
// binding the same exclusively-owned value into a second slot must share
// the pointer, not copy it, and the refcount must climb to reflect both
// slots holding it -- the gate pkg/interp's subscript assignment later
// checks before mutating either alias in place.
func TestSetValueSharesExclusivelyOwnedValue(t *testing.T) {
	vars, names, pool, stream := newChain(t)
	first := value.NewInt(pool, []int64{1, 2, 3})
	if err := vars.SetValueForSymbol(names.Intern("x"), first, pool, names, stream); err != nil {
		t.Fatalf("SetValueForSymbol(x): %v", err)
	}
	if first.RefCount() != 1 {
		t.Fatalf("RefCount() after one binding = %d, want 1", first.RefCount())
	}

	if err := vars.SetValueForSymbol(names.Intern("y"), first, pool, names, stream); err != nil {
		t.Fatalf("SetValueForSymbol(y): %v", err)
	}
	stored, _ := vars.GetValue(names.Intern("y"), names, stream)
	if stored != first {
		t.Errorf("SetValueForSymbol copied an exclusively-owned value instead of sharing it")
	}
	if first.RefCount() != 2 {
		t.Errorf("RefCount() after two bindings share it = %d, want 2", first.RefCount())
	}
}

// TestReassignmentReleasesPreviousValue exercises the pool.Live() free-list
// accounting: overwriting a binding must release the value it replaces,
// so a reassign-and-release cycle leaves the live count unchanged instead
// of growing the pool.
func TestReassignmentReleasesPreviousValue(t *testing.T) {
	vars, names, pool, stream := newChain(t)
	id := names.Intern("x")
	first := value.NewInt(pool, []int64{1, 2, 3})
	if err := vars.SetValueForSymbol(id, first, pool, names, stream); err != nil {
		t.Fatalf("SetValueForSymbol: %v", err)
	}
	liveBefore := pool.Live()

	second := value.NewInt(pool, []int64{4, 5, 6})
	if err := vars.SetValueForSymbol(id, second, pool, names, stream); err != nil {
		t.Fatalf("SetValueForSymbol: %v", err)
	}
	if first.RefCount() != 0 {
		t.Errorf("RefCount() of the replaced value = %d, want 0", first.RefCount())
	}
	if pool.Live() != liveBefore {
		t.Errorf("Live() = %d after reassignment, want %d (replaced value freed, new one allocated)", pool.Live(), liveBefore)
	}
}
