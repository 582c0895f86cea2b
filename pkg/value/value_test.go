package value

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func floatsOf(t *testing.T, v *Value) []float64 {
	t.Helper()
	out := make([]float64, v.Count())
	for i := range out {
		f, err := v.AsFloatAt(i)
		if err != nil {
			t.Fatalf("AsFloatAt(%d): %v", i, err)
		}
		out[i] = f
	}
	return out
}

func stringsOf(t *testing.T, v *Value) []string {
	t.Helper()
	out := make([]string, v.Count())
	for i := range out {
		s, err := v.AsStringAt(i)
		if err != nil {
			t.Fatalf("AsStringAt(%d): %v", i, err)
		}
		out[i] = s
	}
	return out
}

// TestCopyValuesSplitsSharedStorage is the copy-on-write split scenario the
// value model exists to support: copying a float vector must produce
// independent storage, so mutating one side through SetValueAtIndex never
// perturbs the other's contents.
func TestCopyValuesSplitsSharedStorage(t *testing.T) {
	pool := NewPool(0)
	original := NewFloat(pool, []float64{1, 2, 3})
	copied := original.CopyValues(pool)

	if diff := cmp.Diff(floatsOf(t, original), floatsOf(t, copied)); diff != "" {
		t.Fatalf("copy diverges from original before any mutation (-original +copy):\n%s", diff)
	}

	if err := copied.SetValueAtIndex(0, NewFloat(pool, []float64{99})); err != nil {
		t.Fatalf("SetValueAtIndex: %v", err)
	}

	wantOriginal := []float64{1, 2, 3}
	wantCopied := []float64{99, 2, 3}
	if diff := cmp.Diff(wantOriginal, floatsOf(t, original)); diff != "" {
		t.Errorf("original mutated through its copy (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantCopied, floatsOf(t, copied)); diff != "" {
		t.Errorf("copy did not take the mutation (-want +got):\n%s", diff)
	}
}

func TestCopyValuesString(t *testing.T) {
	pool := NewPool(0)
	original := NewString(pool, []string{"a", "b", "c"})
	copied := original.CopyValues(pool)
	if diff := cmp.Diff(stringsOf(t, original), stringsOf(t, copied)); diff != "" {
		t.Errorf("copied string vector differs from original (-original +copy):\n%s", diff)
	}
}

func TestRefcountExclusiveOwnership(t *testing.T) {
	pool := NewPool(0)
	v := NewInt(pool, []int64{1, 2, 3})
	if v.RefCount() != 0 {
		t.Fatalf("fresh value RefCount() = %d, want 0", v.RefCount())
	}
	if !v.exclusivelyOwned() {
		t.Errorf("a fresh (refcount 0) value should be exclusively owned")
	}
	v.Acquire()
	if v.RefCount() != 1 {
		t.Fatalf("after one Acquire, RefCount() = %d, want 1", v.RefCount())
	}
	if !v.exclusivelyOwned() {
		t.Errorf("a singly-held (refcount 1) value should be exclusively owned")
	}
	v.Acquire()
	if v.exclusivelyOwned() {
		t.Errorf("a doubly-held (refcount 2) value should not be exclusively owned")
	}
}

func TestSetValueAtIndexRejectsSharedValue(t *testing.T) {
	pool := NewPool(0)
	v := NewInt(pool, []int64{1, 2, 3})
	v.Acquire()
	v.Acquire()
	if err := v.SetValueAtIndex(0, NewInt(pool, []int64{9})); err == nil {
		t.Errorf("SetValueAtIndex on a shared value should fail")
	}
}

func TestGetValueAtIndexOutOfRange(t *testing.T) {
	pool := NewPool(0)
	v := NewInt(pool, []int64{1, 2, 3})
	if _, err := v.GetValueAtIndex(5, pool); err == nil {
		t.Errorf("GetValueAtIndex(5) on a length-3 value should fail")
	}
}

func TestNewLogicalReturnsStaticSingletons(t *testing.T) {
	pool := NewPool(0)
	if got := NewLogical(pool, []bool{true}); got != LogicalTrue {
		t.Errorf("NewLogical(pool, []bool{true}) did not return the LogicalTrue static")
	}
	if got := NewLogical(pool, []bool{false}); got != LogicalFalse {
		t.Errorf("NewLogical(pool, []bool{false}) did not return the LogicalFalse static")
	}
	if !LogicalTrue.IsStatic() {
		t.Errorf("LogicalTrue.IsStatic() = false, want true")
	}
}
