package intern

import "testing"

func TestInternStable(t *testing.T) {
	tab := New()
	a := tab.Intern("foo")
	b := tab.Intern("bar")
	c := tab.Intern("foo")
	if a != c {
		t.Errorf("re-interning %q gave a different ID: %d != %d", "foo", a, c)
	}
	if a == b {
		t.Errorf("distinct names got the same ID %d", a)
	}
	if tab.Name(a) != "foo" || tab.Name(b) != "bar" {
		t.Errorf("Name round-trip failed: Name(a)=%q Name(b)=%q", tab.Name(a), tab.Name(b))
	}
}

func TestLookupMissing(t *testing.T) {
	tab := New()
	tab.Intern("foo")
	if _, ok := tab.Lookup("bar"); ok {
		t.Errorf("Lookup found %q that was never interned", "bar")
	}
	if _, ok := tab.Lookup("foo"); !ok {
		t.Errorf("Lookup did not find %q", "foo")
	}
}

func TestLen(t *testing.T) {
	tab := New()
	tab.Intern("a")
	tab.Intern("b")
	tab.Intern("a")
	if tab.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tab.Len())
	}
}

func TestNamePanicsOnInvalidID(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Name did not panic on an invalid ID")
		}
	}()
	New().Name(ID(0))
}
