package value

import "fmt"

// Value is a vector of one of six semantic types. A length-1 value is a
// singleton: its element lives in one of the scalar* fields rather than in
// a heap-backed vec* slice, avoiding an extra allocation for the common
// case of scalar results. Values are drawn from a Pool (see pool.go) and
// carry an intrusive refcount; a small set of process-wide static
// instances (statics.go) bypass that accounting altogether.
type Value struct {
	kind      Kind
	length    int
	invisible bool
	refcount  int32 // -1 => static, never mutated, release is a no-op
	pool      *Pool
	class     *Class // only meaningful when kind == Object

	scalarLogical bool
	scalarInt     int64
	scalarFloat   float64
	scalarString  string
	scalarObject  *ObjectInstance

	vecLogical []bool
	vecInt     []int64
	vecFloat   []float64
	vecString  []string
	vecObject  []*ObjectInstance

	nextFree *Value // free-list link; only meaningful while unallocated
}

// Type returns the value's kind.
func (v *Value) Type() Kind { return v.kind }

// Count returns the number of elements.
func (v *Value) Count() int { return v.length }

// IsInvisible reports whether the value is marked invisible, suppressing
// automatic printing of a top-level expression result.
func (v *Value) IsInvisible() bool { return v.invisible }

// Invert marks v invisible and returns it. Invisibility is a presentation
// flag, not part of a value's content, so it is set directly rather than
// going through the copy-on-write path: the interpreter only calls this on
// values it has only just produced (e.g. the result of an assignment
// expression), which are never yet shared. The static NullValue is never
// marked; Invert returns the static NullInvisible in its place.
func (v *Value) Invert() *Value {
	if v == NullValue {
		return NullInvisible
	}
	v.invisible = true
	return v
}

// Class returns the element-class descriptor of an object value, or nil
// for any other kind.
func (v *Value) Class() *Class { return v.class }

// --- construction ---

// NewLogical builds a logical vector from elems, using the pool for any
// length other than the frozen true/false singletons and the empty static.
func NewLogical(pool *Pool, elems []bool) *Value {
	if len(elems) == 1 {
		if elems[0] {
			return LogicalTrue
		}
		return LogicalFalse
	}
	if len(elems) == 0 {
		return EmptyLogical
	}
	v := pool.newValue(Logical)
	v.length = len(elems)
	v.vecLogical = append(v.vecLogical, elems...)
	return v
}

// NewInt builds an integer vector from elems.
func NewInt(pool *Pool, elems []int64) *Value {
	if len(elems) == 1 {
		if s, ok := staticInt(elems[0]); ok {
			return s
		}
		v := pool.newValue(Int)
		v.length = 1
		v.scalarInt = elems[0]
		return v
	}
	if len(elems) == 0 {
		return EmptyInt
	}
	v := pool.newValue(Int)
	v.length = len(elems)
	v.vecInt = append(v.vecInt, elems...)
	return v
}

// NewFloat builds a float vector from elems.
func NewFloat(pool *Pool, elems []float64) *Value {
	if len(elems) == 1 {
		if s, ok := staticFloat(elems[0]); ok {
			return s
		}
		v := pool.newValue(Float)
		v.length = 1
		v.scalarFloat = elems[0]
		return v
	}
	if len(elems) == 0 {
		return EmptyFloat
	}
	v := pool.newValue(Float)
	v.length = len(elems)
	v.vecFloat = append(v.vecFloat, elems...)
	return v
}

// NewString builds a string vector from elems.
func NewString(pool *Pool, elems []string) *Value {
	if len(elems) == 1 {
		v := pool.newValue(String)
		v.length = 1
		v.scalarString = elems[0]
		return v
	}
	if len(elems) == 0 {
		return EmptyString
	}
	v := pool.newValue(String)
	v.length = len(elems)
	v.vecString = append(v.vecString, elems...)
	return v
}

// NewObject builds an object vector from elems, all sharing class c.
func NewObject(pool *Pool, c *Class, elems []*ObjectInstance) *Value {
	if len(elems) == 1 {
		v := pool.newValue(Object)
		v.length = 1
		v.class = c
		v.scalarObject = elems[0]
		return v
	}
	if len(elems) == 0 {
		v := pool.newValue(Object)
		v.class = c
		return v
	}
	v := pool.newValue(Object)
	v.length = len(elems)
	v.class = c
	v.vecObject = append(v.vecObject, elems...)
	return v
}

// Null_ returns the canonical null value (non-invisible or invisible).
func Null_(invisible bool) *Value {
	if invisible {
		return NullInvisible
	}
	return NullValue
}

// --- element access ---

// errIndexRange reports an out-of-range element access.
func errIndexRange(i, n int) error {
	return fmt.Errorf("index %d out of range for value of length %d", i, n)
}

// GetValueAtIndex returns a fresh singleton for element i, or the shared
// static singleton when the element happens to equal one. It fails if i is
// out of range.
func (v *Value) GetValueAtIndex(i int, pool *Pool) (*Value, error) {
	if i < 0 || i >= v.length {
		return nil, errIndexRange(i, v.length)
	}
	switch v.kind {
	case Null:
		return NullValue, nil
	case Logical:
		b, _ := v.logicalAt(i)
		return NewLogical(pool, []bool{b}), nil
	case Int:
		n, _ := v.intAt(i)
		return NewInt(pool, []int64{n}), nil
	case Float:
		f, _ := v.floatAt(i)
		return NewFloat(pool, []float64{f}), nil
	case String:
		s, _ := v.stringAt(i)
		return NewString(pool, []string{s}), nil
	case Object:
		o, _ := v.objectAt(i)
		return NewObject(pool, v.class, []*ObjectInstance{o}), nil
	default:
		return nil, fmt.Errorf("unhandled kind %v", v.kind)
	}
}

// SetValueAtIndex writes element i in place. It requires exclusive
// ownership (see exclusivelyOwned in pool.go) and fails if the
// supplied value's kind is incompatible with v's.
func (v *Value) SetValueAtIndex(i int, elem *Value) error {
	if !v.exclusivelyOwned() {
		return fmt.Errorf("cannot mutate a shared value in place")
	}
	if i < 0 || i >= v.length {
		return errIndexRange(i, v.length)
	}
	if elem.Count() != 1 {
		return fmt.Errorf("SetValueAtIndex requires a singleton, got length %d", elem.Count())
	}
	if elem.Type() != v.kind {
		return fmt.Errorf("type mismatch: cannot assign %v into a %v value", elem.Type(), v.kind)
	}
	switch v.kind {
	case Logical:
		b, _ := elem.logicalAt(0)
		return v.setLogicalAt(i, b)
	case Int:
		n, _ := elem.intAt(0)
		return v.setIntAt(i, n)
	case Float:
		f, _ := elem.floatAt(0)
		return v.setFloatAt(i, f)
	case String:
		s, _ := elem.stringAt(0)
		return v.setStringAt(i, s)
	case Object:
		o, _ := elem.objectAt(0)
		return v.setObjectAt(i, o)
	default:
		return fmt.Errorf("cannot assign into a %v value", v.kind)
	}
}

// CopyValues returns a deep copy of v's element storage as a new,
// unshared (refcount 0) value drawn from pool. Invisibility is not copied:
// copies are presentable values by default.
func (v *Value) CopyValues(pool *Pool) *Value {
	if v.kind != Null && v.length <= 1 {
		c := pool.newValue(v.kind)
		c.length, c.class = v.length, v.class
		c.scalarLogical, c.scalarInt, c.scalarFloat = v.scalarLogical, v.scalarInt, v.scalarFloat
		c.scalarString, c.scalarObject = v.scalarString, v.scalarObject
		return c
	}
	switch v.kind {
	case Null:
		return NullValue
	case Logical:
		return NewLogical(pool, v.logicalSlice())
	case Int:
		return NewInt(pool, v.intSlice())
	case Float:
		return NewFloat(pool, v.floatSlice())
	case String:
		return NewString(pool, v.stringSlice())
	case Object:
		return NewObject(pool, v.class, v.objectSlice())
	default:
		return NullValue
	}
}
