package value

import "math"

// Process-wide static values. Each bypasses refcount accounting entirely
// (refcount is frozen at -1): Acquire and Release are no-ops, so any
// number of holders can share one of these without ever copying it. They
// are never returned by Pool.alloc and never enter the pool's free list.
var (
	NullValue     = &Value{kind: Null, refcount: -1}
	NullInvisible = &Value{kind: Null, refcount: -1, invisible: true}

	LogicalTrue  = &Value{kind: Logical, length: 1, scalarLogical: true, refcount: -1}
	LogicalFalse = &Value{kind: Logical, length: 1, scalarLogical: false, refcount: -1}

	EmptyLogical = &Value{kind: Logical, refcount: -1}
	EmptyInt     = &Value{kind: Int, refcount: -1}
	EmptyFloat   = &Value{kind: Float, refcount: -1}
	EmptyString  = &Value{kind: String, refcount: -1}

	IntZero = &Value{kind: Int, length: 1, scalarInt: 0, refcount: -1}
	IntOne  = &Value{kind: Int, length: 1, scalarInt: 1, refcount: -1}

	FloatZero = &Value{kind: Float, length: 1, scalarFloat: 0, refcount: -1}
	FloatHalf = &Value{kind: Float, length: 1, scalarFloat: 0.5, refcount: -1}
	FloatOne  = &Value{kind: Float, length: 1, scalarFloat: 1, refcount: -1}
	FloatInf  = &Value{kind: Float, length: 1, scalarFloat: math.Inf(1), refcount: -1}
)

// NewStaticString builds a frozen string singleton that bypasses refcount
// accounting, for package-level default values (e.g. a registered
// function's default argument) that must exist before any Pool does.
func NewStaticString(s string) *Value {
	return &Value{kind: String, length: 1, scalarString: s, refcount: -1}
}

// staticInt returns the shared static for n if n is 0 or 1.
func staticInt(n int64) (*Value, bool) {
	switch n {
	case 0:
		return IntZero, true
	case 1:
		return IntOne, true
	default:
		return nil, false
	}
}

// staticFloat returns the shared static for f if f is one of 0, 0.5, 1 or
// +Inf. NaN is deliberately excluded: it does not compare equal to itself,
// so "equal to a static" would never fire for it anyway.
func staticFloat(f float64) (*Value, bool) {
	switch {
	case f == 0 && !math.Signbit(f):
		return FloatZero, true
	case f == 0.5:
		return FloatHalf, true
	case f == 1:
		return FloatOne, true
	case math.IsInf(f, 1):
		return FloatInf, true
	default:
		return nil, false
	}
}
