package value

import (
	"fmt"
	"math"
)

// --- raw element access, by kind ---
//
// Each *At accessor assumes the caller already checked the index range and
// the value's kind; the exported entry points (GetValueAtIndex,
// SetValueAtIndex, the As* coercions) do that checking.

func (v *Value) logicalAt(i int) (bool, bool) {
	if v.length == 1 {
		return v.scalarLogical, true
	}
	if i < 0 || i >= len(v.vecLogical) {
		return false, false
	}
	return v.vecLogical[i], true
}

func (v *Value) intAt(i int) (int64, bool) {
	if v.length == 1 {
		return v.scalarInt, true
	}
	if i < 0 || i >= len(v.vecInt) {
		return 0, false
	}
	return v.vecInt[i], true
}

func (v *Value) floatAt(i int) (float64, bool) {
	if v.length == 1 {
		return v.scalarFloat, true
	}
	if i < 0 || i >= len(v.vecFloat) {
		return 0, false
	}
	return v.vecFloat[i], true
}

func (v *Value) stringAt(i int) (string, bool) {
	if v.length == 1 {
		return v.scalarString, true
	}
	if i < 0 || i >= len(v.vecString) {
		return "", false
	}
	return v.vecString[i], true
}

func (v *Value) objectAt(i int) (*ObjectInstance, bool) {
	if v.length == 1 {
		return v.scalarObject, true
	}
	if i < 0 || i >= len(v.vecObject) {
		return nil, false
	}
	return v.vecObject[i], true
}

// ObjectAt returns the raw *ObjectInstance at element i, for member access
// and method dispatch against a host-registered class (spec §6). It fails
// if v is not an object value or i is out of range.
func (v *Value) ObjectAt(i int) (*ObjectInstance, error) {
	if v.kind != Object {
		return nil, fmt.Errorf("cannot access object element of a %v value", v.kind)
	}
	o, ok := v.objectAt(i)
	if !ok {
		return nil, errIndexRange(i, v.length)
	}
	return o, nil
}

// The set*At helpers write element i in place: a singleton's scalar field,
// or slot i of a vector's vec slice. They never grow or reshape storage.
func (v *Value) setLogicalAt(i int, b bool) error {
	if v.length == 1 {
		v.scalarLogical = b
		return nil
	}
	if i < 0 || i >= len(v.vecLogical) {
		return errIndexRange(i, v.length)
	}
	v.vecLogical[i] = b
	return nil
}

func (v *Value) setIntAt(i int, n int64) error {
	if v.length == 1 {
		v.scalarInt = n
		return nil
	}
	if i < 0 || i >= len(v.vecInt) {
		return errIndexRange(i, v.length)
	}
	v.vecInt[i] = n
	return nil
}

func (v *Value) setFloatAt(i int, f float64) error {
	if v.length == 1 {
		v.scalarFloat = f
		return nil
	}
	if i < 0 || i >= len(v.vecFloat) {
		return errIndexRange(i, v.length)
	}
	v.vecFloat[i] = f
	return nil
}

func (v *Value) setStringAt(i int, s string) error {
	if v.length == 1 {
		v.scalarString = s
		return nil
	}
	if i < 0 || i >= len(v.vecString) {
		return errIndexRange(i, v.length)
	}
	v.vecString[i] = s
	return nil
}

func (v *Value) setObjectAt(i int, o *ObjectInstance) error {
	if v.length == 1 {
		v.scalarObject = o
		return nil
	}
	if i < 0 || i >= len(v.vecObject) {
		return errIndexRange(i, v.length)
	}
	v.vecObject[i] = o
	return nil
}

// --- full-slice views, used by CopyValues, AppendFrom and StreamTo ---

func (v *Value) logicalSlice() []bool {
	if v.length == 1 {
		return []bool{v.scalarLogical}
	}
	out := make([]bool, len(v.vecLogical))
	copy(out, v.vecLogical)
	return out
}

func (v *Value) intSlice() []int64 {
	if v.length == 1 {
		return []int64{v.scalarInt}
	}
	out := make([]int64, len(v.vecInt))
	copy(out, v.vecInt)
	return out
}

func (v *Value) floatSlice() []float64 {
	if v.length == 1 {
		return []float64{v.scalarFloat}
	}
	out := make([]float64, len(v.vecFloat))
	copy(out, v.vecFloat)
	return out
}

func (v *Value) stringSlice() []string {
	if v.length == 1 {
		return []string{v.scalarString}
	}
	out := make([]string, len(v.vecString))
	copy(out, v.vecString)
	return out
}

func (v *Value) objectSlice() []*ObjectInstance {
	if v.length == 1 {
		return []*ObjectInstance{v.scalarObject}
	}
	out := make([]*ObjectInstance, len(v.vecObject))
	copy(out, v.vecObject)
	return out
}

// --- coercion, used by arithmetic promotion and a:b sequence endpoints ---

// AsLogicalAt returns element i coerced to logical. Only logical, integer
// and float source kinds are supported.
func (v *Value) AsLogicalAt(i int) (bool, error) {
	switch v.kind {
	case Logical:
		b, ok := v.logicalAt(i)
		if !ok {
			return false, errIndexRange(i, v.length)
		}
		return b, nil
	case Int:
		n, ok := v.intAt(i)
		if !ok {
			return false, errIndexRange(i, v.length)
		}
		return n != 0, nil
	case Float:
		f, ok := v.floatAt(i)
		if !ok {
			return false, errIndexRange(i, v.length)
		}
		return f != 0, nil
	default:
		return false, fmt.Errorf("cannot coerce %v to logical", v.kind)
	}
}

// AsIntAt returns element i coerced to integer.
func (v *Value) AsIntAt(i int) (int64, error) {
	switch v.kind {
	case Logical:
		b, ok := v.logicalAt(i)
		if !ok {
			return 0, errIndexRange(i, v.length)
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case Int:
		n, ok := v.intAt(i)
		if !ok {
			return 0, errIndexRange(i, v.length)
		}
		return n, nil
	case Float:
		f, ok := v.floatAt(i)
		if !ok {
			return 0, errIndexRange(i, v.length)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("cannot coerce non-finite float to integer")
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("cannot coerce %v to integer", v.kind)
	}
}

// AsFloatAt returns element i coerced to float.
func (v *Value) AsFloatAt(i int) (float64, error) {
	switch v.kind {
	case Logical:
		b, ok := v.logicalAt(i)
		if !ok {
			return 0, errIndexRange(i, v.length)
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case Int:
		n, ok := v.intAt(i)
		if !ok {
			return 0, errIndexRange(i, v.length)
		}
		return float64(n), nil
	case Float:
		f, ok := v.floatAt(i)
		if !ok {
			return 0, errIndexRange(i, v.length)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot coerce %v to float", v.kind)
	}
}

// AsStringAt returns a textual rendering of element i, usable by string
// builtins (paste, cat) regardless of source kind.
func (v *Value) AsStringAt(i int) (string, error) {
	if v.kind == String {
		s, ok := v.stringAt(i)
		if !ok {
			return "", errIndexRange(i, v.length)
		}
		return s, nil
	}
	var buf []byte
	w := sliceWriter{&buf}
	if err := v.streamElement(w, i); err != nil {
		return "", err
	}
	return string(buf), nil
}

type sliceWriter struct{ buf *[]byte }

func (w sliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}
