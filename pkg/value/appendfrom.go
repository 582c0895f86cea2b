package value

import "fmt"

// AppendFrom appends every element of other onto v and returns the result:
// v itself, extended in place, when v already has the target kind; a copy of
// other when v is empty; otherwise a new value promoted to the wider kind.
// It requires exclusive ownership of v (see copy-on-write discipline) and
// promotes through the numeric lattice logical <= integer <= float when the
// two kinds differ; string and object only concatenate with themselves.
// Object concatenation additionally requires both sides share a class.
func (v *Value) AppendFrom(other *Value, pool *Pool) (*Value, error) {
	if !v.exclusivelyOwned() {
		return nil, fmt.Errorf("cannot mutate a shared value in place")
	}
	if other.length == 0 {
		return v, nil
	}
	if v.length == 0 {
		return other.CopyValues(pool), nil
	}

	target, err := Promote(v.kind, other.kind)
	if err != nil {
		return nil, err
	}
	if target == Object && v.class != other.class {
		return nil, fmt.Errorf("cannot concatenate object values of different classes %s and %s",
			v.class, other.class)
	}

	if target != v.kind {
		promoted, err := promoteValue(v, target, pool)
		if err != nil {
			return nil, err
		}
		// promoteValue may have returned a shared static singleton (e.g.
		// IntZero); appendSameKind mutates in place, so force a private
		// copy first.
		if !promoted.exclusivelyOwned() {
			promoted = promoted.CopyValues(pool)
		}
		return promoted.appendSameKind(other, pool)
	}
	return v.appendSameKind(other, pool)
}

// appendSameKind appends other's elements, which must already share v's
// kind (or be losslessly coercible to it along the numeric lattice), onto v.
func (v *Value) appendSameKind(other *Value, pool *Pool) (*Value, error) {
	n := other.Count()
	switch v.kind {
	case Logical:
		v.vecLogical = promoteScalarLogical(v)
		for i := 0; i < n; i++ {
			b, err := other.AsLogicalAt(i)
			if err != nil {
				return nil, err
			}
			v.vecLogical = append(v.vecLogical, b)
		}
	case Int:
		v.vecInt = promoteScalarInt(v)
		for i := 0; i < n; i++ {
			x, err := other.AsIntAt(i)
			if err != nil {
				return nil, err
			}
			v.vecInt = append(v.vecInt, x)
		}
	case Float:
		v.vecFloat = promoteScalarFloat(v)
		for i := 0; i < n; i++ {
			x, err := other.AsFloatAt(i)
			if err != nil {
				return nil, err
			}
			v.vecFloat = append(v.vecFloat, x)
		}
	case String:
		if other.kind != String {
			return nil, fmt.Errorf("cannot concatenate string and %v", other.kind)
		}
		v.vecString = promoteScalarString(v)
		for i := 0; i < n; i++ {
			s, _ := other.stringAt(i)
			v.vecString = append(v.vecString, s)
		}
	case Object:
		if other.kind != Object {
			return nil, fmt.Errorf("cannot concatenate object and %v", other.kind)
		}
		v.vecObject = promoteScalarObject(v)
		for i := 0; i < n; i++ {
			o, _ := other.objectAt(i)
			v.vecObject = append(v.vecObject, o)
		}
	default:
		return nil, fmt.Errorf("cannot concatenate %v values", v.kind)
	}
	v.length += n
	return v, nil
}

// promoteValue returns a fresh value holding v's elements promoted to
// target kind, drawn from pool. v itself is left untouched.
func promoteValue(v *Value, target Kind, pool *Pool) (*Value, error) {
	switch target {
	case Int:
		out := make([]int64, v.length)
		for i := range out {
			x, err := v.AsIntAt(i)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return NewInt(pool, out), nil
	case Float:
		out := make([]float64, v.length)
		for i := range out {
			x, err := v.AsFloatAt(i)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return NewFloat(pool, out), nil
	default:
		return nil, fmt.Errorf("cannot promote %v to %v", v.kind, target)
	}
}

// The promoteScalar* helpers migrate a singleton's scalar storage into a
// one-element vec slice right before an append grows it past length 1.
// They are no-ops for values that are already vector-backed.

func promoteScalarLogical(v *Value) []bool {
	if v.length == 1 && len(v.vecLogical) == 0 {
		return []bool{v.scalarLogical}
	}
	return v.vecLogical
}

func promoteScalarInt(v *Value) []int64 {
	if v.length == 1 && len(v.vecInt) == 0 {
		return []int64{v.scalarInt}
	}
	return v.vecInt
}

func promoteScalarFloat(v *Value) []float64 {
	if v.length == 1 && len(v.vecFloat) == 0 {
		return []float64{v.scalarFloat}
	}
	return v.vecFloat
}

func promoteScalarString(v *Value) []string {
	if v.length == 1 && len(v.vecString) == 0 {
		return []string{v.scalarString}
	}
	return v.vecString
}

func promoteScalarObject(v *Value) []*ObjectInstance {
	if v.length == 1 && len(v.vecObject) == 0 {
		return []*ObjectInstance{v.scalarObject}
	}
	return v.vecObject
}
