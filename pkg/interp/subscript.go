package interp

import (
	"fmt"

	"eidos.dev/eidos/pkg/ast"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

// resolveSubscriptIndex turns a subscript index value into the list of
// positions it selects from obj (spec §4.6): a logical index must match
// obj's length and selects where true; a numeric index selects those
// 0-based positions directly, negative or out-of-range positions failing
// IndexOutOfRange.
func (ip *Interp) resolveSubscriptIndex(obj, idx *value.Value) ([]int, error) {
	switch idx.Type() {
	case value.Logical:
		if idx.Count() != obj.Count() {
			return nil, ip.stream.Raisef(term.IndexOutOfRange,
				"logical subscript length %d does not match operand length %d", idx.Count(), obj.Count())
		}
		var out []int
		for i := 0; i < idx.Count(); i++ {
			b, _ := idx.AsLogicalAt(i)
			if b {
				out = append(out, i)
			}
		}
		return out, nil
	case value.Int, value.Float:
		out := make([]int, idx.Count())
		for i := range out {
			n, err := idx.AsIntAt(i)
			if err != nil {
				return nil, ip.stream.Raisef(term.TypeError, "subscript: %v", err)
			}
			if n < 0 || n >= int64(obj.Count()) {
				return nil, ip.stream.Raisef(term.IndexOutOfRange,
					"index %d out of range for value of length %d", n, obj.Count())
			}
			out[i] = int(n)
		}
		return out, nil
	default:
		return nil, ip.stream.Raisef(term.TypeError,
			"subscript index must be logical or numeric, got %s", idx.Type())
	}
}

func emptyOfKind(pool *value.Pool, k value.Kind, class *value.Class) *value.Value {
	switch k {
	case value.Logical:
		return value.NewLogical(pool, nil)
	case value.Int:
		return value.NewInt(pool, nil)
	case value.Float:
		return value.NewFloat(pool, nil)
	case value.String:
		return value.NewString(pool, nil)
	case value.Object:
		return value.NewObject(pool, class, nil)
	default:
		return value.NullValue
	}
}

func (ip *Interp) evalSubscript(n *ast.Node) (*value.Value, error) {
	obj, err := ip.eval(n.Children[0])
	if err != nil {
		return nil, err
	}
	idx, err := ip.eval(n.Children[1])
	if err != nil {
		return nil, err
	}
	ip.stream.PushPosition(n)
	defer ip.stream.PopPosition()

	positions, err := ip.resolveSubscriptIndex(obj, idx)
	if err != nil {
		return nil, err
	}
	var acc *value.Value
	for _, pos := range positions {
		elem, err := obj.GetValueAtIndex(pos, ip.values)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = elem.CopyValues(ip.values)
		} else if acc, err = acc.AppendFrom(elem, ip.values); err != nil {
			return nil, ip.stream.Raisef(term.TypeError, "subscript: %v", err)
		}
	}
	if acc == nil {
		return emptyOfKind(ip.values, obj.Type(), obj.Class()), nil
	}
	return acc, nil
}

// coerceElementKind adapts a single rhs element to target's kind along the
// numeric lattice, for subscript assignment into a container of a
// different (but compatible) numeric kind.
func (ip *Interp) coerceElementKind(elem *value.Value, target value.Kind) (*value.Value, error) {
	if elem.Type() == target {
		return elem, nil
	}
	switch target {
	case value.Int:
		n, err := elem.AsIntAt(0)
		if err != nil {
			return nil, err
		}
		return value.NewInt(ip.values, []int64{n}), nil
	case value.Float:
		f, err := elem.AsFloatAt(0)
		if err != nil {
			return nil, err
		}
		return value.NewFloat(ip.values, []float64{f}), nil
	case value.Logical:
		b, err := elem.AsLogicalAt(0)
		if err != nil {
			return nil, err
		}
		return value.NewLogical(ip.values, []bool{b}), nil
	default:
		return nil, fmt.Errorf("cannot assign a %s value into a %s value", elem.Type(), target)
	}
}

// assignSubscript implements x[i] = y (spec §4.6). The target must be a
// subscript of a bare identifier -- the only subscript assignment shape
// the spec recognizes. It reads the identifier's live binding directly (one
// of the two sanctioned no-copy reads in this interpreter, evalAssignRHS
// being the other, matching pkg/symtab's GetValue contract) rather than
// through eval's normal always-copy Ident path, since the whole point is to
// mutate that binding in place when it is uniquely owned; a binding shared
// with another slot, or a static, is first replaced by a private copy.
func (ip *Interp) assignSubscript(target *ast.Node, rhs *value.Value) error {
	objNode := target.Children[0]
	if objNode.Kind != ast.Ident {
		return ip.stream.Raise(term.InvalidAssignmentTarget,
			"subscript assignment target must be a bare identifier")
	}
	name := objNode.Root.Text
	id, ok := ip.names.Lookup(name)
	if !ok {
		return ip.stream.Raisef(term.IdentifierUndefined, "undefined identifier %q", name)
	}
	obj, err := ip.scope.GetValue(id, ip.names, ip.stream)
	if err != nil {
		return err
	}

	idxVal, err := ip.eval(target.Children[1])
	if err != nil {
		return err
	}
	positions, err := ip.resolveSubscriptIndex(obj, idxVal)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		return nil
	}
	if rhs.Count() == 0 {
		return ip.stream.Raise(term.TypeError, "cannot assign an empty value into a subscript")
	}

	if obj.IsStatic() || obj.RefCount() > 1 {
		obj = obj.CopyValues(ip.values)
		if err := ip.scope.SetValueForSymbolNoCopy(id, obj, ip.names, ip.stream); err != nil {
			return err
		}
	}

	for i, pos := range positions {
		elem, err := rhs.GetValueAtIndex(i%rhs.Count(), ip.values)
		if err != nil {
			return err
		}
		elem, err = ip.coerceElementKind(elem, obj.Type())
		if err != nil {
			return ip.stream.Raisef(term.TypeError, "subscript assignment: %v", err)
		}
		if err := obj.SetValueAtIndex(pos, elem); err != nil {
			return ip.stream.Raisef(term.TypeError, "subscript assignment: %v", err)
		}
	}
	return nil
}
