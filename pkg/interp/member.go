package interp

import (
	"eidos.dev/eidos/pkg/ast"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

// evalMember implements x.p (spec §4.6): valid only on object values,
// dispatching to the element class's property descriptor and concatenating
// the result across every element of a vector object value.
func (ip *Interp) evalMember(n *ast.Node) (*value.Value, error) {
	obj, err := ip.eval(n.Children[0])
	if err != nil {
		return nil, err
	}
	propName := n.Root.Text
	ip.stream.PushPosition(n)
	defer ip.stream.PopPosition()

	if obj.Type() != value.Object {
		return nil, ip.stream.Raisef(term.TypeError, "member access .%s target is not an object value", propName)
	}
	class := obj.Class()
	if class == nil {
		return nil, ip.stream.Raisef(term.TypeError, "member access: value has no element class")
	}
	prop, ok := class.Properties[propName]
	if !ok {
		return nil, ip.stream.Raisef(term.TypeError, "object class %s has no property %q", class.Name, propName)
	}

	var acc *value.Value
	for i := 0; i < obj.Count(); i++ {
		inst, err := obj.ObjectAt(i)
		if err != nil {
			return nil, err
		}
		elem, err := prop.Get(inst)
		if err != nil {
			return nil, ip.stream.Raisef(term.TypeError, "property %q: %v", propName, err)
		}
		if acc == nil {
			acc = elem.CopyValues(ip.values)
		} else if acc, err = acc.AppendFrom(elem, ip.values); err != nil {
			return nil, ip.stream.Raisef(term.TypeError, "property %q: %v", propName, err)
		}
	}
	if acc == nil {
		return value.NullValue, nil
	}
	return acc, nil
}

// assignMember implements x.p = y. Unlike subscript assignment, no
// symbol-table reification is needed: an object value's elements are
// shared *ObjectInstance pointers, and the property setter mutates the
// instance's host-owned payload directly, so every alias of the same
// instance observes the write regardless of how many Value vectors
// currently reference it -- the same semantics as mutating through any
// other shared pointer.
func (ip *Interp) assignMember(target *ast.Node, rhs *value.Value) error {
	obj, err := ip.eval(target.Children[0])
	if err != nil {
		return err
	}
	propName := target.Root.Text
	ip.stream.PushPosition(target)
	defer ip.stream.PopPosition()

	if obj.Type() != value.Object {
		return ip.stream.Raisef(term.TypeError, "member assignment .%s target is not an object value", propName)
	}
	class := obj.Class()
	if class == nil {
		return ip.stream.Raisef(term.TypeError, "member assignment: value has no element class")
	}
	prop, ok := class.Properties[propName]
	if !ok {
		return ip.stream.Raisef(term.TypeError, "object class %s has no property %q", class.Name, propName)
	}
	if prop.Set == nil {
		return ip.stream.Raisef(term.TypeError, "property %q of class %s is read-only", propName, class.Name)
	}
	if rhs.Count() == 0 {
		return ip.stream.Raise(term.TypeError, "cannot assign an empty value into a property")
	}
	if !prop.Mask.Accepts(rhs.Type()) {
		return ip.stream.Raisef(term.TypeError, "property %q of class %s does not accept %s", propName, class.Name, rhs.Type())
	}

	for i := 0; i < obj.Count(); i++ {
		inst, err := obj.ObjectAt(i)
		if err != nil {
			return err
		}
		elem, err := rhs.GetValueAtIndex(i%rhs.Count(), ip.values)
		if err != nil {
			return err
		}
		if err := prop.Set(inst, elem); err != nil {
			return ip.stream.Raisef(term.TypeError, "property %q: %v", propName, err)
		}
	}
	return nil
}
