package interp

import (
	"eidos.dev/eidos/pkg/ast"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

// collectArgs evaluates a call's argument list, splitting positional
// arguments from name=value arguments (ast.NamedArg is only ever a direct
// child of a Call/MethodCall argument list, per pkg/parser's grammar).
func (ip *Interp) collectArgs(argNodes []*ast.Node) ([]*value.Value, map[string]*value.Value, error) {
	var positional []*value.Value
	var named map[string]*value.Value
	for _, a := range argNodes {
		if a.Kind == ast.NamedArg {
			v, err := ip.eval(a.Children[0])
			if err != nil {
				return nil, nil, err
			}
			if named == nil {
				named = map[string]*value.Value{}
			}
			named[a.Root.Text] = v
			continue
		}
		v, err := ip.eval(a)
		if err != nil {
			return nil, nil, err
		}
		positional = append(positional, v)
	}
	return positional, named, nil
}

// evalCall implements f(a1, ..., ak[, name=val]...) against the global
// function map (spec §4.5/§4.6).
func (ip *Interp) evalCall(n *ast.Node) (*value.Value, error) {
	positional, named, err := ip.collectArgs(n.Children)
	if err != nil {
		return nil, err
	}
	ip.stream.PushPosition(n)
	defer ip.stream.PopPosition()
	return ip.functions.Call(n.Root.Text, positional, named, ip.values, ip, ip.stream)
}

// checkParamMask enforces one formal parameter's type mask, grounded on
// registry.checkMask -- duplicated rather than shared because it is keyed
// here on a bare value.Param/TypeMask pair common to both registry.Entry
// and value.Method, and registry's own helper is unexported and tied to
// *registry.Entry's error-message shape.
func checkParamMask(callableName string, p value.Param, v *value.Value, stream *term.Stream) error {
	if p.Mask == 0 || p.Mask.Accepts(v.Type()) {
		return nil
	}
	argName := p.Name
	if argName == "" {
		argName = "?"
	}
	return stream.Raisef(term.TypeError,
		"%s(): argument %q expects %s, got %s", callableName, argName, p.Mask, v.Type())
}

// resolveCallArgs matches positional then named arguments against a
// callable's formal parameters, filling defaults and enforcing type masks
// (spec §4.5/§4.6), the same positional-then-keyword algorithm
// pkg/registry.resolveArgs implements for global functions, generalized
// here over a bare parameter list so it also serves method dispatch
// against value.Method's embedded Signature.
func resolveCallArgs(callableName string, params []value.Param, variadic bool, positional []*value.Value, named map[string]*value.Value, stream *term.Stream) ([]*value.Value, error) {
	result := make([]*value.Value, 0, len(params)+len(positional))
	consumed := make(map[string]bool, len(named))

	pi := 0
	for paramIdx := 0; paramIdx < len(params); paramIdx++ {
		p := params[paramIdx]
		last := paramIdx == len(params)-1

		if last && variadic {
			for ; pi < len(positional); pi++ {
				if err := checkParamMask(callableName, p, positional[pi], stream); err != nil {
					return nil, err
				}
				result = append(result, positional[pi])
			}
			continue
		}

		if pi < len(positional) {
			if err := checkParamMask(callableName, p, positional[pi], stream); err != nil {
				return nil, err
			}
			result = append(result, positional[pi])
			pi++
			continue
		}

		if p.Name != "" {
			if v, ok := named[p.Name]; ok {
				if err := checkParamMask(callableName, p, v, stream); err != nil {
					return nil, err
				}
				result = append(result, v)
				consumed[p.Name] = true
				continue
			}
		}

		if p.HasDefault {
			result = append(result, p.Default)
			continue
		}

		return nil, stream.Raisef(term.TypeError, "%s(): missing required argument %q", callableName, p.Name)
	}

	if pi < len(positional) && !variadic {
		return nil, stream.Raisef(term.TypeError,
			"%s(): too many positional arguments (got %d, want %d)", callableName, len(positional), len(params))
	}
	for name := range named {
		if !consumed[name] {
			return nil, stream.Raisef(term.TypeError, "%s(): no such named argument %q", callableName, name)
		}
	}
	return result, nil
}

// evalMethodCall implements x.m(a1, ..., ak[, name=val]...) against the
// receiver's element class method table (spec §4.6), invoking the method
// once per element of a vector receiver and concatenating the results,
// mirroring evalMember's per-element dispatch for properties.
func (ip *Interp) evalMethodCall(n *ast.Node) (*value.Value, error) {
	recv, err := ip.eval(n.Children[0])
	if err != nil {
		return nil, err
	}
	positional, named, err := ip.collectArgs(n.Children[1:])
	if err != nil {
		return nil, err
	}
	methodName := n.Root.Text

	ip.stream.PushPosition(n)
	defer ip.stream.PopPosition()

	if recv.Type() != value.Object {
		return nil, ip.stream.Raisef(term.TypeError, "method %s() receiver is not an object value", methodName)
	}
	class := recv.Class()
	if class == nil {
		return nil, ip.stream.Raisef(term.TypeError, "method call: value has no element class")
	}
	method, ok := class.Methods[methodName]
	if !ok {
		return nil, ip.stream.Raisef(term.IdentifierUndefined, "object class %s has no method %q", class.Name, methodName)
	}
	args, err := resolveCallArgs(methodName, method.Params, method.Variadic, positional, named, ip.stream)
	if err != nil {
		return nil, err
	}

	var acc *value.Value
	for i := 0; i < recv.Count(); i++ {
		inst, err := recv.ObjectAt(i)
		if err != nil {
			return nil, err
		}
		result, err := method.Call(inst, args, ip.values, ip)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = result.CopyValues(ip.values)
		} else if acc, err = acc.AppendFrom(result, ip.values); err != nil {
			return nil, ip.stream.Raisef(term.TypeError, "method %s(): %v", methodName, err)
		}
	}
	if acc == nil {
		return value.NullValue, nil
	}
	return acc, nil
}
