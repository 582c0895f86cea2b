package registry

import (
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

// introspectBuiltins is the introspection and vector-manipulation group:
// type queries, identity/equality, symbol-table probing, and reordering.
var introspectBuiltins = []*Entry{
	{
		Signature: value.Signature{Name: "isNULL", Return: value.MaskLogical, Params: []value.Param{{Name: "x", Mask: value.MaskAny}}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			if args[0].Type() == value.Null {
				return value.LogicalTrue, nil
			}
			return value.LogicalFalse, nil
		},
	},
	{
		Signature: value.Signature{Name: "type", Return: value.MaskString, Params: []value.Param{{Name: "x", Mask: value.MaskAny}}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			return value.NewString(pool, []string{args[0].Type().String()}), nil
		},
	},
	{
		Signature: value.Signature{Name: "identical", Return: value.MaskLogical, Params: []value.Param{
			{Name: "x", Mask: value.MaskAny}, {Name: "y", Mask: value.MaskAny},
		}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			x, y := args[0], args[1]
			if x.Type() != y.Type() || x.Count() != y.Count() {
				return value.LogicalFalse, nil
			}
			for i := 0; i < x.Count(); i++ {
				c, err := x.Compare(i, y, i)
				if err != nil || c != 0 {
					return value.LogicalFalse, nil
				}
			}
			return value.LogicalTrue, nil
		},
	},
	{
		Signature: value.Signature{Name: "rev", Return: value.MaskAny, Params: []value.Param{{Name: "x", Mask: value.MaskAny}}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			x := args[0]
			n := x.Count()
			var acc *value.Value
			for i := n - 1; i >= 0; i-- {
				elem, err := x.GetValueAtIndex(i, pool)
				if err != nil {
					return nil, err
				}
				if acc == nil {
					acc = elem.CopyValues(pool)
				} else if acc, err = acc.AppendFrom(elem, pool); err != nil {
					return nil, stream.Raisef(term.TypeError, "rev(): %v", err)
				}
			}
			if acc == nil {
				return x.CopyValues(pool), nil
			}
			return acc, nil
		},
	},
	{
		Signature: value.Signature{Name: "sort", Return: value.MaskAny, Params: []value.Param{
			{Name: "x", Mask: value.MaskAny},
			{Name: "ascending", Mask: value.MaskLogical, HasDefault: true, Default: value.LogicalTrue},
		}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			x, asc := args[0], args[1]
			ascending, _ := asc.AsLogicalAt(0)
			order := make([]int, x.Count())
			for i := range order {
				order[i] = i
			}
			var sortErr error
			insertionSort(order, func(i, j int) bool {
				c, err := x.Compare(order[i], x, order[j])
				if err != nil {
					sortErr = err
					return false
				}
				if ascending {
					return c < 0
				}
				return c > 0
			})
			if sortErr != nil {
				return nil, stream.Raisef(term.TypeError, "sort(): %v", sortErr)
			}
			var acc *value.Value
			for _, idx := range order {
				elem, err := x.GetValueAtIndex(idx, pool)
				if err != nil {
					return nil, err
				}
				if acc == nil {
					acc = elem.CopyValues(pool)
				} else if acc, err = acc.AppendFrom(elem, pool); err != nil {
					return nil, stream.Raisef(term.TypeError, "sort(): %v", err)
				}
			}
			if acc == nil {
				return x.CopyValues(pool), nil
			}
			return acc, nil
		},
	},
	{
		Signature: value.Signature{Name: "which", Return: value.MaskInt, Params: []value.Param{{Name: "x", Mask: value.MaskLogical}}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			x := args[0]
			var out []int64
			for i := 0; i < x.Count(); i++ {
				b, _ := x.AsLogicalAt(i)
				if b {
					out = append(out, int64(i))
				}
			}
			return value.NewInt(pool, out), nil
		},
	},
	{
		Signature: value.Signature{Name: "ifelse", Return: value.MaskAny, Params: []value.Param{
			{Name: "test", Mask: value.MaskLogical},
			{Name: "yes", Mask: value.MaskAny},
			{Name: "no", Mask: value.MaskAny},
		}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			test, yes, no := args[0], args[1], args[2]
			var acc *value.Value
			for i := 0; i < test.Count(); i++ {
				b, _ := test.AsLogicalAt(i)
				src, idx := no, i%max1(no.Count())
				if b {
					src, idx = yes, i%max1(yes.Count())
				}
				elem, err := src.GetValueAtIndex(idx, pool)
				if err != nil {
					return nil, err
				}
				if acc == nil {
					acc = elem.CopyValues(pool)
				} else if acc, err = acc.AppendFrom(elem, pool); err != nil {
					return nil, stream.Raisef(term.TypeError, "ifelse(): %v", err)
				}
			}
			if acc == nil {
				return value.NullValue, nil
			}
			return acc, nil
		},
	},
	{
		Signature: value.Signature{Name: "exists", Return: value.MaskLogical, Params: []value.Param{{Name: "name", Mask: value.MaskString}}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			sc, ok := ctx.(ScopeContext)
			if !ok {
				return nil, stream.Raise(term.InternalInvariant, "exists(): no scope context available")
			}
			name, err := args[0].AsStringAt(0)
			if err != nil {
				return nil, stream.Raisef(term.TypeError, "exists(): %v", err)
			}
			id, found := sc.Names().Lookup(name)
			if !found {
				return value.LogicalFalse, nil
			}
			if sc.CurrentScope().ContainsSymbol(id) {
				return value.LogicalTrue, nil
			}
			return value.LogicalFalse, nil
		},
	},
	{
		Signature: value.Signature{Name: "rm", Return: value.MaskNull, Params: []value.Param{{Name: "name", Mask: value.MaskString}}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			sc, ok := ctx.(ScopeContext)
			if !ok {
				return nil, stream.Raise(term.InternalInvariant, "rm(): no scope context available")
			}
			name, err := args[0].AsStringAt(0)
			if err != nil {
				return nil, stream.Raisef(term.TypeError, "rm(): %v", err)
			}
			id := sc.Names().Intern(name)
			if err := sc.CurrentScope().RemoveSymbol(id, false, sc.Names(), sc.Stream()); err != nil {
				return nil, err
			}
			return value.NullInvisible, nil
		},
	},
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// insertionSort orders idx in place by less, which compares two elements by
// their current position in idx. O(n^2), adequate for the small vectors a
// script interpreter typically sorts; a stable library sort is unnecessary
// complexity for this core's scale.
func insertionSort(idx []int, less func(i, j int) bool) {
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
}
