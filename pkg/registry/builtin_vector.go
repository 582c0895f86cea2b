package registry

import (
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

// concatenate builds the c() implementation: fold every argument onto a
// private copy of the first via AppendFrom, promoting through the numeric
// lattice as needed. c() with no arguments returns NULL.
func concatenate(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
	if len(args) == 0 {
		return value.NullValue, nil
	}
	acc := args[0].CopyValues(pool)
	for _, a := range args[1:] {
		var err error
		acc, err = acc.AppendFrom(a, pool)
		if err != nil {
			return nil, stream.Raisef(term.TypeError, "c(): %v", err)
		}
	}
	return acc, nil
}

func coercion(name string, mask value.TypeMask, convert func(x *value.Value, pool *value.Pool, stream *term.Stream) (*value.Value, error)) *Entry {
	return &Entry{
		Signature: value.Signature{
			Name:   name,
			Return: mask,
			Params: []value.Param{{Name: "x", Mask: value.MaskAny}},
		},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			return convert(args[0], pool, stream)
		},
	}
}

func toFloat(x *value.Value, pool *value.Pool, stream *term.Stream) (*value.Value, error) {
	out := make([]float64, x.Count())
	for i := range out {
		f, err := x.AsFloatAt(i)
		if err != nil {
			return nil, stream.Raisef(term.TypeError, "float(): %v", err)
		}
		out[i] = f
	}
	return value.NewFloat(pool, out), nil
}

func toInteger(x *value.Value, pool *value.Pool, stream *term.Stream) (*value.Value, error) {
	out := make([]int64, x.Count())
	for i := range out {
		n, err := x.AsIntAt(i)
		if err != nil {
			return nil, stream.Raisef(term.TypeError, "integer(): %v", err)
		}
		out[i] = n
	}
	return value.NewInt(pool, out), nil
}

func toLogical(x *value.Value, pool *value.Pool, stream *term.Stream) (*value.Value, error) {
	out := make([]bool, x.Count())
	for i := range out {
		b, err := x.AsLogicalAt(i)
		if err != nil {
			return nil, stream.Raisef(term.TypeError, "logical(): %v", err)
		}
		out[i] = b
	}
	return value.NewLogical(pool, out), nil
}

// emptyLike returns a length-0 value of x's kind, used when rep()'s count
// argument is zero: CopyValues has no "copy zero elements" mode, so an
// explicit empty constructor per kind is needed instead.
func emptyLike(x *value.Value, pool *value.Pool) *value.Value {
	switch x.Type() {
	case value.Logical:
		return value.NewLogical(pool, nil)
	case value.Int:
		return value.NewInt(pool, nil)
	case value.Float:
		return value.NewFloat(pool, nil)
	case value.String:
		return value.NewString(pool, nil)
	case value.Object:
		return value.NewObject(pool, x.Class(), nil)
	default:
		return value.NullValue
	}
}

func toString(x *value.Value, pool *value.Pool, stream *term.Stream) (*value.Value, error) {
	out := make([]string, x.Count())
	for i := range out {
		s, err := x.AsStringAt(i)
		if err != nil {
			return nil, stream.Raisef(term.TypeError, "string(): %v", err)
		}
		out[i] = s
	}
	return value.NewString(pool, out), nil
}

// vectorBuiltins is the vector-construction group: concatenation, the four
// type coercions, repetition, and arithmetic sequences.
var vectorBuiltins = []*Entry{
	{
		Signature: value.Signature{Name: "c", Return: value.MaskAny, Variadic: true,
			Params: []value.Param{{Name: "x", Mask: value.MaskAny}}},
		Call: concatenate,
	},
	coercion("float", value.MaskFloat, toFloat),
	coercion("integer", value.MaskInt, toInteger),
	coercion("logical", value.MaskLogical, toLogical),
	coercion("string", value.MaskString, toString),
	{
		Signature: value.Signature{Name: "rep", Return: value.MaskAny, Params: []value.Param{
			{Name: "x", Mask: value.MaskAny}, {Name: "count", Mask: value.MaskInt},
		}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			x := args[0]
			count, err := args[1].AsIntAt(0)
			if err != nil || count < 0 {
				return nil, stream.Raisef(term.TypeError, "rep(): count must be a non-negative integer")
			}
			if count == 0 {
				return emptyLike(x, pool), nil
			}
			acc := x.CopyValues(pool)
			for i := int64(1); i < count; i++ {
				if acc, err = acc.AppendFrom(x, pool); err != nil {
					return nil, stream.Raisef(term.TypeError, "rep(): %v", err)
				}
			}
			return acc, nil
		},
	},
	{
		Signature: value.Signature{Name: "repEach", Return: value.MaskAny, Params: []value.Param{
			{Name: "x", Mask: value.MaskAny}, {Name: "count", Mask: value.MaskInt},
		}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			x := args[0]
			count, err := args[1].AsIntAt(0)
			if err != nil || count < 0 {
				return nil, stream.Raisef(term.TypeError, "repEach(): count must be a non-negative integer")
			}
			if count == 0 {
				return emptyLike(x, pool), nil
			}
			var acc *value.Value
			for i := 0; i < x.Count(); i++ {
				elem, err := x.GetValueAtIndex(i, pool)
				if err != nil {
					return nil, err
				}
				for j := int64(0); j < count; j++ {
					if acc == nil {
						acc = elem.CopyValues(pool)
					} else if acc, err = acc.AppendFrom(elem, pool); err != nil {
						return nil, stream.Raisef(term.TypeError, "repEach(): %v", err)
					}
				}
			}
			if acc == nil {
				return x.CopyValues(pool), nil
			}
			return acc, nil
		},
	},
	{
		Signature: value.Signature{Name: "seq", Return: value.MaskFloat, Params: []value.Param{
			{Name: "from", Mask: value.MaskNumeric},
			{Name: "to", Mask: value.MaskNumeric},
			{Name: "by", Mask: value.MaskNumeric, HasDefault: true, Default: value.FloatOne},
		}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			from, err1 := args[0].AsFloatAt(0)
			to, err2 := args[1].AsFloatAt(0)
			by, err3 := args[2].AsFloatAt(0)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, stream.Raisef(term.TypeError, "seq(): endpoints and step must be finite numbers")
			}
			if by == 0 {
				return nil, stream.Raisef(term.TypeError, "seq(): step must not be zero")
			}
			var out []float64
			if by > 0 {
				for v := from; v <= to+1e-9; v += by {
					out = append(out, v)
				}
			} else {
				for v := from; v >= to-1e-9; v += by {
					out = append(out, v)
				}
			}
			return value.NewFloat(pool, out), nil
		},
	},
	{
		Signature: value.Signature{Name: "size", Return: value.MaskInt, Params: []value.Param{{Name: "x", Mask: value.MaskAny}}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			return value.NewInt(pool, []int64{int64(args[0].Count())}), nil
		},
	},
	{
		Signature: value.Signature{Name: "length", Return: value.MaskInt, Params: []value.Param{{Name: "x", Mask: value.MaskAny}}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			return value.NewInt(pool, []int64{int64(args[0].Count())}), nil
		},
	},
}
