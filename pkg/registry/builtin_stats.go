package registry

import (
	"math"

	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

func numericParam(name string) value.Param {
	return value.Param{Name: name, Mask: value.MaskNumeric}
}

func floats(name string, x *value.Value, stream *term.Stream) ([]float64, error) {
	out := make([]float64, x.Count())
	for i := range out {
		f, err := x.AsFloatAt(i)
		if err != nil {
			return nil, stream.Raisef(term.TypeError, "%s(): %v", name, err)
		}
		out[i] = f
	}
	return out, nil
}

func reduceEmptyError(name string, stream *term.Stream) error {
	return stream.Raisef(term.TypeError, "%s(): argument is an empty vector", name)
}

// statsBuiltins is the summary-statistics group of eidos_functions.h's
// function-identifier enum: whole-vector reductions over a numeric vector.
var statsBuiltins = []*Entry{
	{
		Signature: value.Signature{Name: "sum", Return: value.MaskFloat, Params: []value.Param{numericParam("x")}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			xs, err := floats("sum", args[0], stream)
			if err != nil {
				return nil, err
			}
			var total float64
			for _, v := range xs {
				total += v
			}
			return value.NewFloat(pool, []float64{total}), nil
		},
	},
	{
		Signature: value.Signature{Name: "product", Return: value.MaskFloat, Params: []value.Param{numericParam("x")}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			xs, err := floats("product", args[0], stream)
			if err != nil {
				return nil, err
			}
			total := 1.0
			for _, v := range xs {
				total *= v
			}
			return value.NewFloat(pool, []float64{total}), nil
		},
	},
	{
		Signature: value.Signature{Name: "min", Return: value.MaskFloat, Params: []value.Param{numericParam("x")}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			xs, err := floats("min", args[0], stream)
			if err != nil {
				return nil, err
			}
			if len(xs) == 0 {
				return nil, reduceEmptyError("min", stream)
			}
			m := xs[0]
			for _, v := range xs[1:] {
				m = math.Min(m, v)
			}
			return value.NewFloat(pool, []float64{m}), nil
		},
	},
	{
		Signature: value.Signature{Name: "max", Return: value.MaskFloat, Params: []value.Param{numericParam("x")}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			xs, err := floats("max", args[0], stream)
			if err != nil {
				return nil, err
			}
			if len(xs) == 0 {
				return nil, reduceEmptyError("max", stream)
			}
			m := xs[0]
			for _, v := range xs[1:] {
				m = math.Max(m, v)
			}
			return value.NewFloat(pool, []float64{m}), nil
		},
	},
	{
		Signature: value.Signature{Name: "range", Return: value.MaskFloat, Params: []value.Param{numericParam("x")}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			xs, err := floats("range", args[0], stream)
			if err != nil {
				return nil, err
			}
			if len(xs) == 0 {
				return nil, reduceEmptyError("range", stream)
			}
			lo, hi := xs[0], xs[0]
			for _, v := range xs[1:] {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
			return value.NewFloat(pool, []float64{lo, hi}), nil
		},
	},
	{
		Signature: value.Signature{Name: "mean", Return: value.MaskFloat, Params: []value.Param{numericParam("x")}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			xs, err := floats("mean", args[0], stream)
			if err != nil {
				return nil, err
			}
			if len(xs) == 0 {
				return nil, reduceEmptyError("mean", stream)
			}
			var total float64
			for _, v := range xs {
				total += v
			}
			return value.NewFloat(pool, []float64{total / float64(len(xs))}), nil
		},
	},
	{
		Signature: value.Signature{Name: "sd", Return: value.MaskFloat, Params: []value.Param{numericParam("x")}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			xs, err := floats("sd", args[0], stream)
			if err != nil {
				return nil, err
			}
			if len(xs) < 2 {
				return nil, stream.Raisef(term.TypeError, "sd(): argument must have at least two elements")
			}
			var total float64
			for _, v := range xs {
				total += v
			}
			mean := total / float64(len(xs))
			var sumSq float64
			for _, v := range xs {
				d := v - mean
				sumSq += d * d
			}
			return value.NewFloat(pool, []float64{math.Sqrt(sumSq / float64(len(xs)-1))}), nil
		},
	},
}
