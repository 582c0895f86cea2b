package registry

import (
	"math"

	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

// elementwise wraps a float->float math function into an Impl that applies
// it to every element of a single numeric argument, preserving length.
func elementwise(name string, f func(float64) float64) Impl {
	return func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
		x := args[0]
		out := make([]float64, x.Count())
		for i := range out {
			v, err := x.AsFloatAt(i)
			if err != nil {
				return nil, stream.Raisef(term.TypeError, "%s(): %v", name, err)
			}
			out[i] = f(v)
		}
		return value.NewFloat(pool, out), nil
	}
}

func mathEntry(name string, f func(float64) float64) *Entry {
	return &Entry{
		Signature: value.Signature{
			Name:   name,
			Return: value.MaskFloat,
			Params: []value.Param{{Name: "x", Mask: value.MaskNumeric}},
		},
		Call: elementwise(name, f),
	}
}

// mathBuiltins is the elementwise numeric group of eidos_functions.h's
// function-identifier enum: unary float transforms over a numeric vector.
var mathBuiltins = []*Entry{
	mathEntry("abs", math.Abs),
	mathEntry("sqrt", math.Sqrt),
	mathEntry("exp", math.Exp),
	mathEntry("log", math.Log),
	mathEntry("log2", math.Log2),
	mathEntry("log10", math.Log10),
	mathEntry("floor", math.Floor),
	mathEntry("ceil", math.Ceil),
	mathEntry("round", math.Round),
	mathEntry("trunc", math.Trunc),
}
