package registry

import (
	"bytes"
	"io"
	"os"
	"strings"

	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

// OutputContext is the subset of the host context that print/cat need: a
// destination for text output. A ctx that does not satisfy it falls back
// to os.Stdout, so the built-ins work even when the interpreter is driven
// headlessly in tests.
type OutputContext interface {
	Stdout() io.Writer
}

func outputOf(ctx any) io.Writer {
	if oc, ok := ctx.(OutputContext); ok {
		return oc.Stdout()
	}
	return os.Stdout
}

func stringify(name string, x *value.Value, stream *term.Stream) (string, error) {
	var buf bytes.Buffer
	if err := x.StreamTo(&buf); err != nil {
		return "", stream.Raisef(term.TypeError, "%s(): %v", name, err)
	}
	return buf.String(), nil
}

// stringBuiltins is the string-handling and textual-output group.
var stringBuiltins = []*Entry{
	{
		Signature: value.Signature{Name: "str", Return: value.MaskString, Params: []value.Param{{Name: "x", Mask: value.MaskAny}}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			s, err := stringify("str", args[0], stream)
			if err != nil {
				return nil, err
			}
			return value.NewString(pool, []string{s}), nil
		},
	},
	{
		Signature: value.Signature{Name: "print", Return: value.MaskNull, Params: []value.Param{{Name: "x", Mask: value.MaskAny}}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			s, err := stringify("print", args[0], stream)
			if err != nil {
				return nil, err
			}
			io.WriteString(outputOf(ctx), s+"\n")
			return value.NullInvisible, nil
		},
	},
	{
		Signature: value.Signature{Name: "cat", Return: value.MaskNull, Variadic: true,
			Params: []value.Param{{Name: "x", Mask: value.MaskAny}}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			w := outputOf(ctx)
			for i, a := range args {
				if i > 0 {
					io.WriteString(w, " ")
				}
				s, err := stringify("cat", a, stream)
				if err != nil {
					return nil, err
				}
				io.WriteString(w, s)
			}
			return value.NullInvisible, nil
		},
	},
	{
		Signature: value.Signature{Name: "paste", Return: value.MaskString, Variadic: true,
			Params: []value.Param{{Name: "x", Mask: value.MaskAny}}},
		Call: pasteWith(" "),
	},
	{
		Signature: value.Signature{Name: "paste0", Return: value.MaskString, Variadic: true,
			Params: []value.Param{{Name: "x", Mask: value.MaskAny}}},
		Call: pasteWith(""),
	},
	{
		Signature: value.Signature{Name: "strjoin", Return: value.MaskString, Params: []value.Param{
			{Name: "x", Mask: value.MaskString},
			{Name: "sep", Mask: value.MaskString, HasDefault: true, Default: value.NewStaticString("")},
		}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			x, sep := args[0], args[1]
			s, _ := sep.AsStringAt(0)
			parts := make([]string, x.Count())
			for i := range parts {
				parts[i], _ = x.AsStringAt(i)
			}
			return value.NewString(pool, []string{strings.Join(parts, s)}), nil
		},
	},
	{
		Signature: value.Signature{Name: "strsplit", Return: value.MaskString, Params: []value.Param{
			{Name: "x", Mask: value.MaskString},
			{Name: "sep", Mask: value.MaskString, HasDefault: true, Default: value.NewStaticString(" ")},
		}},
		Call: func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
			s, err := args[0].AsStringAt(0)
			if err != nil {
				return nil, stream.Raisef(term.TypeError, "strsplit(): %v", err)
			}
			sep, _ := args[1].AsStringAt(0)
			var parts []string
			if sep == "" {
				for _, r := range s {
					parts = append(parts, string(r))
				}
			} else {
				parts = strings.Split(s, sep)
			}
			return value.NewString(pool, parts), nil
		},
	},
}

// pasteWith builds paste/paste0's shared implementation: an element-wise
// join, where result element i is element i of every argument's string
// form joined by sep. The result is a string vector as long as the longest
// argument, shorter arguments recycling (the broadcasting convention used
// elsewhere in the core).
func pasteWith(sep string) Impl {
	return func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error) {
		n := 1
		for _, a := range args {
			if a.Count() > n {
				n = a.Count()
			}
		}
		out := make([]string, n)
		for i := 0; i < n; i++ {
			var parts []string
			for _, a := range args {
				if a.Count() == 0 {
					continue
				}
				idx := i % a.Count()
				s, err := a.AsStringAt(idx)
				if err != nil {
					return nil, stream.Raisef(term.TypeError, "paste(): %v", err)
				}
				parts = append(parts, s)
			}
			out[i] = strings.Join(parts, sep)
		}
		return value.NewString(pool, out), nil
	}
}
