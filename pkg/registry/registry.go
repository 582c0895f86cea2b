// Package registry implements the function/method registry (C7): an
// immutable name-to-signature map computed once at warmup, with arity and
// per-argument type-mask enforcement at call time, and a Context-extensible
// layer above the built-in map, grounded on the teacher's BuiltinFn table
// (eval/builtin-fn.go) generalized from reflection-based dispatch to the
// explicit type-mask dispatch spec'd for this core.
package registry

import (
	"eidos.dev/eidos/pkg/intern"
	"eidos.dev/eidos/pkg/symtab"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

// Impl is a function implementation: the resolved argument vector in
// declared-parameter order, the pool for any result allocation, the
// diagnostic stream for errors a type mask cannot catch (an empty-vector
// reduction, a malformed sequence), and the opaque host context threaded in
// from the interpreter. A function that needs scope or interner access
// (exists, rm) type-asserts ctx against ScopeContext.
type Impl func(args []*value.Value, pool *value.Pool, stream *term.Stream, ctx any) (*value.Value, error)

// Entry is one registered callable: its signature plus implementation.
type Entry struct {
	value.Signature
	Call Impl
}

// Map is an immutable name-to-Entry table, optionally layered above a
// parent map. The built-in map has no parent; an embedding Context
// produces an extended Map with Parent set to the built-in map, so lookups
// see both without copying the built-in entries.
type Map struct {
	Parent  *Map
	entries map[string]*Entry
}

// NewMap builds a Map from entries. The returned Map is immutable: callers
// must not mutate the entries slice's Entry values afterward.
func NewMap(parent *Map, entries []*Entry) *Map {
	m := &Map{Parent: parent, entries: make(map[string]*Entry, len(entries))}
	for _, e := range entries {
		m.entries[e.Name] = e
	}
	return m
}

// Lookup finds name in m or, failing that, in m's ancestor chain.
func (m *Map) Lookup(name string) (*Entry, bool) {
	for t := m; t != nil; t = t.Parent {
		if e, ok := t.entries[name]; ok {
			return e, true
		}
	}
	return nil, false
}

// ScopeContext is the subset of the interpreter's host context that
// introspection built-ins (exists, rm) need. Other built-ins receive ctx
// opaquely and never type-assert it.
type ScopeContext interface {
	CurrentScope() *symtab.Scope
	Names() *intern.Table
	Stream() *term.Stream
}

// Call resolves name, matches args against its signature, and invokes its
// implementation. The diagnostic for an unrecognized name reuses
// IdentifierUndefined: a function name is looked up the same way a
// variable name is, just in a different namespace.
func (m *Map) Call(name string, positional []*value.Value, named map[string]*value.Value, pool *value.Pool, ctx any, stream *term.Stream) (*value.Value, error) {
	e, ok := m.Lookup(name)
	if !ok {
		return nil, stream.Raisef(term.IdentifierUndefined, "unrecognized function name %q", name)
	}
	args, err := resolveArgs(e, positional, named, stream)
	if err != nil {
		return nil, err
	}
	return e.Call(args, pool, stream, ctx)
}

// resolveArgs matches positional then named arguments against sig's
// formal parameters, filling defaults and enforcing type masks, per
// spec §4.5: "matches positional then keyword arguments, fills defaults,
// enforces type masks, invokes the implementation."
func resolveArgs(e *Entry, positional []*value.Value, named map[string]*value.Value, stream *term.Stream) ([]*value.Value, error) {
	params := e.Params
	result := make([]*value.Value, 0, len(params)+len(positional))
	consumed := make(map[string]bool, len(named))

	pi := 0 // index into positional
	for paramIdx := 0; paramIdx < len(params); paramIdx++ {
		p := params[paramIdx]
		last := paramIdx == len(params)-1

		if last && e.Variadic {
			for ; pi < len(positional); pi++ {
				if err := checkMask(e.Name, p, positional[pi], stream); err != nil {
					return nil, err
				}
				result = append(result, positional[pi])
			}
			continue
		}

		if pi < len(positional) {
			if err := checkMask(e.Name, p, positional[pi], stream); err != nil {
				return nil, err
			}
			result = append(result, positional[pi])
			pi++
			continue
		}

		if p.Name != "" {
			if v, ok := named[p.Name]; ok {
				if err := checkMask(e.Name, p, v, stream); err != nil {
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

		return nil, stream.Raisef(term.TypeError,
			"%s(): missing required argument %q", e.Name, p.Name)
	}

	if pi < len(positional) && !e.Variadic {
		return nil, stream.Raisef(term.TypeError,
			"%s(): too many positional arguments (got %d, want %d)", e.Name, len(positional), len(params))
	}
	for name := range named {
		if !consumed[name] {
			return nil, stream.Raisef(term.TypeError,
				"%s(): no such named argument %q", e.Name, name)
		}
	}
	return result, nil
}

func checkMask(fnName string, p value.Param, v *value.Value, stream *term.Stream) error {
	if p.Mask == 0 || p.Mask.Accepts(v.Type()) {
		return nil
	}
	argName := p.Name
	if argName == "" {
		argName = "?"
	}
	return stream.Raisef(term.TypeError,
		"%s(): argument %q expects %s, got %s", fnName, argName, p.Mask, v.Type())
}
