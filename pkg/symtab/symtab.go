// Package symtab implements the symbol table chain (C6): scopes holding
// intrinsic constants, user-defined constants, and mutable variables, with
// strict redefinition rules and a one-way compact-array-to-hash storage
// transition, grounded on the original symbol table's internal-slot design.
package symtab

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"eidos.dev/eidos/pkg/intern"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

// Kind discriminates a scope's role in the chain.
type Kind uint8

const (
	IntrinsicConstants Kind = iota
	DefinedConstants
	Variables
)

func (k Kind) String() string {
	switch k {
	case IntrinsicConstants:
		return "IntrinsicConstants"
	case DefinedConstants:
		return "DefinedConstants"
	case Variables:
		return "Variables"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// arrayCapacity is the small-array storage's capacity (spec recommends 32)
// before a scope migrates one-way to a hash map.
const arrayCapacity = 32

type slot struct {
	name intern.ID
	val  *value.Value
}

// Scope is one link in the symbol table chain. A non-root scope has exactly
// one parent, and a parent is never a Variables scope (parents only ever
// hold constants): the chain always narrows toward mutability as you walk
// from root to leaf.
type Scope struct {
	kind   Kind
	parent *Scope

	usingArray bool
	array      []slot
	hash       map[intern.ID]*value.Value
}

// NewIntrinsicScope builds the root IntrinsicConstants scope, pre-populated
// with T, F, NULL, PI, E, INF, NAN as required by spec §4.4. pool supplies
// storage for PI, E and NAN, which (unlike T, F, NULL and INF) have no
// process-wide static singleton.
func NewIntrinsicScope(names *intern.Table, pool *value.Pool) *Scope {
	s := &Scope{kind: IntrinsicConstants, usingArray: true}
	s.initializeConstant(names.Intern("T"), value.LogicalTrue)
	s.initializeConstant(names.Intern("F"), value.LogicalFalse)
	s.initializeConstant(names.Intern("NULL"), value.NullValue)
	s.initializeConstant(names.Intern("PI"), value.NewFloat(pool, []float64{math.Pi}))
	s.initializeConstant(names.Intern("E"), value.NewFloat(pool, []float64{math.E}))
	s.initializeConstant(names.Intern("INF"), value.FloatInf)
	s.initializeConstant(names.Intern("NAN"), value.NewFloat(pool, []float64{math.NaN()}))
	return s
}

// NewChild creates a scope of the given kind chained to parent. kind must be
// DefinedConstants or Variables; parent must not itself be a Variables scope.
func NewChild(kind Kind, parent *Scope) *Scope {
	return &Scope{kind: kind, parent: parent, usingArray: true}
}

// Kind returns the scope's role.
func (s *Scope) Kind() Kind { return s.kind }

// Parent returns the scope's parent, or nil for the root.
func (s *Scope) Parent() *Scope { return s.parent }

func (s *Scope) isConstant() bool { return s.kind != Variables }

// ContainsSymbol reports whether this scope or any ancestor holds id.
func (s *Scope) ContainsSymbol(id intern.ID) bool {
	if _, ok := s.localValue(id); ok {
		return true
	}
	if s.parent != nil {
		return s.parent.ContainsSymbol(id)
	}
	return false
}

// localValue looks up id in this scope only, without walking ancestors.
func (s *Scope) localValue(id intern.ID) (*value.Value, bool) {
	if s.usingArray {
		for i := len(s.array) - 1; i >= 0; i-- {
			if s.array[i].name == id {
				return s.array[i].val, true
			}
		}
		return nil, false
	}
	v, ok := s.hash[id]
	return v, ok
}

// GetValue walks self to root and returns the value bound to id, failing
// IdentifierUndefined at the root if no scope holds it.
func (s *Scope) GetValue(id intern.ID, names *intern.Table, stream *term.Stream) (*value.Value, error) {
	v, _, err := s.GetValueConst(id, names, stream)
	return v, err
}

// GetValueConst is GetValue plus an out-parameter reporting whether the hit
// came from a constant scope.
func (s *Scope) GetValueConst(id intern.ID, names *intern.Table, stream *term.Stream) (*value.Value, bool, error) {
	if v, ok := s.localValue(id); ok {
		return v, s.isConstant(), nil
	}
	if s.parent != nil {
		return s.parent.GetValueConst(id, names, stream)
	}
	err := stream.Raisef(term.IdentifierUndefined, "undefined identifier %q", names.Name(id))
	return nil, false, err
}

// switchToHash migrates the array storage to a hash map. One-way: there is
// no path back to array storage for this scope.
func (s *Scope) switchToHash() {
	if !s.usingArray {
		return
	}
	s.hash = make(map[intern.ID]*value.Value, len(s.array)*2)
	for _, sl := range s.array {
		s.hash[sl.name] = sl.val
	}
	s.usingArray = false
	s.array = nil
}

// upsertLocal writes v under id in this scope's own storage, migrating to
// hash storage first if an array insert would exceed capacity. It assumes
// the caller has already checked for redefinition-of-constant.
//
// v is acquired before any previous occupant of the slot is released, so
// that a self-referential store (the "x = x" case SetValueForSymbol lets
// through once rhs and the existing binding are the same *value.Value)
// never drops the refcount to zero and frees the value out from under
// itself. This is the one place a scope slot's ownership is ever
// recorded: a value sitting in exactly one slot carries refcount 1, and
// every additional slot that comes to share it (see copyIfShared) bumps
// it further, which is what lets pkg/interp's copy-on-write checks tell a
// private value apart from an aliased one.
func (s *Scope) upsertLocal(id intern.ID, v *value.Value) {
	v.Acquire()
	if s.usingArray {
		for i := range s.array {
			if s.array[i].name == id {
				s.array[i].val.Release()
				s.array[i].val = v
				return
			}
		}
		if len(s.array) >= arrayCapacity {
			// id was not found in the scan above, and switchToHash only
			// transfers existing array entries, so it cannot already be
			// in s.hash: nothing to release here, this is a fresh insert.
			s.switchToHash()
			s.hash[id] = v
			return
		}
		s.array = append(s.array, slot{id, v})
		return
	}
	if old, ok := s.hash[id]; ok {
		old.Release()
	}
	s.hash[id] = v
}

// initializeConstant installs a binding directly, without the redefinition
// check SetValueForSymbol performs: used only at scope construction time,
// when the caller guarantees the name is not already bound.
func (s *Scope) initializeConstant(id intern.ID, v *value.Value) {
	s.upsertLocal(id, v)
}

// copyIfShared returns v unchanged if it is exclusively owned and visible,
// or a private copy otherwise. "Exclusively owned" here means v is not yet
// bound anywhere (refcount 0, e.g. a brand new expression result) or bound
// in exactly one slot already (refcount 1, e.g. pkg/interp's "y = x"
// aliasing a bare identifier's live value straight through instead of
// copying it). In that second case upsertLocal is about to acquire v into
// a second slot, so the two slots end up sharing the same *value.Value;
// the refcount climbing past 1 is what later forces a private copy the
// moment either side is mutated in place. A value already shared by two
// or more slots, or marked invisible, is always copied instead.
func copyIfShared(v *value.Value, pool *value.Pool) *value.Value {
	if !v.IsStatic() && v.RefCount() <= 1 && !v.IsInvisible() {
		return v
	}
	return v.CopyValues(pool)
}

// SetValueForSymbol upserts id in this scope, which must be a Variables
// scope. It fails RedefinitionOfConstant if id is already bound in an
// ancestor (necessarily a constant scope, since only Variables scopes can
// be written to and a Variables scope is never anyone's parent). The value
// is copied unless it is already uniquely owned and visible.
func (s *Scope) SetValueForSymbol(id intern.ID, v *value.Value, pool *value.Pool, names *intern.Table, stream *term.Stream) error {
	if s.kind != Variables {
		return stream.Raise(term.InternalInvariant, "SetValueForSymbol called on a non-Variables scope")
	}
	if _, local := s.localValue(id); !local && s.parent != nil && s.parent.ContainsSymbol(id) {
		return stream.Raisef(term.RedefinitionOfConstant,
			"identifier %q cannot be redefined because it is a constant", names.Name(id))
	}
	s.upsertLocal(id, copyIfShared(v, pool))
	return nil
}

// SetValueForSymbolNoCopy is SetValueForSymbol without the copy, for
// performance-critical in-place mutation: the for-loop induction variable
// and subscript-assignment reification are the only sanctioned callers.
// Invisible values are rejected since the symbol table never stores one.
func (s *Scope) SetValueForSymbolNoCopy(id intern.ID, v *value.Value, names *intern.Table, stream *term.Stream) error {
	if v.IsInvisible() {
		return stream.Raise(term.InternalInvariant, "SetValueForSymbolNoCopy called with an invisible value")
	}
	if s.kind != Variables {
		return stream.Raise(term.InternalInvariant, "SetValueForSymbolNoCopy called on a non-Variables scope")
	}
	if _, local := s.localValue(id); !local && s.parent != nil && s.parent.ContainsSymbol(id) {
		return stream.Raisef(term.RedefinitionOfConstant,
			"identifier %q cannot be redefined because it is a constant", names.Name(id))
	}
	s.upsertLocal(id, v)
	return nil
}

// DefineConstantForSymbol installs id as a defined constant, reachable from
// s. It finds the nearest DefinedConstants scope in the chain, splicing one
// in between the nearest Variables scope and the IntrinsicConstants root if
// none exists yet. Fails if the name is already bound anywhere in the chain.
func (s *Scope) DefineConstantForSymbol(id intern.ID, v *value.Value, pool *value.Pool, names *intern.Table, stream *term.Stream) error {
	if s.ContainsSymbol(id) {
		return stream.Raisef(term.RedefinitionOfConstant, "identifier %q is already defined", names.Name(id))
	}

	defined := s.nearestDefinedConstants()
	if defined == nil {
		child := s.nearestChildOfIntrinsicRoot()
		if child == nil {
			return stream.Raise(term.InternalInvariant,
				"could not find a child of the intrinsic constants scope")
		}
		defined = NewChild(DefinedConstants, child.parent)
		child.parent = defined
	}

	defined.initializeConstant(id, copyIfShared(v, pool))
	return nil
}

// nearestDefinedConstants returns the closest DefinedConstants scope at or
// above s, or nil if the chain has none yet.
func (s *Scope) nearestDefinedConstants() *Scope {
	for t := s; t != nil; t = t.parent {
		if t.kind == DefinedConstants {
			return t
		}
	}
	return nil
}

// nearestChildOfIntrinsicRoot returns the scope at or above s whose direct
// parent is the IntrinsicConstants root, i.e. the splice point for a new
// DefinedConstants scope.
func (s *Scope) nearestChildOfIntrinsicRoot() *Scope {
	for t := s; t != nil; t = t.parent {
		if t.parent != nil && t.parent.kind == IntrinsicConstants {
			return t
		}
	}
	return nil
}

// RemoveSymbol removes id from the nearest scope in the chain that holds
// it. Intrinsic constants may never be removed; other constants only with
// allowConstant set. The removed slot's value is released, balancing the
// acquire upsertLocal took when it was stored.
func (s *Scope) RemoveSymbol(id intern.ID, allowConstant bool, names *intern.Table, stream *term.Stream) error {
	if s.usingArray {
		for i := len(s.array) - 1; i >= 0; i-- {
			if s.array[i].name != id {
				continue
			}
			if s.kind != Variables {
				if s.kind == IntrinsicConstants {
					return stream.Raisef(term.InternalInvariant,
						"identifier %q is an intrinsic constant and cannot be removed", names.Name(id))
				}
				if !allowConstant {
					return stream.Raisef(term.InternalInvariant,
						"identifier %q is a constant and cannot be removed", names.Name(id))
				}
			}
			s.array[i].val.Release()
			last := len(s.array) - 1
			s.array[i] = s.array[last]
			s.array = s.array[:last]
			return nil
		}
	} else if v, ok := s.hash[id]; ok {
		if s.kind != Variables {
			if s.kind == IntrinsicConstants {
				return stream.Raisef(term.InternalInvariant,
					"identifier %q is an intrinsic constant and cannot be removed", names.Name(id))
			}
			if !allowConstant {
				return stream.Raisef(term.InternalInvariant,
					"identifier %q is a constant and cannot be removed", names.Name(id))
			}
		}
		v.Release()
		delete(s.hash, id)
		return nil
	}
	if s.parent != nil {
		return s.parent.RemoveSymbol(id, allowConstant, names, stream)
	}
	return nil
}

// EnumerateNames returns the bound names assembled root-first: parent names
// precede local names, so shadowing is visible as adjacent duplicates in
// enumeration order rather than silently hidden.
func (s *Scope) EnumerateNames(includeConstants, includeVariables bool) []intern.ID {
	var names []intern.ID
	if s.parent != nil {
		names = s.parent.EnumerateNames(includeConstants, includeVariables)
	}
	include := (includeConstants && s.kind != Variables) || (includeVariables && s.kind == Variables)
	if !include {
		return names
	}
	if s.usingArray {
		for _, sl := range s.array {
			names = append(names, sl.name)
		}
	} else {
		ids := make([]intern.ID, 0, len(s.hash))
		for id := range s.hash {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		names = append(names, ids...)
	}
	return names
}

// String renders the scope chain's visible bindings, one per line, sorted
// by name: "name => (type) value" for constants, "name -> (type) value" for
// variables, matching the host-facing listing convention.
func (s *Scope) String(names *intern.Table) string {
	ids := s.EnumerateNames(true, true)
	byName := map[string]intern.ID{}
	sorted := make([]string, 0, len(ids))
	for _, id := range ids {
		n := names.Name(id)
		if _, dup := byName[n]; !dup {
			sorted = append(sorted, n)
		}
		byName[n] = id
	}
	sort.Strings(sorted)

	var out []byte
	for _, n := range sorted {
		id := byName[n]
		v, isConst, _ := s.GetValueConst(id, names, nil)
		arrow := " -> ("
		if isConst {
			arrow = " => ("
		}
		out = append(out, n...)
		out = append(out, arrow...)
		out = append(out, v.Type().String()...)
		out = append(out, ") "...)
		var buf bytes.Buffer
		v.StreamTo(&buf)
		out = append(out, buf.Bytes()...)
		out = append(out, '\n')
	}
	return string(out)
}
