package registry

// builtinMap is the built-in function map, computed once at warmup and
// shared process-wide (spec §4.5). It has no parent; an embedding Context
// layers its own additions above it with NewMap(Builtins(), ...), the same
// "needed to work around init loop" pattern the teacher's builtin table
// uses for eval's BuiltinFn list.
var builtinMap *Map

func init() {
	var all []*Entry
	all = append(all, mathBuiltins...)
	all = append(all, statsBuiltins...)
	all = append(all, vectorBuiltins...)
	all = append(all, stringBuiltins...)
	all = append(all, introspectBuiltins...)
	builtinMap = NewMap(nil, all)
}

// Builtins returns the process-wide built-in function map.
func Builtins() *Map { return builtinMap }
