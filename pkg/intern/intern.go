// Package intern implements the string-ID interner (C10): canonical integer
// IDs for symbol and function names, so that symbol tables and the function
// registry can key on a comparable int instead of repeatedly hashing or
// comparing strings.
package intern

// Table interns strings to small integer IDs. Like the rest of the core
// (pkg/value, pkg/symtab), it is not safe for concurrent use: the runtime's
// scheduling model is single-threaded and cooperative, so callers serialize
// externally rather than paying for a lock on every lookup.
type Table struct {
	byName map[string]ID
	byID   []string
}

// ID is an interned name, stable for the table's lifetime.
type ID int

// New creates an empty interner.
func New() *Table {
	return &Table{byName: make(map[string]ID)}
}

// Intern returns the ID for name, assigning a new one if this is the first
// occurrence.
func (t *Table) Intern(name string) ID {
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := ID(len(t.byID))
	t.byID = append(t.byID, name)
	t.byName[name] = id
	return id
}

// Lookup returns the ID already assigned to name, without interning it.
func (t *Table) Lookup(name string) (ID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Name returns the string an ID was interned from. It panics if id was
// never produced by this table, since that indicates a caller bug (an ID
// leaked across tables, or a stale ID after the table was discarded) rather
// than a recoverable runtime condition.
func (t *Table) Name(id ID) string {
	if int(id) < 0 || int(id) >= len(t.byID) {
		panic("intern: invalid ID")
	}
	return t.byID[id]
}

// Len returns the number of distinct interned strings.
func (t *Table) Len() int { return len(t.byID) }
