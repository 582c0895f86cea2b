package value

// Pool is a slab allocator for Value nodes. It carves fixed-size chunks and
// hands them out in O(1); release resets the value (truncating, not freeing,
// its vec slices so a later reuse can refill them) and returns it to a free
// list. The pool is single-threaded: callers must
// serialize externally, per the core's cooperative scheduling model.
type Pool struct {
	chunkSize int
	chunks    [][]Value
	free      *Value
	live      int
}

// NewPool creates a Pool that grows in chunks of chunkSize values. A
// chunkSize of 0 uses a reasonable default.
func NewPool(chunkSize int) *Pool {
	if chunkSize <= 0 {
		chunkSize = 256
	}
	return &Pool{chunkSize: chunkSize}
}

// grow carves a new chunk and threads all of its slots onto the free list.
// Slot addresses are stable for the lifetime of the pool: growth appends a
// new backing array rather than reallocating an existing one.
func (p *Pool) grow() {
	chunk := make([]Value, p.chunkSize)
	p.chunks = append(p.chunks, chunk)
	for i := range chunk {
		chunk[i].nextFree = p.free
		p.free = &chunk[i]
	}
}

// alloc pulls one Value off the free list, growing the pool if necessary.
func (p *Pool) alloc() *Value {
	if p.free == nil {
		p.grow()
	}
	v := p.free
	p.free = v.nextFree
	v.nextFree = nil
	p.live++
	return v
}

// release resets a Value's inner storage and returns its chunk to the free
// list. It must only be called once the value's refcount has reached zero.
func (p *Pool) release(v *Value) {
	v.reset()
	v.nextFree = p.free
	p.free = v
	p.live--
}

// Live returns the number of values currently allocated (not on the free
// list). Exposed for diagnostics and tests.
func (p *Pool) Live() int { return p.live }

// newValue allocates a value of the given kind from the pool with a
// refcount of zero (not yet held by anyone).
func (p *Pool) newValue(k Kind) *Value {
	v := p.alloc()
	v.kind = k
	v.pool = p
	v.refcount = 0
	v.invisible = false
	v.length = 0
	v.class = nil
	return v
}

// reset clears a Value's storage so it can be reused for a different kind
// and length. Slices are truncated to zero length rather than discarded, so
// the backing arrays can be reused across allocations of similar size.
func (v *Value) reset() {
	v.kind = Null
	v.length = 0
	v.invisible = false
	v.class = nil
	v.scalarLogical = false
	v.scalarInt = 0
	v.scalarFloat = 0
	v.scalarString = ""
	v.scalarObject = nil
	v.vecLogical = v.vecLogical[:0]
	v.vecInt = v.vecInt[:0]
	v.vecFloat = v.vecFloat[:0]
	v.vecString = v.vecString[:0]
	v.vecObject = v.vecObject[:0]
	v.pool = nil
	v.refcount = 0
}

// Acquire increments the refcount and returns v, for convenient chaining at
// assignment sites. Static values (refcount frozen negative) are untouched.
func (v *Value) Acquire() *Value {
	if v.refcount >= 0 {
		v.refcount++
	}
	return v
}

// Release decrements the refcount, returning the value to its pool's free
// list once it reaches zero. Static values are untouched: their release is
// always a no-op.
func (v *Value) Release() {
	if v.refcount < 0 {
		return
	}
	v.refcount--
	if v.refcount <= 0 && v.pool != nil {
		v.pool.release(v)
	}
}

// RefCount returns the current refcount. Static values report -1.
func (v *Value) RefCount() int32 { return v.refcount }

// exclusivelyOwned reports whether v may be mutated in place: either it was
// just allocated and not yet shared (refcount 0), or exactly one holder has
// acquired it (refcount 1). Static values and values shared by more than one
// holder are never exclusively owned.
func (v *Value) exclusivelyOwned() bool {
	return v.refcount == 0 || v.refcount == 1
}

// IsStatic reports whether v is one of the process-wide static constants
// that bypass refcount accounting entirely.
func (v *Value) IsStatic() bool { return v.refcount < 0 }
