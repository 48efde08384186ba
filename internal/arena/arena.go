// Package arena provides a scoped scratch allocator for one layout pass.
//
// All transient working memory of a pass (rune buffers, per-rune level
// tables) comes from an Arena. Scopes nest with strict LIFO
// mark/release semantics, and the backing storage is reused across passes
// at its high-water mark, so steady-state layout does no allocation.
//
// An Arena is not safe for concurrent use; each layout instance owns one.
package arena

// Arena is a bump allocator over a few typed backing slices.
type Arena struct {
	runes []rune
	ints  []int
	depth int
}

// Mark records the allocation state of an Arena at one scope entry.
type Mark struct {
	runes, ints int
	depth       int
}

// New creates an empty Arena.
func New() *Arena {
	return &Arena{}
}

// Mark returns the current allocation state. Pass it to Release to free
// everything allocated after this point.
func (a *Arena) Mark() Mark {
	a.depth++
	return Mark{
		runes: len(a.runes),
		ints:  len(a.ints),
		depth: a.depth,
	}
}

// Release frees all allocations made since m was taken. Marks must be
// released in LIFO order; releasing an outer mark releases every inner
// scope with it.
func (a *Arena) Release(m Mark) {
	if m.depth > a.depth {
		// Already released by an enclosing Release.
		return
	}
	a.runes = a.runes[:m.runes]
	a.ints = a.ints[:m.ints]
	a.depth = m.depth - 1
}

// Scope takes a mark and returns a release function, for use with defer:
//
//	defer a.Scope()()
//
// Release is then guaranteed on every exit path of the scope.
func (a *Arena) Scope() func() {
	m := a.Mark()
	return func() { a.Release(m) }
}

// Runes allocates a zeroed []rune of length n valid until the enclosing
// scope is released.
func (a *Arena) Runes(n int) []rune {
	start := len(a.runes)
	a.runes = grow(a.runes, n)
	s := a.runes[start : start+n]
	clear(s)
	return s
}

// Ints allocates a zeroed []int of length n valid until the enclosing
// scope is released.
func (a *Arena) Ints(n int) []int {
	start := len(a.ints)
	a.ints = grow(a.ints, n)
	s := a.ints[start : start+n]
	clear(s)
	return s
}

// grow extends s by n elements, reusing capacity when available.
// Earlier allocations remain valid views of the previous backing array if
// growth reallocates; they are scratch data and never shared between
// scopes.
func grow[T any](s []T, n int) []T {
	want := len(s) + n
	if want <= cap(s) {
		return s[:want]
	}
	grown := make([]T, want, max(want*2, 64))
	copy(grown, s)
	return grown
}
