package arena

import "testing"

// TestMarkReleaseLIFO tests nested mark/release restores lengths exactly.
func TestMarkReleaseLIFO(t *testing.T) {
	a := New()

	outer := a.Mark()
	r1 := a.Runes(8)
	if len(r1) != 8 {
		t.Fatalf("Runes(8) len = %d, want 8", len(r1))
	}

	inner := a.Mark()
	_ = a.Runes(16)
	_ = a.Ints(4)
	a.Release(inner)

	if got := len(a.runes); got != 8 {
		t.Errorf("runes high-water after inner release = %d, want 8", got)
	}
	if got := len(a.ints); got != 0 {
		t.Errorf("ints after inner release = %d, want 0", got)
	}

	a.Release(outer)
	if got := len(a.runes); got != 0 {
		t.Errorf("runes after outer release = %d, want 0", got)
	}
}

// TestOuterReleaseCoversInner tests that releasing an outer mark frees
// inner scopes, and a late inner release is a no-op.
func TestOuterReleaseCoversInner(t *testing.T) {
	a := New()

	outer := a.Mark()
	inner := a.Mark()
	_ = a.Runes(32)

	a.Release(outer)
	a.Release(inner) // must not resurrect anything

	if got := len(a.runes); got != 0 {
		t.Errorf("runes after releases = %d, want 0", got)
	}
	if a.depth != 0 {
		t.Errorf("depth = %d, want 0", a.depth)
	}
}

// TestScopeGuard tests the defer-style scope helper.
func TestScopeGuard(t *testing.T) {
	a := New()

	func() {
		defer a.Scope()()
		_ = a.Ints(10)
	}()

	if got := len(a.ints); got != 0 {
		t.Errorf("ints after scope exit = %d, want 0", got)
	}
}

// TestHighWaterReuse tests that a released scope's capacity is reused.
func TestHighWaterReuse(t *testing.T) {
	a := New()

	m := a.Mark()
	_ = a.Runes(100)
	a.Release(m)
	capBefore := cap(a.runes)

	m = a.Mark()
	_ = a.Runes(100)
	a.Release(m)

	if cap(a.runes) != capBefore {
		t.Errorf("capacity changed across passes: %d != %d", cap(a.runes), capBefore)
	}
}

// TestZeroedAllocations tests that reused memory is cleared.
func TestZeroedAllocations(t *testing.T) {
	a := New()

	m := a.Mark()
	r := a.Runes(4)
	for i := range r {
		r[i] = 'x'
	}
	a.Release(m)

	m = a.Mark()
	r = a.Runes(4)
	defer a.Release(m)
	for i, c := range r {
		if c != 0 {
			t.Errorf("reused rune[%d] = %q, want zero", i, c)
		}
	}
}
