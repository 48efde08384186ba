package skribidi

import (
	"testing"
)

func TestCaretRectPositions(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("abc", testParams())

	for idx, want := range []float64{0, 10, 20, 30} {
		r := l.CaretRect(idx, AffinityDownstream)
		if r.X != px(want) {
			t.Errorf("CaretRect(%d).X = %v, want %vpx", idx, r.X, want)
		}
		if r.Width != 0 || r.Height != l.Lines()[0].Height {
			t.Errorf("CaretRect(%d) box = %+v", idx, r)
		}
	}
}

func TestCaretRectEmptyText(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("", testParams())
	r := l.CaretRect(0, AffinityDownstream)
	if r.Height <= 0 {
		t.Errorf("empty text caret height = %v, want > 0", r.Height)
	}
	if r.X != 0 {
		t.Errorf("empty text caret x = %v, want 0", r.X)
	}
}

func TestCaretRectRTL(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("אבג", testParams())

	// Offset 0 is the visual right edge, the text end the left edge.
	if r := l.CaretRect(0, AffinityDownstream); r.X != px(30) {
		t.Errorf("CaretRect(0).X = %v, want 30px", r.X)
	}
	if r := l.CaretRect(3, AffinityDownstream); r.X != px(0) {
		t.Errorf("CaretRect(3).X = %v, want 0px", r.X)
	}
}

func TestCaretRectLigatureFraction(t *testing.T) {
	// A multi-grapheme cluster splits its advance evenly between the
	// grapheme boundaries inside it.
	l := testLayout(t)
	l.SetFromText("ae\u0301o", testParams())
	// The merged cluster [1,3) is 20px wide and holds one grapheme, so
	// the only boundaries are its edges.
	if r := l.CaretRect(1, AffinityDownstream); r.X != px(10) {
		t.Errorf("CaretRect(1).X = %v, want 10px", r.X)
	}
	if r := l.CaretRect(2, AffinityDownstream); r.X != px(10) {
		t.Errorf("CaretRect(2).X = %v, want grapheme-snapped 10px", r.X)
	}
	if r := l.CaretRect(3, AffinityDownstream); r.X != px(30) {
		t.Errorf("CaretRect(3).X = %v, want 30px", r.X)
	}
}

func TestLineForIndexSoftWrap(t *testing.T) {
	l := testLayout(t)
	params := testParams()
	params.MaxWidth = px(80)
	params.Wrap = WrapWord
	l.SetFromText("hello world", params)

	if li := l.LineForIndex(6, AffinityUpstream); li != 0 {
		t.Errorf("upstream line = %d, want 0", li)
	}
	if li := l.LineForIndex(6, AffinityDownstream); li != 1 {
		t.Errorf("downstream line = %d, want 1", li)
	}
	if li := l.LineForIndex(3, AffinityUpstream); li != 0 {
		t.Errorf("mid-line index = %d, want 0", li)
	}
}

func TestLineForIndexHardBreak(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("ab\ncd", testParams())

	// After a hard break the caret always lands on the later line.
	for _, aff := range []Affinity{AffinityDownstream, AffinityUpstream} {
		if li := l.LineForIndex(3, aff); li != 1 {
			t.Errorf("LineForIndex(3, %v) = %d, want 1", aff, li)
		}
	}
}

func TestLineCarets(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("abc", testParams())

	it := l.LineCarets(0)
	var idxs []int
	for it.Next() {
		idxs = append(idxs, it.Index())
	}
	want := []int{0, 1, 2, 3}
	if len(idxs) != len(want) {
		t.Fatalf("caret stops = %v, want %v", idxs, want)
	}
	for i := range want {
		if idxs[i] != want[i] {
			t.Fatalf("caret stops = %v, want %v", idxs, want)
		}
	}
}

func TestLineCaretsHardLineExcludesSeparator(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("ab\ncd", testParams())

	it := l.LineCarets(0)
	last := -1
	for it.Next() {
		last = it.Index()
	}
	if last != 2 {
		t.Errorf("last caret stop on hard line = %d, want 2 (before the newline)", last)
	}
}

func TestCaretModeBidiDirectionStops(t *testing.T) {
	text := "abcאבג"

	legacy := testLayout(t)
	legacy.SetFromText(text, testParams())
	it := legacy.LineCarets(0)
	n := 0
	for it.Next() {
		n++
	}
	if n != 7 {
		t.Fatalf("legacy stops = %d, want 7", n)
	}

	l := testLayout(t)
	params := testParams()
	params.CaretMode = CaretModeBidi
	l.SetFromText(text, params)

	it = l.LineCarets(0)
	n = 0
	var threes []caretStop
	for it.Next() {
		n++
		if it.Index() == 3 {
			threes = append(threes, caretStop{
				index: it.Index(), x: it.X(), aff: it.Affinity(),
			})
		}
	}
	// The direction change between "abc" and the Hebrew run adds one
	// extra stop, so offset 3 is reachable on both sides of the boundary.
	if n != 8 {
		t.Fatalf("bidi stops = %d, want 8", n)
	}
	if len(threes) != 2 {
		t.Fatalf("stops at offset 3 = %d, want 2", len(threes))
	}
	if threes[0].x != px(30) || threes[0].aff != AffinityUpstream {
		t.Errorf("boundary-side stop = x %v aff %v, want 30px Upstream",
			threes[0].x, threes[0].aff)
	}
	if threes[1].x != px(60) || threes[1].aff != AffinityDownstream {
		t.Errorf("run-side stop = x %v aff %v, want 60px Downstream",
			threes[1].x, threes[1].aff)
	}
}

func TestCaretIteratorPayload(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("abc", testParams())

	it := l.LineCarets(0)
	if !it.Next() {
		t.Fatal("no caret stops")
	}
	if it.LeftIndex() != InvalidIndex || it.RightIndex() != 0 {
		t.Errorf("first stop neighbors = (%d, %d), want (InvalidIndex, 0)",
			it.LeftIndex(), it.RightIndex())
	}
	if !it.Next() {
		t.Fatal("only one caret stop")
	}
	if it.LeftIndex() != 0 || it.RightIndex() != 1 {
		t.Errorf("second stop neighbors = (%d, %d), want (0, 1)",
			it.LeftIndex(), it.RightIndex())
	}
	if it.Cluster() != 0 || it.Glyph() != 0 {
		t.Errorf("second stop backrefs = cluster %d glyph %d, want 0, 0",
			it.Cluster(), it.Glyph())
	}
	if it.Affinity() != AffinityDownstream {
		t.Errorf("second stop affinity = %v, want Downstream", it.Affinity())
	}
	var last struct{ left, right, cluster int }
	for it.Next() {
		last.left, last.right, last.cluster = it.LeftIndex(), it.RightIndex(), it.Cluster()
	}
	if last.left != 2 || last.right != InvalidIndex {
		t.Errorf("last stop neighbors = (%d, %d), want (2, InvalidIndex)",
			last.left, last.right)
	}
	if last.cluster != 2 {
		t.Errorf("last stop cluster = %d, want 2", last.cluster)
	}
}

func TestHitTest(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("abc", testParams())
	midY := l.Lines()[0].Y + l.Lines()[0].Height/2

	tests := []struct {
		x    float64
		want int
	}{
		{-5, 0},
		{4, 0},
		{6, 1},
		{12, 1},
		{28, 3},
		{100, 3},
	}
	for _, tt := range tests {
		if idx, _ := l.HitTest(px(tt.x), midY); idx != tt.want {
			t.Errorf("HitTest(%vpx) = %d, want %d", tt.x, idx, tt.want)
		}
	}
}

func TestHitTestSoftWrapAffinity(t *testing.T) {
	l := testLayout(t)
	params := testParams()
	params.MaxWidth = px(80)
	params.Wrap = WrapWord
	l.SetFromText("hello world", params)

	// Far right of the first line is the soft-wrap end boundary.
	midY0 := l.Lines()[0].Y + l.Lines()[0].Height/2
	idx, aff := l.HitTest(px(200), midY0)
	if idx != 6 || aff != AffinityUpstream {
		t.Errorf("hit = (%d, %v), want (6, Upstream)", idx, aff)
	}
	// The same offset at the start of line 1 is downstream.
	midY1 := l.Lines()[1].Y + l.Lines()[1].Height/2
	idx, aff = l.HitTest(px(0), midY1)
	if idx != 6 || aff != AffinityDownstream {
		t.Errorf("hit = (%d, %v), want (6, Downstream)", idx, aff)
	}
}

func TestMoveVisual(t *testing.T) {
	l := testLayout(t)
	params := testParams()
	params.MaxWidth = px(80)
	params.Wrap = WrapWord
	l.SetFromText("hello world", params)

	idx, aff := 5, AffinityDownstream
	idx, aff = l.MoveVisual(idx, aff, true)
	if idx != 6 || aff != AffinityUpstream {
		t.Fatalf("step 1 = (%d, %v), want (6, Upstream)", idx, aff)
	}
	idx, aff = l.MoveVisual(idx, aff, true)
	if idx != 6 || aff != AffinityDownstream {
		t.Fatalf("step 2 = (%d, %v), want (6, Downstream)", idx, aff)
	}
	idx, aff = l.MoveVisual(idx, aff, true)
	if idx != 7 {
		t.Fatalf("step 3 = %d, want 7", idx)
	}
	idx, aff = l.MoveVisual(idx, aff, false)
	if idx != 6 || aff != AffinityDownstream {
		t.Fatalf("step back = (%d, %v), want (6, Downstream)", idx, aff)
	}
}

func TestMoveVisualEdges(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("ab", testParams())

	if idx, _ := l.MoveVisual(0, AffinityDownstream, false); idx != 0 {
		t.Errorf("left from start = %d, want 0", idx)
	}
	if idx, _ := l.MoveVisual(2, AffinityDownstream, true); idx != 2 {
		t.Errorf("right from end = %d, want 2", idx)
	}
}

func TestWordNavigation(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("foo bar baz", testParams())

	tests := []struct {
		name string
		mode WordNavMode
		from int
		fwd  bool
		want int
	}{
		{"default forward start", WordNavDefault, 0, true, 4},
		{"default forward mid", WordNavDefault, 4, true, 8},
		{"default forward last", WordNavDefault, 8, true, 11},
		{"default backward end", WordNavDefault, 11, false, 8},
		{"default backward mid", WordNavDefault, 4, false, 0},
		{"mac forward start", WordNavMac, 0, true, 3},
		{"mac forward boundary", WordNavMac, 3, true, 7},
		{"mac backward mid-word", WordNavMac, 6, false, 4},
		{"mac backward boundary", WordNavMac, 7, false, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int
			if tt.fwd {
				got = l.NextWordIndex(tt.from, tt.mode)
			} else {
				got = l.PrevWordIndex(tt.from, tt.mode)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWordNavigationMacPunctuation(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("foo, (bar)", testParams())

	// Forward motion skips the punctuation run before the next word.
	if got := l.NextWordIndex(3, WordNavMac); got != 9 {
		t.Errorf("NextWordIndex(3) = %d, want 9", got)
	}
	// Backward motion from past the closing paren lands on the word start.
	if got := l.PrevWordIndex(10, WordNavMac); got != 6 {
		t.Errorf("PrevWordIndex(10) = %d, want 6", got)
	}
}

func TestSelectionBounds(t *testing.T) {
	l := testLayout(t)
	params := testParams()
	params.MaxWidth = px(80)
	params.Wrap = WrapWord
	l.SetFromText("hello world", params)

	rects := l.SelectionBounds(3, 9)
	if len(rects) != 2 {
		t.Fatalf("selection rects = %d, want 2", len(rects))
	}
	if rects[0].X != px(30) || rects[0].Width != px(30) {
		t.Errorf("line 0 rect = %+v, want x 30px width 30px", rects[0])
	}
	if rects[1].X != px(0) || rects[1].Width != px(30) {
		t.Errorf("line 1 rect = %+v, want x 0 width 30px", rects[1])
	}
	if rects[1].Y != l.Lines()[1].Y {
		t.Errorf("line 1 rect y = %v, want %v", rects[1].Y, l.Lines()[1].Y)
	}
}

func TestSelectionBoundsEmptyAndReversed(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("abc", testParams())

	if rects := l.SelectionBounds(2, 2); rects != nil {
		t.Errorf("empty selection = %v, want nil", rects)
	}
	fwd := l.SelectionBounds(1, 3)
	rev := l.SelectionBounds(3, 1)
	if len(fwd) != 1 || len(rev) != 1 || fwd[0] != rev[0] {
		t.Errorf("reversed selection %v != forward %v", rev, fwd)
	}
}
