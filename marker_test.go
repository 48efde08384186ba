package skribidi

import (
	"testing"
)

func TestMarkerText(t *testing.T) {
	tests := []struct {
		style   MarkerStyle
		ordinal int
		want    string
	}{
		{MarkerNone, 1, ""},
		{MarkerBullet, 7, "•"},
		{MarkerDecimal, 1, "1."},
		{MarkerDecimal, 12, "12."},
		{MarkerLowerAlpha, 1, "a."},
		{MarkerLowerAlpha, 27, "aa."},
		{MarkerUpperAlpha, 2, "B."},
	}
	for _, tt := range tests {
		m := Marker{Style: tt.style, Suffix: "."}
		if got := markerText(m, tt.ordinal, false); got != tt.want {
			t.Errorf("markerText(%v, %d) = %q, want %q", tt.style, tt.ordinal, got, tt.want)
		}
	}
}

func TestMarkerSuffixRTL(t *testing.T) {
	tests := []struct {
		style   MarkerStyle
		ordinal int
		want    string
	}{
		{MarkerDecimal, 3, ".3"},
		{MarkerDecimal, 12, ".12"},
		{MarkerLowerAlpha, 2, ".b"},
		{MarkerBullet, 1, "•"},
	}
	for _, tt := range tests {
		m := Marker{Style: tt.style, Suffix: "."}
		if got := markerText(m, tt.ordinal, true); got != tt.want {
			t.Errorf("markerText(%v, %d, rtl) = %q, want %q", tt.style, tt.ordinal, got, tt.want)
		}
	}
}

func TestAlphaCounter(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "a"},
		{26, "z"},
		{27, "aa"},
		{28, "ab"},
		{52, "az"},
		{53, "ba"},
		{703, "aaa"},
	}
	for _, tt := range tests {
		if got := alphaCounter(tt.n, 'a'); got != tt.want {
			t.Errorf("alphaCounter(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestMarkersPerParagraph(t *testing.T) {
	l := testLayout(t)
	params := testParams()
	params.Marker = Marker{Style: MarkerDecimal, Start: 1, Suffix: ".", Gap: px(5)}
	l.SetFromText("one\ntwo", params)

	lines := l.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	for li, ln := range lines {
		first := l.Runs()[ln.RunStart]
		if first.Kind != RunMarker {
			t.Fatalf("line %d first run kind = %v, want Marker", li, first.Kind)
		}
		// "1." and "2." are two fake glyphs of 10px each.
		if first.Advance != px(20) {
			t.Errorf("line %d marker advance = %v, want 20px", li, first.Advance)
		}
		// Content starts after the marker and its gap.
		if ln.X != px(25) {
			t.Errorf("line %d x = %v, want 25px", li, ln.X)
		}
		if first.X != px(0) {
			t.Errorf("line %d marker x = %v, want 0", li, first.X)
		}
	}
}

func TestMarkerStartOrdinal(t *testing.T) {
	l := testLayout(t)
	params := testParams()
	params.Marker = Marker{Style: MarkerDecimal, Start: 9, Suffix: ".", Gap: px(5)}
	l.SetFromText("a\nb", params)

	// Ordinal 10 shapes "10.", three glyphs wide.
	second := l.Runs()[l.Lines()[1].RunStart]
	if second.Kind != RunMarker || second.Advance != px(30) {
		t.Errorf("second marker = %v advance %v, want Marker 30px", second.Kind, second.Advance)
	}
}

func TestMarkerOnlyOnFirstLine(t *testing.T) {
	l := testLayout(t)
	params := testParams()
	params.MaxWidth = px(80)
	params.Wrap = WrapWord
	params.Marker = Marker{Style: MarkerBullet, Gap: px(5)}
	l.SetFromText("aaa bbb", params)

	lines := l.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if l.Runs()[lines[0].RunStart].Kind != RunMarker {
		t.Error("first line should carry the marker")
	}
	for i := lines[1].RunStart; i < lines[1].RunEnd; i++ {
		if l.Runs()[i].Kind == RunMarker {
			t.Error("wrapped continuation line should not carry a marker")
		}
	}
}

func TestMarkerBoundsExtend(t *testing.T) {
	l := testLayout(t)
	params := testParams()
	params.Marker = Marker{Style: MarkerBullet, Gap: px(5)}
	l.SetFromText("abc", params)

	// The marker hangs in the start margin; bounds include it.
	if b := l.Bounds(); b.X != 0 || b.Width != px(45) {
		t.Errorf("bounds = %+v, want x 0 width 45px", b)
	}
}
