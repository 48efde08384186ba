package skribidi

import (
	"testing"

	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
)

func TestClusterGraphemeMerge(t *testing.T) {
	// The combining acute must merge into the preceding base letter's
	// cluster even though the backend reports separate cluster values.
	l := testLayout(t)
	l.SetFromText("ae\u0301o", testParams())

	clusters := l.Clusters()
	if len(clusters) != 3 {
		t.Fatalf("clusters = %d, want 3", len(clusters))
	}
	mid := clusters[1]
	if mid.TextStart != 1 || mid.TextEnd != 3 {
		t.Errorf("merged cluster = [%d,%d), want [1,3)", mid.TextStart, mid.TextEnd)
	}
	if n := mid.GlyphEnd - mid.GlyphStart; n != 2 {
		t.Errorf("merged cluster glyphs = %d, want 2", n)
	}
	if adv := l.ClusterAdvance(&mid); adv != px(20) {
		t.Errorf("merged cluster advance = %v, want 20px", adv)
	}
}

func TestClusterGraphemeMergeRTL(t *testing.T) {
	// Hebrew base + combining point, shaped RTL.
	l := testLayout(t)
	l.SetFromText("\u05D0\u05B0\u05D1", testParams())

	clusters := l.Clusters()
	if len(clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(clusters))
	}
	first := clusters[0]
	if first.TextStart != 0 || first.TextEnd != 2 {
		t.Errorf("merged cluster = [%d,%d), want [0,2)", first.TextStart, first.TextEnd)
	}
	if n := first.GlyphEnd - first.GlyphStart; n != 2 {
		t.Errorf("merged cluster glyphs = %d, want 2", n)
	}
}

func TestNewlineClusterInvisible(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("a\nb", testParams())

	var nl *Cluster
	for i := range l.Clusters() {
		c := &l.Clusters()[i]
		if c.Flags&ClusterNewline != 0 {
			nl = c
		}
	}
	if nl == nil {
		t.Fatal("no newline cluster")
	}
	if nl.Flags&ClusterWhitespace == 0 || nl.Flags&ClusterControl == 0 {
		t.Errorf("newline flags = %v, want whitespace and control", nl.Flags)
	}
	if adv := l.ClusterAdvance(nl); adv != 0 {
		t.Errorf("newline advance = %v, want 0", adv)
	}
	if nl.GlyphEnd-nl.GlyphStart != 1 {
		t.Error("newline cluster should keep one addressable glyph")
	}
}

func TestLetterSpacing(t *testing.T) {
	l := testLayout(t)
	params := testParams()
	params.Defaults.LetterSpacing = 5
	l.SetFromText("ab", params)
	if w := l.Lines()[0].Width; w != px(30) {
		t.Errorf("width = %v, want 30px (10+5 per grapheme)", w)
	}
}

func TestWordSpacing(t *testing.T) {
	l := testLayout(t)
	params := testParams()
	params.Defaults.WordSpacing = 5
	l.SetFromText("a b", params)
	if w := l.Lines()[0].Width; w != px(45) {
		t.Errorf("width = %v, want 45px (extra 5px on the space)", w)
	}
}

func TestLetterSpacingCursiveExempt(t *testing.T) {
	// Arabic joins cursively; letter spacing must not apply.
	l := testLayout(t)
	params := testParams()
	params.Defaults.LetterSpacing = 5
	l.SetFromText("\u0627\u0628", params)
	if w := l.Lines()[0].Width; w != px(20) {
		t.Errorf("width = %v, want 20px (spacing suppressed)", w)
	}
}

func TestLetterSpacingDevanagariExempt(t *testing.T) {
	// Devanagari letters connect through the headstroke; spacing them
	// apart breaks the word shape just like in Arabic.
	l := testLayout(t)
	params := testParams()
	params.Defaults.LetterSpacing = 5
	l.SetFromText("कख", params)
	if w := l.Lines()[0].Width; w != px(20) {
		t.Errorf("width = %v, want 20px (spacing suppressed)", w)
	}
}

func TestCursiveScripts(t *testing.T) {
	joined := []language.Script{
		language.Arabic, language.Syriac, language.Nko,
		language.Psalter_Pahlavi, language.Mandaic, language.Mongolian,
		language.Phags_Pa, language.Devanagari, language.Bengali,
		language.Gurmukhi, language.Modi, language.Sharada,
		language.Syloti_Nagri, language.Tirhuta, language.Ogham,
	}
	for _, s := range joined {
		if !cursiveScript(s) {
			t.Errorf("cursiveScript(%v) = false, want true", s)
		}
	}
	for _, s := range []language.Script{language.Latin, language.Hebrew, language.Han} {
		if cursiveScript(s) {
			t.Errorf("cursiveScript(%v) = true, want false", s)
		}
	}
}

func TestShapeCache(t *testing.T) {
	l := testLayout(t)
	l.SetFromText("abc", testParams())
	if n := l.shaper.cache.Len(); n != 1 {
		t.Fatalf("cache entries = %d, want 1", n)
	}
	l.SetFromText("abc", testParams())
	if n := l.shaper.cache.Len(); n != 1 {
		t.Errorf("cache entries after repeat = %d, want 1 (hit)", n)
	}
	l.SetFromText("abcd", testParams())
	if n := l.shaper.cache.Len(); n != 2 {
		t.Errorf("cache entries after new text = %d, want 2", n)
	}
}

func TestShapeCacheDisabled(t *testing.T) {
	l := New(testProvider(t), WithShaper(fakeBackend{adv: px(10)}), WithShapeCacheSize(0))
	l.SetFromText("abc", testParams())
	if len(l.Lines()) != 1 {
		t.Fatal("layout without cache failed")
	}
}

func TestFeatureKey(t *testing.T) {
	if featureKey(nil) != "" {
		t.Error("empty features should key to empty string")
	}
	feats := []shaping.FontFeature{
		{Tag: ot.MustNewTag("liga"), Value: 0},
		{Tag: ot.MustNewTag("smcp"), Value: 1},
	}
	k1 := featureKey(feats)
	k2 := featureKey(feats)
	if k1 == "" || k1 != k2 {
		t.Errorf("feature key not stable: %q vs %q", k1, k2)
	}
	feats[1].Value = 0
	if featureKey(feats) == k1 {
		t.Error("feature key should change with values")
	}
}

func TestHarfBuzzBackend(t *testing.T) {
	// End to end through the real shaper: glyphs come back positioned
	// with nonzero advances for visible text.
	l := New(testProvider(t))
	l.SetFromText("fi", testParams())

	if len(l.Glyphs()) == 0 {
		t.Fatal("no glyphs")
	}
	for _, g := range l.Glyphs() {
		if g.XAdvance <= 0 {
			t.Errorf("glyph %d advance = %v, want > 0", g.ID, g.XAdvance)
		}
	}
}
