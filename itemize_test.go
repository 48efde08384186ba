package skribidi

import (
	"testing"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"golang.org/x/image/math/fixed"
)

// recordingProvider wraps a FaceList and counts the runes coverage-tested
// during itemization.
type recordingProvider struct {
	inner *FaceList
	seen  map[rune]int
}

func (p *recordingProvider) Match(family string, aspect font.Aspect, script language.Script, lang string) Fontset {
	return &recordingFontset{inner: p.inner, seen: p.seen}
}

func (p *recordingProvider) Baseline(face *font.Face, kind BaselineKind, dir Direction, script language.Script, size fixed.Int26_6) fixed.Int26_6 {
	return p.inner.Baseline(face, kind, dir, script, size)
}

type recordingFontset struct {
	inner *FaceList
	seen  map[rune]int
}

func (f *recordingFontset) Primary() *font.Face { return f.inner.Primary() }

func (f *recordingFontset) ResolveRune(r rune) *font.Face {
	f.seen[r]++
	return f.inner.ResolveRune(r)
}

func TestControlRuneResolvesAsSpace(t *testing.T) {
	p := &recordingProvider{inner: testProvider(t), seen: map[rune]int{}}
	l := New(p, WithShaper(fakeBackend{adv: px(10)}))
	l.SetFromText("\x01ab", testParams())

	// Faces rarely cover raw control codepoints; coverage is tested with
	// the space glyph instead so the run keeps a usable face.
	if n := p.seen['\x01']; n != 0 {
		t.Errorf("control rune queried %d times, want 0", n)
	}
	if n := p.seen[' ']; n == 0 {
		t.Error("space never queried for the control rune")
	}
}
