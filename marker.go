package skribidi

import (
	"strconv"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"golang.org/x/image/math/fixed"
)

// synthRun is a shaped glyph span with no source text behind it: list
// markers and truncation ellipses. Its cluster anchors at a text offset
// so line text ranges stay monotonic.
type synthRun struct {
	clusterStart, clusterEnd int
	advance                  fixed.Int26_6
	face                     *font.Face
	size                     fixed.Int26_6
	ascent, descent          fixed.Int26_6
}

func (s *synthRun) empty() bool { return s.clusterStart >= s.clusterEnd }

// prepareMarkers shapes one marker per paragraph. The marker borrows the
// face and size of the paragraph's first run so it scales with the text
// it labels.
func (l *Layout) prepareMarkers() {
	if l.params.Marker.Style == MarkerNone {
		return
	}
	start := l.params.Marker.Start
	if start == 0 {
		start = 1
	}
	for pi := range l.paragraphs {
		text := markerText(l.params.Marker, start+pi, l.paragraphs[pi].baseRTL)
		face, size := l.paragraphFace(pi)
		if text == "" || face == nil {
			l.markers = append(l.markers, synthRun{})
			continue
		}
		l.markers = append(l.markers, l.synthesize(text, face, size, l.paragraphs[pi].start))
	}
}

// paragraphFace returns the face and size of the paragraph's first run,
// falling back to the default style's primary face.
func (l *Layout) paragraphFace(pi int) (*font.Face, fixed.Int26_6) {
	lo, hi := l.paragraphRuns(pi)
	if lo < hi {
		return l.runs[lo].Face, l.runs[lo].Size
	}
	anchor := l.paragraphs[pi].start
	if anchor >= len(l.text) {
		anchor = len(l.text) - 1
	}
	if anchor < 0 {
		anchor = 0
	}
	attrs := l.content[l.contentRunAt(anchor)].Attrs
	return l.matchFace(attrs)
}

// matchFace resolves the primary face for a resolved attribute set.
func (l *Layout) matchFace(attrs Attributes) (*font.Face, fixed.Int26_6) {
	size := FromFloat(attrs.Size)
	fs := l.provider.Match(attrs.Family, attrs.Aspect, language.Latin, attrs.language())
	if fs == nil {
		return nil, size
	}
	return fs.Primary(), size
}

// markerText renders the marker string for one paragraph ordinal.
func markerText(m Marker, ordinal int, rtl bool) string {
	switch m.Style {
	case MarkerBullet:
		return "•"
	case MarkerDecimal:
		return counterText(strconv.Itoa(ordinal), m.Suffix, rtl)
	case MarkerLowerAlpha:
		return counterText(alphaCounter(ordinal, 'a'), m.Suffix, rtl)
	case MarkerUpperAlpha:
		return counterText(alphaCounter(ordinal, 'A'), m.Suffix, rtl)
	}
	return ""
}

// counterText joins a counter and its suffix; right-to-left paragraphs
// take the suffix on the other side.
func counterText(counter, suffix string, rtl bool) string {
	if rtl {
		return suffix + counter
	}
	return counter + suffix
}

// alphaCounter formats n in the bijective base-26 alphabetic system:
// 1 is "a", 26 is "z", 27 is "aa".
func alphaCounter(n int, base rune) string {
	if n <= 0 {
		return ""
	}
	var buf []rune
	for n > 0 {
		n--
		buf = append(buf, base+rune(n%26))
		n /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// synthesize shapes s as a standalone left-to-right span and appends it
// to the layout's cluster and glyph arrays as a single synthetic cluster
// anchored at the given text offset.
func (l *Layout) synthesize(s string, face *font.Face, size fixed.Int26_6, anchor int) synthRun {
	out := l.shapeString(s, face, size)
	ci := len(l.clusters)
	gStart := len(l.glyphs)
	var adv fixed.Int26_6
	for _, g := range out.Glyphs {
		l.glyphs = append(l.glyphs, Glyph{
			ID:       g.GlyphID,
			Cluster:  ci,
			XAdvance: g.XAdvance,
			YAdvance: g.YAdvance,
			XOffset:  g.XOffset,
			YOffset:  g.YOffset,
		})
		adv += g.XAdvance
	}
	l.clusters = append(l.clusters, Cluster{
		TextStart:  anchor,
		TextEnd:    anchor,
		GlyphStart: gStart,
		GlyphEnd:   len(l.glyphs),
		Run:        InvalidIndex,
	})
	m := faceMetrics(face, size)
	return synthRun{
		clusterStart: ci,
		clusterEnd:   ci + 1,
		advance:      adv,
		face:         face,
		size:         size,
		ascent:       m.Ascent,
		descent:      m.Descent,
	}
}

// synthesizeEllipsis shapes the truncation ellipsis, preferring U+2026
// and falling back to three periods when the face lacks it.
func (l *Layout) synthesizeEllipsis(face *font.Face, size fixed.Int26_6, anchor int) synthRun {
	s := "…"
	if _, ok := face.NominalGlyph('…'); !ok {
		s = "..."
	}
	return l.synthesize(s, face, size, anchor)
}
