package skribidi

import (
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/skribidi/skribidi/internal/cache"
)

// ShapingBackend turns an itemized input into positioned glyphs. The
// default backend wraps go-text's HarfBuzz port; tests substitute a
// deterministic fake via WithShaper.
type ShapingBackend interface {
	Shape(shaping.Input) shaping.Output
}

// HarfBuzzBackend is the default ShapingBackend. HarfbuzzShaper instances
// carry mutable buffer state and are not concurrent-safe, so they are
// pooled per call.
type HarfBuzzBackend struct {
	pool sync.Pool
}

// NewHarfBuzzBackend creates the default shaping backend.
func NewHarfBuzzBackend() *HarfBuzzBackend {
	return &HarfBuzzBackend{
		pool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// Shape implements ShapingBackend.
func (b *HarfBuzzBackend) Shape(in shaping.Input) shaping.Output {
	hb := b.pool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(in)
	b.pool.Put(hb)
	return out
}

const defaultShapeCacheSize = 256

// shapeKey identifies one shaped run for memoization. Faces are compared
// by identity, which holds as long as the provider returns stable faces.
type shapeKey struct {
	face   *font.Face
	size   fixed.Int26_6
	rtl    bool
	script language.Script
	lang   string
	feats  string
	text   string
}

type shaperState struct {
	backend ShapingBackend
	cache   *cache.Cache[shapeKey, shaping.Output]
}

func newShaperState() *shaperState {
	return &shaperState{
		backend: NewHarfBuzzBackend(),
		cache:   cache.New[shapeKey, shaping.Output](defaultShapeCacheSize),
	}
}

func (s *shaperState) setCacheSize(n int) {
	if n <= 0 {
		s.cache = nil
		return
	}
	s.cache = cache.New[shapeKey, shaping.Output](n)
}

// shape memoizes backend calls. Cached outputs are never mutated by the
// cluster pass, which copies glyphs out before adjusting them.
func (s *shaperState) shape(key shapeKey, in shaping.Input) shaping.Output {
	if s.cache == nil {
		return s.backend.Shape(in)
	}
	if out, ok := s.cache.Get(key); ok {
		return out
	}
	out := s.backend.Shape(in)
	s.cache.Set(key, out)
	return out
}

// featureKey serializes features for the cache key.
func featureKey(feats []shaping.FontFeature) string {
	if len(feats) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, f := range feats {
		sb.WriteString(strconv.FormatUint(uint64(f.Tag), 16))
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatUint(uint64(f.Value), 10))
		sb.WriteByte(';')
	}
	return sb.String()
}

// shapeAll shapes every itemized run, filling the layout's cluster and
// glyph arrays in logical order.
func (l *Layout) shapeAll() {
	for i := range l.runs {
		run := &l.runs[i]
		run.ClusterStart = len(l.clusters)
		run.GlyphStart = len(l.glyphs)

		content := &l.content[run.ContentRun]
		if content.Object != nil {
			l.shapeObject(i, content.Object)
		} else {
			l.shapeRun(i, content.Attrs)
		}

		run.ClusterEnd = len(l.clusters)
		run.GlyphEnd = len(l.glyphs)
	}
}

// shapeObject synthesizes the single cluster of an inline object run.
func (l *Layout) shapeObject(runIdx int, obj *InlineObject) {
	run := &l.runs[runIdx]
	w, _ := obj.resolvedSize(run.Size)
	ci := len(l.clusters)
	l.glyphs = append(l.glyphs, Glyph{
		Cluster:  ci,
		XAdvance: w + 2*obj.Padding,
	})
	l.clusters = append(l.clusters, Cluster{
		TextStart:  run.TextStart,
		TextEnd:    run.TextEnd,
		GlyphStart: len(l.glyphs) - 1,
		GlyphEnd:   len(l.glyphs),
		Run:        runIdx,
		Flags:      ClusterObject,
	})
}

// shapeRun shapes one text run and appends its grapheme-aligned clusters.
func (l *Layout) shapeRun(runIdx int, attrs Attributes) {
	run := &l.runs[runIdx]
	feats := attrs.fontFeatures()

	dir := di.DirectionLTR
	if run.RTL() {
		dir = di.DirectionRTL
	}
	in := shaping.Input{
		Text:         l.text,
		RunStart:     run.TextStart,
		RunEnd:       run.TextEnd,
		Direction:    dir,
		Face:         run.Face,
		FontFeatures: feats,
		Size:         run.Size,
		Script:       run.Script,
		Language:     language.NewLanguage(attrs.language()),
	}
	key := shapeKey{
		face:   run.Face,
		size:   run.Size,
		rtl:    run.RTL(),
		script: run.Script,
		lang:   attrs.language(),
		feats:  featureKey(feats),
		text:   string(l.text[run.TextStart:run.TextEnd]),
	}
	out := l.shaper.shape(key, in)
	l.buildClusters(runIdx, out, attrs)
}

// glyphGroup is a maximal slice of output glyphs sharing one cluster
// value, in visual order.
type glyphGroup struct {
	glyphStart, glyphEnd int // into the output glyph array
	textStart            int // absolute rune offset
}

// buildClusters converts backend output into grapheme-aligned clusters in
// logical order. Within a cluster, glyphs keep the backend's visual
// order. Control clusters are replaced by an invisible zero-advance space
// glyph; tabs get a provisional space advance that line breaking rewrites
// to the next tab stop.
func (l *Layout) buildClusters(runIdx int, out shaping.Output, attrs Attributes) {
	run := &l.runs[runIdx]
	gs := out.Glyphs
	if len(gs) == 0 {
		return
	}

	groups := make([]glyphGroup, 0, len(gs))
	for i := 0; i < len(gs); {
		j := i + 1
		for j < len(gs) && gs[j].ClusterIndex == gs[i].ClusterIndex {
			j++
		}
		groups = append(groups, glyphGroup{glyphStart: i, glyphEnd: j, textStart: gs[i].ClusterIndex})
		i = j
	}
	// For RTL output the groups arrive in reverse logical order.
	rtl := run.RTL()
	logical := func(k int) *glyphGroup {
		if rtl {
			return &groups[len(groups)-1-k]
		}
		return &groups[k]
	}

	letterSpacing := FromFloat(attrs.LetterSpacing)
	if cursiveScript(run.Script) || run.Emoji {
		letterSpacing = 0
	}
	wordSpacing := FromFloat(attrs.WordSpacing)

	for k := 0; k < len(groups); {
		// Merge groups until the next one starts a new grapheme.
		m := k + 1
		for m < len(groups) && !l.props.IsGraphemeStart(logical(m).textStart) {
			m++
		}
		textStart := logical(k).textStart
		textEnd := run.TextEnd
		if m < len(groups) {
			textEnd = logical(m).textStart
		}

		// The merged groups are visually contiguous in the output.
		first, last := logical(k), logical(m-1)
		lo, hi := first.glyphStart, last.glyphEnd
		if rtl {
			lo, hi = last.glyphStart, first.glyphEnd
		}

		l.emitCluster(runIdx, gs[lo:hi], textStart, textEnd, letterSpacing, wordSpacing)
		k = m
	}
}

// emitCluster appends one cluster and its glyphs.
func (l *Layout) emitCluster(runIdx int, gs []shaping.Glyph, textStart, textEnd int, letterSpacing, wordSpacing fixed.Int26_6) {
	run := &l.runs[runIdx]
	var flags ClusterFlags
	for i := textStart; i < textEnd; i++ {
		if l.props.IsWhitespace(i) {
			flags |= ClusterWhitespace
		}
		if l.props.IsControl(i) {
			flags |= ClusterControl
		}
	}
	if textStart < textEnd {
		if l.text[textStart] == '\t' {
			flags |= ClusterTab
		}
		if isParagraphSeparator(l.text[textStart]) {
			flags |= ClusterNewline
		}
	}

	ci := len(l.clusters)
	glyphStart := len(l.glyphs)

	switch {
	case flags&ClusterTab != 0:
		l.glyphs = append(l.glyphs, Glyph{
			ID:       spaceGlyph(run.Face),
			Cluster:  ci,
			XAdvance: spaceAdvance(run.Face, run.Size),
		})
	case flags&(ClusterNewline|ClusterControl) != 0:
		// Invisible and zero-width, but addressable by the caret.
		l.glyphs = append(l.glyphs, Glyph{
			ID:      spaceGlyph(run.Face),
			Cluster: ci,
		})
	default:
		for _, g := range gs {
			l.glyphs = append(l.glyphs, Glyph{
				ID:       g.GlyphID,
				Cluster:  ci,
				XAdvance: g.XAdvance,
				YAdvance: g.YAdvance,
				XOffset:  g.XOffset,
				YOffset:  g.YOffset,
			})
		}
		if letterSpacing != 0 || (wordSpacing != 0 && flags&ClusterWhitespace != 0) {
			lastGlyph := &l.glyphs[len(l.glyphs)-1]
			lastGlyph.XAdvance += letterSpacing
			if flags&ClusterWhitespace != 0 {
				lastGlyph.XAdvance += wordSpacing
			}
		}
	}

	l.clusters = append(l.clusters, Cluster{
		TextStart:  textStart,
		TextEnd:    textEnd,
		GlyphStart: glyphStart,
		GlyphEnd:   len(l.glyphs),
		Run:        runIdx,
		Flags:      flags,
	})
}

// shapeString shapes a standalone string (markers, ellipses) LTR with the
// given face, going through the same cache as run shaping.
func (l *Layout) shapeString(s string, face *font.Face, size fixed.Int26_6) shaping.Output {
	text := l.scratch.Runes(utf8.RuneCountInString(s))
	i := 0
	for _, r := range s {
		text[i] = r
		i++
	}
	in := shaping.Input{
		Text:      text,
		RunStart:  0,
		RunEnd:    len(text),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      size,
		Script:    language.Latin,
		Language:  language.NewLanguage("en"),
	}
	key := shapeKey{face: face, size: size, script: language.Latin, lang: "en", text: s}
	return l.shaper.shape(key, in)
}

// spaceGlyph returns the face's space glyph, or glyph 0 (.notdef).
func spaceGlyph(face *font.Face) font.GID {
	if gid, ok := face.NominalGlyph(' '); ok {
		return gid
	}
	return 0
}

// cursiveScript reports whether script joins letters cursively, which
// makes per-grapheme letter spacing visually destructive.
func cursiveScript(s language.Script) bool {
	switch s {
	case language.Arabic, language.Syriac, language.Nko,
		language.Psalter_Pahlavi, language.Mandaic, language.Mongolian,
		language.Phags_Pa, language.Devanagari, language.Bengali,
		language.Gurmukhi, language.Modi, language.Sharada,
		language.Syloti_Nagri, language.Tirhuta, language.Ogham:
		return true
	}
	return false
}
