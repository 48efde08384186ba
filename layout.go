package skribidi

import (
	"log/slog"
	"sort"

	"golang.org/x/image/math/fixed"

	"github.com/skribidi/skribidi/internal/arena"
)

// Layout shapes and lays out styled text. It owns flat arrays of runs,
// clusters, glyphs, lines and decorations that are rebuilt by every Set
// call; the accessors return views into them that stay valid until the
// next Set.
//
// A Layout is not safe for concurrent use. Reusing one across frames
// avoids reallocation: the backing arrays and the shape cache persist.
type Layout struct {
	provider FontProvider
	shaper   *shaperState

	text    []rune
	params  LayoutParams
	props   Properties
	content []ContentRun

	paragraphs []paragraph
	runs       []ShapingRun
	clusters   []Cluster
	glyphs     []Glyph
	layoutRuns []LayoutRun
	lines      []Line
	lineMeta   []lineMeta
	markers    []synthRun
	decos      []Decoration

	bounds Rect

	scratch *arena.Arena
}

// Option configures a Layout.
type Option func(*Layout)

// WithShaper replaces the default HarfBuzz shaping backend. Useful for
// tests that need deterministic glyph geometry.
func WithShaper(b ShapingBackend) Option {
	return func(l *Layout) { l.shaper.backend = b }
}

// WithShapeCacheSize sets the shaped-run cache capacity (default 256
// entries). Zero disables caching.
func WithShapeCacheSize(n int) Option {
	return func(l *Layout) { l.shaper.setCacheSize(n) }
}

// New creates a Layout resolving fonts through provider.
func New(provider FontProvider, opts ...Option) *Layout {
	l := &Layout{
		provider: provider,
		shaper:   newShaperState(),
		scratch:  arena.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetFromText lays out text as a single span styled by params.Defaults.
func (l *Layout) SetFromText(text string, params LayoutParams) {
	l.SetFromRuns(text, nil, params)
}

// SetFromRuns lays out text styled by runs. Runs are clamped to the text,
// sorted, and gaps are filled with spans styled by params.Defaults; a nil
// runs slice styles everything with the defaults.
func (l *Layout) SetFromRuns(text string, runs []ContentRun, params LayoutParams) {
	l.reset()
	l.text = []rune(text)
	l.params = params
	l.content = normalizeRuns(l.text, runs, params.Defaults)
	l.props = ComputeProperties(l.text)

	defer l.scratch.Scope()()
	l.itemize()
	l.shapeAll()
	l.breakLines()
	l.decorate()
	l.computeBounds()

	Logger().Debug("layout set",
		slog.Int("runes", len(l.text)),
		slog.Int("runs", len(l.runs)),
		slog.Int("lines", len(l.lines)))
}

// reset empties the layout arrays, keeping their capacity.
func (l *Layout) reset() {
	l.text = l.text[:0]
	l.content = l.content[:0]
	l.paragraphs = l.paragraphs[:0]
	l.runs = l.runs[:0]
	l.clusters = l.clusters[:0]
	l.glyphs = l.glyphs[:0]
	l.layoutRuns = l.layoutRuns[:0]
	l.lines = l.lines[:0]
	l.lineMeta = l.lineMeta[:0]
	l.markers = l.markers[:0]
	l.decos = l.decos[:0]
	l.bounds = Rect{}
}

// normalizeRuns turns caller-supplied content runs into a sorted,
// clamped, gap-free cover of the text with attributes resolved against
// defaults.
func normalizeRuns(text []rune, runs []ContentRun, defaults Attributes) []ContentRun {
	resolved := defaults.resolve(Attributes{})
	out := make([]ContentRun, 0, len(runs)+1)
	for _, r := range runs {
		if r.Start < 0 {
			r.Start = 0
		}
		if r.End > len(text) {
			r.End = len(text)
		}
		if r.Start >= r.End {
			continue
		}
		r.Attrs = r.Attrs.resolve(resolved)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	// Fill gaps (and resolve overlaps in favor of the earlier run).
	filled := out[:0:0]
	pos := 0
	for _, r := range out {
		if r.Start > pos {
			filled = append(filled, ContentRun{Start: pos, End: r.Start, Attrs: resolved})
		}
		if r.Start < pos {
			r.Start = pos
		}
		if r.Start >= r.End {
			continue
		}
		filled = append(filled, r)
		pos = r.End
	}
	if pos < len(text) {
		filled = append(filled, ContentRun{Start: pos, End: len(text), Attrs: resolved})
	}
	if len(filled) == 0 {
		filled = append(filled, ContentRun{Start: 0, End: len(text), Attrs: resolved})
	}
	return filled
}

// Text returns the layout's text as runes.
func (l *Layout) Text() []rune { return l.text }

// Params returns the parameters of the last Set call.
func (l *Layout) Params() LayoutParams { return l.params }

// Properties returns the per-codepoint property table of the current
// text. Editors can reuse it for grapheme-aware cursor movement.
func (l *Layout) Properties() *Properties { return &l.props }

// Lines returns the laid-out lines, top to bottom.
func (l *Layout) Lines() []Line { return l.lines }

// Runs returns all layout runs. A line's runs are the subslice
// [line.RunStart:line.RunEnd], in visual order.
func (l *Layout) Runs() []LayoutRun { return l.layoutRuns }

// ShapingRuns returns the itemized shaping runs in logical order.
func (l *Layout) ShapingRuns() []ShapingRun { return l.runs }

// Clusters returns all clusters in logical order per shaping run.
func (l *Layout) Clusters() []Cluster { return l.clusters }

// Glyphs returns all glyphs. A cluster's glyphs are the subslice
// [cluster.GlyphStart:cluster.GlyphEnd].
func (l *Layout) Glyphs() []Glyph { return l.glyphs }

// RunClusters returns r's clusters in logical order.
func (l *Layout) RunClusters(r *LayoutRun) []Cluster {
	return l.clusters[r.ClusterStart:r.ClusterEnd]
}

// RunGlyphs returns r's glyphs. Cluster glyph ranges are contiguous, so
// the span covers exactly the run's clusters.
func (l *Layout) RunGlyphs(r *LayoutRun) []Glyph {
	if r.ClusterStart >= r.ClusterEnd {
		return nil
	}
	first := l.clusters[r.ClusterStart]
	last := l.clusters[r.ClusterEnd-1]
	return l.glyphs[first.GlyphStart:last.GlyphEnd]
}

// Decorations returns all decoration segments. A line's segments are the
// subslice [line.DecoStart:line.DecoEnd].
func (l *Layout) Decorations() []Decoration { return l.decos }

// Bounds returns the layout's bounding box including padding. With
// TrimCapHeight the box top starts at the first line's cap height and the
// bottom at the last baseline.
func (l *Layout) Bounds() Rect { return l.bounds }

// ClusterAdvance returns the total advance of c, including spacing
// adjustments applied after shaping.
func (l *Layout) ClusterAdvance(c *Cluster) fixed.Int26_6 {
	var adv fixed.Int26_6
	for i := c.GlyphStart; i < c.GlyphEnd; i++ {
		adv += l.glyphs[i].XAdvance
	}
	return adv
}

// ClusterText returns the runes covered by c. Synthetic clusters (markers,
// ellipses) cover no source text and return nil.
func (l *Layout) ClusterText(c *Cluster) []rune {
	if c.TextStart >= c.TextEnd {
		return nil
	}
	return l.text[c.TextStart:c.TextEnd]
}

// contentRunAt returns the index of the content run containing rune
// offset i.
func (l *Layout) contentRunAt(i int) int {
	for ci := range l.content {
		if i < l.content[ci].End {
			return ci
		}
	}
	return len(l.content) - 1
}

// computeBounds derives the layout bounding box from the finished lines.
func (l *Layout) computeBounds() {
	pad := l.params.Padding
	if len(l.lines) == 0 {
		l.bounds = Rect{Width: pad.Left + pad.Right, Height: pad.Top + pad.Bottom}
		return
	}
	minX := l.lines[0].X
	maxX := l.lines[0].X + l.lines[0].Width
	for _, ln := range l.lines[1:] {
		if ln.X < minX {
			minX = ln.X
		}
		if r := ln.X + ln.Width; r > maxX {
			maxX = r
		}
	}
	// Markers and ellipses live outside the aligned line width.
	for i := range l.layoutRuns {
		r := &l.layoutRuns[i]
		if r.Kind != RunMarker && r.Kind != RunEllipsis {
			continue
		}
		if r.X < minX {
			minX = r.X
		}
		if e := r.X + r.Advance; e > maxX {
			maxX = e
		}
	}
	first, last := &l.lines[0], &l.lines[len(l.lines)-1]
	top := first.Y
	bottom := last.Y + last.Height
	if l.params.Trim == TrimCapHeight {
		top = first.Baseline - l.lineCapHeight(first)
		bottom = last.Baseline
	}
	l.bounds = Rect{
		X:      minX - pad.Left,
		Y:      top - pad.Top,
		Width:  maxX - minX + pad.Left + pad.Right,
		Height: bottom - top + pad.Top + pad.Bottom,
	}
}

// lineCapHeight returns the tallest cap height over a line's text runs,
// falling back to the line ascent when the line has no real runs.
func (l *Layout) lineCapHeight(ln *Line) fixed.Int26_6 {
	var capH fixed.Int26_6
	for i := ln.RunStart; i < ln.RunEnd; i++ {
		r := &l.layoutRuns[i]
		if r.Run == InvalidIndex {
			continue
		}
		if ch := l.runs[r.Run].Metrics.CapHeight; ch > capH {
			capH = ch
		}
	}
	if capH == 0 {
		capH = ln.Ascent
	}
	return capH
}
