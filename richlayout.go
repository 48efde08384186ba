package skribidi

import (
	"sort"

	"golang.org/x/image/math/fixed"
)

// RichLayout maintains an editable styled document as a stack of
// per-paragraph layouts. Edits mark only the paragraphs they touch, so a
// keystroke in a large document reshapes one paragraph instead of all of
// them.
type RichLayout struct {
	provider FontProvider
	params   LayoutParams
	opts     []Option

	text  []rune
	spans []ContentRun
	paras []richPara
}

// richPara is one paragraph of the document with its cached layout.
type richPara struct {
	start  int // rune offset in the document
	length int // including the terminating separator
	y      fixed.Int26_6
	layout *Layout
	dirty  bool
}

// ParagraphView exposes one laid-out paragraph: its document offset, its
// vertical position, and its layout (indices inside are paragraph-local).
type ParagraphView struct {
	Start  int
	Y      fixed.Int26_6
	Layout *Layout
}

// NewRichLayout creates an empty document. MaxHeight in params is
// ignored; vertical truncation does not apply to editable documents.
func NewRichLayout(provider FontProvider, params LayoutParams, opts ...Option) *RichLayout {
	r := &RichLayout{provider: provider, params: params, opts: opts}
	r.params.MaxHeight = 0
	r.resplit(0, 0)
	return r
}

// SetText replaces the whole document, dropping all spans.
func (r *RichLayout) SetText(s string) {
	r.text = []rune(s)
	r.spans = r.spans[:0]
	r.paras = r.paras[:0]
	r.resplit(0, 0)
}

// Text returns the document text.
func (r *RichLayout) Text() string { return string(r.text) }

// Len returns the document length in runes.
func (r *RichLayout) Len() int { return len(r.text) }

// Spans returns the styled spans currently applied.
func (r *RichLayout) Spans() []ContentRun { return r.spans }

// Replace splices s over the rune range [start, end) and invalidates the
// paragraphs the edit touches. Paragraphs before and after the edited
// region keep their cached layouts.
func (r *RichLayout) Replace(start, end int, s string) {
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end > len(r.text) {
		end = len(r.text)
	}
	ins := []rune(s)

	p0 := r.paraIndexAt(start)
	p1 := r.paraIndexAt(end)
	tail := len(r.paras) - p1 - 1

	r.text = append(r.text[:start], append(ins, r.text[end:]...)...)
	r.spans = spliceSpans(r.spans, start, end, len(ins))
	r.resplit(p0, tail)
}

// ApplySpan styles the rune range [start, end) with attrs, splitting any
// overlapping spans around it.
func (r *RichLayout) ApplySpan(start, end int, attrs Attributes) {
	r.applySpan(ContentRun{Start: start, End: end, Attrs: attrs})
}

// ApplyObject embeds an inline object over the rune range [start, end),
// which should cover a single placeholder codepoint.
func (r *RichLayout) ApplyObject(start, end int, obj InlineObject) {
	r.applySpan(ContentRun{Start: start, End: end, Object: &obj})
}

func (r *RichLayout) applySpan(span ContentRun) {
	if span.Start < 0 {
		span.Start = 0
	}
	if span.End > len(r.text) {
		span.End = len(r.text)
	}
	if span.Start >= span.End {
		return
	}
	out := r.spans[:0:0]
	for _, s := range r.spans {
		if s.End <= span.Start || s.Start >= span.End {
			out = append(out, s)
			continue
		}
		if s.Start < span.Start {
			left := s
			left.End = span.Start
			out = append(out, left)
		}
		if s.End > span.End {
			right := s
			right.Start = span.End
			out = append(out, right)
		}
	}
	out = append(out, span)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	r.spans = out

	for i := range r.paras {
		p := &r.paras[i]
		if p.start < span.End && p.start+p.length > span.Start {
			p.dirty = true
		}
	}
}

// resplit recomputes paragraph boundaries, keeping the first keepHead
// and last keepTail paragraph layouts and rebuilding everything between.
func (r *RichLayout) resplit(keepHead, keepTail int) {
	bounds := paragraphBounds(r.text)
	if keepHead > len(bounds) {
		keepHead = len(bounds)
	}
	if keepTail > len(bounds)-keepHead {
		keepTail = len(bounds) - keepHead
	}

	old := r.paras
	paras := make([]richPara, len(bounds))
	off := 0
	for i := range bounds {
		p := richPara{start: off, length: bounds[i], dirty: true}
		switch {
		case i < keepHead && i < len(old):
			p.layout = old[i].layout
			p.dirty = old[i].dirty
		case i >= len(bounds)-keepTail:
			oi := len(old) - (len(bounds) - i)
			if oi >= 0 && oi < len(old) && old[oi].length == p.length {
				p.layout = old[oi].layout
				p.dirty = old[oi].dirty
			}
		}
		paras[i] = p
		off += bounds[i]
	}
	r.paras = paras
}

// stripSeparator drops a trailing paragraph separator (or CRLF pair).
func stripSeparator(text []rune) []rune {
	n := len(text)
	if n == 0 || !isParagraphSeparator(text[n-1]) {
		return text
	}
	if text[n-1] == '\n' && n > 1 && text[n-2] == '\r' {
		return text[:n-2]
	}
	return text[:n-1]
}

// paragraphBounds returns the rune length of each paragraph, separator
// included. A trailing separator yields a final empty paragraph; an
// empty document yields one.
func paragraphBounds(text []rune) []int {
	var out []int
	start := 0
	for i := 0; i < len(text); i++ {
		if !isParagraphSeparator(text[i]) {
			continue
		}
		end := i + 1
		if text[i] == '\r' && end < len(text) && text[end] == '\n' {
			end++
			i++
		}
		out = append(out, end-start)
		start = end
	}
	out = append(out, len(text)-start)
	return out
}

// Layout reshapes the dirty paragraphs and restacks the document. Call it
// after a batch of edits, before reading geometry.
func (r *RichLayout) Layout() {
	markerStart := r.params.Marker.Start
	if markerStart == 0 {
		markerStart = 1
	}
	var y fixed.Int26_6
	for i := range r.paras {
		p := &r.paras[i]
		if p.layout == nil {
			p.layout = New(r.provider, r.opts...)
			p.dirty = true
		}
		if p.dirty {
			params := r.params
			params.Marker.Start = markerStart + i
			// The separator stays out of the paragraph layout; it would
			// otherwise produce a trailing empty line per paragraph.
			text := stripSeparator(r.text[p.start : p.start+p.length])
			p.layout.SetFromRuns(string(text), r.paraSpans(p), params)
			p.dirty = false
		}
		p.y = y
		y += p.layout.Bounds().Height
	}
}

// paraSpans clips the document spans to one paragraph, rebased to
// paragraph-local offsets.
func (r *RichLayout) paraSpans(p *richPara) []ContentRun {
	var out []ContentRun
	end := p.start + p.length
	for _, s := range r.spans {
		if s.End <= p.start || s.Start >= end {
			continue
		}
		c := s
		if c.Start < p.start {
			c.Start = p.start
		}
		if c.End > end {
			c.End = end
		}
		c.Start -= p.start
		c.End -= p.start
		out = append(out, c)
	}
	return out
}

// Paragraphs returns the laid-out paragraphs top to bottom. Valid until
// the next Replace/ApplySpan/Layout call.
func (r *RichLayout) Paragraphs() []ParagraphView {
	out := make([]ParagraphView, len(r.paras))
	for i := range r.paras {
		out[i] = ParagraphView{Start: r.paras[i].start, Y: r.paras[i].y, Layout: r.paras[i].layout}
	}
	return out
}

// Height returns the stacked document height.
func (r *RichLayout) Height() fixed.Int26_6 {
	if len(r.paras) == 0 {
		return 0
	}
	last := &r.paras[len(r.paras)-1]
	if last.layout == nil {
		return last.y
	}
	return last.y + last.layout.Bounds().Height
}

// CaretRect returns the caret box at a document offset, in document
// coordinates.
func (r *RichLayout) CaretRect(idx int, aff Affinity) Rect {
	p := &r.paras[r.paraIndexAt(idx)]
	if p.layout == nil {
		return Rect{}
	}
	rect := p.layout.CaretRect(idx-p.start, aff)
	rect.Y += p.y
	return rect
}

// HitTest maps a document-space point to a document rune offset.
func (r *RichLayout) HitTest(x, y fixed.Int26_6) (int, Affinity) {
	if len(r.paras) == 0 {
		return 0, AffinityDownstream
	}
	pi := len(r.paras) - 1
	for i := range r.paras {
		p := &r.paras[i]
		if p.layout == nil {
			continue
		}
		if y < p.y+p.layout.Bounds().Height {
			pi = i
			break
		}
	}
	p := &r.paras[pi]
	if p.layout == nil {
		return p.start, AffinityDownstream
	}
	idx, aff := p.layout.HitTest(x, y-p.y)
	return p.start + idx, aff
}

// paraIndexAt returns the paragraph containing document offset off.
func (r *RichLayout) paraIndexAt(off int) int {
	for i := range r.paras {
		p := &r.paras[i]
		if off < p.start+p.length {
			return i
		}
	}
	if len(r.paras) == 0 {
		return 0
	}
	return len(r.paras) - 1
}

// spliceSpans rewrites span offsets for a text splice replacing
// [start, end) with insLen runes. A span containing the edit absorbs the
// inserted text.
func spliceSpans(spans []ContentRun, start, end, insLen int) []ContentRun {
	delta := insLen - (end - start)
	out := spans[:0]
	for _, s := range spans {
		ns, ne := s.Start, s.End
		if ns >= end {
			ns += delta
		} else if ns > start {
			ns = start + insLen
		}
		if ne >= end {
			ne += delta
		} else if ne > start {
			ne = start
		}
		if s.Start <= start && s.End >= end {
			ne = s.End + delta
		}
		if ns < ne {
			out = append(out, ContentRun{Start: ns, End: ne, Attrs: s.Attrs, Object: s.Object})
		}
	}
	return out
}
