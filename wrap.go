package skribidi

import (
	"sort"

	"golang.org/x/image/math/fixed"
)

// unbounded stands in for "no wrap width".
const unbounded = fixed.Int26_6(1 << 30)

// lineMeta records how a line was assembled so truncation can rebuild it.
type lineMeta struct {
	para         int
	clusterStart int
	clusterEnd   int
	firstOfPara  bool
}

// breakLines fills the layout's lines and layout runs: greedy line
// breaking per paragraph, BiDi reordering, alignment and glyph
// positioning, then the truncation pass.
func (l *Layout) breakLines() {
	l.prepareMarkers()

	y := l.params.Padding.Top
	for pi := range l.paragraphs {
		lo, hi := l.paragraphRuns(pi)
		if lo == hi {
			y = l.emptyLine(pi, y)
			continue
		}
		cLo := l.runs[lo].ClusterStart
		cHi := l.runs[hi-1].ClusterEnd
		if cLo == cHi {
			y = l.emptyLine(pi, y)
			continue
		}
		first := true
		for start := cLo; start < cHi; {
			end := l.findBreak(pi, start, cHi, first)
			lineEnd := end
			var ell *synthRun
			if l.ellipsizeWide() && l.rangeWidth(start, end) > l.lineBudget(pi, first) {
				lineEnd, ell = l.fitEllipsis(pi, start, end, first)
			}
			y = l.finalizeLine(pi, start, lineEnd, first, ell, y)
			if ell != nil {
				// The clusters hidden behind the ellipsis stay addressable
				// on the truncated line.
				l.lines[len(l.lines)-1].TextEnd = l.clusters[end-1].TextEnd
				l.lineMeta[len(l.lineMeta)-1].clusterEnd = end
			}
			start = end
			first = false
		}
	}
	if len(l.lines) == 0 {
		l.emptyLine(-1, y)
	}

	l.truncate()
}

// ellipsizeWide reports whether over-wide lines get a trailing ellipsis
// instead of overflowing. Wrapped lines only exceed the budget when a
// single unbreakable word does.
func (l *Layout) ellipsizeWide() bool {
	return l.params.Overflow == OverflowEllipsis && l.params.MaxWidth > 0
}

// rangeWidth measures [cStart, cEnd) excluding trailing whitespace.
func (l *Layout) rangeWidth(cStart, cEnd int) fixed.Int26_6 {
	for cEnd > cStart && l.clusters[cEnd-1].Flags&ClusterWhitespace != 0 {
		cEnd--
	}
	var w fixed.Int26_6
	for k := cStart; k < cEnd; k++ {
		w += l.ClusterAdvance(&l.clusters[k])
	}
	return w
}

// paragraphRuns returns the shaping run range [lo, hi) of paragraph pi.
// Runs are sorted by text start and never cross paragraphs.
func (l *Layout) paragraphRuns(pi int) (lo, hi int) {
	p := l.paragraphs[pi]
	lo = sort.Search(len(l.runs), func(i int) bool { return l.runs[i].TextStart >= p.start })
	hi = sort.Search(len(l.runs), func(i int) bool { return l.runs[i].TextStart >= p.end })
	return lo, hi
}

// lineBudget returns the horizontal space available to line content.
func (l *Layout) lineBudget(pi int, first bool) fixed.Int26_6 {
	if l.params.MaxWidth <= 0 {
		return unbounded
	}
	avail := l.params.MaxWidth - l.params.Padding.Left - l.params.Padding.Right
	if first {
		avail -= l.params.Indent
		avail -= l.markerReserve(pi)
	}
	if avail < 0 {
		avail = 0
	}
	return avail
}

// markerReserve returns the width the paragraph's marker claims on its
// first line, including the gap.
func (l *Layout) markerReserve(pi int) fixed.Int26_6 {
	if pi < 0 || pi >= len(l.markers) || l.markers[pi].empty() {
		return 0
	}
	return l.markers[pi].advance + l.params.Marker.Gap
}

// findBreak scans clusters from start and returns the cluster index the
// line ends before. Tab advances are rewritten to the next tab stop as a
// side effect, measured from the line's content origin.
func (l *Layout) findBreak(pi, start, cHi int, first bool) int {
	avail := l.lineBudget(pi, first)
	wrapping := l.params.Wrap != WrapNone && l.params.MaxWidth > 0

	var pen fixed.Int26_6
	lastCand := -1
	for ci := start; ci < cHi; ci++ {
		c := &l.clusters[ci]
		if ci > start && l.props.CanBreakBefore(c.TextStart) {
			lastCand = ci
		}
		adv := l.measureCluster(ci, pen)
		ws := c.Flags&ClusterWhitespace != 0
		if wrapping && ci > start && pen+adv > avail {
			if c.Flags&ClusterTab != 0 {
				// A tab crossing the budget moves to the next line and
				// resolves against the new origin.
				return ci
			}
			if !ws {
				if lastCand > start {
					return lastCand
				}
				if l.params.Wrap == WrapWordChar {
					// No opportunity fits; fall back to the grapheme boundary.
					return ci
				}
				// WrapWord lets the word overflow until the next opportunity.
			}
		}
		pen += adv
	}
	return cHi
}

// measureCluster returns the cluster's advance at pen, rewriting tab
// glyphs to reach the next tab stop.
func (l *Layout) measureCluster(ci int, pen fixed.Int26_6) fixed.Int26_6 {
	c := &l.clusters[ci]
	if c.Flags&ClusterTab != 0 && l.params.TabIncrement > 0 {
		inc := l.params.TabIncrement
		adv := inc - pen%inc
		if adv <= 0 {
			adv = inc
		}
		l.glyphs[c.GlyphStart].XAdvance = adv
		return adv
	}
	return l.ClusterAdvance(c)
}

// finalizeLine turns the cluster range [cStart, cEnd) into a positioned
// line: split into per-run pieces, reorder visually, align, and assign
// glyph positions. ell, when non-nil, is appended at the visual end of
// the line. Returns the y below the new line.
func (l *Layout) finalizeLine(pi, cStart, cEnd int, first bool, ell *synthRun, y fixed.Int26_6) fixed.Int26_6 {
	p := l.paragraphs[pi]
	runStart := len(l.layoutRuns)

	// Marker piece, placed in the start-side margin after alignment.
	var marker *synthRun
	if first && pi < len(l.markers) && !l.markers[pi].empty() {
		marker = &l.markers[pi]
		l.layoutRuns = append(l.layoutRuns, LayoutRun{
			Kind:         RunMarker,
			Run:          InvalidIndex,
			ContentRun:   InvalidIndex,
			ClusterStart: marker.clusterStart,
			ClusterEnd:   marker.clusterEnd,
			Face:         marker.face,
			Size:         marker.size,
			Advance:      marker.advance,
		})
	}

	// Split the cluster range into pieces, one per shaping run.
	pieceStart := len(l.layoutRuns)
	for ci := cStart; ci < cEnd; {
		run := l.clusters[ci].Run
		cj := ci + 1
		for cj < cEnd && l.clusters[cj].Run == run {
			cj++
		}
		sr := &l.runs[run]
		content := &l.content[sr.ContentRun]
		kind := RunText
		if content.Object != nil {
			kind = RunObject
		}
		var adv fixed.Int26_6
		for k := ci; k < cj; k++ {
			adv += l.ClusterAdvance(&l.clusters[k])
		}
		l.layoutRuns = append(l.layoutRuns, LayoutRun{
			Kind:         kind,
			Run:          run,
			ContentRun:   sr.ContentRun,
			ClusterStart: ci,
			ClusterEnd:   cj,
			Level:        sr.Level,
			Face:         sr.Face,
			Size:         sr.Size,
			Advance:      adv,
			Shift:        FromFloat(content.Attrs.BaselineShift),
		})
		ci = cj
	}

	// Trailing whitespace hangs outside the aligned width.
	var trim fixed.Int26_6
	if ell == nil {
		for k := cEnd - 1; k >= cStart; k-- {
			c := &l.clusters[k]
			if c.Flags&ClusterWhitespace == 0 {
				break
			}
			trim += l.ClusterAdvance(c)
		}
	}

	reorderVisual(l.layoutRuns[pieceStart:])

	// The ellipsis sits at the visual end of the base direction.
	if ell != nil {
		er := LayoutRun{
			Kind:         RunEllipsis,
			Run:          InvalidIndex,
			ContentRun:   InvalidIndex,
			ClusterStart: ell.clusterStart,
			ClusterEnd:   ell.clusterEnd,
			Face:         ell.face,
			Size:         ell.size,
			Advance:      ell.advance,
		}
		l.layoutRuns = append(l.layoutRuns, LayoutRun{})
		pieces := l.layoutRuns[pieceStart:]
		if p.baseRTL {
			copy(pieces[1:], pieces[:len(pieces)-1])
			pieces[0] = er
		} else {
			pieces[len(pieces)-1] = er
		}
	}

	// Line metrics.
	var ascent, descent fixed.Int26_6
	for i := pieceStart; i < len(l.layoutRuns); i++ {
		a, d := l.pieceExtents(&l.layoutRuns[i])
		if a > ascent {
			ascent = a
		}
		if d > descent {
			descent = d
		}
	}
	if marker != nil {
		if marker.ascent > ascent {
			ascent = marker.ascent
		}
		if marker.descent > descent {
			descent = marker.descent
		}
	}
	if ascent == 0 && descent == 0 {
		m, attrs := l.fallbackMetrics(p.start)
		ascent, descent = lineExtents(m, attrs)
	}

	var total fixed.Int26_6
	for i := pieceStart; i < len(l.layoutRuns); i++ {
		total += l.layoutRuns[i].Advance
	}
	width := total - trim

	// Horizontal placement.
	reserve := fixed.Int26_6(0)
	if first {
		reserve = l.params.Indent + l.markerReserve(pi)
	}
	avail := width
	if l.params.MaxWidth > 0 {
		avail = l.params.MaxWidth - l.params.Padding.Left - l.params.Padding.Right - reserve
	}
	var offset fixed.Int26_6
	switch l.params.Align {
	case AlignCenter:
		offset = (avail - width) / 2
	case AlignEnd:
		if !p.baseRTL {
			offset = avail - width
		}
	default: // AlignStart
		if p.baseRTL {
			offset = avail - width
		}
	}
	contentLeft := l.params.Padding.Left
	if !p.baseRTL {
		contentLeft += reserve
	}
	lineX := contentLeft + offset

	// Assign piece origins in visual order. For RTL paragraphs the
	// logically-trailing whitespace is visually leftmost and hangs
	// before the aligned content.
	pen := lineX
	if p.baseRTL {
		pen -= trim
	}
	for i := pieceStart; i < len(l.layoutRuns); i++ {
		l.layoutRuns[i].X = pen
		pen += l.layoutRuns[i].Advance
	}
	if marker != nil {
		mr := &l.layoutRuns[runStart]
		if p.baseRTL {
			mr.X = lineX + width + l.params.Marker.Gap
		} else {
			mr.X = lineX - marker.advance - l.params.Marker.Gap
		}
	}

	baseline := y + ascent
	l.positionGlyphs(runStart, baseline)

	textStart, textEnd := p.start, p.start
	if cStart < cEnd {
		textStart = l.clusters[cStart].TextStart
		textEnd = l.clusters[cEnd-1].TextEnd
	}
	l.lines = append(l.lines, Line{
		RunStart:  runStart,
		RunEnd:    len(l.layoutRuns),
		TextStart: textStart,
		TextEnd:   textEnd,
		X:         lineX,
		Y:         y,
		Width:     width,
		Height:    ascent + descent,
		Ascent:    ascent,
		Descent:   descent,
		Baseline:  baseline,
		Truncated: ell != nil,
	})
	l.lineMeta = append(l.lineMeta, lineMeta{
		para:         pi,
		clusterStart: cStart,
		clusterEnd:   cEnd,
		firstOfPara:  first,
	})
	return y + ascent + descent
}

// positionGlyphs assigns absolute glyph positions for every piece from
// runStart on, walking clusters in visual order within each piece.
func (l *Layout) positionGlyphs(runStart int, baseline fixed.Int26_6) {
	for i := runStart; i < len(l.layoutRuns); i++ {
		piece := &l.layoutRuns[i]
		pen := piece.X
		place := func(ci int) {
			c := &l.clusters[ci]
			for gi := c.GlyphStart; gi < c.GlyphEnd; gi++ {
				g := &l.glyphs[gi]
				g.X = pen + g.XOffset
				g.Y = baseline - g.YOffset - piece.Shift
				pen += g.XAdvance
			}
		}
		if piece.RTL() {
			for ci := piece.ClusterEnd - 1; ci >= piece.ClusterStart; ci-- {
				place(ci)
			}
		} else {
			for ci := piece.ClusterStart; ci < piece.ClusterEnd; ci++ {
				place(ci)
			}
		}
	}
}

// pieceExtents returns the ascent and descent a piece contributes to its
// line, after line-height adjustment and baseline shift.
func (l *Layout) pieceExtents(piece *LayoutRun) (asc, desc fixed.Int26_6) {
	if piece.Run == InvalidIndex {
		if piece.Face != nil {
			m := faceMetrics(piece.Face, piece.Size)
			return m.Ascent, m.Descent
		}
		return 0, 0
	}
	sr := &l.runs[piece.Run]
	if piece.Kind == RunObject {
		asc, desc = sr.Metrics.Ascent, 0
	} else {
		asc, desc = lineExtents(sr.Metrics, l.content[piece.ContentRun].Attrs)
	}
	if piece.Shift > 0 {
		asc += piece.Shift
	} else {
		desc -= piece.Shift
	}
	return asc, desc
}

// lineExtents applies the attribute line-height mode to raw font metrics
// using the half-leading model: extra height is split evenly above and
// below the text.
func lineExtents(m FontMetrics, attrs Attributes) (fixed.Int26_6, fixed.Int26_6) {
	natural := m.LineHeight()
	target := natural
	switch attrs.LineHeight.Mode {
	case LineHeightScale:
		target = fixedMul(natural, attrs.LineHeight.Value)
	case LineHeightAbsolute:
		target = FromFloat(attrs.LineHeight.Value)
	}
	leading := target - (m.Ascent + m.Descent)
	return m.Ascent + leading/2, m.Descent + (leading - leading/2)
}

// fallbackMetrics resolves metrics for lines with no glyphs (empty
// paragraphs) from the attributes at the given text offset.
func (l *Layout) fallbackMetrics(anchor int) (FontMetrics, Attributes) {
	if anchor >= len(l.text) {
		anchor = len(l.text) - 1
	}
	if anchor < 0 {
		anchor = 0
	}
	var attrs Attributes
	if len(l.content) > 0 {
		attrs = l.content[l.contentRunAt(anchor)].Attrs
	} else {
		attrs = l.params.Defaults.resolve(Attributes{})
	}
	face, size := l.matchFace(attrs)
	if face == nil {
		return FontMetrics{
			Ascent:  fixedMul(size, 0.8),
			Descent: fixedMul(size, 0.2),
		}, attrs
	}
	return faceMetrics(face, size), attrs
}

// emptyLine emits a zero-width line for a paragraph with no clusters.
// pi may be -1 when the whole text is empty.
func (l *Layout) emptyLine(pi int, y fixed.Int26_6) fixed.Int26_6 {
	anchor := 0
	baseRTL := l.params.Direction == DirectionRTL
	if pi >= 0 && pi < len(l.paragraphs) {
		anchor = l.paragraphs[pi].start
		baseRTL = l.paragraphs[pi].baseRTL
	}
	m, attrs := l.fallbackMetrics(anchor)
	ascent, descent := lineExtents(m, attrs)

	lineX := l.params.Padding.Left
	if !baseRTL {
		lineX += l.params.Indent
	}
	n := len(l.layoutRuns)
	l.lines = append(l.lines, Line{
		RunStart:  n,
		RunEnd:    n,
		TextStart: anchor,
		TextEnd:   anchor,
		X:         lineX,
		Y:         y,
		Height:    ascent + descent,
		Ascent:    ascent,
		Descent:   descent,
		Baseline:  y + ascent,
	})
	l.lineMeta = append(l.lineMeta, lineMeta{para: pi, firstOfPara: true})
	return y + ascent + descent
}

// reorderVisual permutes same-line pieces from logical to visual order:
// for each level from the highest down to the lowest odd one, maximal
// sequences at or above that level are reversed.
func reorderVisual(runs []LayoutRun) {
	maxLevel := 0
	minOdd := -1
	for i := range runs {
		lv := runs[i].Level
		if lv > maxLevel {
			maxLevel = lv
		}
		if lv&1 == 1 && (minOdd == -1 || lv < minOdd) {
			minOdd = lv
		}
	}
	if minOdd == -1 {
		return
	}
	for level := maxLevel; level >= minOdd; level-- {
		for i := 0; i < len(runs); {
			if runs[i].Level < level {
				i++
				continue
			}
			j := i
			for j < len(runs) && runs[j].Level >= level {
				j++
			}
			for a, b := i, j-1; a < b; a, b = a+1, b-1 {
				runs[a], runs[b] = runs[b], runs[a]
			}
			i = j
		}
	}
}
