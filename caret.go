package skribidi

import (
	"sort"

	"golang.org/x/image/math/fixed"
)

// Affinity disambiguates a caret sitting exactly on a line boundary: the
// same rune offset ends one line and starts the next after a soft wrap.
type Affinity uint8

const (
	// AffinityDownstream attaches the caret to the text after the offset
	// (start of the later line).
	AffinityDownstream Affinity = iota
	// AffinityUpstream attaches the caret to the text before the offset
	// (end of the earlier line).
	AffinityUpstream
)

// String returns the string representation of the affinity.
func (a Affinity) String() string {
	switch a {
	case AffinityDownstream:
		return "Downstream"
	case AffinityUpstream:
		return "Upstream"
	default:
		return unknownStr
	}
}

// WordNavMode selects the word-navigation convention.
type WordNavMode uint8

const (
	// WordNavDefault jumps between word starts, the common Windows and
	// Linux editor behavior.
	WordNavDefault WordNavMode = iota
	// WordNavMac stops at the end of the current word going forward and
	// at its start going backward, the macOS behavior.
	WordNavMac
)

// String returns the string representation of the mode.
func (m WordNavMode) String() string {
	switch m {
	case WordNavDefault:
		return "Default"
	case WordNavMac:
		return "Mac"
	default:
		return unknownStr
	}
}

// CaretMode selects the caret stepping convention.
type CaretMode uint8

const (
	// CaretModeLegacy yields one caret stop per grapheme boundary.
	CaretModeLegacy CaretMode = iota
	// CaretModeBidi adds a stop on each side of a direction change so
	// the caret can hug either end of a reordered run.
	CaretModeBidi
)

// String returns the string representation of the mode.
func (m CaretMode) String() string {
	switch m {
	case CaretModeLegacy:
		return "Legacy"
	case CaretModeBidi:
		return "Bidi"
	default:
		return unknownStr
	}
}

// caretStop is one caret position of a line: a rune boundary with its
// visual geometry, the graphemes flanking it and back-references into
// the layout arrays.
type caretStop struct {
	index int
	x     fixed.Int26_6
	aff   Affinity

	// left and right are the text offsets of the graphemes visually
	// adjacent to the stop, InvalidIndex at the line edges.
	left, right int

	// run/cluster/glyph locate the grapheme logically preceding the
	// stop, whose style a new insertion takes.
	run, cluster, glyph int
}

// CaretIterator walks a line's caret positions left to right.
type CaretIterator struct {
	stops []caretStop
	i     int
}

// Next advances to the next caret position.
func (it *CaretIterator) Next() bool {
	it.i++
	return it.i < len(it.stops)
}

// Index returns the rune offset of the current position.
func (it *CaretIterator) Index() int { return it.stops[it.i].index }

// X returns the visual x coordinate of the current position.
func (it *CaretIterator) X() fixed.Int26_6 { return it.stops[it.i].x }

// Affinity returns the side of the boundary the caret hugs.
func (it *CaretIterator) Affinity() Affinity { return it.stops[it.i].aff }

// LeftIndex returns the text offset of the grapheme visually to the left
// of the position, or InvalidIndex at the line's left edge.
func (it *CaretIterator) LeftIndex() int { return it.stops[it.i].left }

// RightIndex returns the text offset of the grapheme visually to the
// right of the position, or InvalidIndex at the line's right edge.
func (it *CaretIterator) RightIndex() int { return it.stops[it.i].right }

// Run returns the layout-run index of the grapheme logically preceding
// the position, or InvalidIndex on an empty line.
func (it *CaretIterator) Run() int { return it.stops[it.i].run }

// Cluster returns the cluster index of the grapheme logically preceding
// the position, or InvalidIndex on an empty line.
func (it *CaretIterator) Cluster() int { return it.stops[it.i].cluster }

// Glyph returns the first glyph index of that cluster, or InvalidIndex
// on an empty line.
func (it *CaretIterator) Glyph() int { return it.stops[it.i].glyph }

// LineCarets returns an iterator over line li's caret positions in
// visual order. Call Next before the first access.
func (l *Layout) LineCarets(li int) CaretIterator {
	return CaretIterator{stops: l.caretStops(li), i: -1}
}

// LineForIndex returns the line containing rune offset idx. On a soft
// wrap boundary the affinity picks the side; after a hard break the
// caret always lands on the later line.
func (l *Layout) LineForIndex(idx int, aff Affinity) int {
	if len(l.lines) == 0 {
		return 0
	}
	for li := range l.lines {
		ln := &l.lines[li]
		if idx > ln.TextEnd {
			continue
		}
		if idx < ln.TextEnd {
			return li
		}
		// idx == ln.TextEnd.
		if li == len(l.lines)-1 {
			return li
		}
		if l.lineEndsHard(li) {
			return li + 1
		}
		if aff == AffinityUpstream {
			return li
		}
		return li + 1
	}
	return len(l.lines) - 1
}

// lineEndsHard reports whether line li ends with a paragraph separator.
func (l *Layout) lineEndsHard(li int) bool {
	end := l.lines[li].TextEnd
	return end > 0 && end <= len(l.text) && isParagraphSeparator(l.text[end-1])
}

// caretBoundaryEnd returns the last caret boundary of a line: before the
// terminating separator on hard lines, the wrap offset otherwise.
func (l *Layout) caretBoundaryEnd(li int) int {
	ln := &l.lines[li]
	if l.lineEndsHard(li) {
		return l.props.GraphemeStart(ln.TextEnd - 1)
	}
	return ln.TextEnd
}

// CaretRect returns the caret box at rune offset idx: a zero-width rect
// spanning its line's height. Offsets inside a grapheme snap to its
// start.
func (l *Layout) CaretRect(idx int, aff Affinity) Rect {
	if idx < 0 {
		idx = 0
	}
	if idx > len(l.text) {
		idx = len(l.text)
	}
	if idx < len(l.text) {
		idx = l.props.GraphemeStart(idx)
	}
	if len(l.lines) == 0 {
		return Rect{}
	}
	li := l.LineForIndex(idx, aff)
	ln := &l.lines[li]
	return Rect{X: l.caretX(li, idx), Y: ln.Y, Height: ln.Height}
}

// caretX computes the visual x of the boundary idx on line li.
func (l *Layout) caretX(li, idx int) fixed.Int26_6 {
	ln := &l.lines[li]
	for i := ln.RunStart; i < ln.RunEnd; i++ {
		piece := &l.layoutRuns[i]
		if piece.Run == InvalidIndex {
			continue
		}
		for ci := piece.ClusterStart; ci < piece.ClusterEnd; ci++ {
			c := &l.clusters[ci]
			if idx >= c.TextStart && idx < c.TextEnd {
				return l.boundaryX(piece, c, idx, false)
			}
		}
	}
	// idx is the line end; use the trailing edge of the cluster holding
	// the final grapheme.
	prev := idx - 1
	for i := ln.RunStart; i < ln.RunEnd; i++ {
		piece := &l.layoutRuns[i]
		if piece.Run == InvalidIndex {
			continue
		}
		for ci := piece.ClusterStart; ci < piece.ClusterEnd; ci++ {
			c := &l.clusters[ci]
			if prev >= c.TextStart && prev < c.TextEnd {
				return l.boundaryX(piece, c, idx, true)
			}
		}
	}
	return ln.X
}

// boundaryX locates the boundary idx within cluster c of piece. Multi-
// grapheme clusters (ligatures) interpolate by grapheme count. trailing
// asks for the edge after the cluster's last grapheme.
func (l *Layout) boundaryX(piece *LayoutRun, c *Cluster, idx int, trailing bool) fixed.Int26_6 {
	left := l.clusterLeft(c)
	adv := l.ClusterAdvance(c)
	total := l.props.CountGraphemes(c.TextStart, c.TextEnd)
	if total == 0 {
		total = 1
	}
	var frac fixed.Int26_6
	if trailing {
		frac = adv
	} else {
		before := l.props.CountGraphemes(c.TextStart, idx)
		frac = adv * fixed.Int26_6(before) / fixed.Int26_6(total)
	}
	if piece.RTL() {
		return left + adv - frac
	}
	return left + frac
}

// clusterLeft returns the visual left edge of a cluster.
func (l *Layout) clusterLeft(c *Cluster) fixed.Int26_6 {
	if c.GlyphStart >= c.GlyphEnd {
		return 0
	}
	g := &l.glyphs[c.GlyphStart]
	return g.X - g.XOffset
}

// caretStops enumerates the caret boundaries of a line sorted by x,
// using the layout's configured stepping mode.
func (l *Layout) caretStops(li int) []caretStop {
	return l.caretStopsMode(li, l.params.CaretMode)
}

func (l *Layout) caretStopsMode(li int, mode CaretMode) []caretStop {
	if li < 0 || li >= len(l.lines) {
		return nil
	}
	ln := &l.lines[li]
	endCap := l.caretBoundaryEnd(li)

	stops := make([]caretStop, 0, endCap-ln.TextStart+2)
	for idx := ln.TextStart; idx < endCap; idx = l.props.NextGrapheme(idx) {
		stops = append(stops, caretStop{index: idx, x: l.caretX(li, idx), aff: AffinityDownstream})
		if idx >= len(l.text) {
			break
		}
	}
	stops = append(stops, caretStop{index: endCap, x: l.caretX(li, endCap), aff: l.affinityFor(li, endCap)})

	if mode == CaretModeBidi {
		stops = l.appendDirectionStops(li, endCap, stops)
	}
	l.annotateStops(li, stops)
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].x < stops[j].x })
	return stops
}

// appendDirectionStops adds the extra stops of the BiDi-aware stepping
// mode: every direction change between adjacent pieces gets one stop per
// side of the shared visual boundary.
func (l *Layout) appendDirectionStops(li, endCap int, stops []caretStop) []caretStop {
	ln := &l.lines[li]
	prev := -1
	for ri := ln.RunStart; ri < ln.RunEnd; ri++ {
		piece := &l.layoutRuns[ri]
		if piece.Run == InvalidIndex || piece.ClusterStart >= piece.ClusterEnd {
			continue
		}
		if prev >= 0 {
			p := &l.layoutRuns[prev]
			if p.RTL() != piece.RTL() {
				x := piece.X
				idx, aff := l.pieceEdge(p, true)
				stops = addStop(stops, idx, x, aff, endCap)
				idx, aff = l.pieceEdge(piece, false)
				stops = addStop(stops, idx, x, aff, endCap)
			}
		}
		prev = ri
	}
	return stops
}

// pieceEdge returns the logical boundary at a piece's visual edge and
// the side of the text the caret attaches to there.
func (l *Layout) pieceEdge(p *LayoutRun, rightEdge bool) (int, Affinity) {
	first := &l.clusters[p.ClusterStart]
	last := &l.clusters[p.ClusterEnd-1]
	if p.RTL() == rightEdge {
		return first.TextStart, AffinityDownstream
	}
	return last.TextEnd, AffinityUpstream
}

// addStop appends a stop unless an equal index/position pair exists.
func addStop(stops []caretStop, idx int, x fixed.Int26_6, aff Affinity, endCap int) []caretStop {
	if idx > endCap {
		return stops
	}
	for i := range stops {
		if stops[i].index == idx && stops[i].x == x {
			return stops
		}
	}
	return append(stops, caretStop{index: idx, x: x, aff: aff})
}

// annotateStops fills each stop's visual neighbors and back-references
// from the line's visual grapheme list.
func (l *Layout) annotateStops(li int, stops []caretStop) {
	vgs := l.visualGraphemes(li)
	for si := range stops {
		s := &stops[si]
		s.left, s.right = InvalidIndex, InvalidIndex
		s.run, s.cluster, s.glyph = InvalidIndex, InvalidIndex, InvalidIndex
		ref := -1
		for gi := range vgs {
			g := &vgs[gi]
			if g.x == s.x {
				s.right = g.start
			}
			if g.x+g.width == s.x {
				s.left = g.start
			}
			if g.start < s.index && (ref == -1 || g.start > vgs[ref].start) {
				ref = gi
			}
		}
		if ref == -1 {
			for gi := range vgs {
				if vgs[gi].start == s.index {
					ref = gi
					break
				}
			}
		}
		if ref >= 0 {
			s.run, s.cluster, s.glyph = vgs[ref].run, vgs[ref].cluster, vgs[ref].glyph
		}
	}
}

// visualGrapheme is one grapheme of a line in visual order, with its
// geometry and back-references into the layout arrays.
type visualGrapheme struct {
	start, end int
	x, width   fixed.Int26_6
	run        int
	cluster    int
	glyph      int
}

// visualGraphemes lists line li's graphemes left to right. Boundaries
// inside multi-grapheme clusters interpolate by grapheme count, matching
// caretX.
func (l *Layout) visualGraphemes(li int) []visualGrapheme {
	ln := &l.lines[li]
	var out []visualGrapheme
	for ri := ln.RunStart; ri < ln.RunEnd; ri++ {
		piece := &l.layoutRuns[ri]
		if piece.Run == InvalidIndex {
			continue
		}
		appendCluster := func(ci int) {
			c := &l.clusters[ci]
			if c.TextStart >= c.TextEnd {
				return
			}
			left := l.clusterLeft(c)
			adv := l.ClusterAdvance(c)
			starts := make([]int, 0, c.TextEnd-c.TextStart)
			for g := c.TextStart; g < c.TextEnd; g = l.props.NextGrapheme(g) {
				starts = append(starts, g)
			}
			total := fixed.Int26_6(len(starts))
			emit := func(j int) {
				ge := c.TextEnd
				if j+1 < len(starts) {
					ge = starts[j+1]
				}
				fracStart := adv * fixed.Int26_6(j) / total
				fracEnd := adv * fixed.Int26_6(j+1) / total
				x := left + fracStart
				if piece.RTL() {
					x = left + adv - fracEnd
				}
				out = append(out, visualGrapheme{
					start: starts[j], end: ge,
					x: x, width: fracEnd - fracStart,
					run: ri, cluster: ci, glyph: c.GlyphStart,
				})
			}
			if piece.RTL() {
				for j := len(starts) - 1; j >= 0; j-- {
					emit(j)
				}
			} else {
				for j := range starts {
					emit(j)
				}
			}
		}
		if piece.RTL() {
			for ci := piece.ClusterEnd - 1; ci >= piece.ClusterStart; ci-- {
				appendCluster(ci)
			}
		} else {
			for ci := piece.ClusterStart; ci < piece.ClusterEnd; ci++ {
				appendCluster(ci)
			}
		}
	}
	return out
}

// HitTest maps a point to the nearest caret position. Points outside the
// text clamp to the closest line and edge.
func (l *Layout) HitTest(x, y fixed.Int26_6) (int, Affinity) {
	if len(l.lines) == 0 {
		return 0, AffinityDownstream
	}
	li := len(l.lines) - 1
	for i := range l.lines {
		if y < l.lines[i].Y+l.lines[i].Height {
			li = i
			break
		}
	}
	return l.HitTestLine(li, x)
}

// HitTestLine maps an x coordinate to the nearest caret position on line
// li. Editors use it directly for up/down motion with a sticky x.
func (l *Layout) HitTestLine(li int, x fixed.Int26_6) (int, Affinity) {
	if li < 0 {
		li = 0
	}
	if li >= len(l.lines) {
		li = len(l.lines) - 1
	}
	stops := l.caretStops(li)
	if len(stops) == 0 {
		return l.lines[li].TextStart, AffinityDownstream
	}
	best := 0
	bestDist := fixedAbs(x - stops[0].x)
	for i := 1; i < len(stops); i++ {
		if d := fixedAbs(x - stops[i].x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return stops[best].index, stops[best].aff
}

func fixedAbs(v fixed.Int26_6) fixed.Int26_6 {
	if v < 0 {
		return -v
	}
	return v
}

// affinityFor returns upstream only for the soft-wrap end boundary.
func (l *Layout) affinityFor(li, idx int) Affinity {
	if idx == l.lines[li].TextEnd && !l.lineEndsHard(li) {
		return AffinityUpstream
	}
	return AffinityDownstream
}

// MoveVisual moves the caret one position left or right in visual order,
// crossing to the adjacent line at the edges. It returns the new offset
// and affinity.
func (l *Layout) MoveVisual(idx int, aff Affinity, right bool) (int, Affinity) {
	if len(l.lines) == 0 {
		return idx, aff
	}
	li := l.LineForIndex(idx, aff)
	stops := l.caretStops(li)
	cur := -1
	for i := range stops {
		if stops[i].index != idx {
			continue
		}
		if cur == -1 || stops[i].aff == aff {
			cur = i
		}
		if stops[i].aff == aff {
			break
		}
	}
	if cur == -1 {
		return l.HitTestLine(li, l.caretX(li, idx))
	}
	if right {
		if cur+1 < len(stops) {
			return stops[cur+1].index, stops[cur+1].aff
		}
		if li+1 < len(l.lines) {
			next := l.caretStops(li + 1)
			if len(next) > 0 {
				return next[0].index, next[0].aff
			}
			return l.lines[li+1].TextStart, AffinityDownstream
		}
		return stops[cur].index, stops[cur].aff
	}
	if cur > 0 {
		return stops[cur-1].index, stops[cur-1].aff
	}
	if li > 0 {
		prev := l.caretStops(li - 1)
		if len(prev) > 0 {
			last := prev[len(prev)-1]
			return last.index, last.aff
		}
		return l.lines[li-1].TextStart, AffinityDownstream
	}
	return stops[cur].index, stops[cur].aff
}

// NextWordIndex returns the offset the caret jumps to on a forward word
// motion from idx.
func (l *Layout) NextWordIndex(idx int, mode WordNavMode) int {
	n := len(l.text)
	if idx >= n {
		return n
	}
	if mode == WordNavMac {
		j := idx
		for j < n && (l.props.IsWhitespace(j) || l.props.IsPunct(j)) {
			j++
		}
		for j < n && !l.props.IsWhitespace(j) && !l.props.IsPunct(j) {
			j++
		}
		return j
	}
	for j := idx + 1; j < n; j++ {
		if l.props.IsWordStart(j) {
			return j
		}
	}
	return n
}

// PrevWordIndex returns the offset the caret jumps to on a backward word
// motion from idx.
func (l *Layout) PrevWordIndex(idx int, mode WordNavMode) int {
	if idx <= 0 {
		return 0
	}
	j := idx - 1
	if mode == WordNavMac {
		for j > 0 && (l.props.IsWhitespace(j) || l.props.IsPunct(j)) {
			j--
		}
		for j > 0 && !l.props.IsWhitespace(j-1) && !l.props.IsPunct(j-1) {
			j--
		}
		return j
	}
	for j > 0 && l.props.IsWhitespace(j) {
		j--
	}
	for j > 0 && !l.props.IsWordStart(j) {
		j--
	}
	return j
}

// SelectionBounds returns the visual rectangles covering the rune range
// [start, end), one or more per line. Offsets snap to grapheme starts.
func (l *Layout) SelectionBounds(start, end int) []Rect {
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end > len(l.text) {
		end = len(l.text)
	}
	if start < len(l.text) {
		start = l.props.GraphemeStart(start)
	}
	if end < len(l.text) {
		end = l.props.GraphemeStart(end)
	}
	if start >= end {
		return nil
	}

	var out []Rect
	for li := range l.lines {
		ln := &l.lines[li]
		if ln.TextEnd <= start || ln.TextStart >= end {
			continue
		}
		intervals := l.lineSelection(li, start, end)
		for _, iv := range intervals {
			out = append(out, Rect{X: iv[0], Y: ln.Y, Width: iv[1] - iv[0], Height: ln.Height})
		}
	}
	return out
}

// lineSelection collects the merged x intervals of selected clusters on
// one line.
func (l *Layout) lineSelection(li, start, end int) [][2]fixed.Int26_6 {
	ln := &l.lines[li]
	var ivs [][2]fixed.Int26_6
	for i := ln.RunStart; i < ln.RunEnd; i++ {
		piece := &l.layoutRuns[i]
		if piece.Run == InvalidIndex {
			continue
		}
		for ci := piece.ClusterStart; ci < piece.ClusterEnd; ci++ {
			c := &l.clusters[ci]
			if c.TextEnd <= start || c.TextStart >= end {
				continue
			}
			left := l.clusterLeft(c)
			right := left + l.ClusterAdvance(c)
			if right > left {
				ivs = append(ivs, [2]fixed.Int26_6{left, right})
			}
		}
	}
	if len(ivs) == 0 {
		return nil
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i][0] < ivs[j][0] })
	merged := ivs[:1]
	for _, iv := range ivs[1:] {
		last := &merged[len(merged)-1]
		if iv[0] <= last[1] {
			if iv[1] > last[1] {
				last[1] = iv[1]
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}
