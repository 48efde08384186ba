package skribidi

import "golang.org/x/image/math/fixed"

// truncate drops lines past the vertical budget and re-finalizes the last
// kept line with a trailing ellipsis. Horizontal ellipsis for over-wide
// lines is handled during line breaking.
func (l *Layout) truncate() {
	if l.params.Overflow != OverflowEllipsis || l.params.MaxHeight <= 0 {
		return
	}
	budget := l.params.MaxHeight - l.params.Padding.Bottom
	keep := len(l.lines)
	for i := range l.lines {
		if l.lines[i].Y+l.lines[i].Height > budget {
			keep = i
			break
		}
	}
	// At least one line survives even when it alone exceeds the budget.
	if keep == 0 {
		keep = 1
	}
	if keep >= len(l.lines) {
		return
	}

	li := keep - 1
	meta := l.lineMeta[li]
	y := l.lines[li].Y
	runStart := l.lines[li].RunStart
	l.lines = l.lines[:li]
	l.lineMeta = l.lineMeta[:li]
	l.layoutRuns = l.layoutRuns[:runStart]

	if meta.clusterEnd <= meta.clusterStart {
		// The cut fell on an empty line; keep it, nothing to ellipsize.
		l.emptyLine(meta.para, y)
	} else {
		end, ell := l.fitEllipsis(meta.para, meta.clusterStart, meta.clusterEnd, meta.firstOfPara)
		l.finalizeLine(meta.para, meta.clusterStart, end, meta.firstOfPara, ell, y)
	}
	// The surviving last line absorbs the rune range of everything cut,
	// keeping line text coverage monotonic for the caret.
	l.lines[len(l.lines)-1].TextEnd = len(l.text)
}

// fitEllipsis shrinks the cluster range until the content plus an
// ellipsis fits the line budget, dropping whitespace left hanging at the
// cut. Returns the new end and the shaped ellipsis.
func (l *Layout) fitEllipsis(pi, cStart, cEnd int, first bool) (int, *synthRun) {
	avail := l.lineBudget(pi, first)

	run := &l.runs[l.clusters[cStart].Run]
	ell := l.synthesizeEllipsis(run.Face, run.Size, l.clusters[cEnd-1].TextEnd)

	var width fixed.Int26_6
	for k := cStart; k < cEnd; k++ {
		width += l.ClusterAdvance(&l.clusters[k])
	}
	end := cEnd
	for end > cStart && width+ell.advance > avail {
		end--
		width -= l.ClusterAdvance(&l.clusters[end])
	}
	for end > cStart && l.clusters[end-1].Flags&ClusterWhitespace != 0 {
		end--
		width -= l.ClusterAdvance(&l.clusters[end])
	}
	return end, &ell
}
