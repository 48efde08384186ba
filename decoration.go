package skribidi

import "golang.org/x/image/math/fixed"

// decorate emits underline, strikethrough and overline segments per line.
// Visually adjacent pieces of the same content run share one segment, so
// a decoration drawn across a font-fallback boundary has no seam.
func (l *Layout) decorate() {
	for li := range l.lines {
		ln := &l.lines[li]
		ln.DecoStart = len(l.decos)
		for i := ln.RunStart; i < ln.RunEnd; i++ {
			piece := &l.layoutRuns[i]
			if piece.Run == InvalidIndex {
				continue
			}
			dec := l.content[piece.ContentRun].Attrs.Decorations
			if dec == 0 {
				continue
			}

			x := piece.X
			width := piece.Advance
			j := i + 1
			for j < ln.RunEnd {
				next := &l.layoutRuns[j]
				if next.Run == InvalidIndex || next.ContentRun != piece.ContentRun ||
					next.X != x+width || next.Shift != piece.Shift {
					break
				}
				width += next.Advance
				j++
			}

			m := l.runs[piece.Run].Metrics
			baseline := ln.Baseline - piece.Shift
			if dec.Has(DecorationUnderline) {
				l.addDeco(DecorationUnderline, i, x, baseline+m.UnderlineOffset, width, m.UnderlineSize)
			}
			if dec.Has(DecorationStrikethrough) {
				l.addDeco(DecorationStrikethrough, i, x, baseline-m.StrikeoutOffset, width, m.StrikeoutSize)
			}
			if dec.Has(DecorationOverline) {
				l.addDeco(DecorationOverline, i, x, baseline-m.Ascent, width, m.UnderlineSize)
			}
			i = j - 1
		}
		ln.DecoEnd = len(l.decos)
	}
}

func (l *Layout) addDeco(kind Decorations, run int, x, y, width, thickness fixed.Int26_6) {
	if thickness <= 0 {
		thickness = 1 << 4
	}
	l.decos = append(l.decos, Decoration{
		Kind:      kind,
		Run:       run,
		X:         x,
		Y:         y,
		Width:     width,
		Thickness: thickness,
	})
}
