package skribidi

import (
	"log/slog"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/bidi"
)

// paragraph is a mandatory-break unit of the text. The terminating
// separator belongs to its paragraph.
type paragraph struct {
	start, end int
	baseRTL    bool
}

// itemize splits the text into shaping runs: maximal spans with uniform
// content run, BiDi level, resolved script, emoji presentation and
// fallback face. Runs never cross paragraph boundaries.
func (l *Layout) itemize() {
	if len(l.text) == 0 {
		return
	}

	levels := l.scratch.Ints(len(l.text))
	start := 0
	for i := range l.text {
		if !l.props.MustBreakAfter(i) && i != len(l.text)-1 {
			continue
		}
		p := paragraph{start: start, end: i + 1, baseRTL: l.baseRTL(start, i+1)}
		l.computeLevels(p, levels)
		l.paragraphs = append(l.paragraphs, p)
		start = i + 1
	}

	type itemKey struct {
		para, content, level int
		script               language.Script
		emoji                bool
	}
	key := func(i, pIdx, cIdx int) itemKey {
		k := itemKey{para: pIdx, content: cIdx, level: levels[i], emoji: l.props.IsEmoji(i)}
		if !k.emoji {
			k.script = l.props.Script(i)
		}
		return k
	}

	pIdx, cIdx := 0, 0
	segStart := 0
	cur := key(0, 0, 0)
	for i := 1; i <= len(l.text); i++ {
		if i < len(l.text) {
			for l.paragraphs[pIdx].end <= i {
				pIdx++
			}
			for l.content[cIdx].End <= i {
				cIdx++
			}
			if k := key(i, pIdx, cIdx); k == cur {
				continue
			} else {
				l.emitSegment(segStart, i, cur.content, cur.level, cur.emoji)
				segStart, cur = i, k
				continue
			}
		}
		l.emitSegment(segStart, i, cur.content, cur.level, cur.emoji)
	}

	// A terminating separator opens an empty final paragraph so the caret
	// can sit on the line after it.
	if l.props.MustBreakAfter(len(l.text) - 1) {
		n := len(l.text)
		l.paragraphs = append(l.paragraphs, paragraph{
			start: n, end: n,
			baseRTL: l.params.Direction == DirectionRTL,
		})
	}
}

// baseRTL resolves the base direction of one paragraph. Auto uses the
// first strong codepoint, defaulting to left-to-right.
func (l *Layout) baseRTL(start, end int) bool {
	switch l.params.Direction {
	case DirectionLTR:
		return false
	case DirectionRTL:
		return true
	}
	for _, r := range l.text[start:end] {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.L:
			return false
		case bidi.R, bidi.AL:
			return true
		}
	}
	return false
}

// computeLevels fills levels[p.start:p.end] with per-rune embedding
// levels. The UBA resolver in x/text exposes run directions rather than
// raw levels, so levels collapse to base and base+1; reordering only
// needs the relative order, which this preserves.
func (l *Layout) computeLevels(p paragraph, levels []int) {
	base := 0
	if p.baseRTL {
		base = 1
	}
	for i := p.start; i < p.end; i++ {
		levels[i] = base
	}

	defaultDir := bidi.Neutral
	switch l.params.Direction {
	case DirectionLTR:
		defaultDir = bidi.LeftToRight
	case DirectionRTL:
		defaultDir = bidi.RightToLeft
	}
	var bp bidi.Paragraph
	if _, err := bp.SetString(string(l.text[p.start:p.end]), bidi.DefaultDirection(defaultDir)); err != nil {
		return
	}
	ordering, err := bp.Order()
	if err != nil {
		return
	}
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		rtl := run.Direction() == bidi.RightToLeft
		if rtl == p.baseRTL {
			continue
		}
		// Pos returns rune indices, end inclusive.
		s, e := run.Pos()
		for j := s; j <= e && p.start+j < p.end; j++ {
			levels[p.start+j] = base + 1
		}
	}
}

// emitSegment resolves fonts for one uniform segment and appends its
// shaping runs. Fallback changes within the segment split it further,
// always on grapheme boundaries so a cluster never straddles faces.
func (l *Layout) emitSegment(start, end, cIdx, level int, emoji bool) {
	content := &l.content[cIdx]
	attrs := content.Attrs
	script := l.props.Script(start)
	size := FromFloat(attrs.Size)

	fontset := l.provider.Match(attrs.Family, attrs.Aspect, script, attrs.language())
	if fontset == nil || fontset.Primary() == nil {
		Logger().Warn("no font matched, span dropped",
			slog.String("family", attrs.Family),
			slog.Int("start", start), slog.Int("end", end))
		return
	}

	if content.Object != nil {
		face := fontset.Primary()
		_, h := content.Object.resolvedSize(size)
		l.runs = append(l.runs, ShapingRun{
			TextStart: start, TextEnd: end,
			Script: script, Level: level,
			Face: face, Size: size, ContentRun: cIdx,
			Metrics: FontMetrics{Ascent: h},
		})
		return
	}

	appendRun := func(s, e int, face *font.Face) {
		l.runs = append(l.runs, ShapingRun{
			TextStart: s, TextEnd: e,
			Script: script, Level: level,
			Face: face, Size: size, ContentRun: cIdx,
			Emoji:   emoji,
			Metrics: faceMetrics(face, size),
		})
	}

	// Emoji sequences resolve as a unit on their first codepoint so ZWJ
	// chains stay on one face.
	if emoji {
		appendRun(start, end, fontset.ResolveRune(l.text[start]))
		return
	}

	var cur *font.Face
	runStart := start
	for i := start; i < end; i = l.props.NextGrapheme(i) {
		var face *font.Face
		switch {
		case cur != nil && (l.props.IsWhitespace(i) || l.props.IsControl(i)):
			// Spaces and controls render invisibly; keeping the current
			// face avoids spurious run splits around them.
			face = cur
		case l.props.IsControl(i):
			// A control at the run start is coverage-tested as a space,
			// never by its own codepoint.
			face = fontset.ResolveRune(' ')
		default:
			face = fontset.ResolveRune(l.text[i])
		}
		if cur == nil {
			cur = face
		}
		if face != cur {
			appendRun(runStart, i, cur)
			runStart, cur = i, face
		}
	}
	if runStart < end {
		appendRun(runStart, end, cur)
	}
}
