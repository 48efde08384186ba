package skribidi

import (
	"unicode"

	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/segmenter"
)

// PropFlags is a bit set of per-codepoint derived properties.
type PropFlags uint16

const (
	// PropGraphemeStart marks the first codepoint of a grapheme cluster.
	PropGraphemeStart PropFlags = 1 << iota
	// PropWordStart marks the first codepoint of a word.
	PropWordStart
	// PropAllowBreakBefore marks a position where a line may break.
	PropAllowBreakBefore
	// PropMustBreakAfter marks a codepoint that terminates a paragraph.
	PropMustBreakAfter
	// PropWhitespace marks whitespace codepoints.
	PropWhitespace
	// PropControl marks control codepoints.
	PropControl
	// PropPunct marks punctuation codepoints.
	PropPunct
	// PropTab marks the horizontal tab.
	PropTab
	// PropEmoji marks codepoints inside an emoji presentation sequence.
	PropEmoji
)

// Properties is the per-codepoint property table derived once per
// itemization pass. It backs line breaking, cluster alignment and caret
// navigation, and is exposed so editors can reuse it (grapheme-aware
// backspace, word selection) without recomputing.
type Properties struct {
	flags   []PropFlags
	scripts []language.Script
}

// ComputeProperties derives the property table for text.
func ComputeProperties(text []rune) Properties {
	p := Properties{
		flags:   make([]PropFlags, len(text)),
		scripts: make([]language.Script, len(text)),
	}
	if len(text) == 0 {
		return p
	}

	p.classify(text)
	p.segment(text)
	p.resolveScripts(text)
	p.markEmoji(text)
	p.markWords(text)
	return p
}

// classify sets the character-class flags.
func (p *Properties) classify(text []rune) {
	for i, r := range text {
		var f PropFlags
		if unicode.IsSpace(r) {
			f |= PropWhitespace
		}
		if unicode.IsControl(r) {
			f |= PropControl
		}
		if unicode.IsPunct(r) {
			f |= PropPunct
		}
		if r == '\t' {
			f |= PropTab
		}
		p.flags[i] = f
	}
}

// segment derives grapheme boundaries and line-break opportunities from
// the UAX #14 / #29 segmenter.
func (p *Properties) segment(text []rune) {
	var seg segmenter.Segmenter
	seg.Init(text)

	gr := seg.GraphemeIterator()
	for gr.Next() {
		p.flags[gr.Grapheme().Offset] |= PropGraphemeStart
	}

	li := seg.LineIterator()
	for li.Next() {
		line := li.Line()
		if line.Offset > 0 {
			p.flags[line.Offset] |= PropAllowBreakBefore
		}
		if line.IsMandatoryBreak && len(line.Text) > 0 {
			end := line.Offset + len(line.Text) - 1
			// CR+LF terminates on the LF; the pair is one grapheme and is
			// never split downstream.
			p.flags[end] |= PropMustBreakAfter
		}
	}
	// The segmenter reports a mandatory break at end of text; that one is
	// implicit and must not spill an empty trailing paragraph.
	last := len(text) - 1
	if p.flags[last]&PropMustBreakAfter != 0 && !isParagraphSeparator(text[last]) {
		p.flags[last] &^= PropMustBreakAfter
	}
}

// resolveScripts assigns a concrete script per codepoint. Common and
// inherited codepoints take the nearest preceding resolved script;
// leading ones default to Latin until the first definite script appears.
func (p *Properties) resolveScripts(text []rune) {
	current := language.Latin
	for i, r := range text {
		s := language.LookupScript(r)
		if isCommonScript(s) {
			p.scripts[i] = current
			continue
		}
		current = s
		p.scripts[i] = s
	}
}

// markWords flags word starts: the first codepoint, and every transition
// from whitespace into non-whitespace. Punctuation handling is left to
// the caret engine's word-navigation modes.
func (p *Properties) markWords(text []rune) {
	for i := range text {
		if p.flags[i]&PropWhitespace != 0 {
			continue
		}
		if i == 0 || p.flags[i-1]&PropWhitespace != 0 {
			p.flags[i] |= PropWordStart
		}
	}
}

// Len returns the number of codepoints covered by the table.
func (p *Properties) Len() int { return len(p.flags) }

// Flags returns the flags of the codepoint at i. Out-of-range i returns 0.
func (p *Properties) Flags(i int) PropFlags {
	if i < 0 || i >= len(p.flags) {
		return 0
	}
	return p.flags[i]
}

// Script returns the resolved script of the codepoint at i.
func (p *Properties) Script(i int) language.Script {
	if i < 0 || i >= len(p.scripts) {
		return language.Latin
	}
	return p.scripts[i]
}

// IsGraphemeStart reports whether i starts a grapheme cluster.
func (p *Properties) IsGraphemeStart(i int) bool {
	return p.Flags(i)&PropGraphemeStart != 0
}

// IsWordStart reports whether i starts a word.
func (p *Properties) IsWordStart(i int) bool { return p.Flags(i)&PropWordStart != 0 }

// CanBreakBefore reports whether a line may break before i.
func (p *Properties) CanBreakBefore(i int) bool {
	return p.Flags(i)&PropAllowBreakBefore != 0
}

// MustBreakAfter reports whether i terminates a paragraph.
func (p *Properties) MustBreakAfter(i int) bool {
	return p.Flags(i)&PropMustBreakAfter != 0
}

// IsWhitespace reports whether codepoint i is whitespace.
func (p *Properties) IsWhitespace(i int) bool { return p.Flags(i)&PropWhitespace != 0 }

// IsControl reports whether codepoint i is a control character.
func (p *Properties) IsControl(i int) bool { return p.Flags(i)&PropControl != 0 }

// IsPunct reports whether codepoint i is punctuation.
func (p *Properties) IsPunct(i int) bool { return p.Flags(i)&PropPunct != 0 }

// IsEmoji reports whether codepoint i is part of an emoji presentation
// sequence.
func (p *Properties) IsEmoji(i int) bool { return p.Flags(i)&PropEmoji != 0 }

// NextGrapheme returns the offset of the grapheme following the one
// containing i, clamped to the text length.
func (p *Properties) NextGrapheme(i int) int {
	if i < 0 {
		i = 0
	}
	for j := i + 1; j < len(p.flags); j++ {
		if p.flags[j]&PropGraphemeStart != 0 {
			return j
		}
	}
	return len(p.flags)
}

// PrevGrapheme returns the offset of the grapheme preceding i, clamped
// to zero.
func (p *Properties) PrevGrapheme(i int) int {
	if i > len(p.flags) {
		i = len(p.flags)
	}
	for j := i - 1; j > 0; j-- {
		if p.flags[j]&PropGraphemeStart != 0 {
			return j
		}
	}
	return 0
}

// GraphemeStart returns the start offset of the grapheme containing i.
func (p *Properties) GraphemeStart(i int) int {
	if i >= len(p.flags) {
		return len(p.flags)
	}
	for j := i; j > 0; j-- {
		if p.flags[j]&PropGraphemeStart != 0 {
			return j
		}
	}
	return 0
}

// CountGraphemes returns the number of grapheme clusters in [start, end).
func (p *Properties) CountGraphemes(start, end int) int {
	n := 0
	for i := max(start, 0); i < min(end, len(p.flags)); i++ {
		if p.flags[i]&PropGraphemeStart != 0 {
			n++
		}
	}
	return n
}

// isCommonScript reports whether s carries no script identity of its own.
func isCommonScript(s language.Script) bool {
	return s == language.Common || s == language.Inherited || s == language.Unknown || s == 0
}

// isParagraphSeparator reports whether r forces a paragraph break.
func isParagraphSeparator(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
