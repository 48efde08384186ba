package skribidi

// Emoji presentation sequences (UTS #51) must stay inside a single shaping
// run regardless of the scripts of their components, so the property pass
// flags every codepoint belonging to one.
//
// The tables below cover the pictographic blocks; fine-grained
// Emoji_Presentation exceptions inside them resolve as emoji, which only
// costs an unnecessary run split avoidance, never a wrong glyph.

const (
	runeZWJ             = 0x200D // zero width joiner
	runeVS15            = 0xFE0E // text presentation selector
	runeVS16            = 0xFE0F // emoji presentation selector
	runeCombiningKeycap = 0x20E3
)

// isRegionalIndicator reports whether r is a regional indicator symbol.
func isRegionalIndicator(r rune) bool {
	return r >= 0x1F1E6 && r <= 0x1F1FF
}

// isSkinToneModifier reports whether r is an emoji skin tone modifier.
func isSkinToneModifier(r rune) bool {
	return r >= 0x1F3FB && r <= 0x1F3FF
}

// isTagCharacter reports whether r is an emoji tag sequence character.
func isTagCharacter(r rune) bool {
	return r >= 0xE0020 && r <= 0xE007F
}

// isDefaultEmoji reports whether r is rendered with emoji presentation by
// default.
func isDefaultEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F64F, // pictographs, emoticons
		r >= 0x1F680 && r <= 0x1F6FC, // transport and map
		r >= 0x1F900 && r <= 0x1F9FF, // supplemental symbols
		r >= 0x1FA70 && r <= 0x1FAFF, // extended-A
		r >= 0x2648 && r <= 0x2653, // zodiac
		r >= 0x26AA && r <= 0x26AB,
		r >= 0x2B1B && r <= 0x2B1C:
		return true
	}
	switch r {
	case 0x1F004, 0x1F0CF, 0x231A, 0x231B, 0x23F0, 0x23F3, 0x2614, 0x2615,
		0x267F, 0x2693, 0x26A1, 0x26BD, 0x26BE, 0x26C4, 0x26C5, 0x26CE,
		0x26D4, 0x26EA, 0x26F2, 0x26F3, 0x26F5, 0x26FA, 0x26FD, 0x2705,
		0x270A, 0x270B, 0x2728, 0x274C, 0x274E, 0x2757, 0x2B50, 0x2B55:
		return true
	}
	return isRegionalIndicator(r)
}

// isPictographic reports whether r may participate in an emoji sequence
// (Extended_Pictographic, roughly).
func isPictographic(r rune) bool {
	switch {
	case isDefaultEmoji(r):
		return true
	case r >= 0x2600 && r <= 0x27BF, // misc symbols, dingbats
		r >= 0x2190 && r <= 0x21FF, // arrows
		r >= 0x2300 && r <= 0x23FF, // technical
		r >= 0x25A0 && r <= 0x25FF, // geometric shapes
		r >= 0x2B00 && r <= 0x2BFF,
		r >= 0x1F000 && r <= 0x1FAFF:
		return true
	}
	switch r {
	case 0x00A9, 0x00AE, 0x203C, 0x2049, 0x2122, 0x2139, 0x2934, 0x2935,
		0x3030, 0x303D, 0x3297, 0x3299, 0x24C2:
		return true
	}
	return false
}

// markEmoji flags the codepoints of every emoji presentation sequence.
func (p *Properties) markEmoji(text []rune) {
	for i := 0; i < len(text); {
		n, emoji := emojiSequence(text[i:])
		if n == 0 {
			i++
			continue
		}
		if emoji {
			for j := i; j < i+n; j++ {
				p.flags[j] |= PropEmoji
			}
		}
		i += n
	}
}

// emojiSequence returns the length of the emoji (or text-presentation)
// sequence starting at text[0] and whether it renders as emoji.
// Returns (0, false) when text does not start a sequence.
func emojiSequence(text []rune) (n int, emoji bool) {
	if len(text) == 0 {
		return 0, false
	}
	r := text[0]

	// Flag sequence: a regional indicator pair.
	if isRegionalIndicator(r) {
		if len(text) > 1 && isRegionalIndicator(text[1]) {
			return 2, true
		}
		return 1, true
	}

	// Keycap sequence: [0-9#*] VS16? U+20E3.
	if r == '#' || r == '*' || (r >= '0' && r <= '9') {
		i := 1
		if i < len(text) && text[i] == runeVS16 {
			i++
		}
		if i < len(text) && text[i] == runeCombiningKeycap {
			return i + 1, true
		}
		return 0, false
	}

	if !isPictographic(r) {
		return 0, false
	}

	emoji = isDefaultEmoji(r)
	i := 1
	for i < len(text) {
		switch {
		case text[i] == runeVS16:
			emoji = true
			i++
		case text[i] == runeVS15:
			emoji = false
			i++
		case isSkinToneModifier(text[i]):
			emoji = true
			i++
		case isTagCharacter(text[i]):
			i++
		case text[i] == runeZWJ && i+1 < len(text) && isPictographic(text[i+1]):
			emoji = true
			i += 2
		default:
			return i, emoji
		}
	}
	return i, emoji
}
