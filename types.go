package skribidi

import (
	"golang.org/x/image/math/fixed"
)

// unknownStr is the string returned for unknown enum values.
const unknownStr = "Unknown"

// Direction specifies horizontal text direction.
type Direction int

const (
	// DirectionAuto derives the paragraph direction from its first strong
	// directional codepoint, defaulting to LTR.
	DirectionAuto Direction = iota
	// DirectionLTR is left-to-right text (English, French, etc.)
	DirectionLTR
	// DirectionRTL is right-to-left text (Arabic, Hebrew)
	DirectionRTL
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionAuto:
		return "Auto"
	case DirectionLTR:
		return "LTR"
	case DirectionRTL:
		return "RTL"
	default:
		return unknownStr
	}
}

// WrapMode specifies how text is wrapped when a line exceeds the maximum
// width.
type WrapMode uint8

const (
	// WrapWordChar breaks at word boundaries first, then falls back to
	// cluster boundaries for words wider than the whole box. This is the
	// default mode.
	WrapWordChar WrapMode = iota

	// WrapNone breaks only at mandatory breaks; lines may exceed MaxWidth.
	WrapNone

	// WrapWord breaks at word boundaries only. A single word wider than
	// the box still occupies its own line and overflows.
	WrapWord
)

// String returns the string representation of the wrap mode.
func (m WrapMode) String() string {
	switch m {
	case WrapWordChar:
		return "WordChar"
	case WrapNone:
		return "None"
	case WrapWord:
		return "Word"
	default:
		return unknownStr
	}
}

// Overflow specifies what happens to lines that exceed the layout box.
type Overflow uint8

const (
	// OverflowVisible lets over-wide lines extend past the box.
	OverflowVisible Overflow = iota
	// OverflowEllipsis prunes clusters from the trailing edge of an
	// over-wide line and appends an ellipsis run. When the vertical budget
	// is exceeded, the last visible line absorbs the ellipsis and later
	// lines are discarded.
	OverflowEllipsis
)

// String returns the string representation of the overflow policy.
func (o Overflow) String() string {
	switch o {
	case OverflowVisible:
		return "Visible"
	case OverflowEllipsis:
		return "Ellipsis"
	default:
		return unknownStr
	}
}

// Align specifies horizontal line alignment within the layout width.
type Align uint8

const (
	// AlignStart aligns lines to the leading edge of the base direction.
	AlignStart Align = iota
	// AlignCenter centers lines horizontally.
	AlignCenter
	// AlignEnd aligns lines to the trailing edge of the base direction.
	AlignEnd
)

// String returns the string representation of the alignment.
func (a Align) String() string {
	switch a {
	case AlignStart:
		return "Start"
	case AlignCenter:
		return "Center"
	case AlignEnd:
		return "End"
	default:
		return unknownStr
	}
}

// VerticalTrim selects how the layout's total height is measured.
type VerticalTrim uint8

const (
	// TrimStandard measures from the first line's ascender to the last
	// line's descender.
	TrimStandard VerticalTrim = iota
	// TrimCapHeight measures from the first line's cap height and excludes
	// the last line's descender. Useful for aligning text boxes to visual
	// letter bounds.
	TrimCapHeight
)

// String returns the string representation of the trim mode.
func (v VerticalTrim) String() string {
	switch v {
	case TrimStandard:
		return "Standard"
	case TrimCapHeight:
		return "CapHeight"
	default:
		return unknownStr
	}
}

// Rect is an axis-aligned rectangle in 26.6 fixed-point units.
type Rect struct {
	X, Y, Width, Height fixed.Int26_6
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() fixed.Int26_6 { return r.X + r.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() fixed.Int26_6 { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// FromFloat converts a float64 pixel value to 26.6 fixed point.
func FromFloat(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// ToFloat converts a 26.6 fixed-point value to float64 pixels.
func ToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

// fixedMul multiplies a 26.6 value by a float factor.
func fixedMul(v fixed.Int26_6, f float64) fixed.Int26_6 {
	return fixed.Int26_6(float64(v) * f)
}
