package skribidi

import (
	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	xlang "golang.org/x/text/language"
)

// LineHeightMode selects how a run's line height is derived.
type LineHeightMode uint8

const (
	// LineHeightUnset inherits the mode from the attribute defaults.
	LineHeightUnset LineHeightMode = iota
	// LineHeightNormal uses the font's natural ascender/descender/gap.
	LineHeightNormal
	// LineHeightScale multiplies the natural line height by Value.
	LineHeightScale
	// LineHeightAbsolute uses Value pixels, split proportionally between
	// ascender and descender.
	LineHeightAbsolute
)

// String returns the string representation of the mode.
func (m LineHeightMode) String() string {
	switch m {
	case LineHeightUnset:
		return "Unset"
	case LineHeightNormal:
		return "Normal"
	case LineHeightScale:
		return "Scale"
	case LineHeightAbsolute:
		return "Absolute"
	default:
		return unknownStr
	}
}

// LineHeight is a line-height mode with its value (ignored for Normal).
type LineHeight struct {
	Mode  LineHeightMode
	Value float64
}

// Decorations is a bit set of text decoration lines.
type Decorations uint8

const (
	// DecorationUnderline draws a line under the baseline.
	DecorationUnderline Decorations = 1 << iota
	// DecorationStrikethrough draws a line through the glyphs.
	DecorationStrikethrough
	// DecorationOverline draws a line above the ascender.
	DecorationOverline
)

// Has reports whether d contains kind.
func (d Decorations) Has(kind Decorations) bool { return d&kind != 0 }

// Feature activates or deactivates one OpenType feature by its 4-byte tag
// (e.g. "liga", "smcp").
type Feature struct {
	Tag   string
	Value uint32
}

// Attributes is the styling of one content run. The zero value of every
// field means "inherit from the layout's Defaults"; resolution is a pure
// two-level lookup performed once per content run.
type Attributes struct {
	// Family is the font family name. Empty inherits the default family.
	Family string

	// Size is the font size in pixels. Zero inherits the default size.
	Size float64

	// Aspect carries weight, style and stretch for font matching.
	Aspect font.Aspect

	// Language is a BCP 47 tag ("en", "ar-EG"). Empty inherits.
	Language string

	// LetterSpacing is extra advance per grapheme boundary, in pixels.
	// Non-zero letter spacing disables ligature features for the run.
	LetterSpacing float64

	// WordSpacing is extra advance per whitespace grapheme, in pixels.
	WordSpacing float64

	// LineHeight selects the run's line height contribution.
	LineHeight LineHeight

	// BaselineShift raises (positive) or lowers the run's baseline, in
	// pixels. Used for superscript/subscript styles.
	BaselineShift float64

	// Decorations selects underline/strikethrough/overline.
	Decorations Decorations

	// Features are extra OpenType features applied when shaping.
	Features []Feature
}

// resolve merges a over defaults, field by field. Zero means inherit.
func (a Attributes) resolve(defaults Attributes) Attributes {
	out := a
	if out.Family == "" {
		out.Family = defaults.Family
	}
	if out.Size <= 0 {
		out.Size = defaults.Size
	}
	if out.Size <= 0 {
		out.Size = 14
	}
	if out.Aspect.Style == 0 {
		out.Aspect.Style = defaults.Aspect.Style
	}
	if out.Aspect.Weight == 0 {
		out.Aspect.Weight = defaults.Aspect.Weight
	}
	if out.Aspect.Stretch == 0 {
		out.Aspect.Stretch = defaults.Aspect.Stretch
	}
	if out.Aspect.Style == 0 {
		out.Aspect.Style = font.StyleNormal
	}
	if out.Aspect.Weight == 0 {
		out.Aspect.Weight = font.WeightNormal
	}
	if out.Aspect.Stretch == 0 {
		out.Aspect.Stretch = font.StretchNormal
	}
	if out.Language == "" {
		out.Language = defaults.Language
	}
	if out.LetterSpacing == 0 {
		out.LetterSpacing = defaults.LetterSpacing
	}
	if out.WordSpacing == 0 {
		out.WordSpacing = defaults.WordSpacing
	}
	if out.LineHeight.Mode == LineHeightUnset {
		out.LineHeight = defaults.LineHeight
	}
	if out.LineHeight.Mode == LineHeightUnset {
		out.LineHeight = LineHeight{Mode: LineHeightNormal}
	}
	if out.BaselineShift == 0 {
		out.BaselineShift = defaults.BaselineShift
	}
	if out.Decorations == 0 {
		out.Decorations = defaults.Decorations
	}
	if len(out.Features) == 0 {
		out.Features = defaults.Features
	}
	return out
}

// language returns the run's typesetting language tag.
func (a Attributes) language() string {
	if a.Language == "" {
		return "en"
	}
	if tag, err := xlang.Parse(a.Language); err == nil {
		return tag.String()
	}
	return "en"
}

// fontFeatures converts the run's features for the shaping backend,
// disabling ligatures when letter spacing is requested (spacing inside a
// ligature cannot be distributed).
func (a Attributes) fontFeatures() []shaping.FontFeature {
	var out []shaping.FontFeature
	for _, f := range a.Features {
		if len(f.Tag) != 4 {
			continue
		}
		out = append(out, shaping.FontFeature{Tag: ot.MustNewTag(f.Tag), Value: f.Value})
	}
	if a.LetterSpacing != 0 {
		for _, tag := range [...]string{"liga", "clig", "dlig", "hlig"} {
			out = append(out, shaping.FontFeature{Tag: ot.MustNewTag(tag), Value: 0})
		}
	}
	return out
}

// IconSizer resolves an inline object's drawn size proportionally to a
// target box, typically preserving the icon's aspect ratio.
type IconSizer interface {
	ProportionalSize(target Rect) (width, height fixed.Int26_6)
}

// InlineObject is an icon or embedded object occupying one
// glyph-equivalent cluster. Rasterization is up to the renderer; the
// layout only reserves its box.
type InlineObject struct {
	Width, Height fixed.Int26_6
	// Padding is added on both sides of the object's advance.
	Padding fixed.Int26_6
	// Sizer, when set, resolves Width and Height against the em box of
	// the run the object is embedded in.
	Sizer IconSizer
}

// resolvedSize returns the object's box, consulting the Sizer against
// the em box when present.
func (o *InlineObject) resolvedSize(em fixed.Int26_6) (w, h fixed.Int26_6) {
	if o.Sizer != nil {
		return o.Sizer.ProportionalSize(Rect{Width: em, Height: em})
	}
	return o.Width, o.Height
}

// ContentRun is a caller-supplied styled span of text or an inline
// object. Runs must be contiguous, non-overlapping and cover the whole
// buffer in order.
type ContentRun struct {
	// Start and End are rune offsets into the layout text.
	Start, End int

	// Attrs is the span's styling, resolved against the layout Defaults.
	Attrs Attributes

	// Object marks the run as an inline object; its text range should
	// cover exactly one placeholder codepoint (U+FFFC is customary).
	Object *InlineObject
}

// MarkerStyle selects the list marker counter system.
type MarkerStyle uint8

const (
	// MarkerNone disables list markers.
	MarkerNone MarkerStyle = iota
	// MarkerBullet prefixes each paragraph with a bullet glyph.
	MarkerBullet
	// MarkerDecimal uses place-value decimal numbering (CSS "numeric").
	MarkerDecimal
	// MarkerLowerAlpha uses zero-based alphabetic numbering a, b, ..., aa
	// (CSS "alphabetic").
	MarkerLowerAlpha
	// MarkerUpperAlpha is MarkerLowerAlpha with capital letters.
	MarkerUpperAlpha
)

// String returns the string representation of the marker style.
func (m MarkerStyle) String() string {
	switch m {
	case MarkerNone:
		return "None"
	case MarkerBullet:
		return "Bullet"
	case MarkerDecimal:
		return "Decimal"
	case MarkerLowerAlpha:
		return "LowerAlpha"
	case MarkerUpperAlpha:
		return "UpperAlpha"
	default:
		return unknownStr
	}
}

// Marker configures the list marker synthesized on the first line of a
// paragraph.
type Marker struct {
	Style MarkerStyle
	// Start is the ordinal of the first paragraph (default 1).
	Start int
	// Suffix follows the counter ("." by default for counter styles).
	Suffix string
	// Gap is the space between the marker and the line content.
	Gap fixed.Int26_6
}

// Insets are paddings applied around the laid-out text.
type Insets struct {
	Left, Right, Top, Bottom fixed.Int26_6
}

// LayoutParams configures one layout pass.
type LayoutParams struct {
	// MaxWidth is the wrap width in 26.6 pixels; 0 disables wrapping.
	MaxWidth fixed.Int26_6

	// MaxHeight is the vertical budget; 0 is unbounded. Only consulted
	// when Overflow is OverflowEllipsis.
	MaxHeight fixed.Int26_6

	// Wrap selects the wrap policy.
	Wrap WrapMode

	// Overflow selects truncation behavior for over-budget lines.
	Overflow Overflow

	// Align positions lines within MaxWidth.
	Align Align

	// Trim selects the vertical measuring mode.
	Trim VerticalTrim

	// Direction is the base paragraph direction.
	Direction Direction

	// TabIncrement is the distance between tab stops. When zero, a tab
	// advances like a single space of its run's font.
	TabIncrement fixed.Int26_6

	// Indent is added before the first line of each paragraph.
	Indent fixed.Int26_6

	// Padding is applied around the finished layout bounds.
	Padding Insets

	// Marker configures list markers per paragraph.
	Marker Marker

	// CaretMode selects the caret stepping convention. The BiDi-aware
	// mode yields extra stops at direction boundaries.
	CaretMode CaretMode

	// Defaults is the attribute collection consulted for every field a
	// content run leaves unset.
	Defaults Attributes
}

// DefaultLayoutParams returns the default layout parameters: no wrapping,
// LTR-auto base direction, start alignment, no truncation.
func DefaultLayoutParams() LayoutParams {
	return LayoutParams{
		Direction: DirectionAuto,
		Marker:    Marker{Start: 1, Suffix: "."},
	}
}
