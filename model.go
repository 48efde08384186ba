package skribidi

import (
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"golang.org/x/image/math/fixed"
)

// Glyph is one shaped glyph. Positions are absolute within the layout
// (y-down, origin at the layout's top-left), assigned when its line is
// finalized.
type Glyph struct {
	// ID is the glyph index in its run's font.
	ID font.GID

	// Cluster is the index of the owning cluster in the layout's cluster
	// array.
	Cluster int

	// X, Y is the glyph's drawing position (pen position with shaping
	// offsets applied; Y sits on the line baseline).
	X, Y fixed.Int26_6

	// XAdvance and YAdvance move the pen to the next glyph.
	XAdvance, YAdvance fixed.Int26_6

	// XOffset and YOffset are the shaping offsets already folded into
	// X and Y, kept for consumers that reposition glyphs themselves.
	XOffset, YOffset fixed.Int26_6
}

// ClusterFlags classifies a cluster for line breaking and caret logic.
type ClusterFlags uint8

const (
	// ClusterWhitespace marks clusters whose text is whitespace.
	ClusterWhitespace ClusterFlags = 1 << iota
	// ClusterControl marks clusters of control codepoints.
	ClusterControl
	// ClusterTab marks horizontal tab clusters; their advance is
	// rewritten during line breaking.
	ClusterTab
	// ClusterNewline marks paragraph-terminating clusters.
	ClusterNewline
	// ClusterObject marks inline object (icon) clusters.
	ClusterObject
)

// Cluster is a grapheme-aligned glyph group. Clusters partition their
// shaping run's text and glyph ranges exactly once, in logical order.
type Cluster struct {
	// TextStart and TextEnd are rune offsets into the layout text.
	TextStart, TextEnd int

	// GlyphStart and GlyphEnd delimit the cluster's glyphs in the
	// layout's glyph array. Consecutive clusters have contiguous ranges.
	GlyphStart, GlyphEnd int

	// Run is the owning shaping run index.
	Run int

	Flags ClusterFlags
}

// ShapingRun is a maximal slice of text with uniform script, BiDi level,
// and resolved font, produced by itemization in logical order.
type ShapingRun struct {
	// TextStart and TextEnd are rune offsets into the layout text.
	TextStart, TextEnd int

	// ClusterStart and ClusterEnd delimit the run's clusters.
	ClusterStart, ClusterEnd int

	// GlyphStart and GlyphEnd delimit the run's glyphs.
	GlyphStart, GlyphEnd int

	// Script is the resolved script shaping this run.
	Script language.Script

	// Level is the BiDi embedding level; odd levels are right-to-left.
	Level int

	// Face is the resolved font face.
	Face *font.Face

	// Size is the font size in 26.6 pixels.
	Size fixed.Int26_6

	// ContentRun is the index of the originating content run.
	ContentRun int

	// Emoji marks an emoji presentation sequence run.
	Emoji bool

	// Metrics are Face's metrics at Size, cached at itemization.
	Metrics FontMetrics
}

// RTL reports whether the run's level is right-to-left.
func (r *ShapingRun) RTL() bool { return r.Level&1 == 1 }

// RunKind distinguishes real text runs from synthesized ones.
type RunKind uint8

const (
	// RunText is a span of shaped source text.
	RunText RunKind = iota
	// RunObject is an inline object (icon) placeholder.
	RunObject
	// RunMarker is a synthesized list marker.
	RunMarker
	// RunEllipsis is a synthesized truncation ellipsis.
	RunEllipsis
)

// String returns the string representation of the run kind.
func (k RunKind) String() string {
	switch k {
	case RunText:
		return "Text"
	case RunObject:
		return "Object"
	case RunMarker:
		return "Marker"
	case RunEllipsis:
		return "Ellipsis"
	default:
		return unknownStr
	}
}

// LayoutRun is a visually-contiguous glyph span assigned to one line.
// Within a finalized line, layout runs are stored in left-to-right visual
// order.
type LayoutRun struct {
	Kind RunKind

	// Run is the originating shaping run index, or InvalidIndex for
	// synthetic runs (markers, ellipses).
	Run int

	// ContentRun is the originating content run index, or InvalidIndex
	// for synthetic runs.
	ContentRun int

	// ClusterStart and ClusterEnd delimit the run's clusters in the
	// layout's cluster array, in logical order.
	ClusterStart, ClusterEnd int

	// Level is the BiDi embedding level the run was laid out with.
	Level int

	// Face and Size identify the font used (synthetic runs borrow them
	// from the nearest real run).
	Face *font.Face
	Size fixed.Int26_6

	// X is the visual offset of the run's left edge from the layout's
	// left edge. Advance is the run's total width.
	X       fixed.Int26_6
	Advance fixed.Int26_6

	// Shift raises (positive) the run's glyphs off the line baseline.
	Shift fixed.Int26_6
}

// RTL reports whether the run's glyph progression is right-to-left.
func (r *LayoutRun) RTL() bool { return r.Level&1 == 1 }

// Line is one visual row of the layout.
type Line struct {
	// RunStart and RunEnd delimit the line's layout runs, stored in
	// visual (left-to-right) order.
	RunStart, RunEnd int

	// TextStart and TextEnd are the line's rune range. Line ranges are
	// monotonic and non-overlapping across the layout.
	TextStart, TextEnd int

	// X, Y is the top-left corner of the line box; Width excludes
	// trailing whitespace.
	X, Y          fixed.Int26_6
	Width, Height fixed.Int26_6

	// Ascent and Descent are the maxima over the line's runs. Baseline
	// is the absolute Y of the baseline (Y + Ascent).
	Ascent, Descent fixed.Int26_6
	Baseline        fixed.Int26_6

	// DecoStart and DecoEnd delimit the line's decorations.
	DecoStart, DecoEnd int

	// Truncated is set when the line lost clusters to ellipsis
	// truncation.
	Truncated bool
}

// Decoration is one underline/strikethrough/overline segment covering a
// maximal same-content-run stretch of one layout run.
type Decoration struct {
	// Kind is a single Decorations bit.
	Kind Decorations

	// Run is the owning layout run index.
	Run int

	// X, Y is the segment's left-top corner (absolute), Width its
	// extent, Thickness its height.
	X, Y      fixed.Int26_6
	Width     fixed.Int26_6
	Thickness fixed.Int26_6
}
