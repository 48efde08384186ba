package skribidi

import (
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
	"github.com/go-text/typesetting/language"
	"golang.org/x/image/math/fixed"
)

// Fontset is an ordered set of candidate faces resolved for one styled
// span. The itemizer walks codepoints against it to pick the face of each
// shaping run.
type Fontset interface {
	// Primary returns the preferred face. A nil primary means the query
	// matched nothing and the span produces no shaping runs.
	Primary() *font.Face

	// ResolveRune returns the first candidate covering r, falling back to
	// the primary so a run can always be produced.
	ResolveRune(r rune) *font.Face
}

// FontProvider matches style queries to candidate faces. The engine never
// loads font files itself.
type FontProvider interface {
	// Match resolves a candidate set for the query. Returning nil means
	// no font matches; the content run is silently skipped.
	Match(family string, aspect font.Aspect, script language.Script, lang string) Fontset

	// Baseline returns the offset from the alphabetic baseline to the
	// requested baseline at size, positive upward. dir is consulted only
	// for vertical baselines, which horizontal layout never requests.
	Baseline(face *font.Face, kind BaselineKind, dir Direction, script language.Script, size fixed.Int26_6) fixed.Int26_6
}

// BaselineKind selects which baseline of a face a query refers to.
type BaselineKind uint8

const (
	// BaselineAlphabetic is the baseline Latin glyphs sit on.
	BaselineAlphabetic BaselineKind = iota
	// BaselineIdeographic is the bottom of the CJK em box.
	BaselineIdeographic
	// BaselineHanging is the top attachment line of hanging scripts.
	BaselineHanging
	// BaselineCenter is the vertical center between ascender and
	// descender.
	BaselineCenter
)

// String returns the string representation of the baseline kind.
func (k BaselineKind) String() string {
	switch k {
	case BaselineAlphabetic:
		return "Alphabetic"
	case BaselineIdeographic:
		return "Ideographic"
	case BaselineHanging:
		return "Hanging"
	case BaselineCenter:
		return "Center"
	default:
		return unknownStr
	}
}

// FaceList is a FontProvider over a fixed, explicitly ordered list of
// faces. It ignores the family/aspect query entirely, which makes it the
// right provider for tests and embedders that manage faces themselves.
type FaceList struct {
	faces []*font.Face
}

// NewFaceList creates a FaceList. At least one face is required.
func NewFaceList(faces ...*font.Face) (*FaceList, error) {
	if len(faces) == 0 {
		return nil, ErrEmptyFaces
	}
	return &FaceList{faces: faces}, nil
}

// Match implements FontProvider.
func (l *FaceList) Match(family string, aspect font.Aspect, script language.Script, lang string) Fontset {
	return l
}

// Baseline implements FontProvider.
func (l *FaceList) Baseline(face *font.Face, kind BaselineKind, dir Direction, script language.Script, size fixed.Int26_6) fixed.Int26_6 {
	return defaultBaseline(face, kind, script, size)
}

// Primary implements Fontset.
func (l *FaceList) Primary() *font.Face { return l.faces[0] }

// ResolveRune implements Fontset.
func (l *FaceList) ResolveRune(r rune) *font.Face {
	for _, f := range l.faces {
		if _, ok := f.NominalGlyph(r); ok {
			return f
		}
	}
	return l.faces[0]
}

// SystemFonts is a FontProvider backed by the platform font index via
// fontscan. Matching honors family, aspect and script; per-rune fallback
// walks the system substitution list.
type SystemFonts struct {
	fm *fontscan.FontMap
}

// NewSystemFonts builds the system font index, caching it under cacheDir
// (pass "" for the default location).
func NewSystemFonts(cacheDir string) (*SystemFonts, error) {
	fm := fontscan.NewFontMap(nil)
	if err := fm.UseSystemFonts(cacheDir); err != nil {
		return nil, ErrNoSystemFonts
	}
	return &SystemFonts{fm: fm}, nil
}

// Match implements FontProvider.
func (s *SystemFonts) Match(family string, aspect font.Aspect, script language.Script, lang string) Fontset {
	q := fontscan.Query{Aspect: aspect}
	if family != "" {
		q.Families = []string{family}
	}
	s.fm.SetQuery(q)
	return &systemFontset{fm: s.fm}
}

// Baseline implements FontProvider.
func (s *SystemFonts) Baseline(face *font.Face, kind BaselineKind, dir Direction, script language.Script, size fixed.Int26_6) fixed.Int26_6 {
	return defaultBaseline(face, kind, script, size)
}

// systemFontset adapts a queried FontMap. fontscan always resolves a
// face, so Primary never returns nil here.
type systemFontset struct {
	fm *fontscan.FontMap
}

func (s *systemFontset) Primary() *font.Face { return s.fm.ResolveFace(' ') }

func (s *systemFontset) ResolveRune(r rune) *font.Face { return s.fm.ResolveFace(r) }

// FontMetrics are a face's design metrics scaled to a size, in 26.6
// pixels. Descent is positive (distance below the baseline).
type FontMetrics struct {
	Ascent    fixed.Int26_6
	Descent   fixed.Int26_6
	LineGap   fixed.Int26_6
	XHeight   fixed.Int26_6
	CapHeight fixed.Int26_6

	// UnderlineOffset is the distance from the baseline down to the top
	// of the underline; UnderlineSize is its thickness.
	UnderlineOffset fixed.Int26_6
	UnderlineSize   fixed.Int26_6

	// StrikeoutOffset is the distance from the baseline up to the
	// strikethrough line.
	StrikeoutOffset fixed.Int26_6
	StrikeoutSize   fixed.Int26_6
}

// LineHeight returns ascent + descent + gap.
func (m FontMetrics) LineHeight() fixed.Int26_6 {
	return m.Ascent + m.Descent + m.LineGap
}

// faceMetrics scales a face's horizontal extents to size. Fonts without
// usable extents fall back to conventional ratios of the size.
func faceMetrics(face *font.Face, size fixed.Int26_6) FontMetrics {
	var m FontMetrics
	ext, ok := face.FontHExtents()
	if ok && ext.Ascender > 0 {
		m.Ascent = fromFontUnit(ext.Ascender, face, size)
		m.Descent = fromFontUnit(-ext.Descender, face, size)
		m.LineGap = fromFontUnit(ext.LineGap, face, size)
	} else {
		m.Ascent = fixedMul(size, 0.8)
		m.Descent = fixedMul(size, 0.2)
	}
	if m.Descent < 0 {
		m.Descent = -m.Descent
	}

	// Cap height, x-height and line geometry use conventional ratios;
	// they only affect decoration placement and cap-height trimming.
	m.CapHeight = fixedMul(m.Ascent, 0.7)
	m.XHeight = fixedMul(m.Ascent, 0.5)
	m.UnderlineOffset = fixedMul(m.Descent, 0.5)
	m.UnderlineSize = fixedMul(size, 0.05)
	m.StrikeoutOffset = fixedMul(m.XHeight, 0.5)
	m.StrikeoutSize = m.UnderlineSize
	return m
}

// fromFontUnit scales a value in font design units to 26.6 pixels at the
// given size.
func fromFontUnit(v float32, face *font.Face, size fixed.Int26_6) fixed.Int26_6 {
	return fixed.Int26_6(v * float32(size) / float32(face.Upem()))
}

// defaultBaseline derives baseline offsets from a face's scaled metrics.
// Faces rarely carry explicit baseline tables, so conventional ratios
// stand in.
func defaultBaseline(face *font.Face, kind BaselineKind, script language.Script, size fixed.Int26_6) fixed.Int26_6 {
	m := faceMetrics(face, size)
	switch kind {
	case BaselineIdeographic:
		return -m.Descent
	case BaselineHanging:
		if hangingScript(script) {
			return m.Ascent
		}
		return fixedMul(size, 0.6)
	case BaselineCenter:
		return (m.Ascent - m.Descent) / 2
	}
	return 0
}

// hangingScript reports whether script attaches glyphs to a top line.
func hangingScript(s language.Script) bool {
	switch s {
	case language.Devanagari, language.Bengali, language.Gurmukhi,
		language.Tibetan:
		return true
	}
	return false
}

// spaceAdvance returns the advance of U+0020 at size, or a quarter of the
// size when the face has no space glyph.
func spaceAdvance(face *font.Face, size fixed.Int26_6) fixed.Int26_6 {
	if gid, ok := face.NominalGlyph(' '); ok {
		return fromFontUnit(face.HorizontalAdvance(gid), face, size)
	}
	return size / 4
}
