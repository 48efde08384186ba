// Package skribidi is a Unicode text shaping and line layout engine.
// It turns a buffer of codepoints with per-span style attributes into a
// positioned sequence of shaped glyphs grouped into lines, ready to be
// rasterized by an external renderer.
//
// The pipeline has four stages, each consuming the output of the previous:
//
//   - Itemization: the text is split into shaping runs of uniform script,
//     BiDi direction and resolved font, given the caller's content runs.
//   - Shaping: each run is shaped by a pluggable backend (by default
//     go-text/typesetting's HarfBuzz port) and normalized into
//     grapheme-aligned clusters.
//   - Line breaking: the cluster stream is wrapped into lines, applying
//     tabs, truncation, list markers, indent and alignment.
//   - Caret resolution: a finished layout answers hit tests and maps
//     between text offsets and visual positions.
//
// # Example usage
//
//	fonts, _ := skribidi.NewFaceList(face)
//	layout := skribidi.New(fonts)
//	params := skribidi.DefaultLayoutParams()
//	params.MaxWidth = skribidi.FromFloat(240)
//	params.Defaults.Size = 16
//	layout.SetFromText("Hello, world", params)
//	for i := range layout.Lines() {
//	    // draw the line's runs at their positions
//	}
//
// Font files are never loaded by this package; callers provide faces
// through a FontProvider (see FaceList and SystemFonts). Rasterization,
// texture caching and the rich-text document model are likewise external
// collaborators.
//
// A Layout is single-threaded: a rebuild and reads of the same instance
// must not overlap across goroutines. Independent instances are fully
// independent.
package skribidi
