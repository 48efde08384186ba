package skribidi

import "errors"

// Sentinel errors for the skribidi package.
var (
	// ErrEmptyFaces is returned when no faces are provided to a FaceList.
	ErrEmptyFaces = errors.New("skribidi: faces cannot be empty")

	// ErrNoSystemFonts is returned when the system font index cannot be
	// built.
	ErrNoSystemFonts = errors.New("skribidi: no system fonts available")
)

// InvalidIndex is the sentinel returned by lookups that resolve to no
// run, cluster, line or glyph.
const InvalidIndex = -1
