// Package version holds the archive version tag and its gate comparisons.
//
// Tags are compared as plain strings. That ordering is only correct while
// every version component is a single digit, and it is kept that way on
// purpose: field presence in the format has always been decided this way.
package version

import "github.com/genietools/genie-dat/internal/cursor"

// HeaderSize is the width of the NUL-padded tag at the start of the stream.
const HeaderSize = 8

// Tag is a version string such as "VER 8.8".
type Tag string

const (
	V77 Tag = "VER 7.7"
	V84 Tag = "VER 8.4"
	V88 Tag = "VER 8.8"
)

// Read consumes the header tag. A stream too short to hold one yields the
// empty tag and leaves the cursor where it was.
func Read(r *cursor.Reader) Tag {
	s, err := r.FixedString(HeaderSize)
	if err != nil {
		return ""
	}
	return Tag(s)
}

// AtLeast reports t >= threshold.
func (t Tag) AtLeast(threshold Tag) bool { return t >= threshold }

// Below reports t < threshold.
func (t Tag) Below(threshold Tag) bool { return t < threshold }

// After reports t > threshold.
func (t Tag) After(threshold Tag) bool { return t > threshold }

func (t Tag) String() string { return string(t) }
