//go:build !windows

package findfile

// longPathPrefix is written in front of the root when the platform needs a
// marker to lift its path-length limit. Unix has no such marker.
const longPathPrefix = ""

// Only NUL can't appear in a path; '/' additionally can't appear in a name.
const (
	invalidPathChars    = "\x00"
	invalidPatternChars = "\x00/"
)

func isPlatformNotFound(error) bool { return false }
