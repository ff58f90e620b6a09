package station

import (
	"regexp"
	"strings"
)

var whitespaceRunRe = regexp.MustCompile(`\s+`)

// SanitizeFilename makes a schedule-derived base name safe for the
// filesystem: path separators and colons become dashes, whitespace runs
// become single underscores, anything else outside [A-Za-z0-9._-] is
// dropped. Applying it twice yields the same result.
func SanitizeFilename(input string) string {
	s := strings.NewReplacer(":", "-", "/", "-", `\`, "-").Replace(input)
	s = whitespaceRunRe.ReplaceAllString(s, "_")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
