package storage

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces an uploaded name to a safe ASCII basename.
// Accents are decomposed and dropped, path separators become spaces,
// whitespace runs become "_" and anything outside [A-Za-z0-9_.-] is removed.
func SanitizeFilename(name string) string {
	decomposed := norm.NFKD.String(name)
	ascii := make([]rune, 0, len(decomposed))
	for _, r := range decomposed {
		if r < 0x80 {
			ascii = append(ascii, r)
		}
	}
	s := string(ascii)
	s = strings.NewReplacer("/", " ", "\\", " ").Replace(s)
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	s = strings.Trim(s, "._")
	if s == "" {
		return "file"
	}
	return s
}

// UniqueName prefixes the sanitized name with a random UUID.
func UniqueName(name string) string {
	return uuid.NewString() + "_" + SanitizeFilename(name)
}
