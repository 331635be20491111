package textutil

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// FallbackPrefix starts every generated name used when sanitizing leaves nothing behind.
const FallbackPrefix = "video_"

// SanitizeFileName turns an arbitrary title into a single safe path segment.
// Whitespace and every rune that is not a letter, digit, '-' or '_' become '_',
// underscore runs collapse, and the result is trimmed of '_' on both ends and
// truncated to maxLength runes (maxLength <= 0 disables truncation). Input is
// NFC-normalized first so composed and decomposed accents sanitize alike.
//
// The result is never empty: when nothing survives, a generated
// "video_<6 hex>" token is returned instead.
func SanitizeFileName(name string, maxLength int) string {
	if out := sanitize(name, maxLength); out != "" {
		return out
	}
	return FallbackName()
}

// FallbackName returns a fresh "video_<6 hex>" token.
func FallbackName() string {
	return FallbackPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

func sanitize(name string, maxLength int) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := true // suppresses a leading '_'
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.TrimRight(b.String(), "_")

	if maxLength > 0 {
		runes := []rune(out)
		if len(runes) > maxLength {
			out = strings.TrimRight(string(runes[:maxLength]), "_")
		}
	}
	return out
}
