package subtitles

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	inlineTagPattern = regexp.MustCompile(`<[^>]*?>`)
	// headerFieldPattern matches header metadata such as "Kind: captions" or
	// "X-TIMESTAMP-MAP=LOCAL:00:00:00.000,MPEGTS:0".
	headerFieldPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*(:\s|=)`)
)

// NormalizeVTT converts raw WebVTT content into transcript lines.
//
// A line is dropped when it is exactly WEBVTT, contains a "-->" timing arrow,
// or consists only of digits. At the start of the document the signature may
// carry a description ("WEBVTT - captions") and be followed by Key: value
// metadata lines; those are dropped too. Inline tags are removed from what
// remains, blank lines are dropped, and a line equal (after trimming) to the
// previously kept line is skipped. A line left as only digits or WEBVTT by tag
// removal is dropped so the joined output normalizes to itself.
func NormalizeVTT(raw string) []string {
	raw = strings.TrimPrefix(raw, "\ufeff")
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	out := make([]string, 0, len(lines)/2)
	var last string
	inHeader := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if i == 0 && isSignature(trimmed) {
			inHeader = true
			continue
		}
		if inHeader {
			if headerFieldPattern.MatchString(trimmed) {
				continue
			}
			inHeader = false
		}
		if trimmed == "" || isCueArtifact(trimmed) {
			continue
		}

		cleaned := strings.TrimSpace(inlineTagPattern.ReplaceAllString(trimmed, ""))
		if cleaned == "" || cleaned == last || isCueArtifact(cleaned) {
			continue
		}
		out = append(out, cleaned)
		last = cleaned
	}
	return out
}

// NormalizeVTTText returns NormalizeVTT joined with newlines, or "" when nothing survives.
func NormalizeVTTText(raw string) string {
	return strings.Join(NormalizeVTT(raw), "\n")
}

func isCueArtifact(line string) bool {
	return line == "WEBVTT" || strings.Contains(line, "-->") || isNumeric(line)
}

// isSignature reports whether line opens a WebVTT file. The signature may carry
// a description after a space or tab.
func isSignature(line string) bool {
	if line == "WEBVTT" {
		return true
	}
	return strings.HasPrefix(line, "WEBVTT ") || strings.HasPrefix(line, "WEBVTT\t")
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
