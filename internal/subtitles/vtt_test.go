package subtitles

import (
	"strings"
	"testing"
)

func TestNormalizeVTTCollapsesRepeatedCues(t *testing.T) {
	raw := `WEBVTT

1
00:00:00.000 --> 00:00:02.000
Hello world

2
00:00:02.000 --> 00:00:04.000
Hello world

3
00:00:04.000 --> 00:00:06.000
<i>Goodbye</i>
`
	if got := NormalizeVTTText(raw); got != "Hello world\nGoodbye" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestNormalizeVTTStripsHeaderMetadata(t *testing.T) {
	raw := "WEBVTT\r\nKind: captions\r\nLanguage: en\r\n\r\n00:00:00.000 --> 00:00:01.000 align:start position:0%\r\nfirst<00:00:00.500><c> line</c>\r\n\r\n00:00:01.000 --> 00:00:02.000\r\nfirst line\r\nsecond line\r\n"
	got := NormalizeVTT(raw)
	want := []string{"first line", "second line"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("NormalizeVTT = %q, want %q", got, want)
	}
}

func TestNormalizeVTTHeaderWithoutBlankLine(t *testing.T) {
	raw := "WEBVTT\n00:00:00.000 --> 00:00:01.000\nstraight to cues\n"
	if got := NormalizeVTTText(raw); got != "straight to cues" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestNormalizeVTTKeepsRepeatAfterDifferentLine(t *testing.T) {
	raw := "WEBVTT\n\n00:00.000 --> 00:01.000\nyes\n\n00:01.000 --> 00:02.000\nno\n\n00:02.000 --> 00:03.000\nyes\n"
	if got := NormalizeVTTText(raw); got != "yes\nno\nyes" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestNormalizeVTTComparesTrimmedContent(t *testing.T) {
	raw := "WEBVTT\n\n1\n00:00.000 --> 00:01.000\n  spaced   words  \n\n2\n00:01.000 --> 00:02.000\nspaced   words\n"
	if got := NormalizeVTTText(raw); got != "spaced   words" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestNormalizeVTTEmpty(t *testing.T) {
	for _, raw := range []string{"", "WEBVTT\n", "WEBVTT\n\n1\n00:00.000 --> 00:01.000\n<c></c>\n"} {
		if got := NormalizeVTTText(raw); got != "" {
			t.Fatalf("expected empty transcript for %q, got %q", raw, got)
		}
	}
}

func TestNormalizeVTTIsIdempotent(t *testing.T) {
	inputs := []string{
		"WEBVTT\n\n1\n00:00.000 --> 00:01.000\n<b>42</b>\n\n2\n00:01.000 --> 00:02.000\nanswer\nanswer\n",
		"plain text\nplain text\n\nnext\n",
		"<<b>>odd</b> markup\n<i>odd markup</i>\n",
		"\ufeffWEBVTT\n\n00:00.000 --> 00:01.000\nbom\n",
	}
	for _, raw := range inputs {
		once := NormalizeVTTText(raw)
		twice := NormalizeVTTText(once)
		if once != twice {
			t.Fatalf("normalize not idempotent for %q: %q then %q", raw, once, twice)
		}
		lines := strings.Split(once, "\n")
		for i := 1; i < len(lines); i++ {
			if lines[i] != "" && strings.TrimSpace(lines[i]) == strings.TrimSpace(lines[i-1]) {
				t.Fatalf("consecutive duplicate %q in %q", lines[i], once)
			}
		}
	}
}

func TestNormalizeVTTKeepsTextDirectlyAfterSignature(t *testing.T) {
	raw := "WEBVTT\nHello there\nGeneral Kenobi\n\n00:00.000 --> 00:01.000\nbye\n"
	if got := NormalizeVTTText(raw); got != "Hello there\nGeneral Kenobi\nbye" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestNormalizeVTTSkipsHeaderFieldsOnlyAtStart(t *testing.T) {
	raw := "WEBVTT - auto captions\nKind: captions\nX-TIMESTAMP-MAP=LOCAL:00:00:00.000,MPEGTS:0\n\n00:00.000 --> 00:01.000\nNote: keep me\n"
	if got := NormalizeVTTText(raw); got != "Note: keep me" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestNormalizeVTTKeepsSignatureLikeCueText(t *testing.T) {
	raw := "WEBVTT\n\n00:00.000 --> 00:01.000\nintro\n\n00:01.000 --> 00:02.000\nWEBVTT rocks\n\n00:02.000 --> 00:03.000\nWEBVTT\n"
	if got := NormalizeVTTText(raw); got != "intro\nWEBVTT rocks" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestNormalizeVTTDropsDigitsLeftByTagRemoval(t *testing.T) {
	raw := "WEBVTT\n\n00:00.000 --> 00:01.000\n<c>1984</c>\n\n00:01.000 --> 00:02.000\nin 1984\n"
	got := NormalizeVTTText(raw)
	if got != "in 1984" {
		t.Fatalf("unexpected transcript %q", got)
	}
	if again := NormalizeVTTText(got); again != got {
		t.Fatalf("normalize not idempotent: %q then %q", got, again)
	}
}
