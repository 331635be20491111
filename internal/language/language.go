package language

import (
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
)

type entry struct {
	code2   string // ISO 639-1 (2-letter)
	code3   string // ISO 639-2 primary (3-letter)
	alt3    string // ISO 639-2 alternate (e.g. "rum" vs "ron")
	display string
}

var languages = []entry{
	{"en", "eng", "", "English"},
	{"ro", "ron", "rum", "Romanian"},
	{"es", "spa", "", "Spanish"},
	{"fr", "fra", "fre", "French"},
	{"de", "deu", "ger", "German"},
	{"it", "ita", "", "Italian"},
	{"pt", "por", "", "Portuguese"},
	{"hu", "hun", "", "Hungarian"},
	{"ru", "rus", "", "Russian"},
	{"uk", "ukr", "", "Ukrainian"},
	{"ja", "jpn", "", "Japanese"},
	{"zh", "zho", "chi", "Chinese"},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byName  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byName = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		byName[strings.ToLower(e.display)] = e
	}
}

func lookup(code string) *entry {
	code = Base(code)
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byName[code]; ok {
		return e
	}
	return nil
}

// Base reduces a caption track key such as "en-US", "pt_BR" or "en-orig" to its
// lower-case primary language subtag.
func Base(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	code = strings.ReplaceAll(code, "_", "-")
	if tag, err := xlang.Parse(code); err == nil {
		if base, conf := tag.Base(); conf != xlang.No {
			return base.String()
		}
	}
	if idx := strings.IndexByte(code, '-'); idx > 0 {
		return code[:idx]
	}
	return code
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input; unrecognized codes are title-cased.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if e := lookup(trimmed); e != nil {
		return e.display
	}
	return cases.Title(xlang.Und).String(trimmed)
}

// Label renders "English (en)" style labels for logs and CLI output.
func Label(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return DisplayName(trimmed)
	}
	return DisplayName(trimmed) + " (" + trimmed + ")"
}
