package subtitles

// DefaultLanguage is requested when no preferred caption track is advertised.
const DefaultLanguage = "en"

// PreferredLanguages lists caption languages in the order they are chosen.
var PreferredLanguages = []string{"en", "ro"}

// SelectLanguage picks the caption language to request. The first preferred
// language present in available wins; when none is present the result is
// DefaultLanguage even though the engine did not advertise it, and the caller is
// left to detect the missing track.
func SelectLanguage(available map[string]struct{}) string {
	for _, lang := range PreferredLanguages {
		if _, ok := available[lang]; ok {
			return lang
		}
	}
	return DefaultLanguage
}

// CandidateLanguages returns the languages to look for on disk after a caption
// download: the selected language first, then the remaining preferred ones.
func CandidateLanguages(selected string) []string {
	out := make([]string, 0, len(PreferredLanguages)+1)
	if selected != "" {
		out = append(out, selected)
	}
	for _, lang := range PreferredLanguages {
		if lang != selected {
			out = append(out, lang)
		}
	}
	return out
}
