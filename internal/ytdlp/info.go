package ytdlp

import (
	"encoding/json"
	"sort"
	"strings"

	"vidscribe/internal/media"
)

// videoInfo is the subset of yt-dlp's info dict the client reads.
type videoInfo struct {
	ID                 string                       `json:"id"`
	Title              string                       `json:"title"`
	Duration           float64                      `json:"duration"`
	Subtitles          map[string]json.RawMessage   `json:"subtitles"`
	AutomaticCaptions  map[string]json.RawMessage   `json:"automatic_captions"`
	RequestedSubtitles map[string]requestedSubtitle `json:"requested_subtitles"`
}

type requestedSubtitle struct {
	Ext      string `json:"ext"`
	Filepath string `json:"filepath"`
}

// Pseudo-tracks yt-dlp lists among subtitles that are not captions.
var ignoredTracks = map[string]struct{}{
	"live_chat": {},
	"rechat":    {},
}

func parseInfo(payload []byte) (videoInfo, error) {
	var info videoInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return videoInfo{}, &media.ToolError{Tool: toolName, Detail: "could not parse yt-dlp output", Err: err}
	}
	return info, nil
}

func (v videoInfo) captionSet() media.CaptionSet {
	return media.CaptionSet{
		Manual:    trackKeys(v.Subtitles),
		Automatic: trackKeys(v.AutomaticCaptions),
	}
}

func (v videoInfo) metadata() media.Metadata {
	return media.Metadata{
		ID:              v.ID,
		Title:           strings.TrimSpace(v.Title),
		DurationSeconds: v.Duration,
	}
}

func (v videoInfo) subtitlePath(lang string) string {
	if sub, ok := v.RequestedSubtitles[lang]; ok {
		return strings.TrimSpace(sub.Filepath)
	}
	return ""
}

func trackKeys(tracks map[string]json.RawMessage) []string {
	if len(tracks) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tracks))
	for key := range tracks {
		if _, skip := ignoredTracks[key]; skip {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
