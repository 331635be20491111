package media

import (
	"context"
	"sort"
)

// Engine is the external media engine used by the transcript and audio services.
type Engine interface {
	ProbeCaptions(ctx context.Context, videoURL string) (CaptionSet, error)
	DownloadCaptions(ctx context.Context, videoURL string, req CaptionRequest) (CaptionDownload, error)
	ProbeMetadata(ctx context.Context, videoURL string) (Metadata, error)
	DownloadAudio(ctx context.Context, videoURL string, req AudioRequest) (AudioDownload, error)
}

// CaptionSet lists the caption languages a video advertises.
type CaptionSet struct {
	Manual    []string
	Automatic []string
}

// Languages returns the union of manual and automatic caption languages.
func (s CaptionSet) Languages() map[string]struct{} {
	out := make(map[string]struct{}, len(s.Manual)+len(s.Automatic))
	for _, lang := range s.Manual {
		out[lang] = struct{}{}
	}
	for _, lang := range s.Automatic {
		out[lang] = struct{}{}
	}
	return out
}

// SortedLanguages returns Languages as a sorted slice for logging.
func (s CaptionSet) SortedLanguages() []string {
	set := s.Languages()
	out := make([]string, 0, len(set))
	for lang := range set {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// CaptionRequest describes a single caption track download.
type CaptionRequest struct {
	Language string
	// OutputStem is the path without extension; the engine appends ".<lang>.vtt".
	OutputStem string
}

// CaptionDownload reports where the engine wrote a caption track. Path is empty
// when the engine could not say.
type CaptionDownload struct {
	Language string
	Path     string
}

// Metadata holds the video attributes the services use.
type Metadata struct {
	ID              string
	Title           string
	DurationSeconds float64
}

// AudioRequest describes an audio download and transcode.
type AudioRequest struct {
	Dir    string
	Stem   string
	Format string
}

// AudioDownload reports the file the engine claims to have produced.
type AudioDownload struct {
	Path string
}

// TranscoderCheck reports whether the transcoder needed for audio conversion can run.
type TranscoderCheck interface {
	TranscoderAvailable() error
}

// TranscoderCheckFunc adapts a function to TranscoderCheck.
type TranscoderCheckFunc func() error

func (f TranscoderCheckFunc) TranscoderAvailable() error { return f() }
