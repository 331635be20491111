package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"vidscribe/internal/media"
)

// FakeEngine is an in-memory media.Engine. Caption and audio downloads write real
// files so callers exercise their filesystem handling.
type FakeEngine struct {
	mu sync.Mutex

	Captions media.CaptionSet
	ProbeErr error

	// CaptionFiles maps language to VTT content. Every entry is written as
	// "<stem>.<lang>.vtt" on download, regardless of the requested language.
	CaptionFiles map[string]string
	// ReportCaptionPath returns the written path for the requested language.
	ReportCaptionPath bool
	CaptionErr        error

	Meta    media.Metadata
	MetaErr error

	AudioErr error
	// SkipAudioWrite reports success without producing a file.
	SkipAudioWrite bool

	calls           []string
	captionRequests []media.CaptionRequest
	audioRequests   []media.AudioRequest
}

var _ media.Engine = (*FakeEngine)(nil)

func (f *FakeEngine) ProbeCaptions(ctx context.Context, videoURL string) (media.CaptionSet, error) {
	f.record("probe_captions")
	if f.ProbeErr != nil {
		return media.CaptionSet{}, f.ProbeErr
	}
	return f.Captions, nil
}

func (f *FakeEngine) DownloadCaptions(ctx context.Context, videoURL string, req media.CaptionRequest) (media.CaptionDownload, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "download_captions")
	f.captionRequests = append(f.captionRequests, req)
	f.mu.Unlock()
	if f.CaptionErr != nil {
		return media.CaptionDownload{}, f.CaptionErr
	}
	out := media.CaptionDownload{Language: req.Language}
	for lang, body := range f.CaptionFiles {
		path := fmt.Sprintf("%s.%s.vtt", req.OutputStem, lang)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return media.CaptionDownload{}, err
		}
		if f.ReportCaptionPath && lang == req.Language {
			out.Path = path
		}
	}
	return out, nil
}

func (f *FakeEngine) ProbeMetadata(ctx context.Context, videoURL string) (media.Metadata, error) {
	f.record("probe_metadata")
	if f.MetaErr != nil {
		return media.Metadata{}, f.MetaErr
	}
	return f.Meta, nil
}

func (f *FakeEngine) DownloadAudio(ctx context.Context, videoURL string, req media.AudioRequest) (media.AudioDownload, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "download_audio")
	f.audioRequests = append(f.audioRequests, req)
	f.mu.Unlock()
	if f.AudioErr != nil {
		return media.AudioDownload{}, f.AudioErr
	}
	path := filepath.Join(req.Dir, req.Stem+"."+strings.ToLower(req.Format))
	if !f.SkipAudioWrite {
		if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
			return media.AudioDownload{}, err
		}
	}
	return media.AudioDownload{Path: path}, nil
}

// Calls lists the engine operations invoked so far, in order.
func (f *FakeEngine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CaptionRequests returns every caption request received.
func (f *FakeEngine) CaptionRequests() []media.CaptionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]media.CaptionRequest(nil), f.captionRequests...)
}

// AudioRequests returns every audio request received.
func (f *FakeEngine) AudioRequests() []media.AudioRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]media.AudioRequest(nil), f.audioRequests...)
}

func (f *FakeEngine) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}
