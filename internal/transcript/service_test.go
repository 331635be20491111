package transcript_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidscribe/internal/media"
	"vidscribe/internal/services"
	"vidscribe/internal/testsupport"
	"vidscribe/internal/transcript"
)

const sampleVTT = "WEBVTT\n\n1\n00:00:01.000 --> 00:00:02.000\n<c>Hello</c> world\n\n2\n00:00:02.000 --> 00:00:03.000\nHello world\nGoodbye\n"

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Fatalf("expected scratch files to be removed, found %v", names)
	}
}

func TestFetchSelectsRomanianWhenEnglishMissing(t *testing.T) {
	dir := t.TempDir()
	engine := &testsupport.FakeEngine{
		Captions:          media.CaptionSet{Automatic: []string{"ro", "de"}},
		CaptionFiles:      map[string]string{"ro": sampleVTT},
		ReportCaptionPath: true,
	}
	svc := transcript.NewServiceWithTempDir(dir, engine, nil)

	result, err := svc.Fetch(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.Language != "ro" {
		t.Fatalf("expected ro, got %q", result.Language)
	}
	if result.Text != "Hello world\nGoodbye" {
		t.Fatalf("unexpected text %q", result.Text)
	}
	reqs := engine.CaptionRequests()
	if len(reqs) != 1 || reqs[0].Language != "ro" {
		t.Fatalf("expected single ro request, got %#v", reqs)
	}
	if !strings.HasPrefix(reqs[0].OutputStem, dir) || !strings.Contains(reqs[0].OutputStem, "transcript_") {
		t.Fatalf("unexpected output stem %q", reqs[0].OutputStem)
	}
	if _, err := os.Stat(result.TempPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp file removed, stat err %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestFetchPrefersEnglish(t *testing.T) {
	dir := t.TempDir()
	engine := &testsupport.FakeEngine{
		Captions:     media.CaptionSet{Manual: []string{"ro"}, Automatic: []string{"en"}},
		CaptionFiles: map[string]string{"en": "WEBVTT\n\nhi\n"},
	}
	result, err := transcript.NewServiceWithTempDir(dir, engine, nil).Fetch(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.Language != "en" || result.Text != "hi" {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestFetchProbeFailureDefaultsToEnglish(t *testing.T) {
	dir := t.TempDir()
	engine := &testsupport.FakeEngine{
		ProbeErr:     errors.New("probe exploded"),
		CaptionFiles: map[string]string{"en": sampleVTT},
	}
	result, err := transcript.NewServiceWithTempDir(dir, engine, nil).Fetch(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.Language != "en" {
		t.Fatalf("expected en after probe failure, got %q", result.Language)
	}
	if reqs := engine.CaptionRequests(); len(reqs) != 1 || reqs[0].Language != "en" {
		t.Fatalf("expected en request, got %#v", reqs)
	}
}

func TestFetchFallsBackToOtherPreferredLanguageFile(t *testing.T) {
	dir := t.TempDir()
	// Probe says English, but the engine only produced a Romanian track.
	engine := &testsupport.FakeEngine{
		Captions:     media.CaptionSet{Automatic: []string{"en"}},
		CaptionFiles: map[string]string{"ro": "WEBVTT\n\nSalut\n"},
	}
	result, err := transcript.NewServiceWithTempDir(dir, engine, nil).Fetch(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.Language != "ro" || result.Text != "Salut" {
		t.Fatalf("unexpected result %#v", result)
	}
	assertEmptyDir(t, dir)
}

func TestFetchNoTranscript(t *testing.T) {
	dir := t.TempDir()
	engine := &testsupport.FakeEngine{
		Captions:     media.CaptionSet{Automatic: []string{"de"}},
		CaptionFiles: map[string]string{"de": "WEBVTT\n\nHallo\n"},
	}
	_, err := transcript.NewServiceWithTempDir(dir, engine, nil).Fetch(context.Background(), "https://example.com/v")
	if !errors.Is(err, transcript.ErrNoTranscript) {
		t.Fatalf("expected ErrNoTranscript, got %v", err)
	}
	if err.Error() != "no transcript available in supported languages" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, services.ErrPostcondition) {
		t.Fatalf("expected postcondition classification")
	}
	assertEmptyDir(t, dir)
}

func TestFetchReturnsEngineErrorVerbatim(t *testing.T) {
	dir := t.TempDir()
	engineErr := &media.ToolError{Tool: "yt-dlp", Detail: "ERROR: [youtube] abc: Private video"}
	engine := &testsupport.FakeEngine{CaptionErr: engineErr}
	_, err := transcript.NewServiceWithTempDir(dir, engine, nil).Fetch(context.Background(), "https://example.com/v")
	if err == nil || err.Error() != "ERROR: [youtube] abc: Private video" {
		t.Fatalf("expected verbatim engine error, got %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestFetchRejectsBlankURL(t *testing.T) {
	engine := &testsupport.FakeEngine{}
	_, err := transcript.NewServiceWithTempDir(t.TempDir(), engine, nil).Fetch(context.Background(), "  ")
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(engine.Calls()) != 0 {
		t.Fatalf("expected no engine calls, got %v", engine.Calls())
	}
}

func TestNewServiceUsesConfiguredTempDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := &testsupport.FakeEngine{CaptionFiles: map[string]string{"en": "WEBVTT\n\nok\n"}}
	if _, err := transcript.NewService(cfg, engine, nil).Fetch(context.Background(), "https://example.com/v"); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	reqs := engine.CaptionRequests()
	if !strings.HasPrefix(reqs[0].OutputStem, cfg.Paths.TranscriptsTempDir) {
		t.Fatalf("expected stem under %s, got %s", cfg.Paths.TranscriptsTempDir, reqs[0].OutputStem)
	}
	assertEmptyDir(t, cfg.Paths.TranscriptsTempDir)
}

// elsewhereEngine writes the caption file into its own directory instead of
// next to the requested stem.
type elsewhereEngine struct {
	*testsupport.FakeEngine
	dir string
}

func (e elsewhereEngine) DownloadCaptions(ctx context.Context, videoURL string, req media.CaptionRequest) (media.CaptionDownload, error) {
	path := filepath.Join(e.dir, "captions."+req.Language+".vtt")
	if err := os.WriteFile(path, []byte(sampleVTT), 0o644); err != nil {
		return media.CaptionDownload{}, err
	}
	return media.CaptionDownload{Language: req.Language, Path: path}, nil
}

func TestFetchRemovesReportedFileOutsideTempDir(t *testing.T) {
	tempDir := t.TempDir()
	engineDir := t.TempDir()
	engine := elsewhereEngine{
		FakeEngine: &testsupport.FakeEngine{Captions: media.CaptionSet{Manual: []string{"en"}}},
		dir:        engineDir,
	}

	result, err := transcript.NewServiceWithTempDir(tempDir, engine, nil).Fetch(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.Text != "Hello world\nGoodbye" || result.Language != "en" {
		t.Fatalf("unexpected result %#v", result)
	}
	if filepath.Dir(result.TempPath) != engineDir {
		t.Fatalf("expected caption read from %s, got %s", engineDir, result.TempPath)
	}
	assertEmptyDir(t, engineDir)
	assertEmptyDir(t, tempDir)
}
