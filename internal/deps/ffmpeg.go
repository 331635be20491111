package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// FFmpegMissingMessage is the message reported when audio conversion cannot run.
const FFmpegMissingMessage = "FFmpeg is not installed or not found. It is required for audio conversion."

// ResolveFFmpeg reports the ffmpeg binary yt-dlp will use for audio conversion.
//
// An explicitly configured path wins. Otherwise the lookup mirrors yt-dlp's own:
// an ffmpeg binary sitting next to the yt-dlp executable (standalone bundles ship
// one) and then "ffmpeg" from PATH.
func ResolveFFmpeg(ffmpegCommand, ytdlpCommand string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Transcodes downloaded audio",
	}

	configured := strings.TrimSpace(ffmpegCommand)
	if configured != "" && configured != "ffmpeg" {
		if resolved, err := exec.LookPath(configured); err == nil {
			result.Command = resolved
			result.Available = true
			return result
		}
		result.Command = configured
		result.Detail = FFmpegMissingMessage
		return result
	}

	ytdlpBinary := strings.TrimSpace(ytdlpCommand)
	if ytdlpBinary != "" {
		if resolved, err := exec.LookPath(ytdlpBinary); err == nil {
			candidate := sidecarCandidate(resolved)
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				result.Command = candidate
				result.Available = true
				return result
			}
		}
	}

	if ffmpegPath, err := exec.LookPath("ffmpeg"); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = "ffmpeg"
	result.Detail = FFmpegMissingMessage
	return result
}

// FFmpegChecker returns a function that re-resolves ffmpeg on every call so a binary
// installed while the server runs is picked up.
func FFmpegChecker(ffmpegCommand, ytdlpCommand string) func() error {
	return func() error {
		return ResolveFFmpeg(ffmpegCommand, ytdlpCommand).Err()
	}
}

// Describe renders a one-line summary used in logs.
func (s Status) Describe() string {
	if s.Available {
		return fmt.Sprintf("%s available at %s", s.Name, s.Command)
	}
	return fmt.Sprintf("%s unavailable: %s", s.Name, s.Detail)
}

func sidecarCandidate(ytdlpPath string) string {
	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(ytdlpPath), name)
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
