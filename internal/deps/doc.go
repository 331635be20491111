// Package deps checks that the external binaries vidscribe shells out to
// (yt-dlp, ffmpeg, ffprobe) are installed.
package deps
