// Package ffprobe provides a typed wrapper around ffprobe JSON output, used to
// confirm that an extracted audio artifact really carries an audio stream.
package ffprobe
