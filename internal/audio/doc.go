// Package audio extracts the audio track of a video into the downloads root.
//
// Each extraction gets its own directory named "<timestamp>_<sanitized title>"
// holding a single "<same name>.<ext>" artifact. Artifacts are never deleted by
// this package.
package audio
