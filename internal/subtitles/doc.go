// Package subtitles turns WebVTT caption tracks into plain transcript text and
// chooses which caption language to request from the media engine.
//
// NormalizeVTT strips the header block, cue indices, timing lines and inline
// markup, then collapses consecutive duplicate lines. Automatic captions repeat
// each line across rolling cues, so the collapse step is what makes the output
// readable.
package subtitles
