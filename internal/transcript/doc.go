// Package transcript fetches caption tracks for a video and turns them into plain
// text.
//
// A fetch probes which caption languages the video advertises, picks one from the
// preferred list, asks the media engine to write that track as WebVTT into a
// scratch directory, and normalizes the cue text. Scratch files are keyed by a
// random id and removed before Fetch returns, whatever the outcome.
package transcript
