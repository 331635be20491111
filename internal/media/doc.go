// Package media defines the contract between the orchestrators and the
// external media engine.
//
// Engine covers the four capabilities both pipelines need: probing caption
// tracks, downloading one caption track, probing metadata, and downloading a
// video's audio transcoded to a target format. Implementations report failures
// as explicit error values; failures of the underlying tool are *ToolError so
// their message can be surfaced to API callers unchanged.
package media
