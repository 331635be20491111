// Package language maps caption track codes reported by the media engine to
// primary language subtags and human-readable names.
package language
