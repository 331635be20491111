// Package textutil provides filename sanitization for titles reported by the
// media engine and short tokens used in temporary file names.
package textutil
