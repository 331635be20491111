// Package logs reads the server log file for `vidscribe logs`.
//
// Tail returns the last lines of a file together with the byte offset where
// reading stopped, and Follow keeps polling from that offset until the context
// ends. Lines can be narrowed to a single request with a Filter.
package logs
