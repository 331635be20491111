// Package main hosts the vidscribe CLI.
//
// The Cobra command tree runs the HTTP server in the foreground (serve) or as a
// detached process (start, stop, status), fetches transcripts and audio directly
// without a server, and inspects the operation history, server logs, and
// configuration.
package main
