// Package daemon coordinates the long-running vidscribe server process.
//
// It wires configuration, the transcript and audio services, and the optional
// history store into a single lifecycle with flock-based locking to prevent
// multiple instances on the same state directory. The HTTP surface lives in
// api_server.go; request correlation and access logging in middleware.go.
//
// Keep orchestration logic here: acquisition pipelines live in their own
// packages while the daemon focuses on startup, shutdown, and transport.
package daemon
