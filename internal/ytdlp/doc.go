// Package ytdlp implements media.Engine on top of the yt-dlp command line tool.
//
// Every invocation carries the shared network options (socket timeout, browser
// user agent, optional proxy, no playlists). Probes read yt-dlp's single-JSON
// dump; downloads ask yt-dlp to print the final file location so callers do not
// have to guess output names. Command execution is abstracted behind Executor
// so tests can substitute canned output.
package ytdlp
