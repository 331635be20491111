// Package daemonctl lets the CLI manage a vidscribe server it does not host.
//
// Process state comes from the single-instance lock and the PID file under the
// state directory; everything else goes through the server's HTTP API. When the
// server is down, status snapshots fall back to local checks and the history
// database.
package daemonctl
