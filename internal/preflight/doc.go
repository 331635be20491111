// Package preflight provides readiness checks for external binaries and the
// filesystem paths vidscribe depends on.
//
// These checks run in two contexts:
//   - The daemon logs a dependency snapshot at startup and serves RunAll on
//     /api/status.
//   - The CLI "vidscribe status" command renders the same results as a table.
package preflight
