// Package history records every transcript and audio operation in a SQLite
// database under the state directory.
//
// The store is an audit trail only. It never deletes or moves artifacts on disk.
package history
