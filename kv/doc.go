// Package kv provides the durable key-value stores the task collection is persisted to. Values are opaque byte
// slices; absent keys are reported with ErrNotFound.
//
// Four backends are available through Open: "memory" (lost at exit, for tests and dry runs), "file" (one file per
// key, with a SHA-256 checksum file next to it), "sqlite" (a single-table database file) and "mysql" (the same
// table in a MySQL database).
package kv // import "github.com/nicolagi/todo/kv"
