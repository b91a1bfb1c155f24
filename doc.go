// The todo package holds the state of a to-do list: an ordered collection of tasks, kept in memory by a Store and
// written as a whole to a key-value store by an Adapter after every change.
//
// Tasks are ordered newest first, that is, by descending id. New ids are one more than the largest id in the
// collection (or 1 for an empty collection), so deleting the newest task and adding another one reuses nothing but
// the number, never an id that is still present.
//
// The Store is not safe for concurrent use; the expectation is that one user interface owns it and issues one command
// at a time. Writes are different: the Store hands every new snapshot of the collection to the Adapter, which writes
// them on a single goroutine, dropping snapshots that were superseded before they could be written. The last write
// therefore always reflects the last state. Storage failures never reach the caller of a Store method; they are
// logged, and the in-memory state stays authoritative until the next successful write.
//
// A Store created with Open only exists once the initial load has completed (successfully or not), so there is no
// window in which a command could be applied to an empty collection and then clobbered by a late load.
package todo // import "github.com/nicolagi/todo"
