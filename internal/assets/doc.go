// Package assets holds the session-scoped media registry. Dropped files
// are classified, stored as blobs in an in-memory SQLite database, and
// served back under /assets/{id}. The registry lives and dies with the
// daemon process; nothing is written to disk. Releasing an asset when its
// owning item or node is deleted keeps a long session from accumulating
// every blob ever dropped.
package assets
