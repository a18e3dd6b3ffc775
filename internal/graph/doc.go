// Package graph owns the editing session's node collection: typed nodes,
// their media items, and the directed connections between them. Every
// mutation is atomic under the store lock, and destructive operations push
// a full-state snapshot onto a bounded history stack so a single undo
// restores the exact prior collection.
package graph
