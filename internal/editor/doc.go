// Package editor drives the interactive session: one global pointer and
// keyboard state machine over the graph store and the canvas transform.
// Pointer modes (panning, node drag, resize, connection drag) are mutually
// exclusive states of a single tagged value, with a separate selection
// record, so no combination of flags can describe an impossible state.
// Window-level move/up dispatch means drags tracked outside a node's
// bounds are never lost.
package editor
