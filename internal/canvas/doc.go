// Package canvas holds the pure geometry of the editor surface: the
// screen/logical coordinate transform for the infinite pan/zoom canvas, and
// the connection router that shapes and hit-tests the cubic wires between
// node ports. Nothing in here mutates the graph; the editor package drives
// these functions from pointer events.
package canvas
