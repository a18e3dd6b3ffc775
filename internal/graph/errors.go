package graph

import "errors"

var (
	// ErrNotFound reports a node or item id absent from the live graph.
	ErrNotFound = errors.New("graph: not found")
	// ErrSelfConnection reports an attempt to connect a node to itself.
	ErrSelfConnection = errors.New("graph: node cannot connect to itself")
	// ErrPortMismatch reports a connection whose source has no output port
	// or whose target has no input port.
	ErrPortMismatch = errors.New("graph: ports do not allow this connection")
	// ErrClipboardEmpty reports a paste with nothing copied.
	ErrClipboardEmpty = errors.New("graph: clipboard is empty")
)
