package ipc

import (
	"reel/internal/api"
)

// StatusRequest asks for daemon runtime state.
type StatusRequest struct{}

// StatusResponse carries the daemon's runtime state.
type StatusResponse struct {
	Status api.SessionStatus `json:"status"`
}

// GraphRequest asks for the full graph snapshot.
type GraphRequest struct{}

// GraphResponse carries the graph snapshot.
type GraphResponse struct {
	Graph api.GraphResponse `json:"graph"`
}

// AddNodeRequest places a node on the canvas.
type AddNodeRequest struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// AddNodeResponse returns the created node.
type AddNodeResponse struct {
	Node api.NodeView `json:"node"`
}

// RemoveNodeRequest deletes a node.
type RemoveNodeRequest struct {
	NodeID string `json:"nodeId"`
}

// RemoveNodeResponse acknowledges a deletion.
type RemoveNodeResponse struct {
	Removed bool `json:"removed"`
}

// ConnectRequest wires or unwires two nodes.
type ConnectRequest struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

// ConnectResponse acknowledges a connection change.
type ConnectResponse struct {
	Done bool `json:"done"`
}

// UndoRequest pops one history snapshot.
type UndoRequest struct{}

// UndoResponse reports whether anything was undone.
type UndoResponse struct {
	Undone bool `json:"undone"`
}

// ExportRequest bundles a timeline's clips into a zip on disk.
type ExportRequest struct {
	NodeID string `json:"nodeId"`
	Path   string `json:"path"`
}

// ExportResponse summarizes the written archive.
type ExportResponse struct {
	Path     string `json:"path"`
	Included int    `json:"included"`
	Skipped  int    `json:"skipped"`
}

// RunRequest triggers the generation action for a node.
type RunRequest struct {
	NodeID string `json:"nodeId"`
}

// RunResponse acknowledges a completed run.
type RunResponse struct {
	Done bool `json:"done"`
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse acknowledges a shutdown.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
