package editor

import (
	"reel/internal/canvas"
)

// Mode is the active pointer interaction. Exactly one mode is in effect at
// a time; pointer-up or escape returns the session to ModeIdle.
type Mode string

const (
	ModeIdle       Mode = "idle"
	ModePanning    Mode = "panning"
	ModeNodeDrag   Mode = "node_drag"
	ModeResizing   Mode = "resizing"
	ModeConnecting Mode = "connecting"
)

// Button identifies the pointer button of a down event.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
)

// Key is one keyboard event with its modifier state.
type Key struct {
	Code  string
	Ctrl  bool
	Meta  bool
	Shift bool
}

func (k Key) chord() bool {
	return k.Ctrl || k.Meta
}

// dragState records the fixed offset between the pointer's logical
// position and the node's top-left, so the node follows without jumping.
type dragState struct {
	nodeID  string
	offsetX float64
	offsetY float64
}

type resizeState struct {
	nodeID      string
	startWidth  float64
	startHeight float64
	startLogical canvas.Point
}

type connectState struct {
	sourceID string
	pointer  canvas.Point
}

type panState struct {
	lastScreen canvas.Point
	viaSpace   bool
}

// Selection is the session's focus record, independent of the pointer
// mode. ItemID is meaningful only while NodeID owns it.
type Selection struct {
	NodeID     string
	ItemID     string
	Connection *Edge
}

// Edge is a selected connection identified by its (source, target) pair.
type Edge struct {
	SourceID string
	TargetID string
}

func (s *Selection) clear() {
	s.NodeID = ""
	s.ItemID = ""
	s.Connection = nil
}
