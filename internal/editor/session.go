package editor

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"reel/internal/canvas"
	"reel/internal/graph"
	"reel/internal/logging"
	"reel/internal/timeline"
)

// Session is one user's live editing state: the graph store, the canvas
// view, the pointer mode, and the selection record. All event entry points
// are serialized under one lock, mirroring the single event-loop turn the
// canvas frontend delivers events in.
type Session struct {
	mu     sync.Mutex
	logger *slog.Logger

	store    *graph.Store
	view     canvas.Transform
	viewport canvas.Viewport

	mode    Mode
	drag    dragState
	resize  resizeState
	connect connectState
	pan     panState

	sel       Selection
	hoverNode string
	hoverKind graph.Kind
	spaceHeld bool
	textFocus bool

	errMsg string

	players         map[string]*timeline.Player
	pixelsPerSecond float64

	// released is invoked with the media items detached by a node or item
	// deletion, so their backing assets can be revoked in the same action.
	released func(items []graph.MediaItem)
}

// NewSession constructs a session over a fresh graph store.
func NewSession(logger *slog.Logger, pixelsPerSecond float64) *Session {
	if pixelsPerSecond <= 0 {
		pixelsPerSecond = 4
	}
	return &Session{
		logger:          logging.NewComponentLogger(logger, "editor"),
		store:           graph.NewStore(logger),
		view:            canvas.NewTransform(),
		mode:            ModeIdle,
		players:         make(map[string]*timeline.Player),
		pixelsPerSecond: pixelsPerSecond,
	}
}

// Store exposes the underlying graph store.
func (s *Session) Store() *graph.Store { return s.store }

// OnItemsReleased registers the hook called with items detached by
// deletions.
func (s *Session) OnItemsReleased(hook func(items []graph.MediaItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = hook
}

// Mode returns the active pointer mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Selection returns the current focus record.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.sel
	if s.sel.Connection != nil {
		edge := *s.sel.Connection
		sel.Connection = &edge
	}
	return sel
}

// View returns the canvas transform.
func (s *Session) View() canvas.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetViewport records the on-screen rectangle hosting the canvas.
func (s *Session) SetViewport(v canvas.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = v
}

// Zoom rescales the view around the viewport center.
func (s *Session) Zoom(factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = s.view.ZoomBy(factor)
}

// SetTextFocus tracks whether a text input owns the keyboard; shortcuts
// are suppressed while it does.
func (s *Session) SetTextFocus(focused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textFocus = focused
}

// Error returns the global error banner, most recent wins.
func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// SetError replaces the error banner.
func (s *Session) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

// DismissError clears the banner.
func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// PointerDown enters the pointer mode matching what sits under the
// pointer. Only one of panning, node drag, resize, or connection drag can
// be active; a down event while a mode is already active is ignored.
func (s *Session) PointerDown(screen canvas.Point, button Button) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeIdle {
		return
	}
	logical := s.view.ToLogical(s.viewport, screen)
	target := s.hitTestLocked(logical)

	if button == ButtonMiddle {
		s.mode = ModePanning
		s.pan = panState{lastScreen: screen}
		return
	}
	if s.spaceHeld {
		if target.kind == hitBackground {
			s.mode = ModePanning
			s.pan = panState{lastScreen: screen, viaSpace: true}
		}
		return
	}

	switch target.kind {
	case hitOutputPort:
		s.mode = ModeConnecting
		s.connect = connectState{sourceID: target.nodeID, pointer: logical}
	case hitResizeHandle:
		node, err := s.store.Node(target.nodeID)
		if err != nil {
			return
		}
		bounds := nodeBounds(node)
		s.mode = ModeResizing
		s.resize = resizeState{
			nodeID:       target.nodeID,
			startWidth:   bounds.Width,
			startHeight:  bounds.Height,
			startLogical: logical,
		}
		s.selectNodeLocked(target.nodeID)
	case hitHeader:
		node, err := s.store.Node(target.nodeID)
		if err != nil {
			return
		}
		s.mode = ModeNodeDrag
		s.drag = dragState{
			nodeID:  target.nodeID,
			offsetX: logical.X - node.X,
			offsetY: logical.Y - node.Y,
		}
		s.selectNodeLocked(target.nodeID)
	case hitBody, hitInputPort:
		s.selectNodeLocked(target.nodeID)
	case hitCurve:
		s.sel.NodeID = ""
		s.sel.ItemID = ""
		s.sel.Connection = target.edge
	case hitBackground:
		// One action clears node, item, and connection selection.
		s.sel.clear()
	}
}

// PointerMove advances whichever mode is active; in idle it only tracks
// hover.
func (s *Session) PointerMove(screen canvas.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logical := s.view.ToLogical(s.viewport, screen)

	switch s.mode {
	case ModePanning:
		s.view = s.view.PanBy(screen.X-s.pan.lastScreen.X, screen.Y-s.pan.lastScreen.Y)
		s.pan.lastScreen = screen
	case ModeNodeDrag:
		_ = s.store.MoveNode(s.drag.nodeID, logical.X-s.drag.offsetX, logical.Y-s.drag.offsetY)
	case ModeResizing:
		width := s.resize.startWidth + (logical.X - s.resize.startLogical.X)
		height := s.resize.startHeight + (logical.Y - s.resize.startLogical.Y)
		_ = s.store.ResizeNode(s.resize.nodeID, width, height)
	case ModeConnecting:
		s.connect.pointer = logical
	default:
		s.updateHoverLocked(logical)
	}
}

// PointerUp commits a pending connection drag and returns to idle. All
// transient states are cleared regardless of which mode was active.
func (s *Session) PointerUp(screen canvas.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeConnecting {
		logical := s.view.ToLogical(s.viewport, screen)
		s.commitConnectionLocked(logical)
	}
	s.resetPointerLocked()
}

// Cancel aborts any in-flight pointer interaction without committing.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetPointerLocked()
}

func (s *Session) resetPointerLocked() {
	s.mode = ModeIdle
	s.drag = dragState{}
	s.resize = resizeState{}
	s.connect = connectState{}
	s.pan = panState{}
}

func (s *Session) commitConnectionLocked(logical canvas.Point) {
	target := s.hitTestLocked(logical)
	var targetID string
	switch target.kind {
	case hitInputPort, hitBody, hitHeader, hitResizeHandle:
		targetID = target.nodeID
	default:
		return
	}
	if targetID == s.connect.sourceID {
		return
	}
	err := s.store.Connect(s.connect.sourceID, targetID)
	switch {
	case err == nil:
	case errors.Is(err, graph.ErrPortMismatch), errors.Is(err, graph.ErrSelfConnection):
		// Invalid drop target: the drag is discarded with no mutation.
		s.logger.Debug("connection drag discarded", logging.Args(logging.Error(err))...)
	default:
		s.errMsg = err.Error()
	}
}

// PreviewPath returns the dangling rubber-band curve while a connection
// drag is in flight.
func (s *Session) PreviewPath() (canvas.CubicPath, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeConnecting {
		return canvas.CubicPath{}, false
	}
	node, err := s.store.Node(s.connect.sourceID)
	if err != nil {
		return canvas.CubicPath{}, false
	}
	return canvas.PathBetween(canvas.OutputAnchor(nodeBounds(node)), s.connect.pointer), true
}

func (s *Session) selectNodeLocked(id string) {
	if s.sel.NodeID != id {
		s.sel.ItemID = ""
	}
	s.sel.NodeID = id
	s.sel.Connection = nil
}

// SelectItem focuses one media item within the selected node.
func (s *Session) SelectItem(nodeID, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.NodeID = nodeID
	s.sel.ItemID = itemID
	s.sel.Connection = nil
}

func (s *Session) updateHoverLocked(logical canvas.Point) {
	target := s.hitTestLocked(logical)
	switch target.kind {
	case hitBackground, hitCurve:
		s.hoverNode = ""
		s.hoverKind = ""
	default:
		s.hoverNode = target.nodeID
		if node, err := s.store.Node(target.nodeID); err == nil {
			s.hoverKind = node.Kind
		}
	}
}

// KeyDown dispatches keyboard shortcuts. Everything is ignored while a
// text input has focus. A hovered timeline intercepts space for play/pause
// instead of arming pan mode.
func (s *Session) KeyDown(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.textFocus {
		return
	}
	switch key.Code {
	case " ", "space":
		if s.hoverKind == graph.KindTimeline && s.hoverNode != "" {
			s.playerLocked(s.hoverNode).Toggle(time.Now())
			return
		}
		s.spaceHeld = true
	case "escape":
		s.resetPointerLocked()
	case "z":
		if key.chord() {
			s.store.Undo()
		}
	case "c":
		if key.chord() && s.sel.NodeID != "" {
			if err := s.store.CopyNode(s.sel.NodeID); err != nil {
				s.errMsg = err.Error()
			}
		}
	case "v":
		if key.chord() {
			s.pasteLocked()
		}
	case "delete", "backspace":
		s.deleteSelectionLocked()
	}
}

// KeyUp releases modal keys. Releasing space while panning ends the pan.
func (s *Session) KeyUp(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch key.Code {
	case " ", "space":
		s.spaceHeld = false
		if s.mode == ModePanning && s.pan.viaSpace {
			s.resetPointerLocked()
		}
	}
}

func (s *Session) pasteLocked() {
	node, err := s.store.Paste()
	if err != nil {
		if !errors.Is(err, graph.ErrClipboardEmpty) {
			s.errMsg = err.Error()
		}
		return
	}
	s.selectNodeLocked(node.ID)
}

func (s *Session) deleteSelectionLocked() {
	switch {
	case s.sel.Connection != nil:
		edge := *s.sel.Connection
		if err := s.store.Disconnect(edge.SourceID, edge.TargetID); err != nil {
			s.errMsg = err.Error()
			return
		}
		s.sel.Connection = nil
	case s.sel.ItemID != "":
		s.deleteItemLocked(s.sel.NodeID, s.sel.ItemID)
	case s.sel.NodeID != "":
		s.removeNodeLocked(s.sel.NodeID)
	}
}

// RemoveNode deletes a node, clears any selection or focus pointing at it,
// and releases the assets its items held.
func (s *Session) RemoveNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeNodeLocked(id)
}

func (s *Session) removeNodeLocked(id string) error {
	node, err := s.store.Node(id)
	if err != nil {
		return err
	}
	if err := s.store.RemoveNode(id); err != nil {
		return err
	}
	if s.sel.NodeID == id {
		s.sel.clear()
	}
	if s.hoverNode == id {
		s.hoverNode = ""
		s.hoverKind = ""
	}
	delete(s.players, id)
	if s.released != nil && len(node.Items) > 0 {
		s.released(node.Items)
	}
	return nil
}

// DeleteItem removes one media item, clearing item selection and releasing
// the backing asset.
func (s *Session) DeleteItem(nodeID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteItemLocked(nodeID, itemID)
}

func (s *Session) deleteItemLocked(nodeID, itemID string) error {
	node, err := s.store.Node(nodeID)
	if err != nil {
		return err
	}
	item, ok := node.Item(itemID)
	if !ok {
		return graph.ErrNotFound
	}
	if err := s.store.DeleteItem(nodeID, itemID); err != nil {
		return err
	}
	if s.sel.NodeID == nodeID && s.sel.ItemID == itemID {
		s.sel.ItemID = ""
	}
	if s.released != nil {
		s.released([]graph.MediaItem{item})
	}
	return nil
}
