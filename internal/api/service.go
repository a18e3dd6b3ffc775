package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"reel/internal/assets"
	"reel/internal/canvas"
	"reel/internal/editor"
	"reel/internal/generation"
	"reel/internal/graph"
	"reel/internal/logging"
)

// Service is the workflow layer shared by the HTTP API and the CLI socket.
// It owns the dispatch from transport requests into the session, the asset
// registry, and the generation runner, and keeps the session's error
// banner current when node-scoped actions fail.
type Service struct {
	logger   *slog.Logger
	session  *editor.Session
	registry *assets.Registry
	runner   *generation.Runner

	lockPath   string
	socketPath string
}

// NewService wires the session, registry, and runner into one service.
// Deleting a node or item releases its registry-backed assets through the
// session's released hook.
func NewService(logger *slog.Logger, session *editor.Session, registry *assets.Registry, runner *generation.Runner, lockPath, socketPath string) *Service {
	service := &Service{
		logger:     logging.NewComponentLogger(logger, "api"),
		session:    session,
		registry:   registry,
		runner:     runner,
		lockPath:   lockPath,
		socketPath: socketPath,
	}
	if registry != nil {
		session.OnItemsReleased(func(items []graph.MediaItem) {
			if err := registry.ReleaseItems(context.Background(), items); err != nil {
				service.logger.Warn("release assets", logging.Args(logging.Error(err))...)
			}
		})
	}
	return service
}

// Session exposes the underlying editing session.
func (s *Service) Session() *editor.Session { return s.session }

// Status reports the daemon's runtime state.
func (s *Service) Status(ctx context.Context) SessionStatus {
	status := SessionStatus{
		Running:      true,
		PID:          os.Getpid(),
		NodeCount:    s.session.Store().Len(),
		HistoryDepth: s.session.Store().HistoryDepth(),
		LockFilePath: s.lockPath,
		SocketPath:   s.socketPath,
		Error:        s.session.Error(),
	}
	if s.registry != nil {
		if count, err := s.registry.Count(ctx); err == nil {
			status.AssetCount = count
		}
	}
	return status
}

// Graph returns the full render snapshot.
func (s *Service) Graph() GraphResponse {
	view := s.session.View()
	resp := GraphResponse{
		Selection:    FromSelection(s.session.Selection()),
		View:         ViewState{PanX: view.PanX, PanY: view.PanY, Zoom: view.Zoom},
		Mode:         string(s.session.Mode()),
		HistoryDepth: s.session.Store().HistoryDepth(),
		Error:        s.session.Error(),
	}
	for _, node := range s.session.Store().Nodes() {
		resp.Nodes = append(resp.Nodes, FromNode(node))
	}
	return resp
}

// AddNode places a new node on the canvas.
func (s *Service) AddNode(req AddNodeRequest) (NodeView, error) {
	kind, ok := graph.ParseKind(req.Kind)
	if !ok {
		return NodeView{}, fmt.Errorf("unknown node kind %q", req.Kind)
	}
	node := s.session.Store().AddNode(kind, req.X, req.Y, nil)
	return FromNode(node), nil
}

// RemoveNode deletes a node, invalidating any in-flight generation run so
// its late results are discarded.
func (s *Service) RemoveNode(id string) error {
	if err := s.session.RemoveNode(id); err != nil {
		return err
	}
	if s.runner != nil {
		s.runner.Invalidate(id)
	}
	return nil
}

// RenameNode retitles a node.
func (s *Service) RenameNode(req RenameRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("title required")
	}
	return s.session.Store().RenameNode(req.NodeID, title)
}

// DuplicateNode clones a node with cleared connections.
func (s *Service) DuplicateNode(id string) (NodeView, error) {
	node, err := s.session.Store().DuplicateNode(id)
	if err != nil {
		return NodeView{}, err
	}
	return FromNode(node), nil
}

// Connect wires two nodes.
func (s *Service) Connect(req ConnectRequest) error {
	return s.session.Store().Connect(req.SourceID, req.TargetID)
}

// Disconnect removes one edge.
func (s *Service) Disconnect(req ConnectRequest) error {
	return s.session.Store().Disconnect(req.SourceID, req.TargetID)
}

// DeleteItem removes one media item and releases its backing asset.
func (s *Service) DeleteItem(nodeID, itemID string) error {
	return s.session.DeleteItem(nodeID, itemID)
}

// Undo pops the most recent history snapshot.
func (s *Service) Undo() bool {
	return s.session.Store().Undo()
}

// SetViewport records the frontend's canvas rectangle.
func (s *Service) SetViewport(v canvas.Viewport) {
	s.session.SetViewport(v)
}

// Pointer dispatches one pointer event into the session.
func (s *Service) Pointer(evt PointerEvent) error {
	point := canvas.Point{X: evt.X, Y: evt.Y}
	switch evt.Type {
	case "down":
		button := editor.ButtonPrimary
		if evt.Button == "middle" {
			button = editor.ButtonMiddle
		}
		s.session.PointerDown(point, button)
	case "move":
		s.session.PointerMove(point)
	case "up":
		s.session.PointerUp(point)
	case "cancel":
		s.session.Cancel()
	default:
		return fmt.Errorf("unknown pointer event type %q", evt.Type)
	}
	return nil
}

// Key dispatches one keyboard event into the session.
func (s *Service) Key(evt KeyEvent) error {
	key := editor.Key{Code: evt.Code, Ctrl: evt.Ctrl, Meta: evt.Meta, Shift: evt.Shift}
	switch evt.Type {
	case "down":
		s.session.KeyDown(key)
	case "up":
		s.session.KeyUp(key)
	default:
		return fmt.Errorf("unknown key event type %q", evt.Type)
	}
	return nil
}

// Zoom rescales the canvas view.
func (s *Service) Zoom(factor float64) ViewState {
	s.session.Zoom(factor)
	view := s.session.View()
	return ViewState{PanX: view.PanX, PanY: view.PanY, Zoom: view.Zoom}
}

// SetTextFocus toggles keyboard-shortcut suppression while an input owns
// the keyboard.
func (s *Service) SetTextFocus(focused bool) {
	s.session.SetTextFocus(focused)
}

// DismissError clears the global error banner.
func (s *Service) DismissError() {
	s.session.DismissError()
}

// Ingest stores one dropped file and attaches the resulting item to the
// receiving node.
func (s *Service) Ingest(ctx context.Context, nodeID, name, declaredType string, data []byte) (ItemView, error) {
	if s.registry == nil {
		return ItemView{}, fmt.Errorf("asset registry unavailable")
	}
	item, err := s.registry.Ingest(ctx, name, declaredType, data)
	if err != nil {
		return ItemView{}, err
	}
	if err := s.session.Store().AddItems(nodeID, item); err != nil {
		// The node vanished between ingest and attach; drop the blob.
		_ = s.registry.ReleaseItems(ctx, []graph.MediaItem{item})
		return ItemView{}, err
	}
	node, err := s.session.Store().Node(nodeID)
	if err != nil {
		return ItemView{}, err
	}
	attached := node.Items[len(node.Items)-1]
	return FromItem(attached), nil
}

// Run executes the generation action matching the node's kind. Failures
// land in the session's error banner, most recent wins.
func (s *Service) Run(ctx context.Context, nodeID string) error {
	if s.runner == nil {
		return fmt.Errorf("generation unavailable")
	}
	node, err := s.session.Store().Node(nodeID)
	if err != nil {
		return err
	}
	var runErr error
	switch node.Kind {
	case graph.KindMusicAnalysis:
		runErr = s.runner.RunMusicAnalysis(ctx, nodeID)
	case graph.KindStoryboardAgent:
		runErr = s.runner.RunStoryboard(ctx, nodeID)
	case graph.KindAgent, graph.KindVisualStyle:
		runErr = s.runner.RunAgent(ctx, nodeID)
	case graph.KindTimeline:
		runErr = s.runner.GenerateClips(ctx, nodeID)
	default:
		runErr = fmt.Errorf("node kind %s has no generation action", node.Kind)
	}
	if runErr != nil {
		s.session.SetError(runErr.Error())
		return runErr
	}
	return nil
}
