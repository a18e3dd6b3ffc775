package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"reel/internal/api"
	"reel/internal/assets"
	"reel/internal/canvas"
	"reel/internal/config"
	"reel/internal/generation"
	"reel/internal/graph"
	"reel/internal/logging"
)

const maxIngestBytes = 256 << 20

// apiServer serves the frontend-facing HTTP API on the configured bind
// address. All state lives in the api.Service; handlers only translate
// between HTTP and service calls.
type apiServer struct {
	bind     string
	logger   *slog.Logger
	svc      *api.Service
	registry *assets.Registry

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, svc *api.Service, registry *assets.Registry, logger *slog.Logger) (*apiServer, error) {
	s := &apiServer{
		bind:     cfg.Paths.APIBind,
		logger:   logging.NewComponentLogger(logger, "http"),
		svc:      svc,
		registry: registry,
	}

	mux := http.NewServeMux()
	token := cfg.Paths.APIToken
	mux.HandleFunc("/api/status", authMiddleware(token, s.handleStatus))
	mux.HandleFunc("/api/graph", authMiddleware(token, s.handleGraph))
	mux.HandleFunc("/api/graph/nodes", authMiddleware(token, s.handleNodes))
	mux.HandleFunc("/api/graph/nodes/", authMiddleware(token, s.handleNode))
	mux.HandleFunc("/api/graph/connect", authMiddleware(token, s.handleConnect))
	mux.HandleFunc("/api/graph/disconnect", authMiddleware(token, s.handleDisconnect))
	mux.HandleFunc("/api/graph/undo", authMiddleware(token, s.handleUndo))
	mux.HandleFunc("/api/events/pointer", authMiddleware(token, s.handlePointer))
	mux.HandleFunc("/api/events/key", authMiddleware(token, s.handleKey))
	mux.HandleFunc("/api/view/zoom", authMiddleware(token, s.handleZoom))
	mux.HandleFunc("/api/view/viewport", authMiddleware(token, s.handleViewport))
	mux.HandleFunc("/api/view/focus", authMiddleware(token, s.handleFocus))
	mux.HandleFunc("/api/errors/dismiss", authMiddleware(token, s.handleDismissError))
	mux.HandleFunc("/api/timeline/", authMiddleware(token, s.handleTimeline))
	mux.HandleFunc(assets.URLPrefix, s.handleAsset)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.bind, err)
	}
	s.listener = listener
	s.logger.Info("HTTP API listening", logging.String("bind", listener.Addr().String()))

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP API server failed", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.stop()
	}()
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP API shutdown", logging.Error(err))
	}
}

// addr reports the bound address, useful when bind uses port 0.
func (s *apiServer) addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Status(r.Context()))
}

func (s *apiServer) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Graph())
}

func (s *apiServer) handleNodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.AddNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	node, err := s.svc.AddNode(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// handleNode covers the per-node subroutes:
//
//	DELETE /api/graph/nodes/{id}
//	POST   /api/graph/nodes/{id}/rename
//	POST   /api/graph/nodes/{id}/duplicate
//	POST   /api/graph/nodes/{id}/run
//	POST   /api/graph/nodes/{id}/items
//	DELETE /api/graph/nodes/{id}/items/{itemID}
func (s *apiServer) handleNode(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/graph/nodes/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "node id required")
		return
	}
	nodeID := parts[0]

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := s.svc.RemoveNode(nodeID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"removed": true})

	case len(parts) == 2 && parts[1] == "rename":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req api.RenameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.NodeID = nodeID
		if err := s.svc.RenameNode(req); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"renamed": true})

	case len(parts) == 2 && parts[1] == "duplicate":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		node, err := s.svc.DuplicateNode(nodeID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, node)

	case len(parts) == 2 && parts[1] == "run":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := s.svc.Run(r.Context(), nodeID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.svc.Graph())

	case len(parts) == 2 && parts[1] == "items":
		s.handleIngest(w, r, nodeID)

	case len(parts) == 3 && parts[1] == "items":
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := s.svc.DeleteItem(nodeID, parts[2]); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleIngest accepts one dropped file as the raw request body. The
// filename arrives as a query parameter and the declared media type in
// the Content-Type header.
func (s *apiServer) handleIngest(w http.ResponseWriter, r *http.Request, nodeID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name query parameter required")
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIngestBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	item, err := s.svc.Ingest(r.Context(), nodeID, name, r.Header.Get("Content-Type"), data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *apiServer) handleConnect(w http.ResponseWriter, r *http.Request) {
	s.handleEdge(w, r, s.svc.Connect)
}

func (s *apiServer) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.handleEdge(w, r, s.svc.Disconnect)
}

func (s *apiServer) handleEdge(w http.ResponseWriter, r *http.Request, apply func(api.ConnectRequest) error) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := apply(req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"done": true})
}

func (s *apiServer) handleUndo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"undone": s.svc.Undo()})
}

func (s *apiServer) handlePointer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var evt api.PointerEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.svc.Pointer(evt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Graph())
}

func (s *apiServer) handleKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var evt api.KeyEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.svc.Key(evt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Graph())
}

func (s *apiServer) handleZoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Factor float64 `json:"factor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Zoom(req.Factor))
}

func (s *apiServer) handleViewport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Left   float64 `json:"left"`
		Top    float64 `json:"top"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.svc.SetViewport(canvas.Viewport{Left: req.Left, Top: req.Top, Width: req.Width, Height: req.Height})
	writeJSON(w, http.StatusOK, map[string]bool{"done": true})
}

func (s *apiServer) handleFocus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Focused bool `json:"focused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.svc.SetTextFocus(req.Focused)
	writeJSON(w, http.StatusOK, map[string]bool{"done": true})
}

func (s *apiServer) handleDismissError(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.svc.DismissError()
	writeJSON(w, http.StatusOK, map[string]bool{"done": true})
}

// handleTimeline covers the per-timeline subroutes:
//
//	GET  /api/timeline/{id}
//	POST /api/timeline/{id}/toggle
//	POST /api/timeline/{id}/tick
//	POST /api/timeline/{id}/seek
//	POST /api/timeline/{id}/clips/{clipID}/resize
//	POST /api/timeline/{id}/clips/{clipID}/reorder
//	GET  /api/timeline/{id}/waveform
//	GET  /api/timeline/{id}/export
func (s *apiServer) handleTimeline(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/timeline/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "timeline node id required")
		return
	}
	nodeID := parts[0]

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		resp, err := s.svc.Timeline(nodeID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)

	case len(parts) == 2 && parts[1] == "toggle":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		resp, err := s.svc.TimelineToggle(nodeID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)

	case len(parts) == 2 && parts[1] == "tick":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req api.TimelineTickRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		frame, err := s.svc.TimelineTick(nodeID, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, frame)

	case len(parts) == 2 && parts[1] == "seek":
		s.handleSeek(w, r, nodeID)

	case len(parts) == 2 && parts[1] == "waveform":
		s.handleWaveform(w, r, nodeID)

	case len(parts) == 2 && parts[1] == "export":
		s.handleExport(w, r, nodeID)

	case len(parts) == 4 && parts[1] == "clips" && parts[3] == "resize":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req struct {
			OriginalDuration float64 `json:"originalDuration"`
			DeltaPixels      float64 `json:"deltaPixels"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.svc.ResizeClip(nodeID, parts[2], req.OriginalDuration, req.DeltaPixels); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"done": true})

	case len(parts) == 4 && parts[1] == "clips" && parts[3] == "reorder":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req struct {
			Index int `json:"index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.svc.ReorderClip(nodeID, parts[2], req.Index); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"done": true})

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleSeek accepts either a time in seconds or a ruler x offset in
// pixels, exactly one of the two.
func (s *apiServer) handleSeek(w http.ResponseWriter, r *http.Request, nodeID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Time   *float64 `json:"time,omitempty"`
		Pixels *float64 `json:"pixels,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var (
		frame api.FrameView
		err   error
	)
	switch {
	case req.Time != nil:
		frame, err = s.svc.TimelineSeek(nodeID, *req.Time)
	case req.Pixels != nil:
		frame, err = s.svc.TimelineSeekPixels(nodeID, *req.Pixels)
	default:
		writeError(w, http.StatusBadRequest, "seek requires time or pixels")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *apiServer) handleWaveform(w http.ResponseWriter, r *http.Request, nodeID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	width := 600
	if raw := r.URL.Query().Get("width"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid width")
			return
		}
		width = parsed
	}
	resp, err := s.svc.Waveform(r.Context(), nodeID, width)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleExport(w http.ResponseWriter, r *http.Request, nodeID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="timeline-export.zip"`)
	result, err := s.svc.Export(r.Context(), w, nodeID)
	if err != nil {
		// Headers are already sent once the archive starts streaming;
		// only report errors that happen before the first write.
		s.logger.Error("timeline export failed", logging.Args(
			logging.String(logging.FieldNodeID, nodeID),
			logging.Error(err))...)
		return
	}
	s.logger.Info("timeline exported", logging.Args(
		logging.String(logging.FieldNodeID, nodeID),
		logging.Int("included", result.Included),
		logging.Int("skipped", result.Skipped))...)
}

// handleAsset streams one ingested blob. Unauthenticated on purpose so
// media elements can reference asset URLs directly.
func (s *apiServer) handleAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, ok := assets.IDFromURL(r.URL.Path)
	if !ok || id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if s.registry == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	asset, err := s.registry.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if asset.MIMEType != "" {
		w.Header().Set("Content-Type", asset.MIMEType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(asset.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(asset.Data)
}

func splitPath(path, prefix string) []string {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, graph.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case generation.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, generation.ErrUnauthorized):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Too late for an error status; the client sees a truncated body.
		return
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
