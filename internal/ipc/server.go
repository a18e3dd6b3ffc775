package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"sync"

	"log/slog"

	"reel/internal/api"
	"reel/internal/logging"
)

// Server exposes session control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. The stop
// hook is invoked when a client requests shutdown.
func NewServer(ctx context.Context, path string, svc *api.Service, stop func(), logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("ipc server requires a service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create socket dir: %w", err)
		}
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	handler := &service{svc: svc, stop: stop, logger: logging.NewComponentLogger(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Reel", handler); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	svc    *api.Service
	stop   func()
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	resp.Status = s.svc.Status(s.ctx)
	return nil
}

func (s *service) Graph(_ GraphRequest, resp *GraphResponse) error {
	resp.Graph = s.svc.Graph()
	return nil
}

func (s *service) AddNode(req AddNodeRequest, resp *AddNodeResponse) error {
	node, err := s.svc.AddNode(api.AddNodeRequest{Kind: req.Kind, X: req.X, Y: req.Y})
	if err != nil {
		return err
	}
	resp.Node = node
	s.logger.Info("node added via IPC", logging.Args(
		logging.String(logging.FieldNodeID, node.ID),
		logging.String("kind", req.Kind))...)
	return nil
}

func (s *service) RemoveNode(req RemoveNodeRequest, resp *RemoveNodeResponse) error {
	if err := s.svc.RemoveNode(req.NodeID); err != nil {
		return err
	}
	resp.Removed = true
	return nil
}

func (s *service) Connect(req ConnectRequest, resp *ConnectResponse) error {
	if err := s.svc.Connect(api.ConnectRequest{SourceID: req.SourceID, TargetID: req.TargetID}); err != nil {
		return err
	}
	resp.Done = true
	return nil
}

func (s *service) Disconnect(req ConnectRequest, resp *ConnectResponse) error {
	if err := s.svc.Disconnect(api.ConnectRequest{SourceID: req.SourceID, TargetID: req.TargetID}); err != nil {
		return err
	}
	resp.Done = true
	return nil
}

func (s *service) Undo(_ UndoRequest, resp *UndoResponse) error {
	resp.Undone = s.svc.Undo()
	return nil
}

func (s *service) Run(req RunRequest, resp *RunResponse) error {
	if err := s.svc.Run(s.ctx, req.NodeID); err != nil {
		return err
	}
	resp.Done = true
	return nil
}

func (s *service) Export(req ExportRequest, resp *ExportResponse) error {
	if req.NodeID == "" {
		return errors.New("export requires a node id")
	}
	if req.Path == "" {
		return errors.New("export requires a destination path")
	}
	file, err := os.Create(req.Path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	result, exportErr := s.svc.Export(s.ctx, file, req.NodeID)
	closeErr := file.Close()
	if exportErr != nil {
		os.Remove(req.Path)
		return exportErr
	}
	if closeErr != nil {
		return fmt.Errorf("close archive: %w", closeErr)
	}
	resp.Path = req.Path
	resp.Included = result.Included
	resp.Skipped = result.Skipped
	s.logger.Info("timeline exported via IPC", logging.Args(
		logging.String(logging.FieldNodeID, req.NodeID),
		logging.String("path", req.Path),
		logging.Int("included", result.Included))...)
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Info("daemon stop requested via IPC")
	if s.stop != nil {
		s.stop()
	}
	resp.Stopped = true
	return nil
}
