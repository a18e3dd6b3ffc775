package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"reel/internal/api"
	"reel/internal/assets"
	"reel/internal/config"
	"reel/internal/editor"
	"reel/internal/generation"
	"reel/internal/logging"
)

// Daemon owns the editing session and its supporting services for the
// lifetime of the process.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	session  *editor.Session
	registry *assets.Registry
	runner   *generation.Runner
	service  *api.Service
	apiSrv   *apiServer

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	started bool
}

// New constructs a daemon from configuration. The asset registry is
// in-memory and lives exactly as long as the daemon.
func New(cfg *config.Config, logger *slog.Logger, lockPath string) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("daemon requires configuration")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	registry, err := assets.Open(logger)
	if err != nil {
		return nil, fmt.Errorf("open asset registry: %w", err)
	}

	session := editor.NewSession(logger, cfg.Timeline.PixelsPerSecond)

	client := generation.NewClient(generation.Config{
		BaseURL:        cfg.Generation.BaseURL,
		APIKey:         cfg.Generation.APIKey,
		TimeoutSeconds: cfg.Generation.TimeoutSeconds,
	}, generation.WithRetryMaxAttempts(cfg.Generation.RetryAttempts))
	runner := generation.NewRunner(logger, session.Store(), client,
		generation.WithClipDelay(time.Duration(cfg.Generation.ClipDelaySeconds)*time.Second))

	service := api.NewService(logger, session, registry, runner, lockPath, cfg.Paths.Socket)

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		session:  session,
		registry: registry,
		runner:   runner,
		service:  service,
		lockPath: lockPath,
	}
	if lockPath != "" {
		d.lock = flock.New(lockPath)
	}
	d.apiSrv, err = newAPIServer(cfg, service, registry, logger)
	if err != nil {
		registry.Close()
		return nil, err
	}
	return d, nil
}

// Service exposes the workflow layer for the IPC server.
func (d *Daemon) Service() *api.Service { return d.service }

// Start brings up the HTTP API. Safe to call once.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return nil
	}
	if d.lock != nil {
		ok, err := d.lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return fmt.Errorf("another reel daemon instance is already running")
		}
	}
	if d.apiSrv != nil {
		if err := d.apiSrv.start(ctx); err != nil {
			if d.lock != nil {
				_ = d.lock.Unlock()
			}
			return err
		}
	}
	d.started = true
	d.logger.Info("daemon started")
	return nil
}

// Stop shuts the HTTP API down and releases the asset registry.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.apiSrv != nil {
		d.apiSrv.stop()
	}
	if d.lock != nil {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("release daemon lock", logging.Error(err))
		}
	}
	if d.registry != nil {
		if err := d.registry.Close(); err != nil {
			d.logger.Warn("close asset registry", logging.Error(err))
		}
		d.registry = nil
	}
	d.started = false
	d.logger.Info("daemon stopped")
}
