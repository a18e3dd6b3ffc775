package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"reel/internal/graph"
	"reel/internal/logging"
)

// ErrAssetNotFound marks a lookup for a missing or released asset.
var ErrAssetNotFound = errors.New("asset not found")

// URLPrefix is the path prefix assets are served under.
const URLPrefix = "/assets/"

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	media_type TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	size INTEGER NOT NULL,
	data BLOB NOT NULL,
	created_at TEXT NOT NULL
);
`

// Asset is one stored blob with its serving metadata.
type Asset struct {
	ID        string
	Name      string
	MediaType graph.MediaType
	MIMEType  string
	Data      []byte
}

// Registry is the in-memory asset store.
type Registry struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes the in-memory registry. A single connection keeps the
// memory database alive for the registry's lifetime.
func Open(logger *slog.Logger) (*Registry, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Registry{
		db:     db,
		logger: logging.NewComponentLogger(logger, "assets"),
	}, nil
}

// Close releases the database connection and every stored blob with it.
func (r *Registry) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// Ingest classifies and stores one dropped file, returning the media item
// to attach to the receiving node. Files that are neither image, video,
// nor audio are rejected.
func (r *Registry) Ingest(ctx context.Context, name, declaredType string, data []byte) (graph.MediaItem, error) {
	ctx = ensureContext(ctx)
	mediaType, ok := graph.ClassifyMedia(declaredType, name)
	if !ok {
		return graph.MediaItem{}, fmt.Errorf("unsupported media type for %q", name)
	}
	if len(data) == 0 {
		return graph.MediaItem{}, fmt.Errorf("empty payload for %q", name)
	}
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assets (id, name, media_type, mime_type, size, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, string(mediaType), declaredType, len(data), data,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return graph.MediaItem{}, fmt.Errorf("store asset: %w", err)
	}
	r.logger.Info("asset ingested", logging.Args(
		logging.String(logging.FieldAssetID, id),
		logging.String("name", name),
		logging.String("media_type", string(mediaType)),
		logging.Int("bytes", len(data)))...)
	return graph.MediaItem{
		SourceURL:   URLPrefix + id,
		MediaType:   mediaType,
		DisplayName: name,
	}, nil
}

// Get returns one stored asset by id.
func (r *Registry) Get(ctx context.Context, id string) (Asset, error) {
	ctx = ensureContext(ctx)
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, media_type, mime_type, data FROM assets WHERE id = ?", id)
	var asset Asset
	var mediaType string
	if err := row.Scan(&asset.ID, &asset.Name, &mediaType, &asset.MIMEType, &asset.Data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Asset{}, fmt.Errorf("%w: %s", ErrAssetNotFound, id)
		}
		return Asset{}, fmt.Errorf("load asset: %w", err)
	}
	asset.MediaType = graph.MediaType(mediaType)
	return asset, nil
}

// Release drops the stored blobs behind the given asset ids. Missing ids
// are ignored.
func (r *Registry) Release(ctx context.Context, ids ...string) error {
	ctx = ensureContext(ctx)
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", id); err != nil {
			return fmt.Errorf("release asset %s: %w", id, err)
		}
		r.logger.Debug("asset released", logging.Args(logging.String(logging.FieldAssetID, id))...)
	}
	return nil
}

// ReleaseItems revokes the registry-backed assets referenced by detached
// media items. Items pointing at remote URLs are left alone.
func (r *Registry) ReleaseItems(ctx context.Context, items []graph.MediaItem) error {
	var ids []string
	for _, item := range items {
		if id, ok := IDFromURL(item.SourceURL); ok {
			ids = append(ids, id)
		}
	}
	return r.Release(ctx, ids...)
}

// Count returns the number of live assets.
func (r *Registry) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	row := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM assets")
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return count, nil
}

// IDFromURL extracts the asset id from a registry-served source URL.
func IDFromURL(sourceURL string) (string, bool) {
	if !strings.HasPrefix(sourceURL, URLPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(sourceURL, URLPrefix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
