package timeline

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"reel/internal/logging"
)

// Fetcher retrieves one clip's video bytes. Injectable for tests.
type Fetcher func(ctx context.Context, url string) (io.ReadCloser, error)

// HTTPFetcher returns a Fetcher backed by the given HTTP client.
func HTTPFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return func(ctx context.Context, url string) (io.ReadCloser, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: http %d", url, resp.StatusCode)
		}
		return resp.Body, nil
	}
}

// ExportResult summarizes an archive build.
type ExportResult struct {
	Included int
	Skipped  int
}

// ExportArchive bundles every done clip's video into a zip written to w.
// Sources are fetched concurrently; individual fetch failures are logged
// and skipped without aborting the batch.
func ExportArchive(ctx context.Context, w io.Writer, clips []Clip, fetch Fetcher, logger *slog.Logger) (ExportResult, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "export")

	type fetched struct {
		index int
		name  string
		data  []byte
		err   error
	}

	targets := make([]Clip, 0, len(clips))
	for _, clip := range clips {
		if strings.TrimSpace(clip.VideoURL) == "" {
			continue
		}
		targets = append(targets, clip)
	}

	results := make([]fetched, len(targets))
	var wg sync.WaitGroup
	for i, clip := range targets {
		wg.Add(1)
		go func(i int, clip Clip) {
			defer wg.Done()
			name := archiveEntryName(i, clip)
			body, err := fetch(ctx, clip.VideoURL)
			if err != nil {
				results[i] = fetched{index: i, name: name, err: err}
				return
			}
			defer body.Close()
			data, err := io.ReadAll(body)
			results[i] = fetched{index: i, name: name, data: data, err: err}
		}(i, clip)
	}
	wg.Wait()

	archive := zip.NewWriter(w)
	var result ExportResult
	for _, entry := range results {
		if entry.err != nil {
			result.Skipped++
			logger.Warn("clip skipped from export",
				logging.Args(logging.String("entry", entry.name), logging.Error(entry.err))...)
			continue
		}
		file, err := archive.Create(entry.name)
		if err != nil {
			return result, fmt.Errorf("create archive entry %s: %w", entry.name, err)
		}
		if _, err := file.Write(entry.data); err != nil {
			return result, fmt.Errorf("write archive entry %s: %w", entry.name, err)
		}
		result.Included++
	}
	if err := archive.Close(); err != nil {
		return result, fmt.Errorf("close archive: %w", err)
	}
	return result, nil
}

func archiveEntryName(index int, clip Clip) string {
	label := strings.TrimSpace(clip.Label)
	if label == "" {
		label = clip.ID
	}
	label = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '-'
		}
		return r
	}, label)
	return fmt.Sprintf("%02d-%s.mp4", index+1, label)
}
