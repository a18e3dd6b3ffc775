package timeline_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"reel/internal/timeline"
)

func stubFetcher(bodies map[string]string, fail map[string]bool) timeline.Fetcher {
	return func(_ context.Context, url string) (io.ReadCloser, error) {
		if fail[url] {
			return nil, errors.New("boom")
		}
		return io.NopCloser(strings.NewReader(bodies[url])), nil
	}
}

func TestExportArchiveSkipsFailedFetches(t *testing.T) {
	clips := []timeline.Clip{
		{ID: "c1", Label: "Opening", VideoURL: "u1", Duration: 4, Status: timeline.ClipDone},
		{ID: "c2", Label: "Bridge", VideoURL: "u2", Duration: 4, Status: timeline.ClipDone},
		{ID: "c3", Label: "Finale", VideoURL: "u3", Duration: 4, Status: timeline.ClipDone},
	}
	fetch := stubFetcher(
		map[string]string{"u1": "video-1", "u3": "video-3"},
		map[string]bool{"u2": true},
	)

	var buf bytes.Buffer
	result, err := timeline.ExportArchive(context.Background(), &buf, clips, fetch, nil)
	if err != nil {
		t.Fatalf("ExportArchive: %v", err)
	}
	if result.Included != 2 || result.Skipped != 1 {
		t.Fatalf("result = %+v, want 2 included 1 skipped", result)
	}

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	names := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	if len(names) != 2 {
		t.Fatalf("archive entries = %v, want 2", names)
	}
	for _, name := range names {
		if strings.Contains(name, "Bridge") {
			t.Fatalf("failed clip leaked into archive: %v", names)
		}
	}
}

func TestExportArchiveIgnoresClipsWithoutVideo(t *testing.T) {
	clips := []timeline.Clip{
		{ID: "c1", Duration: 4, Status: timeline.ClipPending},
		{ID: "c2", Label: "Done", VideoURL: "u2", Duration: 4, Status: timeline.ClipDone},
	}
	fetch := stubFetcher(map[string]string{"u2": "video"}, nil)

	var buf bytes.Buffer
	result, err := timeline.ExportArchive(context.Background(), &buf, clips, fetch, nil)
	if err != nil {
		t.Fatalf("ExportArchive: %v", err)
	}
	if result.Included != 1 || result.Skipped != 0 {
		t.Fatalf("result = %+v, want only the done clip", result)
	}
}
