package assets_test

import (
	"context"
	"errors"
	"testing"

	"reel/internal/assets"
	"reel/internal/graph"
)

func openRegistry(t *testing.T) *assets.Registry {
	t.Helper()
	registry, err := assets.Open(nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { registry.Close() })
	return registry
}

func TestIngestAndGetRoundTrip(t *testing.T) {
	registry := openRegistry(t)
	ctx := context.Background()

	item, err := registry.Ingest(ctx, "cover.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if item.MediaType != graph.MediaImage {
		t.Fatalf("media type = %q", item.MediaType)
	}
	if item.DisplayName != "cover.png" {
		t.Fatalf("display name = %q", item.DisplayName)
	}

	id, ok := assets.IDFromURL(item.SourceURL)
	if !ok {
		t.Fatalf("source url %q is not registry-served", item.SourceURL)
	}
	asset, err := registry.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(asset.Data) != "png-bytes" || asset.MIMEType != "image/png" {
		t.Fatalf("asset = %+v", asset)
	}
}

func TestIngestClassifiesByExtensionFallback(t *testing.T) {
	registry := openRegistry(t)

	item, err := registry.Ingest(context.Background(), "track.mp3", "", []byte("mp3"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if item.MediaType != graph.MediaAudio {
		t.Fatalf("media type = %q, want audio from extension", item.MediaType)
	}
}

func TestIngestRejectsUnknownType(t *testing.T) {
	registry := openRegistry(t)

	if _, err := registry.Ingest(context.Background(), "notes.txt", "text/plain", []byte("x")); err == nil {
		t.Fatal("expected rejection for non-media file")
	}
}

func TestReleaseItemsRevokesOnlyRegistryURLs(t *testing.T) {
	registry := openRegistry(t)
	ctx := context.Background()

	item, err := registry.Ingest(ctx, "clip.mp4", "video/mp4", []byte("mp4"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	err = registry.ReleaseItems(ctx, []graph.MediaItem{
		item,
		{SourceURL: "https://cdn.example/remote.mp4", MediaType: graph.MediaVideo},
	})
	if err != nil {
		t.Fatalf("ReleaseItems: %v", err)
	}

	count, err := registry.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0 after release", count)
	}

	id, _ := assets.IDFromURL(item.SourceURL)
	if _, err := registry.Get(ctx, id); !errors.Is(err, assets.ErrAssetNotFound) {
		t.Fatalf("err = %v, want ErrAssetNotFound", err)
	}
}

func TestReleaseMissingIDIsNoop(t *testing.T) {
	registry := openRegistry(t)
	if err := registry.Release(context.Background(), "no-such-id"); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestIDFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"/assets/abc-123", "abc-123", true},
		{"/assets/", "", false},
		{"/assets/a/b", "", false},
		{"https://cdn.example/clip.mp4", "", false},
	}
	for _, tc := range cases {
		id, ok := assets.IDFromURL(tc.url)
		if id != tc.want || ok != tc.ok {
			t.Errorf("IDFromURL(%q) = (%q, %v), want (%q, %v)", tc.url, id, ok, tc.want, tc.ok)
		}
	}
}
