package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"reel/internal/api"
	"reel/internal/canvas"
	"reel/internal/testsupport"
	"reel/internal/timeline"
)

func viewportForTest() canvas.Viewport {
	return canvas.Viewport{Width: 1200, Height: 800}
}

func startDaemon(t *testing.T, token string) (*Daemon, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken(token))

	d, err := New(cfg, nil, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		d.Stop()
	})
	return d, "http://" + d.apiSrv.addr()
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestStatusEndpoint(t *testing.T) {
	_, base := startDaemon(t, "")

	resp := doJSON(t, http.MethodGet, base+"/api/status", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var status api.SessionStatus
	decodeInto(t, resp, &status)
	if !status.Running || status.NodeCount != 0 {
		t.Fatalf("status = %+v", status)
	}
}

func TestNodeLifecycleOverHTTP(t *testing.T) {
	_, base := startDaemon(t, "")

	resp := doJSON(t, http.MethodPost, base+"/api/graph/nodes", "", api.AddNodeRequest{Kind: "asset_bin", X: 10, Y: 20})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d", resp.StatusCode)
	}
	var node api.NodeView
	decodeInto(t, resp, &node)
	if node.Kind != "asset_bin" || node.ID == "" {
		t.Fatalf("node = %+v", node)
	}

	resp = doJSON(t, http.MethodPost, base+"/api/graph/nodes/"+node.ID+"/rename", "", api.RenameRequest{Title: "References"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, base+"/api/graph/nodes/"+node.ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, base+"/api/graph/nodes/"+node.ID, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestConnectRejectionStatus(t *testing.T) {
	d, base := startDaemon(t, "")

	a, err := d.Service().AddNode(api.AddNodeRequest{Kind: "asset_bin"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	b, err := d.Service().AddNode(api.AddNodeRequest{Kind: "video_bin", X: 400})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	resp := doJSON(t, http.MethodPost, base+"/api/graph/connect", "", api.ConnectRequest{SourceID: a.ID, TargetID: b.ID})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("connect status = %d, want 400", resp.StatusCode)
	}
}

func TestBearerTokenRequired(t *testing.T) {
	_, base := startDaemon(t, "sekrit")

	resp := doJSON(t, http.MethodGet, base+"/api/status", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, base+"/api/status", "wrong", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, base+"/api/status", "sekrit", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", resp.StatusCode)
	}
}

func TestIngestAndServeAsset(t *testing.T) {
	d, base := startDaemon(t, "")

	bin, err := d.Service().AddNode(api.AddNodeRequest{Kind: "asset_bin"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	payload := []byte("fake image bytes")
	url := fmt.Sprintf("%s/api/graph/nodes/%s/items?name=poster.png", base, bin.ID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "image/png")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("ingest status = %d", resp.StatusCode)
	}
	var item api.ItemView
	decodeInto(t, resp, &item)
	if !strings.HasPrefix(item.SourceURL, "/assets/") {
		t.Fatalf("sourceUrl = %q", item.SourceURL)
	}

	// Asset URLs are served without auth so media elements can use them.
	served := doJSON(t, http.MethodGet, base+item.SourceURL, "", nil)
	if served.StatusCode != http.StatusOK {
		t.Fatalf("asset status = %d", served.StatusCode)
	}
	if got := served.Header.Get("Content-Type"); got != "image/png" {
		t.Fatalf("content type = %q", got)
	}
	data, _ := io.ReadAll(served.Body)
	if !bytes.Equal(data, payload) {
		t.Fatalf("asset bytes = %q", data)
	}
}

func TestPointerEventSelectsNode(t *testing.T) {
	d, base := startDaemon(t, "")

	d.Service().SetViewport(viewportForTest())
	node, err := d.Service().AddNode(api.AddNodeRequest{Kind: "asset_bin"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	resp := doJSON(t, http.MethodPost, base+"/api/events/pointer", "", api.PointerEvent{Type: "down", X: 610, Y: 410})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pointer status = %d", resp.StatusCode)
	}
	var graph api.GraphResponse
	decodeInto(t, resp, &graph)
	if graph.Selection.NodeID != node.ID {
		t.Fatalf("selection = %+v", graph.Selection)
	}
}

func TestUnknownPointerTypeRejected(t *testing.T) {
	_, base := startDaemon(t, "")

	resp := doJSON(t, http.MethodPost, base+"/api/events/pointer", "", api.PointerEvent{Type: "warp"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRunValidationStatus(t *testing.T) {
	d, base := startDaemon(t, "")

	agent, err := d.Service().AddNode(api.AddNodeRequest{Kind: "music_analysis_agent"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	resp := doJSON(t, http.MethodPost, base+"/api/graph/nodes/"+agent.ID+"/run", "", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("run status = %d, want 422", resp.StatusCode)
	}

	// The failure also lands in the session error banner.
	status := doJSON(t, http.MethodGet, base+"/api/status", "", nil)
	var s api.SessionStatus
	decodeInto(t, status, &s)
	if s.Error == "" {
		t.Fatal("expected an error banner after a failed run")
	}
}

func TestTimelineEndpoints(t *testing.T) {
	d, base := startDaemon(t, "")

	node, err := d.Service().AddNode(api.AddNodeRequest{Kind: "timeline"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	clips := []timeline.Clip{
		{ID: "c1", Duration: 4, Status: timeline.ClipDone, VideoURL: "http://example.test/c1.mp4"},
		{ID: "c2", Duration: 4, Status: timeline.ClipDone, VideoURL: "http://example.test/c2.mp4"},
	}
	if err := d.Service().Session().SetClips(node.ID, clips); err != nil {
		t.Fatalf("SetClips: %v", err)
	}

	resp := doJSON(t, http.MethodGet, base+"/api/timeline/"+node.ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("timeline status = %d", resp.StatusCode)
	}
	var tl api.TimelineResponse
	decodeInto(t, resp, &tl)
	if tl.NodeID != node.ID || tl.Playing {
		t.Fatalf("timeline = %+v", tl)
	}

	resp = doJSON(t, http.MethodPost, base+"/api/timeline/"+node.ID+"/toggle", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status = %d", resp.StatusCode)
	}
	decodeInto(t, resp, &tl)
	if !tl.Playing {
		t.Fatal("expected playback to start")
	}

	seek := 1.5
	resp = doJSON(t, http.MethodPost, base+"/api/timeline/"+node.ID+"/seek", "", map[string]float64{"time": seek})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seek status = %d", resp.StatusCode)
	}
	var frame api.FrameView
	decodeInto(t, resp, &frame)
	if frame.Current != seek {
		t.Fatalf("current = %v, want %v", frame.Current, seek)
	}

	resp = doJSON(t, http.MethodPost, base+"/api/timeline/"+node.ID+"/seek", "", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty seek status = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, base+"/api/timeline/missing", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing timeline status = %d, want 404", resp.StatusCode)
	}
}
