package editor_test

import (
	"testing"

	"reel/internal/canvas"
	"reel/internal/editor"
	"reel/internal/graph"
)

// scr maps a logical point to screen space under the identity view of a
// 1200x800 viewport.
func scr(x, y float64) canvas.Point {
	return canvas.Point{X: x + 600, Y: y + 400}
}

func newSession(t *testing.T) *editor.Session {
	t.Helper()
	s := editor.NewSession(nil, 4)
	s.SetViewport(canvas.Viewport{Width: 1200, Height: 800})
	return s
}

func TestNodeDragFollowsPointerWithoutJump(t *testing.T) {
	s := newSession(t)
	node := s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)

	// Grab the header off-center.
	s.PointerDown(scr(50, 20), editor.ButtonPrimary)
	if s.Mode() != editor.ModeNodeDrag {
		t.Fatalf("mode = %v, want node drag", s.Mode())
	}
	depth := s.Store().HistoryDepth()

	s.PointerMove(scr(250, 120))
	moved, _ := s.Store().Node(node.ID)
	if moved.X != 200 || moved.Y != 100 {
		t.Fatalf("node at (%v,%v), want grab offset preserved", moved.X, moved.Y)
	}
	if s.Store().HistoryDepth() != depth {
		t.Fatal("drag moves must not record history")
	}

	s.PointerUp(scr(250, 120))
	if s.Mode() != editor.ModeIdle {
		t.Fatal("pointer up should return to idle")
	}
}

func TestDragSelectsNode(t *testing.T) {
	s := newSession(t)
	node := s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)
	s.PointerDown(scr(10, 10), editor.ButtonPrimary)
	if sel := s.Selection(); sel.NodeID != node.ID {
		t.Fatalf("selection = %+v, want dragged node", sel)
	}
}

func TestSpacePanOnBackground(t *testing.T) {
	s := newSession(t)
	s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)

	s.KeyDown(editor.Key{Code: "space"})
	s.PointerDown(scr(900, 300), editor.ButtonPrimary)
	if s.Mode() != editor.ModePanning {
		t.Fatalf("mode = %v, want panning", s.Mode())
	}
	s.PointerMove(scr(950, 330))
	view := s.View()
	if view.PanX != 50 || view.PanY != 30 {
		t.Fatalf("pan = (%v,%v), want raw screen delta", view.PanX, view.PanY)
	}

	// Releasing space ends the pan.
	s.KeyUp(editor.Key{Code: "space"})
	if s.Mode() != editor.ModeIdle {
		t.Fatal("space release should end pan")
	}
}

func TestSpaceDownOnNodeDoesNotDrag(t *testing.T) {
	s := newSession(t)
	node := s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)

	s.KeyDown(editor.Key{Code: "space"})
	s.PointerDown(scr(10, 10), editor.ButtonPrimary)
	if s.Mode() != editor.ModeIdle {
		t.Fatalf("mode = %v, space-down over a node should arm nothing", s.Mode())
	}
	s.PointerMove(scr(300, 300))
	unmoved, _ := s.Store().Node(node.ID)
	if unmoved.X != 0 || unmoved.Y != 0 {
		t.Fatal("node moved without a drag mode")
	}
}

func TestMiddleButtonPansAnywhere(t *testing.T) {
	s := newSession(t)
	s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)

	s.PointerDown(scr(10, 10), editor.ButtonMiddle)
	if s.Mode() != editor.ModePanning {
		t.Fatalf("mode = %v, want panning from middle button", s.Mode())
	}
}

func TestConnectDragCommitsOnNodeBody(t *testing.T) {
	s := newSession(t)
	bin := s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)
	agent := s.Store().AddNode(graph.KindAgent, 500, 0, nil)

	// Down on the bin's output port: width 320 + offset 10.
	s.PointerDown(scr(330, canvas.HeaderHeight/2), editor.ButtonPrimary)
	if s.Mode() != editor.ModeConnecting {
		t.Fatalf("mode = %v, want connecting", s.Mode())
	}
	s.PointerMove(scr(420, 60))
	if _, ok := s.PreviewPath(); !ok {
		t.Fatal("expected dangling preview while connecting")
	}
	s.PointerUp(scr(600, 100))

	src, _ := s.Store().Node(bin.ID)
	if !src.ConnectedTo(agent.ID) {
		t.Fatal("release over node body should commit the connection")
	}
}

func TestConnectDragDiscardedOnBackground(t *testing.T) {
	s := newSession(t)
	bin := s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)
	s.Store().AddNode(graph.KindAgent, 500, 0, nil)

	s.PointerDown(scr(330, canvas.HeaderHeight/2), editor.ButtonPrimary)
	s.PointerUp(scr(-300, -300))

	src, _ := s.Store().Node(bin.ID)
	if len(src.Outbound) != 0 {
		t.Fatal("release over background must not connect")
	}
	if s.Error() != "" {
		t.Fatalf("discarded drag raised error %q", s.Error())
	}
}

func TestConnectDragToInvalidTargetIsSilent(t *testing.T) {
	s := newSession(t)
	binA := s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)
	binB := s.Store().AddNode(graph.KindVideoBin, 500, 0, nil)

	s.PointerDown(scr(330, canvas.HeaderHeight/2), editor.ButtonPrimary)
	s.PointerUp(scr(600, 100))

	src, _ := s.Store().Node(binA.ID)
	if len(src.Outbound) != 0 {
		t.Fatal("bins accept no input; drag should be discarded")
	}
	if s.Error() != "" {
		t.Fatalf("invalid drop target raised error %q", s.Error())
	}
	_ = binB
}

func TestBackgroundClickClearsSelection(t *testing.T) {
	s := newSession(t)
	node := s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)
	s.SelectItem(node.ID, "item-1")

	s.PointerDown(scr(-400, -300), editor.ButtonPrimary)
	sel := s.Selection()
	if sel.NodeID != "" || sel.ItemID != "" || sel.Connection != nil {
		t.Fatalf("selection not cleared: %+v", sel)
	}
}

func TestCurveClickSelectsConnectionAndDeleteDisconnects(t *testing.T) {
	s := newSession(t)
	bin := s.Store().AddNode(graph.KindAssetBin, 0, -200, nil)
	agent := s.Store().AddNode(graph.KindAgent, 500, -200, nil)
	if err := s.Store().Connect(bin.ID, agent.ID); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// Midpoint of the wire between the two anchors.
	path := canvas.Route(
		canvas.NodeBounds{X: 0, Y: -200, Width: graph.KindAssetBin.DefaultWidth(), Height: 200},
		canvas.NodeBounds{X: 500, Y: -200, Width: graph.KindAgent.DefaultWidth(), Height: 200},
	)
	mid := path.At(0.5)
	s.PointerDown(scr(mid.X, mid.Y), editor.ButtonPrimary)
	sel := s.Selection()
	if sel.Connection == nil || sel.Connection.SourceID != bin.ID || sel.Connection.TargetID != agent.ID {
		t.Fatalf("selection = %+v, want the clicked edge", sel)
	}
	s.PointerUp(scr(mid.X, mid.Y))

	s.KeyDown(editor.Key{Code: "delete"})
	src, _ := s.Store().Node(bin.ID)
	if len(src.Outbound) != 0 {
		t.Fatal("delete with selected connection should disconnect")
	}
	if s.Selection().Connection != nil {
		t.Fatal("connection selection should clear after delete")
	}
}

func TestResizeHandleOnTimeline(t *testing.T) {
	s := newSession(t)
	node := s.Store().AddNode(graph.KindTimeline, 0, 0, nil)
	width := graph.KindTimeline.DefaultWidth()

	s.PointerDown(scr(width-5, 195), editor.ButtonPrimary)
	if s.Mode() != editor.ModeResizing {
		t.Fatalf("mode = %v, want resizing", s.Mode())
	}
	s.PointerMove(scr(width+95, 295))
	resized, _ := s.Store().Node(node.ID)
	if resized.Width != width+100 || resized.Height != 300 {
		t.Fatalf("size = %vx%v, want %vx300", resized.Width, resized.Height, width+100)
	}
	s.PointerUp(scr(width+95, 295))
}

func TestNonResizableKindHasNoHandle(t *testing.T) {
	s := newSession(t)
	s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)

	s.PointerDown(scr(315, 195), editor.ButtonPrimary)
	if s.Mode() == editor.ModeResizing {
		t.Fatal("asset bins must not expose a resize handle")
	}
}

func TestKeyboardShortcuts(t *testing.T) {
	s := newSession(t)
	node := s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)

	// Select, copy, paste.
	s.PointerDown(scr(10, 10), editor.ButtonPrimary)
	s.PointerUp(scr(10, 10))
	s.KeyDown(editor.Key{Code: "c", Ctrl: true})
	s.KeyDown(editor.Key{Code: "v", Ctrl: true})
	if s.Store().Len() != 2 {
		t.Fatalf("len = %d after paste, want 2", s.Store().Len())
	}
	pasted := s.Selection().NodeID
	if pasted == "" || pasted == node.ID {
		t.Fatal("paste should select the new node")
	}

	// Undo removes the pasted node.
	s.KeyDown(editor.Key{Code: "z", Ctrl: true})
	if s.Store().Len() != 1 {
		t.Fatalf("len = %d after undo, want 1", s.Store().Len())
	}

	// Delete removes the selected node.
	s.PointerDown(scr(10, 10), editor.ButtonPrimary)
	s.PointerUp(scr(10, 10))
	s.KeyDown(editor.Key{Code: "delete"})
	if s.Store().Len() != 0 {
		t.Fatalf("len = %d after delete, want 0", s.Store().Len())
	}
}

func TestShortcutsSuppressedDuringTextFocus(t *testing.T) {
	s := newSession(t)
	s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)
	s.PointerDown(scr(10, 10), editor.ButtonPrimary)
	s.PointerUp(scr(10, 10))

	s.SetTextFocus(true)
	s.KeyDown(editor.Key{Code: "delete"})
	if s.Store().Len() != 1 {
		t.Fatal("delete must be ignored while typing")
	}
	s.SetTextFocus(false)
	s.KeyDown(editor.Key{Code: "delete"})
	if s.Store().Len() != 0 {
		t.Fatal("delete should work after focus leaves the input")
	}
}

func TestHoveredTimelineInterceptsSpace(t *testing.T) {
	s := newSession(t)
	node := s.Store().AddNode(graph.KindTimeline, 0, 0, nil)

	s.PointerMove(scr(100, 100))
	s.KeyDown(editor.Key{Code: "space"})
	state, err := s.Timeline(node.ID)
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if !state.Playing {
		t.Fatal("space over a hovered timeline should start playback")
	}

	// Space did not arm pan mode: a background drag stays idle.
	s.PointerDown(scr(-500, -300), editor.ButtonPrimary)
	if s.Mode() == editor.ModePanning {
		t.Fatal("intercepted space must not arm panning")
	}
}

func TestEscapeCancelsConnectionDrag(t *testing.T) {
	s := newSession(t)
	bin := s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)

	s.PointerDown(scr(330, canvas.HeaderHeight/2), editor.ButtonPrimary)
	s.KeyDown(editor.Key{Code: "escape"})
	if s.Mode() != editor.ModeIdle {
		t.Fatal("escape should abort the drag")
	}
	src, _ := s.Store().Node(bin.ID)
	if len(src.Outbound) != 0 {
		t.Fatal("aborted drag must not connect")
	}
}

func TestOnlyOneModeAtATime(t *testing.T) {
	s := newSession(t)
	s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)

	s.PointerDown(scr(10, 10), editor.ButtonPrimary)
	if s.Mode() != editor.ModeNodeDrag {
		t.Fatalf("mode = %v", s.Mode())
	}
	// A second down while dragging is ignored.
	s.PointerDown(scr(330, canvas.HeaderHeight/2), editor.ButtonPrimary)
	if s.Mode() != editor.ModeNodeDrag {
		t.Fatal("second pointer down must not switch modes")
	}
}

func TestRemoveNodeReleasesItems(t *testing.T) {
	s := newSession(t)
	bin := s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)
	if err := s.Store().AddItems(bin.ID, graph.MediaItem{SourceURL: "a.png", MediaType: graph.MediaImage}); err != nil {
		t.Fatalf("AddItems: %v", err)
	}
	var released []graph.MediaItem
	s.OnItemsReleased(func(items []graph.MediaItem) {
		released = append(released, items...)
	})

	if err := s.RemoveNode(bin.ID); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if len(released) != 1 || released[0].SourceURL != "a.png" {
		t.Fatalf("released = %+v", released)
	}
}

func TestDeleteItemClearsItemSelection(t *testing.T) {
	s := newSession(t)
	bin := s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)
	if err := s.Store().AddItems(bin.ID, graph.MediaItem{SourceURL: "a.png", MediaType: graph.MediaImage}); err != nil {
		t.Fatalf("AddItems: %v", err)
	}
	node, _ := s.Store().Node(bin.ID)
	itemID := node.Items[0].ID
	s.SelectItem(bin.ID, itemID)

	if err := s.DeleteItem(bin.ID, itemID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if s.Selection().ItemID != "" {
		t.Fatal("item selection should clear with the item")
	}
}

func TestErrorBannerMostRecentWins(t *testing.T) {
	s := newSession(t)
	s.SetError("first")
	s.SetError("second")
	if s.Error() != "second" {
		t.Fatalf("error = %q", s.Error())
	}
	s.DismissError()
	if s.Error() != "" {
		t.Fatal("dismiss should clear the banner")
	}
}

func TestTimelineUnderOtherNodeOccludes(t *testing.T) {
	// Later nodes render on top; hit-testing walks top-down.
	s := newSession(t)
	bottom := s.Store().AddNode(graph.KindAssetBin, 0, 0, nil)
	top := s.Store().AddNode(graph.KindVideoBin, 10, 10, nil)

	s.PointerDown(scr(20, 20), editor.ButtonPrimary)
	if sel := s.Selection(); sel.NodeID != top.ID {
		t.Fatalf("selected %q, want topmost %q (bottom %q)", sel.NodeID, top.ID, bottom.ID)
	}
}
