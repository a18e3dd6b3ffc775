package graph_test

import (
	"errors"
	"strings"
	"testing"

	"reel/internal/graph"
)

func TestPasteEmptyClipboard(t *testing.T) {
	store := newStore(t)
	if _, err := store.Paste(); !errors.Is(err, graph.ErrClipboardEmpty) {
		t.Fatalf("expected ErrClipboardEmpty, got %v", err)
	}
}

func TestPasteCreatesOffsetCopies(t *testing.T) {
	store := newStore(t)
	bin := store.AddNode(graph.KindAssetBin, 100, 200, nil)
	if err := store.AddItems(bin.ID, graph.MediaItem{SourceURL: "a.png", MediaType: graph.MediaImage}); err != nil {
		t.Fatalf("AddItems: %v", err)
	}
	agent := store.AddNode(graph.KindAgent, 500, 0, nil)
	if err := store.Connect(bin.ID, agent.ID); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := store.CopyNode(bin.ID); err != nil {
		t.Fatalf("CopyNode: %v", err)
	}

	first, err := store.Paste()
	if err != nil {
		t.Fatalf("Paste: %v", err)
	}
	second, err := store.Paste()
	if err != nil {
		t.Fatalf("second Paste: %v", err)
	}

	if first.X != 140 || first.Y != 240 {
		t.Fatalf("first paste at (%v,%v), want (+40,+40)", first.X, first.Y)
	}
	if second.X != 180 || second.Y != 280 {
		t.Fatalf("second paste at (%v,%v), want (+80,+80)", second.X, second.Y)
	}
	for _, pasted := range []*graph.Node{first, second} {
		if pasted.ID == bin.ID {
			t.Fatal("paste reused source id")
		}
		if !strings.HasSuffix(pasted.Title, "(Copy)") {
			t.Fatalf("paste title = %q", pasted.Title)
		}
		if len(pasted.Outbound) != 0 || len(pasted.Inbound) != 0 {
			t.Fatal("paste should start disconnected")
		}
		if len(pasted.Items) != 1 || pasted.Items[0].ID == "" {
			t.Fatalf("paste items = %+v", pasted.Items)
		}
	}
	if first.Items[0].ID == second.Items[0].ID {
		t.Fatal("pastes share item ids")
	}
	// The source node's stored position in the clipboard is untouched.
	source, _ := store.Node(bin.ID)
	if source.X != 100 || source.Y != 200 {
		t.Fatalf("source moved to (%v,%v)", source.X, source.Y)
	}
}

func TestCopyOverwritesClipboard(t *testing.T) {
	store := newStore(t)
	a := store.AddNode(graph.KindAssetBin, 0, 0, nil)
	b := store.AddNode(graph.KindMusicBin, 50, 50, nil)

	if err := store.CopyNode(a.ID); err != nil {
		t.Fatalf("CopyNode: %v", err)
	}
	if err := store.CopyNode(b.ID); err != nil {
		t.Fatalf("CopyNode: %v", err)
	}
	pasted, err := store.Paste()
	if err != nil {
		t.Fatalf("Paste: %v", err)
	}
	if pasted.Kind != graph.KindMusicBin {
		t.Fatalf("pasted kind = %v, want most recent copy", pasted.Kind)
	}
}

func TestPasteIsUndoable(t *testing.T) {
	store := newStore(t)
	bin := store.AddNode(graph.KindAssetBin, 0, 0, nil)
	if err := store.CopyNode(bin.ID); err != nil {
		t.Fatalf("CopyNode: %v", err)
	}
	if _, err := store.Paste(); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("len = %d", store.Len())
	}
	store.Undo()
	if store.Len() != 1 {
		t.Fatalf("len after undo = %d, want 1", store.Len())
	}
}
