package graph

import (
	"fmt"

	"reel/internal/logging"
)

// clipboardEntry holds at most one copied node. The stored position never
// changes; each paste lands a further +40,+40 from it so repeated pastes
// fan out instead of stacking.
type clipboardEntry struct {
	node   *Node
	pastes int
}

const pasteOffset = 40.0

// CopyNode captures a node by value into the clipboard slot, overwriting
// any previous contents.
func (s *Store) CopyNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, _ := s.findLocked(id)
	if node == nil {
		return fmt.Errorf("%w: node %s", ErrNotFound, id)
	}
	s.clip = &clipboardEntry{node: node.Clone()}
	s.logger.Debug("node copied", logging.Args(logging.String(logging.FieldNodeID, id))...)
	return nil
}

// ClipboardFilled reports whether a paste would succeed.
func (s *Store) ClipboardFilled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clip != nil
}

// Paste creates a new node from the clipboard: fresh node and item ids,
// title suffixed "(Copy)", offset from the clipboard content's stored
// position, and cleared connections. History-guarded.
func (s *Store) Paste() (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clip == nil {
		return nil, ErrClipboardEmpty
	}
	s.recordLocked("paste")

	s.clip.pastes++
	offset := pasteOffset * float64(s.clip.pastes)

	pasted := s.clip.node.Clone()
	pasted.ID = newID()
	pasted.Title = pasted.Title + " (Copy)"
	pasted.X += offset
	pasted.Y += offset
	pasted.Outbound = nil
	pasted.Inbound = nil
	pasted.CreatedAt = s.nextSeqLocked()
	for i := range pasted.Items {
		pasted.Items[i].ID = newID()
	}
	s.nodes = append(s.nodes, pasted)
	s.logger.Info("node pasted", logging.Args(
		logging.String(logging.FieldNodeID, pasted.ID),
		logging.Int("paste_count", s.clip.pastes))...)
	return pasted.Clone(), nil
}
