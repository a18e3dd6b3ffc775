package graph

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"reel/internal/logging"
)

// Store is the single source of truth for the session's node collection.
// Mutation is synchronous under one lock so no two operations can
// interleave partial writes. Reads hand out deep copies; callers never
// hold live pointers into the collection.
type Store struct {
	mu     sync.Mutex
	logger *slog.Logger

	nodes []*Node
	hist  history
	clip  *clipboardEntry
	seq   int64
}

// NewStore constructs an empty graph store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		logger: logging.NewComponentLogger(logger, "graph"),
	}
}

func newID() string {
	return uuid.NewString()
}

func (s *Store) nextSeqLocked() int64 {
	s.seq++
	return s.seq
}

func (s *Store) findLocked(id string) (*Node, int) {
	for i, node := range s.nodes {
		if node.ID == id {
			return node, i
		}
	}
	return nil, -1
}

func (s *Store) snapshotLocked() []*Node {
	snapshot := make([]*Node, len(s.nodes))
	for i, node := range s.nodes {
		snapshot[i] = node.Clone()
	}
	return snapshot
}

// recordLocked pushes a pre-mutation snapshot. Only discrete, destructive
// actions are guarded; live drags and keystroke-level edits bypass history.
func (s *Store) recordLocked(operation string) {
	s.hist.push(s.snapshotLocked())
	s.logger.Debug("history snapshot", logging.Args(
		logging.String(logging.FieldOperation, operation),
		logging.Int("depth", s.hist.depth()))...)
}

// Nodes returns a deep copy of the live node collection in creation order.
func (s *Store) Nodes() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Node returns a deep copy of one node.
func (s *Store) Node(id string) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, _ := s.findLocked(id)
	if node == nil {
		return nil, fmt.Errorf("%w: node %s", ErrNotFound, id)
	}
	return node.Clone(), nil
}

// Len returns the number of live nodes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// AddNode creates a node of the given kind at a logical position. The new
// node has a generated id, empty items, and empty connection sets.
func (s *Store) AddNode(kind Kind, x, y float64, cfg *Config) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked("add_node")

	node := &Node{
		ID:        newID(),
		Kind:      kind,
		Title:     kind.DefaultTitle(),
		X:         x,
		Y:         y,
		Config:    cfg.Clone(),
		CreatedAt: s.nextSeqLocked(),
	}
	s.nodes = append(s.nodes, node)
	s.logger.Info("node added", logging.Args(
		logging.String(logging.FieldNodeID, node.ID),
		logging.String("kind", string(kind)))...)
	return node.Clone()
}

// RemoveNode deletes a node and prunes every reference to it from other
// nodes' connection sets in the same operation.
func (s *Store) RemoveNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, index := s.findLocked(id)
	if node == nil {
		return fmt.Errorf("%w: node %s", ErrNotFound, id)
	}
	s.recordLocked("remove_node")

	s.nodes = append(s.nodes[:index], s.nodes[index+1:]...)
	for _, other := range s.nodes {
		other.Outbound = removeID(other.Outbound, id)
		other.Inbound = removeID(other.Inbound, id)
	}
	s.logger.Info("node removed", logging.Args(logging.String(logging.FieldNodeID, id))...)
	return nil
}

// UpdateNode applies an in-place edit to one node. Used for high-frequency
// config and item edits, so it is deliberately not history-guarded.
func (s *Store) UpdateNode(id string, mutate func(*Node)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, _ := s.findLocked(id)
	if node == nil {
		return fmt.Errorf("%w: node %s", ErrNotFound, id)
	}
	mutate(node)
	return nil
}

// MoveNode live-updates a node's position during a drag. Not history-guarded.
func (s *Store) MoveNode(id string, x, y float64) error {
	return s.UpdateNode(id, func(node *Node) {
		node.X = x
		node.Y = y
	})
}

// ResizeNode sets an explicit size, floored at the minimum dimensions.
// Live resize bypasses history like drags do.
func (s *Store) ResizeNode(id string, width, height float64) error {
	if width < MinNodeWidth {
		width = MinNodeWidth
	}
	if height < MinNodeHeight {
		height = MinNodeHeight
	}
	return s.UpdateNode(id, func(node *Node) {
		node.Width = width
		node.Height = height
	})
}

// RenameNode sets the display title. History-guarded.
func (s *Store) RenameNode(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, _ := s.findLocked(id)
	if node == nil {
		return fmt.Errorf("%w: node %s", ErrNotFound, id)
	}
	s.recordLocked("rename_node")
	node.Title = title
	return nil
}

// DuplicateNode clones a node with a fresh id, fresh item ids, a +50,+50
// position offset, and cleared connections. Duplicates start disconnected.
func (s *Store) DuplicateNode(id string) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	source, _ := s.findLocked(id)
	if source == nil {
		return nil, fmt.Errorf("%w: node %s", ErrNotFound, id)
	}
	s.recordLocked("duplicate_node")

	clone := source.Clone()
	clone.ID = newID()
	clone.X += 50
	clone.Y += 50
	clone.Outbound = nil
	clone.Inbound = nil
	clone.CreatedAt = s.nextSeqLocked()
	for i := range clone.Items {
		clone.Items[i].ID = newID()
	}
	s.nodes = append(s.nodes, clone)
	s.logger.Info("node duplicated", logging.Args(
		logging.String(logging.FieldNodeID, id),
		logging.String("duplicate_id", clone.ID))...)
	return clone.Clone(), nil
}

// Connect adds a directed edge. Self-loops are rejected, port capabilities
// are checked before any mutation, and connecting an already-connected pair
// is a no-op that records no history. Both halves of the symmetric
// reference are appended in the same transaction.
//
// Convenience side effect: wiring a music bin with at least one item into a
// timeline seeds the timeline's audio reference from the bin's first item.
func (s *Store) Connect(sourceID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sourceID == targetID {
		return ErrSelfConnection
	}
	source, _ := s.findLocked(sourceID)
	if source == nil {
		return fmt.Errorf("%w: node %s", ErrNotFound, sourceID)
	}
	target, _ := s.findLocked(targetID)
	if target == nil {
		return fmt.Errorf("%w: node %s", ErrNotFound, targetID)
	}
	if !source.Kind.HasOutput() || !target.Kind.AcceptsInput() {
		return fmt.Errorf("%w: %s -> %s", ErrPortMismatch, source.Kind, target.Kind)
	}
	if source.ConnectedTo(targetID) {
		return nil
	}
	s.recordLocked("connect")

	source.Outbound = append(source.Outbound, targetID)
	target.Inbound = append(target.Inbound, sourceID)

	if target.Kind == KindTimeline && source.Kind == KindMusicBin && len(source.Items) > 0 {
		seedTimelineAudio(target, source.Items[0])
	}

	s.logger.Info("nodes connected", logging.Args(
		logging.String("source_id", sourceID),
		logging.String("target_id", targetID))...)
	return nil
}

func seedTimelineAudio(target *Node, item MediaItem) {
	if target.Config == nil {
		target.Config = &Config{}
	}
	if target.Config.Timeline == nil {
		target.Config.Timeline = &TimelineConfig{}
	}
	tl := target.Config.Timeline
	tl.AudioURL = item.SourceURL
	tl.AudioItemID = item.ID
	tl.AudioDuration = item.Duration
}

// Disconnect removes both halves of an edge symmetrically. Removing an
// absent edge is a no-op with no history entry and no side effects.
func (s *Store) Disconnect(sourceID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	source, _ := s.findLocked(sourceID)
	if source == nil {
		return fmt.Errorf("%w: node %s", ErrNotFound, sourceID)
	}
	target, _ := s.findLocked(targetID)
	if target == nil {
		return fmt.Errorf("%w: node %s", ErrNotFound, targetID)
	}
	if !source.ConnectedTo(targetID) {
		return nil
	}
	s.recordLocked("disconnect")

	source.Outbound = removeID(source.Outbound, targetID)
	target.Inbound = removeID(target.Inbound, sourceID)
	s.logger.Info("nodes disconnected", logging.Args(
		logging.String("source_id", sourceID),
		logging.String("target_id", targetID))...)
	return nil
}

// AddItems appends media items to a node, assigning ids and creation order
// where missing. Used by file-drop ingestion and generation results, both
// discrete actions, so it is history-guarded.
func (s *Store) AddItems(nodeID string, items ...MediaItem) error {
	if len(items) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	node, _ := s.findLocked(nodeID)
	if node == nil {
		return fmt.Errorf("%w: node %s", ErrNotFound, nodeID)
	}
	s.recordLocked("add_items")

	for _, item := range items {
		if item.ID == "" {
			item.ID = newID()
		}
		if item.CreatedAt == 0 {
			item.CreatedAt = s.nextSeqLocked()
		}
		node.Items = append(node.Items, item)
	}
	return nil
}

// DeleteItem removes one media item from one node's item list.
func (s *Store) DeleteItem(nodeID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, _ := s.findLocked(nodeID)
	if node == nil {
		return fmt.Errorf("%w: node %s", ErrNotFound, nodeID)
	}
	index := -1
	for i, item := range node.Items {
		if item.ID == itemID {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	s.recordLocked("delete_item")
	node.Items = append(node.Items[:index], node.Items[index+1:]...)
	return nil
}

// Undo pops the most recent history snapshot and replaces the entire node
// collection with it. Returns false when the stack is empty.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.hist.pop()
	if !ok {
		return false
	}
	s.nodes = snapshot
	s.logger.Info("undo applied", logging.Args(logging.Int("remaining", s.hist.depth()))...)
	return true
}

// HistoryDepth returns the number of undoable snapshots.
func (s *Store) HistoryDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.depth()
}
