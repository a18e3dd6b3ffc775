package graph

// HistoryLimit caps the undo stack. The oldest snapshot is evicted first
// when the cap is exceeded.
const HistoryLimit = 20

// history is a bounded stack of full node-collection snapshots. Undo is a
// full-state restore rather than inverse-operation replay: simple and
// correct for a small-object-count graph.
type history struct {
	entries [][]*Node
}

func (h *history) push(snapshot []*Node) {
	h.entries = append(h.entries, snapshot)
	if len(h.entries) > HistoryLimit {
		overflow := len(h.entries) - HistoryLimit
		h.entries = append([][]*Node(nil), h.entries[overflow:]...)
	}
}

func (h *history) pop() ([]*Node, bool) {
	if len(h.entries) == 0 {
		return nil, false
	}
	last := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return last, true
}

func (h *history) depth() int {
	return len(h.entries)
}
