package editor

import (
	"reel/internal/canvas"
	"reel/internal/graph"
)

const (
	portHitRadius    = 12.0
	resizeHandleSize = 18.0
)

type hitKind int

const (
	hitBackground hitKind = iota
	hitOutputPort
	hitInputPort
	hitResizeHandle
	hitHeader
	hitBody
	hitCurve
)

type hitTarget struct {
	kind   hitKind
	nodeID string
	edge   *Edge
}

func nodeBounds(node *graph.Node) canvas.NodeBounds {
	height := node.Height
	if height <= 0 {
		height = graph.MinNodeHeight
	}
	return canvas.NodeBounds{
		X:      node.X,
		Y:      node.Y,
		Width:  node.EffectiveWidth(),
		Height: height,
	}
}

func within(p canvas.Point, x, y, w, h float64) bool {
	return p.X >= x && p.X <= x+w && p.Y >= y && p.Y <= y+h
}

func nearPoint(p, anchor canvas.Point, radius float64) bool {
	dx := p.X - anchor.X
	dy := p.Y - anchor.Y
	return dx*dx+dy*dy <= radius*radius
}

// hitTest resolves a logical pointer position against the scene, top node
// first. Ports win over the node body they decorate; curves are tested
// last so nodes occlude wires.
func (s *Session) hitTestLocked(logical canvas.Point) hitTarget {
	nodes := s.store.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		node := nodes[i]
		bounds := nodeBounds(node)
		if node.Kind.HasOutput() && nearPoint(logical, canvas.OutputAnchor(bounds), portHitRadius) {
			return hitTarget{kind: hitOutputPort, nodeID: node.ID}
		}
		if node.Kind.AcceptsInput() && nearPoint(logical, canvas.InputAnchor(bounds), portHitRadius) {
			return hitTarget{kind: hitInputPort, nodeID: node.ID}
		}
		if !within(logical, bounds.X, bounds.Y, bounds.Width, bounds.Height) {
			continue
		}
		if node.Kind.Resizable() &&
			within(logical,
				bounds.X+bounds.Width-resizeHandleSize,
				bounds.Y+bounds.Height-resizeHandleSize,
				resizeHandleSize, resizeHandleSize) {
			return hitTarget{kind: hitResizeHandle, nodeID: node.ID}
		}
		if within(logical, bounds.X, bounds.Y, bounds.Width, canvas.HeaderHeight) {
			return hitTarget{kind: hitHeader, nodeID: node.ID}
		}
		return hitTarget{kind: hitBody, nodeID: node.ID}
	}

	byID := make(map[string]*graph.Node, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}
	for _, node := range nodes {
		for _, targetID := range node.Outbound {
			target, ok := byID[targetID]
			if !ok {
				continue
			}
			path := canvas.Route(nodeBounds(node), nodeBounds(target))
			if path.Hit(logical) {
				return hitTarget{kind: hitCurve, edge: &Edge{SourceID: node.ID, TargetID: targetID}}
			}
		}
	}
	return hitTarget{kind: hitBackground}
}
