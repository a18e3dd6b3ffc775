package canvas

import (
	"math"
)

// Port anchor geometry in logical units.
const (
	// PortOffset is the horizontal gap between a node edge and its port.
	PortOffset = 10.0
	// HeaderHeight is the node header band; ports sit at its vertical center.
	HeaderHeight = 44.0
)

// Stroke widths and dash patterns for the three overlaid renderings of one
// edge: an invisible wide hit target, a dashed rail, and a shorter-dashed
// flow stroke whose dash offset animates to suggest direction.
const (
	HitStrokeWidth  = 14.0
	RailStrokeWidth = 2.0
	FlowStrokeWidth = 2.0
	FlowDashPeriod  = 12.0
	FlowSpeed       = 24.0 // dash-offset units per second
)

// CubicPath is one wire between two port anchors: a cubic curve whose
// control points are horizontally offset from each anchor by half the
// horizontal distance between them, held at the anchor's own y. The result
// is a horizontal S-curve that stays level at both ends regardless of the
// vertical offset between nodes.
type CubicPath struct {
	Start    Point
	Control1 Point
	Control2 Point
	End      Point
}

// NodeBounds is the minimal geometry the router needs from a node.
type NodeBounds struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// OutputAnchor is the source port on a node's right edge.
func OutputAnchor(n NodeBounds) Point {
	return Point{X: n.X + n.Width + PortOffset, Y: n.Y + HeaderHeight/2}
}

// InputAnchor is the target port on a node's left edge.
func InputAnchor(n NodeBounds) Point {
	return Point{X: n.X - PortOffset, Y: n.Y + HeaderHeight/2}
}

// Route shapes the wire between a source and target node.
func Route(source, target NodeBounds) CubicPath {
	return PathBetween(OutputAnchor(source), InputAnchor(target))
}

// PathBetween shapes a wire between two anchor points. Also used for the
// dangling rubber-band preview while a connection drag is in flight, with
// the live pointer position as the end anchor.
func PathBetween(start, end Point) CubicPath {
	bulge := math.Abs(end.X-start.X) / 2
	return CubicPath{
		Start:    start,
		Control1: Point{X: start.X + bulge, Y: start.Y},
		Control2: Point{X: end.X - bulge, Y: end.Y},
		End:      end,
	}
}

// At evaluates the curve at parameter t in [0,1].
func (p CubicPath) At(t float64) Point {
	u := 1 - t
	b0 := u * u * u
	b1 := 3 * u * u * t
	b2 := 3 * u * t * t
	b3 := t * t * t
	return Point{
		X: b0*p.Start.X + b1*p.Control1.X + b2*p.Control2.X + b3*p.End.X,
		Y: b0*p.Start.Y + b1*p.Control1.Y + b2*p.Control2.Y + b3*p.End.Y,
	}
}

// curve flattening resolution for distance queries
const hitSamples = 32

// DistanceTo returns the approximate distance from a point to the curve,
// measured against a polyline flattening.
func (p CubicPath) DistanceTo(point Point) float64 {
	best := math.Inf(1)
	prev := p.At(0)
	for i := 1; i <= hitSamples; i++ {
		next := p.At(float64(i) / hitSamples)
		if d := segmentDistance(point, prev, next); d < best {
			best = d
		}
		prev = next
	}
	return best
}

// Hit reports whether a click lands within the invisible hit-target stroke.
func (p CubicPath) Hit(point Point) bool {
	return p.DistanceTo(point) <= HitStrokeWidth/2
}

func segmentDistance(point, a, b Point) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lengthSq := abx*abx + aby*aby
	t := 0.0
	if lengthSq > 0 {
		t = ((point.X-a.X)*abx + (point.Y-a.Y)*aby) / lengthSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	cx := a.X + t*abx
	cy := a.Y + t*aby
	return math.Hypot(point.X-cx, point.Y-cy)
}

// FlowDashOffset returns the animated dash offset for the flow stroke at
// the given elapsed seconds. Negative so dashes march from source to
// target.
func FlowDashOffset(elapsed float64) float64 {
	return -math.Mod(elapsed*FlowSpeed, FlowDashPeriod)
}
