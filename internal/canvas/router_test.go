package canvas_test

import (
	"math"
	"testing"

	"reel/internal/canvas"
)

func TestAnchorsSitOnHeaderCenterline(t *testing.T) {
	node := canvas.NodeBounds{X: 100, Y: 50, Width: 320, Height: 200}
	out := canvas.OutputAnchor(node)
	in := canvas.InputAnchor(node)

	wantY := 50 + canvas.HeaderHeight/2
	if out.Y != wantY || in.Y != wantY {
		t.Fatalf("anchor ys = %v/%v, want %v", out.Y, in.Y, wantY)
	}
	if out.X != 100+320+canvas.PortOffset {
		t.Fatalf("output x = %v", out.X)
	}
	if in.X != 100-canvas.PortOffset {
		t.Fatalf("input x = %v", in.X)
	}
}

func TestPathStaysLevelAtAnchors(t *testing.T) {
	source := canvas.NodeBounds{X: 0, Y: 0, Width: 300}
	target := canvas.NodeBounds{X: 600, Y: 500, Width: 300}
	path := canvas.Route(source, target)

	if path.Control1.Y != path.Start.Y {
		t.Fatalf("control1 y = %v, want level with start %v", path.Control1.Y, path.Start.Y)
	}
	if path.Control2.Y != path.End.Y {
		t.Fatalf("control2 y = %v, want level with end %v", path.Control2.Y, path.End.Y)
	}
	bulge := math.Abs(path.End.X-path.Start.X) / 2
	if path.Control1.X != path.Start.X+bulge || path.Control2.X != path.End.X-bulge {
		t.Fatalf("control xs = %v/%v, want half-distance offsets", path.Control1.X, path.Control2.X)
	}
}

func TestPathEndpoints(t *testing.T) {
	path := canvas.PathBetween(canvas.Point{X: 10, Y: 20}, canvas.Point{X: 400, Y: 220})
	start := path.At(0)
	end := path.At(1)
	if start != path.Start || end != path.End {
		t.Fatalf("curve endpoints %+v %+v", start, end)
	}
}

func TestHitTestTolerance(t *testing.T) {
	path := canvas.PathBetween(canvas.Point{X: 0, Y: 0}, canvas.Point{X: 400, Y: 0})

	if !path.Hit(canvas.Point{X: 200, Y: 0}) {
		t.Fatal("point on the curve should hit")
	}
	if !path.Hit(canvas.Point{X: 200, Y: canvas.HitStrokeWidth/2 - 1}) {
		t.Fatal("point inside hit stroke should hit")
	}
	if path.Hit(canvas.Point{X: 200, Y: 60}) {
		t.Fatal("far point should miss")
	}
}

func TestHitTestCurvedWire(t *testing.T) {
	// Anchors at different heights: the S-curve midpoint sits halfway
	// vertically between them.
	path := canvas.PathBetween(canvas.Point{X: 0, Y: 0}, canvas.Point{X: 400, Y: 200})
	mid := path.At(0.5)
	if !path.Hit(mid) {
		t.Fatal("curve midpoint should hit")
	}
	if path.Hit(canvas.Point{X: 200, Y: -40}) {
		t.Fatal("point off the bulge should miss")
	}
}

func TestFlowDashOffsetAnimates(t *testing.T) {
	a := canvas.FlowDashOffset(0)
	b := canvas.FlowDashOffset(0.1)
	if a == b {
		t.Fatal("dash offset should move over time")
	}
	for _, elapsed := range []float64{0, 0.5, 10, 123.4} {
		offset := canvas.FlowDashOffset(elapsed)
		if offset > 0 || offset <= -canvas.FlowDashPeriod {
			t.Fatalf("offset %v out of (-period, 0] at %vs", offset, elapsed)
		}
	}
}
