package testsupport

import (
	"testing"

	"reel/internal/canvas"
	"reel/internal/editor"
)

// NewSession builds an editing session with a 1200x800 viewport at the
// default identity view, the geometry most interaction tests assume.
func NewSession(t testing.TB) *editor.Session {
	t.Helper()
	session := editor.NewSession(nil, 4)
	session.SetViewport(canvas.Viewport{Width: 1200, Height: 800})
	return session
}
