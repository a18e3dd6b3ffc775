package timeline

import (
	"strings"
)

// ClipStatus represents the lifecycle of a timeline clip.
type ClipStatus string

const (
	ClipPending    ClipStatus = "pending"
	ClipGenerating ClipStatus = "generating"
	ClipDone       ClipStatus = "done"
	ClipError      ClipStatus = "error"
)

var allClipStatuses = []ClipStatus{ClipPending, ClipGenerating, ClipDone, ClipError}

var clipStatusSet = func() map[ClipStatus]struct{} {
	set := make(map[ClipStatus]struct{}, len(allClipStatuses))
	for _, status := range allClipStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseClipStatus converts a string into a known ClipStatus.
func ParseClipStatus(value string) (ClipStatus, bool) {
	normalized := ClipStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := clipStatusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status will not change without a new batch.
func (s ClipStatus) IsTerminal() bool {
	return s == ClipDone || s == ClipError
}

// MinClipSeconds is the smallest duration a clip may be resized to.
const MinClipSeconds = 0.5

// DurationFloorSeconds guarantees a minimum editable canvas even for a
// near-empty timeline.
const DurationFloorSeconds = 60.0

// Clip is one entry in a timeline's composited sequence. Start offsets are
// derived from ordering, never stored.
type Clip struct {
	ID       string
	SceneRef string
	VideoURL string
	Poster   string
	Duration float64
	Label    string
	Status   ClipStatus
}

// Clone returns a value copy of the clip.
func (c Clip) Clone() Clip {
	return c
}

// CloneClips deep-copies a clip sequence.
func CloneClips(clips []Clip) []Clip {
	if clips == nil {
		return nil
	}
	out := make([]Clip, len(clips))
	copy(out, clips)
	return out
}
