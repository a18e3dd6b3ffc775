package timeline

import (
	"errors"
	"fmt"
)

// ErrClipNotFound reports a clip id absent from the sequence.
var ErrClipNotFound = errors.New("timeline: clip not found")

// StartOffset returns the derived start time of the clip at index, the
// prefix sum of all preceding durations.
func StartOffset(clips []Clip, index int) float64 {
	offset := 0.0
	for i := 0; i < index && i < len(clips); i++ {
		offset += clips[i].Duration
	}
	return offset
}

// ClipsDuration returns the summed duration of the sequence.
func ClipsDuration(clips []Clip) float64 {
	total := 0.0
	for _, clip := range clips {
		total += clip.Duration
	}
	return total
}

// TotalDuration returns the editable canvas length: the clip sum or the
// audio track, whichever is longer, floored at DurationFloorSeconds.
func TotalDuration(clips []Clip, audioDuration float64) float64 {
	total := ClipsDuration(clips)
	if audioDuration > total {
		total = audioDuration
	}
	if total < DurationFloorSeconds {
		total = DurationFloorSeconds
	}
	return total
}

// ResolveActive returns the index of the clip whose [start, start+duration)
// interval contains t, or -1 when t falls in a gap or past the last clip.
func ResolveActive(clips []Clip, t float64) int {
	if t < 0 {
		return -1
	}
	start := 0.0
	for i, clip := range clips {
		end := start + clip.Duration
		if t >= start && t < end {
			return i
		}
		start = end
	}
	return -1
}

// ResizeClip sets the duration of the clip with the given id, floored at
// MinClipSeconds. Later clips shift implicitly because start offsets are
// derived.
func ResizeClip(clips []Clip, id string, duration float64) ([]Clip, error) {
	if duration < MinClipSeconds {
		duration = MinClipSeconds
	}
	out := CloneClips(clips)
	for i := range out {
		if out[i].ID == id {
			out[i].Duration = duration
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrClipNotFound, id)
}

// ReorderClip splices the clip with the given id out of the sequence and
// reinserts it at the target index. Durations are untouched.
func ReorderClip(clips []Clip, id string, target int) ([]Clip, error) {
	source := -1
	for i := range clips {
		if clips[i].ID == id {
			source = i
			break
		}
	}
	if source < 0 {
		return nil, fmt.Errorf("%w: %s", ErrClipNotFound, id)
	}
	if target < 0 {
		target = 0
	}
	if target >= len(clips) {
		target = len(clips) - 1
	}
	if target == source {
		return CloneClips(clips), nil
	}

	out := make([]Clip, 0, len(clips))
	out = append(out, clips[:source]...)
	out = append(out, clips[source+1:]...)
	moved := clips[source]
	out = append(out[:target], append([]Clip{moved}, out[target:]...)...)
	return out, nil
}
