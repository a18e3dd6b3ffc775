package timeline

import (
	"time"
)

// ClockSource identifies which authority drives the playback clock on a
// given tick. Audio is master whenever an audio track is present and
// actively playing; otherwise the clock free-runs on wall time so
// video-only timelines still play.
type ClockSource string

const (
	SourceAudio       ClockSource = "audio"
	SourceFreeRunning ClockSource = "free_running"
)

// Drift tolerances before a hard video seek is issued. Loose while playing
// to avoid stutter from per-frame seeking, tight while paused so scrubbing
// lands exactly.
const (
	DriftTolerancePlaying = 0.3
	DriftTolerancePaused  = 0.05
)

// AudioState is the observed state of the session's audio track on one tick.
type AudioState struct {
	Present     bool
	Playing     bool
	CurrentTime float64
	Duration    float64
}

// ChooseSource picks the clock authority for a tick. Pure so the fallback
// chain is testable without media elements.
func ChooseSource(audio AudioState) ClockSource {
	if audio.Present && audio.Playing {
		return SourceAudio
	}
	return SourceFreeRunning
}

// NeedsHardSeek reports whether the video surface has drifted far enough
// from the computed local time to warrant a seek.
func NeedsHardSeek(videoTime, localTime float64, playing bool) bool {
	tolerance := DriftTolerancePaused
	if playing {
		tolerance = DriftTolerancePlaying
	}
	diff := videoTime - localTime
	if diff < 0 {
		diff = -diff
	}
	return diff > tolerance
}

// Clock is the single logical playback time for a timeline. While playing
// it is advanced once per frame by Tick.
type Clock struct {
	current  float64
	playing  bool
	lastTick time.Time
}

// Current returns the logical playback position in seconds.
func (c *Clock) Current() float64 { return c.current }

// Playing reports whether the clock is running.
func (c *Clock) Playing() bool { return c.playing }

// Play starts the clock. now seeds the wall-clock delta for free-running
// ticks.
func (c *Clock) Play(now time.Time) {
	c.playing = true
	c.lastTick = now
}

// Pause halts the clock in place.
func (c *Clock) Pause() {
	c.playing = false
}

// Toggle flips between playing and paused.
func (c *Clock) Toggle(now time.Time) {
	if c.playing {
		c.Pause()
		return
	}
	c.Play(now)
}

// Seek moves the clock to t, clamped to [0, total].
func (c *Clock) Seek(t, total float64) {
	if t < 0 {
		t = 0
	}
	if t > total {
		t = total
	}
	c.current = t
}

// Tick advances the clock by one frame. The audio track is ground truth
// when it is present and unpaused; otherwise the measured wall-clock delta
// advances the time. Reaching total stops playback and resets to zero.
// Returns the source used and whether playback stopped on this tick.
func (c *Clock) Tick(now time.Time, audio AudioState, total float64) (ClockSource, bool) {
	if !c.playing {
		return ChooseSource(audio), false
	}
	source := ChooseSource(audio)
	switch source {
	case SourceAudio:
		c.current = audio.CurrentTime
	case SourceFreeRunning:
		if !c.lastTick.IsZero() {
			c.current += now.Sub(c.lastTick).Seconds()
		}
	}
	c.lastTick = now

	if total > 0 && c.current >= total {
		c.playing = false
		c.current = 0
		return source, true
	}
	return source, false
}
