package timeline

import (
	"time"
)

// VideoState is the observed state of the video surface on one tick.
type VideoState struct {
	LoadedClipID string
	CurrentTime  float64
}

// Frame is the set of commands the renderer applies after one player tick.
// LoadClip is non-nil only when the active clip changed since the last
// loaded one, so the surface is not reloaded every frame.
type Frame struct {
	Current      float64
	Source       ClockSource
	ActiveIndex  int
	LoadClip     *Clip
	VideoVisible bool
	SeekVideoTo  *float64
	Stopped      bool
}

// Player drives one timeline's playback: it owns the clock and tracks
// which clip the video surface last loaded.
type Player struct {
	clock        Clock
	lastLoadedID string
}

// Clock exposes the underlying playback clock.
func (p *Player) Clock() *Clock { return &p.clock }

// Playing reports whether playback is running.
func (p *Player) Playing() bool { return p.clock.Playing() }

// Current returns the logical playback position.
func (p *Player) Current() float64 { return p.clock.Current() }

// Toggle flips play/pause.
func (p *Player) Toggle(now time.Time) { p.clock.Toggle(now) }

// Seek moves playback to t and forces an immediate video resync on the
// next tick by forgetting the loaded clip when the active clip changes.
func (p *Player) Seek(t float64, clips []Clip, audioDuration float64) Frame {
	total := TotalDuration(clips, audioDuration)
	p.clock.Seek(t, total)
	return p.compose(clips, SourceFreeRunning, true, false)
}

// SeekPixels maps a ruler click at x pixels to time and seeks.
func (p *Player) SeekPixels(x, pixelsPerSecond float64, clips []Clip, audioDuration float64) Frame {
	if pixelsPerSecond <= 0 {
		return p.compose(clips, SourceFreeRunning, false, false)
	}
	return p.Seek(x/pixelsPerSecond, clips, audioDuration)
}

// Tick advances playback by one frame and returns the commands for the
// renderer.
func (p *Player) Tick(now time.Time, audio AudioState, video VideoState, clips []Clip) Frame {
	total := TotalDuration(clips, audio.Duration)
	source, stopped := p.clock.Tick(now, audio, total)
	frame := p.compose(clips, source, false, stopped)
	if stopped {
		return frame
	}
	if frame.ActiveIndex >= 0 && frame.LoadClip == nil {
		local := p.clock.Current() - StartOffset(clips, frame.ActiveIndex)
		if NeedsHardSeek(video.CurrentTime, local, p.clock.Playing()) {
			seek := local
			frame.SeekVideoTo = &seek
		}
	}
	return frame
}

func (p *Player) compose(clips []Clip, source ClockSource, forceSeek, stopped bool) Frame {
	frame := Frame{
		Current:     p.clock.Current(),
		Source:      source,
		ActiveIndex: ResolveActive(clips, p.clock.Current()),
		Stopped:     stopped,
	}
	if frame.ActiveIndex < 0 {
		// Gap in coverage: hide the surface, keep the clock running.
		p.lastLoadedID = ""
		return frame
	}
	active := clips[frame.ActiveIndex]
	frame.VideoVisible = true
	if active.ID != p.lastLoadedID {
		clip := active.Clone()
		frame.LoadClip = &clip
		p.lastLoadedID = active.ID
		forceSeek = true
	}
	if forceSeek {
		local := p.clock.Current() - StartOffset(clips, frame.ActiveIndex)
		frame.SeekVideoTo = &local
	}
	return frame
}
