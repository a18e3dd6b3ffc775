package timeline_test

import (
	"testing"
	"time"

	"reel/internal/timeline"
)

func doneClips(durations ...float64) []timeline.Clip {
	clips := clipsOf(durations...)
	for i := range clips {
		clips[i].VideoURL = "https://cdn.example/" + clips[i].ID + ".mp4"
	}
	return clips
}

func TestPlayerLoadsClipOnlyOnChange(t *testing.T) {
	var player timeline.Player
	clips := doneClips(4, 4)
	now := time.Now()
	player.Toggle(now)

	frame := player.Tick(now.Add(100*time.Millisecond), timeline.AudioState{}, timeline.VideoState{}, clips)
	if frame.LoadClip == nil || frame.LoadClip.ID != "a" {
		t.Fatalf("expected first tick to load clip a, got %+v", frame.LoadClip)
	}

	video := timeline.VideoState{LoadedClipID: "a", CurrentTime: frame.Current}
	frame = player.Tick(now.Add(200*time.Millisecond), timeline.AudioState{}, video, clips)
	if frame.LoadClip != nil {
		t.Fatalf("second tick inside same clip reloaded %+v", frame.LoadClip)
	}
}

func TestPlayerSwapsClipAtBoundary(t *testing.T) {
	var player timeline.Player
	clips := doneClips(1, 4)
	now := time.Now()
	player.Toggle(now)

	_ = player.Tick(now.Add(10*time.Millisecond), timeline.AudioState{}, timeline.VideoState{}, clips)
	frame := player.Tick(now.Add(1500*time.Millisecond), timeline.AudioState{}, timeline.VideoState{CurrentTime: 1.4}, clips)
	if frame.LoadClip == nil || frame.LoadClip.ID != "b" {
		t.Fatalf("expected swap to clip b, got %+v", frame.LoadClip)
	}
	if frame.SeekVideoTo == nil {
		t.Fatal("clip swap should force a video seek")
	}
}

func TestPlayerHidesVideoInGap(t *testing.T) {
	var player timeline.Player
	clips := doneClips(2)

	frame := player.Seek(30, clips, 0)
	if frame.VideoVisible {
		t.Fatal("video should be hidden past defined clips")
	}
	if frame.ActiveIndex != -1 {
		t.Fatalf("active index = %d in gap", frame.ActiveIndex)
	}
}

func TestPlayerSeekForcesResync(t *testing.T) {
	var player timeline.Player
	clips := doneClips(10)

	frame := player.Seek(4, clips, 0)
	if frame.SeekVideoTo == nil || *frame.SeekVideoTo != 4 {
		t.Fatalf("expected forced video seek to 4, got %+v", frame.SeekVideoTo)
	}
	if frame.Current != 4 {
		t.Fatalf("current = %v, want 4", frame.Current)
	}
}

func TestPlayerSeekPixelsMapsThroughScale(t *testing.T) {
	var player timeline.Player
	clips := doneClips(10)

	frame := player.SeekPixels(20, 4, clips, 0)
	if frame.Current != 5 {
		t.Fatalf("current = %v, want 20px / 4pps = 5s", frame.Current)
	}
}

func TestPlayerDriftCorrection(t *testing.T) {
	var player timeline.Player
	clips := doneClips(30)
	now := time.Now()
	player.Toggle(now)

	// First tick loads the clip.
	_ = player.Tick(now.Add(10*time.Millisecond), timeline.AudioState{}, timeline.VideoState{}, clips)

	// Small drift inside the playing tolerance: no seek.
	frame := player.Tick(now.Add(20*time.Millisecond), timeline.AudioState{}, timeline.VideoState{LoadedClipID: "a", CurrentTime: player.Current() + 0.1}, clips)
	if frame.SeekVideoTo != nil {
		t.Fatalf("unexpected hard seek for drift within tolerance: %v", *frame.SeekVideoTo)
	}

	// Large drift: hard seek back to local time.
	frame = player.Tick(now.Add(30*time.Millisecond), timeline.AudioState{}, timeline.VideoState{LoadedClipID: "a", CurrentTime: player.Current() + 2}, clips)
	if frame.SeekVideoTo == nil {
		t.Fatal("expected hard seek for drift beyond tolerance")
	}
}

func TestPlayerStopResetsAtTotalDuration(t *testing.T) {
	var player timeline.Player
	clips := doneClips(2)
	now := time.Now()
	player.Toggle(now)

	frame := player.Tick(now.Add(61*time.Second), timeline.AudioState{}, timeline.VideoState{}, clips)
	if !frame.Stopped {
		t.Fatal("expected stop at total duration")
	}
	if player.Playing() {
		t.Fatal("player should be paused after stop")
	}
	if player.Current() != 0 {
		t.Fatalf("current = %v, want reset to 0", player.Current())
	}
}
