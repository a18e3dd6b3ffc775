package timeline_test

import (
	"testing"
	"time"

	"reel/internal/timeline"
)

func TestChooseSourcePrefersPlayingAudio(t *testing.T) {
	cases := []struct {
		name  string
		audio timeline.AudioState
		want  timeline.ClockSource
	}{
		{"playing audio", timeline.AudioState{Present: true, Playing: true}, timeline.SourceAudio},
		{"paused audio", timeline.AudioState{Present: true, Playing: false}, timeline.SourceFreeRunning},
		{"no audio", timeline.AudioState{}, timeline.SourceFreeRunning},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := timeline.ChooseSource(tc.audio); got != tc.want {
				t.Fatalf("ChooseSource = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClockFollowsAudioWhenPlaying(t *testing.T) {
	var clock timeline.Clock
	now := time.Now()
	clock.Play(now)

	audio := timeline.AudioState{Present: true, Playing: true, CurrentTime: 12.5, Duration: 100}
	source, stopped := clock.Tick(now.Add(16*time.Millisecond), audio, 100)
	if source != timeline.SourceAudio || stopped {
		t.Fatalf("tick = (%v, %v), want audio source, not stopped", source, stopped)
	}
	if clock.Current() != 12.5 {
		t.Fatalf("current = %v, want audio ground truth 12.5", clock.Current())
	}
}

func TestClockFreeRunsWithoutAudio(t *testing.T) {
	var clock timeline.Clock
	now := time.Now()
	clock.Play(now)

	_, _ = clock.Tick(now.Add(500*time.Millisecond), timeline.AudioState{}, 60)
	got := clock.Current()
	if got < 0.45 || got > 0.55 {
		t.Fatalf("current = %v, want ~0.5 from wall-clock delta", got)
	}
}

func TestClockStopsAndResetsAtTotal(t *testing.T) {
	var clock timeline.Clock
	now := time.Now()
	clock.Play(now)

	_, stopped := clock.Tick(now.Add(61*time.Second), timeline.AudioState{}, 60)
	if !stopped {
		t.Fatal("expected playback to stop at total duration")
	}
	if clock.Playing() {
		t.Fatal("clock should not be playing after stop")
	}
	if clock.Current() != 0 {
		t.Fatalf("current = %v, want reset to 0", clock.Current())
	}
}

func TestClockPausedTickDoesNotAdvance(t *testing.T) {
	var clock timeline.Clock
	clock.Seek(10, 60)
	_, _ = clock.Tick(time.Now(), timeline.AudioState{}, 60)
	if clock.Current() != 10 {
		t.Fatalf("paused tick moved clock to %v", clock.Current())
	}
}

func TestSeekClamps(t *testing.T) {
	var clock timeline.Clock
	clock.Seek(-5, 60)
	if clock.Current() != 0 {
		t.Fatalf("seek below zero gave %v", clock.Current())
	}
	clock.Seek(120, 60)
	if clock.Current() != 60 {
		t.Fatalf("seek past total gave %v", clock.Current())
	}
}

func TestNeedsHardSeekTolerances(t *testing.T) {
	cases := []struct {
		name    string
		video   float64
		local   float64
		playing bool
		want    bool
	}{
		{"within playing band", 5.2, 5.0, true, false},
		{"outside playing band", 5.4, 5.0, true, true},
		{"within paused band", 5.04, 5.0, false, false},
		{"outside paused band", 5.1, 5.0, false, true},
		{"negative drift", 4.5, 5.0, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := timeline.NeedsHardSeek(tc.video, tc.local, tc.playing); got != tc.want {
				t.Fatalf("NeedsHardSeek = %v, want %v", got, tc.want)
			}
		})
	}
}
