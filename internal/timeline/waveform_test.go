package timeline_test

import (
	"testing"

	"reel/internal/timeline"
)

func TestBuildWaveformMinMaxPerStride(t *testing.T) {
	samples := []float64{-1, 1, -0.5, 0.5, 0, 0.25, -0.25, 0}
	wf := timeline.BuildWaveform(samples, 8, 4)
	if len(wf.Bins) != 4 {
		t.Fatalf("bins = %d, want 4", len(wf.Bins))
	}
	if wf.Bins[0].Min != -1 || wf.Bins[0].Max != 1 {
		t.Fatalf("bin 0 = %+v, want min -1 max 1", wf.Bins[0])
	}
	if wf.Bins[1].Min != -0.5 || wf.Bins[1].Max != 0.5 {
		t.Fatalf("bin 1 = %+v", wf.Bins[1])
	}
}

func TestBuildWaveformEmptyInput(t *testing.T) {
	wf := timeline.BuildWaveform(nil, 0, 100)
	if len(wf.Bins) != 0 {
		t.Fatalf("expected no bins, got %d", len(wf.Bins))
	}
	if wf.PlayedColumns(10) != 0 {
		t.Fatal("blank waveform should report zero played columns")
	}
}

func TestPlayedColumnsSplit(t *testing.T) {
	samples := make([]float64, 1000)
	wf := timeline.BuildWaveform(samples, 10, 100)
	if got := wf.PlayedColumns(0); got != 0 {
		t.Fatalf("at t=0 played = %d", got)
	}
	if got := wf.PlayedColumns(5); got != 50 {
		t.Fatalf("at t=5 played = %d, want 50", got)
	}
	if got := wf.PlayedColumns(25); got != 100 {
		t.Fatalf("past duration played = %d, want clamped 100", got)
	}
}

func TestDecodePCM16(t *testing.T) {
	// 0x7FFF is max positive, 0x8000 most negative.
	raw := []byte{0xFF, 0x7F, 0x00, 0x80, 0x00, 0x00}
	samples := timeline.DecodePCM16(raw)
	if len(samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(samples))
	}
	if samples[0] < 0.99 || samples[0] > 1 {
		t.Fatalf("max sample = %v", samples[0])
	}
	if samples[1] != -1 {
		t.Fatalf("min sample = %v, want -1", samples[1])
	}
	if samples[2] != 0 {
		t.Fatalf("zero sample = %v", samples[2])
	}
}
