package timeline

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strings"
)

// WaveformBin is one rendered column of the waveform: the min/max sample
// amplitude within a fixed pixel-width stride.
type WaveformBin struct {
	Min float64
	Max float64
}

// Waveform is a decoded audio track reduced to per-column extremes plus the
// metadata needed to map columns back to playback time.
type Waveform struct {
	Bins     []WaveformBin
	Duration float64
}

// BuildWaveform walks the sample buffer in fixed strides, keeping the
// min/max per stride. width is the number of columns to produce.
func BuildWaveform(samples []float64, duration float64, width int) Waveform {
	wf := Waveform{Duration: duration}
	if width <= 0 || len(samples) == 0 {
		return wf
	}
	wf.Bins = make([]WaveformBin, width)
	stride := len(samples) / width
	if stride < 1 {
		stride = 1
	}
	for col := 0; col < width; col++ {
		start := col * stride
		if start >= len(samples) {
			break
		}
		end := start + stride
		if end > len(samples) {
			end = len(samples)
		}
		bin := WaveformBin{Min: math.Inf(1), Max: math.Inf(-1)}
		for _, s := range samples[start:end] {
			if s < bin.Min {
				bin.Min = s
			}
			if s > bin.Max {
				bin.Max = s
			}
		}
		wf.Bins[col] = bin
	}
	return wf
}

// PlayedColumns returns how many leading columns fall before currentTime,
// the split between played and unplayed rendering.
func (w Waveform) PlayedColumns(currentTime float64) int {
	if w.Duration <= 0 || len(w.Bins) == 0 {
		return 0
	}
	played := int(currentTime / w.Duration * float64(len(w.Bins)))
	if played < 0 {
		played = 0
	}
	if played > len(w.Bins) {
		played = len(w.Bins)
	}
	return played
}

// ExtractSamples decodes an audio file to mono float samples using ffmpeg,
// downsampled for waveform use. A decode failure degrades to a blank
// waveform at the caller; it never blocks playback.
func ExtractSamples(ctx context.Context, ffmpegBinary, path string) ([]float64, error) {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-ac", "1",
		"-ar", "8000",
		"-f", "s16le",
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return DecodePCM16(stdout.Bytes()), nil
}

// DecodePCM16 converts little-endian signed 16-bit PCM to [-1,1] floats.
func DecodePCM16(raw []byte) []float64 {
	samples := make([]float64, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		v := int16(binary.LittleEndian.Uint16(raw[i : i+2]))
		samples = append(samples, float64(v)/32768)
	}
	return samples
}
