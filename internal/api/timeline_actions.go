package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"reel/internal/assets"
	"reel/internal/logging"
	"reel/internal/timeline"
)

const ffmpegBinary = "ffmpeg"

// Timeline returns one timeline node's playback snapshot.
func (s *Service) Timeline(nodeID string) (TimelineResponse, error) {
	state, err := s.session.Timeline(nodeID)
	if err != nil {
		return TimelineResponse{}, err
	}
	return FromTimelineState(nodeID, state), nil
}

// TimelineToggle flips play/pause.
func (s *Service) TimelineToggle(nodeID string) (TimelineResponse, error) {
	if err := s.session.TogglePlayback(nodeID, time.Now()); err != nil {
		return TimelineResponse{}, err
	}
	return s.Timeline(nodeID)
}

// TimelineTick advances playback one frame against the observed media
// state and returns the render commands.
func (s *Service) TimelineTick(nodeID string, req TimelineTickRequest) (FrameView, error) {
	audio := timeline.AudioState{
		Present:     req.AudioPresent,
		Playing:     req.AudioPlaying,
		CurrentTime: req.AudioCurrentTime,
		Duration:    req.AudioDuration,
	}
	video := timeline.VideoState{
		LoadedClipID: req.VideoClipID,
		CurrentTime:  req.VideoCurrentTime,
	}
	frame, err := s.session.TickTimeline(nodeID, time.Now(), audio, video)
	if err != nil {
		return FrameView{}, err
	}
	return fromFrame(frame), nil
}

// TimelineSeek moves the playback clock to t seconds.
func (s *Service) TimelineSeek(nodeID string, t float64) (FrameView, error) {
	frame, err := s.session.SeekTimeline(nodeID, t)
	if err != nil {
		return FrameView{}, err
	}
	return fromFrame(frame), nil
}

// TimelineSeekPixels maps a ruler click to time and seeks.
func (s *Service) TimelineSeekPixels(nodeID string, x float64) (FrameView, error) {
	frame, err := s.session.SeekTimelinePixels(nodeID, x)
	if err != nil {
		return FrameView{}, err
	}
	return fromFrame(frame), nil
}

// ResizeClip sets one clip's duration from a drag delta in pixels.
func (s *Service) ResizeClip(nodeID, clipID string, originalDuration, deltaPixels float64) error {
	return s.session.ResizeClip(nodeID, clipID, originalDuration, deltaPixels)
}

// ReorderClip splices a clip to a new index.
func (s *Service) ReorderClip(nodeID, clipID string, targetIndex int) error {
	return s.session.ReorderClip(nodeID, clipID, targetIndex)
}

func fromFrame(frame timeline.Frame) FrameView {
	view := FrameView{
		Current:      frame.Current,
		Source:       string(frame.Source),
		ActiveIndex:  frame.ActiveIndex,
		VideoVisible: frame.VideoVisible,
		SeekVideoTo:  frame.SeekVideoTo,
		Stopped:      frame.Stopped,
	}
	if frame.LoadClip != nil {
		clip := FromClip(*frame.LoadClip)
		view.LoadClip = &clip
	}
	return view
}

// Waveform decodes the timeline's audio track and reduces it to width
// columns of min/max extremes. A missing or undecodable track returns an
// empty waveform rather than an error so playback is never blocked.
func (s *Service) Waveform(ctx context.Context, nodeID string, width int) (WaveformResponse, error) {
	state, err := s.session.Timeline(nodeID)
	if err != nil {
		return WaveformResponse{}, err
	}
	if state.AudioURL == "" || width <= 0 {
		return WaveformResponse{Duration: state.AudioDuration}, nil
	}
	path, cleanup, err := s.audioPath(ctx, state.AudioURL)
	if err != nil {
		s.logger.Warn("waveform source unavailable", logging.Args(logging.Error(err))...)
		return WaveformResponse{Duration: state.AudioDuration}, nil
	}
	defer cleanup()

	samples, err := timeline.ExtractSamples(ctx, ffmpegBinary, path)
	if err != nil {
		s.logger.Warn("waveform decode failed", logging.Args(logging.Error(err))...)
		return WaveformResponse{Duration: state.AudioDuration}, nil
	}
	wf := timeline.BuildWaveform(samples, state.AudioDuration, width)
	resp := WaveformResponse{Duration: wf.Duration}
	for _, bin := range wf.Bins {
		resp.Bins = append(resp.Bins, WaveformBinView{Min: bin.Min, Max: bin.Max})
	}
	return resp, nil
}

// audioPath materializes an audio source as a local file for ffmpeg.
// Registry-backed assets are spilled to a temp file; anything else is
// passed through as-is (ffmpeg handles http URLs and local paths).
func (s *Service) audioPath(ctx context.Context, sourceURL string) (string, func(), error) {
	id, ok := assets.IDFromURL(sourceURL)
	if !ok {
		return sourceURL, func() {}, nil
	}
	if s.registry == nil {
		return "", nil, fmt.Errorf("asset registry unavailable")
	}
	asset, err := s.registry.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	tmp, err := os.CreateTemp("", "reel-audio-*"+filepath.Ext(asset.Name))
	if err != nil {
		return "", nil, err
	}
	if _, err := tmp.Write(asset.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}
	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

// Export bundles the timeline's clips into a zip written to w. Clip
// sources behind registry URLs are read from the registry; remote URLs
// are fetched over HTTP.
func (s *Service) Export(ctx context.Context, w io.Writer, nodeID string) (ExportResultView, error) {
	state, err := s.session.Timeline(nodeID)
	if err != nil {
		return ExportResultView{}, err
	}
	httpFetch := timeline.HTTPFetcher(&http.Client{Timeout: 60 * time.Second})
	fetch := func(ctx context.Context, url string) (io.ReadCloser, error) {
		if id, ok := assets.IDFromURL(url); ok && s.registry != nil {
			asset, err := s.registry.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(bytes.NewReader(asset.Data)), nil
		}
		return httpFetch(ctx, url)
	}
	result, err := timeline.ExportArchive(ctx, w, state.Clips, fetch, s.logger)
	if err != nil {
		return ExportResultView{}, err
	}
	return ExportResultView{Included: result.Included, Skipped: result.Skipped}, nil
}
