package editor

import (
	"fmt"
	"time"

	"reel/internal/graph"
	"reel/internal/timeline"
)

// playerLocked returns the playback state for a timeline node, creating it
// on first use.
func (s *Session) playerLocked(nodeID string) *timeline.Player {
	player, ok := s.players[nodeID]
	if !ok {
		player = &timeline.Player{}
		s.players[nodeID] = player
	}
	return player
}

func timelineConfigOf(node *graph.Node) *graph.TimelineConfig {
	if node.Config == nil || node.Config.Timeline == nil {
		return &graph.TimelineConfig{}
	}
	return node.Config.Timeline
}

// TimelineState is a read view of one timeline node's playback.
type TimelineState struct {
	Clips         []timeline.Clip
	AudioURL      string
	AudioDuration float64
	Current       float64
	Playing       bool
	TotalDuration float64
}

// Timeline returns the playback view for a timeline node.
func (s *Session) Timeline(nodeID string) (TimelineState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, err := s.store.Node(nodeID)
	if err != nil {
		return TimelineState{}, err
	}
	cfg := timelineConfigOf(node)
	player := s.playerLocked(nodeID)
	return TimelineState{
		Clips:         timeline.CloneClips(cfg.Clips),
		AudioURL:      cfg.AudioURL,
		AudioDuration: cfg.AudioDuration,
		Current:       player.Current(),
		Playing:       player.Playing(),
		TotalDuration: timeline.TotalDuration(cfg.Clips, cfg.AudioDuration),
	}, nil
}

// TogglePlayback flips play/pause on a timeline node.
func (s *Session) TogglePlayback(nodeID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTimelineLocked(nodeID); err != nil {
		return err
	}
	s.playerLocked(nodeID).Toggle(now)
	return nil
}

// TickTimeline advances a timeline's playback by one frame.
func (s *Session) TickTimeline(nodeID string, now time.Time, audio timeline.AudioState, video timeline.VideoState) (timeline.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, err := s.store.Node(nodeID)
	if err != nil {
		return timeline.Frame{}, err
	}
	cfg := timelineConfigOf(node)
	if audio.Duration == 0 {
		audio.Duration = cfg.AudioDuration
	}
	return s.playerLocked(nodeID).Tick(now, audio, video, cfg.Clips), nil
}

// SeekTimeline moves a timeline's clock to t seconds, forcing a video
// resync.
func (s *Session) SeekTimeline(nodeID string, t float64) (timeline.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, err := s.store.Node(nodeID)
	if err != nil {
		return timeline.Frame{}, err
	}
	cfg := timelineConfigOf(node)
	return s.playerLocked(nodeID).Seek(t, cfg.Clips, cfg.AudioDuration), nil
}

// SeekTimelinePixels maps a ruler click to time through the session's
// pixels-per-second scale.
func (s *Session) SeekTimelinePixels(nodeID string, x float64) (timeline.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, err := s.store.Node(nodeID)
	if err != nil {
		return timeline.Frame{}, err
	}
	cfg := timelineConfigOf(node)
	return s.playerLocked(nodeID).SeekPixels(x, s.pixelsPerSecond, cfg.Clips, cfg.AudioDuration), nil
}

// ResizeClip sets one clip's duration from a drag delta in pixels. Live
// resize bypasses history like node drags do.
func (s *Session) ResizeClip(nodeID, clipID string, originalDuration, deltaPixels float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	duration := originalDuration + deltaPixels/s.pixelsPerSecond
	return s.store.UpdateNode(nodeID, func(node *graph.Node) {
		cfg := ensureTimelineConfig(node)
		if resized, err := timeline.ResizeClip(cfg.Clips, clipID, duration); err == nil {
			cfg.Clips = resized
		}
	})
}

// ReorderClip splices a dragged clip out of the sequence and reinserts it
// at the drop target's index.
func (s *Session) ReorderClip(nodeID, clipID string, targetIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reorderErr error
	err := s.store.UpdateNode(nodeID, func(node *graph.Node) {
		cfg := ensureTimelineConfig(node)
		reordered, err := timeline.ReorderClip(cfg.Clips, clipID, targetIndex)
		if err != nil {
			reorderErr = err
			return
		}
		cfg.Clips = reordered
	})
	if err != nil {
		return err
	}
	return reorderErr
}

// SetClips replaces a timeline's clip sequence, used when a generation
// batch lays down placeholders.
func (s *Session) SetClips(nodeID string, clips []timeline.Clip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.UpdateNode(nodeID, func(node *graph.Node) {
		ensureTimelineConfig(node).Clips = timeline.CloneClips(clips)
	})
}

func ensureTimelineConfig(node *graph.Node) *graph.TimelineConfig {
	if node.Config == nil {
		node.Config = &graph.Config{}
	}
	if node.Config.Timeline == nil {
		node.Config.Timeline = &graph.TimelineConfig{}
	}
	return node.Config.Timeline
}

func (s *Session) requireTimelineLocked(nodeID string) error {
	node, err := s.store.Node(nodeID)
	if err != nil {
		return err
	}
	if node.Kind != graph.KindTimeline {
		return fmt.Errorf("node %s is %s, not a timeline", nodeID, node.Kind)
	}
	return nil
}
