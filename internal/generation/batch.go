package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"reel/internal/graph"
	"reel/internal/logging"
	"reel/internal/timeline"
)

const defaultClipSeconds = 4.0

// GenerateClips runs one clip synthesis per storyboard scene for a
// timeline node. Placeholder clips are laid down first, then requests are
// issued sequentially with a fixed delay between them as a throttle. A
// failed clip is marked error with the failure text in its label and the
// batch continues with the next scene.
func (r *Runner) GenerateClips(ctx context.Context, nodeID string) error {
	node, err := r.store.Node(nodeID)
	if err != nil {
		return err
	}
	if node.Kind != graph.KindTimeline {
		return fmt.Errorf("node %s is %s, not a timeline", nodeID, node.Kind)
	}
	storyboard, ok := r.inboundOfKind(node, graph.KindStoryboardAgent)
	if !ok || storyboard.Config == nil || len(storyboard.Config.Scenes) == 0 {
		return NewValidationError("connect a Storyboard node with scenes")
	}
	scenes := storyboard.Config.Scenes

	token := r.beginRun(nodeID)
	r.setGenerating(nodeID, true)
	defer r.setGenerating(nodeID, false)

	clips := make([]timeline.Clip, len(scenes))
	for i, scene := range scenes {
		label := strings.TrimSpace(scene.Description)
		if label == "" {
			label = fmt.Sprintf("Scene %d", i+1)
		}
		clips[i] = timeline.Clip{
			ID:       uuid.NewString(),
			SceneRef: scene.Ref,
			Poster:   scene.ImageURL,
			Duration: defaultClipSeconds,
			Label:    label,
			Status:   timeline.ClipPending,
		}
	}
	if !r.applyIfLive(nodeID, token, func(node *graph.Node) {
		ensureTimeline(node).Clips = timeline.CloneClips(clips)
	}) {
		return nil
	}

	for i, scene := range scenes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			if err := r.sleeper(ctx, r.clipDelay); err != nil {
				return err
			}
		}
		clipID := clips[i].ID
		if !r.applyIfLive(nodeID, token, setClipStatus(clipID, timeline.ClipGenerating, "", "")) {
			return nil
		}

		videoURL, err := r.service.SynthesizeClip(ctx, scene.ImageURL, scene.Description)
		if err != nil {
			r.logger.Warn("clip generation failed", logging.Args(
				logging.String(logging.FieldNodeID, nodeID),
				logging.String(logging.FieldClipID, clipID),
				logging.Error(err))...)
			if !r.applyIfLive(nodeID, token, setClipStatus(clipID, timeline.ClipError, "", err.Error())) {
				return nil
			}
			continue
		}
		if !r.applyIfLive(nodeID, token, setClipStatus(clipID, timeline.ClipDone, videoURL, "")) {
			return nil
		}
	}
	r.logger.Info("clip batch complete", logging.Args(
		logging.String(logging.FieldNodeID, nodeID),
		logging.Int("clips", len(clips)))...)
	return nil
}

func setClipStatus(clipID string, status timeline.ClipStatus, videoURL, label string) func(*graph.Node) {
	return func(node *graph.Node) {
		cfg := ensureTimeline(node)
		for i := range cfg.Clips {
			if cfg.Clips[i].ID != clipID {
				continue
			}
			cfg.Clips[i].Status = status
			if videoURL != "" {
				cfg.Clips[i].VideoURL = videoURL
			}
			if label != "" {
				cfg.Clips[i].Label = label
			}
			return
		}
	}
}

func ensureTimeline(node *graph.Node) *graph.TimelineConfig {
	if node.Config == nil {
		node.Config = &graph.Config{}
	}
	if node.Config.Timeline == nil {
		node.Config.Timeline = &graph.TimelineConfig{}
	}
	return node.Config.Timeline
}
