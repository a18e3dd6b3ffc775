package api

import (
	"reel/internal/editor"
	"reel/internal/graph"
	"reel/internal/timeline"
)

// FromNode converts an internal node into its transport view.
func FromNode(node *graph.Node) NodeView {
	if node == nil {
		return NodeView{}
	}
	view := NodeView{
		ID:        node.ID,
		Kind:      string(node.Kind),
		Title:     node.Title,
		X:         node.X,
		Y:         node.Y,
		Width:     node.Width,
		Height:    node.Height,
		Outbound:  append([]string(nil), node.Outbound...),
		Inbound:   append([]string(nil), node.Inbound...),
		Config:    fromConfig(node.Config),
		CreatedAt: node.CreatedAt,
	}
	for _, item := range node.Items {
		view.Items = append(view.Items, FromItem(item))
	}
	return view
}

// FromItem converts one media item.
func FromItem(item graph.MediaItem) ItemView {
	return ItemView{
		ID:          item.ID,
		SourceURL:   item.SourceURL,
		MediaType:   string(item.MediaType),
		Prompt:      item.Prompt,
		DisplayName: item.DisplayName,
		Duration:    item.Duration,
	}
}

// FromClip converts one timeline clip.
func FromClip(clip timeline.Clip) ClipView {
	return ClipView{
		ID:       clip.ID,
		SceneRef: clip.SceneRef,
		VideoURL: clip.VideoURL,
		Poster:   clip.Poster,
		Duration: clip.Duration,
		Label:    clip.Label,
		Status:   string(clip.Status),
	}
}

func fromConfig(cfg *graph.Config) *ConfigView {
	if cfg == nil {
		return nil
	}
	view := &ConfigView{
		Prompt:            cfg.Prompt,
		SystemInstruction: cfg.SystemInstruction,
		Mode:              cfg.Mode,
		AspectRatio:       cfg.AspectRatio,
		Text:              cfg.Text,
		Generating:        cfg.Generating,
	}
	for _, scene := range cfg.Scenes {
		view.Scenes = append(view.Scenes, SceneView{
			Ref:         scene.Ref,
			Description: scene.Description,
			ImageURL:    scene.ImageURL,
			StartHint:   scene.StartHint,
		})
	}
	if cfg.Timeline != nil {
		tl := &TimelineConfigView{
			AudioURL:      cfg.Timeline.AudioURL,
			AudioDuration: cfg.Timeline.AudioDuration,
		}
		for _, clip := range cfg.Timeline.Clips {
			tl.Clips = append(tl.Clips, FromClip(clip))
		}
		view.Timeline = tl
	}
	return view
}

// FromSelection converts the session focus record.
func FromSelection(sel editor.Selection) SelectionView {
	view := SelectionView{NodeID: sel.NodeID, ItemID: sel.ItemID}
	if sel.Connection != nil {
		view.Connection = &EdgeView{
			SourceID: sel.Connection.SourceID,
			TargetID: sel.Connection.TargetID,
		}
	}
	return view
}

// FromTimelineState converts one timeline playback snapshot.
func FromTimelineState(nodeID string, state editor.TimelineState) TimelineResponse {
	resp := TimelineResponse{
		NodeID:        nodeID,
		AudioURL:      state.AudioURL,
		AudioDuration: state.AudioDuration,
		Current:       state.Current,
		Playing:       state.Playing,
		TotalDuration: state.TotalDuration,
	}
	for _, clip := range state.Clips {
		resp.Clips = append(resp.Clips, FromClip(clip))
	}
	return resp
}
