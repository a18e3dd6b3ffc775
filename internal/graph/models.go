package graph

import (
	"strings"

	"reel/internal/timeline"
)

// Minimum explicit node dimensions in logical units.
const (
	MinNodeWidth  = 300.0
	MinNodeHeight = 200.0
)

// MediaType classifies a media item's payload.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// MediaItem references one piece of user or generated media, exclusively
// owned by its containing node. Moving an item between nodes is done by
// copy with a fresh id, never by reference transfer.
type MediaItem struct {
	ID          string
	SourceURL   string
	MediaType   MediaType
	CreatedAt   int64
	Prompt      string
	DisplayName string
	Duration    float64
}

// Scene is one storyboard entry produced by the storyboard agent.
type Scene struct {
	Ref         string
	Description string
	ImageURL    string
	StartHint   float64
}

// TimelineConfig holds the compositing state embedded in a timeline node.
type TimelineConfig struct {
	Clips         []timeline.Clip
	AudioURL      string
	AudioItemID   string
	AudioDuration float64
}

// Clone deep-copies the timeline config.
func (t *TimelineConfig) Clone() *TimelineConfig {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Clips = timeline.CloneClips(t.Clips)
	return &cp
}

// Config is the kind-specific mutable settings blob. Only the fields that
// apply to the node's kind are populated; pure media bins carry none.
type Config struct {
	Prompt            string
	SystemInstruction string
	Mode              string
	AspectRatio       string
	Text              string
	Scenes            []Scene
	Timeline          *TimelineConfig
	Generating        bool
}

// Clone deep-copies the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Scenes != nil {
		cp.Scenes = make([]Scene, len(c.Scenes))
		copy(cp.Scenes, c.Scenes)
	}
	cp.Timeline = c.Timeline.Clone()
	return &cp
}

// Node is the unit of the graph: a storyboard group with a position on the
// canvas, owned media items, and symmetric connection lists.
type Node struct {
	ID        string
	Kind      Kind
	Title     string
	X         float64
	Y         float64
	Width     float64
	Height    float64
	Items     []MediaItem
	Outbound  []string
	Inbound   []string
	Config    *Config
	CreatedAt int64
}

// Clone deep-copies the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Items != nil {
		cp.Items = make([]MediaItem, len(n.Items))
		copy(cp.Items, n.Items)
	}
	cp.Outbound = append([]string(nil), n.Outbound...)
	cp.Inbound = append([]string(nil), n.Inbound...)
	cp.Config = n.Config.Clone()
	return &cp
}

// EffectiveWidth returns the explicit width when set, otherwise the kind
// default.
func (n *Node) EffectiveWidth() float64 {
	if n.Width > 0 {
		return n.Width
	}
	return n.Kind.DefaultWidth()
}

// ConnectedTo reports whether id is already in the node's outbound set.
func (n *Node) ConnectedTo(id string) bool {
	for _, out := range n.Outbound {
		if out == id {
			return true
		}
	}
	return false
}

// Item returns the media item with the given id, if present.
func (n *Node) Item(id string) (MediaItem, bool) {
	for _, item := range n.Items {
		if item.ID == id {
			return item, true
		}
	}
	return MediaItem{}, false
}

// ClassifyMedia maps a declared MIME type or filename to a MediaType.
// Declared type wins; the extension is the fallback.
func ClassifyMedia(declaredType, name string) (MediaType, bool) {
	declared := strings.ToLower(strings.TrimSpace(declaredType))
	switch {
	case strings.HasPrefix(declared, "image/"):
		return MediaImage, true
	case strings.HasPrefix(declared, "video/"):
		return MediaVideo, true
	case strings.HasPrefix(declared, "audio/"):
		return MediaAudio, true
	}
	lower := strings.ToLower(name)
	switch {
	case hasAnySuffix(lower, ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"):
		return MediaImage, true
	case hasAnySuffix(lower, ".mp4", ".mov", ".webm", ".mkv", ".avi"):
		return MediaVideo, true
	case hasAnySuffix(lower, ".mp3", ".wav", ".flac", ".ogg", ".m4a", ".aac"):
		return MediaAudio, true
	}
	return "", false
}

func hasAnySuffix(value string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(value, suffix) {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
