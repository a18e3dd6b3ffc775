package api

// NodeView describes one graph node in a transport-friendly format.
type NodeView struct {
	ID        string      `json:"id"`
	Kind      string      `json:"kind"`
	Title     string      `json:"title"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Width     float64     `json:"width,omitempty"`
	Height    float64     `json:"height,omitempty"`
	Items     []ItemView  `json:"items,omitempty"`
	Outbound  []string    `json:"outbound,omitempty"`
	Inbound   []string    `json:"inbound,omitempty"`
	Config    *ConfigView `json:"config,omitempty"`
	CreatedAt int64       `json:"createdAt"`
}

// ItemView describes one media item.
type ItemView struct {
	ID          string  `json:"id"`
	SourceURL   string  `json:"sourceUrl"`
	MediaType   string  `json:"mediaType"`
	Prompt      string  `json:"prompt,omitempty"`
	DisplayName string  `json:"displayName,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
}

// SceneView describes one storyboard scene.
type SceneView struct {
	Ref         string  `json:"ref"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	StartHint   float64 `json:"startHint,omitempty"`
}

// ClipView describes one timeline clip.
type ClipView struct {
	ID       string  `json:"id"`
	SceneRef string  `json:"sceneRef,omitempty"`
	VideoURL string  `json:"videoUrl,omitempty"`
	Poster   string  `json:"poster,omitempty"`
	Duration float64 `json:"duration"`
	Label    string  `json:"label,omitempty"`
	Status   string  `json:"status"`
}

// TimelineConfigView describes a timeline node's compositing config.
type TimelineConfigView struct {
	Clips         []ClipView `json:"clips,omitempty"`
	AudioURL      string     `json:"audioUrl,omitempty"`
	AudioDuration float64    `json:"audioDuration,omitempty"`
}

// ConfigView describes a node's kind-specific settings.
type ConfigView struct {
	Prompt            string              `json:"prompt,omitempty"`
	SystemInstruction string              `json:"systemInstruction,omitempty"`
	Mode              string              `json:"mode,omitempty"`
	AspectRatio       string              `json:"aspectRatio,omitempty"`
	Text              string              `json:"text,omitempty"`
	Scenes            []SceneView         `json:"scenes,omitempty"`
	Timeline          *TimelineConfigView `json:"timeline,omitempty"`
	Generating        bool                `json:"generating,omitempty"`
}

// SelectionView mirrors the session's focus record.
type SelectionView struct {
	NodeID     string    `json:"nodeId,omitempty"`
	ItemID     string    `json:"itemId,omitempty"`
	Connection *EdgeView `json:"connection,omitempty"`
}

// EdgeView identifies one connection by its endpoints.
type EdgeView struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

// ViewState carries the canvas transform for rendering.
type ViewState struct {
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
	Zoom float64 `json:"zoom"`
}

// GraphResponse is the full render snapshot handed to the frontend.
type GraphResponse struct {
	Nodes        []NodeView    `json:"nodes"`
	Selection    SelectionView `json:"selection"`
	View         ViewState     `json:"view"`
	Mode         string        `json:"mode"`
	HistoryDepth int           `json:"historyDepth"`
	Error        string        `json:"error,omitempty"`
}

// TimelineResponse is one timeline node's playback snapshot.
type TimelineResponse struct {
	NodeID        string     `json:"nodeId"`
	Clips         []ClipView `json:"clips,omitempty"`
	AudioURL      string     `json:"audioUrl,omitempty"`
	AudioDuration float64    `json:"audioDuration,omitempty"`
	Current       float64    `json:"current"`
	Playing       bool       `json:"playing"`
	TotalDuration float64    `json:"totalDuration"`
}

// SessionStatus aggregates daemon runtime information for API consumers.
type SessionStatus struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	NodeCount    int    `json:"nodeCount"`
	HistoryDepth int    `json:"historyDepth"`
	AssetCount   int    `json:"assetCount"`
	LockFilePath string `json:"lockFilePath,omitempty"`
	SocketPath   string `json:"socketPath,omitempty"`
	Error        string `json:"error,omitempty"`
}

// PointerEvent is one pointer transition from the frontend.
type PointerEvent struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button,omitempty"`
}

// KeyEvent is one keyboard transition from the frontend.
type KeyEvent struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Shift bool   `json:"shift,omitempty"`
}

// AddNodeRequest places a new node on the canvas.
type AddNodeRequest struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// ConnectRequest wires two nodes.
type ConnectRequest struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

// RenameRequest retitles a node.
type RenameRequest struct {
	NodeID string `json:"nodeId"`
	Title  string `json:"title"`
}

// TimelineTickRequest carries the observed media-element state for one
// playback frame.
type TimelineTickRequest struct {
	AudioPresent     bool    `json:"audioPresent"`
	AudioPlaying     bool    `json:"audioPlaying"`
	AudioCurrentTime float64 `json:"audioCurrentTime"`
	AudioDuration    float64 `json:"audioDuration"`
	VideoClipID      string  `json:"videoClipId,omitempty"`
	VideoCurrentTime float64 `json:"videoCurrentTime"`
}

// FrameView is the set of render commands returned for one playback tick.
type FrameView struct {
	Current      float64   `json:"current"`
	Source       string    `json:"source"`
	ActiveIndex  int       `json:"activeIndex"`
	LoadClip     *ClipView `json:"loadClip,omitempty"`
	VideoVisible bool      `json:"videoVisible"`
	SeekVideoTo  *float64  `json:"seekVideoTo,omitempty"`
	Stopped      bool      `json:"stopped,omitempty"`
}

// WaveformResponse carries binned waveform extremes for rendering.
type WaveformResponse struct {
	Bins     []WaveformBinView `json:"bins"`
	Duration float64           `json:"duration"`
}

// WaveformBinView is one rendered waveform column.
type WaveformBinView struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ExportResultView summarizes one export run.
type ExportResultView struct {
	Included int `json:"included"`
	Skipped  int `json:"skipped,omitempty"`
}
