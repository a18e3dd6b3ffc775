package graph

import (
	"strings"
)

// Kind identifies which content renderer and port configuration apply to a
// node. The set is closed; connect-time port checks branch on the port
// table, not on the tag.
type Kind string

const (
	KindAssetBin         Kind = "asset_bin"
	KindVideoBin         Kind = "video_bin"
	KindMusicBin         Kind = "music_bin"
	KindTextInput        Kind = "text_input"
	KindTextResult       Kind = "text_result"
	KindAgent            Kind = "agent"
	KindMusicAnalysis    Kind = "music_analysis_agent"
	KindVisualStyle      Kind = "visual_style_agent"
	KindStoryboardAgent  Kind = "storyboard_agent"
	KindTimeline         Kind = "timeline"
	KindGenerationResult Kind = "generation_result"
)

var allKinds = []Kind{
	KindAssetBin,
	KindVideoBin,
	KindMusicBin,
	KindTextInput,
	KindTextResult,
	KindAgent,
	KindMusicAnalysis,
	KindVisualStyle,
	KindStoryboardAgent,
	KindTimeline,
	KindGenerationResult,
}

// ports declares statically which ports each kind exposes.
type ports struct {
	input  bool
	output bool
}

var kindPorts = map[Kind]ports{
	KindAssetBin:         {output: true},
	KindVideoBin:         {output: true},
	KindMusicBin:         {output: true},
	KindTextInput:        {output: true},
	KindTextResult:       {input: true, output: true},
	KindAgent:            {input: true, output: true},
	KindMusicAnalysis:    {input: true, output: true},
	KindVisualStyle:      {input: true, output: true},
	KindStoryboardAgent:  {input: true, output: true},
	KindTimeline:         {input: true},
	KindGenerationResult: {input: true, output: true},
}

var kindTitles = map[Kind]string{
	KindAssetBin:         "Assets",
	KindVideoBin:         "Video",
	KindMusicBin:         "Music",
	KindTextInput:        "Prompt",
	KindTextResult:       "Analysis",
	KindAgent:            "Agent",
	KindMusicAnalysis:    "Music Expert",
	KindVisualStyle:      "Visual Expert",
	KindStoryboardAgent:  "Storyboard",
	KindTimeline:         "Timeline",
	KindGenerationResult: "Result",
}

// Kind-specific default widths used when a node carries no explicit size.
var kindWidths = map[Kind]float64{
	KindAssetBin:         320,
	KindVideoBin:         320,
	KindMusicBin:         320,
	KindTextInput:        360,
	KindTextResult:       360,
	KindAgent:            340,
	KindMusicAnalysis:    340,
	KindVisualStyle:      340,
	KindStoryboardAgent:  640,
	KindTimeline:         920,
	KindGenerationResult: 420,
}

// AllKinds returns the ordered list of known node kinds.
func AllKinds() []Kind {
	cp := make([]Kind, len(allKinds))
	copy(cp, allKinds)
	return cp
}

// ParseKind converts a string into a known Kind.
func ParseKind(value string) (Kind, bool) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := kindPorts[normalized]
	return normalized, ok
}

// AcceptsInput reports whether the kind exposes an input port.
func (k Kind) AcceptsInput() bool { return kindPorts[k].input }

// HasOutput reports whether the kind exposes an output port.
func (k Kind) HasOutput() bool { return kindPorts[k].output }

// DefaultTitle returns the display label assigned to new nodes of the kind.
func (k Kind) DefaultTitle() string {
	if title, ok := kindTitles[k]; ok {
		return title
	}
	return string(k)
}

// DefaultWidth returns the kind's intrinsic width in logical units.
func (k Kind) DefaultWidth() float64 {
	if width, ok := kindWidths[k]; ok {
		return width
	}
	return 320
}

// Resizable reports whether the kind supports an explicit size override.
// Only content that reflows benefits from a resize handle.
func (k Kind) Resizable() bool {
	return k == KindTimeline || k == KindStoryboardAgent
}
