package generation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"reel/internal/graph"
	"reel/internal/logging"
)

// Service is the remote generation contract the runner drives. *Client
// implements it; tests substitute a scripted stub.
type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	AnalyzeMusic(ctx context.Context, audio []byte, mimeType, contextText, systemInstruction string) (string, error)
	SynthesizeStoryboard(ctx context.Context, analysis, styleImage, protagonistImage, systemInstruction string) ([]graph.Scene, error)
	SynthesizeClip(ctx context.Context, sourceImage, prompt string) (string, error)
}

// AudioLoader fetches the raw bytes and MIME type behind a media item's
// source URL.
type AudioLoader func(ctx context.Context, sourceURL string) ([]byte, string, error)

// Runner executes node-scoped generation actions against the graph store.
// Every run takes a per-node generation token; results are applied only
// while the token is still current and the node still exists, so a late
// response for a removed or re-run node is discarded instead of written.
type Runner struct {
	mu     sync.Mutex
	logger *slog.Logger

	store   *graph.Store
	service Service

	clipDelay time.Duration
	loadAudio AudioLoader
	sleeper   func(context.Context, time.Duration) error

	runs map[string]uint64
}

// RunnerOption customizes the runner.
type RunnerOption func(*Runner)

// WithClipDelay sets the fixed pause between sequential clip requests.
func WithClipDelay(delay time.Duration) RunnerOption {
	return func(r *Runner) {
		if delay >= 0 {
			r.clipDelay = delay
		}
	}
}

// WithAudioLoader overrides how audio bytes are fetched for analysis.
func WithAudioLoader(loader AudioLoader) RunnerOption {
	return func(r *Runner) {
		if loader != nil {
			r.loadAudio = loader
		}
	}
}

// WithBatchSleeper overrides the inter-request sleep (useful for tests).
func WithBatchSleeper(sleeper func(context.Context, time.Duration) error) RunnerOption {
	return func(r *Runner) {
		if sleeper != nil {
			r.sleeper = sleeper
		}
	}
}

// NewRunner constructs a runner over the given store and service.
func NewRunner(logger *slog.Logger, store *graph.Store, service Service, opts ...RunnerOption) *Runner {
	runner := &Runner{
		logger:    logging.NewComponentLogger(logger, "generation"),
		store:     store,
		service:   service,
		clipDelay: 2 * time.Second,
		loadAudio: fetchAudio,
		sleeper:   sleepContext,
		runs:      make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

func (r *Runner) beginRun(nodeID string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[nodeID]++
	return r.runs[nodeID]
}

func (r *Runner) tokenCurrent(nodeID string, token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[nodeID] == token
}

// Invalidate discards any in-flight run for a node. Called when the node
// is removed so its late results are dropped.
func (r *Runner) Invalidate(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[nodeID]++
}

// applyIfLive writes a result into a node only if the node still exists
// and no newer run has started since the request went out.
func (r *Runner) applyIfLive(nodeID string, token uint64, mutate func(*graph.Node)) bool {
	if !r.tokenCurrent(nodeID, token) {
		r.logger.Debug("stale generation result discarded",
			logging.Args(logging.String(logging.FieldNodeID, nodeID))...)
		return false
	}
	if err := r.store.UpdateNode(nodeID, mutate); err != nil {
		r.logger.Debug("generation result for removed node discarded",
			logging.Args(logging.String(logging.FieldNodeID, nodeID))...)
		return false
	}
	return true
}

func (r *Runner) setGenerating(nodeID string, generating bool) {
	_ = r.store.UpdateNode(nodeID, func(node *graph.Node) {
		if node.Config == nil {
			node.Config = &graph.Config{}
		}
		node.Config.Generating = generating
	})
}

// inboundOfKind returns the first inbound node of one of the given kinds.
func (r *Runner) inboundOfKind(node *graph.Node, kinds ...graph.Kind) (*graph.Node, bool) {
	for _, sourceID := range node.Inbound {
		source, err := r.store.Node(sourceID)
		if err != nil {
			continue
		}
		for _, kind := range kinds {
			if source.Kind == kind {
				return source, true
			}
		}
	}
	return nil, false
}

func firstItemOfType(node *graph.Node, mediaType graph.MediaType) (graph.MediaItem, bool) {
	for _, item := range node.Items {
		if item.MediaType == mediaType {
			return item, true
		}
	}
	return graph.MediaItem{}, false
}

// RunMusicAnalysis analyzes the audio wired into a music-analysis agent
// and stores the analysis text on the agent.
func (r *Runner) RunMusicAnalysis(ctx context.Context, nodeID string) error {
	node, err := r.store.Node(nodeID)
	if err != nil {
		return err
	}
	if node.Kind != graph.KindMusicAnalysis {
		return fmt.Errorf("node %s is %s, not a music analysis agent", nodeID, node.Kind)
	}
	music, ok := r.inboundOfKind(node, graph.KindMusicBin)
	if !ok {
		return NewValidationError("connect a Music node with audio")
	}
	audioItem, ok := firstItemOfType(music, graph.MediaAudio)
	if !ok {
		return NewValidationError("connect a Music node with audio")
	}

	token := r.beginRun(nodeID)
	r.setGenerating(nodeID, true)
	defer r.setGenerating(nodeID, false)

	audio, mimeType, err := r.loadAudio(ctx, audioItem.SourceURL)
	if err != nil {
		return fmt.Errorf("load audio: %w", err)
	}
	var contextText, instruction string
	if node.Config != nil {
		contextText = node.Config.Prompt
		instruction = node.Config.SystemInstruction
	}
	analysis, err := r.service.AnalyzeMusic(ctx, audio, mimeType, contextText, instruction)
	if err != nil {
		return err
	}
	r.applyIfLive(nodeID, token, func(node *graph.Node) {
		if node.Config == nil {
			node.Config = &graph.Config{}
		}
		node.Config.Text = analysis
	})
	r.logger.Info("music analysis complete",
		logging.Args(logging.String(logging.FieldNodeID, nodeID))...)
	return nil
}

// RunStoryboard synthesizes a scene list for a storyboard agent from its
// wired analysis text and visual style reference.
func (r *Runner) RunStoryboard(ctx context.Context, nodeID string) error {
	node, err := r.store.Node(nodeID)
	if err != nil {
		return err
	}
	if node.Kind != graph.KindStoryboardAgent {
		return fmt.Errorf("node %s is %s, not a storyboard agent", nodeID, node.Kind)
	}
	analysisNode, ok := r.inboundOfKind(node, graph.KindMusicAnalysis, graph.KindTextResult)
	if !ok || analysisNode.Config == nil || strings.TrimSpace(analysisNode.Config.Text) == "" {
		return NewValidationError("connect a Music Expert node with an analysis")
	}
	styleNode, ok := r.inboundOfKind(node, graph.KindVisualStyle)
	if !ok {
		return NewValidationError("connect a Visual Expert node")
	}
	styleItem, ok := firstItemOfType(styleNode, graph.MediaImage)
	if !ok {
		return NewValidationError("connect a Visual Expert node with a style image")
	}
	var protagonist string
	if bin, ok := r.inboundOfKind(node, graph.KindAssetBin); ok {
		if item, ok := firstItemOfType(bin, graph.MediaImage); ok {
			protagonist = item.SourceURL
		}
	}

	token := r.beginRun(nodeID)
	r.setGenerating(nodeID, true)
	defer r.setGenerating(nodeID, false)

	var instruction string
	if node.Config != nil {
		instruction = node.Config.SystemInstruction
	}
	scenes, err := r.service.SynthesizeStoryboard(ctx, analysisNode.Config.Text, styleItem.SourceURL, protagonist, instruction)
	if err != nil {
		return err
	}
	r.applyIfLive(nodeID, token, func(node *graph.Node) {
		if node.Config == nil {
			node.Config = &graph.Config{}
		}
		node.Config.Scenes = scenes
	})
	r.logger.Info("storyboard synthesized", logging.Args(
		logging.String(logging.FieldNodeID, nodeID),
		logging.Int("scenes", len(scenes)))...)
	return nil
}

// RunAgent generates an image grid for an agent node and lands the slices
// in a new result node wired from the agent.
func (r *Runner) RunAgent(ctx context.Context, nodeID string) error {
	node, err := r.store.Node(nodeID)
	if err != nil {
		return err
	}
	if node.Kind != graph.KindAgent && node.Kind != graph.KindVisualStyle {
		return fmt.Errorf("node %s is %s, not an agent", nodeID, node.Kind)
	}
	var prompt, instruction, mode, aspect string
	if node.Config != nil {
		prompt = node.Config.Prompt
		instruction = node.Config.SystemInstruction
		mode = node.Config.Mode
		aspect = node.Config.AspectRatio
	}
	if strings.TrimSpace(prompt) == "" {
		if input, ok := r.inboundOfKind(node, graph.KindTextInput); ok && input.Config != nil {
			prompt = input.Config.Text
		}
	}
	if strings.TrimSpace(prompt) == "" {
		return NewValidationError("enter a prompt or connect a Prompt node")
	}
	var references []string
	for _, sourceID := range node.Inbound {
		source, err := r.store.Node(sourceID)
		if err != nil {
			continue
		}
		for _, item := range source.Items {
			if item.MediaType == graph.MediaImage {
				references = append(references, item.SourceURL)
			}
		}
	}
	if node.Kind == graph.KindVisualStyle && len(references) == 0 {
		return NewValidationError("connect a reference image first")
	}

	token := r.beginRun(nodeID)
	r.setGenerating(nodeID, true)
	defer r.setGenerating(nodeID, false)

	result, err := r.service.Generate(ctx, GenerateRequest{
		Prompt:            prompt,
		Layout:            mode,
		AspectRatio:       aspect,
		ReferenceImages:   references,
		SystemInstruction: instruction,
	})
	if err != nil {
		return err
	}
	if !r.tokenCurrent(nodeID, token) {
		r.logger.Debug("stale generation result discarded",
			logging.Args(logging.String(logging.FieldNodeID, nodeID))...)
		return nil
	}
	latest, err := r.store.Node(nodeID)
	if err != nil {
		return nil
	}

	items := make([]graph.MediaItem, 0, len(result.Slices))
	for _, slice := range result.Slices {
		items = append(items, graph.MediaItem{
			SourceURL: slice,
			MediaType: graph.MediaImage,
			Prompt:    prompt,
		})
	}
	resultNode := r.store.AddNode(graph.KindGenerationResult,
		latest.X+latest.EffectiveWidth()+120, latest.Y, nil)
	if err := r.store.AddItems(resultNode.ID, items...); err != nil {
		return err
	}
	if err := r.store.Connect(nodeID, resultNode.ID); err != nil {
		return err
	}
	r.logger.Info("generation complete", logging.Args(
		logging.String(logging.FieldNodeID, nodeID),
		logging.String("result_id", resultNode.ID),
		logging.Int("slices", len(items)))...)
	return nil
}

func fetchAudio(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch audio: http %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
