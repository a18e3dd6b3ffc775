package testsupport

import (
	"context"
	"sync/atomic"

	"reel/internal/generation"
	"reel/internal/graph"
)

// ScriptedService implements generation.Service with per-method hooks.
// Unset hooks return zero values so tests only script what they assert.
type ScriptedService struct {
	GenerateFunc   func(ctx context.Context, req generation.GenerateRequest) (generation.GenerateResult, error)
	AnalyzeFunc    func(ctx context.Context, audio []byte, mimeType, contextText, systemInstruction string) (string, error)
	StoryboardFunc func(ctx context.Context, analysis, styleImage, protagonistImage, systemInstruction string) ([]graph.Scene, error)
	ClipFunc       func(ctx context.Context, sourceImage, prompt string) (string, error)

	clipCalls atomic.Int64
}

var _ generation.Service = (*ScriptedService)(nil)

func (s *ScriptedService) Generate(ctx context.Context, req generation.GenerateRequest) (generation.GenerateResult, error) {
	if s.GenerateFunc != nil {
		return s.GenerateFunc(ctx, req)
	}
	return generation.GenerateResult{}, nil
}

func (s *ScriptedService) AnalyzeMusic(ctx context.Context, audio []byte, mimeType, contextText, systemInstruction string) (string, error) {
	if s.AnalyzeFunc != nil {
		return s.AnalyzeFunc(ctx, audio, mimeType, contextText, systemInstruction)
	}
	return "", nil
}

func (s *ScriptedService) SynthesizeStoryboard(ctx context.Context, analysis, styleImage, protagonistImage, systemInstruction string) ([]graph.Scene, error) {
	if s.StoryboardFunc != nil {
		return s.StoryboardFunc(ctx, analysis, styleImage, protagonistImage, systemInstruction)
	}
	return nil, nil
}

func (s *ScriptedService) SynthesizeClip(ctx context.Context, sourceImage, prompt string) (string, error) {
	s.clipCalls.Add(1)
	if s.ClipFunc != nil {
		return s.ClipFunc(ctx, sourceImage, prompt)
	}
	return "", nil
}

// ClipCalls reports how many clip synthesis requests were made.
func (s *ScriptedService) ClipCalls() int {
	return int(s.clipCalls.Load())
}
