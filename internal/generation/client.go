package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reel/internal/graph"
)

const (
	defaultHTTPTimeout    = 120 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 5
)

// Config captures the runtime settings required to talk to the generation
// service.
type Config struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// Client wraps the generation service's HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 5).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a generation client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// GenerateRequest asks for an image grid rendered from a prompt and
// optional reference images.
type GenerateRequest struct {
	Prompt            string   `json:"prompt"`
	Layout            string   `json:"layout,omitempty"`
	AspectRatio       string   `json:"aspect_ratio,omitempty"`
	ReferenceImages   []string `json:"reference_images,omitempty"`
	SystemInstruction string   `json:"system_instruction,omitempty"`
}

// GenerateResult is the image grid returned for one generation request.
type GenerateResult struct {
	FullImage string   `json:"full_image"`
	Slices    []string `json:"slices"`
}

// Generate renders an image grid from a prompt and reference images.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	var result GenerateResult
	if strings.TrimSpace(req.Prompt) == "" {
		return result, NewValidationError("generation: prompt required")
	}
	if err := c.postJSONWithRetry(ctx, "/v1/generate", req, &result, "generate"); err != nil {
		return GenerateResult{}, err
	}
	return result, nil
}

type analyzeMusicRequest struct {
	Audio             string `json:"audio"`
	MIMEType          string `json:"mime_type"`
	Context           string `json:"context,omitempty"`
	SystemInstruction string `json:"system_instruction,omitempty"`
}

type analyzeMusicResponse struct {
	Text string `json:"text"`
}

// AnalyzeMusic submits raw audio bytes for analysis and returns the
// analysis text.
func (c *Client) AnalyzeMusic(ctx context.Context, audio []byte, mimeType, contextText, systemInstruction string) (string, error) {
	if len(audio) == 0 {
		return "", NewValidationError("generation: audio payload required")
	}
	req := analyzeMusicRequest{
		Audio:             base64.StdEncoding.EncodeToString(audio),
		MIMEType:          mimeType,
		Context:           contextText,
		SystemInstruction: systemInstruction,
	}
	var resp analyzeMusicResponse
	if err := c.postJSONWithRetry(ctx, "/v1/music/analyze", req, &resp, "analyze music"); err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("generation analyze music: empty analysis")
	}
	return text, nil
}

type storyboardRequest struct {
	Analysis          string `json:"analysis"`
	StyleImage        string `json:"style_image"`
	ProtagonistImage  string `json:"protagonist_image,omitempty"`
	SystemInstruction string `json:"system_instruction,omitempty"`
}

type storyboardResponse struct {
	Scenes []struct {
		Ref         string  `json:"ref"`
		Description string  `json:"description"`
		ImageURL    string  `json:"image_url"`
		StartHint   float64 `json:"start_hint"`
	} `json:"scenes"`
}

// SynthesizeStoryboard turns an analysis text plus style references into
// an ordered scene list.
func (c *Client) SynthesizeStoryboard(ctx context.Context, analysis, styleImage, protagonistImage, systemInstruction string) ([]graph.Scene, error) {
	if strings.TrimSpace(analysis) == "" {
		return nil, NewValidationError("generation: analysis text required")
	}
	req := storyboardRequest{
		Analysis:          analysis,
		StyleImage:        styleImage,
		ProtagonistImage:  protagonistImage,
		SystemInstruction: systemInstruction,
	}
	var resp storyboardResponse
	if err := c.postJSONWithRetry(ctx, "/v1/storyboard", req, &resp, "synthesize storyboard"); err != nil {
		return nil, err
	}
	if len(resp.Scenes) == 0 {
		return nil, errors.New("generation storyboard: empty scene list")
	}
	scenes := make([]graph.Scene, len(resp.Scenes))
	for i, scene := range resp.Scenes {
		scenes[i] = graph.Scene{
			Ref:         scene.Ref,
			Description: scene.Description,
			ImageURL:    scene.ImageURL,
			StartHint:   scene.StartHint,
		}
	}
	return scenes, nil
}

type clipRequest struct {
	SourceImage string `json:"source_image"`
	Prompt      string `json:"prompt"`
}

type clipResponse struct {
	VideoURL string `json:"video_url"`
}

// SynthesizeClip animates one source image into a short video and returns
// the playable URL.
func (c *Client) SynthesizeClip(ctx context.Context, sourceImage, prompt string) (string, error) {
	if strings.TrimSpace(sourceImage) == "" {
		return "", NewValidationError("generation: source image required")
	}
	var resp clipResponse
	if err := c.postJSONWithRetry(ctx, "/v1/clips", clipRequest{SourceImage: sourceImage, Prompt: prompt}, &resp, "synthesize clip"); err != nil {
		return "", err
	}
	videoURL := strings.TrimSpace(resp.VideoURL)
	if videoURL == "" {
		return "", errors.New("generation clip: empty video url")
	}
	return videoURL, nil
}

func (c *Client) postJSONWithRetry(ctx context.Context, path string, payload, target any, op string) error {
	attempts := c.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.postJSONOnce(ctx, path, payload, target)
		if err == nil {
			return nil
		}

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) postJSONOnce(ctx context.Context, path string, payload, target any) error {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, path)
	if err != nil {
		return fmt.Errorf("generation request: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("generation request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("generation request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("generation request: http error (timeout=%s): %w", c.timeoutDuration(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("generation request: read body: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: http %d", ErrUnauthorized, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("generation request: decode response: %w", err)
	}
	return nil
}

func (c *Client) timeoutDuration() time.Duration {
	if c == nil || c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	if errors.Is(err, ErrUnauthorized) || IsValidation(err) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		if !retryableStatus(statusErr.StatusCode) {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return c.capDelay(statusErr.RetryAfter), true
		}
		return c.backoffDelay(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return c.backoffDelay(attempt), true
	}

	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := defaultRetryBaseDelay
	maxDelay := defaultRetryMaxDelay
	if c != nil {
		if c.retryBaseDelay >= 0 {
			base = c.retryBaseDelay
		}
		if c.retryMaxDelay > 0 {
			maxDelay = c.retryMaxDelay
		}
	}
	if base <= 0 {
		return 0
	}

	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := defaultRetryMaxDelay
	if c != nil && c.retryMaxDelay > 0 {
		maxDelay = c.retryMaxDelay
	}
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx == nil {
		return errors.New("generation retry: nil context")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c != nil && c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
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

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
