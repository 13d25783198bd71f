// Package veo drives the long-running video generation operation on the
// Gemini API.
package veo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/iterator"
	"google.golang.org/genai"

	"adforge/pkg/config"
	"adforge/pkg/jobs"
	"adforge/pkg/picture"
)

// Client implements jobs.Generator against the Veo models.
type Client struct {
	genaiClient *genai.Client
	model       string
	aspectRatio string
	resolution  string
}

// NewClient creates a Veo client from config.
func NewClient(ctx context.Context, cfg config.VeoConfig) (*Client, error) {
	if cfg.Key == "" {
		return nil, errors.New("veo: API key is required (set GEMINI_API_KEY)")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.Key})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := &Client{
		genaiClient: gc,
		model:       cfg.Model,
		aspectRatio: cfg.AspectRatio,
		resolution:  cfg.Resolution,
	}

	if err := c.validateModel(ctx); err != nil {
		slog.Warn("Veo model validation failed (proceeding anyway)", "error", err)
		// Startup continues even if the API is flaky or rate-limited; a truly
		// invalid key or model surfaces on the first submission instead.
	}

	return c, nil
}

// Submit starts a generation operation and returns its handle.
func (c *Client) Submit(ctx context.Context, promptText string, img *picture.Image) (jobs.Handle, error) {
	var image *genai.Image
	if img != nil {
		image = &genai.Image{ImageBytes: img.Bytes, MIMEType: img.MIMEType}
	}

	op, err := c.genaiClient.Models.GenerateVideos(ctx, c.model, promptText, image, &genai.GenerateVideosConfig{
		AspectRatio:    c.aspectRatio,
		Resolution:     c.resolution,
		NumberOfVideos: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate videos: %w", err)
	}
	return op, nil
}

// Poll checks the operation once and returns its refreshed state.
func (c *Client) Poll(ctx context.Context, h jobs.Handle) (jobs.PollResult, error) {
	op, err := c.operation(h)
	if err != nil {
		return jobs.PollResult{}, err
	}

	op, err = c.genaiClient.Operations.GetVideosOperation(ctx, op, nil)
	if err != nil {
		return jobs.PollResult{}, fmt.Errorf("get operation: %w", err)
	}
	if op.Error != nil {
		return jobs.PollResult{}, fmt.Errorf("operation failed: %v", op.Error)
	}

	res := jobs.PollResult{Done: op.Done, Handle: op}
	if op.Done && op.Response != nil && len(op.Response.GeneratedVideos) > 0 &&
		op.Response.GeneratedVideos[0].Video != nil {
		res.HasVideo = true
	}
	return res, nil
}

// Download fetches the finished video's bytes.
func (c *Client) Download(ctx context.Context, h jobs.Handle) ([]byte, error) {
	op, err := c.operation(h)
	if err != nil {
		return nil, err
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, errors.New("operation has no video to download")
	}

	vid := op.Response.GeneratedVideos[0].Video
	if _, err := c.genaiClient.Files.Download(ctx, vid, nil); err != nil {
		return nil, fmt.Errorf("download video: %w", err)
	}
	if len(vid.VideoBytes) == 0 {
		return nil, errors.New("downloaded video is empty")
	}
	return vid.VideoBytes, nil
}

func (c *Client) operation(h jobs.Handle) (*genai.GenerateVideosOperation, error) {
	op, ok := h.(*genai.GenerateVideosOperation)
	if !ok {
		return nil, fmt.Errorf("unexpected operation handle type %T", h)
	}
	return op, nil
}

// validateModel checks if the configured model is available for the API key.
func (c *Client) validateModel(ctx context.Context) error {
	name := c.model
	if !strings.HasPrefix(name, "models/") {
		name = "models/" + name
	}

	_, err := c.genaiClient.Models.Get(ctx, name, nil)
	if err == nil {
		slog.Debug("Veo model validation success", "model", c.model)
		return nil
	}

	slog.Warn("Veo model validation failed, fetching available models...", "model", c.model, "error", err)

	iter, listErr := c.genaiClient.Models.List(ctx, nil)
	if listErr != nil {
		slog.Warn("Failed to list models for recovery", "error", listErr)
		return nil
	}

	var available []string
	for {
		resp, nextErr := iter.Next(ctx)
		if nextErr == iterator.Done {
			break
		}
		if nextErr != nil {
			break
		}
		if strings.Contains(strings.ToLower(resp.Name), "veo") {
			available = append(available, resp.Name)
		}
	}

	slog.Error("Configured model not found", "configured", c.model)
	for _, m := range available {
		slog.Error("Available model: " + m)
	}

	return nil // lazy validation, the first generation call reports the real error
}
