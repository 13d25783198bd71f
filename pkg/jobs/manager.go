// Package jobs owns the generation job registry and its state machine.
//
// State only moves forward when a caller asks: CheckStatus is the single
// place a generating job is polled and, on completion, its result is
// downloaded and persisted. A job nobody asks about never finishes its
// file write.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"adforge/pkg/model"
	"adforge/pkg/picture"
	"adforge/pkg/prompt"
)

// ErrEmptyResult marks an operation that finished without producing a video.
var ErrEmptyResult = errors.New("video generation completed but no videos were generated")

// Handle is an opaque reference to an in-flight external operation.
type Handle any

// PollResult is one observation of an external operation.
type PollResult struct {
	Done     bool
	HasVideo bool
	Handle   Handle // refreshed operation state, replaces the stored handle
}

// Generator is the long-running external video generation operation.
type Generator interface {
	Submit(ctx context.Context, promptText string, img *picture.Image) (Handle, error)
	Poll(ctx context.Context, h Handle) (PollResult, error)
	// Download retrieves the finished video for a handle whose poll
	// reported HasVideo.
	Download(ctx context.Context, h Handle) ([]byte, error)
}

// CatalogClient looks up product snapshots.
type CatalogClient interface {
	GetProduct(ctx context.Context, id string) (*model.ProductSnapshot, error)
}

// ImageFetcher acquires the product image for submission.
type ImageFetcher interface {
	Fetch(ctx context.Context, ref string) (*picture.Image, error)
}

// ResultStore persists finished videos.
type ResultStore interface {
	Persist(key string, data []byte) (string, error)
}

// PromptRecorder archives synthesized prompts for debugging.
type PromptRecorder interface {
	Record(jobID, promptText string)
}

// Manager owns the job registry and drives the state machine.
//
// The registry lock only guards the map; each job carries its own mutex so
// concurrent status checks for the same job serialize (the completion
// download-and-persist must happen at most once) while unrelated jobs never
// block each other.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Job

	catalog  CatalogClient
	pictures ImageFetcher
	gen      Generator
	store    ResultStore
	prompts  PromptRecorder
}

// NewManager creates a Manager. prompts may be nil.
func NewManager(catalog CatalogClient, pictures ImageFetcher, gen Generator, store ResultStore, prompts PromptRecorder) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		catalog:  catalog,
		pictures: pictures,
		gen:      gen,
		store:    store,
		prompts:  prompts,
	}
}

// Start creates a job for the product and submits the external operation.
// It returns as soon as the job reaches generating or failed; it never
// waits for the generation itself. The returned id is valid even when an
// error is returned, and the failure is also recorded on the job.
func (m *Manager) Start(ctx context.Context, productID string) (string, error) {
	id := uuid.NewString()
	job := newJob(id)

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	job.mu.Lock()
	defer job.mu.Unlock()

	product, err := m.catalog.GetProduct(ctx, productID)
	if err != nil {
		job.failLocked(err)
		return id, err
	}

	promptText := prompt.Synthesize(product)
	job.product = product
	job.prompt = promptText
	if m.prompts != nil {
		m.prompts.Record(id, promptText)
	}

	// Best effort: a missing or broken picture never blocks the job.
	img, imgErr := m.pictures.Fetch(ctx, product.Picture)
	if imgErr != nil {
		slog.Warn("Proceeding without product image", "job_id", id, "product_id", productID, "error", imgErr)
		img = nil
	}

	handle, err := m.gen.Submit(ctx, promptText, img)
	if err != nil {
		err = fmt.Errorf("failed to submit video generation: %w", err)
		job.failLocked(err)
		return id, err
	}

	job.generatingLocked(handle)
	slog.Info("Video generation started", "job_id", id, "product_id", productID, "with_image", img != nil)
	return id, nil
}

// CheckStatus returns the job's view, advancing a generating job by at most
// one poll of the external operation. Terminal jobs are returned as-is
// without contacting the operation again. Unknown ids yield a not_found
// view and leave the registry untouched.
func (m *Manager) CheckStatus(ctx context.Context, jobID string) model.JobView {
	m.mu.RLock()
	job, ok := m.jobs[jobID]
	m.mu.RUnlock()

	if !ok {
		return model.JobView{JobID: jobID, Status: model.StatusNotFound, Error: "job not found"}
	}

	job.mu.Lock()
	defer job.mu.Unlock()

	if job.status != model.StatusGenerating {
		return job.viewLocked()
	}

	res, err := m.gen.Poll(ctx, job.handle)
	if err != nil {
		job.failLocked(fmt.Errorf("failed to poll video generation: %w", err))
		slog.Error("Poll failed", "job_id", jobID, "error", err)
		return job.viewLocked()
	}
	if res.Handle != nil {
		job.handle = res.Handle
	}

	if !res.Done {
		return job.viewLocked()
	}

	if !res.HasVideo {
		job.failLocked(ErrEmptyResult)
		slog.Error("Generation finished without output", "job_id", jobID)
		return job.viewLocked()
	}

	data, err := m.gen.Download(ctx, job.handle)
	if err != nil {
		job.failLocked(fmt.Errorf("failed to download video: %w", err))
		slog.Error("Video download failed", "job_id", jobID, "error", err)
		return job.viewLocked()
	}

	filename := jobID + ".mp4"
	if _, err := m.store.Persist(filename, data); err != nil {
		job.failLocked(fmt.Errorf("failed to persist video: %w", err))
		slog.Error("Video persist failed", "job_id", jobID, "error", err)
		return job.viewLocked()
	}

	job.completeLocked(filename)
	slog.Info("Video generation completed", "job_id", jobID, "video", filename, "bytes", len(data))
	return job.viewLocked()
}
