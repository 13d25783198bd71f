package jobs

import (
	"sync"
	"time"

	"adforge/pkg/model"
)

// Job tracks one video generation request through its lifecycle.
//
// Outside the starting state exactly one of handle, videoFilename or
// errDetail is set. A completed or failed job is terminal and never
// mutated again.
type Job struct {
	mu sync.Mutex

	id            string
	status        model.JobStatus
	product       *model.ProductSnapshot
	prompt        string
	handle        Handle
	videoFilename string
	errDetail     string
	createdAt     time.Time
}

func newJob(id string) *Job {
	return &Job{
		id:        id,
		status:    model.StatusStarting,
		createdAt: time.Now(),
	}
}

// generatingLocked records the submitted operation handle.
func (j *Job) generatingLocked(h Handle) {
	j.status = model.StatusGenerating
	j.handle = h
}

// failLocked moves the job to its terminal failed state.
func (j *Job) failLocked(err error) {
	j.status = model.StatusFailed
	j.errDetail = err.Error()
	j.handle = nil
}

// completeLocked moves the job to its terminal completed state.
func (j *Job) completeLocked(videoFilename string) {
	j.status = model.StatusCompleted
	j.videoFilename = videoFilename
	j.handle = nil
}

func (j *Job) viewLocked() model.JobView {
	return model.JobView{
		JobID:         j.id,
		Status:        j.status,
		Product:       j.product,
		VideoFilename: j.videoFilename,
		Error:         j.errDetail,
		CreatedAt:     j.createdAt,
	}
}
