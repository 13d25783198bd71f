// Package model defines the shared domain types.
package model

import "time"

// Money represents a price amount in a specific currency.
type Money struct {
	CurrencyCode string `json:"currency_code"`
	Units        int64  `json:"units"`
	Nanos        int32  `json:"nanos"`
}

// ProductSnapshot captures a product's catalog attributes at job creation
// time. A generated ad reflects the catalog state at submission, never a
// later one, so a snapshot is immutable once taken.
type ProductSnapshot struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Picture     string   `json:"picture"`
	Price       Money    `json:"price_usd"`
	Categories  []string `json:"categories"`
}

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

// Job lifecycle states. NotFound is a virtual state returned for unknown
// job ids; it is never stored.
const (
	StatusStarting   JobStatus = "starting"
	StatusGenerating JobStatus = "generating"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusNotFound   JobStatus = "not_found"
)

// Terminal reports whether the status allows no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobView is the externally visible state of a job.
type JobView struct {
	JobID         string           `json:"job_id"`
	Status        JobStatus        `json:"status"`
	Product       *ProductSnapshot `json:"product,omitempty"`
	VideoFilename string           `json:"video_filename,omitempty"`
	Error         string           `json:"error,omitempty"`
	CreatedAt     time.Time        `json:"created_at,omitzero"`
}
