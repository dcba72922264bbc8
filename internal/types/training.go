package types

import (
	"strings"
	"time"
)

// ApplicationStatus is the outcome of a historical application.
type ApplicationStatus string

// Application statuses. Only accepted and rejected applications are labelled.
const (
	StatusPending  ApplicationStatus = "Pending"
	StatusAccepted ApplicationStatus = "Accepted"
	StatusRejected ApplicationStatus = "Rejected"
)

// ParseApplicationStatus maps a status name case-insensitively; unknown names are Pending.
func ParseApplicationStatus(s string) ApplicationStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accepted", "hired", "approved":
		return StatusAccepted
	case "rejected", "declined":
		return StatusRejected
	default:
		return StatusPending
	}
}

// Application is a historical candidate-to-job application.
type Application struct {
	ID          string            `json:"id,omitempty"`
	CandidateID string            `json:"candidate_id" validate:"required"`
	JobID       string            `json:"job_id" validate:"required"`
	Status      ApplicationStatus `json:"status"`
}

// Label returns 1 for accepted, 0 for rejected, and false when the outcome is unknown.
func (a Application) Label() (float64, bool) {
	switch a.Status {
	case StatusAccepted:
		return 1, true
	case StatusRejected:
		return 0, true
	default:
		return 0, false
	}
}

// TrainingExample is a feature vector (skills%, experience%, education%) with a label.
type TrainingExample struct {
	Features [3]float64
	Label    float64
}

// TrainingSummary describes the outcome of a retrain request.
type TrainingSummary struct {
	Skipped      bool      `json:"skipped"`
	Reason       string    `json:"reason,omitempty"`
	ModelName    string    `json:"model_name,omitempty"`
	ModelVersion string    `json:"model_version,omitempty"`
	Samples      int       `json:"samples"`
	Positives    int       `json:"positives"`
	Accuracy     float64   `json:"accuracy,omitempty"`
	TrainedAt    time.Time `json:"trained_at,omitempty"`
	// Warning is set when the model was published but not persisted.
	Warning string `json:"warning,omitempty"`
}
