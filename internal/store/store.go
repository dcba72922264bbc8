// Package store persists model artifacts and recommendation history on local
// storage: JSON files in a directory, or a SQLite database.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-matcher/internal/model"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// ErrNotFound is returned when no artifact exists under the requested name.
var ErrNotFound = errors.New("not found")

// RecommendationRecord is one generated recommendation, kept for later learning.
type RecommendationRecord struct {
	ID             uuid.UUID              `json:"id"`
	CandidateID    string                 `json:"candidate_id"`
	JobID          string                 `json:"job_id"`
	PassPercentage float64                `json:"pass_percentage"`
	BasePercentage float64                `json:"base_percentage"`
	Rank           int                    `json:"rank"`
	Percentile     float64                `json:"percentile"`
	Tier           types.SubscriptionTier `json:"subscription_tier"`
	ModelVersion   string                 `json:"model_version,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// NewRecommendationRecord builds a record from a recommendation bundle.
func NewRecommendationRecord(rec *types.Recommendation) RecommendationRecord {
	return RecommendationRecord{
		ID:             uuid.New(),
		CandidateID:    rec.CandidateID,
		JobID:          rec.JobID,
		PassPercentage: rec.PassPercentage,
		BasePercentage: rec.BasePercentage,
		Rank:           rec.Ranking.Rank,
		Percentile:     rec.Ranking.Percentile,
		Tier:           rec.Tier,
		ModelVersion:   rec.Prediction.ModelVersion,
		CreatedAt:      time.Now().UTC(),
	}
}

// DefaultListLimit caps listings when the caller passes a limit below 1.
const DefaultListLimit = 50

// ArtifactVersion is a lightweight view of a stored artifact for listing.
type ArtifactVersion struct {
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	Samples   int       `json:"samples"`
	Accuracy  float64   `json:"accuracy"`
}

// RecommendationLog records generated recommendations.
type RecommendationLog interface {
	RecordRecommendation(ctx context.Context, rec RecommendationRecord) error
}

// Inventory reports what a backend holds. An empty candidateID matches every
// candidate. Listings are newest first.
type Inventory interface {
	ListArtifactVersions(ctx context.Context, name string, limit int) ([]ArtifactVersion, error)
	ListRecommendations(ctx context.Context, candidateID string, limit int) ([]RecommendationRecord, error)
	CountRecommendations(ctx context.Context, candidateID string) (int, error)
}

// JobCatalog lists the jobs a backend knows about.
type JobCatalog interface {
	ListJobs(ctx context.Context) ([]*types.JobRequirement, error)
}

// Backend is a complete persistence backend for the engine.
type Backend interface {
	model.Store
	RecommendationLog
	Inventory
	Close() error
}
