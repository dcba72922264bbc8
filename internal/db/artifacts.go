package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/candidate-matcher/internal/model"
	"github.com/jonathan/candidate-matcher/internal/store"
	"github.com/jonathan/candidate-matcher/internal/types"
)

var _ store.Backend = (*DB)(nil)

// -----------------------------------------------------------------------------
// Model Artifact Methods
// -----------------------------------------------------------------------------

// SaveArtifact stores a trained model artifact, replacing the same name and version
func (db *DB) SaveArtifact(ctx context.Context, a *model.Artifact) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO model_artifacts (name, version, trained_at, samples, accuracy, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (name, version) DO UPDATE
		 SET trained_at = $3, samples = $4, accuracy = $5, payload = $6, created_at = NOW()`,
		a.Name, a.Version, a.TrainedAt, a.Samples, a.Accuracy, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s@%s: %w", a.Name, a.Version, err)
	}
	return nil
}

// LoadArtifact retrieves the most recently trained artifact with the given name
func (db *DB) LoadArtifact(ctx context.Context, name string) (*model.Artifact, error) {
	var payload []byte
	err := db.pool.QueryRow(ctx,
		`SELECT payload FROM model_artifacts WHERE name = $1
		 ORDER BY trained_at DESC, created_at DESC LIMIT 1`,
		name,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("artifact %s: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load artifact %s: %w", name, err)
	}
	return decodeArtifact(name, payload)
}

// ListArtifactVersions returns stored versions of a model, newest first
func (db *DB) ListArtifactVersions(ctx context.Context, name string, limit int) ([]store.ArtifactVersion, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT version, trained_at, samples, accuracy FROM model_artifacts
		 WHERE name = $1 ORDER BY trained_at DESC LIMIT $2`,
		name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifact versions: %w", err)
	}
	defer rows.Close()

	var versions []store.ArtifactVersion
	for rows.Next() {
		var v store.ArtifactVersion
		if err := rows.Scan(&v.Version, &v.TrainedAt, &v.Samples, &v.Accuracy); err != nil {
			return nil, fmt.Errorf("failed to scan artifact version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func decodeArtifact(name string, payload []byte) (*model.Artifact, error) {
	var a model.Artifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", name, err)
	}
	return &a, nil
}

// -----------------------------------------------------------------------------
// Recommendation Log Methods
// -----------------------------------------------------------------------------

// RecordRecommendation inserts a generated recommendation
func (db *DB) RecordRecommendation(ctx context.Context, rec store.RecommendationRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO recommendations
		 (id, candidate_id, job_id, pass_percentage, base_percentage, rank, percentile, tier, model_version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)`,
		rec.ID, rec.CandidateID, rec.JobID, rec.PassPercentage, rec.BasePercentage,
		rec.Rank, rec.Percentile, rec.Tier.String(), rec.ModelVersion, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record recommendation: %w", err)
	}
	return nil
}

// ListRecommendations returns the most recent recommendations, for one
// candidate or for everyone when candidateID is empty
func (db *DB) ListRecommendations(ctx context.Context, candidateID string, limit int) ([]store.RecommendationRecord, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, candidate_id, job_id, pass_percentage, base_percentage, rank, percentile,
		        tier, COALESCE(model_version, ''), created_at
		 FROM recommendations WHERE ($1 = '' OR candidate_id = $1)
		 ORDER BY created_at DESC LIMIT $2`,
		candidateID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var records []store.RecommendationRecord
	for rows.Next() {
		var r store.RecommendationRecord
		var tier string
		if err := rows.Scan(&r.ID, &r.CandidateID, &r.JobID, &r.PassPercentage, &r.BasePercentage,
			&r.Rank, &r.Percentile, &tier, &r.ModelVersion, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		r.Tier = types.ParseSubscriptionTier(tier)
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountRecommendations returns how many recommendations were recorded, for one
// candidate or for everyone when candidateID is empty
func (db *DB) CountRecommendations(ctx context.Context, candidateID string) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM recommendations WHERE ($1 = '' OR candidate_id = $1)`,
		candidateID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count recommendations: %w", err)
	}
	return n, nil
}
