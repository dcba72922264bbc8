package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-matcher/internal/model"
	"github.com/jonathan/candidate-matcher/internal/types"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps artifacts and recommendation history in a SQLite database.
// Timestamps are stored as Unix nanoseconds.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS model_artifacts (
		name       TEXT NOT NULL,
		version    TEXT NOT NULL,
		trained_at INTEGER NOT NULL,
		samples    INTEGER NOT NULL,
		accuracy   REAL NOT NULL,
		payload    TEXT NOT NULL,
		PRIMARY KEY (name, version)
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS recommendations (
		id              TEXT PRIMARY KEY,
		candidate_id    TEXT NOT NULL,
		job_id          TEXT NOT NULL,
		pass_percentage REAL NOT NULL,
		base_percentage REAL NOT NULL,
		rank            INTEGER NOT NULL,
		percentile      REAL NOT NULL,
		tier            TEXT NOT NULL,
		model_version   TEXT,
		created_at      INTEGER NOT NULL
	)`)
	return err
}

// SaveArtifact inserts the artifact, replacing an identical name and version.
func (s *SQLiteStore) SaveArtifact(ctx context.Context, a *model.Artifact) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO model_artifacts (name, version, trained_at, samples, accuracy, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.Name, a.Version, a.TrainedAt.UnixNano(), a.Samples, a.Accuracy, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s@%s: %w", a.Name, a.Version, err)
	}
	return nil
}

// LoadArtifact returns the most recently trained artifact with the given name.
func (s *SQLiteStore) LoadArtifact(ctx context.Context, name string) (*model.Artifact, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM model_artifacts WHERE name = ?
		 ORDER BY trained_at DESC, rowid DESC LIMIT 1`,
		name,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("artifact %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load artifact %s: %w", name, err)
	}

	var a model.Artifact
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", name, err)
	}
	return &a, nil
}

// RecordRecommendation inserts rec into the recommendations table.
func (s *SQLiteStore) RecordRecommendation(ctx context.Context, rec RecommendationRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recommendations
		 (id, candidate_id, job_id, pass_percentage, base_percentage, rank, percentile, tier, model_version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.CandidateID, rec.JobID, rec.PassPercentage, rec.BasePercentage,
		rec.Rank, rec.Percentile, rec.Tier.String(), rec.ModelVersion, rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record recommendation: %w", err)
	}
	return nil
}

// ListArtifactVersions returns stored versions of the named artifact, most
// recently trained first.
func (s *SQLiteStore) ListArtifactVersions(ctx context.Context, name string, limit int) ([]ArtifactVersion, error) {
	if limit < 1 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT version, trained_at, samples, accuracy FROM model_artifacts
		 WHERE name = ? ORDER BY trained_at DESC, rowid DESC LIMIT ?`,
		name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifact versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var versions []ArtifactVersion
	for rows.Next() {
		var v ArtifactVersion
		var trainedAt int64
		if err := rows.Scan(&v.Version, &trainedAt, &v.Samples, &v.Accuracy); err != nil {
			return nil, fmt.Errorf("failed to scan artifact version: %w", err)
		}
		v.TrainedAt = time.Unix(0, trainedAt).UTC()
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// ListRecommendations returns the most recent recommendations.
func (s *SQLiteStore) ListRecommendations(ctx context.Context, candidateID string, limit int) ([]RecommendationRecord, error) {
	if limit < 1 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, candidate_id, job_id, pass_percentage, base_percentage, rank, percentile,
		        tier, COALESCE(model_version, ''), created_at
		 FROM recommendations WHERE (? = '' OR candidate_id = ?)
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		candidateID, candidateID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []RecommendationRecord
	for rows.Next() {
		var r RecommendationRecord
		var id, tier string
		var createdAt int64
		if err := rows.Scan(&id, &r.CandidateID, &r.JobID, &r.PassPercentage, &r.BasePercentage,
			&r.Rank, &r.Percentile, &tier, &r.ModelVersion, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid recommendation id %q: %w", id, err)
		}
		r.Tier = types.ParseSubscriptionTier(tier)
		r.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountRecommendations returns how many recommendations were recorded.
func (s *SQLiteStore) CountRecommendations(ctx context.Context, candidateID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recommendations WHERE (? = '' OR candidate_id = ?)`,
		candidateID, candidateID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count recommendations: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
