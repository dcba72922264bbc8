package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/candidate-matcher/internal/store"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// TrainingSet is the labelled history the predictive model learns from.
// Applications reference profiles and jobs by ID.
type TrainingSet struct {
	Applications []types.Application
	Profiles     map[string]*types.CandidateProfile
	Jobs         map[string]*types.JobRequirement
}

// -----------------------------------------------------------------------------
// Candidate and Job Documents
// -----------------------------------------------------------------------------

// SaveCandidate upserts a candidate profile document
func (db *DB) SaveCandidate(ctx context.Context, p *types.CandidateProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO candidates (id, document) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET document = $2, updated_at = NOW()`,
		p.ID, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save candidate %s: %w", p.ID, err)
	}
	return nil
}

// GetCandidate retrieves a candidate profile by ID
func (db *DB) GetCandidate(ctx context.Context, id string) (*types.CandidateProfile, error) {
	var doc []byte
	err := db.pool.QueryRow(ctx, `SELECT document FROM candidates WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("candidate %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	var p types.CandidateProfile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("failed to parse candidate %s: %w", id, err)
	}
	return p.Normalized(), nil
}

// SaveJob upserts a job requirement document
func (db *DB) SaveJob(ctx context.Context, j *types.JobRequirement) error {
	if err := j.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO jobs (id, document) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET document = $2, updated_at = NOW()`,
		j.ID, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", j.ID, err)
	}
	return nil
}

// GetJob retrieves a job requirement by ID
func (db *DB) GetJob(ctx context.Context, id string) (*types.JobRequirement, error) {
	var doc []byte
	err := db.pool.QueryRow(ctx, `SELECT document FROM jobs WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	var j types.JobRequirement
	if err := json.Unmarshal(doc, &j); err != nil {
		return nil, fmt.Errorf("failed to parse job %s: %w", id, err)
	}
	return j.Normalized(), nil
}

// ListJobs returns the whole job catalog ordered by ID
func (db *DB) ListJobs(ctx context.Context) ([]*types.JobRequirement, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, document FROM jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*types.JobRequirement
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		var j types.JobRequirement
		if err := json.Unmarshal(doc, &j); err != nil {
			return nil, fmt.Errorf("failed to parse job %s: %w", id, err)
		}
		jobs = append(jobs, j.Normalized())
	}
	return jobs, rows.Err()
}

// -----------------------------------------------------------------------------
// Application History
// -----------------------------------------------------------------------------

// SaveApplication upserts the outcome of a candidate's application to a job
func (db *DB) SaveApplication(ctx context.Context, app types.Application) (string, error) {
	if app.CandidateID == "" || app.JobID == "" {
		return "", fmt.Errorf("application requires candidate and job IDs")
	}
	if app.Status == "" {
		app.Status = types.StatusPending
	}
	var id string
	err := db.pool.QueryRow(ctx,
		`INSERT INTO applications (candidate_id, job_id, status) VALUES ($1, $2, $3)
		 ON CONFLICT (candidate_id, job_id) DO UPDATE SET status = $3, updated_at = NOW()
		 RETURNING id::text`,
		app.CandidateID, app.JobID, string(app.Status),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to save application: %w", err)
	}
	return id, nil
}

// ListLabelledApplications returns accepted and rejected applications, oldest first
func (db *DB) ListLabelledApplications(ctx context.Context) ([]types.Application, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id::text, candidate_id, job_id, status FROM applications
		 WHERE status IN ($1, $2) ORDER BY created_at ASC`,
		string(types.StatusAccepted), string(types.StatusRejected),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []types.Application
	for rows.Next() {
		var a types.Application
		var status string
		if err := rows.Scan(&a.ID, &a.CandidateID, &a.JobID, &status); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		a.Status = types.ParseApplicationStatus(status)
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// LoadTrainingSet loads labelled applications together with the profiles and
// jobs they reference. Applications whose documents are missing are dropped.
func (db *DB) LoadTrainingSet(ctx context.Context) (*TrainingSet, error) {
	apps, err := db.ListLabelledApplications(ctx)
	if err != nil {
		return nil, err
	}

	set := &TrainingSet{
		Profiles: make(map[string]*types.CandidateProfile),
		Jobs:     make(map[string]*types.JobRequirement),
	}
	for _, app := range apps {
		if _, ok := set.Profiles[app.CandidateID]; !ok {
			p, err := db.GetCandidate(ctx, app.CandidateID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			set.Profiles[app.CandidateID] = p
		}
		if _, ok := set.Jobs[app.JobID]; !ok {
			j, err := db.GetJob(ctx, app.JobID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			set.Jobs[app.JobID] = j
		}
		if set.Profiles[app.CandidateID] != nil && set.Jobs[app.JobID] != nil {
			set.Applications = append(set.Applications, app)
		}
	}

	// drop nil placeholders for missing documents
	for id, p := range set.Profiles {
		if p == nil {
			delete(set.Profiles, id)
		}
	}
	for id, j := range set.Jobs {
		if j == nil {
			delete(set.Jobs, id)
		}
	}
	return set, nil
}
