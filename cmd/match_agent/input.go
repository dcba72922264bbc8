package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/candidate-matcher/internal/schemas"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// TrainingSetFile is the on-disk training set layout.
type TrainingSetFile struct {
	Applications []types.Application       `json:"applications"`
	Profiles     []*types.CandidateProfile `json:"profiles"`
	Jobs         []*types.JobRequirement   `json:"jobs"`
}

// readDocument reads path, validates it against the named schema and decodes it
// into v. With each set the file must hold an array of documents.
func readDocument(path, schema string, each bool, v any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	validate := schemas.Validate
	if each {
		validate = schemas.ValidateEach
	}
	if err := validate(schema, content); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

func readProfile(path string) (*types.CandidateProfile, error) {
	var p types.CandidateProfile
	if err := readDocument(path, schemas.CandidateProfile, false, &p); err != nil {
		return nil, err
	}
	return p.Normalized(), nil
}

func readJob(path string) (*types.JobRequirement, error) {
	var j types.JobRequirement
	if err := readDocument(path, schemas.JobRequirement, false, &j); err != nil {
		return nil, err
	}
	return j.Normalized(), nil
}

// readProfiles reads a JSON array of profiles. An empty path yields none.
func readProfiles(path string) ([]*types.CandidateProfile, error) {
	if path == "" {
		return nil, nil
	}
	var out []*types.CandidateProfile
	if err := readDocument(path, schemas.CandidateProfile, true, &out); err != nil {
		return nil, err
	}
	types.NormalizeProfiles(out)
	return out, nil
}

// readJobs reads a JSON array of jobs. An empty path yields none.
func readJobs(path string) ([]*types.JobRequirement, error) {
	if path == "" {
		return nil, nil
	}
	var out []*types.JobRequirement
	if err := readDocument(path, schemas.JobRequirement, true, &out); err != nil {
		return nil, err
	}
	types.NormalizeJobs(out)
	return out, nil
}

func readTrainingSet(path string) (*TrainingSetFile, error) {
	var ts TrainingSetFile
	if err := readDocument(path, schemas.TrainingSet, false, &ts); err != nil {
		return nil, err
	}
	types.NormalizeProfiles(ts.Profiles)
	types.NormalizeJobs(ts.Jobs)
	return &ts, nil
}

// index keys profiles and jobs by ID.
func (ts *TrainingSetFile) index() (map[string]*types.CandidateProfile, map[string]*types.JobRequirement) {
	profiles := make(map[string]*types.CandidateProfile, len(ts.Profiles))
	for _, p := range ts.Profiles {
		profiles[p.ID] = p
	}
	jobs := make(map[string]*types.JobRequirement, len(ts.Jobs))
	for _, j := range ts.Jobs {
		jobs[j.ID] = j
	}
	return profiles, jobs
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	out = append(out, '\n')

	if path == "" {
		_, err = os.Stdout.Write(out)
		return err
	}

	// Ensure output directory exists
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

// tierFor returns the explicit tier, or the candidate's own.
func tierFor(explicit string, candidate *types.CandidateProfile) types.SubscriptionTier {
	if explicit != "" {
		return types.ParseSubscriptionTier(explicit)
	}
	return candidate.Subscription
}
