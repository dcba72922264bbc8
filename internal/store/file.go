package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/jonathan/candidate-matcher/internal/model"
)

const (
	latestFile          = "latest"
	recommendationsFile = "recommendations.jsonl"
)

var safeName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileStore keeps each artifact as <dir>/<name>/<version>.json with a "latest"
// file naming the current version, and appends recommendations to a JSON-lines log.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates dir if needed and returns a FileStore rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// SaveArtifact writes the artifact and marks it as the latest version.
func (s *FileStore) SaveArtifact(_ context.Context, a *model.Artifact) error {
	if !safeName.MatchString(a.Name) || !safeName.MatchString(a.Version) {
		return fmt.Errorf("invalid artifact name or version: %q@%q", a.Name, a.Version)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	modelDir := filepath.Join(s.dir, a.Name)
	if err := os.MkdirAll(modelDir, 0750); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(modelDir, a.Version+".json"), data); err != nil {
		return fmt.Errorf("failed to write artifact %s@%s: %w", a.Name, a.Version, err)
	}
	if err := writeFileAtomic(filepath.Join(modelDir, latestFile), []byte(a.Version)); err != nil {
		return fmt.Errorf("failed to update latest pointer for %s: %w", a.Name, err)
	}
	return nil
}

// LoadArtifact reads the latest version of the named artifact.
func (s *FileStore) LoadArtifact(_ context.Context, name string) (*model.Artifact, error) {
	if !safeName.MatchString(name) {
		return nil, fmt.Errorf("invalid artifact name: %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	modelDir := filepath.Join(s.dir, name)
	version, err := os.ReadFile(filepath.Join(modelDir, latestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("artifact %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read latest pointer for %s: %w", name, err)
	}

	data, err := os.ReadFile(filepath.Join(modelDir, string(version)+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("artifact %s@%s: %w", name, version, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read artifact %s@%s: %w", name, version, err)
	}

	var a model.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s@%s: %w", name, version, err)
	}
	return &a, nil
}

// ListArtifactVersions returns the stored versions of the named artifact,
// most recently trained first.
func (s *FileStore) ListArtifactVersions(_ context.Context, name string, limit int) ([]ArtifactVersion, error) {
	if !safeName.MatchString(name) {
		return nil, fmt.Errorf("invalid artifact name: %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	modelDir := filepath.Join(s.dir, name)
	entries, err := os.ReadDir(modelDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list artifact versions: %w", err)
	}

	var versions []ArtifactVersion
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(modelDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read artifact %s: %w", e.Name(), err)
		}
		var a model.Artifact
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("failed to parse artifact %s: %w", e.Name(), err)
		}
		versions = append(versions, ArtifactVersion{
			Version:   a.Version,
			TrainedAt: a.TrainedAt,
			Samples:   a.Samples,
			Accuracy:  a.Accuracy,
		})
	}

	sort.Slice(versions, func(i, j int) bool {
		if !versions[i].TrainedAt.Equal(versions[j].TrainedAt) {
			return versions[i].TrainedAt.After(versions[j].TrainedAt)
		}
		return versions[i].Version > versions[j].Version
	})
	if limit < 1 {
		limit = DefaultListLimit
	}
	return versions[:min(len(versions), limit)], nil
}

// ListRecommendations returns the most recent recommendations from the log.
func (s *FileStore) ListRecommendations(_ context.Context, candidateID string, limit int) ([]RecommendationRecord, error) {
	records, err := s.readRecommendations(candidateID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit < 1 {
		limit = DefaultListLimit
	}
	return records[:min(len(records), limit)], nil
}

// CountRecommendations returns how many recommendations the log holds.
func (s *FileStore) CountRecommendations(_ context.Context, candidateID string) (int, error) {
	records, err := s.readRecommendations(candidateID)
	return len(records), err
}

func (s *FileStore) readRecommendations(candidateID string) ([]RecommendationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(filepath.Join(s.dir, recommendationsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open recommendations log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []RecommendationRecord
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec RecommendationRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("failed to parse recommendations log line %d: %w", line, err)
		}
		if candidateID == "" || rec.CandidateID == candidateID {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recommendations log: %w", err)
	}
	return records, nil
}

// RecordRecommendation appends rec to the recommendations log.
func (s *FileStore) RecordRecommendation(_ context.Context, rec RecommendationRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(s.dir, recommendationsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("failed to open recommendations log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append recommendation: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0640); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
