package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-matcher/internal/model"
	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact(name string, trainedAt time.Time) *model.Artifact {
	return &model.Artifact{
		Name:      name,
		Version:   uuid.New().String(),
		TrainedAt: trainedAt,
		Weights:   []float64{0.5, 0.3, 0.1},
		Bias:      -0.2,
		Scaler:    model.Scaler{Mean: []float64{50, 50, 50}, Std: []float64{10, 10, 10}},
		Samples:   12,
		Positives: 5,
		Accuracy:  0.83,
	}
}

func testRecord() RecommendationRecord {
	return NewRecommendationRecord(&types.Recommendation{
		CandidateID:    "cand_1",
		JobID:          "job_1",
		PassPercentage: 78,
		BasePercentage: 65,
		Tier:           types.Tier2,
		Ranking:        types.RankingResult{Rank: 2, Percentile: 75},
	})
}

// backends returns every local backend, each in its own temp dir.
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "models"))
	require.NoError(t, err)
	sqliteStore, err := OpenSQLite(filepath.Join(t.TempDir(), "matcher.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })
	return map[string]Backend{"file": fileStore, "sqlite": sqliteStore}
}

func TestBackend_SaveAndLoadLatest(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			older := testArtifact("pass-likelihood", time.Now().Add(-time.Hour).UTC())
			newer := testArtifact("pass-likelihood", time.Now().UTC())

			require.NoError(t, b.SaveArtifact(ctx, older))
			require.NoError(t, b.SaveArtifact(ctx, newer))

			got, err := b.LoadArtifact(ctx, "pass-likelihood")
			require.NoError(t, err)
			assert.Equal(t, newer.Version, got.Version)
			assert.Equal(t, newer.Weights, got.Weights)
			assert.Equal(t, newer.Scaler, got.Scaler)
			assert.Equal(t, 12, got.Samples)
			require.NoError(t, got.Validate())
		})
	}
}

func TestBackend_LoadLatest_SubSecondTrainingTimes(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			whole := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
			older := testArtifact("pass-likelihood", whole)
			newer := testArtifact("pass-likelihood", whole.Add(500*time.Millisecond))

			require.NoError(t, b.SaveArtifact(ctx, older))
			require.NoError(t, b.SaveArtifact(ctx, newer))

			got, err := b.LoadArtifact(ctx, "pass-likelihood")
			require.NoError(t, err)
			assert.Equal(t, newer.Version, got.Version)

			versions, err := b.ListArtifactVersions(ctx, "pass-likelihood", 0)
			require.NoError(t, err)
			require.Len(t, versions, 2)
			assert.Equal(t, newer.Version, versions[0].Version)
			assert.True(t, versions[0].TrainedAt.Equal(newer.TrainedAt))
			assert.Equal(t, older.Version, versions[1].Version)

			versions, err = b.ListArtifactVersions(ctx, "pass-likelihood", 1)
			require.NoError(t, err)
			assert.Len(t, versions, 1)
		})
	}
}

func TestBackend_Inventory(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			n, err := b.CountRecommendations(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, 0, n)
			versions, err := b.ListArtifactVersions(ctx, "absent", 0)
			require.NoError(t, err)
			assert.Empty(t, versions)

			first := testRecord()
			first.CreatedAt = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
			second := testRecord()
			second.CreatedAt = first.CreatedAt.Add(time.Minute)
			other := testRecord()
			other.CandidateID = "cand_2"
			for _, rec := range []RecommendationRecord{first, second, other} {
				require.NoError(t, b.RecordRecommendation(ctx, rec))
			}

			n, err = b.CountRecommendations(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, 3, n)
			n, err = b.CountRecommendations(ctx, "cand_1")
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			records, err := b.ListRecommendations(ctx, "cand_1", 10)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, second.ID, records[0].ID)
			assert.Equal(t, first.ID, records[1].ID)
			assert.Equal(t, types.Tier2, records[0].Tier)
			assert.Equal(t, 2, records[0].Rank)
		})
	}
}

func TestBackend_LoadMissing(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.LoadArtifact(context.Background(), "absent")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBackend_RecordRecommendation(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.RecordRecommendation(context.Background(), testRecord()))
			require.NoError(t, b.RecordRecommendation(context.Background(), testRecord()))
		})
	}
}

func TestBackend_WorksAsModelStore(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a := testArtifact("m", time.Now().UTC())
			require.NoError(t, b.SaveArtifact(ctx, a))

			p := model.NewPredictor("m", b, model.DefaultTrainConfig(), nil)
			require.NoError(t, p.Load(ctx))
			assert.Equal(t, a.Version, p.Current().Version)
		})
	}
}

func TestFileStore_LayoutAndLog(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	a := testArtifact("m", time.Now().UTC())
	require.NoError(t, s.SaveArtifact(ctx, a))

	latest, err := os.ReadFile(filepath.Join(dir, "m", "latest"))
	require.NoError(t, err)
	assert.Equal(t, a.Version, string(latest))

	versions, err := s.ListArtifactVersions(ctx, "m", 0)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, a.Version, versions[0].Version)

	require.NoError(t, s.RecordRecommendation(ctx, testRecord()))
	require.NoError(t, s.RecordRecommendation(ctx, testRecord()))
	data, err := os.ReadFile(filepath.Join(dir, "recommendations.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"subscription_tier":"Tier2"`)
}

func TestFileStore_RejectsUnsafeNames(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	a := testArtifact("../escape", time.Now())
	assert.Error(t, s.SaveArtifact(context.Background(), a))
	_, err = s.LoadArtifact(context.Background(), "../escape")
	assert.Error(t, err)
}

func TestSQLiteStore_CreatesNestedPath(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "matcher.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	require.NoError(t, s.RecordRecommendation(ctx, testRecord()))

	n, err := s.CountRecommendations(ctx, "cand_1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.CountRecommendations(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
