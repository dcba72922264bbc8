package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/candidate-matcher/internal/config"
	"github.com/jonathan/candidate-matcher/internal/model"
	"github.com/jonathan/candidate-matcher/internal/store"
	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memoryLog struct {
	mu      sync.Mutex
	records []store.RecommendationRecord
	err     error
}

func (m *memoryLog) RecordRecommendation(_ context.Context, rec store.RecommendationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

type staticCatalog struct {
	jobs  []*types.JobRequirement
	err   error
	calls int
}

func (c *staticCatalog) ListJobs(context.Context) ([]*types.JobRequirement, error) {
	c.calls++
	return c.jobs, c.err
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Scoring.Now = func() time.Time { return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) }
	return opts
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	svc, err := New(nil, opts)
	require.NoError(t, err)
	return svc
}

func backendJob() *types.JobRequirement {
	return &types.JobRequirement{
		ID:                "job_1",
		Title:             "Backend Developer",
		Description:       "Build Python services with Django and PostgreSQL.",
		RequiredSkills:    []string{"Python", "Django", "PostgreSQL"},
		RequiredYears:     3,
		RequiredEducation: types.DegreeBachelor,
	}
}

func strongProfile(id string) *types.CandidateProfile {
	return &types.CandidateProfile{
		ID:     id,
		Skills: []string{"Python", "Django", "PostgreSQL"},
		Experience: []types.Experience{
			{Title: "Backend Developer", StartDate: types.NewDate(2018, time.January, 1), EndDate: types.NewDate(2023, time.January, 1)},
		},
		Education:  []types.Education{{Level: types.DegreeBachelor, FieldOfStudy: "Computer Science"}},
		ResumeText: "Backend developer building Python services with Django and PostgreSQL.",
	}
}

func weakProfile(id string) *types.CandidateProfile {
	return &types.CandidateProfile{ID: id}
}

// trainingData has four accepted strong candidates and four rejected empty ones.
func trainingData() ([]types.Application, map[string]*types.CandidateProfile, map[string]*types.JobRequirement) {
	profiles := map[string]*types.CandidateProfile{}
	var apps []types.Application
	for i := range 4 {
		strong, weak := fmt.Sprintf("strong_%d", i), fmt.Sprintf("weak_%d", i)
		profiles[strong] = strongProfile(strong)
		profiles[weak] = weakProfile(weak)
		apps = append(apps,
			types.Application{CandidateID: strong, JobID: "job_1", Status: types.StatusAccepted},
			types.Application{CandidateID: weak, JobID: "job_1", Status: types.StatusRejected},
		)
	}
	return apps, profiles, map[string]*types.JobRequirement{"job_1": backendJob()}
}

func TestNew_InvalidWeights(t *testing.T) {
	opts := DefaultOptions()
	opts.Scoring.Weights.Skills = 0.9

	_, err := New(nil, opts)
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Scoring.ExtraSkills = []string{"elixir"}
	cfg.Recommend.Limit = 3
	cfg.Recommend.PremiumSalaryThreshold = 50000
	cfg.Scoring.Concurrency = 2

	opts := OptionsFromConfig(&cfg)

	assert.Equal(t, 3, opts.RecommendLimit)
	assert.Equal(t, 2, opts.Concurrency)
	assert.Equal(t, 50000.0, opts.Recommend.Classifier.SalaryThreshold)
	assert.Contains(t, opts.Scoring.Extractor.Vocabulary(), "elixir")
	assert.Contains(t, opts.Scoring.Extractor.Vocabulary(), "python")
}

func TestService_NilInputs(t *testing.T) {
	svc := newTestService(t, testOptions())
	ctx := context.Background()
	job := backendJob()
	profile := strongProfile("c1")

	_, err := svc.Score(ctx, nil, job, types.TierFree)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "profile", inputErr.Field)

	_, err = svc.Score(ctx, profile, nil, types.TierFree)
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "job", inputErr.Field)

	_, err = svc.Rank(ctx, profile, []*types.CandidateProfile{nil}, job)
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "peers[0]", inputErr.Field)

	_, err = svc.StrengthsWeaknesses(nil, job)
	assert.ErrorAs(t, err, &inputErr)
	_, err = svc.PredictSuccess(profile, nil)
	assert.ErrorAs(t, err, &inputErr)
	_, err = svc.RecommendJobs(ctx, nil, nil, types.TierFree, 0, "")
	assert.ErrorAs(t, err, &inputErr)
	_, err = svc.Recommend(ctx, profile, nil, nil, nil, types.TierFree)
	assert.ErrorAs(t, err, &inputErr)
}

func TestService_Score_FallbackWithoutModel(t *testing.T) {
	svc := newTestService(t, testOptions())

	b, err := svc.Score(context.Background(), strongProfile("c1"), backendJob(), types.Tier2)
	require.NoError(t, err)

	assert.True(t, b.PredictiveFallback)
	assert.Nil(t, b.Predicted)
	assert.Equal(t, types.Tier2, b.Tier)
	assert.Equal(t, 20.0, b.BonusPercent)
	assert.GreaterOrEqual(t, b.Final, float64(b.Composite))
	assert.LessOrEqual(t, b.Final, 100.0)
}

func TestService_PredictSuccess_Fallback(t *testing.T) {
	svc := newTestService(t, testOptions())
	profile, job := strongProfile("c1"), backendJob()

	p, err := svc.PredictSuccess(profile, job)
	require.NoError(t, err)
	assert.True(t, p.Fallback)
	assert.NotEmpty(t, p.Reason)

	b, err := svc.Score(context.Background(), profile, job, types.TierFree)
	require.NoError(t, err)
	assert.Equal(t, float64(b.Composite), p.Value)
}

func TestService_TrainThenPredict(t *testing.T) {
	svc := newTestService(t, testOptions())
	apps, profiles, jobs := trainingData()
	// unlabelled and dangling applications are ignored
	apps = append(apps,
		types.Application{CandidateID: "strong_0", JobID: "job_1", Status: types.StatusPending},
		types.Application{CandidateID: "ghost", JobID: "job_1", Status: types.StatusAccepted},
	)

	summary, err := svc.Train(context.Background(), apps, profiles, jobs)
	require.NoError(t, err)
	require.False(t, summary.Skipped, summary.Reason)
	assert.Equal(t, 8, summary.Samples)
	assert.Equal(t, 4, summary.Positives)
	assert.NotEmpty(t, summary.ModelVersion)

	strong, err := svc.PredictSuccess(strongProfile("new_strong"), backendJob())
	require.NoError(t, err)
	assert.False(t, strong.Fallback)
	assert.Equal(t, summary.ModelVersion, strong.ModelVersion)

	weak, err := svc.PredictSuccess(weakProfile("new_weak"), backendJob())
	require.NoError(t, err)
	assert.Greater(t, strong.Value, weak.Value)

	b, err := svc.Score(context.Background(), strongProfile("c1"), backendJob(), types.TierFree)
	require.NoError(t, err)
	require.NotNil(t, b.Predicted)
	assert.False(t, b.PredictiveFallback)

	st := svc.Status(context.Background())
	assert.True(t, st.Model.Loaded)
	assert.Equal(t, summary.ModelVersion, st.Model.Version)
}

func TestService_Train_InsufficientData(t *testing.T) {
	svc := newTestService(t, testOptions())
	apps, profiles, jobs := trainingData()

	summary, err := svc.Train(context.Background(), apps[:4], profiles, jobs)
	require.NoError(t, err)
	assert.True(t, summary.Skipped)
	assert.NotEmpty(t, summary.Reason)
	assert.Nil(t, svc.predictor.Current())
}

func TestService_Rank(t *testing.T) {
	svc := newTestService(t, testOptions())
	peers := []*types.CandidateProfile{weakProfile("w1"), weakProfile("w2"), strongProfile("s1")}

	r, err := svc.Rank(context.Background(), strongProfile("target"), peers, backendJob())
	require.NoError(t, err)
	// an equal peer does not push the target down
	assert.Equal(t, 1, r.Rank)
	assert.Equal(t, 4, r.TotalApplicants)
	assert.Equal(t, 100.0, r.Percentile)

	r, err = svc.Rank(context.Background(), weakProfile("target"), nil, backendJob())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Rank)
	assert.Equal(t, 100.0, r.Percentile)
}

func TestService_Leaderboard(t *testing.T) {
	svc := newTestService(t, testOptions())

	board, err := svc.Leaderboard(context.Background(),
		[]*types.CandidateProfile{weakProfile("w1"), strongProfile("s1")}, backendJob())
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "s1", board[0].CandidateID)
	assert.Equal(t, 1, board[0].Rank)

	_, err = svc.Leaderboard(context.Background(), nil, nil)
	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestService_StrengthsWeaknesses(t *testing.T) {
	svc := newTestService(t, testOptions())
	profile := &types.CandidateProfile{ID: "c1", Skills: []string{"Python"}}

	sw, err := svc.StrengthsWeaknesses(profile, backendJob())
	require.NoError(t, err)
	assert.Contains(t, sw.Strengths, "python")
	assert.Contains(t, sw.Weaknesses, "django")
	assert.Contains(t, sw.Weaknesses, "postgresql")
}

func TestService_RecommendJobs_DefaultLimit(t *testing.T) {
	opts := testOptions()
	opts.RecommendLimit = 2
	svc := newTestService(t, opts)

	catalog := []*types.JobRequirement{
		backendJob(),
		{ID: "job_2", Title: "Python Developer", RequiredSkills: []string{"Python"}},
		{ID: "job_3", Title: "Accountant", RequiredSkills: []string{"Excel", "SAP"}},
		{ID: "job_4", Title: "Django Developer", RequiredSkills: []string{"Django"}},
	}

	jobs, err := svc.RecommendJobs(context.Background(), strongProfile("c1"), catalog, types.TierFree, 0, "job_1")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.NotEqual(t, "job_1", j.JobID)
		assert.NotEqual(t, "job_3", j.JobID)
	}
}

func TestService_RecommendJobs_StoredCatalog(t *testing.T) {
	catalog := &staticCatalog{jobs: []*types.JobRequirement{
		backendJob(),
		{ID: "job_2", Title: "Python Developer", RequiredSkills: []string{"Python"}},
	}}
	opts := testOptions()
	opts.Catalog = catalog
	svc := newTestService(t, opts)

	jobs, err := svc.RecommendJobs(context.Background(), strongProfile("c1"), nil, types.TierFree, 0, "job_1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job_2", jobs[0].JobID)
	assert.Equal(t, 1, catalog.calls)

	// an explicit catalog wins
	_, err = svc.RecommendJobs(context.Background(), strongProfile("c1"), []*types.JobRequirement{backendJob()}, types.TierFree, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.calls)

	catalog.err = errors.New("connection refused")
	_, err = svc.RecommendJobs(context.Background(), strongProfile("c1"), nil, types.TierFree, 0, "")
	assert.ErrorContains(t, err, "failed to load job catalog")
}

func TestService_Recommend(t *testing.T) {
	history := &memoryLog{}
	opts := testOptions()
	opts.History = history
	svc := newTestService(t, opts)

	job := backendJob()
	catalog := []*types.JobRequirement{
		job,
		{ID: "job_2", Title: "Python Developer", CompanyName: "CloudSphere", RequiredSkills: []string{"Python"}},
	}
	peers := []*types.CandidateProfile{weakProfile("w1")}

	rec, err := svc.Recommend(context.Background(), strongProfile("c1"), job, peers, catalog, types.Tier1)
	require.NoError(t, err)

	assert.Equal(t, "c1", rec.CandidateID)
	assert.True(t, rec.Prediction.Fallback)
	assert.Equal(t, float64(rec.Breakdown.Composite), rec.BasePercentage)
	assert.InDelta(t, min(100, rec.BasePercentage*1.1), rec.PassPercentage, 0.01)
	assert.Equal(t, 10.0, rec.BonusPercent)
	assert.Equal(t, 1, rec.Ranking.Rank)
	assert.Equal(t, 2, rec.Ranking.TotalApplicants)
	require.Len(t, rec.SimilarJobs, 1)
	assert.Equal(t, "job_2", rec.SimilarJobs[0].JobID)
	assert.Contains(t, rec.Report, "Backend Developer")

	require.Len(t, history.records, 1)
	assert.Equal(t, rec.PassPercentage, history.records[0].PassPercentage)
}

func TestService_Recommend_HistoryFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	opts := testOptions()
	opts.History = &memoryLog{err: errors.New("disk full")}
	opts.Logger = zap.New(core)
	svc := newTestService(t, opts)

	rec, err := svc.Recommend(context.Background(), strongProfile("c1"), backendJob(), nil, nil, types.TierFree)
	require.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Equal(t, 1, logs.FilterMessage("failed to record recommendation").Len())
}

func TestService_Status(t *testing.T) {
	svc := newTestService(t, testOptions())

	st := svc.Status(context.Background())
	assert.False(t, st.Model.Loaded)
	assert.Equal(t, model.DefaultName, st.Model.Name)
	require.Len(t, st.Tiers, 4)
	assert.Equal(t, "Free", st.Tiers[0].Name)
	assert.Equal(t, 0.0, st.Tiers[0].PremiumRatio)
	assert.Equal(t, "Tier3", st.Tiers[3].Name)
	assert.Equal(t, 1.3, st.Tiers[3].Multiplier)
	assert.Equal(t, 0.8, st.Tiers[3].PremiumRatio)
}

func TestService_Status_ReportsStoredHistory(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	opts := testOptions()
	opts.History = fs
	opts.Inventory = fs
	svc, err := New(model.NewPredictor(model.DefaultName, fs, model.DefaultTrainConfig(), nil), opts)
	require.NoError(t, err)
	ctx := context.Background()

	st := svc.Status(ctx)
	require.NotNil(t, st.Store)
	assert.Empty(t, st.Store.ArtifactVersions)
	assert.Equal(t, 0, st.Store.Recommendations)

	apps, profiles, jobs := trainingData()
	summary, err := svc.Train(ctx, apps, profiles, jobs)
	require.NoError(t, err)
	_, err = svc.Recommend(ctx, strongProfile("c1"), backendJob(), nil, nil, types.TierFree)
	require.NoError(t, err)

	st = svc.Status(ctx)
	require.NotNil(t, st.Store)
	require.Len(t, st.Store.ArtifactVersions, 1)
	assert.Equal(t, summary.ModelVersion, st.Store.ArtifactVersions[0].Version)
	assert.Equal(t, 1, st.Store.Recommendations)

	records, err := svc.RecentRecommendations(ctx, "c1", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "job_1", records[0].JobID)

	none, err := newTestService(t, testOptions()).RecentRecommendations(ctx, "c1", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Nil(t, newTestService(t, testOptions()).Status(ctx).Store)
}

func TestService_LoadModel(t *testing.T) {
	dir := t.TempDir()
	fs, err := store.NewFileStore(dir)
	require.NoError(t, err)

	predictor := model.NewPredictor(model.DefaultName, fs, model.DefaultTrainConfig(), nil)
	svc, err := New(predictor, testOptions())
	require.NoError(t, err)

	// an empty store is not an error
	require.NoError(t, svc.LoadModel(context.Background()))
	assert.False(t, svc.Status(context.Background()).Model.Loaded)

	apps, profiles, jobs := trainingData()
	summary, err := svc.Train(context.Background(), apps, profiles, jobs)
	require.NoError(t, err)

	reloaded, err := New(model.NewPredictor(model.DefaultName, fs, model.DefaultTrainConfig(), nil), testOptions())
	require.NoError(t, err)
	require.NoError(t, reloaded.LoadModel(context.Background()))
	assert.Equal(t, summary.ModelVersion, reloaded.Status(context.Background()).Model.Version)
}
