package recommend

import (
	"context"
	"testing"

	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jobScorer returns a preset composite per job ID.
type jobScorer map[string]int

func (s jobScorer) Score(profile *types.CandidateProfile, job *types.JobRequirement) *types.ScoreBreakdown {
	return &types.ScoreBreakdown{CandidateID: profile.ID, JobID: job.ID, Composite: s[job.ID]}
}

type constPredictor struct {
	value float64
	ok    bool
}

func (p constPredictor) PredictBreakdown(*types.ScoreBreakdown) (float64, bool) {
	return p.value, p.ok
}

func ids(jobs []types.RecommendedJob) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.JobID
	}
	return out
}

func TestParseSalaryMax(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"$80K-100K", 100000, false},
		{"80,000-100,000", 100000, false},
		{"80000", 80000, false},
		{"€45k - 60k", 60000, false},
		{"competitive", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSalaryMax(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnparsableSalary)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_IsPremium(t *testing.T) {
	c := DefaultClassifier()

	assert.True(t, c.IsPremium(&types.JobRequirement{Salary: &types.SalaryRange{Max: 90000}}))
	assert.False(t, c.IsPremium(&types.JobRequirement{Salary: &types.SalaryRange{Max: 80000}}))
	assert.True(t, c.IsPremium(&types.JobRequirement{SalaryText: "$80K-100K"}))
	assert.False(t, c.IsPremium(&types.JobRequirement{SalaryText: "negotiable"}))
	assert.True(t, c.IsPremium(&types.JobRequirement{Title: "Senior Go Developer"}))
	assert.True(t, c.IsPremium(&types.JobRequirement{Title: "Engineering Manager"}))
	assert.False(t, c.IsPremium(&types.JobRequirement{Title: "Junior Developer"}))
	assert.True(t, c.IsPremium(&types.JobRequirement{Title: "Staff Engineer", SeniorityKeywords: []string{"staff"}}))
	assert.False(t, c.IsPremium(&types.JobRequirement{Title: "Senior Engineer", SeniorityKeywords: []string{"staff"}}))
}

func catalog() []*types.JobRequirement {
	return []*types.JobRequirement{
		{ID: "s1", Title: "Developer"},
		{ID: "p1", Title: "Senior Developer"},
		{ID: "s2", Title: "Analyst"},
		{ID: "p2", Title: "Lead Engineer"},
		{ID: "s3", Title: "Support Engineer"},
		{ID: "p3", Title: "Architect"},
		{ID: "s4", Title: "Tester"},
	}
}

func scores() jobScorer {
	return jobScorer{"s1": 95, "s2": 90, "s3": 85, "s4": 80, "p1": 70, "p2": 65, "p3": 60}
}

func TestRecommend_FreeTier(t *testing.T) {
	r := New(scores(), nil, DefaultOptions())

	got, err := r.Recommend(context.Background(), &types.CandidateProfile{ID: "c"}, catalog(), types.TierFree, 0, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2", "s3", "s4", "p1"}, ids(got))
	assert.Equal(t, 95.0, got[0].MatchPercentage)
}

func TestRecommend_PaidTiers(t *testing.T) {
	tests := []struct {
		tier types.SubscriptionTier
		want []string
	}{
		// maxJobs 5: Tier1 2 premium + 3 standard, Tier2 3+2, Tier3 4 -> capped at 3 premium + 1 standard
		{types.Tier1, []string{"s1", "s2", "s3", "p1", "p2"}},
		{types.Tier2, []string{"s1", "s2", "p1", "p2", "p3"}},
		{types.Tier3, []string{"s1", "p1", "p2", "p3"}},
	}

	r := New(scores(), nil, DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.tier.String(), func(t *testing.T) {
			got, err := r.Recommend(context.Background(), &types.CandidateProfile{ID: "c"}, catalog(), tt.tier, 5, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
			for i := 1; i < len(got); i++ {
				assert.GreaterOrEqual(t, got[i-1].MatchPercentage, got[i].MatchPercentage)
			}
		})
	}
}

func TestRecommend_ExcludesJobAndRespectsLimit(t *testing.T) {
	r := New(scores(), nil, DefaultOptions())

	got, err := r.Recommend(context.Background(), &types.CandidateProfile{ID: "c"}, catalog(), types.TierFree, 2, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s3"}, ids(got))
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	r := New(scores(), nil, DefaultOptions())

	got, err := r.Recommend(context.Background(), &types.CandidateProfile{ID: "c"}, nil, types.Tier2, 5, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecommend_BlendsPrediction(t *testing.T) {
	r := New(jobScorer{"a": 80, "b": 70}, constPredictor{value: 100, ok: true}, DefaultOptions())
	jobs := []*types.JobRequirement{{ID: "a"}, {ID: "b"}}

	got, err := r.Recommend(context.Background(), &types.CandidateProfile{ID: "c"}, jobs, types.TierFree, 5, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 86.0, got[0].MatchPercentage, 1e-9)
	assert.InDelta(t, 79.0, got[1].MatchPercentage, 1e-9)

	r = New(jobScorer{"a": 80}, constPredictor{ok: false}, DefaultOptions())
	got, err = r.Recommend(context.Background(), &types.CandidateProfile{ID: "c"}, jobs[:1], types.TierFree, 5, "")
	require.NoError(t, err)
	assert.Equal(t, 80.0, got[0].MatchPercentage)
}

func TestRecommend_StableOnTies(t *testing.T) {
	r := New(jobScorer{"a": 50, "b": 50, "c": 50}, nil, DefaultOptions())
	jobs := []*types.JobRequirement{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got, err := r.Recommend(context.Background(), &types.CandidateProfile{ID: "c"}, jobs, types.TierFree, 5, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}
