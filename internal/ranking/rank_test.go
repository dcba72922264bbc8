package ranking

import (
	"context"
	"testing"

	"github.com/jonathan/candidate-matcher/internal/skills"
	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedScorer returns a preset composite per candidate ID.
type fixedScorer map[string]int

func (f fixedScorer) Score(profile *types.CandidateProfile, job *types.JobRequirement) *types.ScoreBreakdown {
	return &types.ScoreBreakdown{CandidateID: profile.ID, JobID: job.ID, Composite: f[profile.ID]}
}

func profiles(ids ...string) []*types.CandidateProfile {
	out := make([]*types.CandidateProfile, len(ids))
	for i, id := range ids {
		out[i] = &types.CandidateProfile{ID: id}
	}
	return out
}

func TestRank(t *testing.T) {
	tests := []struct {
		name       string
		target     float64
		peers      []float64
		rank       int
		total      int
		percentile float64
	}{
		{"zero peers", 40, nil, 1, 1, 100},
		{"middle of the pack", 75, []float64{70, 85, 60}, 2, 4, 75},
		{"best", 90, []float64{70, 85, 60}, 1, 4, 100},
		{"worst", 10, []float64{70, 85, 60}, 4, 4, 25},
		{"ties do not push rank down", 70, []float64{70, 70, 60}, 1, 4, 100},
		{"tie below a better peer", 70, []float64{80, 70}, 2, 3, 66.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(tt.target, tt.peers)
			assert.Equal(t, tt.rank, got.Rank)
			assert.Equal(t, tt.total, got.TotalApplicants)
			assert.InDelta(t, tt.percentile, got.Percentile, 0.001)
			assert.Equal(t, tt.target, got.Score)
		})
	}
}

func TestRank_ConsistentWithScoreOrdering(t *testing.T) {
	peers := []float64{10, 20, 30, 40, 50}
	prevRank := len(peers) + 2
	for target := 0.0; target <= 60; target += 5 {
		got := Rank(target, peers)
		assert.LessOrEqual(t, got.Rank, prevRank)
		assert.GreaterOrEqual(t, got.Percentile, 0.0)
		assert.LessOrEqual(t, got.Percentile, 100.0)
		prevRank = got.Rank
	}
}

func TestEngine_RankCandidate(t *testing.T) {
	scorer := fixedScorer{"target": 75, "a": 70, "b": 85, "c": 60}
	engine := NewEngine(scorer, 2)

	result, err := engine.RankCandidate(context.Background(),
		&types.CandidateProfile{ID: "target"}, profiles("a", "b", "c"), &types.JobRequirement{ID: "job"})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Rank)
	assert.Equal(t, 4, result.TotalApplicants)
	assert.InDelta(t, 75.0, result.Percentile, 0.001)
}

func TestEngine_RankCandidate_Errors(t *testing.T) {
	engine := NewEngine(fixedScorer{}, 0)

	_, err := engine.RankCandidate(context.Background(),
		&types.CandidateProfile{ID: "t"}, []*types.CandidateProfile{nil}, &types.JobRequirement{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.RankCandidate(ctx, &types.CandidateProfile{ID: "t"}, profiles("a"), &types.JobRequirement{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Leaderboard(t *testing.T) {
	scorer := fixedScorer{"a": 60, "b": 90, "c": 60, "d": 75}
	engine := NewEngine(scorer, 0)

	board, err := engine.Leaderboard(context.Background(), profiles("a", "b", "c", "d"), &types.JobRequirement{ID: "job"})
	require.NoError(t, err)
	require.Len(t, board, 4)

	ids := []string{board[0].CandidateID, board[1].CandidateID, board[2].CandidateID, board[3].CandidateID}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
	assert.Equal(t, []int{1, 2, 3, 3}, []int{board[0].Rank, board[1].Rank, board[2].Rank, board[3].Rank})
	assert.Equal(t, 100.0, board[0].Percentile)
	assert.Equal(t, 50.0, board[3].Percentile)
}

func TestIdentify(t *testing.T) {
	extractor := skills.NewExtractor(nil)
	profile := &types.CandidateProfile{
		Skills:       []string{"Python", "React Native"},
		Projects:     []types.Project{{Name: "Inventory", Technologies: []string{"Docker"}}},
		Certificates: []types.Certificate{{Name: "AWS Solutions Architect"}},
	}
	job := &types.JobRequirement{
		Title:          "Backend Engineer",
		Description:    "<p>Deploy on AWS</p>",
		RequiredSkills: []string{"Python", "React", "Kubernetes", "Docker"},
	}

	got := Identify(profile, job, extractor)

	assert.Equal(t, []string{"python", "react", "docker"}, got.Strengths[:3])
	assert.Contains(t, got.Strengths, "aws")
	assert.Equal(t, "kubernetes", got.Weaknesses[0])
	assert.Contains(t, got.Weaknesses, "backend")
	assert.Contains(t, got.Weaknesses, "engineer")
}

func TestIdentify_EmptyJob(t *testing.T) {
	got := Identify(&types.CandidateProfile{Skills: []string{"Go"}}, &types.JobRequirement{}, skills.NewExtractor(nil))
	assert.Empty(t, got.Strengths)
	assert.Empty(t, got.Weaknesses)
	assert.NotNil(t, got.Strengths)
}
