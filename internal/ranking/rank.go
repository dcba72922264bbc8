// Package ranking ranks candidates against the other applicants to a job and
// identifies a candidate's strengths and weaknesses for it.
package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jonathan/candidate-matcher/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds concurrent peer scoring.
const DefaultConcurrency = 8

// Scorer produces an unadjusted score breakdown for a candidate and job.
type Scorer interface {
	Score(profile *types.CandidateProfile, job *types.JobRequirement) *types.ScoreBreakdown
}

// Rank places target among peer scores. Rank is 1 plus the number of peers with a
// strictly greater score, so ties never push the target down. Percentile is
// (N-rank+1)/N*100 with N = len(peers)+1, rounded to two decimals.
func Rank(target float64, peers []float64) types.RankingResult {
	greater := 0
	for _, p := range peers {
		if p > target {
			greater++
		}
	}
	total := len(peers) + 1
	rank := greater + 1
	return types.RankingResult{
		Score:           target,
		Rank:            rank,
		TotalApplicants: total,
		Percentile:      percentile(rank, total),
	}
}

func percentile(rank, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(total-rank+1) / float64(total) * 100
	return math.Round(p*100) / 100
}

// Engine ranks candidates by their composite scores.
type Engine struct {
	scorer      Scorer
	concurrency int
}

// NewEngine returns an Engine. A concurrency below 1 selects DefaultConcurrency.
func NewEngine(scorer Scorer, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Engine{scorer: scorer, concurrency: concurrency}
}

// RankCandidate scores the target and every peer against job, then ranks the
// target by composite score. All peer scores are computed before ranking.
func (e *Engine) RankCandidate(
	ctx context.Context,
	target *types.CandidateProfile,
	peers []*types.CandidateProfile,
	job *types.JobRequirement,
) (*types.RankingResult, error) {
	targetScore := float64(e.scorer.Score(target, job).Composite)

	peerScores, err := e.scoreAll(ctx, peers, job)
	if err != nil {
		return nil, err
	}

	result := Rank(targetScore, peerScores)
	return &result, nil
}

// Leaderboard ranks every candidate for job, best first. Equal scores share a rank
// and keep their input order.
func (e *Engine) Leaderboard(
	ctx context.Context,
	candidates []*types.CandidateProfile,
	job *types.JobRequirement,
) ([]types.RankedCandidate, error) {
	scores, err := e.scoreAll(ctx, candidates, job)
	if err != nil {
		return nil, err
	}

	board := make([]types.RankedCandidate, len(candidates))
	for i, c := range candidates {
		board[i] = types.RankedCandidate{CandidateID: c.ID, Score: scores[i]}
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})

	total := len(board)
	for i := range board {
		rank := i + 1
		if i > 0 && board[i].Score == board[i-1].Score {
			rank = board[i-1].Rank
		}
		board[i].Rank = rank
		board[i].Percentile = percentile(rank, total)
	}
	return board, nil
}

// scoreAll computes composite scores into a slice indexed like profiles.
func (e *Engine) scoreAll(
	ctx context.Context,
	profiles []*types.CandidateProfile,
	job *types.JobRequirement,
) ([]float64, error) {
	for i, p := range profiles {
		if p == nil {
			return nil, fmt.Errorf("candidate %d is nil", i)
		}
	}
	scores := make([]float64, len(profiles))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, p := range profiles {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			scores[i] = float64(e.scorer.Score(p, job).Composite)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring candidates failed: %w", err)
	}
	return scores, nil
}
