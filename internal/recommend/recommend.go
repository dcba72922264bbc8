// Package recommend suggests the jobs from a catalog that best fit a candidate,
// shaped by the candidate's subscription tier.
package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jonathan/candidate-matcher/internal/ranking"
	"github.com/jonathan/candidate-matcher/internal/types"
	"golang.org/x/sync/errgroup"
)

// Recommendation defaults.
const (
	DefaultLimit = 5
	// DefaultPredictiveBlend is the share of the model prediction in a blended match.
	DefaultPredictiveBlend = 0.3
	defaultConcurrency     = 8
)

// DefaultPremiumRatios is the share of premium jobs per paid tier.
var DefaultPremiumRatios = map[types.SubscriptionTier]float64{
	types.Tier1: 0.4,
	types.Tier2: 0.6,
	types.Tier3: 0.8,
}

// SuccessPredictor estimates a pass likelihood in [0,100] from a breakdown. ok is
// false when no model is available.
type SuccessPredictor interface {
	PredictBreakdown(b *types.ScoreBreakdown) (value float64, ok bool)
}

// Options configures a Recommender.
type Options struct {
	Classifier    Classifier
	PremiumRatios map[types.SubscriptionTier]float64
	Blend         float64
	Concurrency   int
}

// DefaultOptions returns the default classifier, ratios and blend.
func DefaultOptions() Options {
	return Options{
		Classifier:    DefaultClassifier(),
		PremiumRatios: DefaultPremiumRatios,
		Blend:         DefaultPredictiveBlend,
		Concurrency:   defaultConcurrency,
	}
}

// Recommender ranks catalog jobs for a candidate.
type Recommender struct {
	scorer    ranking.Scorer
	predictor SuccessPredictor
	opts      Options
}

// New returns a Recommender. predictor may be nil.
func New(scorer ranking.Scorer, predictor SuccessPredictor, opts Options) *Recommender {
	if opts.Concurrency < 1 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.PremiumRatios == nil {
		opts.PremiumRatios = DefaultPremiumRatios
	}
	return &Recommender{scorer: scorer, predictor: predictor, opts: opts}
}

type scoredJob struct {
	job     *types.JobRequirement
	score   float64
	premium bool
}

// Recommend scores every catalog job except excludeJobID and returns at most
// limit jobs, best first. Free candidates get the top matches. Paid tiers get a
// fixed share of premium jobs; a short premium or standard bucket is not
// backfilled from the other. A limit below 1 selects DefaultLimit.
func (r *Recommender) Recommend(
	ctx context.Context,
	profile *types.CandidateProfile,
	catalog []*types.JobRequirement,
	tier types.SubscriptionTier,
	limit int,
	excludeJobID string,
) ([]types.RecommendedJob, error) {
	if limit < 1 {
		limit = DefaultLimit
	}

	candidates := make([]*types.JobRequirement, 0, len(catalog))
	for _, job := range catalog {
		if job == nil || (excludeJobID != "" && job.ID == excludeJobID) {
			continue
		}
		candidates = append(candidates, job)
	}

	scored, err := r.scoreCatalog(ctx, profile, candidates)
	if err != nil {
		return nil, err
	}
	sortByScore(scored)

	ratio, ok := r.opts.PremiumRatios[tier]
	if !tier.IsPaid() || !ok {
		return toRecommended(scored[:min(len(scored), limit)]), nil
	}
	return toRecommended(r.tierFilter(scored, ratio, limit)), nil
}

// tierFilter takes floor(maxJobs*ratio) premium jobs and fills the rest with
// standard jobs, each bucket in score order, then re-sorts the union.
func (r *Recommender) tierFilter(scored []scoredJob, ratio float64, limit int) []scoredJob {
	var premium, standard []scoredJob
	for _, s := range scored {
		if s.premium {
			premium = append(premium, s)
		} else {
			standard = append(standard, s)
		}
	}

	maxJobs := min(len(scored), limit)
	premiumCount := int(float64(maxJobs) * ratio)
	standardCount := maxJobs - premiumCount

	result := make([]scoredJob, 0, maxJobs)
	result = append(result, premium[:min(len(premium), premiumCount)]...)
	result = append(result, standard[:min(len(standard), standardCount)]...)
	sortByScore(result)
	return result
}

func (r *Recommender) scoreCatalog(
	ctx context.Context,
	profile *types.CandidateProfile,
	jobs []*types.JobRequirement,
) ([]scoredJob, error) {
	scored := make([]scoredJob, len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			scored[i] = scoredJob{
				job:     job,
				score:   r.matchScore(profile, job),
				premium: r.opts.Classifier.IsPremium(job),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring catalog failed: %w", err)
	}
	return scored, nil
}

// matchScore is the composite, blended with the model prediction when one is available.
func (r *Recommender) matchScore(profile *types.CandidateProfile, job *types.JobRequirement) float64 {
	b := r.scorer.Score(profile, job)
	score := float64(b.Composite)
	if r.predictor != nil && r.opts.Blend > 0 {
		if predicted, ok := r.predictor.PredictBreakdown(b); ok {
			score = (1-r.opts.Blend)*score + r.opts.Blend*predicted
		}
	}
	return math.Round(score*100) / 100
}

func sortByScore(jobs []scoredJob) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].score > jobs[j].score
	})
}

func toRecommended(jobs []scoredJob) []types.RecommendedJob {
	out := make([]types.RecommendedJob, len(jobs))
	for i, s := range jobs {
		out[i] = types.RecommendedJob{
			JobID:           s.job.ID,
			Title:           s.job.Title,
			CompanyName:     s.job.CompanyName,
			MatchPercentage: s.score,
			Premium:         s.premium,
		}
	}
	return out
}
