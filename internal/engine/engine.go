// Package engine is the entry point to candidate matching. A Service wires the
// scorer, ranking engine, job recommender and predictive model together and
// exposes the operations used by the CLI and the HTTP server.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jonathan/candidate-matcher/internal/config"
	"github.com/jonathan/candidate-matcher/internal/logging"
	"github.com/jonathan/candidate-matcher/internal/model"
	"github.com/jonathan/candidate-matcher/internal/observability"
	"github.com/jonathan/candidate-matcher/internal/ranking"
	"github.com/jonathan/candidate-matcher/internal/recommend"
	"github.com/jonathan/candidate-matcher/internal/scoring"
	"github.com/jonathan/candidate-matcher/internal/skills"
	"github.com/jonathan/candidate-matcher/internal/store"
	"github.com/jonathan/candidate-matcher/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options configures a Service.
type Options struct {
	Scoring   scoring.Options
	Recommend recommend.Options
	// Concurrency bounds peer scoring during ranking.
	Concurrency int
	// RecommendLimit is used when a caller passes a limit below 1.
	RecommendLimit int
	// History records generated recommendations. Optional.
	History store.RecommendationLog
	// Inventory reports stored artifact versions and recommendations. Optional.
	Inventory store.Inventory
	// Catalog supplies jobs when a caller passes none. Optional.
	Catalog store.JobCatalog
	Logger  *zap.Logger
}

// DefaultOptions returns options with the default scoring policy.
func DefaultOptions() Options {
	return Options{
		Scoring:        scoring.DefaultOptions(),
		Recommend:      recommend.DefaultOptions(),
		Concurrency:    ranking.DefaultConcurrency,
		RecommendLimit: recommend.DefaultLimit,
	}
}

// OptionsFromConfig maps configuration onto Options. History, Inventory,
// Catalog and Logger are left for the caller to set.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()

	vocabulary := append(append([]string(nil), skills.DefaultVocabulary...), cfg.Scoring.ExtraSkills...)
	opts.Scoring.Weights = cfg.Scoring.Weights
	opts.Scoring.Extractor = skills.NewExtractor(vocabulary)

	opts.Recommend.Classifier = recommend.Classifier{
		SalaryThreshold:   cfg.Recommend.PremiumSalaryThreshold,
		SeniorityKeywords: cfg.Recommend.SeniorityKeywords,
	}
	opts.Recommend.Blend = cfg.Recommend.PredictiveBlend
	if cfg.Scoring.Concurrency > 0 {
		opts.Recommend.Concurrency = cfg.Scoring.Concurrency
		opts.Concurrency = cfg.Scoring.Concurrency
	}
	if cfg.Recommend.Limit > 0 {
		opts.RecommendLimit = cfg.Recommend.Limit
	}
	return opts
}

// Service performs scoring, ranking, recommendation and model training. It is
// safe for concurrent use.
type Service struct {
	scorer      *scoring.Scorer
	ranker      *ranking.Engine
	recommender *recommend.Recommender
	predictor   *model.Predictor
	history     store.RecommendationLog
	inventory   store.Inventory
	catalog     store.JobCatalog
	logger      *zap.Logger

	limit         int
	premiumRatios map[types.SubscriptionTier]float64
}

// New builds a Service. A nil predictor is replaced by one without a store, so
// predictions fall back to the heuristic score until a model is trained.
func New(predictor *model.Predictor, opts Options) (*Service, error) {
	scorer, err := scoring.NewScorer(opts.Scoring)
	if err != nil {
		return nil, fmt.Errorf("invalid scoring options: %w", err)
	}

	logger := logging.OrNop(opts.Logger)
	if predictor == nil {
		predictor = model.NewPredictor(model.DefaultName, nil, model.DefaultTrainConfig(), logger)
	}
	if opts.RecommendLimit < 1 {
		opts.RecommendLimit = recommend.DefaultLimit
	}
	if opts.Recommend.PremiumRatios == nil {
		opts.Recommend.PremiumRatios = recommend.DefaultPremiumRatios
	}

	return &Service{
		scorer:        scorer,
		ranker:        ranking.NewEngine(scorer, opts.Concurrency),
		recommender:   recommend.New(scorer, predictor, opts.Recommend),
		predictor:     predictor,
		history:       opts.History,
		inventory:     opts.Inventory,
		catalog:       opts.Catalog,
		logger:        logger,
		limit:         opts.RecommendLimit,
		premiumRatios: opts.Recommend.PremiumRatios,
	}, nil
}

// LoadModel publishes the latest stored model. A missing model is not an error;
// the service keeps serving heuristic predictions.
func (s *Service) LoadModel(ctx context.Context) error {
	err := s.predictor.Load(ctx)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, model.ErrNoModel) {
		s.logger.Info("no stored model, using heuristic predictions",
			zap.String(logging.FieldModelName, s.predictor.Name()))
		return nil
	}
	return err
}

// ---------------------------------------------------------------------
// Scoring Methods
// ---------------------------------------------------------------------

// Score computes the breakdown for a candidate and job with the tier bonus
// applied. Predicted is set when a trained model is available; otherwise
// PredictiveFallback is set.
func (s *Service) Score(
	ctx context.Context,
	profile *types.CandidateProfile,
	job *types.JobRequirement,
	tier types.SubscriptionTier,
) (*types.ScoreBreakdown, error) {
	if err := requirePair(profile, job); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := s.scorer.Score(profile, job)
	out := scoring.ApplyTier(base, tier)
	if p := s.predict(base); p.Fallback {
		out.PredictiveFallback = true
	} else {
		out.Predicted = &p.Value
	}

	logging.WithPair(s.logger, profile.ID, job.ID).Debug("scored",
		zap.Int("composite", out.Composite),
		zap.Float64("final", out.Final),
		zap.Stringer(logging.FieldTier, tier))
	return out, nil
}

// PredictSuccess returns the model's pass likelihood for the pair, or the
// composite score flagged as a fallback when no usable model is published.
func (s *Service) PredictSuccess(profile *types.CandidateProfile, job *types.JobRequirement) (types.Prediction, error) {
	if err := requirePair(profile, job); err != nil {
		return types.Prediction{}, err
	}
	return s.predict(s.scorer.Score(profile, job)), nil
}

// predict reads one model snapshot so the value and version always agree.
func (s *Service) predict(b *types.ScoreBreakdown) types.Prediction {
	a := s.predictor.Current()
	if a == nil {
		return fallback(b, model.ErrNoModel)
	}
	features := model.Features(b)
	v, err := a.Predict(features[:])
	if err != nil {
		s.logger.Warn("prediction failed, using heuristic score",
			zap.String(logging.FieldModelVersion, a.Version), zap.Error(err))
		return fallback(b, err)
	}
	return types.Prediction{Value: math.Round(v*100) / 100, ModelVersion: a.Version}
}

func fallback(b *types.ScoreBreakdown, reason error) types.Prediction {
	return types.Prediction{Value: float64(b.Composite), Fallback: true, Reason: reason.Error()}
}

// ---------------------------------------------------------------------
// Ranking Methods
// ---------------------------------------------------------------------

// Rank places the candidate among the other applicants to job.
func (s *Service) Rank(
	ctx context.Context,
	profile *types.CandidateProfile,
	peers []*types.CandidateProfile,
	job *types.JobRequirement,
) (*types.RankingResult, error) {
	if err := requirePair(profile, job); err != nil {
		return nil, err
	}
	if err := requireProfiles("peers", peers); err != nil {
		return nil, err
	}
	return s.ranker.RankCandidate(ctx, profile, peers, job)
}

// Leaderboard ranks every candidate for job, best first.
func (s *Service) Leaderboard(
	ctx context.Context,
	candidates []*types.CandidateProfile,
	job *types.JobRequirement,
) ([]types.RankedCandidate, error) {
	if job == nil {
		return nil, &InputError{Field: "job", Message: "job requirement is required"}
	}
	if err := requireProfiles("candidates", candidates); err != nil {
		return nil, err
	}
	return s.ranker.Leaderboard(ctx, candidates, job)
}

// StrengthsWeaknesses lists the job requirements the candidate covers and misses.
func (s *Service) StrengthsWeaknesses(profile *types.CandidateProfile, job *types.JobRequirement) (*types.StrengthsWeaknesses, error) {
	if err := requirePair(profile, job); err != nil {
		return nil, err
	}
	sw := ranking.Identify(profile, job, s.scorer.Extractor())
	return &sw, nil
}

func requireProfiles(field string, profiles []*types.CandidateProfile) error {
	for i, p := range profiles {
		if p == nil {
			return &InputError{Field: fmt.Sprintf("%s[%d]", field, i), Message: "candidate profile is required"}
		}
	}
	return nil
}

// ---------------------------------------------------------------------
// Recommendation Methods
// ---------------------------------------------------------------------

// RecommendJobs suggests catalog jobs for the candidate, shaped by tier. An
// empty catalog is replaced by the stored one when configured. A limit below 1
// selects the configured default.
func (s *Service) RecommendJobs(
	ctx context.Context,
	profile *types.CandidateProfile,
	catalog []*types.JobRequirement,
	tier types.SubscriptionTier,
	limit int,
	excludeJobID string,
) ([]types.RecommendedJob, error) {
	if profile == nil {
		return nil, &InputError{Field: "profile", Message: "candidate profile is required"}
	}
	if limit < 1 {
		limit = s.limit
	}
	catalog, err := s.jobsOrCatalog(ctx, catalog)
	if err != nil {
		return nil, err
	}
	return s.recommender.Recommend(ctx, profile, catalog, tier, limit, excludeJobID)
}

// jobsOrCatalog returns jobs, or the stored catalog when jobs is empty.
func (s *Service) jobsOrCatalog(ctx context.Context, jobs []*types.JobRequirement) ([]*types.JobRequirement, error) {
	if len(jobs) > 0 || s.catalog == nil {
		return jobs, nil
	}
	stored, err := s.catalog.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load job catalog: %w", err)
	}
	return stored, nil
}

// Recommend builds the full recommendation for one application: the tier
// adjusted pass likelihood, the candidate's standing among peers, strengths and
// weaknesses, similar jobs and a markdown report. The result is recorded to the
// history log when one is configured; a failed record is logged, not returned.
func (s *Service) Recommend(
	ctx context.Context,
	profile *types.CandidateProfile,
	job *types.JobRequirement,
	peers []*types.CandidateProfile,
	catalog []*types.JobRequirement,
	tier types.SubscriptionTier,
) (*types.Recommendation, error) {
	if err := requirePair(profile, job); err != nil {
		return nil, err
	}
	if err := requireProfiles("peers", peers); err != nil {
		return nil, err
	}
	catalog, err := s.jobsOrCatalog(ctx, catalog)
	if err != nil {
		return nil, err
	}

	base := s.scorer.Score(profile, job)
	prediction := s.predict(base)
	adj := scoring.Adjust(prediction.Value, tier)

	breakdown := scoring.ApplyTier(base, tier)
	if prediction.Fallback {
		breakdown.PredictiveFallback = true
	} else {
		breakdown.Predicted = &prediction.Value
	}

	var standing *types.RankingResult
	var similar []types.RecommendedJob

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		standing, err = s.ranker.RankCandidate(gCtx, profile, peers, job)
		return err
	})
	g.Go(func() error {
		var err error
		similar, err = s.recommender.Recommend(gCtx, profile, catalog, tier, s.limit, job.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sw := ranking.Identify(profile, job, s.scorer.Extractor())

	rec := &types.Recommendation{
		CandidateID:    profile.ID,
		JobID:          job.ID,
		PassPercentage: adj.Adjusted,
		BasePercentage: math.Round(prediction.Value*100) / 100,
		Tier:           tier,
		BonusPercent:   adj.BonusPercent,
		Prediction:     prediction,
		Breakdown:      breakdown,
		Ranking:        *standing,
		Strengths:      sw.Strengths,
		Weaknesses:     sw.Weaknesses,
		SimilarJobs:    similar,
	}
	rec.Report = observability.Report(rec, job.Title)

	log := logging.WithPair(s.logger, profile.ID, job.ID)
	log.Info("recommendation generated",
		zap.Float64("pass_percentage", rec.PassPercentage),
		zap.Bool("fallback", prediction.Fallback),
		zap.Int("rank", standing.Rank),
		zap.Int("similar_jobs", len(similar)))

	if s.history != nil {
		if err := s.history.RecordRecommendation(ctx, store.NewRecommendationRecord(rec)); err != nil {
			log.Warn("failed to record recommendation", zap.Error(err))
		}
	}
	return rec, nil
}

// ---------------------------------------------------------------------
// Training Methods
// ---------------------------------------------------------------------

// Train retrains the predictive model from historical applications. Only
// accepted and rejected applications whose profile and job are both known
// become training examples. With too little data the summary is Skipped and the
// current model stays in place.
func (s *Service) Train(
	ctx context.Context,
	applications []types.Application,
	profiles map[string]*types.CandidateProfile,
	jobs map[string]*types.JobRequirement,
) (*types.TrainingSummary, error) {
	examples := make([]types.TrainingExample, 0, len(applications))
	unresolved := 0
	for _, app := range applications {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		label, ok := app.Label()
		if !ok {
			continue
		}
		profile, job := profiles[app.CandidateID], jobs[app.JobID]
		if profile == nil || job == nil {
			unresolved++
			continue
		}
		examples = append(examples, types.TrainingExample{
			Features: model.Features(s.scorer.Score(profile, job)),
			Label:    label,
		})
	}

	if unresolved > 0 {
		s.logger.Warn("applications reference unknown candidates or jobs",
			zap.Int("skipped", unresolved))
	}
	s.logger.Info("training model",
		zap.String(logging.FieldModelName, s.predictor.Name()),
		zap.Int("applications", len(applications)),
		zap.Int("examples", len(examples)))

	return s.predictor.Train(ctx, examples)
}
