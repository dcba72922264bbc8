package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonathan/candidate-matcher/internal/types"
	"go.uber.org/zap"
)

// DefaultName is the artifact name used when none is configured.
const DefaultName = "pass-likelihood"

// Store persists model artifacts by name and version.
type Store interface {
	SaveArtifact(ctx context.Context, a *Artifact) error
	// LoadArtifact returns the most recently trained artifact with the given name.
	LoadArtifact(ctx context.Context, name string) (*Artifact, error)
}

// Predictor serves predictions from the latest published artifact. Readers see an
// immutable snapshot without locking; only one retrain may run at a time.
type Predictor struct {
	name   string
	store  Store
	cfg    TrainConfig
	logger *zap.Logger

	current  atomic.Pointer[Artifact]
	training sync.Mutex
}

// NewPredictor returns a Predictor with no model loaded. store and logger may be nil.
func NewPredictor(name string, store Store, cfg TrainConfig, logger *zap.Logger) *Predictor {
	if name == "" {
		name = DefaultName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Predictor{name: name, store: store, cfg: cfg, logger: logger}
}

// Name returns the artifact name this predictor trains and loads.
func (p *Predictor) Name() string {
	return p.name
}

// Load fetches the latest artifact from the store and publishes it.
func (p *Predictor) Load(ctx context.Context) error {
	if p.store == nil {
		return ErrNoModel
	}
	a, err := p.store.LoadArtifact(ctx, p.name)
	if err != nil {
		return &Error{Message: "failed to load model " + p.name, Cause: err}
	}
	if err := p.Publish(a); err != nil {
		return err
	}
	p.logger.Info("model loaded",
		zap.String("name", a.Name),
		zap.String("version", a.Version),
		zap.Int("samples", a.Samples))
	return nil
}

// Publish validates a and makes it the current snapshot.
func (p *Predictor) Publish(a *Artifact) error {
	if err := a.Validate(); err != nil {
		return err
	}
	p.current.Store(a)
	return nil
}

// Current returns the published artifact, or nil.
func (p *Predictor) Current() *Artifact {
	return p.current.Load()
}

// Predict returns the pass likelihood in [0,100] for a feature vector.
func (p *Predictor) Predict(features [FeatureCount]float64) (float64, error) {
	a := p.current.Load()
	if a == nil {
		return 0, ErrNoModel
	}
	return a.Predict(features[:])
}

// PredictBreakdown predicts from a breakdown's features. ok is false when no model
// is published or prediction fails.
func (p *Predictor) PredictBreakdown(b *types.ScoreBreakdown) (float64, bool) {
	v, err := p.Predict(Features(b))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Train fits a new artifact from examples, publishes it and saves it. With too
// little data the summary is Skipped and the current model is kept. A concurrent
// call returns ErrTrainingInProgress. A failed save returns the summary, with its
// Warning set, together with an error wrapping ErrNotSaved; the new model is
// already published in memory.
func (p *Predictor) Train(ctx context.Context, examples []types.TrainingExample) (*types.TrainingSummary, error) {
	if !p.training.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer p.training.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, err := Train(p.name, examples, p.cfg)
	if err != nil {
		var insufficient *InsufficientDataError
		if errors.As(err, &insufficient) {
			p.logger.Info("training skipped", zap.String("reason", err.Error()))
			return &types.TrainingSummary{
				Skipped:   true,
				Reason:    err.Error(),
				ModelName: p.name,
				Samples:   insufficient.Samples,
				Positives: insufficient.Positives,
			}, nil
		}
		return nil, &Error{Message: "training failed", Cause: err}
	}

	if err := p.Publish(a); err != nil {
		return nil, err
	}

	summary := &types.TrainingSummary{
		ModelName:    a.Name,
		ModelVersion: a.Version,
		Samples:      a.Samples,
		Positives:    a.Positives,
		Accuracy:     a.Accuracy,
		TrainedAt:    a.TrainedAt,
	}
	p.logger.Info("model trained",
		zap.String("name", a.Name),
		zap.String("version", a.Version),
		zap.Int("samples", a.Samples),
		zap.Float64("accuracy", a.Accuracy))

	if p.store != nil {
		if err := p.store.SaveArtifact(ctx, a); err != nil {
			summary.Warning = fmt.Sprintf("%s: %v", ErrNotSaved, err)
			return summary, &Error{Message: "failed to save model " + a.Name, Cause: fmt.Errorf("%w: %w", ErrNotSaved, err)}
		}
	}
	return summary, nil
}
