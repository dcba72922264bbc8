// Package model provides the retrainable pass-likelihood model learned from
// historical accepted and rejected applications.
package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// FeatureCount is the length of a feature vector: skills%, experience%, education%.
const FeatureCount = 3

// Training requirements.
const (
	MinTrainingSamples = 6

	DefaultIterations   = 2000
	DefaultLearningRate = 0.1
	DefaultL2           = 0.01
)

// TrainConfig controls gradient descent.
type TrainConfig struct {
	Iterations   int     `json:"iterations" mapstructure:"iterations"`
	LearningRate float64 `json:"learning_rate" mapstructure:"learning_rate"`
	L2           float64 `json:"l2" mapstructure:"l2"`
}

// DefaultTrainConfig returns the default iteration budget, learning rate and L2 penalty.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Iterations:   DefaultIterations,
		LearningRate: DefaultLearningRate,
		L2:           DefaultL2,
	}
}

// Scaler standardizes features to zero mean and unit variance.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes per-feature mean and standard deviation. Constant features
// get a standard deviation of 1 so they transform to 0.
func FitScaler(rows [][]float64) Scaler {
	s := Scaler{Mean: make([]float64, FeatureCount), Std: make([]float64, FeatureCount)}
	n := float64(len(rows))
	for _, row := range rows {
		for j := range FeatureCount {
			s.Mean[j] += row[j] / n
		}
	}
	for _, row := range rows {
		for j := range FeatureCount {
			d := row[j] - s.Mean[j]
			s.Std[j] += d * d / n
		}
	}
	for j := range FeatureCount {
		s.Std[j] = math.Sqrt(s.Std[j])
		if s.Std[j] < 1e-9 {
			s.Std[j] = 1
		}
	}
	return s
}

// Transform returns the standardized copy of features.
func (s Scaler) Transform(features []float64) []float64 {
	out := make([]float64, len(features))
	for j, v := range features {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// Artifact is a fitted, versioned model together with its feature scaler.
type Artifact struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Scaler    Scaler    `json:"scaler"`
	Samples   int       `json:"samples"`
	Positives int       `json:"positives"`
	Accuracy  float64   `json:"accuracy"`
}

// Validate checks that the artifact's dimensions match the feature vector.
func (a *Artifact) Validate() error {
	if a == nil {
		return ErrNoModel
	}
	if len(a.Weights) != FeatureCount || len(a.Scaler.Mean) != FeatureCount || len(a.Scaler.Std) != FeatureCount {
		return &Error{Message: fmt.Sprintf("artifact %s@%s has wrong dimensions", a.Name, a.Version)}
	}
	return nil
}

// Predict returns the positive-class probability for features as a percentage.
func (a *Artifact) Predict(features []float64) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if len(features) != FeatureCount {
		return 0, &Error{Message: fmt.Sprintf("expected %d features, got %d", FeatureCount, len(features))}
	}
	p := a.probability(a.Scaler.Transform(features))
	if math.IsNaN(p) {
		return 0, &Error{Message: "prediction is not a number"}
	}
	return p * 100, nil
}

func (a *Artifact) probability(x []float64) float64 {
	z := a.Bias
	for j, w := range a.Weights {
		z += w * x[j]
	}
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// InsufficientDataError describes why a training set was rejected.
type InsufficientDataError struct {
	Samples   int
	Positives int
}

func (e *InsufficientDataError) Error() string {
	if e.Samples < MinTrainingSamples {
		return fmt.Sprintf("need at least %d labelled applications, have %d", MinTrainingSamples, e.Samples)
	}
	return fmt.Sprintf("need both accepted and rejected applications, have %d accepted of %d", e.Positives, e.Samples)
}

// Train fits a logistic regression by batch gradient descent with an L2 penalty.
// It is deterministic for a given input. Fewer than MinTrainingSamples examples,
// or a single class, yield an *InsufficientDataError.
func Train(name string, examples []types.TrainingExample, cfg TrainConfig) (*Artifact, error) {
	positives := 0
	for _, ex := range examples {
		if ex.Label >= 0.5 {
			positives++
		}
	}
	if len(examples) < MinTrainingSamples || positives == 0 || positives == len(examples) {
		return nil, &InsufficientDataError{Samples: len(examples), Positives: positives}
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultLearningRate
	}

	raw := make([][]float64, len(examples))
	for i, ex := range examples {
		raw[i] = ex.Features[:]
	}
	scaler := FitScaler(raw)
	xs := make([][]float64, len(raw))
	for i, row := range raw {
		xs[i] = scaler.Transform(row)
	}

	a := &Artifact{
		Name:      name,
		Version:   uuid.New().String(),
		TrainedAt: time.Now().UTC(),
		Weights:   make([]float64, FeatureCount),
		Scaler:    scaler,
		Samples:   len(examples),
		Positives: positives,
	}

	n := float64(len(xs))
	grad := make([]float64, FeatureCount)
	for range cfg.Iterations {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0
		for i, x := range xs {
			diff := a.probability(x) - examples[i].Label
			for j := range FeatureCount {
				grad[j] += diff * x[j]
			}
			gradBias += diff
		}
		for j := range FeatureCount {
			a.Weights[j] -= cfg.LearningRate * (grad[j]/n + cfg.L2*a.Weights[j])
		}
		a.Bias -= cfg.LearningRate * gradBias / n
	}

	correct := 0
	for i, x := range xs {
		if (a.probability(x) >= 0.5) == (examples[i].Label >= 0.5) {
			correct++
		}
	}
	a.Accuracy = math.Round(float64(correct)/n*10000) / 10000
	return a, nil
}

// Features returns the model inputs for a breakdown: skills, experience and education.
func Features(b *types.ScoreBreakdown) [FeatureCount]float64 {
	return [FeatureCount]float64{b.Skills.Value, b.Experience.Value, b.Education.Value}
}
