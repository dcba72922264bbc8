package engine

import (
	"context"
	"time"

	"github.com/jonathan/candidate-matcher/internal/logging"
	"github.com/jonathan/candidate-matcher/internal/scoring"
	"github.com/jonathan/candidate-matcher/internal/store"
	"github.com/jonathan/candidate-matcher/internal/types"
	"go.uber.org/zap"
)

// statusVersionLimit caps the artifact versions listed in Status.
const statusVersionLimit = 10

// ModelStatus describes the published model.
type ModelStatus struct {
	Name      string    `json:"name"`
	Loaded    bool      `json:"loaded"`
	Version   string    `json:"version,omitempty"`
	TrainedAt time.Time `json:"trained_at,omitempty"`
	Samples   int       `json:"samples,omitempty"`
	Positives int       `json:"positives,omitempty"`
	Accuracy  float64   `json:"accuracy,omitempty"`
}

// TierInfo describes what a subscription tier changes.
type TierInfo struct {
	Name         string  `json:"name"`
	Multiplier   float64 `json:"multiplier"`
	BonusPercent float64 `json:"bonus_percent"`
	PremiumRatio float64 `json:"premium_ratio"`
}

// StoreStatus summarizes what the backend holds.
type StoreStatus struct {
	ArtifactVersions []store.ArtifactVersion `json:"artifact_versions"`
	Recommendations  int                     `json:"recommendations_recorded"`
}

// Status is a snapshot of the service configuration and model state.
type Status struct {
	Model          ModelStatus     `json:"model"`
	Weights        scoring.Weights `json:"weights"`
	RecommendLimit int             `json:"recommend_limit"`
	Tiers          []TierInfo      `json:"subscription_tiers"`
	Store          *StoreStatus    `json:"store,omitempty"`
}

// Status reports the published model, the tier table and, when an inventory is
// configured, the stored model versions and recommendation count. Inventory
// failures are logged and leave Store unset.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{
		Model:          ModelStatus{Name: s.predictor.Name()},
		Weights:        s.scorer.Weights(),
		RecommendLimit: s.limit,
	}
	if a := s.predictor.Current(); a != nil {
		st.Model = ModelStatus{
			Name:      a.Name,
			Loaded:    true,
			Version:   a.Version,
			TrainedAt: a.TrainedAt,
			Samples:   a.Samples,
			Positives: a.Positives,
			Accuracy:  a.Accuracy,
		}
	}
	for _, tier := range types.AllTiers() {
		st.Tiers = append(st.Tiers, TierInfo{
			Name:         tier.String(),
			Multiplier:   tier.Multiplier(),
			BonusPercent: tier.BonusPercent(),
			PremiumRatio: s.premiumRatios[tier],
		})
	}
	st.Store = s.storeStatus(ctx)
	return st
}

func (s *Service) storeStatus(ctx context.Context) *StoreStatus {
	if s.inventory == nil {
		return nil
	}
	log := s.logger.With(zap.String(logging.FieldModelName, s.predictor.Name()))

	versions, err := s.inventory.ListArtifactVersions(ctx, s.predictor.Name(), statusVersionLimit)
	if err != nil {
		log.Warn("failed to list artifact versions", zap.Error(err))
		return nil
	}
	count, err := s.inventory.CountRecommendations(ctx, "")
	if err != nil {
		log.Warn("failed to count recommendations", zap.Error(err))
		return nil
	}
	if versions == nil {
		versions = []store.ArtifactVersion{}
	}
	return &StoreStatus{ArtifactVersions: versions, Recommendations: count}
}

// RecentRecommendations returns the latest recorded recommendations for a
// candidate, or for everyone when candidateID is empty. Without an inventory
// there is nothing to list.
func (s *Service) RecentRecommendations(ctx context.Context, candidateID string, limit int) ([]store.RecommendationRecord, error) {
	if s.inventory == nil {
		return nil, nil
	}
	return s.inventory.ListRecommendations(ctx, candidateID, limit)
}
