package scoring

import (
	"math"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// Adjustment records a tier bonus applied to a base score.
type Adjustment struct {
	Base         float64                `json:"base"`
	Adjusted     float64                `json:"adjusted"`
	Tier         types.SubscriptionTier `json:"tier"`
	Multiplier   float64                `json:"multiplier"`
	BonusPercent float64                `json:"bonus_percent"`
}

// Adjust returns min(100, base*multiplier) rounded to two decimals.
func Adjust(base float64, tier types.SubscriptionTier) Adjustment {
	multiplier := tier.Multiplier()
	adjusted := math.Min(MaxScore, clamp(base)*multiplier)
	return Adjustment{
		Base:         base,
		Adjusted:     math.Round(adjusted*100) / 100,
		Tier:         tier,
		Multiplier:   multiplier,
		BonusPercent: tier.BonusPercent(),
	}
}

// ApplyTier returns a copy of b with the tier bonus applied to the composite.
// b itself is not modified.
func ApplyTier(b *types.ScoreBreakdown, tier types.SubscriptionTier) *types.ScoreBreakdown {
	adj := Adjust(float64(b.Composite), tier)
	out := *b
	out.Tier = tier
	out.Multiplier = adj.Multiplier
	out.BonusPercent = adj.BonusPercent
	out.Final = adj.Adjusted
	return &out
}
