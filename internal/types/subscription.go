package types

import (
	"encoding/json"
	"strings"
)

// SubscriptionTier is the candidate's paid plan.
type SubscriptionTier int

// Subscription tiers, lowest first.
const (
	TierFree SubscriptionTier = iota
	Tier1
	Tier2
	Tier3
)

// tierMultipliers holds the fixed score multiplier per tier.
var tierMultipliers = map[SubscriptionTier]float64{
	TierFree: 1.0,
	Tier1:    1.1,
	Tier2:    1.2,
	Tier3:    1.3,
}

var tierNames = map[SubscriptionTier]string{
	TierFree: "Free",
	Tier1:    "Tier1",
	Tier2:    "Tier2",
	Tier3:    "Tier3",
}

// tierAliases includes the plan names used by the billing system.
var tierAliases = map[string]SubscriptionTier{
	"":         TierFree,
	"free":     TierFree,
	"tier1":    Tier1,
	"golden":   Tier1,
	"gold":     Tier1,
	"tier2":    Tier2,
	"platinum": Tier2,
	"tier3":    Tier3,
	"master":   Tier3,
}

// AllTiers lists every tier in ascending order.
func AllTiers() []SubscriptionTier {
	return []SubscriptionTier{TierFree, Tier1, Tier2, Tier3}
}

// ParseSubscriptionTier maps a plan name to a tier. Unknown names are treated as Free.
func ParseSubscriptionTier(s string) SubscriptionTier {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if tier, ok := tierAliases[key]; ok {
		return tier
	}
	return TierFree
}

// Multiplier returns the fixed bonus multiplier for the tier.
func (t SubscriptionTier) Multiplier() float64 {
	if m, ok := tierMultipliers[t]; ok {
		return m
	}
	return 1.0
}

// BonusPercent returns the multiplier expressed as a percentage bonus (Tier2 -> 20).
func (t SubscriptionTier) BonusPercent() float64 {
	return roundTo((t.Multiplier()-1)*100, 1)
}

// IsPaid reports whether the tier is above Free.
func (t SubscriptionTier) IsPaid() bool {
	return t > TierFree && t <= Tier3
}

// String returns the canonical tier name.
func (t SubscriptionTier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return tierNames[TierFree]
}

// MarshalJSON encodes the tier by name.
func (t SubscriptionTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts canonical and billing plan names.
func (t *SubscriptionTier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseSubscriptionTier(s)
	return nil
}
