// Package scoring computes per-factor and composite match scores between a
// candidate profile and a job requirement.
package scoring

import (
	"fmt"
	"math"

	"github.com/jonathan/candidate-matcher/internal/skills"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// Score bounds and documented defaults.
const (
	MaxScore = 100.0

	// ScoreFloor is the minimum awarded to a factor when the candidate has some
	// portfolio data but nothing that directly measures the factor.
	ScoreFloor = 15.0

	// EducationNeutralBaseline applies when the job requires no education and the
	// candidate lists none.
	EducationNeutralBaseline = 50.0
)

// Reasons attached to degraded sub-scores.
const (
	reasonSkillsFloor       = "no skills listed; floor applied for other portfolio data"
	reasonExperienceFloor   = "experience below requirement; floor applied"
	reasonNoExperience      = "no experience listed; floor applied"
	reasonEducationFloor    = "education below requirement; floor applied"
	reasonEducationBaseline = "no education listed or required; neutral baseline applied"
)

// SkillsScore returns matches / max(1, |required|) * 100 where a required skill
// matches when it partially matches any candidate skill. With no requirements the
// score is 100. A candidate without skills gets ScoreFloor when hasPortfolio is
// set, and 0 otherwise.
func SkillsScore(candidate, required []string, hasPortfolio bool) types.SubScore {
	required = skills.NormalizeAll(required)
	if len(required) == 0 {
		return types.SubScore{Value: MaxScore}
	}

	candidate = skills.NormalizeAll(candidate)
	if len(candidate) == 0 {
		if hasPortfolio {
			return types.SubScore{Value: ScoreFloor, Degraded: true, Reason: reasonSkillsFloor}
		}
		return types.SubScore{Value: 0}
	}

	matches := 0
	for _, req := range required {
		if skills.MatchesAny(req, candidate) {
			matches++
		}
	}
	return types.SubScore{Value: clamp(float64(matches) / float64(len(required)) * MaxScore)}
}

// ExperienceScore compares total years against the required years.
//
// With a requirement, meeting it scores 100 and falling short scores
// years/required*100 floored at ScoreFloor, or 0 when no experience is listed.
// Without a requirement any experience scores 100 and none scores ScoreFloor,
// so empty profiles are not rewarded.
func ExperienceScore(years float64, entries int, required float64) types.SubScore {
	if required <= 0 {
		if entries > 0 {
			return types.SubScore{Value: MaxScore}
		}
		return types.SubScore{Value: ScoreFloor, Degraded: true, Reason: reasonNoExperience}
	}

	if entries == 0 {
		return types.SubScore{Value: 0}
	}
	if years >= required {
		return types.SubScore{Value: MaxScore}
	}

	partial := years / required * MaxScore
	if partial < ScoreFloor {
		return types.SubScore{Value: ScoreFloor, Degraded: true, Reason: reasonExperienceFloor}
	}
	return types.SubScore{Value: clamp(partial)}
}

// EducationScore compares the candidate's highest degree against the required
// level on the ladder none < associate < bachelor < master < doctorate.
func EducationScore(highest types.DegreeLevel, entries int, required types.DegreeLevel) types.SubScore {
	if required <= types.DegreeNone {
		if entries > 0 {
			return types.SubScore{Value: MaxScore}
		}
		return types.SubScore{Value: EducationNeutralBaseline, Degraded: true, Reason: reasonEducationBaseline}
	}

	if entries == 0 {
		return types.SubScore{Value: 0}
	}
	if highest >= required {
		return types.SubScore{Value: MaxScore}
	}

	partial := float64(highest) / float64(required) * MaxScore
	if partial < ScoreFloor {
		return types.SubScore{Value: ScoreFloor, Degraded: true, Reason: reasonEducationFloor}
	}
	return types.SubScore{Value: clamp(partial)}
}

// LanguageScore averages per-language credit across the requirements. A language
// the candidate does not list scores 0. No requirements score 100. Both sides
// are expected to be normalized, so every level is known.
func LanguageScore(profile *types.CandidateProfile, requirements []types.LanguageRequirement) types.SubScore {
	if len(requirements) == 0 {
		return types.SubScore{Value: MaxScore}
	}

	total := 0.0
	var missing []string
	for _, req := range requirements {
		level, found := profile.LanguageLevel(req.Code)
		if !found {
			missing = append(missing, req.Code)
			continue
		}
		if level >= req.MinLevel {
			total += MaxScore
			continue
		}
		total += float64(level) / float64(req.MinLevel) * MaxScore
	}

	score := types.SubScore{Value: clamp(total / float64(len(requirements)))}
	if len(missing) > 0 {
		score.Reason = fmt.Sprintf("missing required languages: %v", missing)
	}
	return score
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > MaxScore:
		return MaxScore
	default:
		return v
	}
}
