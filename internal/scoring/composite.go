package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jonathan/candidate-matcher/internal/skills"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// Default composite weights. Education is reported and used as a model feature
// but carries no composite weight.
const (
	DefaultSkillsWeight     = 0.4
	DefaultSimilarityWeight = 0.3
	DefaultExperienceWeight = 0.2
	DefaultLanguageWeight   = 0.1

	weightSumTolerance = 0.01
)

// Recommendation labels by composite threshold.
const (
	LabelStronglyRecommended = "Strongly recommended"
	LabelRecommended         = "Recommended"
	LabelConsider            = "Consider"
	LabelNotRecommended      = "Not recommended"
)

// Weights are the composite weights. They must be non-negative and sum to 1.
type Weights struct {
	Skills     float64 `json:"skills" mapstructure:"skills"`
	Similarity float64 `json:"similarity" mapstructure:"similarity"`
	Experience float64 `json:"experience" mapstructure:"experience"`
	Language   float64 `json:"language" mapstructure:"language"`
}

// DefaultWeights returns 0.4 skills, 0.3 similarity, 0.2 experience, 0.1 language.
func DefaultWeights() Weights {
	return Weights{
		Skills:     DefaultSkillsWeight,
		Similarity: DefaultSimilarityWeight,
		Experience: DefaultExperienceWeight,
		Language:   DefaultLanguageWeight,
	}
}

// Validate checks that weights are non-negative and sum to 1 within 0.01.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"skills":     w.Skills,
		"similarity": w.Similarity,
		"experience": w.Experience,
		"language":   w.Language,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must be non-negative, got %.2f", name, v)
		}
	}
	sum := w.Skills + w.Similarity + w.Experience + w.Language
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %.2f", sum)
	}
	return nil
}

// Combine returns the weighted sum rounded half-up to an integer in [0,100].
func Combine(w Weights, skillsScore, similarity, experience, language float64) int {
	sum := w.Skills*skillsScore +
		w.Similarity*similarity +
		w.Experience*experience +
		w.Language*language
	return int(math.Floor(clamp(sum) + 0.5))
}

// RecommendationLabel maps a score to a hiring recommendation.
func RecommendationLabel(score float64) string {
	switch {
	case score >= 80:
		return LabelStronglyRecommended
	case score >= 65:
		return LabelRecommended
	case score >= 50:
		return LabelConsider
	default:
		return LabelNotRecommended
	}
}

// Options configures a Scorer.
type Options struct {
	Weights   Weights
	Extractor *skills.Extractor
	// Now is the evaluation instant for current roles. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the default weights, vocabulary and clock.
func DefaultOptions() Options {
	return Options{
		Weights:   DefaultWeights(),
		Extractor: skills.NewExtractor(nil),
		Now:       time.Now,
	}
}

// Scorer computes score breakdowns. It holds no mutable state and is safe for
// concurrent use.
type Scorer struct {
	weights   Weights
	extractor *skills.Extractor
	now       func() time.Time
}

// NewScorer validates the options and returns a Scorer.
func NewScorer(opts Options) (*Scorer, error) {
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}
	if opts.Extractor == nil {
		opts.Extractor = skills.NewExtractor(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scorer{weights: opts.Weights, extractor: opts.Extractor, now: opts.Now}, nil
}

// Weights returns the composite weights in use.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Extractor returns the skill extractor in use.
func (s *Scorer) Extractor() *skills.Extractor {
	return s.extractor
}

// Score computes every factor and the composite for one candidate and job. The
// breakdown is unadjusted: Tier is Free and Final equals Composite.
func (s *Scorer) Score(profile *types.CandidateProfile, job *types.JobRequirement) *types.ScoreBreakdown {
	now := s.now()

	candidateSkills := s.extractor.ProfileSkills(profile.AllSkills(), profile.ResumeText)
	skillsScore := SkillsScore(candidateSkills, s.extractor.FromList(job.RequiredSkills), profile.HasPortfolioData())
	experience := ExperienceScore(profile.TotalExperienceYears(now), len(profile.Experience), job.RequiredYears)
	education := EducationScore(profile.HighestEducation(), len(profile.Education), job.RequiredEducation)
	language := LanguageScore(profile, job.RequiredLanguages)
	similarity := Similarity(CandidateText(profile), JobText(job))

	composite := Combine(s.weights, skillsScore.Value, similarity.Value, experience.Value, language.Value)

	return &types.ScoreBreakdown{
		CandidateID:    profile.ID,
		JobID:          job.ID,
		Skills:         skillsScore,
		Experience:     experience,
		Education:      education,
		Language:       language,
		Similarity:     similarity,
		Composite:      composite,
		Tier:           types.TierFree,
		Multiplier:     1,
		Final:          float64(composite),
		Recommendation: RecommendationLabel(float64(composite)),
	}
}

// CandidateText is the resume text compared against the job. Profiles without
// resume text are described by their skills, titles, fields, projects and
// certificates.
func CandidateText(profile *types.CandidateProfile) string {
	if strings.TrimSpace(profile.ResumeText) != "" {
		return profile.ResumeText
	}

	var parts []string
	parts = append(parts, profile.Skills...)
	for _, exp := range profile.Experience {
		parts = append(parts, exp.Title, exp.Organization)
	}
	for _, edu := range profile.Education {
		parts = append(parts, edu.Degree, edu.FieldOfStudy)
	}
	for _, project := range profile.Projects {
		parts = append(parts, project.Name, project.Description)
		parts = append(parts, project.Technologies...)
	}
	for _, cert := range profile.Certificates {
		parts = append(parts, cert.Name)
		parts = append(parts, cert.Skills...)
	}
	return strings.Join(parts, " ")
}

// JobText is the job's title, plain-text description and required skills.
// HTML descriptions that fail to parse are used as-is.
func JobText(job *types.JobRequirement) string {
	description, err := skills.PlainText(job.Description)
	if err != nil {
		description = job.Description
	}
	parts := make([]string, 0, len(job.RequiredSkills)+2)
	parts = append(parts, job.Title, description)
	parts = append(parts, job.RequiredSkills...)
	return strings.Join(parts, " ")
}
