package types

import (
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// CandidateProfile is the structured portfolio of a single candidate.
type CandidateProfile struct {
	ID           string                `json:"id" validate:"required"`
	Name         string                `json:"name,omitempty"`
	Skills       []string              `json:"skills,omitempty"`
	Experience   []Experience          `json:"experience,omitempty" validate:"dive"`
	Education    []Education           `json:"education,omitempty"`
	Languages    []LanguageProficiency `json:"languages,omitempty" validate:"dive"`
	Projects     []Project             `json:"projects,omitempty"`
	Certificates []Certificate         `json:"certificates,omitempty"`
	ResumeText   string                `json:"resume_text,omitempty"`
	Subscription SubscriptionTier      `json:"subscription,omitempty"`
}

// Experience is one employment entry.
type Experience struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	StartDate    Date   `json:"start_date"`
	EndDate      Date   `json:"end_date"`
	Current      bool   `json:"current,omitempty"`
}

// Education is one degree entry.
type Education struct {
	Level        DegreeLevel `json:"level"`
	Degree       string      `json:"degree,omitempty"`
	FieldOfStudy string      `json:"field_of_study,omitempty"`
	Institution  string      `json:"institution,omitempty"`
}

// LanguageProficiency is a spoken language with a CEFR level.
type LanguageProficiency struct {
	Code  string           `json:"code" validate:"required"`
	Level ProficiencyLevel `json:"level"`
}

// Project is a portfolio project; its technologies count as candidate skills.
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// Certificate is a completed certification; its skills count as candidate skills.
type Certificate struct {
	Name   string   `json:"name"`
	Issuer string   `json:"issuer,omitempty"`
	Skills []string `json:"skills,omitempty"`
}

// Validate validates the CandidateProfile using the validator.
func (p *CandidateProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// DefaultCandidateLanguageLevel applies to a listed language without a level.
const DefaultCandidateLanguageLevel = LevelA2

// Normalized returns a copy with skills trimmed and deduplicated case-insensitively,
// language codes lower-cased, languages without a level set to A2, and education
// levels resolved from free-form degree names where no level was given.
// The receiver is not modified.
func (p *CandidateProfile) Normalized() *CandidateProfile {
	out := *p
	out.Skills = DedupeFold(p.Skills)

	out.Languages = make([]LanguageProficiency, len(p.Languages))
	for i, lang := range p.Languages {
		lang.Code = strings.ToLower(strings.TrimSpace(lang.Code))
		if lang.Level == LevelUnknown {
			lang.Level = DefaultCandidateLanguageLevel
		}
		out.Languages[i] = lang
	}

	out.Education = make([]Education, len(p.Education))
	for i, edu := range p.Education {
		if edu.Level == DegreeNone && edu.Degree != "" {
			edu.Level = ParseDegreeLevel(edu.Degree)
		}
		out.Education[i] = edu
	}
	return &out
}

// NormalizeProfiles normalizes each profile in place of the slice entry.
// Nil entries are kept.
func NormalizeProfiles(profiles []*CandidateProfile) {
	for i, p := range profiles {
		if p != nil {
			profiles[i] = p.Normalized()
		}
	}
}

// AllSkills returns listed skills plus project technologies and certificate skills,
// lower-cased and deduplicated in first-seen order.
func (p *CandidateProfile) AllSkills() []string {
	all := make([]string, 0, len(p.Skills))
	all = append(all, p.Skills...)
	for _, project := range p.Projects {
		all = append(all, project.Technologies...)
	}
	for _, cert := range p.Certificates {
		all = append(all, cert.Skills...)
	}
	return LowerDedupe(all)
}

// HasPortfolioData reports whether the profile carries anything besides skills.
func (p *CandidateProfile) HasPortfolioData() bool {
	return len(p.Experience) > 0 ||
		len(p.Education) > 0 ||
		len(p.Languages) > 0 ||
		len(p.Projects) > 0 ||
		len(p.Certificates) > 0 ||
		strings.TrimSpace(p.ResumeText) != ""
}

// HighestEducation returns the highest ladder position among education entries.
// Levels named only by a free-form degree are resolved by Normalized.
func (p *CandidateProfile) HighestEducation() DegreeLevel {
	highest := DegreeNone
	for _, edu := range p.Education {
		if edu.Level > highest {
			highest = edu.Level
		}
	}
	return highest
}

// LanguageLevel returns the candidate's best level for a normalized language code.
func (p *CandidateProfile) LanguageLevel(code string) (ProficiencyLevel, bool) {
	best, found := LevelUnknown, false
	for _, lang := range p.Languages {
		if lang.Code != code {
			continue
		}
		found = true
		if lang.Level > best {
			best = lang.Level
		}
	}
	return best, found
}

// daysPerYear accounts for leap years.
const daysPerYear = 365.25

// Years returns the entry's duration in years, measured up to now for current roles
// or entries without an end date. Entries without a start date, or with an end
// before the start, count as zero.
func (e Experience) Years(now time.Time) float64 {
	if e.StartDate.IsZero() {
		return 0
	}
	end := e.EndDate.Time
	if e.Current || end.IsZero() {
		end = now
	}
	if !end.After(e.StartDate.Time) {
		return 0
	}
	return end.Sub(e.StartDate.Time).Hours() / 24 / daysPerYear
}

// TotalExperienceYears sums all entry durations.
func (p *CandidateProfile) TotalExperienceYears(now time.Time) float64 {
	total := 0.0
	for _, exp := range p.Experience {
		total += exp.Years(now)
	}
	return total
}

// DedupeFold trims values and removes case-insensitive duplicates, keeping the
// first spelling seen. Empty values are dropped.
func DedupeFold(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// LowerDedupe lower-cases, trims and deduplicates values in first-seen order.
func LowerDedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
