package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// JobRequirement is a structured job opening.
type JobRequirement struct {
	ID                string                `json:"id" validate:"required"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	CompanyName       string                `json:"company_name,omitempty"`
	Location          string                `json:"location,omitempty"`
	RequiredSkills    []string              `json:"required_skills,omitempty"`
	RequiredYears     float64               `json:"required_years" validate:"gte=0"`
	RequiredEducation DegreeLevel           `json:"required_education"`
	RequiredLanguages []LanguageRequirement `json:"required_languages,omitempty" validate:"dive"`
	Salary            *SalaryRange          `json:"salary,omitempty"`
	SalaryText        string                `json:"salary_text,omitempty"` // legacy free-form range, e.g. "$80K-100K"
	SeniorityKeywords []string              `json:"seniority_keywords,omitempty"`
}

// LanguageRequirement is a required language with a minimum CEFR level.
type LanguageRequirement struct {
	Code     string           `json:"code" validate:"required"`
	MinLevel ProficiencyLevel `json:"min_level"`
}

// SalaryRange is a structured yearly salary band.
type SalaryRange struct {
	Min      float64 `json:"min,omitempty" validate:"gte=0"`
	Max      float64 `json:"max,omitempty" validate:"gte=0"`
	Currency string  `json:"currency,omitempty"`
}

// DefaultRequiredLanguageLevel applies when a language requirement omits its level.
const DefaultRequiredLanguageLevel = LevelB1

// Validate validates the JobRequirement using the validator.
func (j *JobRequirement) Validate() error {
	validate := validator.New()
	return validate.Struct(j)
}

// Normalized returns a copy with required skills deduplicated case-insensitively
// and language requirements defaulted to B1 when no level is given.
// The receiver is not modified.
func (j *JobRequirement) Normalized() *JobRequirement {
	out := *j
	out.RequiredSkills = DedupeFold(j.RequiredSkills)
	out.RequiredLanguages = make([]LanguageRequirement, len(j.RequiredLanguages))
	for i, req := range j.RequiredLanguages {
		req.Code = strings.ToLower(strings.TrimSpace(req.Code))
		if req.MinLevel == LevelUnknown {
			req.MinLevel = DefaultRequiredLanguageLevel
		}
		out.RequiredLanguages[i] = req
	}
	return &out
}

// NormalizeJobs normalizes each job in place of the slice entry. Nil entries are kept.
func NormalizeJobs(jobs []*JobRequirement) {
	for i, j := range jobs {
		if j != nil {
			jobs[i] = j.Normalized()
		}
	}
}
