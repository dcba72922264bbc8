package ranking

import (
	"github.com/jonathan/candidate-matcher/internal/skills"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// RequiredItems returns what job asks for: required skills, then title keywords,
// then description keywords, normalized and deduplicated in that order.
func RequiredItems(job *types.JobRequirement, extractor *skills.Extractor) []string {
	items := make([]string, 0, len(job.RequiredSkills))
	items = append(items, extractor.FromList(job.RequiredSkills)...)
	items = append(items, extractor.Extract(job.Title)...)

	description, err := skills.PlainText(job.Description)
	if err != nil {
		description = job.Description
	}
	items = append(items, extractor.Extract(description)...)
	return skills.NormalizeAll(items)
}

// CandidateItems returns the candidate's skills, project technologies,
// certificate skills and known skills from the resume text, plus keywords from
// project and certificate names.
func CandidateItems(profile *types.CandidateProfile, extractor *skills.Extractor) []string {
	items := extractor.ProfileSkills(profile.AllSkills(), profile.ResumeText)
	for _, project := range profile.Projects {
		items = append(items, extractor.Extract(project.Name+" "+project.Description)...)
	}
	for _, cert := range profile.Certificates {
		items = append(items, extractor.Extract(cert.Name)...)
	}
	return skills.NormalizeAll(items)
}

// Identify splits the job's required items into those the candidate covers and
// those it misses, using the same partial-match rule as skill scoring. Both lists
// keep the job's order and are not truncated.
func Identify(profile *types.CandidateProfile, job *types.JobRequirement, extractor *skills.Extractor) types.StrengthsWeaknesses {
	candidate := CandidateItems(profile, extractor)

	result := types.StrengthsWeaknesses{
		Strengths:  []string{},
		Weaknesses: []string{},
	}
	for _, item := range RequiredItems(job, extractor) {
		if skills.MatchesAny(item, candidate) {
			result.Strengths = append(result.Strengths, item)
		} else {
			result.Weaknesses = append(result.Weaknesses, item)
		}
	}
	return result
}
