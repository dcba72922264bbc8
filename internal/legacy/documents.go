package legacy

import (
	"fmt"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// userDoc is an account record. Subscription lives here, not on the portfolio.
type userDoc struct {
	ID           string                 `mapstructure:"_id"`
	FullName     string                 `mapstructure:"fullName"`
	Name         string                 `mapstructure:"name"`
	Skills       []string               `mapstructure:"skills"`
	Subscription types.SubscriptionTier `mapstructure:"subscription"`
}

type portfolioDoc struct {
	ID           string           `mapstructure:"_id"`
	UserID       string           `mapstructure:"userId"`
	Skills       []string         `mapstructure:"skills"`
	Experience   []experienceDoc  `mapstructure:"experience"`
	Education    []educationDoc   `mapstructure:"education"`
	Languages    []languageDoc    `mapstructure:"languages"`
	Projects     []projectDoc     `mapstructure:"projects"`
	Certificates []certificateDoc `mapstructure:"certificates"`
	Summary      string           `mapstructure:"summary"`
}

// experienceDoc accepts both the startDate/endDate and from/to spellings.
type experienceDoc struct {
	Title            string     `mapstructure:"title"`
	Company          string     `mapstructure:"company"`
	StartDate        types.Date `mapstructure:"startDate"`
	EndDate          types.Date `mapstructure:"endDate"`
	From             types.Date `mapstructure:"from"`
	To               types.Date `mapstructure:"to"`
	CurrentlyWorking bool       `mapstructure:"currentlyWorking"`
	Current          bool       `mapstructure:"current"`
}

type educationDoc struct {
	School       string            `mapstructure:"school"`
	Institution  string            `mapstructure:"institution"`
	Degree       string            `mapstructure:"degree"`
	FieldOfStudy string            `mapstructure:"fieldOfStudy"`
	Level        types.DegreeLevel `mapstructure:"level"`
}

type languageDoc struct {
	Code     string                 `mapstructure:"code"`
	Language string                 `mapstructure:"language"`
	Name     string                 `mapstructure:"name"`
	Level    types.ProficiencyLevel `mapstructure:"level"`
}

type projectDoc struct {
	Title        string   `mapstructure:"title"`
	Name         string   `mapstructure:"name"`
	Description  string   `mapstructure:"description"`
	Technologies []string `mapstructure:"technologies"`
}

type certificateDoc struct {
	Title        string   `mapstructure:"title"`
	Name         string   `mapstructure:"name"`
	Issuer       string   `mapstructure:"issuer"`
	Organization string   `mapstructure:"organization"`
	Skills       []string `mapstructure:"skills"`
}

type jobPostDoc struct {
	ID              string            `mapstructure:"_id"`
	Title           string            `mapstructure:"title"`
	Description     string            `mapstructure:"description"`
	CompanyID       string            `mapstructure:"companyId"`
	CompanyName     string            `mapstructure:"companyName"`
	Location        string            `mapstructure:"location"`
	Requirements    []string          `mapstructure:"requirements"`
	Skills          []string          `mapstructure:"skills"`
	SalaryRange     string            `mapstructure:"salaryRange"`
	ExperienceYears float64           `mapstructure:"experienceYears"`
	EducationLevel  types.DegreeLevel `mapstructure:"educationLevel"`
	Languages       []languageDoc     `mapstructure:"languages"`
}

type companyDoc struct {
	ID   string `mapstructure:"_id"`
	Name string `mapstructure:"name"`
}

type applicationDoc struct {
	ID     string `mapstructure:"_id"`
	UserID string `mapstructure:"userId"`
	JobID  string `mapstructure:"jobId"`
	Status string `mapstructure:"status"`
}

// DecodeProfile builds a candidate profile from a portfolio document and the
// owning user document. Either may be nil, but not both.
func DecodeProfile(portfolio, user map[string]any) (*types.CandidateProfile, error) {
	if portfolio == nil && user == nil {
		return nil, fmt.Errorf("no portfolio or user document")
	}
	var p portfolioDoc
	if err := decode(portfolio, &p); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio: %w", err)
	}
	var u userDoc
	if err := decode(user, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	profile := &types.CandidateProfile{
		ID:           firstNonEmpty(p.UserID, u.ID, p.ID),
		Name:         firstNonEmpty(u.FullName, u.Name),
		Skills:       splitList(append(append([]string{}, p.Skills...), u.Skills...)),
		ResumeText:   p.Summary,
		Subscription: u.Subscription,
	}
	for _, e := range p.Experience {
		exp := types.Experience{
			Title:        e.Title,
			Organization: e.Company,
			StartDate:    e.StartDate,
			EndDate:      e.EndDate,
			Current:      e.CurrentlyWorking || e.Current,
		}
		if exp.StartDate.IsZero() {
			exp.StartDate = e.From
		}
		if exp.EndDate.IsZero() {
			exp.EndDate = e.To
		}
		profile.Experience = append(profile.Experience, exp)
	}
	for _, e := range p.Education {
		profile.Education = append(profile.Education, types.Education{
			Level:        e.Level,
			Degree:       e.Degree,
			FieldOfStudy: e.FieldOfStudy,
			Institution:  firstNonEmpty(e.School, e.Institution),
		})
	}
	profile.Languages = decodeLanguages(p.Languages)
	for _, pr := range p.Projects {
		profile.Projects = append(profile.Projects, types.Project{
			Name:         firstNonEmpty(pr.Title, pr.Name),
			Description:  pr.Description,
			Technologies: splitList(pr.Technologies),
		})
	}
	for _, c := range p.Certificates {
		profile.Certificates = append(profile.Certificates, types.Certificate{
			Name:   firstNonEmpty(c.Title, c.Name),
			Issuer: firstNonEmpty(c.Issuer, c.Organization),
			Skills: splitList(c.Skills),
		})
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("decoded profile is invalid: %w", err)
	}
	return profile.Normalized(), nil
}

func decodeLanguages(docs []languageDoc) []types.LanguageProficiency {
	var out []types.LanguageProficiency
	for _, l := range docs {
		code := languageCode(firstNonEmpty(l.Code, l.Language, l.Name))
		if code == "" {
			continue
		}
		out = append(out, types.LanguageProficiency{Code: code, Level: l.Level})
	}
	return out
}

// DecodeJob builds a job requirement from a job post document. companyName is
// used when the post only references its company by ID.
func DecodeJob(post map[string]any, companyName string) (*types.JobRequirement, error) {
	var d jobPostDoc
	if err := decode(post, &d); err != nil {
		return nil, fmt.Errorf("failed to decode job post: %w", err)
	}

	job := &types.JobRequirement{
		ID:                d.ID,
		Title:             d.Title,
		Description:       d.Description,
		CompanyName:       firstNonEmpty(d.CompanyName, companyName),
		Location:          d.Location,
		RequiredSkills:    splitList(append(append([]string{}, d.Requirements...), d.Skills...)),
		RequiredYears:     d.ExperienceYears,
		RequiredEducation: d.EducationLevel,
		SalaryText:        d.SalaryRange,
	}
	for _, l := range decodeLanguages(d.Languages) {
		job.RequiredLanguages = append(job.RequiredLanguages, types.LanguageRequirement{
			Code:     l.Code,
			MinLevel: l.Level,
		})
	}

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("decoded job %q is invalid: %w", d.Title, err)
	}
	return job.Normalized(), nil
}

// DecodeApplication converts an application document. Unknown statuses are Pending.
func DecodeApplication(doc map[string]any) (types.Application, error) {
	var d applicationDoc
	if err := decode(doc, &d); err != nil {
		return types.Application{}, fmt.Errorf("failed to decode application: %w", err)
	}
	app := types.Application{
		ID:          d.ID,
		CandidateID: d.UserID,
		JobID:       d.JobID,
		Status:      types.ParseApplicationStatus(d.Status),
	}
	if app.CandidateID == "" || app.JobID == "" {
		return types.Application{}, fmt.Errorf("application %q is missing userId or jobId", d.ID)
	}
	return app, nil
}
