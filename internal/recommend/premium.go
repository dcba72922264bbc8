package recommend

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// DefaultPremiumSalaryThreshold is the yearly salary above which a job is premium.
const DefaultPremiumSalaryThreshold = 80000.0

// DefaultSeniorityKeywords mark premium jobs when found in the title.
var DefaultSeniorityKeywords = []string{"senior", "lead", "manager", "director", "architect"}

// ErrUnparsableSalary is returned for salary text without a readable upper bound.
var ErrUnparsableSalary = errors.New("unparsable salary range")

// ParseSalaryMax returns the upper bound of a free-form salary range such as
// "$80K-100K", "80,000-100,000" or "80000". A "k" suffix multiplies by 1000.
func ParseSalaryMax(text string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return 0, ErrUnparsableSalary
	}

	parts := strings.Split(s, "-")
	upper := parts[len(parts)-1]

	multiplier := 1.0
	if strings.HasSuffix(upper, "k") {
		upper = strings.TrimSuffix(upper, "k")
		multiplier = 1000
	}

	v, err := strconv.ParseFloat(upper, 64)
	if err != nil || v < 0 {
		return 0, ErrUnparsableSalary
	}
	return v * multiplier, nil
}

// Classifier decides whether a job is premium.
type Classifier struct {
	SalaryThreshold   float64
	SeniorityKeywords []string
}

// DefaultClassifier uses the 80000 threshold and the default seniority keywords.
func DefaultClassifier() Classifier {
	return Classifier{
		SalaryThreshold:   DefaultPremiumSalaryThreshold,
		SeniorityKeywords: DefaultSeniorityKeywords,
	}
}

// IsPremium reports whether the job's salary ceiling exceeds the threshold or its
// title contains a seniority keyword. A job's own SeniorityKeywords replace the
// classifier's. Structured salaries take precedence over legacy salary text;
// unparsable text counts as non-premium.
func (c Classifier) IsPremium(job *types.JobRequirement) bool {
	if ceiling, ok := salaryMax(job); ok && ceiling > c.SalaryThreshold {
		return true
	}

	keywords := c.SeniorityKeywords
	if len(job.SeniorityKeywords) > 0 {
		keywords = job.SeniorityKeywords
	}
	title := strings.ToLower(job.Title)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

func salaryMax(job *types.JobRequirement) (float64, bool) {
	if job.Salary != nil && job.Salary.Max > 0 {
		return job.Salary.Max, true
	}
	if job.SalaryText == "" {
		return 0, false
	}
	ceiling, err := ParseSalaryMax(job.SalaryText)
	if err != nil {
		return 0, false
	}
	return ceiling, true
}
