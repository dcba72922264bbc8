package legacy

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// Export is a collection dump keyed by collection name.
type Export struct {
	Users        []map[string]any `json:"users"`
	Portfolios   []map[string]any `json:"portfolios"`
	Companies    []map[string]any `json:"companies"`
	JobPosts     []map[string]any `json:"jobposts"`
	Applications []map[string]any `json:"applications"`
}

// Dataset is an export decoded into typed records.
type Dataset struct {
	Profiles     map[string]*types.CandidateProfile
	Jobs         map[string]*types.JobRequirement
	Applications []types.Application
	// Skipped holds one message per document that could not be decoded.
	Skipped []string

	jobOrder []string
}

// JobList returns the jobs in export order.
func (d *Dataset) JobList() []*types.JobRequirement {
	out := make([]*types.JobRequirement, 0, len(d.jobOrder))
	for _, id := range d.jobOrder {
		out = append(out, d.Jobs[id])
	}
	return out
}

// ReadExport parses a JSON collection dump.
func ReadExport(r io.Reader) (*Export, error) {
	var e Export
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}
	return &e, nil
}

// Decode converts every document in the export. Documents that fail to decode
// are reported in Skipped rather than aborting the whole dataset.
func (e *Export) Decode() *Dataset {
	ds := &Dataset{
		Profiles: make(map[string]*types.CandidateProfile),
		Jobs:     make(map[string]*types.JobRequirement),
	}

	users := make(map[string]map[string]any, len(e.Users))
	for _, u := range e.Users {
		var d userDoc
		if err := decode(u, &d); err == nil && d.ID != "" {
			users[d.ID] = u
		}
	}

	claimed := make(map[string]bool)
	for _, p := range e.Portfolios {
		var d portfolioDoc
		_ = decode(p, &d)
		profile, err := DecodeProfile(p, users[d.UserID])
		if err != nil {
			ds.Skipped = append(ds.Skipped, fmt.Sprintf("portfolio %s: %v", d.ID, err))
			continue
		}
		claimed[d.UserID] = true
		ds.Profiles[profile.ID] = profile
	}
	// users without a portfolio still carry skills
	for id, u := range users {
		if claimed[id] {
			continue
		}
		profile, err := DecodeProfile(nil, u)
		if err != nil {
			ds.Skipped = append(ds.Skipped, fmt.Sprintf("user %s: %v", id, err))
			continue
		}
		ds.Profiles[profile.ID] = profile
	}

	companies := make(map[string]string, len(e.Companies))
	for _, c := range e.Companies {
		var d companyDoc
		if err := decode(c, &d); err == nil {
			companies[d.ID] = d.Name
		}
	}

	for _, post := range e.JobPosts {
		var d jobPostDoc
		_ = decode(post, &d)
		job, err := DecodeJob(post, companies[d.CompanyID])
		if err != nil {
			ds.Skipped = append(ds.Skipped, fmt.Sprintf("jobpost %s: %v", d.ID, err))
			continue
		}
		if _, dup := ds.Jobs[job.ID]; !dup {
			ds.jobOrder = append(ds.jobOrder, job.ID)
		}
		ds.Jobs[job.ID] = job
	}

	for _, a := range e.Applications {
		app, err := DecodeApplication(a)
		if err != nil {
			ds.Skipped = append(ds.Skipped, err.Error())
			continue
		}
		ds.Applications = append(ds.Applications, app)
	}
	return ds
}
