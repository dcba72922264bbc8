package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/candidate-matcher/internal/engine"
	"github.com/jonathan/candidate-matcher/internal/model"
	"github.com/jonathan/candidate-matcher/internal/store"
	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const candidateJSON = `{
	"id": "cand_1",
	"skills": ["Python", "Django", "PostgreSQL"],
	"experience": [{"title": "Backend Developer", "start_date": "2018-01", "end_date": "2023-01"}],
	"education": [{"level": "bachelor"}],
	"languages": [{"code": "en", "level": "C1"}]
}`

const jobJSON = `{
	"id": "job_1",
	"title": "Backend Developer",
	"description": "<p>Python services with <b>Django</b></p>",
	"required_skills": ["Python", "Django"],
	"required_years": 2,
	"required_languages": [{"code": "en", "min_level": "B2"}]
}`

func newTestServer(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	svc, err := engine.New(nil, engine.DefaultOptions())
	require.NoError(t, err)
	s := New(svc, cfg, nil)
	t.Cleanup(s.rateLimiter.Stop)
	return s.Handler()
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, Config{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestScoreEndpoint(t *testing.T) {
	h := newTestServer(t, Config{})

	w := post(t, h, "/score", `{"candidate": `+candidateJSON+`, "job": `+jobJSON+`, "subscription_tier": "Platinum"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	b := decode[types.ScoreBreakdown](t, w)
	assert.Equal(t, "cand_1", b.CandidateID)
	assert.Equal(t, types.Tier2, b.Tier)
	assert.Equal(t, 100.0, b.Skills.Value)
	assert.True(t, b.PredictiveFallback)
	assert.GreaterOrEqual(t, b.Final, float64(b.Composite))
}

func TestScoreEndpoint_NormalizesInput(t *testing.T) {
	h := newTestServer(t, Config{})

	candidate := `{"id": "cand_2", "skills": ["Go"], "education": [{"degree": "Master of Science"}], "languages": [{"code": "EN"}]}`
	job := `{"id": "job_2", "title": "Go Developer", "required_skills": ["go"], "required_education": "bachelor", "required_languages": [{"code": "en"}]}`
	w := post(t, h, "/score", `{"candidate": `+candidate+`, "job": `+job+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	b := decode[types.ScoreBreakdown](t, w)
	// A2 against the default B1 requirement
	assert.InDelta(t, 200.0/3, b.Language.Value, 0.01)
	assert.Equal(t, 100.0, b.Education.Value)
}

func TestScoreEndpoint_ValidationErrors(t *testing.T) {
	h := newTestServer(t, Config{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"candidate": `},
		{"missing job", `{"candidate": ` + candidateJSON + `}`},
		{"candidate without id", `{"candidate": {"skills": []}, "job": ` + jobJSON + `}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, h, "/score", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode[map[string]string](t, w)["error"])
		})
	}
}

func TestRankEndpoint(t *testing.T) {
	h := newTestServer(t, Config{})

	body := `{"candidate": ` + candidateJSON + `, "job": ` + jobJSON + `, "peers": [{"id": "p1"}, {"id": "p2", "skills": ["Python"]}]}`
	w := post(t, h, "/rank", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	r := decode[types.RankingResult](t, w)
	assert.Equal(t, 1, r.Rank)
	assert.Equal(t, 3, r.TotalApplicants)
	assert.Equal(t, 100.0, r.Percentile)

	w = post(t, h, "/rank", `{"candidate": `+candidateJSON+`, "job": `+jobJSON+`, "peers": [null]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStrengthsEndpoint(t *testing.T) {
	h := newTestServer(t, Config{})

	w := post(t, h, "/strengths", `{"candidate": {"id": "c", "skills": ["python"]}, "job": `+jobJSON+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	sw := decode[types.StrengthsWeaknesses](t, w)
	assert.Contains(t, sw.Strengths, "python")
	assert.Contains(t, sw.Weaknesses, "django")
}

func TestRecommendJobsEndpoint(t *testing.T) {
	h := newTestServer(t, Config{BetterMatchesLimit: 2})

	jobs := `[` + jobJSON + `,
		{"id": "job_2", "title": "Python Developer", "required_skills": ["Python"]},
		{"id": "job_3", "title": "Django Developer", "required_skills": ["Django"]},
		{"id": "job_4", "title": "Accountant", "required_skills": ["Excel"]}]`
	body := `{"candidate": ` + candidateJSON + `, "jobs": ` + jobs + `, "exclude_job_id": "job_1"}`

	w := post(t, h, "/recommend-jobs", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[RecommendJobsResponse](t, w)
	assert.Equal(t, 2, resp.Count)

	w = post(t, h, "/recommend-jobs?limit=1", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[RecommendJobsResponse](t, w).Count)

	w = post(t, h, "/recommend-jobs?limit=zero", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendationEndpoint(t *testing.T) {
	h := newTestServer(t, Config{})

	body := `{"candidate": ` + candidateJSON + `, "job": ` + jobJSON + `,
		"peers": [{"id": "p1"}],
		"jobs": [{"id": "job_2", "title": "Python Developer", "required_skills": ["Python"]}],
		"subscription_tier": "Tier3"}`
	w := post(t, h, "/recommendation", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rec := decode[types.Recommendation](t, w)
	assert.Equal(t, types.Tier3, rec.Tier)
	assert.InDelta(t, 30.0, rec.BonusPercent, 1e-9)
	assert.GreaterOrEqual(t, rec.PassPercentage, rec.BasePercentage)
	assert.Equal(t, 2, rec.Ranking.TotalApplicants)
	assert.True(t, strings.HasPrefix(rec.Report, "# Application analysis: Backend Developer"))
}

func TestPredictEndpoint(t *testing.T) {
	h := newTestServer(t, Config{})

	w := post(t, h, "/predict", `{"candidate": `+candidateJSON+`, "job": `+jobJSON+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p := decode[types.Prediction](t, w)
	assert.True(t, p.Fallback)
	assert.Greater(t, p.Value, 0.0)
}

func TestTrainEndpoint_SkippedWithLittleData(t *testing.T) {
	h := newTestServer(t, Config{})

	body := `{
		"applications": [{"candidate_id": "cand_1", "job_id": "job_1", "status": "Accepted"}],
		"profiles": [` + candidateJSON + `],
		"jobs": [` + jobJSON + `]
	}`
	w := post(t, h, "/train", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	summary := decode[types.TrainingSummary](t, w)
	assert.True(t, summary.Skipped)
	assert.NotEmpty(t, summary.Reason)

	w = post(t, h, "/train", `{"applications": [{"job_id": "job_1"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type unwritableStore struct{}

func (unwritableStore) SaveArtifact(context.Context, *model.Artifact) error {
	return errors.New("disk full")
}

func (unwritableStore) LoadArtifact(context.Context, string) (*model.Artifact, error) {
	return nil, store.ErrNotFound
}

func TestTrainEndpoint_SaveFailureReturnsSummary(t *testing.T) {
	predictor := model.NewPredictor(model.DefaultName, unwritableStore{}, model.DefaultTrainConfig(), nil)
	svc, err := engine.New(predictor, engine.DefaultOptions())
	require.NoError(t, err)
	s := New(svc, Config{}, nil)
	t.Cleanup(s.rateLimiter.Stop)
	h := s.Handler()

	req := TrainRequest{Jobs: []*types.JobRequirement{{
		ID:             "job_1",
		Title:          "Backend Developer",
		RequiredSkills: []string{"Python", "Django", "PostgreSQL"},
		RequiredYears:  2,
	}}}
	for i := range 4 {
		strong, weak := fmt.Sprintf("strong_%d", i), fmt.Sprintf("weak_%d", i)
		req.Profiles = append(req.Profiles,
			&types.CandidateProfile{
				ID:     strong,
				Skills: []string{"Python", "Django", "PostgreSQL"},
				Experience: []types.Experience{{
					Title:     "Backend Developer",
					StartDate: types.NewDate(2015, time.January, 1),
					EndDate:   types.NewDate(2022, time.January, 1),
				}},
			},
			&types.CandidateProfile{ID: weak},
		)
		req.Applications = append(req.Applications,
			types.Application{CandidateID: strong, JobID: "job_1", Status: types.StatusAccepted},
			types.Application{CandidateID: weak, JobID: "job_1", Status: types.StatusRejected},
		)
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := post(t, h, "/train", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	summary := decode[types.TrainingSummary](t, w)
	assert.False(t, summary.Skipped)
	assert.NotEmpty(t, summary.ModelVersion)
	assert.Equal(t, 8, summary.Samples)
	assert.Contains(t, summary.Warning, "disk full")

	assert.True(t, svc.Status(context.Background()).Model.Loaded)
}

func TestStatusEndpoint(t *testing.T) {
	h := newTestServer(t, Config{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "model")
	assert.Contains(t, resp, "uptime")
	assert.Len(t, resp["subscription_tiers"], 4)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, Config{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/score", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, Config{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/score", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, Config{RateLimit: 1, RateBurst: 2})

	var last *httptest.ResponseRecorder
	for range 3 {
		last = post(t, h, "/predict", `{"candidate": `+candidateJSON+`, "job": `+jobJSON+`}`)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "1", last.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decode[map[string]any](t, last)["error"])
}
