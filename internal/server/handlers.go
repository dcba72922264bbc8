package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/candidate-matcher/internal/engine"
	"github.com/jonathan/candidate-matcher/internal/logging"
	"github.com/jonathan/candidate-matcher/internal/model"
	"github.com/jonathan/candidate-matcher/internal/types"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; training sets are the largest payloads.
const maxBodyBytes = 16 << 20

// pairRequest is a candidate and a job.
type pairRequest struct {
	Candidate *types.CandidateProfile `json:"candidate" validate:"required"`
	Job       *types.JobRequirement   `json:"job" validate:"required"`
}

// ScoreRequest represents the request body for /score
type ScoreRequest struct {
	pairRequest
	// SubscriptionTier overrides the candidate's own tier when set.
	SubscriptionTier string `json:"subscription_tier,omitempty"`
}

// RankRequest represents the request body for /rank
type RankRequest struct {
	pairRequest
	Peers []*types.CandidateProfile `json:"peers" validate:"dive,required"`
}

// RecommendJobsRequest represents the request body for /recommend-jobs
type RecommendJobsRequest struct {
	Candidate        *types.CandidateProfile `json:"candidate" validate:"required"`
	Jobs             []*types.JobRequirement `json:"jobs" validate:"dive,required"`
	SubscriptionTier string                  `json:"subscription_tier,omitempty"`
	ExcludeJobID     string                  `json:"exclude_job_id,omitempty"`
}

// RecommendJobsResponse represents the response for /recommend-jobs
type RecommendJobsResponse struct {
	Jobs  []types.RecommendedJob `json:"jobs"`
	Count int                    `json:"count"`
}

// RecommendationRequest represents the request body for /recommendation
type RecommendationRequest struct {
	pairRequest
	Peers            []*types.CandidateProfile `json:"peers" validate:"dive,required"`
	Jobs             []*types.JobRequirement   `json:"jobs" validate:"dive,required"`
	SubscriptionTier string                    `json:"subscription_tier,omitempty"`
}

// TrainRequest represents the request body for /train
type TrainRequest struct {
	Applications []types.Application       `json:"applications" validate:"dive"`
	Profiles     []*types.CandidateProfile `json:"profiles" validate:"dive,required"`
	Jobs         []*types.JobRequirement   `json:"jobs" validate:"dive,required"`
}

// StatusResponse represents the response for /status
type StatusResponse struct {
	engine.Status
	Uptime string `json:"uptime"`
}

// normalizer is implemented by requests carrying profiles or jobs.
type normalizer interface {
	normalize()
}

func (req *pairRequest) normalize() {
	req.Candidate = req.Candidate.Normalized()
	req.Job = req.Job.Normalized()
}

func (req *RankRequest) normalize() {
	req.pairRequest.normalize()
	types.NormalizeProfiles(req.Peers)
}

func (req *RecommendJobsRequest) normalize() {
	req.Candidate = req.Candidate.Normalized()
	types.NormalizeJobs(req.Jobs)
}

func (req *RecommendationRequest) normalize() {
	req.pairRequest.normalize()
	types.NormalizeProfiles(req.Peers)
	types.NormalizeJobs(req.Jobs)
}

func (req *TrainRequest) normalize() {
	types.NormalizeProfiles(req.Profiles)
	types.NormalizeJobs(req.Jobs)
}

// decodeRequest reads a JSON body into req, validates it and normalizes any
// profiles and jobs it carries.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		s.failWith(w, r, validationError(err))
		return false
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	return true
}

// tierFor returns the explicit tier, or the candidate's own.
func tierFor(explicit string, candidate *types.CandidateProfile) types.SubscriptionTier {
	if explicit != "" {
		return types.ParseSubscriptionTier(explicit)
	}
	return candidate.Subscription
}

// handleScore scores one candidate against one job
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	breakdown, err := s.engine.Score(r.Context(), req.Candidate, req.Job, tierFor(req.SubscriptionTier, req.Candidate))
	if err != nil {
		s.failWith(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, breakdown)
}

// handleRank ranks a candidate among the other applicants
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	result, err := s.engine.Rank(r.Context(), req.Candidate, req.Peers, req.Job)
	if err != nil {
		s.failWith(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleStrengths lists covered and missing requirements
func (s *Server) handleStrengths(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	sw, err := s.engine.StrengthsWeaknesses(req.Candidate, req.Job)
	if err != nil {
		s.failWith(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sw)
}

// handleRecommendJobs suggests better matching jobs. The limit query parameter
// defaults to the configured better-matches limit.
func (s *Server) handleRecommendJobs(w http.ResponseWriter, r *http.Request) {
	limit := s.betterMatchesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.failWith(w, r, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	var req RecommendJobsRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	jobs, err := s.engine.RecommendJobs(r.Context(), req.Candidate, req.Jobs,
		tierFor(req.SubscriptionTier, req.Candidate), limit, req.ExcludeJobID)
	if err != nil {
		s.failWith(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, RecommendJobsResponse{Jobs: jobs, Count: len(jobs)})
}

// handleRecommendation builds the full recommendation for one application
func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	rec, err := s.engine.Recommend(r.Context(), req.Candidate, req.Job, req.Peers, req.Jobs,
		tierFor(req.SubscriptionTier, req.Candidate))
	if err != nil {
		s.failWith(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handlePredict returns the pass likelihood for a candidate and job
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	prediction, err := s.engine.PredictSuccess(req.Candidate, req.Job)
	if err != nil {
		s.failWith(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, prediction)
}

// handleTrain retrains the predictive model from historical applications.
// A retrain already in progress yields 409. A model that trained but could not
// be saved is reported with a warning.
func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	profiles := make(map[string]*types.CandidateProfile, len(req.Profiles))
	for _, p := range req.Profiles {
		profiles[p.ID] = p
	}
	jobs := make(map[string]*types.JobRequirement, len(req.Jobs))
	for _, j := range req.Jobs {
		jobs[j.ID] = j
	}

	summary, err := s.engine.Train(r.Context(), req.Applications, profiles, jobs)
	if err != nil && summary != nil && errors.Is(err, model.ErrNotSaved) {
		// the new model is already serving; report it with the warning
		s.logger.Warn("trained model was not persisted",
			zap.String(logging.FieldModelVersion, summary.ModelVersion), zap.Error(err))
		s.jsonResponse(w, http.StatusOK, summary)
		return
	}
	if err != nil {
		s.failWith(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, summary)
}

// handleStatus reports the model, tier table and stored history
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, StatusResponse{
		Status: s.engine.Status(r.Context()),
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
