package types

// SubScore is a single factor score in [0,100]. Degraded marks values that came
// from a documented floor or fallback rather than a clean computation.
type SubScore struct {
	Value    float64 `json:"value"`
	Degraded bool    `json:"degraded,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// ScoreBreakdown is the immutable result of scoring one candidate against one job.
type ScoreBreakdown struct {
	CandidateID string           `json:"candidate_id"`
	JobID       string           `json:"job_id"`
	Skills      SubScore         `json:"skills"`
	Experience  SubScore         `json:"experience"`
	Education   SubScore         `json:"education"`
	Language    SubScore         `json:"language"`
	Similarity  SubScore         `json:"similarity"`
	Composite   int              `json:"composite"`
	Tier        SubscriptionTier `json:"subscription_tier"`
	Multiplier  float64          `json:"multiplier"`
	// BonusPercent is the tier multiplier expressed as a percentage (Tier2 -> 20).
	BonusPercent   float64 `json:"subscription_bonus"`
	Final          float64 `json:"final"`
	Recommendation string  `json:"recommendation"`
	// Predicted is the model's pass likelihood; nil when no model was consulted.
	Predicted          *float64 `json:"predicted,omitempty"`
	PredictiveFallback bool     `json:"predictive_fallback,omitempty"`
}

// RankingResult is a candidate's standing among the applicants to a job.
type RankingResult struct {
	Score           float64 `json:"score"`
	Rank            int     `json:"rank"`
	TotalApplicants int     `json:"total_applicants"`
	Percentile      float64 `json:"percentile"`
}

// RankedCandidate is one row of a leaderboard.
type RankedCandidate struct {
	CandidateID string  `json:"candidate_id"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
	Percentile  float64 `json:"percentile"`
}

// StrengthsWeaknesses lists required items the candidate covers and misses,
// both in the order the job lists them.
type StrengthsWeaknesses struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// RecommendedJob is a job suggested to a candidate.
type RecommendedJob struct {
	JobID           string  `json:"id"`
	Title           string  `json:"title"`
	CompanyName     string  `json:"company_name,omitempty"`
	MatchPercentage float64 `json:"match_percentage"`
	Premium         bool    `json:"premium,omitempty"`
}

// Prediction is a pass likelihood from the predictive model, or from the heuristic
// composite when Fallback is set.
type Prediction struct {
	Value        float64 `json:"value"`
	Fallback     bool    `json:"fallback"`
	ModelVersion string  `json:"model_version,omitempty"`
	Reason       string  `json:"reason,omitempty"`
}

// Recommendation bundles everything the candidate sees for one application.
type Recommendation struct {
	CandidateID    string           `json:"candidate_id"`
	JobID          string           `json:"job_id"`
	PassPercentage float64          `json:"pass_percentage"`
	BasePercentage float64          `json:"base_percentage"`
	Tier           SubscriptionTier `json:"subscription_tier"`
	BonusPercent   float64          `json:"subscription_bonus"`
	Prediction     Prediction       `json:"prediction"`
	Breakdown      *ScoreBreakdown  `json:"breakdown"`
	Ranking        RankingResult    `json:"ranking"`
	Strengths      []string         `json:"strengths"`
	Weaknesses     []string         `json:"weaknesses"`
	SimilarJobs    []RecommendedJob `json:"similar_jobs"`
	Report         string           `json:"text_report,omitempty"`
}
