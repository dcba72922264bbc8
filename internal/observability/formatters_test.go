package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/stretchr/testify/assert"
)

func predicted(v float64) *float64 { return &v }

func sampleBreakdown() *types.ScoreBreakdown {
	return &types.ScoreBreakdown{
		CandidateID:    "cand_1",
		JobID:          "job_1",
		Skills:         types.SubScore{Value: 75},
		Similarity:     types.SubScore{Value: 42.5},
		Experience:     types.SubScore{Value: 15, Degraded: true, Reason: "experience below floor"},
		Education:      types.SubScore{Value: 100},
		Language:       types.SubScore{Value: 100},
		Composite:      65,
		Tier:           types.Tier2,
		Multiplier:     1.2,
		BonusPercent:   20,
		Final:          78,
		Recommendation: "Recommended",
		Predicted:      predicted(71.25),
	}
}

func TestPrintBreakdown(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBreakdown(sampleBreakdown())
	output := buf.String()

	assert.Contains(t, output, "MATCH BREAKDOWN")
	assert.Contains(t, output, "cand_1")
	assert.Contains(t, output, "Composite:  65 (Recommended)")
	assert.Contains(t, output, "Tier2, +20%")
	assert.Contains(t, output, "71.25")
	assert.Contains(t, output, "* experience below floor")
}

func TestPrintBreakdown_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBreakdown(nil)
	p.PrintRanking(nil)
	p.PrintStrengths(nil)
	p.PrintRecommendation(nil)

	assert.Empty(t, buf.String())
}

func TestPrintStrengths_TruncatesLists(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStrengths(&types.StrengthsWeaknesses{
		Strengths:  []string{"go", "sql", "docker", "aws", "linux", "git", "kafka"},
		Weaknesses: nil,
	})
	output := buf.String()

	assert.Contains(t, output, "linux")
	assert.NotContains(t, output, "kafka")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "(none)")
}

func TestPrintLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	board := make([]types.RankedCandidate, 7)
	for i := range board {
		board[i] = types.RankedCandidate{CandidateID: "c" + string(rune('a'+i)), Score: float64(90 - i), Rank: i + 1}
	}
	p.PrintLeaderboard(board)
	output := buf.String()

	assert.Contains(t, output, "Total candidates ranked: 7")
	assert.Contains(t, output, "#1  ca  90")
	assert.Contains(t, output, "... and 2 more candidates")
}

func TestPrintRecommendedJobs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRecommendedJobs([]types.RecommendedJob{
		{JobID: "j1", Title: "Senior Go Engineer", CompanyName: "CloudSphere", MatchPercentage: 88.5, Premium: true},
		{JobID: "j2", Title: "Backend Developer", MatchPercentage: 70},
	})
	output := buf.String()

	assert.Contains(t, output, "★ 88.50%  Senior Go Engineer @ CloudSphere")
	assert.Contains(t, output, "70.00%  Backend Developer")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintRecommendation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRecommendation(sampleRecommendation())
	output := buf.String()

	assert.Contains(t, output, "RECOMMENDATION")
	assert.Contains(t, output, "Pass likelihood:  85.50%")
	assert.Contains(t, output, "RANKING")
	assert.Contains(t, output, "Rank:        2 of 4")
	assert.Contains(t, output, "STRENGTHS AND WEAKNESSES")
	assert.Contains(t, output, "RECOMMENDED JOBS")
}
