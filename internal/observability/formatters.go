// Package observability provides formatted output for match results: boxed
// summaries for the CLI and the markdown text report attached to recommendations.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to limit runes, ending with "..." when cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// writeList writes up to maxItemsToShow bullet items and a "more" line.
func writeList(sb *strings.Builder, items []string) {
	count := min(len(items), maxItemsToShow)
	for i := range count {
		fmt.Fprintf(sb, "  • %s\n", items[i])
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-maxItemsToShow)
	}
}

// PrintBreakdown outputs the factor scores behind a composite.
func (p *Printer) PrintBreakdown(b *types.ScoreBreakdown) {
	if b == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Candidate:  %s\n", b.CandidateID)
	fmt.Fprintf(&sb, "Job:        %s\n", b.JobID)
	sb.WriteString("\n")
	writeFactor(&sb, "Skills", b.Skills)
	writeFactor(&sb, "Similarity", b.Similarity)
	writeFactor(&sb, "Experience", b.Experience)
	writeFactor(&sb, "Education", b.Education)
	writeFactor(&sb, "Language", b.Language)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Composite:  %d (%s)\n", b.Composite, b.Recommendation)
	if b.Multiplier > 1 {
		fmt.Fprintf(&sb, "Final:      %.2f (%s, +%.0f%%)\n", b.Final, b.Tier, b.BonusPercent)
	}
	if b.Predicted != nil {
		fmt.Fprintf(&sb, "Predicted:  %.2f\n", *b.Predicted)
	} else if b.PredictiveFallback {
		sb.WriteString("Predicted:  n/a (heuristic fallback)\n")
	}

	p.printBox("MATCH BREAKDOWN", strings.TrimSuffix(sb.String(), "\n"))
}

func writeFactor(sb *strings.Builder, name string, s types.SubScore) {
	fmt.Fprintf(sb, "%-11s %6.2f", name+":", s.Value)
	if s.Degraded {
		sb.WriteString("  *")
		if s.Reason != "" {
			sb.WriteString(" " + s.Reason)
		}
	}
	sb.WriteString("\n")
}

// PrintRanking outputs a candidate's standing among applicants.
func (p *Printer) PrintRanking(r *types.RankingResult) {
	if r == nil {
		return
	}
	content := fmt.Sprintf("Score:       %.0f\nRank:        %d of %d\nPercentile:  %.2f",
		r.Score, r.Rank, r.TotalApplicants, r.Percentile)
	p.printBox("RANKING", content)
}

// PrintLeaderboard outputs the top ranked candidates.
func (p *Printer) PrintLeaderboard(board []types.RankedCandidate) {
	if len(board) == 0 {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total candidates ranked: %d\n\n", len(board))
	count := min(len(board), maxItemsToShow)
	for i := range count {
		c := board[i]
		fmt.Fprintf(&sb, "#%d  %s  %.0f (p%.0f)\n", c.Rank, c.CandidateID, c.Score, c.Percentile)
	}
	if len(board) > maxItemsToShow {
		fmt.Fprintf(&sb, "\n... and %d more candidates", len(board)-maxItemsToShow)
	}

	p.printBox("LEADERBOARD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStrengths outputs the first strengths and weaknesses.
func (p *Printer) PrintStrengths(sw *types.StrengthsWeaknesses) {
	if sw == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("Strengths:\n")
	if len(sw.Strengths) == 0 {
		sb.WriteString("  (none)\n")
	}
	writeList(&sb, sw.Strengths)
	sb.WriteString("\nWeaknesses:\n")
	if len(sw.Weaknesses) == 0 {
		sb.WriteString("  (none)\n")
	}
	writeList(&sb, sw.Weaknesses)

	p.printBox("STRENGTHS AND WEAKNESSES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendedJobs outputs suggested jobs, premium ones marked with ★.
func (p *Printer) PrintRecommendedJobs(jobs []types.RecommendedJob) {
	if len(jobs) == 0 {
		return
	}

	var sb strings.Builder
	for i, j := range jobs {
		marker := " "
		if j.Premium {
			marker = "★"
		}
		title := j.Title
		if j.CompanyName != "" {
			title += " @ " + j.CompanyName
		}
		fmt.Fprintf(&sb, "%s %5.2f%%  %s\n", marker, j.MatchPercentage, title)
		if i == maxItemsToShow-1 && len(jobs) > maxItemsToShow {
			fmt.Fprintf(&sb, "\n... and %d more jobs\n", len(jobs)-maxItemsToShow)
			break
		}
	}

	p.printBox("RECOMMENDED JOBS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendation outputs every section of a recommendation bundle.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRecommendation(rec *types.Recommendation) {
	if rec == nil {
		return
	}

	source := "model"
	if rec.Prediction.Fallback {
		source = "heuristic"
	}
	summary := fmt.Sprintf("Pass likelihood:  %.2f%%\nBase (%s):  %.2f%%\nTier bonus:       +%.1f%% (%s)",
		rec.PassPercentage, source, rec.BasePercentage, rec.BonusPercent, rec.Tier)
	p.printBox("RECOMMENDATION", summary)

	p.PrintBreakdown(rec.Breakdown)
	p.PrintRanking(&rec.Ranking)
	p.PrintStrengths(&types.StrengthsWeaknesses{Strengths: rec.Strengths, Weaknesses: rec.Weaknesses})
	p.PrintRecommendedJobs(rec.SimilarJobs)
}
