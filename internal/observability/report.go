package observability

import (
	"fmt"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// Report renders a recommendation as a markdown document for the candidate.
// Strength and weakness lists are cut to the first five items.
func Report(rec *types.Recommendation, jobTitle string) string {
	if rec == nil {
		return ""
	}

	var sb strings.Builder
	title := jobTitle
	if title == "" {
		title = rec.JobID
	}
	fmt.Fprintf(&sb, "# Application analysis: %s\n\n", title)

	fmt.Fprintf(&sb, "**Pass likelihood:** %.2f%%", rec.PassPercentage)
	if rec.BonusPercent > 0 {
		fmt.Fprintf(&sb, " (base %.2f%% + %.1f%% %s bonus)", rec.BasePercentage, rec.BonusPercent, rec.Tier)
	}
	sb.WriteString("\n\n")
	if rec.Prediction.Fallback {
		sb.WriteString("_Estimated from the match score; no trained model was available._\n\n")
	}

	if b := rec.Breakdown; b != nil {
		sb.WriteString("## Match breakdown\n\n")
		sb.WriteString("| Factor | Score |\n|---|---|\n")
		fmt.Fprintf(&sb, "| Skills | %.0f |\n", b.Skills.Value)
		fmt.Fprintf(&sb, "| Profile similarity | %.0f |\n", b.Similarity.Value)
		fmt.Fprintf(&sb, "| Experience | %.0f |\n", b.Experience.Value)
		fmt.Fprintf(&sb, "| Education | %.0f |\n", b.Education.Value)
		fmt.Fprintf(&sb, "| Languages | %.0f |\n", b.Language.Value)
		fmt.Fprintf(&sb, "| **Overall** | **%d** |\n\n", b.Composite)
		fmt.Fprintf(&sb, "Verdict: **%s**\n\n", b.Recommendation)
	}

	if rec.Ranking.TotalApplicants > 0 {
		sb.WriteString("## Standing\n\n")
		fmt.Fprintf(&sb, "You rank **%d of %d** applicants (percentile %.0f).\n\n",
			rec.Ranking.Rank, rec.Ranking.TotalApplicants, rec.Ranking.Percentile)
	}

	writeSection(&sb, "Strengths", rec.Strengths, "No required skills matched yet.")
	writeSection(&sb, "Areas to improve", rec.Weaknesses, "You cover every listed requirement.")

	if len(rec.SimilarJobs) > 0 {
		sb.WriteString("## Other jobs you may like\n\n")
		for _, j := range rec.SimilarJobs {
			line := fmt.Sprintf("- %s", j.Title)
			if j.CompanyName != "" {
				line += " at " + j.CompanyName
			}
			line += fmt.Sprintf(" (%.0f%% match)", j.MatchPercentage)
			if j.Premium {
				line += " ★"
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeSection(sb *strings.Builder, heading string, items []string, empty string) {
	fmt.Fprintf(sb, "## %s\n\n", heading)
	if len(items) == 0 {
		sb.WriteString(empty + "\n\n")
		return
	}
	count := min(len(items), maxItemsToShow)
	for i := range count {
		fmt.Fprintf(sb, "- %s\n", items[i])
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "- ... and %d more\n", len(items)-maxItemsToShow)
	}
	sb.WriteString("\n")
}
