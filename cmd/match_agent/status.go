package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jonathan/candidate-matcher/internal/engine"
	"github.com/jonathan/candidate-matcher/internal/store"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the published model, stored history and subscription tiers",
	Long: `Shows the published model, the model versions and recommendation count held by
the configured store, and the subscription tier table. With --candidate the
candidate's latest recorded recommendations are listed instead.`,
	RunE: runStatus,
}

var (
	statusJSON      bool
	statusCandidate string
	statusLimit     int
)

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print JSON instead of a summary")
	statusCmd.Flags().StringVar(&statusCandidate, "candidate", "", "List recorded recommendations for this candidate ID")
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 10, "Maximum recommendations to list")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if statusCandidate != "" {
		return printRecentRecommendations(ctx, svc)
	}

	st := svc.Status(ctx)
	if statusJSON {
		return writeJSON("", st)
	}

	var sb strings.Builder
	if st.Model.Loaded {
		fmt.Fprintf(&sb, "Model:   %s %s (%d samples, accuracy %.2f)\n",
			st.Model.Name, st.Model.Version, st.Model.Samples, st.Model.Accuracy)
	} else {
		fmt.Fprintf(&sb, "Model:   %s (not trained, composite fallback)\n", st.Model.Name)
	}
	fmt.Fprintf(&sb, "Store:   %s", cfg.Store.Driver)
	if st.Store != nil {
		fmt.Fprintf(&sb, " (%d model versions, %d recommendations recorded)",
			len(st.Store.ArtifactVersions), st.Store.Recommendations)
	}
	sb.WriteString("\n")
	if st.Store != nil {
		for _, v := range st.Store.ArtifactVersions {
			fmt.Fprintf(&sb, "  %s  %s  %d samples, accuracy %.2f\n",
				v.TrainedAt.Format(time.RFC3339), v.Version, v.Samples, v.Accuracy)
		}
	}
	fmt.Fprintf(&sb, "Weights: skills %.2f, similarity %.2f, experience %.2f, language %.2f\n",
		st.Weights.Skills, st.Weights.Similarity, st.Weights.Experience, st.Weights.Language)
	sb.WriteString("Tiers:\n")
	for _, tier := range st.Tiers {
		fmt.Fprintf(&sb, "  %-6s x%.1f  premium share %.0f%%\n", tier.Name, tier.Multiplier, tier.PremiumRatio*100)
	}
	_, err = fmt.Fprint(os.Stdout, sb.String())
	return err
}

func printRecentRecommendations(ctx context.Context, svc *engine.Service) error {
	records, err := svc.RecentRecommendations(ctx, statusCandidate, statusLimit)
	if err != nil {
		return fmt.Errorf("failed to list recommendations: %w", err)
	}
	if statusJSON {
		if records == nil {
			records = []store.RecommendationRecord{}
		}
		return writeJSON("", records)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Recommendations for %s: %d\n", statusCandidate, len(records))
	for _, r := range records {
		fmt.Fprintf(&sb, "  %s  %-12s pass %.2f%%  rank %d  %s\n",
			r.CreatedAt.Format(time.RFC3339), r.JobID, r.PassPercentage, r.Rank, r.Tier)
	}
	_, err = fmt.Fprint(os.Stdout, sb.String())
	return err
}
