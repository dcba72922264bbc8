package main

import (
	"fmt"
	"os"

	"github.com/jonathan/candidate-matcher/internal/observability"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a candidate against a job requirement",
	Long:  "Computes the per-factor and composite match score of a candidate profile against a job requirement, with the subscription tier adjustment applied.",
	RunE:  runScore,
}

var (
	scoreCandidate string
	scoreJob       string
	scoreTier      string
	scoreOutput    string
	scoreJSON      bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreCandidate, "candidate", "c", "", "Path to CandidateProfile JSON file (required)")
	scoreCmd.Flags().StringVarP(&scoreJob, "job", "j", "", "Path to JobRequirement JSON file (required)")
	scoreCmd.Flags().StringVarP(&scoreTier, "tier", "t", "", "Subscription tier (defaults to the candidate's own)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Write the JSON breakdown to this file")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print JSON instead of a summary")

	markRequired(scoreCmd, "candidate", "job")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	profile, err := readProfile(scoreCandidate)
	if err != nil {
		return err
	}
	job, err := readJob(scoreJob)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	breakdown, err := svc.Score(ctx, profile, job, tierFor(scoreTier, profile))
	if err != nil {
		return fmt.Errorf("failed to score candidate: %w", err)
	}

	if scoreJSON || scoreOutput != "" {
		return writeJSON(scoreOutput, breakdown)
	}
	observability.NewPrinter(os.Stdout).PrintBreakdown(breakdown)
	return nil
}

// markRequired marks flags as required, panicking on a misspelled name.
func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
}
