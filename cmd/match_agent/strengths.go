package main

import (
	"fmt"
	"os"

	"github.com/jonathan/candidate-matcher/internal/observability"
	"github.com/spf13/cobra"
)

var strengthsCmd = &cobra.Command{
	Use:   "strengths",
	Short: "List the job requirements a candidate covers and misses",
	RunE:  runStrengths,
}

var (
	strengthsCandidate string
	strengthsJob       string
	strengthsJSON      bool
)

func init() {
	strengthsCmd.Flags().StringVarP(&strengthsCandidate, "candidate", "c", "", "Path to CandidateProfile JSON file (required)")
	strengthsCmd.Flags().StringVarP(&strengthsJob, "job", "j", "", "Path to JobRequirement JSON file (required)")
	strengthsCmd.Flags().BoolVar(&strengthsJSON, "json", false, "Print JSON instead of a summary")

	markRequired(strengthsCmd, "candidate", "job")
	rootCmd.AddCommand(strengthsCmd)
}

func runStrengths(cmd *cobra.Command, _ []string) error {
	profile, err := readProfile(strengthsCandidate)
	if err != nil {
		return err
	}
	job, err := readJob(strengthsJob)
	if err != nil {
		return err
	}

	svc, closeFn, err := newService(commandContext(cmd))
	if err != nil {
		return err
	}
	defer closeFn()

	sw, err := svc.StrengthsWeaknesses(profile, job)
	if err != nil {
		return fmt.Errorf("failed to compare requirements: %w", err)
	}
	if strengthsJSON {
		return writeJSON("", sw)
	}
	observability.NewPrinter(os.Stdout).PrintStrengths(sw)
	return nil
}
