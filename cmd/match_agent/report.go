package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the markdown application report",
	Long:  "Builds the full recommendation for a candidate and job and writes its markdown report, to stdout or --out.",
	RunE:  runReport,
}

var (
	reportCandidate string
	reportJob       string
	reportPeers     string
	reportCatalog   string
	reportTier      string
	reportOutput    string
)

func init() {
	reportCmd.Flags().StringVarP(&reportCandidate, "candidate", "c", "", "Path to CandidateProfile JSON file (required)")
	reportCmd.Flags().StringVarP(&reportJob, "job", "j", "", "Path to JobRequirement JSON file (required)")
	reportCmd.Flags().StringVarP(&reportPeers, "peers", "p", "", "Path to a JSON array of peer CandidateProfiles")
	reportCmd.Flags().StringVar(&reportCatalog, "jobs", "", "Path to a JSON array of catalog JobRequirements")
	reportCmd.Flags().StringVarP(&reportTier, "tier", "t", "", "Subscription tier (defaults to the candidate's own)")
	reportCmd.Flags().StringVarP(&reportOutput, "out", "o", "", "Path to output markdown file")

	markRequired(reportCmd, "candidate", "job")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	profile, err := readProfile(reportCandidate)
	if err != nil {
		return err
	}
	job, err := readJob(reportJob)
	if err != nil {
		return err
	}
	peers, err := readProfiles(reportPeers)
	if err != nil {
		return err
	}
	catalog, err := readJobs(reportCatalog)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	rec, err := svc.Recommend(ctx, profile, job, peers, catalog, tierFor(reportTier, profile))
	if err != nil {
		return fmt.Errorf("failed to build recommendation: %w", err)
	}

	if reportOutput == "" {
		_, err = fmt.Fprint(os.Stdout, rec.Report)
		return err
	}
	if dir := filepath.Dir(reportOutput); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(reportOutput, []byte(rec.Report), 0644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", reportOutput, err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Successfully wrote report to %s\n", reportOutput)
	return nil
}
