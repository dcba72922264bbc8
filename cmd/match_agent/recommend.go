package main

import (
	"fmt"
	"os"

	"github.com/jonathan/candidate-matcher/internal/config"
	"github.com/jonathan/candidate-matcher/internal/observability"
	"github.com/spf13/cobra"
)

var recommendJobsCmd = &cobra.Command{
	Use:   "recommend-jobs",
	Short: "Suggest better matching jobs from a catalog",
	Long: `Scores every catalog job for the candidate and returns the best matches. Paid
subscription tiers receive a fixed share of premium jobs. Without --jobs the
catalog is read from the postgres store.`,
	RunE: runRecommendJobs,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Build the full recommendation for one application",
	Long: `Builds the full recommendation for a candidate applying to a job: the tier adjusted
pass likelihood, standing among peers, strengths and weaknesses, and similar jobs.
The recommendation is recorded to the configured store.`,
	RunE: runRecommend,
}

var (
	recCandidate string
	recJob       string
	recPeers     string
	recCatalog   string
	recTier      string
	recLimit     int
	recExclude   string
	recOutput    string
	recJSON      bool
)

func init() {
	for _, c := range []*cobra.Command{recommendJobsCmd, recommendCmd} {
		c.Flags().StringVarP(&recCandidate, "candidate", "c", "", "Path to CandidateProfile JSON file (required)")
		c.Flags().StringVar(&recCatalog, "jobs", "", "Path to a JSON array of catalog JobRequirements (defaults to the stored catalog)")
		c.Flags().StringVarP(&recTier, "tier", "t", "", "Subscription tier (defaults to the candidate's own)")
		c.Flags().StringVarP(&recOutput, "out", "o", "", "Write the JSON result to this file")
		c.Flags().BoolVar(&recJSON, "json", false, "Print JSON instead of a summary")
	}

	recommendJobsCmd.Flags().IntVarP(&recLimit, "limit", "n", 0, "Maximum jobs to return (defaults to recommend.better_matches_limit)")
	recommendJobsCmd.Flags().StringVar(&recExclude, "exclude", "", "Job ID to leave out, e.g. the one applied to")
	markRequired(recommendJobsCmd, "candidate")

	recommendCmd.Flags().StringVarP(&recJob, "job", "j", "", "Path to JobRequirement JSON file (required)")
	recommendCmd.Flags().StringVarP(&recPeers, "peers", "p", "", "Path to a JSON array of peer CandidateProfiles")
	markRequired(recommendCmd, "candidate", "job")

	rootCmd.AddCommand(recommendJobsCmd, recommendCmd)
}

func runRecommendJobs(cmd *cobra.Command, _ []string) error {
	if recLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	if recCatalog == "" && cfg.Store.Driver != config.DriverPostgres {
		return fmt.Errorf("--jobs is required unless the %s store supplies the job catalog", config.DriverPostgres)
	}
	profile, err := readProfile(recCandidate)
	if err != nil {
		return err
	}
	catalog, err := readJobs(recCatalog)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	limit := recLimit
	if limit == 0 {
		limit = cfg.Recommend.BetterMatchesLimit
	}
	jobs, err := svc.RecommendJobs(ctx, profile, catalog, tierFor(recTier, profile), limit, recExclude)
	if err != nil {
		return fmt.Errorf("failed to recommend jobs: %w", err)
	}

	if recJSON || recOutput != "" {
		return writeJSON(recOutput, jobs)
	}
	observability.NewPrinter(os.Stdout).PrintRecommendedJobs(jobs)
	return nil
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	profile, err := readProfile(recCandidate)
	if err != nil {
		return err
	}
	job, err := readJob(recJob)
	if err != nil {
		return err
	}
	peers, err := readProfiles(recPeers)
	if err != nil {
		return err
	}
	catalog, err := readJobs(recCatalog)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	rec, err := svc.Recommend(ctx, profile, job, peers, catalog, tierFor(recTier, profile))
	if err != nil {
		return fmt.Errorf("failed to build recommendation: %w", err)
	}

	if recJSON || recOutput != "" {
		return writeJSON(recOutput, rec)
	}
	observability.NewPrinter(os.Stdout).PrintRecommendation(rec)
	return nil
}
