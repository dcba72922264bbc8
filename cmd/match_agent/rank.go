package main

import (
	"fmt"
	"os"

	"github.com/jonathan/candidate-matcher/internal/observability"
	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank a candidate among the other applicants to a job",
	Long: `Places a candidate among peer applicants by composite score, reporting rank and percentile.

With --leaderboard the candidate file is optional and every applicant in --peers is ranked.`,
	RunE: runRank,
}

var (
	rankCandidate   string
	rankJob         string
	rankPeers       string
	rankLeaderboard bool
	rankOutput      string
	rankJSON        bool
)

func init() {
	rankCmd.Flags().StringVarP(&rankCandidate, "candidate", "c", "", "Path to CandidateProfile JSON file")
	rankCmd.Flags().StringVarP(&rankJob, "job", "j", "", "Path to JobRequirement JSON file (required)")
	rankCmd.Flags().StringVarP(&rankPeers, "peers", "p", "", "Path to a JSON array of peer CandidateProfiles")
	rankCmd.Flags().BoolVar(&rankLeaderboard, "leaderboard", false, "Rank every applicant in --peers")
	rankCmd.Flags().StringVarP(&rankOutput, "out", "o", "", "Write the JSON result to this file")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "Print JSON instead of a summary")

	markRequired(rankCmd, "job")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	if !rankLeaderboard && rankCandidate == "" {
		return fmt.Errorf("--candidate is required unless --leaderboard is set")
	}

	job, err := readJob(rankJob)
	if err != nil {
		return err
	}
	peers, err := readProfiles(rankPeers)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	printer := observability.NewPrinter(os.Stdout)

	if rankLeaderboard {
		if rankCandidate != "" {
			profile, err := readProfile(rankCandidate)
			if err != nil {
				return err
			}
			peers = append(peers, profile)
		}
		board, err := svc.Leaderboard(ctx, peers, job)
		if err != nil {
			return fmt.Errorf("failed to build leaderboard: %w", err)
		}
		if rankJSON || rankOutput != "" {
			return writeJSON(rankOutput, board)
		}
		printer.PrintLeaderboard(board)
		return nil
	}

	profile, err := readProfile(rankCandidate)
	if err != nil {
		return err
	}
	result, err := svc.Rank(ctx, profile, peers, job)
	if err != nil {
		return fmt.Errorf("failed to rank candidate: %w", err)
	}
	if rankJSON || rankOutput != "" {
		return writeJSON(rankOutput, result)
	}
	printer.PrintRanking(result)
	return nil
}
