package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/candidate-matcher/internal/db"
	"github.com/jonathan/candidate-matcher/internal/legacy"
	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the pass likelihood model from historical applications",
	Long: `Trains the pass likelihood model on accepted and rejected applications and
publishes the new version to the configured store.

Exactly one source is read:
  --data     a training set JSON file (applications, profiles, jobs)
  --legacy   a JSON collection export (users, portfolios, companies, jobposts, applications)
  --from-db  the candidates, jobs and applications tables in PostgreSQL`,
	RunE: runTrain,
}

var (
	trainData   string
	trainLegacy string
	trainFromDB bool
	trainDBURL  string
	trainJSON   bool
)

func init() {
	trainCmd.Flags().StringVarP(&trainData, "data", "d", "", "Path to training set JSON file")
	trainCmd.Flags().StringVar(&trainLegacy, "legacy", "", "Path to a legacy collection export")
	trainCmd.Flags().BoolVar(&trainFromDB, "from-db", false, "Load the training set from PostgreSQL")
	trainCmd.Flags().StringVar(&trainDBURL, "db-url", "", "PostgreSQL connection URL (defaults to store.database_url, then DATABASE_URL)")
	trainCmd.Flags().BoolVar(&trainJSON, "json", false, "Print the training summary as JSON")

	trainCmd.MarkFlagsMutuallyExclusive("data", "legacy", "from-db")
	trainCmd.MarkFlagsOneRequired("data", "legacy", "from-db")
	rootCmd.AddCommand(trainCmd)
}

// trainingInput is a training set resolved from one source.
type trainingInput struct {
	applications []types.Application
	profiles     map[string]*types.CandidateProfile
	jobs         map[string]*types.JobRequirement
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	input, err := loadTrainingInput(ctx)
	if err != nil {
		return err
	}

	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	summary, err := svc.Train(ctx, input.applications, input.profiles, input.jobs)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	if trainJSON {
		return writeJSON("", summary)
	}
	if summary.Skipped {
		_, _ = fmt.Fprintf(os.Stdout, "Training skipped: %s\n", summary.Reason)
		return nil
	}
	_, _ = fmt.Fprintf(os.Stdout, "Trained %s version %s on %d samples (%d accepted), accuracy %.2f\n",
		summary.ModelName, summary.ModelVersion, summary.Samples, summary.Positives, summary.Accuracy)
	return nil
}

func loadTrainingInput(ctx context.Context) (*trainingInput, error) {
	switch {
	case trainData != "":
		ts, err := readTrainingSet(trainData)
		if err != nil {
			return nil, err
		}
		profiles, jobs := ts.index()
		return &trainingInput{applications: ts.Applications, profiles: profiles, jobs: jobs}, nil

	case trainLegacy != "":
		f, err := os.Open(trainLegacy)
		if err != nil {
			return nil, fmt.Errorf("failed to open export %s: %w", trainLegacy, err)
		}
		defer func() { _ = f.Close() }()

		export, err := legacy.ReadExport(f)
		if err != nil {
			return nil, err
		}
		ds := export.Decode()
		for _, msg := range ds.Skipped {
			logger.Warn("skipped legacy document", zap.String("reason", msg))
		}
		return &trainingInput{applications: ds.Applications, profiles: ds.Profiles, jobs: ds.Jobs}, nil

	default:
		url := trainDBURL
		if url == "" {
			url = cfg.Store.DatabaseURL
		}
		if url == "" {
			url = os.Getenv("DATABASE_URL")
		}
		if url == "" {
			return nil, fmt.Errorf("--db-url, store.database_url or DATABASE_URL is required with --from-db")
		}

		database, err := db.Connect(ctx, url)
		if err != nil {
			return nil, err
		}
		defer func() { _ = database.Close() }()

		ts, err := database.LoadTrainingSet(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load training set: %w", err)
		}
		return &trainingInput{applications: ts.Applications, profiles: ts.Profiles, jobs: ts.Jobs}, nil
	}
}
