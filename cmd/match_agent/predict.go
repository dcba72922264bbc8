package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the pass likelihood of a candidate for a job",
	Long:  "Predicts the likelihood (0-100) that the candidate passes screening for the job using the latest trained model, falling back to the composite score when no model is available.",
	RunE:  runPredict,
}

var (
	predictCandidate string
	predictJob       string
	predictJSON      bool
)

func init() {
	predictCmd.Flags().StringVarP(&predictCandidate, "candidate", "c", "", "Path to CandidateProfile JSON file (required)")
	predictCmd.Flags().StringVarP(&predictJob, "job", "j", "", "Path to JobRequirement JSON file (required)")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Print JSON instead of a summary")

	markRequired(predictCmd, "candidate", "job")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, _ []string) error {
	profile, err := readProfile(predictCandidate)
	if err != nil {
		return err
	}
	job, err := readJob(predictJob)
	if err != nil {
		return err
	}

	svc, closeFn, err := newService(commandContext(cmd))
	if err != nil {
		return err
	}
	defer closeFn()

	prediction, err := svc.PredictSuccess(profile, job)
	if err != nil {
		return fmt.Errorf("failed to predict: %w", err)
	}
	if predictJSON {
		return writeJSON("", prediction)
	}

	if prediction.Fallback {
		_, _ = fmt.Fprintf(os.Stdout, "Pass likelihood: %.2f%% (composite fallback: %s)\n", prediction.Value, prediction.Reason)
		return nil
	}
	_, _ = fmt.Fprintf(os.Stdout, "Pass likelihood: %.2f%% (model %s)\n", prediction.Value, prediction.ModelVersion)
	return nil
}
