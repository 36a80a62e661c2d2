package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/evaluation"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/seed"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	seedCount int
	seedValue int64
)

//nolint:gochecknoglobals // Cobra boilerplate
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load fake candidates with mock evaluations",
	Long: `Generates fake candidates and scores each of them on every prompt.

The same --seed always produces the same candidates, so seeding twice skips
every candidate whose email already exists.

Examples:
  # Forty candidates, the default
  evalctl seed

  # A larger, reproducible data set
  evalctl seed --count 200 --seed 7`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVar(&seedCount, "count", seed.DefaultCount, "number of candidates to generate")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 1, "random seed")
}

func runSeed(cmd *cobra.Command, _ []string) (err error) {
	if seedCount < 1 {
		err = errors.Errorf("--count must be positive, got %d", seedCount)
		return err
	}

	var s *store
	s, err = openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	writer := evaluation.NewWriter(s.repo, s.rankings)

	var res seed.Result
	res, err = seed.Run(cmd.Context(), s.repo, writer, seedCount, seedValue)
	if err != nil {
		err = errors.Wrap(err, "seeding failed")
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Inserted %d candidates (%d skipped)\n", res.Candidates, res.SkippedCandidates)
	fmt.Fprintf(out, "Inserted %d evaluations (%d skipped)\n", res.Evaluations, res.SkippedEvals)
	return err
}
