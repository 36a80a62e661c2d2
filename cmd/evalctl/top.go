package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/leaderboard"
)

//nolint:gochecknoglobals // Cobra boilerplate
var topN int

//nolint:gochecknoglobals // Cobra boilerplate
var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the highest ranked candidates",
	Args:  cobra.NoArgs,
	RunE:  runTop,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(topCmd)
	topCmd.Flags().IntVarP(&topN, "n", "n", leaderboard.DefaultTopN, "number of candidates to show")
}

func runTop(cmd *cobra.Command, _ []string) (err error) {
	var s *store
	s, err = openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	var entries []leaderboard.Entry
	entries, err = s.rankings.TopN(cmd.Context(), topN)
	if err != nil {
		err = errors.Wrap(err, "failed to read leaderboard")
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No ranked candidates yet")
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tSKILL\tOVERALL\tCRISIS\tSUSTAINABILITY\tTEAM\tPERCENTILE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.2f\t%.0f\t%.0f\t%.0f\t%.1f\n",
			e.Rank, e.CandidateID, e.FullName(), e.PrimarySkill,
			e.OverallScore, e.CrisisScore, e.SustainabilityScore, e.TeamScore, e.Percentile)
	}
	err = tw.Flush()
	return err
}
