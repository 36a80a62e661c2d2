package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/sharing"
)

//nolint:gochecknoglobals // Cobra boilerplate
var shareRevoke bool

//nolint:gochecknoglobals // Cobra boilerplate
var shareCmd = &cobra.Command{
	Use:   "share <candidate-id>",
	Short: "Issue a share link for a ranked candidate",
	Long: `Issues a new share link for the candidate and prints its URL. Any link
issued earlier for the same candidate stops working.

Examples:
  evalctl share 12
  evalctl share 12 --revoke`,
	Args: cobra.ExactArgs(1),
	RunE: runShare,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(shareCmd)
	shareCmd.Flags().BoolVar(&shareRevoke, "revoke", false, "revoke the current link instead of issuing one")
}

func runShare(cmd *cobra.Command, args []string) (err error) {
	var id int64
	id, err = strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		err = errors.Errorf("invalid candidate id %q", args[0])
		return err
	}

	var s *store
	s, err = openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	svc := sharing.NewService(s.repo, s.rankings, s.cfg.FrontendURL)

	if shareRevoke {
		err = svc.Revoke(cmd.Context(), id)
		if err != nil {
			err = errors.Wrapf(err, "failed to revoke share link for candidate %d", id)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Revoked share link for candidate %d\n", id)
		return err
	}

	var share *sharing.Share
	share, err = svc.Issue(cmd.Context(), id)
	if err != nil {
		err = errors.Wrapf(err, "failed to share candidate %d", id)
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), share.ShareURL)
	return err
}
