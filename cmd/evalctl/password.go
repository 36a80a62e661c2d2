package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/auth"
)

//nolint:gochecknoglobals // Cobra boilerplate
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for EVAL_ADMIN_PASSWORD_HASH",
	Long: `Reads a password from the first line of stdin and prints its bcrypt hash.

Example:
  printf '%s\n' "$PASSWORD" | evalctl hash-password`,
	Args: cobra.NoArgs,
	RunE: runHashPassword,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, _ []string) (err error) {
	reader := bufio.NewReader(cmd.InOrStdin())

	var line string
	line, err = reader.ReadString('\n')
	if err != nil && line == "" {
		err = errors.Wrap(err, "failed to read password from stdin")
		return err
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		err = errors.New("password must not be empty")
		return err
	}

	var hash string
	hash, err = auth.HashPassword(password)
	if err != nil {
		err = errors.Wrap(err, "failed to hash password")
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
