package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/seed"
)

// execute runs evalctl against a throwaway SQLite file.
func execute(t *testing.T, dsn, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("EVAL_DOTENV", filepath.Join(t.TempDir(), "missing.env"))

	// flag values survive between Execute calls
	seedCount, seedValue, topN, shareRevoke, verbose = 40, 1, 10, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--dsn", dsn}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func tempDSN(t *testing.T) string {
	return filepath.Join(t.TempDir(), "eval.db")
}

func TestMigrate(t *testing.T) {
	out, err := execute(t, tempDSN(t), "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date")
}

func TestSeedThenTop(t *testing.T) {
	dsn := tempDSN(t)

	out, err := execute(t, dsn, "", "seed", "--count", "8", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted 8 candidates (0 skipped)")
	assert.Contains(t, out, "Inserted 24 evaluations (0 skipped)")

	out, err = execute(t, dsn, "", "seed", "--count", "8", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted 0 candidates (8 skipped)")

	out, err = execute(t, dsn, "", "top", "-n", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "RANK"))
	assert.True(t, strings.HasPrefix(lines[1], "1 "))

	named := false
	for _, c := range seed.NewGenerator(3).Candidates(8) {
		if strings.Contains(lines[1], c.FirstName+" "+c.LastName) {
			named = true
		}
	}
	assert.True(t, named, lines[1])
}

func TestSeedRejectsBadCount(t *testing.T) {
	_, err := execute(t, tempDSN(t), "", "seed", "--count", "0")
	assert.Error(t, err)
}

func TestTopEmpty(t *testing.T) {
	out, err := execute(t, tempDSN(t), "", "top")
	require.NoError(t, err)
	assert.Contains(t, out, "No ranked candidates yet")
}

func TestShare(t *testing.T) {
	dsn := tempDSN(t)
	_, err := execute(t, dsn, "", "seed", "--count", "2")
	require.NoError(t, err)

	out, err := execute(t, dsn, "", "share", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "http://localhost:3000/share/"), out)

	out, err = execute(t, dsn, "", "share", "1", "--revoke")
	require.NoError(t, err)
	assert.Contains(t, out, "Revoked share link for candidate 1")

	_, err = execute(t, dsn, "", "share", "999")
	assert.Error(t, err)

	_, err = execute(t, dsn, "", "share", "abc")
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	out, err := execute(t, tempDSN(t), "s3cret\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	_, err = execute(t, tempDSN(t), "\n", "hash-password")
	assert.Error(t, err)
}
