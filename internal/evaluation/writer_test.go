package evaluation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/database"
	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/rubric"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/scoring"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate() { c.calls++ }

func crisisScores(v float64) scoring.Scores {
	return scoring.Scores{"decisionMaking": v, "communication": v, "technicalAcumen": v, "leadership": v, "completeness": v}
}

func teamScores(v float64) scoring.Scores {
	return scoring.Scores{"empathy": v, "diagnostics": v, "execution": v, "culture": v, "development": v}
}

func setup(t *testing.T) (*Writer, *database.Repository, *countingInvalidator, int64) {
	t.Helper()
	repo := database.NewRepository(database.OpenTestDB(t))
	c := &database.Candidate{FirstName: "Ada", LastName: "L", Email: "ada@example.com", PrimarySkill: "Backend"}
	require.NoError(t, repo.CreateCandidate(context.Background(), c))
	inv := &countingInvalidator{}
	return NewWriter(repo, inv), repo, inv, c.ID
}

func TestRecordComputesTotalsAndRanking(t *testing.T) {
	w, repo, inv, id := setup(t)
	ctx := context.Background()

	e, err := w.Record(ctx, id, Input{PromptID: rubric.PromptCrisis, Response: "plan", RubricScores: crisisScores(18)})
	require.NoError(t, err)
	assert.Equal(t, 90.0, e.TotalScore)
	assert.Equal(t, 1, inv.calls)

	rk, err := repo.GetRanking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 90.0, rk.OverallScore)
	assert.Equal(t, 90.0, rk.CrisisScore)
	assert.Equal(t, 0.0, rk.TeamScore)

	_, err = w.Record(ctx, id, Input{PromptID: rubric.PromptTeam, Response: "people", RubricScores: teamScores(12)})
	require.NoError(t, err)

	rk, err = repo.GetRanking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 75.0, rk.OverallScore)
	assert.Equal(t, 60.0, rk.TeamScore)
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	w, repo, inv, id := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		id   int64
		in   Input
		kind apperrors.Kind
	}{
		{"unknown prompt", id, Input{PromptID: "nope", Response: "x", RubricScores: crisisScores(1)}, apperrors.KindNotFound},
		{"blank response", id, Input{PromptID: rubric.PromptCrisis, Response: "  ", RubricScores: crisisScores(1)}, apperrors.KindValidation},
		{"out of range", id, Input{PromptID: rubric.PromptCrisis, Response: "x", RubricScores: crisisScores(21)}, apperrors.KindValidation},
		{"partial scores", id, Input{PromptID: rubric.PromptCrisis, Response: "x", RubricScores: scoring.Scores{"leadership": 3}}, apperrors.KindValidation},
		{"unknown candidate", 999, Input{PromptID: rubric.PromptCrisis, Response: "x", RubricScores: crisisScores(1)}, apperrors.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Record(ctx, tt.id, tt.in)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.kind), "got %v", err)
		})
	}

	assert.Zero(t, inv.calls)
	_, err := repo.GetRanking(ctx, id)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestDuplicateIsConflictAndRollsBack(t *testing.T) {
	w, repo, _, id := setup(t)
	ctx := context.Background()

	_, err := w.Record(ctx, id, Input{PromptID: rubric.PromptCrisis, Response: "a", RubricScores: crisisScores(10)})
	require.NoError(t, err)

	_, err = w.Record(ctx, id, Input{PromptID: rubric.PromptCrisis, Response: "b", RubricScores: crisisScores(20)})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	rk, err := repo.GetRanking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rk.OverallScore)
}

func TestDeleteRecomputesOrRemovesRanking(t *testing.T) {
	w, repo, _, id := setup(t)
	ctx := context.Background()

	_, err := w.Record(ctx, id, Input{PromptID: rubric.PromptCrisis, Response: "a", RubricScores: crisisScores(20)})
	require.NoError(t, err)
	_, err = w.Record(ctx, id, Input{PromptID: rubric.PromptTeam, Response: "b", RubricScores: teamScores(10)})
	require.NoError(t, err)

	require.NoError(t, w.Delete(ctx, id, rubric.PromptCrisis))
	rk, err := repo.GetRanking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rk.OverallScore)
	assert.Equal(t, 0.0, rk.CrisisScore)

	require.NoError(t, w.Delete(ctx, id, rubric.PromptTeam))
	_, err = repo.GetRanking(ctx, id)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	assert.True(t, apperrors.Is(w.Delete(ctx, id, rubric.PromptTeam), apperrors.KindNotFound))
}

func TestBulkLoadSkipsDuplicates(t *testing.T) {
	w, _, _, id := setup(t)
	ctx := context.Background()

	items := []Item{
		{CandidateID: id, Input: Input{PromptID: rubric.PromptCrisis, Response: "a", RubricScores: crisisScores(10)}},
		{CandidateID: id, Input: Input{PromptID: rubric.PromptCrisis, Response: "again", RubricScores: crisisScores(11)}},
		{CandidateID: id, Input: Input{PromptID: rubric.PromptTeam, Response: "b", RubricScores: teamScores(10)}},
	}

	result, err := w.BulkLoad(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Inserted: 2, Skipped: 1}, result)

	bad := []Item{{CandidateID: 404, Input: Input{PromptID: rubric.PromptTeam, Response: "x", RubricScores: teamScores(1)}}}
	result, err = w.BulkLoad(ctx, bad)
	assert.Error(t, err)
	assert.Equal(t, BulkResult{}, result)
}
