package sharing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/database"
	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate() { c.calls++ }

func setup(t *testing.T, ranked bool) (*Service, *database.Repository, *countingInvalidator, int64) {
	t.Helper()
	ctx := context.Background()
	repo := database.NewRepository(database.OpenTestDB(t))

	c := &database.Candidate{FirstName: "Grace", LastName: "H", Email: "grace@example.com", PrimarySkill: "Systems"}
	require.NoError(t, repo.CreateCandidate(ctx, c))
	if ranked {
		require.NoError(t, repo.UpsertRanking(ctx, &database.Ranking{CandidateID: c.ID, OverallScore: 80, CrisisScore: 80}))
	}

	inv := &countingInvalidator{}
	return NewService(repo, inv, "http://localhost:3000/"), repo, inv, c.ID
}

func TestIssueAndResolve(t *testing.T) {
	svc, repo, inv, id := setup(t, true)
	ctx := context.Background()

	share, err := svc.Issue(ctx, id)
	require.NoError(t, err)
	assert.Len(t, share.Token, 43)
	assert.Equal(t, "http://localhost:3000/share/"+share.Token, share.ShareURL)
	assert.Equal(t, 1, inv.calls)

	got, err := svc.Resolve(ctx, share.Token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	rk, err := repo.GetRanking(ctx, id)
	require.NoError(t, err)
	assert.True(t, rk.IsShared)
	require.NotNil(t, rk.LastSharedAt)
}

func TestReissueInvalidatesPreviousToken(t *testing.T) {
	svc, _, _, id := setup(t, true)
	ctx := context.Background()

	first, err := svc.Issue(ctx, id)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = svc.Resolve(ctx, first.Token)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	got, err := svc.Resolve(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestResolveUnknownTokens(t *testing.T) {
	svc, _, _, _ := setup(t, true)
	ctx := context.Background()

	for _, token := range []string{"", "   ", "short", strings.Repeat("A", 43)} {
		_, err := svc.Resolve(ctx, token)
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "token %q", token)
	}
}

func TestIssueRequiresRanking(t *testing.T) {
	svc, _, inv, id := setup(t, false)
	ctx := context.Background()

	_, err := svc.Issue(ctx, id)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = svc.Issue(ctx, id+100)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Equal(t, 0, inv.calls)
}

func TestRevoke(t *testing.T) {
	svc, repo, _, id := setup(t, true)
	ctx := context.Background()

	share, err := svc.Issue(ctx, id)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, id))

	_, err = svc.Resolve(ctx, share.Token)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	rk, err := repo.GetRanking(ctx, id)
	require.NoError(t, err)
	assert.False(t, rk.IsShared)
}

func TestIssueTokenGenerationFailure(t *testing.T) {
	svc, _, _, id := setup(t, true)
	svc.newToken = func() (string, error) { return "", errors.New("entropy exhausted") }

	_, err := svc.Issue(context.Background(), id)
	assert.True(t, apperrors.Is(err, apperrors.KindInternal))
}
