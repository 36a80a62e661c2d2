package leaderboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/database"
	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
)

func setupService(t *testing.T, scores []float64) (*Service, *database.Repository) {
	t.Helper()
	ctx := context.Background()
	repo := database.NewRepository(database.OpenTestDB(t))

	for i, s := range scores {
		c := &database.Candidate{
			FirstName:    fmt.Sprintf("F%d", i+1),
			LastName:     fmt.Sprintf("L%d", i+1),
			Email:        fmt.Sprintf("c%d@example.com", i+1),
			PrimarySkill: "Backend",
		}
		require.NoError(t, repo.CreateCandidate(ctx, c))
		require.NoError(t, repo.UpsertRanking(ctx, &database.Ranking{CandidateID: c.ID, OverallScore: s}))
	}

	lc := NewLeaderboardCache(time.Minute)
	t.Cleanup(lc.Close)
	return NewService(repo, lc, Config{MaxLimit: 100, DefaultLimit: 20}), repo
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, 100.0, Percentile(1, 40))
	assert.InDelta(t, 2.5, Percentile(40, 40), 1e-9)
	assert.Equal(t, 50.0, Percentile(2, 2))
	assert.Equal(t, 0.0, Percentile(1, 0))
}

func TestTieBreakByCandidateID(t *testing.T) {
	svc, _ := setupService(t, []float64{90, 75, 90})

	entries, err := svc.TopN(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	ids := []int64{entries[0].CandidateID, entries[1].CandidateID, entries[2].CandidateID}
	assert.Equal(t, []int64{1, 3, 2}, ids)
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
}

func TestOrderingIsNonIncreasing(t *testing.T) {
	scores := []float64{12, 99.5, 50, 50, 73.25, 0, 99.5, 88}
	svc, _ := setupService(t, scores)

	page, err := svc.Page(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Len(t, page.Data, len(scores))

	for i := 1; i < len(page.Data); i++ {
		prev, cur := page.Data[i-1], page.Data[i]
		assert.GreaterOrEqual(t, prev.OverallScore, cur.OverallScore)
		if prev.OverallScore == cur.OverallScore {
			assert.Less(t, prev.CandidateID, cur.CandidateID)
		}
	}
}

func TestPageBeyondEnd(t *testing.T) {
	scores := make([]float64, 40)
	for i := range scores {
		scores[i] = float64(i)
	}
	svc, _ := setupService(t, scores)

	page, err := svc.Page(context.Background(), 100, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, Pagination{Page: 100, Limit: 20, Total: 40, Pages: 2}, page.Pagination)

	second, err := svc.Page(context.Background(), 2, 20)
	require.NoError(t, err)
	require.Len(t, second.Data, 20)
	assert.Equal(t, 21, second.Data[0].Rank)
	assert.InDelta(t, 2.5, second.Data[19].Percentile, 1e-9)
}

func TestPageNormalizesInput(t *testing.T) {
	svc, _ := setupService(t, []float64{1, 2, 3})

	tests := []struct {
		name          string
		page, limit   int
		expectedPage  int
		expectedLimit int
	}{
		{"defaults", 0, 0, 1, 20},
		{"negative", -3, -1, 1, 20},
		{"limit capped", 1, 1000, 1, 100},
		{"explicit", 2, 5, 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.Page(context.Background(), tt.page, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedPage, p.Pagination.Page)
			assert.Equal(t, tt.expectedLimit, p.Pagination.Limit)
			assert.Equal(t, 3, p.Pagination.Total)
		})
	}
}

func TestRankOfMatchesPagePosition(t *testing.T) {
	scores := []float64{55, 80, 80, 10, 95, 80, 60}
	svc, _ := setupService(t, scores)
	ctx := context.Background()

	for _, limit := range []int{1, 2, 3, 7} {
		for page := 1; ; page++ {
			p, err := svc.Page(ctx, page, limit)
			require.NoError(t, err)
			if len(p.Data) == 0 {
				break
			}
			for i, e := range p.Data {
				pos, err := svc.RankOf(ctx, e.CandidateID)
				require.NoError(t, err)
				assert.Equal(t, (page-1)*limit+i+1, pos.Rank)
				assert.Equal(t, e.Rank, pos.Rank)
				assert.Equal(t, e.Percentile, pos.Percentile)
			}
		}
	}
}

func TestTopNClamps(t *testing.T) {
	svc, _ := setupService(t, []float64{1, 2, 3, 4, 5})
	ctx := context.Background()

	entries, err := svc.TopN(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = svc.TopN(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	entries, err = svc.TopN(ctx, 10_000)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestRankOfUnranked(t *testing.T) {
	svc, _ := setupService(t, []float64{1})

	_, err := svc.RankOf(context.Background(), 77)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestInvalidateShowsNewRankings(t *testing.T) {
	svc, repo := setupService(t, []float64{50, 60})
	ctx := context.Background()

	before, err := svc.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), before[0].CandidateID)

	require.NoError(t, repo.UpsertRanking(ctx, &database.Ranking{CandidateID: 1, OverallScore: 99}))

	cached, err := svc.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached[0].CandidateID)

	svc.Invalidate()

	after, err := svc.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after[0].CandidateID)
}

func TestStaleGenerationIsNotCached(t *testing.T) {
	lc := NewLeaderboardCache(time.Minute)
	defer lc.Close()

	gen := lc.Generation()
	lc.InvalidateAll()
	lc.SetTop(10, gen, []Entry{{CandidateID: 1}})

	_, found := lc.GetTop(10)
	assert.False(t, found)

	lc.SetTop(10, lc.Generation(), []Entry{{CandidateID: 1}})
	entries, found := lc.GetTop(10)
	assert.True(t, found)
	assert.Len(t, entries, 1)
}
