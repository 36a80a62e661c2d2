package leaderboard

import (
	"context"
	"log/slog"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/database"
)

// DefaultTopN is the size of the featured leaderboard.
const DefaultTopN = 10

// Entry is one ranked candidate
type Entry = database.RankedCandidate

// Pagination describes a page of the ordered ranking
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Page is one slice of the ordered ranking
type Page struct {
	Data       []Entry    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Position is a candidate's place in the ordering
type Position struct {
	CandidateID  int64   `json:"candidate_id"`
	Rank         int     `json:"rank"`
	Total        int     `json:"total"`
	Percentile   float64 `json:"percentile"`
	OverallScore float64 `json:"overall_score"`
}

// Config bounds request sizes
type Config struct {
	MaxLimit     int
	DefaultLimit int
}

// Service answers ranking queries over the materialized rankings table.
// Order is overall_score descending, then candidate id ascending.
type Service struct {
	repo  *database.Repository
	cache *LeaderboardCache
	cfg   Config
}

// NewService creates a new leaderboard service
func NewService(repo *database.Repository, cache *LeaderboardCache, cfg Config) *Service {
	if cfg.MaxLimit < 1 {
		cfg.MaxLimit = 100
	}
	if cfg.DefaultLimit < 1 || cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = min(20, cfg.MaxLimit)
	}
	return &Service{repo: repo, cache: cache, cfg: cfg}
}

// Percentile converts a 1-based rank among total candidates into the share
// of the field at or below that rank: the leader is 100.
func Percentile(rank, total int) float64 {
	if total <= 0 || rank <= 0 {
		return 0
	}
	return 100 * (1 - float64(rank-1)/float64(total))
}

func withPercentile(entries []Entry, total int) []Entry {
	for i := range entries {
		entries[i].Percentile = Percentile(entries[i].Rank, total)
	}
	return entries
}

// TopN returns the first n candidates, n clamped to [1, MaxLimit].
func (s *Service) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		n = DefaultTopN
	}
	if n > s.cfg.MaxLimit {
		n = s.cfg.MaxLimit
	}

	if entries, found := s.cache.GetTop(n); found {
		return entries, nil
	}
	generation := s.cache.Generation()

	total, err := s.repo.CountRankings(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.LeaderboardRows(ctx, n, 0)
	if err != nil {
		return nil, err
	}
	entries = withPercentile(entries, total)

	s.cache.SetTop(n, generation, entries)
	return entries, nil
}

// Normalize applies the defaults used for out-of-range page requests.
func (s *Service) Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return page, limit
}

// Page returns one page of the ranking. A page past the end has no data
// but still reports the total.
func (s *Service) Page(ctx context.Context, page, limit int) (*Page, error) {
	page, limit = s.Normalize(page, limit)

	if p, found := s.cache.GetPage(page, limit); found {
		return p, nil
	}
	generation := s.cache.Generation()

	total, err := s.repo.CountRankings(ctx)
	if err != nil {
		return nil, err
	}

	result := &Page{
		Data: []Entry{},
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	}

	if page-1 < result.Pagination.Pages {
		entries, err := s.repo.LeaderboardRows(ctx, limit, (page-1)*limit)
		if err != nil {
			return nil, err
		}
		result.Data = withPercentile(entries, total)
	}

	s.cache.SetPage(page, limit, generation, result)
	slog.Debug("Leaderboard page computed", "page", page, "limit", limit, "total", total)
	return result, nil
}

// RankOf returns the position of a candidate, or NotFound when the
// candidate has no ranking.
func (s *Service) RankOf(ctx context.Context, candidateID int64) (*Position, error) {
	if p, found := s.cache.GetPosition(candidateID); found {
		return p, nil
	}
	generation := s.cache.Generation()

	rk, err := s.repo.GetRanking(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	rank, err := s.repo.RankOf(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountRankings(ctx)
	if err != nil {
		return nil, err
	}

	p := &Position{
		CandidateID:  candidateID,
		Rank:         rank,
		Total:        total,
		Percentile:   Percentile(rank, total),
		OverallScore: rk.OverallScore,
	}
	s.cache.SetPosition(candidateID, generation, p)
	return p, nil
}

// Invalidate drops cached results after a ranking change.
func (s *Service) Invalidate() {
	s.cache.InvalidateAll()
}

// GetStats returns cache statistics
func (s *Service) GetStats() map[string]interface{} {
	return s.cache.GetStats()
}
