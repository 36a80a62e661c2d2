// Package profile assembles candidate detail views and the search and
// analytics reads around them.
package profile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/database"
	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/leaderboard"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/security"
)

const (
	SearchLimit = 20
	SkillLimit  = 50
)

// RankingView is a ranking row with its derived position.
type RankingView struct {
	*database.Ranking
	Rank        int     `json:"rank"`
	Percentile  float64 `json:"percentile"`
	TotalRanked int     `json:"total_ranked"`
}

// Detail is the full read-only profile of a candidate. Candidate fields
// are flattened into the top level of the JSON object.
type Detail struct {
	*database.Candidate
	Evaluations []database.Evaluation `json:"evaluations"`
	Ranking     *RankingView          `json:"ranking"`
}

// CandidateInput is the intake form for a new candidate.
type CandidateInput struct {
	FirstName       string   `json:"first_name" binding:"required,max=255"`
	LastName        string   `json:"last_name" binding:"required,max=255"`
	Email           string   `json:"email" binding:"required,email,max=255"`
	Phone           *string  `json:"phone"`
	Location        *string  `json:"location"`
	Bio             *string  `json:"bio"`
	AvatarURL       *string  `json:"avatar_url"`
	YearsExperience *int     `json:"years_experience" binding:"omitempty,min=0,max=80"`
	PrimarySkill    string   `json:"primary_skill" binding:"required,max=255"`
	SecondarySkills []string `json:"secondary_skills"`
	LinkedinURL     *string  `json:"linkedin_url"`
	GithubURL       *string  `json:"github_url"`
	WebsiteURL      *string  `json:"website_url"`
}

// Service serves candidate reads and intake.
type Service struct {
	repo       *database.Repository
	rankings   *leaderboard.Service
	maxField   int
	maxQueryLn int
}

// NewService creates a profile service.
func NewService(repo *database.Repository, rankings *leaderboard.Service) *Service {
	cfg := security.DefaultSecurityConfig()
	return &Service{
		repo:       repo,
		rankings:   rankings,
		maxField:   cfg.MaxFieldLength,
		maxQueryLn: cfg.MaxQueryLength,
	}
}

// Detail loads a candidate with evaluations and ranking. Ranking is nil
// for a candidate that has not been evaluated.
func (s *Service) Detail(ctx context.Context, candidateID int64) (*Detail, error) {
	c, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	evals, err := s.repo.ListEvaluations(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	d := &Detail{Candidate: c, Evaluations: evals}

	rk, err := s.repo.GetRanking(ctx, candidateID)
	switch {
	case apperrors.Is(err, apperrors.KindNotFound):
		return d, nil
	case err != nil:
		return nil, err
	}

	pos, err := s.rankings.RankOf(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	d.Ranking = &RankingView{Ranking: rk, Rank: pos.Rank, Percentile: pos.Percentile, TotalRanked: pos.Total}
	return d, nil
}

// Search finds candidates by name, email or primary skill.
func (s *Service) Search(ctx context.Context, q string) ([]database.CandidateSummary, error) {
	q = security.SanitizeQuery(q)
	if q == "" {
		return nil, apperrors.NewValidationErrorWithMap(map[string]string{"q": "search query is required"})
	}
	if err := security.ValidateText("q", q, s.maxQueryLn); err != nil {
		return nil, apperrors.NewValidationErrorWithMap(map[string]string{"q": err.Error()})
	}
	return s.repo.SearchCandidates(ctx, q, SearchLimit)
}

// BySkill lists candidates having skill as primary or secondary skill.
func (s *Service) BySkill(ctx context.Context, skill string) ([]database.CandidateSummary, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil, apperrors.NewValidationErrorWithMap(map[string]string{"skill": "skill is required"})
	}
	if err := security.ValidateText("skill", skill, s.maxField); err != nil {
		return nil, apperrors.NewValidationErrorWithMap(map[string]string{"skill": err.Error()})
	}
	return s.repo.CandidatesBySkill(ctx, skill, SkillLimit)
}

func (s *Service) SkillDistribution(ctx context.Context) ([]database.SkillStat, error) {
	return s.repo.SkillDistribution(ctx)
}

func (s *Service) EvaluationMetrics(ctx context.Context) ([]database.PromptStat, error) {
	return s.repo.EvaluationMetrics(ctx)
}

// CreateCandidate validates and stores a new candidate.
func (s *Service) CreateCandidate(ctx context.Context, in CandidateInput) (*database.Candidate, error) {
	c := &database.Candidate{
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:           in.Phone,
		Location:        in.Location,
		Bio:             in.Bio,
		AvatarURL:       in.AvatarURL,
		YearsExperience: in.YearsExperience,
		PrimarySkill:    strings.TrimSpace(in.PrimarySkill),
		SecondarySkills: in.SecondarySkills,
		LinkedinURL:     in.LinkedinURL,
		GithubURL:       in.GithubURL,
		WebsiteURL:      in.WebsiteURL,
	}

	fieldErrors := map[string]string{}
	required := map[string]string{
		"first_name":    c.FirstName,
		"last_name":     c.LastName,
		"email":         c.Email,
		"primary_skill": c.PrimarySkill,
	}
	for field, value := range required {
		if value == "" {
			fieldErrors[field] = field + " is required"
			continue
		}
		if err := security.ValidateText(field, value, s.maxField); err != nil {
			fieldErrors[field] = err.Error()
		}
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		fieldErrors["email"] = "email must be a valid address"
	}
	if c.YearsExperience != nil && *c.YearsExperience < 0 {
		fieldErrors["years_experience"] = "years_experience must not be negative"
	}
	if len(fieldErrors) > 0 {
		return nil, apperrors.NewValidationErrorWithMap(fieldErrors)
	}

	if err := s.repo.CreateCandidate(ctx, c); err != nil {
		return nil, err
	}
	slog.Info("Candidate created", "candidate_id", c.ID)
	return c, nil
}

// DeleteCandidate removes a candidate with its evaluations and ranking.
func (s *Service) DeleteCandidate(ctx context.Context, candidateID int64) error {
	if err := s.repo.DeleteCandidate(ctx, candidateID); err != nil {
		return err
	}
	s.rankings.Invalidate()
	slog.Info("Candidate deleted", "candidate_id", candidateID)
	return nil
}
