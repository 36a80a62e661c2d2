// Package sharing issues and resolves unguessable links to a candidate's
// read-only profile.
package sharing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/database"
	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/security"
)

const issueAttempts = 3

// Share is a freshly issued link.
type Share struct {
	CandidateID int64     `json:"candidate_id"`
	Token       string    `json:"token"`
	ShareURL    string    `json:"share_url"`
	SharedAt    time.Time `json:"shared_at"`
}

// Invalidator drops cached ranking reads.
type Invalidator interface {
	Invalidate()
}

// Service manages share tokens. Each ranked candidate holds at most one
// live token.
type Service struct {
	repo        *database.Repository
	invalidator Invalidator
	frontendURL string
	newToken    func() (string, error)
	now         func() time.Time
}

// NewService creates a sharing service. invalidator may be nil.
func NewService(repo *database.Repository, invalidator Invalidator, frontendURL string) *Service {
	return &Service{
		repo:        repo,
		invalidator: invalidator,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		newToken:    security.GenerateShareToken,
		now:         time.Now,
	}
}

// URLFor builds the public link for token.
func (s *Service) URLFor(token string) string {
	return s.frontendURL + "/share/" + token
}

// Issue replaces any previous token for the candidate with a new one.
func (s *Service) Issue(ctx context.Context, candidateID int64) (*Share, error) {
	exists, err := s.repo.CandidateExists(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("candidate", candidateID)
	}

	var lastErr error
	for attempt := 0; attempt < issueAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return nil, apperrors.NewInternalError("failed to generate share token", err)
		}

		at := s.now().UTC().Truncate(time.Second)
		err = s.repo.SetShareToken(ctx, candidateID, token, at)
		if apperrors.Is(err, apperrors.KindConflict) {
			slog.Warn("Share token collision, regenerating", "candidate_id", candidateID, "attempt", attempt+1)
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		if s.invalidator != nil {
			s.invalidator.Invalidate()
		}
		slog.Info("Share link issued", "candidate_id", candidateID)
		return &Share{CandidateID: candidateID, Token: token, ShareURL: s.URLFor(token), SharedAt: at}, nil
	}
	return nil, apperrors.NewInternalError("could not issue a unique share token", lastErr)
}

// Resolve maps a token to its candidate. Blank, malformed and unknown
// tokens are all NotFound.
func (s *Service) Resolve(ctx context.Context, token string) (int64, error) {
	token = strings.TrimSpace(token)
	if !security.LooksLikeShareToken(token) {
		return 0, apperrors.NotFound("share token", nil)
	}
	return s.repo.CandidateIDByShareToken(ctx, token)
}

// Revoke clears the candidate's token so the old link stops resolving.
func (s *Service) Revoke(ctx context.Context, candidateID int64) error {
	if err := s.repo.ClearShareToken(ctx, candidateID); err != nil {
		return err
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
	slog.Info("Share link revoked", "candidate_id", candidateID)
	return nil
}
