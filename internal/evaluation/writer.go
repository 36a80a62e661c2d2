// Package evaluation records scored responses and keeps each candidate's
// ranking row in step with its evaluations.
package evaluation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/database"
	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/rubric"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/scoring"
)

// Invalidator drops cached ranking reads.
type Invalidator interface {
	Invalidate()
}

// Input is a reviewer's scored response to one prompt.
type Input struct {
	PromptID       string         `json:"prompt_id"`
	Response       string         `json:"response"`
	RubricScores   scoring.Scores `json:"rubric_scores"`
	EvaluatorNotes *string        `json:"evaluator_notes,omitempty"`
}

// Item is one evaluation in a bulk load.
type Item struct {
	CandidateID int64
	Input
}

// BulkResult counts the outcome of BulkLoad.
type BulkResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// Writer is the only path that creates or removes evaluations.
type Writer struct {
	repo        *database.Repository
	invalidator Invalidator
}

// NewWriter creates a writer. invalidator may be nil.
func NewWriter(repo *database.Repository, invalidator Invalidator) *Writer {
	return &Writer{repo: repo, invalidator: invalidator}
}

func (w *Writer) invalidate() {
	if w.invalidator != nil {
		w.invalidator.Invalidate()
	}
}

func validate(in Input) error {
	if _, ok := rubric.Get(in.PromptID); !ok {
		return apperrors.NotFound("prompt", in.PromptID)
	}
	if strings.TrimSpace(in.Response) == "" {
		return apperrors.NewValidationErrorWithMap(map[string]string{
			"response": "response text is required",
		})
	}
	if problems := scoring.Check(in.PromptID, in.RubricScores); len(problems) > 0 {
		return apperrors.NewValidationError("rubric scores do not match the prompt's rubric", problems)
	}
	return nil
}

// Record validates in, stores it, and recomputes the candidate's ranking in
// the same transaction.
func (w *Writer) Record(ctx context.Context, candidateID int64, in Input) (*database.Evaluation, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	e := &database.Evaluation{
		CandidateID:    candidateID,
		PromptType:     in.PromptID,
		Response:       in.Response,
		RubricScores:   in.RubricScores,
		TotalScore:     scoring.TotalScore(in.PromptID, in.RubricScores),
		EvaluatorNotes: in.EvaluatorNotes,
	}

	err := w.repo.WithTx(ctx, func(tx *database.Repository) error {
		exists, err := tx.CandidateExists(ctx, candidateID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.NotFound("candidate", candidateID)
		}
		if err := tx.InsertEvaluation(ctx, e); err != nil {
			return err
		}
		_, err = RecomputeRanking(ctx, tx, candidateID)
		return err
	})
	if err != nil {
		return nil, err
	}

	w.invalidate()
	slog.Info("Evaluation recorded",
		"candidate_id", candidateID,
		"prompt_id", in.PromptID,
		"total_score", e.TotalScore)
	return e, nil
}

// Delete removes a candidate's evaluation for one prompt so it can be
// re-scored, and recomputes the ranking.
func (w *Writer) Delete(ctx context.Context, candidateID int64, promptID string) error {
	err := w.repo.WithTx(ctx, func(tx *database.Repository) error {
		if err := tx.DeleteEvaluation(ctx, candidateID, promptID); err != nil {
			return err
		}
		_, err := RecomputeRanking(ctx, tx, candidateID)
		return err
	})
	if err != nil {
		return err
	}

	w.invalidate()
	slog.Info("Evaluation deleted", "candidate_id", candidateID, "prompt_id", promptID)
	return nil
}

// BulkLoad records items one by one. Duplicates are skipped and logged;
// any other failure stops the load.
func (w *Writer) BulkLoad(ctx context.Context, items []Item) (BulkResult, error) {
	var result BulkResult
	for _, item := range items {
		if _, err := w.Record(ctx, item.CandidateID, item.Input); err != nil {
			if apperrors.Is(err, apperrors.KindConflict) {
				result.Skipped++
				slog.Info("Skipping existing evaluation",
					"candidate_id", item.CandidateID,
					"prompt_id", item.PromptID)
				continue
			}
			return result, err
		}
		result.Inserted++
	}
	return result, nil
}

// RecomputeRanking derives the ranking row from the candidate's current
// evaluations. With no evaluations left the row is removed and nil returned.
func RecomputeRanking(ctx context.Context, tx *database.Repository, candidateID int64) (*database.Ranking, error) {
	totals, err := tx.EvaluationTotals(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	if len(totals) == 0 {
		return nil, tx.DeleteRanking(ctx, candidateID)
	}

	rk := &database.Ranking{
		CandidateID:         candidateID,
		OverallScore:        scoring.OverallScore(totals),
		CrisisScore:         totals[rubric.PromptCrisis],
		SustainabilityScore: totals[rubric.PromptSustainability],
		TeamScore:           totals[rubric.PromptTeam],
	}
	if err := tx.UpsertRanking(ctx, rk); err != nil {
		return nil, err
	}
	return rk, nil
}
