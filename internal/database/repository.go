package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/rubric"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	queryRankingByCandidate = `SELECT candidate_id, overall_score, crisis_score, sustainability_score, team_score,
		share_token, is_shared, last_shared_at, updated_at
		FROM rankings WHERE candidate_id = ?`

	queryCandidateByShareToken = `SELECT candidate_id FROM rankings WHERE share_token = ?`

	queryCountRankings = `SELECT COUNT(*) FROM rankings`

	candidateColumns = `id, first_name, last_name, email, phone, location, bio, avatar_url,
		years_experience, primary_skill, secondary_skills, linkedin_url, github_url, website_url, created_at`

	summaryColumns = `c.id, c.first_name, c.last_name, c.email, c.primary_skill, c.secondary_skills,
		c.avatar_url, c.location, c.years_experience, r.overall_score`

	// unranked candidates last on every dialect
	summaryOrder = `ORDER BY CASE WHEN r.overall_score IS NULL THEN 1 ELSE 0 END, r.overall_score DESC, c.id ASC`
)

// Repository handles database operations. A Repository returned to a
// WithTx callback runs every statement inside that transaction.
type Repository struct {
	db   *DB
	q    querier
	inTx bool
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db, q: db.DB}
}

// DB returns the underlying connection.
func (r *Repository) DB() *DB {
	return r.db
}

// WithTx runs fn in a transaction, committing when fn returns nil and
// rolling back otherwise.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) (err error) {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.Warn("Failed to roll back transaction", "error", rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = storageError("commit transaction", cErr)
		}
	}()

	err = fn(&Repository{db: r.db, q: tx, inTx: true})
	return err
}

func (r *Repository) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.q.ExecContext(ctx, r.db.Rebind(query), args...)
}

func (r *Repository) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.q.QueryContext(ctx, r.db.Rebind(query), args...)
}

func (r *Repository) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.q.QueryRowContext(ctx, r.db.Rebind(query), args...)
}

// preparedRow uses the prepared statement outside transactions; inside one
// the statement text runs on the transaction's connection.
func (r *Repository) preparedRow(ctx context.Context, name, query string, args ...any) *sql.Row {
	if !r.inTx {
		if stmt, err := r.db.GetPreparedStatement(name); err == nil {
			return stmt.QueryRowContext(ctx, args...)
		}
	}
	return r.queryRow(ctx, query, args...)
}

// Ping verifies connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return storageError("ping", r.db.PingContext(ctx))
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeSkills substitutes an empty list for malformed stored JSON.
func decodeSkills(raw string, candidateID int64) []string {
	skills := []string{}
	if strings.TrimSpace(raw) == "" {
		return skills
	}
	if err := json.Unmarshal([]byte(raw), &skills); err != nil || skills == nil {
		slog.Warn("Malformed stored data replaced with empty list",
			"error", apperrors.MalformedData("secondary_skills", err),
			"candidate_id", candidateID)
		return []string{}
	}
	return skills
}

// decodeScores substitutes an empty map for malformed stored JSON.
func decodeScores(raw string, evaluationID int64) map[string]float64 {
	scores := map[string]float64{}
	if err := json.Unmarshal([]byte(raw), &scores); err != nil || scores == nil {
		slog.Warn("Malformed stored data replaced with empty map",
			"error", apperrors.MalformedData("rubric_scores", err),
			"evaluation_id", evaluationID)
		return map[string]float64{}
	}
	return scores
}

func scanCandidate(row rowScanner) (*Candidate, error) {
	var c Candidate
	var skills string
	var createdAt int64
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Location, &c.Bio, &c.AvatarURL,
		&c.YearsExperience, &c.PrimarySkill, &skills, &c.LinkedinURL, &c.GithubURL, &c.WebsiteURL, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	c.SecondarySkills = decodeSkills(skills, c.ID)
	c.CreatedAt = unixTime(createdAt)
	return &c, nil
}

// CreateCandidate inserts c and sets its ID and CreatedAt.
func (r *Repository) CreateCandidate(ctx context.Context, c *Candidate) error {
	if c.SecondarySkills == nil {
		c.SecondarySkills = []string{}
	}
	skills, err := encodeJSON(c.SecondarySkills)
	if err != nil {
		return apperrors.NewInternalError("failed to encode secondary skills", err)
	}
	c.CreatedAt = time.Now().UTC().Truncate(time.Second)

	err = r.queryRow(ctx, `
		INSERT INTO candidates (first_name, last_name, email, phone, location, bio, avatar_url,
			years_experience, primary_skill, secondary_skills, linkedin_url, github_url, website_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, c.FirstName, c.LastName, c.Email, c.Phone, c.Location, c.Bio, c.AvatarURL,
		c.YearsExperience, c.PrimarySkill, skills, c.LinkedinURL, c.GithubURL, c.WebsiteURL, c.CreatedAt.Unix(),
	).Scan(&c.ID)

	if IsUniqueViolation(err) {
		return apperrors.Conflict("candidate with this email already exists", err).WithField("email", c.Email)
	}
	return storageError("create candidate", err)
}

// GetCandidate loads a candidate by id.
func (r *Repository) GetCandidate(ctx context.Context, id int64) (*Candidate, error) {
	c, err := scanCandidate(r.queryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("candidate", id)
	}
	if err != nil {
		return nil, storageError("get candidate", err)
	}
	return c, nil
}

// CandidateExists reports whether a candidate row exists.
func (r *Repository) CandidateExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.queryRow(ctx, `SELECT 1 FROM candidates WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageError("check candidate", err)
	}
	return true, nil
}

// DeleteCandidate removes a candidate together with its evaluations and ranking.
func (r *Repository) DeleteCandidate(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(tx *Repository) error {
		if _, err := tx.exec(ctx, `DELETE FROM rankings WHERE candidate_id = ?`, id); err != nil {
			return storageError("delete ranking", err)
		}
		if _, err := tx.exec(ctx, `DELETE FROM evaluations WHERE candidate_id = ?`, id); err != nil {
			return storageError("delete evaluations", err)
		}
		res, err := tx.exec(ctx, `DELETE FROM candidates WHERE id = ?`, id)
		if err != nil {
			return storageError("delete candidate", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperrors.NotFound("candidate", id)
		}
		return nil
	})
}

// CountCandidates returns the number of candidates.
func (r *Repository) CountCandidates(ctx context.Context) (int, error) {
	var n int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&n); err != nil {
		return 0, storageError("count candidates", err)
	}
	return n, nil
}

// ListCandidateIDs returns every candidate id in ascending order.
func (r *Repository) ListCandidateIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.query(ctx, `SELECT id FROM candidates ORDER BY id ASC`)
	if err != nil {
		return nil, storageError("list candidates", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storageError("scan candidate id", err)
		}
		ids = append(ids, id)
	}
	return ids, storageError("iterate candidates", rows.Err())
}

// ListEvaluations returns a candidate's evaluations in creation order.
func (r *Repository) ListEvaluations(ctx context.Context, candidateID int64) ([]Evaluation, error) {
	rows, err := r.query(ctx, `
		SELECT id, candidate_id, prompt_type, response, rubric_scores, total_score, evaluator_notes, created_at
		FROM evaluations
		WHERE candidate_id = ?
		ORDER BY created_at ASC, id ASC
	`, candidateID)
	if err != nil {
		return nil, storageError("list evaluations", err)
	}
	defer rows.Close()

	evaluations := []Evaluation{}
	for rows.Next() {
		var e Evaluation
		var scores string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.CandidateID, &e.PromptType, &e.Response, &scores,
			&e.TotalScore, &e.EvaluatorNotes, &createdAt); err != nil {
			return nil, storageError("scan evaluation", err)
		}
		e.RubricScores = decodeScores(scores, e.ID)
		e.CreatedAt = unixTime(createdAt)
		evaluations = append(evaluations, e)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate evaluations", err)
	}
	return evaluations, nil
}

// InsertEvaluation stores e and sets its ID and CreatedAt. A second
// evaluation for the same candidate and prompt is a conflict.
func (r *Repository) InsertEvaluation(ctx context.Context, e *Evaluation) error {
	scores, err := encodeJSON(e.RubricScores)
	if err != nil {
		return apperrors.NewInternalError("failed to encode rubric scores", err)
	}
	e.CreatedAt = time.Now().UTC().Truncate(time.Second)

	err = r.queryRow(ctx, `
		INSERT INTO evaluations (candidate_id, prompt_type, response, rubric_scores, total_score, evaluator_notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, e.CandidateID, e.PromptType, e.Response, scores, e.TotalScore, e.EvaluatorNotes, e.CreatedAt.Unix()).Scan(&e.ID)

	if IsUniqueViolation(err) {
		return apperrors.Conflict("evaluation already exists for this candidate and prompt", err).
			WithField("candidate_id", e.CandidateID).
			WithField("prompt_id", e.PromptType)
	}
	return storageError("insert evaluation", err)
}

// DeleteEvaluation removes the evaluation of one prompt for a candidate.
func (r *Repository) DeleteEvaluation(ctx context.Context, candidateID int64, promptType string) error {
	res, err := r.exec(ctx, `DELETE FROM evaluations WHERE candidate_id = ? AND prompt_type = ?`, candidateID, promptType)
	if err != nil {
		return storageError("delete evaluation", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("evaluation", promptType)
	}
	return nil
}

// EvaluationTotals returns the candidate's total score per prompt.
func (r *Repository) EvaluationTotals(ctx context.Context, candidateID int64) (map[string]float64, error) {
	rows, err := r.query(ctx, `SELECT prompt_type, total_score FROM evaluations WHERE candidate_id = ?`, candidateID)
	if err != nil {
		return nil, storageError("load evaluation totals", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var prompt string
		var total float64
		if err := rows.Scan(&prompt, &total); err != nil {
			return nil, storageError("scan evaluation total", err)
		}
		totals[prompt] = total
	}
	return totals, storageError("iterate evaluation totals", rows.Err())
}

// UpsertRanking writes the score columns of a ranking, keeping any share state.
func (r *Repository) UpsertRanking(ctx context.Context, rk *Ranking) error {
	rk.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	_, err := r.exec(ctx, `
		INSERT INTO rankings (candidate_id, overall_score, crisis_score, sustainability_score, team_score, is_shared, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(candidate_id) DO UPDATE SET
			overall_score = excluded.overall_score,
			crisis_score = excluded.crisis_score,
			sustainability_score = excluded.sustainability_score,
			team_score = excluded.team_score,
			updated_at = excluded.updated_at
	`, rk.CandidateID, rk.OverallScore, rk.CrisisScore, rk.SustainabilityScore, rk.TeamScore, false, rk.UpdatedAt.Unix())
	return storageError("upsert ranking", err)
}

// DeleteRanking removes a candidate's ranking row, if any.
func (r *Repository) DeleteRanking(ctx context.Context, candidateID int64) error {
	_, err := r.exec(ctx, `DELETE FROM rankings WHERE candidate_id = ?`, candidateID)
	return storageError("delete ranking", err)
}

// GetRanking loads the ranking row of a candidate.
func (r *Repository) GetRanking(ctx context.Context, candidateID int64) (*Ranking, error) {
	var rk Ranking
	var lastShared *int64
	var updatedAt int64
	err := r.preparedRow(ctx, stmtRankingByCandidate, queryRankingByCandidate, candidateID).Scan(
		&rk.CandidateID, &rk.OverallScore, &rk.CrisisScore, &rk.SustainabilityScore, &rk.TeamScore,
		&rk.ShareToken, &rk.IsShared, &lastShared, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("ranking", candidateID)
	}
	if err != nil {
		return nil, storageError("get ranking", err)
	}
	rk.LastSharedAt = unixTimePtr(lastShared)
	rk.UpdatedAt = unixTime(updatedAt)
	return &rk, nil
}

// CountRankings returns the number of ranked candidates.
func (r *Repository) CountRankings(ctx context.Context) (int, error) {
	var n int
	if err := r.preparedRow(ctx, stmtCountRankings, queryCountRankings).Scan(&n); err != nil {
		return 0, storageError("count rankings", err)
	}
	return n, nil
}

// RankOf returns the 1-based position of a candidate in the ordering
// overall_score DESC, candidate_id ASC.
func (r *Repository) RankOf(ctx context.Context, candidateID int64) (int, error) {
	rk, err := r.GetRanking(ctx, candidateID)
	if err != nil {
		return 0, err
	}

	var ahead int
	err = r.queryRow(ctx, `
		SELECT COUNT(*) FROM rankings
		WHERE overall_score > ? OR (overall_score = ? AND candidate_id < ?)
	`, rk.OverallScore, rk.OverallScore, candidateID).Scan(&ahead)
	if err != nil {
		return 0, storageError("rank candidate", err)
	}
	return ahead + 1, nil
}

// LeaderboardRows returns ranked candidates in order, starting after offset.
// Percentile is left for the caller, which knows the population size.
func (r *Repository) LeaderboardRows(ctx context.Context, limit, offset int) ([]RankedCandidate, error) {
	rows, err := r.query(ctx, `
		SELECT
			ROW_NUMBER() OVER (ORDER BY r.overall_score DESC, r.candidate_id ASC) AS rank_position,
			c.id, c.first_name, c.last_name, c.email, c.primary_skill, c.avatar_url, c.location, c.years_experience,
			r.overall_score, r.crisis_score, r.sustainability_score, r.team_score
		FROM rankings r
		JOIN candidates c ON c.id = r.candidate_id
		ORDER BY r.overall_score DESC, r.candidate_id ASC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, storageError("query leaderboard", err)
	}
	defer rows.Close()

	entries := []RankedCandidate{}
	for rows.Next() {
		var e RankedCandidate
		if err := rows.Scan(&e.Rank, &e.CandidateID, &e.FirstName, &e.LastName, &e.Email, &e.PrimarySkill,
			&e.AvatarURL, &e.Location, &e.YearsExperience,
			&e.OverallScore, &e.CrisisScore, &e.SustainabilityScore, &e.TeamScore); err != nil {
			return nil, storageError("scan leaderboard row", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate leaderboard", err)
	}
	return entries, nil
}

// SetShareToken stores token as the candidate's only share token.
func (r *Repository) SetShareToken(ctx context.Context, candidateID int64, token string, at time.Time) error {
	res, err := r.exec(ctx, `
		UPDATE rankings SET share_token = ?, is_shared = ?, last_shared_at = ? WHERE candidate_id = ?
	`, token, true, at.Unix(), candidateID)
	if IsUniqueViolation(err) {
		return apperrors.Conflict("share token collision", err)
	}
	if err != nil {
		return storageError("set share token", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("ranking", candidateID)
	}
	return nil
}

// ClearShareToken revokes the candidate's share token.
func (r *Repository) ClearShareToken(ctx context.Context, candidateID int64) error {
	res, err := r.exec(ctx, `
		UPDATE rankings SET share_token = NULL, is_shared = ? WHERE candidate_id = ?
	`, false, candidateID)
	if err != nil {
		return storageError("clear share token", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("ranking", candidateID)
	}
	return nil
}

// CandidateIDByShareToken resolves a share token.
func (r *Repository) CandidateIDByShareToken(ctx context.Context, token string) (int64, error) {
	var id int64
	err := r.preparedRow(ctx, stmtCandidateByShareToken, queryCandidateByShareToken, token).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.NotFound("share token", nil)
	}
	if err != nil {
		return 0, storageError("resolve share token", err)
	}
	return id, nil
}

// EscapeLike escapes LIKE wildcards so q matches literally with ESCAPE '\'.
func EscapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

func scanSummaries(rows *sql.Rows) ([]CandidateSummary, error) {
	defer rows.Close()

	out := []CandidateSummary{}
	for rows.Next() {
		var s CandidateSummary
		var skills string
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.PrimarySkill, &skills,
			&s.AvatarURL, &s.Location, &s.YearsExperience, &s.OverallScore); err != nil {
			return nil, storageError("scan candidate summary", err)
		}
		s.SecondarySkills = decodeSkills(skills, s.ID)
		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate candidate summaries", err)
	}
	return out, nil
}

// SearchCandidates matches q case-insensitively against names, email and
// primary skill.
func (r *Repository) SearchCandidates(ctx context.Context, q string, limit int) ([]CandidateSummary, error) {
	pattern := "%" + EscapeLike(q) + "%"
	rows, err := r.query(ctx, `
		SELECT `+summaryColumns+`
		FROM candidates c
		LEFT JOIN rankings r ON r.candidate_id = c.id
		WHERE LOWER(c.first_name) LIKE LOWER(?) ESCAPE '\'
			OR LOWER(c.last_name) LIKE LOWER(?) ESCAPE '\'
			OR LOWER(c.email) LIKE LOWER(?) ESCAPE '\'
			OR LOWER(c.primary_skill) LIKE LOWER(?) ESCAPE '\'
		`+summaryOrder+`
		LIMIT ?
	`, pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, storageError("search candidates", err)
	}
	return scanSummaries(rows)
}

// CandidatesBySkill returns candidates whose primary or secondary skills
// include skill.
func (r *Repository) CandidatesBySkill(ctx context.Context, skill string, limit int) ([]CandidateSummary, error) {
	quoted, err := encodeJSON(skill)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode skill", err)
	}
	pattern := "%" + EscapeLike(quoted) + "%"

	rows, err := r.query(ctx, `
		SELECT `+summaryColumns+`
		FROM candidates c
		LEFT JOIN rankings r ON r.candidate_id = c.id
		WHERE LOWER(c.primary_skill) = LOWER(?)
			OR LOWER(c.secondary_skills) LIKE LOWER(?) ESCAPE '\'
		`+summaryOrder+`
		LIMIT ?
	`, skill, pattern, limit)
	if err != nil {
		return nil, storageError("candidates by skill", err)
	}
	return scanSummaries(rows)
}

// SkillDistribution counts candidates per primary skill with their mean
// overall score.
func (r *Repository) SkillDistribution(ctx context.Context) ([]SkillStat, error) {
	rows, err := r.query(ctx, `
		SELECT c.primary_skill, COUNT(*), AVG(r.overall_score)
		FROM candidates c
		LEFT JOIN rankings r ON r.candidate_id = c.id
		GROUP BY c.primary_skill
		ORDER BY COUNT(*) DESC, c.primary_skill ASC
	`)
	if err != nil {
		return nil, storageError("skill distribution", err)
	}
	defer rows.Close()

	stats := []SkillStat{}
	for rows.Next() {
		var s SkillStat
		if err := rows.Scan(&s.PrimarySkill, &s.Count, &s.AvgScore); err != nil {
			return nil, storageError("scan skill stat", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate skill stats", err)
	}
	return stats, nil
}

// EvaluationMetrics aggregates evaluation totals per prompt.
func (r *Repository) EvaluationMetrics(ctx context.Context) ([]PromptStat, error) {
	rows, err := r.query(ctx, `
		SELECT prompt_type, COUNT(*), AVG(total_score), MIN(total_score), MAX(total_score)
		FROM evaluations
		GROUP BY prompt_type
		ORDER BY prompt_type ASC
	`)
	if err != nil {
		return nil, storageError("evaluation metrics", err)
	}
	defer rows.Close()

	stats := []PromptStat{}
	for rows.Next() {
		var s PromptStat
		if err := rows.Scan(&s.PromptType, &s.Count, &s.AvgScore, &s.MinScore, &s.MaxScore); err != nil {
			return nil, storageError("scan prompt stat", err)
		}
		s.MaxPossible = rubric.TotalPossible(s.PromptType)
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate prompt stats", err)
	}
	return stats, nil
}

// String describes the connection for logs.
func (db *DB) String() string {
	return fmt.Sprintf("%s(%s)", db.driver, db.dialect)
}
