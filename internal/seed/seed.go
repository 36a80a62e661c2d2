// Package seed fills a fresh database with fake candidates and mock
// evaluations for demos and local development.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/database"
	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/evaluation"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/rubric"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/scoring"
)

// DefaultCount is the number of candidates generated when none is given.
const DefaultCount = 40

var (
	firstNames = []string{
		"Ava", "Ben", "Chloe", "Diego", "Elena", "Farah", "Gabriel", "Hana", "Ivan", "Jada",
		"Kenji", "Leila", "Marco", "Nadia", "Omar", "Priya", "Quinn", "Rosa", "Samuel", "Tara",
		"Umar", "Vera", "Wes", "Xin", "Yara", "Zane",
	}
	lastNames = []string{
		"Abbott", "Banerjee", "Castillo", "Dubois", "Eriksen", "Fischer", "Garcia", "Hughes",
		"Ito", "Jensen", "Kowalski", "Lindqvist", "Moreau", "Nakamura", "Okafor", "Petrov",
		"Quintero", "Rossi", "Schmidt", "Tanaka", "Usman", "Varga", "Walsh", "Yilmaz", "Zhou",
	}
	cities = []string{
		"Austin, Texas", "Denver, Colorado", "Portland, Oregon", "Raleigh, North Carolina",
		"Madison, Wisconsin", "Boston, Massachusetts", "Seattle, Washington", "Chicago, Illinois",
		"Atlanta, Georgia", "Phoenix, Arizona",
	}
	skills = []string{
		"JavaScript", "Python", "Java", "TypeScript", "React", "Node.js", "Vue.js", "Angular",
		"PostgreSQL", "MongoDB", "AWS", "Azure", "Docker", "Kubernetes", "Go", "Rust", "C++",
		"Product Management", "Design", "Data Analysis", "Machine Learning", "DevOps",
		"System Design", "Leadership", "Communication", "Project Management", "Agile",
	}
	bios = []string{
		"Enjoys untangling legacy systems and mentoring new engineers.",
		"Has shipped products at two early-stage startups and one large enterprise.",
		"Cares about measurable outcomes and calm incident response.",
		"Moved into engineering from operations and still thinks in runbooks.",
		"Writes more documentation than most people read.",
	}
)

// Generator produces deterministic fake data from a seed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator; equal seeds give equal output.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) pick(from []string) string {
	return from[g.rng.Intn(len(from))]
}

func ptr[T any](v T) *T {
	return &v
}

// Candidates returns n fake candidates. Emails carry the index so a
// single batch never collides with itself.
func (g *Generator) Candidates(n int) []database.Candidate {
	out := make([]database.Candidate, 0, n)
	for i := 0; i < n; i++ {
		first := g.pick(firstNames)
		last := g.pick(lastNames)
		handle := strings.ToLower(first + "." + last)

		secondary := make([]string, 0, 3)
		for len(secondary) < 3 {
			s := g.pick(skills)
			if !contains(secondary, s) {
				secondary = append(secondary, s)
			}
		}

		out = append(out, database.Candidate{
			FirstName:       first,
			LastName:        last,
			Email:           fmt.Sprintf("%s.%d@example.com", handle, i+1),
			Phone:           ptr(fmt.Sprintf("+1555%07d", g.rng.Intn(10_000_000))),
			Location:        ptr(g.pick(cities)),
			Bio:             ptr(g.pick(bios)),
			AvatarURL:       ptr(fmt.Sprintf("https://i.pravatar.cc/150?u=%s", handle)),
			YearsExperience: ptr(1 + g.rng.Intn(20)),
			PrimarySkill:    g.pick(skills),
			SecondarySkills: secondary,
			LinkedinURL:     ptr("https://linkedin.com/in/" + strings.ReplaceAll(handle, ".", "-")),
			GithubURL:       ptr("https://github.com/" + strings.ReplaceAll(handle, ".", "")),
		})
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Scores awards every category of promptID an integer in [1, maxScore].
func (g *Generator) Scores(promptID string) scoring.Scores {
	r, ok := rubric.Get(promptID)
	if !ok {
		return scoring.Scores{}
	}
	scores := make(scoring.Scores, len(r.Categories))
	for _, c := range r.Categories {
		scores[c.Key] = float64(1 + g.rng.Intn(c.MaxScore))
	}
	return scores
}

// Evaluations builds one mock evaluation per prompt for each candidate.
func (g *Generator) Evaluations(candidates []database.Candidate) []evaluation.Item {
	items := make([]evaluation.Item, 0, len(candidates)*len(rubric.IDs()))
	for _, c := range candidates {
		for _, promptID := range rubric.IDs() {
			items = append(items, evaluation.Item{
				CandidateID: c.ID,
				Input: evaluation.Input{
					PromptID:     promptID,
					Response:     MockResponse(promptID, c.FirstName),
					RubricScores: g.Scores(promptID),
				},
			})
		}
	}
	return items
}

// Result summarizes a seeding run.
type Result struct {
	Candidates        int `json:"candidates"`
	SkippedCandidates int `json:"skipped_candidates"`
	Evaluations       int `json:"evaluations"`
	SkippedEvals      int `json:"skipped_evaluations"`
}

// Run inserts count candidates and scores each of them on every prompt.
// Candidates whose email already exists are skipped along with their
// evaluations.
func Run(ctx context.Context, repo *database.Repository, writer *evaluation.Writer, count int, seed int64) (Result, error) {
	if count < 1 {
		count = DefaultCount
	}
	g := NewGenerator(seed)

	var res Result
	inserted := make([]database.Candidate, 0, count)
	for _, c := range g.Candidates(count) {
		if err := repo.CreateCandidate(ctx, &c); err != nil {
			if apperrors.Is(err, apperrors.KindConflict) {
				res.SkippedCandidates++
				continue
			}
			return res, err
		}
		inserted = append(inserted, c)
	}
	res.Candidates = len(inserted)

	bulk, err := writer.BulkLoad(ctx, g.Evaluations(inserted))
	res.Evaluations = bulk.Inserted
	res.SkippedEvals = bulk.Skipped
	if err != nil {
		return res, err
	}

	slog.Info("Seeded database",
		"candidates", res.Candidates,
		"skipped_candidates", res.SkippedCandidates,
		"evaluations", res.Evaluations)
	return res, nil
}
