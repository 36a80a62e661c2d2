package database

import (
	"time"
)

// Candidate is a person being evaluated
type Candidate struct {
	ID              int64     `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Phone           *string   `json:"phone"`
	Location        *string   `json:"location"`
	Bio             *string   `json:"bio"`
	AvatarURL       *string   `json:"avatar_url"`
	YearsExperience *int      `json:"years_experience"`
	PrimarySkill    string    `json:"primary_skill"`
	SecondarySkills []string  `json:"secondary_skills"`
	LinkedinURL     *string   `json:"linkedin_url"`
	GithubURL       *string   `json:"github_url"`
	WebsiteURL      *string   `json:"website_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// Evaluation is one scored response to one scenario prompt
type Evaluation struct {
	ID             int64              `json:"id"`
	CandidateID    int64              `json:"candidate_id"`
	PromptType     string             `json:"prompt_type"`
	Response       string             `json:"response"`
	RubricScores   map[string]float64 `json:"rubric_scores"`
	TotalScore     float64            `json:"total_score"`
	EvaluatorNotes *string            `json:"evaluator_notes"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Ranking is the materialized score summary for a candidate. Rank and
// percentile are derived at query time.
type Ranking struct {
	CandidateID         int64      `json:"candidate_id"`
	OverallScore        float64    `json:"overall_score"`
	CrisisScore         float64    `json:"crisis_score"`
	SustainabilityScore float64    `json:"sustainability_score"`
	TeamScore           float64    `json:"team_score"`
	ShareToken          *string    `json:"-"`
	IsShared            bool       `json:"is_shared"`
	LastSharedAt        *time.Time `json:"last_shared_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// RankedCandidate is one row of the ordered leaderboard
type RankedCandidate struct {
	Rank                int     `json:"rank"`
	CandidateID         int64   `json:"id"`
	FirstName           string  `json:"first_name"`
	LastName            string  `json:"last_name"`
	Email               string  `json:"email"`
	PrimarySkill        string  `json:"primary_skill"`
	AvatarURL           *string `json:"avatar_url"`
	Location            *string `json:"location"`
	YearsExperience     *int    `json:"years_experience"`
	OverallScore        float64 `json:"overall_score"`
	CrisisScore         float64 `json:"crisis_score"`
	SustainabilityScore float64 `json:"sustainability_score"`
	TeamScore           float64 `json:"team_score"`
	Percentile          float64 `json:"percentile"`
}

// FullName joins first and last name.
func (r RankedCandidate) FullName() string {
	return r.FirstName + " " + r.LastName
}

// CandidateSummary is a search or skill listing row
type CandidateSummary struct {
	ID              int64    `json:"id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	PrimarySkill    string   `json:"primary_skill"`
	SecondarySkills []string `json:"secondary_skills"`
	AvatarURL       *string  `json:"avatar_url"`
	Location        *string  `json:"location"`
	YearsExperience *int     `json:"years_experience"`
	OverallScore    *float64 `json:"overall_score"`
}

// SkillStat aggregates candidates by primary skill
type SkillStat struct {
	PrimarySkill string   `json:"primary_skill"`
	Count        int      `json:"count"`
	AvgScore     *float64 `json:"avg_score"`
}

// PromptStat aggregates evaluations for one prompt
type PromptStat struct {
	PromptType  string  `json:"prompt_type"`
	Count       int     `json:"count"`
	AvgScore    float64 `json:"avg_score"`
	MinScore    float64 `json:"min_score"`
	MaxScore    float64 `json:"max_score"`
	MaxPossible int     `json:"max_possible"`
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func unixTimePtr(sec *int64) *time.Time {
	if sec == nil {
		return nil
	}
	t := unixTime(*sec)
	return &t
}
