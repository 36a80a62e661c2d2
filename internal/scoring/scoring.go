package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/rubric"
)

// Reason classifies why a score set was rejected
type Reason string

const (
	ReasonUnknownPrompt   Reason = "unknown_prompt"
	ReasonMissingCategory Reason = "missing_category"
	ReasonUnknownCategory Reason = "unknown_category"
	ReasonNotFinite       Reason = "not_finite"
	ReasonOutOfRange      Reason = "out_of_range"
)

// Problem is a single reason a score set failed validation.
type Problem struct {
	Reason   Reason `json:"reason"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

// Scores maps rubric category keys to awarded points.
type Scores map[string]float64

// UnmarshalJSON decodes a JSON object of scores. A null score decodes to
// NaN so Check reports it rather than reading it as zero.
func (s *Scores) UnmarshalJSON(data []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}

	out := make(Scores, len(raw))
	for key, v := range raw {
		if v == nil {
			out[key] = math.NaN()
			continue
		}
		out[key] = *v
	}
	*s = out
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Check reports every problem with scores for promptID. An empty result
// means the set is valid: it names exactly the rubric's categories and each
// value is finite and within [0, maxScore].
func Check(promptID string, scores Scores) []Problem {
	r, ok := rubric.Get(promptID)
	if !ok {
		return []Problem{{
			Reason:  ReasonUnknownPrompt,
			Message: fmt.Sprintf("unknown prompt %q", promptID),
		}}
	}

	var problems []Problem
	for _, c := range r.Categories {
		v, present := scores[c.Key]
		switch {
		case !present:
			problems = append(problems, Problem{
				Reason:   ReasonMissingCategory,
				Category: c.Key,
				Message:  fmt.Sprintf("missing score for %s", c.Key),
			})
		case !finite(v):
			problems = append(problems, Problem{
				Reason:   ReasonNotFinite,
				Category: c.Key,
				Message:  fmt.Sprintf("score for %s is not a finite number", c.Key),
			})
		case v < 0 || v > float64(c.MaxScore):
			problems = append(problems, Problem{
				Reason:   ReasonOutOfRange,
				Category: c.Key,
				Message:  fmt.Sprintf("score %g for %s is outside [0, %d]", v, c.Key, c.MaxScore),
			})
		}
	}

	var extra []string
	for key := range scores {
		if _, known := r.Category(key); !known {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		problems = append(problems, Problem{
			Reason:   ReasonUnknownCategory,
			Category: key,
			Message:  fmt.Sprintf("%s is not a category of %s", key, promptID),
		})
	}

	return problems
}

// Validate reports whether scores is a complete, in-range score set for promptID.
func Validate(promptID string, scores Scores) bool {
	return len(Check(promptID, scores)) == 0
}

// TotalScore sums the provided values. It does not validate; categories
// absent from scores and non-finite values contribute nothing.
func TotalScore(promptID string, scores Scores) float64 {
	total := 0.0
	for _, v := range scores {
		if finite(v) {
			total += v
		}
	}
	return total
}

// Progress describes a possibly partial score set.
type Progress struct {
	PromptID      string   `json:"prompt_id"`
	Total         float64  `json:"total"`
	TotalPossible int      `json:"total_possible"`
	Scored        int      `json:"scored"`
	Categories    int      `json:"categories"`
	Complete      bool     `json:"complete"`
	Remaining     []string `json:"remaining"`
}

// ProgressOf totals a partial score set and lists the categories still unscored.
func ProgressOf(promptID string, scores Scores) Progress {
	p := Progress{
		PromptID:      promptID,
		Total:         TotalScore(promptID, scores),
		TotalPossible: rubric.TotalPossible(promptID),
		Remaining:     []string{},
	}

	r, ok := rubric.Get(promptID)
	if !ok {
		return p
	}

	p.Categories = len(r.Categories)
	for _, key := range r.Keys() {
		if v, present := scores[key]; present && finite(v) {
			p.Scored++
		} else {
			p.Remaining = append(p.Remaining, key)
		}
	}
	p.Complete = Validate(promptID, scores)
	return p
}

// OverallScore is the mean of a candidate's per-scenario totals. It is zero
// when no scenario has been evaluated.
func OverallScore(totals map[string]float64) float64 {
	if len(totals) == 0 {
		return 0
	}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	// fixed summation order keeps equal inputs bit-identical for tie-breaks
	sort.Strings(keys)
	sum := 0.0
	for _, k := range keys {
		sum += totals[k]
	}
	return sum / float64(len(totals))
}
