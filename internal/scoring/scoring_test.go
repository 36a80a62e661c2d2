package scoring

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/rubric"
)

func perfectCrisis() Scores {
	return Scores{
		"decisionMaking":  20,
		"communication":   20,
		"technicalAcumen": 20,
		"leadership":      20,
		"completeness":    20,
	}
}

func without(s Scores, key string) Scores {
	out := Scores{}
	for k, v := range s {
		if k != key {
			out[k] = v
		}
	}
	return out
}

func with(s Scores, key string, v float64) Scores {
	out := Scores{}
	for k, val := range s {
		out[k] = val
	}
	out[key] = v
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		promptID string
		scores   Scores
		expected bool
	}{
		{"perfect score equals max", rubric.PromptCrisis, perfectCrisis(), true},
		{"all zeros", rubric.PromptCrisis, Scores{"decisionMaking": 0, "communication": 0, "technicalAcumen": 0, "leadership": 0, "completeness": 0}, true},
		{"fractional values", rubric.PromptCrisis, with(perfectCrisis(), "leadership", 12.5), true},
		{"missing key", rubric.PromptCrisis, without(perfectCrisis(), "leadership"), false},
		{"extra key", rubric.PromptCrisis, with(perfectCrisis(), "charisma", 5), false},
		{"same size wrong member", rubric.PromptCrisis, with(without(perfectCrisis(), "leadership"), "charisma", 5), false},
		{"above max", rubric.PromptCrisis, with(perfectCrisis(), "leadership", 20.5), false},
		{"negative", rubric.PromptCrisis, with(perfectCrisis(), "leadership", -1), false},
		{"NaN", rubric.PromptCrisis, with(perfectCrisis(), "leadership", math.NaN()), false},
		{"infinity", rubric.PromptCrisis, with(perfectCrisis(), "leadership", math.Inf(1)), false},
		{"unknown prompt", "unknown", perfectCrisis(), false},
		{"empty set", rubric.PromptTeam, Scores{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Validate(tt.promptID, tt.scores))
		})
	}
}

func TestCheckReasons(t *testing.T) {
	scores := with(without(perfectCrisis(), "communication"), "leadership", 30)
	scores["zeta"] = 1
	scores["alpha"] = 1

	problems := Check(rubric.PromptCrisis, scores)
	require.Len(t, problems, 4)

	assert.Equal(t, ReasonMissingCategory, problems[0].Reason)
	assert.Equal(t, "communication", problems[0].Category)
	assert.Equal(t, ReasonOutOfRange, problems[1].Reason)
	assert.Equal(t, "leadership", problems[1].Category)
	assert.Equal(t, ReasonUnknownCategory, problems[2].Reason)
	assert.Equal(t, "alpha", problems[2].Category)
	assert.Equal(t, "zeta", problems[3].Category)

	unknown := Check("nope", perfectCrisis())
	require.Len(t, unknown, 1)
	assert.Equal(t, ReasonUnknownPrompt, unknown[0].Reason)
}

func TestUnmarshalNullScore(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		valid   bool
		total   float64
		scored  int
		wantErr bool
	}{
		{name: "numbers", body: `{"decisionMaking":20,"communication":20,"technicalAcumen":20,"leadership":20,"completeness":20}`, valid: true, total: 100, scored: 5},
		{name: "null score", body: `{"decisionMaking":null,"communication":20,"technicalAcumen":20,"leadership":20,"completeness":20}`, total: 80, scored: 4},
		{name: "string score", body: `{"decisionMaking":"20"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var scores Scores
			err := json.Unmarshal([]byte(tt.body), &scores)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.valid, Validate(rubric.PromptCrisis, scores))
			p := ProgressOf(rubric.PromptCrisis, scores)
			assert.InDelta(t, tt.total, p.Total, 1e-9)
			assert.Equal(t, tt.scored, p.Scored)
		})
	}

	var scores Scores
	require.NoError(t, json.Unmarshal([]byte(`{"decisionMaking":null}`), &scores))
	problems := Check(rubric.PromptCrisis, scores)
	require.NotEmpty(t, problems)
	assert.Equal(t, ReasonNotFinite, problems[0].Reason)
	assert.Equal(t, "decisionMaking", problems[0].Category)

	var empty Scores
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	assert.Nil(t, empty)
}

func TestTotalScore(t *testing.T) {
	tests := []struct {
		name     string
		promptID string
		scores   Scores
		expected float64
	}{
		{"complete set", rubric.PromptCrisis, perfectCrisis(), 100},
		{"missing keys contribute zero", rubric.PromptCrisis, Scores{"decisionMaking": 15, "communication": 12}, 27},
		{"out of range still summed", rubric.PromptCrisis, Scores{"decisionMaking": 50}, 50},
		{"fractional", rubric.PromptTeam, Scores{"empathy": 7.25, "culture": 0.5}, 7.75},
		{"empty", rubric.PromptTeam, Scores{}, 0},
		{"unknown prompt sums provided", "unknown", Scores{"x": 3, "y": 4}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TotalScore(tt.promptID, tt.scores), 1e-9)
		})
	}
}

func TestProgressOf(t *testing.T) {
	p := ProgressOf(rubric.PromptTeam, Scores{"empathy": 10, "culture": 15})
	assert.Equal(t, 25.0, p.Total)
	assert.Equal(t, 100, p.TotalPossible)
	assert.Equal(t, 2, p.Scored)
	assert.Equal(t, 5, p.Categories)
	assert.False(t, p.Complete)
	assert.Equal(t, []string{"diagnostics", "execution", "development"}, p.Remaining)

	unknown := ProgressOf("nope", Scores{"a": 1})
	assert.Equal(t, rubric.DefaultTotalPossible, unknown.TotalPossible)
	assert.Equal(t, 1.0, unknown.Total)
	assert.False(t, unknown.Complete)
}

func TestOverallScore(t *testing.T) {
	assert.Equal(t, 0.0, OverallScore(nil))
	assert.Equal(t, 80.0, OverallScore(map[string]float64{"crisis": 80}))
	assert.InDelta(t, 75.0, OverallScore(map[string]float64{"crisis": 90, "team": 60}), 1e-9)
	assert.InDelta(t, 70.0, OverallScore(map[string]float64{"crisis": 90, "team": 60, "sustainability": 60}), 1e-9)
}
