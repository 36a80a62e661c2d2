package rubric

import (
	"bytes"
	"encoding/json"
)

// DefaultTotalPossible is reported for prompts the catalog does not know.
const DefaultTotalPossible = 100

// Prompt identifiers.
const (
	PromptCrisis         = "crisis"
	PromptSustainability = "sustainability"
	PromptTeam           = "team"
)

// Category is one scored dimension of a rubric
type Category struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	MaxScore int      `json:"maxScore"`
	Criteria []string `json:"criteria"`
}

// Categories keeps rubric dimensions in declaration order and marshals
// as a JSON object keyed by category key without losing that order.
type Categories []Category

// MarshalJSON writes the categories as an ordered object.
func (cs Categories) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range cs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(struct {
			Name     string   `json:"name"`
			MaxScore int      `json:"maxScore"`
			Criteria []string `json:"criteria"`
		}{c.Name, c.MaxScore, c.Criteria})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Rubric describes a scenario prompt and how responses to it are scored.
type Rubric struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Prompt      string     `json:"prompt"`
	Categories  Categories `json:"rubric"`
}

// TotalMax is the sum of every category's maximum score.
func (r Rubric) TotalMax() int {
	total := 0
	for _, c := range r.Categories {
		total += c.MaxScore
	}
	return total
}

// Category looks up a category by key.
func (r Rubric) Category(key string) (Category, bool) {
	for _, c := range r.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Keys returns the category keys in declaration order.
func (r Rubric) Keys() []string {
	keys := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		keys[i] = c.Key
	}
	return keys
}

func (r Rubric) clone() Rubric {
	out := r
	out.Categories = make(Categories, len(r.Categories))
	for i, c := range r.Categories {
		c.Criteria = append([]string(nil), c.Criteria...)
		out.Categories[i] = c
	}
	return out
}

// Get returns the rubric for promptID. The returned value is a copy.
func Get(promptID string) (Rubric, bool) {
	r, ok := index[promptID]
	if !ok {
		return Rubric{}, false
	}
	return r.clone(), true
}

// List returns every rubric in declaration order.
func List() []Rubric {
	out := make([]Rubric, len(catalog))
	for i, r := range catalog {
		out[i] = r.clone()
	}
	return out
}

// IDs returns the known prompt identifiers in declaration order.
func IDs() []string {
	ids := make([]string, len(catalog))
	for i, r := range catalog {
		ids[i] = r.ID
	}
	return ids
}

// TotalPossible returns the maximum achievable score for promptID, or
// DefaultTotalPossible when the prompt is unknown.
func TotalPossible(promptID string) int {
	r, ok := index[promptID]
	if !ok {
		return DefaultTotalPossible
	}
	return r.TotalMax()
}

var index = func() map[string]Rubric {
	m := make(map[string]Rubric, len(catalog))
	for _, r := range catalog {
		m[r.ID] = r
	}
	return m
}()
