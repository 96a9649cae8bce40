package recommender

import (
	"encoding/json"
	"os"

	"github.com/spigell/job-matcher/internal/corpus"
)

// Outcome tells a caller how to render a result set.
type Outcome string

const (
	// OutcomeMatched means the profile was scored against the corpus.
	OutcomeMatched Outcome = "matched"
	// OutcomeEmptyProfile means the resume had neither skills nor text.
	OutcomeEmptyProfile Outcome = "empty_profile"
	// OutcomeNoMatch means no resume term is in the corpus vocabulary.
	OutcomeNoMatch Outcome = "no_match"
)

// Recommendation is one shortlisted posting.
type Recommendation struct {
	Rank     int             `json:"rank"`
	Posting  *corpus.Posting `json:"posting"`
	Link     string          `json:"link"`
	Score    float64         `json:"similarity_score"`
	RawScore float64         `json:"raw_score"`
	Boosted  bool            `json:"boosted"`
}

// Recommendations is the ranked result for one profile. Items is empty
// unless Outcome is OutcomeMatched.
type Recommendations struct {
	Outcome      Outcome          `json:"outcome"`
	ModelVersion uint64           `json:"model_version"`
	TopN         int              `json:"top_n"`
	Items        []Recommendation `json:"items"`
}

func (r *Recommendations) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

// DumpToTmpFile writes the result as indented JSON into a temporary file.
func (r *Recommendations) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "recommendations_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}
