// Package corpus holds the job postings a model is fitted on and the adapters
// that turn arbitrary records into them.
package corpus

import (
	"encoding/json"
	"os"
)

// Posting is a single job posting. ID is the position in the corpus.
type Posting struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
	Normalized  string `json:"-"`
}

// Corpus is an ordered, fixed sequence of postings.
type Corpus struct {
	Source string
	Items  []*Posting
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// Documents returns the normalized descriptions in corpus order.
func (c *Corpus) Documents() []string {
	docs := make([]string, 0, c.Len())
	for _, p := range c.Items {
		docs = append(docs, p.Normalized)
	}
	return docs
}

// Titles returns the posting titles in corpus order.
func (c *Corpus) Titles() []string {
	titles := make([]string, 0, c.Len())
	for _, p := range c.Items {
		titles = append(titles, p.Title)
	}
	return titles
}

func (c *Corpus) FindByID(id int) *Posting {
	if id < 0 || id >= c.Len() {
		return nil
	}
	return c.Items[id]
}

// DumpToTmpFile writes the postings as indented JSON into a temporary file.
func (c *Corpus) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}
