// Package profile describes a parsed resume and turns it into the query
// document scored against the corpus.
package profile

import (
	"errors"
	"strings"
)

// skillsWeight is how many times the skills line is repeated in the query.
const skillsWeight = 3

// ErrEmptyProfile is returned by Synthesize when the resume has neither skills nor text.
var ErrEmptyProfile = errors.New("empty profile")

// Profile is a parsed resume. It is created per resume and consumed once.
type Profile struct {
	Name     string   `mapstructure:"name" json:"name,omitempty"`
	Email    string   `mapstructure:"email" json:"email,omitempty"`
	Phone    string   `mapstructure:"phone" json:"phone,omitempty"`
	Skills   []string `mapstructure:"skills" json:"skills"`
	FullText string   `mapstructure:"full_text" json:"full_text"`
}

// UniqueSkills returns the trimmed, non-empty skills, dropping case-insensitive duplicates.
func (p *Profile) UniqueSkills() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]bool, len(p.Skills))
	out := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// Synthesize builds the query document: the lowercased skills line repeated
// three times followed by the lowercased resume text.
func Synthesize(p *Profile) (string, error) {
	if p == nil {
		return "", ErrEmptyProfile
	}

	skills := strings.ToLower(strings.Join(p.UniqueSkills(), " "))
	text := strings.ToLower(p.FullText)

	if strings.TrimSpace(skills) == "" && strings.TrimSpace(text) == "" {
		return "", ErrEmptyProfile
	}

	return strings.Repeat(skills+" ", skillsWeight) + text, nil
}
