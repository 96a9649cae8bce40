package profile

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// DefaultSkills is the built-in list matched against text resumes.
var DefaultSkills = []string{
	"python", "java", "sql", "machine learning", "nlp", "data analysis", "deep learning",
	"tableau", "power bi", "aws", "azure", "gcp", "docker", "kubernetes", "react",
	"javascript", "html", "css", "selenium", "beautifulsoup", "scikit-learn", "tensorflow",
	"pytorch", "pandas", "numpy", "r programming",
}

// ParseText extracts a Profile from plain resume text. Skills from the list
// are matched as whole words, case-insensitively, and reported capitalized.
func ParseText(text string, skills []string) *Profile {
	collapsed := strings.TrimSpace(whitespace.ReplaceAllString(text, " "))

	return &Profile{
		Name:     guessName(text),
		Email:    emailPattern.FindString(collapsed),
		Phone:    phonePattern.FindString(collapsed),
		Skills:   matchSkills(collapsed, skills),
		FullText: collapsed,
	}
}

// guessName takes the first short line without an @ among the first three non-empty lines.
func guessName(text string) string {
	checked := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if checked++; checked > 3 {
			break
		}
		if len(strings.Fields(line)) < 4 && !strings.Contains(line, "@") {
			return line
		}
	}
	return ""
}

func matchSkills(text string, skills []string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0)
	seen := make(map[string]bool)

	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" || seen[skill] {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(skill) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(lower) {
			seen[skill] = true
			found = append(found, capitalize(skill))
		}
	}
	return found
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
