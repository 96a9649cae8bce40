package ranking

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultBoostFactor is added once to postings with a priority-role title.
	DefaultBoostFactor = 0.2
	// MaxScore is the upper bound of an adjusted score.
	MaxScore = 1.0

	// PriorityBoostStep and ClampStep are the names reported by the default steps.
	PriorityBoostStep = "priority_boost"
	ClampStep         = "clamp"
)

// DefaultPriorityRoles are the title substrings that earn the boost.
var DefaultPriorityRoles = []string{
	"data scientist", "data analyst", "machine learning engineer", "ml engineer",
	"data engineer", "ai engineer", "developer", "engineer", "analyst",
	"manager", "consultant", "business analyst", "technician", "installer",
	"project manager",
}

type priorityBoost struct {
	disabled bool
	reason   string
	factor   float64
	roles    []string
}

// NewPriorityBoost creates the step adding a flat boost to postings whose title
// contains any priority role.
func NewPriorityBoost() Adjuster {
	return &priorityBoost{}
}

func (a *priorityBoost) Name() string { return PriorityBoostStep }

func (a *priorityBoost) Disable(reason string) {
	a.disabled = true
	a.reason = reason
}

func (a *priorityBoost) IsEnabled() bool { return !a.disabled }

func (a *priorityBoost) Validate(cfg *Config) error {
	a.factor = DefaultBoostFactor
	a.roles = nil
	if cfg == nil {
		a.roles = NormalizeRoles(DefaultPriorityRoles)
		return nil
	}
	if cfg.BoostFactor < 0 || math.IsNaN(cfg.BoostFactor) || math.IsInf(cfg.BoostFactor, 0) {
		return fmt.Errorf("boost factor must be a non-negative number, got %v", cfg.BoostFactor)
	}
	a.factor = cfg.BoostFactor
	a.roles = NormalizeRoles(cfg.PriorityRoles)
	return nil
}

func (a *priorityBoost) Apply(_ Deps, scores []float64, titles []string) Step {
	boosted := 0
	if len(a.roles) == 0 || a.factor == 0 {
		return Step{Total: len(scores)}
	}

	for i := range scores {
		if i < len(titles) && HasPriorityRole(titles[i], a.roles) {
			scores[i] += a.factor
			boosted++
		}
	}
	return Step{Total: len(scores), Adjusted: boosted}
}

func (a *priorityBoost) Status() Status {
	details := map[string]string{
		"boost_factor": strconv.FormatFloat(a.factor, 'f', -1, 64),
		"roles":        strings.Join(a.roles, ","),
	}
	return Status{Name: a.Name(), Enabled: a.IsEnabled(), Reason: a.reason, Details: details}
}

// HasPriorityRole reports whether the lowercased title contains any of the
// already lowercased roles.
func HasPriorityRole(title string, roles []string) bool {
	lower := strings.ToLower(title)
	for _, role := range roles {
		if strings.Contains(lower, role) {
			return true
		}
	}
	return false
}

// NormalizeRoles lowercases and trims roles, dropping empty entries.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

type clamp struct{}

// NewClamp creates the step bounding every score to [0, MaxScore].
func NewClamp() Adjuster {
	return &clamp{}
}

func (c *clamp) Name() string { return ClampStep }

// Disable is a no-op: scores always leave the pipeline within [0, MaxScore].
func (c *clamp) Disable(string) {}

func (c *clamp) IsEnabled() bool { return true }

func (c *clamp) Validate(*Config) error { return nil }

func (c *clamp) Apply(_ Deps, scores []float64, _ []string) Step {
	clamped := 0
	for i, s := range scores {
		switch {
		case math.IsNaN(s) || s < 0:
			scores[i] = 0
			clamped++
		case s > MaxScore:
			scores[i] = MaxScore
			clamped++
		}
	}
	return Step{Total: len(scores), Adjusted: clamped}
}
