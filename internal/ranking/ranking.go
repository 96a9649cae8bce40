// Package ranking re-ranks similarity scores with deterministic adjustment
// steps and selects the top results.
package ranking

import (
	"fmt"

	"go.uber.org/zap"
)

// Adjuster represents a single re-ranking step applied to raw scores.
type Adjuster interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(deps Deps, scores []float64, titles []string) Step
}

// Deps aggregates dependencies shared across all adjustment steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing an adjustment step.
type Step struct {
	Total    int
	Adjusted int
}

// Config contains settings consumed by the adjusters.
type Config struct {
	BoostFactor   float64
	PriorityRoles []string
}

// Status represents runtime information about an adjuster.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// DefaultSteps returns the standard pipeline: priority-role boost, then clamp.
func DefaultSteps() []Adjuster {
	return []Adjuster{NewPriorityBoost(), NewClamp()}
}

// DisableByName marks an adjuster with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Adjuster, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Validate checks every enabled step against cfg.
func Validate(cfg *Config, steps []Adjuster) error {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return nil
}

// Run applies the enabled steps in order to a copy of raw. titles[i] belongs
// to raw[i]. Steps must already be validated.
func Run(deps Deps, steps []Adjuster, raw []float64, titles []string) []float64 {
	scores := make([]float64, len(raw))
	copy(scores, raw)

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}

		info := step.Apply(deps, scores, titles)
		if deps.Logger != nil {
			deps.Logger.Debug("rank step",
				zap.String("name", step.Name()),
				zap.Int("total", info.Total),
				zap.Int("adjusted", info.Adjusted),
			)
		}
	}

	return scores
}

// Describe returns status entries for the provided adjusters.
func Describe(steps []Adjuster) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
