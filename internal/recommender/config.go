package recommender

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/job-matcher/internal/ranking"
	"github.com/spigell/job-matcher/internal/vectorspace"
)

const (
	// DefaultTopN is the shortlist length for a single resume.
	DefaultTopN = 5
	// DefaultBatchTopN is the shortlist length per resume in batch mode.
	DefaultBatchTopN = 3
)

// ErrInvalidConfig is returned for configuration values the engine cannot run with.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// Config holds the engine settings.
type Config struct {
	MaxFeatures   int      `mapstructure:"max-features" json:"max_features" validate:"gt=0"`
	BoostFactor   float64  `mapstructure:"boost-factor" json:"boost_factor" validate:"gte=0"`
	PriorityRoles []string `mapstructure:"priority-roles" json:"priority_roles"`
	TopN          int      `mapstructure:"top-n" json:"top_n" validate:"gt=0"`
	BatchTopN     int      `mapstructure:"batch-top-n" json:"batch_top_n" validate:"gt=0"`
	// Workers bounds concurrent scoring in batch mode; 0 means one per CPU.
	Workers int `mapstructure:"workers" json:"workers" validate:"gte=0"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	roles := make([]string, len(ranking.DefaultPriorityRoles))
	copy(roles, ranking.DefaultPriorityRoles)

	return Config{
		MaxFeatures:   vectorspace.DefaultMaxFeatures,
		BoostFactor:   ranking.DefaultBoostFactor,
		PriorityRoles: roles,
		TopN:          DefaultTopN,
		BatchTopN:     DefaultBatchTopN,
	}
}

var validate = validator.New()

// Validate rejects configurations the engine cannot run with. The returned
// error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			ve := verrs[0]
			return fmt.Errorf("%w: %s must satisfy %s=%s, got %v", ErrInvalidConfig, ve.Field(), ve.Tag(), ve.Param(), ve.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if math.IsNaN(c.BoostFactor) || math.IsInf(c.BoostFactor, 0) {
		return fmt.Errorf("%w: BoostFactor must be finite, got %v", ErrInvalidConfig, c.BoostFactor)
	}
	return nil
}

func (c Config) rankingConfig() *ranking.Config {
	return &ranking.Config{
		BoostFactor:   c.BoostFactor,
		PriorityRoles: c.PriorityRoles,
	}
}
