package recommender

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5000, cfg.MaxFeatures)
	assert.Equal(t, 0.2, cfg.BoostFactor)
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, 3, cfg.BatchTopN)
	assert.Contains(t, cfg.PriorityRoles, "project manager")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero max features", mutate: func(c *Config) { c.MaxFeatures = 0 }},
		{name: "negative max features", mutate: func(c *Config) { c.MaxFeatures = -5 }},
		{name: "zero top n", mutate: func(c *Config) { c.TopN = 0 }},
		{name: "negative top n", mutate: func(c *Config) { c.TopN = -1 }},
		{name: "zero batch top n", mutate: func(c *Config) { c.BatchTopN = 0 }},
		{name: "negative batch top n", mutate: func(c *Config) { c.BatchTopN = -1 }},
		{name: "negative boost", mutate: func(c *Config) { c.BoostFactor = -0.2 }},
		{name: "nan boost", mutate: func(c *Config) { c.BoostFactor = math.NaN() }},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

			_, err := New(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfigWithoutBoostIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopN = 1
	cfg.BatchTopN = 1
	cfg.BoostFactor = 0
	cfg.PriorityRoles = nil

	assert.NoError(t, cfg.Validate())
}
