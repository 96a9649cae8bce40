package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/corpus"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/metrics"
	"github.com/spigell/job-matcher/internal/recommender"
	"github.com/spigell/job-matcher/internal/secrets"
)

const (
	corpusTokenEnv = envPrefix + "_CORPUS_TOKEN"
	apiTokenEnv    = envPrefix + "_API_TOKEN"
)

// setup builds the logger and the configuration shared by every command.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if err := config.Engine.Validate(); err != nil {
		logger.Fatal("validating engine config", zap.Error(err))
	}

	return logger, config
}

// loadCorpus reads postings from the configured file or remote endpoint.
func loadCorpus(ctx context.Context, config *Config, logger *zap.Logger) (*corpus.Corpus, error) {
	cc := config.Corpus
	file := strings.TrimSpace(cc.File)
	url := strings.TrimSpace(cc.URL)

	switch {
	case file != "":
		return corpus.LoadFile(file)
	case url != "":
		token, err := secrets.Load(secrets.Source{
			Name: "corpus token",
			File: cc.TokenFile,
			Env:  corpusTokenEnv,
		})
		if err != nil && !errors.Is(err, secrets.ErrNotConfigured) {
			return nil, err
		}

		client := corpus.NewClient(token, logger)
		if cc.UserAgent != "" {
			client.UserAgent = cc.UserAgent
		}
		return client.Fetch(ctx, url)
	default:
		return nil, errors.New("no corpus configured: set corpus.file or corpus.url")
	}
}

// fittedEngine creates the engine and fits it on the configured corpus.
func fittedEngine(ctx context.Context, config *Config, logger *zap.Logger, m *metrics.Metrics) (*recommender.Engine, error) {
	engine, err := recommender.New(config.Engine, recommender.WithLogger(logger), recommender.WithMetrics(m))
	if err != nil {
		return nil, err
	}

	postings, err := loadCorpus(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}

	logger.Info("corpus loaded", zap.String("source", postings.Source), zap.Int("postings", postings.Len()))

	if _, err := engine.Fit(postings); err != nil {
		return nil, err
	}
	return engine, nil
}

func outcomeMessage(outcome recommender.Outcome) string {
	switch outcome {
	case recommender.OutcomeEmptyProfile:
		return "the resume has neither skills nor text"
	case recommender.OutcomeNoMatch:
		return "no resume term appears in the job postings"
	default:
		return ""
	}
}
