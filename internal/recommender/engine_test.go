package recommender

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-matcher/internal/corpus"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/metrics"
	"github.com/spigell/job-matcher/internal/profile"
	"github.com/spigell/job-matcher/internal/ranking"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(DefaultConfig(), opts...)
	require.NoError(t, err)
	return e
}

func fitted(t *testing.T, records []corpus.Record, opts ...Option) *Engine {
	t.Helper()
	e := newEngine(t, opts...)
	_, err := e.Fit(corpus.FromRecords("test", records))
	require.NoError(t, err)
	return e
}

func TestRecommend_SoftwareEngineerBoosted(t *testing.T) {
	e := fitted(t, []corpus.Record{
		{"title": "Software Engineer", "skills_desc": "python sql aws"},
		{"title": "Chef", "skills_desc": "cooking baking"},
	})

	res, err := e.Recommend(&profile.Profile{
		Skills:   []string{"python", "sql"},
		FullText: "python sql experience",
	}, 1)
	require.NoError(t, err)

	require.Equal(t, OutcomeMatched, res.Outcome)
	require.Len(t, res.Items, 1)

	top := res.Items[0]
	assert.Equal(t, "Software Engineer", top.Posting.Title)
	assert.Equal(t, 1, top.Rank)
	assert.True(t, top.Boosted)
	assert.InDelta(t, 2/math.Sqrt(6), top.RawScore, 1e-9)
	assert.InDelta(t, math.Min(1, top.RawScore+0.2), top.Score, 1e-9)
	assert.LessOrEqual(t, top.Score, 1.0)
}

func TestNew_DisablesIdleBoost(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		reason string
	}{
		{"zero boost factor", func(c *Config) { c.BoostFactor = 0 }, "boost factor is zero"},
		{"no roles", func(c *Config) { c.PriorityRoles = []string{" ", ""} }, "no priority roles configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			e, err := New(cfg)
			require.NoError(t, err)

			steps := e.Steps()
			require.Len(t, steps, 2)
			assert.Equal(t, ranking.PriorityBoostStep, steps[0].Name)
			assert.False(t, steps[0].Enabled)
			assert.Equal(t, tt.reason, steps[0].Reason)
			assert.True(t, steps[1].Enabled)

			_, err = e.Fit(corpus.FromRecords("test", []corpus.Record{
				{"title": "Data Engineer", "description": "python sql"},
			}))
			require.NoError(t, err)
			recs, err := e.Recommend(&profile.Profile{Skills: []string{"python"}}, 1)
			require.NoError(t, err)
			require.Len(t, recs.Items, 1)
			assert.False(t, recs.Items[0].Boosted)
			assert.Equal(t, recs.Items[0].RawScore, recs.Items[0].Score)
		})
	}

	e := newEngine(t)
	assert.True(t, e.Steps()[0].Enabled)
	assert.Empty(t, e.Steps()[0].Reason)
}

func TestRecommend_EmptyProfile(t *testing.T) {
	e := fitted(t, []corpus.Record{
		{"title": "Software Engineer", "skills_desc": "python sql aws"},
	})

	res, err := e.Recommend(&profile.Profile{Skills: []string{" "}, FullText: "  "}, 5)
	require.NoError(t, err)

	assert.Equal(t, OutcomeEmptyProfile, res.Outcome)
	assert.Empty(t, res.Items)
}

func TestRecommend_SinglePostingCorpus(t *testing.T) {
	e := fitted(t, []corpus.Record{
		{"title": "Chef", "description": "python"},
	})

	res, err := e.Recommend(&profile.Profile{Skills: []string{"Python"}}, 5)
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assert.Equal(t, "Chef", res.Items[0].Posting.Title)
	assert.False(t, res.Items[0].Boosted)
	assert.InDelta(t, 1.0, res.Items[0].Score, 1e-9)
}

func TestRecommend_BoostBreaksIdenticalDescriptions(t *testing.T) {
	e := fitted(t, []corpus.Record{
		{"title": "Baker", "skills_desc": "python sql"},
		{"title": "Engineer", "skills_desc": "python sql"},
	})

	res, err := e.Recommend(&profile.Profile{FullText: "python"}, 2)
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.Equal(t, "Engineer", res.Items[0].Posting.Title)
	assert.Equal(t, "Baker", res.Items[1].Posting.Title)
	assert.Equal(t, res.Items[0].RawScore, res.Items[1].RawScore)
	assert.Greater(t, res.Items[0].Score, res.Items[1].Score)
}

func TestRecommend_TiesKeepCorpusOrder(t *testing.T) {
	e := fitted(t, []corpus.Record{
		{"title": "Baker", "skills_desc": "python sql"},
		{"title": "Florist", "skills_desc": "python sql"},
		{"title": "Chef", "skills_desc": "cooking"},
	})

	res, err := e.Recommend(&profile.Profile{FullText: "sql"}, 0)
	require.NoError(t, err)

	require.Len(t, res.Items, 3)
	assert.Equal(t, DefaultTopN, res.TopN)
	assert.Equal(t, []string{"Baker", "Florist", "Chef"}, []string{
		res.Items[0].Posting.Title, res.Items[1].Posting.Title, res.Items[2].Posting.Title,
	})
	for i := 1; i < len(res.Items); i++ {
		assert.GreaterOrEqual(t, res.Items[i-1].Score, res.Items[i].Score)
	}
}

func TestRecommend_NoVocabularyOverlap(t *testing.T) {
	e := fitted(t, []corpus.Record{
		{"title": "Software Engineer", "skills_desc": "python sql aws"},
	})

	res, err := e.Recommend(&profile.Profile{FullText: "gardening"}, 5)
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoMatch, res.Outcome)
	assert.Empty(t, res.Items)
}

func TestRecommend_EmptyCorpus(t *testing.T) {
	e := newEngine(t)
	snap, err := e.Fit(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Model.VocabularySize())

	res, err := e.Recommend(&profile.Profile{FullText: "python"}, 5)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)
	assert.Empty(t, res.Items)
}

func TestRecommend_Unfitted(t *testing.T) {
	e := newEngine(t)
	assert.Nil(t, e.Snapshot())

	_, err := e.Recommend(&profile.Profile{FullText: "python"}, 5)
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = e.Batch(context.Background(), []*profile.Profile{{FullText: "python"}}, 0)
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = e.RecommendWith(nil, &profile.Profile{FullText: "python"}, 5)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestRecommend_NegativeTopN(t *testing.T) {
	e := fitted(t, []corpus.Record{{"title": "Chef", "description": "python"}})

	_, err := e.Recommend(&profile.Profile{FullText: "python"}, -1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFit_PublishesNewVersion(t *testing.T) {
	e := newEngine(t)

	first, err := e.Fit(corpus.FromRecords("a", []corpus.Record{{"title": "Chef", "description": "cooking"}}))
	require.NoError(t, err)

	second, err := e.Fit(corpus.FromRecords("b", []corpus.Record{{"title": "Engineer", "description": "python"}}))
	require.NoError(t, err)

	assert.Greater(t, second.Version(), first.Version())
	assert.Same(t, second, e.Snapshot())

	// A caller holding the old snapshot keeps scoring against it.
	res, err := e.RecommendWith(first, &profile.Profile{FullText: "cooking"}, 1)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Chef", res.Items[0].Posting.Title)
	assert.Equal(t, first.Version(), res.ModelVersion)
}

func TestFit_ConcurrentWithRecommend(t *testing.T) {
	e := fitted(t, []corpus.Record{{"title": "Engineer", "description": "python sql"}})

	corpora := []*corpus.Corpus{
		corpus.FromRecords("a", []corpus.Record{{"title": "Engineer", "description": "python sql"}}),
		corpus.FromRecords("b", []corpus.Record{
			{"title": "Analyst", "description": "python excel"},
			{"title": "Chef", "description": "python cooking"},
		}),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, err := e.Fit(corpora[i%2])
			assert.NoError(t, err)
		}
	}()

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				res, err := e.Recommend(&profile.Profile{FullText: "python"}, 5)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, OutcomeMatched, res.Outcome)
				// Every result comes from exactly one corpus.
				assert.Contains(t, []int{1, 2}, len(res.Items))
				for _, item := range res.Items {
					assert.LessOrEqual(t, item.Score, 1.0)
					assert.GreaterOrEqual(t, item.Score, 0.0)
				}
			}
		}()
	}

	wg.Wait()
}

func TestBatch(t *testing.T) {
	e := fitted(t, []corpus.Record{
		{"title": "Data Scientist", "description": "python machine learning statistics"},
		{"title": "Chef", "description": "cooking baking kitchen"},
		{"title": "Pastry Cook", "description": "baking desserts"},
		{"title": "Backend Developer", "description": "golang python services"},
	})

	profiles := []*profile.Profile{
		{Skills: []string{"Python"}, FullText: "machine learning"},
		{},
		{FullText: "baking"},
	}

	results, err := e.Batch(context.Background(), profiles, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, OutcomeMatched, results[0].Outcome)
	assert.Equal(t, DefaultBatchTopN, results[0].TopN)
	assert.LessOrEqual(t, results[0].Len(), DefaultBatchTopN)
	assert.Equal(t, "Data Scientist", results[0].Items[0].Posting.Title)

	assert.Equal(t, OutcomeEmptyProfile, results[1].Outcome)
	assert.Equal(t, 0, results[1].Len())

	assert.Equal(t, OutcomeMatched, results[2].Outcome)
	assert.Contains(t, []string{"Chef", "Pastry Cook"}, results[2].Items[0].Posting.Title)

	for _, r := range results {
		assert.Equal(t, e.Snapshot().Version(), r.ModelVersion)
	}
}

func TestBatch_Cancelled(t *testing.T) {
	e := fitted(t, []corpus.Record{{"title": "Chef", "description": "python"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Batch(ctx, []*profile.Profile{{FullText: "python"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_LogsAndMetrics(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	reg := prometheus.NewRegistry()

	e := fitted(t, []corpus.Record{{"title": "Chef", "description": "python"}},
		WithLogger(zap.New(core)), WithMetrics(metrics.New(reg)))

	_, err := e.Recommend(&profile.Profile{FullText: "python"}, 1)
	require.NoError(t, err)
	_, err = e.Recommend(&profile.Profile{}, 1)
	require.NoError(t, err)

	entries := observed.FilterMessage("corpus fitted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "test", entries[0].ContextMap()[logger.FieldCorpusSource])

	families, err := reg.Gather()
	require.NoError(t, err)

	outcomes := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "job_matcher_recommendations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			outcomes[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"matched": 1, "empty_profile": 1}, outcomes)
}

func TestRecommendations_DumpToTmpFile(t *testing.T) {
	e := fitted(t, []corpus.Record{{"title": "Chef", "description": "python", "link": "https://jobs/1"}})

	res, err := e.Recommend(&profile.Profile{FullText: "python"}, 1)
	require.NoError(t, err)

	path, err := res.DumpToTmpFile()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded struct {
		Outcome string `json:"outcome"`
		Items   []struct {
			Link  string  `json:"link"`
			Score float64 `json:"similarity_score"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "matched", decoded.Outcome)
	require.Len(t, decoded.Items, 1)
	assert.Equal(t, "https://jobs/1", decoded.Items[0].Link)
}
