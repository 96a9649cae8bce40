package vectorspace

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-12

func fit(t *testing.T, docs ...string) *Model {
	t.Helper()
	m, err := Fit(docs, Options{MaxFeatures: DefaultMaxFeatures})
	require.NoError(t, err)
	return m
}

func TestFit_RejectsNonPositiveMaxFeatures(t *testing.T) {
	_, err := Fit([]string{"python"}, Options{MaxFeatures: 0})
	require.ErrorIs(t, err, ErrInvalidMaxFeatures)

	_, err = Fit([]string{"python"}, Options{MaxFeatures: -3})
	require.ErrorIs(t, err, ErrInvalidMaxFeatures)
}

func TestFit_StopWordOnlyDocument(t *testing.T) {
	m := fit(t, "the and of with system")

	assert.Equal(t, 0, m.VocabularySize())
	assert.Equal(t, 1, m.Documents())
	assert.True(t, m.Row(0).IsZero())
	assert.Equal(t, 0.0, m.Row(0).Norm())
}

func TestFit_EmptyCorpus(t *testing.T) {
	m := fit(t)

	assert.Equal(t, 0, m.VocabularySize())
	assert.Equal(t, 0, m.Documents())
	assert.Empty(t, m.Similarities(m.Transform("python sql")))
}

func TestFit_RowNorms(t *testing.T) {
	m := fit(t,
		"python sql aws python",
		"",
		"cooking baking",
		"the of and",
		"python developer kubernetes docker docker docker",
	)

	for i := 0; i < m.Documents(); i++ {
		norm := m.Row(i).Norm()
		switch i {
		case 1, 3:
			assert.InDelta(t, 0.0, norm, tolerance, "row %d", i)
		default:
			assert.InDelta(t, 1.0, norm, 1e-9, "row %d", i)
		}
	}
}

func TestFit_WeightFormula(t *testing.T) {
	// python appears twice in doc 0 and once in doc 1; sql only in doc 0.
	m := fit(t, "python python sql", "python chef")

	idfPython := math.Log(3.0/3.0) + 1
	idfSQL := math.Log(3.0/2.0) + 1

	gotIDF, ok := m.IDF("python")
	require.True(t, ok)
	assert.InDelta(t, idfPython, gotIDF, tolerance)

	gotIDF, ok = m.IDF("sql")
	require.True(t, ok)
	assert.InDelta(t, idfSQL, gotIDF, tolerance)

	wPython := (1 + math.Log(2)) * idfPython
	wSQL := 1 * idfSQL
	norm := math.Sqrt(wPython*wPython + wSQL*wSQL)

	row := m.Row(0).Dense(m.VocabularySize())
	colPython, _ := m.Column("python")
	colSQL, _ := m.Column("sql")
	assert.InDelta(t, wPython/norm, row[colPython], tolerance)
	assert.InDelta(t, wSQL/norm, row[colSQL], tolerance)
}

func TestFit_VocabularyAlphabeticalColumns(t *testing.T) {
	m := fit(t, "zeta alpha mike", "alpha")
	assert.Equal(t, []string{"alpha", "mike", "zeta"}, m.Vocabulary())
}

func TestFit_MaxFeaturesKeepsMostFrequent(t *testing.T) {
	docs := []string{
		"python python python sql sql aws",
		"python sql docker",
		"kafka",
	}
	m, err := Fit(docs, Options{MaxFeatures: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "sql"}, m.Vocabulary())

	// aws, docker and kafka all occur once; ties go alphabetically.
	m, err = Fit(docs, Options{MaxFeatures: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"aws", "python", "sql"}, m.Vocabulary())

	// kafka is out of vocabulary, so its document is all-zero.
	assert.True(t, m.Row(2).IsZero())
}

func TestTransform_IgnoresOutOfVocabulary(t *testing.T) {
	m := fit(t, "python sql", "cooking baking")

	q := m.Transform("haskell erlang")
	assert.True(t, q.IsZero())

	scores := m.Similarities(q)
	assert.Equal(t, []float64{0, 0}, scores)
}

func TestTransform_MatchesCorpusRow(t *testing.T) {
	docs := []string{"python sql aws", "cooking baking bread", "sql reporting analyst"}
	m := fit(t, docs...)

	for i, doc := range docs {
		q := m.Transform(doc)
		assert.Equal(t, m.Row(i), q, "doc %d", i)

		self := q.Dot(m.Row(i))
		assert.LessOrEqual(t, self, 1.0+1e-9)
		assert.GreaterOrEqual(t, self, 0.0)
		assert.InDelta(t, 1.0, self, 1e-9)
	}
}

func TestSimilarities_Bounds(t *testing.T) {
	m := fit(t, "python sql aws", "cooking baking", "python developer", "")
	scores := m.Similarities(m.Transform("python sql python experience"))

	require.Len(t, scores, 4)
	for i, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0, "score %d", i)
		assert.LessOrEqual(t, s, 1.0, "score %d", i)
	}
	assert.Greater(t, scores[0], scores[2])
	assert.Equal(t, 0.0, scores[1])
	assert.Equal(t, 0.0, scores[3])
}

func TestSimilarities_Deterministic(t *testing.T) {
	docs := []string{"python sql aws", "sql analyst tableau", "python machine learning"}
	a := fit(t, docs...)
	b := fit(t, docs...)

	query := "python sql python sql python sql tableau"
	assert.Equal(t, a.Similarities(a.Transform(query)), b.Similarities(b.Transform(query)))
	assert.Greater(t, b.Version(), a.Version())
}

func TestModel_ConcurrentReads(t *testing.T) {
	m := fit(t, "python sql aws", "cooking baking", "python developer")
	want := m.Similarities(m.Transform("python sql"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, m.Similarities(m.Transform("python sql")))
		}()
	}
	wg.Wait()
}

func TestVector_Dot(t *testing.T) {
	a := Vector{Indices: []int{0, 2, 5}, Values: []float64{1, 2, 3}}
	b := Vector{Indices: []int{2, 3, 5}, Values: []float64{4, 7, 1}}
	assert.Equal(t, 11.0, a.Dot(b))
	assert.Equal(t, 0.0, a.Dot(Vector{}))
}
