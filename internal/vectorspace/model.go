// Package vectorspace fits a sub-linear TF, smoothed IDF, L2-normalized term
// weighting over a job corpus and scores queries against it by cosine similarity.
package vectorspace

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/spigell/job-matcher/internal/textnorm"
)

// DefaultMaxFeatures caps the vocabulary when no other limit is configured.
const DefaultMaxFeatures = 5000

// ErrInvalidMaxFeatures is returned by Fit for a non-positive vocabulary cap.
var ErrInvalidMaxFeatures = errors.New("max features must be positive")

var versions atomic.Uint64

// Options controls fitting.
type Options struct {
	MaxFeatures int
}

// Model is the immutable result of fitting a corpus: vocabulary, IDF weights
// and one L2-normalized row per document. It is safe for concurrent use.
type Model struct {
	version uint64
	docs    int
	terms   []string
	index   map[string]int
	idf     []float64
	rows    []Vector
}

// Fit builds a Model from the documents, in corpus order. An empty corpus, or
// one where every document is empty, yields an empty vocabulary and zero rows
// for each document.
func Fit(docs []string, opts Options) (*Model, error) {
	if opts.MaxFeatures <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxFeatures, opts.MaxFeatures)
	}

	counts := make([]map[string]int, len(docs))
	totals := make(map[string]int)
	docFreq := make(map[string]int)

	for i, doc := range docs {
		c := make(map[string]int)
		for _, term := range textnorm.Terms(doc) {
			c[term]++
		}
		for term, n := range c {
			totals[term] += n
			docFreq[term]++
		}
		counts[i] = c
	}

	terms := selectTerms(totals, opts.MaxFeatures)

	m := &Model{
		version: versions.Add(1),
		docs:    len(docs),
		terms:   terms,
		index:   make(map[string]int, len(terms)),
		idf:     make([]float64, len(terms)),
		rows:    make([]Vector, len(docs)),
	}

	n := float64(len(docs))
	for col, term := range terms {
		m.index[term] = col
		m.idf[col] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	for i, c := range counts {
		m.rows[i] = m.weigh(c)
	}

	return m, nil
}

// selectTerms keeps the limit terms with the highest corpus-wide count, ties
// broken alphabetically, and returns them in alphabetical order.
func selectTerms(totals map[string]int, limit int) []string {
	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	if len(terms) > limit {
		sort.SliceStable(terms, func(i, j int) bool {
			return totals[terms[i]] > totals[terms[j]]
		})
		terms = terms[:limit]
		sort.Strings(terms)
	}

	return terms
}

// weigh turns raw term counts into a unit-length row restricted to the vocabulary.
func (m *Model) weigh(counts map[string]int) Vector {
	v := Vector{}
	for term, n := range counts {
		col, ok := m.index[term]
		if !ok || n <= 0 {
			continue
		}
		v.Indices = append(v.Indices, col)
	}
	sort.Ints(v.Indices)

	v.Values = make([]float64, len(v.Indices))
	for k, col := range v.Indices {
		tf := 1 + math.Log(float64(counts[m.terms[col]]))
		v.Values[k] = tf * m.idf[col]
	}

	return v.normalized()
}

// Transform projects text into the fitted space. Out-of-vocabulary terms are
// ignored; text without known terms yields a zero vector.
func (m *Model) Transform(text string) Vector {
	counts := make(map[string]int)
	for _, term := range textnorm.Tokens(text) {
		if _, ok := m.index[term]; ok {
			counts[term]++
		}
	}
	return m.weigh(counts)
}

// Similarities returns the cosine similarity of q against every corpus row,
// clamped to [0, 1]. A zero query scores 0 everywhere.
func (m *Model) Similarities(q Vector) []float64 {
	scores := make([]float64, len(m.rows))
	if q.IsZero() {
		return scores
	}
	for i, row := range m.rows {
		scores[i] = clamp01(q.Dot(row))
	}
	return scores
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x) || x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// Version identifies this fit. Every call to Fit produces a larger version.
func (m *Model) Version() uint64 { return m.version }

// Documents returns the number of fitted corpus documents.
func (m *Model) Documents() int { return m.docs }

// VocabularySize returns the number of retained terms.
func (m *Model) VocabularySize() int { return len(m.terms) }

// Term returns the term at column col.
func (m *Model) Term(col int) string { return m.terms[col] }

// Column returns the column index of term.
func (m *Model) Column(term string) (int, bool) {
	col, ok := m.index[term]
	return col, ok
}

// IDF returns the inverse document frequency weight of term.
func (m *Model) IDF(term string) (float64, bool) {
	col, ok := m.index[term]
	if !ok {
		return 0, false
	}
	return m.idf[col], true
}

// Vocabulary returns a copy of the retained terms in column order.
func (m *Model) Vocabulary() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// Row returns a copy of the weight row of document i.
func (m *Model) Row(i int) Vector {
	r := m.rows[i]
	return Vector{
		Indices: append([]int(nil), r.Indices...),
		Values:  append([]float64(nil), r.Values...),
	}
}
