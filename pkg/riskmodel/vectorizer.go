package riskmodel

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mindfuljournal/analyzer/pkg/textclean"
)

var ErrEmptyVocabulary = errors.New(
	"empty vocabulary; the documents only contain stop words or no words at all",
)

// SparseVector is a row of the document-term matrix. Indices are ascending.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// TfidfVectorizer turns cleaned documents into L2-normalized TF-IDF rows over a vocabulary
// of word n-grams. English stop words are dropped before n-grams are built.
type TfidfVectorizer struct {
	MaxFeatures int
	NgramRange  [2]int

	Vocabulary map[string]int
	IDF        []float64
}

func NewTfidfVectorizer(maxFeatures int, ngramRange [2]int) *TfidfVectorizer {
	return &TfidfVectorizer{
		MaxFeatures: maxFeatures,
		NgramRange:  ngramRange,
	}
}

// NumFeatures is the vocabulary size after fitting.
func (v *TfidfVectorizer) NumFeatures() int {
	return len(v.IDF)
}

// analyze returns the n-gram terms of one cleaned document.
func (v *TfidfVectorizer) analyze(doc string) []string {
	tokens := textclean.RemoveStopWords(textclean.Tokens(doc))

	minN, maxN := v.NgramRange[0], v.NgramRange[1]
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}

	terms := make([]string, 0, len(tokens)*(maxN-minN+1))
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				terms = append(terms, tokens[i])
				continue
			}
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// Fit learns the vocabulary and the smoothed inverse document frequencies.
func (v *TfidfVectorizer) Fit(docs []string) error {
	termFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range v.analyze(doc) {
			termFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	if len(termFreq) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(termFreq))
	for term := range termFreq {
		terms = append(terms, term)
	}

	// keep the most frequent terms; equal counts fall back to term order
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if termFreq[terms[i]] != termFreq[terms[j]] {
				return termFreq[terms[i]] > termFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return nil
}

// Transform maps cleaned documents onto the fitted vocabulary.
func (v *TfidfVectorizer) Transform(docs []string) ([]SparseVector, error) {
	if len(v.Vocabulary) == 0 {
		return nil, errors.New("vectorizer is not fitted")
	}
	if len(v.Vocabulary) != len(v.IDF) {
		return nil, fmt.Errorf(
			"vocabulary has %d terms but idf has %d weights",
			len(v.Vocabulary),
			len(v.IDF),
		)
	}

	rows := make([]SparseVector, len(docs))
	for i, doc := range docs {
		rows[i] = v.transformOne(doc)
	}
	return rows, nil
}

func (v *TfidfVectorizer) transformOne(doc string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range v.analyze(doc) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}

	row := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		row.Indices = append(row.Indices, idx)
	}
	sort.Ints(row.Indices)

	var norm float64
	for _, idx := range row.Indices {
		w := counts[idx] * v.IDF[idx]
		row.Values = append(row.Values, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range row.Values {
			row.Values[i] /= norm
		}
	}

	return row
}

// FitTransform fits on docs and returns their rows.
func (v *TfidfVectorizer) FitTransform(docs []string) ([]SparseVector, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}
