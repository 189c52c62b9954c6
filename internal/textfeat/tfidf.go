// Package textfeat turns free-text transaction descriptions into a small
// numeric signature.
package textfeat

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyVocabulary is returned when no document yields a usable token.
var ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain only stop words or short tokens")

// Signature is a per-document weight matrix over a fixed term list.
// Rows[i][j] is the weight of Terms[j] in document i.
type Signature struct {
	Terms []string
	Rows  [][]float64
}

// TextWeighter fits a term weighting over a batch and returns the weights
// of every document.
type TextWeighter interface {
	FitTransform(docs []string, maxFeatures int) (Signature, error)
}

// TFIDF weights terms by raw term frequency times smoothed inverse document
// frequency, with l2-normalised rows. The vocabulary is restricted to the
// maxFeatures terms with the highest corpus frequency.
type TFIDF struct {
	StopWords map[string]struct{}
}

// NewTFIDF returns a weigher using the built-in English stop words.
func NewTFIDF() *TFIDF {
	return &TFIDF{StopWords: EnglishStopWords}
}

// FitTransform implements TextWeighter.
func (w *TFIDF) FitTransform(docs []string, maxFeatures int) (Signature, error) {
	if maxFeatures <= 0 {
		return Signature{}, errors.New("maxFeatures must be positive")
	}

	tokenized := make([][]string, len(docs))
	corpusFreq := make(map[string]int)
	docFreq := make(map[string]int)
	for i, d := range docs {
		toks := w.Tokenize(d)
		tokenized[i] = toks
		seen := make(map[string]struct{}, len(toks))
		for _, t := range toks {
			corpusFreq[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				docFreq[t]++
			}
		}
	}
	if len(corpusFreq) == 0 {
		return Signature{}, ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(corpusFreq))
	for t := range corpusFreq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if corpusFreq[terms[i]] != corpusFreq[terms[j]] {
			return corpusFreq[terms[i]] > corpusFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	col := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(docs))
	for j, t := range terms {
		col[t] = j
		idf[j] = math.Log((1+n)/(1+float64(docFreq[t]))) + 1
	}

	rows := make([][]float64, len(docs))
	for i, toks := range tokenized {
		row := make([]float64, len(terms))
		for _, t := range toks {
			if j, ok := col[t]; ok {
				row[j]++
			}
		}
		var norm2 float64
		for j := range row {
			row[j] *= idf[j]
			norm2 += row[j] * row[j]
		}
		if norm2 > 0 {
			l2 := math.Sqrt(norm2)
			for j := range row {
				row[j] /= l2
			}
		}
		rows[i] = row
	}

	return Signature{Terms: terms, Rows: rows}, nil
}

// Tokenize NFKC-normalises and lowercases s, then splits it into runs of
// letters, digits and underscores at least two runes long, dropping stop
// words.
func (w *TFIDF) Tokenize(s string) []string {
	s = strings.ToLower(norm.NFKC.String(s))

	var out []string
	var cur []rune
	flush := func() {
		if len(cur) >= 2 {
			tok := string(cur)
			if _, stop := w.StopWords[tok]; !stop {
				out = append(out, tok)
			}
		}
		cur = cur[:0]
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()
	return out
}
