// Package relevance scores the documents of a small corpus against one of
// its members using double-normalized term frequency and smoothed inverse
// document frequency.
package relevance

import "sort"

// Document is an ordered sequence of stemmed terms.
type Document []string

// TermFrequencyMap maps a term to its normalized frequency in (0.5, 1.0].
// Terms that do not occur in the document are not stored.
type TermFrequencyMap map[string]float64

// Get returns the stored frequency of term, or 0 when absent.
func (m TermFrequencyMap) Get(term string) float64 {
	return m[term]
}

// Terms returns the distinct terms in lexicographic order.
func (m TermFrequencyMap) Terms() []string {
	terms := make([]string, 0, len(m))
	for term := range m {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// TermFrequency computes 0.5 + 0.5*count/maxCount for every distinct term
// of doc. An empty document yields an empty map.
func TermFrequency(doc Document) TermFrequencyMap {
	if len(doc) == 0 {
		return TermFrequencyMap{}
	}
	counts := make(map[string]int, len(doc))
	maxCount := 0
	for _, term := range doc {
		counts[term]++
		if counts[term] > maxCount {
			maxCount = counts[term]
		}
	}
	tf := make(TermFrequencyMap, len(counts))
	for term, count := range counts {
		tf[term] = 0.5 + 0.5*float64(count)/float64(maxCount)
	}
	return tf
}
