package relevance

import "math"

// IDF returns ln((N+1)/(count+1)) where N is len(maps) and count is the
// number of maps holding a positive frequency for term.
func IDF(term string, maps []TermFrequencyMap) float64 {
	count := 0
	for _, m := range maps {
		if m.Get(term) > 0 {
			count++
		}
	}
	return smoothedIDF(len(maps), count)
}

func smoothedIDF(totalDocs, docFreq int) float64 {
	return math.Log(float64(totalDocs+1) / float64(docFreq+1))
}

// WeightedTerm is one entry of a query vocabulary with its query-side
// frequency and corpus weight.
type WeightedTerm struct {
	Term    string
	QueryTF float64
	IDF     float64
}

// Vocabulary materializes the query's distinct terms, in lexicographic
// order, each paired with its IDF over candidates.
func Vocabulary(query TermFrequencyMap, candidates []TermFrequencyMap) []WeightedTerm {
	terms := query.Terms()
	vocab := make([]WeightedTerm, len(terms))
	for i, term := range terms {
		vocab[i] = WeightedTerm{
			Term:    term,
			QueryTF: query[term],
			IDF:     IDF(term, candidates),
		}
	}
	return vocab
}
