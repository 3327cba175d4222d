package relevance

import (
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/errors"
)

// ScoreEntry is a candidate's index in the original corpus and its score.
type ScoreEntry struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Split separates documents[queryIndex] from the rest without touching
// the caller's slice. Candidates keep their relative order.
func Split(queryIndex int, documents []Document) (Document, []Document, error) {
	if queryIndex < 0 || queryIndex >= len(documents) {
		return nil, nil, apperrors.InvalidArgumentf(
			"query index %d out of range [0, %d)", queryIndex, len(documents))
	}
	candidates := make([]Document, 0, len(documents)-1)
	candidates = append(candidates, documents[:queryIndex]...)
	candidates = append(candidates, documents[queryIndex+1:]...)
	return documents[queryIndex], candidates, nil
}

// Score ranks every document other than documents[queryIndex] against it.
// Entries come back in ascending original index order. An empty corpus
// yields an empty result; an out-of-range index yields an error wrapping
// ErrInvalidArgument.
func Score(queryIndex int, documents []Document) ([]ScoreEntry, error) {
	if len(documents) == 0 {
		return []ScoreEntry{}, nil
	}
	query, candidates, err := Split(queryIndex, documents)
	if err != nil {
		return nil, err
	}

	candidateTFs := make([]TermFrequencyMap, len(candidates))
	for k, doc := range candidates {
		candidateTFs[k] = TermFrequency(doc)
	}
	vocab := Vocabulary(TermFrequency(query), candidateTFs)

	scores := make([]ScoreEntry, len(candidates))
	for k, tf := range candidateTFs {
		scores[k] = ScoreEntry{
			Index: originalIndex(k, queryIndex),
			Score: weightedSum(vocab, tf),
		}
	}
	return scores, nil
}

// weightedSum iterates vocab in order so repeated calls add the same
// floats in the same sequence.
func weightedSum(vocab []WeightedTerm, candidate TermFrequencyMap) float64 {
	var score float64
	for _, wt := range vocab {
		score += wt.QueryTF * wt.IDF * candidate.Get(wt.Term)
	}
	return score
}

func originalIndex(candidatePos, queryIndex int) int {
	if candidatePos >= queryIndex {
		return candidatePos + 1
	}
	return candidatePos
}
