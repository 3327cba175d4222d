// Package ranker orders relevance scores for presentation: highest score
// first, lower corpus index first on ties.
package ranker

import (
	"container/heap"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/relevance"
)

// Sort returns a ranked copy of entries.
func Sort(entries []relevance.ScoreEntry) []relevance.ScoreEntry {
	result := make([]relevance.ScoreEntry, len(entries))
	copy(result, entries)
	sort.SliceStable(result, func(i, j int) bool {
		return better(result[i], result[j])
	})
	return result
}

// TopK returns the k best entries in ranked order. k <= 0 ranks all of
// them.
func TopK(entries []relevance.ScoreEntry, k int) []relevance.ScoreEntry {
	if k <= 0 || k >= len(entries) {
		return Sort(entries)
	}
	h := &entryHeap{}
	heap.Init(h)
	for _, e := range entries {
		heap.Push(h, e)
		if h.Len() > k {
			heap.Pop(h)
		}
	}
	result := make([]relevance.ScoreEntry, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(relevance.ScoreEntry)
	}
	return result
}

func better(a, b relevance.ScoreEntry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Index < b.Index
}

// entryHeap is a min-heap on rank: the root is the worst retained entry.
type entryHeap []relevance.ScoreEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool { return better(h[j], h[i]) }

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x interface{}) {
	*h = append(*h, x.(relevance.ScoreEntry))
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
