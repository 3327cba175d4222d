// Package tokenizer turns raw paragraph text into the term sequences the
// relevance scorer consumes. Text is split on runs of spaces, commas and
// periods, and every fragment is passed through a pluggable Stemmer.
package tokenizer

import (
	"strings"
)

// Tokenizer splits paragraphs into stemmed terms.
type Tokenizer struct {
	stem Stemmer
}

var defaultTokenizer = New(Porter2)

// New returns a Tokenizer using stem. A nil stem selects Porter2.
func New(stem Stemmer) *Tokenizer {
	if stem == nil {
		stem = Porter2
	}
	return &Tokenizer{stem: stem}
}

// Tokenize breaks paragraph into terms using the Porter2 stemmer.
func Tokenize(paragraph string) []string {
	return defaultTokenizer.Tokenize(paragraph)
}

// Tokenize breaks paragraph into terms. Order of appearance is kept and
// duplicates are retained; fragments that are empty before or after
// stemming are dropped.
func (t *Tokenizer) Tokenize(paragraph string) []string {
	fragments := strings.FieldsFunc(paragraph, isDelimiter)
	terms := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		term := t.stem(fragment)
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// TokenizeAll tokenizes each paragraph, keeping positions aligned.
func (t *Tokenizer) TokenizeAll(paragraphs []string) [][]string {
	docs := make([][]string, len(paragraphs))
	for i, p := range paragraphs {
		docs[i] = t.Tokenize(p)
	}
	return docs
}

func isDelimiter(r rune) bool {
	return r == ' ' || r == ',' || r == '.'
}
