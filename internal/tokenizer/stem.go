package tokenizer

import (
	"fmt"
	"strings"

	"github.com/kljensen/snowball/english"
)

// Stemmer maps a word to its canonical term. Implementations must be safe
// for concurrent use.
type Stemmer func(word string) string

// Porter2 applies the English Snowball (Porter2) stemmer. Input is
// lower-cased and stop-words are stemmed like any other word.
func Porter2(word string) string {
	return english.Stem(word, true)
}

// Identity returns word unchanged.
func Identity(word string) string {
	return word
}

// Canonical resolves a configuration name to the stemmer it selects, so
// aliases such as "snowball" and "porter2" compare equal.
func Canonical(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "porter2", "snowball":
		return "porter2", nil
	case "none", "identity":
		return "none", nil
	default:
		return "", fmt.Errorf("unknown stemmer %q", name)
	}
}

// Lookup resolves a stemmer by its configuration name.
func Lookup(name string) (Stemmer, error) {
	canonical, err := Canonical(name)
	if err != nil {
		return nil, err
	}
	if canonical == "none" {
		return Identity, nil
	}
	return Porter2, nil
}
