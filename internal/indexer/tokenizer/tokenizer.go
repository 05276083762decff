// Package tokenizer provides text tokenisation for the index. Text is split
// on the space character and on a fixed set of punctuation characters; tokens
// keep their original case and are never stemmed or filtered.
package tokenizer

import "strings"

// DefaultPunctuation is the separator set used when none is configured.
const DefaultPunctuation = ".,!\"':;?"

// Tokenizer splits raw text into word tokens.
type Tokenizer struct {
	punctuation string
	separators  map[rune]struct{}
}

// New creates a Tokenizer treating every rune of punctuation, plus the space
// character, as a word separator.
func New(punctuation string) *Tokenizer {
	separators := make(map[rune]struct{}, len(punctuation)+1)
	separators[' '] = struct{}{}
	for _, r := range punctuation {
		separators[r] = struct{}{}
	}
	return &Tokenizer{
		punctuation: punctuation,
		separators:  separators,
	}
}

// Default returns a Tokenizer using DefaultPunctuation.
func Default() *Tokenizer {
	return New(DefaultPunctuation)
}

// Punctuation returns the configured punctuation set.
func (t *Tokenizer) Punctuation() string {
	return t.punctuation
}

// Tokenize breaks text into its tokens in order of appearance. Empty
// substrings between adjacent separators are discarded.
func (t *Tokenizer) Tokenize(text string) []string {
	return strings.FieldsFunc(text, t.isSeparator)
}

// Set returns the distinct tokens of text.
func (t *Tokenizer) Set(text string) map[string]struct{} {
	words := t.Tokenize(text)
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

// Frequencies returns each distinct token of text mapped to its number of
// occurrences.
func (t *Tokenizer) Frequencies(text string) map[string]int {
	words := t.Tokenize(text)
	freqs := make(map[string]int, len(words))
	for _, word := range words {
		freqs[word]++
	}
	return freqs
}

func (t *Tokenizer) isSeparator(r rune) bool {
	_, ok := t.separators[r]
	return ok
}
