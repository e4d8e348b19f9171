package storage

import (
	"strings"
	"unicode"
)

// minTokenLength excludes short noise tokens ("a", "if", "of") from the
// inverted index and from keyword queries.
const minTokenLength = 3

// Tokenize lowercases text and splits it on non-alphanumeric runes,
// dropping tokens shorter than three characters. Both index building
// and keyword queries must use this same tokenizer, otherwise postings
// never line up.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= minTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// TokenizeTerms expands query terms into index tokens. A term that is
// already a single token passes through unchanged; a multi-word term
// contributes one token per word. Keyword scores divide by the length
// of the returned slice, which keeps them within [0,1].
func TokenizeTerms(terms []string) []string {
	var tokens []string
	for _, term := range terms {
		tokens = append(tokens, Tokenize(term)...)
	}
	return tokens
}

// UniqueTokens tokenizes text and removes duplicates, preserving first
// occurrence order. Used when building postings, where each entry should
// appear once per token.
func UniqueTokens(text string) []string {
	tokens := Tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	unique := tokens[:0]
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		unique = append(unique, tok)
	}
	return unique
}
