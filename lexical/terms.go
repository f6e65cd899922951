package lexical

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTermRunes is the shortest token length kept as a meaningful term.
const MinTermRunes = 3

// Common English function words that carry no topical signal.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "all": true, "can": true, "had": true, "her": true,
	"our": true, "out": true, "has": true, "him": true, "his": true, "how": true,
	"did": true, "its": true, "she": true, "too": true, "they": true, "been": true,
	"were": true, "which": true, "their": true, "there": true, "what": true,
	"when": true, "where": true, "who": true, "why": true, "some": true,
	"into": true, "just": true, "only": true, "also": true, "than": true,
	"then": true, "them": true, "these": true, "those": true, "would": true,
	"could": true, "should": true, "might": true, "will": true, "shall": true,
	"about": true, "any": true, "each": true, "your": true, "yours": true,
	"mine": true, "over": true, "under": true, "very": true, "does": true,
	"doing": true, "done": true, "being": true, "such": true, "here": true,
	"both": true, "few": true, "more": true, "most": true, "other": true,
	"same": true, "while": true, "again": true, "tell": true, "show": true,
	"find": true, "give": true, "please": true, "me": true, "my": true,
	"we": true, "us": true, "i": true,
}

// IsStopWord reports whether word (already lower-cased) is ignored by Terms.
func IsStopWord(word string) bool {
	return stopWords[word]
}

// Tokenize splits text into lower-cased runs of letters and digits.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Terms returns the distinct meaningful terms of text in first-seen order.
func Terms(text string) []string {
	tokens := Tokenize(text)
	terms := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) < MinTermRunes || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}
	return terms
}

// normalizePhrase lower-cases text and collapses whitespace runs to one space.
func normalizePhrase(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
