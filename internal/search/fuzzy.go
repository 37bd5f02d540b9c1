package search

import (
	"sort"
	"strings"
	"unicode"
)

// FuzzyMatch represents a search match result
type FuzzyMatch struct {
	Index int // Index in source slice
	Score int // Match score (lower = better)
}

// Document is one searchable record. Earlier fields rank higher, so a hit in
// the title beats the same hit in the genre.
type Document struct {
	Fields []string
}

const fieldPenalty = 15

// FuzzySearch performs token-based fuzzy matching over documents.
//
// Every query token must match some word of some field (AND semantics),
// word order does not matter ("daft punk" matches "Punk, Daft") and
// longer tokens tolerate typos.
//
// Returns matches sorted by score (lower = better), ties by index.
func FuzzySearch(query string, docs []Document) []FuzzyMatch {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	var matches []FuzzyMatch
	for i, doc := range docs {
		if score, ok := matchDocument(doc, queryTokens); ok {
			matches = append(matches, FuzzyMatch{Index: i, Score: score})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score < matches[b].Score
	})
	return matches
}

// tokenize lowercases text and splits it into letter/digit runs
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func matchDocument(doc Document, queryTokens []string) (int, bool) {
	fieldTokens := make([][]string, len(doc.Fields))
	for i, f := range doc.Fields {
		fieldTokens[i] = tokenize(f)
	}

	total := 0
	for _, q := range queryTokens {
		best := -1
		for fi, words := range fieldTokens {
			for _, w := range words {
				s := matchToken(q, w)
				if s < 0 {
					continue
				}
				s += fi * fieldPenalty
				if best < 0 || s < best {
					best = s
				}
			}
		}
		if best < 0 {
			return 0, false
		}
		total += best
	}
	return total, true
}

// matchToken scores one query token against one word, -1 for no match
func matchToken(query, word string) int {
	switch {
	case query == word:
		return 0
	case strings.HasPrefix(word, query):
		return 10
	case strings.Contains(word, query):
		return 50 + strings.Index(word, query)
	}

	maxTypos := allowedTypos(len([]rune(query)))
	if maxTypos == 0 {
		return -1
	}
	// compare against the word prefix of similar length so "beatls" finds "beatles"
	w := []rune(word)
	if n := len([]rune(query)) + maxTypos; len(w) > n {
		w = w[:n]
	}
	if d := levenshtein([]rune(query), w); d <= maxTypos {
		return 100 + d*20
	}
	return -1
}

// allowedTypos returns the number of typos allowed based on word length
// 1-3 chars = 0, 4-6 chars = 1, 7+ chars = 2
func allowedTypos(length int) int {
	switch {
	case length <= 3:
		return 0
	case length <= 6:
		return 1
	default:
		return 2
	}
}

// levenshtein computes edit distance with a two-row table
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
