package analytics

import (
	"sort"
	"strings"
)

// Keyword is a word and its number of occurrences.
type Keyword struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// Merge sums several word frequency maps into one.
func Merge(counts ...map[string]int) map[string]int {
	merged := make(map[string]int)
	for _, c := range counts {
		for word, n := range c {
			merged[word] += n
		}
	}
	return merged
}

// isValidKeyword drops obviously broken tokens such as unmatched
// delimiters or a trailing separator.
func isValidKeyword(word string) bool {
	if strings.HasSuffix(word, ":") || strings.HasSuffix(word, "=") {
		return false
	}
	pairs := [][2]string{{"(", ")"}, {"[", "]"}, {"{", "}"}}
	for _, p := range pairs {
		if strings.Contains(word, p[0]) != strings.Contains(word, p[1]) {
			return false
		}
	}
	return strings.Count(word, "\"")%2 == 0
}

// TopKeywords returns the n most frequent words, highest count first.
// Ties are broken alphabetically.
func TopKeywords(counts map[string]int, n int) []Keyword {
	keywords := make([]Keyword, 0, len(counts))
	for word, count := range counts {
		if isValidKeyword(word) {
			keywords = append(keywords, Keyword{Word: word, Count: count})
		}
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Word < keywords[j].Word
	})

	if n >= 0 && len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}
