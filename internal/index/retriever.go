package index

import (
	"regexp"
	"sort"
	"strings"
)

// Scoring weights for the lexical ranker. A whole-word match is worth more
// than a substring hit, and chunks matching several distinct terms get a
// bonus proportional to how many matched.
const (
	wordMatchScore      = 3
	substringMatchScore = 1
	multiTermBonus      = 2
	maxScorePerTerm     = 5
	maxHits             = 3
)

// Hit is a chunk that survived scoring against a query.
type Hit struct {
	Chunk        DocumentChunk
	Score        int
	MatchedTerms int
}

var termPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// queryTerms tokenizes a query into distinct lowercase terms, discarding
// terms of length <= 2 as stopword-ish noise.
func queryTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, t := range termPattern.FindAllString(strings.ToLower(query), -1) {
		if len(t) <= 2 || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}

// Retrieve ranks chunks against the query and returns the top matches above
// the sensitivity threshold (0-100). Ranking is lexical, not semantic:
// multi-word phrase proximity is not modeled. Equal scores keep their input
// order so results are reproducible across runs on identical input.
func Retrieve(query string, sensitivity int, chunks []DocumentChunk) []Hit {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil
	}

	wordRes := make([]*regexp.Regexp, len(terms))
	for i, t := range terms {
		wordRes[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)
	}

	maxPossible := len(terms) * maxScorePerTerm
	minScore := float64(sensitivity) / 100 * float64(maxPossible)
	if minScore < 1 {
		minScore = 1
	}

	var hits []Hit
	for _, c := range chunks {
		content := strings.ToLower(c.Content)
		score, matched := 0, 0
		for i, t := range terms {
			switch {
			case wordRes[i].MatchString(content):
				score += wordMatchScore
				matched++
			case strings.Contains(content, t):
				score += substringMatchScore
				matched++
			}
		}
		if matched > 1 {
			score += multiTermBonus * matched
		}
		if float64(score) >= minScore {
			hits = append(hits, Hit{Chunk: c, Score: score, MatchedTerms: matched})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > maxHits {
		hits = hits[:maxHits]
	}
	return hits
}

// Search ranks the store's current contents against the query. The read
// lock held while scanning means a concurrent indexing pass can never expose
// a torn view of the index.
func (s *Store) Search(query string, sensitivity int) []Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Retrieve(query, sensitivity, s.chunks)
}
