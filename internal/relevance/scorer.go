// Package relevance implements the lexical heuristic that scores arbitrary
// market text against a query string. Matching is by literal token equality;
// there is no stemming and no fuzzy matching. The only exception is a small
// set of domain synonym expansions that bridge colloquial references to the
// same entity.
package relevance

import "strings"

// Scoring weights. These values are hand-tuned against live provider data;
// changing them shifts the ranking of every search result.
const (
	phraseWeight = 8
	tokenWeight  = 2
	bigramWeight = 3

	// guardMinTokens / guardMinMatches: queries with at least three tokens
	// must match at least two distinct tokens (or the full phrase) to score
	// at all. Suppresses coincidental single-word overlaps on long queries.
	guardMinTokens  = 3
	guardMinMatches = 2
)

// synonyms maps a token to extra tokens it also emits during tokenization.
var synonyms = map[string][]string{
	"sbf": {"sam", "bankman", "fried"},
	"ftx": {"bankman"},
}

// Scorer scores haystack text against query strings. The zero value is not
// usable; construct with NewScorer so the stopword and synonym tables are in
// place.
type Scorer struct {
	stopwords map[string]struct{}
	synonyms  map[string][]string
}

// NewScorer returns a Scorer with the default stopword and synonym tables.
func NewScorer() *Scorer {
	return &Scorer{
		stopwords: scorerStopwords,
		synonyms:  synonyms,
	}
}

// Score returns a non-negative integer relevance score for haystack against
// query. It is pure and deterministic: equal inputs always produce equal
// output.
//
//   - +8 when the full space-joined query appears in the haystack token
//     sequence (token-boundary aware, so query "fed" does not hit "federal").
//   - +2 for each distinct query token present in the haystack token set.
//   - +3 for each adjacent query-token bigram found contiguously in the
//     haystack.
func (s *Scorer) Score(haystack, query string) int {
	qTokens := s.QueryTokens(query)
	if len(qTokens) == 0 {
		return 0
	}

	hTokens := s.Tokenize(haystack)
	hSet := make(map[string]struct{}, len(hTokens))
	for _, t := range hTokens {
		hSet[t] = struct{}{}
	}

	// Pad with spaces so substring checks honor token boundaries.
	joined := " " + strings.Join(hTokens, " ") + " "
	phrase := " " + strings.Join(qTokens, " ") + " "

	score := 0
	phraseHit := strings.Contains(joined, phrase)
	if phraseHit {
		score += phraseWeight
	}

	matched := 0
	seen := make(map[string]struct{}, len(qTokens))
	for _, t := range qTokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := hSet[t]; ok {
			matched++
			score += tokenWeight
		}
	}

	for i := 0; i+1 < len(qTokens); i++ {
		bigram := " " + qTokens[i] + " " + qTokens[i+1] + " "
		if strings.Contains(joined, bigram) {
			score += bigramWeight
		}
	}

	if len(qTokens) >= guardMinTokens && matched < guardMinMatches && !phraseHit {
		return 0
	}
	return score
}

// QueryTokens tokenizes a query and filters it through the scorer stopword
// list, the minimum token length, and the pure-digit exclusion. An empty
// result means Score returns 0 for every haystack.
func (s *Scorer) QueryTokens(query string) []string {
	raw := s.Tokenize(query)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) < 2 || isDigits(t) {
			continue
		}
		if _, stop := s.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Tokenize lowercases text, keeps letters, digits, apostrophes, and hyphens,
// splits on everything else, and appends synonym expansions after the token
// that triggered them. Hyphenated tokens additionally emit their parts so
// "bankman-fried" is reachable from the "sbf" expansion.
func (s *Scorer) Tokenize(text string) []string {
	fields := SplitTokens(text)
	out := make([]string, 0, len(fields))
	for _, t := range fields {
		out = append(out, t)
		if strings.Contains(t, "-") {
			for _, part := range strings.Split(t, "-") {
				if part != "" {
					out = append(out, part)
				}
			}
		}
		if extra, ok := s.synonyms[t]; ok {
			out = append(out, extra...)
		}
	}
	return out
}

// SplitTokens is the shared normalization step: lowercase, strip everything
// but letters/digits/apostrophe/hyphen, split on whitespace. No synonym
// expansion and no filtering.
func SplitTokens(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
