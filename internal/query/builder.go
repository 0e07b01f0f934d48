// Package query turns free text (a tweet, an article excerpt, or an ad-hoc
// prompt) into a small set of derived search query strings: keyword-based
// queries plus canonical queries from a fixed topic-trigger table.
package query

import (
	"regexp"
	"strings"

	"github.com/David-McSharry/quantify/internal/relevance"
)

// maxQueries caps how many derived query strings Build returns.
const maxQueries = 4

// Keyword selection bounds for the derived queries.
const (
	primaryKeywords   = 4
	secondaryKeywords = 2
	minTokenLen       = 2
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
)

// Builder derives search queries from free text. Construct with NewBuilder;
// the stopword and trigger tables are immutable after construction.
type Builder struct {
	stopwords map[string]struct{}
	triggers  []TriggerRule
}

// TriggerRule appends a canonical query when any of its substrings occurs in
// the cleaned lowercase input text.
type TriggerRule struct {
	Substrings []string
	Query      string
}

// NewBuilder returns a Builder with the default stopword and trigger tables.
func NewBuilder() *Builder {
	return &Builder{
		stopwords: builderStopwords,
		triggers:  topicTriggers,
	}
}

// Build derives up to four query strings from free text, in order: the
// primary keyword query (first 4 keywords), the secondary keyword query
// (first 2 keywords, only when more than 2 exist), then any topic-trigger
// queries. Results are deduplicated case-insensitively. Empty or
// whitespace-only input yields an empty list, and the caller must not issue
// any network calls in that case.
func (b *Builder) Build(text string) []string {
	cleaned := b.clean(text)
	keywords := b.keywords(cleaned)

	var queries []string
	if len(keywords) > 0 {
		n := primaryKeywords
		if len(keywords) < n {
			n = len(keywords)
		}
		queries = append(queries, strings.Join(keywords[:n], " "))
	}
	if len(keywords) > secondaryKeywords {
		queries = append(queries, strings.Join(keywords[:secondaryKeywords], " "))
	}

	for _, rule := range b.triggers {
		for _, sub := range rule.Substrings {
			if strings.Contains(cleaned, sub) {
				queries = append(queries, rule.Query)
				break
			}
		}
	}

	out := make([]string, 0, maxQueries)
	seen := make(map[string]struct{}, maxQueries)
	for _, q := range queries {
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if len(out) == maxQueries {
			break
		}
	}
	return out
}

// Keywords returns the ordered, deduplicated keyword tokens derived from
// text. Exposed for callers that want the raw keyword sequence.
func (b *Builder) Keywords(text string) []string {
	return b.keywords(b.clean(text))
}

// clean collapses whitespace, strips URLs and @-mentions, and lowercases.
// The result is what trigger rules are matched against.
func (b *Builder) clean(text string) string {
	text = urlPattern.ReplaceAllString(text, " ")
	text = mentionPattern.ReplaceAllString(text, " ")
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// keywords tokenizes cleaned text and drops short tokens, purely numeric
// tokens, and stopwords, deduplicating while preserving first occurrence.
func (b *Builder) keywords(cleaned string) []string {
	tokens := relevance.SplitTokens(cleaned)
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if len(t) < minTokenLen || isNumeric(t) {
			continue
		}
		if _, stop := b.stopwords[t]; stop {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
