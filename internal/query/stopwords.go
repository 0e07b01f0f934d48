package query

// builderStopwords is the large curated stopword set applied when extracting
// keywords from free text. Broader than the scorer's list because raw tweets
// and article excerpts are full of conversational filler that would otherwise
// dominate the derived queries.
var builderStopwords = toSet([]string{
	"a", "about", "above", "after", "again", "against", "ago", "all", "also",
	"am", "an", "and", "any", "are", "aren't", "as", "at", "back", "be",
	"because", "been", "before", "being", "below", "between", "big", "both",
	"but", "by", "came", "can", "can't", "cannot", "come", "could",
	"couldn't", "day", "did", "didn't", "do", "does", "doesn't", "doing",
	"don't", "down", "during", "each", "even", "ever", "every", "few", "for",
	"from", "further", "get", "gets", "getting", "go", "goes", "going",
	"gonna", "got", "had", "hadn't", "has", "hasn't", "have", "haven't",
	"having", "he", "he'd", "he'll", "he's", "her", "here", "here's", "hers",
	"herself", "him", "himself", "his", "how", "how's", "huge", "i", "i'd",
	"i'll", "i'm", "i've", "if", "in", "into", "is", "isn't", "it", "it's",
	"its", "itself", "just", "know", "let's", "like", "lot", "made", "make",
	"makes", "many", "may", "me", "might", "more", "most", "much", "must",
	"mustn't", "my", "myself", "need", "never", "new", "no", "nor", "not",
	"now", "of", "off", "on", "once", "one", "only", "or", "other", "ought",
	"our", "ours", "ourselves", "out", "over", "own", "people", "really",
	"said", "same", "say", "says", "see", "she", "she'd", "she'll", "she's",
	"should", "shouldn't", "so", "some", "something", "still", "such", "take",
	"than", "that", "that's", "the", "their", "theirs", "them", "themselves",
	"then", "there", "there's", "these", "they", "they'd", "they'll",
	"they're", "they've", "thing", "things", "think", "this", "those",
	"through", "time", "to", "today", "too", "under", "until", "up", "us",
	"very", "want", "was", "wasn't", "way", "we", "we'd", "we'll", "we're",
	"we've", "well", "were", "weren't", "what", "what's", "when", "when's",
	"where", "where's", "which", "while", "who", "who's", "whom", "why",
	"why's", "will", "with", "won't", "would", "wouldn't", "year", "years",
	"yes", "yet", "you", "you'd", "you'll", "you're", "you've", "your",
	"yours", "yourself", "yourselves",
})

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
