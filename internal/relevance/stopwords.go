package relevance

// scorerStopwords is the short stopword list applied to query tokens before
// scoring. Deliberately smaller than the query-builder list: scorer queries
// are already keyword-like, so only bare function words are dropped here.
var scorerStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {},
	"will": {}, "with": {},
}
