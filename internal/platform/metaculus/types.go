package metaculus

import (
	"strconv"
	"strings"
)

// APIQuestion is a question from the Metaculus API.
type APIQuestion struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	PageURL         string        `json:"page_url"`
	Description     string        `json:"description"`
	Categories      []APICategory `json:"categories"`
	PredictionCount float64       `json:"prediction_count"`

	CommunityPrediction struct {
		Full struct {
			// Q2 is the community median probability.
			Q2 *float64 `json:"q2"`
		} `json:"full"`
	} `json:"community_prediction"`
}

// APICategory is a topic tag attached to a question.
type APICategory struct {
	Name string `json:"name"`
}

// categoryText joins category names for scoring alongside the title.
func (q *APIQuestion) categoryText() string {
	if len(q.Categories) == 0 {
		return ""
	}
	names := make([]string, 0, len(q.Categories))
	for _, c := range q.Categories {
		names = append(names, c.Name)
	}
	return strings.Join(names, " ")
}

// pageURL resolves the question's web address. The API returns a
// site-relative path; older records may omit it entirely.
func (q *APIQuestion) pageURL() string {
	switch {
	case strings.HasPrefix(q.PageURL, "http"):
		return q.PageURL
	case q.PageURL != "":
		return "https://www.metaculus.com" + q.PageURL
	default:
		return "https://www.metaculus.com/questions/" + strconv.FormatInt(q.ID, 10) + "/"
	}
}
