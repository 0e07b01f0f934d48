package manifold

import (
	"sort"

	"github.com/David-McSharry/quantify/internal/domain"
	"github.com/David-McSharry/quantify/internal/platform"
)

// Manifold outcome types that carry per-answer probabilities.
const (
	outcomeTypeMultipleChoice = "MULTIPLE_CHOICE"
	outcomeTypeMultiNumeric   = "MULTI_NUMERIC"
)

// maxAnswers caps how many multi-choice answers are surfaced as outcomes.
const maxAnswers = 5

// APIMarket is a market entry as returned by /v0/search-markets.
type APIMarket struct {
	ID              string   `json:"id"`
	Question        string   `json:"question"`
	URL             string   `json:"url"`
	OutcomeType     string   `json:"outcomeType"`
	Probability     *float64 `json:"probability"`
	Volume          float64  `json:"volume"`
	IsResolved      bool     `json:"isResolved"`
	CloseTime       int64    `json:"closeTime"` // milliseconds since epoch, 0 when absent
	TextDescription string   `json:"textDescription"`
}

// APIMarketDetail is the full market payload from /v0/market/{id}; only the
// answers are needed beyond the search fields.
type APIMarketDetail struct {
	APIMarket
	Answers []APIAnswer `json:"answers"`
}

// APIAnswer is one answer option of a multi-choice market.
type APIAnswer struct {
	Text        string  `json:"text"`
	Probability float64 `json:"probability"`
	IsOther     bool    `json:"isOther"`
}

// multiChoice reports whether the market's odds live on per-answer records
// rather than a single probability.
func (m *APIMarket) multiChoice() bool {
	return m.OutcomeType == outcomeTypeMultipleChoice || m.OutcomeType == outcomeTypeMultiNumeric
}

// ToDomainMarket converts an APIMarket to a normalized domain.Market with
// binary Yes/No outcomes.
func (m *APIMarket) ToDomainMarket() domain.Market {
	p := 0.5
	if m.Probability != nil {
		p = platform.ClampProbability(*m.Probability)
	}

	u := m.URL
	if u == "" {
		u = "https://manifold.markets/market/" + m.ID
	}

	return domain.Market{
		Platform:    domain.PlatformManifold,
		ID:          m.ID,
		Title:       m.Question,
		URL:         u,
		Description: platform.TruncateDescription(m.TextDescription),
		Probability: p,
		Outcomes:    domain.BinaryOutcomes(p),
		Volume:      m.Volume,
	}
}

// topAnswers returns up to maxAnswers non-"Other" answers sorted by
// descending probability, as domain outcomes.
func (d *APIMarketDetail) topAnswers() []domain.Outcome {
	answers := make([]APIAnswer, 0, len(d.Answers))
	for _, a := range d.Answers {
		if !a.IsOther {
			answers = append(answers, a)
		}
	}
	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].Probability > answers[j].Probability
	})
	if len(answers) > maxAnswers {
		answers = answers[:maxAnswers]
	}

	outcomes := make([]domain.Outcome, 0, len(answers))
	for _, a := range answers {
		outcomes = append(outcomes, domain.Outcome{
			Name:        a.Text,
			Probability: platform.ClampProbability(a.Probability),
		})
	}
	return outcomes
}
