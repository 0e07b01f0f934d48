package kalshi

import (
	"strings"

	"github.com/David-McSharry/quantify/internal/platform"
)

// APIEvent is an event from the exchange API. Events group related markets
// under one ticker and carry the human-readable title used for relevance
// pre-filtering.
type APIEvent struct {
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	SubTitle    string `json:"sub_title"`
	Category    string `json:"category"`
}

// APIMarket is a market from the exchange API. Prices are integer cents.
type APIMarket struct {
	Ticker      string  `json:"ticker"`
	EventTicker string  `json:"event_ticker"`
	Title       string  `json:"title"`
	Subtitle    string  `json:"subtitle"`
	YesSubTitle string  `json:"yes_sub_title"`
	RulesText   string  `json:"rules_primary"`
	Status      string  `json:"status"`
	LastPrice   int     `json:"last_price"`
	YesBid      int     `json:"yes_bid"`
	YesAsk      int     `json:"yes_ask"`
	Volume      float64 `json:"volume"`
	CloseTime   string  `json:"close_time"`
}

// syntheticPrefixes marks event ticker families that are internal derived
// products rather than searchable questions.
var syntheticPrefixes = []string{"KXMV"}

// synthetic reports whether the event belongs to a derived product family.
func (e *APIEvent) synthetic() bool {
	for _, p := range syntheticPrefixes {
		if strings.HasPrefix(e.EventTicker, p) {
			return true
		}
	}
	return false
}

// flattenedTitle detects markets whose title is a comma-joined dump of many
// sub-market labels. These score well against almost any query and drown
// out real results.
func flattenedTitle(title string) bool {
	segments := strings.Split(title, ",")
	if len(segments) < 4 {
		return false
	}
	lower := strings.ToLower(title)
	return strings.Contains(lower, "yes ") || strings.Contains(lower, "no ")
}

// displayTitle builds the market's display title from its own title when
// present, otherwise from the event title plus the market's outcome label.
func (m *APIMarket) displayTitle(event *APIEvent) string {
	if m.Title != "" {
		return m.Title
	}
	title := event.Title
	label := m.YesSubTitle
	if label == "" {
		label = m.Subtitle
	}
	if label != "" {
		title += " (" + label + ")"
	}
	return title
}

// yesProbability derives the yes-side probability from the last trade,
// falling back to the bid/ask midpoint, then to even odds.
func (m *APIMarket) yesProbability() float64 {
	if m.LastPrice > 0 {
		return platform.ClampProbability(float64(m.LastPrice) / 100)
	}
	if m.YesBid > 0 || m.YesAsk > 0 {
		return platform.ClampProbability(float64(m.YesBid+m.YesAsk) / 200)
	}
	return 0.5
}
