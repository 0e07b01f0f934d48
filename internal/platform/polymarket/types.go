package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string; anything else
// decodes to zero rather than failing the record.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(n)
	return nil
}

// APIEvent is an event from the Gamma API. An event groups one or more
// related markets and carries its own descriptive text, which serves as the
// cheap relevance pre-filter.
type APIEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Active      flexBool    `json:"active"`
	Closed      bool        `json:"closed"`
	Markets     []APIMarket `json:"markets"`
}

// APIMarket is a market from the Gamma API. Outcomes and OutcomePrices may
// arrive as native arrays or as JSON-encoded strings; they are kept raw here
// and decoded through the shared fallback decoder.
type APIMarket struct {
	ID            string          `json:"id"`
	Question      string          `json:"question"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	Active        *flexBool       `json:"active"`
	Closed        bool            `json:"closed"`
	Outcomes      json.RawMessage `json:"outcomes"`
	OutcomePrices json.RawMessage `json:"outcomePrices"`
	Volume        flexFloat       `json:"volume"`
	VolumeNum     float64         `json:"volumeNum"`
	Events        []APIEventRef   `json:"events"`
}

// APIEventRef is the slimmed event reference embedded in direct market
// listings.
type APIEventRef struct {
	Slug string `json:"slug"`
}

// displayTitle prefers the question text, falling back to the title field.
func (m *APIMarket) displayTitle() string {
	if m.Question != "" {
		return m.Question
	}
	return m.Title
}

// volume prefers the numeric volumeNum field over the string volume field.
func (m *APIMarket) volume() float64 {
	if m.VolumeNum > 0 {
		return m.VolumeNum
	}
	v := float64(m.Volume)
	if v < 0 {
		return 0
	}
	return v
}

// tradable reports whether the market is open for inclusion in results. An
// absent "active" field counts as active; only an explicit false excludes.
func (m *APIMarket) tradable() bool {
	return !m.Closed && (m.Active == nil || bool(*m.Active))
}
