package platform

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// maxDescriptionLen caps market descriptions before they leave an adapter.
const maxDescriptionLen = 500

// ClampProbability forces v into [0,1], substituting 0.5 for NaN and
// infinities so a malformed source value never escapes an adapter.
func ClampProbability(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0.5
	}
	return math.Max(0, math.Min(1, v))
}

// StringList decodes a field that arrives either as a native JSON array of
// strings or as a JSON-encoded string of such an array (Polymarket sends
// both shapes). It returns fallback when neither decode succeeds.
func StringList(raw json.RawMessage, fallback []string) []string {
	if len(raw) == 0 {
		return fallback
	}

	var direct []string
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		var nested []string
		if err := json.Unmarshal([]byte(encoded), &nested); err == nil {
			return nested
		}
	}
	return fallback
}

// FloatList decodes a list of numbers that may arrive as a native array, as
// an array of numeric strings, or as a JSON-encoded string of either. Values
// that fail to parse become NaN so callers can clamp them.
func FloatList(raw json.RawMessage) []float64 {
	values := StringList(raw, nil)
	if values == nil {
		// Maybe a native array of numbers rather than strings.
		var direct []float64
		if err := json.Unmarshal(raw, &direct); err == nil {
			return direct
		}
		return nil
	}

	out := make([]float64, len(values))
	for i, s := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			f = math.NaN()
		}
		out[i] = f
	}
	return out
}

// TruncateDescription limits a description to 500 runes, appending an
// ellipsis when cut.
func TruncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= maxDescriptionLen {
		return s
	}
	return string(runes[:maxDescriptionLen]) + "..."
}
