package search

import "github.com/David-McSharry/quantify/internal/domain"

// Progress stages, in emission order for one search.
const (
	StageStarted  = "started"
	StagePlatform = "platform"
	StageFinished = "finished"
)

// ProgressEvent is one step of a running search, suitable for streaming to a
// client as JSON.
type ProgressEvent struct {
	SearchID string          `json:"search_id"`
	Stage    string          `json:"stage"`
	Queries  []string        `json:"queries,omitempty"`
	Query    string          `json:"query,omitempty"`
	Platform domain.Platform `json:"platform,omitempty"`
	Count    int             `json:"count,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// ProgressFunc receives progress events during a search.
type ProgressFunc func(ProgressEvent)

func (e *Engine) emit(ev ProgressEvent) {
	if e.progress != nil {
		e.progress(ev)
	}
}

// emitPlatform reports one platform settling for one query. Fan-outs without
// a search ID (the narrow platform search) stay silent.
func (e *Engine) emitPlatform(searchID string, p domain.Platform, q string, count int, err error) {
	if e.progress == nil || searchID == "" {
		return
	}
	ev := ProgressEvent{
		SearchID: searchID,
		Stage:    StagePlatform,
		Query:    q,
		Platform: p,
		Count:    count,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	e.progress(ev)
}
