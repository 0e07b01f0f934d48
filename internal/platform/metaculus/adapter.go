package metaculus

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/David-McSharry/quantify/internal/domain"
	"github.com/David-McSharry/quantify/internal/platform"
	"github.com/David-McSharry/quantify/internal/relevance"
)

const (
	// questionPageLimit / maxQuestionPages bound the offset-paginated
	// question walk. Metaculus pages are small, so the walk stops early
	// when a page comes back short.
	questionPageLimit = 50
	maxQuestionPages  = 2

	// titleBonus rewards questions whose title or categories match over
	// those matching only in the long description body.
	titleBonus = 1

	// descriptionScoreBar is the minimum description-only score. Long
	// descriptions mention many topics in passing, so a weak body match
	// alone is not evidence of relevance.
	descriptionScoreBar = 6
)

// Adapter implements domain.Adapter for Metaculus.
type Adapter struct {
	client *Client
	scorer *relevance.Scorer
	logger *slog.Logger
}

// NewAdapter creates a Metaculus search adapter.
func NewAdapter(client *Client, scorer *relevance.Scorer, logger *slog.Logger) *Adapter {
	return &Adapter{
		client: client,
		scorer: scorer,
		logger: logger.With(slog.String("component", "metaculus")),
	}
}

// Name returns the platform identifier.
func (a *Adapter) Name() domain.Platform { return domain.PlatformMetaculus }

// Search returns scored open Metaculus questions matching the query.
func (a *Adapter) Search(ctx context.Context, query string) ([]domain.Market, error) {
	var out []domain.Market

	err := platform.ForEachPage(ctx, maxQuestionPages, func(ctx context.Context, page int) (bool, error) {
		questions, err := a.client.ListQuestions(ctx, questionPageLimit, page*questionPageLimit)
		if err != nil {
			return false, err
		}
		for i := range questions {
			q := &questions[i]
			score, ok := a.score(q, query)
			if !ok {
				continue
			}
			out = append(out, toDomainMarket(q, score))
		}
		return len(questions) == questionPageLimit, nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// score rates one question against the query. A title or category match
// wins a small bonus; a match found only in the description must clear a
// higher bar to count at all.
func (a *Adapter) score(q *APIQuestion, query string) (int, bool) {
	titleScore := a.scorer.Score(q.Title+" "+q.categoryText(), query)
	if titleScore > 0 {
		return titleScore + titleBonus, true
	}
	descScore := a.scorer.Score(q.Description, query)
	if descScore >= descriptionScoreBar {
		return descScore, true
	}
	return 0, false
}

// GetMarket returns a single normalized question by its numeric ID.
func (a *Adapter) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	q, err := a.client.GetQuestion(ctx, id)
	if err != nil {
		return domain.Market{}, err
	}
	return toDomainMarket(&q, 0), nil
}

func toDomainMarket(q *APIQuestion, score int) domain.Market {
	probability := 0.5
	if q2 := q.CommunityPrediction.Full.Q2; q2 != nil {
		probability = platform.ClampProbability(*q2)
	}
	return domain.Market{
		Platform:    domain.PlatformMetaculus,
		ID:          strconv.FormatInt(q.ID, 10),
		Title:       q.Title,
		URL:         q.pageURL(),
		Description: platform.TruncateDescription(q.Description),
		Probability: probability,
		Outcomes:    domain.BinaryOutcomes(probability),
		Volume:      q.PredictionCount,
		Score:       score,
	}
}

// Compile-time interface check.
var _ domain.Adapter = (*Adapter)(nil)
