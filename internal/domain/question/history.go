package question

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/trainer/internal/domain/model"
)

// Page is an encyclopedia summary.
type Page struct {
	Title   string
	Extract string
}

// Encyclopedia fetches page summaries by title.
type Encyclopedia interface {
	Summary(ctx context.Context, title string) (Page, error)
}

// HistoryTopics are the encyclopedia pages history questions draw from.
var HistoryTopics = []string{"Napoleon", "Römisches_Reich", "Zweiter_Weltkrieg"}

const (
	historyPrompt = "Was ist das Ereignis zu dem Datum: %s?"
	// summary tokens used as the date fragment
	historyFragmentTokens = 10
)

// HistoryStrategy builds a question from the opening of a topic summary.
type HistoryStrategy struct {
	source Encyclopedia
	topics []string
	rng    Rand
}

// NewHistory returns the history strategy over the default topics.
func NewHistory(src Encyclopedia, rng Rand) *HistoryStrategy {
	if rng == nil {
		rng = globalRand{}
	}
	return &HistoryStrategy{source: src, topics: HistoryTopics, rng: rng}
}

// Generate implements Strategy.
func (s *HistoryStrategy) Generate(ctx context.Context) (model.Question, error) {
	const op = "question.history"

	topic := pick(s.rng, s.topics)
	page, err := s.source.Summary(ctx, topic)
	if err != nil {
		return model.Question{}, model.WrapKind(op, model.ErrGenerationUnavailable, err)
	}

	tokens := strings.Fields(page.Extract)
	if len(tokens) == 0 {
		return model.Question{}, model.WrapKind(op, model.ErrGenerationUnavailable, fmt.Errorf("empty summary for %s", topic))
	}
	if len(tokens) > historyFragmentTokens {
		tokens = tokens[:historyFragmentTokens]
	}

	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = topic
	}

	return model.Question{
		Domain: model.DomainHistory,
		Prompt: fmt.Sprintf(historyPrompt, strings.Join(tokens, " ")),
		Answer: model.TextAnswer(title),
	}, nil
}
