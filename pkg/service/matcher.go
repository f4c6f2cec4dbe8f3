package service

import (
	"strings"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/models"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/storage"
)

// TemplateMatcher scores a free-form builder prompt against the stored
// template catalog by linear keyword matching. It is intentionally not an
// NLU pipeline: one point per template keyword found in the prompt, highest
// score wins, ties broken by catalog order.
type TemplateMatcher struct {
	store  storage.Store
	logger Logger
}

func NewTemplateMatcher(store storage.Store, logger Logger) *TemplateMatcher {
	return &TemplateMatcher{store: store, logger: logger}
}

// MatchResult pairs the winning template with its score.
type MatchResult struct {
	Template models.Template `json:"template"`
	Score    int             `json:"score"`
}

// Match returns the best-scoring template for the prompt, or (nil, nil) when
// no template keyword appears in it at all.
func (m *TemplateMatcher) Match(prompt string) (*MatchResult, error) {
	templates, err := m.store.ListTemplates()
	if err != nil {
		return nil, err
	}
	normalized := strings.ToLower(prompt)

	var best *MatchResult
	for _, tpl := range templates {
		score := scoreKeywords(normalized, tpl.Keywords)
		if score == 0 {
			continue
		}
		if best == nil || score > best.Score {
			best = &MatchResult{Template: tpl, Score: score}
		}
	}
	if best != nil {
		m.logger.Infof("Matched prompt to template '%s' (score %d)", best.Template.Name, best.Score)
	}
	return best, nil
}

func scoreKeywords(prompt, keywords string) int {
	score := 0
	for _, kw := range strings.Split(keywords, ",") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(prompt, kw) {
			score++
		}
	}
	return score
}
