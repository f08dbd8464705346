package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradelog/internal/compliance"
	"tradelog/internal/models"
	"tradelog/internal/notify"
	"tradelog/internal/repository"
)

type RuleInput struct {
	Text     string   `json:"text"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

type RuleService struct {
	Store    *repository.Store
	Notifier notify.Notifier
	Now      func() time.Time
}

func (s *RuleService) ListRules(ctx context.Context) ([]models.Rule, error) {
	return s.Store.Rules(ctx)
}

// CreateRule adds a rule with fresh counters. Rules with the same text are
// allowed; they are told apart by id.
func (s *RuleService) CreateRule(ctx context.Context, in RuleInput) (models.Rule, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return models.Rule{}, &compliance.ValidationError{Field: "text", Reason: "required"}
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}
	rule := models.Rule{
		ID:        uuid.NewString(),
		Text:      text,
		Category:  strings.TrimSpace(in.Category),
		Tags:      compliance.MergeTags(in.Tags),
		CreatedAt: now,
	}
	_, err := s.Store.UpdateRules(ctx, func(cur []models.Rule) ([]models.Rule, error) {
		return append(cur, rule), nil
	})
	if err != nil {
		return models.Rule{}, err
	}
	if s.Notifier != nil {
		s.Notifier.Changed(ctx, notify.Rules)
	}
	return rule, nil
}
