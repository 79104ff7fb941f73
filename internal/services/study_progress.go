package services

import (
	"context"
	"strings"

	"github.com/vytor/flashstudy/internal/errors"
	"github.com/vytor/flashstudy/internal/logger"
	"github.com/vytor/flashstudy/internal/models"
	"github.com/vytor/flashstudy/internal/stats"
)

func (s *studyService) Overview(ctx context.Context, deckID string) (models.StatsOverview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDeck(ctx, deckID); err != nil {
		return models.StatsOverview{}, err
	}
	return stats.Compute(stats.Input{
		Stats:       s.stats,
		Decks:       s.cards.ListDecks(ctx),
		Cards:       s.cards.ListFlashcards(ctx, ""),
		DeckID:      deckID,
		Now:         s.now(),
		HistoryDays: s.historyDays,
	}), nil
}

func (s *studyService) Stats(ctx context.Context) models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.stats
	out.History = append([]models.DayHistory{}, s.stats.History...)
	return out
}

func (s *studyService) UpdateStats(ctx context.Context, update models.StatsUpdate) (models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counters := []struct {
		field string
		value *int
	}{
		{"streak_days", update.StreakDays},
		{"cards_reviewed_today", update.CardsReviewedToday},
		{"total_reviewed", update.TotalReviewed},
	}
	for _, c := range counters {
		if c.value != nil && *c.value < 0 {
			return s.stats, errors.NewValidationError(c.field, "must not be negative")
		}
	}

	s.stats = stats.ApplyUpdate(s.stats, update)
	return s.stats, s.persistLocked(ctx)
}

func (s *studyService) Settings(ctx context.Context) models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *studyService) UpdateSettings(ctx context.Context, update models.SettingsUpdate) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("study_service")

	next := s.settings
	if update.DailyCardLimit != nil {
		if *update.DailyCardLimit < 1 {
			return s.settings, errors.NewValidationError("daily_card_limit", "must be a positive integer")
		}
		next.DailyCardLimit = *update.DailyCardLimit
	}
	if update.NewCardLimit != nil {
		if *update.NewCardLimit < 0 {
			return s.settings, errors.NewValidationError("new_card_limit", "must not be negative")
		}
		next.NewCardLimit = *update.NewCardLimit
	}
	if update.ReminderTime != nil {
		if !models.ValidReminderTime(*update.ReminderTime) {
			return s.settings, errors.NewValidationError("reminder_time", "must be HH:MM")
		}
		next.ReminderTime = *update.ReminderTime
	}
	if update.UserName != nil {
		name := strings.TrimSpace(*update.UserName)
		if name == "" {
			return s.settings, errors.NewValidationError("user_name", "must not be empty")
		}
		next.UserName = name
	}

	s.settings = next
	log.Info("settings updated: daily_card_limit=%d, new_card_limit=%d", next.DailyCardLimit, next.NewCardLimit)
	return s.settings, s.persistLocked(ctx)
}

func (s *studyService) ResetProgress(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("study_service")

	state := models.InitialState()
	state.Settings = s.settings
	s.hydrate(state)
	log.Info("progress reset")
	return s.persistLocked(ctx)
}
