package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/vytor/flashstudy/internal/errors"
	"github.com/vytor/flashstudy/internal/flashcard"
	"github.com/vytor/flashstudy/internal/logger"
	"github.com/vytor/flashstudy/internal/models"
	"github.com/vytor/flashstudy/internal/session"
	"github.com/vytor/flashstudy/internal/stats"
)

// StartSession queues the flashcards due by the end of today, optionally
// limited to one deck, capped at the daily card limit. With nothing due the
// returned view is idle.
func (s *studyService) StartSession(ctx context.Context, deckID string) (models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("study_service")

	if err := s.requireDeck(ctx, deckID); err != nil {
		return models.SessionView{}, err
	}

	due := s.cards.DueFlashcards(ctx, deckID, flashcard.EndOfDay(s.now()))
	s.session = session.Start(due, s.settings.DailyCardLimit)
	s.currentDeck = deckID
	log.Info("review session started: deck_id=%q, due=%d, queued=%d", deckID, len(due), len(s.session.Cards))

	if err := s.persistLocked(ctx); err != nil {
		return s.viewLocked(ctx), err
	}
	return s.viewLocked(ctx), nil
}

func (s *studyService) Restart(ctx context.Context, deckID string) (models.SessionView, error) {
	return s.StartSession(ctx, deckID)
}

func (s *studyService) Session(ctx context.Context) models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(ctx)
}

func (s *studyService) Flip(ctx context.Context) (models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := session.Flip(&s.session); err != nil {
		return s.viewLocked(ctx), sessionError(err)
	}
	return s.viewLocked(ctx), s.persistLocked(ctx)
}

func (s *studyService) Advance(ctx context.Context) (models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := session.Advance(&s.session); err != nil {
		return s.viewLocked(ctx), sessionError(err)
	}
	return s.viewLocked(ctx), s.persistLocked(ctx)
}

// Grade reschedules the active card and records the review. The session
// stays on the card until Advance.
func (s *studyService) Grade(ctx context.Context, cardID string, grade int) (*models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.gradeLocked(ctx, cardID, grade)
	if err != nil {
		return nil, err
	}
	return c, s.persistLocked(ctx)
}

func (s *studyService) Rate(ctx context.Context, cardID string, grade int) (models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.gradeLocked(ctx, cardID, grade); err != nil {
		return s.viewLocked(ctx), err
	}
	if err := session.Advance(&s.session); err != nil {
		return s.viewLocked(ctx), sessionError(err)
	}
	return s.viewLocked(ctx), s.persistLocked(ctx)
}

// SetCustomReviewDate moves the active card's next review to date without
// touching its ease, interval or the stats, then advances.
func (s *studyService) SetCustomReviewDate(ctx context.Context, cardID string, date time.Time) (models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("study_service")

	if date.IsZero() {
		return s.viewLocked(ctx), errors.NewValidationError("date", "must be set")
	}
	if err := session.CheckActive(s.session, cardID); err != nil {
		return s.viewLocked(ctx), sessionError(err)
	}
	if _, ok := s.cards.GetFlashcard(ctx, cardID); !ok {
		return s.viewLocked(ctx), errors.NewNotFoundError("flashcard", cardID)
	}
	if err := s.cards.UpdateFlashcard(ctx, cardID, models.FlashcardUpdate{NextReview: &date}); err != nil {
		return s.viewLocked(ctx), err
	}
	log.Info("custom review date set: card_id=%s, next_review=%s", cardID, date.Format(time.RFC3339))

	if err := session.Advance(&s.session); err != nil {
		return s.viewLocked(ctx), sessionError(err)
	}
	return s.viewLocked(ctx), s.persistLocked(ctx)
}

func (s *studyService) gradeLocked(ctx context.Context, cardID string, grade int) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("study_service")

	g := flashcard.Grade(grade)
	if !g.Valid() {
		return nil, errors.NewValidationError("grade", "must be between 1 and 5")
	}
	if err := session.CheckActive(s.session, cardID); err != nil {
		return nil, sessionError(err)
	}
	card, ok := s.cards.GetFlashcard(ctx, cardID)
	if !ok {
		return nil, errors.NewNotFoundError("flashcard", cardID)
	}

	now := s.now()
	ease := int(g)
	interval := flashcard.NextInterval(g, card.Interval)
	next := flashcard.NextReviewDate(now, interval)
	if err := s.cards.UpdateFlashcard(ctx, cardID, models.FlashcardUpdate{
		Ease:         &ease,
		Interval:     &interval,
		NextReview:   &next,
		LastReviewed: &now,
	}); err != nil {
		return nil, err
	}
	s.stats = stats.RecordReview(s.stats, g, now)

	log.Debug("flashcard graded: id=%s, grade=%s, interval=%d->%d", cardID, g, card.Interval, interval)
	updated, _ := s.cards.GetFlashcard(ctx, cardID)
	return updated, nil
}

func sessionError(err error) error {
	switch {
	case stderrors.Is(err, session.ErrNotInProgress):
		return errors.NewBadRequestError(err.Error())
	case stderrors.Is(err, session.ErrNotActiveCard):
		return errors.NewBadRequestError(err.Error())
	default:
		return errors.NewInternalError(err)
	}
}
