package services

import (
	"context"

	"github.com/vytor/flashstudy/internal/errors"
	"github.com/vytor/flashstudy/internal/flashcard"
	"github.com/vytor/flashstudy/internal/logger"
	"github.com/vytor/flashstudy/internal/models"
	"github.com/vytor/flashstudy/internal/stats"
)

func (s *studyService) AddDeck(ctx context.Context, deck models.NewDeck) (*models.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("study_service")
	log.Debug("adding deck: name=%q", deck.Name)

	d, err := s.cards.AddDeck(ctx, deck)
	if err != nil {
		return nil, err
	}
	if err := s.persistLocked(ctx); err != nil {
		return d, err
	}
	log.Info("deck created: id=%s", d.ID)
	return d, nil
}

func (s *studyService) GetDeck(ctx context.Context, id string) (*models.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.cards.GetDeck(ctx, id)
	if !ok {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return d, nil
}

func (s *studyService) ListDecks(ctx context.Context) []models.DeckSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := flashcard.EndOfDay(s.now())
	cards := s.cards.ListFlashcards(ctx, "")
	decks := s.cards.ListDecks(ctx)
	out := make([]models.DeckSummary, 0, len(decks))
	for _, d := range decks {
		out = append(out, stats.Summarize(d, cards, cutoff))
	}
	return out
}

func (s *studyService) UpdateDeck(ctx context.Context, id string, update models.DeckUpdate) (*models.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("study_service")
	log.Debug("updating deck: id=%s", id)

	if err := s.requireDeck(ctx, id); err != nil {
		return nil, err
	}
	if err := s.cards.UpdateDeck(ctx, id, update); err != nil {
		return nil, err
	}
	d, _ := s.cards.GetDeck(ctx, id)
	if err := s.persistLocked(ctx); err != nil {
		return d, err
	}
	return d, nil
}

// DeleteDeck removes a deck with its flashcards and reports how many
// flashcards went with it.
func (s *studyService) DeleteDeck(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("study_service")

	if err := s.requireDeck(ctx, id); err != nil {
		return 0, err
	}
	removed := s.cards.DeleteDeck(ctx, id)
	if s.currentDeck == id {
		s.currentDeck = ""
	}
	log.Info("deck deleted: id=%s, flashcards_removed=%d", id, removed)
	return removed, s.persistLocked(ctx)
}
