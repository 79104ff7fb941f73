package services

import (
	"context"

	"github.com/vytor/flashstudy/internal/errors"
	"github.com/vytor/flashstudy/internal/flashcard"
	"github.com/vytor/flashstudy/internal/logger"
	"github.com/vytor/flashstudy/internal/models"
)

func (s *studyService) AddFlashcard(ctx context.Context, card models.NewFlashcard) (*models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("study_service")
	log.Debug("adding flashcard: deck_id=%s", card.DeckID)

	c, err := s.cards.AddFlashcard(ctx, card)
	if err != nil {
		return nil, err
	}
	return c, s.persistLocked(ctx)
}

func (s *studyService) GetFlashcard(ctx context.Context, id string) (*models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cards.GetFlashcard(ctx, id)
	if !ok {
		return nil, errors.NewNotFoundError("flashcard", id)
	}
	return c, nil
}

func (s *studyService) ListFlashcards(ctx context.Context, deckID string) ([]models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDeck(ctx, deckID); err != nil {
		return nil, err
	}
	return s.cards.ListFlashcards(ctx, deckID), nil
}

func (s *studyService) SearchFlashcards(ctx context.Context, deckID, term string) ([]models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDeck(ctx, deckID); err != nil {
		return nil, err
	}
	return s.cards.SearchFlashcards(ctx, deckID, term), nil
}

// DueFlashcards lists the flashcards due by the end of today.
func (s *studyService) DueFlashcards(ctx context.Context, deckID string) ([]models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDeck(ctx, deckID); err != nil {
		return nil, err
	}
	return s.cards.DueFlashcards(ctx, deckID, flashcard.EndOfDay(s.now())), nil
}

func (s *studyService) UpdateFlashcard(ctx context.Context, id string, update models.FlashcardUpdate) (*models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("study_service")
	log.Debug("updating flashcard: id=%s", id)

	if _, ok := s.cards.GetFlashcard(ctx, id); !ok {
		return nil, errors.NewNotFoundError("flashcard", id)
	}
	if err := s.cards.UpdateFlashcard(ctx, id, update); err != nil {
		return nil, err
	}
	c, _ := s.cards.GetFlashcard(ctx, id)
	return c, s.persistLocked(ctx)
}

func (s *studyService) DeleteFlashcard(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("study_service")

	if !s.cards.DeleteFlashcard(ctx, id) {
		return errors.NewNotFoundError("flashcard", id)
	}
	log.Info("flashcard deleted: id=%s", id)
	return s.persistLocked(ctx)
}
