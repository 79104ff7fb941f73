// Package session drives a review session: an ordered, forward-only pass
// over the ids of the flashcards that were due when it started.
package session

import (
	"errors"

	"github.com/vytor/flashstudy/internal/flashcard"
	"github.com/vytor/flashstudy/internal/models"
)

var (
	ErrNotInProgress = errors.New("no review session in progress")
	ErrNotActiveCard = errors.New("card is not the active card of the session")
)

// Resolver looks a flashcard up by id against current repository state.
type Resolver func(id string) (*models.Flashcard, bool)

// Start builds a session over due, truncated to limit cards. A limit below
// one means no cap. An empty due set yields an idle session.
func Start(due []models.Flashcard, limit int) models.ReviewSession {
	n := len(due)
	if limit > 0 && n > limit {
		n = limit
	}
	ids := make([]string, 0, n)
	for _, c := range due[:n] {
		ids = append(ids, c.ID)
	}
	return models.ReviewSession{Cards: ids}
}

// State derives the phase of s.
func State(s models.ReviewSession) models.SessionState {
	switch {
	case len(s.Cards) == 0:
		return models.SessionIdle
	case s.CurrentCardIndex < len(s.Cards):
		return models.SessionInProgress
	default:
		return models.SessionFinished
	}
}

// Flip toggles answer visibility.
func Flip(s *models.ReviewSession) error {
	if State(*s) != models.SessionInProgress {
		return ErrNotInProgress
	}
	s.ShowAnswer = !s.ShowAnswer
	return nil
}

// Advance moves to the next card and hides the answer.
func Advance(s *models.ReviewSession) error {
	if State(*s) != models.SessionInProgress {
		return ErrNotInProgress
	}
	s.CurrentCardIndex++
	s.ShowAnswer = false
	return nil
}

// ActiveID returns the id at the current index.
func ActiveID(s models.ReviewSession) (string, bool) {
	if State(s) != models.SessionInProgress {
		return "", false
	}
	return s.Cards[s.CurrentCardIndex], true
}

// CheckActive verifies that cardID may be graded now.
func CheckActive(s models.ReviewSession, cardID string) error {
	id, ok := ActiveID(s)
	if !ok {
		return ErrNotInProgress
	}
	if id != cardID {
		return ErrNotActiveCard
	}
	return nil
}

// Current resolves the active card. It reports false when no session is in
// progress or the card no longer exists.
func Current(s models.ReviewSession, resolve Resolver) (*models.Flashcard, bool) {
	id, ok := ActiveID(s)
	if !ok {
		return nil, false
	}
	return resolve(id)
}

// Summarize counts the processed cards and, among those still present, the
// ones whose ease is a correct grade.
func Summarize(s models.ReviewSession, resolve Resolver) models.SessionSummary {
	processed := min(max(s.CurrentCardIndex, 0), len(s.Cards))
	sum := models.SessionSummary{Processed: processed}
	for _, id := range s.Cards[:processed] {
		if c, ok := resolve(id); ok && flashcard.Grade(c.Ease).Correct() {
			sum.Correct++
		}
	}
	if processed > 0 {
		sum.Accuracy = float64(sum.Correct) / float64(processed) * 100
	}
	return sum
}

// Progress returns the completed share of s as a percentage.
func Progress(s models.ReviewSession) int {
	if len(s.Cards) == 0 {
		return 0
	}
	return s.CurrentCardIndex * 100 / len(s.Cards)
}
