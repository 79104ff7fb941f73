package models

import (
	"strings"
	"time"
)

// Defaults applied to new flashcards.
const (
	DefaultEase     = 3
	InitialInterval = 1
	MinEase         = 1
	MaxEase         = 5
)

type Flashcard struct {
	ID           string     `json:"id"`
	DeckID       string     `json:"deck_id"`
	Front        string     `json:"front"`
	Back         string     `json:"back"`
	Ease         int        `json:"ease"`
	Interval     int        `json:"interval"`
	NextReview   time.Time  `json:"next_review"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	Tags         []string   `json:"tags,omitempty"`
}

// Reviewed reports whether the card has been graded at least once.
func (f Flashcard) Reviewed() bool {
	return f.LastReviewed != nil
}

// NewFlashcard holds the caller-supplied fields of a flashcard to be created.
// A zero Ease means "use the deck default".
type NewFlashcard struct {
	DeckID string
	Front  string
	Back   string
	Ease   int
	Tags   []string
}

// FlashcardUpdate is a partial update; nil fields are left untouched.
type FlashcardUpdate struct {
	DeckID       *string
	Front        *string
	Back         *string
	Ease         *int
	Interval     *int
	NextReview   *time.Time
	LastReviewed *time.Time
	Tags         *[]string
}

// NormalizeTags trims tags, drops empty ones and duplicates, keeping order.
// It returns nil when nothing remains.
func NormalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
