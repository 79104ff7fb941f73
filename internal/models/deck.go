package models

import "time"

// Deck is a named collection of flashcards with shared scheduling defaults.
type Deck struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	CardsPerDay int       `json:"cards_per_day"`
	DefaultEase int       `json:"default_ease"`
}

// NewDeck holds the caller-supplied fields of a deck to be created.
type NewDeck struct {
	Name        string
	Description string
	CardsPerDay int
	DefaultEase int
}

// DeckUpdate is a partial update; nil fields are left untouched.
type DeckUpdate struct {
	Name        *string
	Description *string
	CardsPerDay *int
	DefaultEase *int
}

// DeckSummary pairs a deck with its card counts.
type DeckSummary struct {
	Deck
	CardCount int `json:"card_count"`
	DueToday  int `json:"due_today"`
}
