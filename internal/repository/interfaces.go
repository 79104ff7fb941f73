package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/flashstudy/internal/models"
)

// CardRepository owns decks and flashcards. Listing methods return copies in
// insertion order. Updates and deletes of unknown ids are no-ops.
type CardRepository interface {
	AddDeck(ctx context.Context, deck models.NewDeck) (*models.Deck, error)
	GetDeck(ctx context.Context, id string) (*models.Deck, bool)
	ListDecks(ctx context.Context) []models.Deck
	UpdateDeck(ctx context.Context, id string, update models.DeckUpdate) error
	// DeleteDeck removes the deck and every flashcard it owns, returning the
	// number of flashcards removed.
	DeleteDeck(ctx context.Context, id string) int

	AddFlashcard(ctx context.Context, card models.NewFlashcard) (*models.Flashcard, error)
	GetFlashcard(ctx context.Context, id string) (*models.Flashcard, bool)
	// ListFlashcards returns every flashcard, or only deckID's when non-empty.
	ListFlashcards(ctx context.Context, deckID string) []models.Flashcard
	SearchFlashcards(ctx context.Context, deckID, term string) []models.Flashcard
	// DueFlashcards returns the flashcards with NextReview at or before cutoff.
	DueFlashcards(ctx context.Context, deckID string, cutoff time.Time) []models.Flashcard
	UpdateFlashcard(ctx context.Context, id string, update models.FlashcardUpdate) error
	DeleteFlashcard(ctx context.Context, id string) bool

	// Replace swaps the whole contents, used when rehydrating from a snapshot.
	Replace(decks []models.Deck, cards []models.Flashcard)
}

// ErrCorruptSlot reports a slot store whose container cannot be parsed.
var ErrCorruptSlot = errors.New("slot store is corrupt")

// SlotRepository stores opaque snapshot blobs under a name.
type SlotRepository interface {
	// Load returns nil data and a nil error when the slot is empty.
	// A store that cannot be parsed yields an error wrapping ErrCorruptSlot.
	Load(ctx context.Context, name string) ([]byte, error)
	// Save writes data under name. A corrupt store is set aside and replaced.
	Save(ctx context.Context, name string, data []byte) error
}
