package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/flashstudy/internal/errors"
	"github.com/vytor/flashstudy/internal/logger"
	"github.com/vytor/flashstudy/internal/models"
	"github.com/vytor/flashstudy/internal/repository"
)

// DefaultCardsPerDay is applied to decks created without a daily cap.
const DefaultCardsPerDay = 20

type cardRepository struct {
	decks []models.Deck
	cards []models.Flashcard
	now   func() time.Time
	newID func() string
}

// Option configures the in-memory repository.
type Option func(*cardRepository)

// WithClock overrides the time source used for createdAt and nextReview.
func WithClock(now func() time.Time) Option {
	return func(r *cardRepository) {
		r.now = now
	}
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(newID func() string) Option {
	return func(r *cardRepository) {
		r.newID = newID
	}
}

// NewCardRepository creates an empty in-memory CardRepository. It is not
// safe for concurrent use; the owning service serializes access.
func NewCardRepository(opts ...Option) repository.CardRepository {
	r := &cardRepository{
		decks: []models.Deck{},
		cards: []models.Flashcard{},
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *cardRepository) AddDeck(ctx context.Context, d models.NewDeck) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "must not be empty")
	}
	cardsPerDay := d.CardsPerDay
	if cardsPerDay == 0 {
		cardsPerDay = DefaultCardsPerDay
	}
	if cardsPerDay < 1 {
		return nil, errors.NewValidationError("cards_per_day", "must be a positive integer")
	}
	ease := d.DefaultEase
	if ease == 0 {
		ease = models.DefaultEase
	}
	if !validEase(ease) {
		return nil, errors.NewValidationError("default_ease", "must be between 1 and 5")
	}

	deck := models.Deck{
		ID:          r.newID(),
		Name:        name,
		Description: strings.TrimSpace(d.Description),
		CreatedAt:   r.now(),
		CardsPerDay: cardsPerDay,
		DefaultEase: ease,
	}
	r.decks = append(r.decks, deck)
	log.Debug("deck added: id=%s, name=%q", deck.ID, deck.Name)
	return &deck, nil
}

func (r *cardRepository) GetDeck(ctx context.Context, id string) (*models.Deck, bool) {
	i := r.deckIndex(id)
	if i < 0 {
		return nil, false
	}
	d := r.decks[i]
	return &d, true
}

func (r *cardRepository) ListDecks(ctx context.Context) []models.Deck {
	out := make([]models.Deck, len(r.decks))
	copy(out, r.decks)
	return out
}

func (r *cardRepository) UpdateDeck(ctx context.Context, id string, u models.DeckUpdate) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	i := r.deckIndex(id)
	if i < 0 {
		log.Debug("update of unknown deck ignored: id=%s", id)
		return nil
	}

	d := r.decks[i]
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return errors.NewValidationError("name", "must not be empty")
		}
		d.Name = name
	}
	if u.Description != nil {
		d.Description = strings.TrimSpace(*u.Description)
	}
	if u.CardsPerDay != nil {
		if *u.CardsPerDay < 1 {
			return errors.NewValidationError("cards_per_day", "must be a positive integer")
		}
		d.CardsPerDay = *u.CardsPerDay
	}
	if u.DefaultEase != nil {
		if !validEase(*u.DefaultEase) {
			return errors.NewValidationError("default_ease", "must be between 1 and 5")
		}
		d.DefaultEase = *u.DefaultEase
	}

	r.decks[i] = d
	log.Debug("deck updated: id=%s", id)
	return nil
}

func (r *cardRepository) DeleteDeck(ctx context.Context, id string) int {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	i := r.deckIndex(id)
	if i < 0 {
		log.Debug("delete of unknown deck ignored: id=%s", id)
		return 0
	}

	kept := make([]models.Flashcard, 0, len(r.cards))
	for _, c := range r.cards {
		if c.DeckID != id {
			kept = append(kept, c)
		}
	}
	removed := len(r.cards) - len(kept)

	r.decks = append(r.decks[:i:i], r.decks[i+1:]...)
	r.cards = kept
	log.Debug("deck deleted: id=%s, cascaded_cards=%d", id, removed)
	return removed
}

func (r *cardRepository) AddFlashcard(ctx context.Context, c models.NewFlashcard) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	di := r.deckIndex(c.DeckID)
	if di < 0 {
		return nil, errors.NewNotFoundError("deck", c.DeckID)
	}
	front := strings.TrimSpace(c.Front)
	if front == "" {
		return nil, errors.NewValidationError("front", "must not be empty")
	}
	back := strings.TrimSpace(c.Back)
	if back == "" {
		return nil, errors.NewValidationError("back", "must not be empty")
	}

	ease := c.Ease
	if ease == 0 {
		ease = r.decks[di].DefaultEase
		if !validEase(ease) {
			ease = models.DefaultEase
		}
	}
	if !validEase(ease) {
		return nil, errors.NewValidationError("ease", "must be between 1 and 5")
	}

	now := r.now()
	card := models.Flashcard{
		ID:         r.newID(),
		DeckID:     c.DeckID,
		Front:      front,
		Back:       back,
		Ease:       ease,
		Interval:   models.InitialInterval,
		NextReview: now.AddDate(0, 0, 1),
		CreatedAt:  now,
		Tags:       models.NormalizeTags(c.Tags),
	}
	r.cards = append(r.cards, card)
	log.Debug("flashcard added: id=%s, deck_id=%s", card.ID, card.DeckID)
	return cloneCard(card), nil
}

func (r *cardRepository) GetFlashcard(ctx context.Context, id string) (*models.Flashcard, bool) {
	i := r.cardIndex(id)
	if i < 0 {
		return nil, false
	}
	return cloneCard(r.cards[i]), true
}

func (r *cardRepository) ListFlashcards(ctx context.Context, deckID string) []models.Flashcard {
	return r.filter(func(c models.Flashcard) bool {
		return deckID == "" || c.DeckID == deckID
	})
}

func (r *cardRepository) SearchFlashcards(ctx context.Context, deckID, term string) []models.Flashcard {
	needle := strings.ToLower(strings.TrimSpace(term))
	return r.filter(func(c models.Flashcard) bool {
		if deckID != "" && c.DeckID != deckID {
			return false
		}
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(c.Front), needle) ||
			strings.Contains(strings.ToLower(c.Back), needle)
	})
}

func (r *cardRepository) DueFlashcards(ctx context.Context, deckID string, cutoff time.Time) []models.Flashcard {
	return r.filter(func(c models.Flashcard) bool {
		if deckID != "" && c.DeckID != deckID {
			return false
		}
		return !c.NextReview.After(cutoff)
	})
}

func (r *cardRepository) UpdateFlashcard(ctx context.Context, id string, u models.FlashcardUpdate) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	i := r.cardIndex(id)
	if i < 0 {
		log.Debug("update of unknown flashcard ignored: id=%s", id)
		return nil
	}

	c := *cloneCard(r.cards[i])
	if u.DeckID != nil {
		if r.deckIndex(*u.DeckID) < 0 {
			return errors.NewNotFoundError("deck", *u.DeckID)
		}
		c.DeckID = *u.DeckID
	}
	if u.Front != nil {
		front := strings.TrimSpace(*u.Front)
		if front == "" {
			return errors.NewValidationError("front", "must not be empty")
		}
		c.Front = front
	}
	if u.Back != nil {
		back := strings.TrimSpace(*u.Back)
		if back == "" {
			return errors.NewValidationError("back", "must not be empty")
		}
		c.Back = back
	}
	if u.Ease != nil {
		if !validEase(*u.Ease) {
			return errors.NewValidationError("ease", "must be between 1 and 5")
		}
		c.Ease = *u.Ease
	}
	if u.Interval != nil {
		if *u.Interval < 1 {
			return errors.NewValidationError("interval", "must be at least 1 day")
		}
		c.Interval = *u.Interval
	}
	if u.NextReview != nil {
		next := *u.NextReview
		// nextReview never precedes createdAt
		if next.Before(c.CreatedAt) {
			log.Debug("next review clamped to creation time: id=%s", id)
			next = c.CreatedAt
		}
		c.NextReview = next
	}
	if u.LastReviewed != nil {
		last := *u.LastReviewed
		c.LastReviewed = &last
	}
	if u.Tags != nil {
		c.Tags = models.NormalizeTags(*u.Tags)
	}

	r.cards[i] = c
	log.Debug("flashcard updated: id=%s, ease=%d, interval=%d", id, c.Ease, c.Interval)
	return nil
}

func (r *cardRepository) DeleteFlashcard(ctx context.Context, id string) bool {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	i := r.cardIndex(id)
	if i < 0 {
		log.Debug("delete of unknown flashcard ignored: id=%s", id)
		return false
	}
	r.cards = append(r.cards[:i:i], r.cards[i+1:]...)
	log.Debug("flashcard deleted: id=%s", id)
	return true
}

func (r *cardRepository) Replace(decks []models.Deck, cards []models.Flashcard) {
	r.decks = make([]models.Deck, len(decks))
	copy(r.decks, decks)
	r.cards = make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		r.cards = append(r.cards, *cloneCard(c))
	}
}

func (r *cardRepository) deckIndex(id string) int {
	for i := range r.decks {
		if r.decks[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *cardRepository) cardIndex(id string) int {
	for i := range r.cards {
		if r.cards[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *cardRepository) filter(keep func(models.Flashcard) bool) []models.Flashcard {
	out := []models.Flashcard{}
	for _, c := range r.cards {
		if keep(c) {
			out = append(out, *cloneCard(c))
		}
	}
	return out
}

func validEase(e int) bool {
	return e >= models.MinEase && e <= models.MaxEase
}

func cloneCard(c models.Flashcard) *models.Flashcard {
	if c.LastReviewed != nil {
		last := *c.LastReviewed
		c.LastReviewed = &last
	}
	if c.Tags != nil {
		c.Tags = append([]string(nil), c.Tags...)
	}
	return &c
}
