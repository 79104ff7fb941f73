// Package snapshot converts the engine state to and from the persisted
// snapshot blob: a JSON envelope {"state": ..., "version": 0} with
// camelCase fields and ISO-8601 dates.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vytor/flashstudy/internal/flashcard"
	"github.com/vytor/flashstudy/internal/models"
)

// Version is the only snapshot version this codec reads and writes.
const Version = 0

var (
	ErrMissingState       = errors.New("snapshot has no state object")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// Codec encodes and decodes snapshots.
type Codec struct {
	now func() time.Time
}

type Option func(*Codec)

// WithClock sets the time used to fill in missing creation dates.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(opts ...Option) *Codec {
	c := &Codec{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode serializes state into the snapshot envelope.
func (c *Codec) Encode(state models.AppState) ([]byte, error) {
	w := wireState{
		Decks:      make([]wireDeck, 0, len(state.Decks)),
		Flashcards: make([]wireCard, 0, len(state.Flashcards)),
	}
	for _, d := range state.Decks {
		w.Decks = append(w.Decks, wireDeck{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			CreatedAt:   newWireTime(d.CreatedAt),
			CardsPerDay: d.CardsPerDay,
			DefaultEase: d.DefaultEase,
		})
	}
	for _, f := range state.Flashcards {
		w.Flashcards = append(w.Flashcards, wireCard{
			ID:           f.ID,
			DeckID:       f.DeckID,
			Front:        f.Front,
			Back:         f.Back,
			Ease:         f.Ease,
			Interval:     f.Interval,
			NextReview:   newWireTime(f.NextReview),
			LastReviewed: optionalWireTime(f.LastReviewed),
			CreatedAt:    newWireTime(f.CreatedAt),
			Tags:         f.Tags,
		})
	}

	history := make([]wireHistory, 0, len(state.Stats.History))
	for _, h := range state.Stats.History {
		history = append(history, wireHistory(h))
	}
	w.Stats = &wireStats{
		StreakDays:         state.Stats.StreakDays,
		LastReviewDate:     optionalWireTime(state.Stats.LastReviewDate),
		CardsReviewedToday: state.Stats.CardsReviewedToday,
		TotalReviewed:      state.Stats.TotalReviewed,
		History:            history,
	}

	s := state.Settings
	w.Settings = &wireSettings{
		DailyCardLimit: &s.DailyCardLimit,
		NewCardLimit:   &s.NewCardLimit,
		ReminderTime:   &s.ReminderTime,
		UserName:       &s.UserName,
	}

	cards := state.ReviewSession.Cards
	if cards == nil {
		cards = []string{}
	}
	w.ReviewSession = &wireSession{
		Cards:            cards,
		CurrentCardIndex: state.ReviewSession.CurrentCardIndex,
		ShowAnswer:       state.ReviewSession.ShowAnswer,
	}
	if state.CurrentDeck != "" {
		deck := state.CurrentDeck
		w.CurrentDeck = &deck
	}

	data, err := json.Marshal(writeEnvelope{State: w, Version: Version})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot, accepting either the envelope or a bare state
// object. Out-of-range values are repaired and each repair is described in
// the returned slice; structurally broken input is an error.
func (c *Codec) Decode(data []byte) (models.AppState, []string, error) {
	raw, err := stateObject(data)
	if err != nil {
		return models.AppState{}, nil, err
	}

	var w wireState
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.AppState{}, nil, fmt.Errorf("decode snapshot state: %w", err)
	}

	r := &repairer{now: c.now()}
	state := models.InitialState()
	state.Decks = r.decks(w.Decks)
	state.Flashcards = r.cards(w.Flashcards, state.Decks)
	if w.Stats != nil {
		state.Stats = r.stats(*w.Stats)
	}
	if w.Settings != nil {
		state.Settings = r.settings(*w.Settings)
	}
	if w.ReviewSession != nil {
		state.ReviewSession = r.session(*w.ReviewSession)
	}
	if w.CurrentDeck != nil {
		state.CurrentDeck = *w.CurrentDeck
	}
	return state, r.notes, nil
}

// Valid reports whether data would decode.
func (c *Codec) Valid(data []byte) error {
	_, _, err := c.Decode(data)
	return err
}

func stateObject(data []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if env.State != nil {
		if env.Version != nil && *env.Version != Version {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, *env.Version)
		}
		return *env.State, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	for _, k := range []string{"decks", "flashcards", "stats", "settings"} {
		if _, ok := keys[k]; ok {
			return data, nil
		}
	}
	return nil, ErrMissingState
}

// repairer converts wire records to models, clamping invalid values.
type repairer struct {
	now   time.Time
	notes []string
}

func (r *repairer) note(format string, args ...any) {
	r.notes = append(r.notes, fmt.Sprintf(format, args...))
}

func (r *repairer) decks(in []wireDeck) []models.Deck {
	out := make([]models.Deck, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, d := range in {
		if d.ID == "" || seen[d.ID] {
			r.note("dropped deck with missing or duplicate id %q", d.ID)
			continue
		}
		seen[d.ID] = true

		deck := models.Deck{
			ID:          d.ID,
			Name:        strings.TrimSpace(d.Name),
			Description: d.Description,
			CreatedAt:   r.timeOr(d.CreatedAt, r.now, "deck %s createdAt", d.ID),
			CardsPerDay: d.CardsPerDay,
			DefaultEase: d.DefaultEase,
		}
		if deck.Name == "" {
			deck.Name = "Untitled deck"
			r.note("deck %s had an empty name", d.ID)
		}
		if deck.CardsPerDay < 1 {
			deck.CardsPerDay = models.DefaultSettings().DailyCardLimit
			r.note("deck %s cardsPerDay %d reset to %d", d.ID, d.CardsPerDay, deck.CardsPerDay)
		}
		if !validEase(deck.DefaultEase) {
			deck.DefaultEase = models.DefaultEase
			r.note("deck %s defaultEase %d reset to %d", d.ID, d.DefaultEase, models.DefaultEase)
		}
		out = append(out, deck)
	}
	return out
}

func (r *repairer) cards(in []wireCard, decks []models.Deck) []models.Flashcard {
	live := make(map[string]bool, len(decks))
	for _, d := range decks {
		live[d.ID] = true
	}

	out := make([]models.Flashcard, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, w := range in {
		if w.ID == "" || seen[w.ID] {
			r.note("dropped flashcard with missing or duplicate id %q", w.ID)
			continue
		}
		if !live[w.DeckID] {
			r.note("dropped flashcard %s of missing deck %q", w.ID, w.DeckID)
			continue
		}
		seen[w.ID] = true

		created := r.timeOr(w.CreatedAt, r.now, "flashcard %s createdAt", w.ID)
		card := models.Flashcard{
			ID:         w.ID,
			DeckID:     w.DeckID,
			Front:      w.Front,
			Back:       w.Back,
			Ease:       w.Ease,
			Interval:   w.Interval,
			NextReview: r.timeOr(w.NextReview, created.AddDate(0, 0, 1), "flashcard %s nextReview", w.ID),
			CreatedAt:  created,
			Tags:       models.NormalizeTags(w.Tags),
		}
		if w.LastReviewed != nil && !w.LastReviewed.IsZero() {
			last := w.LastReviewed.Time
			card.LastReviewed = &last
		}
		if card.Interval < 1 {
			r.note("flashcard %s interval %d reset to 1", w.ID, card.Interval)
			card.Interval = models.InitialInterval
		}
		if !validEase(card.Ease) {
			r.note("flashcard %s ease %d reset to %d", w.ID, card.Ease, models.DefaultEase)
			card.Ease = models.DefaultEase
		}
		out = append(out, card)
	}
	return out
}

func (r *repairer) stats(w wireStats) models.Stats {
	s := models.Stats{
		StreakDays:         nonNegative(w.StreakDays),
		CardsReviewedToday: nonNegative(w.CardsReviewedToday),
		TotalReviewed:      nonNegative(w.TotalReviewed),
		History:            []models.DayHistory{},
	}
	if w.LastReviewDate != nil && !w.LastReviewDate.IsZero() {
		last := w.LastReviewDate.Time
		s.LastReviewDate = &last
	}

	index := make(map[string]int, len(w.History))
	for _, h := range w.History {
		day, err := time.Parse(flashcard.DateKeyLayout, h.Date)
		if err != nil {
			r.note("dropped history record with date %q", h.Date)
			continue
		}
		key := flashcard.DateKey(day)
		reviewed := nonNegative(h.Reviewed)
		correct := min(nonNegative(h.Correct), reviewed)
		// at most one record per day
		if i, ok := index[key]; ok {
			s.History[i].Reviewed += reviewed
			s.History[i].Correct += correct
			r.note("merged duplicate history record for %s", key)
			continue
		}
		index[key] = len(s.History)
		s.History = append(s.History, models.DayHistory{Date: key, Reviewed: reviewed, Correct: correct})
	}
	return s
}

func (r *repairer) settings(w wireSettings) models.Settings {
	s := models.DefaultSettings()
	if w.DailyCardLimit != nil {
		if *w.DailyCardLimit >= 1 {
			s.DailyCardLimit = *w.DailyCardLimit
		} else {
			r.note("dailyCardLimit %d reset to default", *w.DailyCardLimit)
		}
	}
	if w.NewCardLimit != nil {
		if *w.NewCardLimit >= 0 {
			s.NewCardLimit = *w.NewCardLimit
		} else {
			r.note("newCardLimit %d reset to default", *w.NewCardLimit)
		}
	}
	if w.ReminderTime != nil {
		if models.ValidReminderTime(*w.ReminderTime) {
			s.ReminderTime = *w.ReminderTime
		} else {
			r.note("reminderTime %q reset to default", *w.ReminderTime)
		}
	}
	if w.UserName != nil {
		if name := strings.TrimSpace(*w.UserName); name != "" {
			s.UserName = name
		} else {
			r.note("empty userName reset to default")
		}
	}
	return s
}

func (r *repairer) session(w wireSession) models.ReviewSession {
	s := models.ReviewSession{
		Cards:            []string{},
		CurrentCardIndex: w.CurrentCardIndex,
		ShowAnswer:       w.ShowAnswer,
	}
	for _, id := range w.Cards {
		if id != "" {
			s.Cards = append(s.Cards, id)
		}
	}
	if s.CurrentCardIndex < 0 || s.CurrentCardIndex > len(s.Cards) {
		clamped := max(0, min(s.CurrentCardIndex, len(s.Cards)))
		r.note("session index %d clamped to %d", s.CurrentCardIndex, clamped)
		s.CurrentCardIndex = clamped
	}
	if s.CurrentCardIndex == len(s.Cards) {
		s.ShowAnswer = false
	}
	return s
}

func (r *repairer) timeOr(w *wireTime, fallback time.Time, what string, args ...any) time.Time {
	if w == nil || w.IsZero() {
		r.note("missing "+what, args...)
		return fallback
	}
	return w.Time
}

func validEase(e int) bool {
	return e >= models.MinEase && e <= models.MaxEase
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
