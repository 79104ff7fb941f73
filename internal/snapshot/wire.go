package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// wireLayout is how dates are written: UTC ISO-8601 with milliseconds.
const wireLayout = "2006-01-02T15:04:05.000Z07:00"

// parseLayouts are tried in order when reading a date string.
var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type envelope struct {
	State   *json.RawMessage `json:"state"`
	Version *int             `json:"version"`
}

type writeEnvelope struct {
	State   wireState `json:"state"`
	Version int       `json:"version"`
}

type wireState struct {
	Decks         []wireDeck    `json:"decks"`
	Flashcards    []wireCard    `json:"flashcards"`
	Stats         *wireStats    `json:"stats"`
	Settings      *wireSettings `json:"settings"`
	ReviewSession *wireSession  `json:"reviewSession"`
	CurrentDeck   *string       `json:"currentDeck,omitempty"`
}

type wireDeck struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   *wireTime `json:"createdAt"`
	CardsPerDay int       `json:"cardsPerDay"`
	DefaultEase int       `json:"defaultEase"`
}

type wireCard struct {
	ID           string    `json:"id"`
	DeckID       string    `json:"deckId"`
	Front        string    `json:"front"`
	Back         string    `json:"back"`
	Ease         int       `json:"ease"`
	Interval     int       `json:"interval"`
	NextReview   *wireTime `json:"nextReview"`
	LastReviewed *wireTime `json:"lastReviewed,omitempty"`
	CreatedAt    *wireTime `json:"createdAt"`
	Tags         []string  `json:"tags,omitempty"`
}

type wireStats struct {
	StreakDays         int           `json:"streakDays"`
	LastReviewDate     *wireTime     `json:"lastReviewDate"`
	CardsReviewedToday int           `json:"cardsReviewedToday"`
	TotalReviewed      int           `json:"totalReviewed"`
	History            []wireHistory `json:"history"`
}

type wireHistory struct {
	Date     string `json:"date"`
	Reviewed int    `json:"reviewed"`
	Correct  int    `json:"correct"`
}

type wireSettings struct {
	DailyCardLimit *int    `json:"dailyCardLimit"`
	NewCardLimit   *int    `json:"newCardLimit"`
	ReminderTime   *string `json:"reminderTime"`
	UserName       *string `json:"userName"`
}

type wireSession struct {
	Cards            []string `json:"cards"`
	CurrentCardIndex int      `json:"currentCardIndex"`
	ShowAnswer       bool     `json:"showAnswer"`
}

// wireTime reads a date from any of parseLayouts or from epoch milliseconds,
// and always writes wireLayout in UTC.
type wireTime struct {
	time.Time
}

func newWireTime(t time.Time) *wireTime {
	return &wireTime{Time: t}
}

func optionalWireTime(t *time.Time) *wireTime {
	if t == nil {
		return nil
	}
	return newWireTime(*t)
}

func (w wireTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.UTC().Format(wireLayout))
}

func (w *wireTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] != '"' {
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s", data)
		}
		w.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := parseTime(s)
	if err != nil {
		return err
	}
	w.Time = t
	return nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
