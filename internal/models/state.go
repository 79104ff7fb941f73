package models

// AppState is the whole persisted engine state.
type AppState struct {
	Decks         []Deck        `json:"decks"`
	Flashcards    []Flashcard   `json:"flashcards"`
	Stats         Stats         `json:"stats"`
	Settings      Settings      `json:"settings"`
	ReviewSession ReviewSession `json:"review_session"`
	CurrentDeck   string        `json:"current_deck,omitempty"`
}

// InitialState returns the empty state of a fresh install.
func InitialState() AppState {
	return AppState{
		Decks:      []Deck{},
		Flashcards: []Flashcard{},
		Stats: Stats{
			History: []DayHistory{},
		},
		Settings: DefaultSettings(),
		ReviewSession: ReviewSession{
			Cards: []string{},
		},
	}
}
