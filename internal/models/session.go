package models

// SessionState is the phase of the review session.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionInProgress
	SessionFinished
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionInProgress:
		return "in_progress"
	case SessionFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ReviewSession references flashcards by id only; readers re-resolve ids
// against the card repository.
type ReviewSession struct {
	Cards            []string `json:"cards"`
	CurrentCardIndex int      `json:"current_card_index"`
	ShowAnswer       bool     `json:"show_answer"`
}

// SessionSummary is reported once a session is finished.
type SessionSummary struct {
	Processed int     `json:"processed"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
}

// SessionView is a read-only snapshot of the session for rendering.
type SessionView struct {
	State      SessionState    `json:"state"`
	DeckID     string          `json:"deck_id,omitempty"`
	Total      int             `json:"total"`
	Index      int             `json:"index"`
	ShowAnswer bool            `json:"show_answer"`
	Progress   int             `json:"progress"`
	Current    *Flashcard      `json:"current,omitempty"`
	Summary    *SessionSummary `json:"summary,omitempty"`
}
