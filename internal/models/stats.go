package models

import "time"

// DayHistory is the per-calendar-day review tally. Date is YYYY-MM-DD.
type DayHistory struct {
	Date     string `json:"date"`
	Reviewed int    `json:"reviewed"`
	Correct  int    `json:"correct"`
}

type Stats struct {
	StreakDays         int          `json:"streak_days"`
	LastReviewDate     *time.Time   `json:"last_review_date,omitempty"`
	CardsReviewedToday int          `json:"cards_reviewed_today"`
	TotalReviewed      int          `json:"total_reviewed"`
	History            []DayHistory `json:"history"`
}

// StatsUpdate is a partial update; nil fields are left untouched.
type StatsUpdate struct {
	StreakDays         *int
	LastReviewDate     *time.Time
	CardsReviewedToday *int
	TotalReviewed      *int
	History            *[]DayHistory
}

// DayCount is one point of a zero-filled review series.
type DayCount struct {
	Date     string `json:"date"`
	Reviewed int    `json:"reviewed"`
	Correct  int    `json:"correct"`
}

// StatsOverview is the derived progress view shown on the stats screen.
type StatsOverview struct {
	DeckID               string        `json:"deck_id,omitempty"`
	StreakDays           int           `json:"streak_days"`
	TotalReviewed        int           `json:"total_reviewed"`
	CardsReviewedToday   int           `json:"cards_reviewed_today"`
	HistoryReviewedToday int           `json:"history_reviewed_today"`
	TotalCards           int           `json:"total_cards"`
	DueToday             int           `json:"due_today"`
	NewCards             int           `json:"new_cards"`
	KnownCards           int           `json:"known_cards"`
	UnknownCards         int           `json:"unknown_cards"`
	RetentionRate        float64       `json:"retention_rate"`
	EaseDistribution     [5]int        `json:"ease_distribution"`
	History              []DayCount    `json:"history"`
	MostDifficult        []Flashcard   `json:"most_difficult"`
	RecentlyMissed       []Flashcard   `json:"recently_missed"`
	EstimatedStudyTime   time.Duration `json:"estimated_study_time"`
	Decks                []DeckSummary `json:"decks"`
}
