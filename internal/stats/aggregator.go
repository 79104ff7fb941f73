// Package stats records review events and derives the progress overview.
package stats

import (
	"sort"
	"time"

	"github.com/vytor/flashstudy/internal/flashcard"
	"github.com/vytor/flashstudy/internal/models"
)

const (
	// DefaultHistoryDays is the length of the overview's day series.
	DefaultHistoryDays = 14
	// SecondsPerReview drives the study time estimate.
	SecondsPerReview = 10
	listLimit        = 5
)

// RecordReview returns s updated for one grading event at now. The streak
// is computed from the review date that preceded this one.
func RecordReview(s models.Stats, grade flashcard.Grade, now time.Time) models.Stats {
	out := s
	out.CardsReviewedToday++
	out.TotalReviewed++
	out.StreakDays = flashcard.UpdatedStreak(s.LastReviewDate, s.StreakDays, now)
	last := now
	out.LastReviewDate = &last
	out.History = upsertDay(s.History, flashcard.DateKey(now), grade.Correct())
	return out
}

func upsertDay(history []models.DayHistory, key string, correct bool) []models.DayHistory {
	out := make([]models.DayHistory, len(history), len(history)+1)
	copy(out, history)

	inc := 0
	if correct {
		inc = 1
	}
	for i := range out {
		if out[i].Date == key {
			out[i].Reviewed++
			out[i].Correct += inc
			return out
		}
	}
	return append(out, models.DayHistory{Date: key, Reviewed: 1, Correct: inc})
}

// ApplyUpdate merges the non-nil fields of u into s.
func ApplyUpdate(s models.Stats, u models.StatsUpdate) models.Stats {
	if u.StreakDays != nil {
		s.StreakDays = *u.StreakDays
	}
	if u.LastReviewDate != nil {
		last := *u.LastReviewDate
		s.LastReviewDate = &last
	}
	if u.CardsReviewedToday != nil {
		s.CardsReviewedToday = *u.CardsReviewedToday
	}
	if u.TotalReviewed != nil {
		s.TotalReviewed = *u.TotalReviewed
	}
	if u.History != nil {
		s.History = append([]models.DayHistory{}, (*u.History)...)
	}
	return s
}

// Input is everything Compute reads.
type Input struct {
	Stats  models.Stats
	Decks  []models.Deck
	Cards  []models.Flashcard
	DeckID string
	// Now fixes both "today" and the calendar used for day keys.
	Now         time.Time
	HistoryDays int
}

// Compute derives the overview, restricted to DeckID when it is set. The
// counters of Stats are global and never filtered.
func Compute(in Input) models.StatsOverview {
	days := in.HistoryDays
	if days < 1 {
		days = DefaultHistoryDays
	}
	endOfToday := flashcard.EndOfDay(in.Now)
	todayKey := flashcard.DateKey(in.Now)

	ov := models.StatsOverview{
		DeckID:             in.DeckID,
		StreakDays:         in.Stats.StreakDays,
		TotalReviewed:      in.Stats.TotalReviewed,
		CardsReviewedToday: in.Stats.CardsReviewedToday,
		EstimatedStudyTime: time.Duration(in.Stats.TotalReviewed*SecondsPerReview) * time.Second,
		MostDifficult:      []models.Flashcard{},
		RecentlyMissed:     []models.Flashcard{},
		Decks:              []models.DeckSummary{},
	}

	var reviewed []models.Flashcard
	for _, c := range in.Cards {
		if in.DeckID != "" && c.DeckID != in.DeckID {
			continue
		}
		ov.TotalCards++
		if !c.NextReview.After(endOfToday) {
			ov.DueToday++
		}
		if !c.Reviewed() {
			ov.NewCards++
			continue
		}
		reviewed = append(reviewed, c)
		if flashcard.Grade(c.Ease).Correct() {
			ov.KnownCards++
		} else {
			ov.UnknownCards++
			if len(ov.RecentlyMissed) < listLimit {
				ov.RecentlyMissed = append(ov.RecentlyMissed, c)
			}
		}
		if c.Ease >= models.MinEase && c.Ease <= models.MaxEase {
			ov.EaseDistribution[c.Ease-1]++
		}
	}
	if len(reviewed) > 0 {
		ov.RetentionRate = float64(ov.KnownCards) / float64(len(reviewed)) * 100
	}

	sort.SliceStable(reviewed, func(i, j int) bool { return reviewed[i].Ease < reviewed[j].Ease })
	if len(reviewed) > listLimit {
		reviewed = reviewed[:listLimit]
	}
	ov.MostDifficult = append(ov.MostDifficult, reviewed...)

	ov.History = Series(in.Stats.History, in.Now, days)
	for _, h := range in.Stats.History {
		if h.Date == todayKey {
			ov.HistoryReviewedToday = h.Reviewed
		}
	}

	for _, d := range in.Decks {
		if in.DeckID != "" && d.ID != in.DeckID {
			continue
		}
		ov.Decks = append(ov.Decks, Summarize(d, in.Cards, endOfToday))
	}
	return ov
}

// Series returns the last days calendar days ending today, oldest first,
// with zero counts for days without history.
func Series(history []models.DayHistory, now time.Time, days int) []models.DayCount {
	byDate := make(map[string]models.DayHistory, len(history))
	for _, h := range history {
		byDate[h.Date] = h
	}

	today := flashcard.StartOfDay(now)
	out := make([]models.DayCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := flashcard.DateKey(today.AddDate(0, 0, -i))
		h := byDate[key]
		out = append(out, models.DayCount{Date: key, Reviewed: h.Reviewed, Correct: h.Correct})
	}
	return out
}

// Summarize counts the cards of deck d and how many are due by cutoff.
func Summarize(d models.Deck, cards []models.Flashcard, cutoff time.Time) models.DeckSummary {
	sum := models.DeckSummary{Deck: d}
	for _, c := range cards {
		if c.DeckID != d.ID {
			continue
		}
		sum.CardCount++
		if !c.NextReview.After(cutoff) {
			sum.DueToday++
		}
	}
	return sum
}
