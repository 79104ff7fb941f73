package flashcard

import "time"

// UpdatedStreak returns the streak after a review at now, given the previous
// review date. Both dates are compared by calendar day in now's location:
//
//	no previous review          -> 1
//	previous day is today       -> currentStreak
//	previous day is yesterday   -> currentStreak + 1
//	anything else               -> 1 (a gap, or a future date from clock skew)
func UpdatedStreak(lastReviewDate *time.Time, currentStreak int, now time.Time) int {
	if lastReviewDate == nil {
		return 1
	}

	loc := now.Location()
	today := StartOfDay(now)
	last := StartOfDay(lastReviewDate.In(loc))
	yesterday := today.AddDate(0, 0, -1)

	switch {
	case last.Equal(today):
		return currentStreak
	case last.Equal(yesterday):
		return currentStreak + 1
	default:
		return 1
	}
}
