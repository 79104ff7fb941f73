package flashcard

import (
	"fmt"
	"time"
)

// Grade is the 1-5 recall rating given during review. It doubles as the
// card's last known ease.
type Grade int

const (
	Again    Grade = 1 // didn't know
	Hard     Grade = 2
	Okay     Grade = 3
	Easy     Grade = 4
	VeryEasy Grade = 5
)

// CorrectThreshold is the lowest grade counted as a correct answer.
const CorrectThreshold = Okay

// Valid reports whether g is within 1-5.
func (g Grade) Valid() bool {
	return g >= Again && g <= VeryEasy
}

// Correct reports whether g counts as a correct answer.
func (g Grade) Correct() bool {
	return g >= CorrectThreshold
}

func (g Grade) String() string {
	switch g {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Okay:
		return "okay"
	case Easy:
		return "easy"
	case VeryEasy:
		return "very easy"
	default:
		return fmt.Sprintf("grade(%d)", int(g))
	}
}

// multipliers maps a passing grade to its interval growth factor.
var multipliers = map[Grade]float64{
	Hard:     1.2,
	Okay:     1.5,
	Easy:     2.0,
	VeryEasy: 2.5,
}

// NextInterval returns the number of days until the next review after a card
// with currentInterval days is graded g. Again resets to one day; the other
// grades scale the interval and floor it, never going below one day.
// Callers must reject invalid grades; an invalid grade yields 1.
func NextInterval(g Grade, currentInterval int) int {
	if currentInterval < 1 {
		currentInterval = 1
	}
	m, ok := multipliers[g]
	if !ok {
		return 1
	}
	next := int(float64(currentInterval) * m)
	if next < 1 {
		return 1
	}
	return next
}

// NextReviewDate adds days calendar days to today, keeping its time of day.
func NextReviewDate(today time.Time, days int) time.Time {
	return today.AddDate(0, 0, days)
}
