package flashcard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/flashstudy/internal/flashcard"
)

func TestNextInterval_Again(t *testing.T) {
	for _, interval := range []int{1, 4, 30, 365} {
		assert.Equal(t, 1, flashcard.NextInterval(flashcard.Again, interval), "again should reset interval %d to 1", interval)
	}
}

func TestNextInterval_Multipliers(t *testing.T) {
	tests := []struct {
		name     string
		grade    flashcard.Grade
		interval int
		expected int
	}{
		{"hard floors 1*1.2", flashcard.Hard, 1, 1},
		{"hard floors 4*1.2", flashcard.Hard, 4, 4},
		{"hard 5*1.2", flashcard.Hard, 5, 6},
		{"hard 10*1.2", flashcard.Hard, 10, 12},
		{"okay floors 1*1.5", flashcard.Okay, 1, 1},
		{"okay 2*1.5", flashcard.Okay, 2, 3},
		{"okay floors 3*1.5", flashcard.Okay, 3, 4},
		{"easy 1*2", flashcard.Easy, 1, 2},
		{"easy 4*2", flashcard.Easy, 4, 8},
		{"very easy floors 1*2.5", flashcard.VeryEasy, 1, 2},
		{"very easy 4*2.5", flashcard.VeryEasy, 4, 10},
		{"very easy floors 3*2.5", flashcard.VeryEasy, 3, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, flashcard.NextInterval(tt.grade, tt.interval))
		})
	}
}

func TestNextInterval_AlwaysPositiveAndMonotonic(t *testing.T) {
	for interval := 1; interval <= 400; interval++ {
		prev := 0
		for g := flashcard.Again; g <= flashcard.VeryEasy; g++ {
			next := flashcard.NextInterval(g, interval)
			assert.GreaterOrEqual(t, next, 1, "grade %d interval %d", g, interval)
			assert.GreaterOrEqual(t, next, prev, "grade %d interval %d should not shrink vs lower grade", g, interval)
			prev = next
		}
	}
}

func TestNextInterval_InvalidInput(t *testing.T) {
	assert.Equal(t, 1, flashcard.NextInterval(0, 10))
	assert.Equal(t, 1, flashcard.NextInterval(6, 10))
	assert.Equal(t, 2, flashcard.NextInterval(flashcard.Easy, 0), "non-positive interval is treated as 1")
}

func TestGrade_ValidAndCorrect(t *testing.T) {
	assert.False(t, flashcard.Grade(0).Valid())
	assert.False(t, flashcard.Grade(6).Valid())
	for g := flashcard.Again; g <= flashcard.VeryEasy; g++ {
		assert.True(t, g.Valid())
	}

	assert.False(t, flashcard.Again.Correct())
	assert.False(t, flashcard.Hard.Correct())
	assert.True(t, flashcard.Okay.Correct())
	assert.True(t, flashcard.VeryEasy.Correct())
}

func TestNextReviewDate(t *testing.T) {
	today := time.Date(2026, 3, 27, 15, 30, 0, 0, time.UTC)

	// interval 4 graded Easy -> 8 days
	next := flashcard.NextReviewDate(today, flashcard.NextInterval(flashcard.Easy, 4))

	assert.Equal(t, time.Date(2026, 4, 4, 15, 30, 0, 0, time.UTC), next)
}

func TestNextReviewDate_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 2026-03-29 is the spring-forward day in Berlin.
	today := time.Date(2026, 3, 28, 9, 0, 0, 0, loc)

	next := flashcard.NextReviewDate(today, 1)

	assert.Equal(t, 29, next.Day())
	assert.Equal(t, 9, next.Hour(), "calendar-day addition keeps wall-clock time")
}
