package services_test

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashstudy/internal/errors"
	"github.com/vytor/flashstudy/internal/models"
	"github.com/vytor/flashstudy/internal/repository"
	"github.com/vytor/flashstudy/internal/repository/sqlite"
	"github.com/vytor/flashstudy/internal/services"
	"github.com/vytor/flashstudy/internal/testutil"
	"github.com/vytor/flashstudy/internal/testutil/mocks"
)

const slotName = "flashcard-app-storage"

type StudyServiceSuite struct {
	suite.Suite
	ctx   context.Context
	db    *sql.DB
	slots repository.SlotRepository
	now   time.Time
	seq   int
	svc   services.StudyService
}

func (s *StudyServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewTestDB(s.T())
	s.slots = sqlite.NewSlotRepository(s.db)
	s.now = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	s.seq = 0
	s.svc = s.newService(s.slots)
	s.Require().NoError(s.svc.Load(s.ctx))
}

func (s *StudyServiceSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *StudyServiceSuite) newService(slots repository.SlotRepository) services.StudyService {
	return services.NewStudyService(slots, slotName,
		services.WithClock(func() time.Time { return s.now }),
		services.WithLocation(time.UTC),
		services.WithIDGenerator(func() string {
			s.seq++
			return fmt.Sprintf("id-%d", s.seq)
		}),
	)
}

func (s *StudyServiceSuite) seedDeck(fronts ...string) (*models.Deck, []*models.Flashcard) {
	d, err := s.svc.AddDeck(s.ctx, models.NewDeck{Name: "Spanish"})
	s.Require().NoError(err)
	var cards []*models.Flashcard
	for _, f := range fronts {
		c, err := s.svc.AddFlashcard(s.ctx, models.NewFlashcard{DeckID: d.ID, Front: f, Back: f + "-back"})
		s.Require().NoError(err)
		cards = append(cards, c)
	}
	return d, cards
}

func (s *StudyServiceSuite) nextDay() {
	s.now = s.now.AddDate(0, 0, 1).Add(-time.Hour)
}

func (s *StudyServiceSuite) TestLoad_EmptySlot() {
	s.Empty(s.svc.ListDecks(s.ctx))
	s.Equal(models.DefaultSettings(), s.svc.Settings(s.ctx))
	s.Equal(models.SessionIdle, s.svc.Session(s.ctx).State)
}

func (s *StudyServiceSuite) TestStartSession_NothingDueIsIdle() {
	s.seedDeck("uno", "dos")

	view, err := s.svc.StartSession(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(models.SessionIdle, view.State)
	s.Zero(view.Total)

	_, err = s.svc.Flip(s.ctx)
	s.True(errors.IsBadRequest(err))
}

func (s *StudyServiceSuite) TestReviewFlow() {
	d, cards := s.seedDeck("uno", "dos", "tres")
	s.nextDay()

	view, err := s.svc.StartSession(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(models.SessionInProgress, view.State)
	s.Equal(3, view.Total)
	s.Equal(d.ID, view.DeckID)
	s.Require().NotNil(view.Current)
	s.Equal(cards[0].ID, view.Current.ID)

	view, err = s.svc.Flip(s.ctx)
	s.Require().NoError(err)
	s.True(view.ShowAnswer)

	view, err = s.svc.Rate(s.ctx, cards[0].ID, 4)
	s.Require().NoError(err)
	s.Equal(1, view.Index)
	s.False(view.ShowAnswer)

	graded, err := s.svc.GetFlashcard(s.ctx, cards[0].ID)
	s.Require().NoError(err)
	s.Equal(4, graded.Ease)
	s.Equal(2, graded.Interval)
	s.Equal(s.now.AddDate(0, 0, 2), graded.NextReview)
	s.Require().NotNil(graded.LastReviewed)
	s.Equal(s.now, *graded.LastReviewed)

	_, err = s.svc.Rate(s.ctx, cards[1].ID, 1)
	s.Require().NoError(err)
	view, err = s.svc.Rate(s.ctx, cards[2].ID, 5)
	s.Require().NoError(err)

	s.Equal(models.SessionFinished, view.State)
	s.Nil(view.Current)
	s.Require().NotNil(view.Summary)
	s.Equal(3, view.Summary.Processed)
	s.Equal(2, view.Summary.Correct)
	s.InDelta(66.67, view.Summary.Accuracy, 0.01)
	s.Equal(100, view.Progress)

	st := s.svc.Stats(s.ctx)
	s.Equal(3, st.TotalReviewed)
	s.Equal(3, st.CardsReviewedToday)
	s.Equal(1, st.StreakDays)
	s.Equal([]models.DayHistory{{Date: "2024-03-11", Reviewed: 3, Correct: 2}}, st.History)

	_, err = s.svc.Advance(s.ctx)
	s.True(errors.IsBadRequest(err))
}

func (s *StudyServiceSuite) TestGrade_StaysOnCardUntilAdvance() {
	_, cards := s.seedDeck("uno", "dos")
	s.nextDay()
	_, err := s.svc.StartSession(s.ctx, "")
	s.Require().NoError(err)

	c, err := s.svc.Grade(s.ctx, cards[0].ID, 3)
	s.Require().NoError(err)
	s.Equal(1, c.Interval)
	s.Equal(0, s.svc.Session(s.ctx).Index)

	view, err := s.svc.Advance(s.ctx)
	s.Require().NoError(err)
	s.Equal(cards[1].ID, view.Current.ID)
}

func (s *StudyServiceSuite) TestGrade_Rejects() {
	_, cards := s.seedDeck("uno", "dos")

	_, err := s.svc.Grade(s.ctx, cards[0].ID, 3)
	s.True(errors.IsBadRequest(err), "no session")

	s.nextDay()
	_, err = s.svc.StartSession(s.ctx, "")
	s.Require().NoError(err)

	_, err = s.svc.Grade(s.ctx, cards[0].ID, 0)
	s.True(errors.IsValidation(err))
	_, err = s.svc.Grade(s.ctx, cards[0].ID, 6)
	s.True(errors.IsValidation(err))
	_, err = s.svc.Grade(s.ctx, cards[1].ID, 3)
	s.True(errors.IsBadRequest(err), "not the active card")

	s.Zero(s.svc.Stats(s.ctx).TotalReviewed)
}

func (s *StudyServiceSuite) TestDeletedCardMidSession() {
	_, cards := s.seedDeck("uno", "dos")
	s.nextDay()
	_, err := s.svc.StartSession(s.ctx, "")
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteFlashcard(s.ctx, cards[0].ID))
	view := s.svc.Session(s.ctx)
	s.Equal(models.SessionInProgress, view.State)
	s.Nil(view.Current)

	_, err = s.svc.Rate(s.ctx, cards[0].ID, 4)
	s.True(errors.IsNotFound(err))

	view, err = s.svc.Advance(s.ctx)
	s.Require().NoError(err)
	s.Equal(cards[1].ID, view.Current.ID)
}

func (s *StudyServiceSuite) TestStartSession_DailyLimit() {
	limit := 2
	_, err := s.svc.UpdateSettings(s.ctx, models.SettingsUpdate{DailyCardLimit: &limit})
	s.Require().NoError(err)
	_, cards := s.seedDeck("a", "b", "c")
	s.nextDay()

	view, err := s.svc.StartSession(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(2, view.Total)
	s.Equal(cards[0].ID, view.Current.ID)

	due, err := s.svc.DueFlashcards(s.ctx, "")
	s.Require().NoError(err)
	s.Len(due, 3)
}

func (s *StudyServiceSuite) TestStartSession_UnknownDeck() {
	_, err := s.svc.StartSession(s.ctx, "missing")
	s.True(errors.IsNotFound(err))
}

func (s *StudyServiceSuite) TestRestartReplacesSession() {
	_, cards := s.seedDeck("a", "b")
	s.nextDay()
	_, err := s.svc.StartSession(s.ctx, "")
	s.Require().NoError(err)
	_, err = s.svc.Rate(s.ctx, cards[0].ID, 5)
	s.Require().NoError(err)

	view, err := s.svc.Restart(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(0, view.Index)
	s.Equal(1, view.Total, "graded card is no longer due")
	s.Equal(cards[1].ID, view.Current.ID)
}

func (s *StudyServiceSuite) TestSetCustomReviewDate() {
	_, cards := s.seedDeck("a", "b")
	s.nextDay()
	_, err := s.svc.StartSession(s.ctx, "")
	s.Require().NoError(err)

	date := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	view, err := s.svc.SetCustomReviewDate(s.ctx, cards[0].ID, date)
	s.Require().NoError(err)
	s.Equal(1, view.Index)

	c, err := s.svc.GetFlashcard(s.ctx, cards[0].ID)
	s.Require().NoError(err)
	s.Equal(date, c.NextReview)
	s.Equal(cards[0].Ease, c.Ease)
	s.Equal(cards[0].Interval, c.Interval)
	s.Zero(s.svc.Stats(s.ctx).TotalReviewed)

	_, err = s.svc.SetCustomReviewDate(s.ctx, cards[0].ID, date)
	s.True(errors.IsBadRequest(err))
}

func (s *StudyServiceSuite) TestStreakAcrossDays() {
	_, cards := s.seedDeck("a")
	for day := 1; day <= 3; day++ {
		s.now = time.Date(2024, 3, 10+day, 20, 0, 0, 0, time.UTC)
		one := 1
		_, err := s.svc.UpdateFlashcard(s.ctx, cards[0].ID, models.FlashcardUpdate{Interval: &one, NextReview: &s.now})
		s.Require().NoError(err)
		_, err = s.svc.StartSession(s.ctx, "")
		s.Require().NoError(err)
		_, err = s.svc.Rate(s.ctx, cards[0].ID, 3)
		s.Require().NoError(err)
	}
	st := s.svc.Stats(s.ctx)
	s.Equal(3, st.StreakDays)
	s.Len(st.History, 3)

	s.now = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	_, err := s.svc.StartSession(s.ctx, "")
	s.Require().NoError(err)
	_, err = s.svc.Rate(s.ctx, cards[0].ID, 3)
	s.Require().NoError(err)
	s.Equal(1, s.svc.Stats(s.ctx).StreakDays)
}

func (s *StudyServiceSuite) TestPersistsAcrossInstances() {
	d, cards := s.seedDeck("a", "b")
	s.nextDay()
	_, err := s.svc.StartSession(s.ctx, d.ID)
	s.Require().NoError(err)
	_, err = s.svc.Rate(s.ctx, cards[0].ID, 2)
	s.Require().NoError(err)
	_, err = s.svc.Flip(s.ctx)
	s.Require().NoError(err)

	reloaded := s.newService(s.slots)
	s.Require().NoError(reloaded.Load(s.ctx))

	s.Equal(s.svc.ListDecks(s.ctx), reloaded.ListDecks(s.ctx))
	want, _ := s.svc.ListFlashcards(s.ctx, "")
	got, _ := reloaded.ListFlashcards(s.ctx, "")
	s.Equal(want, got)
	s.Equal(s.svc.Stats(s.ctx), reloaded.Stats(s.ctx))
	s.Equal(s.svc.Session(s.ctx), reloaded.Session(s.ctx))
}

func (s *StudyServiceSuite) TestLoad_CorruptSnapshot() {
	s.Require().NoError(s.slots.Save(s.ctx, slotName, []byte("{not json")))

	svc := s.newService(s.slots)
	err := svc.Load(s.ctx)
	s.True(errors.IsCorruptState(err))
	s.Empty(svc.ListDecks(s.ctx))

	_, err = svc.AddDeck(s.ctx, models.NewDeck{Name: "fresh"})
	s.NoError(err)
}

func (s *StudyServiceSuite) TestExport() {
	emptyDB := testutil.NewTestDB(s.T())
	defer testutil.MustClose(s.T(), emptyDB)
	fresh := s.newService(sqlite.NewSlotRepository(emptyDB))
	_, _, err := fresh.Export(s.ctx)
	s.True(errors.IsBadRequest(err))

	s.seedDeck("a")
	name, data, err := s.svc.Export(s.ctx)
	s.Require().NoError(err)
	s.Equal("flashcard-data-2024-03-10.json", name)

	stored, err := s.slots.Load(s.ctx, slotName)
	s.Require().NoError(err)
	s.Equal(stored, data)
}

func (s *StudyServiceSuite) TestImport() {
	_, cards := s.seedDeck("a", "b")
	s.nextDay()
	_, err := s.svc.StartSession(s.ctx, "")
	s.Require().NoError(err)
	_, err = s.svc.Rate(s.ctx, cards[0].ID, 4)
	s.Require().NoError(err)

	graded, err := s.svc.GetFlashcard(s.ctx, cards[0].ID)
	s.Require().NoError(err)
	s.Require().NotNil(graded.LastReviewed)
	statsBefore := s.svc.Stats(s.ctx)
	s.Require().Equal(1, statsBefore.TotalReviewed)

	_, exported, err := s.svc.Export(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.ResetProgress(s.ctx))
	s.Empty(s.svc.ListDecks(s.ctx))

	err = s.svc.Import(s.ctx, []byte(`{"state":"nope"}`))
	s.True(errors.IsCorruptState(err))
	s.Empty(s.svc.ListDecks(s.ctx), "failed import leaves state untouched")

	s.Require().NoError(s.svc.Import(s.ctx, exported))
	decks := s.svc.ListDecks(s.ctx)
	s.Require().Len(decks, 1)
	s.Equal(2, decks[0].CardCount)

	restored, err := s.svc.GetFlashcard(s.ctx, cards[0].ID)
	s.Require().NoError(err)
	s.Equal(graded.Ease, restored.Ease)
	s.Equal(graded.Interval, restored.Interval)
	s.True(graded.NextReview.Equal(restored.NextReview))
	s.Require().NotNil(restored.LastReviewed)
	s.True(graded.LastReviewed.Equal(*restored.LastReviewed))
	s.True(graded.CreatedAt.Equal(restored.CreatedAt))

	statsAfter := s.svc.Stats(s.ctx)
	s.Equal(statsBefore.TotalReviewed, statsAfter.TotalReviewed)
	s.Equal(statsBefore.StreakDays, statsAfter.StreakDays)
	s.Equal(statsBefore.CardsReviewedToday, statsAfter.CardsReviewedToday)
	s.Equal(statsBefore.History, statsAfter.History)
	s.Require().NotNil(statsAfter.LastReviewDate)
	s.True(statsBefore.LastReviewDate.Equal(*statsAfter.LastReviewDate))

	stored, err := s.slots.Load(s.ctx, slotName)
	s.Require().NoError(err)
	s.Equal(exported, stored)
}

func (s *StudyServiceSuite) TestResetProgress_KeepsSettings() {
	name := "Ana"
	_, err := s.svc.UpdateSettings(s.ctx, models.SettingsUpdate{UserName: &name})
	s.Require().NoError(err)
	_, cards := s.seedDeck("a")
	s.nextDay()
	_, err = s.svc.StartSession(s.ctx, "")
	s.Require().NoError(err)
	_, err = s.svc.Rate(s.ctx, cards[0].ID, 4)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.ResetProgress(s.ctx))

	s.Empty(s.svc.ListDecks(s.ctx))
	s.Zero(s.svc.Stats(s.ctx).TotalReviewed)
	s.Equal(models.SessionIdle, s.svc.Session(s.ctx).State)
	s.Equal("Ana", s.svc.Settings(s.ctx).UserName)
}

func (s *StudyServiceSuite) TestUpdateSettings_Validation() {
	zero := 0
	negative := -1
	badTime := "7pm"
	blank := "  "
	tests := []struct {
		name   string
		update models.SettingsUpdate
	}{
		{"daily limit", models.SettingsUpdate{DailyCardLimit: &zero}},
		{"new limit", models.SettingsUpdate{NewCardLimit: &negative}},
		{"reminder", models.SettingsUpdate{ReminderTime: &badTime}},
		{"user name", models.SettingsUpdate{UserName: &blank}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.UpdateSettings(s.ctx, tt.update)
			s.True(errors.IsValidation(err))
		})
	}
	s.Equal(models.DefaultSettings(), s.svc.Settings(s.ctx))

	newLimit := 0
	reminder := "07:30"
	got, err := s.svc.UpdateSettings(s.ctx, models.SettingsUpdate{NewCardLimit: &newLimit, ReminderTime: &reminder})
	s.Require().NoError(err)
	s.Equal(0, got.NewCardLimit)
	s.Equal("07:30", got.ReminderTime)
	s.Equal(20, got.DailyCardLimit)
}

func (s *StudyServiceSuite) TestUpdateStats() {
	streak := 10
	st, err := s.svc.UpdateStats(s.ctx, models.StatsUpdate{StreakDays: &streak})
	s.Require().NoError(err)
	s.Equal(10, st.StreakDays)

	negative := -5
	_, err = s.svc.UpdateStats(s.ctx, models.StatsUpdate{TotalReviewed: &negative})
	s.True(errors.IsValidation(err))
	s.Equal(10, s.svc.Stats(s.ctx).StreakDays)

	for range 20 {
		_, err = s.svc.UpdateStats(s.ctx, models.StatsUpdate{
			StreakDays:         &negative,
			CardsReviewedToday: &negative,
			TotalReviewed:      &negative,
		})
		s.Require().Error(err)
		s.Contains(err.Error(), "streak_days")
	}
}

func (s *StudyServiceSuite) TestDecksAndCards() {
	d, _ := s.seedDeck("perro", "gato")

	summaries := s.svc.ListDecks(s.ctx)
	s.Require().Len(summaries, 1)
	s.Equal(2, summaries[0].CardCount)
	s.Equal(0, summaries[0].DueToday)

	found, err := s.svc.SearchFlashcards(s.ctx, d.ID, "PER")
	s.Require().NoError(err)
	s.Len(found, 1)

	_, err = s.svc.ListFlashcards(s.ctx, "missing")
	s.True(errors.IsNotFound(err))

	newName := "Español"
	updated, err := s.svc.UpdateDeck(s.ctx, d.ID, models.DeckUpdate{Name: &newName})
	s.Require().NoError(err)
	s.Equal("Español", updated.Name)

	before, err := s.slots.Load(s.ctx, slotName)
	s.Require().NoError(err)
	_, err = s.svc.UpdateDeck(s.ctx, "missing", models.DeckUpdate{Name: &newName})
	s.True(errors.IsNotFound(err))
	_, err = s.svc.UpdateFlashcard(s.ctx, "missing", models.FlashcardUpdate{Front: &newName})
	s.True(errors.IsNotFound(err))
	s.True(errors.IsNotFound(s.svc.DeleteFlashcard(s.ctx, "missing")))
	after, err := s.slots.Load(s.ctx, slotName)
	s.Require().NoError(err)
	s.Equal(before, after, "unknown ids leave the stored state untouched")

	removed, err := s.svc.DeleteDeck(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(2, removed)
	_, err = s.svc.GetDeck(s.ctx, d.ID)
	s.True(errors.IsNotFound(err))
	_, err = s.svc.DeleteDeck(s.ctx, d.ID)
	s.True(errors.IsNotFound(err))
}

func (s *StudyServiceSuite) TestOverview() {
	d, cards := s.seedDeck("a", "b")
	s.nextDay()
	_, err := s.svc.StartSession(s.ctx, "")
	s.Require().NoError(err)
	_, err = s.svc.Rate(s.ctx, cards[0].ID, 1)
	s.Require().NoError(err)

	ov, err := s.svc.Overview(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(2, ov.TotalCards)
	s.Equal(1, ov.NewCards)
	s.Equal(1, ov.UnknownCards)
	s.Equal(1, ov.DueToday, "the graded card moved to tomorrow")
	s.Len(ov.History, 14)
	s.Equal(1, ov.HistoryReviewedToday)
	s.Require().Len(ov.RecentlyMissed, 1)
	s.Equal(cards[0].ID, ov.RecentlyMissed[0].ID)
	s.Equal(10*time.Second, ov.EstimatedStudyTime)

	_, err = s.svc.Overview(s.ctx, "missing")
	s.True(errors.IsNotFound(err))
}

func TestStudyServiceSuite(t *testing.T) {
	suite.Run(t, new(StudyServiceSuite))
}

func TestStudyService_SaveFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	slots := new(mocks.MockSlotRepository)
	slots.On("Load", ctx, slotName).Return(nil, nil).Once()
	slots.On("Save", ctx, slotName, mock.Anything).Return(stderrors.New("disk full")).Once()

	svc := services.NewStudyService(slots, slotName, services.WithLocation(time.UTC))
	require.NoError(t, svc.Load(ctx))

	d, err := svc.AddDeck(ctx, models.NewDeck{Name: "Deck"})
	assert.Equal(t, errors.ErrCodeInternal, errors.CodeOf(err))
	require.NotNil(t, d)
	assert.Len(t, svc.ListDecks(ctx), 1)
	slots.AssertExpectations(t)
}

func TestStudyService_LoadFailure(t *testing.T) {
	ctx := context.Background()
	slots := new(mocks.MockSlotRepository)
	slots.On("Load", ctx, slotName).Return(nil, stderrors.New("locked"))

	svc := services.NewStudyService(slots, slotName)
	err := svc.Load(ctx)
	assert.Equal(t, errors.ErrCodeInternal, errors.CodeOf(err))
	assert.Empty(t, svc.ListDecks(ctx))
}

func TestStudyService_CorruptSlotStoreStartsFresh(t *testing.T) {
	ctx := context.Background()
	slots := new(mocks.MockSlotRepository)
	slots.On("Load", ctx, slotName).Return(nil, fmt.Errorf("parse: %w", repository.ErrCorruptSlot)).Once()
	slots.On("Save", ctx, slotName, mock.Anything).Return(nil).Once()

	svc := services.NewStudyService(slots, slotName, services.WithLocation(time.UTC))
	err := svc.Load(ctx)
	assert.True(t, errors.IsCorruptState(err))
	assert.Empty(t, svc.ListDecks(ctx))
	assert.Equal(t, models.DefaultSettings(), svc.Settings(ctx))

	_, err = svc.AddDeck(ctx, models.NewDeck{Name: "Deck"})
	require.NoError(t, err)
	slots.AssertExpectations(t)
}

func TestStudyService_ImportSaveFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	slots := new(mocks.MockSlotRepository)
	slots.On("Save", ctx, slotName, mock.Anything).Return(stderrors.New("read-only")).Once()

	svc := services.NewStudyService(slots, slotName)
	err := svc.Import(ctx, []byte(`{"state":{"decks":[{"id":"d","name":"D","createdAt":"2024-01-01T00:00:00.000Z","cardsPerDay":5,"defaultEase":3}]},"version":0}`))
	assert.Equal(t, errors.ErrCodeInternal, errors.CodeOf(err))
	assert.Empty(t, svc.ListDecks(ctx))
	slots.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}
