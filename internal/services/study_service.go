package services

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/vytor/flashstudy/internal/errors"
	"github.com/vytor/flashstudy/internal/logger"
	"github.com/vytor/flashstudy/internal/models"
	"github.com/vytor/flashstudy/internal/repository"
	"github.com/vytor/flashstudy/internal/repository/memory"
	"github.com/vytor/flashstudy/internal/session"
	"github.com/vytor/flashstudy/internal/snapshot"
	"github.com/vytor/flashstudy/internal/stats"
)

// StudyService is the single entry point for reading and mutating the study
// state. Every mutation is saved to the snapshot slot before it returns.
type StudyService interface {
	// Load replaces the in-memory state with the stored snapshot. A malformed
	// snapshot leaves the initial state in place and returns CORRUPT_STATE.
	Load(ctx context.Context) error

	AddDeck(ctx context.Context, deck models.NewDeck) (*models.Deck, error)
	GetDeck(ctx context.Context, id string) (*models.Deck, error)
	ListDecks(ctx context.Context) []models.DeckSummary
	UpdateDeck(ctx context.Context, id string, update models.DeckUpdate) (*models.Deck, error)
	DeleteDeck(ctx context.Context, id string) (int, error)

	AddFlashcard(ctx context.Context, card models.NewFlashcard) (*models.Flashcard, error)
	GetFlashcard(ctx context.Context, id string) (*models.Flashcard, error)
	ListFlashcards(ctx context.Context, deckID string) ([]models.Flashcard, error)
	SearchFlashcards(ctx context.Context, deckID, term string) ([]models.Flashcard, error)
	DueFlashcards(ctx context.Context, deckID string) ([]models.Flashcard, error)
	UpdateFlashcard(ctx context.Context, id string, update models.FlashcardUpdate) (*models.Flashcard, error)
	DeleteFlashcard(ctx context.Context, id string) error

	StartSession(ctx context.Context, deckID string) (models.SessionView, error)
	Restart(ctx context.Context, deckID string) (models.SessionView, error)
	Session(ctx context.Context) models.SessionView
	Flip(ctx context.Context) (models.SessionView, error)
	Grade(ctx context.Context, cardID string, grade int) (*models.Flashcard, error)
	Advance(ctx context.Context) (models.SessionView, error)
	// Rate grades the active card and moves past it.
	Rate(ctx context.Context, cardID string, grade int) (models.SessionView, error)
	SetCustomReviewDate(ctx context.Context, cardID string, date time.Time) (models.SessionView, error)

	Overview(ctx context.Context, deckID string) (models.StatsOverview, error)
	Stats(ctx context.Context) models.Stats
	UpdateStats(ctx context.Context, update models.StatsUpdate) (models.Stats, error)
	Settings(ctx context.Context) models.Settings
	UpdateSettings(ctx context.Context, update models.SettingsUpdate) (models.Settings, error)
	// ResetProgress clears decks, cards, stats and the session. Settings stay.
	ResetProgress(ctx context.Context) error

	// Export returns the stored snapshot bytes and the file name to save them under.
	Export(ctx context.Context) (string, []byte, error)
	// Import validates data, replaces the stored snapshot with it and reloads.
	Import(ctx context.Context, data []byte) error
}

type studyService struct {
	mu sync.Mutex

	slots       repository.SlotRepository
	slotName    string
	codec       *snapshot.Codec
	clock       func() time.Time
	loc         *time.Location
	newID       func() string
	historyDays int

	cards       repository.CardRepository
	stats       models.Stats
	settings    models.Settings
	session     models.ReviewSession
	currentDeck string
}

// Option configures a StudyService.
type Option func(*studyService)

func WithClock(now func() time.Time) Option {
	return func(s *studyService) {
		s.clock = now
	}
}

// WithLocation sets the calendar used for "today", streaks and history keys.
func WithLocation(loc *time.Location) Option {
	return func(s *studyService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *studyService) {
		s.newID = newID
	}
}

// WithHistoryDays sets the length of the overview's review series.
func WithHistoryDays(days int) Option {
	return func(s *studyService) {
		s.historyDays = days
	}
}

// NewStudyService creates a StudyService persisting to the named slot. The
// state starts empty until Load is called.
func NewStudyService(slots repository.SlotRepository, slotName string, opts ...Option) StudyService {
	s := &studyService{
		slots:       slots,
		slotName:    slotName,
		clock:       time.Now,
		loc:         time.Local,
		historyDays: stats.DefaultHistoryDays,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.codec = snapshot.NewCodec(snapshot.WithClock(s.now))
	repoOpts := []memory.Option{memory.WithClock(s.now)}
	if s.newID != nil {
		repoOpts = append(repoOpts, memory.WithIDGenerator(s.newID))
	}
	s.cards = memory.NewCardRepository(repoOpts...)
	s.hydrate(models.InitialState())
	return s
}

func (s *studyService) now() time.Time {
	return s.clock().In(s.loc)
}

func (s *studyService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *studyService) loadLocked(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("study_service")
	log.Debug("loading snapshot: slot=%s", s.slotName)

	data, err := s.slots.Load(ctx, s.slotName)
	if stderrors.Is(err, repository.ErrCorruptSlot) {
		log.Warn("slot store is corrupt, starting fresh: %v", err)
		s.hydrate(models.InitialState())
		return errors.NewCorruptStateError(err)
	}
	if err != nil {
		log.Error("failed to load snapshot: %v", err)
		return errors.NewInternalError(err)
	}
	if data == nil {
		log.Info("no stored snapshot, starting fresh")
		s.hydrate(models.InitialState())
		return nil
	}

	state, repairs, err := s.codec.Decode(data)
	if err != nil {
		log.Warn("stored snapshot is malformed, starting fresh: %v", err)
		s.hydrate(models.InitialState())
		return errors.NewCorruptStateError(err)
	}
	for _, r := range repairs {
		log.Warn("snapshot repaired: %s", r)
	}

	s.hydrate(state)
	log.Info("snapshot loaded: decks=%d, flashcards=%d", len(state.Decks), len(state.Flashcards))
	return nil
}

func (s *studyService) hydrate(state models.AppState) {
	s.cards.Replace(state.Decks, state.Flashcards)
	s.stats = state.Stats
	s.settings = state.Settings
	s.session = state.ReviewSession
	s.currentDeck = state.CurrentDeck
}

func (s *studyService) snapshotState(ctx context.Context) models.AppState {
	return models.AppState{
		Decks:         s.cards.ListDecks(ctx),
		Flashcards:    s.cards.ListFlashcards(ctx, ""),
		Stats:         s.stats,
		Settings:      s.settings,
		ReviewSession: s.session,
		CurrentDeck:   s.currentDeck,
	}
}

// persistLocked saves the current state. On failure the in-memory change
// stays applied and an INTERNAL error is returned.
func (s *studyService) persistLocked(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("study_service")

	data, err := s.codec.Encode(s.snapshotState(ctx))
	if err != nil {
		log.Error("failed to encode snapshot: %v", err)
		return errors.NewInternalError(err)
	}
	if err := s.slots.Save(ctx, s.slotName, data); err != nil {
		log.Error("failed to save snapshot: %v", err)
		return errors.NewInternalError(err)
	}
	log.Debug("snapshot saved: slot=%s, bytes=%d", s.slotName, len(data))
	return nil
}

func (s *studyService) resolve(ctx context.Context) session.Resolver {
	return func(id string) (*models.Flashcard, bool) {
		return s.cards.GetFlashcard(ctx, id)
	}
}

func (s *studyService) viewLocked(ctx context.Context) models.SessionView {
	state := session.State(s.session)
	v := models.SessionView{
		State:      state,
		DeckID:     s.currentDeck,
		Total:      len(s.session.Cards),
		Index:      s.session.CurrentCardIndex,
		ShowAnswer: s.session.ShowAnswer,
		Progress:   session.Progress(s.session),
	}
	switch state {
	case models.SessionInProgress:
		if c, ok := session.Current(s.session, s.resolve(ctx)); ok {
			v.Current = c
		}
	case models.SessionFinished:
		sum := session.Summarize(s.session, s.resolve(ctx))
		v.Summary = &sum
	}
	return v
}

func (s *studyService) requireDeck(ctx context.Context, deckID string) error {
	if deckID == "" {
		return nil
	}
	if _, ok := s.cards.GetDeck(ctx, deckID); !ok {
		return errors.NewNotFoundError("deck", deckID)
	}
	return nil
}
