// Package cli is the terminal front end of the study engine.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/flashstudy/internal/config"
	"github.com/vytor/flashstudy/internal/db"
	"github.com/vytor/flashstudy/internal/errors"
	"github.com/vytor/flashstudy/internal/logger"
	"github.com/vytor/flashstudy/internal/repository"
	"github.com/vytor/flashstudy/internal/repository/file"
	"github.com/vytor/flashstudy/internal/repository/sqlite"
	"github.com/vytor/flashstudy/internal/services"
)

// app carries what every command needs once the root pre-run has wired it.
type app struct {
	cfg   config.Config
	loc   *time.Location
	clock func() time.Time
	svc   services.StudyService
	close func() error

	flags struct {
		driver    string
		dbPath    string
		snapshot  string
		slot      string
		logLevel  string
		logFormat string
		timezone  string
	}
}

// Option configures the root command.
type Option func(*app)

// WithClock fixes the time seen by the engine.
func WithClock(now func() time.Time) Option {
	return func(a *app) {
		a.clock = now
	}
}

// NewRootCmd builds the flashstudy command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{clock: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "flashstudy",
		Short: "Flashcard study with spaced repetition",
		Long: `flashstudy keeps decks of flashcards and schedules each card for review
with a spaced repetition algorithm. Grade your recall from 1 (didn't know)
to 5 (very easy) and the card comes back when you are about to forget it.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.close != nil {
				return a.close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.driver, "driver", "", "storage driver: sqlite or file (env STORAGE_DRIVER)")
	pf.StringVar(&a.flags.dbPath, "db", "", "sqlite database path (env DB_PATH)")
	pf.StringVar(&a.flags.snapshot, "snapshot", "", "snapshot file path for the file driver (env SNAPSHOT_PATH)")
	pf.StringVar(&a.flags.slot, "slot", "", "storage slot name (env SLOT_NAME)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (env LOG_LEVEL)")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "text or json (env LOG_FORMAT)")
	pf.StringVar(&a.flags.timezone, "timezone", "", "IANA zone that defines \"today\" (env TIMEZONE)")

	root.AddCommand(
		a.deckCmd(),
		a.cardCmd(),
		a.dueCmd(),
		a.reviewCmd(),
		a.statsCmd(),
		a.settingsCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.resetCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.cfg = a.config(cmd)
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}
	a.loc = loc

	log := logger.New(
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithLevel(logger.ParseLevel(a.cfg.LogLevel)),
		logger.WithFormat(a.cfg.LogFormat),
	)
	logger.SetDefault(log)
	ctx := logger.NewContext(cmd.Context(), log)
	cmd.SetContext(ctx)

	log.Debug("storage_driver=%s", a.cfg.StorageDriver)
	log.Debug("slot_name=%s", a.cfg.SlotName)
	log.Debug("timezone=%s", loc)

	slots, closer, err := a.openSlots(ctx)
	if err != nil {
		return err
	}
	a.close = closer

	a.svc = services.NewStudyService(slots, a.cfg.SlotName,
		services.WithClock(a.clock),
		services.WithLocation(loc),
		services.WithHistoryDays(a.cfg.HistoryDays),
	)
	if err := a.svc.Load(ctx); err != nil {
		if !errors.IsCorruptState(err) {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: stored data could not be read, starting with an empty collection")
	}
	return nil
}

func (a *app) config(cmd *cobra.Command) config.Config {
	cfg := config.Load()
	pf := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if pf.Changed(name) {
			*dst = v
		}
	}
	override("driver", &cfg.StorageDriver, a.flags.driver)
	override("db", &cfg.DBPath, a.flags.dbPath)
	override("snapshot", &cfg.SnapshotPath, a.flags.snapshot)
	override("slot", &cfg.SlotName, a.flags.slot)
	override("log-level", &cfg.LogLevel, a.flags.logLevel)
	override("log-format", &cfg.LogFormat, a.flags.logFormat)
	override("timezone", &cfg.Timezone, a.flags.timezone)
	return cfg
}

func (a *app) openSlots(ctx context.Context) (repository.SlotRepository, func() error, error) {
	switch a.cfg.StorageDriver {
	case config.DriverFile:
		return file.NewSlotRepository(a.cfg.SnapshotPath), nil, nil
	default:
		database, err := db.Open(ctx, a.cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return sqlite.NewSlotRepository(database.DB), database.Close, nil
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
