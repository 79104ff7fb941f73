package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashstudy/internal/logger"
	"github.com/vytor/flashstudy/internal/repository"
)

type slotRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSlotRepository creates a SlotRepository backed by the storage_slots table.
func NewSlotRepository(db *sql.DB) repository.SlotRepository {
	return &slotRepository{db: db, now: time.Now}
}

func (r *slotRepository) Load(ctx context.Context, name string) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("slot_repo")
	log.Debug("loading slot: name=%s", name)

	query, args, err := sqlBuilder.Select("value").
		From("storage_slots").
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("slot is empty: name=%s", name)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to load slot: %v", err)
		return nil, err
	}
	log.Debug("slot loaded: name=%s, bytes=%d", name, len(value))
	return []byte(value), nil
}

func (r *slotRepository) Save(ctx context.Context, name string, data []byte) error {
	log := logger.FromContext(ctx).WithPrefix("slot_repo")
	log.Debug("saving slot: name=%s, bytes=%d", name, len(data))

	query, args, err := sqlBuilder.Insert("storage_slots").
		Columns("name", "value", "updated_at").
		Values(name, string(data), formatTime(r.now())).
		Suffix("ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to save slot: %v", err)
		return err
	}
	return nil
}
