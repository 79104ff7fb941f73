package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vytor/flashstudy/internal/logger"
	"github.com/vytor/flashstudy/internal/repository"
)

type slotRepository struct {
	path string
}

// NewSlotRepository creates a SlotRepository that keeps every slot in one
// JSON object on disk, mapping slot names to their string values.
func NewSlotRepository(path string) repository.SlotRepository {
	return &slotRepository{path: path}
}

func (r *slotRepository) Load(ctx context.Context, name string) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("slot_repo")
	log.Debug("loading slot: name=%s, path=%s", name, r.path)

	slots, err := r.read()
	if err != nil {
		log.Error("failed to read slot file: %v", err)
		return nil, err
	}
	value, ok := slots[name]
	if !ok {
		log.Debug("slot is empty: name=%s", name)
		return nil, nil
	}
	return []byte(value), nil
}

func (r *slotRepository) Save(ctx context.Context, name string, data []byte) error {
	log := logger.FromContext(ctx).WithPrefix("slot_repo")
	log.Debug("saving slot: name=%s, bytes=%d", name, len(data))

	slots, err := r.read()
	if errors.Is(err, repository.ErrCorruptSlot) {
		backup := r.path + ".corrupt"
		log.Warn("slot file is corrupt, moving it to %s: %v", backup, err)
		if err := os.Rename(r.path, backup); err != nil {
			return fmt.Errorf("move corrupt slot file: %w", err)
		}
		slots = map[string]string{}
	} else if err != nil {
		log.Error("failed to read slot file: %v", err)
		return err
	}
	slots[name] = string(data)

	encoded, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("encode slot file: %w", err)
	}
	if err := writeAtomic(r.path, encoded); err != nil {
		log.Error("failed to write slot file: %v", err)
		return err
	}
	return nil
}

func (r *slotRepository) read() (map[string]string, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot file: %w", err)
	}
	slots := map[string]string{}
	if len(raw) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, fmt.Errorf("parse slot file %s: %w: %w", r.path, repository.ErrCorruptSlot, err)
	}
	return slots, nil
}

// writeAtomic replaces path with data so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace slot file: %w", err)
	}
	return nil
}
