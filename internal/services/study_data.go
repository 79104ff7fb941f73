package services

import (
	"context"

	"github.com/vytor/flashstudy/internal/errors"
	"github.com/vytor/flashstudy/internal/logger"
	"github.com/vytor/flashstudy/internal/snapshot"
)

func (s *studyService) Export(ctx context.Context) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("study_service")

	data, err := s.slots.Load(ctx, s.slotName)
	if err != nil {
		log.Error("failed to read snapshot for export: %v", err)
		return "", nil, errors.NewInternalError(err)
	}
	if len(data) == 0 {
		return "", nil, errors.NewBadRequestError("no data to export")
	}
	name := snapshot.ExportFileName(s.clock())
	log.Info("snapshot exported: file=%s, bytes=%d", name, len(data))
	return name, data, nil
}

func (s *studyService) Import(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("study_service")

	if err := s.codec.Valid(data); err != nil {
		log.Warn("rejected import: %v", err)
		return errors.NewCorruptStateError(err)
	}
	if err := s.slots.Save(ctx, s.slotName, data); err != nil {
		log.Error("failed to store imported snapshot: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("snapshot imported: bytes=%d", len(data))
	return s.loadLocked(ctx)
}
