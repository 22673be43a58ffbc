package usecases

import (
	"log"

	"analytics-exporter/internal/core/domain"
)

const (
	DefaultRunPageLimit = 20
	MaxRunPageLimit     = 100
)

type ExportRunService struct {
	runRepo ExportRunRepository
}

func NewExportRunService(runRepo ExportRunRepository) *ExportRunService {
	return &ExportRunService{runRepo: runRepo}
}

// GetRunForOwner retrieves an export run only if it belongs to owner
func (s *ExportRunService) GetRunForOwner(runID, owner string) (domain.ExportRun, error) {
	run, err := s.runRepo.FindByID(runID)
	if err != nil {
		return domain.ExportRun{}, err
	}

	if run.Owner != owner {
		log.Printf("[DEBUG] ExportRunService - owner mismatch: run %s belongs to %s, requested by %s", runID, run.Owner, owner)
		return domain.ExportRun{}, domain.ErrExportRunNotFound
	}

	return run, nil
}

// ListRunsForOwner returns one page of owner's runs, newest first, and the total count
func (s *ExportRunService) ListRunsForOwner(owner string, offset, limit int) ([]domain.ExportRun, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultRunPageLimit
	}
	if limit > MaxRunPageLimit {
		limit = MaxRunPageLimit
	}

	return s.runRepo.FindByOwner(owner, offset, limit)
}
