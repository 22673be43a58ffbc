package storage

import (
	"sort"
	"sync"

	"analytics-exporter/internal/core/domain"
)

type MemoryExportRunRepository struct {
	runs map[string]domain.ExportRun
	mu   sync.RWMutex
}

func NewMemoryExportRunRepository() *MemoryExportRunRepository {
	return &MemoryExportRunRepository{
		runs: make(map[string]domain.ExportRun),
	}
}

func (r *MemoryExportRunRepository) Save(run domain.ExportRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run.Metrics = append([]domain.MetricKey(nil), run.Metrics...)
	r.runs[run.ID] = run
	return nil
}

func (r *MemoryExportRunRepository) FindByID(id string) (domain.ExportRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[id]
	if !exists {
		return domain.ExportRun{}, domain.ErrExportRunNotFound
	}

	return run, nil
}

func (r *MemoryExportRunRepository) FindByOwner(owner string, offset, limit int) ([]domain.ExportRun, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]domain.ExportRun, 0)
	for _, run := range r.runs {
		if run.Owner == owner {
			runs = append(runs, run)
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartTime.Equal(runs[j].StartTime) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].StartTime.After(runs[j].StartTime)
	})

	total := len(runs)
	if offset >= total {
		return []domain.ExportRun{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return runs[offset:end], total, nil
}

func (r *MemoryExportRunRepository) Close() error {
	return nil
}
