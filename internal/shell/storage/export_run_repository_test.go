package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"analytics-exporter/internal/core/domain"
	"analytics-exporter/internal/core/usecases"
)

var runStart = time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

func newSQLiteRepo(t *testing.T) *SQLExportRunRepository {
	t.Helper()
	repo, err := NewSQLiteExportRunRepository(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Failed to create SQLite repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func repositories(t *testing.T) map[string]usecases.ExportRunRepository {
	return map[string]usecases.ExportRunRepository{
		"memory": NewMemoryExportRunRepository(),
		"sqlite": newSQLiteRepo(t),
	}
}

func TestExportRunRepositorySaveAndFind(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			run := domain.NewExportRun("run-1", "org-1/alice", domain.FormatCSV,
				[]domain.MetricKey{domain.MetricRevenue, domain.MetricUsers}, runStart)

			if err := repo.Save(run); err != nil {
				t.Fatalf("Failed to save run: %v", err)
			}

			found, err := repo.FindByID("run-1")
			if err != nil {
				t.Fatalf("Failed to find run: %v", err)
			}
			if found.Owner != "org-1/alice" || found.Format != domain.FormatCSV {
				t.Errorf("Unexpected run %+v", found)
			}
			if found.Status != domain.RunStatusRunning {
				t.Errorf("Expected running, got %s", found.Status)
			}
			if len(found.Metrics) != 2 || found.Metrics[0] != domain.MetricRevenue || found.Metrics[1] != domain.MetricUsers {
				t.Errorf("Expected metrics [revenue users], got %v", found.Metrics)
			}
			if !found.StartTime.Equal(runStart) {
				t.Errorf("Expected start %v, got %v", runStart, found.StartTime)
			}
			if found.EndTime != nil || found.Filename != nil {
				t.Error("Running run should have no end time or filename")
			}

			completed := run.WithCompleted("analytics-export-2025-03-14.csv", runStart.Add(2*time.Second))
			if err := repo.Save(completed); err != nil {
				t.Fatalf("Failed to update run: %v", err)
			}

			found, err = repo.FindByID("run-1")
			if err != nil {
				t.Fatalf("Failed to find run: %v", err)
			}
			if found.Status != domain.RunStatusCompleted {
				t.Errorf("Expected completed, got %s", found.Status)
			}
			if found.Filename == nil || *found.Filename != "analytics-export-2025-03-14.csv" {
				t.Errorf("Unexpected filename %v", found.Filename)
			}
			if found.EndTime == nil || !found.EndTime.Equal(runStart.Add(2*time.Second)) {
				t.Errorf("Unexpected end time %v", found.EndTime)
			}
		})
	}
}

func TestExportRunRepositoryNotFound(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := repo.FindByID("missing"); !errors.Is(err, domain.ErrExportRunNotFound) {
				t.Errorf("Expected ErrExportRunNotFound, got %v", err)
			}
		})
	}
}

func TestExportRunRepositoryFailedRun(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			run := domain.NewExportRun("run-f", "org-1/alice", domain.FormatExcel, nil, runStart).
				WithFailed("disk full", runStart.Add(time.Second))
			if err := repo.Save(run); err != nil {
				t.Fatalf("Failed to save run: %v", err)
			}

			found, err := repo.FindByID("run-f")
			if err != nil {
				t.Fatalf("Failed to find run: %v", err)
			}
			if found.Status != domain.RunStatusFailed {
				t.Errorf("Expected failed, got %s", found.Status)
			}
			if found.ErrorMessage == nil || *found.ErrorMessage != "disk full" {
				t.Errorf("Unexpected error message %v", found.ErrorMessage)
			}
			if len(found.Metrics) != 0 {
				t.Errorf("Expected no metrics, got %v", found.Metrics)
			}
		})
	}
}

func TestExportRunRepositoryFindByOwner(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				run := domain.NewExportRun(fmt.Sprintf("alice-%d", i), "org-1/alice", domain.FormatPDF,
					[]domain.MetricKey{domain.MetricRevenue}, runStart.Add(time.Duration(i)*time.Minute))
				if err := repo.Save(run); err != nil {
					t.Fatalf("Failed to save run: %v", err)
				}
			}
			repo.Save(domain.NewExportRun("bob-0", "org-1/bob", domain.FormatPDF, nil, runStart))

			runs, total, err := repo.FindByOwner("org-1/alice", 1, 2)
			if err != nil {
				t.Fatalf("FindByOwner failed: %v", err)
			}
			if total != 5 {
				t.Errorf("Expected total 5, got %d", total)
			}
			if len(runs) != 2 {
				t.Fatalf("Expected 2 runs, got %d", len(runs))
			}
			if runs[0].ID != "alice-3" || runs[1].ID != "alice-2" {
				t.Errorf("Expected newest-first page [alice-3 alice-2], got [%s %s]", runs[0].ID, runs[1].ID)
			}

			runs, total, err = repo.FindByOwner("org-9/nobody", 0, 10)
			if err != nil {
				t.Fatalf("FindByOwner failed: %v", err)
			}
			if total != 0 || len(runs) != 0 {
				t.Errorf("Expected no runs, got %d of %d", len(runs), total)
			}
		})
	}
}

func TestSQLiteRepositoryReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	repo, err := NewSQLiteExportRunRepository(path)
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	repo.Save(domain.NewExportRun("run-1", "org-1/alice", domain.FormatCSV, nil, runStart))
	repo.Close()

	reopened, err := NewSQLiteExportRunRepository(path)
	if err != nil {
		t.Fatalf("Failed to reopen repository: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.FindByID("run-1"); err != nil {
		t.Errorf("Expected run to survive reopen: %v", err)
	}
}

func TestRebind(t *testing.T) {
	pg := &SQLExportRunRepository{dialect: DialectPostgres}
	if got := pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"); got != "SELECT * FROM t WHERE a = $1 AND b = $2" {
		t.Errorf("Unexpected postgres query %q", got)
	}

	lite := &SQLExportRunRepository{dialect: DialectSQLite}
	if got := lite.rebind("WHERE a = ?"); got != "WHERE a = ?" {
		t.Errorf("SQLite query should be unchanged, got %q", got)
	}
}

func TestSQLiteRepositoryRejectsUnknownStatus(t *testing.T) {
	repo := newSQLiteRepo(t)

	run := domain.NewExportRun("job-bad", "org-1/alice", domain.FormatCSV, []domain.MetricKey{domain.MetricRevenue}, runStart)
	run.Status = domain.ExportRunStatus("paused")
	if err := repo.Save(run); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := repo.FindByID("job-bad"); !errors.Is(err, domain.ErrInvalidRunStatus) {
		t.Errorf("Expected ErrInvalidRunStatus, got %v", err)
	}
}
