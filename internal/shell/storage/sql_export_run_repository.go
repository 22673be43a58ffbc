package storage

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"analytics-exporter/internal/config"
	"analytics-exporter/internal/core/domain"
)

// SQLExportRunRepository stores export run history in SQLite or PostgreSQL.
type SQLExportRunRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLiteExportRunRepository(dbPath string) (*SQLExportRunRepository, error) {
	log.Printf("[DEBUG] SQLExportRunRepository - opening sqlite database: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return newSQLExportRunRepository(db, DialectSQLite)
}

func NewPostgresExportRunRepository(cfg *config.DatabaseConfig) (*SQLExportRunRepository, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnectionMaxLifetime)

	return newSQLExportRunRepository(db, DialectPostgres)
}

func newSQLExportRunRepository(db *sql.DB, dialect Dialect) (*SQLExportRunRepository, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, dialect); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[DEBUG] SQLExportRunRepository - database initialized successfully: dialect=%s", dialect)
	return &SQLExportRunRepository{db: db, dialect: dialect}, nil
}

func (r *SQLExportRunRepository) Save(run domain.ExportRun) error {
	query := r.rebind(`
		INSERT INTO export_runs (id, owner, format, metrics, status, start_time, end_time, filename, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			end_time = excluded.end_time,
			filename = excluded.filename,
			error_message = excluded.error_message
	`)

	var endTime *string
	if run.EndTime != nil {
		endTimeStr := run.EndTime.UTC().Format(time.RFC3339)
		endTime = &endTimeStr
	}

	_, err := r.db.Exec(
		query,
		run.ID,
		run.Owner,
		string(run.Format),
		joinMetrics(run.Metrics),
		string(run.Status),
		run.StartTime.UTC().Format(time.RFC3339),
		endTime,
		run.Filename,
		run.ErrorMessage,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save export run: %w", err)
	}

	log.Printf("[DEBUG] SQLExportRunRepository - saved export run: id=%s, owner=%s, status=%s", run.ID, run.Owner, run.Status)
	return nil
}

func (r *SQLExportRunRepository) FindByID(id string) (domain.ExportRun, error) {
	query := r.rebind(`
		SELECT id, owner, format, metrics, status, start_time, end_time, filename, error_message
		FROM export_runs
		WHERE id = ?
	`)

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return domain.ExportRun{}, domain.ErrExportRunNotFound
	}
	if err != nil {
		return domain.ExportRun{}, fmt.Errorf("failed to find export run: %w", err)
	}
	return run, nil
}

// FindByOwner returns a page of owner's runs, newest first, and the owner's total run count.
func (r *SQLExportRunRepository) FindByOwner(owner string, offset, limit int) ([]domain.ExportRun, int, error) {
	var total int
	countQuery := r.rebind(`SELECT COUNT(*) FROM export_runs WHERE owner = ?`)
	if err := r.db.QueryRow(countQuery, owner).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count export runs: %w", err)
	}

	query := r.rebind(`
		SELECT id, owner, format, metrics, status, start_time, end_time, filename, error_message
		FROM export_runs
		WHERE owner = ?
		ORDER BY start_time DESC, id DESC
		LIMIT ? OFFSET ?
	`)

	rows, err := r.db.Query(query, owner, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query export runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.ExportRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan export run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating export runs: %w", err)
	}

	return runs, total, nil
}

func (r *SQLExportRunRepository) Close() error {
	return r.db.Close()
}

// rebind rewrites ? placeholders into $N for postgres.
func (r *SQLExportRunRepository) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (domain.ExportRun, error) {
	var run domain.ExportRun
	var format, metrics, status, startTimeStr string
	var endTimeStr, filename, errorMessage *string

	if err := row.Scan(&run.ID, &run.Owner, &format, &metrics, &status, &startTimeStr, &endTimeStr, &filename, &errorMessage); err != nil {
		return domain.ExportRun{}, err
	}

	if !domain.IsValidRunStatus(status) {
		return domain.ExportRun{}, fmt.Errorf("%w: %q for run %s", domain.ErrInvalidRunStatus, status, run.ID)
	}

	run.Format = domain.Format(format)
	run.Metrics = splitMetrics(metrics)
	run.Status = domain.ExportRunStatus(status)

	startTime, err := time.Parse(time.RFC3339, startTimeStr)
	if err != nil {
		return domain.ExportRun{}, fmt.Errorf("failed to parse start time: %w", err)
	}
	run.StartTime = startTime

	if endTimeStr != nil {
		endTime, err := time.Parse(time.RFC3339, *endTimeStr)
		if err != nil {
			return domain.ExportRun{}, fmt.Errorf("failed to parse end time: %w", err)
		}
		run.EndTime = &endTime
	}

	run.Filename = filename
	run.ErrorMessage = errorMessage
	return run, nil
}

func joinMetrics(metrics []domain.MetricKey) string {
	keys := make([]string, len(metrics))
	for i, m := range metrics {
		keys[i] = string(m)
	}
	return strings.Join(keys, ",")
}

func splitMetrics(s string) []domain.MetricKey {
	metrics := make([]domain.MetricKey, 0)
	for _, key := range strings.Split(s, ",") {
		if key != "" {
			metrics = append(metrics, domain.MetricKey(key))
		}
	}
	return metrics
}
