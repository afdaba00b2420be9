package jobstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"subtrans/internal/config"
	"subtrans/internal/services"
	"subtrans/internal/translate"
)

// Store manages translation job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Save upserts the full job aggregate. Called on every chunk boundary, so a
// crash loses at most the in-flight chunk.
func (s *Store) Save(ctx context.Context, job *translate.Job) error {
	segmentsJSON, err := json.Marshal(job.Segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
            job_id, file_id, status, total_segments, completed_segments,
            average_confidence, average_quality_score, error_message,
            segments_json, created_at, completed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(job_id) DO UPDATE SET
            status = excluded.status,
            completed_segments = excluded.completed_segments,
            average_confidence = excluded.average_confidence,
            average_quality_score = excluded.average_quality_score,
            error_message = excluded.error_message,
            segments_json = excluded.segments_json,
            completed_at = excluded.completed_at`,
		job.ID,
		job.FileID,
		string(job.Status),
		job.TotalSegments,
		job.CompletedSegments,
		nullableFloat(job.AverageConfidence),
		nullableFloat(job.AverageQualityScore),
		nullableString(job.ErrorMessage),
		string(segmentsJSON),
		job.CreatedAt.UTC().Format(time.RFC3339Nano),
		nullableTime(job.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

// Get loads one job by id. Returns services.ErrNotFound when absent.
func (s *Store) Get(ctx context.Context, jobID string) (*translate.Job, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM jobs WHERE job_id = ?", jobID)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "jobstore", "get",
			fmt.Sprintf("job %s not found", jobID), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return job, nil
}

// List returns all jobs, newest first.
func (s *Store) List(ctx context.Context) ([]*translate.Job, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" FROM jobs ORDER BY created_at DESC, job_id DESC")
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*translate.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// ListByStatus returns jobs in the given status, newest first.
func (s *Store) ListByStatus(ctx context.Context, status translate.Status) ([]*translate.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+" FROM jobs WHERE status = ? ORDER BY created_at DESC, job_id DESC", string(status))
	if err != nil {
		return nil, fmt.Errorf("list jobs by status: %w", err)
	}
	defer rows.Close()

	var jobs []*translate.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// MarkInterrupted fails every job left pending or in progress by a previous
// process. Called once at daemon startup; interrupted jobs are not resumed.
func (s *Store) MarkInterrupted(ctx context.Context, message string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, completed_at = ?
         WHERE status IN (?, ?)`,
		string(translate.StatusFailed), message, now,
		string(translate.StatusPending), string(translate.StatusInProgress),
	)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted jobs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// Stats summarizes job counts by status.
type Stats struct {
	Total    int64
	ByStatus map[translate.Status]int64
}

// Stats returns aggregate job counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByStatus: make(map[translate.Status]int64)}
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM jobs GROUP BY status")
	if err != nil {
		return Stats{}, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		stats.ByStatus[translate.Status(status)] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

const selectColumns = `SELECT job_id, file_id, status, total_segments, completed_segments,
    average_confidence, average_quality_score, error_message,
    segments_json, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*translate.Job, error) {
	var (
		job              translate.Job
		status           string
		avgConfidence    sql.NullFloat64
		avgQuality       sql.NullFloat64
		errorMessage     sql.NullString
		segmentsJSON     string
		createdAtField   string
		completedAtField sql.NullString
	)
	err := row.Scan(
		&job.ID, &job.FileID, &status, &job.TotalSegments, &job.CompletedSegments,
		&avgConfidence, &avgQuality, &errorMessage,
		&segmentsJSON, &createdAtField, &completedAtField,
	)
	if err != nil {
		return nil, err
	}

	job.Status = translate.Status(status)
	if avgConfidence.Valid {
		job.AverageConfidence = &avgConfidence.Float64
	}
	if avgQuality.Valid {
		job.AverageQualityScore = &avgQuality.Float64
	}
	if errorMessage.Valid {
		job.ErrorMessage = errorMessage.String
	}
	if err := json.Unmarshal([]byte(segmentsJSON), &job.Segments); err != nil {
		return nil, fmt.Errorf("unmarshal segments: %w", err)
	}
	if job.CreatedAt, err = parseTimeString(createdAtField); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if completedAtField.Valid {
		completedAt, err := parseTimeString(completedAtField.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		job.CompletedAt = &completedAt
	}
	return &job, nil
}

func parseTimeString(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}
