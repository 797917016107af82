package repositories

import (
	"database/sql"
	"fmt"

	"github.com/nvallee/radar/internal/models"
	"github.com/nvallee/radar/internal/shared"
)

// RunRepository persists sync run records. It implements [tasks.RunRecorder].
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Record inserts a completed run into the history.
func (r *RunRepository) Record(run models.SyncRun) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run ID is required", shared.ErrInvalidArgument)
	}

	query := `
		INSERT INTO sync_runs (id, started_at, finished_at, dry_run, recent_added, recent_removed, year_added, year_removed, artists_processed, artists_skipped, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt
	}

	_, err := r.db.Exec(query,
		run.ID,
		run.StartedAt,
		finished,
		run.DryRun,
		run.RecentAdded,
		run.RecentRemoved,
		run.YearAdded,
		run.YearRemoved,
		run.ArtistsProcessed,
		run.ArtistsSkipped,
		nullableString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	return nil
}

// Get retrieves a single run by ID.
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	query := `
		SELECT id, started_at, finished_at, dry_run, recent_added, recent_removed, year_added, year_removed, artists_processed, artists_skipped, error
		FROM sync_runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	return run, nil
}

// List retrieves the most recent runs, newest first. A limit of 0 returns all.
func (r *RunRepository) List(limit int) ([]models.SyncRun, error) {
	query := `
		SELECT id, started_at, finished_at, dry_run, recent_added, recent_removed, year_added, year_removed, artists_processed, artists_skipped, error
		FROM sync_runs
		ORDER BY started_at DESC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Latest returns the most recent run, or ErrNotFound when the history is empty.
func (r *RunRepository) Latest() (*models.SyncRun, error) {
	runs, err := r.List(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, shared.ErrRunNotFound
	}
	return &runs[0], nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.SyncRun, error) {
	var (
		run      models.SyncRun
		finished sql.NullTime
		runError sql.NullString
	)

	err := row.Scan(
		&run.ID,
		&run.StartedAt,
		&finished,
		&run.DryRun,
		&run.RecentAdded,
		&run.RecentRemoved,
		&run.YearAdded,
		&run.YearRemoved,
		&run.ArtistsProcessed,
		&run.ArtistsSkipped,
		&runError,
	)
	if err != nil {
		return nil, err
	}

	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	if runError.Valid {
		run.Error = runError.String
	}

	return &run, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
