package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultListLimit = 20

// StartRun inserts a run in the running state.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.RunID) == "" {
		return errors.New("start run: run id is empty")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (run_id, input, product, date, hemisphere, version, started_at, status)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Input,
		nullableString(run.Product),
		nullableString(run.Date),
		nullableString(run.Hemisphere),
		nullableString(run.Version),
		formatTime(started),
		StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}
	return nil
}

// AddOutput records one written file against its run.
func (s *Store) AddOutput(ctx context.Context, out Output) error {
	created := out.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO outputs (run_id, path, satellite, channel, variable, bytes, sha256, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		out.RunID,
		out.Path,
		out.Satellite,
		nullableString(out.Channel),
		out.Variable,
		out.Bytes,
		out.SHA256,
		formatTime(created),
	)
	if err != nil {
		return fmt.Errorf("insert output %s: %w", out.Path, err)
	}
	return nil
}

// FinishRun stores the final state of a run, including metadata resolved after it started.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET product = ?, date = ?, hemisphere = ?, version = ?,
            finished_at = ?, status = ?, error = ?, skipped = ?, output_dir = ?
        WHERE run_id = ?`,
		nullableString(run.Product),
		nullableString(run.Date),
		nullableString(run.Hemisphere),
		nullableString(run.Version),
		formatTime(finished),
		run.Status,
		nullableString(run.Error),
		run.Skipped,
		nullableString(run.OutputDir),
		run.RunID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run.RunID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", run.RunID, sql.ErrNoRows)
	}
	return nil
}

// ListRuns returns the most recent runs first. A non-positive limit uses a default.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT r.id, r.run_id, r.input, r.product, r.date, r.hemisphere, r.version,
            r.started_at, r.finished_at, r.status, r.error, r.skipped, r.output_dir,
            (SELECT COUNT(1) FROM outputs o WHERE o.run_id = r.run_id)
        FROM runs r ORDER BY r.started_at DESC, r.id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Outputs returns the files recorded for runID in write order.
func (s *Store) Outputs(ctx context.Context, runID string) ([]Output, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, run_id, path, satellite, channel, variable, bytes, sha256, created_at
        FROM outputs WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	defer rows.Close()

	var outputs []Output
	for rows.Next() {
		var (
			out        Output
			channel    sql.NullString
			createdRaw string
		)
		if err := rows.Scan(&out.ID, &out.RunID, &out.Path, &out.Satellite, &channel, &out.Variable, &out.Bytes, &out.SHA256, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		out.Channel = channel.String
		out.CreatedAt = parseTime(createdRaw)
		outputs = append(outputs, out)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outputs: %w", err)
	}
	return outputs, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		product     sql.NullString
		date        sql.NullString
		hemisphere  sql.NullString
		version     sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
		status      string
		errorMsg    sql.NullString
		outputDir   sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.RunID,
		&run.Input,
		&product,
		&date,
		&hemisphere,
		&version,
		&startedRaw,
		&finishedRaw,
		&status,
		&errorMsg,
		&run.Skipped,
		&outputDir,
		&run.Outputs,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Product = product.String
	run.Date = date.String
	run.Hemisphere = hemisphere.String
	run.Version = version.String
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishedRaw.String)
	run.Status = Status(status)
	run.Error = errorMsg.String
	run.OutputDir = outputDir.String
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
