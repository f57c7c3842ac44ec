package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"acsim/internal/models"
)

type RunSQLite struct {
	db *sql.DB
}

func NewRunSQLite(db *sql.DB) *RunSQLite { return &RunSQLite{db: db} }

var _ RunRepo = (*RunSQLite)(nil)

const (
	runColumns = `id, user_id, created_at, source, hour_count, baseline, optimized,
		baseline_energy_kwh, optimized_energy_kwh, baseline_peak_kw, optimized_peak_kw, savings_pct, narrative`

	insertRunSQL = `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertRunHourSQL = `
		INSERT INTO run_hours (run_id, idx, ts, outdoor_temp_c, baseline_kw, baseline_kwh, optimized_kw, optimized_kwh)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectRunSQL = `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	selectRunHoursSQL = `
		SELECT idx, ts, outdoor_temp_c, baseline_kw, baseline_kwh, optimized_kw, optimized_kwh
		FROM run_hours WHERE run_id = ? ORDER BY idx ASC
	`

	updateNarrativeSQL = `UPDATE runs SET narrative = ? WHERE id = ?`
)

// Save inserts the run row and all hourly rows in one transaction.
func (r *RunSQLite) Save(ctx context.Context, run models.Run, hours []models.RunHour) (err error) {
	baseline, err := json.Marshal(run.Baseline)
	if err != nil {
		return fmt.Errorf("encode baseline scenario: %w", err)
	}
	optimized, err := json.Marshal(run.Optimized)
	if err != nil {
		return fmt.Errorf("encode optimized scenario: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var narrative *string
	if run.Narrative != "" {
		narrative = &run.Narrative
	}
	if _, err = tx.ExecContext(ctx, insertRunSQL,
		run.ID,
		run.UserID,
		run.CreatedAt.UTC(),
		run.Source,
		run.HourCount,
		string(baseline),
		string(optimized),
		run.BaselineEnergyKWh,
		run.OptimizedEnergyKWh,
		run.BaselinePeakKW,
		run.OptimizedPeakKW,
		run.SavingsPct,
		narrative,
	); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRunHourSQL)
	if err != nil {
		return fmt.Errorf("prepare run hours: %w", err)
	}
	defer stmt.Close()

	for _, h := range hours {
		if _, err = stmt.ExecContext(ctx,
			run.ID,
			h.Index,
			h.Time.UTC(),
			h.OutdoorTempC,
			h.BaselineKW,
			h.BaselineKWh,
			h.OptimizedKW,
			h.OptimizedKWh,
		); err != nil {
			return fmt.Errorf("insert run %s hour %d: %w", run.ID, h.Index, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (models.Run, error) {
	var (
		run                 models.Run
		baseline, optimized string
		narrative           sql.NullString
	)
	if err := s.Scan(
		&run.ID,
		&run.UserID,
		&run.CreatedAt,
		&run.Source,
		&run.HourCount,
		&baseline,
		&optimized,
		&run.BaselineEnergyKWh,
		&run.OptimizedEnergyKWh,
		&run.BaselinePeakKW,
		&run.OptimizedPeakKW,
		&run.SavingsPct,
		&narrative,
	); err != nil {
		return models.Run{}, err
	}
	if err := json.Unmarshal([]byte(baseline), &run.Baseline); err != nil {
		return models.Run{}, fmt.Errorf("decode baseline scenario of run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(optimized), &run.Optimized); err != nil {
		return models.Run{}, fmt.Errorf("decode optimized scenario of run %s: %w", run.ID, err)
	}
	run.CreatedAt = run.CreatedAt.UTC()
	run.Narrative = narrative.String
	return run, nil
}

func (r *RunSQLite) Get(ctx context.Context, id string) (models.Run, error) {
	run, err := scanRun(r.db.QueryRowContext(ctx, selectRunSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Run{}, ErrNotFound
		}
		return models.Run{}, fmt.Errorf("select run %s: %w", id, err)
	}
	return run, nil
}

func (r *RunSQLite) List(ctx context.Context, userID, limit int) ([]models.Run, error) {
	q := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if userID > 0 {
		q += " WHERE user_id = ?"
		args = append(args, userID)
	}
	q += " ORDER BY created_at DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	out := make([]models.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RunSQLite) Hours(ctx context.Context, runID string) ([]models.RunHour, error) {
	rows, err := r.db.QueryContext(ctx, selectRunHoursSQL, runID)
	if err != nil {
		return nil, fmt.Errorf("query hours of run %s: %w", runID, err)
	}
	defer rows.Close()

	out := make([]models.RunHour, 0, 8760)
	for rows.Next() {
		var h models.RunHour
		if err := rows.Scan(
			&h.Index,
			&h.Time,
			&h.OutdoorTempC,
			&h.BaselineKW,
			&h.BaselineKWh,
			&h.OptimizedKW,
			&h.OptimizedKWh,
		); err != nil {
			return nil, fmt.Errorf("scan hour of run %s: %w", runID, err)
		}
		h.Time = h.Time.UTC()
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RunSQLite) SetNarrative(ctx context.Context, runID, text string) error {
	res, err := r.db.ExecContext(ctx, updateNarrativeSQL, text, runID)
	if err != nil {
		return fmt.Errorf("update narrative of run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for run %s: %w", runID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
