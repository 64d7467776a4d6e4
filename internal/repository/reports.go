package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/azizemirhan/hubcenter/internal/entity"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const reportsSchema = `
CREATE TABLE IF NOT EXISTS run_reports (
    run_id           UUID PRIMARY KEY,
    started_at       TIMESTAMPTZ NOT NULL,
    strategy         TEXT NOT NULL DEFAULT '',
    dry_run          BOOLEAN NOT NULL DEFAULT FALSE,
    panel_only       BOOLEAN NOT NULL DEFAULT FALSE,
    inventory_count  INTEGER NOT NULL DEFAULT 0,
    extracted_count  INTEGER NOT NULL DEFAULT 0,
    succeeded_count  INTEGER NOT NULL DEFAULT 0,
    error_count      INTEGER NOT NULL DEFAULT 0,
    payload          JSONB NOT NULL,
    saved_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// ReportsRepository persists run reports.
type ReportsRepository interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, report *entity.RunReport) (string, error)
	Get(ctx context.Context, runID uuid.UUID) (*entity.RunReport, error)
}

// PGXReportsRepository implements ReportsRepository using pgx.
type PGXReportsRepository struct {
	pool pgxPool
}

// NewPGXReportsRepository wires a pgx backed repository.
func NewPGXReportsRepository(pool *pgxpool.Pool) *PGXReportsRepository {
	return &PGXReportsRepository{pool: pool}
}

// EnsureSchema creates the run_reports table when it does not exist.
func (r *PGXReportsRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, reportsSchema); err != nil {
		return fmt.Errorf("create run_reports: %w", err)
	}
	return nil
}

// Save upserts the report keyed by run id and returns its location.
func (r *PGXReportsRepository) Save(ctx context.Context, report *entity.RunReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report is nil")
	}
	runID, err := uuid.Parse(report.RunID)
	if err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", report.RunID, err)
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	const query = `
        INSERT INTO run_reports (
            run_id, started_at, strategy, dry_run, panel_only,
            inventory_count, extracted_count, succeeded_count, error_count, payload
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (run_id) DO UPDATE SET
            inventory_count = EXCLUDED.inventory_count,
            extracted_count = EXCLUDED.extracted_count,
            succeeded_count = EXCLUDED.succeeded_count,
            error_count = EXCLUDED.error_count,
            payload = EXCLUDED.payload,
            saved_at = NOW()`

	_, err = r.pool.Exec(ctx, query,
		runID,
		report.Timestamp,
		report.Strategy,
		report.DryRun,
		report.PanelOnly,
		len(report.Inventory),
		len(report.Extractions),
		report.Succeeded(),
		len(report.Errors),
		payload,
	)
	if err != nil {
		return "", fmt.Errorf("save run report: %w", err)
	}
	return "run_reports/" + runID.String(), nil
}

// Get loads a stored report. It returns pgx.ErrNoRows when the run is unknown.
func (r *PGXReportsRepository) Get(ctx context.Context, runID uuid.UUID) (*entity.RunReport, error) {
	var payload []byte
	if err := r.pool.QueryRow(ctx, `SELECT payload FROM run_reports WHERE run_id = $1`, runID).Scan(&payload); err != nil {
		return nil, err
	}
	var report entity.RunReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decode run report: %w", err)
	}
	return &report, nil
}
