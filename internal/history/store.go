// Package history records each extraction run in an embedded sqlite
// database so past verdicts can be reviewed after the download is gone.
package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS extraction_runs (
	id                    TEXT PRIMARY KEY,
	order_number          TEXT    NOT NULL,
	item_count            INTEGER NOT NULL,
	totals_match          INTEGER NOT NULL,
	quantities_match      INTEGER NOT NULL,
	computed_total_sum    REAL    NOT NULL,
	computed_quantity_sum REAL    NOT NULL,
	message               TEXT    NOT NULL,
	elapsed_ms            INTEGER NOT NULL,
	created_at            TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extraction_runs_created_at ON extraction_runs (created_at DESC);
`

// Run is one recorded pipeline invocation.
type Run struct {
	ID                  string    `db:"id" json:"id"`
	OrderNumber         string    `db:"order_number" json:"order_number"`
	ItemCount           int       `db:"item_count" json:"item_count"`
	TotalsMatch         bool      `db:"totals_match" json:"totals_match"`
	QuantitiesMatch     bool      `db:"quantities_match" json:"quantities_match"`
	ComputedTotalSum    float64   `db:"computed_total_sum" json:"computed_total_sum"`
	ComputedQuantitySum float64   `db:"computed_quantity_sum" json:"computed_quantity_sum"`
	Message             string    `db:"message" json:"message"`
	ElapsedMS           int64     `db:"elapsed_ms" json:"elapsed_ms"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one run. A missing ID or timestamp is filled in here so
// callers can pass a bare result.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO extraction_runs
			(id, order_number, item_count, totals_match, quantities_match,
			 computed_total_sum, computed_quantity_sum, message, elapsed_ms, created_at)
		VALUES
			(:id, :order_number, :item_count, :totals_match, :quantities_match,
			 :computed_total_sum, :computed_quantity_sum, :message, :elapsed_ms, :created_at)`,
		run)
	if err != nil {
		return Run{}, err
	}
	s.logger.Debug("history.record.ok", "id", run.ID, "order_number", run.OrderNumber)
	return run, nil
}

// ListRecent returns the newest runs first, capped at limit.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	runs := make([]Run, 0, limit)
	err := s.db.SelectContext(ctx, &runs, `
		SELECT id, order_number, item_count, totals_match, quantities_match,
		       computed_total_sum, computed_quantity_sum, message, elapsed_ms, created_at
		FROM extraction_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return runs, nil
}
