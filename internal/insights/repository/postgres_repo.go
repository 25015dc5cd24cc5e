package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/sports-insights-poc/pkg/contracts/predictions"
)

// Schema do histórico de lotes
const Schema = `
CREATE TABLE IF NOT EXISTS prediction_batches (
  id             BIGSERIAL PRIMARY KEY,
  page           TEXT        NOT NULL,
  version        BIGINT      NOT NULL,
  source         TEXT        NOT NULL,
  sport          TEXT        NOT NULL DEFAULT '',
  min_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
  record_count   INT         NOT NULL,
  received_at    TIMESTAMPTZ NOT NULL,
  UNIQUE (page, version, received_at)
);
CREATE TABLE IF NOT EXISTS prediction_records (
  batch_id       BIGINT      NOT NULL REFERENCES prediction_batches(id) ON DELETE CASCADE,
  record_id      TEXT        NOT NULL,
  player_name    TEXT        NOT NULL,
  team           TEXT        NOT NULL,
  sport          TEXT        NOT NULL,
  stat_type      TEXT        NOT NULL,
  line           DOUBLE PRECISION NOT NULL,
  recommendation TEXT        NOT NULL,
  confidence     DOUBLE PRECISION NOT NULL,
  expected_value DOUBLE PRECISION NOT NULL,
  kelly_fraction DOUBLE PRECISION NOT NULL,
  risk_level     TEXT        NOT NULL,
  PRIMARY KEY (batch_id, record_id)
);`

// BatchRow é um lote do histórico
type BatchRow struct {
	ID          int64   `json:"id"`
	Page        string  `json:"page"`
	Version     int64   `json:"version"`
	Source      string  `json:"source"`
	Sport       string  `json:"sport"`
	MinConf     float64 `json:"min_confidence"`
	RecordCount int     `json:"record_count"`
	ReceivedAt  string  `json:"received_at"`
}

// PostgresRepo persiste o histórico de lotes por página
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, Schema)
	return err
}

func (r *PostgresRepo) Name() string { return "postgres" }

// Save grava o lote e seus registros numa transação
func (r *PostgresRepo) Save(ctx context.Context, s predictions.Snapshot) error {
	if s.Result == nil {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const qBatch = `
		INSERT INTO prediction_batches
		  (page, version, source, sport, min_confidence, record_count, received_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (page, version, received_at) DO NOTHING
		RETURNING id
	`
	var id int64
	err = tx.QueryRowContext(ctx, qBatch,
		s.Page, s.Version, string(s.Result.Source),
		s.Filters.Sport, s.Filters.MinConfidence,
		len(s.Result.Records), s.Result.ReceivedAt,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil // já gravado
	}
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	const qRecord = `
		INSERT INTO prediction_records
		  (batch_id, record_id, player_name, team, sport, stat_type, line,
		   recommendation, confidence, expected_value, kelly_fraction, risk_level)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (batch_id, record_id) DO NOTHING
	`
	for _, p := range s.Result.Records {
		if _, err := tx.ExecContext(ctx, qRecord,
			id, p.ID, p.PlayerName, p.Team, p.Sport, p.StatType, p.Line,
			p.Recommendation, p.Confidence, p.ExpectedValue, p.KellyFraction,
			p.RiskAssessment.RiskLevel,
		); err != nil {
			return fmt.Errorf("insert record %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// ListBatches devolve os últimos lotes de uma página
func (r *PostgresRepo) ListBatches(ctx context.Context, page string, limit int) ([]BatchRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const q = `
		SELECT id, page, version, source, sport, min_confidence, record_count, received_at::text
		FROM prediction_batches
		WHERE page = $1
		ORDER BY received_at DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, q, page, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BatchRow{}
	for rows.Next() {
		var b BatchRow
		if err := rows.Scan(&b.ID, &b.Page, &b.Version, &b.Source, &b.Sport, &b.MinConf, &b.RecordCount, &b.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
