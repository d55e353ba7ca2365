package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink persists decisions and feedback in Postgres so the
// retraining pipeline can query across restarts. Records land in two
// append-only tables keyed by session.
type PostgresSink struct {
	pool *pgxpool.Pool
}

const sinkSchema = `
CREATE TABLE IF NOT EXISTS detection_decisions (
    id          BIGSERIAL PRIMARY KEY,
    session_id  TEXT NOT NULL,
    risk_level  TEXT NOT NULL,
    score       DOUBLE PRECISION NOT NULL,
    record      JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_decisions_session ON detection_decisions (session_id);

CREATE TABLE IF NOT EXISTS detection_feedback (
    id           BIGSERIAL PRIMARY KEY,
    session_id   TEXT NOT NULL,
    ground_truth TEXT NOT NULL,
    was_correct  BOOLEAN NOT NULL,
    record       JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_feedback_session ON detection_feedback (session_id);
`

// NewPostgresSink connects to Postgres and ensures the schema exists.
func NewPostgresSink(ctx context.Context, databaseURL string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	if _, err := pool.Exec(ctx, sinkSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}

	return &PostgresSink{pool: pool}, nil
}

// StoreDecision inserts a decision record.
func (s *PostgresSink) StoreDecision(rec DecisionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = s.pool.Exec(ctx,
		`INSERT INTO detection_decisions (session_id, risk_level, score, record) VALUES ($1, $2, $3, $4)`,
		rec.SessionID, rec.RiskLevel, rec.AggregatedScore, data)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// StoreFeedback inserts a feedback record.
func (s *PostgresSink) StoreFeedback(rec FeedbackRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = s.pool.Exec(ctx,
		`INSERT INTO detection_feedback (session_id, ground_truth, was_correct, record) VALUES ($1, $2, $3, $4)`,
		rec.SessionID, rec.GroundTruthLabel, rec.WasCorrect, data)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}

// Ensure PostgresSink implements Sink
var _ Sink = (*PostgresSink)(nil)
