package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/guttosm/tickerdesk/internal/domain/models"
	pq "github.com/lib/pq"
)

// ErrSchemaMissing is returned when the query_history table does not exist
// (migrations have not been applied).
var ErrSchemaMissing = errors.New("query_history table missing; run db/migrations")

// undefinedTable is the PostgreSQL SQLSTATE for a missing relation.
const undefinedTable = pq.ErrorCode("42P01")

func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return fmt.Errorf("%s: %w", op, ErrSchemaMissing)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// HistoryRepository defines contract for query history persistence.
type HistoryRepository interface {
	InsertQuery(ctx context.Context, rec models.QueryRecord) error
	RecentQueries(ctx context.Context, ticker string, limit int) ([]models.QueryRecord, error)
}

type historyRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// InsertQuery stores one completed request. Re-inserting the same request id is a no-op.
func (r *historyRepository) InsertQuery(ctx context.Context, rec models.QueryRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO query_history (
			request_id, session_id, market, ticker, status,
			result_count, error_message, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (request_id) DO NOTHING
	`,
		rec.RequestID,
		rec.SessionID,
		rec.Market.String(),
		rec.Ticker,
		string(rec.Status),
		rec.ResultCount,
		rec.ErrorMessage,
		rec.DurationMS,
		rec.CreatedAt,
	)
	if err != nil {
		return classify("insert query history", err)
	}
	return nil
}

// RecentQueries returns the newest records first, optionally filtered by ticker.
func (r *historyRepository) RecentQueries(ctx context.Context, ticker string, limit int) ([]models.QueryRecord, error) {
	query := `
		SELECT id, request_id, session_id, market, ticker, status,
		       result_count, error_message, duration_ms, created_at
		FROM query_history`
	args := []interface{}{}
	if ticker != "" {
		args = append(args, ticker)
		query += fmt.Sprintf(" WHERE ticker = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query history", err)
	}
	defer func() { _ = rows.Close() }()

	out := []models.QueryRecord{}
	for rows.Next() {
		var (
			rec    models.QueryRecord
			market string
			status string
		)
		if err := rows.Scan(
			&rec.ID, &rec.RequestID, &rec.SessionID, &market, &rec.Ticker, &status,
			&rec.ResultCount, &rec.ErrorMessage, &rec.DurationMS, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan query history: %w", err)
		}
		m, err := models.ParseMarket(market)
		if err != nil {
			return nil, fmt.Errorf("scan query history: %w", err)
		}
		rec.Market = m
		rec.Status = models.QueryStatus(status)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query history: %w", err)
	}
	return out, nil
}
