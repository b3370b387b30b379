package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/guttosm/tickerdesk/internal/domain/models"
	pq "github.com/lib/pq"
)

func newMockRepo(t *testing.T) (*historyRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	repo := &historyRepository{db: db}
	cleanup := func() { _ = db.Close() }
	return repo, mock, cleanup
}

func TestInsertQuery_SQLMock(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	rec := models.QueryRecord{
		RequestID:   "5f0c7c2e-3c55-4e4b-9d0e-0c0a2f4b7e10",
		SessionID:   "s1",
		Market:      models.Shenzhen,
		Ticker:      "000001",
		Status:      models.QueryStatusSuccess,
		ResultCount: 2,
		DurationMS:  1530,
		CreatedAt:   created,
	}
	insert := regexp.QuoteMeta("INSERT INTO query_history")

	cases := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "success"},
		{name: "missing table", execErr: &pq.Error{Code: "42P01"}, wantErr: ErrSchemaMissing},
		{name: "other error", execErr: errors.New("conn reset")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, done := newMockRepo(t)
			defer done()

			exp := mock.ExpectExec(insert).
				WithArgs(rec.RequestID, "s1", "Shenzhen", "000001", "success", 2, "", int64(1530), created)
			if tc.execErr != nil {
				exp.WillReturnError(tc.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			err := repo.InsertQuery(context.Background(), rec)
			switch {
			case tc.execErr == nil && err != nil:
				t.Fatalf("unexpected err: %v", err)
			case tc.execErr != nil && err == nil:
				t.Fatalf("expected error")
			case tc.wantErr != nil && !errors.Is(err, tc.wantErr):
				t.Fatalf("err=%v, want %v", err, tc.wantErr)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations: %v", err)
			}
		})
	}
}

func TestRecentQueries_SQLMock(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	cols := []string{"id", "request_id", "session_id", "market", "ticker", "status", "result_count", "error_message", "duration_ms", "created_at"}

	cases := []struct {
		name   string
		ticker string
		query  string
		args   []driver.Value
	}{
		{
			name:   "all tickers",
			ticker: "",
			query:  `SELECT .* FROM query_history ORDER BY created_at DESC, id DESC LIMIT \$1`,
			args:   []driver.Value{10},
		},
		{
			name:   "filtered",
			ticker: "600310",
			query:  `SELECT .* FROM query_history WHERE ticker = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2`,
			args:   []driver.Value{"600310", 10},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, done := newMockRepo(t)
			defer done()

			rows := sqlmock.NewRows(cols).
				AddRow(int64(2), "r2", "s1", "Shanghai", "600310", "failed", 0, "API call failed", int64(20), created).
				AddRow(int64(1), "r1", "s1", "Shanghai", "600310", "success", 1, "", int64(900), created.Add(-time.Minute))
			mock.ExpectQuery(tc.query).WithArgs(tc.args...).WillReturnRows(rows)

			out, err := repo.RecentQueries(context.Background(), tc.ticker, 10)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if len(out) != 2 || out[0].RequestID != "r2" || out[0].Status != models.QueryStatusFailed || out[1].Market != models.Shanghai || out[1].ResultCount != 1 {
				t.Fatalf("unexpected records %+v", out)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations: %v", err)
			}
		})
	}
}

func TestRecentQueries_ScanBadMarket(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()
	cols := []string{"id", "request_id", "session_id", "market", "ticker", "status", "result_count", "error_message", "duration_ms", "created_at"}
	mock.ExpectQuery(`SELECT .* FROM query_history`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "r", "", "Beijing", "600310", "success", 0, "", int64(0), time.Now()))

	if _, err := repo.RecentQueries(context.Background(), "", 5); err == nil {
		t.Fatalf("expected error for unknown market")
	}
}

func TestRecentQueries_QueryError(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()
	mock.ExpectQuery(`SELECT .* FROM query_history`).WillReturnError(&pq.Error{Code: "42P01"})

	if _, err := repo.RecentQueries(context.Background(), "", 5); !errors.Is(err, ErrSchemaMissing) {
		t.Fatalf("expected ErrSchemaMissing, got %v", err)
	}
}
