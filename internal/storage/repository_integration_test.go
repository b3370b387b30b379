//go:build integration
// +build integration

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/guttosm/tickerdesk/internal/domain/models"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres spins up a Postgres container and returns a DSN and terminate func.
func startPostgres(t *testing.T) (dsn string, terminate func()) {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "tickerdesk",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=tickerdesk sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/tickerdesk?sslmode=disable", host, port.Port())
	terminate = func() { _ = container.Terminate(context.Background()) }
	return dsn, terminate
}

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	// internal/storage → ../../db/migrations
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
}

func TestHistoryRepository_Integration(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()
	db := openDB(t, dsn)
	defer db.Close()

	repo := NewHistoryRepository(db)
	ctx := context.Background()

	if err := repo.InsertQuery(ctx, models.QueryRecord{RequestID: "11111111-1111-1111-1111-111111111111", Market: models.Shanghai, Ticker: "600310", Status: models.QueryStatusSuccess, CreatedAt: time.Now()}); err == nil {
		t.Fatalf("expected error before migrations")
	}

	runMigrations(t, db)

	base := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	records := []models.QueryRecord{
		{RequestID: "11111111-1111-1111-1111-111111111111", SessionID: "a", Market: models.Shanghai, Ticker: "600310", Status: models.QueryStatusSuccess, ResultCount: 1, DurationMS: 800, CreatedAt: base},
		{RequestID: "22222222-2222-2222-2222-222222222222", SessionID: "a", Market: models.Shenzhen, Ticker: "000001", Status: models.QueryStatusFailed, ErrorMessage: "API call failed", CreatedAt: base.Add(time.Minute)},
		{RequestID: "33333333-3333-3333-3333-333333333333", SessionID: "b", Market: models.Shanghai, Ticker: "600310", Status: models.QueryStatusSuccess, ResultCount: 3, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range records {
		if err := repo.InsertQuery(ctx, r); err != nil {
			t.Fatalf("insert %s: %v", r.RequestID, err)
		}
	}
	// duplicate request ids are ignored
	if err := repo.InsertQuery(ctx, records[0]); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}

	cases := []struct {
		name   string
		ticker string
		limit  int
		want   []string
	}{
		{name: "all newest first", ticker: "", limit: 10, want: []string{records[2].RequestID, records[1].RequestID, records[0].RequestID}},
		{name: "by ticker", ticker: "600310", limit: 10, want: []string{records[2].RequestID, records[0].RequestID}},
		{name: "limited", ticker: "", limit: 1, want: []string{records[2].RequestID}},
		{name: "unknown ticker", ticker: "999999", limit: 10, want: []string{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := repo.RecentQueries(ctx, c.ticker, c.limit)
			if err != nil {
				t.Fatalf("recent: %v", err)
			}
			if len(out) != len(c.want) {
				t.Fatalf("got %d records, want %d", len(out), len(c.want))
			}
			for i := range c.want {
				if out[i].RequestID != c.want[i] {
					t.Fatalf("record %d=%s, want %s", i, out[i].RequestID, c.want[i])
				}
			}
		})
	}
}
