package service

import (
	"context"
	"strings"

	"github.com/guttosm/tickerdesk/internal/domain/models"
	"github.com/guttosm/tickerdesk/internal/storage"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryService records and lists completed analysis requests.
type HistoryService interface {
	Record(ctx context.Context, rec models.QueryRecord) error
	Recent(ctx context.Context, ticker string, limit int) ([]models.QueryRecord, error)
}

type historyService struct {
	repo storage.HistoryRepository
}

func NewHistoryService(repo storage.HistoryRepository) HistoryService {
	return &historyService{repo: repo}
}

func (s *historyService) Record(ctx context.Context, rec models.QueryRecord) error {
	return s.repo.InsertQuery(ctx, rec)
}

// Recent clamps limit to [1, MaxHistoryLimit], using DefaultHistoryLimit when it is not positive.
func (s *historyService) Recent(ctx context.Context, ticker string, limit int) ([]models.QueryRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.repo.RecentQueries(ctx, strings.TrimSpace(ticker), limit)
}
