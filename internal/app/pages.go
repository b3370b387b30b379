package app

import (
	"context"
	"time"

	"github.com/guttosm/tickerdesk/internal/analysis"
	"github.com/guttosm/tickerdesk/internal/domain/models"
	"github.com/guttosm/tickerdesk/internal/logger"
	"github.com/guttosm/tickerdesk/internal/page"
	"github.com/guttosm/tickerdesk/internal/service"
)

// recordTimeout bounds one history insert.
const recordTimeout = 5 * time.Second

// NewRegistry builds the page registry used by the server. Every page logs its
// notices and, when history is non-nil, records each applied outcome.
func NewRegistry(client analysis.Client, history service.HistoryService, ttl time.Duration) *page.Registry {
	return page.NewRegistry(func(id string) *page.Page {
		opts := []page.Option{page.WithID(id), page.WithNotifier(logNotifier(id))}
		if history != nil {
			opts = append(opts, page.WithCompletionHook(recordHook(history)))
		}
		return page.New(client, opts...)
	}, ttl)
}

func logNotifier(pageID string) page.Notifier {
	return page.NotifierFunc(func(n page.Notice) {
		logger.L().Info().Str("page", pageID).Str("kind", string(n.Kind)).Msg(n.Message)
	})
}

// recordHook stores rec in history. Failures are logged and never reach the page.
func recordHook(history service.HistoryService) page.CompletionHook {
	return func(rec models.QueryRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := history.Record(ctx, rec); err != nil {
			log := logger.WithRequest(rec.RequestID)
			log.Error().Err(err).Str("ticker", rec.Ticker).Msg("failed to record query history")
		}
	}
}
