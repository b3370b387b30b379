package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tickerdesk/internal/analysis"
	"github.com/guttosm/tickerdesk/internal/domain/models"
	"github.com/guttosm/tickerdesk/internal/page"
)

// maxParallel caps batch concurrency.
const maxParallel = 16

// errQueryFailed is returned when the page ends in its error state.
var errQueryFailed = errors.New("query failed")

// batchLine is one line of batch output.
type batchLine struct {
	Market  models.Market           `json:"market"`
	Ticker  string                  `json:"ticker"`
	Results []models.AnalysisResult `json:"results"`
	Error   string                  `json:"error,omitempty"`
}

// stderrNotifier prints notices the way a toast would show them.
func stderrNotifier(w io.Writer) page.Notifier {
	var mu sync.Mutex
	return page.NotifierFunc(func(n page.Notice) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintln(w, n.Message)
	})
}

// runPage drives one page through select, set, submit and wait, and returns
// its final state.
func runPage(ctx context.Context, client analysis.Client, market models.Market, ticker string, notices page.Notifier) (models.PageState, error) {
	p := page.New(client, page.WithNotifier(notices))
	defer p.Close()

	if err := p.SelectMarket(market.Index()); err != nil {
		return p.State(), err
	}
	p.SetTicker(ticker)

	req, err := p.Submit(ctx)
	if err != nil {
		return p.State(), err
	}
	out, err := req.Wait(ctx)
	if err != nil {
		return p.State(), err
	}
	st := p.State()
	if st.Error != "" {
		return st, fmt.Errorf("%w: %s: %v", errQueryFailed, st.Error, out.Err)
	}
	return st, nil
}

// runQuery runs one query and writes each result as a JSON line to stdout.
//
// Behavior:
//   - Invalid ticker: the notice goes to stderr and page.ErrInvalidTicker is returned.
//   - Request failure: the page error message is returned wrapped in errQueryFailed.
//   - Success: one line per result, in response order.
func runQuery(ctx context.Context, client analysis.Client, marketArg, ticker string, stdout, stderr io.Writer) error {
	market, err := models.ParseMarket(marketArg)
	if err != nil {
		return err
	}
	st, err := runPage(ctx, client, market, ticker, stderrNotifier(stderr))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	for _, r := range st.Results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return nil
}

// runBatch runs one page per ticker with at most parallel in flight. Lines are
// written in input order once all pages finish. A failing ticker does not stop
// the others; the returned error counts the failures.
func runBatch(ctx context.Context, client analysis.Client, marketArg string, tickers []string, parallel int, stdout, stderr io.Writer) error {
	market, err := models.ParseMarket(marketArg)
	if err != nil {
		return err
	}
	if len(tickers) == 0 {
		return errors.New("no tickers given")
	}
	if parallel <= 0 {
		parallel = 4
	}
	if parallel > maxParallel {
		parallel = maxParallel
	}

	notices := stderrNotifier(stderr)
	lines := make([]batchLine, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, ticker := range tickers {
		g.Go(func() error {
			st, err := runPage(gctx, client, market, ticker, notices)
			lines[i] = batchLine{Market: market, Ticker: ticker, Results: st.Results}
			if err != nil {
				lines[i].Error = err.Error()
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	failed := 0
	for _, l := range lines {
		if l.Error != "" {
			failed++
		}
		if l.Results == nil {
			l.Results = []models.AnalysisResult{}
		}
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d tickers", errQueryFailed, failed, len(tickers))
	}
	return nil
}

// splitTickers parses a comma-separated list. Entries are kept as typed apart
// from surrounding spaces; empty entries are dropped.
func splitTickers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
