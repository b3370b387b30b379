package page

import (
	"context"
	"time"

	"github.com/guttosm/tickerdesk/internal/domain/models"
)

// Outcome is the result of one analysis request.
//
// Exactly one of Results and Err is meaningful. Stale is set when a newer
// submission superseded this one; a stale outcome was not applied to the page.
type Outcome struct {
	Results  []models.AnalysisResult
	Err      error
	Stale    bool
	Duration time.Duration
}

// Request is the handle returned by Submit and Refresh.
type Request struct {
	ID     string
	Market models.Market
	Ticker string

	seq     uint64
	done    chan struct{}
	outcome Outcome
}

func newRequest(id string, seq uint64, market models.Market, ticker string) *Request {
	return &Request{ID: id, Market: market, Ticker: ticker, seq: seq, done: make(chan struct{})}
}

// Done is closed once the outcome has been applied to the page or discarded.
func (r *Request) Done() <-chan struct{} { return r.done }

// Outcome returns the request result. It is only valid after Done is closed.
func (r *Request) Outcome() Outcome { return r.outcome }

// Wait blocks until the request finishes or ctx is done.
func (r *Request) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-r.done:
		return r.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (r *Request) finish(o Outcome) {
	r.outcome = o
	close(r.done)
}
