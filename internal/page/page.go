package page

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/guttosm/tickerdesk/internal/analysis"
	"github.com/guttosm/tickerdesk/internal/domain/models"
	"github.com/guttosm/tickerdesk/internal/logger"
)

// TickerLength is the exact number of characters a ticker must have.
// Characters are counted as runes, so a ticker outside the Basic Multilingual
// Plane counts one per symbol rather than one per UTF-16 code unit.
const TickerLength = 6

// User-facing messages.
const (
	MsgInvalidTicker = "please enter a 6-digit ticker"
	MsgInvalidMarket = "please pick Shanghai or Shenzhen"
	MsgAPIFailed     = "API call failed"
	MsgNetworkFailed = "network request failed, please check your network connection"
)

var (
	ErrInvalidTicker = errors.New("ticker must be exactly 6 characters")
	ErrInvalidMarket = errors.New("market index out of range")
	ErrClosed        = errors.New("page closed")
)

// EventType tells subscribers what an Event carries.
type EventType string

const (
	EventState  EventType = "state"
	EventNotice EventType = "notice"
)

// Event is pushed to subscribers on every state change and notice.
type Event struct {
	Type   EventType         `json:"type"`
	State  *models.PageState `json:"state,omitempty"`
	Notice *Notice           `json:"notice,omitempty"`
}

// CompletionHook is called for every applied (non-stale) request outcome.
type CompletionHook func(models.QueryRecord)

// Option configures a Page.
type Option func(*Page)

// WithID sets the page (session) id. A random UUID is used otherwise.
func WithID(id string) Option { return func(p *Page) { p.id = id } }

// WithNotifier routes notices to n in addition to subscribers.
func WithNotifier(n Notifier) Option { return func(p *Page) { p.notifier = n } }

// WithCompletionHook registers fn to observe applied outcomes.
func WithCompletionHook(fn CompletionHook) Option { return func(p *Page) { p.onComplete = fn } }

// Page is the query page view-model.
//
// It owns its PageState exclusively. All methods are safe for concurrent use.
// Only the completion of the most recent submission may write state; older
// completions are discarded.
type Page struct {
	id         string
	client     analysis.Client
	notifier   Notifier
	onComplete CompletionHook

	mu     sync.Mutex
	state  models.PageState
	seq    uint64
	cancel context.CancelFunc
	subs   map[int]chan Event
	nextID int
	closed bool
}

// New creates an idle page bound to client.
func New(client analysis.Client, opts ...Option) *Page {
	p := &Page{
		client: client,
		state:  models.PageState{Market: models.Shanghai, Results: []models.AnalysisResult{}},
		subs:   make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.id == "" {
		p.id = uuid.NewString()
	}
	return p
}

// ID returns the page (session) id.
func (p *Page) ID() string { return p.id }

// State returns a snapshot of the page state.
func (p *Page) State() models.PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// SelectMarket sets the market to the entry at index of models.Markets().
func (p *Page) SelectMarket(index int) error {
	m, ok := models.MarketAt(index)
	if !ok {
		p.notify(Notice{Kind: NoticeInvalidMarket, Message: MsgInvalidMarket})
		return ErrInvalidMarket
	}
	p.update(func(s *models.PageState) { s.Market = m })
	return nil
}

// SetTicker stores the ticker text exactly as typed.
func (p *Page) SetTicker(text string) {
	p.update(func(s *models.PageState) { s.Ticker = text })
}

// Submit validates the ticker and starts one analysis request.
//
// Behavior:
//   - Ticker length != 6: raises an invalid-ticker notice and returns
//     ErrInvalidTicker without touching state or the network.
//   - Otherwise: clears error and results, sets the loading flag, supersedes any
//     in-flight request and issues a new one.
//
// ctx bounds the lifetime of the analysis request, not of the call itself.
func (p *Page) Submit(ctx context.Context) (*Request, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if utf8.RuneCountInString(p.state.Ticker) != TickerLength {
		p.mu.Unlock()
		p.notify(Notice{Kind: NoticeInvalidTicker, Message: MsgInvalidTicker})
		return nil, ErrInvalidTicker
	}

	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	req := newRequest(uuid.NewString(), p.seq, p.state.Market, p.state.Ticker)
	reqCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.state.Error = ""
	p.state.Results = []models.AnalysisResult{}
	p.state.IsLoading = true
	p.state.RequestID = req.ID
	snap := p.state.Clone()
	p.broadcastLocked(Event{Type: EventState, State: &snap})
	p.mu.Unlock()

	log := logger.WithRequest(req.ID)
	log.Info().Str("page", p.id).Str("market", req.Market.String()).Str("ticker", req.Ticker).Msg("analysis submitted")

	go p.requestAnalysis(reqCtx, cancel, req)
	return req, nil
}

// Refresh re-submits when a ticker is present. With an empty ticker it does
// nothing and returns (nil, nil).
func (p *Page) Refresh(ctx context.Context) (*Request, error) {
	p.mu.Lock()
	empty := p.state.Ticker == ""
	p.mu.Unlock()
	if empty {
		return nil, nil
	}
	return p.Submit(ctx)
}

// Subscribe registers a listener for page events. The current state is
// delivered first. A subscriber that falls behind by more than buffer events
// is dropped and its channel closed. Call the returned func to unsubscribe.
func (p *Page) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	snap := p.state.Clone()
	ch <- Event{Type: EventState, State: &snap}
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if c, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(c)
			}
		})
	}
}

// Loading reports whether a request is in flight.
func (p *Page) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.IsLoading
}

// Subscribers returns the number of live subscriptions.
func (p *Page) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Close cancels any in-flight request and closes all subscriber channels.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}

func (p *Page) requestAnalysis(ctx context.Context, cancel context.CancelFunc, req *Request) {
	defer cancel()
	start := time.Now()
	results, err := p.client.Analyze(ctx, req.Market, req.Ticker)
	p.apply(req, Outcome{Results: results, Err: err, Duration: time.Since(start)})
}

// apply writes the outcome to state unless req has been superseded.
func (p *Page) apply(req *Request, out Outcome) {
	log := logger.WithRequest(req.ID)

	p.mu.Lock()
	if req.seq != p.seq || p.closed {
		p.mu.Unlock()
		out.Stale = true
		log.Debug().Str("page", p.id).Msg("stale analysis response discarded")
		req.finish(out)
		return
	}

	p.cancel = nil
	p.state.IsLoading = false
	if out.Err != nil {
		p.state.Error = messageFor(out.Err)
		p.state.Results = []models.AnalysisResult{}
	} else {
		p.state.Error = ""
		p.state.Results = out.Results
		if p.state.Results == nil {
			p.state.Results = []models.AnalysisResult{}
		}
	}
	snap := p.state.Clone()
	p.broadcastLocked(Event{Type: EventState, State: &snap})
	p.mu.Unlock()

	rec := models.QueryRecord{
		RequestID:   req.ID,
		SessionID:   p.id,
		Market:      req.Market,
		Ticker:      req.Ticker,
		Status:      models.QueryStatusSuccess,
		ResultCount: len(snap.Results),
		DurationMS:  out.Duration.Milliseconds(),
		CreatedAt:   time.Now().UTC(),
	}
	if out.Err != nil {
		rec.Status = models.QueryStatusFailed
		rec.ErrorMessage = out.Err.Error()
		log.Warn().Str("page", p.id).Err(out.Err).Str("kind", analysis.KindOf(out.Err).String()).Msg("analysis failed")
	} else {
		log.Info().Str("page", p.id).Int("results", rec.ResultCount).Dur("elapsed", out.Duration).Msg("analysis completed")
	}
	if p.onComplete != nil {
		p.onComplete(rec)
	}

	req.finish(out)
}

func (p *Page) update(fn func(*models.PageState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.state)
	snap := p.state.Clone()
	p.broadcastLocked(Event{Type: EventState, State: &snap})
}

func (p *Page) notify(n Notice) {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	p.mu.Lock()
	p.broadcastLocked(Event{Type: EventNotice, Notice: &n})
	p.mu.Unlock()
	if p.notifier != nil {
		p.notifier.Notify(n)
	}
}

// broadcastLocked fans ev out to subscribers. p.mu must be held.
func (p *Page) broadcastLocked(ev Event) {
	for id, ch := range p.subs {
		select {
		case ch <- ev:
		default:
			delete(p.subs, id)
			close(ch)
		}
	}
}

// messageFor collapses every request failure into one of two generic messages.
func messageFor(err error) string {
	if analysis.KindOf(err) == analysis.KindTransport || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return MsgNetworkFailed
	}
	return MsgAPIFailed
}
