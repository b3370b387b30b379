package page

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guttosm/tickerdesk/internal/logger"
)

// Factory builds a page for a new session id.
type Factory func(id string) *Page

type entry struct {
	page     *Page
	lastSeen time.Time
}

// Registry holds one Page per session.
type Registry struct {
	mu      sync.Mutex
	pages   map[string]*entry
	newPage Factory
	ttl     time.Duration
	now     func() time.Time
}

// NewRegistry creates an empty registry. Pages idle for longer than ttl are
// removed by Sweep; a non-positive ttl disables eviction.
func NewRegistry(newPage Factory, ttl time.Duration) *Registry {
	return &Registry{
		pages:   make(map[string]*entry),
		newPage: newPage,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create registers a page under a fresh session id.
func (r *Registry) Create() *Page {
	id := uuid.NewString()
	p := r.newPage(id)

	r.mu.Lock()
	r.pages[p.ID()] = &entry{page: p, lastSeen: r.now()}
	r.mu.Unlock()

	logger.L().Debug().Str("page", p.ID()).Msg("page created")
	return p
}

// Get returns the page for id and marks it as used.
func (r *Registry) Get(id string) (*Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.pages[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.page, true
}

// Len returns the number of live pages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// Sweep closes and removes pages idle for longer than the ttl. Pages with a
// request in flight or a live subscriber are kept. It returns how many pages were removed.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	var expired []*Page
	r.mu.Lock()
	for id, e := range r.pages {
		if e.lastSeen.Before(cutoff) && !e.page.Loading() && e.page.Subscribers() == 0 {
			delete(r.pages, id)
			expired = append(expired, e.page)
		}
	}
	r.mu.Unlock()

	for _, p := range expired {
		p.Close()
	}
	if len(expired) > 0 {
		logger.L().Info().Int("evicted", len(expired)).Msg("idle pages evicted")
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep()
		}
	}
}

// CloseAll closes every page and empties the registry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	pages := r.pages
	r.pages = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range pages {
		e.page.Close()
	}
}
