package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tickerdesk/internal/domain/dto"
	"github.com/guttosm/tickerdesk/internal/domain/models"
	"github.com/guttosm/tickerdesk/internal/page"
	"github.com/guttosm/tickerdesk/internal/service"
)

// heldClient answers Analyze only after release is closed.
type heldClient struct {
	release chan struct{}
	items   []models.AnalysisResult

	mu   sync.Mutex
	ctxs []context.Context
}

func newHeldClient(items ...string) *heldClient {
	c := &heldClient{release: make(chan struct{})}
	for _, it := range items {
		c.items = append(c.items, models.AnalysisResult(it))
	}
	return c
}

func (c *heldClient) Analyze(ctx context.Context, _ models.Market, _ string) ([]models.AnalysisResult, error) {
	c.mu.Lock()
	c.ctxs = append(c.ctxs, ctx)
	c.mu.Unlock()
	select {
	case <-c.release:
		return c.items, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *heldClient) Ping(context.Context) error { return nil }

func (c *heldClient) lastCtx() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.ctxs) == 0 {
		return nil
	}
	return c.ctxs[len(c.ctxs)-1]
}

type mockHistory struct {
	items  []models.QueryRecord
	err    error
	ticker string
	limit  int
}

func (m *mockHistory) Record(context.Context, models.QueryRecord) error { return nil }

func (m *mockHistory) Recent(_ context.Context, ticker string, limit int) ([]models.QueryRecord, error) {
	m.ticker, m.limit = ticker, limit
	return m.items, m.err
}

var _ service.HistoryService = (*mockHistory)(nil)

func setupRouter(t *testing.T, client *heldClient, history service.HistoryService) (*gin.Engine, *page.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := page.NewRegistry(func(id string) *page.Page { return page.New(client, page.WithID(id)) }, 0)
	t.Cleanup(reg.CloseAll)
	return NewRouter(NewHandler(reg, history)), reg
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) dto.PageResponse {
	t.Helper()
	var out dto.PageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return out
}

func createPage(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(r, http.MethodPost, "/api/v1/pages", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create status=%d", w.Code)
	}
	return decodePage(t, w).ID
}

func waitIdle(t *testing.T, reg *page.Registry, id string) models.PageState {
	t.Helper()
	p, ok := reg.Get(id)
	if !ok {
		t.Fatalf("page %s not found", id)
	}
	deadline := time.Now().Add(2 * time.Second)
	for p.Loading() {
		if time.Now().After(deadline) {
			t.Fatalf("page still loading")
		}
		time.Sleep(time.Millisecond)
	}
	return p.State()
}

func TestListMarkets(t *testing.T) {
	r, _ := setupRouter(t, newHeldClient(), nil)
	w := do(r, http.MethodGet, "/api/v1/markets", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var out []dto.MarketOption
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(out) != 2 || out[0].Name != "Shanghai" || out[1].Name != "Shenzhen" {
		t.Fatalf("unexpected markets: %+v", out)
	}
}

func TestCreateAndGetPage(t *testing.T) {
	r, _ := setupRouter(t, newHeldClient(), nil)

	w := do(r, http.MethodPost, "/api/v1/pages", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d", w.Code)
	}
	created := decodePage(t, w)
	if created.ID == "" || w.Header().Get(SessionHeader) != created.ID {
		t.Fatalf("session id mismatch: body=%q header=%q", created.ID, w.Header().Get(SessionHeader))
	}
	if created.State.Market != models.Shanghai || created.State.Ticker != "" || created.State.IsLoading || created.State.Error != "" || len(created.State.Results) != 0 {
		t.Fatalf("unexpected initial state: %+v", created.State)
	}

	if w := do(r, http.MethodGet, "/api/v1/pages/"+created.ID, ""); w.Code != http.StatusOK {
		t.Fatalf("get status=%d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/pages/missing", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown page status=%d", w.Code)
	}
}

func TestSelectMarket_TableDriven(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		want   models.Market
	}{
		{name: "shenzhen", body: `{"index":1}`, status: http.StatusOK, want: models.Shenzhen},
		{name: "shanghai", body: `{"index":0}`, status: http.StatusOK, want: models.Shanghai},
		{name: "out of range", body: `{"index":2}`, status: http.StatusBadRequest},
		{name: "missing index", body: `{}`, status: http.StatusBadRequest},
		{name: "bad json", body: `{`, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := setupRouter(t, newHeldClient(), nil)
			id := createPage(t, r)
			w := do(r, http.MethodPut, "/api/v1/pages/"+id+"/market", tc.body)
			if w.Code != tc.status {
				t.Fatalf("want %d got %d (%s)", tc.status, w.Code, w.Body.String())
			}
			if tc.status == http.StatusOK && decodePage(t, w).State.Market != tc.want {
				t.Fatalf("market not applied: %s", w.Body.String())
			}
		})
	}
}

func TestSetTicker_KeepsTextVerbatim(t *testing.T) {
	r, _ := setupRouter(t, newHeldClient(), nil)
	id := createPage(t, r)
	w := do(r, http.MethodPut, "/api/v1/pages/"+id+"/ticker", `{"ticker":" 6003"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := decodePage(t, w).State.Ticker; got != " 6003" {
		t.Fatalf("ticker=%q", got)
	}
	if w := do(r, http.MethodPut, "/api/v1/pages/missing/ticker", `{"ticker":"600310"}`); w.Code != http.StatusNotFound {
		t.Fatalf("unknown page status=%d", w.Code)
	}
}

func TestSubmit_TableDriven(t *testing.T) {
	cases := []struct {
		name   string
		ticker string
		status int
	}{
		{name: "empty ticker", ticker: "", status: http.StatusBadRequest},
		{name: "short ticker", ticker: "60031", status: http.StatusBadRequest},
		{name: "long ticker", ticker: "6003100", status: http.StatusBadRequest},
		{name: "valid ticker", ticker: "600310", status: http.StatusAccepted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newHeldClient(`{"name":"x"}`)
			r, reg := setupRouter(t, client, nil)
			id := createPage(t, r)
			do(r, http.MethodPut, "/api/v1/pages/"+id+"/ticker", `{"ticker":"`+tc.ticker+`"}`)

			w := do(r, http.MethodPost, "/api/v1/pages/"+id+"/submit", "")
			if w.Code != tc.status {
				t.Fatalf("want %d got %d", tc.status, w.Code)
			}
			if tc.status == http.StatusBadRequest {
				var er dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Message != page.MsgInvalidTicker {
					t.Fatalf("unexpected error body: %s", w.Body.String())
				}
				if p, _ := reg.Get(id); p.Loading() {
					t.Fatalf("invalid ticker must not start a request")
				}
				return
			}

			st := decodePage(t, w).State
			if !st.IsLoading || st.RequestID == "" {
				t.Fatalf("expected loading state, got %+v", st)
			}
			close(client.release)
			final := waitIdle(t, reg, id)
			if final.Error != "" || len(final.Results) != 1 {
				t.Fatalf("unexpected final state: %+v", final)
			}
		})
	}
}

func TestSubmit_OutlivesRequestContext(t *testing.T) {
	client := newHeldClient(`{}`)
	r, reg := setupRouter(t, client, nil)
	id := createPage(t, r)
	do(r, http.MethodPut, "/api/v1/pages/"+id+"/ticker", `{"ticker":"000001"}`)

	if w := do(r, http.MethodPost, "/api/v1/pages/"+id+"/submit", ""); w.Code != http.StatusAccepted {
		t.Fatalf("status=%d", w.Code)
	}
	deadline := time.Now().Add(2 * time.Second)
	for client.lastCtx() == nil {
		if time.Now().After(deadline) {
			t.Fatalf("analysis never started")
		}
		time.Sleep(time.Millisecond)
	}
	if err := client.lastCtx().Err(); err != nil {
		t.Fatalf("analysis context ended with the HTTP request: %v", err)
	}
	close(client.release)
	waitIdle(t, reg, id)
}

func TestRefresh(t *testing.T) {
	client := newHeldClient(`{}`)
	r, reg := setupRouter(t, client, nil)
	id := createPage(t, r)

	w := do(r, http.MethodPost, "/api/v1/pages/"+id+"/refresh", "")
	if w.Code != http.StatusOK || decodePage(t, w).State.IsLoading {
		t.Fatalf("refresh without ticker: status=%d body=%s", w.Code, w.Body.String())
	}

	do(r, http.MethodPut, "/api/v1/pages/"+id+"/ticker", `{"ticker":"123"}`)
	if w := do(r, http.MethodPost, "/api/v1/pages/"+id+"/refresh", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("refresh with short ticker: status=%d", w.Code)
	}

	do(r, http.MethodPut, "/api/v1/pages/"+id+"/ticker", `{"ticker":"000001"}`)
	if w := do(r, http.MethodPost, "/api/v1/pages/"+id+"/refresh", ""); w.Code != http.StatusAccepted {
		t.Fatalf("refresh with ticker: status=%d", w.Code)
	}
	close(client.release)
	waitIdle(t, reg, id)
}

func TestSubmit_ClosedPage(t *testing.T) {
	r, reg := setupRouter(t, newHeldClient(), nil)
	id := createPage(t, r)
	do(r, http.MethodPut, "/api/v1/pages/"+id+"/ticker", `{"ticker":"600310"}`)
	p, _ := reg.Get(id)
	p.Close()

	if w := do(r, http.MethodPost, "/api/v1/pages/"+id+"/submit", ""); w.Code != http.StatusGone {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestHistory_TableDriven(t *testing.T) {
	cases := []struct {
		name       string
		history    *mockHistory
		query      string
		status     int
		wantTicker string
		wantLimit  int
	}{
		{name: "disabled", history: nil, query: "", status: http.StatusNotFound},
		{name: "bad limit", history: &mockHistory{}, query: "?limit=abc", status: http.StatusBadRequest},
		{name: "store error", history: &mockHistory{err: errors.New("db down")}, query: "", status: http.StatusInternalServerError},
		{
			name:       "filtered",
			history:    &mockHistory{items: []models.QueryRecord{{RequestID: "r1", Ticker: "600310", Status: models.QueryStatusSuccess}}},
			query:      "?ticker=600310&limit=5",
			status:     http.StatusOK,
			wantTicker: "600310",
			wantLimit:  5,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var hs service.HistoryService
			if tc.history != nil {
				hs = tc.history
			}
			r, _ := setupRouter(t, newHeldClient(), hs)
			w := do(r, http.MethodGet, "/api/v1/history"+tc.query, "")
			if w.Code != tc.status {
				t.Fatalf("want %d got %d", tc.status, w.Code)
			}
			if tc.status != http.StatusOK {
				return
			}
			var out dto.HistoryResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if len(out.Items) != 1 || out.Items[0].RequestID != "r1" {
				t.Fatalf("unexpected items: %+v", out.Items)
			}
			if tc.history.ticker != tc.wantTicker || tc.history.limit != tc.wantLimit {
				t.Fatalf("service got ticker=%q limit=%d", tc.history.ticker, tc.history.limit)
			}
		})
	}
}

func TestErrorReplies_AbortAndAttachError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := page.NewRegistry(func(id string) *page.Page { return page.New(newHeldClient(), page.WithID(id)) }, 0)
	t.Cleanup(reg.CloseAll)
	h := NewHandler(reg, &mockHistory{err: errors.New("db down")})

	var aborted bool
	var attached []string
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		aborted = c.IsAborted()
		attached = c.Errors.Errors()
	})
	r.GET("/history", h.History)
	r.GET("/pages/:id", h.GetPage)

	w := do(r, http.MethodGet, "/history", "")
	if w.Code != http.StatusInternalServerError || !aborted {
		t.Fatalf("status=%d aborted=%v", w.Code, aborted)
	}
	var er dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Message != "failed to fetch history" || er.ErrorDetails != "db down" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if len(attached) != 1 || attached[0] != "db down" {
		t.Fatalf("error not attached to context: %v", attached)
	}

	w = do(r, http.MethodGet, "/pages/missing", "")
	if w.Code != http.StatusNotFound || !aborted || len(attached) != 0 {
		t.Fatalf("status=%d aborted=%v errors=%v", w.Code, aborted, attached)
	}
}
