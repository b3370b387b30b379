package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/tickerdesk/internal/domain/dto"
	"github.com/guttosm/tickerdesk/internal/middleware"
	"github.com/guttosm/tickerdesk/internal/page"
	"github.com/guttosm/tickerdesk/internal/service"
)

// SessionHeader carries the page id on create responses.
const SessionHeader = "X-Session-ID"

// Handler exposes hosted query pages over HTTP.
//
// Responsibilities:
//   - Look up the page for the session id in the path
//   - Translate page operations to REST calls
//   - Map page errors to HTTP status codes and dto.ErrorResponse bodies
type Handler struct {
	pages   *page.Registry
	history service.HistoryService
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - pages (*page.Registry): Registry holding one page per session.
//   - history (service.HistoryService): Query history; nil when recording is disabled.
//
// Returns:
//   - *Handler: A handler ready to be registered with the router.
func NewHandler(pages *page.Registry, history service.HistoryService) *Handler {
	return &Handler{pages: pages, history: history}
}

// ListMarkets godoc
// @Summary      List markets
// @Description  Returns the market picker entries in display order
// @Tags         pages
// @Produce      json
// @Success      200  {array}  dto.MarketOption
// @Router       /api/v1/markets [get]
func (h *Handler) ListMarkets(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MarketOptions())
}

// CreatePage godoc
// @Summary      Open a query page
// @Description  Creates a page session and returns its id and initial state
// @Tags         pages
// @Produce      json
// @Success      201  {object}  dto.PageResponse
// @Router       /api/v1/pages [post]
func (h *Handler) CreatePage(c *gin.Context) {
	p := h.pages.Create()
	c.Header(SessionHeader, p.ID())
	c.JSON(http.StatusCreated, dto.PageResponse{ID: p.ID(), State: p.State()})
}

// GetPage godoc
// @Summary      Get page state
// @Tags         pages
// @Produce      json
// @Param        id   path      string  true  "Page id"
// @Success      200  {object}  dto.PageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/pages/{id} [get]
func (h *Handler) GetPage(c *gin.Context) {
	p, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.PageResponse{ID: p.ID(), State: p.State()})
}

// SelectMarket godoc
// @Summary      Select market
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "Page id"
// @Param        body  body      dto.SelectMarketRequest  true  "Market index"
// @Success      200   {object}  dto.PageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/pages/{id}/market [put]
func (h *Handler) SelectMarket(c *gin.Context) {
	p, ok := h.lookup(c)
	if !ok {
		return
	}
	var req dto.SelectMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "index is required", err)
		return
	}
	if err := p.SelectMarket(*req.Index); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, page.MsgInvalidMarket, err)
		return
	}
	c.JSON(http.StatusOK, dto.PageResponse{ID: p.ID(), State: p.State()})
}

// SetTicker godoc
// @Summary      Set ticker text
// @Description  Stores the ticker exactly as typed; validation happens on submit
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Page id"
// @Param        body  body      dto.SetTickerRequest  true  "Ticker"
// @Success      200   {object}  dto.PageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/pages/{id}/ticker [put]
func (h *Handler) SetTicker(c *gin.Context) {
	p, ok := h.lookup(c)
	if !ok {
		return
	}
	var req dto.SetTickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid body", err)
		return
	}
	p.SetTicker(req.Ticker)
	c.JSON(http.StatusOK, dto.PageResponse{ID: p.ID(), State: p.State()})
}

// Submit godoc
// @Summary      Submit the query
// @Description  Validates the ticker and starts one analysis request; poll the page or use the stream for the result
// @Tags         pages
// @Produce      json
// @Param        id   path      string  true  "Page id"
// @Success      202  {object}  dto.PageResponse
// @Failure      400  {object}  dto.ErrorResponse  "Ticker is not 6 characters"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      410  {object}  dto.ErrorResponse
// @Router       /api/v1/pages/{id}/submit [post]
func (h *Handler) Submit(c *gin.Context) {
	p, ok := h.lookup(c)
	if !ok {
		return
	}
	_, err := p.Submit(requestScope(c))
	h.respondStarted(c, p, err, true)
}

// Refresh godoc
// @Summary      Refresh the query
// @Description  Re-submits when a ticker is present; otherwise returns the unchanged state with 200
// @Tags         pages
// @Produce      json
// @Param        id   path      string  true  "Page id"
// @Success      200  {object}  dto.PageResponse  "Nothing to refresh"
// @Success      202  {object}  dto.PageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/pages/{id}/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	p, ok := h.lookup(c)
	if !ok {
		return
	}
	req, err := p.Refresh(requestScope(c))
	h.respondStarted(c, p, err, req != nil)
}

// History godoc
// @Summary      Recent queries
// @Tags         history
// @Produce      json
// @Param        ticker  query     string  false  "Filter by ticker" example(600310)
// @Param        limit   query     int     false  "Max items (1-100)" example(20)
// @Success      200     {object}  dto.HistoryResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse  "History disabled"
// @Failure      500     {object}  dto.ErrorResponse
// @Router       /api/v1/history [get]
func (h *Handler) History(c *gin.Context) {
	if h.history == nil {
		middleware.AbortWithError(c, http.StatusNotFound, "history is disabled", nil)
		return
	}
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = n
	}
	items, err := h.history.Recent(c.Request.Context(), c.Query("ticker"), limit)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to fetch history", err)
		return
	}
	c.JSON(http.StatusOK, dto.HistoryResponse{Items: items})
}

func (h *Handler) lookup(c *gin.Context) (*page.Page, bool) {
	p, ok := h.pages.Get(c.Param("id"))
	if !ok {
		middleware.AbortWithError(c, http.StatusNotFound, "page not found", nil)
		return nil, false
	}
	return p, true
}

func (h *Handler) respondStarted(c *gin.Context, p *page.Page, err error, started bool) {
	switch {
	case errors.Is(err, page.ErrInvalidTicker):
		middleware.AbortWithError(c, http.StatusBadRequest, page.MsgInvalidTicker, err)
	case errors.Is(err, page.ErrClosed):
		middleware.AbortWithError(c, http.StatusGone, "page closed", err)
	case err != nil:
		_ = c.Error(err)
	case started:
		c.JSON(http.StatusAccepted, dto.PageResponse{ID: p.ID(), State: p.State()})
	default:
		c.JSON(http.StatusOK, dto.PageResponse{ID: p.ID(), State: p.State()})
	}
}

// requestScope keeps request values (ids) but drops the HTTP deadline: the
// analysis outlives the submit call.
func requestScope(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
