package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/guttosm/tickerdesk/internal/logger"
	"github.com/guttosm/tickerdesk/internal/page"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	streamBuffer   = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// stream pushes page events to one WebSocket connection.
type stream struct {
	pageID      string
	conn        *websocket.Conn
	events      <-chan page.Event
	unsubscribe func()
}

// Stream godoc
// @Summary      Stream page events
// @Description  Upgrades to a WebSocket and pushes {type,state|notice} JSON frames; the first frame is the current state
// @Tags         pages
// @Param        id   path  string  true  "Page id"
// @Success      101
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/pages/{id}/ws [get]
func (h *Handler) Stream(c *gin.Context) {
	p, ok := h.lookup(c)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		logger.L().Warn().Err(err).Str("page", p.ID()).Msg("websocket upgrade failed")
		return
	}

	events, unsubscribe := p.Subscribe(streamBuffer)
	s := &stream{pageID: p.ID(), conn: conn, events: events, unsubscribe: unsubscribe}
	logger.L().Info().Str("page", s.pageID).Msg("stream connected")

	go s.readPump()
	s.writePump()
}

// readPump only watches the connection: client frames are discarded, and a
// read error ends the subscription.
func (s *stream) readPump() {
	defer s.unsubscribe()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.L().Warn().Err(err).Str("page", s.pageID).Msg("stream read error")
			}
			return
		}
	}
}

func (s *stream) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.unsubscribe()
		_ = s.conn.Close()
		logger.L().Info().Str("page", s.pageID).Msg("stream disconnected")
	}()

	for {
		select {
		case ev, ok := <-s.events:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Unsubscribed, dropped as a slow consumer, or the page closed.
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteJSON(ev); err != nil {
				logger.L().Debug().Err(err).Str("page", s.pageID).Msg("stream write failed")
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
