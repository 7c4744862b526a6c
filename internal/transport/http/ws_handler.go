package http

import (
	"encoding/json"
	"net/http"
	"time"

	"cyberhunt/internal/app"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxInboundBytes = 4096

// WSHandler streams the leaderboard to the leaderboard view.
type WSHandler struct {
	service  *app.GameService
	log      *zap.Logger
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, log *zap.Logger, interval time.Duration) *WSHandler {
	return &WSHandler{
		service:  service,
		log:      log,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type autoRefreshPayload struct {
	Enabled bool `json:"enabled"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and pushes a leaderboard on connect, on every
// change and, while auto-refresh is on, on every tick. Clients toggle
// auto-refresh with {"type":"autoRefresh","payload":{"enabled":bool}} and ask
// for a redraw with {"type":"refresh"}.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	autoRefresh := r.URL.Query().Get("refresh") != "false"

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxInboundBytes)

	updates, cancel := h.service.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	toggles := make(chan bool)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	push := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write failed", zap.Error(err))
				// unblock the reader
				_ = conn.Close()
				return
			}
		}
	}()

	// One ticker per connection; it never outlives the connection.
	go func() {
		defer close(updatesDone)

		var ticker *time.Ticker
		var tick <-chan time.Time
		setRefresh := func(on bool) {
			if ticker != nil {
				ticker.Stop()
				ticker, tick = nil, nil
			}
			if on {
				ticker = time.NewTicker(h.interval)
				tick = ticker.C
			}
		}
		setRefresh(autoRefresh)
		defer setRefresh(false)

		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if !push(outboundMessage[any]{Type: "leaderboard", Payload: update}) {
					return
				}
			case <-tick:
				if !push(outboundMessage[any]{Type: "leaderboard", Payload: h.service.Leaderboard()}) {
					return
				}
			case on := <-toggles:
				setRefresh(on)
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "refresh":
			push(outboundMessage[any]{Type: "leaderboard", Payload: h.service.Leaderboard()})
		case "autoRefresh":
			var payload autoRefreshPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid autoRefresh payload"}})
				continue
			}
			select {
			case toggles <- payload.Enabled:
			case <-updatesDone:
			}
		default:
			push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
