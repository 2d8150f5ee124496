package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/phisnet/backend/internal/logger"
	"github.com/phisnet/backend/internal/models"
	"github.com/phisnet/backend/internal/upload"
	"github.com/rs/zerolog"
)

// WebSocket message types for the upload change feed
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeSnapshot = "snapshot"
	MsgTypeCreated  = "created"
	MsgTypeUpdated  = "updated"
	MsgTypeRemoved  = "removed"
	MsgTypeCleared  = "cleared"
	MsgTypePong     = "pong"
)

const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
	maxClientMessage    = 4 * 1024
	eventBuffer         = 256
)

// WSMessage is one message of the change feed
type WSMessage struct {
	Type      string                `json:"type"`
	ID        string                `json:"id,omitempty"`
	Record    *models.UploadRecord  `json:"record,omitempty"`
	Records   []models.UploadRecord `json:"records,omitempty"`
	Stats     *models.UploadStats   `json:"stats,omitempty"`
	Count     int                   `json:"count,omitempty"`
	Message   string                `json:"message,omitempty"`
	Timestamp int64                 `json:"timestamp"`
}

// WebSocketHandler streams record changes to dashboard clients
type WebSocketHandler struct {
	uploads      UploadService
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	log          zerolog.Logger
}

// NewWebSocketHandler creates a new change feed handler
func NewWebSocketHandler(uploads UploadService, pingInterval time.Duration) *WebSocketHandler {
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	return &WebSocketHandler{
		uploads: uploads,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Origins are enforced by the CORS middleware
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		pingInterval: pingInterval,
		log:          logger.Component("websocket"),
	}
}

// HandleWebSocket sends a snapshot of all records, then every change
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	records, stats, events, unsubscribe := wsh.uploads.Watch(eventBuffer)
	defer unsubscribe()

	wsh.log.Debug().Str("remote", c.RealIP()).Msg("client connected")

	if err := wsh.send(ws, WSMessage{
		Type:      MsgTypeSnapshot,
		Records:   records,
		Stats:     &stats,
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		return nil
	}

	pings := make(chan struct{}, 1)
	done := make(chan struct{})
	go wsh.readLoop(ws, pings, done)

	ticker := time.NewTicker(wsh.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			wsh.log.Debug().Str("remote", c.RealIP()).Msg("client disconnected")
			return nil

		case ev, ok := <-events:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
				ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return nil
			}
			if err := wsh.send(ws, eventMessage(ev)); err != nil {
				return nil
			}

		case <-pings:
			if err := wsh.send(ws, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()}); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

// readLoop consumes client frames. Only the main loop writes to ws.
func (wsh *WebSocketHandler) readLoop(ws *websocket.Conn, pings chan<- struct{}, done chan<- struct{}) {
	defer close(done)

	pongWait := 2 * wsh.pingInterval
	ws.SetReadLimit(maxClientMessage)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsh.log.Warn().Err(err).Msg("connection error")
			}
			return
		}
		ws.SetReadDeadline(time.Now().Add(pongWait))

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != MsgTypePing {
			continue
		}
		select {
		case pings <- struct{}{}:
		default:
		}
	}
}

func eventMessage(ev upload.Event) WSMessage {
	msg := WSMessage{
		ID:        ev.ID,
		Record:    ev.Record,
		Count:     ev.Count,
		Timestamp: ev.Timestamp,
	}
	switch ev.Type {
	case upload.EventCreated:
		msg.Type = MsgTypeCreated
	case upload.EventUpdated:
		msg.Type = MsgTypeUpdated
	case upload.EventRemoved:
		msg.Type = MsgTypeRemoved
	case upload.EventCleared:
		msg.Type = MsgTypeCleared
	default:
		msg.Type = string(ev.Type)
	}
	return msg
}

func (wsh *WebSocketHandler) send(ws *websocket.Conn, msg WSMessage) error {
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteJSON(msg); err != nil {
		wsh.log.Debug().Err(err).Str("type", msg.Type).Msg("failed to send message")
		return err
	}
	return nil
}
