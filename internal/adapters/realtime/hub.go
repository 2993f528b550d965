package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/SscSPs/trustbridge_backend/internal/middleware"
	"github.com/SscSPs/trustbridge_backend/internal/platform/metrics"
	"github.com/gorilla/websocket"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxFrameSize  = 16 << 10
	defaultBuffer = 64
	ackStored     = "stored"
	ackDuplicate  = "duplicate"
)

// Frame is the envelope of every message exchanged over a chat connection.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Ack confirms that a sent message is stored.
type Ack struct {
	MessageID string `json:"messageID"`
	Status    string `json:"status"`
}

// ErrorPayload is sent back when an inbound frame cannot be handled.
type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	MessageID string `json:"messageID,omitempty"`
}

type deliveredFrame struct {
	MessageID string `json:"messageID"`
}

type typingFrame struct {
	ReceiverID string `json:"receiverID"`
}

// Hub tracks the live chat connections of every user. A user may hold several
// connections; events pushed to the user are fanned out to all of them.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*client]struct{}
	sendBuffer int
	upgrader   websocket.Upgrader
	validator  *frameValidator
	logger     *slog.Logger
}

// HubOption is a functional option for configuring the hub
type HubOption func(*Hub)

// WithCheckOrigin sets the origin policy applied on upgrade.
func WithCheckOrigin(check func(r *http.Request) bool) HubOption {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = check
	}
}

// WithHubLogger sets the logger used outside of a request scope.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// NewHub creates a hub whose connections buffer up to sendBuffer outbound
// frames. A connection that falls further behind is dropped.
func NewHub(sendBuffer int, options ...HubOption) (*Hub, error) {
	if sendBuffer <= 0 {
		sendBuffer = defaultBuffer
	}
	validator, err := newFrameValidator()
	if err != nil {
		return nil, err
	}
	h := &Hub{
		conns:      make(map[string]map[*client]struct{}),
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		validator: validator,
		logger:    slog.Default(),
	}
	for _, option := range options {
		option(h)
	}
	return h, nil
}

var _ portssvc.ChatNotifier = (*Hub)(nil)

type client struct {
	userID    string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// close stops the write pump. send is never closed so concurrent pushes stay safe.
func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// enqueue queues a frame without blocking. It reports false when the client is
// closed or its buffer is full.
func (c *client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func encodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", event, err)
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// Push implements portssvc.ChatNotifier.
func (h *Hub) Push(userID, event string, payload any) int {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		h.logger.Error("Failed to encode chat frame", slog.String("event", event), slog.String("error", err.Error()))
		return 0
	}

	var slow []*client
	queued := 0
	h.mu.RLock()
	for c := range h.conns[userID] {
		if c.enqueue(frame) {
			queued++
			continue
		}
		slow = append(slow, c)
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow chat connection", slog.String("user_id", userID), slog.String("event", event))
		h.drop(c)
	}
	return queued
}

// ConnectionCount returns the number of live connections of a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.conns[c.userID] = set
	}
	set[c] = struct{}{}
	metrics.ChatConnections.Inc()
}

// drop closes and unregisters a client. It is safe to call more than once.
func (h *Hub) drop(c *client) {
	c.close()
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, c.userID)
	}
	metrics.ChatConnections.Dec()
}

// Serve upgrades the request and runs the connection of userID until it
// closes. Messages still undelivered to the user are pushed right after join.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string, chat portssvc.ChatSvcFacade) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}

	// Values only; the connection outlives the request's cancellation.
	ctx := context.WithoutCancel(r.Context())
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("user_id", userID))

	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, h.sendBuffer),
		done:   make(chan struct{}),
	}
	h.register(c)
	defer h.drop(c)

	go h.writePump(c, logger)

	// Registered before the backlog is read, so nothing stored in between is missed.
	pending, err := chat.PendingMessages(ctx, userID)
	if err != nil {
		logger.Error("Failed to load pending chat messages", slog.String("error", err.Error()))
	}
	for _, msg := range pending {
		frame, err := encodeFrame(portssvc.ChatEventMessage, msg)
		if err != nil {
			continue
		}
		if !c.enqueue(frame) {
			logger.Warn("Chat backlog exceeds send buffer", slog.Int("pending", len(pending)))
			break
		}
	}

	logger.Info("Chat connection opened", slog.Int("pending", len(pending)))
	h.readPump(ctx, c, chat, logger)
	logger.Info("Chat connection closed")
	return nil
}

func (h *Hub) readPump(ctx context.Context, c *client, chat portssvc.ChatSvcFacade, logger *slog.Logger) {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Chat connection read failed", slog.String("error", err.Error()))
			}
			return
		}
		h.dispatch(ctx, c, chat, raw, logger)
	}
}

func (h *Hub) writePump(c *client, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Debug("Chat connection write failed", slog.String("error", err.Error()))
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, c *client, chat portssvc.ChatSvcFacade, raw []byte, logger *slog.Logger) {
	var in Frame
	if err := json.Unmarshal(raw, &in); err != nil {
		h.reply(c, portssvc.ChatEventError, ErrorPayload{Code: "BAD_FRAME", Message: "frame is not valid JSON"})
		return
	}
	if err := h.validator.validate(in.Event, in.Data); err != nil {
		h.reply(c, portssvc.ChatEventError, ErrorPayload{Code: "BAD_FRAME", Message: err.Error()})
		return
	}

	switch in.Event {
	case portssvc.ChatEventMessage:
		var req dto.SendMessageRequest
		if err := json.Unmarshal(in.Data, &req); err != nil {
			h.reply(c, portssvc.ChatEventError, ErrorPayload{Code: "BAD_FRAME", Message: err.Error()})
			return
		}
		msg, duplicate, err := chat.SendMessage(ctx, c.userID, req)
		if err != nil {
			h.replyError(c, err, req.MessageID, logger)
			return
		}
		status := ackStored
		if duplicate {
			status = ackDuplicate
		}
		h.reply(c, portssvc.ChatEventAck, Ack{MessageID: msg.MessageID, Status: status})

	case portssvc.ChatEventDelivered:
		var req deliveredFrame
		if err := json.Unmarshal(in.Data, &req); err != nil {
			h.reply(c, portssvc.ChatEventError, ErrorPayload{Code: "BAD_FRAME", Message: err.Error()})
			return
		}
		if err := chat.MarkDelivered(ctx, c.userID, req.MessageID); err != nil {
			h.replyError(c, err, req.MessageID, logger)
		}

	case portssvc.ChatEventTyping:
		var req typingFrame
		if err := json.Unmarshal(in.Data, &req); err != nil {
			h.reply(c, portssvc.ChatEventError, ErrorPayload{Code: "BAD_FRAME", Message: err.Error()})
			return
		}
		if err := chat.Typing(ctx, c.userID, req.ReceiverID); err != nil {
			h.replyError(c, err, "", logger)
		}
	}
}

func (h *Hub) reply(c *client, event string, payload any) {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return
	}
	if !c.enqueue(frame) {
		h.drop(c)
	}
}

func (h *Hub) replyError(c *client, err error, messageID string, logger *slog.Logger) {
	payload := ErrorPayload{Code: errorCode(err), Message: err.Error(), MessageID: messageID}
	if payload.Code == "INTERNAL" {
		logger.Error("Chat frame failed", slog.String("error", err.Error()))
		payload.Message = "internal error"
	}
	h.reply(c, portssvc.ChatEventError, payload)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return "VALIDATION"
	case errors.Is(err, apperrors.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, apperrors.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, apperrors.ErrDuplicate):
		return "DUPLICATE"
	default:
		return "INTERNAL"
	}
}
