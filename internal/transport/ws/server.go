// Package ws provides the WebSocket chat endpoint.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/theIndrajeet/AskSarkar/internal/config"
	"github.com/theIndrajeet/AskSarkar/internal/hub"
	"github.com/theIndrajeet/AskSarkar/internal/protocol"
	"github.com/theIndrajeet/AskSarkar/internal/service"
)

// Server handles WebSocket connections.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	service  *service.Service
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *hub.Hub, svc *service.Service) *Server {
	return &Server{
		cfg:     cfg,
		hub:     h,
		service: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ConnectionCount returns the number of open websocket connections.
func (s *Server) ConnectionCount() int {
	return s.hub.GetConnectionCount()
}

// SessionCount returns the number of sessions with a bound connection.
func (s *Server) SessionCount() int {
	return s.hub.GetSessionCount()
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error("Failed to upgrade websocket", "err", err)
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)

	if s.cfg.MaxMessageSize > 0 {
		ws.SetReadLimit(s.cfg.MaxMessageSize)
	}

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads messages from the WebSocket connection.
func (s *Server) readPump(conn *hub.Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("Websocket read failed", "conn", conn.ID, "err", err)
			}
			break
		}

		s.handleMessage(conn, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("Failed to write message", "conn", conn.ID, "err", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches incoming messages to appropriate handlers.
func (s *Server) handleMessage(conn *hub.Connection, data []byte) {
	var baseMsg protocol.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch baseMsg.Type {
	case protocol.TypeHello:
		s.handleHello(conn, data)
	case protocol.TypeUserMessage:
		s.handleUserMessage(conn, data)
	case protocol.TypeComplete:
		s.handleComplete(conn, data)
	default:
		s.sendError(conn, baseMsg.RequestID, protocol.ErrorCodeInvalidMessage, "unknown message type: "+baseMsg.Type)
	}
}

// handleHello validates the client and binds the connection to a session.
// An empty session_id opens a new session.
func (s *Server) handleHello(conn *hub.Connection, data []byte) {
	var msg protocol.HelloMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid hello message")
		return
	}

	if s.cfg.APIKey != "" && msg.APIKey != s.cfg.APIKey {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeUnauthorized, "invalid api_key")
		return
	}

	ctx := context.Background()
	ack := protocol.HelloAckMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeHelloAck,
			RequestID: msg.RequestID,
		},
	}

	if msg.SessionID == "" {
		start, err := s.service.StartSession(ctx)
		if err != nil {
			s.sendServiceError(conn, msg.RequestID, err)
			return
		}
		ack.SessionID = start.SessionID
		ack.Greeting = start.Greeting
		ack.Stage = start.Stage
	} else {
		snapshot, err := s.service.SessionContext(ctx, msg.SessionID)
		if err != nil {
			s.sendServiceError(conn, msg.RequestID, err)
			return
		}
		ack.SessionID = msg.SessionID
		ack.Greeting = s.service.Greeting(ctx)
		ack.Stage = snapshot.Session.Stage
	}

	s.hub.BindSession(conn, ack.SessionID)

	ack.Ts = time.Now().UnixMilli()
	s.send(conn, ack)

	log.Info("Hello handshake completed", "session_id", ack.SessionID)
}

// handleUserMessage runs one conversation turn off the read loop and
// broadcasts the outcome to the session.
func (s *Server) handleUserMessage(conn *hub.Connection, data []byte) {
	var msg protocol.UserMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid user_message")
		return
	}

	if conn.SessionID == "" {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeSessionRequired, "must send hello first")
		return
	}
	sessionID := conn.SessionID

	s.send(conn, s.stateMessage(sessionID, msg.RequestID, protocol.StateThinking))

	go func() {
		timeout := s.cfg.LLMTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout+5*time.Second)
		defer cancel()

		result, err := s.service.ProcessMessage(ctx, sessionID, msg.Content, msg.Voice)
		if errors.Is(err, service.ErrTurnInProgress) {
			// The running turn still owns the session state.
			s.send(conn, errorMessage(sessionID, msg.RequestID, err))
			return
		}
		if err != nil {
			log.Warn("Turn failed", "session_id", sessionID, "err", err)
			s.broadcast(sessionID, errorMessage(sessionID, msg.RequestID, err))
		} else {
			s.broadcast(sessionID, protocol.AssistantReplyMessage{
				BaseMessage: protocol.BaseMessage{
					Type:      protocol.TypeAssistantReply,
					Ts:        time.Now().UnixMilli(),
					RequestID: msg.RequestID,
					SessionID: sessionID,
				},
				Reply:    result.Reply,
				Stage:    result.Stage,
				Document: result.Document,
				Usage:    result.Usage,
			})
		}
		s.broadcast(sessionID, s.stateMessage(sessionID, msg.RequestID, protocol.StateIdle))
	}()
}

// handleComplete finalizes the bound session.
func (s *Server) handleComplete(conn *hub.Connection, data []byte) {
	var msg protocol.CompleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid complete message")
		return
	}

	if conn.SessionID == "" {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeSessionRequired, "must send hello first")
		return
	}

	summary, doc, err := s.service.CompleteSession(context.Background(), conn.SessionID)
	if err != nil {
		s.sendServiceError(conn, msg.RequestID, err)
		return
	}

	s.broadcast(conn.SessionID, protocol.RTIReadyMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeRTIReady,
			Ts:        time.Now().UnixMilli(),
			RequestID: msg.RequestID,
			SessionID: conn.SessionID,
		},
		Document: doc,
		Summary:  summary,
	})
}

func (s *Server) stateMessage(sessionID, requestID, state string) protocol.StateMessage {
	return protocol.StateMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeState,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
			SessionID: sessionID,
		},
		State: state,
	}
}

// sendError sends an error message to a connection.
func (s *Server) sendError(conn *hub.Connection, requestID, code, message string) {
	errMsg := protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeError,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
			SessionID: conn.SessionID,
		},
		Code:    code,
		Message: message,
	}
	s.send(conn, errMsg)
}

func (s *Server) sendServiceError(conn *hub.Connection, requestID string, err error) {
	s.send(conn, errorMessage(conn.SessionID, requestID, err))
}

func (s *Server) send(conn *hub.Connection, v interface{}) {
	if err := s.hub.SendJSONToConnection(conn, v); err != nil {
		log.Debug("Failed to send message", "conn", conn.ID, "err", err)
	}
}

func (s *Server) broadcast(sessionID string, v interface{}) {
	if err := s.hub.BroadcastJSON(sessionID, v); err != nil {
		log.Debug("Failed to broadcast message", "session_id", sessionID, "err", err)
	}
}

// errorMessage maps service errors to protocol error codes.
func errorMessage(sessionID, requestID string, err error) protocol.ErrorMessage {
	msg := protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeError,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
			SessionID: sessionID,
		},
		Code:    protocol.ErrorCodeInternalError,
		Message: err.Error(),
	}

	var quotaErr *service.QuotaError
	switch {
	case errors.As(err, &quotaErr):
		msg.Code = protocol.ErrorCodeQuotaExceeded
		msg.Usage = quotaErr.Usage
	case errors.Is(err, service.ErrSessionNotFound):
		msg.Code = protocol.ErrorCodeSessionNotFound
	case errors.Is(err, service.ErrTurnInProgress):
		msg.Code = protocol.ErrorCodeTurnInProgress
	case errors.Is(err, service.ErrPolicyBlocked):
		msg.Code = protocol.ErrorCodePolicyBlocked
	}
	return msg
}
