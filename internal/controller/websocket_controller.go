package controller

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chessrules-backend/internal/middleware"
	"github.com/benbeisheim/chessrules-backend/internal/service"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// lockedConn serialises writes: session broadcasts and the read loop share
// the connection.
type lockedConn struct {
	mu sync.Mutex
	*websocket.Conn
}

func (l *lockedConn) WriteJSON(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Conn.WriteJSON(v)
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(conn *websocket.Conn) {
	gameID := conn.Params("gameId")
	playerID, _ := conn.Locals(middleware.PlayerIDKey).(string)
	c := &lockedConn{Conn: conn}

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warnf("failed to register connection: %v", err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("read error: %v", err)
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debugf("parse error: %v", err)
			wsc.sendError(c, "malformed message")
			continue
		}

		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugf("handle error: %v", err)
			wsc.sendError(c, err.Error())
		}
	}
}

// handleMessage dispatches one inbound message. Results reach the client
// through the session broadcast.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeSelect:
		var sel ws.Selection
		if err := json.Unmarshal(msg.Payload, &sel); err != nil {
			return err
		}
		_, err := wsc.gameService.HandleSelection(gameID, playerID, sel.Row, sel.Col)
		return err

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(c service.Conn, errorMsg string) {
	if err := c.WriteJSON(ws.NewError(errorMsg)); err != nil {
		log.Debugf("failed to send error: %v", err)
	}
}
