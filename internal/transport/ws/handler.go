package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"kenolive/internal/logger"
	"kenolive/internal/model"
	"kenolive/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// opTimeout bounds the store calls made while handling one frame
	opTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub     *Hub
	authSvc *service.AuthService
	rooms   *service.RoomService
	games   *service.GameService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, rooms *service.RoomService, games *service.GameService) *Handler {
	return &Handler{
		hub:     hub,
		authSvc: authSvc,
		rooms:   rooms,
		games:   games,
	}
}

// RoomWS handles GET /v1/ws/sala/{roomId}
func (h *Handler) RoomWS(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	conn := h.newConnection(identity)
	log := logger.With("room", roomID, "conn", conn.ID)
	log.Infof("connected to room (authenticated=%t)", identity != nil)

	go h.writePump(wsConn, conn)
	go h.serve(wsConn, conn, &roomSession{rooms: h.rooms, roomID: roomID, conn: conn})
}

// GameWS handles GET /v1/ws/game
func (h *Handler) GameWS(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	conn := h.newConnection(identity)
	logger.With("group", service.GameGroup, "conn", conn.ID).Infof("connected to game")

	go h.writePump(wsConn, conn)
	go h.serve(wsConn, conn, &gameSession{games: h.games, conn: conn})
}

// identity resolves the optional ?token= query parameter. A missing token
// yields an anonymous connection; an invalid one is rejected.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (*model.Identity, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		return nil, true
	}

	claims, err := h.authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return nil, false
	}
	return claims.Identity(), true
}

func (h *Handler) newConnection(identity *model.Identity) *Connection {
	conn := &Connection{
		ID:       uuid.NewString(),
		Identity: identity,
		Send:     make(chan []byte, 256),
	}
	h.hub.Register(conn)
	return conn
}

// session adapts one endpoint's lifecycle to the shared read loop
type session interface {
	connect(ctx context.Context)
	handle(ctx context.Context, msg Inbound)
	disconnect(ctx context.Context)
}

type roomSession struct {
	rooms  *service.RoomService
	roomID string
	conn   *Connection
}

func (s *roomSession) connect(ctx context.Context) {
	s.rooms.Join(ctx, s.roomID, s.conn.ID, s.conn.Identity)
}

func (s *roomSession) handle(ctx context.Context, msg Inbound) {
	switch m := msg.(type) {
	case PlayerJoined:
		s.rooms.PlayerJoinedNotice(ctx, s.roomID)
	case TimerUpdate:
		s.rooms.UpdateTimer(ctx, s.roomID, m.Seconds)
	default:
		logger.Debugf("room %s: %s not handled on room socket", s.roomID, msg.MessageType())
	}
}

func (s *roomSession) disconnect(ctx context.Context) {
	s.rooms.Leave(ctx, s.roomID, s.conn.ID, s.conn.Identity)
}

type gameSession struct {
	games *service.GameService
	conn  *Connection
}

func (s *gameSession) connect(context.Context) {
	s.games.Join(service.GameGroup, s.conn.ID)
}

func (s *gameSession) handle(ctx context.Context, msg Inbound) {
	switch m := msg.(type) {
	case NumbersSelected:
		s.games.SubmitSelection(service.GameGroup, s.conn.ID, s.conn.Identity, m.Nickname, m.Numbers)
	case StartDraw:
		s.games.StartDraw(ctx, service.GameGroup, s.conn.ID)
	default:
		logger.Debugf("game: %s not handled on game socket", msg.MessageType())
	}
}

func (s *gameSession) disconnect(context.Context) {
	s.games.Leave(service.GameGroup, s.conn.ID)
}

// serve runs connect, then the read loop, then disconnect. Messages from one
// connection are handled in arrival order.
func (h *Handler) serve(wsConn *websocket.Conn, conn *Connection, sess session) {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		sess.disconnect(ctx)
		cancel()
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	sess.connect(ctx)
	cancel()

	h.readPump(wsConn, func(data []byte) {
		msg, err := Decode(data)
		if err != nil {
			if errors.Is(err, ErrIgnored) {
				logger.Debugf("conn %s: %v", conn.ID, err)
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		sess.handle(ctx, msg)
	})
}

func (h *Handler) readPump(wsConn *websocket.Conn, onMessage func([]byte)) {
	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warnf("WebSocket error: %v", err)
			}
			return
		}
		onMessage(data)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
