package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/jackbombadeur/RPGCompanion/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// wsConn serializes writes; one socket may be subscribed while another
// session's broadcast fires on a different goroutine.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// wsHub is the broadcast registry: session id to the set of live
// subscribed connections. Delivery is fire-and-forget; a dead socket is
// deregistered during fan-out and the mutation it missed stands.
type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*wsConn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*wsConn]struct{}),
	}
}

func (h *wsHub) Add(sessionID string, conn *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[sessionID]
	if group == nil {
		group = make(map[*wsConn]struct{})
		h.groups[sessionID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(sessionID string, conn *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[sessionID]
	if group == nil {
		return
	}
	delete(group, conn)
	if len(group) == 0 {
		delete(h.groups, sessionID)
	}
}

func (h *wsHub) RemoveEverywhere(conn *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID, group := range h.groups {
		delete(group, conn)
		if len(group) == 0 {
			delete(h.groups, sessionID)
		}
	}
	_ = conn.conn.Close()
}

func (h *wsHub) Send(conn *wsConn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.write(data)
}

// Emit satisfies the coordinator's event sink. It is called while the
// session lock is held, so fan-out order per session matches mutation
// commit order.
func (h *wsHub) Emit(sessionID string, event game.Event) {
	h.mu.Lock()
	group := h.groups[sessionID]
	conns := make([]*wsConn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	recordBroadcast(event.Type)
	for _, conn := range conns {
		if err := conn.write(data); err != nil {
			h.Remove(sessionID, conn)
			_ = conn.conn.Close()
		}
	}
}

type wsClientMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleWebsocket(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	conn := &wsConn{conn: raw}
	log.Printf("ws connected remote=%s", c.Request.RemoteAddr)
	go s.readWS(conn)
}

// readWS drives one socket. Connecting alone subscribes to nothing: a
// client must send {"type":"join_session","session_id":...} before it
// receives any session-scoped event. A successful join answers with a
// full snapshot.
func (s *Server) readWS(conn *wsConn) {
	defer s.hub.RemoveEverywhere(conn)
	for {
		_, payload, err := conn.conn.ReadMessage()
		if err != nil {
			log.Printf("ws disconnected error=%v", err)
			return
		}
		var msg wsClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if msg.Type != "join_session" || msg.SessionID == "" {
			continue
		}
		// Accept an id or a join code, but key the subscription by id so
		// it matches the broadcasts.
		session, err := s.coord.Session(msg.SessionID)
		if err != nil {
			s.hub.Send(conn, map[string]any{
				"type":  "error",
				"error": "session not found",
			})
			continue
		}
		snapshot, err := s.snapshot(session.ID)
		if err != nil {
			continue
		}
		s.hub.Add(session.ID, conn)
		s.hub.Send(conn, map[string]any{
			"type": "snapshot",
			"data": snapshot,
		})
	}
}
