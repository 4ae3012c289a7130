package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"presenced/pkg/protocol"
	"presenced/pkg/registry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, implement proper origin checking
	},
}

func (s *Server) ginHandlePush(c *gin.Context) {
	s.handlePush(c.Writer, c.Request)
}

// handlePush upgrades the connection and runs its read loop. A fresh
// connection is inert: no record exists and nothing is sent until a
// structurally valid join frame arrives.
func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WarnWith("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	wc := newWSConn(conn, s.cfg.WriteTimeout(), s.cfg.Push.SendBufferSize)
	s.log.DebugWith("push connection opened", "conn", wc.ID(), "remote", r.RemoteAddr)

	go wc.writePump(s.log)
	s.readPump(wc)
}

// readPump reads frames until the connection dies, then tears it down
func (s *Server) readPump(wc *wsConn) {
	defer s.teardown(wc)

	wc.conn.SetReadLimit(s.cfg.Push.ReadLimitBytes)

	for {
		_, data, err := wc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.WarnWith("websocket read error", "conn", wc.ID(), "error", err)
			}
			return
		}
		s.handleFrame(wc, data)
	}
}

// handleFrame validates and applies one inbound frame. Malformed frames
// are discarded and logged; the connection stays open and no error frame
// goes back to the peer. A panic is contained to the frame that caused it.
func (s *Server) handleFrame(wc *wsConn, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorWith("panic recovered in frame handler", "conn", wc.ID(), "panic", r)
		}
	}()

	msg, err := protocol.Parse(data)
	if err != nil {
		s.log.WarnWith("discarding malformed frame", "conn", wc.ID(), "error", err)
		return
	}

	switch msg.Type {
	case protocol.MsgTypePlayerJoin:
		s.handleJoinFrame(wc, msg.Username)
	case protocol.MsgTypePlayerLeave:
		s.handleLeaveFrame(msg.Username)
	}
}

// handleJoinFrame registers the connection under the claimed username,
// answers with the full presence snapshot (including the joiner), and
// announces the join to every other push connection.
func (s *Server) handleJoinFrame(wc *wsConn, username string) {
	now := time.Now()
	s.registry.Upsert(username, registry.Record{
		Kind:     registry.KindPush,
		Conn:     wc,
		JoinedAt: now,
		LastSeen: now,
	})

	snapshot, err := protocol.NewUserList(s.registry.Usernames()).Encode()
	if err != nil {
		s.log.ErrorWithErr("failed to encode user list", err, "username", username)
	} else if err := wc.Send(snapshot); err != nil {
		s.log.WarnWith("failed to send user list to joiner", "username", username, "error", err)
	}

	s.broadcaster.Broadcast(protocol.NewJoin(username), wc.ID())
	s.log.InfoWith("player joined", "username", username, "transport", "push")
}

// handleLeaveFrame removes the named record and announces the leave to all
// push connections, no exclusion. The announcing connection stays open;
// its own close is handled independently.
func (s *Server) handleLeaveFrame(username string) {
	s.registry.Remove(username)
	s.broadcaster.Broadcast(protocol.NewLeave(username), "")
	s.log.InfoWith("player left", "username", username, "transport", "push")
}

// teardown runs once per connection when its read loop ends, whether the
// peer closed cleanly or the transport failed. A registered connection is
// resolved back to its username, removed, and announced as a leave; an
// unregistered one just closes.
func (s *Server) teardown(wc *wsConn) {
	if r := recover(); r != nil {
		s.log.ErrorWith("panic recovered in read pump", "conn", wc.ID(), "panic", r)
	}

	wc.Close()

	username, ok := s.registry.FindByConn(wc)
	if !ok {
		s.log.DebugWith("push connection closed before joining", "conn", wc.ID())
		return
	}

	s.registry.Remove(username)
	s.broadcaster.Broadcast(protocol.NewLeave(username), "")
	s.log.InfoWith("player disconnected", "username", username, "conn", wc.ID())
}
