package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"presenced/pkg/protocol"
	"presenced/pkg/registry"
)

// joinRequest is the poll-transport join body
type joinRequest struct {
	Username string `json:"username"`
	Client   string `json:"client,omitempty"` // optional caller tag, logged only
}

// leaveRequest is the poll-transport leave body
type leaveRequest struct {
	Username string `json:"username"`
}

// handlePollJoin registers a poll client. A missing username is a client
// error and mutates nothing. Poll clients never receive broadcasts, but
// their joins are announced to every push connection.
func (s *Server) handlePollJoin(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "username is required",
		})
		return
	}

	now := time.Now()
	s.registry.Upsert(req.Username, registry.Record{
		Kind:     registry.KindPoll,
		JoinedAt: now,
		LastSeen: now,
	})

	s.broadcaster.Broadcast(protocol.NewJoin(req.Username), "")
	s.log.InfoWith("player joined", "username", req.Username, "transport", "poll", "client", req.Client)

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// handlePollLeave removes a poll client. Leaving an unknown username is a
// no-op success, not an error.
func (s *Server) handlePollLeave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Username != "" {
		if s.registry.Remove(req.Username) {
			s.broadcaster.Broadcast(protocol.NewLeave(req.Username), "")
			s.log.InfoWith("player left", "username", req.Username, "transport", "poll")
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// handleUsers returns the current presence snapshot. A supplied username
// that is registered gets its last-seen refreshed as an implicit
// heartbeat, unless that policy is disabled in config.
func (s *Server) handleUsers(c *gin.Context) {
	if username := c.Query("username"); username != "" && s.cfg.Poll.HeartbeatOnList {
		s.registry.Touch(username, time.Now())
	}

	users := s.registry.Usernames()
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// handleHealth reports registry size and process uptime; no mutation
func (s *Server) handleHealth(c *gin.Context) {
	snap := s.health.Snapshot(s.registry.Len())
	c.JSON(http.StatusOK, gin.H{
		"status":     "online",
		"clients":    snap.ActiveClients,
		"uptime":     snap.UptimeSeconds,
		"goroutines": snap.Goroutines,
		"memory_mb":  snap.MemoryMB,
	})
}
