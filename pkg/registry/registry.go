package registry

import (
	"sync"
	"time"
)

// Kind identifies which transport owns a presence record
type Kind int

const (
	// KindPush marks a record backed by a persistent websocket connection
	KindPush Kind = iota

	// KindPoll marks a record owned by a stateless request/response client
	KindPoll
)

// String returns the kind name for logging
func (k Kind) String() string {
	switch k {
	case KindPush:
		return "push"
	case KindPoll:
		return "poll"
	}
	return "unknown"
}

// Conn is a non-owning handle to a live push connection. The transport
// adapter retains ownership and lifecycle; the registry only uses the
// handle to route outbound sends and to compare identity during teardown.
// IDs are unique per socket lifetime and never reused across reconnects.
type Conn interface {
	// ID returns the connection's unique identifier
	ID() string
	// Send writes a frame to the peer, best-effort
	Send(data []byte) error
	// Open reports whether the connection is still usable
	Open() bool
}

// Record is one per currently-known username
type Record struct {
	Username string
	Kind     Kind
	Conn     Conn // present only for KindPush
	JoinedAt time.Time
	LastSeen time.Time
}

// Registry is the single source of truth mapping username to presence
// record. One mutex guards the map; both transport adapters and the reaper
// share it, so critical sections stay short and never block on I/O.
type Registry struct {
	mu      sync.RWMutex
	records map[string]Record
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		records: make(map[string]Record),
	}
}

// Upsert inserts or replaces the record for a username. Last writer wins;
// replacing an existing record is not an error and emits nothing here.
func (r *Registry) Upsert(username string, rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.Username = username
	r.records[username] = rec
}

// Remove deletes the record for a username, reporting whether one existed
func (r *Registry) Remove(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[username]
	if ok {
		delete(r.records, username)
	}
	return ok
}

// Get looks up the record for a username
func (r *Registry) Get(username string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[username]
	return rec, ok
}

// Usernames returns a snapshot of current keys. Order is unspecified and
// need not be stable across calls.
func (r *Registry) Usernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.records))
	for name := range r.records {
		names = append(names, name)
	}
	return names
}

// Snapshot returns a copy of all current records
func (r *Registry) Snapshot() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recs := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	return recs
}

// FindByConn is the reverse lookup used during push-connection teardown.
// If more than one record shares a handle, the first match wins and the
// rest are left for the reaper; that state violates the one-handle-per-
// socket invariant and is tolerated, not expected.
func (r *Registry) FindByConn(handle Conn) (string, bool) {
	if handle == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, rec := range r.records {
		if rec.Conn != nil && rec.Conn.ID() == handle.ID() {
			return name, true
		}
	}
	return "", false
}

// Touch refreshes LastSeen for a username, reporting whether it exists.
// This is the poll-client heartbeat path.
func (r *Registry) Touch(username string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[username]
	if !ok {
		return false
	}
	rec.LastSeen = now
	r.records[username] = rec
	return true
}

// Len returns the number of current records
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
