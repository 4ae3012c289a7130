package broadcast

import (
	"presenced/pkg/logger"
	"presenced/pkg/protocol"
	"presenced/pkg/registry"
)

// Broadcaster fans a presence event out to every live push connection.
// Delivery is fire-and-forget: a failed send is logged and skipped, never
// retried, and never removes the record. Removal belongs to the push
// adapter and the reaper.
type Broadcaster struct {
	reg *registry.Registry
	log *logger.Logger
}

// New creates a broadcaster over the given registry
func New(reg *registry.Registry, log *logger.Logger) *Broadcaster {
	return &Broadcaster{reg: reg, log: log}
}

// Broadcast serializes msg once and sends it to every open push connection
// whose ID differs from excludeID. Pass an empty excludeID to reach all
// push connections. Poll clients are never broadcast targets.
func (b *Broadcaster) Broadcast(msg *protocol.Message, excludeID string) {
	data, err := msg.Encode()
	if err != nil {
		b.log.ErrorWithErr("failed to encode broadcast message", err, "type", msg.Type)
		return
	}

	for _, rec := range b.reg.Snapshot() {
		if rec.Kind != registry.KindPush || rec.Conn == nil {
			continue
		}
		if !rec.Conn.Open() {
			continue
		}
		if excludeID != "" && rec.Conn.ID() == excludeID {
			continue
		}
		if err := rec.Conn.Send(data); err != nil {
			b.log.WarnWith("broadcast send failed", "username", rec.Username, "type", msg.Type, "error", err)
		}
	}
}
