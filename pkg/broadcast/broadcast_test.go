package broadcast

import (
	"testing"

	"presenced/pkg/errors"
	"presenced/pkg/logger"
	"presenced/pkg/protocol"
	"presenced/pkg/registry"
)

// fakeConn records frames it was asked to send
type fakeConn struct {
	id    string
	open  bool
	fail  bool
	sends [][]byte
}

func (f *fakeConn) ID() string { return f.id }
func (f *fakeConn) Open() bool { return f.open }

func (f *fakeConn) Send(data []byte) error {
	if f.fail {
		return errors.ErrConnClosed
	}
	f.sends = append(f.sends, data)
	return nil
}

func newTestBroadcaster() (*Broadcaster, *registry.Registry) {
	reg := registry.New()
	return New(reg, logger.Get()), reg
}

func TestBroadcastReachesAllPushConns(t *testing.T) {
	b, reg := newTestBroadcaster()
	a := &fakeConn{id: "a", open: true}
	c := &fakeConn{id: "c", open: true}
	reg.Upsert("alice", registry.Record{Kind: registry.KindPush, Conn: a})
	reg.Upsert("carol", registry.Record{Kind: registry.KindPush, Conn: c})

	b.Broadcast(protocol.NewJoin("dave"), "")

	if len(a.sends) != 1 || len(c.sends) != 1 {
		t.Errorf("Expected 1 send per conn, got %d and %d", len(a.sends), len(c.sends))
	}
}

func TestBroadcastExcludesOriginator(t *testing.T) {
	b, reg := newTestBroadcaster()
	joiner := &fakeConn{id: "joiner", open: true}
	other := &fakeConn{id: "other", open: true}
	reg.Upsert("alice", registry.Record{Kind: registry.KindPush, Conn: joiner})
	reg.Upsert("bob", registry.Record{Kind: registry.KindPush, Conn: other})

	b.Broadcast(protocol.NewJoin("alice"), "joiner")

	if len(joiner.sends) != 0 {
		t.Error("Originator should not receive its own join broadcast")
	}
	if len(other.sends) != 1 {
		t.Errorf("Expected other conn to receive 1 frame, got %d", len(other.sends))
	}
}

func TestBroadcastSkipsPollClients(t *testing.T) {
	b, reg := newTestBroadcaster()
	push := &fakeConn{id: "p", open: true}
	reg.Upsert("alice", registry.Record{Kind: registry.KindPush, Conn: push})
	reg.Upsert("bob", registry.Record{Kind: registry.KindPoll})

	b.Broadcast(protocol.NewLeave("carol"), "")

	if len(push.sends) != 1 {
		t.Errorf("Expected push conn to receive 1 frame, got %d", len(push.sends))
	}
}

func TestBroadcastSkipsClosedConns(t *testing.T) {
	b, reg := newTestBroadcaster()
	closed := &fakeConn{id: "closed", open: false}
	open := &fakeConn{id: "open", open: true}
	reg.Upsert("alice", registry.Record{Kind: registry.KindPush, Conn: closed})
	reg.Upsert("bob", registry.Record{Kind: registry.KindPush, Conn: open})

	b.Broadcast(protocol.NewLeave("carol"), "")

	if len(closed.sends) != 0 {
		t.Error("Closed conn should not be a broadcast target")
	}
	if len(open.sends) != 1 {
		t.Errorf("Expected open conn to receive 1 frame, got %d", len(open.sends))
	}
}

func TestBroadcastSurvivesSendFailure(t *testing.T) {
	b, reg := newTestBroadcaster()
	failing := &fakeConn{id: "failing", open: true, fail: true}
	healthy := &fakeConn{id: "healthy", open: true}
	reg.Upsert("alice", registry.Record{Kind: registry.KindPush, Conn: failing})
	reg.Upsert("bob", registry.Record{Kind: registry.KindPush, Conn: healthy})

	b.Broadcast(protocol.NewLeave("carol"), "")

	if len(healthy.sends) != 1 {
		t.Errorf("Delivery to healthy conn should survive a peer failure, got %d sends", len(healthy.sends))
	}
	if _, ok := reg.Get("alice"); !ok {
		t.Error("A failed send must not remove the record")
	}
}

func TestBroadcastEmptyRegistry(t *testing.T) {
	b, _ := newTestBroadcaster()
	b.Broadcast(protocol.NewJoin("alice"), "")
}
