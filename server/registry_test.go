package server

import (
	"net"
	"testing"
	"time"
)

func newTestSession(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() { clientSide.Close() })
	return newSession(serverSide, time.Minute, nil), clientSide
}

func TestRegistryInsertGetRemove(t *testing.T) {
	r := NewRegistry()
	sess, _ := newTestSession(t)

	if r.Get(sess.ID) != nil {
		t.Fatalf("expected unregistered session to be absent")
	}
	r.Insert(sess)
	if r.Get(sess.ID) != sess {
		t.Fatalf("expected Get to return inserted session")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	r.Remove(sess.ID)
	if r.Get(sess.ID) != nil {
		t.Fatalf("expected Get to return nil after Remove")
	}
}

func TestRegistryClosePendingIsDrainedOnce(t *testing.T) {
	r := NewRegistry()
	sess, _ := newTestSession(t)
	r.Insert(sess)

	r.FlagClose(sess.ID)
	if sess.IsRunning() {
		t.Fatalf("expected FlagClose to mark the session not running")
	}

	pending := r.CollectClosePending()
	if len(pending) != 1 || pending[0] != sess.ID {
		t.Fatalf("expected exactly the flagged session in the pending set")
	}

	if more := r.CollectClosePending(); len(more) != 0 {
		t.Fatalf("expected second collect to be empty, got %d", len(more))
	}
}

func TestRegistryWriteToMissingSession(t *testing.T) {
	r := NewRegistry()
	if err := r.WriteTo(newSessionID(), nil); err != ErrSessionNotFound {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}
