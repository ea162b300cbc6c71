package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"staffdesk/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type fakeConn struct {
	mu      sync.Mutex
	got     []*models.Notification
	fail    bool
	closed  bool
	written chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{written: make(chan struct{}, 16)}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.written <- struct{}{} }()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.got = append(c.got, v.(*models.Notification))
	return nil
}

func (c *fakeConn) WriteMessage(int, []byte) error { return nil }

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

func waitWrite(t *testing.T, c *fakeConn) {
	t.Helper()
	select {
	case <-c.written:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for push")
	}
}

func TestHubPushesOnlyToTargetAccount(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	alice, bob := newFakeConn(), newFakeConn()
	hub.Register(1, alice)
	hub.Register(2, bob)

	hub.Publish(1, &models.Notification{ID: 10, AccountID: 1, Title: "New task"})
	waitWrite(t, alice)

	// a second message to bob proves the first one was not queued for him
	hub.Publish(2, &models.Notification{ID: 11, AccountID: 2})
	waitWrite(t, bob)

	if alice.count() != 1 || bob.count() != 1 {
		t.Errorf("alice=%d bob=%d, want 1 each", alice.count(), bob.count())
	}
}

func TestHubDropsBrokenConnections(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	broken := newFakeConn()
	broken.fail = true
	hub.Register(1, broken)

	hub.Publish(1, &models.Notification{ID: 1})
	waitWrite(t, broken)

	deadline := time.Now().Add(time.Second)
	for hub.Connections(1) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Connections(1) != 0 {
		t.Error("broken connection still registered")
	}
}

// stuckConn never finishes a write until it is closed, like a peer that
// stopped reading its socket.
type stuckConn struct {
	once    sync.Once
	closed  chan struct{}
	entered chan struct{}
}

func newStuckConn() *stuckConn {
	return &stuckConn{closed: make(chan struct{}), entered: make(chan struct{}, 64)}
}

func (c *stuckConn) WriteJSON(interface{}) error {
	c.entered <- struct{}{}
	<-c.closed
	return errors.New("use of closed network connection")
}

func (c *stuckConn) WriteMessage(int, []byte) error { return nil }

func (c *stuckConn) SetWriteDeadline(time.Time) error { return nil }

func (c *stuckConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func TestHubStalledClientDoesNotBlockOthers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	stuck, other := newStuckConn(), newFakeConn()
	defer stuck.Close()
	hub.Register(1, stuck)
	hub.Register(2, other)

	hub.Publish(1, &models.Notification{ID: 1, AccountID: 1})
	select {
	case <-stuck.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("stuck connection never received a write")
	}

	hub.Publish(2, &models.Notification{ID: 2, AccountID: 2})
	waitWrite(t, other)

	done := make(chan struct{})
	go func() {
		hub.Register(3, newFakeConn())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Register blocked behind a stalled connection")
	}
}

func TestHubDropsClientWithFullBuffer(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	hub.SendBuffer = 2
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	stuck := newStuckConn()
	hub.Register(1, stuck)

	// one write in flight, two buffered, the fourth overflows
	for i := 1; i <= 4; i++ {
		hub.Publish(1, &models.Notification{ID: i, AccountID: 1})
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Connections(1) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Connections(1) != 0 {
		t.Fatal("slow connection still registered")
	}
	select {
	case <-stuck.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("slow connection was not closed")
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := newFakeConn()
	hub.Register(3, c)
	hub.Register(3, newFakeConn())
	hub.Unregister(3, c)
	hub.Unregister(3, c)

	if got := hub.Connections(3); got != 1 {
		t.Errorf("connections = %d, want 1", got)
	}
}

func TestServeOverWebsocket(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, 7)
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Connections(7) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	hub.Publish(7, &models.Notification{ID: 99, AccountID: 7, Title: "Registration approved"})

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.Notification
	if err := ws.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.ID != 99 || got.Title != "Registration approved" {
		t.Errorf("got %+v", got)
	}
}
