package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(h *Hub, buffer int) *Client {
	c := &Client{hub: h, send: make(chan []byte, buffer)}
	h.register <- c
	return c
}

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected %d clients, got %d", want, h.ClientCount())
}

func TestBroadcastReachesAllClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("test")
	go h.Run(ctx)

	a := newTestClient(h, 4)
	b := newTestClient(h, 4)
	waitForClients(t, h, 2)

	h.Broadcast([]byte(`{"type":"SET_MODE"}`))

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			if string(msg) != `{"type":"SET_MODE"}` {
				t.Errorf("unexpected message %s", msg)
			}
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestBroadcastJSON(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("test")
	go h.Run(ctx)

	c := newTestClient(h, 4)
	waitForClients(t, h, 1)

	payload := map[string]string{"emotion": "warm"}
	if err := h.BroadcastJSON(payload); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-c.send:
		var got map[string]string
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatal(err)
		}
		if got["emotion"] != "warm" {
			t.Errorf("unexpected payload %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no broadcast received")
	}
}

func TestSlowClientDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("test")
	go h.Run(ctx)

	// Buffer of 1, never drained. The second broadcast cannot be
	// queued and the client must be evicted.
	newTestClient(h, 1)
	waitForClients(t, h, 1)

	h.Broadcast([]byte(`1`))
	h.Broadcast([]byte(`2`))
	waitForClients(t, h, 0)
}

func TestShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	h := New("test")
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	c := newTestClient(h, 4)
	waitForClients(t, h, 1)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	if _, ok := <-c.send; ok {
		t.Error("expected send channel closed on shutdown")
	}
}
