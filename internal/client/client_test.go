package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"inkroom/internal/shape"
	"inkroom/internal/store"
	"inkroom/internal/wire"
)

// fakeRelay serves just enough of the relay's HTTP surface for the client:
// slug resolution, canned newest-first history, and a channel that echoes
// every chat frame back.
type fakeRelay struct {
	t       *testing.T
	history []store.Message

	mu       sync.Mutex
	received []wire.Envelope
}

func (f *fakeRelay) router() *mux.Router {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	r := mux.NewRouter()
	r.HandleFunc("/room/{slug}", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"room": map[string]interface{}{"id": 7, "slug": mux.Vars(req)["slug"]},
		})
	})
	r.HandleFunc("/chats/{roomId}", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"messages": f.history})
	})
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var env wire.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			f.mu.Lock()
			f.received = append(f.received, env)
			f.mu.Unlock()
			if env.Type == wire.TypeChat {
				conn.WriteJSON(env)
			}
		}
	})
	return r
}

func (f *fakeRelay) frames() []wire.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]wire.Envelope, len(f.received))
	copy(out, f.received)
	return out
}

func payload(t *testing.T, s shape.Shape) string {
	t.Helper()
	p, err := wire.EncodeShape(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return p
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestHydrationReplaysHistoryInDrawOrder(t *testing.T) {
	relay := &fakeRelay{t: t}
	// Newest first, as the history endpoint serves it.
	for id := 3; id >= 1; id-- {
		relay.history = append(relay.history, store.Message{
			ID:      uint64(id),
			RoomID:  7,
			Message: payload(t, shape.Rect{Width: float64(id)}),
		})
	}
	ts := httptest.NewServer(relay.router())
	defer ts.Close()

	var mu sync.Mutex
	var got []shape.Shape
	c, err := Dial(Config{HTTPBase: ts.URL, RoomSlug: "test", Token: "tok"}, func(s shape.Shape) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, "hydration")

	mu.Lock()
	defer mu.Unlock()
	for i, s := range got {
		r, ok := s.(shape.Rect)
		if !ok || r.Width != float64(i+1) {
			t.Errorf("history out of order at %d: %#v", i, s)
		}
	}
}

func TestDialJoinsResolvedRoom(t *testing.T) {
	relay := &fakeRelay{t: t}
	ts := httptest.NewServer(relay.router())
	defer ts.Close()

	c, err := Dial(Config{HTTPBase: ts.URL, RoomSlug: "standup", Token: "tok"}, func(shape.Shape) {})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if c.RoomID() != "7" {
		t.Errorf("slug should resolve to room 7, got %q", c.RoomID())
	}
	waitFor(t, func() bool { return len(relay.frames()) >= 1 }, "join frame")
	join := relay.frames()[0]
	if join.Type != wire.TypeJoinRoom || join.RoomID != "7" {
		t.Errorf("first frame should join room 7, got %+v", join)
	}
}

func TestSendAndEcho(t *testing.T) {
	relay := &fakeRelay{t: t}
	ts := httptest.NewServer(relay.router())
	defer ts.Close()

	var mu sync.Mutex
	var got []shape.Shape
	c, err := Dial(Config{HTTPBase: ts.URL, RoomSlug: "test", Token: "tok"}, func(s shape.Shape) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	want := shape.Circle{CenterX: 4, CenterY: 5, Radius: 6}
	if err := c.Send(want); err != nil {
		t.Fatalf("send: %v", err)
	}

	// The fake echoes the chat, so the shape comes back on the read pump.
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, "echo")
	mu.Lock()
	if got[0] != want {
		t.Errorf("want echo of %#v, got %#v", want, got[0])
	}
	mu.Unlock()

	waitFor(t, func() bool { return len(relay.frames()) == 2 }, "chat frame at relay")
	chat := relay.frames()[1]
	if chat.Type != wire.TypeChat || chat.RoomID != "7" {
		t.Errorf("bad chat frame: %+v", chat)
	}
}

func TestDialFailsOnBadHistoryServer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer ts.Close()

	if _, err := Dial(Config{HTTPBase: ts.URL, RoomSlug: "x", Token: "t"}, func(shape.Shape) {}); err == nil {
		t.Errorf("dial should fail when room resolution fails")
	}
}
