// Package relay is the room fanout hub. It authenticates each incoming
// channel, tracks which rooms the connection has joined, persists chat
// messages and rebroadcasts them to every member of the room, the sender
// included.
package relay

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"inkroom/internal/store"
	"inkroom/internal/wire"
)

// Conn is the slice of *websocket.Conn the relay needs. Tests substitute
// in-memory pipes.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Log is the durable chat log. Persistence must succeed before a message is
// fanned out.
type Log interface {
	Append(roomID uint64, userID, message string) (store.Message, error)
}

// connection is the per-channel record: one user, the rooms it joined, and
// a write lock because fanout for different senders may interleave.
type connection struct {
	id     string
	userID string
	conn   Conn

	mu    sync.Mutex // guards rooms and writes
	rooms map[string]struct{}
}

func (c *connection) joined(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[roomID]
	return ok
}

func (c *connection) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type Relay struct {
	secret []byte
	log    Log

	mu    sync.RWMutex
	conns map[*connection]struct{}
}

func New(secret []byte, chatLog Log) *Relay {
	return &Relay{
		secret: secret,
		log:    chatLog,
		conns:  make(map[*connection]struct{}),
	}
}

// ConnCount reports how many authenticated connections are registered.
func (r *Relay) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// HandleConn verifies the token, registers the connection and serves its
// messages until the channel dies. A connection that fails verification is
// closed immediately with nothing written, the client learns nothing
// pre-auth. Blocks for the lifetime of the connection.
func (r *Relay) HandleConn(c Conn, token string) {
	userID, err := VerifyToken(token, r.secret)
	if err != nil {
		log.Printf("relay: rejected connection: %v", err)
		c.Close()
		return
	}

	conn := &connection{
		id:     uuid.NewString(),
		userID: userID,
		conn:   c,
		rooms:  make(map[string]struct{}),
	}
	r.register(conn)
	defer r.unregister(conn)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		var env wire.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// One bad frame must not take the connection down.
			log.Printf("relay: dropping malformed frame from %s: %v", conn.id, err)
			continue
		}
		r.handle(conn, env)
	}
}

func (r *Relay) handle(conn *connection, env wire.Envelope) {
	switch env.Type {
	case wire.TypeJoinRoom:
		conn.mu.Lock()
		conn.rooms[env.RoomID] = struct{}{}
		conn.mu.Unlock()
	case wire.TypeLeaveRoom:
		conn.mu.Lock()
		delete(conn.rooms, env.RoomID)
		conn.mu.Unlock()
	case wire.TypeChat:
		r.chat(conn, env)
	default:
		log.Printf("relay: ignoring frame type %q from %s", env.Type, conn.id)
	}
}

// chat persists the message and, only if that succeeded, fans it out to
// every connection joined to the room. The sender gets its own echo. On
// persistence failure the message is logged and silently dropped.
func (r *Relay) chat(conn *connection, env wire.Envelope) {
	roomID, err := strconv.ParseUint(env.RoomID, 10, 64)
	if err != nil {
		log.Printf("relay: chat with bad room id %q from %s", env.RoomID, conn.id)
		return
	}
	if _, err := r.log.Append(roomID, conn.userID, env.Message); err != nil {
		log.Printf("relay: persist chat for room %s failed: %v", env.RoomID, err)
		return
	}

	out := wire.Envelope{Type: wire.TypeChat, RoomID: env.RoomID, Message: env.Message}
	frame, err := json.Marshal(out)
	if err != nil {
		log.Printf("relay: encode chat for room %s: %v", env.RoomID, err)
		return
	}

	r.mu.RLock()
	members := make([]*connection, 0, len(r.conns))
	for c := range r.conns {
		if c.joined(env.RoomID) {
			members = append(members, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range members {
		if err := c.send(frame); err != nil {
			log.Printf("relay: send to %s failed: %v", c.id, err)
		}
	}
}

func (r *Relay) register(c *connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = struct{}{}
	log.Printf("relay: connection %s registered for user %s", c.id, c.userID)
}

func (r *Relay) unregister(c *connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
	c.conn.Close()
	log.Printf("relay: connection %s removed", c.id)
}
