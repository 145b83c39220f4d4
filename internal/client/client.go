// Package client is the sync side of the board: it resolves the room slug,
// opens the token-authenticated channel, hydrates the scene from history
// and moves committed shapes in both directions.
package client

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"

	"inkroom/internal/shape"
	"inkroom/internal/store"
	"inkroom/internal/wire"
)

// Config locates the relay.
type Config struct {
	// HTTPBase is the relay's HTTP endpoint, e.g. "http://10.0.0.5:8080".
	HTTPBase string
	// WSBase overrides the channel endpoint; derived from HTTPBase when
	// empty.
	WSBase string
	// RoomSlug is the human room name, resolved to a numeric id on dial.
	RoomSlug string
	// Token is the signed bearer token carried in the channel URL.
	Token string
}

type Client struct {
	httpBase string
	roomID   string
	conn     *websocket.Conn

	writeMu sync.Mutex
	onShape func(shape.Shape)
}

// Dial resolves the room, opens the channel (retrying with exponential
// backoff), joins the room and starts the history hydration and the read
// pump. onShape fires once per shape learned from the relay, history and
// live alike; ordering between the two is best effort.
func Dial(cfg Config, onShape func(shape.Shape)) (*Client, error) {
	if onShape == nil {
		return nil, fmt.Errorf("client: onShape callback is required")
	}

	roomID, err := resolveRoom(cfg.HTTPBase, cfg.RoomSlug)
	if err != nil {
		return nil, err
	}

	wsBase := cfg.WSBase
	if wsBase == "" {
		wsBase = strings.Replace(cfg.HTTPBase, "http", "ws", 1)
	}
	wsURL := wsBase + "/ws?token=" + url.QueryEscape(cfg.Token)

	var conn *websocket.Conn
	dial := func() error {
		var err error
		conn, _, err = websocket.DefaultDialer.Dial(wsURL, nil)
		return err
	}
	if err := backoff.Retry(dial, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4)); err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", wsBase, err)
	}

	c := &Client{
		httpBase: cfg.HTTPBase,
		roomID:   roomID,
		conn:     conn,
		onShape:  onShape,
	}
	if err := c.writeJSON(wire.Join(roomID)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: join room %s: %w", roomID, err)
	}

	go c.hydrate()
	go c.readPump()
	return c, nil
}

// RoomID returns the numeric id the slug resolved to.
func (c *Client) RoomID() string { return c.roomID }

// Send transmits one committed shape to the relay. The relay echoes it
// back, so the caller sees the shape again on the onShape path.
func (c *Client) Send(s shape.Shape) error {
	env, err := wire.Chat(c.roomID, s)
	if err != nil {
		return err
	}
	return c.writeJSON(env)
}

// Leave tells the relay to drop this connection from the room.
func (c *Client) Leave() error {
	return c.writeJSON(wire.Leave(c.roomID))
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// hydrate fetches the persisted history and replays it oldest-first. It
// runs concurrently with the read pump; a broadcast racing the fetch is
// simply appended in arrival order, duplicates are not filtered.
func (c *Client) hydrate() {
	resp, err := http.Get(c.httpBase + "/chats/" + c.roomID)
	if err != nil {
		log.Printf("client: history fetch: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("client: history fetch: status %s", resp.Status)
		return
	}

	var body struct {
		Messages []store.Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("client: history decode: %v", err)
		return
	}

	// The endpoint serves newest first; replay in original draw order.
	for i := len(body.Messages) - 1; i >= 0; i-- {
		sh, err := wire.DecodeShape(body.Messages[i].Message)
		if err != nil {
			log.Printf("client: history entry %d: %v", body.Messages[i].ID, err)
			continue
		}
		c.onShape(sh)
	}
}

func (c *Client) readPump() {
	for {
		var env wire.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			log.Printf("client: channel closed: %v", err)
			return
		}
		if env.Type != wire.TypeChat {
			continue
		}
		sh, err := wire.DecodeShape(env.Message)
		if err != nil {
			log.Printf("client: dropping bad chat payload: %v", err)
			continue
		}
		c.onShape(sh)
	}
}

func resolveRoom(httpBase, slug string) (string, error) {
	resp, err := http.Get(httpBase + "/room/" + url.PathEscape(slug))
	if err != nil {
		return "", fmt.Errorf("client: resolve room %q: %w", slug, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("client: resolve room %q: status %s", slug, resp.Status)
	}
	var body struct {
		Room struct {
			ID uint64 `json:"id"`
		} `json:"room"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("client: resolve room %q: %w", slug, err)
	}
	return strconv.FormatUint(body.Room.ID, 10), nil
}
