// Package store persists the chat log and the slug->room mapping in a bbolt
// file. The log is append-only: messages get globally monotonic ids and are
// never updated in place, so the id order is the authoritative draw order.
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketChats = []byte("chats")
	bucketRooms = []byte("rooms")
)

// HistoryLimit bounds how far back the history endpoint reaches.
const HistoryLimit = 1000

// Message is one persisted chat entry. Message is the serialized
// {"shape": ...} payload as it arrived on the channel.
type Message struct {
	ID        uint64    `json:"id"`
	RoomID    uint64    `json:"roomId"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketChats); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketRooms)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append writes one chat entry for the room and returns it with its id and
// timestamp filled in.
func (s *Store) Append(roomID uint64, userID, message string) (Message, error) {
	m := Message{RoomID: roomID, UserID: userID, Message: message, Timestamp: time.Now().UTC()}
	err := s.db.Update(func(tx *bolt.Tx) error {
		chats := tx.Bucket(bucketChats)
		room, err := chats.CreateBucketIfNotExists(roomKey(roomID))
		if err != nil {
			return err
		}
		// The sequence lives on the parent bucket so ids are monotonic
		// across rooms, not just within one.
		id, err := chats.NextSequence()
		if err != nil {
			return err
		}
		m.ID = id
		val, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return room.Put(itob(id), val)
	})
	if err != nil {
		return Message{}, fmt.Errorf("store: append room %d: %w", roomID, err)
	}
	return m, nil
}

// Recent returns up to n messages for the room, newest first. Callers that
// replay them must reverse to chronological order.
func (s *Store) Recent(roomID uint64, n int) ([]Message, error) {
	if n <= 0 || n > HistoryLimit {
		n = HistoryLimit
	}
	out := []Message{}
	err := s.db.View(func(tx *bolt.Tx) error {
		room := tx.Bucket(bucketChats).Bucket(roomKey(roomID))
		if room == nil {
			return nil
		}
		c := room.Cursor()
		for k, v := c.Last(); k != nil && len(out) < n; k, v = c.Prev() {
			var m Message
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: recent room %d: %w", roomID, err)
	}
	return out, nil
}

// Room maps a human slug to its numeric room id, allocating one on first
// use.
func (s *Store) Room(slug string) (uint64, error) {
	var id uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		rooms := tx.Bucket(bucketRooms)
		if v := rooms.Get([]byte(slug)); v != nil {
			id = btoi(v)
			return nil
		}
		seq, err := rooms.NextSequence()
		if err != nil {
			return err
		}
		id = seq
		return rooms.Put([]byte(slug), itob(id))
	})
	if err != nil {
		return 0, fmt.Errorf("store: room %q: %w", slug, err)
	}
	return id, nil
}

func roomKey(id uint64) []byte {
	return []byte(strconv.FormatUint(id, 10))
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func btoi(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
