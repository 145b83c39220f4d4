// Package httpapi exposes the relay's HTTP surface: room resolution, the
// bounded history window, token minting and the websocket upgrade that
// hands authenticated channels to the relay.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"inkroom/internal/relay"
	"inkroom/internal/store"
)

type Server struct {
	store  *store.Store
	relay  *relay.Relay
	secret []byte

	upgrader websocket.Upgrader
}

func New(st *store.Store, rl *relay.Relay, secret []byte) *Server {
	return &Server{
		store:  st,
		relay:  rl,
		secret: secret,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router wires all endpoints.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/signin", s.signin).Methods(http.MethodPost)
	r.HandleFunc("/room/{slug}", s.room).Methods(http.MethodGet)
	r.HandleFunc("/chats/{roomId}", s.chats).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.ws)
	return r
}

// Room is the payload of the slug resolution endpoint.
type Room struct {
	ID   uint64 `json:"id"`
	Slug string `json:"slug"`
}

func (s *Server) room(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	id, err := s.store.Room(slug)
	if err != nil {
		log.Printf("httpapi: resolve room %q: %v", slug, err)
		writeError(w, http.StatusInternalServerError, "could not resolve room")
		return
	}
	writeJSON(w, struct {
		Room Room `json:"room"`
	}{Room: Room{ID: id, Slug: slug}})
}

// chats returns the most recent persisted messages for a room, newest
// first. Clients reverse before replay.
func (s *Server) chats(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseUint(mux.Vars(r)["roomId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "no such room")
		return
	}
	messages, err := s.store.Recent(roomID, store.HistoryLimit)
	if err != nil {
		log.Printf("httpapi: history for room %d: %v", roomID, err)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	writeJSON(w, struct {
		Messages []store.Message `json:"messages"`
	}{Messages: messages})
}

// signin mints a token for the given username. Credentials are not checked
// here; account storage is outside this service.
func (s *Server) signin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID := req.Username
	if userID == "" {
		userID = uuid.NewString()
	}
	token, err := relay.SignToken(userID, s.secret)
	if err != nil {
		log.Printf("httpapi: sign token: %v", err)
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, struct {
		Token string `json:"token"`
	}{Token: token})
}

// ws upgrades the connection and hands it to the relay. The token rides in
// the query string because the transport is opened before any header
// exchange is available to the client code.
func (s *Server) ws(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("httpapi: upgrade: %v", err)
		return
	}
	s.relay.HandleConn(conn, token)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpapi: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg})
}
