// inkroom is the desktop client: an infinite shared canvas bound to one
// room on a relay.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"inkroom/internal/client"
	"inkroom/internal/discovery"
	"inkroom/internal/engine"
	"inkroom/internal/export"
	"inkroom/internal/scene"
	"inkroom/internal/shape"
	"inkroom/internal/ui"
)

func main() {
	server := flag.String("server", envOr("INKROOM_SERVER", ""), "relay host:port; found via mDNS when empty")
	room := flag.String("room", "lobby", "room slug to join")
	user := flag.String("user", "", "username for token minting")
	token := flag.String("token", envOr("INKROOM_TOKEN", ""), "pre-issued bearer token")
	pdfPath := flag.String("export", "inkroom.pdf", "path for PDF snapshots")
	flag.Parse()

	addr := *server
	if addr == "" {
		found, err := discovery.Browse()
		if err != nil {
			log.Printf("no relay on the local network (%v), trying localhost", err)
			found = "localhost:8080"
		}
		addr = found
	}
	httpBase := "http://" + addr

	bearer := *token
	if bearer == "" {
		var err error
		bearer, err = signin(httpBase, *user)
		if err != nil {
			log.Fatalf("signin: %v", err)
		}
	}

	sc := scene.New()
	eng := engine.New(sc, scene.NewCamera())

	conn, err := client.Dial(client.Config{
		HTTPBase: httpBase,
		RoomSlug: *room,
		Token:    bearer,
	}, eng.AppendRemote)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer conn.Close()

	eng.OnCommit = func(s shape.Shape) {
		if err := conn.Send(s); err != nil {
			log.Printf("send shape: %v", err)
		}
	}

	board := ui.NewBoardWidget(eng)
	status := fmt.Sprintf("room %q on %s", *room, addr)
	ui.RunApp(board, status, func() {
		if err := export.ToPDF(*pdfPath, sc.All()); err != nil {
			log.Printf("export: %v", err)
		} else {
			log.Printf("exported %d shapes to %s", sc.Len(), *pdfPath)
		}
	})
}

func signin(httpBase, username string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": username})
	if err != nil {
		return "", err
	}
	resp, err := http.Post(httpBase+"/signin", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("signin: status %s", resp.Status)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
