// inkroomd is the room relay: it persists committed shapes and fans them
// out to every channel joined to the same room, and serves the history and
// room-resolution endpoints clients bootstrap from.
package main

import (
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"

	"inkroom/internal/discovery"
	"inkroom/internal/httpapi"
	"inkroom/internal/relay"
	"inkroom/internal/store"
)

func main() {
	addr := flag.String("addr", envOr("INKROOM_ADDR", ":8080"), "listen address")
	dbPath := flag.String("db", envOr("INKROOM_DB", "inkroom.db"), "bbolt database file")
	secret := flag.String("secret", envOr("INKROOM_SECRET", ""), "token signing secret")
	announce := flag.Bool("mdns", true, "advertise the relay over mDNS")
	flag.Parse()

	if *secret == "" {
		log.Fatalf("a signing secret is required (-secret or INKROOM_SECRET)")
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	rl := relay.New([]byte(*secret), st)
	api := httpapi.New(st, rl, []byte(*secret))

	if *announce {
		if port, err := listenPort(*addr); err == nil {
			server, err := discovery.Advertise(port)
			if err != nil {
				log.Printf("mdns advertise failed: %v", err)
			} else {
				defer server.Shutdown()
			}
		}
	}

	log.Printf("inkroomd listening on %s (db %s)", *addr, *dbPath)
	if err := http.ListenAndServe(*addr, api.Router()); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func listenPort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}
