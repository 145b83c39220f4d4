// Package discovery advertises the relay on the local network and lets
// clients find it without configuration.
package discovery

import (
	"fmt"
	"os"

	"github.com/hashicorp/mdns"
)

const serviceType = "_inkroom._tcp"

// Advertise announces the relay's port over mDNS. Close the returned server
// on shutdown.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("discovery: hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, []string{"inkroom relay"})
	if err != nil {
		return nil, fmt.Errorf("discovery: create service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("discovery: start server: %w", err)
	}
	return server, nil
}

// Browse looks for an advertised relay and returns the first host:port
// found, or an error when the lookup finishes empty.
func Browse() (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan string, 1)
	go func() {
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			select {
			case found <- fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port):
			default:
			}
		}
	}()
	if err := mdns.Lookup(serviceType, entries); err != nil {
		return "", fmt.Errorf("discovery: lookup: %w", err)
	}
	close(entries)
	select {
	case addr := <-found:
		return addr, nil
	default:
		return "", fmt.Errorf("discovery: no relay found")
	}
}
