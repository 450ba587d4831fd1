// ABOUTME: mDNS advertisement and browsing for briefing feed servers
// ABOUTME: Advertises _sportsbrief._tcp and finds other feeds on the LAN
package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog/log"
)

// ServiceType is the DNS-SD service type of a feed server
const ServiceType = "_sportsbrief._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	Version     string
}

// Manager handles mDNS operations
type Manager struct {
	config Config
	ctx    context.Context
	cancel context.CancelFunc
}

// FeedInfo describes a discovered feed server
type FeedInfo struct {
	Name string
	Host string
	Port int
}

// Addr returns host:port
func (f *FeedInfo) Addr() string {
	return net.JoinHostPort(f.Host, fmt.Sprint(f.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// txtRecords describes the service in its TXT record
func (m *Manager) txtRecords() []string {
	txt := []string{"path=/api"}
	if m.config.Version != "" {
		txt = append(txt, "version="+m.config.Version)
	}
	return txt
}

// Advertise advertises this feed server via mDNS until Stop
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		m.txtRecords(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Info().
		Str("name", m.config.ServiceName).
		Int("port", m.config.Port).
		Str("type", ServiceType).
		Msg("Advertising mDNS service")

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse queries for feed servers for timeout and returns what answered
func (m *Manager) Browse(timeout time.Duration) ([]*FeedInfo, error) {
	entries := make(chan *mdns.ServiceEntry, 10)
	done := make(chan []*FeedInfo)

	go func() {
		var found []*FeedInfo
		seen := make(map[string]bool)
		for entry := range entries {
			if entry.AddrV4 == nil || seen[entry.Name] {
				continue
			}
			seen[entry.Name] = true

			feed := &FeedInfo{
				Name: entry.Name,
				Host: entry.AddrV4.String(),
				Port: entry.Port,
			}
			log.Debug().Str("name", feed.Name).Str("addr", feed.Addr()).Msg("Discovered feed")
			found = append(found, feed)
		}
		done <- found
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	err := mdns.Query(params)
	close(entries)
	found := <-done

	if err != nil {
		return found, fmt.Errorf("mdns query failed: %w", err)
	}
	return found, nil
}

// Stop stops advertising
func (m *Manager) Stop() {
	m.cancel()
}

// getLocalIPs returns non-loopback IPv4 addresses of interfaces that are up
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
