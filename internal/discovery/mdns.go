package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/aprilaire/internal/logging"
	"github.com/muurk/aprilaire/internal/protocol"
)

const (
	// ServiceType is the mDNS service type thermostats are advertised under
	ServiceType = "_aprilaire._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 10 * time.Second
)

// Scanner handles mDNS device discovery
type Scanner struct {
	// Timeout is the maximum time to wait for device discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForDevices discovers every advertised thermostat until the timeout
// expires or ctx is cancelled.
func (s *Scanner) ScanForDevices(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		devices []*Device
	)
	err := s.browse(ctx, func(d *Device) bool {
		mu.Lock()
		devices = append(devices, d)
		mu.Unlock()
		return true
	})
	if err != nil {
		return nil, err
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return devices, nil
}

// WaitForDevice waits for the thermostat advertising mac. An empty mac
// returns the first thermostat found.
func (s *Scanner) WaitForDevice(ctx context.Context, mac string) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	found := make(chan *Device, 1)
	err := s.browse(ctx, func(d *Device) bool {
		if mac != "" && !sameMAC(d.MAC, mac) {
			return true
		}
		select {
		case found <- d:
		default:
		}
		cancel()
		return false
	})
	if err != nil {
		return nil, err
	}

	select {
	case d := <-found:
		return d, nil
	case <-ctx.Done():
		// A match may have raced the cancel.
		select {
		case d := <-found:
			return d, nil
		default:
		}
		if mac == "" {
			return nil, fmt.Errorf("no thermostat found within %s", s.Timeout)
		}
		return nil, fmt.Errorf("thermostat %s not found within %s", mac, s.Timeout)
	}
}

// browse feeds parsed entries to fn until fn returns false or ctx ends.
func (s *Scanner) browse(ctx context.Context, fn func(*Device) bool) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-entries:
				if !ok {
					return
				}
				device := s.parseServiceEntry(entry)
				if device == nil {
					continue
				}
				logging.Debug("Discovered thermostat", zap.String("device", device.String()))
				if !fn(device) {
					return
				}
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Returns nil if the entry has no usable address.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	// Prefer IPv4
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = protocol.DefaultPort
	}

	metadata := make(map[string]string, len(entry.Text))
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	return &Device{
		Instance:     unescapeInstance(entry.Instance),
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		MAC:          metadata[TXTMAC],
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// unescapeInstance undoes the DNS-SD escaping zeroconf leaves in instance
// names ("Aprilaire\ Mock" becomes "Aprilaire Mock").
func unescapeInstance(s string) string {
	return strings.ReplaceAll(s, `\`, "")
}

// sameMAC compares MAC addresses ignoring case and zero padding.
func sameMAC(a, b string) bool {
	pa, err := protocol.ParseMAC(a)
	if err != nil {
		return false
	}
	pb, err := protocol.ParseMAC(b)
	if err != nil {
		return false
	}
	return protocol.FormatMAC(pa) == protocol.FormatMAC(pb)
}

// Advertisement is a running mDNS registration.
type Advertisement struct {
	server *zeroconf.Server
}

// Register advertises a thermostat on port under instance. Shutdown stops
// the advertisement.
func Register(instance string, port int, mac, name string, model int) (*Advertisement, error) {
	txt := []string{
		TXTMAC + "=" + mac,
		TXTName + "=" + name,
		fmt.Sprintf("%s=%d", TXTModel, model),
	}
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("Advertising thermostat",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return &Advertisement{server: server}, nil
}

// Shutdown withdraws the advertisement.
func (a *Advertisement) Shutdown() {
	if a != nil && a.server != nil {
		a.server.Shutdown()
	}
}

// QuickScan performs a fast scan with a 3-second timeout
func QuickScan(ctx context.Context) ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.ScanForDevices(ctx)
}
