package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// TXT record keys published by Register.
const (
	TXTMAC   = "mac"
	TXTName  = "name"
	TXTModel = "model"
)

// Device represents a thermostat found on the local network
type Device struct {
	// Instance is the mDNS service instance name (e.g., "Aprilaire 8920W")
	Instance string

	// Hostname is the mDNS hostname (e.g., "aprilaire-01.local.")
	Hostname string

	// IP is the IPv4 address, or IPv6 when no IPv4 address was advertised
	IP string

	// Port is the automation port (typically 7001)
	Port int

	// MAC is the thermostat MAC address from the TXT record, if advertised
	MAC string

	// Metadata contains every mDNS TXT record entry
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	if d.MAC != "" {
		return fmt.Sprintf("Aprilaire %s [%s] at %s", d.Instance, d.MAC, d.Address())
	}
	return fmt.Sprintf("Aprilaire %s at %s", d.Instance, d.Address())
}

// Address returns host:port suitable for dialing.
func (d *Device) Address() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
