package config

import (
	"strings"
	"time"

	"github.com/muurk/aprilaire/internal/protocol"
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Preferences *Preferences       `yaml:"preferences,omitempty"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by normalized MAC address
}

// Preferences holds connection defaults. Command-line flags override them.
type Preferences struct {
	Host              string        `yaml:"host,omitempty"`               // Thermostat host used when no flag is given
	Port              int           `yaml:"port,omitempty"`               // Automation port (default 7001)
	ReconnectInterval time.Duration `yaml:"reconnect_interval,omitempty"` // Liveness reconnect period, 0 disables
	RetryInterval     time.Duration `yaml:"retry_interval,omitempty"`     // Wait between connect attempts
	ResponseTimeout   time.Duration `yaml:"response_timeout,omitempty"`   // Default wait for a response
	LogLevel          string        `yaml:"log_level,omitempty"`
	AutoDiscover      bool          `yaml:"auto_discover"`    // Resolve the host over mDNS when unset
	DiscoverTimeout   int           `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
}

// Device is what we remember about a thermostat we have talked to.
type Device struct {
	Name     string    `yaml:"name,omitempty"`
	Location string    `yaml:"location,omitempty"`
	Model    int       `yaml:"model,omitempty"`
	LastHost string    `yaml:"last_host,omitempty"`
	LastPort int       `yaml:"last_port,omitempty"`
	LastSeen time.Time `yaml:"last_seen,omitempty"`
}

// ModelName returns the marketing name for the stored model number.
func (d *Device) ModelName() string {
	if d.Model == 0 {
		return ""
	}
	return protocol.ModelName(d.Model)
}

func defaultPreferences() *Preferences {
	return &Preferences{
		Port:            protocol.DefaultPort,
		RetryInterval:   10 * time.Second,
		ResponseTimeout: 5 * time.Second,
		AutoDiscover:    true,
		DiscoverTimeout: 10,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Preferences: defaultPreferences(),
		Devices:     make(map[string]*Device),
	}
}

// NormalizeMAC returns the canonical key for a MAC address. Unparseable
// input is lowercased and used as-is.
func NormalizeMAC(mac string) string {
	b, err := protocol.ParseMAC(mac)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mac))
	}
	return protocol.FormatMAC(b)
}

// GetDevice retrieves device metadata by MAC address.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(mac string) *Device {
	return r.Devices[NormalizeMAC(mac)]
}

// EnsureDevice returns the entry for mac, creating it if needed.
func (r *Registry) EnsureDevice(mac string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	key := NormalizeMAC(mac)
	if device, exists := r.Devices[key]; exists {
		return device
	}

	device := &Device{}
	r.Devices[key] = device
	return device
}

// UpdateDeviceLastSeen records where and when a device was reached.
func (r *Registry) UpdateDeviceLastSeen(mac, host string, port int) {
	device := r.EnsureDevice(mac)
	device.LastSeen = time.Now()
	device.LastHost = host
	device.LastPort = port
}

// UpdateDeviceIdentity stores identification fields reported by the device.
// Empty values and a zero model leave the stored value alone.
func (r *Registry) UpdateDeviceIdentity(mac, name, location string, model int) {
	device := r.EnsureDevice(mac)
	if name != "" {
		device.Name = name
	}
	if location != "" {
		device.Location = location
	}
	if model != 0 {
		device.Model = model
	}
}

// LastSeenDevice returns the most recently reached device and its MAC, or
// nil if none is known.
func (r *Registry) LastSeenDevice() (string, *Device) {
	var (
		mac  string
		last *Device
	)
	for key, d := range r.Devices {
		if last == nil || d.LastSeen.After(last.LastSeen) {
			mac, last = key, d
		}
	}
	return mac, last
}
