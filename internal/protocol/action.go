package protocol

import (
	"fmt"
	"strconv"
	"time"
)

// Frame envelope constants
const (
	FrameRevision  = 0x01 // Always transmitted, regardless of the revision received
	HeaderSize     = 4    // revision + sequence + length_hi + length_lo
	SubHeaderSize  = 3    // action + domain + attribute
	NackPayloadLen = 2    // action + rejected attribute
	SequenceModulo = 128  // Sequence is a 7-bit rolling counter
)

// DefaultPort is the TCP port the thermostat automation interface listens on.
const DefaultPort = 7001

// QueueFrequency is how often the outbound queue is drained onto the socket.
const QueueFrequency = 500 * time.Millisecond

// Action is the message kind carried in the first byte of the sub-header.
type Action byte

const (
	ActionNone         Action = 0
	ActionWrite        Action = 1
	ActionReadRequest  Action = 2
	ActionReadResponse Action = 3
	ActionCOS          Action = 5 // Change of state, sent unsolicited by the device
	ActionNack         Action = 6
)

// Valid reports whether a is a recognized action.
func (a Action) Valid() bool {
	switch a {
	case ActionNone, ActionWrite, ActionReadRequest, ActionReadResponse, ActionCOS, ActionNack:
		return true
	}
	return false
}

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionWrite:
		return "write"
	case ActionReadRequest:
		return "read_request"
	case ActionReadResponse:
		return "read_response"
	case ActionCOS:
		return "cos"
	case ActionNack:
		return "nack"
	default:
		return fmt.Sprintf("action(%d)", byte(a))
	}
}

// Domain is the functional area a message addresses.
type Domain byte

const (
	DomainNone           Domain = 0
	DomainSetup          Domain = 1
	DomainControl        Domain = 2
	DomainScheduling     Domain = 3
	DomainAlerts         Domain = 4
	DomainSensors        Domain = 5
	DomainLockout        Domain = 6
	DomainStatus         Domain = 7
	DomainIdentification Domain = 8
	DomainMessaging      Domain = 9
	DomainDisplay        Domain = 10
	DomainWeather        Domain = 13
	DomainFirmwareUpdate Domain = 14
	DomainDebugCommands  Domain = 15
	DomainNack           Domain = 16
)

var domainNames = map[Domain]string{
	DomainNone:           "none",
	DomainSetup:          "setup",
	DomainControl:        "control",
	DomainScheduling:     "scheduling",
	DomainAlerts:         "alerts",
	DomainSensors:        "sensors",
	DomainLockout:        "lockout",
	DomainStatus:         "status",
	DomainIdentification: "identification",
	DomainMessaging:      "messaging",
	DomainDisplay:        "display",
	DomainWeather:        "weather",
	DomainFirmwareUpdate: "firmware_update",
	DomainDebugCommands:  "debug_commands",
	DomainNack:           "nack",
}

// Valid reports whether d is a recognized domain.
func (d Domain) Valid() bool {
	_, ok := domainNames[d]
	return ok
}

func (d Domain) String() string {
	if name, ok := domainNames[d]; ok {
		return name
	}
	return fmt.Sprintf("domain(%d)", byte(d))
}

// ParseDomain resolves a domain by name (as printed by String) or number.
func ParseDomain(s string) (Domain, error) {
	for d, name := range domainNames {
		if name == s {
			return d, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 255 && Domain(n).Valid() {
		return Domain(n), nil
	}
	return DomainNone, fmt.Errorf("unknown domain %q", s)
}
