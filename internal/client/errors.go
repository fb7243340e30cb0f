package client

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"

	"github.com/muurk/aprilaire/internal/urls"
)

var (
	// ErrNoResponse is returned by AwaitResponse when no matching message
	// arrives before the timeout.
	ErrNoResponse = errors.New("no response from thermostat")

	// ErrSessionClosed is returned to waiters pending when the connection
	// they were waiting on goes away.
	ErrSessionClosed = errors.New("session closed")

	// ErrNotStarted is returned by operations that need Start first.
	ErrNotStarted = errors.New("client not started")

	// ErrClientStopped is returned to waiters when Stop is called and to
	// callers waiting on a stopped client.
	ErrClientStopped = errors.New("client stopped")
)

// ErrorType represents the category of a connection failure
type ErrorType int

const (
	// ErrTypeNetwork indicates a generic network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the dial timed out
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening on the port
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the host name could not be resolved
	ErrTypeDNS
	// ErrTypeHostUnreachable indicates no route to the host
	ErrTypeHostUnreachable
	// ErrTypeNetworkUnreachable indicates the local network is down
	ErrTypeNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHostUnreachable:
		return "Host Unreachable"
	case ErrTypeNetworkUnreachable:
		return "Network Unreachable"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ConnectError describes a failed attempt to reach the thermostat.
type ConnectError struct {
	Type      ErrorType // Category of error
	Message   string    // Human-readable error message
	Addr      string    // Address that was dialed
	Err       error     // Underlying error
	Retryable bool      // Whether retrying could succeed without user action
}

// Error implements the error interface
func (e *ConnectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectError) Unwrap() error {
	return e.Err
}

// ClassifyConnectError analyzes a dial error and returns a categorized
// ConnectError. The supervisor retries regardless; the classification only
// drives logging and CLI hints.
func ClassifyConnectError(err error, addr string) *ConnectError {
	if err == nil {
		return nil
	}

	var already *ConnectError
	if errors.As(err, &already) {
		return already
	}

	if os.IsTimeout(err) {
		return &ConnectError{Type: ErrTypeTimeout, Message: "Connection timed out", Addr: addr, Err: err, Retryable: true}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &ConnectError{
			Type:      ErrTypeDNS,
			Message:   fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Addr:      addr,
			Err:       err,
			Retryable: false,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &ConnectError{Type: ErrTypeConnectionRefused, Message: "Thermostat refused connection", Addr: addr, Err: err, Retryable: true}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &ConnectError{Type: ErrTypeHostUnreachable, Message: "Host unreachable", Addr: addr, Err: err, Retryable: true}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &ConnectError{Type: ErrTypeNetworkUnreachable, Message: "Network unreachable", Addr: addr, Err: err, Retryable: true}
		}
	}

	return &ConnectError{Type: ErrTypeNetwork, Message: "Network error occurred", Addr: addr, Err: err, Retryable: true}
}

// TroubleshootingHint returns user-facing advice for a connection failure.
func TroubleshootingHint(err error) string {
	var ce *ConnectError
	if !errors.As(err, &ce) {
		return "An unexpected error occurred. Please try again."
	}

	switch ce.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The thermostat did not answer in time.",
			"Troubleshooting:",
			"  • Check that the thermostat is powered on and on Wi-Fi",
			"  • Verify the IP address (see the thermostat's network menu)",
		}, "\n")
	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The thermostat refused the connection.",
			"Troubleshooting:",
			"  • Enable the automation interface in the thermostat's settings",
			"  • Only one client may be connected at a time; close other apps",
			"  • Verify the port number (default is 7001)",
			"  • Setup guide: " + urls.AutomationSetup,
		}, "\n")
	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the thermostat hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of hostname",
			"  • Try 'aprilaire scan' to discover thermostats on the network",
		}, "\n")
	case ErrTypeHostUnreachable, ErrTypeNetworkUnreachable:
		return strings.Join([]string{
			"The thermostat is not reachable on the network.",
			"Troubleshooting:",
			"  • Check that you're on the same network as the thermostat",
			"  • Try pinging the thermostat: ping " + hostOf(ce.Addr),
		}, "\n")
	default:
		return strings.Join([]string{
			"Network communication failed.",
			"Troubleshooting:",
			"  • Check your network connection",
			"  • Verify the thermostat is powered on",
		}, "\n")
	}
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
