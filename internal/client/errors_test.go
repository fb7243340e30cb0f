package client

import (
	"errors"
	"net"
	"strings"
	"syscall"
	"testing"

	"github.com/muurk/aprilaire/internal/urls"
)

type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

func TestClassifyConnectError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
	}{
		{
			name:      "timeout",
			err:       &net.OpError{Op: "dial", Net: "tcp", Err: &timeoutError{}},
			wantType:  ErrTypeTimeout,
			retryable: true,
		},
		{
			name:      "connection refused",
			err:       &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED},
			wantType:  ErrTypeConnectionRefused,
			retryable: true,
		},
		{
			name:      "host unreachable",
			err:       &net.OpError{Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH},
			wantType:  ErrTypeHostUnreachable,
			retryable: true,
		},
		{
			name:      "network unreachable",
			err:       &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ENETUNREACH},
			wantType:  ErrTypeNetworkUnreachable,
			retryable: true,
		},
		{
			name:      "dns",
			err:       &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Name: "thermostat.local", Err: "no such host"}},
			wantType:  ErrTypeDNS,
			retryable: false,
		},
		{
			name:      "generic",
			err:       errors.New("boom"),
			wantType:  ErrTypeNetwork,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := ClassifyConnectError(tt.err, "192.168.1.40:7001")
			if ce == nil {
				t.Fatal("ClassifyConnectError() = nil")
			}
			if ce.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", ce.Type, tt.wantType)
			}
			if ce.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", ce.Retryable, tt.retryable)
			}
			if !errors.Is(ce, tt.err) {
				t.Errorf("errors.Is(ConnectError, cause) = false")
			}
		})
	}

	if ClassifyConnectError(nil, "") != nil {
		t.Error("ClassifyConnectError(nil) != nil")
	}
}

func TestTroubleshootingHint(t *testing.T) {
	refused := ClassifyConnectError(&net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, "10.0.0.5:7001")
	if hint := TroubleshootingHint(refused); !strings.Contains(hint, "7001") {
		t.Errorf("refused hint missing port: %q", hint)
	}
	if hint := TroubleshootingHint(refused); !strings.Contains(hint, urls.AutomationSetup) {
		t.Errorf("refused hint missing setup guide: %q", hint)
	}

	unreachable := ClassifyConnectError(&net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH}, "10.0.0.5:7001")
	if hint := TroubleshootingHint(unreachable); !strings.Contains(hint, "ping 10.0.0.5") {
		t.Errorf("unreachable hint = %q, want ping 10.0.0.5", hint)
	}

	if hint := TroubleshootingHint(errors.New("x")); !strings.Contains(hint, "unexpected") {
		t.Errorf("generic hint = %q", hint)
	}
}
