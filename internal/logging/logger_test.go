package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger enabled without a level")
	}
}

func TestInitializeToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aprilaire.log")
	if err := InitializeTo("warn", path); err != nil {
		t.Fatalf("InitializeTo() error = %v", err)
	}
	t.Cleanup(func() { logger = nil })

	log := Named("client")
	log.Info("hidden")
	log.Warn("shown", zap.String("addr", "10.0.0.5:7001"))
	LogFrame(log, "sent", "10.0.0.5:7001", []byte{0x01, 0x02})
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry written at warn level:\n%s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "client") {
		t.Errorf("warn entry missing:\n%s", out)
	}
	if strings.Contains(out, "0102") {
		t.Errorf("frame dump written at warn level:\n%s", out)
	}
}

func TestHexDumpTruncates(t *testing.T) {
	data := make([]byte, 300)
	got := hexDump(data)
	if !strings.HasSuffix(got, "...") || len(got) != 512+3 {
		t.Errorf("hexDump() length = %d, want %d with ellipsis", len(got), 515)
	}
	if hexDump(nil) != "" {
		t.Error("hexDump(nil) not empty")
	}
}
